// Package marker locates the display region of a frame from four ArUco
// corner stickers and generates printable sticker sheets.
package marker

import (
	"fmt"
	"math"

	"github.com/asada-m/read-digits/pkg/geometry"

	"gocv.io/x/gocv"
)

// OpenCV corner refinement methods (cv::aruco::CornerRefineMethod).
const (
	cornerRefineContour  = 2
	cornerRefineAprilTag = 3
)

// innerShiftDivisor controls how far corners are pulled inward past each
// marker's inner corner, trimming the white quiet zone around the sticker
// so it cannot be mistaken for a lit segment.
const innerShiftDivisor = 7

// IDs names the markers glued to the four corners of the display, in
// top-left, top-right, bottom-right, bottom-left order.
type IDs [4]int

// Valid reports whether the four ids are distinct.
func (ids IDs) Valid() bool {
	seen := map[int]bool{}
	for _, id := range ids {
		if seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

// Detector finds marker-delimited display quads in frames. The dictionary
// is fixed at construction and shared read-only across frames.
type Detector struct {
	dict gocv.ArucoDictionary
}

// NewDetector creates a detector over the 4x4/50 dictionary used by the
// sticker generator.
func NewDetector() *Detector {
	return &Detector{dict: gocv.GetPredefinedDictionary(gocv.ArucoDict4x4_50)}
}

// DetectQuad locates the four configured markers and returns the display
// quad spanned by their inner corners, shifted slightly inward to exclude
// the sticker border. Contour-based corner refinement is tried first; if
// any marker is missing, the slower AprilTag refinement gets one retry
// (it handles wide-angle lens distortion better). Fewer than all four
// markers is an error; the caller falls back to explicit geometry or skips
// the frame.
func (d *Detector) DetectQuad(frame gocv.Mat, ids IDs) (geometry.Quad, error) {
	if !ids.Valid() {
		return geometry.Quad{}, fmt.Errorf("detect markers: ids %v not distinct", ids)
	}

	corners, found := d.detect(frame, ids, cornerRefineContour)
	if !found {
		corners, found = d.detect(frame, ids, cornerRefineAprilTag)
		if !found {
			return geometry.Quad{}, fmt.Errorf("detect markers: ids %v not all present", ids)
		}
	}

	// For the marker at position i (TL,TR,BR,BL), its corner i is the
	// outermost and the diagonally opposite corner is the innermost.
	var pts [4]geometry.Point
	innerIdx := [4]int{2, 3, 0, 1}
	for i := 0; i < 4; i++ {
		outer := corners[i][i]
		inner := corners[i][innerIdx[i]]
		shift := inner.Sub(outer).Scale(1.0 / innerShiftDivisor)
		p := inner.Add(shift)
		pts[i] = geometry.Point{W: math.Round(p.W), H: math.Round(p.H)}
	}
	return geometry.Quad{TL: pts[0], TR: pts[1], BR: pts[2], BL: pts[3]}, nil
}

// detect runs one marker pass and reorders the hits to match ids. The
// second return is false unless every id was found exactly once.
func (d *Detector) detect(frame gocv.Mat, ids IDs, refineMethod int) ([4][4]geometry.Point, bool) {
	params := gocv.NewArucoDetectorParameters()
	params.SetCornerRefinementMethod(refineMethod)
	det := gocv.NewArucoDetectorWithParams(d.dict, params)
	defer det.Close()

	corners, foundIDs, _ := det.DetectMarkers(frame)

	var out [4][4]geometry.Point
	for i, want := range ids {
		at := -1
		for j, got := range foundIDs {
			if got == want {
				if at >= 0 {
					return out, false // duplicate sticker in frame
				}
				at = j
			}
		}
		if at < 0 || len(corners[at]) != 4 {
			return out, false
		}
		for c := 0; c < 4; c++ {
			out[i][c] = geometry.Point{W: float64(corners[at][c].X), H: float64(corners[at][c].Y)}
		}
	}
	return out, true
}
