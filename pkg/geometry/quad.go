// Package geometry provides the quadrilateral and projective-transform types
// used by the digit-reading pipeline.
package geometry

import (
	"math"
)

// Point is a 2D point in image coordinates. W runs along the width axis
// (left to right), H along the height axis (top to bottom).
type Point struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dw := p.W - other.W
	dh := p.H - other.H
	return math.Sqrt(dw*dw + dh*dh)
}

// Sub returns the difference of two points.
func (p Point) Sub(other Point) Point {
	return Point{W: p.W - other.W, H: p.H - other.H}
}

// Add returns the sum of two points.
func (p Point) Add(other Point) Point {
	return Point{W: p.W + other.W, H: p.H + other.H}
}

// Scale returns the point scaled by a factor.
func (p Point) Scale(factor float64) Point {
	return Point{W: p.W * factor, H: p.H * factor}
}

func (p Point) round() Point {
	return Point{W: math.Round(p.W), H: math.Round(p.H)}
}

// Quad is the four-corner region of a frame containing a digit display.
// It is an immutable value: every operation returns a new Quad.
//
// Corners may be absolute pixel coordinates or ratios in [0,1] of the frame
// size; IsRatio reports which. A ratio Quad must be converted with Absolute
// before it can be warped.
type Quad struct {
	TL Point `json:"tl"`
	TR Point `json:"tr"`
	BL Point `json:"bl"`
	BR Point `json:"br"`
}

// FromTwoCorners builds a zero-skew quadrilateral from the top-left and
// bottom-right corners.
func FromTwoCorners(tl, br Point) Quad {
	return Quad{
		TL: tl,
		TR: Point{W: br.W, H: tl.H},
		BL: Point{W: tl.W, H: br.H},
		BR: br,
	}
}

// IsRatio reports whether all eight coordinates lie in [0,1], meaning the
// quad expresses corner positions as fractions of the frame size.
func (q Quad) IsRatio() bool {
	for _, p := range [...]Point{q.TL, q.TR, q.BL, q.BR} {
		if p.W < 0 || p.W > 1 || p.H < 0 || p.H > 1 {
			return false
		}
	}
	return true
}

// Absolute converts a ratio quad to absolute pixel coordinates for a frame
// of the given size. Coordinates are rounded to whole pixels.
func (q Quad) Absolute(frameW, frameH int) Quad {
	s := func(p Point) Point {
		return Point{W: p.W * float64(frameW), H: p.H * float64(frameH)}.round()
	}
	return Quad{TL: s(q.TL), TR: s(q.TR), BL: s(q.BL), BR: s(q.BR)}
}

// Ratio converts an absolute quad to ratio coordinates for a frame of the
// given size.
func (q Quad) Ratio(frameW, frameH int) Quad {
	s := func(p Point) Point {
		return Point{W: p.W / float64(frameW), H: p.H / float64(frameH)}
	}
	return Quad{TL: s(q.TL), TR: s(q.TR), BL: s(q.BL), BR: s(q.BR)}
}

// Size returns the target rectangle size for rectification: width is the
// rounded top edge length, height the rounded left edge length.
func (q Quad) Size() (width, height int) {
	width = int(math.Round(q.TL.Distance(q.TR)))
	height = int(math.Round(q.TL.Distance(q.BL)))
	return width, height
}

// CorrectAngle recomputes the top-right and bottom-left corners from the
// top-left, bottom-right, and a shear angle measured from vertical. Angle 0
// yields the axis-aligned rectangle spanned by TL and BR. A nonzero angle
// shifts TR along the top edge direction and BL against the bottom edge
// direction by tan(angle) times the opposite vertical edge length, modeling
// a parallelogram display whose left and right edges stay parallel.
//
// Existing TR/BL values are ignored; only TL and BR carry over.
func (q Quad) CorrectAngle(angleDegrees float64) Quad {
	tr := Point{W: q.BR.W, H: q.TL.H}
	bl := Point{W: q.TL.W, H: q.BR.H}
	if angleDegrees == 0 {
		return Quad{TL: q.TL, TR: tr, BL: bl, BR: q.BR}
	}

	topLen := tr.Distance(q.TL)
	botLen := q.BR.Distance(bl)
	if topLen == 0 || botLen == 0 {
		return Quad{TL: q.TL, TR: tr, BL: bl, BR: q.BR}
	}
	topDir := tr.Sub(q.TL).Scale(1 / topLen)
	botDir := q.BR.Sub(bl).Scale(1 / botLen)

	rightLen := q.BR.Distance(tr)
	leftLen := bl.Distance(q.TL)
	shear := math.Tan(angleDegrees * math.Pi / 180)

	newTR := tr.Add(topDir.Scale(rightLen * shear)).round()
	newBL := bl.Sub(botDir.Scale(leftLen * shear)).round()
	return Quad{TL: q.TL, TR: newTR, BL: newBL, BR: q.BR}
}

// Corner coordinate keys accepted by Shift.
const (
	KeyTLw = "TLw"
	KeyTLh = "TLh"
	KeyTRw = "TRw"
	KeyTRh = "TRh"
	KeyBLw = "BLw"
	KeyBLh = "BLh"
	KeyBRw = "BRw"
	KeyBRh = "BRh"
)

// Shift nudges one named coordinate by a percentage of the quad's width and
// returns the result. Unknown keys return the quad unchanged.
func (q Quad) Shift(key string, percent float64) Quad {
	w, _ := q.Size()
	delta := math.Round(percent / 100 * float64(w))
	switch key {
	case KeyTLw:
		q.TL.W += delta
	case KeyTLh:
		q.TL.H += delta
	case KeyTRw:
		q.TR.W += delta
	case KeyTRh:
		q.TR.H += delta
	case KeyBLw:
		q.BL.W += delta
	case KeyBLh:
		q.BL.H += delta
	case KeyBRw:
		q.BR.W += delta
	case KeyBRh:
		q.BR.H += delta
	}
	return q
}

// Corners returns the four corners in TL, TR, BR, BL order, the order used
// when fitting the rectification transform.
func (q Quad) Corners() [4]Point {
	return [4]Point{q.TL, q.TR, q.BR, q.BL}
}
