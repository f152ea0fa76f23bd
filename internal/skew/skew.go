// Package skew recovers the shear angle that best separates and aligns the
// glyphs of a display region, without ground truth. Two independent signals
// are combined: the count of blank separator columns across a coarse angle
// sweep, and the mean tilt of near-vertical detected lines. A final
// refinement nudges the geometry until a decimal point becomes readable.
package skew

import (
	"math"
	"strconv"
	"strings"

	"github.com/asada-m/read-digits/internal/raster"
	"github.com/asada-m/read-digits/internal/reader"
	"github.com/asada-m/read-digits/internal/rectify"
	"github.com/asada-m/read-digits/pkg/geometry"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// Params bounds the angle search.
type Params struct {
	// Coarse sweep over integer shear angles, inclusive.
	AngleMin, AngleMax int

	// MaxLineTilt is the maximum deviation from vertical (degrees) for a
	// detected line to contribute to the fine correction.
	MaxLineTilt float64

	// LineLenDivisors are tried in order: the minimum Hough line length is
	// the region height divided by each, so later attempts accept shorter
	// lines.
	LineLenDivisors []int

	// ShiftPercents are the decimal-point refinement nudges applied to the
	// top-right corner, as percentages of the region width.
	ShiftPercents []float64
}

// DefaultParams returns the calibrated search bounds.
func DefaultParams() Params {
	return Params{
		AngleMin:        -11,
		AngleMax:        20,
		MaxLineTilt:     15,
		LineLenDivisors: []int{4, 6, 8},
		ShiftPercents:   []float64{3, 6, -3, -6},
	}
}

// FindBestAngle searches for the quad orientation that best separates the
// glyphs in the region. When numeric is true a decimal-point refinement is
// applied afterwards. The input quad must be in absolute coordinates; only
// its TL and BR corners are used. Failures at any stage fall back to the
// previous stage's result, so a usable quad is always returned.
func FindBestAngle(frame gocv.Mat, quad geometry.Quad, numeric bool, rd *reader.Reader, p Params) geometry.Quad {
	coarse := coarseSearch(frame, quad, p)
	fine := lineAngle(frame, quad.CorrectAngle(float64(coarse)), p)
	result := quad.CorrectAngle(float64(coarse) - fine)

	if numeric {
		result = refineDecimalPoint(frame, result, rd, p)
	}
	return result
}

// coarseSearch sweeps integer angles and keeps the one producing the most
// all-blank columns after rectification; ties are averaged.
func coarseSearch(frame gocv.Mat, quad geometry.Quad, p Params) int {
	bestCount := -1
	var bestAngles []float64

	for a := p.AngleMin; a <= p.AngleMax; a++ {
		bm, err := rectify.Warp(frame, quad.CorrectAngle(float64(a)))
		if err != nil {
			continue
		}
		th := raster.Binarize(bm, raster.BinarizeOptions{Denoise: true})

		zeros := 0
		for _, s := range th.ColumnSums() {
			if s == 0 {
				zeros++
			}
		}
		switch {
		case zeros > bestCount:
			bestCount = zeros
			bestAngles = []float64{float64(a)}
		case zeros == bestCount:
			bestAngles = append(bestAngles, float64(a))
		}
	}
	if len(bestAngles) == 0 {
		return 0
	}
	return int(math.Round(stat.Mean(bestAngles, nil)))
}

// lineAngle rectifies at the coarse angle what should now be near-vertical
// digit strokes and measures their residual tilt with a probabilistic line
// search. Three attempts with decreasing minimum line length are made; if
// no near-vertical line is found the correction is 0.
func lineAngle(frame gocv.Mat, quad geometry.Quad, p Params) float64 {
	bm, err := rectify.Warp(frame, quad)
	if err != nil {
		return 0
	}
	th := raster.Binarize(bm, raster.BinarizeOptions{Denoise: true})

	// Trim blank rows above and below the glyph band.
	top, bottom := bandBounds(th)
	if bottom <= top {
		return 0
	}
	band := th.Crop(0, top, th.W, bottom)

	src, err := gocv.NewMatFromBytes(band.H, band.W, gocv.MatTypeCV8U, band.Pix)
	if err != nil {
		return 0
	}
	defer src.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(src, &edges, 10, 10)

	height := band.H
	threshold := max(height/50, 2)
	maxGap := max(height/30, 1)

	for _, div := range p.LineLenDivisors {
		lines := gocv.NewMat()
		gocv.HoughLinesPWithParams(edges, &lines, 1, float32(math.Pi/360),
			threshold, float32(height/div), float32(maxGap))

		var tilts []float64
		for i := 0; i < lines.Rows(); i++ {
			v := lines.GetVeciAt(i, 0)
			x1, y1, x2, y2 := float64(v[0]), float64(v[1]), float64(v[2]), float64(v[3])
			a := 90 - math.Atan2(y2-y1, x2-x1)*180/math.Pi
			if math.Abs(a) < p.MaxLineTilt {
				tilts = append(tilts, a)
			}
		}
		lines.Close()

		if len(tilts) > 0 {
			return math.Round(stat.Mean(tilts, nil))
		}
	}
	return 0
}

// refineDecimalPoint nudges the top-right corner by small width percentages
// until the decode both parses as a number and contains a decimal point.
// If the unshifted decode already qualifies, or no shift qualifies, the
// input quad is returned.
func refineDecimalPoint(frame gocv.Mat, quad geometry.Quad, rd *reader.Reader, p Params) geometry.Quad {
	if text, _, err := rd.Read(frame, quad); err == nil && numericWithDot(text) {
		return quad
	}
	for _, pct := range p.ShiftPercents {
		shifted := quad.Shift(geometry.KeyTRw, pct)
		text, _, err := rd.Read(frame, shifted)
		if err != nil {
			continue
		}
		if numericWithDot(text) {
			return shifted
		}
	}
	return quad
}

func numericWithDot(text string) bool {
	if !strings.Contains(text, ".") {
		return false
	}
	_, err := strconv.ParseFloat(text, 64)
	return err == nil
}

// bandBounds returns the half-open row range containing ink.
func bandBounds(b *raster.Bitmap) (top, bottom int) {
	sums := b.RowSums()
	for i, s := range sums {
		if s > 0 {
			top = i
			break
		}
	}
	for i := len(sums) - 1; i >= 0; i-- {
		if sums[i] > 0 {
			bottom = i + 1
			break
		}
	}
	return top, bottom
}
