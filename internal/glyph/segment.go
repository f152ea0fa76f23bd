// Package glyph segments a binarized display region into character glyphs
// and decodes them against the seven-segment pattern table.
package glyph

import (
	"github.com/asada-m/read-digits/internal/raster"
)

// Glyph is one segmented visual unit (digit, sign, or decimal point).
// Bounds are half-open row and column ranges into the binarized region the
// glyph was cut from; Img is the cropped sub-image.
type Glyph struct {
	Top, Bottom int // row range [Top, Bottom)
	Left, Right int // column range [Left, Right)
	Img         *raster.Bitmap
}

// Width returns the column extent.
func (g Glyph) Width() int { return g.Right - g.Left }

// Height returns the row extent.
func (g Glyph) Height() int { return g.Bottom - g.Top }

// Segment splits a binarized region into ordered glyphs. Columns are
// scanned for maximal runs of nonzero intensity sums; each run is trimmed
// to its nonzero row extent, and candidates far smaller than the largest
// glyph are discarded as speckle. Returns nil when the region is blank.
func Segment(b *raster.Bitmap, p Params) []Glyph {
	runs := nonzeroRuns(b.ColumnSums())
	if len(runs) == 0 {
		return nil
	}

	var glyphs []Glyph
	for _, r := range runs {
		sub := b.Crop(r.start, 0, r.end, b.H)
		top, bottom := trimZeros(sub.RowSums())
		if bottom <= top {
			continue
		}
		glyphs = append(glyphs, Glyph{
			Top:    top,
			Bottom: bottom,
			Left:   r.start,
			Right:  r.end,
			Img:    b.Crop(r.start, top, r.end, bottom),
		})
	}
	if len(glyphs) == 0 {
		return nil
	}

	// Drop glyphs much smaller than the largest one in both dimensions.
	largest := 0
	for _, g := range glyphs {
		if d := min(g.Width(), g.Height()); d > largest {
			largest = d
		}
	}
	minSize := largest / p.MinSizeDivisor

	kept := glyphs[:0]
	for _, g := range glyphs {
		if g.Width() > minSize && g.Height() > minSize {
			kept = append(kept, g)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// MaxHeight returns the tallest glyph height, the nominal full-digit height
// used as the decoder's reference.
func MaxHeight(glyphs []Glyph) int {
	maxH := 0
	for _, g := range glyphs {
		if g.Height() > maxH {
			maxH = g.Height()
		}
	}
	return maxH
}

type run struct {
	start, end int // half-open
}

// nonzeroRuns returns the maximal half-open ranges of nonzero values,
// including runs touching either end of the slice.
func nonzeroRuns(sums []int) []run {
	var runs []run
	start := -1
	for i, v := range sums {
		if v > 0 {
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			runs = append(runs, run{start, i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, run{start, len(sums)})
	}
	return runs
}

// trimZeros returns the half-open range spanned by nonzero values.
// An all-zero slice yields an empty range.
func trimZeros(sums []int) (start, end int) {
	for i, v := range sums {
		if v > 0 {
			start = i
			break
		}
	}
	for i := len(sums) - 1; i >= 0; i-- {
		if sums[i] > 0 {
			end = i + 1
			break
		}
	}
	return start, end
}
