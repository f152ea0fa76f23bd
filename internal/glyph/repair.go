package glyph

import (
	"github.com/asada-m/read-digits/internal/raster"
)

// Post-decoding repair heuristics. Skew correction and tight trimming can
// leave a decimal point fused to the digit before it, or split the widely
// spaced bars of a '1' into separate glyphs; both are fixed here on the
// glyph bounding boxes before the final decode.

// SplitDots separates decimal points that segmentation left attached to the
// right side of a digit. A glyph that decodes as a digit is split when its
// trailing columns hold ink only near the bottom and that trailing span is
// between SplitMinFrac and SplitMaxFrac of the glyph width. The dot part is
// re-trimmed to its own row bounds against the full region. region is the
// binarized image the glyphs were segmented from.
func SplitDots(region *raster.Bitmap, glyphs []Glyph, refMaxHeight int, p Params) []Glyph {
	out := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		ch, _ := Decode(g, refMaxHeight, p)
		if !isDigit(ch) {
			out = append(out, g)
			continue
		}

		h := g.Img.H
		// A column belongs to the digit body when its topmost ink rises
		// clearly above the bottom of the glyph.
		body := make([]bool, g.Img.W)
		for x := range body {
			top := firstInkRow(g.Img, x)
			body[x] = top >= 0 && float64(h-top) > float64(h)*p.DotRiseFrac
		}

		allBody := true
		for _, b := range body {
			if !b {
				allBody = false
				break
			}
		}
		if allBody {
			out = append(out, g)
			continue
		}

		// Count trailing dot-like columns.
		dotLen := 0
		for i := len(body) - 1; i >= 0; i-- {
			if body[i] {
				dotLen = len(body) - 1 - i
				break
			}
		}

		w := float64(g.Img.W)
		if float64(dotLen) <= w*p.SplitMinFrac || float64(dotLen) >= w*p.SplitMaxFrac {
			out = append(out, g)
			continue
		}

		digit := Glyph{
			Top: g.Top, Bottom: g.Bottom,
			Left: g.Left, Right: g.Right - dotLen,
		}
		digit.Img = region.Crop(digit.Left, digit.Top, digit.Right, digit.Bottom)

		// The dot may float above the baseline; trim its rows against the
		// full region height.
		dotCols := region.Crop(g.Right-dotLen, 0, g.Right, region.H)
		top, bottom := trimZeros(dotCols.RowSums())
		dot := Glyph{
			Top: top, Bottom: bottom,
			Left: g.Right - dotLen, Right: g.Right,
		}
		dot.Img = region.Crop(dot.Left, dot.Top, dot.Right, dot.Bottom)

		out = append(out, digit, dot)
	}
	return out
}

// MergeBars re-merges the bars of digits whose vertical strokes were split
// into separate glyphs by angle correction. A glyph missing both left-hand
// vertical segments that sits next to a glyph decoded as "" or "1" is
// merged with that neighbor when the neighbor is a sufficiently narrow bar
// and the gap between them is smaller than the bar width. Returns the
// repaired glyph list (bounding boxes unioned, sub-images re-cropped from
// region) and whether anything was merged.
func MergeBars(region *raster.Bitmap, glyphs []Glyph, chars []string, patterns []*Pattern) ([]Glyph, bool) {
	if !containsBarResult(chars) {
		return glyphs, false
	}

	type merge struct {
		idx int // glyph missing its left/right bars
		dir int // -1: merge with left neighbor, +1: with right
	}
	var pending []merge

	for i := range glyphs {
		if !lacksSideBars(patterns[i]) {
			continue
		}
		wSelf := glyphs[i].Width()
		if i > 0 && (chars[i-1] == "" || chars[i-1] == "1") {
			wBar := glyphs[i-1].Width()
			gap := glyphs[i].Left - glyphs[i-1].Right
			if gap < wBar && wBar*2 < wSelf {
				pending = append(pending, merge{i, -1})
			}
		}
		if i < len(glyphs)-1 && (chars[i+1] == "" || chars[i+1] == "1") {
			wBar := glyphs[i+1].Width()
			gap := glyphs[i+1].Left - glyphs[i].Right
			if gap < wBar && wBar*2 < wSelf {
				pending = append(pending, merge{i, +1})
			}
		}
	}
	if len(pending) == 0 {
		return glyphs, false
	}

	boxes := make([]Glyph, len(glyphs))
	copy(boxes, glyphs)
	for len(pending) > 0 {
		m := pending[0]
		pending = pending[1:]

		j := m.idx + m.dir
		if j < 0 || j >= len(boxes) {
			continue
		}
		merged := unionBox(boxes[m.idx], boxes[j])
		lo := min(m.idx, j)
		boxes = append(boxes[:lo], append([]Glyph{merged}, boxes[lo+2:]...)...)

		// Later pending merges referenced the old indices. A glyph missing
		// both side bars queues a merge per neighbor; the second one must
		// follow the merged box to its new slot. An entry whose own glyph
		// was consumed as a bar is dropped.
		kept := pending[:0]
		for _, pm := range pending {
			switch {
			case pm.idx == j:
				continue
			case pm.idx == m.idx:
				pm.idx = lo
			case pm.idx > max(m.idx, j):
				pm.idx--
			}
			kept = append(kept, pm)
		}
		pending = kept
	}

	for i := range boxes {
		boxes[i].Img = region.Crop(boxes[i].Left, boxes[i].Top, boxes[i].Right, boxes[i].Bottom)
	}
	return boxes, true
}

func unionBox(a, b Glyph) Glyph {
	return Glyph{
		Top:    min(a.Top, b.Top),
		Bottom: max(a.Bottom, b.Bottom),
		Left:   min(a.Left, b.Left),
		Right:  max(a.Right, b.Right),
	}
}

// lacksSideBars reports whether both vertical mid segments on the left side
// (upper-left and lower-left) are off; digits split from their bars decode
// this way.
func lacksSideBars(p *Pattern) bool {
	if p == nil {
		return false
	}
	return p[1] == 0 && p[4] == 0
}

func containsBarResult(chars []string) bool {
	for _, c := range chars {
		if c == "" || c == "1" {
			return true
		}
	}
	return false
}

func isDigit(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}

func firstInkRow(b *raster.Bitmap, x int) int {
	for y := 0; y < b.H; y++ {
		if b.At(x, y) > 0 {
			return y
		}
	}
	return -1
}
