package glyph

import (
	"strings"

	"github.com/asada-m/read-digits/internal/raster"
)

// Pattern is the activation vector of the seven canonical segments:
//
//	-- 0 --
//	|     |
//	1     2
//	|     |
//	-- 3 --
//	|     |
//	4     5
//	|     |
//	-- 6 --
type Pattern [7]uint8

// String renders the pattern as seven bits, e.g. "1101011".
func (p Pattern) String() string {
	var sb strings.Builder
	for _, v := range p {
		if v != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// digitLookup maps segment patterns to characters. Several digits carry two
// entries because different displays render them with or without an extra
// segment (6 with/without the top bar, 7 with/without the upper-left bar,
// 9 with/without the bottom bar). Both variants are valid; keep them all.
var digitLookup = map[Pattern]string{
	{1, 1, 1, 0, 1, 1, 1}: "0",
	{0, 0, 1, 0, 0, 1, 0}: "1",
	{1, 0, 1, 1, 1, 0, 1}: "2",
	{1, 0, 1, 1, 0, 1, 1}: "3",
	{0, 1, 1, 1, 0, 1, 0}: "4",
	{1, 1, 0, 1, 0, 1, 1}: "5",
	{0, 1, 0, 1, 1, 1, 1}: "6",
	{1, 1, 0, 1, 1, 1, 1}: "6",
	{1, 0, 1, 0, 0, 1, 0}: "7",
	{1, 1, 1, 0, 0, 1, 0}: "7",
	{1, 1, 1, 1, 1, 1, 1}: "8",
	{1, 1, 1, 1, 0, 1, 1}: "9",
	{1, 1, 1, 1, 0, 1, 0}: "9",
	{0, 0, 0, 1, 0, 0, 0}: "-",
}

// onePattern is reported for glyphs recognized as '1' by aspect ratio alone.
var onePattern = Pattern{0, 0, 1, 0, 0, 1, 0}

// Decode classifies one glyph. refMaxHeight is the tallest glyph height in
// the region, taken as the nominal full-digit height. It returns the decoded
// character ("0"-"9", "-", ".", "+", "*" for an unmatched pattern, or ""
// for unrecognized) and, for digit-shaped glyphs, the raw segment pattern.
func Decode(g Glyph, refMaxHeight int, p Params) (string, *Pattern) {
	img := g.Img
	h, w := img.H, img.W
	if h == 0 || w == 0 {
		return "", nil
	}
	aspect := float64(h) / float64(w)

	switch {
	case h*p.DotHeightDivisor < refMaxHeight:
		// Short, squat glyph: dash or decimal point.
		if aspect < p.DashAspectMax {
			return "-", nil
		}
		return ".", nil

	case float64(h)*p.ShortHeightRatio < float64(refMaxHeight):
		// Mid-height glyph: only a plus sign qualifies.
		if aspect > p.DashAspectMax && aspect < 3 && isPlus(img) {
			return "+", nil
		}
		return "", nil
	}

	if aspect >= p.OneAspectMin {
		pat := onePattern
		return "1", &pat
	}
	if aspect <= p.DigitAspectMin {
		return "", nil
	}

	pat := samplePattern(img, p)
	if ch, ok := digitLookup[pat]; ok {
		return ch, &pat
	}
	return "*", &pat
}

// DecodeAll decodes every glyph against the shared reference height.
func DecodeAll(glyphs []Glyph, refMaxHeight int, p Params) ([]string, []*Pattern) {
	chars := make([]string, len(glyphs))
	patterns := make([]*Pattern, len(glyphs))
	for i, g := range glyphs {
		chars[i], patterns[i] = Decode(g, refMaxHeight, p)
	}
	return chars, patterns
}

// samplePattern measures the seven segment zones. Each zone is "on" when
// its average intensity exceeds a darkness threshold taken from two blank
// reference areas at the vertical center line (but never below DarkFloor).
func samplePattern(img *raster.Bitmap, p Params) Pattern {
	h, w := img.H, img.W

	wid, hei := 1, 1
	if w > 20 {
		wid = w / 20
	}
	if h > 20 {
		hei = h / 20
	}
	mid0, mid1 := w/2-wid, w/2+wid
	upp0, upp1 := h/4-hei, h/4+hei
	dwn0, dwn1 := h*3/4-hei, h*3/4+hei

	darkest := (img.RegionMean(mid0, upp0, mid1, upp1) + img.RegionMean(mid0, dwn0, mid1, dwn1)) / 2
	if darkest < p.DarkFloor {
		darkest = p.DarkFloor
	}

	zones := [7]float64{
		img.RegionMean(mid0, 0, mid1, h/3),      // top bar
		img.RegionMean(0, upp0, w/3, upp1),      // upper left
		img.RegionMean(w*2/3, upp0, w-1, upp1),  // upper right
		img.RegionMean(mid0, h/3, mid1, h*2/3),  // middle bar
		img.RegionMean(0, dwn0, w/3, dwn1),      // lower left
		img.RegionMean(w*2/3, dwn0, w-1, dwn1),  // lower right
		img.RegionMean(mid0, h*2/3, mid1, h),    // bottom bar
	}

	var pat Pattern
	for i, z := range zones {
		if z > darkest {
			pat[i] = 1
		}
	}
	return pat
}

// isPlus tests a mid-height glyph for a plus sign: all four corner
// quadrants must be darker than each of the three cross/center samples.
func isPlus(img *raster.Bitmap) bool {
	h, w := img.H, img.W
	h3, w5 := h/3, w/5

	darks := [4]float64{
		img.RegionMean(0, 0, w5, h3),
		img.RegionMean(w5*4, 0, w, h3),
		img.RegionMean(0, h3*2, w5, h),
		img.RegionMean(w5*4, h3*2, w, h),
	}
	cross := [3]float64{
		img.RegionMean(w5*2, 0, w5*3, h3),
		img.RegionMean(0, h3, w, h3*2),
		img.RegionMean(w5*2, h3*2, w5*3, h),
	}

	for _, c := range cross {
		for _, d := range darks {
			if d >= c {
				return false
			}
		}
	}
	return true
}
