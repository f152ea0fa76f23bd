package glyph

// Params holds the empirically tuned fractions and thresholds of the
// segmenter, decoder, and repair heuristics. They were calibrated on real
// instrument photos; treat them as recalibration knobs, not derived values.
type Params struct {
	// MinSizeDivisor filters segmentation speckle: a glyph is dropped when
	// either dimension is at most 1/MinSizeDivisor of the largest glyph's
	// smaller dimension.
	MinSizeDivisor int

	// DotHeightDivisor classifies short glyphs: height*DotHeightDivisor
	// below the reference height means dash or decimal point.
	DotHeightDivisor int

	// ShortHeightRatio separates mid-height glyphs (plus-sign candidates)
	// from full-size digits: height*ShortHeightRatio below the reference
	// height is mid-height.
	ShortHeightRatio float64

	// DashAspectMax: a short glyph with aspect ratio (h/w) below this is a
	// dash, otherwise a decimal point.
	DashAspectMax float64

	// OneAspectMin: a full-size glyph at least this tall relative to its
	// width is the digit 1 (bare right-hand bars).
	OneAspectMin float64

	// DigitAspectMin is the lower aspect bound for 7-segment sampling.
	DigitAspectMin float64

	// DarkFloor is the minimum darkness threshold for segment activation.
	DarkFloor float64

	// SplitMinFrac/SplitMaxFrac bound the trailing blank width (as a
	// fraction of glyph width) that triggers a decimal-point split.
	SplitMinFrac float64
	SplitMaxFrac float64

	// DotRiseFrac: a column whose topmost ink stays within this fraction of
	// the glyph height above the bottom counts as decimal-point ink.
	DotRiseFrac float64
}

// DefaultParams returns the calibrated heuristics.
func DefaultParams() Params {
	return Params{
		MinSizeDivisor:   10,
		DotHeightDivisor: 5,
		ShortHeightRatio: 1.8,
		DashAspectMax:    0.4,
		OneAspectMin:     4,
		DigitAspectMin:   1.1,
		DarkFloor:        20,
		SplitMinFrac:     0.1,
		SplitMaxFrac:     1.0 / 3,
		DotRiseFrac:      0.2,
	}
}
