// Package reader runs the digit-extraction pipeline for one display region:
// rectify, binarize, segment, repair, decode.
package reader

import (
	"strings"

	"github.com/asada-m/read-digits/internal/glyph"
	"github.com/asada-m/read-digits/internal/raster"
	"github.com/asada-m/read-digits/internal/rectify"
	"github.com/asada-m/read-digits/pkg/geometry"

	"gocv.io/x/gocv"
)

// Reader decodes seven-segment display regions from grayscale frames.
// The zero value is not usable; construct with New.
type Reader struct {
	params   glyph.Params
	binarize raster.BinarizeOptions
}

// New returns a Reader with the given heuristics.
func New(params glyph.Params) *Reader {
	return &Reader{
		params:   params,
		binarize: raster.BinarizeOptions{Denoise: true},
	}
}

// Read rectifies the quad region of frame and decodes it. It returns the
// decoded character string and the glyph boxes (in rectified coordinates)
// for overlay display. An empty region decodes to "". Degenerate geometry
// is returned as an error and fails only this frame.
func (r *Reader) Read(frame gocv.Mat, quad geometry.Quad) (string, []glyph.Glyph, error) {
	bm, err := rectify.Warp(frame, quad)
	if err != nil {
		return "", nil, err
	}
	th := raster.Binarize(bm, r.binarize)
	text, glyphs := r.DecodeBitmap(th)
	return text, glyphs, nil
}

// DecodeBitmap decodes an already binarized region (ink high). This is the
// pure part of Read, split out so the heuristics can be exercised with
// synthetic bitmaps.
func (r *Reader) DecodeBitmap(th *raster.Bitmap) (string, []glyph.Glyph) {
	glyphs := glyph.Segment(th, r.params)
	if len(glyphs) == 0 {
		return "", nil
	}

	refH := glyph.MaxHeight(glyphs)
	glyphs = glyph.SplitDots(th, glyphs, refH, r.params)

	chars, patterns := glyph.DecodeAll(glyphs, refH, r.params)
	if merged, changed := glyph.MergeBars(th, glyphs, chars, patterns); changed {
		glyphs = merged
		chars, _ = glyph.DecodeAll(glyphs, refH, r.params)
	}

	return strings.Join(chars, ""), glyphs
}
