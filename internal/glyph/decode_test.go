package glyph

import (
	"testing"

	"github.com/asada-m/read-digits/internal/raster"
)

const refHeight = 60

// fill sets the half-open region [x0,x1) x [y0,y1) to 255.
func fill(b *raster.Bitmap, x0, y0, x1, y1 int) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			b.Set(x, y, 255)
		}
	}
}

// drawSegments renders an idealized seven-segment glyph with the given
// activation pattern: horizontal bars span the full width, vertical bars
// the half height, all with the given stroke thickness.
func drawSegments(w, h, stroke int, pat Pattern) *raster.Bitmap {
	b := raster.New(w, h)
	if pat[0] != 0 {
		fill(b, 0, 0, w, stroke)
	}
	if pat[1] != 0 {
		fill(b, 0, 0, stroke, h/2)
	}
	if pat[2] != 0 {
		fill(b, w-stroke, 0, w, h/2)
	}
	if pat[3] != 0 {
		fill(b, 0, h/2-stroke/2, w, h/2+stroke/2)
	}
	if pat[4] != 0 {
		fill(b, 0, h/2, stroke, h)
	}
	if pat[5] != 0 {
		fill(b, w-stroke, h/2, w, h)
	}
	if pat[6] != 0 {
		fill(b, 0, h-stroke, w, h)
	}
	return b
}

func glyphFor(img *raster.Bitmap) Glyph {
	return Glyph{Top: 0, Bottom: img.H, Left: 0, Right: img.W, Img: img}
}

func TestDecodeDigits(t *testing.T) {
	tests := []struct {
		want string
		pat  Pattern
	}{
		{"0", Pattern{1, 1, 1, 0, 1, 1, 1}},
		{"1", Pattern{0, 0, 1, 0, 0, 1, 0}},
		{"2", Pattern{1, 0, 1, 1, 1, 0, 1}},
		{"3", Pattern{1, 0, 1, 1, 0, 1, 1}},
		{"4", Pattern{0, 1, 1, 1, 0, 1, 0}},
		{"5", Pattern{1, 1, 0, 1, 0, 1, 1}},
		{"6", Pattern{0, 1, 0, 1, 1, 1, 1}},
		{"6", Pattern{1, 1, 0, 1, 1, 1, 1}},
		{"7", Pattern{1, 0, 1, 0, 0, 1, 0}},
		{"7", Pattern{1, 1, 1, 0, 0, 1, 0}},
		{"8", Pattern{1, 1, 1, 1, 1, 1, 1}},
		{"9", Pattern{1, 1, 1, 1, 0, 1, 1}},
		{"9", Pattern{1, 1, 1, 1, 0, 1, 0}},
		{"-", Pattern{0, 0, 0, 1, 0, 0, 0}},
	}

	p := DefaultParams()
	for _, tt := range tests {
		t.Run(tt.want+"_"+tt.pat.String(), func(t *testing.T) {
			img := drawSegments(30, refHeight, 6, tt.pat)
			got, pat := Decode(glyphFor(img), refHeight, p)
			if got != tt.want {
				t.Fatalf("Decode: got %q, want %q", got, tt.want)
			}
			if pat == nil || *pat != tt.pat {
				t.Errorf("pattern: got %v, want %v", pat, tt.pat)
			}
		})
	}
}

func TestDecodeOneByAspect(t *testing.T) {
	img := raster.New(8, refHeight)
	fill(img, 0, 0, 8, refHeight)

	got, pat := Decode(glyphFor(img), refHeight, DefaultParams())
	if got != "1" {
		t.Fatalf("Decode: got %q, want 1", got)
	}
	if pat == nil || *pat != onePattern {
		t.Errorf("pattern: got %v, want %v", pat, onePattern)
	}
}

func TestDecodeShortGlyphs(t *testing.T) {
	p := DefaultParams()

	// Wide and flat: minus sign.
	dash := raster.New(30, 6)
	fill(dash, 0, 0, 30, 6)
	if got, _ := Decode(glyphFor(dash), refHeight, p); got != "-" {
		t.Errorf("dash: got %q, want -", got)
	}

	// Roughly square: decimal point.
	dot := raster.New(8, 8)
	fill(dot, 0, 0, 8, 8)
	if got, _ := Decode(glyphFor(dot), refHeight, p); got != "." {
		t.Errorf("dot: got %q, want .", got)
	}
}

func TestDecodePlus(t *testing.T) {
	p := DefaultParams()

	plus := raster.New(30, 30)
	fill(plus, 13, 0, 17, 30)  // vertical stroke
	fill(plus, 0, 13, 30, 17)  // horizontal stroke
	if got, _ := Decode(glyphFor(plus), refHeight, p); got != "+" {
		t.Errorf("plus: got %q, want +", got)
	}

	// A solid mid-height block is not a plus and decodes to nothing.
	block := raster.New(30, 30)
	fill(block, 0, 0, 30, 30)
	if got, _ := Decode(glyphFor(block), refHeight, p); got != "" {
		t.Errorf("block: got %q, want empty", got)
	}
}

func TestDecodeUnknownPattern(t *testing.T) {
	// Upper-left and bottom segments only: no table entry.
	img := drawSegments(30, refHeight, 6, Pattern{0, 1, 0, 0, 0, 0, 1})
	got, pat := Decode(glyphFor(img), refHeight, DefaultParams())
	if got != "*" {
		t.Fatalf("Decode: got %q, want *", got)
	}
	if pat == nil || pat.String() != "0100001" {
		t.Errorf("pattern: got %v, want 0100001", pat)
	}
}

func TestDecodeSquareGlyphRejected(t *testing.T) {
	// Aspect at or below the digit bound is unreadable.
	img := drawSegments(refHeight, refHeight, 6, Pattern{1, 1, 1, 1, 1, 1, 1})
	if got, _ := Decode(glyphFor(img), refHeight, DefaultParams()); got != "" {
		t.Errorf("Decode: got %q, want empty", got)
	}
}

func TestPatternString(t *testing.T) {
	p := Pattern{1, 0, 1, 1, 0, 1, 1}
	if got := p.String(); got != "1011011" {
		t.Errorf("String: got %q, want 1011011", got)
	}
}
