package reader

import (
	"testing"

	"github.com/asada-m/read-digits/internal/glyph"
	"github.com/asada-m/read-digits/internal/raster"
)

func fill(b *raster.Bitmap, x0, y0, x1, y1 int) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			b.Set(x, y, 255)
		}
	}
}

// drawDigit renders a seven-segment digit with the given activation
// pattern at the column offset, 30 wide and 60 tall with stroke 6.
func drawDigit(region *raster.Bitmap, left int, pat glyph.Pattern) {
	if pat[0] != 0 {
		fill(region, left, 0, left+30, 6)
	}
	if pat[1] != 0 {
		fill(region, left, 0, left+6, 30)
	}
	if pat[2] != 0 {
		fill(region, left+24, 0, left+30, 30)
	}
	if pat[3] != 0 {
		fill(region, left, 27, left+30, 33)
	}
	if pat[4] != 0 {
		fill(region, left, 30, left+6, 60)
	}
	if pat[5] != 0 {
		fill(region, left+24, 30, left+30, 60)
	}
	if pat[6] != 0 {
		fill(region, left, 54, left+30, 60)
	}
}

func TestDecodeBitmapReading(t *testing.T) {
	// "12.5" laid out as separate glyphs with blank separator columns.
	region := raster.New(130, 60)
	fill(region, 2, 0, 8, 60)                                  // 1
	drawDigit(region, 12, glyph.Pattern{1, 0, 1, 1, 1, 0, 1})  // 2
	fill(region, 46, 54, 50, 60)                               // .
	drawDigit(region, 54, glyph.Pattern{1, 1, 0, 1, 0, 1, 1})  // 5

	rd := New(glyph.DefaultParams())
	text, glyphs := rd.DecodeBitmap(region)
	if text != "12.5" {
		t.Fatalf("DecodeBitmap: got %q, want 12.5", text)
	}
	if len(glyphs) != 4 {
		t.Errorf("got %d glyphs, want 4", len(glyphs))
	}
}

func TestDecodeBitmapNegativeReading(t *testing.T) {
	region := raster.New(80, 60)
	fill(region, 2, 27, 26, 33)                                // -
	drawDigit(region, 34, glyph.Pattern{1, 1, 1, 0, 1, 1, 1})  // 0
	rd := New(glyph.DefaultParams())

	text, _ := rd.DecodeBitmap(region)
	if text != "-0" {
		t.Fatalf("DecodeBitmap: got %q, want -0", text)
	}
}

func TestDecodeBitmapBlank(t *testing.T) {
	rd := New(glyph.DefaultParams())
	text, glyphs := rd.DecodeBitmap(raster.New(40, 40))
	if text != "" || glyphs != nil {
		t.Errorf("blank region: got %q, %v", text, glyphs)
	}
}

func TestDecodeBitmapMergesSplitBars(t *testing.T) {
	// A digit body whose left bars sit in a separate narrow glyph; the
	// repair pass must merge and re-decode them as one digit.
	region := raster.New(40, 60)
	fill(region, 0, 0, 6, 60)    // detached bar
	fill(region, 10, 0, 30, 5)   // top
	fill(region, 25, 0, 30, 30)  // upper right
	fill(region, 10, 28, 30, 33) // middle
	fill(region, 25, 30, 30, 60) // lower right
	fill(region, 10, 55, 30, 60) // bottom

	rd := New(glyph.DefaultParams())
	text, glyphs := rd.DecodeBitmap(region)
	if text != "8" {
		t.Fatalf("DecodeBitmap: got %q, want 8", text)
	}
	if len(glyphs) != 1 {
		t.Errorf("got %d glyphs, want 1", len(glyphs))
	}
}
