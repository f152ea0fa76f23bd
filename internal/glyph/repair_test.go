package glyph

import (
	"testing"

	"github.com/asada-m/read-digits/internal/raster"
)

// drawEight renders a full seven-segment "8" into region at the given
// column offset, 30 wide and 60 tall with stroke 6.
func drawEight(region *raster.Bitmap, left int) {
	fill(region, left, 0, left+30, 6)     // top
	fill(region, left, 27, left+30, 33)   // middle
	fill(region, left, 54, left+30, 60)   // bottom
	fill(region, left, 0, left+6, 60)     // left bars
	fill(region, left+24, 0, left+30, 60) // right bars
}

func TestSplitDots(t *testing.T) {
	region := raster.New(34, 60)
	drawEight(region, 0)
	fill(region, 30, 54, 34, 60) // decimal point fused to the digit

	glyphs := Segment(region, DefaultParams())
	if len(glyphs) != 1 {
		t.Fatalf("segmentation: got %d glyphs, want 1 fused glyph", len(glyphs))
	}

	out := SplitDots(region, glyphs, 60, DefaultParams())
	if len(out) != 2 {
		t.Fatalf("got %d glyphs after split, want 2", len(out))
	}

	digit, dot := out[0], out[1]
	if digit.Left != 0 || digit.Right != 30 {
		t.Errorf("digit columns: [%d,%d), want [0,30)", digit.Left, digit.Right)
	}
	if dot.Left != 30 || dot.Right != 34 || dot.Top != 54 || dot.Bottom != 60 {
		t.Errorf("dot bounds: %+v", dot)
	}

	p := DefaultParams()
	if ch, _ := Decode(digit, 60, p); ch != "8" {
		t.Errorf("digit decodes to %q, want 8", ch)
	}
	if ch, _ := Decode(dot, 60, p); ch != "." {
		t.Errorf("dot decodes to %q, want .", ch)
	}
}

func TestSplitDotsLeavesCleanDigit(t *testing.T) {
	region := raster.New(30, 60)
	drawEight(region, 0)

	glyphs := Segment(region, DefaultParams())
	out := SplitDots(region, glyphs, 60, DefaultParams())
	if len(out) != 1 {
		t.Fatalf("got %d glyphs, want 1", len(out))
	}
	if out[0] != glyphs[0] {
		t.Errorf("clean digit changed: %+v vs %+v", out[0], glyphs[0])
	}
}

func TestMergeBars(t *testing.T) {
	// A "3"-shaped body whose left vertical bars were split off into a
	// separate narrow glyph by angle correction.
	region := raster.New(40, 60)
	fill(region, 0, 0, 6, 60)    // detached bar
	fill(region, 10, 0, 30, 5)   // top
	fill(region, 25, 0, 30, 30)  // upper right
	fill(region, 10, 28, 30, 33) // middle
	fill(region, 25, 30, 30, 60) // lower right
	fill(region, 10, 55, 30, 60) // bottom

	p := DefaultParams()
	glyphs := Segment(region, p)
	if len(glyphs) != 2 {
		t.Fatalf("segmentation: got %d glyphs, want 2", len(glyphs))
	}

	chars, patterns := DecodeAll(glyphs, 60, p)
	if chars[0] != "1" || chars[1] != "3" {
		t.Fatalf("pre-merge decode: got %v", chars)
	}

	merged, changed := MergeBars(region, glyphs, chars, patterns)
	if !changed {
		t.Fatal("expected a merge")
	}
	if len(merged) != 1 {
		t.Fatalf("got %d glyphs after merge, want 1", len(merged))
	}
	g := merged[0]
	if g.Left != 0 || g.Right != 30 || g.Top != 0 || g.Bottom != 60 {
		t.Errorf("merged bounds: %+v", g)
	}
	if g.Img.W != 30 || g.Img.H != 60 {
		t.Errorf("merged image not re-cropped: %dx%d", g.Img.W, g.Img.H)
	}
}

func TestMergeBarsBothSides(t *testing.T) {
	// Both vertical bars split off: the body queues a merge for each
	// neighbor, and the second merge must land on the already-merged box.
	region := raster.New(40, 60)
	fill(region, 0, 0, 6, 60)    // left bar
	fill(region, 10, 0, 30, 5)   // top
	fill(region, 10, 28, 30, 33) // middle
	fill(region, 10, 55, 30, 60) // bottom
	fill(region, 34, 0, 40, 60)  // right bar

	p := DefaultParams()
	glyphs := Segment(region, p)
	if len(glyphs) != 3 {
		t.Fatalf("segmentation: got %d glyphs, want 3", len(glyphs))
	}

	chars, patterns := DecodeAll(glyphs, 60, p)
	if chars[0] != "1" || chars[2] != "1" {
		t.Fatalf("pre-merge decode: got %v", chars)
	}

	merged, changed := MergeBars(region, glyphs, chars, patterns)
	if !changed {
		t.Fatal("expected merges")
	}
	if len(merged) != 1 {
		t.Fatalf("got %d glyphs after merge, want 1", len(merged))
	}
	g := merged[0]
	if g.Left != 0 || g.Right != 40 || g.Top != 0 || g.Bottom != 60 {
		t.Errorf("merged bounds: %+v", g)
	}
	if g.Img.W != 40 || g.Img.H != 60 {
		t.Errorf("merged image not re-cropped: %dx%d", g.Img.W, g.Img.H)
	}
}

func TestMergeBarsNoCandidates(t *testing.T) {
	region := raster.New(70, 60)
	drawEight(region, 0)
	drawEight(region, 40)

	p := DefaultParams()
	glyphs := Segment(region, p)
	chars, patterns := DecodeAll(glyphs, 60, p)

	out, changed := MergeBars(region, glyphs, chars, patterns)
	if changed {
		t.Error("unexpected merge")
	}
	if len(out) != len(glyphs) {
		t.Errorf("glyph count changed: %d vs %d", len(out), len(glyphs))
	}
}
