package skew

import (
	"testing"

	"gocv.io/x/gocv"

	"github.com/asada-m/read-digits/internal/glyph"
	"github.com/asada-m/read-digits/internal/reader"
	"github.com/asada-m/read-digits/pkg/geometry"
)

// barFrame builds a grayscale frame with dark upright bars on a bright
// background, the degenerate case of a perfectly aligned display.
func barFrame(t *testing.T, w, h int) gocv.Mat {
	t.Helper()
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = 255
	}
	for x0 := 20; x0+10 < w; x0 += 30 {
		for y := 10; y < h-10; y++ {
			for x := x0; x < x0+10; x++ {
				pix[y*w+x] = 0
			}
		}
	}
	m, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, pix)
	if err != nil {
		t.Fatalf("NewMatFromBytes failed: %v", err)
	}
	return m
}

func TestFindBestAngleUpright(t *testing.T) {
	frame := barFrame(t, 200, 100)
	defer frame.Close()

	quad := geometry.FromTwoCorners(geometry.Point{W: 0, H: 0}, geometry.Point{W: 200, H: 100})
	rd := reader.New(glyph.DefaultParams())

	got := FindBestAngle(frame, quad, false, rd, DefaultParams())

	// Already-upright bars must not be sheared.
	for i, p := range got.Corners() {
		want := quad.Corners()[i]
		if p.Distance(want) > 2 {
			t.Errorf("corner %d: got %v, want %v", i, p, want)
		}
	}
}

func TestFindBestAngleRecoversShear(t *testing.T) {
	const trueAngle = 6

	// Stamp a frame so that rectifying through the sheared quad yields
	// perfectly vertical stripes: the sweep must come back to that shear.
	quad := geometry.FromTwoCorners(geometry.Point{W: 30, H: 20}, geometry.Point{W: 230, H: 120})
	sheared := quad.CorrectAngle(trueAngle)
	tr, w, h, err := sheared.Transform()
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	const frameW, frameH = 260, 140
	pix := make([]byte, frameW*frameH)
	for i := range pix {
		pix[i] = 255
	}
	for y := 0; y < frameH; y++ {
		for x := 0; x < frameW; x++ {
			r := tr.Apply(geometry.Point{W: float64(x), H: float64(y)})
			if r.W < 0 || r.W >= float64(w) || r.H < 10 || r.H >= float64(h-10) {
				continue
			}
			if int(r.W)%30 >= 20 {
				pix[y*frameW+x] = 0
			}
		}
	}
	frame, err := gocv.NewMatFromBytes(frameH, frameW, gocv.MatTypeCV8U, pix)
	if err != nil {
		t.Fatalf("NewMatFromBytes failed: %v", err)
	}
	defer frame.Close()

	rd := reader.New(glyph.DefaultParams())
	got := FindBestAngle(frame, quad, false, rd, DefaultParams())

	// A degree of shear moves TR/BL by about 1.75px here; stay within 1-2
	// degrees of the stamped angle.
	if dTR := got.TR.Distance(sheared.TR); dTR > 3 {
		t.Errorf("TR off by %.1fpx: got %v, want %v", dTR, got.TR, sheared.TR)
	}
	if dBL := got.BL.Distance(sheared.BL); dBL > 3 {
		t.Errorf("BL off by %.1fpx: got %v, want %v", dBL, got.BL, sheared.BL)
	}
}

func TestNumericWithDot(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"12.5", true},
		{"-0.75", true},
		{"125", false},
		{"1*.3", false},
		{"", false},
		{".", false},
	}
	for _, tt := range tests {
		if got := numericWithDot(tt.text); got != tt.want {
			t.Errorf("numericWithDot(%q): got %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestCoarseSearchUpright(t *testing.T) {
	frame := barFrame(t, 200, 100)
	defer frame.Close()

	quad := geometry.FromTwoCorners(geometry.Point{W: 0, H: 0}, geometry.Point{W: 200, H: 100})
	if got := coarseSearch(frame, quad, DefaultParams()); got != 0 {
		t.Errorf("coarseSearch: got %d, want 0", got)
	}
}
