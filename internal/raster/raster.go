// Package raster provides a plain grayscale pixel buffer and the pure-Go
// binarization used by the digit reader. Keeping these operations off the
// OpenCV Mat makes the segmentation and decoding heuristics testable with
// synthetic images.
package raster

// Bitmap is a W x H grayscale image stored row-major.
type Bitmap struct {
	W, H int
	Pix  []uint8
}

// New creates a zeroed bitmap.
func New(w, h int) *Bitmap {
	return &Bitmap{W: w, H: h, Pix: make([]uint8, w*h)}
}

// FromBytes wraps row-major pixel data in a Bitmap. The data is copied.
func FromBytes(w, h int, data []byte) *Bitmap {
	b := New(w, h)
	copy(b.Pix, data)
	return b
}

// At returns the pixel at (x, y). Out-of-range coordinates return 0.
func (b *Bitmap) At(x, y int) uint8 {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return 0
	}
	return b.Pix[y*b.W+x]
}

// Set writes the pixel at (x, y). Out-of-range coordinates are ignored.
func (b *Bitmap) Set(x, y int, v uint8) {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return
	}
	b.Pix[y*b.W+x] = v
}

// Crop returns a copy of the half-open region [x0,x1) x [y0,y1), clamped to
// the bitmap bounds.
func (b *Bitmap) Crop(x0, y0, x1, y1 int) *Bitmap {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, b.W), min(y1, b.H)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	out := New(x1-x0, y1-y0)
	for y := y0; y < y1; y++ {
		copy(out.Pix[(y-y0)*out.W:(y-y0+1)*out.W], b.Pix[y*b.W+x0:y*b.W+x1])
	}
	return out
}

// ColumnSums returns the per-column sum of pixel intensities.
func (b *Bitmap) ColumnSums() []int {
	sums := make([]int, b.W)
	for y := 0; y < b.H; y++ {
		row := b.Pix[y*b.W : (y+1)*b.W]
		for x, v := range row {
			sums[x] += int(v)
		}
	}
	return sums
}

// RowSums returns the per-row sum of pixel intensities.
func (b *Bitmap) RowSums() []int {
	sums := make([]int, b.H)
	for y := 0; y < b.H; y++ {
		row := b.Pix[y*b.W : (y+1)*b.W]
		s := 0
		for _, v := range row {
			s += int(v)
		}
		sums[y] = s
	}
	return sums
}

// Mean returns the average intensity of the whole bitmap.
func (b *Bitmap) Mean() float64 {
	if len(b.Pix) == 0 {
		return 0
	}
	var sum int
	for _, v := range b.Pix {
		sum += int(v)
	}
	return float64(sum) / float64(len(b.Pix))
}

// RowMean returns the average intensity of one row.
func (b *Bitmap) RowMean(y int) float64 {
	if y < 0 || y >= b.H || b.W == 0 {
		return 0
	}
	var sum int
	for _, v := range b.Pix[y*b.W : (y+1)*b.W] {
		sum += int(v)
	}
	return float64(sum) / float64(b.W)
}

// RegionMean returns the average intensity of the half-open region
// [x0,x1) x [y0,y1), clamped to the bitmap. An empty region returns 0.
func (b *Bitmap) RegionMean(x0, y0, x1, y1 int) float64 {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, b.W), min(y1, b.H)
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	var sum int
	for y := y0; y < y1; y++ {
		for _, v := range b.Pix[y*b.W+x0 : y*b.W+x1] {
			sum += int(v)
		}
	}
	return float64(sum) / float64((x1-x0)*(y1-y0))
}

// Invert flips every pixel in place (255 - v).
func (b *Bitmap) Invert() {
	for i, v := range b.Pix {
		b.Pix[i] = 255 - v
	}
}
