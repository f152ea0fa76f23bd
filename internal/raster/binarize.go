package raster

const white = 255

// BinarizeOptions controls Binarize.
type BinarizeOptions struct {
	// Denoise applies a thin vertical opening after thresholding to remove
	// single-pixel speckle without eroding vertical digit strokes.
	Denoise bool
}

// Binarize converts a grayscale region to two levels with digit ink high.
//
// If the first and last rows (the display bezel) are on average brighter
// than the whole region, the image is inverted first so that digits come
// out bright. A global Otsu threshold then maps pixels to 0 or 255, and an
// optional 1x5 vertical opening suppresses thin noise.
//
// The input is not modified; a new bitmap is returned.
func Binarize(b *Bitmap, opts BinarizeOptions) *Bitmap {
	out := FromBytes(b.W, b.H, b.Pix)
	if b.H > 0 && (b.RowMean(0)+b.RowMean(b.H-1))/2 > b.Mean() {
		out.Invert()
	}

	t := OtsuThreshold(out)
	for i, v := range out.Pix {
		if v > t {
			out.Pix[i] = white
		} else {
			out.Pix[i] = 0
		}
	}

	if opts.Denoise {
		out = verticalOpen(out, 5)
	}
	return out
}

// OtsuThreshold computes the between-class-variance maximizing threshold
// over the bitmap's histogram.
func OtsuThreshold(b *Bitmap) uint8 {
	var hist [256]int
	total := len(b.Pix)
	if total == 0 {
		return 128
	}
	for _, v := range b.Pix {
		hist[v]++
	}

	var sum float64
	for i := 0; i < 256; i++ {
		sum += float64(i) * float64(hist[i])
	}

	var sumB float64
	var wB, wF int
	var maxVar float64
	threshold := uint8(128)

	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF = total - wB
		if wF == 0 {
			break
		}

		sumB += float64(t) * float64(hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)

		variance := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if variance > maxVar {
			maxVar = variance
			threshold = uint8(t)
		}
	}

	return threshold
}

// verticalOpen erodes then dilates with a 1-wide, k-tall kernel. Bright
// runs shorter than k in the vertical direction are removed; vertical digit
// strokes survive.
func verticalOpen(b *Bitmap, k int) *Bitmap {
	r := k / 2
	eroded := New(b.W, b.H)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			// Out-of-bounds neighbors count as bright so glyphs touching
			// the top or bottom edge are not eroded away.
			v := uint8(white)
			for dy := -r; dy <= r; dy++ {
				yy := y + dy
				if yy >= 0 && yy < b.H && b.Pix[yy*b.W+x] == 0 {
					v = 0
					break
				}
			}
			eroded.Pix[y*b.W+x] = v
		}
	}
	dilated := New(b.W, b.H)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			var v uint8
			for dy := -r; dy <= r; dy++ {
				yy := y + dy
				if yy >= 0 && yy < b.H && eroded.Pix[yy*b.W+x] != 0 {
					v = white
					break
				}
			}
			dilated.Pix[y*b.W+x] = v
		}
	}
	return dilated
}
