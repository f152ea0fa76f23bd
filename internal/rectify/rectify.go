// Package rectify warps quadrilateral display regions out of a source frame
// into axis-aligned grayscale images.
package rectify

import (
	"fmt"
	"image"
	"image/color"

	"github.com/asada-m/read-digits/internal/raster"
	"github.com/asada-m/read-digits/pkg/geometry"

	"gocv.io/x/gocv"
)

// WarpMat applies the quad's perspective transform to a grayscale frame and
// returns the rectified sub-image as a new Mat of the quad's target size.
// The caller owns the returned Mat. Degenerate quads return an error rather
// than crashing the frame.
func WarpMat(frame gocv.Mat, quad geometry.Quad) (gocv.Mat, error) {
	if frame.Empty() {
		return gocv.Mat{}, fmt.Errorf("rectify: empty frame")
	}

	t, w, h, err := quad.Transform()
	if err != nil {
		return gocv.Mat{}, err
	}

	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.SetDoubleAt(i, j, t.M[i][j])
		}
	}

	// Cubic interpolation keeps segment edges crisp enough for the
	// column-sum heuristics downstream.
	dst := gocv.NewMat()
	gocv.WarpPerspectiveWithParams(frame, &dst, m, image.Pt(w, h),
		gocv.InterpolationCubic, gocv.BorderConstant, color.RGBA{})
	return dst, nil
}

// Warp rectifies the quad region into a plain grayscale bitmap.
func Warp(frame gocv.Mat, quad geometry.Quad) (*raster.Bitmap, error) {
	dst, err := WarpMat(frame, quad)
	if err != nil {
		return nil, err
	}
	defer dst.Close()
	return raster.FromBytes(dst.Cols(), dst.Rows(), dst.ToBytes()), nil
}

// Rotate rotates a frame by 90, 180, or 270 degrees; any other angle
// returns a clone of the input. The caller owns the returned Mat.
func Rotate(frame gocv.Mat, degrees int) gocv.Mat {
	var code gocv.RotateFlag
	switch degrees {
	case 90:
		code = gocv.Rotate90Clockwise
	case 180:
		code = gocv.Rotate180Clockwise
	case 270:
		code = gocv.Rotate90CounterClockwise
	default:
		return frame.Clone()
	}

	dst := gocv.NewMat()
	gocv.Rotate(frame, &dst, code)
	return dst
}
