package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PerspectiveTransform is a 3x3 projective mapping in row-major order.
// A source point (w, h) maps to
//
//	w' = (m00*w + m01*h + m02) / (m20*w + m21*h + m22)
//	h' = (m10*w + m11*h + m12) / (m20*w + m21*h + m22)
type PerspectiveTransform struct {
	M [3][3]float64
}

// FitPerspective computes the projective transform mapping four source
// points onto four destination points by solving the standard 8x8 linear
// system. Degenerate (e.g. collinear) corner sets return an error.
func FitPerspective(src, dst [4]Point) (PerspectiveTransform, error) {
	// Unknowns: m00 m01 m02 m10 m11 m12 m20 m21 (m22 fixed at 1).
	A := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		x, y := src[i].W, src[i].H
		xp, yp := dst[i].W, dst[i].H

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		A.Set(i*2, 6, -x*xp)
		A.Set(i*2, 7, -y*xp)
		b.SetVec(i*2, xp)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		A.Set(i*2+1, 6, -x*yp)
		A.Set(i*2+1, 7, -y*yp)
		b.SetVec(i*2+1, yp)
	}

	var params mat.VecDense
	if err := params.SolveVec(A, b); err != nil {
		return PerspectiveTransform{}, fmt.Errorf("fit perspective: %w", err)
	}

	return PerspectiveTransform{M: [3][3]float64{
		{params.AtVec(0), params.AtVec(1), params.AtVec(2)},
		{params.AtVec(3), params.AtVec(4), params.AtVec(5)},
		{params.AtVec(6), params.AtVec(7), 1},
	}}, nil
}

// Transform returns the perspective transform mapping the quad onto an
// axis-aligned rectangle of Size(), together with that target size.
// A quad with a near-zero edge is reported as degenerate.
func (q Quad) Transform() (PerspectiveTransform, int, int, error) {
	w, h := q.Size()
	if w < 1 || h < 1 {
		return PerspectiveTransform{}, 0, 0, fmt.Errorf("degenerate quad: target size %dx%d", w, h)
	}
	fw, fh := float64(w), float64(h)
	dst := [4]Point{{0, 0}, {fw, 0}, {fw, fh}, {0, fh}}
	t, err := FitPerspective(q.Corners(), dst)
	if err != nil {
		return PerspectiveTransform{}, 0, 0, err
	}
	return t, w, h, nil
}

// Apply maps a point through the transform.
func (t PerspectiveTransform) Apply(p Point) Point {
	d := t.M[2][0]*p.W + t.M[2][1]*p.H + t.M[2][2]
	if d == 0 {
		return Point{}
	}
	return Point{
		W: (t.M[0][0]*p.W + t.M[0][1]*p.H + t.M[0][2]) / d,
		H: (t.M[1][0]*p.W + t.M[1][1]*p.H + t.M[1][2]) / d,
	}
}

// Inverse returns the inverse transform, if it exists.
func (t PerspectiveTransform) Inverse() (PerspectiveTransform, bool) {
	m := t.M
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if math.Abs(det) < 1e-12 {
		return PerspectiveTransform{}, false
	}

	inv := [3][3]float64{
		{m[1][1]*m[2][2] - m[1][2]*m[2][1], m[0][2]*m[2][1] - m[0][1]*m[2][2], m[0][1]*m[1][2] - m[0][2]*m[1][1]},
		{m[1][2]*m[2][0] - m[1][0]*m[2][2], m[0][0]*m[2][2] - m[0][2]*m[2][0], m[0][2]*m[1][0] - m[0][0]*m[1][2]},
		{m[1][0]*m[2][1] - m[1][1]*m[2][0], m[0][1]*m[2][0] - m[0][0]*m[2][1], m[0][0]*m[1][1] - m[0][1]*m[1][0]},
	}
	for i := range inv {
		for j := range inv[i] {
			inv[i][j] /= det
		}
	}
	return PerspectiveTransform{M: inv}, true
}
