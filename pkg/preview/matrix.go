package preview

import "math"

// Matrix is a row-major 3x3 affine matrix:
//
//	m[0] m[1] m[2]
//	m[3] m[4] m[5]
//	m[6] m[7] m[8]
type Matrix [9]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

func translation(dx, dy float64) Matrix {
	m := Identity()
	m[2] = dx
	m[5] = dy
	return m
}

func scaling(sx, sy float64) Matrix {
	m := Identity()
	m[0] = sx
	m[4] = sy
	return m
}

func rotationDeg(degrees float64) Matrix {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	m := Identity()
	m[0] = cos
	m[1] = -sin
	m[3] = sin
	m[4] = cos
	return m
}

// Mul returns m*n, i.e. the transform that applies n first, then m.
func (m Matrix) Mul(n Matrix) Matrix {
	var out Matrix
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m[row*3+k] * n[k*3+col]
			}
			out[row*3+col] = sum
		}
	}
	return out
}

// Apply maps the point (x, y) through the matrix.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	tx := m[0]*x + m[1]*y + m[2]
	ty := m[3]*x + m[4]*y + m[5]
	return tx, ty
}

// about wraps m so it is applied about the pivot (px, py).
func about(m Matrix, px, py float64) Matrix {
	return translation(px, py).Mul(m).Mul(translation(-px, -py))
}

// Matrix returns the transform as a single affine matrix: the scale about the
// pivot applied first, then the rotation about the same pivot.
func (t Transform) Matrix() Matrix {
	s := about(scaling(t.ScaleX, t.ScaleY), t.PivotX, t.PivotY)
	r := about(rotationDeg(t.RotationDegrees), t.PivotX, t.PivotY)
	return r.Mul(s)
}
