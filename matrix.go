package canvas

import "math"

// Matrix is a 2D affine transform in DOM order:
//
//	| A  C  E |
//	| B  D  F |
//
// which maps
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Translate returns a translation.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, D: 1, E: x, F: y}
}

// Scale returns a scale.
func Scale(x, y float64) Matrix {
	return Matrix{A: x, D: y}
}

// Rotate returns a rotation by angle radians.
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// MatrixFromSlice builds a Matrix from the ordered form [a, b, c, d, e, f].
// v must hold at least six values.
func MatrixFromSlice(v []float64) Matrix {
	return Matrix{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}
}

// Slice returns the ordered form [a, b, c, d, e, f].
func (m Matrix) Slice() []float64 {
	return []float64{m.A, m.B, m.C, m.D, m.E, m.F}
}

// Multiply returns m * other: other is applied first.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.C*other.B,
		B: m.B*other.A + m.D*other.B,
		C: m.A*other.C + m.C*other.D,
		D: m.B*other.C + m.D*other.D,
		E: m.A*other.E + m.C*other.F + m.E,
		F: m.B*other.E + m.D*other.F + m.F,
	}
}

// TransformPoint applies m to (x, y).
func (m Matrix) TransformPoint(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Invert returns the inverse of m. ok is false when m is singular.
func (m Matrix) Invert() (inv Matrix, ok bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 || math.IsNaN(det) {
		return Matrix{}, false
	}
	return Matrix{
		A: m.D / det,
		B: -m.B / det,
		C: -m.C / det,
		D: m.A / det,
		E: (m.C*m.F - m.D*m.E) / det,
		F: (m.B*m.E - m.A*m.F) / det,
	}, true
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// ToEngineBasis converts m to the engine's column-major term order
// [a, c, e, b, d, f].
func ToEngineBasis(m Matrix) [6]float64 {
	return [6]float64{m.A, m.C, m.E, m.B, m.D, m.F}
}

// ToEngineBasisSlice converts the ordered form [a, b, c, d, e, f] to engine
// basis. v must hold six values.
func ToEngineBasisSlice(v []float64) [6]float64 {
	return ToEngineBasis(MatrixFromSlice(v))
}

// FromEngineBasis converts engine basis terms back to a Matrix. v must hold
// at least six values; perspective terms after the sixth are dropped.
func FromEngineBasis(v []float64) Matrix {
	return Matrix{A: v[0], C: v[1], E: v[2], B: v[3], D: v[4], F: v[5]}
}
