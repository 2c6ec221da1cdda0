package rotation

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix4 is a 4×4 homogeneous transform applied to row vectors: a point
// p maps to [p 1]·M, so the translation lives in the bottom row.
type Matrix4 struct {
	m *mat.Dense
}

// Identity returns the identity transform
func Identity() Matrix4 {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}
	return Matrix4{m: m}
}

// RotationX rotates about the grid X axis by deg degrees
func RotationX(deg int) Matrix4 {
	s, c := sinCos(deg)
	return Matrix4{m: mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	})}
}

// RotationY rotates about the grid Y axis by deg degrees
func RotationY(deg int) Matrix4 {
	s, c := sinCos(deg)
	return Matrix4{m: mat.NewDense(4, 4, []float64{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	})}
}

// Translation moves points by (x, y, z)
func Translation(x, y, z float64) Matrix4 {
	t := Identity()
	t.m.Set(3, 0, x)
	t.m.Set(3, 1, y)
	t.m.Set(3, 2, z)
	return t
}

// Mul returns a·b. Under the row-vector convention a is applied first.
func (a Matrix4) Mul(b Matrix4) Matrix4 {
	var out mat.Dense
	out.Mul(a.m, b.m)
	return Matrix4{m: &out}
}

// At returns element (i, j)
func (a Matrix4) At(i, j int) float64 {
	return a.m.At(i, j)
}

// Apply maps the point (x, y, z) through the transform. It is equivalent
// to Translation(x, y, z).Mul(a) read back from the bottom row.
func (a Matrix4) Apply(x, y, z float64) (float64, float64, float64) {
	r := a.m.RawMatrix()
	d, s := r.Data, r.Stride
	px := x*d[0] + y*d[s] + z*d[2*s] + d[3*s]
	py := x*d[1] + y*d[s+1] + z*d[2*s+1] + d[3*s+1]
	pz := x*d[2] + y*d[s+2] + z*d[2*s+2] + d[3*s+2]
	return px, py, pz
}

// Equal reports whether a and b match within tol
func (a Matrix4) Equal(b Matrix4, tol float64) bool {
	return mat.EqualApprox(a.m, b.m, tol)
}

// sinCos evaluates the trigonometric pair for a whole number of degrees.
// Quarter turns are exact so axis-aligned rotations land on integer
// coordinates.
func sinCos(deg int) (s, c float64) {
	switch deg {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(float64(deg) * math.Pi / 180)
}
