// Package vector provides the immutable 3D vector used by the shading model.
package vector

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrZeroLength is returned when normalizing a vector of length zero.
// Callers decide how a degenerate direction should be treated.
var ErrZeroLength = errors.New("vector: zero length")

// Vector3 is an immutable 3D vector with a cached Euclidean length.
// Every operation returns a new value.
type Vector3 struct {
	v      r3.Vec
	length float64
}

// New builds a vector from its components
func New(x, y, z float64) Vector3 {
	v := r3.Vec{X: x, Y: y, Z: z}
	return Vector3{v: v, length: r3.Norm(v)}
}

// Between returns the vector pointing from (x1, y1, z1) to (x2, y2, z2)
func Between(x1, y1, z1, x2, y2, z2 float64) Vector3 {
	return New(x2-x1, y2-y1, z2-z1)
}

func (a Vector3) X() float64 { return a.v.X }
func (a Vector3) Y() float64 { return a.v.Y }
func (a Vector3) Z() float64 { return a.v.Z }

// Length returns the cached Euclidean length
func (a Vector3) Length() float64 { return a.length }

// Normalize returns the unit vector with the same direction
func (a Vector3) Normalize() (Vector3, error) {
	if a.length == 0 {
		return Vector3{}, ErrZeroLength
	}
	return New(a.v.X/a.length, a.v.Y/a.length, a.v.Z/a.length), nil
}

// Dot returns the dot product of a and b
func (a Vector3) Dot(b Vector3) float64 {
	return r3.Dot(a.v, b.v)
}

// Scale multiplies every component by f
func (a Vector3) Scale(f float64) Vector3 {
	v := r3.Scale(f, a.v)
	return New(v.X, v.Y, v.Z)
}

// Sub returns a - b
func (a Vector3) Sub(b Vector3) Vector3 {
	v := r3.Sub(a.v, b.v)
	return New(v.X, v.Y, v.Z)
}

// Reflect mirrors l about the unit normal n: 2(n·l)n - l
func Reflect(n, l Vector3) Vector3 {
	return n.Scale(2 * n.Dot(l)).Sub(l)
}
