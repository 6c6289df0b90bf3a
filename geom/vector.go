package geom

import "math"

// Tolerance for normal comparisons and degeneracy checks.
const Eps = 1e-6

// A Vector is a point or direction in 3D space.
type Vector struct {
	X, Y, Z float64
}

// Define a 3 component vector.
func XYZ(x, y, z float64) Vector {
	return Vector{x, y, z}
}

// Add a vector.
func (v Vector) Add(v2 Vector) Vector {
	return Vector{v.X + v2.X, v.Y + v2.Y, v.Z + v2.Z}
}

// Subtract a vector.
func (v Vector) Sub(v2 Vector) Vector {
	return Vector{v.X - v2.X, v.Y - v2.Y, v.Z - v2.Z}
}

// Multiply a vector with a scalar.
func (v Vector) Scale(s float64) Vector {
	return Vector{v.X * s, v.Y * s, v.Z * s}
}

// Reverse a vector.
func (v Vector) Reverse() Vector {
	return Vector{-v.X, -v.Y, -v.Z}
}

// Calculate dot product of 2 vectors.
func (v Vector) Dot(v2 Vector) float64 {
	return v.X*v2.X + v.Y*v2.Y + v.Z*v2.Z
}

// Calculate cross product of 2 vectors.
func (v Vector) Cross(v2 Vector) Vector {
	return Vector{
		v.Y*v2.Z - v.Z*v2.Y,
		v.Z*v2.X - v.X*v2.Z,
		v.X*v2.Y - v.Y*v2.X,
	}
}

// Get vector length.
func (v Vector) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize vector. A near-zero vector normalizes to the zero vector.
func (v Vector) Unit() Vector {
	l := v.Length()
	if l < Eps {
		return Vector{}
	}
	return Vector{v.X / l, v.Y / l, v.Z / l}
}

// Compare two vectors using the package tolerance.
func (v Vector) Equal(v2 Vector) bool {
	return math.Abs(v.X-v2.X) < Eps &&
		math.Abs(v.Y-v2.Y) < Eps &&
		math.Abs(v.Z-v2.Z) < Eps
}

// Rotate the vector around an axis through the origin by angle radians
// (Rodrigues rotation).
func (v Vector) Rotate(axis Vector, angle float64) Vector {
	u := axis.Unit()
	sin, cos := math.Sincos(angle)
	return v.Scale(cos).
		Add(u.Cross(v).Scale(sin)).
		Add(u.Scale(u.Dot(v) * (1 - cos)))
}

// Round each component to the given number of decimals.
func (v Vector) Round(decimals int) Vector {
	p := math.Pow(10, float64(decimals))
	return Vector{
		math.Round(v.X*p) / p,
		math.Round(v.Y*p) / p,
		math.Round(v.Z*p) / p,
	}
}

// Calc min component from two vectors.
func MinVector(v1, v2 Vector) Vector {
	return Vector{
		math.Min(v1.X, v2.X),
		math.Min(v1.Y, v2.Y),
		math.Min(v1.Z, v2.Z),
	}
}

// Calc max component from two vectors.
func MaxVector(v1, v2 Vector) Vector {
	return Vector{
		math.Max(v1.X, v2.X),
		math.Max(v1.Y, v2.Y),
		math.Max(v1.Z, v2.Z),
	}
}
