package geom

import (
	"fmt"
	"math"
)

// Euler is an orientation expressed as rotations in degrees about the X, Y
// and Z axes.
type Euler struct {
	X, Y, Z float64
}

// E returns an Euler orientation from its components.
func E(x, y, z float64) Euler {
	return Euler{X: x, Y: y, Z: z}
}

// Add returns the component-wise sum of e and o.
func (e Euler) Add(o Euler) Euler {
	return Euler{e.X + o.X, e.Y + o.Y, e.Z + o.Z}
}

// Scale multiplies every angle by f.
func (e Euler) Scale(f float64) Euler {
	return Euler{e.X * f, e.Y * f, e.Z * f}
}

// Discretize rounds each angle to a whole degree in [0, 360). Two
// orientations are considered equal when their discretized forms are equal.
func (e Euler) Discretize() Euler {
	return Euler{
		X: NormalizeAngle(math.Round(e.X)),
		Y: NormalizeAngle(math.Round(e.Y)),
		Z: NormalizeAngle(math.Round(e.Z)),
	}
}

// Matches reports whether e and o describe the same discretized orientation.
func (e Euler) Matches(o Euler) bool {
	return e.Discretize() == o.Discretize()
}

// LerpEuler interpolates each angle linearly. t is not clamped so that
// overshooting easings such as OutBack work as expected.
func LerpEuler(a, b Euler, t float64) Euler {
	return Euler{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// String returns the orientation as "(x, y, z)".
func (e Euler) String() string {
	return fmt.Sprintf("(%g, %g, %g)", e.X, e.Y, e.Z)
}

// NormalizeAngle maps a in degrees into [0, 360).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	// -0 and values that round up to 360 both collapse to 0
	if a == 0 || a >= 360 {
		return 0
	}
	return a
}

// Normalize maps every angle into [0, 360) without rounding.
func (e Euler) Normalize() Euler {
	return Euler{NormalizeAngle(e.X), NormalizeAngle(e.Y), NormalizeAngle(e.Z)}
}

// AngleDelta returns the signed shortest rotation from a to b in degrees, in
// (-180, 180].
func AngleDelta(a, b float64) float64 {
	delta := math.Mod(b-a, 360)
	if delta > 180 {
		delta -= 360
	} else if delta <= -180 {
		delta += 360
	}
	return delta
}

// LerpAngle interpolates from a to b in degrees along the shorter arc.
func LerpAngle(a, b, t float64) float64 {
	return NormalizeAngle(a + AngleDelta(a, b)*t)
}
