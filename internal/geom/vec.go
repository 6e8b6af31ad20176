// Package geom provides the small amount of 3D math the traversal engine needs:
// vectors, Euler orientations, interpolation curves and easing.
package geom

import (
	"fmt"
	"math"
)

// Vec3 is a point or direction in world space. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

// Up is the world up direction.
var Up = Vec3{Y: 1}

// V returns a Vec3 from its components.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Dist returns the distance between v and o.
func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Len()
}

// HorizontalDist returns the distance between v and o ignoring height.
func (v Vec3) HorizontalDist(o Vec3) float64 {
	return math.Hypot(v.X-o.X, v.Z-o.Z)
}

// Normalize returns v scaled to unit length, or the zero vector if v has no length.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Lerp interpolates linearly from a to b. t is not clamped.
func Lerp(a, b Vec3, t float64) Vec3 {
	return Vec3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// IsFinite reports whether every component is neither NaN nor infinite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// Sanitize replaces every non-finite component of v with the matching
// component of fallback. The second result reports whether anything changed.
func (v Vec3) Sanitize(fallback Vec3) (Vec3, bool) {
	changed := false
	if !isFinite(v.X) {
		v.X, changed = fallback.X, true
	}
	if !isFinite(v.Y) {
		v.Y, changed = fallback.Y, true
	}
	if !isFinite(v.Z) {
		v.Z, changed = fallback.Z, true
	}
	return v, changed
}

// YawTowards returns the heading in degrees that faces from v towards o on the
// horizontal plane. 0 faces +Z, 90 faces +X. ok is false when the two points
// are vertically aligned and no heading can be derived.
func (v Vec3) YawTowards(o Vec3) (yaw float64, ok bool) {
	dx, dz := o.X-v.X, o.Z-v.Z
	if math.Abs(dx) < 1e-9 && math.Abs(dz) < 1e-9 {
		return 0, false
	}
	return NormalizeAngle(math.Atan2(dx, dz) * 180 / math.Pi), true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// String returns the vector as "(x, y, z)".
func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}
