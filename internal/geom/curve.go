package geom

import (
	"errors"
	"math"
)

// ErrNonFinite is returned when a curve is built from control points that
// contain NaN or infinite coordinates.
var ErrNonFinite = errors.New("geom: non-finite control point")

// ErrTooFewPoints is returned when a spline is built from fewer than two points.
var ErrTooFewPoints = errors.New("geom: spline needs at least two points")

// CatmullRom evaluates a uniform Catmull-Rom segment between p1 and p2 at t in [0, 1].
func CatmullRom(p0, p1, p2, p3 Vec3, t float64) Vec3 {
	t2 := t * t
	t3 := t2 * t
	f := func(a, b, c, d float64) float64 {
		return 0.5 * (2*b +
			(-a+c)*t +
			(2*a-5*b+4*c-d)*t2 +
			(-a+3*b-3*c+d)*t3)
	}
	return Vec3{
		X: f(p0.X, p1.X, p2.X, p3.X),
		Y: f(p0.Y, p1.Y, p2.Y, p3.Y),
		Z: f(p0.Z, p1.Z, p2.Z, p3.Z),
	}
}

// Spline is a Catmull-Rom curve passing through every control point. The
// curve parameter is spread uniformly over the spans, so with an odd number of
// points t=0.5 lands exactly on the middle point.
type Spline struct {
	points []Vec3
}

// NewSpline builds a spline through points. The end tangents are formed by
// mirroring the second and second-to-last points.
func NewSpline(points ...Vec3) (*Spline, error) {
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}
	for _, p := range points {
		if !p.IsFinite() {
			return nil, ErrNonFinite
		}
	}
	n := len(points)
	padded := make([]Vec3, 0, n+2)
	padded = append(padded, points[0].Scale(2).Sub(points[1]))
	padded = append(padded, points...)
	padded = append(padded, points[n-1].Scale(2).Sub(points[n-2]))
	return &Spline{points: padded}, nil
}

// At samples the spline at t, clamped to [0, 1].
func (s *Spline) At(t float64) Vec3 {
	t = math.Max(0, math.Min(1, t))
	spans := len(s.points) - 3
	pos := t * float64(spans)
	i := int(math.Floor(pos))
	if i >= spans {
		i = spans - 1
	}
	local := pos - float64(i)
	return CatmullRom(s.points[i], s.points[i+1], s.points[i+2], s.points[i+3], local)
}

// StairArc returns the five control points of a hop over a stair edge: start,
// a quarter point, a raised midpoint, a three-quarter point and end. The
// midpoint sits jumpHeight above the higher of the two endpoints.
func StairArc(start, end Vec3, jumpHeight float64) [5]Vec3 {
	mid := Lerp(start, end, 0.5)
	mid.Y = math.Max(start.Y, end.Y) + jumpHeight
	return [5]Vec3{
		start,
		Lerp(start, mid, 0.5),
		mid,
		Lerp(mid, end, 0.5),
		end,
	}
}
