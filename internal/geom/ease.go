package geom

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(t float64) float64

// Linear returns t unchanged.
func Linear(t float64) float64 { return t }

// OutBack overshoots the target slightly before settling. Pivot rotations use it.
func OutBack(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	u := t - 1
	return 1 + c3*u*u*u + c1*u*u
}
