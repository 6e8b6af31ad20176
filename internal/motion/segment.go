package motion

import (
	"github.com/samdwyer/pivotwalk/internal/geom"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
)

// Interpolation is how a segment moves between its endpoints.
type Interpolation int

const (
	// Linear moves in a straight line.
	Linear Interpolation = iota
	// Arc hops over a raised midpoint, used for stairs.
	Arc
)

// String returns a human-readable interpolation name.
func (i Interpolation) String() string {
	switch i {
	case Linear:
		return "linear"
	case Arc:
		return "arc"
	default:
		return "unknown"
	}
}

// Segment is the motion for a single hop.
type Segment struct {
	Node     *walkgraph.Node
	From     geom.Vec3
	To       geom.Vec3
	Duration float64
	Kind     Interpolation

	Rotate  bool // False when the target node is marked DontRotate or the hop is vertical
	FromYaw float64
	ToYaw   float64

	spline *geom.Spline
}

// At returns the position at progress t in [0, 1].
func (s *Segment) At(t float64) geom.Vec3 {
	if t <= 0 {
		return s.From
	}
	if t >= 1 {
		return s.To
	}
	if s.Kind == Arc && s.spline != nil {
		if p := s.spline.At(t); p.IsFinite() {
			return p
		}
	}
	return geom.Lerp(s.From, s.To, t)
}

// YawAt returns the heading after turning for elapsed seconds out of turn.
func (s *Segment) YawAt(elapsed, turn float64) float64 {
	if !s.Rotate {
		return s.FromYaw
	}
	if turn <= 0 || elapsed >= turn {
		return s.ToYaw
	}
	return geom.LerpAngle(s.FromYaw, s.ToYaw, elapsed/turn)
}
