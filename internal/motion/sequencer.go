// Package motion turns a route of hops into smooth, interruptible avatar
// motion that is advanced once per tick.
package motion

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"

	"github.com/samdwyer/pivotwalk/internal/geom"
	"github.com/samdwyer/pivotwalk/internal/telemetry"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
)

// State is the sequencer's top-level state.
type State int

const (
	// StateIdle means the avatar is resting on a node.
	StateIdle State = iota
	// StateWalking means a route is being followed.
	StateWalking
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	default:
		return "unknown"
	}
}

// Phase is the sub-state of the current segment while walking.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseRotating
	PhaseMoving
	PhaseArriving
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseRotating:
		return "rotating"
	case PhaseMoving:
		return "moving"
	case PhaseArriving:
		return "arriving"
	default:
		return "unknown"
	}
}

// EventKind identifies a milestone.
type EventKind int

const (
	// EventArrived fires once per hop when the avatar reaches its node.
	EventArrived EventKind = iota
	// EventPathComplete fires after the last hop's arrival.
	EventPathComplete
)

// String returns a human-readable event name.
func (k EventKind) String() string {
	switch k {
	case EventArrived:
		return "arrived"
	case EventPathComplete:
		return "path_complete"
	default:
		return "unknown"
	}
}

// Event is a milestone produced by Advance.
type Event struct {
	Kind      EventKind
	Traversal uuid.UUID
	Node      *walkgraph.Node // Arrived node; the final node for EventPathComplete
	Hop       int             // Zero-based hop index within the route
}

// Step is the outcome of one Advance call.
type Step struct {
	Events   []Event
	Position geom.Vec3
	Yaw      float64
}

// Sequencer owns the avatar's position and facing while a route is being
// walked. It is driven by Advance once per tick and never blocks.
type Sequencer struct {
	cfg    Config
	logger *slog.Logger

	recoveries    metric.Int64Counter
	recoveryCount int
	cancelledLive mapset.Set[uuid.UUID] // traversals cancelled since the last Advance

	traversal uuid.UUID
	state     State
	phase     Phase
	queue     []*walkgraph.Node
	seg       *Segment
	hop       int
	elapsed   float64 // seconds spent in the current phase
	turned    float64 // seconds spent turning during the current segment
	pos       geom.Vec3
	yaw       float64
	last      *walkgraph.Node
}

// New creates an idle sequencer at the origin.
func New(cfg Config, logger *slog.Logger) *Sequencer {
	if logger == nil {
		logger = slog.Default()
	}
	counter, err := telemetry.Meter("motion").Int64Counter(
		"motion.recoveries",
		metric.WithDescription("Segments that needed a non-finite position or arc fallback"),
	)
	if err != nil {
		counter = metricnoop.Int64Counter{}
	}
	return &Sequencer{
		cfg:           cfg.withDefaults(),
		logger:        logger.With("component", "motion"),
		recoveries:    counter,
		cancelledLive: mapset.New[uuid.UUID](),
	}
}

// Config returns the effective configuration.
func (s *Sequencer) Config() Config { return s.cfg }

// State returns the top-level state.
func (s *Sequencer) State() State { return s.state }

// Phase returns the current segment phase.
func (s *Sequencer) Phase() Phase { return s.phase }

// Walking reports whether a route is active.
func (s *Sequencer) Walking() bool { return s.state == StateWalking }

// Position returns the avatar's current interpolated position.
func (s *Sequencer) Position() geom.Vec3 { return s.pos }

// Yaw returns the avatar's heading in degrees.
func (s *Sequencer) Yaw() float64 { return s.yaw }

// Traversal returns the id of the active route, or uuid.Nil when idle.
func (s *Sequencer) Traversal() uuid.UUID { return s.traversal }

// LastNode returns the most recently arrived-at node, if any.
func (s *Sequencer) LastNode() *walkgraph.Node { return s.last }

// Segment returns the segment in progress, or nil when idle.
func (s *Sequencer) Segment() *Segment { return s.seg }

// Remaining returns how many hops are left, including the one in progress.
func (s *Sequencer) Remaining() int {
	n := len(s.queue)
	if s.seg != nil {
		n++
	}
	return n
}

// Recoveries returns how many segments needed a fallback so far.
func (s *Sequencer) Recoveries() int { return s.recoveryCount }

// Place puts the avatar at pos facing yaw, standing on node (which may be
// nil). Any active route is cancelled.
func (s *Sequencer) Place(pos geom.Vec3, yaw float64, node *walkgraph.Node) {
	s.Cancel()
	s.pos = pos
	s.yaw = geom.NormalizeAngle(yaw)
	s.last = node
}

// Start begins walking hops from the current position, cancelling any route
// already in progress. It returns the new route's id, or uuid.Nil if hops is
// empty and the sequencer stays idle.
func (s *Sequencer) Start(hops []*walkgraph.Node) uuid.UUID {
	s.Cancel()
	if len(hops) == 0 {
		return uuid.Nil
	}

	s.traversal = uuid.New()
	s.state = StateWalking
	s.queue = append([]*walkgraph.Node(nil), hops...)
	s.hop = -1
	s.nextSegment()

	s.logger.Debug("route started", "traversal", s.traversal, "hops", len(hops))
	return s.traversal
}

// Cancel drops the active route immediately. No further events are produced
// for it, including ones already computed during the current tick; use Live
// to filter those. It reports whether a route was active.
func (s *Sequencer) Cancel() bool {
	if s.state != StateWalking {
		return false
	}
	s.logger.Debug("route cancelled", "traversal", s.traversal, "remaining", s.Remaining())
	s.cancelledLive.Put(s.traversal)
	s.reset()
	return true
}

// Live reports whether ev belongs to a route that has not been cancelled
// since the last Advance.
func (s *Sequencer) Live(ev Event) bool {
	return !s.cancelledLive.Has(ev.Traversal)
}

// Advance moves the avatar forward by dt seconds. Time left over after a hop
// completes carries into the next hop within the same call.
func (s *Sequencer) Advance(dt float64) Step {
	if s.cancelledLive.Size() > 0 {
		s.cancelledLive = mapset.New[uuid.UUID]()
	}

	var events []Event
	remaining := dt
	if remaining < 0 {
		remaining = 0
	}

	for s.state == StateWalking {
		seg := s.seg
		switch s.phase {
		case PhaseRotating:
			need := s.cfg.TurnDuration - s.elapsed
			if remaining < need {
				s.elapsed += remaining
				s.turned = s.elapsed
				s.yaw = seg.YawAt(s.turned, s.cfg.TurnDuration)
				return s.step(events)
			}
			remaining -= need
			s.yaw = seg.ToYaw
			s.turned = s.cfg.TurnDuration
			s.phase = PhaseMoving
			s.elapsed = 0

		case PhaseMoving:
			need := seg.Duration - s.elapsed
			if remaining < need {
				s.elapsed += remaining
				s.pos = seg.At(s.elapsed / seg.Duration)
				if s.cfg.Rotation == RotateContinuous {
					s.turned += remaining
					s.yaw = seg.YawAt(s.turned, s.cfg.TurnDuration)
				}
				if s.pos.Dist(seg.To) >= s.cfg.ArriveEpsilon {
					return s.step(events)
				}
				remaining = 0
			} else {
				remaining -= need
			}
			s.elapsed = seg.Duration
			s.pos = seg.At(1)
			s.phase = PhaseArriving

		case PhaseArriving:
			s.pos = seg.To
			if seg.Rotate {
				s.yaw = seg.ToYaw
			}
			s.last = seg.Node
			events = append(events, Event{
				Kind:      EventArrived,
				Traversal: s.traversal,
				Node:      seg.Node,
				Hop:       s.hop,
			})
			if len(s.queue) > 0 {
				s.nextSegment()
				continue
			}
			events = append(events, Event{
				Kind:      EventPathComplete,
				Traversal: s.traversal,
				Node:      seg.Node,
				Hop:       s.hop,
			})
			s.logger.Debug("route complete", "traversal", s.traversal, "node", seg.Node.ID)
			s.reset()

		default:
			// Walking without a phase cannot happen; recover to idle.
			s.reset()
		}
	}
	return s.step(events)
}

func (s *Sequencer) step(events []Event) Step {
	return Step{Events: events, Position: s.pos, Yaw: s.yaw}
}

func (s *Sequencer) reset() {
	s.state = StateIdle
	s.phase = PhaseNone
	s.queue = nil
	s.seg = nil
	s.hop = 0
	s.elapsed = 0
	s.turned = 0
	s.traversal = uuid.Nil
}

// nextSegment pops the next hop and builds its segment from the current position.
func (s *Sequencer) nextSegment() {
	node := s.queue[0]
	s.queue = s.queue[1:]
	s.hop++

	seg := s.buildSegment(node)
	s.seg = seg
	s.elapsed = 0
	s.turned = 0

	switch {
	case seg.Rotate && s.cfg.Rotation == RotateBeforeMove && s.cfg.TurnDuration > 0:
		s.phase = PhaseRotating
	default:
		s.phase = PhaseMoving
	}
}

func (s *Sequencer) buildSegment(node *walkgraph.Node) *Segment {
	from := s.pos
	to := node.WalkPoint()
	if !to.IsFinite() {
		to, _ = to.Sanitize(s.fallbackTarget(node))
		s.recover("nonfinite_target", node, "walk point is not finite; using offset fallback", "target", to.String())
	}

	seg := &Segment{
		Node:    node,
		From:    from,
		To:      to,
		Kind:    Linear,
		FromYaw: s.yaw,
		ToYaw:   s.yaw,
	}

	duration := from.Dist(to) / s.cfg.BaseSpeed
	if node.Stair {
		duration *= s.cfg.StairSlowdown
		pts := geom.StairArc(from, to, s.cfg.JumpHeight)
		spline, err := geom.NewSpline(pts[:]...)
		if err != nil {
			s.recover("arc_fallback", node, "stair arc rejected; moving in a straight line", "error", err)
		} else {
			seg.Kind = Arc
			seg.spline = spline
		}
	}
	seg.Duration = duration

	if !node.DontRotate {
		if yaw, ok := from.YawTowards(to); ok {
			seg.Rotate = true
			seg.ToYaw = yaw
		}
	}
	return seg
}

// fallbackTarget rebuilds a walk point for node from the avatar's current
// footing and node's static offsets.
func (s *Sequencer) fallbackTarget(node *walkgraph.Node) geom.Vec3 {
	base := s.pos
	if s.last != nil {
		base = base.Sub(s.last.Lift())
	}
	return base.Add(node.Lift())
}

func (s *Sequencer) recover(kind string, node *walkgraph.Node, msg string, args ...any) {
	s.recoveryCount++
	s.recoveries.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("recovery", kind),
	))
	args = append([]any{"node", node.ID, "recovery", kind}, args...)
	s.logger.Warn(msg, args...)
}
