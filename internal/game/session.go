package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/pivotwalk/internal/condition"
	"github.com/samdwyer/pivotwalk/internal/entity"
	"github.com/samdwyer/pivotwalk/internal/level"
	"github.com/samdwyer/pivotwalk/internal/levelsignal"
	"github.com/samdwyer/pivotwalk/internal/motion"
	"github.com/samdwyer/pivotwalk/internal/pathfind"
	"github.com/samdwyer/pivotwalk/internal/telemetry"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
	"github.com/samdwyer/pivotwalk/internal/world"
)

// Input is the player's intent for one tick.
type Input struct {
	Click  *walkgraph.NodeID // Node the player clicked, if any
	Rotate int              // -1, 0 or +1 steps of the level's rotate control
	Reset  bool             // Rebuild the level from its definition
}

// TickResult reports what happened during one tick.
type TickResult struct {
	State   State
	Rules   condition.Result // Outcome of the last evaluator pass
	Route   []walkgraph.NodeID
	PathErr error // Set when a click could not be routed
	Events  []motion.Event
	Signals []levelsignal.Kind
	Reset   bool
}

// Session is one level in play. It owns every piece of simulation state and
// is advanced by Tick from a single goroutine.
type Session struct {
	def    *level.Def
	built  *level.Built
	logger *slog.Logger
	mcfg   motion.Config

	seq    *motion.Sequencer
	router *levelsignal.Router
	avatar *entity.Avatar
	state  State
}

// NewSession builds def and places the avatar on its start node.
func NewSession(ctx context.Context, def *level.Def, mcfg motion.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		def:    def,
		logger: logger.With("level", def.ID),
		mcfg:   mcfg,
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load(ctx context.Context) error {
	built, err := s.def.Build(ctx, s.logger)
	if err != nil {
		return fmt.Errorf("failed to build level %s: %w", s.def.ID, err)
	}
	s.built = built
	s.state = StatePlaying

	s.seq = motion.New(s.mcfg, s.logger)
	start := built.Start
	s.seq.Place(start.WalkPoint(), s.def.StartYaw, start)
	s.avatar = entity.NewAvatar(start.WalkPoint(), s.def.StartYaw, start.ID)

	s.router = levelsignal.NewRouter(built.Final, levelsignal.HandlerFuncs{
		OnIntermediate: s.onIntermediate,
		OnFinal:        s.onFinal,
	}, s.logger)

	built.Evaluator.Apply(built.Graph, built.Pivots)
	return nil
}

// Level returns the definition being played.
func (s *Session) Level() *level.Def { return s.def }

// Graph returns the live walk graph.
func (s *Session) Graph() *walkgraph.Graph { return s.built.Graph }

// Pivots returns the level's pivots.
func (s *Session) Pivots() *world.Pivots { return s.built.Pivots }

// Avatar returns the avatar.
func (s *Session) Avatar() *entity.Avatar { return s.avatar }

// Sequencer returns the avatar's motion sequencer.
func (s *Session) Sequencer() *motion.Sequencer { return s.seq }

// State returns the session state.
func (s *Session) State() State { return s.state }

// Tick advances the level by dt seconds. The order is fixed: pivots animate,
// rules re-derive links, the ground probe runs, input is applied, the avatar
// moves, and arrivals are dispatched. A dispatch that changes a pivot triggers
// a second rule pass so later reads in the same tick see the new links.
func (s *Session) Tick(ctx context.Context, dt float64, in Input) TickResult {
	if in.Reset {
		if err := s.load(ctx); err != nil {
			// The definition built before, so this only fails if it was
			// mutated in place; keep playing the old state.
			s.logger.Error("reset failed", "error", err)
		} else {
			s.logger.Info("level reset")
		}
		return TickResult{State: s.state, Reset: true}
	}

	b := s.built
	b.Pivots.Advance(dt)
	res := TickResult{Rules: b.Evaluator.Apply(b.Graph, b.Pivots)}

	id, ok := world.Probe(b.Graph, s.seq.Position(), world.ProbeRadius)
	s.avatar.Ground(id, ok)

	if s.state == StatePlaying {
		if in.Rotate != 0 {
			s.rotate(in.Rotate)
		}
		if in.Click != nil {
			res.Route, res.PathErr = s.click(ctx, *in.Click)
		}
	}

	step := s.seq.Advance(dt)
	s.avatar.Sync(step.Position, step.Yaw)

	dispatched := false
	for _, ev := range step.Events {
		if !s.seq.Live(ev) {
			continue
		}
		res.Events = append(res.Events, ev)
		if ev.Kind != motion.EventArrived {
			continue
		}
		s.avatar.Ground(ev.Node.ID, true)
		if kind := s.router.Arrived(ev.Node); kind != levelsignal.KindNone {
			res.Signals = append(res.Signals, kind)
			dispatched = true
		}
	}
	if dispatched {
		res.Rules = b.Evaluator.Apply(b.Graph, b.Pivots)
	}

	res.State = s.state
	return res
}

// rotate turns the level's rotate pivot. It is ignored while walking so the
// ground cannot move out from under a route in progress.
func (s *Session) rotate(dir int) {
	b := s.built
	if b.RotatePivot == "" {
		return
	}
	if s.seq.Walking() {
		s.logger.Debug("rotate ignored while walking")
		return
	}
	p, ok := b.Pivots.Get(b.RotatePivot)
	if !ok {
		return
	}
	step := b.RotateStep
	if dir < 0 {
		step = step.Scale(-1)
	}
	p.RotateBy(step, world.DefaultRotateDuration)
}

// click routes the avatar to goal from the node under its current position.
// Unknown goals are ignored; an unreachable goal leaves the avatar untouched.
func (s *Session) click(ctx context.Context, goal walkgraph.NodeID) ([]walkgraph.NodeID, error) {
	ctx, span := telemetry.Tracer("game").Start(ctx, "session.click")
	defer span.End()

	g := s.built.Graph
	goalNode, ok := g.Node(goal)
	if !ok {
		s.logger.Debug("click on unknown node ignored", "node", goal)
		return nil, nil
	}

	from := s.avatar.Node
	if !s.avatar.Grounded {
		if last := s.seq.LastNode(); last != nil {
			from = last.ID
		}
	}
	span.SetAttributes(
		attribute.String("click.from", string(from)),
		attribute.String("click.goal", string(goal)),
		attribute.Bool("click.walking", s.seq.Walking()),
	)

	hops, err := pathfind.Find(ctx, g, from, goal)
	if err != nil {
		if errors.Is(err, pathfind.ErrNoPath) {
			s.logger.Debug("no route", "from", from, "goal", goal)
		} else {
			s.logger.Warn("route lookup failed", "from", from, "goal", goal, "error", err)
		}
		return nil, err
	}

	nodes, err := pathfind.Resolve(g, hops)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		if !s.seq.Walking() {
			return hops, nil
		}
		// Already over the goal but mid-segment: settle back onto it.
		nodes = []*walkgraph.Node{goalNode}
	}

	id := s.seq.Start(nodes)
	span.SetAttributes(
		attribute.String("click.traversal", id.String()),
		attribute.Int("click.hops", len(nodes)),
	)
	s.logger.Debug("route started", "from", from, "goal", goal, "hops", len(nodes))
	return hops, nil
}

func (s *Session) onIntermediate(node *walkgraph.Node) {
	action, ok := s.built.Buttons[node.ID]
	if !ok {
		return
	}
	p, ok := s.built.Pivots.Get(action.Pivot)
	if !ok {
		return
	}
	p.RotateTo(action.Orientation, world.DefaultRotateDuration)
}

func (s *Session) onFinal(node *walkgraph.Node) {
	s.state = StateLevelComplete
	s.seq.Cancel()
	s.logger.Info("level complete", "node", node.ID)
}
