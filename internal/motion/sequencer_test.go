package motion

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/samdwyer/pivotwalk/internal/geom"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
)

func node(id walkgraph.NodeID, x, y, z float64) *walkgraph.Node {
	n := walkgraph.NewNode(id, geom.V(x, y, z))
	return &n
}

// straightRoute returns count nodes one unit apart along +X, starting at x=1.
func straightRoute(count int) []*walkgraph.Node {
	hops := make([]*walkgraph.Node, count)
	for i := range hops {
		hops[i] = node(walkgraph.NodeID(rune('A'+i)), float64(i+1), 0, 0)
	}
	return hops
}

func newSequencer(t *testing.T, cfg Config) *Sequencer {
	t.Helper()
	s := New(cfg, nil)
	start := node("start", 0, 0, 0)
	s.Place(start.WalkPoint(), 90, start)
	return s
}

// drain advances in fixed steps until the sequencer goes idle.
func drain(t *testing.T, s *Sequencer, dt float64) []Event {
	t.Helper()
	var events []Event
	for i := 0; i < 10000 && s.Walking(); i++ {
		events = append(events, s.Advance(dt).Events...)
	}
	require.False(t, s.Walking(), "route never finished")
	return events
}

func TestRouteProducesOneArrivalPerHop(t *testing.T) {
	s := newSequencer(t, DefaultConfig())
	hops := straightRoute(3)

	id := s.Start(hops)
	require.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, StateWalking, s.State())
	assert.Equal(t, 3, s.Remaining())

	events := drain(t, s, 1.0/60)
	require.Len(t, events, 4)
	for i, ev := range events[:3] {
		assert.Equal(t, EventArrived, ev.Kind)
		assert.Equal(t, hops[i].ID, ev.Node.ID)
		assert.Equal(t, i, ev.Hop)
		assert.Equal(t, id, ev.Traversal)
	}
	assert.Equal(t, EventPathComplete, events[3].Kind)
	assert.Equal(t, hops[2].ID, events[3].Node.ID)

	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, PhaseNone, s.Phase())
	assert.Equal(t, uuid.Nil, s.Traversal())
	assert.Equal(t, hops[2].WalkPoint(), s.Position())
	assert.Equal(t, hops[2], s.LastNode())
}

func TestLeftoverTimeCarriesIntoNextHop(t *testing.T) {
	s := newSequencer(t, DefaultConfig())
	hops := straightRoute(4)
	s.Start(hops)

	// Each hop is 1 unit at 5 units/s, so one large step covers the route.
	step := s.Advance(10)
	require.Len(t, step.Events, 5)
	assert.Equal(t, EventPathComplete, step.Events[4].Kind)
	assert.Equal(t, hops[3].WalkPoint(), step.Position)
	assert.False(t, s.Walking())
}

func TestPartialAdvanceInterpolates(t *testing.T) {
	s := newSequencer(t, DefaultConfig())
	hops := straightRoute(1)
	s.Start(hops)

	step := s.Advance(0.1)
	assert.Empty(t, step.Events)
	assert.InDelta(t, 0.5, step.Position.X, 1e-9)
	assert.InDelta(t, 0.5, step.Position.Y, 1e-9)
	assert.Equal(t, PhaseMoving, s.Phase())
}

func TestCancelStopsEvents(t *testing.T) {
	s := newSequencer(t, DefaultConfig())
	s.Start(straightRoute(3))
	s.Advance(0.1)

	assert.True(t, s.Cancel())
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, 0, s.Remaining())

	step := s.Advance(5)
	assert.Empty(t, step.Events)
	assert.False(t, s.Cancel(), "second cancel is a no-op")
}

func TestCancelledEventsAreNotLive(t *testing.T) {
	s := newSequencer(t, DefaultConfig())
	s.Start(straightRoute(3))

	// First arrival happens at 0.2s.
	step := s.Advance(0.25)
	require.Len(t, step.Events, 1)
	assert.True(t, s.Live(step.Events[0]))

	s.Cancel()
	assert.False(t, s.Live(step.Events[0]))
}

func TestStartReplacesActiveRoute(t *testing.T) {
	s := newSequencer(t, DefaultConfig())
	first := s.Start(straightRoute(3))
	step := s.Advance(0.25)
	require.Len(t, step.Events, 1)

	back := []*walkgraph.Node{node("home", 0, 0, 0)}
	second := s.Start(back)
	assert.NotEqual(t, first, second)
	assert.False(t, s.Live(step.Events[0]))

	events := drain(t, s, 1.0/60)
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, second, ev.Traversal)
	}
	assert.Equal(t, walkgraph.NodeID("home"), events[0].Node.ID)
}

func TestEmptyStartStaysIdle(t *testing.T) {
	s := newSequencer(t, DefaultConfig())
	assert.Equal(t, uuid.Nil, s.Start(nil))
	assert.False(t, s.Walking())
	assert.Empty(t, s.Advance(1).Events)
}

func TestStairHopArcsOverMidpoint(t *testing.T) {
	cfg := DefaultConfig()
	s := New(cfg, nil)
	s.Place(geom.V(0, 0, 0), 0, nil)

	stair := node("stair", 1, 0, 0)
	stair.Stair = true
	stair.WalkOffset = 1
	stair.StairOffset = 0
	require.Equal(t, geom.V(1, 1, 0), stair.WalkPoint())

	s.Start([]*walkgraph.Node{stair})
	seg := s.Segment()
	require.NotNil(t, seg)
	assert.Equal(t, Arc, seg.Kind)
	assert.InDelta(t, 1.3, seg.At(0.5).Y, 1e-9)
	assert.InDelta(t, 0.5, seg.At(0.5).X, 1e-9)

	flat := math.Sqrt(2) / cfg.BaseSpeed
	assert.InDelta(t, flat*cfg.StairSlowdown, seg.Duration, 1e-9)

	drain(t, s, 1.0/60)
	assert.Equal(t, stair.WalkPoint(), s.Position())
	assert.Zero(t, s.Recoveries())
}

func TestStairArcFallsBackToStraightLine(t *testing.T) {
	tests := []struct {
		name string
		jump float64
	}{
		{"infinite jump", math.Inf(1)},
		{"nan jump", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.JumpHeight = tt.jump
			s := New(cfg, nil)
			s.Place(geom.V(0, 0, 0), 0, nil)

			stair := node("stair", 1, 0, 0)
			stair.Stair = true
			stair.WalkOffset = 1
			stair.StairOffset = 0
			flat := node("flat", 2, 0.5, 0)

			s.Start([]*walkgraph.Node{stair, flat})
			seg := s.Segment()
			require.NotNil(t, seg)
			assert.Equal(t, Linear, seg.Kind)
			assert.Equal(t, geom.V(0.5, 0.5, 0), seg.At(0.5))
			assert.Equal(t, 1, s.Recoveries())

			var flatSeg *Segment
			for i := 0; i < 10000 && s.Walking(); i++ {
				step := s.Advance(1.0 / 60)
				require.True(t, step.Position.IsFinite(), "position %s", step.Position)
				if cur := s.Segment(); cur != nil && cur.Node.ID == flat.ID {
					flatSeg = cur
				}
			}
			require.False(t, s.Walking())
			require.NotNil(t, flatSeg)
			assert.Equal(t, Linear, flatSeg.Kind)
			assert.InDelta(t, 1/cfg.BaseSpeed, flatSeg.Duration, 1e-9)
			assert.Equal(t, 1, s.Recoveries(), "later hops are unaffected")
			assert.Equal(t, flat.WalkPoint(), s.Position())
		})
	}
}

func TestNonFiniteTargetRecovers(t *testing.T) {
	s := newSequencer(t, DefaultConfig())
	broken := node("broken", math.NaN(), 0, 1)

	s.Start([]*walkgraph.Node{broken})
	seg := s.Segment()
	require.NotNil(t, seg)
	assert.True(t, seg.To.IsFinite())
	assert.Equal(t, geom.V(0, 0.5, 1), seg.To)
	assert.Equal(t, 1, s.Recoveries())

	events := drain(t, s, 1.0/60)
	require.Len(t, events, 2)
	assert.True(t, s.Position().IsFinite())
}

func TestFacing(t *testing.T) {
	t.Run("turns towards hop", func(t *testing.T) {
		s := newSequencer(t, DefaultConfig())
		s.Start([]*walkgraph.Node{node("north", 0, 0, 1)})
		drain(t, s, 1.0/60)
		assert.InDelta(t, 0, s.Yaw(), 1e-9)
	})

	t.Run("dont rotate keeps facing", func(t *testing.T) {
		s := newSequencer(t, DefaultConfig())
		n := node("north", 0, 0, 1)
		n.DontRotate = true
		s.Start([]*walkgraph.Node{n})
		assert.False(t, s.Segment().Rotate)
		drain(t, s, 1.0/60)
		assert.InDelta(t, 90, s.Yaw(), 1e-9)
	})

	t.Run("vertical hop keeps facing", func(t *testing.T) {
		s := newSequencer(t, DefaultConfig())
		s.Start([]*walkgraph.Node{node("above", 0, 1, 0)})
		assert.False(t, s.Segment().Rotate)
		drain(t, s, 1.0/60)
		assert.InDelta(t, 90, s.Yaw(), 1e-9)
	})
}

func TestRotateBeforeMove(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rotation = RotateBeforeMove
	s := newSequencer(t, cfg)
	start := s.Position()

	s.Start([]*walkgraph.Node{node("north", 0, 0, 1)})
	assert.Equal(t, PhaseRotating, s.Phase())

	step := s.Advance(0.05)
	assert.Equal(t, PhaseRotating, s.Phase())
	assert.Equal(t, start, step.Position, "no movement while turning")
	assert.InDelta(t, 45, step.Yaw, 1e-9)

	step = s.Advance(0.06)
	assert.Equal(t, PhaseMoving, s.Phase())
	assert.InDelta(t, 0, step.Yaw, 1e-9)
	assert.Greater(t, step.Position.Z, start.Z)
}

func TestConfigDefaultsFillInvalidValues(t *testing.T) {
	d := DefaultConfig()
	tests := []struct {
		name string
		cfg  Config
	}{
		{"out of range", Config{BaseSpeed: -1, StairSlowdown: 0.5, ArriveEpsilon: 0, TurnDuration: -1}},
		{"nan", Config{BaseSpeed: math.NaN(), StairSlowdown: math.NaN(), ArriveEpsilon: math.NaN(), TurnDuration: math.NaN()}},
		{"infinite", Config{BaseSpeed: math.Inf(1), StairSlowdown: math.Inf(1), ArriveEpsilon: math.Inf(1), TurnDuration: math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New(tt.cfg, nil).Config()
			assert.Equal(t, d.BaseSpeed, cfg.BaseSpeed)
			assert.Equal(t, d.StairSlowdown, cfg.StairSlowdown)
			assert.Equal(t, d.ArriveEpsilon, cfg.ArriveEpsilon)
			assert.Equal(t, d.TurnDuration, cfg.TurnDuration)
		})
	}
}

func TestNaNSpeedDoesNotSkipRoute(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseSpeed = math.NaN()
	s := newSequencer(t, cfg)
	s.Start(straightRoute(5))

	step := s.Advance(1.0 / 60)
	assert.Empty(t, step.Events)
	assert.True(t, s.Walking())
	assert.InDelta(t, DefaultConfig().BaseSpeed/60, s.Position().X, 1e-9)
}

// recoveryTotals collects the motion.recoveries counter by recovery kind.
func recoveryTotals(t *testing.T, reader sdkmetric.Reader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "motion.recoveries" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "unexpected data %T", m.Data)
			for _, dp := range sum.DataPoints {
				kind, _ := dp.Attributes.Value("recovery")
				totals[kind.AsString()] += dp.Value
			}
		}
	}
	return totals
}

func TestRecoveriesAreCounted(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	cfg := DefaultConfig()
	cfg.JumpHeight = math.NaN()
	s := newSequencer(t, cfg)

	stair := node("stair", 1, 0, 0)
	stair.Stair = true
	s.Start([]*walkgraph.Node{stair, node("broken", math.NaN(), 0, 1)})
	drain(t, s, 1.0/60)

	assert.Equal(t, 2, s.Recoveries())
	assert.Equal(t, map[string]int64{"arc_fallback": 1, "nonfinite_target": 1}, recoveryTotals(t, reader))
}
