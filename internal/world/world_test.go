package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/pivotwalk/internal/geom"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
)

func TestPivotRotateBySettlesOnTarget(t *testing.T) {
	p := NewPivot("bridge", geom.E(0, 0, 0))
	require.True(t, p.Settled())

	p.RotateBy(geom.E(0, 90, 0), DefaultRotateDuration)
	assert.False(t, p.Settled())

	p.Advance(0.2)
	assert.False(t, p.Settled())
	assert.NotEqual(t, geom.E(0, 90, 0), p.Orientation())

	p.Advance(1)
	assert.True(t, p.Settled())
	assert.Equal(t, geom.E(0, 90, 0), p.Orientation())
}

func TestPivotOvershootsWithOutBack(t *testing.T) {
	p := NewPivot("bridge", geom.E(0, 0, 0))
	p.RotateBy(geom.E(0, 90, 0), 1)

	p.Advance(0.8)
	assert.Greater(t, p.Raw().Y, 90.0)
}

func TestPivotRotateByCompletesRunningRotation(t *testing.T) {
	p := NewPivot("bridge", geom.E(0, 0, 0))
	p.RotateBy(geom.E(0, 90, 0), DefaultRotateDuration)
	p.Advance(0.1)

	p.RotateBy(geom.E(0, 90, 0), DefaultRotateDuration)
	p.Advance(1)
	assert.Equal(t, geom.E(0, 180, 0), p.Orientation())

	p.RotateBy(geom.E(0, 180, 0), 0)
	assert.True(t, p.Settled())
	assert.Equal(t, geom.E(0, 0, 0), p.Orientation())
}

func TestPivotRotateToTakesShortestArc(t *testing.T) {
	p := NewPivot("tower", geom.E(0, 0, 0))
	p.RotateTo(geom.E(0, 270, 0), 1)

	p.Advance(0.3)
	assert.Less(t, p.Raw().Y, 0.0, "turns through negative angles")

	p.Advance(1)
	assert.Equal(t, geom.E(0, 270, 0), p.Orientation())
}

func TestPivotsOrientationSource(t *testing.T) {
	ps := NewPivots()
	require.NoError(t, ps.Add(NewPivot("a", geom.E(0, 90.4, 0))))
	require.NoError(t, ps.Add(NewPivot("b", geom.E(-90, 0, 0))))
	assert.ErrorIs(t, ps.Add(NewPivot("a", geom.E(0, 0, 0))), ErrDuplicatePivot)
	assert.Equal(t, 2, ps.Count())

	o, ok := ps.Orientation("a")
	require.True(t, ok)
	assert.Equal(t, geom.E(0, 90, 0), o)

	o, ok = ps.Orientation("b")
	require.True(t, ok)
	assert.Equal(t, geom.E(270, 0, 0), o)

	_, ok = ps.Orientation("missing")
	assert.False(t, ok)

	b, _ := ps.Get("b")
	b.RotateBy(geom.E(90, 0, 0), 0.5)
	assert.False(t, ps.Settled())
	ps.Advance(0.5)
	assert.True(t, ps.Settled())
	o, _ = ps.Orientation("b")
	assert.Equal(t, geom.E(0, 0, 0), o)

	ids := []string{}
	for _, p := range ps.All() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}

func probeGraph(t *testing.T) *walkgraph.Graph {
	t.Helper()
	g := walkgraph.New()
	for _, n := range []walkgraph.Node{
		walkgraph.NewNode("low", geom.V(0, 0, 0)),
		walkgraph.NewNode("high", geom.V(0, 1, 0)),
		walkgraph.NewNode("side", geom.V(2, 0, 0)),
		walkgraph.NewNode("twin", geom.V(2, 0, 0)),
		walkgraph.NewNode("broken", geom.V(math.NaN(), 0, 0)),
	} {
		require.NoError(t, g.AddNode(n))
	}
	return g
}

func TestProbe(t *testing.T) {
	g := probeGraph(t)

	tests := []struct {
		name   string
		pos    geom.Vec3
		want   walkgraph.NodeID
		wantOK bool
	}{
		{"highest below wins", geom.V(0, 2, 0), "high", true},
		{"standing exactly on walk point", geom.V(0, 1.5, 0), "high", true},
		{"nodes above are ignored", geom.V(0, 1, 0), "low", true},
		{"within radius", geom.V(0.4, 0.5, 0), "low", true},
		{"outside radius", geom.V(1, 0.5, 0), "", false},
		{"tie goes to first added", geom.V(2, 0.5, 0), "side", true},
		{"below everything", geom.V(0, -1, 0), "", false},
		{"non-finite probe", geom.V(math.Inf(1), 0, 0), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Probe(g, tt.pos, 0)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProbeCustomRadius(t *testing.T) {
	g := probeGraph(t)
	id, ok := Probe(g, geom.V(1, 0.5, 0), 1.01)
	require.True(t, ok)
	assert.Equal(t, walkgraph.NodeID("low"), id)
}
