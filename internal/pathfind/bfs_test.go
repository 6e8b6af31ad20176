package pathfind

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/pivotwalk/internal/geom"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
)

// lineGraph builds ids[0] <-> ids[1] <-> ... with every link active.
func lineGraph(t *testing.T, ids ...walkgraph.NodeID) *walkgraph.Graph {
	t.Helper()
	g := walkgraph.New()
	for i, id := range ids {
		require.NoError(t, g.AddNode(walkgraph.NewNode(id, geom.V(float64(i), 0, 0))))
	}
	for i := 0; i+1 < len(ids); i++ {
		_, err := g.AddLink(ids[i], ids[i+1], true)
		require.NoError(t, err)
		_, err = g.AddLink(ids[i+1], ids[i], true)
		require.NoError(t, err)
	}
	return g
}

func TestFindLine(t *testing.T) {
	ctx := context.Background()
	g := lineGraph(t, "A", "B", "C", "D")

	hops, err := Find(ctx, g, "A", "D")
	require.NoError(t, err)
	assert.Equal(t, []walkgraph.NodeID{"B", "C", "D"}, hops)

	// B's first link points back to A, its second to C
	require.NoError(t, g.SetLinkActive("B", 1, false))
	_, err = Find(ctx, g, "A", "D")
	assert.ErrorIs(t, err, ErrNoPath)

	require.NoError(t, g.SetLinkActive("B", 1, true))
	hops, err = Find(ctx, g, "A", "D")
	require.NoError(t, err)
	assert.Equal(t, []walkgraph.NodeID{"B", "C", "D"}, hops, "reactivating the link restores the route")
}

func TestFindStartIsGoal(t *testing.T) {
	g := lineGraph(t, "A", "B")
	hops, err := Find(context.Background(), g, "A", "A")
	require.NoError(t, err)
	assert.Empty(t, hops)
	assert.NotNil(t, hops)
}

func TestFindUnknownNodes(t *testing.T) {
	g := lineGraph(t, "A", "B")
	_, err := Find(context.Background(), g, "X", "A")
	assert.ErrorIs(t, err, walkgraph.ErrUnknownNode)
	_, err = Find(context.Background(), g, "A", "X")
	assert.ErrorIs(t, err, walkgraph.ErrUnknownNode)
}

func TestFindDirectedLinks(t *testing.T) {
	g := walkgraph.New()
	require.NoError(t, g.AddNode(walkgraph.NewNode("A", geom.V(0, 0, 0))))
	require.NoError(t, g.AddNode(walkgraph.NewNode("B", geom.V(1, 0, 0))))
	_, err := g.AddLink("A", "B", true)
	require.NoError(t, err)

	_, err = Find(context.Background(), g, "A", "B")
	require.NoError(t, err)
	_, err = Find(context.Background(), g, "B", "A")
	assert.ErrorIs(t, err, ErrNoPath, "links are one-way")
}

func TestFindTieBreaksByDeclarationOrder(t *testing.T) {
	// Diamond: S -> {L, R} -> G. Both routes are two hops.
	build := func(first, second walkgraph.NodeID) *walkgraph.Graph {
		g := walkgraph.New()
		for _, id := range []walkgraph.NodeID{"S", "L", "R", "G"} {
			require.NoError(t, g.AddNode(walkgraph.NewNode(id, geom.Vec3{})))
		}
		for _, l := range [][2]walkgraph.NodeID{{"S", first}, {"S", second}, {"L", "G"}, {"R", "G"}} {
			_, err := g.AddLink(l[0], l[1], true)
			require.NoError(t, err)
		}
		return g
	}

	hops, err := Find(context.Background(), build("L", "R"), "S", "G")
	require.NoError(t, err)
	assert.Equal(t, []walkgraph.NodeID{"L", "G"}, hops)

	hops, err = Find(context.Background(), build("R", "L"), "S", "G")
	require.NoError(t, err)
	assert.Equal(t, []walkgraph.NodeID{"R", "G"}, hops)
}

func TestFindIsDeterministic(t *testing.T) {
	g := randomGraph(rand.New(rand.NewSource(7)), 30, 0.12)
	ctx := context.Background()
	for _, goal := range g.Nodes() {
		first, err1 := Find(ctx, g, "n0", goal.ID)
		second, err2 := Find(ctx, g, "n0", goal.ID)
		assert.Equal(t, err1 == nil, err2 == nil)
		assert.Equal(t, first, second)
	}
}

func TestFindMatchesShortestHopDistance(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	ctx := context.Background()

	for trial := 0; trial < 20; trial++ {
		g := randomGraph(rng, 15+rng.Intn(15), 0.1)
		nodes := g.Nodes()
		for _, s := range nodes {
			dist := relaxDistances(g, s.ID)
			for _, goal := range nodes {
				hops, err := Find(ctx, g, s.ID, goal.ID)
				want, reachable := dist[goal.ID]
				if !reachable {
					assert.ErrorIs(t, err, ErrNoPath, "%s -> %s", s.ID, goal.ID)
					continue
				}
				require.NoError(t, err, "%s -> %s", s.ID, goal.ID)
				assert.Len(t, hops, want, "%s -> %s", s.ID, goal.ID)
				assertWalkable(t, g, s.ID, hops)
			}
		}
	}
}

func TestResolve(t *testing.T) {
	g := lineGraph(t, "A", "B", "C")
	nodes, err := Resolve(g, []walkgraph.NodeID{"B", "C"})
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, walkgraph.NodeID("C"), nodes[1].ID)

	_, err = Resolve(g, []walkgraph.NodeID{"Q"})
	assert.ErrorIs(t, err, walkgraph.ErrUnknownNode)
}

// randomGraph builds n nodes with each directed link present with probability
// density and active with probability 0.8.
func randomGraph(rng *rand.Rand, n int, density float64) *walkgraph.Graph {
	g := walkgraph.New()
	for i := 0; i < n; i++ {
		_ = g.AddNode(walkgraph.NewNode(walkgraph.NodeID(fmt.Sprintf("n%d", i)), geom.Vec3{}))
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j || rng.Float64() >= density {
				continue
			}
			from := walkgraph.NodeID(fmt.Sprintf("n%d", i))
			to := walkgraph.NodeID(fmt.Sprintf("n%d", j))
			_, _ = g.AddLink(from, to, rng.Float64() < 0.8)
		}
	}
	return g
}

// relaxDistances computes hop distances from start by repeated edge
// relaxation, independently of the BFS under test.
func relaxDistances(g *walkgraph.Graph, start walkgraph.NodeID) map[walkgraph.NodeID]int {
	dist := map[walkgraph.NodeID]int{start: 0}
	for changed := true; changed; {
		changed = false
		for _, n := range g.Nodes() {
			d, ok := dist[n.ID]
			if !ok {
				continue
			}
			for _, l := range n.Links() {
				if !l.Active {
					continue
				}
				if cur, seen := dist[l.To]; !seen || d+1 < cur {
					dist[l.To] = d + 1
					changed = true
				}
			}
		}
	}
	return dist
}

func assertWalkable(t *testing.T, g *walkgraph.Graph, start walkgraph.NodeID, hops []walkgraph.NodeID) {
	t.Helper()
	at := start
	for _, next := range hops {
		ok := false
		for _, l := range g.OutgoingLinks(at) {
			if l.Active && l.To == next {
				ok = true
				break
			}
		}
		require.True(t, ok, "no active link %s -> %s", at, next)
		at = next
	}
}
