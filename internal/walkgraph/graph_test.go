package walkgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/pivotwalk/internal/geom"
)

func TestAddNodeAndLinks(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(NewNode("a", geom.V(0, 0, 0))))
	require.NoError(t, g.AddNode(NewNode("b", geom.V(1, 0, 0))))
	require.NoError(t, g.AddNode(NewNode("c", geom.V(2, 0, 0))))

	i, err := g.AddLink("a", "b", true)
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	i, err = g.AddLink("a", "c", false)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	links := g.OutgoingLinks("a")
	assert.Equal(t, []Link{{To: "b", Active: true}, {To: "c", Active: false}}, links)
	assert.Equal(t, 3, g.Len())
	assert.Nil(t, g.OutgoingLinks("missing"))
}

func TestAddNodeDuplicate(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(NewNode("a", geom.V(0, 0, 0))))
	assert.ErrorIs(t, g.AddNode(NewNode("a", geom.V(1, 0, 0))), ErrDuplicateNode)
}

func TestAddLinkUnknownNodes(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(NewNode("a", geom.V(0, 0, 0))))

	_, err := g.AddLink("a", "zzz", true)
	assert.ErrorIs(t, err, ErrUnknownNode)
	_, err = g.AddLink("zzz", "a", true)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestSetLinkActive(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(NewNode("a", geom.V(0, 0, 0))))
	require.NoError(t, g.AddNode(NewNode("b", geom.V(1, 0, 0))))
	_, err := g.AddLink("a", "b", true)
	require.NoError(t, err)

	require.NoError(t, g.SetLinkActive("a", 0, false))
	active, err := g.LinkActive("a", 0)
	require.NoError(t, err)
	assert.False(t, active)

	assert.ErrorIs(t, g.SetLinkActive("a", 1, true), ErrLinkIndex)
	assert.ErrorIs(t, g.SetLinkActive("a", -1, true), ErrLinkIndex)
	assert.ErrorIs(t, g.SetLinkActive("nope", 0, true), ErrUnknownNode)
}

func TestOutgoingLinksIsACopy(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(NewNode("a", geom.V(0, 0, 0))))
	require.NoError(t, g.AddNode(NewNode("b", geom.V(1, 0, 0))))
	_, err := g.AddLink("a", "b", true)
	require.NoError(t, err)

	links := g.OutgoingLinks("a")
	links[0].Active = false

	active, err := g.LinkActive("a", 0)
	require.NoError(t, err)
	assert.True(t, active, "callers must not be able to mutate links through the returned slice")
}

func TestWalkPoint(t *testing.T) {
	n := NewNode("a", geom.V(1, 2, 3))
	assert.Equal(t, geom.V(1, 2.5, 3), n.WalkPoint())

	n.Stair = true
	assert.InDelta(t, 2.9, n.WalkPoint().Y, 1e-9)

	n.Up = geom.Vec3{}
	assert.InDelta(t, 2.9, n.WalkPoint().Y, 1e-9, "zero up falls back to world up")

	n.Up = geom.V(1, 0, 0)
	assert.InDelta(t, 1.9, n.WalkPoint().X, 1e-9)
}
