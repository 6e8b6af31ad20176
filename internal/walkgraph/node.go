// Package walkgraph holds the walkable-tile graph the avatar moves across:
// nodes anchored in world space and directed links that can be switched on
// and off at runtime.
package walkgraph

import "github.com/samdwyer/pivotwalk/internal/geom"

// NodeID uniquely identifies a node within a graph.
type NodeID string

const (
	// DefaultWalkOffset is how far above its anchor a node's walk point sits.
	DefaultWalkOffset = 0.5
	// DefaultStairOffset is the extra lift applied to stair walk points.
	DefaultStairOffset = 0.4
)

// Node is a walkable tile. Everything except its links is fixed once the
// level is built.
type Node struct {
	ID     NodeID
	Anchor geom.Vec3 // World-space anchor of the tile
	Up     geom.Vec3 // Tile up direction; zero means world up

	WalkOffset  float64 // Lift above Anchor along Up
	StairOffset float64 // Extra lift when Stair is set

	Stair        bool // Hops onto this node use an arc and move slower
	MovingGround bool // Tile is attached to a moving pivot
	Button       bool // Arriving here fires a level signal
	DontRotate   bool // Avatar keeps its facing when walking onto this node

	Pivot string // Owning pivot for moving ground, if any

	links []Link
}

// Link is a directed connection from its owning node to To.
type Link struct {
	To     NodeID
	Active bool
}

// NewNode returns a node at anchor with the default offsets and world up.
func NewNode(id NodeID, anchor geom.Vec3) Node {
	return Node{
		ID:          id,
		Anchor:      anchor,
		Up:          geom.Up,
		WalkOffset:  DefaultWalkOffset,
		StairOffset: DefaultStairOffset,
	}
}

// WalkPoint returns the position the avatar stands at on this node.
func (n *Node) WalkPoint() geom.Vec3 {
	return n.Anchor.Add(n.Lift())
}

// Lift returns the offset from Anchor to the walk point. It only depends on
// static offsets, so it stays usable when the anchor itself is corrupt.
func (n *Node) Lift() geom.Vec3 {
	up := n.Up
	if up == (geom.Vec3{}) {
		up = geom.Up
	}
	height := n.WalkOffset
	if n.Stair {
		height += n.StairOffset
	}
	return up.Scale(height)
}

// Links returns a copy of the node's outgoing links in declaration order.
func (n *Node) Links() []Link {
	out := make([]Link, len(n.links))
	copy(out, n.links)
	return out
}
