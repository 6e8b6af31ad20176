// Package entity provides the avatar the player guides across a level.
package entity

import (
	"math"

	"github.com/samdwyer/pivotwalk/internal/geom"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
)

// Avatar is the player's character. Position and Yaw mirror the motion
// sequencer; Node is re-derived from the ground probe every tick.
type Avatar struct {
	Position geom.Vec3
	Yaw      float64 // Degrees, 0 faces +Z, 90 faces +X
	Node     walkgraph.NodeID
	Grounded bool // False when the last probe found nothing underfoot
	Symbol   rune
}

// NewAvatar creates an avatar standing on node at pos.
func NewAvatar(pos geom.Vec3, yaw float64, node walkgraph.NodeID) *Avatar {
	return &Avatar{
		Position: pos,
		Yaw:      geom.NormalizeAngle(yaw),
		Node:     node,
		Grounded: node != "",
		Symbol:   '@',
	}
}

// Sync copies the latest position and heading.
func (a *Avatar) Sync(pos geom.Vec3, yaw float64) {
	a.Position = pos
	a.Yaw = geom.NormalizeAngle(yaw)
}

// Ground records the probe result. A miss keeps the last known node so a
// click can still be resolved from somewhere.
func (a *Avatar) Ground(id walkgraph.NodeID, ok bool) {
	a.Grounded = ok
	if ok {
		a.Node = id
	}
}

// Facing returns an arrow for the avatar's heading on a north-up map.
func (a *Avatar) Facing() rune {
	switch int(math.Round(a.Yaw/90)) % 4 {
	case 0:
		return '^'
	case 1:
		return '>'
	case 2:
		return 'v'
	default:
		return '<'
	}
}
