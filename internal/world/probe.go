package world

import (
	"github.com/samdwyer/pivotwalk/internal/geom"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
)

const (
	// ProbeRadius is how far from a walk point, horizontally, the probe still
	// counts the avatar as standing on it.
	ProbeRadius = 0.5

	// probeSlack lets a point resting exactly on a walk point find it.
	probeSlack = 1e-6
)

// Probe casts downwards from pos and returns the node whose walk point is the
// highest one at or below pos within radius. Ties go to the node added first.
// A radius <= 0 uses ProbeRadius.
func Probe(g *walkgraph.Graph, pos geom.Vec3, radius float64) (walkgraph.NodeID, bool) {
	if radius <= 0 {
		radius = ProbeRadius
	}
	if !pos.IsFinite() {
		return "", false
	}

	var (
		best   *walkgraph.Node
		bestY  float64
		bestOK bool
	)
	for _, n := range g.Nodes() {
		wp := n.WalkPoint()
		if !wp.IsFinite() {
			continue
		}
		if wp.Y > pos.Y+probeSlack {
			continue
		}
		if wp.HorizontalDist(pos) > radius {
			continue
		}
		if !bestOK || wp.Y > bestY {
			best, bestY, bestOK = n, wp.Y, true
		}
	}
	if !bestOK {
		return "", false
	}
	return best.ID, true
}
