// Package condition re-derives which graph links are usable from the
// orientation of tracked objects in the level.
package condition

import (
	"github.com/samdwyer/pivotwalk/internal/geom"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
)

// OrientationSource answers where a tracked object currently points.
type OrientationSource interface {
	// Orientation returns the discretized orientation of object, or false if
	// the object is unknown.
	Orientation(object string) (geom.Euler, bool)
}

// Requirement is satisfied when Object currently has Orientation.
type Requirement struct {
	Object      string
	Orientation geom.Euler
}

// Target names one link: the Index-th outgoing link of From.
type Target struct {
	From  walkgraph.NodeID
	Index int
}

// Rule enables its targets while every requirement holds and disables them
// otherwise. A rule with no requirements always holds.
type Rule struct {
	Name         string
	Requirements []Requirement
	Targets      []Target
}

// Matched counts how many requirements src currently satisfies.
func (r *Rule) Matched(src OrientationSource) int {
	matched := 0
	for _, req := range r.Requirements {
		got, ok := src.Orientation(req.Object)
		if ok && got.Matches(req.Orientation) {
			matched++
		}
	}
	return matched
}

// Satisfied reports whether all requirements hold. An empty requirement list
// is vacuously satisfied.
func (r *Rule) Satisfied(src OrientationSource) bool {
	return r.Matched(src) == len(r.Requirements)
}
