package world

import (
	"errors"
	"fmt"

	"github.com/samdwyer/pivotwalk/internal/geom"
)

// ErrDuplicatePivot is returned when a pivot id is added twice.
var ErrDuplicatePivot = errors.New("duplicate pivot")

// Pivots is the ordered set of pivots in a level. It answers orientation
// queries for the condition evaluator.
type Pivots struct {
	order []*Pivot
	byID  map[string]*Pivot
}

// NewPivots creates an empty pivot set.
func NewPivots() *Pivots {
	return &Pivots{byID: make(map[string]*Pivot)}
}

// Add registers p.
func (ps *Pivots) Add(p *Pivot) error {
	if _, ok := ps.byID[p.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePivot, p.ID)
	}
	ps.order = append(ps.order, p)
	ps.byID[p.ID] = p
	return nil
}

// Get returns the pivot with the given id.
func (ps *Pivots) Get(id string) (*Pivot, bool) {
	p, ok := ps.byID[id]
	return p, ok
}

// All returns the pivots in insertion order.
func (ps *Pivots) All() []*Pivot {
	out := make([]*Pivot, len(ps.order))
	copy(out, ps.order)
	return out
}

// Count returns the number of pivots.
func (ps *Pivots) Count() int { return len(ps.order) }

// Orientation returns the discretized orientation of the named pivot.
func (ps *Pivots) Orientation(object string) (geom.Euler, bool) {
	p, ok := ps.byID[object]
	if !ok {
		return geom.Euler{}, false
	}
	return p.Orientation(), true
}

// Advance moves every running rotation forward by dt seconds.
func (ps *Pivots) Advance(dt float64) {
	for _, p := range ps.order {
		p.Advance(dt)
	}
}

// Settled reports whether every pivot is at rest.
func (ps *Pivots) Settled() bool {
	for _, p := range ps.order {
		if !p.Settled() {
			return false
		}
	}
	return true
}
