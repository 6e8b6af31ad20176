// Package world holds the level's rotatable pivots and the ground probe that
// works out which walkable node the avatar is standing on.
package world

import (
	"github.com/samdwyer/pivotwalk/internal/geom"
)

// DefaultRotateDuration is how long a player-driven pivot rotation takes.
const DefaultRotateDuration = 0.6

// Pivot is a rotatable piece of level geometry. Its orientation feeds the
// condition rules that switch links on and off.
type Pivot struct {
	ID string

	orientation geom.Euler
	tween       *tween
}

// tween is a rotation in progress.
type tween struct {
	from, to geom.Euler
	elapsed  float64
	duration float64
	ease     geom.Easing
}

// NewPivot returns a settled pivot at the given orientation.
func NewPivot(id string, orientation geom.Euler) *Pivot {
	return &Pivot{ID: id, orientation: orientation.Normalize()}
}

// RotateBy starts rotating by delta degrees around the world axes. A rotation
// already in progress is completed first so repeated input never loses a step.
func (p *Pivot) RotateBy(delta geom.Euler, duration float64) {
	p.finish()
	p.start(p.orientation.Add(delta), duration)
}

// RotateTo starts rotating to target along the shortest arc on each axis.
func (p *Pivot) RotateTo(target geom.Euler, duration float64) {
	p.finish()
	cur := p.orientation
	p.start(geom.Euler{
		X: cur.X + geom.AngleDelta(cur.X, target.X),
		Y: cur.Y + geom.AngleDelta(cur.Y, target.Y),
		Z: cur.Z + geom.AngleDelta(cur.Z, target.Z),
	}, duration)
}

func (p *Pivot) start(to geom.Euler, duration float64) {
	if duration <= 0 {
		p.orientation = to.Normalize()
		return
	}
	p.tween = &tween{
		from:     p.orientation,
		to:       to,
		duration: duration,
		ease:     geom.OutBack,
	}
}

// finish snaps a running rotation to its target.
func (p *Pivot) finish() {
	if p.tween == nil {
		return
	}
	p.orientation = p.tween.to.Normalize()
	p.tween = nil
}

// Advance moves a running rotation forward by dt seconds.
func (p *Pivot) Advance(dt float64) {
	tw := p.tween
	if tw == nil || dt <= 0 {
		return
	}
	tw.elapsed += dt
	if tw.elapsed >= tw.duration {
		p.finish()
		return
	}
	p.orientation = geom.LerpEuler(tw.from, tw.to, tw.ease(tw.elapsed/tw.duration))
}

// Settled reports whether no rotation is in progress.
func (p *Pivot) Settled() bool { return p.tween == nil }

// Raw returns the current, possibly mid-rotation, orientation.
func (p *Pivot) Raw() geom.Euler { return p.orientation }

// Orientation returns the discretized orientation used by condition rules.
func (p *Pivot) Orientation() geom.Euler { return p.orientation.Discretize() }
