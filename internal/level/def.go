// Package level loads puzzle levels from YAML and builds the runtime graph,
// rules and pivots for one of them.
package level

import (
	"errors"
	"fmt"

	"github.com/samdwyer/pivotwalk/internal/geom"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid level")

// Vec is an [x, y, z] triple as written in level files.
type Vec [3]float64

// Vec3 converts v to a position.
func (v Vec) Vec3() geom.Vec3 { return geom.V(v[0], v[1], v[2]) }

// Euler converts v to an orientation in degrees.
func (v Vec) Euler() geom.Euler { return geom.E(v[0], v[1], v[2]) }

// Def is a level as written on disk.
type Def struct {
	ID       string     `yaml:"id"`
	Name     string     `yaml:"name"`
	Start    string     `yaml:"start"`
	Final    string     `yaml:"final"`
	StartYaw float64    `yaml:"start_yaw"`
	Pivots   []PivotDef `yaml:"pivots"`
	Nodes    []NodeDef  `yaml:"nodes"`
	Rules    []RuleDef  `yaml:"rules"`
	Controls Controls   `yaml:"controls"`
}

// PivotDef declares a rotatable object and its starting orientation.
type PivotDef struct {
	ID          string `yaml:"id"`
	Orientation Vec    `yaml:"orientation"`
}

// NodeDef declares a walkable tile and its outgoing links.
type NodeDef struct {
	ID           string    `yaml:"id"`
	At           Vec       `yaml:"at"`
	Up           *Vec      `yaml:"up,omitempty"`
	WalkOffset   *float64  `yaml:"walk_offset,omitempty"`
	StairOffset  *float64  `yaml:"stair_offset,omitempty"`
	Stair        bool      `yaml:"stair,omitempty"`
	MovingGround bool      `yaml:"moving_ground,omitempty"`
	Button       bool      `yaml:"button,omitempty"`
	DontRotate   bool      `yaml:"dont_rotate,omitempty"`
	Pivot        string    `yaml:"pivot,omitempty"`
	Links        []LinkDef `yaml:"links"`
}

// LinkDef is one outgoing link. Links start active unless Active is false.
type LinkDef struct {
	To     string `yaml:"to"`
	Active *bool  `yaml:"active,omitempty"`
}

// RuleDef gates links on pivot orientations.
type RuleDef struct {
	Name     string           `yaml:"name"`
	Requires []RequirementDef `yaml:"requires"`
	Targets  []TargetDef      `yaml:"targets"`
}

// RequirementDef requires Object to face Orientation.
type RequirementDef struct {
	Object      string `yaml:"object"`
	Orientation Vec    `yaml:"orientation"`
}

// TargetDef names the Link-th outgoing link of Node.
type TargetDef struct {
	Node string `yaml:"node"`
	Link int    `yaml:"link"`
}

// Controls maps player input and intermediate buttons onto pivots.
type Controls struct {
	Rotate  *RotateControl  `yaml:"rotate,omitempty"`
	Buttons []ButtonControl `yaml:"buttons,omitempty"`
}

// RotateControl is the pivot turned by the arrow keys, Step per press.
type RotateControl struct {
	Pivot string `yaml:"pivot"`
	Step  Vec    `yaml:"step"`
}

// ButtonControl turns Pivot to Orientation when the avatar reaches Node.
type ButtonControl struct {
	Node        string `yaml:"node"`
	Pivot       string `yaml:"pivot"`
	Orientation Vec    `yaml:"orientation"`
}

// Node converts d to a graph node, filling defaults. Links are added
// separately so their targets can be checked.
func (d *NodeDef) Node() walkgraph.Node {
	n := walkgraph.NewNode(walkgraph.NodeID(d.ID), d.At.Vec3())
	if d.Up != nil {
		n.Up = d.Up.Vec3()
	}
	if d.WalkOffset != nil {
		n.WalkOffset = *d.WalkOffset
	}
	if d.StairOffset != nil {
		n.StairOffset = *d.StairOffset
	}
	n.Stair = d.Stair
	n.MovingGround = d.MovingGround
	n.Button = d.Button
	n.DontRotate = d.DontRotate
	n.Pivot = d.Pivot
	return n
}

// IsActive reports the link's starting state.
func (l LinkDef) IsActive() bool {
	return l.Active == nil || *l.Active
}

// Validate checks that every reference in the level resolves. All problems
// are reported together, each wrapping ErrInvalid.
func (d *Def) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if d.ID == "" {
		fail("missing id")
	}
	if len(d.Nodes) == 0 {
		fail("no nodes")
	}

	pivots := make(map[string]bool, len(d.Pivots))
	for _, p := range d.Pivots {
		switch {
		case p.ID == "":
			fail("pivot with empty id")
		case pivots[p.ID]:
			fail("duplicate pivot %q", p.ID)
		}
		pivots[p.ID] = true
	}

	nodes := make(map[string]*NodeDef, len(d.Nodes))
	for i := range d.Nodes {
		n := &d.Nodes[i]
		switch {
		case n.ID == "":
			fail("node %d has empty id", i)
		case nodes[n.ID] != nil:
			fail("duplicate node %q", n.ID)
		}
		nodes[n.ID] = n
		if n.Pivot != "" && !pivots[n.Pivot] {
			fail("node %q: unknown pivot %q", n.ID, n.Pivot)
		}
	}
	for _, n := range d.Nodes {
		for i, l := range n.Links {
			if nodes[l.To] == nil {
				fail("node %q link %d: unknown target %q", n.ID, i, l.To)
			}
		}
	}

	if nodes[d.Start] == nil {
		fail("unknown start node %q", d.Start)
	}
	if final := nodes[d.Final]; final == nil {
		fail("unknown final node %q", d.Final)
	} else if !final.Button {
		fail("final node %q is not a button", d.Final)
	}

	for i, r := range d.Rules {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		for _, req := range r.Requires {
			if !pivots[req.Object] {
				fail("rule %s: unknown object %q", name, req.Object)
			}
		}
		for _, t := range r.Targets {
			n := nodes[t.Node]
			if n == nil {
				fail("rule %s: unknown target node %q", name, t.Node)
				continue
			}
			if t.Link < 0 || t.Link >= len(n.Links) {
				fail("rule %s: node %q has no link %d", name, t.Node, t.Link)
			}
		}
	}

	if rc := d.Controls.Rotate; rc != nil && !pivots[rc.Pivot] {
		fail("rotate control: unknown pivot %q", rc.Pivot)
	}
	for _, b := range d.Controls.Buttons {
		n := nodes[b.Node]
		switch {
		case n == nil:
			fail("button control: unknown node %q", b.Node)
		case !n.Button:
			fail("button control: node %q is not a button", b.Node)
		case b.Node == d.Final:
			fail("button control: node %q is the final button", b.Node)
		}
		if !pivots[b.Pivot] {
			fail("button control %q: unknown pivot %q", b.Node, b.Pivot)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("level %q: %w", d.ID, errors.Join(errs...))
}
