package level

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/pivotwalk/internal/condition"
	"github.com/samdwyer/pivotwalk/internal/geom"
	"github.com/samdwyer/pivotwalk/internal/telemetry"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
	"github.com/samdwyer/pivotwalk/internal/world"
)

// Built is a level ready to play. Each call to Build returns fresh state, so
// resetting a level is rebuilding it.
type Built struct {
	Def       *Def
	Graph     *walkgraph.Graph
	Evaluator *condition.Evaluator
	Pivots    *world.Pivots
	Start     *walkgraph.Node
	Final     walkgraph.NodeID

	RotatePivot string     // Pivot turned by the arrow keys, if any
	RotateStep  geom.Euler // Rotation per key press
	Buttons     map[walkgraph.NodeID]ButtonAction
}

// ButtonAction is what an intermediate button does when reached.
type ButtonAction struct {
	Pivot       string
	Orientation geom.Euler
}

// Build validates d and constructs its runtime state.
func (d *Def) Build(ctx context.Context, logger *slog.Logger) (*Built, error) {
	tracer := telemetry.Tracer("level")
	_, span := tracer.Start(ctx, "level.build")
	defer span.End()

	startTime := time.Now()

	if err := d.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	g := walkgraph.New()
	links := 0
	for i := range d.Nodes {
		if err := g.AddNode(d.Nodes[i].Node()); err != nil {
			return nil, fmt.Errorf("level %q: %w", d.ID, err)
		}
	}
	for _, n := range d.Nodes {
		for _, l := range n.Links {
			if _, err := g.AddLink(walkgraph.NodeID(n.ID), walkgraph.NodeID(l.To), l.IsActive()); err != nil {
				return nil, fmt.Errorf("level %q: %w", d.ID, err)
			}
			links++
		}
	}

	pivots := world.NewPivots()
	for _, p := range d.Pivots {
		if err := pivots.Add(world.NewPivot(p.ID, p.Orientation.Euler())); err != nil {
			return nil, fmt.Errorf("level %q: %w", d.ID, err)
		}
	}

	rules := make([]condition.Rule, 0, len(d.Rules))
	for _, r := range d.Rules {
		rule := condition.Rule{Name: r.Name}
		for _, req := range r.Requires {
			rule.Requirements = append(rule.Requirements, condition.Requirement{
				Object:      req.Object,
				Orientation: req.Orientation.Euler(),
			})
		}
		for _, t := range r.Targets {
			rule.Targets = append(rule.Targets, condition.Target{
				From:  walkgraph.NodeID(t.Node),
				Index: t.Link,
			})
		}
		rules = append(rules, rule)
	}
	eval := condition.NewEvaluator(rules, logger)
	if err := eval.Validate(g); err != nil {
		return nil, fmt.Errorf("level %q: %w", d.ID, err)
	}

	start, _ := g.Node(walkgraph.NodeID(d.Start))
	b := &Built{
		Def:       d,
		Graph:     g,
		Evaluator: eval,
		Pivots:    pivots,
		Start:     start,
		Final:     walkgraph.NodeID(d.Final),
		Buttons:   make(map[walkgraph.NodeID]ButtonAction, len(d.Controls.Buttons)),
	}
	if rc := d.Controls.Rotate; rc != nil {
		b.RotatePivot = rc.Pivot
		b.RotateStep = rc.Step.Euler()
	}
	for _, bc := range d.Controls.Buttons {
		b.Buttons[walkgraph.NodeID(bc.Node)] = ButtonAction{
			Pivot:       bc.Pivot,
			Orientation: bc.Orientation.Euler(),
		}
	}

	span.SetAttributes(
		attribute.String("level.id", d.ID),
		attribute.Int("level.node_count", g.Len()),
		attribute.Int("level.link_count", links),
		attribute.Int("level.rule_count", len(rules)),
		attribute.Int("level.pivot_count", pivots.Count()),
		attribute.Int64("level.build_us", time.Since(startTime).Microseconds()),
	)
	return b, nil
}
