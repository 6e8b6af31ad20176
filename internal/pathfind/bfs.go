// Package pathfind finds fewest-hop routes across a walkgraph.Graph.
package pathfind

import (
	"context"
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/pivotwalk/internal/telemetry"
	"github.com/samdwyer/pivotwalk/internal/walkgraph"
)

// ErrNoPath is returned when the goal cannot be reached over active links.
var ErrNoPath = errors.New("pathfind: no path")

// Find returns the hops from start to goal: every node visited after start,
// ending with goal. Links are expanded in declaration order and the first
// route to reach goal wins, so equal-length routes are chosen by authoring
// order. start == goal yields an empty route.
//
// All search state is local to the call; the graph is only read.
func Find(ctx context.Context, g *walkgraph.Graph, start, goal walkgraph.NodeID) ([]walkgraph.NodeID, error) {
	_, span := telemetry.Tracer("pathfind").Start(ctx, "pathfind.find")
	defer span.End()

	span.SetAttributes(
		attribute.String("path.start", string(start)),
		attribute.String("path.goal", string(goal)),
	)

	if !g.Has(start) {
		return nil, fmt.Errorf("start: %w: %s", walkgraph.ErrUnknownNode, start)
	}
	if !g.Has(goal) {
		return nil, fmt.Errorf("goal: %w: %s", walkgraph.ErrUnknownNode, goal)
	}
	if start == goal {
		span.SetAttributes(attribute.Int("path.hops", 0))
		return []walkgraph.NodeID{}, nil
	}

	s := search{
		frontier: queue.New[walkgraph.NodeID](),
		visited:  mapset.New[walkgraph.NodeID](),
		prev:     make(map[walkgraph.NodeID]walkgraph.NodeID),
	}
	found := s.run(g, start, goal)

	span.SetAttributes(
		attribute.Int("path.visited", s.visited.Size()),
		attribute.Bool("path.found", found),
	)
	if !found {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNoPath, start, goal)
	}

	hops := s.reconstruct(start, goal)
	span.SetAttributes(attribute.Int("path.hops", len(hops)))
	return hops, nil
}

// search is the per-call BFS state.
type search struct {
	frontier *queue.Queue[walkgraph.NodeID]
	visited  mapset.Set[walkgraph.NodeID]
	prev     map[walkgraph.NodeID]walkgraph.NodeID
}

// run explores breadth-first and stops as soon as goal is discovered.
// Nodes are marked visited when enqueued so each keeps its first predecessor.
func (s *search) run(g *walkgraph.Graph, start, goal walkgraph.NodeID) bool {
	s.visited.Put(start)
	s.frontier.Enqueue(start)

	for !s.frontier.Empty() {
		current := s.frontier.Dequeue()
		for _, link := range g.OutgoingLinks(current) {
			if !link.Active || s.visited.Has(link.To) {
				continue
			}
			s.visited.Put(link.To)
			s.prev[link.To] = current
			if link.To == goal {
				return true
			}
			s.frontier.Enqueue(link.To)
		}
	}
	return false
}

func (s *search) reconstruct(start, goal walkgraph.NodeID) []walkgraph.NodeID {
	var hops []walkgraph.NodeID
	for at := goal; at != start; at = s.prev[at] {
		hops = append(hops, at)
	}
	for i, j := 0, len(hops)-1; i < j; i, j = i+1, j-1 {
		hops[i], hops[j] = hops[j], hops[i]
	}
	return hops
}

// Resolve maps hop ids to their nodes. Unknown ids are reported as an error.
func Resolve(g *walkgraph.Graph, hops []walkgraph.NodeID) ([]*walkgraph.Node, error) {
	nodes := make([]*walkgraph.Node, 0, len(hops))
	for _, id := range hops {
		n, ok := g.Node(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", walkgraph.ErrUnknownNode, id)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
