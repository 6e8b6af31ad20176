package walkgraph

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode is returned when an operation names a node that is not in the graph.
	ErrUnknownNode = errors.New("walkgraph: unknown node")
	// ErrDuplicateNode is returned when a node id is added twice.
	ErrDuplicateNode = errors.New("walkgraph: duplicate node")
	// ErrLinkIndex is returned when a link index is out of range for its node.
	ErrLinkIndex = errors.New("walkgraph: link index out of range")
)

// Graph owns every node and link of a level. It is not safe for concurrent
// use; the game drives it from a single goroutine.
type Graph struct {
	nodes []*Node
	index map[NodeID]*Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[NodeID]*Node),
	}
}

// AddNode adds n to the graph. Any links already on n are discarded; use
// AddLink so that targets are checked.
func (g *Graph) AddNode(n Node) error {
	if _, ok := g.index[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	n.links = nil
	node := &n
	g.nodes = append(g.nodes, node)
	g.index[n.ID] = node
	return nil
}

// AddLink appends a link from -> to and returns its index on from.
func (g *Graph) AddLink(from, to NodeID, active bool) (int, error) {
	src, ok := g.index[from]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	if _, ok := g.index[to]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	src.links = append(src.links, Link{To: to, Active: active})
	return len(src.links) - 1, nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id NodeID) bool {
	_, ok := g.index[id]
	return ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// OutgoingLinks returns the links leaving id in declaration order, or nil if
// the node does not exist.
func (g *Graph) OutgoingLinks(id NodeID) []Link {
	n, ok := g.index[id]
	if !ok {
		return nil
	}
	return n.Links()
}

// SetLinkActive switches the index-th link of node id on or off.
func (g *Graph) SetLinkActive(id NodeID, index int, active bool) error {
	n, ok := g.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if index < 0 || index >= len(n.links) {
		return fmt.Errorf("%w: %s[%d] (has %d)", ErrLinkIndex, id, index, len(n.links))
	}
	n.links[index].Active = active
	return nil
}

// LinkActive reports whether the index-th link of node id is active.
func (g *Graph) LinkActive(id NodeID, index int) (bool, error) {
	n, ok := g.index[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if index < 0 || index >= len(n.links) {
		return false, fmt.Errorf("%w: %s[%d] (has %d)", ErrLinkIndex, id, index, len(n.links))
	}
	return n.links[index].Active, nil
}

// CheckLink verifies that node id has a link at index without changing it.
func (g *Graph) CheckLink(id NodeID, index int) error {
	_, err := g.LinkActive(id, index)
	return err
}
