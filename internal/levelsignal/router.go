// Package levelsignal turns avatar arrivals on button tiles into level
// progression signals.
package levelsignal

import (
	"log/slog"

	"github.com/samdwyer/pivotwalk/internal/walkgraph"
)

// Kind classifies what an arrival dispatched.
type Kind int

const (
	// KindNone means the arrival was not on a button.
	KindNone Kind = iota
	// KindIntermediate is a button that triggers a gate elsewhere in the level.
	KindIntermediate
	// KindFinal is the level's designated final button.
	KindFinal
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindIntermediate:
		return "intermediate"
	case KindFinal:
		return "final"
	default:
		return "unknown"
	}
}

// Handler receives level signals. The router calls exactly one method per
// arrival on a button node.
type Handler interface {
	Intermediate(node *walkgraph.Node)
	Final(node *walkgraph.Node)
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are skipped.
type HandlerFuncs struct {
	OnIntermediate func(node *walkgraph.Node)
	OnFinal        func(node *walkgraph.Node)
}

// Intermediate implements Handler.
func (h HandlerFuncs) Intermediate(node *walkgraph.Node) {
	if h.OnIntermediate != nil {
		h.OnIntermediate(node)
	}
}

// Final implements Handler.
func (h HandlerFuncs) Final(node *walkgraph.Node) {
	if h.OnFinal != nil {
		h.OnFinal(node)
	}
}

// Router dispatches arrivals to a Handler.
type Router struct {
	final   walkgraph.NodeID
	handler Handler
	logger  *slog.Logger
}

// NewRouter creates a router whose final button is final.
func NewRouter(final walkgraph.NodeID, handler Handler, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		final:   final,
		handler: handler,
		logger:  logger.With("component", "levelsignal"),
	}
}

// Final returns the id of the level's final button.
func (r *Router) Final() walkgraph.NodeID {
	return r.final
}

// Arrived dispatches the signal for an arrival at node and reports which
// kind, if any, was sent.
func (r *Router) Arrived(node *walkgraph.Node) Kind {
	if node == nil || !node.Button {
		return KindNone
	}

	kind := KindIntermediate
	if node.ID == r.final {
		kind = KindFinal
	}
	r.logger.Info("button reached", "node", node.ID, "signal", kind.String())

	if r.handler == nil {
		return kind
	}
	if kind == KindFinal {
		r.handler.Final(node)
	} else {
		r.handler.Intermediate(node)
	}
	return kind
}
