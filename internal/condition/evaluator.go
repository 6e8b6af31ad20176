package condition

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/samdwyer/pivotwalk/internal/walkgraph"
)

// Outcome is the result of one rule during an Apply pass.
type Outcome struct {
	Rule      string
	Matched   int
	Required  int
	Satisfied bool
}

// Result summarizes an Apply pass.
type Result struct {
	Outcomes []Outcome
	Errors   []error // Targets that could not be written
}

// Evaluator applies rules to a graph in declaration order.
type Evaluator struct {
	rules  []Rule
	logger *slog.Logger
	warned map[int]bool // rule indices already reported as broken
}

// NewEvaluator creates an evaluator over rules. The slice is copied, so
// later changes by the caller do not affect evaluation order.
func NewEvaluator(rules []Rule, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	copied := append([]Rule(nil), rules...)
	return &Evaluator{
		rules:  copied,
		logger: logger.With("component", "condition"),
		warned: make(map[int]bool),
	}
}

// Rules returns the rules in evaluation order.
func (e *Evaluator) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Validate checks that every rule target names an existing link of g.
func (e *Evaluator) Validate(g *walkgraph.Graph) error {
	var errs []error
	for _, r := range e.rules {
		for _, t := range r.Targets {
			if err := g.CheckLink(t.From, t.Index); err != nil {
				errs = append(errs, fmt.Errorf("rule %q: %w", r.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Apply evaluates every rule against src and writes each target link's
// active flag from scratch. When several rules target the same link the
// last rule in declaration order wins.
func (e *Evaluator) Apply(g *walkgraph.Graph, src OrientationSource) Result {
	res := Result{Outcomes: make([]Outcome, 0, len(e.rules))}

	for i := range e.rules {
		r := &e.rules[i]
		matched := r.Matched(src)
		satisfied := matched == len(r.Requirements)
		res.Outcomes = append(res.Outcomes, Outcome{
			Rule:      r.Name,
			Matched:   matched,
			Required:  len(r.Requirements),
			Satisfied: satisfied,
		})

		for _, t := range r.Targets {
			if err := g.SetLinkActive(t.From, t.Index, satisfied); err != nil {
				err = fmt.Errorf("rule %q: %w", r.Name, err)
				res.Errors = append(res.Errors, err)
				if !e.warned[i] {
					e.warned[i] = true
					e.logger.Warn("rule target is not a link", "rule", r.Name, "error", err)
				}
			}
		}
	}
	return res
}
