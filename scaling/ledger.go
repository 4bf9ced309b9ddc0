// Package scaling maintains the scaling ledger: a map from expression-graph
// targets (variables and constraint residuals) to their scaling factors.
// Factors are expressions themselves, so a flow scale can be 1/flow and track
// the variable; constant factors are the common case. Solvers read the ledger
// to condition the system before handing it to a numeric backend.
package scaling

import (
	"context"
	"errors"
	"fmt"

	"github.com/fluid-props/helmholtz/expr"
)

// Sentinel errors for ledger operations.
var (
	ErrNilTarget   = errors.New("nil scaling target")
	ErrDuplicate   = errors.New("scaling factor already set")
	ErrNonPositive = errors.New("scaling factor not positive")
)

// Ledger maps expression nodes to scaling-factor expressions. Targets keep
// insertion order. Not safe for concurrent mutation; a built property network
// treats its ledger as read-only.
type Ledger struct {
	factors map[expr.Node]expr.Node
	order   []expr.Node
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{factors: make(map[expr.Node]expr.Node)}
}

// Set records a scaling-factor expression for a target. Each target gets
// exactly one factor; re-scaling is a wiring bug, not an update.
func (l *Ledger) Set(target, factor expr.Node) error {
	if target == nil {
		return ErrNilTarget
	}
	if factor == nil {
		return fmt.Errorf("%w: nil factor", ErrNonPositive)
	}
	if _, exists := l.factors[target]; exists {
		return ErrDuplicate
	}
	l.factors[target] = factor
	l.order = append(l.order, target)
	return nil
}

// SetConst records a constant scaling factor, rejecting non-positive values
// immediately.
func (l *Ledger) SetConst(target expr.Node, factor float64) error {
	if factor <= 0 {
		return fmt.Errorf("%w: %g", ErrNonPositive, factor)
	}
	return l.Set(target, expr.C(factor))
}

// Factor returns the scaling factor recorded for a target.
func (l *Ledger) Factor(target expr.Node) (expr.Node, bool) {
	f, ok := l.factors[target]
	return f, ok
}

// Len returns the number of scaled targets.
func (l *Ledger) Len() int { return len(l.order) }

// Targets returns the scaled targets in insertion order.
func (l *Ledger) Targets() []expr.Node {
	out := make([]expr.Node, len(l.order))
	copy(out, l.order)
	return out
}

// Validate evaluates every factor at the current variable values and reports
// the first that fails to evaluate or is not strictly positive.
func (l *Ledger) Validate(ctx context.Context, ev *expr.Evaluator) error {
	for i, target := range l.order {
		v, err := ev.Eval(ctx, l.factors[target])
		if err != nil {
			return fmt.Errorf("scaling factor %d: %w", i, err)
		}
		if v <= 0 {
			return fmt.Errorf("scaling factor %d = %g: %w", i, v, ErrNonPositive)
		}
	}
	return nil
}
