// Package expr provides the arithmetic expression graph the property network
// is built from: primary variables, constants, algebraic combinations, and
// native kernel calls, composed into an immutable DAG and evaluated against a
// kernel.Invoker.
//
// Nodes are pure: construction never computes, and evaluation never mutates a
// node. Variables carry a current value plus solver metadata (fixed flag,
// bounds, positive domain); everything else is a derived expression. Graphs
// are built once and shared — the evaluator memoizes by node identity within
// a pass, so a node referenced from several places is computed once.
package expr

import (
	"errors"
	"fmt"
	"math"
)

// Node is a single quantity in the expression graph.
type Node interface {
	value(p *pass) (float64, error)
}

// Sentinel errors for expression evaluation.
var (
	ErrDomain       = errors.New("value outside variable domain")
	ErrDivideByZero = errors.New("division by zero")
)

// Const is a constant-valued node.
type Const float64

// C wraps a float64 as a constant node.
func C(v float64) Const { return Const(v) }

func (c Const) value(p *pass) (float64, error) { return float64(c), nil }

// Var is a primary variable: a named quantity with a current value, a fixed
// flag, and optional bounds. Bounds and the positive-domain marker are solver
// metadata; only the positive domain is enforced at evaluation time.
type Var struct {
	name     string
	val      float64
	fixed    bool
	positive bool
	lo, hi   float64
	bounded  bool
}

// VarOption configures a variable at construction.
type VarOption func(*Var)

// WithInitial sets the variable's initial value.
func WithInitial(v float64) VarOption {
	return func(vr *Var) { vr.val = v }
}

// WithBounds sets lower and upper bounds.
func WithBounds(lo, hi float64) VarOption {
	return func(vr *Var) { vr.lo, vr.hi, vr.bounded = lo, hi, true }
}

// Positive restricts the variable to strictly positive values.
func Positive() VarOption {
	return func(vr *Var) { vr.positive = true }
}

// NewVar creates a variable.
func NewVar(name string, opts ...VarOption) *Var {
	v := &Var{name: name}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Name returns the variable name.
func (v *Var) Name() string { return v.name }

// Value returns the current value.
func (v *Var) Value() float64 { return v.val }

// Set assigns a new current value without changing the fixed flag.
func (v *Var) Set(val float64) { v.val = val }

// Fix assigns a value and marks the variable fixed.
func (v *Var) Fix(val float64) {
	v.val = val
	v.fixed = true
}

// FixCurrent marks the variable fixed at its current value.
func (v *Var) FixCurrent() { v.fixed = true }

// Unfix clears the fixed flag.
func (v *Var) Unfix() { v.fixed = false }

// Fixed reports whether the variable is fixed.
func (v *Var) Fixed() bool { return v.fixed }

// Bounds returns the declared bounds; ok is false for an unbounded variable.
func (v *Var) Bounds() (lo, hi float64, ok bool) { return v.lo, v.hi, v.bounded }

func (v *Var) value(p *pass) (float64, error) {
	if v.positive && v.val <= 0 {
		return 0, fmt.Errorf("%s = %g: %w", v.name, v.val, ErrDomain)
	}
	return v.val, nil
}

type sum struct{ terms []Node }

// Sum builds the sum of the given terms.
func Sum(terms ...Node) Node { return &sum{terms: terms} }

func (s *sum) value(p *pass) (float64, error) {
	total := 0.0
	for _, t := range s.terms {
		v, err := p.eval(t)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

type prod struct{ factors []Node }

// Prod builds the product of the given factors.
func Prod(factors ...Node) Node { return &prod{factors: factors} }

func (m *prod) value(p *pass) (float64, error) {
	total := 1.0
	for _, f := range m.factors {
		v, err := p.eval(f)
		if err != nil {
			return 0, err
		}
		total *= v
	}
	return total, nil
}

type quot struct{ num, den Node }

// Div builds the quotient num/den.
func Div(num, den Node) Node { return &quot{num: num, den: den} }

func (q *quot) value(p *pass) (float64, error) {
	n, err := p.eval(q.num)
	if err != nil {
		return 0, err
	}
	d, err := p.eval(q.den)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, ErrDivideByZero
	}
	return n / d, nil
}

// Neg builds the negation of a node.
func Neg(n Node) Node { return Prod(C(-1), n) }

// Sub builds the difference a-b.
func Sub(a, b Node) Node { return Sum(a, Neg(b)) }

type sqrtNode struct{ arg Node }

// Sqrt builds the square root of a node.
func Sqrt(arg Node) Node { return &sqrtNode{arg: arg} }

func (s *sqrtNode) value(p *pass) (float64, error) {
	v, err := p.eval(s.arg)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("sqrt of %g: %w", v, ErrDomain)
	}
	return math.Sqrt(v), nil
}
