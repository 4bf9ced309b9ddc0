package expr

import (
	"context"
	"fmt"

	"github.com/fluid-props/helmholtz/kernel"
)

// call is a native kernel function applied to expression operands.
type call struct {
	fn   kernel.Func
	args []Node
}

// Call builds a kernel-call node. The call is dispatched through the
// evaluator's Invoker; building a call never touches the kernel.
func Call(fn kernel.Func, args ...Node) Node {
	return &call{fn: fn, args: args}
}

func (c *call) value(p *pass) (float64, error) {
	if p.kernel == nil {
		return 0, fmt.Errorf("%s: %w", c.fn, kernel.ErrUnavailable)
	}
	operands := make([]float64, len(c.args))
	for i, a := range c.args {
		v, err := p.eval(a)
		if err != nil {
			return 0, err
		}
		operands[i] = v
	}
	return p.kernel.Invoke(p.ctx, c.fn, operands...)
}

// Evaluator computes node values against a kernel. The zero value evaluates
// graphs without kernel calls; Kernel may be nil in that case.
type Evaluator struct {
	Kernel kernel.Invoker
}

// NewEvaluator creates an evaluator dispatching kernel calls to inv.
func NewEvaluator(inv kernel.Invoker) *Evaluator {
	return &Evaluator{Kernel: inv}
}

// Eval computes the value of a node at the variables' current values.
// Shared nodes are evaluated once per call (memoized by identity).
func (ev *Evaluator) Eval(ctx context.Context, n Node) (float64, error) {
	p := &pass{ctx: ctx, kernel: ev.Kernel, memo: make(map[Node]float64)}
	return p.eval(n)
}

// pass carries the per-evaluation state: context, kernel handle, and the
// identity memo table.
type pass struct {
	ctx    context.Context
	kernel kernel.Invoker
	memo   map[Node]float64
}

func (p *pass) eval(n Node) (float64, error) {
	if v, ok := p.memo[n]; ok {
		return v, nil
	}
	v, err := n.value(p)
	if err != nil {
		return 0, err
	}
	p.memo[n] = v
	return v, nil
}
