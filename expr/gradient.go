package expr

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/diff/fd"
)

// Gradient computes the partial derivatives of a node with respect to each of
// the given variables by central finite differences. Variable values are
// restored before returning. Kernel calls inside the graph are re-evaluated at
// the perturbed points, so the result is the full chain-rule derivative of the
// built expression.
func Gradient(ctx context.Context, ev *Evaluator, n Node, vars []*Var) ([]float64, error) {
	grad := make([]float64, len(vars))
	for i, v := range vars {
		orig := v.Value()
		var evalErr error
		f := func(x float64) float64 {
			v.Set(x)
			val, err := ev.Eval(ctx, n)
			if err != nil && evalErr == nil {
				evalErr = err
			}
			return val
		}
		grad[i] = fd.Derivative(f, orig, &fd.Settings{Formula: fd.Central})
		v.Set(orig)
		if evalErr != nil {
			return nil, fmt.Errorf("gradient with respect to %s: %w", v.Name(), evalErr)
		}
	}
	return grad, nil
}
