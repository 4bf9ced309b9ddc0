package kernel

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/diff/fd"
)

// Derivative computes the partial derivative of a kernel function with
// respect to its i-th operand by central finite differences. Consumers that
// need analytic derivatives of native calls (Newton-type solvers) use this as
// the differentiation pass-through for kernels that only evaluate.
func Derivative(ctx context.Context, inv Invoker, fn Func, args []float64, i int) (float64, error) {
	if inv == nil {
		return 0, ErrUnavailable
	}
	if i < 0 || i >= len(args) {
		return 0, fmt.Errorf("operand index %d out of range for %d operands", i, len(args))
	}

	var callErr error
	f := func(x float64) float64 {
		perturbed := make([]float64, len(args))
		copy(perturbed, args)
		perturbed[i] = x
		v, err := inv.Invoke(ctx, fn, perturbed...)
		if err != nil && callErr == nil {
			callErr = err
		}
		return v
	}

	d := fd.Derivative(f, args[i], &fd.Settings{Formula: fd.Central})
	if callErr != nil {
		return 0, fmt.Errorf("derivative of %s: %w", fn, callErr)
	}
	return d, nil
}
