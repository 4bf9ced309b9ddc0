package scaling_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fluid-props/helmholtz/expr"
	"github.com/fluid-props/helmholtz/scaling"
)

func TestSetAndFactor(t *testing.T) {
	l := scaling.NewLedger()
	flow := expr.NewVar("flow_mol", expr.WithInitial(100))

	if err := l.Set(flow, expr.Div(expr.C(1), flow)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	f, ok := l.Factor(flow)
	if !ok {
		t.Fatal("Factor() missing after Set")
	}
	v, err := expr.NewEvaluator(nil).Eval(context.Background(), f)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if v != 0.01 {
		t.Errorf("factor = %v, want 1/flow = 0.01", v)
	}
}

func TestSetErrors(t *testing.T) {
	l := scaling.NewLedger()
	v := expr.NewVar("pressure")

	if err := l.Set(nil, expr.C(1)); !errors.Is(err, scaling.ErrNilTarget) {
		t.Errorf("nil target error = %v, want ErrNilTarget", err)
	}
	if err := l.Set(v, expr.C(1)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := l.Set(v, expr.C(2)); !errors.Is(err, scaling.ErrDuplicate) {
		t.Errorf("duplicate error = %v, want ErrDuplicate", err)
	}
	if err := l.SetConst(expr.NewVar("x"), 0); !errors.Is(err, scaling.ErrNonPositive) {
		t.Errorf("zero factor error = %v, want ErrNonPositive", err)
	}
	if err := l.SetConst(expr.NewVar("y"), -3); !errors.Is(err, scaling.ErrNonPositive) {
		t.Errorf("negative factor error = %v, want ErrNonPositive", err)
	}
}

func TestTargetsInsertionOrder(t *testing.T) {
	l := scaling.NewLedger()
	vars := []*expr.Var{
		expr.NewVar("flow_mol"),
		expr.NewVar("enth_mol"),
		expr.NewVar("pressure"),
	}
	for i, v := range vars {
		if err := l.SetConst(v, float64(i+1)); err != nil {
			t.Fatalf("SetConst() error = %v", err)
		}
	}

	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	for i, target := range l.Targets() {
		if target != expr.Node(vars[i]) {
			t.Errorf("Targets()[%d] is not insertion-order target", i)
		}
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	ev := expr.NewEvaluator(nil)

	l := scaling.NewLedger()
	flow := expr.NewVar("flow_mol", expr.WithInitial(100))
	if err := l.Set(flow, expr.Div(expr.C(1), flow)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := l.SetConst(expr.NewVar("pressure"), 1e-6); err != nil {
		t.Fatalf("SetConst() error = %v", err)
	}
	if err := l.Validate(ctx, ev); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	// A factor tracking its variable goes non-positive when the variable does.
	flow.Set(-10)
	if err := l.Validate(ctx, ev); !errors.Is(err, scaling.ErrNonPositive) {
		t.Errorf("Validate() error = %v, want ErrNonPositive", err)
	}

	// A factor that divides by a zeroed variable fails to evaluate.
	flow.Set(0)
	if err := l.Validate(ctx, ev); !errors.Is(err, expr.ErrDivideByZero) {
		t.Errorf("Validate() error = %v, want ErrDivideByZero", err)
	}
}
