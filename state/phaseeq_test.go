package state_test

import (
	"context"
	"math"
	"testing"

	"github.com/fluid-props/helmholtz/expr"
	"github.com/fluid-props/helmholtz/kernel"
	"github.com/fluid-props/helmholtz/kernel/mock"
	"github.com/fluid-props/helmholtz/params"
	"github.com/fluid-props/helmholtz/state"
)

// saturationPressurePa computes the surrogate's Psat [Pa] at a temperature.
func saturationPressurePa(t *testing.T, T float64) float64 {
	t.Helper()
	psat, err := mock.NewFluid().Invoke(context.Background(), kernel.FuncPSat, 647.096/T)
	if err != nil {
		t.Fatalf("Invoke(p_sat) error = %v", err)
	}
	return psat * 1000
}

func setTP(t *testing.T, b *state.Block, T, P float64) {
	t.Helper()
	temp, ok := b.StateVar("temperature")
	if !ok {
		t.Fatal("no temperature state variable")
	}
	press, ok := b.StateVar("pressure")
	if !ok {
		t.Fatal("no pressure state variable")
	}
	temp.Set(T)
	press.Set(P)
}

func evalNode(t *testing.T, b *state.Block, n expr.Node) float64 {
	t.Helper()
	v, err := b.Evaluator().Eval(context.Background(), n)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	return v
}

func TestSaturationDistances(t *testing.T) {
	const T = 400.0
	psat := saturationPressurePa(t, T)
	b := newBlock(t, params.StateVarsTPX, params.PresentLiquidVapor)
	eps := b.Registry().SmoothingPressureOver()

	tests := []struct {
		name      string
		pressure  float64
		wantUnder float64 // kPa
		wantOver  float64 // kPa
	}{
		{name: "below saturation", pressure: psat / 2, wantUnder: psat / 2 / 1000},
		{name: "above saturation", pressure: psat * 2, wantOver: psat / 1000},
		{name: "at saturation", pressure: psat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setTP(t, b, T, tt.pressure)
			under := evalNode(t, b, b.PUnderSat())
			over := evalNode(t, b, b.POverSat())

			if under < 0 || over < 0 {
				t.Errorf("negative saturation distance: under=%g over=%g", under, over)
			}
			// The smooth max overshoots the true one-sided distance by at
			// most eps/2.
			if math.Abs(under-tt.wantUnder) > eps/2+1e-9 {
				t.Errorf("P_under = %g kPa, want %g", under, tt.wantUnder)
			}
			if math.Abs(over-tt.wantOver) > eps/2+1e-9 {
				t.Errorf("P_over = %g kPa, want %g", over, tt.wantOver)
			}
		})
	}
}

func TestComplementarityConsistency(t *testing.T) {
	const T = 400.0
	psat := saturationPressurePa(t, T)
	b := newBlock(t, params.StateVarsTPX, params.PresentLiquidVapor)
	residual := b.Complementarity().Residual()
	vf, _ := b.StateVar("vapor_frac")

	// Below saturation only pure vapor satisfies the complementarity; above
	// it only pure liquid does; on the saturation curve the fraction is free.
	tests := []struct {
		name       string
		pressure   float64
		consistent []float64
		violating  []float64
	}{
		{name: "below saturation", pressure: psat / 2, consistent: []float64{1}, violating: []float64{0, 0.5}},
		{name: "above saturation", pressure: psat * 2, consistent: []float64{0}, violating: []float64{1, 0.5}},
		{name: "at saturation", pressure: psat, consistent: []float64{0, 0.25, 0.5, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setTP(t, b, T, tt.pressure)
			for _, x := range tt.consistent {
				vf.Set(x)
				if r := evalNode(t, b, residual); math.Abs(r) > 1e-3 {
					t.Errorf("residual(vf=%g) = %g, want ~0", x, r)
				}
			}
			for _, x := range tt.violating {
				vf.Set(x)
				if r := evalNode(t, b, residual); math.Abs(r) < 1 {
					t.Errorf("residual(vf=%g) = %g, want far from 0", x, r)
				}
			}
		})
	}
}

func TestAbsentPhaseEvaluatesAtSaturation(t *testing.T) {
	const T = 400.0
	psat := saturationPressurePa(t, T)
	b := newBlock(t, params.StateVarsTPX, params.PresentLiquidVapor)

	// Vapor conditions: the absent liquid phase is evaluated at the shifted
	// pressure P + P_under ~= Psat, landing on the saturation curve.
	setTP(t, b, T, psat/2)
	liq, ok := b.DensPhaseRed(params.PhaseLiq)
	if !ok {
		t.Fatal("no liquid reduced density")
	}
	satLiq, err := mock.NewFluid().Invoke(context.Background(), kernel.FuncDeltaSatL, 647.096/T)
	if err != nil {
		t.Fatalf("Invoke(delta_sat_l) error = %v", err)
	}
	if got := evalNode(t, b, liq); math.Abs(got-satLiq) > 1e-6 {
		t.Errorf("absent-liquid reduced density = %g, want saturation %g", got, satLiq)
	}

	// The present vapor phase sees (almost) the true pressure.
	vap, ok := b.DensPhaseRed(params.PhaseVap)
	if !ok {
		t.Fatal("no vapor reduced density")
	}
	wantVap, err := mock.NewFluid().Invoke(context.Background(), kernel.FuncDeltaVap, psat/2/1000, 647.096/T)
	if err != nil {
		t.Fatalf("Invoke(delta_vap) error = %v", err)
	}
	if got := evalNode(t, b, vap); math.Abs(got-wantVap)/wantVap > 1e-6 {
		t.Errorf("vapor reduced density = %g, want %g", got, wantVap)
	}
}

func TestSaturationConstraintResidual(t *testing.T) {
	const T = 400.0
	psat := saturationPressurePa(t, T)
	b := newBlock(t, params.StateVarsTPX, params.PresentLiquidVapor)
	residual := b.SaturationConstraint().Residual()

	setTP(t, b, T, psat)
	if r := evalNode(t, b, residual); math.Abs(r) > 1e-9 {
		t.Errorf("residual at Psat = %g, want 0", r)
	}
	setTP(t, b, T, psat*2)
	if r := evalNode(t, b, residual); r <= 0 {
		t.Errorf("residual above Psat = %g, want > 0", r)
	}
}

func TestPHBlockHasNoEquilibriumTerms(t *testing.T) {
	b := newBlock(t, params.StateVarsPH, params.PresentMix)
	if b.PUnderSat() != nil || b.POverSat() != nil {
		t.Error("PH block built saturation-distance terms")
	}
	if b.Complementarity() != nil || b.SaturationConstraint() != nil {
		t.Error("PH block built equilibrium constraints")
	}
}
