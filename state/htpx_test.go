package state_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/fluid-props/helmholtz/fluids"
	"github.com/fluid-props/helmholtz/kernel"
	"github.com/fluid-props/helmholtz/kernel/mock"
	"github.com/fluid-props/helmholtz/params"
	"github.com/fluid-props/helmholtz/state"
)

func htpxRegistry(t *testing.T) *params.Registry {
	t.Helper()
	return newRegistry(t, params.StateVarsPH, params.PresentMix)
}

func TestEnthalpyFromTArgumentErrors(t *testing.T) {
	ctx := context.Background()
	reg := htpxRegistry(t)

	tests := []struct {
		name string
		T    float64
		opts []state.HTPXOption
	}{
		{name: "both pressure and vapor fraction", T: 372,
			opts: []state.HTPXOption{state.WithPressure(101325), state.WithVaporFraction(0.5)}},
		{name: "neither pressure nor vapor fraction", T: 372},
		{name: "temperature above bound", T: 1300,
			opts: []state.HTPXOption{state.WithPressure(101325)}},
		{name: "temperature below bound", T: 150,
			opts: []state.HTPXOption{state.WithPressure(101325)}},
		{name: "vapor fraction above one", T: 372,
			opts: []state.HTPXOption{state.WithVaporFraction(1.5)}},
		{name: "vapor fraction negative", T: 372,
			opts: []state.HTPXOption{state.WithVaporFraction(-0.1)}},
		{name: "pressure below bound", T: 372,
			opts: []state.HTPXOption{state.WithPressure(0.5)}},
		{name: "pressure above bound", T: 372,
			opts: []state.HTPXOption{state.WithPressure(2e9)}},
		{name: "narrowed temperature bounds", T: 372,
			opts: []state.HTPXOption{state.WithPressure(101325), state.WithTemperatureBounds(500, 900)}},
		{name: "narrowed pressure bounds", T: 372,
			opts: []state.HTPXOption{state.WithPressure(101325), state.WithPressureBounds(1e6, 1e8)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := state.EnthalpyFromT(ctx, reg, tt.T, tt.opts...)
			if !errors.Is(err, state.ErrInvalidArgument) {
				t.Errorf("EnthalpyFromT() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestEnthalpyFromTPressurePath(t *testing.T) {
	ctx := context.Background()
	reg := htpxRegistry(t)
	surrogate := mock.NewFluid()
	fl := reg.Fluid()
	tc := fl.TemperatureCrit

	invoke := func(fn kernel.Func, args ...float64) float64 {
		t.Helper()
		v, err := surrogate.Invoke(ctx, fn, args...)
		if err != nil {
			t.Fatalf("Invoke(%s) error = %v", fn, err)
		}
		return v
	}

	const P = 101325.0
	tauSat := invoke(kernel.FuncTauSat, P/1000)
	tSat := tc / tauSat

	// Slightly superheated: vapor branch.
	T := tSat + 2
	got, err := state.EnthalpyFromT(ctx, reg, T, state.WithPressure(P))
	if err != nil {
		t.Fatalf("EnthalpyFromT() error = %v", err)
	}
	want := invoke(kernel.FuncHVPT, P/1000, tc/T) * fl.MolarMass * 1000
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("superheated enthalpy = %g, want %g", got, want)
	}

	// Subcooled: liquid branch.
	T = tSat - 50
	got, err = state.EnthalpyFromT(ctx, reg, T, state.WithPressure(P))
	if err != nil {
		t.Fatalf("EnthalpyFromT() error = %v", err)
	}
	want = invoke(kernel.FuncHLPT, P/1000, tc/T) * fl.MolarMass * 1000
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("subcooled enthalpy = %g, want %g", got, want)
	}

	// Above the critical pressure the liquid branch applies even when the
	// temperature exceeds the saturation temperature at that pressure.
	const superP = 1e8
	T = 1100
	if tSatHigh := tc / invoke(kernel.FuncTauSat, superP/1000); T <= tSatHigh {
		t.Fatalf("test point not above saturation: T=%g Tsat=%g", T, tSatHigh)
	}
	got, err = state.EnthalpyFromT(ctx, reg, T, state.WithPressure(superP))
	if err != nil {
		t.Fatalf("EnthalpyFromT() error = %v", err)
	}
	want = invoke(kernel.FuncHLPT, superP/1000, tc/T) * fl.MolarMass * 1000
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("supercritical enthalpy = %g, want liquid branch %g", got, want)
	}
}

func TestEnthalpyFromTVaporFractionPath(t *testing.T) {
	ctx := context.Background()
	reg := htpxRegistry(t)
	surrogate := mock.NewFluid()
	fl := reg.Fluid()
	tc := fl.TemperatureCrit

	const T = 372.0
	tau := tc / T
	psat, err := surrogate.Invoke(ctx, kernel.FuncPSat, tau)
	if err != nil {
		t.Fatalf("Invoke(p_sat) error = %v", err)
	}
	hl, err := surrogate.Invoke(ctx, kernel.FuncHLPT, psat, tau)
	if err != nil {
		t.Fatalf("Invoke(hlpt) error = %v", err)
	}
	hv, err := surrogate.Invoke(ctx, kernel.FuncHVPT, psat, tau)
	if err != nil {
		t.Fatalf("Invoke(hvpt) error = %v", err)
	}
	toMolar := func(h float64) float64 { return h * fl.MolarMass * 1000 }

	for _, x := range []float64{0, 0.5, 1} {
		got, err := state.EnthalpyFromT(ctx, reg, T, state.WithVaporFraction(x))
		if err != nil {
			t.Fatalf("EnthalpyFromT(x=%g) error = %v", x, err)
		}
		want := toMolar(hl)*(1-x) + toMolar(hv)*x
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("blended enthalpy at x=%g = %g, want %g", x, got, want)
		}
	}
}

func TestEnthalpyFromTWithoutKernel(t *testing.T) {
	reg, err := params.New(params.Config{
		Fluid:        fluids.Water(),
		StateVars:    params.StateVarsPH,
		Presentation: params.PresentMix,
	})
	if err != nil {
		t.Fatalf("params.New() error = %v", err)
	}
	_, err = state.EnthalpyFromT(context.Background(), reg, 372, state.WithPressure(101325))
	if !errors.Is(err, kernel.ErrUnavailable) {
		t.Errorf("EnthalpyFromT() error = %v, want ErrUnavailable", err)
	}
}
