package state

import (
	"context"
	"fmt"

	"github.com/fluid-props/helmholtz/kernel"
	"github.com/fluid-props/helmholtz/params"
)

// Default argument bounds for EnthalpyFromT.
const (
	DefaultTemperatureMin = 200.0 // K
	DefaultTemperatureMax = 1200.0
	DefaultPressureMin    = 1.0 // Pa
	DefaultPressureMax    = 1e9
)

type htpxOptions struct {
	pressure  *float64
	vaporFrac *float64
	tMin      float64
	tMax      float64
	pMin      float64
	pMax      float64
}

// HTPXOption configures EnthalpyFromT.
type HTPXOption func(*htpxOptions)

// WithPressure supplies the pressure [Pa] for the subcooled/superheated path.
func WithPressure(p float64) HTPXOption {
	return func(o *htpxOptions) { o.pressure = &p }
}

// WithVaporFraction supplies the vapor fraction for the saturated path.
func WithVaporFraction(x float64) HTPXOption {
	return func(o *htpxOptions) { o.vaporFrac = &x }
}

// WithTemperatureBounds overrides the allowed temperature range [K].
func WithTemperatureBounds(lo, hi float64) HTPXOption {
	return func(o *htpxOptions) { o.tMin, o.tMax = lo, hi }
}

// WithPressureBounds overrides the allowed pressure range [Pa].
func WithPressureBounds(lo, hi float64) HTPXOption {
	return func(o *htpxOptions) { o.pMin, o.pMax = lo, hi }
}

// EnthalpyFromT computes the total molar enthalpy [J/mol] at a temperature,
// for inlet streams and initialization where temperature is known instead of
// enthalpy. Exactly one of WithPressure and WithVaporFraction must be given:
// with a pressure, the temperature is compared against the saturation
// temperature at that pressure and the liquid- or vapor-branch enthalpy is
// returned (a supercritical pressure counts as liquid); with a vapor
// fraction, saturated-liquid and saturated-vapor enthalpies at the
// saturation pressure are blended linearly.
func EnthalpyFromT(ctx context.Context, reg *params.Registry, T float64, opts ...HTPXOption) (float64, error) {
	o := htpxOptions{
		tMin: DefaultTemperatureMin,
		tMax: DefaultTemperatureMax,
		pMin: DefaultPressureMin,
		pMax: DefaultPressureMax,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if (o.pressure == nil) == (o.vaporFrac == nil) {
		return 0, fmt.Errorf("%w: exactly one of pressure and vapor fraction must be given", ErrInvalidArgument)
	}
	if T < o.tMin || T > o.tMax {
		return 0, fmt.Errorf("%w: T = %g outside [%g, %g]", ErrInvalidArgument, T, o.tMin, o.tMax)
	}
	if o.pressure != nil && (*o.pressure < o.pMin || *o.pressure > o.pMax) {
		return 0, fmt.Errorf("%w: P = %g outside [%g, %g]", ErrInvalidArgument, *o.pressure, o.pMin, o.pMax)
	}
	if o.vaporFrac != nil && (*o.vaporFrac < 0 || *o.vaporFrac > 1) {
		return 0, fmt.Errorf("%w: vapor fraction = %g outside [0, 1]", ErrInvalidArgument, *o.vaporFrac)
	}

	inv := reg.Kernel()
	if inv == nil {
		return 0, fmt.Errorf("enthalpy from temperature: %w", kernel.ErrUnavailable)
	}
	fl := reg.Fluid()
	tc := fl.TemperatureCrit
	mw := fl.MolarMass
	tau := tc / T

	// toMolar converts a kernel mass enthalpy [kJ/kg] to [J/mol].
	toMolar := func(h float64) float64 { return h * mw * 1000 }

	if o.pressure != nil {
		p := *o.pressure
		pKPa := p / 1000
		tauSat, err := inv.Invoke(ctx, kernel.FuncTauSat, pKPa)
		if err != nil {
			return 0, fmt.Errorf("enthalpy from temperature: %w", err)
		}
		branch := kernel.FuncHVPT
		if T < tc/tauSat || p > fl.PressureCrit {
			branch = kernel.FuncHLPT
		}
		h, err := inv.Invoke(ctx, branch, pKPa, tau)
		if err != nil {
			return 0, fmt.Errorf("enthalpy from temperature: %w", err)
		}
		return toMolar(h), nil
	}

	x := *o.vaporFrac
	psat, err := inv.Invoke(ctx, kernel.FuncPSat, tau)
	if err != nil {
		return 0, fmt.Errorf("enthalpy from temperature: %w", err)
	}
	hl, err := inv.Invoke(ctx, kernel.FuncHLPT, psat, tau)
	if err != nil {
		return 0, fmt.Errorf("enthalpy from temperature: %w", err)
	}
	hv, err := inv.Invoke(ctx, kernel.FuncHVPT, psat, tau)
	if err != nil {
		return 0, fmt.Errorf("enthalpy from temperature: %w", err)
	}
	return toMolar(hl)*(1-x) + toMolar(hv)*x, nil
}
