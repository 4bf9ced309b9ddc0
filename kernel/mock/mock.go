// Package mock provides an analytic water-like surrogate kernel implementing
// the full function vocabulary. It exists so property networks can be built
// and evaluated in tests and demos without the compiled native library. The
// surrogate is internally consistent — tau_sat inverts p_sat, the two-phase
// enthalpy blend inverts vf — but it is a caricature of water, not IAPWS-95.
package mock

import (
	"context"
	"fmt"
	"math"

	"github.com/fluid-props/helmholtz/fluids"
	"github.com/fluid-props/helmholtz/kernel"
)

// Surrogate constants. Critical properties match the embedded water bundle;
// the rest are tuned for water-like magnitudes near atmospheric conditions.
const (
	tempCrit     = 647.096  // K
	pressCritKPa = 22064.0  // kPa
	densCrit     = 322.0    // kg/m^3
	gasConst     = 0.46151805 // kJ/kg.K

	tempRef   = 273.16 // K, liquid enthalpy/entropy reference
	cpLiquid  = 4.2    // kJ/kg.K
	cvLiquid  = 4.0    // kJ/kg.K
	cpVapor   = 1.9    // kJ/kg.K
	slopeSat  = 7.2    // Clausius-type saturation slope
	latentRef = 3100.0 // kJ/kg, Watson correlation prefactor
	watsonExp = 0.38
	liqDelta0 = 3.1  // reduced liquid density on the saturation curve
	liqStiff  = 0.15 // liquid compressibility, d delta per (p-psat)/Pc

	// Ideal/residual Helmholtz surrogate coefficients.
	phi0TauCoeff = 2.5
	phirCoeff    = -0.1
)

type impl struct {
	arity int
	fn    func(args []float64) (float64, error)
}

// Fluid is a kernel.Invoker serving the surrogate water functions.
type Fluid struct {
	funcs map[kernel.Func]impl
}

// NewFluid creates the surrogate kernel.
func NewFluid() *Fluid {
	f := &Fluid{}
	f.funcs = map[kernel.Func]impl{
		kernel.FuncPSat:      {1, func(a []float64) (float64, error) { return pSat(a[0]), nil }},
		kernel.FuncTauSat:    {1, tauSatChecked},
		kernel.FuncDeltaLiq:  {2, func(a []float64) (float64, error) { return deltaLiq(a[0], a[1]), nil }},
		kernel.FuncDeltaVap:  {2, func(a []float64) (float64, error) { return deltaVap(a[0], a[1]), nil }},
		kernel.FuncDeltaSatL: {1, func(a []float64) (float64, error) { return liqDelta0, nil }},
		kernel.FuncDeltaSatV: {1, func(a []float64) (float64, error) { return deltaVap(pSat(a[0]), a[0]), nil }},
		kernel.FuncHLPT:      {2, func(a []float64) (float64, error) { return hLiquid(tempCrit / a[1]), nil }},
		kernel.FuncHVPT:      {2, hVaporPT},
		kernel.FuncTau:       {2, tauFromHP},
		kernel.FuncVF:        {2, vaporFrac},
		kernel.FuncP:         {2, reducedChecked(pressure)},
		kernel.FuncH:         {2, reducedChecked(enthalpy)},
		kernel.FuncU:         {2, reducedChecked(internalEnergy)},
		kernel.FuncS:         {2, reducedChecked(entropy)},
		kernel.FuncCP:        {2, reducedChecked(heatCapP)},
		kernel.FuncCV:        {2, reducedChecked(heatCapV)},
		kernel.FuncW:         {2, reducedChecked(speedSound)},
		kernel.FuncG:         {2, reducedChecked(gibbs)},
		kernel.FuncF:         {2, reducedChecked(helmholtz)},

		kernel.FuncPhi0:       {2, reducedChecked(func(d, t float64) float64 { return math.Log(d) + phi0TauCoeff*math.Log(t) })},
		kernel.FuncPhi0Delta:  {2, reducedChecked(func(d, t float64) float64 { return 1 / d })},
		kernel.FuncPhi0Delta2: {2, reducedChecked(func(d, t float64) float64 { return -1 / (d * d) })},
		kernel.FuncPhi0Tau:    {2, reducedChecked(func(d, t float64) float64 { return phi0TauCoeff / t })},
		kernel.FuncPhi0Tau2:   {2, reducedChecked(func(d, t float64) float64 { return -phi0TauCoeff / (t * t) })},
		kernel.FuncPhir:       {2, reducedChecked(func(d, t float64) float64 { return phirCoeff * d * t })},
		kernel.FuncPhirDelta:  {2, reducedChecked(func(d, t float64) float64 { return phirCoeff * t })},
		kernel.FuncPhirDelta2: {2, reducedChecked(func(d, t float64) float64 { return 0 })},
		kernel.FuncPhirTau:    {2, reducedChecked(func(d, t float64) float64 { return phirCoeff * d })},
		kernel.FuncPhirTau2:   {2, reducedChecked(func(d, t float64) float64 { return 0 })},
		kernel.FuncPhirDeltaTau: {2, reducedChecked(func(d, t float64) float64 { return phirCoeff })},
	}
	return f
}

// Invoke evaluates a surrogate function.
func (f *Fluid) Invoke(ctx context.Context, fn kernel.Func, args ...float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	im, ok := f.funcs[fn]
	if !ok {
		return 0, fmt.Errorf("%w: %s", kernel.ErrNotFound, fn)
	}
	if len(args) != im.arity {
		return 0, fmt.Errorf("%s expects %d operands, got %d", fn, im.arity, len(args))
	}
	return im.fn(args)
}

// Available reports true: the surrogate serves the whole vocabulary.
func (f *Fluid) Available() bool { return true }

// Install registers every surrogate function on a kernel registry.
func (f *Fluid) Install(r *kernel.Registry) error {
	for fn, im := range f.funcs {
		im := im
		handler := func(args ...float64) (float64, error) {
			if len(args) != im.arity {
				return 0, fmt.Errorf("expected %d operands, got %d", im.arity, len(args))
			}
			return im.fn(args)
		}
		if err := r.Register(fn, handler); err != nil {
			return fmt.Errorf("failed to install %s: %w", fn, err)
		}
	}
	return nil
}

// Definition returns the fluid constant bundle the surrogate is tuned to.
func (f *Fluid) Definition() fluids.Definition {
	return fluids.Water()
}

// pSat is the Clausius-type saturation pressure [kPa] at tau = Tc/T.
func pSat(tau float64) float64 {
	return pressCritKPa * math.Exp(slopeSat*(1-tau))
}

// tauSat inverts pSat exactly.
func tauSat(p float64) float64 {
	return 1 - math.Log(p/pressCritKPa)/slopeSat
}

func tauSatChecked(a []float64) (float64, error) {
	if a[0] <= 0 {
		return 0, fmt.Errorf("tau_sat: nonpositive pressure %g", a[0])
	}
	return tauSat(a[0]), nil
}

// latent is a Watson-correlation heat of vaporization [kJ/kg].
func latent(T float64) float64 {
	return latentRef * math.Pow(math.Max(0, 1-T/tempCrit), watsonExp)
}

func hLiquid(T float64) float64 {
	return cpLiquid * (T - tempRef)
}

// deltaVap is the ideal-gas reduced vapor density at (p [kPa], tau).
func deltaVap(p, tau float64) float64 {
	return p * tau / (gasConst * tempCrit * densCrit)
}

// deltaLiq is a slightly compressible liquid reduced density; at p = psat it
// equals liqDelta0, so an absent liquid phase evaluated at the shifted
// pressure lands exactly on the saturation curve.
func deltaLiq(p, tau float64) float64 {
	return liqDelta0 * (1 + liqStiff*(p-pSat(tau))/pressCritKPa)
}

func hVaporPT(a []float64) (float64, error) {
	p, tau := a[0], a[1]
	if p <= 0 || tau <= 0 {
		return 0, fmt.Errorf("hvpt: nonpositive operand (p=%g, tau=%g)", p, tau)
	}
	T := tempCrit / tau
	Tsat := tempCrit / tauSat(p)
	return hLiquid(Tsat) + latent(Tsat) + cpVapor*(T-Tsat), nil
}

func tauFromHP(a []float64) (float64, error) {
	h, p := a[0], a[1]
	if p <= 0 {
		return 0, fmt.Errorf("tau: nonpositive pressure %g", p)
	}
	Tsat := tempCrit / tauSat(p)
	hls := hLiquid(Tsat)
	hvs := hls + latent(Tsat)

	var T float64
	switch {
	case h <= hls:
		T = tempRef + h/cpLiquid
	case h >= hvs:
		T = Tsat + (h-hvs)/cpVapor
	default:
		T = Tsat
	}
	if T <= 0 {
		return 0, fmt.Errorf("tau: enthalpy %g below representable range", h)
	}
	return tempCrit / T, nil
}

func vaporFrac(a []float64) (float64, error) {
	h, p := a[0], a[1]
	if p <= 0 {
		return 0, fmt.Errorf("vf: nonpositive pressure %g", p)
	}
	Tsat := tempCrit / tauSat(p)
	hls := hLiquid(Tsat)
	hvs := hls + latent(Tsat)
	x := (h - hls) / (hvs - hls)
	return math.Min(1, math.Max(0, x)), nil
}

// reducedChecked wraps a (delta, tau) function with operand validation.
func reducedChecked(fn func(delta, tau float64) float64) func([]float64) (float64, error) {
	return func(a []float64) (float64, error) {
		if a[0] <= 0 || a[1] <= 0 {
			return 0, fmt.Errorf("nonpositive reduced operand (delta=%g, tau=%g)", a[0], a[1])
		}
		return fn(a[0], a[1]), nil
	}
}

func isLiquid(delta float64) bool { return delta >= 1 }

// pressure inverts the density models: liquid stiffness for delta >= 1,
// ideal gas otherwise. [kPa]
func pressure(delta, tau float64) float64 {
	if isLiquid(delta) {
		return pSat(tau) + (delta/liqDelta0-1)*pressCritKPa/liqStiff
	}
	return delta * densCrit * gasConst * (tempCrit / tau)
}

func enthalpy(delta, tau float64) float64 {
	T := tempCrit / tau
	if isLiquid(delta) {
		return hLiquid(T)
	}
	h, _ := hVaporPT([]float64{pressure(delta, tau), tau})
	return h
}

func internalEnergy(delta, tau float64) float64 {
	return enthalpy(delta, tau) - pressure(delta, tau)/(delta*densCrit)
}

func entropy(delta, tau float64) float64 {
	T := tempCrit / tau
	if isLiquid(delta) {
		return cpLiquid * math.Log(T/tempRef)
	}
	p := pressure(delta, tau)
	Tsat := tempCrit / tauSat(p)
	return cpLiquid*math.Log(Tsat/tempRef) + latent(Tsat)/Tsat + cpVapor*math.Log(T/Tsat)
}

func heatCapP(delta, tau float64) float64 {
	if isLiquid(delta) {
		return cpLiquid
	}
	return cpVapor
}

func heatCapV(delta, tau float64) float64 {
	if isLiquid(delta) {
		return cvLiquid
	}
	return cpVapor - gasConst
}

func speedSound(delta, tau float64) float64 {
	if isLiquid(delta) {
		return 1500.0
	}
	gamma := cpVapor / (cpVapor - gasConst)
	return math.Sqrt(gamma * gasConst * 1000 * (tempCrit / tau))
}

func gibbs(delta, tau float64) float64 {
	return enthalpy(delta, tau) - (tempCrit/tau)*entropy(delta, tau)
}

func helmholtz(delta, tau float64) float64 {
	return internalEnergy(delta, tau) - (tempCrit/tau)*entropy(delta, tau)
}
