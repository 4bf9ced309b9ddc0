// Package kernel defines the call convention for native Helmholtz property
// functions: named entry points evaluating quantities derived from the reduced
// Helmholtz free energy, given reduced-density and reduced-inverse-temperature
// style arguments.
//
// The Invoker interface abstracts where those functions live. Registry holds
// in-process Go implementations; kernel/remote speaks the same convention to
// an out-of-process function service. All implementations are expected to be
// pure and reentrant.
//
// Unit conventions follow the native libraries: pressures in kPa, mass
// enthalpy in kJ/kg, reduced density delta = rho/rho_crit, and reduced inverse
// temperature tau = T_crit/T.
package kernel

import "context"

// Func names a native property function.
type Func string

// The fixed function vocabulary. Arguments are (delta, tau) unless noted.
const (
	FuncP    Func = "p"    // pressure [kPa]
	FuncU    Func = "u"    // internal energy [kJ/kg]
	FuncS    Func = "s"    // entropy [kJ/kg.K]
	FuncH    Func = "h"    // enthalpy [kJ/kg]
	FuncHVPT Func = "hvpt" // vapor-branch enthalpy [kJ/kg], args (p, tau)
	FuncHLPT Func = "hlpt" // liquid-branch enthalpy [kJ/kg], args (p, tau)
	FuncTau  Func = "tau"  // reduced inverse temperature, args (h, p)
	FuncVF   Func = "vf"   // vapor fraction, args (h, p)
	FuncG    Func = "g"    // Gibbs free energy [kJ/kg]
	FuncF    Func = "f"    // Helmholtz free energy [kJ/kg]
	FuncCV   Func = "cv"   // isochoric heat capacity [kJ/kg.K]
	FuncCP   Func = "cp"   // isobaric heat capacity [kJ/kg.K]
	FuncW    Func = "w"    // speed of sound [m/s]

	FuncDeltaLiq Func = "delta_liq" // liquid reduced density, args (p, tau)
	FuncDeltaVap Func = "delta_vap" // vapor reduced density, args (p, tau)
	FuncDeltaSatL Func = "delta_sat_l" // saturated-liquid reduced density, args (tau)
	FuncDeltaSatV Func = "delta_sat_v" // saturated-vapor reduced density, args (tau)
	FuncPSat   Func = "p_sat"   // saturation pressure [kPa], args (tau)
	FuncTauSat Func = "tau_sat" // saturation tau, args (p)

	// Ideal and residual parts of the dimensionless Helmholtz free energy and
	// their partials in delta and tau, to second order.
	FuncPhi0         Func = "phi0"
	FuncPhi0Delta    Func = "phi0_delta"
	FuncPhi0Delta2   Func = "phi0_delta2"
	FuncPhi0Tau      Func = "phi0_tau"
	FuncPhi0Tau2     Func = "phi0_tau2"
	FuncPhir         Func = "phir"
	FuncPhirDelta    Func = "phir_delta"
	FuncPhirDelta2   Func = "phir_delta2"
	FuncPhirTau      Func = "phir_tau"
	FuncPhirTau2     Func = "phir_tau2"
	FuncPhirDeltaTau Func = "phir_delta_tau"
)

// Vocabulary lists every function a complete kernel must provide.
var Vocabulary = []Func{
	FuncP, FuncU, FuncS, FuncH, FuncHVPT, FuncHLPT, FuncTau, FuncVF,
	FuncG, FuncF, FuncCV, FuncCP, FuncW,
	FuncDeltaLiq, FuncDeltaVap, FuncDeltaSatL, FuncDeltaSatV,
	FuncPSat, FuncTauSat,
	FuncPhi0, FuncPhi0Delta, FuncPhi0Delta2, FuncPhi0Tau, FuncPhi0Tau2,
	FuncPhir, FuncPhirDelta, FuncPhirDelta2, FuncPhirTau, FuncPhirTau2,
	FuncPhirDeltaTau,
}

// Invoker evaluates a named property function on scalar operands.
type Invoker interface {
	Invoke(ctx context.Context, fn Func, args ...float64) (float64, error)
}

// Available reports whether an invoker can be expected to serve calls. An
// invoker may opt in to availability reporting by implementing
// Available() bool; otherwise a non-nil invoker is assumed available.
func Available(inv Invoker) bool {
	if inv == nil {
		return false
	}
	if a, ok := inv.(interface{ Available() bool }); ok {
		return a.Available()
	}
	return true
}
