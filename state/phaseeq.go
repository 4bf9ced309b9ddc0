package state

import (
	"fmt"

	"github.com/fluid-props/helmholtz/expr"
	"github.com/fluid-props/helmholtz/kernel"
	"github.com/fluid-props/helmholtz/params"
)

// buildPhaseEquilibrium makes the vapor fraction consistent with the
// saturation pressure without a discrete branch, keeping the formulation
// differentiable for gradient-based solvers.
//
// Two smoothed one-sided distances from saturation are built: P_under is
// nonzero when the pressure is below saturation (liquid cannot be the only
// phase), P_over when above (vapor cannot). Phase densities are evaluated at
// pressures shifted by these terms, so an absent phase lands on its own
// saturation boundary instead of an unphysical point. The smooth max is
// one-sided: always at or above the true max, within eps/2 of it.
func (b *Block) buildPhaseEquilibrium() error {
	p := b.pressureKPa
	psat := b.pressureSatKPa
	vf := b.vaporFracVar

	b.pUnderSat = expr.SmoothMax(expr.C(0), expr.Sub(psat, p), b.reg.SmoothingPressureUnder())
	b.pOverSat = expr.SmoothMax(expr.C(0), expr.Sub(p, psat), b.reg.SmoothingPressureOver())
	if err := b.ledger.SetConst(b.pUnderSat, 1e-2); err != nil {
		return err
	}
	if err := b.ledger.SetConst(b.pOverSat, 1e-2); err != nil {
		return err
	}

	b.densMassPhase = make(map[params.Phase]expr.Node)
	b.densPhaseRed = make(map[params.Phase]expr.Node)
	for _, ph := range b.reg.TruePhases() {
		var delta expr.Node
		var scale float64
		if ph == params.PhaseLiq {
			delta = expr.Call(kernel.FuncDeltaLiq, expr.Sum(p, b.pUnderSat), b.tau)
			scale = 1e-2
		} else {
			delta = expr.Call(kernel.FuncDeltaVap, expr.Sub(p, b.pOverSat), b.tau)
			scale = 1e1
		}
		b.densPhaseRed[ph] = delta
		b.densMassPhase[ph] = expr.Prod(b.densMassCrit, delta)
		if err := b.ledger.SetConst(b.densMassPhase[ph], scale); err != nil {
			return err
		}
	}

	// A single public phase label (including the mixed pseudo-phase) pins the
	// vapor fraction; only the two-phase presentation solves for it.
	if pub := b.reg.Phases(); len(pub) == 1 {
		if pub[0] == params.PhaseVap {
			vf.Fix(1)
		} else {
			vf.Fix(0)
		}
	} else if !b.definedState {
		// 0 = vf*P_over - (1-vf)*P_under forces the fraction to 1 above
		// saturation and 0 below, while staying smooth across the boundary.
		b.complementarity = &Constraint{
			name: "eq_complementarity",
			residual: expr.Sub(
				expr.Prod(vf, b.pOverSat),
				expr.Prod(expr.Sub(expr.C(1), vf), b.pUnderSat),
			),
			active: true,
		}
		if err := b.ledger.Set(b.complementarity.residual,
			expr.Div(expr.C(10), b.pressureVar)); err != nil {
			return err
		}
	}

	// eq_sat pins the pressure exactly on the saturation curve. Built for
	// every TPX block but deactivated; ForceSaturation swaps it in for the
	// complementarity form.
	b.eqSat = &Constraint{
		name: "eq_sat",
		residual: expr.Sub(
			expr.Div(p, expr.C(1000)),
			expr.Div(psat, expr.C(1000)),
		),
	}
	return b.ledger.Set(b.eqSat.residual, expr.Div(expr.C(1000), b.pressureVar))
}

// ForceSaturation toggles between the forced-saturation and complementarity
// formulations. The two constraints are mutually exclusive: activating one
// deactivates the other. Fails for blocks without a saturation constraint
// (PH formulation).
func (b *Block) ForceSaturation(on bool) error {
	if b.eqSat == nil {
		return fmt.Errorf("%w: block has no saturation constraint", ErrInvalidArgument)
	}
	b.eqSat.active = on
	if b.complementarity != nil {
		b.complementarity.active = !on
	}
	return nil
}
