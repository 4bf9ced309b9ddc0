package state

import (
	"github.com/fluid-props/helmholtz/expr"
	"github.com/fluid-props/helmholtz/kernel"
	"github.com/fluid-props/helmholtz/params"
)

// liquid/vapor scale-factor pair for per-phase ledger entries.
type phaseScale struct{ liq, vap float64 }

func (s phaseScale) of(p params.Phase) float64 {
	if p == params.PhaseLiq {
		return s.liq
	}
	return s.vap
}

// buildDerived constructs every phase-level and mixture-level property as a
// pure function of the primary state. Each phase's value is computed even
// when the phase is absent — the densities from the equilibrium formulation
// put it on its own saturation boundary — so the graph has no branches.
func (b *Block) buildDerived() error {
	mw := b.molarMass
	tau := b.tau
	phases := b.reg.TruePhases()

	// molarProp is 1000*mw*fn(delta_p, tau): kernel kJ/kg to J/mol.
	molarProp := func(fn kernel.Func, p params.Phase) expr.Node {
		return expr.Prod(expr.C(1000), mw, expr.Call(fn, b.densPhaseRed[p], tau))
	}
	perPhase := func(build func(p params.Phase) expr.Node, scale phaseScale) (map[params.Phase]expr.Node, error) {
		out := make(map[params.Phase]expr.Node)
		for _, p := range phases {
			out[p] = build(p)
			if err := b.ledger.SetConst(out[p], scale.of(p)); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	var err error

	// Saturated enthalpy at the current pressure (not temperature); the
	// difference across phases is the latent heat at pressure.
	b.enthMolSatPhase, err = perPhase(func(p params.Phase) expr.Node {
		fn := kernel.FuncHLPT
		if p == params.PhaseVap {
			fn = kernel.FuncHVPT
		}
		return expr.Prod(expr.C(1000), mw, expr.Call(fn, b.pressureKPa, b.tauSat))
	}, phaseScale{liq: 1e-2, vap: 1e-4})
	if err != nil {
		return err
	}
	b.dhVapMol = expr.Sub(b.enthMolSatPhase[params.PhaseVap], b.enthMolSatPhase[params.PhaseLiq])
	if err := b.ledger.SetConst(b.dhVapMol, 1e-4); err != nil {
		return err
	}

	if b.energyInternalMolPhase, err = perPhase(func(p params.Phase) expr.Node {
		return molarProp(kernel.FuncU, p)
	}, phaseScale{liq: 1e-2, vap: 1e-4}); err != nil {
		return err
	}
	if b.enthMolPhase, err = perPhase(func(p params.Phase) expr.Node {
		return molarProp(kernel.FuncH, p)
	}, phaseScale{liq: 1e-2, vap: 1e-4}); err != nil {
		return err
	}
	if b.entrMolPhase, err = perPhase(func(p params.Phase) expr.Node {
		return molarProp(kernel.FuncS, p)
	}, phaseScale{liq: 1e-1, vap: 1e-1}); err != nil {
		return err
	}
	if b.cpMolPhase, err = perPhase(func(p params.Phase) expr.Node {
		return molarProp(kernel.FuncCP, p)
	}, phaseScale{liq: 1e-2, vap: 1e-2}); err != nil {
		return err
	}
	if b.cvMolPhase, err = perPhase(func(p params.Phase) expr.Node {
		return molarProp(kernel.FuncCV, p)
	}, phaseScale{liq: 1e-2, vap: 1e-2}); err != nil {
		return err
	}
	if b.speedSoundPhase, err = perPhase(func(p params.Phase) expr.Node {
		return expr.Call(kernel.FuncW, b.densPhaseRed[p], tau)
	}, phaseScale{liq: 1e-2, vap: 1e-2}); err != nil {
		return err
	}
	if b.densMolPhase, err = perPhase(func(p params.Phase) expr.Node {
		return expr.Div(b.densMassPhase[p], mw)
	}, phaseScale{liq: 1e-2, vap: 1e-4}); err != nil {
		return err
	}
	if b.phaseFrac, err = perPhase(func(p params.Phase) expr.Node {
		if p == params.PhaseVap {
			return expr.Sum(b.vaporFrac)
		}
		return expr.Sub(expr.C(1), b.vaporFrac)
	}, phaseScale{liq: 10, vap: 10}); err != nil {
		return err
	}

	b.flowMolComp = expr.Sum(b.flowMol)
	if err := b.ledger.SetConst(b.flowMolComp, 1e-3); err != nil {
		return err
	}

	// Mixture properties. Enthalpy, internal energy, entropy, and heat
	// capacities are phase-fraction-weighted sums; densities are harmonic
	// (reciprocal-weighted), since volumes add, not masses.
	weighted := func(prop map[params.Phase]expr.Node) expr.Node {
		terms := make([]expr.Node, 0, len(phases))
		for _, p := range phases {
			terms = append(terms, expr.Prod(b.phaseFrac[p], prop[p]))
		}
		return expr.Sum(terms...)
	}
	harmonic := func(prop map[params.Phase]expr.Node) expr.Node {
		terms := make([]expr.Node, 0, len(phases))
		for _, p := range phases {
			terms = append(terms, expr.Div(b.phaseFrac[p], prop[p]))
		}
		return expr.Div(expr.C(1), expr.Sum(terms...))
	}

	if b.reg.StateVars() == params.StateVarsTPX {
		b.enthMol = weighted(b.enthMolPhase)
		if err := b.ledger.SetConst(b.enthMol, 1e-3); err != nil {
			return err
		}
	}
	b.energyInternalMol = weighted(b.energyInternalMolPhase)
	b.entrMol = weighted(b.entrMolPhase)
	b.cpMol = weighted(b.cpMolPhase)
	b.cvMol = weighted(b.cvMolPhase)
	b.densMass = harmonic(b.densMassPhase)
	b.densMol = harmonic(b.densMolPhase)
	b.heatCapacityRatio = expr.Div(b.cpMol, b.cvMol)
	b.flowVol = expr.Div(b.flowMol, b.densMol)
	b.flowMass = expr.Prod(mw, b.flowMol)
	b.enthMass = expr.Div(b.enthMol, mw)

	for _, e := range []struct {
		node  expr.Node
		scale float64
	}{
		{b.energyInternalMol, 1e-3},
		{b.entrMol, 1e-1},
		{b.cpMol, 1e-2},
		{b.cvMol, 1e-2},
		{b.densMass, 1e0},
		{b.densMol, 1e-3},
		{b.heatCapacityRatio, 1e1},
		{b.flowVol, 100},
		{b.flowMass, 1},
		{b.enthMass, 1},
	} {
		if err := b.ledger.SetConst(e.node, e.scale); err != nil {
			return err
		}
	}
	return nil
}

// buildInterfaceTerms constructs the per-public-phase material-flow,
// enthalpy-flow, and energy-density expressions consumed by the surrounding
// balance equations. Scale factors are reciprocal expressions tracking the
// physical magnitude, not fixed constants.
func (b *Block) buildInterfaceTerms() error {
	b.materialFlowTerms = make(map[params.Phase]expr.Node)
	b.enthalpyFlowTerms = make(map[params.Phase]expr.Node)
	b.energyDensityTerms = make(map[params.Phase]expr.Node)

	for _, p := range b.reg.Phases() {
		var material, enthalpyFlow, energyDensity, energyDensityScale expr.Node
		if p == params.PhaseMix {
			material = expr.Sum(b.flowMol)
			enthalpyFlow = expr.Prod(b.enthMol, b.flowMol)
			energyDensity = expr.Prod(b.densMol, b.energyInternalMol)
			energyDensityScale = expr.Div(expr.C(1), expr.Prod(b.energyInternalMol, b.flowMol))
		} else {
			material = expr.Prod(b.flowMol, b.phaseFrac[p])
			enthalpyFlow = expr.Prod(b.enthMolPhase[p], b.phaseFrac[p], b.flowMol)
			energyDensity = expr.Prod(b.densMolPhase[p], b.energyInternalMolPhase[p])
			energyDensityScale = expr.Div(expr.C(1), energyDensity)
		}

		b.materialFlowTerms[p] = material
		if err := b.ledger.Set(material, expr.Div(expr.C(1), b.flowMol)); err != nil {
			return err
		}
		b.enthalpyFlowTerms[p] = enthalpyFlow
		if err := b.ledger.Set(enthalpyFlow, expr.Div(expr.C(1), enthalpyFlow)); err != nil {
			return err
		}
		b.energyDensityTerms[p] = energyDensity
		if err := b.ledger.Set(energyDensity, energyDensityScale); err != nil {
			return err
		}
	}
	return nil
}

func (b *Block) privatePhaseNode(m map[params.Phase]expr.Node, p params.Phase) (expr.Node, bool) {
	n, ok := m[p]
	return n, ok
}

// DensMassPhase returns the phase mass density [kg/m^3].
func (b *Block) DensMassPhase(p params.Phase) (expr.Node, bool) {
	return b.privatePhaseNode(b.densMassPhase, p)
}

// DensPhaseRed returns the phase reduced density.
func (b *Block) DensPhaseRed(p params.Phase) (expr.Node, bool) {
	return b.privatePhaseNode(b.densPhaseRed, p)
}

// DensMolPhase returns the phase mole density [mol/m^3].
func (b *Block) DensMolPhase(p params.Phase) (expr.Node, bool) {
	return b.privatePhaseNode(b.densMolPhase, p)
}

// EnthMolSatPhase returns the saturated phase enthalpy at pressure [J/mol].
func (b *Block) EnthMolSatPhase(p params.Phase) (expr.Node, bool) {
	return b.privatePhaseNode(b.enthMolSatPhase, p)
}

// EnergyInternalMolPhase returns the phase internal energy [J/mol].
func (b *Block) EnergyInternalMolPhase(p params.Phase) (expr.Node, bool) {
	return b.privatePhaseNode(b.energyInternalMolPhase, p)
}

// EnthMolPhase returns the phase enthalpy [J/mol].
func (b *Block) EnthMolPhase(p params.Phase) (expr.Node, bool) {
	return b.privatePhaseNode(b.enthMolPhase, p)
}

// EntrMolPhase returns the phase entropy [J/mol/K].
func (b *Block) EntrMolPhase(p params.Phase) (expr.Node, bool) {
	return b.privatePhaseNode(b.entrMolPhase, p)
}

// CpMolPhase returns the phase isobaric heat capacity [J/mol/K].
func (b *Block) CpMolPhase(p params.Phase) (expr.Node, bool) {
	return b.privatePhaseNode(b.cpMolPhase, p)
}

// CvMolPhase returns the phase isochoric heat capacity [J/mol/K].
func (b *Block) CvMolPhase(p params.Phase) (expr.Node, bool) {
	return b.privatePhaseNode(b.cvMolPhase, p)
}

// SpeedSoundPhase returns the phase speed of sound [m/s].
func (b *Block) SpeedSoundPhase(p params.Phase) (expr.Node, bool) {
	return b.privatePhaseNode(b.speedSoundPhase, p)
}

// PhaseFrac returns the phase mole fraction.
func (b *Block) PhaseFrac(p params.Phase) (expr.Node, bool) {
	return b.privatePhaseNode(b.phaseFrac, p)
}

// DhVapMol returns the latent heat of vaporization at pressure [J/mol].
func (b *Block) DhVapMol() expr.Node { return b.dhVapMol }

// EnergyInternalMol returns the mixture internal energy [J/mol].
func (b *Block) EnergyInternalMol() expr.Node { return b.energyInternalMol }

// EntrMol returns the mixture entropy [J/mol/K].
func (b *Block) EntrMol() expr.Node { return b.entrMol }

// CpMol returns the mixture isobaric heat capacity [J/mol/K].
func (b *Block) CpMol() expr.Node { return b.cpMol }

// CvMol returns the mixture isochoric heat capacity [J/mol/K].
func (b *Block) CvMol() expr.Node { return b.cvMol }

// DensMass returns the mixture mass density [kg/m^3].
func (b *Block) DensMass() expr.Node { return b.densMass }

// DensMol returns the mixture mole density [mol/m^3].
func (b *Block) DensMol() expr.Node { return b.densMol }

// HeatCapacityRatio returns cp/cv.
func (b *Block) HeatCapacityRatio() expr.Node { return b.heatCapacityRatio }

// FlowVol returns the volumetric flow [m^3/s].
func (b *Block) FlowVol() expr.Node { return b.flowVol }

// FlowMass returns the mass flow [kg/s].
func (b *Block) FlowMass() expr.Node { return b.flowMass }

// EnthMass returns the mass enthalpy [J/kg].
func (b *Block) EnthMass() expr.Node { return b.enthMass }

// FlowMolComp returns the component molar flow; a pure fluid has one
// component, so this mirrors the total flow.
func (b *Block) FlowMolComp() expr.Node { return b.flowMolComp }

// MaterialFlowTerm returns the material flow term for a public phase [mol/s].
func (b *Block) MaterialFlowTerm(p params.Phase) (expr.Node, bool) {
	n, ok := b.materialFlowTerms[p]
	return n, ok
}

// EnthalpyFlowTerm returns the enthalpy flow term for a public phase [J/s].
func (b *Block) EnthalpyFlowTerm(p params.Phase) (expr.Node, bool) {
	n, ok := b.enthalpyFlowTerms[p]
	return n, ok
}

// EnergyDensityTerm returns the energy density term for a public phase
// [J/m^3].
func (b *Block) EnergyDensityTerm(p params.Phase) (expr.Node, bool) {
	n, ok := b.energyDensityTerms[p]
	return n, ok
}

// MaterialDensityTerm returns the material density term for a public phase
// [mol/m^3]: the mixture mole density for the mixed phase, the phase mole
// density otherwise.
func (b *Block) MaterialDensityTerm(p params.Phase) (expr.Node, bool) {
	if p == params.PhaseMix {
		if _, ok := b.materialFlowTerms[p]; !ok {
			return nil, false
		}
		return b.densMol, true
	}
	if _, ok := b.materialFlowTerms[p]; !ok {
		return nil, false
	}
	return b.densMolPhase[p], true
}
