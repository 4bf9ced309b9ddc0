// Package state builds single-fluid thermodynamic state blocks on a Helmholtz
// free-energy kernel. A block owns the primary state variables for the
// configured formulation, the phase-equilibrium terms, and a derived-property
// graph covering phase-level and mixture-level quantities, all constructed
// eagerly and exactly once. Every variable, derived quantity, and constraint
// residual gets an entry in the block's scaling ledger at creation.
//
// Blocks never solve anything: they expose a consistent algebraic network for
// an equation-oriented solver, plus evaluation helpers for point calculations.
package state

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fluid-props/helmholtz/expr"
	"github.com/fluid-props/helmholtz/kernel"
	"github.com/fluid-props/helmholtz/observability"
	"github.com/fluid-props/helmholtz/params"
	"github.com/fluid-props/helmholtz/scaling"
)

// Constraint is an equation residual the surrounding solver may activate.
// The residual expression equals zero at a feasible point.
type Constraint struct {
	name     string
	residual expr.Node
	active   bool
}

// Name returns the constraint name.
func (c *Constraint) Name() string { return c.name }

// Residual returns the residual expression.
func (c *Constraint) Residual() expr.Node { return c.residual }

// Active reports whether the constraint participates in solving.
func (c *Constraint) Active() bool { return c.active }

// Block is one thermodynamic state instance.
type Block struct {
	id           string
	reg          *params.Registry
	definedState bool
	ledger       *scaling.Ledger

	flowMol        *expr.Var
	pressureVar    *expr.Var
	enthMolVar     *expr.Var // PH formulation only
	temperatureVar *expr.Var // TPX formulation only
	vaporFracVar   *expr.Var // TPX formulation only

	// Uniform views over the formulation-dependent variables.
	temperature expr.Node
	vaporFrac   expr.Node
	enthMol     expr.Node

	// Mirrored fluid constants, each with its own ledger entry.
	temperatureCrit expr.Node
	pressureCrit    expr.Node
	densMassCrit    expr.Node
	molarMass       expr.Node

	// Common sub-expressions shared across the graph.
	pressureKPa    expr.Node
	tau            expr.Node
	tauSat         expr.Node
	temperatureSat expr.Node
	temperatureRed expr.Node
	pressureSatKPa expr.Node
	pressureSat    expr.Node

	// Phase-equilibrium terms (TPX only; nil under PH).
	pUnderSat       expr.Node
	pOverSat        expr.Node
	complementarity *Constraint
	eqSat           *Constraint

	// Per-private-phase properties.
	densMassPhase          map[params.Phase]expr.Node
	densPhaseRed           map[params.Phase]expr.Node
	densMolPhase           map[params.Phase]expr.Node
	enthMolSatPhase        map[params.Phase]expr.Node
	energyInternalMolPhase map[params.Phase]expr.Node
	enthMolPhase           map[params.Phase]expr.Node
	entrMolPhase           map[params.Phase]expr.Node
	cpMolPhase             map[params.Phase]expr.Node
	cvMolPhase             map[params.Phase]expr.Node
	speedSoundPhase        map[params.Phase]expr.Node
	phaseFrac              map[params.Phase]expr.Node
	dhVapMol               expr.Node

	// Mixture-level properties.
	energyInternalMol expr.Node
	entrMol           expr.Node
	cpMol             expr.Node
	cvMol             expr.Node
	densMass          expr.Node
	densMol           expr.Node
	heatCapacityRatio expr.Node
	flowVol           expr.Node
	flowMass          expr.Node
	enthMass          expr.Node
	flowMolComp       expr.Node

	// Balance-equation interface terms keyed by public phase.
	materialFlowTerms  map[params.Phase]expr.Node
	enthalpyFlowTerms  map[params.Phase]expr.Node
	energyDensityTerms map[params.Phase]expr.Node

	stateVars     map[string]*expr.Var
	stateVarOrder []string
}

// Option configures a Block at construction.
type Option func(*Block)

// WithDefinedState marks the state point as externally over-specified by an
// upstream connection, suppressing the phase-equilibrium complementarity
// constraint under the TPX formulation.
func WithDefinedState(defined bool) Option {
	return func(b *Block) { b.definedState = defined }
}

// New builds a state block from the registry. Construction is eager: the
// whole variable set, equilibrium formulation, and derived graph exist on
// return, or an error is returned and no partial block escapes.
func New(reg *params.Registry, opts ...Option) (*Block, error) {
	b := &Block{
		id:     uuid.NewString(),
		reg:    reg,
		ledger: scaling.NewLedger(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if !reg.KernelAvailable() {
		observability.Emit(context.Background(), reg.Observer(), EventKernelMissing,
			observability.LevelWarning, "state", map[string]any{
				"block": b.id,
				"fluid": reg.Fluid().Name,
			})
	}

	for _, step := range []func() error{
		b.mirrorConstants,
		b.buildStateVars,
		b.buildCommon,
		b.buildPhaseDensities,
		b.buildDerived,
		b.buildInterfaceTerms,
	} {
		if err := step(); err != nil {
			return nil, fmt.Errorf("failed to build state block: %w", err)
		}
	}
	b.buildStateVarDict()

	observability.Emit(context.Background(), reg.Observer(), EventBuild,
		observability.LevelVerbose, "state", map[string]any{
			"block":        b.id,
			"fluid":        reg.Fluid().Name,
			"state_vars":   reg.StateVars().String(),
			"presentation": reg.Presentation().String(),
		})
	return b, nil
}

// mirror wraps a constant in a node with its own identity, so each mirrored
// parameter owns a distinct ledger entry.
func mirror(v float64) expr.Node { return expr.Sum(expr.C(v)) }

func (b *Block) mirrorConstants() error {
	fl := b.reg.Fluid()
	b.temperatureCrit = mirror(fl.TemperatureCrit)
	b.pressureCrit = mirror(fl.PressureCrit)
	b.densMassCrit = mirror(fl.DensMassCrit)
	b.molarMass = mirror(fl.MolarMass)

	for _, e := range []struct {
		node  expr.Node
		scale float64
	}{
		{b.temperatureCrit, 1e-2},
		{b.pressureCrit, 1e-6},
		{b.densMassCrit, 1e-2},
		{b.molarMass, 1e3},
	} {
		if err := b.ledger.SetConst(e.node, e.scale); err != nil {
			return err
		}
	}
	return nil
}

func (b *Block) buildStateVars() error {
	fl := b.reg.Fluid()

	b.flowMol = expr.NewVar("flow_mol", expr.WithInitial(1))
	if err := b.ledger.SetConst(b.flowMol, 1e-3); err != nil {
		return err
	}

	switch b.reg.StateVars() {
	case params.StateVarsPH:
		b.pressureVar = expr.NewVar("pressure",
			expr.WithInitial(fl.Pressure.Default),
			expr.WithBounds(fl.Pressure.Lower, fl.Pressure.Upper),
			expr.Positive(),
		)
		b.enthMolVar = expr.NewVar("enth_mol",
			expr.WithInitial(fl.Enthalpy.Default),
			expr.WithBounds(fl.Enthalpy.Lower, fl.Enthalpy.Upper),
		)
		if err := b.ledger.SetConst(b.enthMolVar, 1e-3); err != nil {
			return err
		}
		b.enthMol = b.enthMolVar
		b.pressureKPa = expr.Div(b.pressureVar, expr.C(1000))

		// The kernel encodes the saturation curve for this parameterization,
		// so temperature and vapor fraction come straight back from it.
		hMass := expr.Div(expr.Div(b.enthMolVar, b.molarMass), expr.C(1000))
		b.temperature = expr.Div(b.temperatureCrit, expr.Call(kernel.FuncTau, hMass, b.pressureKPa))
		switch b.reg.Presentation() {
		case params.PresentLiquid:
			b.vaporFrac = mirror(0)
		case params.PresentVapor:
			b.vaporFrac = mirror(1)
		default:
			b.vaporFrac = expr.Call(kernel.FuncVF, hMass, b.pressureKPa)
		}

	case params.StateVarsTPX:
		b.temperatureVar = expr.NewVar("temperature",
			expr.WithInitial(fl.Temperature.Default),
			expr.WithBounds(fl.Temperature.Lower, fl.Temperature.Upper),
			expr.Positive(),
		)
		b.pressureVar = expr.NewVar("pressure",
			expr.WithInitial(fl.Pressure.Default),
			expr.WithBounds(fl.Pressure.Lower, fl.Pressure.Upper),
			expr.Positive(),
		)
		// Deliberately unbounded: at a phase boundary the fraction sits
		// exactly on 0 or 1, and an active bound there hurts convergence.
		b.vaporFracVar = expr.NewVar("vapor_frac", expr.WithInitial(0))

		b.temperature = b.temperatureVar
		b.vaporFrac = b.vaporFracVar
		b.pressureKPa = expr.Div(b.pressureVar, expr.C(1000))
		// enth_mol is deferred to the derived graph: it needs the per-phase
		// enthalpies first.
	}

	for _, e := range []struct {
		node  expr.Node
		scale float64
	}{
		{b.temperature, 1e-1},
		{b.pressureVar, 1e-6},
		{b.vaporFrac, 1e1},
	} {
		if err := b.ledger.SetConst(e.node, e.scale); err != nil {
			return err
		}
	}
	return nil
}

func (b *Block) buildCommon() error {
	b.temperatureSat = expr.Div(b.temperatureCrit, expr.Call(kernel.FuncTauSat, b.pressureKPa))
	b.tauSat = expr.Call(kernel.FuncTauSat, b.pressureKPa)
	b.temperatureRed = expr.Div(b.temperature, b.temperatureCrit)
	b.tau = expr.Div(b.temperatureCrit, b.temperature)
	b.pressureSatKPa = expr.Call(kernel.FuncPSat, b.tau)
	b.pressureSat = expr.Prod(expr.C(1000), b.pressureSatKPa)

	for _, e := range []struct {
		node  expr.Node
		scale float64
	}{
		{b.temperatureSat, 1e-2},
		{b.temperatureRed, 1},
		{b.pressureSat, 1e-5},
	} {
		if err := b.ledger.SetConst(e.node, e.scale); err != nil {
			return err
		}
	}
	return nil
}

// buildPhaseDensities establishes the per-phase reduced and mass densities.
// Under PH both phases evaluate at the actual pressure; the kernel's density
// branches handle absent phases (a supercritical point counts as liquid).
// Under TPX the phase-equilibrium formulation supplies shifted pressures.
func (b *Block) buildPhaseDensities() error {
	if b.reg.StateVars() == params.StateVarsTPX {
		return b.buildPhaseEquilibrium()
	}

	b.densMassPhase = make(map[params.Phase]expr.Node)
	b.densPhaseRed = make(map[params.Phase]expr.Node)
	for _, p := range b.reg.TruePhases() {
		var delta expr.Node
		var scale float64
		if p == params.PhaseLiq {
			delta = expr.Call(kernel.FuncDeltaLiq, b.pressureKPa, b.tau)
			scale = 1e-2
		} else {
			delta = expr.Call(kernel.FuncDeltaVap, b.pressureKPa, b.tau)
			scale = 1e1
		}
		b.densPhaseRed[p] = delta
		b.densMassPhase[p] = expr.Prod(b.densMassCrit, delta)
		if err := b.ledger.SetConst(b.densMassPhase[p], scale); err != nil {
			return err
		}
		if err := b.ledger.SetConst(b.densPhaseRed[p], 1); err != nil {
			return err
		}
	}
	return nil
}

func (b *Block) buildStateVarDict() {
	b.stateVars = make(map[string]*expr.Var)
	switch {
	case b.reg.StateVars() == params.StateVarsPH:
		b.stateVarOrder = []string{"flow_mol", "enth_mol", "pressure"}
		b.stateVars["flow_mol"] = b.flowMol
		b.stateVars["enth_mol"] = b.enthMolVar
		b.stateVars["pressure"] = b.pressureVar
	case b.reg.Presentation().Single():
		b.stateVarOrder = []string{"flow_mol", "temperature", "pressure"}
		b.stateVars["flow_mol"] = b.flowMol
		b.stateVars["temperature"] = b.temperatureVar
		b.stateVars["pressure"] = b.pressureVar
	default:
		b.stateVarOrder = []string{"flow_mol", "temperature", "pressure", "vapor_frac"}
		b.stateVars["flow_mol"] = b.flowMol
		b.stateVars["temperature"] = b.temperatureVar
		b.stateVars["pressure"] = b.pressureVar
		b.stateVars["vapor_frac"] = b.vaporFracVar
	}
}

// ID returns the block's unique identity, used to key hold/release flags.
func (b *Block) ID() string { return b.id }

// Registry returns the shared parameter registry.
func (b *Block) Registry() *params.Registry { return b.reg }

// DefinedState reports whether the state point is externally over-specified.
func (b *Block) DefinedState() bool { return b.definedState }

// Ledger returns the block's scaling ledger.
func (b *Block) Ledger() *scaling.Ledger { return b.ledger }

// Evaluator returns an evaluator bound to the registry's kernel.
func (b *Block) Evaluator() *expr.Evaluator {
	return expr.NewEvaluator(b.reg.Kernel())
}

// FlowMol returns the total molar flow variable [mol/s].
func (b *Block) FlowMol() *expr.Var { return b.flowMol }

// Pressure returns the pressure variable [Pa].
func (b *Block) Pressure() *expr.Var { return b.pressureVar }

// Temperature returns the temperature [K]: a variable under TPX, a
// kernel-derived expression under PH.
func (b *Block) Temperature() expr.Node { return b.temperature }

// VaporFrac returns the vapor mole fraction: a variable under TPX, a derived
// or pinned expression under PH.
func (b *Block) VaporFrac() expr.Node { return b.vaporFrac }

// EnthMol returns the total molar enthalpy [J/mol]: a variable under PH, a
// phase-fraction-weighted expression under TPX.
func (b *Block) EnthMol() expr.Node { return b.enthMol }

// Tau returns the reduced inverse temperature Tc/T.
func (b *Block) Tau() expr.Node { return b.tau }

// TauSat returns the saturation reduced inverse temperature at pressure.
func (b *Block) TauSat() expr.Node { return b.tauSat }

// TemperatureSat returns the saturation temperature at pressure [K].
func (b *Block) TemperatureSat() expr.Node { return b.temperatureSat }

// TemperatureRed returns the reduced temperature T/Tc.
func (b *Block) TemperatureRed() expr.Node { return b.temperatureRed }

// PressureSat returns the saturation pressure at temperature [Pa].
func (b *Block) PressureSat() expr.Node { return b.pressureSat }

// PUnderSat returns the smoothed pressure deficit below saturation [kPa];
// nil under the PH formulation.
func (b *Block) PUnderSat() expr.Node { return b.pUnderSat }

// POverSat returns the smoothed pressure excess above saturation [kPa];
// nil under the PH formulation.
func (b *Block) POverSat() expr.Node { return b.pOverSat }

// Complementarity returns the phase-equilibrium complementarity constraint;
// nil when the block never built one (PH, single-phase, or defined state).
func (b *Block) Complementarity() *Constraint { return b.complementarity }

// SaturationConstraint returns the always-built, deactivated-by-default
// forced-saturation constraint; nil under the PH formulation.
func (b *Block) SaturationConstraint() *Constraint { return b.eqSat }

// StateVarNames returns the canonical primary-variable names in order.
func (b *Block) StateVarNames() []string {
	out := make([]string, len(b.stateVarOrder))
	copy(out, b.stateVarOrder)
	return out
}

// StateVar returns the primary variable with the given canonical name.
func (b *Block) StateVar(name string) (*expr.Var, bool) {
	v, ok := b.stateVars[name]
	return v, ok
}

// ExtensiveVarNames returns the primary variables that scale with flow.
func (b *Block) ExtensiveVarNames() []string { return []string{"flow_mol"} }

// IntensiveVarNames returns the primary variables independent of flow.
func (b *Block) IntensiveVarNames() []string {
	out := make([]string, 0, len(b.stateVarOrder)-1)
	for _, name := range b.stateVarOrder {
		if name != "flow_mol" {
			out = append(out, name)
		}
	}
	return out
}

// DisplayVars returns the human-facing summary quantities.
func (b *Block) DisplayVars() map[string]expr.Node {
	return map[string]expr.Node{
		"Molar Flow (mol/s)":     b.flowMol,
		"Mass Flow (kg/s)":       b.flowMass,
		"T (K)":                  b.temperature,
		"P (Pa)":                 b.pressureVar,
		"Vapor Fraction":         b.vaporFrac,
		"Molar Enthalpy (J/mol)": b.enthMol,
	}
}
