// Package params holds the per-fluid parameter registry: the fluid constant
// bundle, the state-variable formulation, the phase presentation, the
// phase-equilibrium smoothing widths, and the kernel handle. A registry is
// immutable after construction; state blocks are built from it and share it.
package params

import (
	"context"
	"errors"
	"fmt"

	"github.com/fluid-props/helmholtz/fluids"
	"github.com/fluid-props/helmholtz/kernel"
	"github.com/fluid-props/helmholtz/observability"
)

// ErrConfiguration indicates an invalid registry configuration.
var ErrConfiguration = errors.New("invalid configuration")

// Observability event types emitted by this package.
const (
	EventKernelMissing observability.EventType = "params.kernel.missing"
)

// StateVars selects the state-variable formulation for blocks built from the
// registry.
type StateVars int

const (
	// StateVarsPH formulates state as total molar flow, molar enthalpy, and
	// pressure. Temperature and vapor fraction are derived.
	StateVarsPH StateVars = iota
	// StateVarsTPX formulates state as temperature, pressure, and vapor
	// fraction, with per-phase flows following the presentation.
	StateVarsTPX
)

func (s StateVars) String() string {
	switch s {
	case StateVarsPH:
		return "PH"
	case StateVarsTPX:
		return "TPX"
	default:
		return fmt.Sprintf("StateVars(%d)", int(s))
	}
}

// Phase names a phase of the fluid.
type Phase string

const (
	PhaseLiq Phase = "Liq"
	PhaseVap Phase = "Vap"
	PhaseMix Phase = "Mix"
)

// PhasePresentation selects which phases blocks present to their surroundings.
// Property evaluation always resolves both liquid and vapor internally; the
// presentation controls the externally visible phase list and, for single
// phases, pins the vapor fraction.
type PhasePresentation int

const (
	// PresentMix presents one mixed pseudo-phase.
	PresentMix PhasePresentation = iota
	// PresentLiquidVapor presents liquid and vapor separately.
	PresentLiquidVapor
	// PresentLiquid presents liquid only; vapor fraction is pinned to zero.
	PresentLiquid
	// PresentVapor presents vapor only; vapor fraction is pinned to one.
	PresentVapor
)

func (p PhasePresentation) String() string {
	switch p {
	case PresentMix:
		return "MIX"
	case PresentLiquidVapor:
		return "LG"
	case PresentLiquid:
		return "L"
	case PresentVapor:
		return "G"
	default:
		return fmt.Sprintf("PhasePresentation(%d)", int(p))
	}
}

// Phases returns the externally visible phase list for the presentation.
func (p PhasePresentation) Phases() []Phase {
	switch p {
	case PresentMix:
		return []Phase{PhaseMix}
	case PresentLiquidVapor:
		return []Phase{PhaseLiq, PhaseVap}
	case PresentLiquid:
		return []Phase{PhaseLiq}
	case PresentVapor:
		return []Phase{PhaseVap}
	default:
		return nil
	}
}

// Single reports whether the presentation pins the state to one true phase.
func (p PhasePresentation) Single() bool {
	return p == PresentLiquid || p == PresentVapor
}

// Default smoothing widths for the phase-equilibrium complementarity, in kPa.
const (
	DefaultSmoothingPressureOver  = 1e-4
	DefaultSmoothingPressureUnder = 1e-4
)

// Config carries the registry configuration. Zero smoothing widths take the
// defaults; everything else must be set explicitly.
type Config struct {
	Fluid        fluids.Definition
	StateVars    StateVars
	Presentation PhasePresentation

	// Kernel evaluates the native property functions. May be nil: blocks can
	// still be constructed, and evaluation fails with kernel.ErrUnavailable.
	Kernel kernel.Invoker

	// SmoothingPressureOver and SmoothingPressureUnder are the smooth-max
	// widths [kPa] applied to the pressure-over and pressure-under terms of
	// the equilibrium complementarity.
	SmoothingPressureOver  float64
	SmoothingPressureUnder float64
}

// Option configures a Registry at construction.
type Option func(*Registry)

// WithObserver attaches an observer receiving the registry's and its blocks'
// events.
func WithObserver(o observability.Observer) Option {
	return func(r *Registry) { r.observer = o }
}

// Registry is an immutable per-fluid parameter set shared by state blocks.
type Registry struct {
	cfg             Config
	observer        observability.Observer
	kernelAvailable bool
}

// New validates the configuration and creates a registry. A missing or
// incomplete kernel is not an error — construction is decoupled from
// evaluation — but it is reported through the observer.
func New(cfg Config, opts ...Option) (*Registry, error) {
	if err := cfg.Fluid.Validate(); err != nil {
		return nil, fmt.Errorf("%w: fluid: %w", ErrConfiguration, err)
	}
	switch cfg.StateVars {
	case StateVarsPH, StateVarsTPX:
	default:
		return nil, fmt.Errorf("%w: unknown state variable set %d", ErrConfiguration, int(cfg.StateVars))
	}
	switch cfg.Presentation {
	case PresentMix, PresentLiquidVapor, PresentLiquid, PresentVapor:
	default:
		return nil, fmt.Errorf("%w: unknown phase presentation %d", ErrConfiguration, int(cfg.Presentation))
	}
	if cfg.SmoothingPressureOver == 0 {
		cfg.SmoothingPressureOver = DefaultSmoothingPressureOver
	}
	if cfg.SmoothingPressureUnder == 0 {
		cfg.SmoothingPressureUnder = DefaultSmoothingPressureUnder
	}
	if cfg.SmoothingPressureOver < 0 || cfg.SmoothingPressureUnder < 0 {
		return nil, fmt.Errorf("%w: negative smoothing width", ErrConfiguration)
	}

	r := &Registry{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}

	r.kernelAvailable = kernel.Available(cfg.Kernel)
	if !r.kernelAvailable {
		observability.Emit(context.Background(), r.observer, EventKernelMissing, observability.LevelWarning,
			"params", map[string]any{
				"fluid": cfg.Fluid.Name,
			})
	}
	return r, nil
}

// Fluid returns the fluid constant bundle.
func (r *Registry) Fluid() fluids.Definition { return r.cfg.Fluid }

// StateVars returns the state-variable formulation.
func (r *Registry) StateVars() StateVars { return r.cfg.StateVars }

// Presentation returns the phase presentation.
func (r *Registry) Presentation() PhasePresentation { return r.cfg.Presentation }

// Kernel returns the kernel handle; may be nil.
func (r *Registry) Kernel() kernel.Invoker { return r.cfg.Kernel }

// KernelAvailable reports the availability probed at construction.
func (r *Registry) KernelAvailable() bool { return r.kernelAvailable }

// Observer returns the attached observer; may be nil.
func (r *Registry) Observer() observability.Observer { return r.observer }

// SmoothingPressureOver returns the pressure-over smoothing width [kPa].
func (r *Registry) SmoothingPressureOver() float64 { return r.cfg.SmoothingPressureOver }

// SmoothingPressureUnder returns the pressure-under smoothing width [kPa].
func (r *Registry) SmoothingPressureUnder() float64 { return r.cfg.SmoothingPressureUnder }

// Phases returns the externally visible phase list.
func (r *Registry) Phases() []Phase { return r.cfg.Presentation.Phases() }

// TruePhases returns the phases property evaluation resolves internally,
// always liquid and vapor regardless of presentation.
func (r *Registry) TruePhases() []Phase { return []Phase{PhaseLiq, PhaseVap} }
