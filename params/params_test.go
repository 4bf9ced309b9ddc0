package params_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fluid-props/helmholtz/fluids"
	"github.com/fluid-props/helmholtz/kernel"
	"github.com/fluid-props/helmholtz/kernel/mock"
	"github.com/fluid-props/helmholtz/observability"
	"github.com/fluid-props/helmholtz/params"
)

// recorder captures emitted events.
type recorder struct {
	events []observability.Event
}

func (r *recorder) OnEvent(_ context.Context, e observability.Event) {
	r.events = append(r.events, e)
}

func validConfig() params.Config {
	return params.Config{
		Fluid:        fluids.Water(),
		StateVars:    params.StateVarsPH,
		Presentation: params.PresentMix,
		Kernel:       mock.NewFluid(),
	}
}

func TestNew(t *testing.T) {
	rec := &recorder{}
	r, err := params.New(validConfig(), params.WithObserver(rec))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !r.KernelAvailable() {
		t.Error("KernelAvailable() = false with a complete kernel")
	}
	if len(rec.events) != 0 {
		t.Errorf("unexpected events: %v", rec.events)
	}
	if r.Fluid().Name != "water" {
		t.Errorf("Fluid().Name = %q", r.Fluid().Name)
	}
	if r.SmoothingPressureOver() != params.DefaultSmoothingPressureOver {
		t.Errorf("SmoothingPressureOver() = %g, want default", r.SmoothingPressureOver())
	}
	if r.SmoothingPressureUnder() != params.DefaultSmoothingPressureUnder {
		t.Errorf("SmoothingPressureUnder() = %g, want default", r.SmoothingPressureUnder())
	}
}

func TestNew_MissingKernelWarns(t *testing.T) {
	tests := []struct {
		name   string
		kernel kernel.Invoker
	}{
		{name: "nil kernel", kernel: nil},
		{name: "incomplete registry", kernel: kernel.NewRegistry()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Kernel = tt.kernel
			rec := &recorder{}

			r, err := params.New(cfg, params.WithObserver(rec))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if r.KernelAvailable() {
				t.Error("KernelAvailable() = true")
			}
			if len(rec.events) != 1 || rec.events[0].Type != params.EventKernelMissing {
				t.Fatalf("events = %v, want one %s", rec.events, params.EventKernelMissing)
			}
			if rec.events[0].Level != observability.LevelWarning {
				t.Errorf("event level = %v, want warning", rec.events[0].Level)
			}
		})
	}
}

func TestNew_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*params.Config)
	}{
		{name: "invalid fluid", mutate: func(c *params.Config) { c.Fluid = fluids.Definition{} }},
		{name: "unknown state vars", mutate: func(c *params.Config) { c.StateVars = 99 }},
		{name: "unknown presentation", mutate: func(c *params.Config) { c.Presentation = 99 }},
		{name: "negative over width", mutate: func(c *params.Config) { c.SmoothingPressureOver = -1 }},
		{name: "negative under width", mutate: func(c *params.Config) { c.SmoothingPressureUnder = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if _, err := params.New(cfg); !errors.Is(err, params.ErrConfiguration) {
				t.Errorf("New() error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestPhasePresentation(t *testing.T) {
	tests := []struct {
		presentation params.PhasePresentation
		str          string
		phases       []params.Phase
		single       bool
	}{
		{params.PresentMix, "MIX", []params.Phase{params.PhaseMix}, false},
		{params.PresentLiquidVapor, "LG", []params.Phase{params.PhaseLiq, params.PhaseVap}, false},
		{params.PresentLiquid, "L", []params.Phase{params.PhaseLiq}, true},
		{params.PresentVapor, "G", []params.Phase{params.PhaseVap}, true},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			if got := tt.presentation.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
			got := tt.presentation.Phases()
			if len(got) != len(tt.phases) {
				t.Fatalf("Phases() = %v, want %v", got, tt.phases)
			}
			for i := range got {
				if got[i] != tt.phases[i] {
					t.Errorf("Phases()[%d] = %v, want %v", i, got[i], tt.phases[i])
				}
			}
			if tt.presentation.Single() != tt.single {
				t.Errorf("Single() = %v, want %v", tt.presentation.Single(), tt.single)
			}
		})
	}
}

func TestTruePhases(t *testing.T) {
	for _, pres := range []params.PhasePresentation{
		params.PresentMix, params.PresentLiquidVapor, params.PresentLiquid, params.PresentVapor,
	} {
		cfg := validConfig()
		cfg.Presentation = pres
		r, err := params.New(cfg)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		tp := r.TruePhases()
		if len(tp) != 2 || tp[0] != params.PhaseLiq || tp[1] != params.PhaseVap {
			t.Errorf("TruePhases() for %v = %v", pres, tp)
		}
	}
}
