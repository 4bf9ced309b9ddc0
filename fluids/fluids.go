// Package fluids defines the per-fluid constant bundles a Helmholtz property
// kernel is compiled against: critical point, molar mass, gas constant, and
// default value/bounds triples for the primary state variables. Bundles are
// YAML documents; a water (IAPWS-95) bundle ships embedded.
package fluids

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Range is a default value with bounds for one state variable.
type Range struct {
	Default float64 `yaml:"default"`
	Lower   float64 `yaml:"lower"`
	Upper   float64 `yaml:"upper"`
}

// Definition is the immutable constant bundle for one pure fluid. All values
// are SI: Pa, K, kg, mol, J.
type Definition struct {
	Name                string  `yaml:"name"`
	MolarMass           float64 `yaml:"molar_mass"`            // kg/mol
	TemperatureCrit     float64 `yaml:"temperature_crit"`      // K
	PressureCrit        float64 `yaml:"pressure_crit"`         // Pa
	DensMassCrit        float64 `yaml:"dens_mass_crit"`        // kg/m^3
	SpecificGasConstant float64 `yaml:"specific_gas_constant"` // J/kg.K

	Pressure    Range `yaml:"pressure"`    // Pa
	Temperature Range `yaml:"temperature"` // K
	Enthalpy    Range `yaml:"enthalpy"`    // J/mol
}

// Validate checks that the bundle is physically sensible: positive constants,
// ordered bounds, defaults inside bounds.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("fluid name is empty")
	}
	constants := []struct {
		name  string
		value float64
	}{
		{"molar_mass", d.MolarMass},
		{"temperature_crit", d.TemperatureCrit},
		{"pressure_crit", d.PressureCrit},
		{"dens_mass_crit", d.DensMassCrit},
		{"specific_gas_constant", d.SpecificGasConstant},
	}
	for _, c := range constants {
		if c.value <= 0 {
			return fmt.Errorf("%s must be positive, got %g", c.name, c.value)
		}
	}

	ranges := []struct {
		name     string
		r        Range
		positive bool
	}{
		{"pressure", d.Pressure, true},
		{"temperature", d.Temperature, true},
		{"enthalpy", d.Enthalpy, false},
	}
	for _, rr := range ranges {
		if rr.positive && rr.r.Lower <= 0 {
			return fmt.Errorf("%s lower bound must be positive, got %g", rr.name, rr.r.Lower)
		}
		if rr.r.Lower >= rr.r.Upper {
			return fmt.Errorf("%s bounds inverted: %g >= %g", rr.name, rr.r.Lower, rr.r.Upper)
		}
		if rr.r.Default < rr.r.Lower || rr.r.Default > rr.r.Upper {
			return fmt.Errorf("%s default %g outside bounds [%g, %g]",
				rr.name, rr.r.Default, rr.r.Lower, rr.r.Upper)
		}
	}
	return nil
}

// Parse decodes and validates a YAML fluid definition.
func Parse(data []byte) (Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Definition{}, fmt.Errorf("failed to parse fluid definition: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Definition{}, fmt.Errorf("invalid fluid definition: %w", err)
	}
	return d, nil
}

// Load reads and parses a fluid definition file.
func Load(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to read fluid definition: %w", err)
	}
	return Parse(data)
}

//go:embed water.yaml
var waterYAML []byte

var water = sync.OnceValue(func() Definition {
	d, err := Parse(waterYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded water definition: %v", err))
	}
	return d
})

// Water returns the embedded IAPWS-95 water constant bundle.
func Water() Definition {
	return water()
}
