package fluids_test

import (
	"math"
	"strings"
	"testing"

	"github.com/fluid-props/helmholtz/fluids"
)

func TestWater(t *testing.T) {
	w := fluids.Water()

	if w.Name != "water" {
		t.Errorf("Name = %q, want water", w.Name)
	}
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"TemperatureCrit", w.TemperatureCrit, 647.096},
		{"PressureCrit", w.PressureCrit, 2.2064e7},
		{"DensMassCrit", w.DensMassCrit, 322.0},
		{"SpecificGasConstant", w.SpecificGasConstant, 461.51805},
		{"MolarMass", w.MolarMass, 0.01801528},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if err := w.Validate(); err != nil {
		t.Errorf("Water().Validate() error = %v", err)
	}
}

func TestParse(t *testing.T) {
	doc := `
name: testfluid
molar_mass: 0.044
temperature_crit: 304.1282
pressure_crit: 7.3773e6
dens_mass_crit: 467.6
specific_gas_constant: 188.9241
pressure: {default: 1.0e5, lower: 1.0, upper: 5.0e8}
temperature: {default: 280.0, lower: 216.0, upper: 1100.0}
enthalpy: {default: 500.0, lower: -1.0e4, upper: 1.0e5}
`
	d, err := fluids.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if d.Name != "testfluid" || d.TemperatureCrit != 304.1282 {
		t.Errorf("Parse() = %+v", d)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := fluids.Parse([]byte("name: [")); err == nil {
		t.Fatal("Parse() accepted malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	valid := fluids.Water()

	tests := []struct {
		name    string
		mutate  func(*fluids.Definition)
		wantErr string
	}{
		{
			name:    "empty name",
			mutate:  func(d *fluids.Definition) { d.Name = "" },
			wantErr: "name",
		},
		{
			name:    "negative critical temperature",
			mutate:  func(d *fluids.Definition) { d.TemperatureCrit = -1 },
			wantErr: "temperature_crit",
		},
		{
			name:    "zero molar mass",
			mutate:  func(d *fluids.Definition) { d.MolarMass = 0 },
			wantErr: "molar_mass",
		},
		{
			name:    "inverted pressure bounds",
			mutate:  func(d *fluids.Definition) { d.Pressure.Lower, d.Pressure.Upper = 1e9, 1 },
			wantErr: "bounds inverted",
		},
		{
			name:    "nonpositive temperature lower bound",
			mutate:  func(d *fluids.Definition) { d.Temperature.Lower = 0 },
			wantErr: "lower bound",
		},
		{
			name:    "default outside bounds",
			mutate:  func(d *fluids.Definition) { d.Enthalpy.Default = 1e9 },
			wantErr: "outside bounds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate()
			if err == nil {
				t.Fatal("Validate() accepted invalid definition")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}
