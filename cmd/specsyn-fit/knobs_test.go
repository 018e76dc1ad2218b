package main

import (
	"testing"

	"github.com/cwbudde/algo-specsyn/appstate"
)

func TestParseKnobs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "all", input: "all", want: []string{"f0_multiplier", "spec_multiplier", "spec_shift", "even_ampl_shift"}},
		{name: "single", input: "spec_shift", want: []string{"spec_shift"}},
		{name: "whitespace and duplicates", input: " even_ampl_shift , spec_shift,even_ampl_shift ", want: []string{"even_ampl_shift", "spec_shift"}},
		{name: "invalid", input: "spec_shift,bogus", wantErr: true},
		{name: "empty", input: " , ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKnobs(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseKnobs(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseKnobs(%q) unexpected error: %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseKnobs(%q) = %d knobs, want %d", tt.input, len(got), len(tt.want))
			}
			for i, d := range got {
				if d.Name != tt.want[i] {
					t.Fatalf("knob %d = %q, want %q", i, d.Name, tt.want[i])
				}
			}
		})
	}
}

func TestInitCandidateClampsToRange(t *testing.T) {
	base := appstate.Defaults()
	base.SpecShift = 1000
	base.EvenAmplShift = -3
	defs := append([]knobDef(nil), knobTable...)
	c := initCandidate(base, defs)
	want := []float64{1, 1, 300, -3}
	for i, v := range c.Vals {
		if v != want[i] {
			t.Fatalf("%s = %g, want %g", defs[i].Name, v, want[i])
		}
	}
}

func TestApplyCandidateSetsFields(t *testing.T) {
	defs := append([]knobDef(nil), knobTable...)
	base := appstate.Defaults()
	st := applyCandidate(base, defs, candidate{Vals: []float64{1.01, 0.9, -50, 6}})
	if st.F0Multiplier != 1.01 || st.SpecMultiplier != 0.9 || st.SpecShift != -50 || st.EvenAmplShift != 6 {
		t.Fatalf("unexpected state: %+v", st)
	}
	if base.SpecShift != 0 {
		t.Fatalf("base state was modified")
	}
}

func TestFromNormalizedMapsAndClamps(t *testing.T) {
	defs := []knobDef{{Name: "spec_shift", Min: -300, Max: 300}, {Name: "even_ampl_shift", Min: -24, Max: 24}}
	c := fromNormalized([]float64{0.5, 2}, defs)
	if c.Vals[0] != 0 || c.Vals[1] != 24 {
		t.Fatalf("fromNormalized = %v", c.Vals)
	}
	c = fromNormalized(nil, defs)
	if c.Vals[0] != -300 || c.Vals[1] != -24 {
		t.Fatalf("missing positions must map to the lower bound, got %v", c.Vals)
	}
}
