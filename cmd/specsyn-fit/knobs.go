package main

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-specsyn/appstate"
	fitcommon "github.com/cwbudde/algo-specsyn/internal/fitcommon"
)

type knobDef struct {
	Name string
	Min  float64
	Max  float64
}

type candidate struct {
	Vals []float64
}

// knobTable lists every tunable scalar of a state with its search range.
var knobTable = []knobDef{
	{Name: "f0_multiplier", Min: 0.97, Max: 1.03},
	{Name: "spec_multiplier", Min: 0.7, Max: 1.4},
	{Name: "spec_shift", Min: -300, Max: 300},
	{Name: "even_ampl_shift", Min: -24, Max: 24},
}

// parseKnobs parses a comma-separated list of knob names; "all" selects
// every knob.
func parseKnobs(raw string) ([]knobDef, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "all") {
		return append([]knobDef(nil), knobTable...), nil
	}
	var defs []knobDef
	seen := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		def, ok := lookupKnob(s)
		if !ok {
			return nil, fmt.Errorf("unknown knob %q (valid: %s)", s, knobNames())
		}
		seen[s] = true
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no knobs specified")
	}
	return defs, nil
}

func lookupKnob(name string) (knobDef, bool) {
	for _, d := range knobTable {
		if d.Name == name {
			return d, true
		}
	}
	return knobDef{}, false
}

func knobNames() string {
	names := make([]string, len(knobTable))
	for i, d := range knobTable {
		names[i] = d.Name
	}
	return strings.Join(names, ", ")
}

// initCandidate reads the current knob values from base, clamped to range.
func initCandidate(base appstate.AppState, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i, d := range defs {
		var v float64
		switch d.Name {
		case "f0_multiplier":
			v = base.F0Multiplier
		case "spec_multiplier":
			v = base.SpecMultiplier
		case "spec_shift":
			v = base.SpecShift
		case "even_ampl_shift":
			v = base.EvenAmplShift
		}
		vals[i] = fitcommon.Clamp(v, d.Min, d.Max)
	}
	return candidate{Vals: vals}
}

func applyCandidate(base appstate.AppState, defs []knobDef, c candidate) appstate.AppState {
	st := base
	for i, d := range defs {
		v := c.Vals[i]
		switch d.Name {
		case "f0_multiplier":
			st.F0Multiplier = v
		case "spec_multiplier":
			st.SpecMultiplier = v
		case "spec_shift":
			st.SpecShift = v
		case "even_ampl_shift":
			st.EvenAmplShift = v
		}
	}
	return st
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = fitcommon.Clamp(pos[i], 0, 1)
		}
		vals[i] = defs[i].Min + x*(defs[i].Max-defs[i].Min)
	}
	return candidate{Vals: vals}
}

func cloneCandidate(c candidate) candidate {
	return candidate{Vals: append([]float64(nil), c.Vals...)}
}
