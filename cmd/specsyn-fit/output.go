package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-specsyn/analysis"
	"github.com/cwbudde/algo-specsyn/appstate"
)

type fitReport struct {
	Reference    string             `json:"reference"`
	SampleRate   int                `json:"sample_rate"`
	Evals        int                `json:"evals"`
	ElapsedSec   float64            `json:"elapsed_sec"`
	Variant      string             `json:"mayfly_variant"`
	State        string             `json:"state"`
	StartMetrics analysis.Metrics   `json:"start_metrics"`
	BestMetrics  analysis.Metrics   `json:"best_metrics"`
	BestKnobs    map[string]float64 `json:"best_knobs"`
	Top          []topCandidate     `json:"top_candidates"`
}

func defaultReportPath(presetPath string) string {
	return strings.TrimSuffix(presetPath, filepath.Ext(presetPath)) + ".report.json"
}

func buildReport(referencePath string, sampleRate int, variant string, defs []knobDef, res *optimizationResult) (fitReport, error) {
	enc, err := appstate.Encode(res.bestState)
	if err != nil {
		return fitReport{}, err
	}
	knobs := make(map[string]float64, len(defs))
	for i, d := range defs {
		knobs[d.Name] = res.best.Vals[i]
	}
	return fitReport{
		Reference:    referencePath,
		SampleRate:   sampleRate,
		Evals:        res.evals,
		ElapsedSec:   res.elapsed,
		Variant:      variant,
		State:        enc,
		StartMetrics: res.startMetrics,
		BestMetrics:  res.bestMetrics,
		BestKnobs:    knobs,
		Top:          res.top,
	}, nil
}

func writeOutputs(presetPath, reportPath string, st appstate.AppState, rep fitReport) error {
	if err := appstate.SaveJSON(presetPath, st); err != nil {
		return err
	}
	return writeJSON(reportPath, rep)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}
