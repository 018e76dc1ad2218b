package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-specsyn/appstate"
	fitcommon "github.com/cwbudde/algo-specsyn/internal/fitcommon"
	"github.com/cwbudde/algo-specsyn/internal/logging"
)

func main() {
	referencePath := flag.String("reference", "", "Reference WAV path (default: the preset's reference)")
	presetPath := flag.String("preset", "", "Base preset JSON path")
	state := flag.String("state", "", "Base encoded parameter string (alternative to -preset)")
	outputPreset := flag.String("output-preset", "fitted.json", "Path to write the fitted preset JSON")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	knobs := flag.String("knobs", "all", "Comma-separated knobs to fit: f0_multiplier, spec_multiplier, spec_shift, even_ampl_shift, or all")
	sampleRate := flag.Int("sample-rate", 0, "Analysis and render sample rate (0 uses the reference rate)")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 2000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Log progress every N evaluations")
	topK := flag.Int("top-k", 5, "How many top candidates to keep in report")
	workers := flag.String("workers", "1", "Parallel workers running independent Mayfly rounds (number or 'auto')")
	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	logJSON := flag.Bool("log-json", false, "Log as JSON")
	flag.Parse()

	log := logging.NewForTool("specsyn-fit", *logLevel, *logJSON)
	defer log.Sync() //nolint:errcheck

	die := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
		os.Exit(1)
	}

	defs, err := parseKnobs(*knobs)
	if err != nil {
		die("invalid -knobs: %v", err)
	}
	nWorkers, err := fitcommon.ParseWorkers(*workers)
	if err != nil {
		die("invalid -workers: %v", err)
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *outputPreset == "" {
		die("output-preset must not be empty")
	}
	*mayflyPop = max(*mayflyPop, 2)
	*mayflyRoundEvals = max(*mayflyRoundEvals, *mayflyPop*2)
	*reportEvery = max(*reportEvery, 1)
	*topK = max(*topK, 1)
	if *reportPath == "" {
		*reportPath = defaultReportPath(*outputPreset)
	}

	base, err := loadBase(*presetPath, *state)
	if err != nil {
		die("%v", err)
	}
	if *referencePath == "" {
		*referencePath = base.Reference
	}
	if *referencePath == "" {
		die("no reference: pass -reference or use a state with a reference")
	}

	reference, sr, err := fitcommon.ReadWAVMono(*referencePath)
	if err != nil {
		die("read reference: %v", err)
	}
	if *sampleRate > 0 && *sampleRate != sr {
		if reference, err = fitcommon.ResampleIfNeeded(reference, sr, *sampleRate); err != nil {
			die("resample reference: %v", err)
		}
		sr = *sampleRate
	}
	base.Reference = *referencePath
	base.SampleRate = float64(sr)

	log.Info("fitting",
		zap.String("reference", *referencePath),
		zap.Int("sample_rate", sr),
		zap.Int("knobs", len(defs)),
		zap.Int("workers", nWorkers),
	)

	cfg := &optimizationConfig{
		reference:        reference,
		sampleRate:       sr,
		base:             base,
		defs:             defs,
		seed:             *seed,
		timeBudget:       *timeBudget,
		maxEvals:         *maxEvals,
		reportEvery:      *reportEvery,
		mayflyVariant:    *mayflyVariant,
		mayflyPop:        *mayflyPop,
		mayflyRoundEvals: *mayflyRoundEvals,
		workers:          nWorkers,
		topK:             *topK,
		log:              log,
	}
	res, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}

	rep, err := buildReport(*referencePath, sr, *mayflyVariant, defs, res)
	if err != nil {
		die("build report: %v", err)
	}
	if err := writeOutputs(*outputPreset, *reportPath, res.bestState, rep); err != nil {
		die("write outputs: %v", err)
	}
	fmt.Printf("Done evals=%d score=%.4f similarity=%.2f%%\n", res.evals, res.bestMetrics.Score, res.bestMetrics.Similarity*100)
	fmt.Printf("#%s\n", rep.State)
}

func loadBase(presetPath, encoded string) (appstate.AppState, error) {
	switch {
	case presetPath != "" && encoded != "":
		return appstate.AppState{}, fmt.Errorf("use either -preset or -state, not both")
	case presetPath != "":
		st, err := appstate.LoadJSON(presetPath)
		if err != nil {
			return appstate.AppState{}, fmt.Errorf("load preset %q: %w", presetPath, err)
		}
		return *st, nil
	default:
		st, err := appstate.Decode(encoded)
		if err != nil {
			return appstate.AppState{}, fmt.Errorf("decode state: %w", err)
		}
		return st, nil
	}
}
