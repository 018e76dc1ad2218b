package main

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/mayfly"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-specsyn/analysis"
	"github.com/cwbudde/algo-specsyn/appstate"
	"github.com/cwbudde/algo-specsyn/synth"
)

type topCandidate struct {
	Eval       int                `json:"eval"`
	Score      float64            `json:"score"`
	Similarity float64            `json:"similarity"`
	Knobs      map[string]float64 `json:"knobs"`
}

type optimizationConfig struct {
	reference        []float64
	sampleRate       int
	base             appstate.AppState
	defs             []knobDef
	seed             int64
	timeBudget       float64
	maxEvals         int
	reportEvery      int
	mayflyVariant    string
	mayflyPop        int
	mayflyRoundEvals int
	workers          int
	topK             int
	log              *zap.Logger
}

type optimizationResult struct {
	best         candidate
	bestMetrics  analysis.Metrics
	bestState    appstate.AppState
	startMetrics analysis.Metrics
	top          []topCandidate
	evals        int
	elapsed      float64
}

type optimizationState struct {
	mu          sync.Mutex
	best        candidate
	bestMetrics analysis.Metrics
	top         []topCandidate
}

func runOptimization(cfg *optimizationConfig) (*optimizationResult, error) {
	start := time.Now()
	deadline := start.Add(time.Duration(cfg.timeBudget * float64(time.Second)))
	variant := strings.ToLower(cfg.mayflyVariant)
	if _, err := newMayflyConfig(variant, cfg.mayflyPop, len(cfg.defs), 1); err != nil {
		return nil, err
	}

	best := initCandidate(cfg.base, cfg.defs)
	initial := evaluateCandidate(cfg, best)
	cfg.log.Info("start", zap.Float64("score", initial.Score), zap.Float64("similarity", initial.Similarity))

	state := &optimizationState{
		best:        best,
		bestMetrics: initial,
		top:         updateTopCandidates(nil, cfg.topK, 1, initial, cfg.defs, best),
	}

	var evals int64 = 1
	var rounds int64

	workers := cfg.workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if time.Now().After(deadline) {
					return
				}
				remaining := cfg.maxEvals - int(atomic.LoadInt64(&evals))
				if remaining <= 0 {
					return
				}
				round := int(atomic.AddInt64(&rounds, 1))
				budget := min(cfg.mayflyRoundEvals, remaining)
				iters := max(1, budget/(2*cfg.mayflyPop))

				mayflyConfig, err := newMayflyConfig(variant, cfg.mayflyPop, len(cfg.defs), iters)
				if err != nil {
					cfg.log.Error("mayfly setup failed", zap.Int("round", round), zap.Error(err))
					return
				}
				mayflyConfig.Rand = rand.New(rand.NewSource(cfg.seed + int64(round)*7919))
				mayflyConfig.ObjectiveFunc = func(pos []float64) float64 {
					if time.Now().After(deadline) {
						return currentBestScore(state) + 1.0
					}
					evalNum, ok := reserveEval(&evals, cfg.maxEvals)
					if !ok {
						return currentBestScore(state) + 1.0
					}

					cand := fromNormalized(pos, cfg.defs)
					m := evaluateCandidate(cfg, cand)

					state.mu.Lock()
					state.top = updateTopCandidates(state.top, cfg.topK, int(evalNum), m, cfg.defs, cand)
					improved := m.Score < state.bestMetrics.Score
					if improved {
						state.best = cloneCandidate(cand)
						state.bestMetrics = m
					}
					bestScore := state.bestMetrics.Score
					state.mu.Unlock()

					if improved {
						cfg.log.Info("improved",
							zap.Int64("eval", evalNum),
							zap.Float64("score", m.Score),
							zap.Float64("similarity", m.Similarity),
						)
					}
					if cfg.reportEvery > 0 && evalNum%int64(cfg.reportEvery) == 0 {
						cfg.log.Info("progress",
							zap.Int64("eval", evalNum),
							zap.Int("max_evals", cfg.maxEvals),
							zap.Float64("elapsed_s", time.Since(start).Seconds()),
							zap.Float64("best", bestScore),
						)
					}
					return m.Score
				}

				if _, err := runMayfly(mayflyConfig); err != nil {
					cfg.log.Warn("mayfly round failed", zap.Int("round", round), zap.Error(err))
				}
			}
		}()
	}
	wg.Wait()

	state.mu.Lock()
	defer state.mu.Unlock()
	return &optimizationResult{
		best:         cloneCandidate(state.best),
		bestMetrics:  state.bestMetrics,
		bestState:    applyCandidate(cfg.base, cfg.defs, state.best),
		startMetrics: initial,
		top:          append([]topCandidate(nil), state.top...),
		evals:        int(atomic.LoadInt64(&evals)),
		elapsed:      time.Since(start).Seconds(),
	}, nil
}

// evaluateCandidate renders the candidate state at the reference rate and
// compares it with the reference.
func evaluateCandidate(cfg *optimizationConfig, cand candidate) analysis.Metrics {
	st := applyCandidate(cfg.base, cfg.defs, cand)
	st.SampleRate = float64(cfg.sampleRate)
	rendered := synth.Synthesize(st.SynthParams(nil))
	return analysis.Compare(cfg.reference, rendered, cfg.sampleRate)
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func reserveEval(evals *int64, maxEvals int) (int64, bool) {
	for {
		cur := atomic.LoadInt64(evals)
		if cur >= int64(maxEvals) {
			return 0, false
		}
		if atomic.CompareAndSwapInt64(evals, cur, cur+1) {
			return cur + 1, true
		}
	}
}

func currentBestScore(state *optimizationState) float64 {
	state.mu.Lock()
	score := state.bestMetrics.Score
	state.mu.Unlock()
	return score
}

func updateTopCandidates(top []topCandidate, topK int, eval int, metrics analysis.Metrics, defs []knobDef, cand candidate) []topCandidate {
	entry := topCandidate{
		Eval:       eval,
		Score:      metrics.Score,
		Similarity: metrics.Similarity,
		Knobs:      make(map[string]float64, len(defs)),
	}
	for i, d := range defs {
		entry.Knobs[d.Name] = cand.Vals[i]
	}
	top = append(top, entry)
	sort.Slice(top, func(i, j int) bool {
		if top[i].Score == top[j].Score {
			return top[i].Eval < top[j].Eval
		}
		return top[i].Score < top[j].Score
	})
	if len(top) > topK {
		top = top[:topK]
	}
	return top
}
