// Package platform coordinates simulation runs: it owns the store,
// tracks active runs, persists results, and fans parameter sweeps out
// across supervised workers.
package platform

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bitworld/internal/engine"
	"bitworld/internal/model"
	"bitworld/internal/stats"
	"bitworld/internal/storage"
)

type Config struct {
	Store      storage.Store
	ResultsDir string
}

// RunSpec describes one simulation run to execute and persist.
type RunSpec struct {
	RunID    string
	Params   engine.Parameters
	Reporter engine.Reporter
	WriteCSV bool
	CSVDir   string
}

// RunResult is the outcome of one executed run.
type RunResult struct {
	RunID   string
	Records []model.GenerationRecord
	Reason  engine.StopReason
	Summary model.RunSummary
}

type World struct {
	store      storage.Store
	resultsDir string

	mu      sync.Mutex
	started bool
	runs    map[string]struct{}
}

func NewWorld(cfg Config) *World {
	return &World{
		store:      cfg.Store,
		resultsDir: cfg.ResultsDir,
		runs:       make(map[string]struct{}),
	}
}

func (w *World) Init(ctx context.Context) error {
	if w.store == nil {
		return fmt.Errorf("store is required")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	if err := w.store.Init(ctx); err != nil {
		return err
	}
	w.started = true
	return nil
}

func (w *World) Reset(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return fmt.Errorf("world is not initialized")
	}
	if resetter, ok := w.store.(storage.Resetter); ok {
		return resetter.Reset(ctx)
	}
	return nil
}

func (w *World) Started() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

func (w *World) Store() storage.Store {
	return w.store
}

// RunSimulation executes one run, persists its summary and record
// sequence, and optionally appends the records to the run's per-seed
// CSV file.
func (w *World) RunSimulation(ctx context.Context, spec RunSpec) (RunResult, error) {
	if err := spec.Params.Validate(); err != nil {
		return RunResult{}, err
	}

	runID := spec.RunID
	if runID == "" {
		runID = RunID(spec.Params)
	}
	if err := w.registerRun(runID); err != nil {
		return RunResult{}, err
	}
	defer w.unregisterRun(runID)

	result, err := engine.Run(spec.Params, spec.Reporter)
	if err != nil {
		return RunResult{}, err
	}

	summary := summarize(runID, spec.Params, result)
	if err := w.store.SaveRunSummary(ctx, summary); err != nil {
		return RunResult{}, err
	}
	if err := w.store.SaveRunRecords(ctx, runID, result.Records); err != nil {
		return RunResult{}, err
	}

	if spec.WriteCSV {
		csvDir := spec.CSVDir
		if csvDir == "" {
			csvDir = w.resultsDir
		}
		if err := stats.AppendSeedRecords(csvDir, spec.Params.Seed, result.Records); err != nil {
			return RunResult{}, err
		}
	}

	return RunResult{
		RunID:   runID,
		Records: result.Records,
		Reason:  result.Reason,
		Summary: summary,
	}, nil
}

// RunID derives a stable run identifier from a parameter tuple.
func RunID(params engine.Parameters) string {
	return fmt.Sprintf("soc-%d-e%g-l%g", params.Seed, params.Eta, params.Lambda)
}

func summarize(runID string, params engine.Parameters, result engine.Result) model.RunSummary {
	last := result.Records[len(result.Records)-1]
	return model.RunSummary{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		RunID:              runID,
		Seed:               params.Seed,
		Eta:                params.Eta,
		Lambda:             params.Lambda,
		InitialTechLength:  params.TechLength,
		InitialSpaceLength: params.SpaceLength,
		InitialEndowment:   params.InitialEndowment,
		PTradeoff:          params.PTradeoff,
		GenerationLimit:    params.Generations,
		ComplexityLimit:    params.ComplexityLimit,
		Generations:        len(result.Records),
		StopReason:         string(result.Reason),
		FinalTechLength:    last.TechLength,
		FinalSpaceLength:   last.SpaceLength,
		FinalEffectiveness: last.Effectiveness,
		FinalStore:         last.ResourceStore,
		CreatedAtUTC:       time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func (w *World) registerRun(runID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return fmt.Errorf("world is not initialized")
	}
	if _, exists := w.runs[runID]; exists {
		return fmt.Errorf("run already active: %s", runID)
	}
	w.runs[runID] = struct{}{}
	return nil
}

func (w *World) unregisterRun(runID string) {
	w.mu.Lock()
	delete(w.runs, runID)
	w.mu.Unlock()
}
