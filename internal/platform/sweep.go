package platform

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"bitworld/internal/engine"
	"bitworld/internal/stats"
)

// SweepConfig describes a full-factorial sweep over acceptance
// probability grids. Each (eta, lambda) pair gets a fresh batch of
// unique seeds; the batch is executed by a pool of supervised workers.
type SweepConfig struct {
	EtaGrid    []float64
	LambdaGrid []float64
	SeedCount  int
	SeedMax    int64
	SeedSource *rand.Rand
	Workers    int
	Base       engine.Parameters
	WriteCSV   bool
	CSVDir     string
	OnRun      func(RunResult)
}

// SweepOutcome aggregates per-pair stop-reason counts for a sweep.
type SweepOutcome struct {
	Pairs     []stats.PairSummary
	TotalRuns int
}

const (
	defaultSeedCount = 1000
	defaultSeedMax   = 1000000
)

func (c *SweepConfig) validate() error {
	if len(c.EtaGrid) == 0 {
		return fmt.Errorf("eta grid must not be empty")
	}
	if len(c.LambdaGrid) == 0 {
		return fmt.Errorf("lambda grid must not be empty")
	}
	for _, eta := range c.EtaGrid {
		if eta < 0 || eta > 1 {
			return fmt.Errorf("eta grid value out of [0,1]: %g", eta)
		}
	}
	for _, lambda := range c.LambdaGrid {
		if lambda < 0 || lambda > 1 {
			return fmt.Errorf("lambda grid value out of [0,1]: %g", lambda)
		}
	}
	if c.SeedCount < 1 {
		return fmt.Errorf("seed count must be >= 1, got %d", c.SeedCount)
	}
	if c.SeedMax < int64(c.SeedCount) {
		return fmt.Errorf("seed range [0,%d) cannot supply %d unique seeds", c.SeedMax, c.SeedCount)
	}
	return nil
}

// GenerateSeeds draws count unique seeds from [0, max) without
// replacement.
func GenerateSeeds(rng *rand.Rand, count int, max int64) ([]int64, error) {
	if count < 1 {
		return nil, fmt.Errorf("seed count must be >= 1, got %d", count)
	}
	if max < int64(count) {
		return nil, fmt.Errorf("seed range [0,%d) cannot supply %d unique seeds", max, count)
	}
	seen := make(map[int64]struct{}, count)
	seeds := make([]int64, 0, count)
	for len(seeds) < count {
		seed := rng.Int63n(max)
		if _, dup := seen[seed]; dup {
			continue
		}
		seen[seed] = struct{}{}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

// RunSweep executes every (eta, lambda) pair in the configured grids.
// Pairs run sequentially; runs within a pair are distributed across the
// worker pool. A failed run is counted and its worker restarted, so one
// bad seed does not abort the batch.
func (w *World) RunSweep(ctx context.Context, cfg SweepConfig) (SweepOutcome, error) {
	if cfg.SeedCount == 0 {
		cfg.SeedCount = defaultSeedCount
	}
	if cfg.SeedMax == 0 {
		cfg.SeedMax = defaultSeedMax
	}
	if err := cfg.validate(); err != nil {
		return SweepOutcome{}, err
	}

	base := cfg.Base
	base.Seed = 0
	base.Eta = cfg.EtaGrid[0]
	base.Lambda = cfg.LambdaGrid[0]
	if err := base.Validate(); err != nil {
		return SweepOutcome{}, err
	}

	rng := cfg.SeedSource
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	outcome := SweepOutcome{
		Pairs: make([]stats.PairSummary, 0, len(cfg.EtaGrid)*len(cfg.LambdaGrid)),
	}
	for _, eta := range cfg.EtaGrid {
		for _, lambda := range cfg.LambdaGrid {
			seeds, err := GenerateSeeds(rng, cfg.SeedCount, cfg.SeedMax)
			if err != nil {
				return SweepOutcome{}, err
			}
			summary, err := w.runSweepPair(ctx, cfg, eta, lambda, seeds, workers)
			if err != nil {
				return SweepOutcome{}, err
			}
			outcome.Pairs = append(outcome.Pairs, summary)
			outcome.TotalRuns += summary.Runs
		}
	}
	return outcome, nil
}

func (w *World) runSweepPair(ctx context.Context, cfg SweepConfig, eta, lambda float64, seeds []int64, workers int) (stats.PairSummary, error) {
	tasks := make(chan int64, len(seeds))
	for _, seed := range seeds {
		tasks <- seed
	}
	close(tasks)

	summary := stats.PairSummary{Eta: eta, Lambda: lambda}
	var mu sync.Mutex

	worker := func(workerCtx context.Context) error {
		for {
			var seed int64
			var ok bool
			select {
			case <-workerCtx.Done():
				return nil
			case <-ctx.Done():
				return nil
			case seed, ok = <-tasks:
				if !ok {
					return nil
				}
			}

			params := cfg.Base
			params.Seed = seed
			params.Eta = eta
			params.Lambda = lambda
			result, err := w.RunSimulation(ctx, RunSpec{
				Params:   params,
				WriteCSV: cfg.WriteCSV,
				CSVDir:   cfg.CSVDir,
			})
			mu.Lock()
			summary.Runs++
			if err != nil {
				summary.Failed++
				mu.Unlock()
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			switch result.Reason {
			case engine.StopDepleted:
				summary.Depleted++
			case engine.StopComplexityLimit:
				summary.ComplexityLimit++
			case engine.StopGenerationsExhausted:
				summary.GenerationsExhausted++
			}
			mu.Unlock()
			if cfg.OnRun != nil {
				cfg.OnRun(result)
			}
		}
	}

	sup := NewSupervisor(SupervisorPolicy{MaxRestarts: len(seeds)})
	for i := 0; i < workers; i++ {
		spec := SupervisorChildSpec{
			Name:    fmt.Sprintf("sweep-worker-%d", i),
			Restart: SupervisorRestartTransient,
		}
		if err := sup.StartSpec(spec, worker); err != nil {
			sup.StopAll()
			return stats.PairSummary{}, err
		}
	}
	sup.Wait()

	if err := ctx.Err(); err != nil {
		return stats.PairSummary{}, err
	}
	return summary, nil
}
