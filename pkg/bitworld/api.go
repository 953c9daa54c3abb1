// Package bitworld is the public client for the co-evolution
// simulator. It wraps run execution, parameter sweeps, persistence,
// and artifact management behind one facade.
package bitworld

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"bitworld/internal/engine"
	"bitworld/internal/model"
	"bitworld/internal/platform"
	"bitworld/internal/stats"
	"bitworld/internal/storage"
)

const (
	defaultResultsDir = "results"
	defaultExportsDir = "exports"
	defaultDBPath     = "bitworld.db"

	defaultLength          = 2
	defaultGenerations     = 10000
	defaultComplexityLimit = 10000
)

type Options struct {
	StoreKind  string
	DBPath     string
	ResultsDir string
	ExportsDir string
}

type Client struct {
	store storage.Store
	world *platform.World

	resultsDir string
	exportsDir string
}

type RunRequest struct {
	Seed             int64
	SpaceLength      int
	SpaceProb        *float64
	TechLength       int
	TechProb         *float64
	Eta              float64
	Lambda           float64
	InitialEndowment float64
	PTradeoff        float64
	Generations      int
	ComplexityLimit  int
	WriteCSV         bool
	OnGeneration     func(record model.GenerationRecord)
}

type RunSummary struct {
	RunID              string
	ArtifactsDir       string
	Seed               int64
	Generations        int
	StopReason         string
	FinalTechLength    int
	FinalSpaceLength   int
	FinalEffectiveness float64
	FinalStore         float64
}

type SweepRequest struct {
	EtaGrid          []float64
	LambdaGrid       []float64
	SeedCount        int
	SeedMax          int64
	SweepSeed        int64
	Workers          int
	SpaceLength      int
	SpaceProb        *float64
	TechLength       int
	TechProb         *float64
	InitialEndowment float64
	PTradeoff        float64
	Generations      int
	ComplexityLimit  int
	WriteCSV         bool
	ExperimentID     string
	Notes            string
}

type SweepSummary struct {
	ExperimentID string
	TotalRuns    int
	Pairs        []stats.PairSummary
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID              string
	CreatedAtUTC       string
	Seed               int64
	Eta                float64
	Lambda             float64
	Generations        int
	StopReason         string
	FinalEffectiveness float64
}

type RecordsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type SeedsRequest struct {
	Count int
	Max   int64
	Seed  int64
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	resultsDir := opts.ResultsDir
	if resultsDir == "" {
		resultsDir = defaultResultsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		resultsDir: resultsDir,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensureWorld(ctx)
	return err
}

func (c *Client) Reset(ctx context.Context) error {
	w, err := c.ensureWorld(ctx)
	if err != nil {
		return err
	}
	return w.Reset(ctx)
}

// Run executes a single simulation, persists it, and writes its
// artifact directory under the results dir.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.SpaceLength <= 0 {
		req.SpaceLength = defaultLength
	}
	if req.TechLength <= 0 {
		req.TechLength = defaultLength
	}
	if req.Generations <= 0 {
		req.Generations = defaultGenerations
	}
	if req.ComplexityLimit <= 0 {
		req.ComplexityLimit = defaultComplexityLimit
	}

	params := engine.Parameters{
		Seed:             req.Seed,
		SpaceLength:      req.SpaceLength,
		SpaceProb:        req.SpaceProb,
		TechLength:       req.TechLength,
		TechProb:         req.TechProb,
		Eta:              req.Eta,
		Lambda:           req.Lambda,
		InitialEndowment: req.InitialEndowment,
		PTradeoff:        req.PTradeoff,
		Generations:      req.Generations,
		ComplexityLimit:  req.ComplexityLimit,
	}
	if err := params.Validate(); err != nil {
		return RunSummary{}, err
	}

	w, err := c.ensureWorld(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	runID := fmt.Sprintf("soc-%d-%d", req.Seed, now.Unix())

	var reporter engine.Reporter
	if req.OnGeneration != nil {
		reporter = generationReporter{onGeneration: req.OnGeneration}
	}

	result, err := w.RunSimulation(ctx, platform.RunSpec{
		RunID:    runID,
		Params:   params,
		Reporter: reporter,
		WriteCSV: req.WriteCSV,
		CSVDir:   c.resultsDir,
	})
	if err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.resultsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:            runID,
			Seed:             req.Seed,
			SpaceLength:      req.SpaceLength,
			SpaceProb:        req.SpaceProb,
			TechLength:       req.TechLength,
			TechProb:         req.TechProb,
			Eta:              req.Eta,
			Lambda:           req.Lambda,
			InitialEndowment: req.InitialEndowment,
			PTradeoff:        req.PTradeoff,
			GenerationLimit:  req.Generations,
			ComplexityLimit:  req.ComplexityLimit,
		},
		Records: result.Records,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if err := stats.AppendRunIndex(c.resultsDir, stats.RunIndexEntry{
		RunID:        runID,
		Seed:         req.Seed,
		Eta:          req.Eta,
		Lambda:       req.Lambda,
		Generations:  len(result.Records),
		StopReason:   string(result.Reason),
		CreatedAtUTC: now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:              runID,
		ArtifactsDir:       filepath.Clean(runDir),
		Seed:               req.Seed,
		Generations:        result.Summary.Generations,
		StopReason:         result.Summary.StopReason,
		FinalTechLength:    result.Summary.FinalTechLength,
		FinalSpaceLength:   result.Summary.FinalSpaceLength,
		FinalEffectiveness: result.Summary.FinalEffectiveness,
		FinalStore:         result.Summary.FinalStore,
	}, nil
}

// Sweep executes a full-factorial (eta, lambda) grid and records the
// experiment manifest under the results dir.
func (c *Client) Sweep(ctx context.Context, req SweepRequest) (SweepSummary, error) {
	if len(req.EtaGrid) == 0 {
		return SweepSummary{}, errors.New("eta grid is required")
	}
	if len(req.LambdaGrid) == 0 {
		return SweepSummary{}, errors.New("lambda grid is required")
	}
	if req.SpaceLength <= 0 {
		req.SpaceLength = defaultLength
	}
	if req.TechLength <= 0 {
		req.TechLength = defaultLength
	}
	if req.Generations <= 0 {
		req.Generations = defaultGenerations
	}
	if req.ComplexityLimit <= 0 {
		req.ComplexityLimit = defaultComplexityLimit
	}

	w, err := c.ensureWorld(ctx)
	if err != nil {
		return SweepSummary{}, err
	}

	var seedSource *rand.Rand
	if req.SweepSeed != 0 {
		seedSource = rand.New(rand.NewSource(req.SweepSeed))
	}

	started := time.Now().UTC()
	experimentID := req.ExperimentID
	if experimentID == "" {
		experimentID = fmt.Sprintf("sweep-%d", started.Unix())
	}

	outcome, err := w.RunSweep(ctx, platform.SweepConfig{
		EtaGrid:    req.EtaGrid,
		LambdaGrid: req.LambdaGrid,
		SeedCount:  req.SeedCount,
		SeedMax:    req.SeedMax,
		SeedSource: seedSource,
		Workers:    req.Workers,
		Base: engine.Parameters{
			SpaceLength:      req.SpaceLength,
			SpaceProb:        req.SpaceProb,
			TechLength:       req.TechLength,
			TechProb:         req.TechProb,
			InitialEndowment: req.InitialEndowment,
			PTradeoff:        req.PTradeoff,
			Generations:      req.Generations,
			ComplexityLimit:  req.ComplexityLimit,
		},
		WriteCSV: req.WriteCSV,
		CSVDir:   filepath.Join(c.resultsDir, "experiments", experimentID),
	})
	if err != nil {
		return SweepSummary{}, err
	}

	seedCount := req.SeedCount
	if seedCount == 0 && len(outcome.Pairs) > 0 {
		seedCount = outcome.Pairs[0].Runs
	}
	if err := stats.WriteSweepExperiment(c.resultsDir, stats.SweepExperiment{
		ID:             experimentID,
		Notes:          req.Notes,
		EtaGrid:        req.EtaGrid,
		LambdaGrid:     req.LambdaGrid,
		SeedCount:      seedCount,
		SeedMax:        req.SeedMax,
		TotalRuns:      outcome.TotalRuns,
		StartedAtUTC:   started.Format(time.RFC3339Nano),
		CompletedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
		Summaries:      outcome.Pairs,
	}); err != nil {
		return SweepSummary{}, err
	}

	return SweepSummary{
		ExperimentID: experimentID,
		TotalRuns:    outcome.TotalRuns,
		Pairs:        outcome.Pairs,
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.resultsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		item := RunItem{
			RunID:        e.RunID,
			CreatedAtUTC: e.CreatedAtUTC,
			Seed:         e.Seed,
			Eta:          e.Eta,
			Lambda:       e.Lambda,
			Generations:  e.Generations,
			StopReason:   e.StopReason,
		}
		summary, ok, err := c.store.GetRunSummary(ctx, e.RunID)
		if err != nil {
			return nil, err
		}
		if ok {
			item.FinalEffectiveness = summary.FinalEffectiveness
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *Client) Records(ctx context.Context, req RecordsRequest) ([]model.GenerationRecord, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.resultsDir)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return nil, errors.New("records requires run id or latest")
	}

	if _, err := c.ensureWorld(ctx); err != nil {
		return nil, err
	}
	records, ok, err := c.store.GetRunRecords(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("records not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}
	out := make([]model.GenerationRecord, len(records))
	copy(out, records)
	return out, nil
}

// Seeds draws a batch of unique simulation seeds, matching what a
// sweep would hand to its workers.
func (c *Client) Seeds(_ context.Context, req SeedsRequest) ([]int64, error) {
	source := req.Seed
	if source == 0 {
		source = time.Now().UnixNano()
	}
	return platform.GenerateSeeds(rand.New(rand.NewSource(source)), req.Count, req.Max)
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.resultsDir)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(entries) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(c.resultsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) ensureWorld(ctx context.Context) (*platform.World, error) {
	if c.world != nil {
		return c.world, nil
	}
	w := platform.NewWorld(platform.Config{Store: c.store, ResultsDir: c.resultsDir})
	if err := w.Init(ctx); err != nil {
		return nil, err
	}
	c.world = w
	return c.world, nil
}

type generationReporter struct {
	onGeneration func(record model.GenerationRecord)
}

func (r generationReporter) Generation(record model.GenerationRecord) {
	r.onGeneration(record)
}

func (r generationReporter) Stopped(int64, int, engine.StopReason) {}
