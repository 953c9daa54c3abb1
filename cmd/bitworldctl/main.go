package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bitworld/internal/model"
	"bitworld/internal/storage"
	bitapi "bitworld/pkg/bitworld"
)

const (
	resultsDir = "results"
	exportsDir = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "sweep":
		return runSweep(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "records":
		return runRecords(ctx, args[1:])
	case "seeds":
		return runSeeds(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "bitworld.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bitapi.New(bitapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "bitworld.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bitapi.New(bitapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	seed := fs.Int64("seed", 1, "rng seed")
	spaceLen := fs.Int("space-len", 2, "initial search space length")
	spaceProb := fs.Float64("space-prob", -1, "probability of 1-bits in the initial search space (negative draws it at random)")
	techLen := fs.Int("tech-len", 2, "initial technology length")
	techProb := fs.Float64("tech-prob", -1, "probability of 1-bits in the initial technology (negative draws it at random)")
	eta := fs.Float64("eta", 0.5, "technology edit acceptance probability")
	lambda := fs.Float64("lambda", 0.5, "search space edit acceptance probability")
	endowment := fs.Float64("endowment", 100, "initial resource endowment")
	pTradeoff := fs.Float64("p-tradeoff", 0.5, "per-iteration probability of editing the technology instead of the space")
	generations := fs.Int("gens", 10000, "generation limit")
	complexityLimit := fs.Int("complexity-limit", 10000, "stop when the technology reaches this length")
	writeCSV := fs.Bool("csv", false, "append generation records to the per-seed CSV file")
	quiet := fs.Bool("quiet", false, "suppress per-generation output")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "bitworld.db", "sqlite database path")
	resultsPath := fs.String("results-dir", resultsDir, "run artifacts directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = bitapi.RunRequest{
			Seed:             *seed,
			SpaceLength:      *spaceLen,
			SpaceProb:        probFromFlag(*spaceProb),
			TechLength:       *techLen,
			TechProb:         probFromFlag(*techProb),
			Eta:              *eta,
			Lambda:           *lambda,
			InitialEndowment: *endowment,
			PTradeoff:        *pTradeoff,
			Generations:      *generations,
			ComplexityLimit:  *complexityLimit,
		}
	} else {
		overrideRunFromFlags(&req, setFlags, map[string]any{
			"seed":             *seed,
			"space-len":        *spaceLen,
			"space-prob":       *spaceProb,
			"tech-len":         *techLen,
			"tech-prob":        *techProb,
			"eta":              *eta,
			"lambda":           *lambda,
			"endowment":        *endowment,
			"p-tradeoff":       *pTradeoff,
			"gens":             *generations,
			"complexity-limit": *complexityLimit,
		})
	}
	req.WriteCSV = req.WriteCSV || *writeCSV
	if !*quiet {
		req.OnGeneration = func(record model.GenerationRecord) {
			fmt.Printf("generation=%d tech_len=%d space_len=%d effectiveness=%.6f available=%.3f store=%.3f\n",
				record.Generation, record.TechLength, record.SpaceLength, record.Effectiveness,
				record.AvailableResources, record.ResourceStore)
		}
	}

	client, err := bitapi.New(bitapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ResultsDir: *resultsPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run completed run_id=%s seed=%d generations=%d stop_reason=%s\n",
		summary.RunID, summary.Seed, summary.Generations, summary.StopReason)
	fmt.Printf("final tech_len=%d space_len=%d effectiveness=%.6f store=%.3f\n",
		summary.FinalTechLength, summary.FinalSpaceLength, summary.FinalEffectiveness, summary.FinalStore)
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	return nil
}

func runSweep(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional sweep config JSON path")
	etaGrid := fs.String("eta-grid", "0.1,0.5,0.9", "comma-separated eta values")
	lambdaGrid := fs.String("lambda-grid", "0.1,0.5,0.9", "comma-separated lambda values")
	seedCount := fs.Int("seeds", 1000, "unique seeds per (eta, lambda) pair")
	seedMax := fs.Int64("seed-max", 1000000, "exclusive upper bound of the seed range")
	sweepSeed := fs.Int64("sweep-seed", 0, "seed for the seed-batch rng (0 uses the clock)")
	workers := fs.Int("workers", 0, "worker count (0 uses the cpu count)")
	spaceLen := fs.Int("space-len", 2, "initial search space length")
	spaceProb := fs.Float64("space-prob", -1, "probability of 1-bits in the initial search space (negative draws it at random)")
	techLen := fs.Int("tech-len", 2, "initial technology length")
	techProb := fs.Float64("tech-prob", -1, "probability of 1-bits in the initial technology (negative draws it at random)")
	endowment := fs.Float64("endowment", 100, "initial resource endowment")
	pTradeoff := fs.Float64("p-tradeoff", 0.5, "per-iteration probability of editing the technology instead of the space")
	generations := fs.Int("gens", 10000, "generation limit")
	complexityLimit := fs.Int("complexity-limit", 10000, "stop when the technology reaches this length")
	writeCSV := fs.Bool("csv", false, "append generation records to per-seed CSV files")
	experimentID := fs.String("experiment-id", "", "explicit experiment id (optional)")
	notes := fs.String("notes", "", "free-form experiment notes")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "bitworld.db", "sqlite database path")
	resultsPath := fs.String("results-dir", resultsDir, "run artifacts directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var req bitapi.SweepRequest
	if *configPath != "" {
		loaded, err := loadSweepRequestFromConfig(*configPath)
		if err != nil {
			return err
		}
		req = loaded
	} else {
		etas, err := parseFloatList(*etaGrid)
		if err != nil {
			return fmt.Errorf("eta-grid: %w", err)
		}
		lambdas, err := parseFloatList(*lambdaGrid)
		if err != nil {
			return fmt.Errorf("lambda-grid: %w", err)
		}
		req = bitapi.SweepRequest{
			EtaGrid:          etas,
			LambdaGrid:       lambdas,
			SeedCount:        *seedCount,
			SeedMax:          *seedMax,
			SweepSeed:        *sweepSeed,
			Workers:          *workers,
			SpaceLength:      *spaceLen,
			SpaceProb:        probFromFlag(*spaceProb),
			TechLength:       *techLen,
			TechProb:         probFromFlag(*techProb),
			InitialEndowment: *endowment,
			PTradeoff:        *pTradeoff,
			Generations:      *generations,
			ComplexityLimit:  *complexityLimit,
			WriteCSV:         *writeCSV,
			ExperimentID:     *experimentID,
			Notes:            *notes,
		}
	}

	client, err := bitapi.New(bitapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ResultsDir: *resultsPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Sweep(ctx, req)
	if err != nil {
		return err
	}

	for _, pair := range summary.Pairs {
		fmt.Printf("eta=%.3f lambda=%.3f runs=%d depleted=%d complexity_limit=%d generations_exhausted=%d failed=%d\n",
			pair.Eta, pair.Lambda, pair.Runs, pair.Depleted, pair.ComplexityLimit, pair.GenerationsExhausted, pair.Failed)
	}
	fmt.Printf("sweep completed experiment_id=%s total_runs=%d\n", summary.ExperimentID, summary.TotalRuns)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum entries to list")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "bitworld.db", "sqlite database path")
	resultsPath := fs.String("results-dir", resultsDir, "run artifacts directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bitapi.New(bitapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ResultsDir: *resultsPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, bitapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Printf("run_id=%s created_at=%s seed=%d eta=%.3f lambda=%.3f generations=%d stop_reason=%s\n",
			item.RunID, item.CreatedAtUTC, item.Seed, item.Eta, item.Lambda, item.Generations, item.StopReason)
	}
	return nil
}

func runRecords(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("records", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id to inspect")
	latest := fs.Bool("latest", false, "inspect the most recent run")
	limit := fs.Int("limit", 0, "maximum records to print (0 prints all)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "bitworld.db", "sqlite database path")
	resultsPath := fs.String("results-dir", resultsDir, "run artifacts directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bitapi.New(bitapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ResultsDir: *resultsPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	records, err := client.Records(ctx, bitapi.RecordsRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}
	for _, record := range records {
		fmt.Printf("generation=%d tech_len=%d space_len=%d effectiveness=%.6f available=%.3f store=%.3f\n",
			record.Generation, record.TechLength, record.SpaceLength, record.Effectiveness,
			record.AvailableResources, record.ResourceStore)
	}
	return nil
}

func runSeeds(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seeds", flag.ContinueOnError)
	count := fs.Int("count", 10, "seed count")
	max := fs.Int64("max", 1000000, "exclusive upper bound of the seed range")
	seed := fs.Int64("seed", 0, "seed for the batch rng (0 uses the clock)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bitapi.New(bitapi.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	seeds, err := client.Seeds(ctx, bitapi.SeedsRequest{Count: *count, Max: *max, Seed: *seed})
	if err != nil {
		return err
	}
	for _, s := range seeds {
		fmt.Printf("seed=%d\n", s)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id to export")
	latest := fs.Bool("latest", false, "export the most recent run")
	outDir := fs.String("out", exportsDir, "destination directory")
	resultsPath := fs.String("results-dir", resultsDir, "run artifacts directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := bitapi.New(bitapi.Options{ResultsDir: *resultsPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, bitapi.ExportRequest{RunID: *runID, Latest: *latest, OutDir: *outDir})
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s to=%s\n", summary.RunID, filepath.Clean(summary.Directory))
	return nil
}

// probFromFlag maps a non-negative flag value to a fixed probability.
// A negative value means the simulation draws the probability itself.
func probFromFlag(v float64) *float64 {
	if v < 0 {
		return nil
	}
	return &v
}

func parseFloatList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q", part)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: bitworldctl <init|reset|run|sweep|runs|records|seeds|export> [flags]", msg)
}
