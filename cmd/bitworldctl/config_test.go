package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunRequestFromConfig(t *testing.T) {
	path := writeConfig(t, `{
		"seed": 42,
		"space_length": 3,
		"space_prob": 0.25,
		"tech_length": 4,
		"eta": 0.7,
		"lambda": 0.3,
		"initial_endowment": 50,
		"p_tradeoff": 0.6,
		"generations": 200,
		"complexity_limit": 30,
		"write_csv": true
	}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if req.Seed != 42 || req.SpaceLength != 3 || req.TechLength != 4 {
		t.Fatalf("unexpected shape fields: %+v", req)
	}
	if req.SpaceProb == nil || *req.SpaceProb != 0.25 {
		t.Fatalf("expected fixed space probability 0.25, got=%v", req.SpaceProb)
	}
	if req.TechProb != nil {
		t.Fatalf("expected unset tech probability, got=%v", req.TechProb)
	}
	if req.Eta != 0.7 || req.Lambda != 0.3 || req.PTradeoff != 0.6 {
		t.Fatalf("unexpected probability fields: %+v", req)
	}
	if req.InitialEndowment != 50 || req.Generations != 200 || req.ComplexityLimit != 30 {
		t.Fatalf("unexpected limit fields: %+v", req)
	}
	if !req.WriteCSV {
		t.Fatal("expected write_csv to be set")
	}
}

func TestLoadRunRequestFromConfigRejectsGarbage(t *testing.T) {
	path := writeConfig(t, `{not json`)
	if _, err := loadRunRequestFromConfig(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestLoadOrDefaultRunRequestEmptyPath(t *testing.T) {
	req, err := loadOrDefaultRunRequest("")
	if err != nil {
		t.Fatalf("load default request: %v", err)
	}
	if req.Seed != 0 || req.SpaceProb != nil {
		t.Fatalf("expected zero request, got=%+v", req)
	}
}

func TestLoadSweepRequestFromConfig(t *testing.T) {
	path := writeConfig(t, `{
		"eta_grid": [0.1, 0.5, 0.9],
		"lambda_grid": [0.25, 0.75],
		"seed_count": 10,
		"seed_max": 1000,
		"sweep_seed": 7,
		"workers": 2,
		"space_length": 2,
		"tech_length": 2,
		"initial_endowment": 100,
		"p_tradeoff": 0.5,
		"generations": 500,
		"complexity_limit": 40,
		"experiment_id": "probe",
		"notes": "small grid"
	}`)

	req, err := loadSweepRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load sweep config: %v", err)
	}
	if len(req.EtaGrid) != 3 || len(req.LambdaGrid) != 2 {
		t.Fatalf("unexpected grids: %+v", req)
	}
	if req.EtaGrid[2] != 0.9 || req.LambdaGrid[0] != 0.25 {
		t.Fatalf("grid values off: %+v", req)
	}
	if req.SeedCount != 10 || req.SeedMax != 1000 || req.SweepSeed != 7 || req.Workers != 2 {
		t.Fatalf("unexpected seed fields: %+v", req)
	}
	if req.ExperimentID != "probe" || req.Notes != "small grid" {
		t.Fatalf("unexpected metadata: %+v", req)
	}
}

func TestOverrideRunFromFlags(t *testing.T) {
	req, err := loadRunRequestFromConfig(writeConfig(t, `{"seed": 1, "eta": 0.2, "space_prob": 0.5}`))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	overrideRunFromFlags(&req, map[string]bool{"eta": true, "space-prob": true}, map[string]any{
		"eta":        0.8,
		"space-prob": -1.0,
		"lambda":     0.9,
	})
	if req.Eta != 0.8 {
		t.Fatalf("expected flag to override eta, got=%f", req.Eta)
	}
	if req.SpaceProb != nil {
		t.Fatalf("expected negative flag to clear the fixed probability, got=%v", req.SpaceProb)
	}
	if req.Lambda == 0.9 {
		t.Fatal("unset flags must not override config values")
	}
	if req.Seed != 1 {
		t.Fatalf("untouched config fields must survive, got seed=%d", req.Seed)
	}
}

func TestParseFloatList(t *testing.T) {
	got, err := parseFloatList("0.1, 0.5 ,0.9")
	if err != nil {
		t.Fatalf("parse list: %v", err)
	}
	if len(got) != 3 || got[0] != 0.1 || got[1] != 0.5 || got[2] != 0.9 {
		t.Fatalf("unexpected values: %v", got)
	}

	if _, err := parseFloatList("0.1,abc"); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
	if _, err := parseFloatList(" , "); err == nil {
		t.Fatal("expected error for empty list")
	}
}

func TestProbFromFlag(t *testing.T) {
	if probFromFlag(-1) != nil {
		t.Fatal("negative flag values must map to an unset probability")
	}
	p := probFromFlag(0.25)
	if p == nil || *p != 0.25 {
		t.Fatalf("expected fixed probability 0.25, got=%v", p)
	}
	zero := probFromFlag(0)
	if zero == nil || *zero != 0 {
		t.Fatal("zero is a valid fixed probability")
	}
}
