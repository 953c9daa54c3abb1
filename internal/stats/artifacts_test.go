package stats

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"bitworld/internal/model"
)

func floatPtr(v float64) *float64 {
	return &v
}

func sampleRecords(seed int64) []model.GenerationRecord {
	return []model.GenerationRecord{
		{
			Seed: seed, Generation: 0, TechLength: 2, SpaceLength: 2,
			Effectiveness: 0.5, InitialTechLength: 2, InitialSpaceLength: 2,
			Eta: 0.5, Lambda: 0.25, InitialEndowment: 100, PTradeoff: 0.5,
			AvailableResources: 1, ResourceStore: 99,
		},
		{
			Seed: seed, Generation: 1, TechLength: 3, SpaceLength: 2,
			Effectiveness: 0.6666666666666666, InitialTechLength: 2, InitialSpaceLength: 2,
			Eta: 0.5, Lambda: 0.25, InitialEndowment: 100, PTradeoff: 0.5,
			AvailableResources: 1, ResourceStore: 98,
		},
	}
}

func TestWriteRunArtifactsRoundtrip(t *testing.T) {
	baseDir := t.TempDir()
	config := RunConfig{
		RunID:            "soc-9-1",
		Seed:             9,
		SpaceLength:      2,
		SpaceProb:        floatPtr(0.5),
		TechLength:       2,
		Eta:              0.5,
		Lambda:           0.25,
		InitialEndowment: 100,
		PTradeoff:        0.5,
		GenerationLimit:  50,
		ComplexityLimit:  20,
	}
	records := sampleRecords(9)

	runDir, err := WriteRunArtifacts(baseDir, RunArtifacts{Config: config, Records: records})
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	if runDir != filepath.Join(baseDir, "soc-9-1") {
		t.Fatalf("unexpected run dir: %s", runDir)
	}

	gotConfig, ok, err := ReadRunConfig(baseDir, "soc-9-1")
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !ok {
		t.Fatal("expected config to exist")
	}
	if !reflect.DeepEqual(gotConfig, config) {
		t.Fatalf("config mismatch: got=%+v want=%+v", gotConfig, config)
	}

	gotRecords, err := ReadRecordsCSV(filepath.Join(runDir, "records.csv"))
	if err != nil {
		t.Fatalf("read records csv: %v", err)
	}
	if !reflect.DeepEqual(gotRecords, records) {
		t.Fatalf("records mismatch: got=%+v want=%+v", gotRecords, records)
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestReadRunConfigMissing(t *testing.T) {
	if _, ok, err := ReadRunConfig(t.TempDir(), "absent"); err != nil || ok {
		t.Fatalf("expected (zero, false, nil) for missing config, got ok=%t err=%v", ok, err)
	}
}

func TestAppendSeedRecordsAccumulates(t *testing.T) {
	dir := t.TempDir()
	if err := AppendSeedRecords(dir, 9, sampleRecords(9)); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := AppendSeedRecords(dir, 9, sampleRecords(9)); err != nil {
		t.Fatalf("second append: %v", err)
	}

	path := filepath.Join(dir, "seed9.csv")
	records, err := ReadRecordsCSV(path)
	if err != nil {
		t.Fatalf("read appended csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 accumulated rows, got=%d", len(records))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read raw csv: %v", err)
	}
	if strings.Contains(string(data), "seed,") {
		t.Fatal("per-seed CSV files must not carry a header row")
	}
}

func TestAppendSeedRecordsSeparateFilesPerSeed(t *testing.T) {
	dir := t.TempDir()
	if err := AppendSeedRecords(dir, 1, sampleRecords(1)); err != nil {
		t.Fatalf("append seed 1: %v", err)
	}
	if err := AppendSeedRecords(dir, 2, sampleRecords(2)); err != nil {
		t.Fatalf("append seed 2: %v", err)
	}
	for _, name := range []string{"seed1.csv", "seed2.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}

func TestRunIndexOrderingAndUpdate(t *testing.T) {
	baseDir := t.TempDir()
	entries := []RunIndexEntry{
		{RunID: "soc-1-1", Seed: 1, Generations: 10, StopReason: "depleted", CreatedAtUTC: "2026-01-01T00:00:00Z"},
		{RunID: "soc-2-1", Seed: 2, Generations: 20, StopReason: "complexity_limit", CreatedAtUTC: "2026-02-01T00:00:00Z"},
		{RunID: "soc-3-1", Seed: 3, Generations: 30, StopReason: "generations_exhausted", CreatedAtUTC: "2026-01-15T00:00:00Z"},
	}
	for _, entry := range entries {
		if err := AppendRunIndex(baseDir, entry); err != nil {
			t.Fatalf("append %s: %v", entry.RunID, err)
		}
	}

	listed, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	wantOrder := []string{"soc-2-1", "soc-3-1", "soc-1-1"}
	if len(listed) != len(wantOrder) {
		t.Fatalf("expected %d entries, got=%d", len(wantOrder), len(listed))
	}
	for i, runID := range wantOrder {
		if listed[i].RunID != runID {
			t.Fatalf("position %d: expected %s, got=%s", i, runID, listed[i].RunID)
		}
	}

	// Re-appending an existing run id updates in place.
	updated := entries[0]
	updated.StopReason = "complexity_limit"
	if err := AppendRunIndex(baseDir, updated); err != nil {
		t.Fatalf("update entry: %v", err)
	}
	listed, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index after update: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("update must not grow the index, got=%d", len(listed))
	}
	for _, entry := range listed {
		if entry.RunID == "soc-1-1" && entry.StopReason != "complexity_limit" {
			t.Fatalf("expected updated stop reason, got=%s", entry.StopReason)
		}
	}
}

func TestAppendRunIndexRequiresRunID(t *testing.T) {
	if err := AppendRunIndex(t.TempDir(), RunIndexEntry{}); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestListRunIndexEmptyDir(t *testing.T) {
	listed, err := ListRunIndex(t.TempDir())
	if err != nil {
		t.Fatalf("list empty index: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty index, got=%d entries", len(listed))
	}
}

func TestExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := t.TempDir()
	config := RunConfig{RunID: "soc-9-1", Seed: 9, SpaceLength: 2, TechLength: 2, GenerationLimit: 10, ComplexityLimit: 10}
	if _, err := WriteRunArtifacts(baseDir, RunArtifacts{Config: config, Records: sampleRecords(9)}); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	exported, err := ExportRunArtifacts(baseDir, "soc-9-1", outDir)
	if err != nil {
		t.Fatalf("export artifacts: %v", err)
	}
	if exported != filepath.Join(outDir, "soc-9-1") {
		t.Fatalf("unexpected export dir: %s", exported)
	}
	for _, name := range []string{"config.json", "records.csv"} {
		if _, err := os.Stat(filepath.Join(exported, name)); err != nil {
			t.Fatalf("expected exported %s: %v", name, err)
		}
	}
}

func TestExportRunArtifactsMissingRun(t *testing.T) {
	if _, err := ExportRunArtifacts(t.TempDir(), "absent", t.TempDir()); err == nil {
		t.Fatal("expected error for missing run")
	}
}
