package stats

import (
	"reflect"
	"testing"
)

func sampleExperiment(id, startedAt string) SweepExperiment {
	return SweepExperiment{
		ID:             id,
		Notes:          "grid probe",
		EtaGrid:        []float64{0.1, 0.9},
		LambdaGrid:     []float64{0.5},
		SeedCount:      3,
		SeedMax:        1000000,
		TotalRuns:      6,
		StartedAtUTC:   startedAt,
		CompletedAtUTC: startedAt,
		Summaries: []PairSummary{
			{Eta: 0.1, Lambda: 0.5, Runs: 3, Depleted: 2, GenerationsExhausted: 1},
			{Eta: 0.9, Lambda: 0.5, Runs: 3, ComplexityLimit: 3},
		},
	}
}

func TestSweepExperimentRoundtrip(t *testing.T) {
	baseDir := t.TempDir()
	want := sampleExperiment("sweep-1", "2026-01-01T00:00:00Z")
	if err := WriteSweepExperiment(baseDir, want); err != nil {
		t.Fatalf("write experiment: %v", err)
	}

	got, ok, err := ReadSweepExperiment(baseDir, "sweep-1")
	if err != nil {
		t.Fatalf("read experiment: %v", err)
	}
	if !ok {
		t.Fatal("expected experiment to exist")
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("experiment mismatch: got=%+v want=%+v", got, want)
	}
}

func TestReadSweepExperimentMissing(t *testing.T) {
	if _, ok, err := ReadSweepExperiment(t.TempDir(), "absent"); err != nil || ok {
		t.Fatalf("expected (zero, false, nil) for missing experiment, got ok=%t err=%v", ok, err)
	}
}

func TestListSweepExperimentsNewestFirst(t *testing.T) {
	baseDir := t.TempDir()
	older := sampleExperiment("sweep-old", "2026-01-01T00:00:00Z")
	newer := sampleExperiment("sweep-new", "2026-02-01T00:00:00Z")
	if err := WriteSweepExperiment(baseDir, older); err != nil {
		t.Fatalf("write older: %v", err)
	}
	if err := WriteSweepExperiment(baseDir, newer); err != nil {
		t.Fatalf("write newer: %v", err)
	}

	listed, err := ListSweepExperiments(baseDir)
	if err != nil {
		t.Fatalf("list experiments: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 experiments, got=%d", len(listed))
	}
	if listed[0].ID != "sweep-new" || listed[1].ID != "sweep-old" {
		t.Fatalf("expected newest first, got=%s,%s", listed[0].ID, listed[1].ID)
	}
}

func TestListSweepExperimentsEmpty(t *testing.T) {
	listed, err := ListSweepExperiments(t.TempDir())
	if err != nil {
		t.Fatalf("list empty experiments: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no experiments, got=%d", len(listed))
	}
}
