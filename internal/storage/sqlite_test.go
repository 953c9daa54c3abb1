//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSQLiteStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "bitworld.db")
	store, err := NewStore("sqlite", dbPath)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer func() {
		_ = CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init sqlite store: %v", err)
	}

	summary := testSummary("soc-42-1", "2026-01-02T03:04:05Z")
	if err := store.SaveRunSummary(ctx, summary); err != nil {
		t.Fatalf("save summary: %v", err)
	}
	records := testRecords(42)
	if err := store.SaveRunRecords(ctx, "soc-42-1", records); err != nil {
		t.Fatalf("save records: %v", err)
	}

	gotSummary, ok, err := store.GetRunSummary(ctx, "soc-42-1")
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if !ok {
		t.Fatal("expected summary to exist")
	}
	if !reflect.DeepEqual(gotSummary, summary) {
		t.Fatalf("summary mismatch: got=%+v want=%+v", gotSummary, summary)
	}

	gotRecords, ok, err := store.GetRunRecords(ctx, "soc-42-1")
	if err != nil {
		t.Fatalf("get records: %v", err)
	}
	if !ok {
		t.Fatal("expected records to exist")
	}
	if !reflect.DeepEqual(gotRecords, records) {
		t.Fatalf("records mismatch: got=%+v want=%+v", gotRecords, records)
	}

	if _, ok, err := store.GetRunSummary(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected (zero, false, nil) for missing summary, got ok=%t err=%v", ok, err)
	}
}

func TestSQLiteStoreUpsertsSummary(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "bitworld.db")
	store, err := NewStore("sqlite", dbPath)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer func() {
		_ = CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init sqlite store: %v", err)
	}

	summary := testSummary("soc-42-1", "2026-01-02T03:04:05Z")
	if err := store.SaveRunSummary(ctx, summary); err != nil {
		t.Fatalf("save summary: %v", err)
	}
	summary.StopReason = "complexity_limit"
	if err := store.SaveRunSummary(ctx, summary); err != nil {
		t.Fatalf("resave summary: %v", err)
	}

	got, ok, err := store.GetRunSummary(ctx, "soc-42-1")
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if !ok {
		t.Fatal("expected summary to exist")
	}
	if got.StopReason != "complexity_limit" {
		t.Fatalf("expected upserted stop reason, got=%s", got.StopReason)
	}
}
