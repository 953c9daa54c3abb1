package storage

import (
	"context"

	"bitworld/internal/model"
)

// Store defines persistence operations for completed simulation runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRunSummary(ctx context.Context, summary model.RunSummary) error
	GetRunSummary(ctx context.Context, runID string) (model.RunSummary, bool, error)
	ListRunSummaries(ctx context.Context) ([]model.RunSummary, error)
	SaveRunRecords(ctx context.Context, runID string, records []model.GenerationRecord) error
	GetRunRecords(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error)
}

// Resetter is implemented by stores that can drop all persisted state.
type Resetter interface {
	Reset(ctx context.Context) error
}
