package store

import (
	"context"

	"github.com/hyan/noteflow/internal/model"
)

// FilingFilter controls filtering and pagination for filing queries.
type FilingFilter struct {
	RunID  *string
	Status *model.FilingStatus
	Limit  int
}

// Store is the persistence interface for the ingestion ledger: one row
// per pipeline run and one per processed message. The ledger exists
// for after-the-fact diagnosis; the pipeline itself never reads it.
type Store interface {
	RecordRun(ctx context.Context, run model.IngestRun) error
	RecordFiling(ctx context.Context, filing model.Filing) error

	GetRuns(ctx context.Context, limit int) ([]model.IngestRun, error)
	GetFilings(ctx context.Context, opts FilingFilter) ([]model.Filing, error)

	Close() error
}
