package repos

import (
	"context"

	m "github.com/ignaciocanosa/Precios-Relativos/data/models"
)

const DefaultRecentRunsLimit = 20

// RunRecorder stores the history of comparisons. Postgres, SQLite and Noop implement it.
type RunRecorder interface {
	InsertComparisonRun(ctx context.Context, run m.NewComparisonRun) (int64, error)
	UpdateComparisonRunAsSuccess(ctx context.Context, runId int64, rowCount int) error
	UpdateComparisonRunAsFailure(ctx context.Context, runId int64, errorMessage string) error
	GetRecentComparisonRuns(ctx context.Context, limit int) ([]*m.ComparisonRun, error)
	Close() error
}

var (
	_ RunRecorder = (*Postgres)(nil)
	_ RunRecorder = (*SQLite)(nil)
	_ RunRecorder = Noop{}
)
