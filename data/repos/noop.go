package repos

import (
	"context"

	m "github.com/ignaciocanosa/Precios-Relativos/data/models"
)

// Noop discards every run. Used when no database is configured.
type Noop struct{}

func (Noop) InsertComparisonRun(context.Context, m.NewComparisonRun) (int64, error) { return 0, nil }
func (Noop) UpdateComparisonRunAsSuccess(context.Context, int64, int) error       { return nil }
func (Noop) UpdateComparisonRunAsFailure(context.Context, int64, string) error    { return nil }
func (Noop) GetRecentComparisonRuns(context.Context, int) ([]*m.ComparisonRun, error) {
	return nil, nil
}
func (Noop) Close() error { return nil }
