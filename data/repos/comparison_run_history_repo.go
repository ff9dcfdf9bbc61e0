package repos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	m "github.com/ignaciocanosa/Precios-Relativos/data/models"
	q "github.com/ignaciocanosa/Precios-Relativos/data/queries"
)

func (pg *Postgres) InsertComparisonRun(ctx context.Context, run m.NewComparisonRun) (int64, error) {
	sql := q.Get(q.QueryHelper.Insert.ComparisonRun)
	args := pgx.NamedArgs{
		"series_a":  run.SeriesA,
		"series_b":  run.SeriesB,
		"date_from": run.DateFrom,
		"date_to":   run.DateTo,
	}

	var runId int64
	if err := pg.db.QueryRow(ctx, sql, args).Scan(&runId); err != nil {
		return 0, fmt.Errorf("error inserting comparison run: %w", err)
	}

	return runId, nil
}

func (pg *Postgres) UpdateComparisonRunAsSuccess(ctx context.Context, runId int64, rowCount int) error {
	return pg.updateComparisonRun(ctx, q.QueryHelper.Update.ComparisonRunSuccess, pgx.NamedArgs{
		"id":        runId,
		"row_count": rowCount,
	})
}

func (pg *Postgres) UpdateComparisonRunAsFailure(ctx context.Context, runId int64, errorMessage string) error {
	cleanErrorMessage, err := cleanFailureMessage(runId, errorMessage)
	if err != nil {
		return err
	}

	return pg.updateComparisonRun(ctx, q.QueryHelper.Update.ComparisonRunFailure, pgx.NamedArgs{
		"id":            runId,
		"error_message": cleanErrorMessage,
	})
}

func (pg *Postgres) GetRecentComparisonRuns(ctx context.Context, limit int) ([]*m.ComparisonRun, error) {
	if limit <= 0 {
		limit = DefaultRecentRunsLimit
	}

	res, err := Query[m.ComparisonRun](ctx, pg, q.Get(q.QueryHelper.Select.RecentComparisonRuns), pgx.NamedArgs{
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("error getting recent comparison runs: %w", err)
	}
	return res, nil
}

func (pg *Postgres) updateComparisonRun(ctx context.Context, path string, args pgx.NamedArgs) error {
	tag, err := pg.db.Exec(ctx, q.Get(path), args)
	if err != nil {
		return fmt.Errorf("error updating comparison run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("comparison run %v does not exist", args["id"])
	}
	return nil
}

func cleanFailureMessage(runId int64, errorMessage string) (string, error) {
	clean := strings.TrimSpace(errorMessage)
	if clean == "" {
		return "", fmt.Errorf("error message is required if comparison run is failing, occurred in %d", runId)
	}
	return clean, nil
}
