package repos

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/guregu/null/v6"
	ex "github.com/ignaciocanosa/Precios-Relativos/data/extensions"
	m "github.com/ignaciocanosa/Precios-Relativos/data/models"
	_ "modernc.org/sqlite"
)

// SQLite keeps the run history in a local file when no Postgres is available.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite run history opened: %s", path)
	return s, nil
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS comparison_run (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			series_a      INTEGER NOT NULL,
			series_b      INTEGER NOT NULL,
			date_from     TEXT    NOT NULL,
			date_to       TEXT    NOT NULL,
			row_count     INTEGER,
			error_message TEXT,
			created_at    INTEGER NOT NULL,
			completed_at  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comparison_run_created_at ON comparison_run(created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLite) InsertComparisonRun(ctx context.Context, run m.NewComparisonRun) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `INSERT INTO comparison_run
		(series_a, series_b, date_from, date_to, created_at)
		VALUES (?,?,?,?,?)`,
		run.SeriesA, run.SeriesB, ex.FmtShort(run.DateFrom), ex.FmtShort(run.DateTo), time.Now().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("error inserting comparison run: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLite) UpdateComparisonRunAsSuccess(ctx context.Context, runId int64, rowCount int) error {
	return s.update(ctx, runId, `UPDATE comparison_run
		SET row_count = ?, error_message = NULL, completed_at = ?
		WHERE id = ?`,
		rowCount, time.Now().UnixNano(), runId,
	)
}

func (s *SQLite) UpdateComparisonRunAsFailure(ctx context.Context, runId int64, errorMessage string) error {
	clean, err := cleanFailureMessage(runId, errorMessage)
	if err != nil {
		return err
	}

	return s.update(ctx, runId, `UPDATE comparison_run
		SET error_message = ?, completed_at = ?
		WHERE id = ?`,
		clean, time.Now().UnixNano(), runId,
	)
}

func (s *SQLite) update(ctx context.Context, runId int64, stmt string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("error updating comparison run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("comparison run %d does not exist", runId)
	}
	return nil
}

func (s *SQLite) GetRecentComparisonRuns(ctx context.Context, limit int) ([]*m.ComparisonRun, error) {
	if limit <= 0 {
		limit = DefaultRecentRunsLimit
	}

	rows, err := s.db.QueryContext(ctx, `SELECT
			id, series_a, series_b, date_from, date_to, row_count, error_message, created_at, completed_at
		FROM comparison_run
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error getting recent comparison runs: %w", err)
	}
	defer rows.Close()

	var res []*m.ComparisonRun
	for rows.Next() {
		var (
			run              m.ComparisonRun
			dateFrom, dateTo string
			createdAt        int64
			completedAt      null.Int
		)
		if err := rows.Scan(&run.Id, &run.SeriesA, &run.SeriesB, &dateFrom, &dateTo,
			&run.RowCount, &run.ErrorMessage, &createdAt, &completedAt); err != nil {
			return nil, fmt.Errorf("error scanning comparison run: %w", err)
		}

		if run.DateFrom, err = ex.ParseDate(dateFrom); err != nil {
			return nil, err
		}
		if run.DateTo, err = ex.ParseDate(dateTo); err != nil {
			return nil, err
		}
		run.CreatedAt = time.Unix(0, createdAt).UTC()
		if completedAt.Valid {
			run.CompletedAt = null.TimeFrom(time.Unix(0, completedAt.Int64).UTC())
		}
		res = append(res, &run)
	}
	return res, rows.Err()
}

func (s *SQLite) Close() error {
	log.Println("[INFO] closing sqlite run history")
	return s.db.Close()
}
