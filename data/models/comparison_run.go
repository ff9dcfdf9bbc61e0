package models

import (
	"time"

	"github.com/guregu/null/v6"
)

const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// ComparisonRun is one entry of the comparison history.
type ComparisonRun struct {
	Id           int64       `db:"id"`
	SeriesA      int32       `db:"series_a"`
	SeriesB      int32       `db:"series_b"`
	DateFrom     time.Time   `db:"date_from"`
	DateTo       time.Time   `db:"date_to"`
	RowCount     null.Int    `db:"row_count"`
	ErrorMessage null.String `db:"error_message"`
	CreatedAt    time.Time   `db:"created_at"`
	CompletedAt  null.Time   `db:"completed_at"`
}

type NewComparisonRun struct {
	SeriesA  int32
	SeriesB  int32
	DateFrom time.Time
	DateTo   time.Time
}

func (cr *ComparisonRun) Status() string {
	switch {
	case !cr.CompletedAt.Valid:
		return RunStatusRunning
	case cr.ErrorMessage.Valid:
		return RunStatusFailed
	default:
		return RunStatusSucceeded
	}
}
