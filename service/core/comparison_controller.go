package core

import (
	"context"
	"fmt"
	"log"
	"time"

	ex "github.com/ignaciocanosa/Precios-Relativos/data/extensions"
	dm "github.com/ignaciocanosa/Precios-Relativos/data/models"
	sm "github.com/ignaciocanosa/Precios-Relativos/service/models"
)

type ComparisonOutcome int

const (
	OutcomeRatio ComparisonOutcome = iota
	OutcomeAdvisory
)

const SameSeriesAdvisory = "Seleccioná dos series distintas para comparar."

var (
	DefaultDateFrom = time.Date(2025, time.July, 16, 0, 0, 0, 0, time.UTC)
	DefaultDateTo   = time.Date(2025, time.August, 16, 0, 0, 0, 0, time.UTC)
)

type ComparisonSettings struct {
	SeriesA int32
	SeriesB int32
	From    time.Time
	To      time.Time
}

type ComparisonResult struct {
	Outcome    ComparisonOutcome
	Advisory   string
	SeriesA    dm.SeriesDescriptor
	SeriesB    dm.SeriesDescriptor
	Settings   ComparisonSettings
	Table      *dm.SeriesTable
	Ratio      *dm.RatioSeries
	Statistics *sm.RatioStatistics // nil when no ratio is defined
}

func (settings ComparisonSettings) validate() error {
	if settings.SeriesA <= 0 || settings.SeriesB <= 0 {
		return fmt.Errorf("series ids %d and %d must be positive: %w", settings.SeriesA, settings.SeriesB, ErrInvalidIdentifier)
	}
	if settings.From.IsZero() || settings.To.IsZero() {
		return fmt.Errorf("both dates are required: %w", ErrInvalidInput)
	}
	if settings.From.After(settings.To) {
		return fmt.Errorf("date from %s is after date to %s: %w", ex.FmtShort(settings.From), ex.FmtShort(settings.To), ErrInvalidInput)
	}
	return nil
}

// sameAs compares by calendar day, times parsed from different sources may carry other locations.
func (settings ComparisonSettings) sameAs(other ComparisonSettings) bool {
	return settings.SeriesA == other.SeriesA &&
		settings.SeriesB == other.SeriesB &&
		ex.DateOf(settings.From).Equal(ex.DateOf(other.From)) &&
		ex.DateOf(settings.To).Equal(ex.DateOf(other.To))
}

// RunComparison fetches both series for the range, joins them and computes A / B.
// Picking the same series twice yields an advisory and no remote call.
func (sc *ServiceContext) RunComparison(ctx context.Context, catalog *Catalog, settings ComparisonSettings) (*ComparisonResult, error) {
	start := time.Now()
	if err := settings.validate(); err != nil {
		log.Printf("Invalid comparison settings %+v: %v", settings, err)
		return nil, err
	}

	if settings.SeriesA == settings.SeriesB {
		log.Printf("Comparison of series %d against itself skipped", settings.SeriesA)
		return &ComparisonResult{
			Outcome:  OutcomeAdvisory,
			Advisory: SameSeriesAdvisory,
			Settings: settings,
		}, nil
	}

	sdA, err := catalog.Lookup(settings.SeriesA)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookup, err)
	}
	sdB, err := catalog.Lookup(settings.SeriesB)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookup, err)
	}

	label := fmt.Sprintf("%s / %s", sdA.ColumnName(), sdB.ColumnName())
	log.Printf("Received request to compare %v between %s and %s", label, ex.FmtShort(settings.From), ex.FmtShort(settings.To))

	runId := sc.insertComparisonRun(ctx, settings)

	log.Printf("Fetching measurements for %v (time: %v)", label, time.Since(start))
	ids := []int32{settings.SeriesA, settings.SeriesB}
	raw, err := sc.HereIsDataClient.FetchMeasurements(ctx, ids, ex.DateOf(settings.From), ex.DateOf(settings.To))
	if err != nil {
		log.Printf("Error fetching measurements for %v: %v", label, err)
		return sc.markComparisonRunAsFailure(ctx, runId, err)
	}

	log.Printf("Assembling series table for %v (time: %v)", label, time.Since(start))
	table, err := AssembleSeriesTable(raw, ids, catalog)
	if err != nil {
		log.Printf("Error assembling series table for %v: %v", label, err)
		return sc.markComparisonRunAsFailure(ctx, runId, err)
	}

	log.Printf("Computing ratio for %v over %d rows (time: %v)", label, table.Len(), time.Since(start))
	ratio, err := ComputeRatio(table, sdA.ColumnName(), sdB.ColumnName())
	if err != nil {
		log.Printf("Error computing ratio for %v: %v", label, err)
		return sc.markComparisonRunAsFailure(ctx, runId, err)
	}

	result := &ComparisonResult{
		Outcome:  OutcomeRatio,
		SeriesA:  sdA,
		SeriesB:  sdB,
		Settings: settings,
		Table:    table,
		Ratio:    ratio,
	}

	if stats, err := GetRatioStatistics(ratio); err == nil {
		result.Statistics = stats
	} else {
		log.Printf("No statistics for %v: %v", label, err)
	}

	sc.markComparisonRunAsSuccess(ctx, runId, ratio.Len())

	log.Printf("Comparison %v completed with %d rows (time: %v)", label, ratio.Len(), time.Since(start))
	return result, nil
}

// run history is best effort, a broken store never fails a comparison
func (sc *ServiceContext) insertComparisonRun(ctx context.Context, settings ComparisonSettings) int64 {
	if sc.RunRecorder == nil {
		return 0
	}

	runId, err := sc.RunRecorder.InsertComparisonRun(ctx, dm.NewComparisonRun{
		SeriesA:  settings.SeriesA,
		SeriesB:  settings.SeriesB,
		DateFrom: ex.DateOf(settings.From),
		DateTo:   ex.DateOf(settings.To),
	})
	if err != nil {
		log.Printf("[WARN] error inserting comparison run: %v", err)
		return 0
	}
	return runId
}

func (sc *ServiceContext) markComparisonRunAsSuccess(ctx context.Context, runId int64, rowCount int) {
	if sc.RunRecorder == nil || runId == 0 {
		return
	}
	if err := sc.RunRecorder.UpdateComparisonRunAsSuccess(ctx, runId, rowCount); err != nil {
		log.Printf("[WARN] error updating comparison run %d as success: %v", runId, err)
	}
}

func (sc *ServiceContext) markComparisonRunAsFailure(ctx context.Context, runId int64, cause error) (*ComparisonResult, error) {
	if sc.RunRecorder != nil && runId != 0 {
		// the request context may be what failed, the failure still has to be written
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := sc.RunRecorder.UpdateComparisonRunAsFailure(writeCtx, runId, cause.Error()); err != nil {
			log.Printf("[WARN] error updating comparison run %d as failure: %v", runId, err)
		}
	}
	return nil, cause
}
