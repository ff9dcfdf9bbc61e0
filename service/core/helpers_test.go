package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/guregu/null/v6"
	dm "github.com/ignaciocanosa/Precios-Relativos/data/models"
)

var (
	testFrom = time.Date(2025, time.July, 16, 0, 0, 0, 0, time.UTC)
	testTo   = time.Date(2025, time.August, 16, 0, 0, 0, 0, time.UTC)
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	ids   []int32
	res   []dm.RawSeries
	err   error
}

func (f *fakeFetcher) FetchMeasurements(ctx context.Context, ids []int32, from, to time.Time) ([]dm.RawSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.ids = ids
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRecorder struct {
	mu        sync.Mutex
	nextId    int64
	runs      map[int64]*dm.ComparisonRun
	insertErr error
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{runs: make(map[int64]*dm.ComparisonRun)}
}

func (r *fakeRecorder) InsertComparisonRun(ctx context.Context, run dm.NewComparisonRun) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.insertErr != nil {
		return 0, r.insertErr
	}
	r.nextId++
	r.runs[r.nextId] = &dm.ComparisonRun{
		Id:        r.nextId,
		SeriesA:   run.SeriesA,
		SeriesB:   run.SeriesB,
		DateFrom:  run.DateFrom,
		DateTo:    run.DateTo,
		CreatedAt: time.Now(),
	}
	return r.nextId, nil
}

func (r *fakeRecorder) UpdateComparisonRunAsSuccess(ctx context.Context, runId int64, rowCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[runId]
	if !ok {
		return fmt.Errorf("comparison run %d does not exist", runId)
	}
	run.RowCount = null.IntFrom(int64(rowCount))
	run.CompletedAt = null.TimeFrom(time.Now())
	return nil
}

func (r *fakeRecorder) UpdateComparisonRunAsFailure(ctx context.Context, runId int64, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[runId]
	if !ok {
		return fmt.Errorf("comparison run %d does not exist", runId)
	}
	run.ErrorMessage = null.StringFrom(errorMessage)
	run.CompletedAt = null.TimeFrom(time.Now())
	return nil
}

func (r *fakeRecorder) GetRecentComparisonRuns(ctx context.Context, limit int) ([]*dm.ComparisonRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]*dm.ComparisonRun, 0, len(r.runs))
	for id := r.nextId; id > 0 && len(res) < limit; id-- {
		if run, ok := r.runs[id]; ok {
			res = append(res, run)
		}
	}
	return res, nil
}

func (r *fakeRecorder) Close() error { return nil }

func (r *fakeRecorder) run(id int64) *dm.ComparisonRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[id]
}

func measurements(points ...any) dm.RawSeries {
	var series dm.RawSeries
	for i := 0; i+1 < len(points); i += 2 {
		rm := dm.RawMeasurement{Date: points[i].(string)}
		switch v := points[i+1].(type) {
		case float64:
			rm.Value = null.FloatFrom(v)
		case int:
			rm.Value = null.FloatFrom(float64(v))
		case nil:
		}
		series.Measurements = append(series.Measurements, rm)
	}
	if series.Measurements == nil {
		series.Measurements = []dm.RawMeasurement{}
	}
	return series
}

// cowsAndHeifers is five aligned days of series 543 and 531.
func cowsAndHeifers() []dm.RawSeries {
	return []dm.RawSeries{
		measurements(
			"2025-07-16", 1000000.0,
			"2025-07-17", 1010000.0,
			"2025-07-18", 1020000.0,
			"2025-07-21", 1030000.0,
			"2025-07-22", 1040000.0,
		),
		measurements(
			"2025-07-16", 800000.0,
			"2025-07-17", 800000.0,
			"2025-07-18", 850000.0,
			"2025-07-21", 820000.0,
			"2025-07-22", 1040000.0,
		),
	}
}
