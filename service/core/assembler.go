package core

import (
	"fmt"
	"slices"
	"time"

	ex "github.com/ignaciocanosa/Precios-Relativos/data/extensions"
	m "github.com/ignaciocanosa/Precios-Relativos/data/models"
	c "github.com/ignaciocanosa/Precios-Relativos/service/api"
)

// AssembleSeriesTable joins raw series on date, keeping only the dates every series has a value for.
// raw[i] belongs to ids[i] and columns follow the order of ids.
func AssembleSeriesTable(raw []m.RawSeries, ids []int32, catalog *Catalog) (*m.SeriesTable, error) {
	if len(raw) != len(ids) {
		return nil, &c.MalformedResponseError{
			Reason: fmt.Sprintf("expected %d series, got %d", len(ids), len(raw)),
		}
	}

	columns := make([]m.SeriesColumn, len(ids))
	seen := make(map[string]int32, len(ids))
	for i, id := range ids {
		sd, err := catalog.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLookup, err)
		}

		name := sd.ColumnName()
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("series %d and %d are both named %q: %w", prev, id, name, ErrDuplicateColumn)
		}
		seen[name] = id
		columns[i] = m.SeriesColumn{SeriesId: id, Name: name}
	}

	byColumn := make([]map[time.Time]float64, len(raw))
	for i, series := range raw {
		points, err := parseSeries(series, ids[i])
		if err != nil {
			return nil, err
		}
		byColumn[i] = points
	}

	table := &m.SeriesTable{Columns: columns, Rows: []m.SeriesRow{}}
	if len(byColumn) == 0 {
		return table, nil
	}

	// the join is driven by the first series, a date survives only if every other series has it
	for date, first := range byColumn[0] {
		values := make([]float64, len(byColumn))
		values[0] = first

		complete := true
		for i := 1; i < len(byColumn); i++ {
			v, ok := byColumn[i][date]
			if !ok {
				complete = false
				break
			}
			values[i] = v
		}

		if complete {
			table.Rows = append(table.Rows, m.SeriesRow{Date: date, Values: values})
		}
	}

	slices.SortFunc(table.Rows, func(a, b m.SeriesRow) int {
		return a.Date.Compare(b.Date)
	})

	return table, nil
}

// parseSeries turns the raw points of one series into a date keyed map.
// Null values are missing observations and a repeated date keeps the last value.
func parseSeries(series m.RawSeries, id int32) (map[time.Time]float64, error) {
	points := make(map[time.Time]float64, len(series.Measurements))
	for _, rm := range series.Measurements {
		date, err := ex.ParseDate(rm.Date)
		if err != nil {
			return nil, &c.MalformedResponseError{
				Reason: fmt.Sprintf("series %d", id),
				Err:    err,
			}
		}

		if !rm.Value.Valid {
			delete(points, date)
			continue
		}
		points[date] = rm.Value.Float64
	}
	return points, nil
}
