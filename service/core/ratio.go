package core

import (
	"fmt"
	"math"

	m "github.com/ignaciocanosa/Precios-Relativos/data/models"
)

// ComputeRatio divides columnA by columnB row by row. Rows where the quotient is not
// finite are kept with an undefined ratio.
func ComputeRatio(table *m.SeriesTable, columnA, columnB string) (*m.RatioSeries, error) {
	idxA := table.ColumnIndex(columnA)
	if idxA < 0 {
		return nil, fmt.Errorf("column %q: %w", columnA, ErrLookup)
	}
	idxB := table.ColumnIndex(columnB)
	if idxB < 0 {
		return nil, fmt.Errorf("column %q: %w", columnB, ErrLookup)
	}

	res := &m.RatioSeries{
		ColumnA: columnA,
		ColumnB: columnB,
		Rows:    make([]m.RatioRow, 0, table.Len()),
	}

	for _, row := range table.Rows {
		a, b := row.Values[idxA], row.Values[idxB]
		if math.IsNaN(a) || math.IsNaN(b) {
			continue
		}
		res.Rows = append(res.Rows, m.RatioRow{
			Date:  row.Date,
			A:     a,
			B:     b,
			Ratio: m.NewRatio(a, b),
		})
	}

	return res, nil
}
