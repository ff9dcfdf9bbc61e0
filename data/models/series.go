package models

import (
	"fmt"
	"math"
	"time"

	"github.com/guregu/null/v6"
)

// Unit is the pricing unit label shown next to a series name.
type Unit string

const (
	UnitPerKg   Unit = "por kg"
	UnitPerHead Unit = "por bulto"
	UnitPerUnit Unit = "por unidad"
)

var units = []Unit{UnitPerKg, UnitPerHead, UnitPerUnit}

// Units returns the fixed set of unit labels, in display order.
func Units() []Unit {
	res := make([]Unit, len(units))
	copy(res, units)
	return res
}

// ParseUnit maps a label onto one of the known units.
func ParseUnit(label string) (Unit, error) {
	for _, u := range units {
		if string(u) == label {
			return u, nil
		}
	}
	return "", fmt.Errorf("unknown unit %q, expected one of %v", label, units)
}

type SeriesDescriptor struct {
	Id   int32
	Name string
	Unit Unit
}

// ColumnName is the composed label used for the series values in a joined table.
func (sd SeriesDescriptor) ColumnName() string {
	return fmt.Sprintf("%s (%s)", sd.Name, sd.Unit)
}

// RawSeries is one element of the remote payload, kept as close to the wire as possible.
type RawSeries struct {
	Measurements []RawMeasurement `json:"measurements"`
}

type RawMeasurement struct {
	Date  string     `json:"date"`
	Value null.Float `json:"value"` // null on days the source has no quote
}

type MeasurementPoint struct {
	Date  time.Time
	Value float64
}

type SeriesColumn struct {
	SeriesId int32
	Name     string
}

type SeriesRow struct {
	Date   time.Time
	Values []float64 // one per column, same order as SeriesTable.Columns
}

// SeriesTable is a date aligned table, one column per requested series.
// Rows are sorted by date and every row carries a value for every column.
type SeriesTable struct {
	Columns []SeriesColumn
	Rows    []SeriesRow
}

func (st *SeriesTable) Len() int { return len(st.Rows) }

// ColumnIndex returns the position of the named column or -1.
func (st *SeriesTable) ColumnIndex(name string) int {
	for i, c := range st.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the column at idx, in row order.
func (st *SeriesTable) Column(idx int) []float64 {
	res := make([]float64, len(st.Rows))
	for i, r := range st.Rows {
		res[i] = r.Values[idx]
	}
	return res
}

type RatioRow struct {
	Date  time.Time
	A     float64
	B     float64
	Ratio null.Float // invalid when A/B is not a finite number
}

// RatioSeries is a SeriesTable restricted to two columns plus their ratio.
type RatioSeries struct {
	ColumnA string
	ColumnB string
	Rows    []RatioRow
}

func (rs *RatioSeries) Len() int { return len(rs.Rows) }

// Defined returns the dates and values of the rows that have a finite ratio.
func (rs *RatioSeries) Defined() ([]time.Time, []float64) {
	dates := make([]time.Time, 0, len(rs.Rows))
	values := make([]float64, 0, len(rs.Rows))
	for _, r := range rs.Rows {
		if !r.Ratio.Valid {
			continue
		}
		dates = append(dates, r.Date)
		values = append(values, r.Ratio.Float64)
	}
	return dates, values
}

// NewRatio divides a by b, returning an invalid value when the result is not finite.
func NewRatio(a, b float64) null.Float {
	r := a / b
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return null.Float{}
	}
	return null.FloatFrom(r)
}
