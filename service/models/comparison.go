package models

import (
	"time"

	"github.com/guregu/null/v6"
	ex "github.com/ignaciocanosa/Precios-Relativos/data/extensions"
	dm "github.com/ignaciocanosa/Precios-Relativos/data/models"
)

type SeriesPayload struct {
	Id         int32  `json:"id"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	ColumnName string `json:"columnName"`
}

type RegisterSeriesRequest struct {
	Id   int32  `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type RatioRowPayload struct {
	Date  string     `json:"date"`
	A     float64    `json:"a"`
	B     float64    `json:"b"`
	Ratio null.Float `json:"ratio"` // null where the ratio is undefined
}

type ComparisonResponse struct {
	Advisory   string            `json:"advisory,omitempty"`
	SeriesA    *SeriesPayload    `json:"seriesA,omitempty"`
	SeriesB    *SeriesPayload    `json:"seriesB,omitempty"`
	From       string            `json:"from"`
	To         string            `json:"to"`
	Rows       []RatioRowPayload `json:"rows"`
	Statistics *RatioStatistics  `json:"statistics,omitempty"`
}

type ComparisonRunPayload struct {
	Id           int64       `json:"id"`
	SeriesA      int32       `json:"seriesA"`
	SeriesB      int32       `json:"seriesB"`
	From         string      `json:"from"`
	To           string      `json:"to"`
	Status       string      `json:"status"`
	RowCount     null.Int    `json:"rowCount"`
	ErrorMessage null.String `json:"errorMessage"`
	CreatedAt    time.Time   `json:"createdAt"`
	CompletedAt  null.Time   `json:"completedAt"`
}

func MapSeriesDescriptor(sd dm.SeriesDescriptor) SeriesPayload {
	return SeriesPayload{
		Id:         sd.Id,
		Name:       sd.Name,
		Unit:       string(sd.Unit),
		ColumnName: sd.ColumnName(),
	}
}

func MapSeriesDescriptors(sds []dm.SeriesDescriptor) []SeriesPayload {
	res := make([]SeriesPayload, len(sds))
	for i, sd := range sds {
		res[i] = MapSeriesDescriptor(sd)
	}
	return res
}

func MapRatioRows(rs *dm.RatioSeries) []RatioRowPayload {
	if rs == nil {
		return []RatioRowPayload{}
	}

	res := make([]RatioRowPayload, len(rs.Rows))
	for i, r := range rs.Rows {
		res[i] = RatioRowPayload{
			Date:  ex.FmtShort(r.Date),
			A:     r.A,
			B:     r.B,
			Ratio: r.Ratio,
		}
	}
	return res
}

func MapComparisonRuns(runs []*dm.ComparisonRun) []ComparisonRunPayload {
	res := make([]ComparisonRunPayload, len(runs))
	for i, r := range runs {
		res[i] = ComparisonRunPayload{
			Id:           r.Id,
			SeriesA:      r.SeriesA,
			SeriesB:      r.SeriesB,
			From:         ex.FmtShort(r.DateFrom),
			To:           ex.FmtShort(r.DateTo),
			Status:       r.Status(),
			RowCount:     r.RowCount,
			ErrorMessage: r.ErrorMessage,
			CreatedAt:    r.CreatedAt,
			CompletedAt:  r.CompletedAt,
		}
	}
	return res
}
