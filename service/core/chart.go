package core

import (
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"

	dm "github.com/ignaciocanosa/Precios-Relativos/data/models"
)

const (
	ChartTitle  = "Evolución del Precio Relativo"
	ChartXLabel = "Fecha"
	ChartYLabel = "Relación de precios"

	chartWidth  = 1024
	chartHeight = 480
)

var ratioColor = drawing.ColorFromHex("00008b")

// RenderRatioChart draws the defined ratios of rs as a PNG, with a dashed line at parity.
func RenderRatioChart(w io.Writer, rs *dm.RatioSeries) error {
	dates, values := rs.Defined()
	if len(values) == 0 {
		return fmt.Errorf("no defined ratio to chart")
	}

	// a single point has no x range, stretch it over one day
	if len(values) == 1 {
		dates = append(dates, dates[0].Add(24*time.Hour))
		values = append(values, values[0])
	}

	first, last := dates[0], dates[len(dates)-1]
	ch := chart.Chart{
		Title:  ChartTitle,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:           ChartXLabel,
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  ChartYLabel,
			Range: ratioRange(values),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    fmt.Sprintf("%s / %s", rs.ColumnA, rs.ColumnB),
				XValues: dates,
				YValues: values,
				Style: chart.Style{
					StrokeColor: ratioColor,
					StrokeWidth: 2,
				},
			},
			chart.TimeSeries{
				Name:    "Paridad",
				XValues: []time.Time{first, last},
				YValues: []float64{parity, parity},
				Style: chart.Style{
					StrokeColor:     chart.ColorAlternateGray,
					StrokeWidth:     1,
					StrokeDashArray: []float64{5.0, 5.0},
				},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("error rendering ratio chart: %w", err)
	}
	return nil
}

// ratioRange always includes parity so the reference line is on screen.
func ratioRange(values []float64) *chart.ContinuousRange {
	lo := min(floats.Min(values), parity)
	hi := max(floats.Max(values), parity)

	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.05
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
