package core

import (
	"embed"
	"html/template"
	"io"
	"net/url"
	"strconv"

	ex "github.com/ignaciocanosa/Precios-Relativos/data/extensions"
	dm "github.com/ignaciocanosa/Precios-Relativos/data/models"
	sm "github.com/ignaciocanosa/Precios-Relativos/service/models"
)

const DashboardTitle = "Comparador de Precios Relativos - HereIsData"

//go:embed templates/*.html
var templateFiles embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFiles, "templates/dashboard.html"))

type dashboardRow struct {
	Date  string
	A     string
	B     string
	Ratio string
}

type dashboardStats struct {
	Observations int
	Undefined    int
	First        string
	Last         string
	Change       string
	Mean         string
	StdDev       string
	Median       string
	Min          string
	Max          string
	AboveParity  int
}

// DashboardView is everything the dashboard page renders.
type DashboardView struct {
	Title       string
	Series      []sm.SeriesPayload
	Units       []dm.Unit
	SelectedA   string
	SelectedB   string
	From        string
	To          string
	Advisory    string
	Error       string
	Registered  string
	RegisterErr string
	ColumnA     string
	ColumnB     string
	Rows        []dashboardRow
	Stats       *dashboardStats
	ChartUrl    string
	CsvUrl      string
}

func newDashboardView(catalog *Catalog, settings ComparisonSettings) *DashboardView {
	view := &DashboardView{
		Title:  DashboardTitle,
		Series: sm.MapSeriesDescriptors(catalog.Descriptors()),
		Units:  dm.Units(),
		From:   ex.FmtShort(settings.From),
		To:     ex.FmtShort(settings.To),
	}
	if sd, err := catalog.Lookup(settings.SeriesA); err == nil {
		view.SelectedA = sd.ColumnName()
	}
	if sd, err := catalog.Lookup(settings.SeriesB); err == nil {
		view.SelectedB = sd.ColumnName()
	}
	return view
}

// withResult fills the view from a finished comparison.
func (view *DashboardView) withResult(res *ComparisonResult) {
	if res.Outcome == OutcomeAdvisory {
		view.Advisory = res.Advisory
		return
	}

	view.ColumnA = res.Ratio.ColumnA
	view.ColumnB = res.Ratio.ColumnB
	view.Rows = make([]dashboardRow, len(res.Ratio.Rows))
	for i, r := range res.Ratio.Rows {
		view.Rows[i] = dashboardRow{
			Date:  ex.FmtShort(r.Date),
			A:     FormatValue(r.A),
			B:     FormatValue(r.B),
			Ratio: FormatRatio(r.Ratio),
		}
	}

	if s := res.Statistics; s != nil {
		view.Stats = &dashboardStats{
			Observations: s.Observations,
			Undefined:    s.Undefined,
			First:        FormatValue(s.First),
			Last:         FormatValue(s.Last),
			Change:       FormatChange(s.Change),
			Mean:         FormatValue(s.Mean),
			StdDev:       FormatValue(s.StdDev),
			Median:       FormatValue(s.Median),
			Min:          FormatValue(s.Min),
			Max:          FormatValue(s.Max),
			AboveParity:  s.AboveParity,
		}

		query := comparisonQuery(res.Settings)
		view.ChartUrl = "/compare/chart.png?" + query
	}

	if len(view.Rows) > 0 {
		view.CsvUrl = "/compare/" + ExportFileName + "?" + comparisonQuery(res.Settings)
	}
}

func comparisonQuery(settings ComparisonSettings) string {
	q := url.Values{}
	q.Set(paramSeriesA, strconv.FormatInt(int64(settings.SeriesA), 10))
	q.Set(paramSeriesB, strconv.FormatInt(int64(settings.SeriesB), 10))
	q.Set(paramFrom, ex.FmtShort(settings.From))
	q.Set(paramTo, ex.FmtShort(settings.To))
	return q.Encode()
}

func renderDashboard(w io.Writer, view *DashboardView) error {
	return dashboardTemplate.Execute(w, view)
}
