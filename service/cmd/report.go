package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"

	ex "github.com/ignaciocanosa/Precios-Relativos/data/extensions"
	dm "github.com/ignaciocanosa/Precios-Relativos/data/models"
	"github.com/ignaciocanosa/Precios-Relativos/service/core"
)

// cell escapes the pipes a table cell cannot hold raw
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func cells(row ...string) []string {
	res := make([]string, len(row))
	for i, v := range row {
		res[i] = cell(v)
	}
	return res
}

// ComparisonMarkdown renders a comparison the way the dashboard shows it.
func ComparisonMarkdown(res *core.ComparisonResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(core.DashboardTitle)

	if res.Outcome == core.OutcomeAdvisory {
		doc.Blockquote(res.Advisory)
		return doc.String()
	}

	doc.H2f("%s / %s", cell(res.Ratio.ColumnA), cell(res.Ratio.ColumnB))
	doc.PlainTextf("Desde %s hasta %s", ex.FmtShort(res.Settings.From), ex.FmtShort(res.Settings.To))
	doc.LF()

	if res.Ratio.Len() == 0 {
		doc.PlainText("Sin fechas en común para el rango elegido.")
		return doc.String()
	}

	if s := res.Statistics; s != nil {
		doc.H3("Resumen")
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Métrica", "Valor"},
			Rows: [][]string{
				{"Observaciones", fmt.Sprint(s.Observations)},
				{"Sin definir", fmt.Sprint(s.Undefined)},
				{"Inicial", core.FormatValue(s.First)},
				{"Final", core.FormatValue(s.Last)},
				{"Variación", core.FormatChange(s.Change)},
				{"Media", core.FormatValue(s.Mean)},
				{"Desvío estándar", core.FormatValue(s.StdDev)},
				{"Mediana", core.FormatValue(s.Median)},
				{"Mínimo", core.FormatValue(s.Min)},
				{"Máximo", core.FormatValue(s.Max)},
				{"Sobre paridad", fmt.Sprint(s.AboveParity)},
			},
		})
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    cells("Fecha", res.Ratio.ColumnA, res.Ratio.ColumnB, "Precio relativo"),
		Rows:      [][]string{},
	}
	for _, r := range res.Ratio.Rows {
		table.Rows = append(table.Rows, []string{
			ex.FmtShort(r.Date),
			core.FormatValue(r.A),
			core.FormatValue(r.B),
			core.FormatRatio(r.Ratio),
		})
	}
	doc.H3("Datos")
	doc.Table(table)

	return doc.String()
}

// SeriesMarkdown lists the catalog.
func SeriesMarkdown(descriptors []dm.SeriesDescriptor) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Series disponibles")

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignLeft},
		Header:    []string{"ID", "Nombre", "Unidad"},
		Rows:      [][]string{},
	}
	for _, sd := range descriptors {
		table.Rows = append(table.Rows, cells(fmt.Sprint(sd.Id), sd.Name, string(sd.Unit)))
	}
	doc.Table(table)

	return doc.String()
}

// RunsMarkdown lists the comparison history, newest first.
func RunsMarkdown(runs []*dm.ComparisonRun) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Comparaciones recientes")

	if len(runs) == 0 {
		doc.PlainText("Sin comparaciones registradas.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft},
		Header:    []string{"#", "Fecha", "Series", "Rango", "Estado", "Detalle"},
		Rows:      [][]string{},
	}
	for _, run := range runs {
		detail := ""
		if run.RowCount.Valid {
			detail = fmt.Sprintf("%d filas", run.RowCount.Int64)
		}
		if run.ErrorMessage.Valid {
			detail = run.ErrorMessage.String
		}
		table.Rows = append(table.Rows, cells(
			fmt.Sprint(run.Id),
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d / %d", run.SeriesA, run.SeriesB),
			ex.FmtShort(run.DateFrom)+" → "+ex.FmtShort(run.DateTo),
			run.Status(),
			detail,
		))
	}
	doc.Table(table)

	return doc.String()
}

// printMarkdown renders text for the terminal, falling back to the raw text.
func printMarkdown(text string) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		fmt.Print(text)
		return
	}

	out, err := renderer.Render(text)
	if err != nil {
		fmt.Print(text)
		return
	}
	fmt.Print(out)
}
