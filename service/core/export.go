package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	ex "github.com/ignaciocanosa/Precios-Relativos/data/extensions"
	dm "github.com/ignaciocanosa/Precios-Relativos/data/models"
)

const (
	ExportFileName    = "precio_relativo.csv"
	ratioColumnHeader = "precio_relativo"
)

// WriteCSV writes one line per row: date, both inputs and their ratio. An undefined ratio is an empty cell.
func WriteCSV(w io.Writer, rs *dm.RatioSeries) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"date", rs.ColumnA, rs.ColumnB, ratioColumnHeader}); err != nil {
		return fmt.Errorf("error writing csv header: %w", err)
	}

	for _, r := range rs.Rows {
		ratio := ""
		if r.Ratio.Valid {
			ratio = formatFloat(r.Ratio.Float64)
		}
		record := []string{ex.FmtShort(r.Date), formatFloat(r.A), formatFloat(r.B), ratio}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing csv row %s: %w", ex.FmtShort(r.Date), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
