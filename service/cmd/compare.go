package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	ex "github.com/ignaciocanosa/Precios-Relativos/data/extensions"
	"github.com/ignaciocanosa/Precios-Relativos/service/core"
)

// compareCmd holds the flags for the 'compare' subcommand.
type compareCmd struct {
	seriesA string
	seriesB string
	from    string
	to      string
	csvPath string
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "compute the relative price of two series" }
func (*compareCmd) Usage() string {
	return `compare -a <id> -b <id> [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-csv <file>]

  Fetches both series, prints A / B for every date they share and optionally
  writes the table as CSV.
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.seriesA, "a", "543", "Series id of the numerator")
	f.StringVar(&c.seriesB, "b", "531", "Series id of the denominator")
	f.StringVar(&c.from, "from", ex.FmtShort(core.DefaultDateFrom), "First date of the range")
	f.StringVar(&c.to, "to", ex.FmtShort(core.DefaultDateTo), "Last date of the range")
	f.StringVar(&c.csvPath, "csv", "", "Write the result to this CSV file")
}

func (c *compareCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	settings, err := c.settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	sc, release, err := newServiceContext(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	res, err := sc.RunComparison(ctx, sc.Sessions.Get("").Catalog, settings)
	if err != nil {
		fmt.Fprintln(os.Stderr, core.UserMessage(err))
		return subcommands.ExitFailure
	}

	printMarkdown(ComparisonMarkdown(res))

	if c.csvPath != "" && res.Outcome == core.OutcomeRatio {
		if err := writeCsvFile(c.csvPath, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.csvPath, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Successfully wrote %d rows to %s\n", res.Ratio.Len(), c.csvPath)
	}
	return subcommands.ExitSuccess
}

func (c *compareCmd) settings() (core.ComparisonSettings, error) {
	seriesA, err := core.ParseIdentifier(c.seriesA)
	if err != nil {
		return core.ComparisonSettings{}, fmt.Errorf("-a: %w", err)
	}
	seriesB, err := core.ParseIdentifier(c.seriesB)
	if err != nil {
		return core.ComparisonSettings{}, fmt.Errorf("-b: %w", err)
	}
	from, err := ex.ParseDate(c.from)
	if err != nil {
		return core.ComparisonSettings{}, err
	}
	to, err := ex.ParseDate(c.to)
	if err != nil {
		return core.ComparisonSettings{}, err
	}
	return core.ComparisonSettings{
		SeriesA: seriesA,
		SeriesB: seriesB,
		From:    from,
		To:      to,
	}, nil
}

func writeCsvFile(path string, res *core.ComparisonResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := core.WriteCSV(f, res.Ratio); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
