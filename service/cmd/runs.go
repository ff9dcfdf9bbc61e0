package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	r "github.com/ignaciocanosa/Precios-Relativos/data/repos"
)

type runsCmd struct {
	limit int
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "show the most recent comparisons" }
func (*runsCmd) Usage() string {
	return `runs [-n <count>]

  Lists the comparison history kept in postgres or sqlite.
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", r.DefaultRecentRunsLimit, "Number of runs to show")
}

func (c *runsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	recorder := openRecorder(ctx, cfg)
	defer recorder.Close()

	runs, err := recorder.GetRecentComparisonRuns(ctx, c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(RunsMarkdown(runs))
	return subcommands.ExitSuccess
}
