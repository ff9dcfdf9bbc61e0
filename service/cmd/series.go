package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type seriesCmd struct{}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "list the series available for comparison" }
func (*seriesCmd) Usage() string {
	return `series

  Lists the built-in series plus the ones declared in the configuration.
`
}

func (*seriesCmd) SetFlags(f *flag.FlagSet) {}

func (*seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	seed, err := cfg.SeriesSeed()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	printMarkdown(SeriesMarkdown(seed))
	return subcommands.ExitSuccess
}
