package queries

import (
	"embed"
	"fmt"
)

//go:embed insert/*.sql schema/*.sql select/*.sql update/*.sql
var Files embed.FS

// ^^^ the go:embed directive is used to embed the files in the queries package
// meaning on compile time it will convert the files to binary data and embed it in the queries package

type InsertQueries struct {
	ComparisonRun string
}

type SchemaQueries struct {
	ComparisonRun string
}

type SelectQueries struct {
	RecentComparisonRuns string
}

type UpdateQueries struct {
	ComparisonRunFailure string
	ComparisonRunSuccess string
}

type QueryHelperStruct struct {
	Insert InsertQueries
	Schema SchemaQueries
	Select SelectQueries
	Update UpdateQueries
}

var QueryHelper = QueryHelperStruct{
	Insert: InsertQueries{
		ComparisonRun: "insert/comparison_run.sql",
	},
	Schema: SchemaQueries{
		ComparisonRun: "schema/comparison_run.sql",
	},
	Select: SelectQueries{
		RecentComparisonRuns: "select/recent_comparison_runs.sql",
	},
	Update: UpdateQueries{
		ComparisonRunFailure: "update/comparison_run_failure.sql",
		ComparisonRunSuccess: "update/comparison_run_success.sql",
	},
}

func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}
