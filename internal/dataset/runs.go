package dataset

import (
	"sort"
)

// RunSummary is the aggregated timing of one benchmark result file
type RunSummary struct {
	File          string
	InputVertices float64
	AvgTime       float64
	MinTime       float64
	MaxTime       float64
}

// SummarizeRun reads the row with iteration_number 0 of a benchmark result
// file. That row holds the aggregates over all iterations.
func SummarizeRun(path string) (RunSummary, error) {
	table, err := ReadTable(path)
	if err != nil {
		return RunSummary{}, err
	}

	for i := range table.Rows {
		iteration, err := table.Float(i, "iteration_number")
		if err != nil {
			return RunSummary{}, err
		}
		if iteration != 0 {
			continue
		}

		summary := RunSummary{File: path}
		for _, field := range []struct {
			column string
			target *float64
		}{
			{"input_vertices", &summary.InputVertices},
			{"avg_time", &summary.AvgTime},
			{"min_time", &summary.MinTime},
			{"max_time", &summary.MaxTime},
		} {
			if *field.target, err = table.Float(i, field.column); err != nil {
				return RunSummary{}, err
			}
		}
		return summary, nil
	}

	return RunSummary{}, &MalformedRowError{File: path, Line: 1, Column: "iteration_number", Reason: "no row with iteration 0"}
}

// SortByInputVertices orders summaries by vertex count, keeping file order
// for equal counts
func SortByInputVertices(summaries []RunSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].InputVertices < summaries[j].InputVertices
	})
}
