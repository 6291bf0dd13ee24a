// Package report writes evaluation results as CSV or plain text. Writers
// touch nothing but the stream they are given.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/hauke96/master-thesis/evaluation/internal/dataset"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/routing"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/similarity"
)

// Fixed headers of the CSV reports
var (
	DistanceHeader     = []string{"source", "id", "distance_beeline", "distance_absolute", "distance_relative"}
	SimilarityHeader   = []string{"id", "h_dist"}
	SegmentHeader      = []string{"segment", "length"}
	ConsolidatedHeader = []string{"file", "input_vertices", "avg_time", "min_time", "max_time"}
)

// FloatFormat turns a number into its CSV text
type FloatFormat func(float64) string

// FullPrecision writes the shortest text that parses back to the same value
func FullPrecision(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Fixed writes exactly prec decimals
func Fixed(prec int) FloatFormat {
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', prec, 64)
	}
}

// WriteCSV writes the header followed by the rows
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return fmt.Errorf("row %d has %d columns, header has %d", i, len(row), len(header))
		}
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// WriteDistances writes source,id,distance_beeline,distance_absolute,distance_relative
func WriteDistances(w io.Writer, records []routing.DistanceRecord, format FloatFormat) error {
	if format == nil {
		format = FullPrecision
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Source,
			r.ID,
			format(r.DistanceBeeline),
			format(r.DistanceAbsolute),
			format(r.DistanceRelative),
		}
	}
	return WriteCSV(w, DistanceHeader, rows)
}

// WriteSimilarities writes id,h_dist
func WriteSimilarities(w io.Writer, records []similarity.Record, format FloatFormat) error {
	if format == nil {
		format = FullPrecision
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.ID, format(r.HausdorffDistance)}
	}
	return WriteCSV(w, SimilarityHeader, rows)
}

// WriteSegmentLengths writes segment,length in meters with two decimals
func WriteSegmentLengths(w io.Writer, lengths []float64) error {
	format := Fixed(2)
	rows := make([][]string, len(lengths))
	for i, l := range lengths {
		rows[i] = []string{strconv.Itoa(i), format(l)}
	}
	return WriteCSV(w, SegmentHeader, rows)
}

// WriteRunSummaries writes file,input_vertices,avg_time,min_time,max_time
func WriteRunSummaries(w io.Writer, summaries []dataset.RunSummary) error {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{
			s.File,
			FullPrecision(s.InputVertices),
			FullPrecision(s.AvgTime),
			FullPrecision(s.MinTime),
			FullPrecision(s.MaxTime),
		}
	}
	return WriteCSV(w, ConsolidatedHeader, rows)
}
