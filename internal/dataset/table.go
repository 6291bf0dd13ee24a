package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hauke96/master-thesis/evaluation/internal/lib/routing"
)

// Table is a CSV file held in memory with its header
type Table struct {
	File   string
	Header []string
	Rows   [][]string

	columns map[string]int
}

// ReadTable reads a CSV file with a header row
func ReadTable(path string) (*Table, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseTable(path, f)
}

// ParseTable reads CSV content from r. name is only used in error messages.
func ParseTable(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &MalformedRowError{File: name, Line: 1, Reason: "missing header"}
		}
		return nil, csvError(name, err)
	}

	table := &Table{
		File:    name,
		Header:  header,
		columns: make(map[string]int, len(header)),
	}
	for i, column := range header {
		column = strings.TrimSpace(column)
		table.Header[i] = column
		if _, exists := table.columns[column]; !exists {
			table.columns[column] = i
		}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(name, err)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// HasColumn reports whether the header names the column
func (t *Table) HasColumn(column string) bool {
	_, ok := t.columns[column]
	return ok
}

// Line returns the 1-based file line of a data row
func (t *Table) Line(row int) int {
	return row + 2
}

// String returns a cell as text
func (t *Table) String(row int, column string) (string, error) {
	index, ok := t.columns[column]
	if !ok {
		return "", &MalformedRowError{File: t.File, Line: t.Line(row), Column: column, Reason: "no such column"}
	}
	return strings.TrimSpace(t.Rows[row][index]), nil
}

// Float parses a cell as a number
func (t *Table) Float(row int, column string) (float64, error) {
	text, err := t.String(row, column)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &MalformedRowError{File: t.File, Line: t.Line(row), Column: column, Reason: fmt.Sprintf("%q is not a number", text)}
	}
	return value, nil
}

// ReadBenchmark reads a routing benchmark CSV. The route length column is
// "distance_route"; older result files call it "distance".
func ReadBenchmark(path string) ([]routing.Record, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	return BenchmarkRecords(table)
}

// BenchmarkRecords converts a benchmark table into records
func BenchmarkRecords(table *Table) ([]routing.Record, error) {
	routeColumn := "distance_route"
	if !table.HasColumn(routeColumn) && table.HasColumn("distance") {
		routeColumn = "distance"
	}

	records := make([]routing.Record, 0, len(table.Rows))
	for i := range table.Rows {
		beeline, err := table.Float(i, "distance_beeline")
		if err != nil {
			return nil, err
		}
		route, err := table.Float(i, routeColumn)
		if err != nil {
			return nil, err
		}

		record := routing.Record{
			Line:            table.Line(i),
			DistanceBeeline: beeline,
			DistanceRoute:   route,
		}
		for _, column := range table.Header {
			if column == "distance_beeline" || column == routeColumn {
				continue
			}
			// Extra columns are informational; non-numeric ones are dropped
			if value, err := table.Float(i, column); err == nil {
				if record.Extra == nil {
					record.Extra = make(map[string]float64)
				}
				record.Extra[column] = value
			}
		}
		records = append(records, record)
	}

	return records, nil
}

func csvError(name string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &MalformedRowError{File: name, Line: parseErr.Line, Reason: parseErr.Err.Error()}
	}
	return fmt.Errorf("failed to read %s: %w", name, err)
}
