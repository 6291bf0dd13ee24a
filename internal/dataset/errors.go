package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var (
	// ErrMissingFile is returned when an input file does not exist
	ErrMissingFile = errors.New("missing file")

	// ErrMalformedCSVRow is returned when a CSV row cannot be interpreted
	ErrMalformedCSVRow = errors.New("malformed csv row")

	// ErrFeatureNotFound is returned when no feature carries a requested id
	ErrFeatureNotFound = errors.New("feature not found")

	// ErrUnsupportedGeometry is returned when a feature is not a line string
	ErrUnsupportedGeometry = errors.New("unsupported geometry")

	// ErrMalformedOPL is returned when an OPL line cannot be decoded
	ErrMalformedOPL = errors.New("malformed opl line")
)

// MalformedRowError locates a bad CSV cell
type MalformedRowError struct {
	File   string
	Line   int
	Column string
	Reason string
}

func (e *MalformedRowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: malformed csv row: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: malformed csv row: column %q: %s", e.File, e.Line, e.Column, e.Reason)
}

// Unwrap makes errors.Is(err, ErrMalformedCSVRow) work
func (e *MalformedRowError) Unwrap() error {
	return ErrMalformedCSVRow
}

// openFile opens path for reading and reports a missing file as ErrMissingFile
func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// readFile is os.ReadFile with ErrMissingFile semantics
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
