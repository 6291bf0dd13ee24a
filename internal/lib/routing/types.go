package routing

import (
	"errors"
	"fmt"
)

// Source labels of the three route variants that are compared
const (
	SourceExpected = "expected" // hand-drawn reference route
	SourceHiker    = "hiker"    // algorithm under test
	SourceRouting  = "routing"  // graph-based baseline
)

// DefaultBucketSize is the beeline rounding step in meters. All waypoints of
// the benchmark datasets are multiples of 50m apart.
const DefaultBucketSize = 50.0

// ErrNoMatchingRecord is returned when no benchmark row falls into a bucket
var ErrNoMatchingRecord = errors.New("no matching record")

// ErrNonPositiveBeeline is returned when a matched row cannot serve as the
// denominator of a relative distance
var ErrNonPositiveBeeline = errors.New("distance_beeline must be positive")

// NoMatchError names the bucket that had no benchmark row
type NoMatchError struct {
	Bucket float64
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no matching record for beeline bucket %v", e.Bucket)
}

// Unwrap makes errors.Is(err, ErrNoMatchingRecord) work
func (e *NoMatchError) Unwrap() error {
	return ErrNoMatchingRecord
}

// Record is one row of a routing benchmark CSV. Extra holds every other
// column by header name (timings, vertex counts, iteration numbers).
type Record struct {
	Line            int                `json:"line"`
	DistanceBeeline float64            `json:"distance_beeline"`
	DistanceRoute   float64            `json:"distance_route"`
	Extra           map[string]float64 `json:"extra,omitempty"`
}

// DistanceRecord is one output row comparing a route length to the beeline
type DistanceRecord struct {
	Source           string  `json:"source"`
	ID               string  `json:"id"`
	DistanceBeeline  float64 `json:"distance_beeline"`
	DistanceAbsolute float64 `json:"distance_absolute"`
	DistanceRelative float64 `json:"distance_relative"`
}

// RouteMeasure is the length of a projected route plus its own beeline
type RouteMeasure struct {
	ID      string
	Length  float64
	Beeline float64
}

// RecordMatcher finds benchmark rows by rounded beeline distance
type RecordMatcher interface {
	// Bucket rounds a beeline distance to the configured bucket size
	Bucket(distance float64) float64

	// Match returns the first record whose bucketed beeline equals the
	// bucket of the given distance
	Match(distance float64) (Record, error)
}

// NewRecordMatcher is implemented in matcher.go
