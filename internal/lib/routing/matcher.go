package routing

import (
	"fmt"
	"math"
)

// recordMatcher implements the RecordMatcher interface
type recordMatcher struct {
	records    []Record
	bucketSize float64
}

// NewRecordMatcher creates a matcher over records in input order. Lookups
// are order dependent: when several rows share a bucket the first one wins.
func NewRecordMatcher(records []Record, bucketSize float64) (RecordMatcher, error) {
	if bucketSize <= 0 || math.IsNaN(bucketSize) || math.IsInf(bucketSize, 0) {
		return nil, fmt.Errorf("bucket size must be positive, got %v", bucketSize)
	}
	return &recordMatcher{
		records:    records,
		bucketSize: bucketSize,
	}, nil
}

// Bucket rounds distance to the nearest multiple of the bucket size, halves
// rounding up (125 -> 150 for size 50).
func (m *recordMatcher) Bucket(distance float64) float64 {
	return RoundToBucket(distance, m.bucketSize)
}

// Match returns the first record in the bucket of distance
func (m *recordMatcher) Match(distance float64) (Record, error) {
	bucket := m.Bucket(distance)

	for _, record := range m.records {
		if m.Bucket(record.DistanceBeeline) == bucket {
			return record, nil
		}
	}

	return Record{}, &NoMatchError{Bucket: bucket}
}

// RoundToBucket rounds value to the nearest multiple of size with
// round-half-up semantics.
func RoundToBucket(value, size float64) float64 {
	return math.Floor(value/size+0.5) * size
}

// MeasureDistances builds the expected, hiker and routing rows for one
// request id. The routing beeline selects the benchmark row; every relative
// distance is taken against that row's beeline.
func MeasureDistances(matcher RecordMatcher, routed, expected RouteMeasure) ([]DistanceRecord, error) {
	record, err := matcher.Match(routed.Beeline)
	if err != nil {
		return nil, fmt.Errorf("id %s: %w", routed.ID, err)
	}

	beeline := record.DistanceBeeline
	if beeline <= 0 {
		return nil, fmt.Errorf("id %s: line %d: %w", routed.ID, record.Line, ErrNonPositiveBeeline)
	}

	rows := []DistanceRecord{
		newDistanceRecord(SourceExpected, routed.ID, beeline, expected.Length),
		newDistanceRecord(SourceHiker, routed.ID, beeline, record.DistanceRoute),
		newDistanceRecord(SourceRouting, routed.ID, beeline, routed.Length),
	}
	return rows, nil
}

func newDistanceRecord(source, id string, beeline, distance float64) DistanceRecord {
	return DistanceRecord{
		Source:           source,
		ID:               id,
		DistanceBeeline:  beeline,
		DistanceAbsolute: distance,
		DistanceRelative: distance / beeline,
	}
}
