package similarity

import (
	"fmt"

	"github.com/hauke96/master-thesis/evaluation/internal/lib/geo"
)

// Line is a projected polyline tagged with the id it is paired by
type Line struct {
	ID     string
	Source string
	Points geo.Polyline
}

// Pair holds the two lines sharing one id, in input order
type Pair struct {
	ID string
	A  Line
	B  Line
}

// Unpaired describes an id that did not occur exactly twice
type Unpaired struct {
	ID    string
	Count int
}

// Record is the similarity of one pair
type Record struct {
	ID                string
	HausdorffDistance float64
}

// PairByID groups lines by id. Ids are visited in order of their first
// appearance; only ids with exactly two lines form a pair, all others are
// returned as unpaired so the caller can report them.
func PairByID(lines []Line) ([]Pair, []Unpaired) {
	var order []string
	groups := make(map[string][]Line)

	for _, line := range lines {
		if _, seen := groups[line.ID]; !seen {
			order = append(order, line.ID)
		}
		groups[line.ID] = append(groups[line.ID], line)
	}

	var pairs []Pair
	var unpaired []Unpaired
	for _, id := range order {
		group := groups[id]
		if len(group) != 2 {
			unpaired = append(unpaired, Unpaired{ID: id, Count: len(group)})
			continue
		}
		pairs = append(pairs, Pair{ID: id, A: group[0], B: group[1]})
	}

	return pairs, unpaired
}

// Compare resamples both lines of every pair to n points and computes their
// Hausdorff distance. The first failing pair aborts the whole comparison.
func Compare(pairs []Pair, n int) ([]Record, error) {
	records := make([]Record, 0, len(pairs))

	for _, pair := range pairs {
		distance, err := CompareLines(pair.A.Points, pair.B.Points, n)
		if err != nil {
			return nil, fmt.Errorf("id %q: %w", pair.ID, err)
		}
		records = append(records, Record{ID: pair.ID, HausdorffDistance: distance})
	}

	return records, nil
}

// CompareLines resamples a and b to n points each and returns their
// Hausdorff distance.
func CompareLines(a, b geo.Polyline, n int) (float64, error) {
	resampledA, err := Resample(a, n)
	if err != nil {
		return 0, err
	}
	resampledB, err := Resample(b, n)
	if err != nil {
		return 0, err
	}
	return Hausdorff(resampledA, resampledB)
}
