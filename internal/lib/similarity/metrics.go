package similarity

import (
	"errors"
	"math"

	"github.com/hauke96/master-thesis/evaluation/internal/lib/geo"
)

var (
	// ErrEmptyPolyline is returned when a metric is asked for a polyline without points
	ErrEmptyPolyline = errors.New("polyline has no points")

	// ErrDegeneratePolyline is returned when a polyline has zero length
	ErrDegeneratePolyline = errors.New("polyline has zero length")
)

// Distance returns the Euclidean distance between two planar points
func Distance(a, b geo.XY) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// ArcLength sums the Euclidean distances between consecutive points
func ArcLength(line geo.Polyline) (float64, error) {
	if len(line) == 0 {
		return 0, ErrEmptyPolyline
	}

	length := 0.0
	for i := 1; i < len(line); i++ {
		length += Distance(line[i-1], line[i])
	}
	return length, nil
}

// Beeline returns the straight distance between the first and last point
func Beeline(line geo.Polyline) (float64, error) {
	if len(line) == 0 {
		return 0, ErrEmptyPolyline
	}
	return Distance(line[0], line[len(line)-1]), nil
}

// Hausdorff computes the discrete Hausdorff distance between two point sets:
// the largest distance from any point of one set to its nearest neighbour in
// the other set, taken in both directions.
func Hausdorff(a, b geo.Polyline) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyPolyline
	}
	return math.Max(directedHausdorff(a, b), directedHausdorff(b, a)), nil
}

// directedHausdorff is max_{p in from} min_{q in to} |p-q|
func directedHausdorff(from, to geo.Polyline) float64 {
	maxDistance := 0.0
	for _, p := range from {
		nearest := math.Inf(1)
		for _, q := range to {
			if d := Distance(p, q); d < nearest {
				nearest = d
			}
		}
		if nearest > maxDistance {
			maxDistance = nearest
		}
	}
	return maxDistance
}
