package similarity

import (
	"fmt"

	"github.com/hauke96/master-thesis/evaluation/internal/lib/geo"
)

// DefaultPointCount is the number of points every line is resampled to
// before two lines are compared.
const DefaultPointCount = 20

// Resample returns a polyline with exactly n points spaced evenly by arc
// length along line. The first and last point are copied verbatim, the n-2
// inner points are linear interpolations at offsets k*L/(n-1).
//
// Each segment receives as many inner points as there are offsets falling
// inside it, so there is no per-segment rounding that could drift away from
// n. The result still passes through fitToCount so the point count can never
// differ from n even under floating point edge cases.
func Resample(line geo.Polyline, n int) (geo.Polyline, error) {
	if n < 2 {
		return nil, fmt.Errorf("resample needs at least 2 target points, got %d", n)
	}
	if len(line) == 0 {
		return nil, ErrEmptyPolyline
	}

	total, err := ArcLength(line)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: %d points without extent", ErrDegeneratePolyline, len(line))
	}

	spacing := total / float64(n-1)
	resampled := make(geo.Polyline, 0, n)
	resampled = append(resampled, line[0])

	seg := 0
	segStart := 0.0 // arc length at line[seg]
	for k := 1; k < n-1; k++ {
		target := float64(k) * spacing

		// Advance to the segment containing the target offset
		for seg < len(line)-2 && segStart+Distance(line[seg], line[seg+1]) < target {
			segStart += Distance(line[seg], line[seg+1])
			seg++
		}

		resampled = append(resampled, interpolate(line[seg], line[seg+1], target-segStart))
	}

	resampled = append(resampled, line[len(line)-1])
	return fitToCount(resampled, n), nil
}

// interpolate returns the point at distance along the segment a->b, clamped
// to the segment.
func interpolate(a, b geo.XY, along float64) geo.XY {
	length := Distance(a, b)
	if length == 0 {
		return a
	}

	t := along / length
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return geo.XY{
		X: a.X + t*(b.X-a.X),
		Y: a.Y + t*(b.Y-a.Y),
	}
}

// fitToCount forces the line to n points: excess inner points are truncated
// and missing ones are padded by repeating the last point. The original last
// point always stays last.
func fitToCount(line geo.Polyline, n int) geo.Polyline {
	if len(line) == n || len(line) == 0 {
		return line
	}

	last := line[len(line)-1]
	if len(line) > n {
		fitted := make(geo.Polyline, n)
		copy(fitted, line[:n-1])
		fitted[n-1] = last
		return fitted
	}

	fitted := make(geo.Polyline, n)
	copy(fitted, line)
	for i := len(line); i < n; i++ {
		fitted[i] = last
	}
	return fitted
}
