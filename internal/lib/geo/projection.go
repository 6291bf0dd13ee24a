package geo

import (
	"fmt"

	"github.com/wroge/wgs84"
)

// UTM projects geographic coordinates into a fixed Universal Transverse
// Mercator zone on the WGS84 ellipsoid. The zone is never derived from the
// input, so all features of one run share the same planar system even when
// they cross a zone border.
type UTM struct {
	Zone  int
	South bool

	transform wgs84.Func
}

// NewUTM creates a projector for the given zone (1-60). South adds the
// 10,000 km false northing used for the southern hemisphere.
func NewUTM(zone int, south bool) (*UTM, error) {
	if zone < 1 || zone > 60 {
		return nil, fmt.Errorf("utm zone must be within [1, 60], got %d", zone)
	}

	// Unchecked To: points outside the zone's longitude band still project
	return &UTM{
		Zone:      zone,
		South:     south,
		transform: wgs84.LonLat().To(wgs84.UTM(float64(zone), !south)),
	}, nil
}

// Project converts a coordinate into easting/northing in meters
func (u *UTM) Project(p Point) (XY, error) {
	if err := ValidatePoint(p); err != nil {
		return XY{}, err
	}

	east, north, _ := u.transform(p.Longitude, p.Latitude, 0)
	return XY{X: east, Y: north}, nil
}

// Identity treats longitude as X and latitude as Y without any range check
// beyond finiteness. It is meant for data that is already planar.
type Identity struct{}

// Project returns the coordinate unchanged
func (Identity) Project(p Point) (XY, error) {
	if !isFinite(p.Latitude) || !isFinite(p.Longitude) {
		return XY{}, fmt.Errorf("%w: (%v, %v) is not finite", ErrInvalidCoordinate, p.Longitude, p.Latitude)
	}
	return XY{X: p.Longitude, Y: p.Latitude}, nil
}

// ProjectAll projects every point and fails on the first malformed one
func ProjectAll(proj Projector, points []Point) (Polyline, error) {
	line := make(Polyline, len(points))
	for i, p := range points {
		xy, err := proj.Project(p)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: %w", i, err)
		}
		line[i] = xy
	}
	return line, nil
}
