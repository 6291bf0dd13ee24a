package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/twpayne/go-polyline"
)

// earthRadius is the mean Earth radius in meters used by the haversine formula
const earthRadius = 6371000

// geoUtils implements the GeoUtils interface
type geoUtils struct{}

// NewGeoUtils creates a new GeoUtils implementation
func NewGeoUtils() GeoUtils {
	return &geoUtils{}
}

// PointToPoint calculates great-circle distance between two points using Haversine formula
func (g *geoUtils) PointToPoint(p1, p2 Point) (float64, error) {
	if err := ValidatePoint(p1); err != nil {
		return 0, err
	}
	if err := ValidatePoint(p2); err != nil {
		return 0, err
	}

	if p1 == p2 {
		return 0, nil
	}

	lat1 := toRadians(p1.Latitude)
	lon1 := toRadians(p1.Longitude)
	lat2 := toRadians(p2.Latitude)
	lon2 := toRadians(p2.Longitude)

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c, nil
}

// SegmentLengths returns the great-circle length of each segment between
// consecutive points. A sequence of n points yields n-1 lengths.
func (g *geoUtils) SegmentLengths(points []Point) ([]float64, error) {
	if len(points) < 2 {
		return nil, errors.New("at least 2 points are required for segment lengths")
	}

	lengths := make([]float64, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		length, err := g.PointToPoint(points[i], points[i+1])
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		lengths = append(lengths, length)
	}

	return lengths, nil
}

// DecodePolyline decodes Google polyline string to point sequence
func (g *geoUtils) DecodePolyline(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("failed to decode polyline: %d trailing bytes", len(rest))
	}

	points := make([]Point, len(coords))
	for i, coord := range coords {
		points[i] = Point{
			Latitude:  coord[0],
			Longitude: coord[1],
		}

		if err := ValidatePoint(points[i]); err != nil {
			return nil, fmt.Errorf("decoded polyline point %d: %w", i, err)
		}
	}

	return points, nil
}

// EncodePolyline encodes points with the Google polyline algorithm (5 digit precision)
func (g *geoUtils) EncodePolyline(points []Point) (string, error) {
	coords := make([][]float64, len(points))
	for i, p := range points {
		if err := ValidatePoint(p); err != nil {
			return "", fmt.Errorf("point %d: %w", i, err)
		}
		coords[i] = []float64{p.Latitude, p.Longitude}
	}
	return string(polyline.EncodeCoords(coords)), nil
}

// NewPoint creates a Point from latitude and longitude values with validation
func NewPoint(latitude, longitude float64) (Point, error) {
	point := Point{Latitude: latitude, Longitude: longitude}
	if err := ValidatePoint(point); err != nil {
		return Point{}, err
	}
	return point, nil
}

// ValidatePoint reports ErrInvalidCoordinate for NaN, infinite or out of range values
func ValidatePoint(p Point) error {
	if !isFinite(p.Latitude) || !isFinite(p.Longitude) {
		return fmt.Errorf("%w: (%v, %v) is not finite", ErrInvalidCoordinate, p.Longitude, p.Latitude)
	}
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: (%v, %v): latitude must be [-90, 90], longitude must be [-180, 180]",
			ErrInvalidCoordinate, p.Longitude, p.Latitude)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
