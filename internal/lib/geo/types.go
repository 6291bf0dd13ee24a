package geo

import "errors"

// ErrInvalidCoordinate is returned for non-finite or out of range coordinates
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point represents a geographic coordinate
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// XY is a planar coordinate in meters
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polyline is an ordered sequence of planar points. Points are never mutated
// once read from input; transformations return new slices.
type Polyline []XY

// Projector converts geographic coordinates into a planar coordinate system
type Projector interface {
	// Project converts a single coordinate. Implementations are stateless.
	Project(p Point) (XY, error)
}

// GeoUtils interface defines geographic calculation utilities
type GeoUtils interface {
	// Calculate great-circle distance between two points in meters
	PointToPoint(p1, p2 Point) (float64, error)

	// Calculate the great-circle length of every consecutive segment
	SegmentLengths(points []Point) ([]float64, error)

	// Decode Google polyline string to point sequence
	DecodePolyline(encoded string) ([]Point, error)

	// Encode point sequence as Google polyline string
	EncodePolyline(points []Point) (string, error)
}

// NewGeoUtils is implemented in geo.go
