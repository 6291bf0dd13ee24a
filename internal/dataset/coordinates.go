package dataset

import (
	"github.com/paulmach/orb"
)

// CoordinateCount is the number of coordinates of a feature collection
type CoordinateCount struct {
	Total  int
	Unique int

	// Skipped holds the geometry type of every feature that was not counted
	Skipped []string
}

// CountCoordinates counts the coordinates of all LineString, MultiLineString
// and MultiPolygon features. Every ring of a polygon counts, including the
// closing coordinate.
func CountCoordinates(features []Feature) CoordinateCount {
	var count CoordinateCount
	unique := make(map[orb.Point]struct{})

	add := func(points []orb.Point) {
		count.Total += len(points)
		for _, p := range points {
			unique[p] = struct{}{}
		}
	}

	for _, f := range features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			add(g)
		case orb.MultiLineString:
			for _, ls := range g {
				add(ls)
			}
		case orb.MultiPolygon:
			for _, polygon := range g {
				for _, ring := range polygon {
					add(ring)
				}
			}
		default:
			count.Skipped = append(count.Skipped, geometryType(f.Geometry))
		}
	}

	count.Unique = len(unique)
	return count
}
