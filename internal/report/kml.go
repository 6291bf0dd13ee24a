package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/twpayne/go-kml"

	"github.com/hauke96/master-thesis/evaluation/internal/lib/geo"
)

// KMLLine is one route of a pair in geographic coordinates
type KMLLine struct {
	Source string
	Points []geo.Point
}

// KMLPair is a compared pair of routes and their Hausdorff distance
type KMLPair struct {
	ID                string
	HausdorffDistance float64
	Lines             []KMLLine
}

// WritePairKML writes one folder per pair holding a placemark per route
func WritePairKML(w io.Writer, name string, pairs []KMLPair) error {
	elements := []kml.Element{kml.Name(name)}

	for _, pair := range pairs {
		children := []kml.Element{
			kml.Name(pair.ID),
			kml.Description(fmt.Sprintf("Hausdorff distance: %s m", Fixed(2)(pair.HausdorffDistance))),
		}
		for _, line := range pair.Lines {
			coordinates := make([]kml.Coordinate, len(line.Points))
			for i, p := range line.Points {
				coordinates[i] = kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude}
			}
			children = append(children, kml.Placemark(
				kml.Name(fmt.Sprintf("%s (%s)", pair.ID, filepath.Base(line.Source))),
				kml.Description(line.Source),
				kml.LineString(
					kml.Tessellate(true),
					kml.Coordinates(coordinates...),
				),
			))
		}
		elements = append(elements, kml.Folder(children...))
	}

	if err := kml.KML(kml.Document(elements...)).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("failed to write KML: %w", err)
	}
	return nil
}
