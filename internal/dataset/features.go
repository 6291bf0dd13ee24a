package dataset

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/hauke96/master-thesis/evaluation/internal/lib/geo"
)

// Feature is one geometry read from a route file, tagged with the id used
// to pair it with features of other files
type Feature struct {
	ID       string
	HasID    bool
	File     string
	Geometry orb.Geometry
}

// LoadFeatures reads all features of a route file. The format is chosen by
// extension: .polyline files hold Google encoded polylines, everything else
// is parsed as a GeoJSON FeatureCollection.
func LoadFeatures(path string) ([]Feature, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".polyline":
		return LoadPolylines(path)
	default:
		return LoadGeoJSON(path)
	}
}

// LoadAllFeatures reads every file in order and concatenates their features
func LoadAllFeatures(paths []string) ([]Feature, error) {
	var features []Feature
	for _, path := range paths {
		loaded, err := LoadFeatures(path)
		if err != nil {
			return nil, err
		}
		features = append(features, loaded...)
	}
	return features, nil
}

// LoadGeoJSON reads a GeoJSON FeatureCollection
func LoadGeoJSON(path string) ([]Feature, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON %s: %w", path, err)
	}

	features := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		id, ok := normalizeID(f.Properties["id"])
		features = append(features, Feature{
			ID:       id,
			HasID:    ok,
			File:     path,
			Geometry: f.Geometry,
		})
	}

	return features, nil
}

// LoadPolylines reads a file with one Google encoded polyline per line.
// Each line is "id<TAB>encoded" or just "encoded"; empty lines and lines
// starting with '#' are skipped.
func LoadPolylines(path string) ([]Feature, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	geoUtils := geo.NewGeoUtils()
	var features []Feature

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		feature := Feature{File: path}
		encoded := line
		if id, rest, found := strings.Cut(line, "\t"); found {
			feature.ID = strings.TrimSpace(id)
			feature.HasID = feature.ID != ""
			encoded = strings.TrimSpace(rest)
		}

		points, err := geoUtils.DecodePolyline(encoded)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNumber, err)
		}

		ls := make(orb.LineString, len(points))
		for i, p := range points {
			ls[i] = orb.Point{p.Longitude, p.Latitude}
		}
		feature.Geometry = ls
		features = append(features, feature)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return features, nil
}

// LinePoints returns the coordinates of a LineString feature
func LinePoints(f Feature) ([]geo.Point, error) {
	ls, ok := f.Geometry.(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("%w: feature %q in %s is %s, expected LineString",
			ErrUnsupportedGeometry, f.ID, f.File, geometryType(f.Geometry))
	}
	return fromOrb(ls), nil
}

// FindFeature returns the first feature with the given id
func FindFeature(features []Feature, id string) (Feature, error) {
	for _, f := range features {
		if f.HasID && f.ID == id {
			return f, nil
		}
	}
	return Feature{}, fmt.Errorf("%w: id %q", ErrFeatureNotFound, id)
}

func fromOrb(points []orb.Point) []geo.Point {
	converted := make([]geo.Point, len(points))
	for i, p := range points {
		converted[i] = geo.Point{Latitude: p.Lat(), Longitude: p.Lon()}
	}
	return converted
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "null"
	}
	return g.GeoJSONType()
}

// normalizeID turns a GeoJSON id property into its string form. Numbers are
// written without trailing zeros so 3 and "3" pair with each other.
func normalizeID(v interface{}) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		return id, true
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(id), true
	default:
		return fmt.Sprint(id), true
	}
}
