package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dpup/prefab/logging"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hauke96/master-thesis/evaluation/internal/chart"
	"github.com/hauke96/master-thesis/evaluation/internal/config"
	"github.com/hauke96/master-thesis/evaluation/internal/dataset"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/geo"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/routing"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/similarity"
	"github.com/hauke96/master-thesis/evaluation/internal/logger"
)

type testFeature struct {
	id          string
	coordinates string
}

func featureCollection(features ...testFeature) string {
	parts := make([]string, len(features))
	for i, f := range features {
		properties := "{}"
		if f.id != "" {
			properties = fmt.Sprintf(`{"id": %q}`, f.id)
		}
		parts[i] = fmt.Sprintf(`{"type": "Feature", "properties": %s, "geometry": {"type": "LineString", "coordinates": %s}}`,
			properties, f.coordinates)
	}
	return `{"type": "FeatureCollection", "features": [` + strings.Join(parts, ",") + `]}`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := logger.NewWithWriter(&buf, "debug", "json")
	require.NoError(t, err)
	return logging.With(context.Background(), l), &buf
}

func quietContext() context.Context {
	return logging.With(context.Background(), logger.Nop())
}

func TestSimilarityService_LineStringDistances(t *testing.T) {
	dir := t.TempDir()
	hiker := writeFile(t, dir, "hiker.geojson", featureCollection(
		testFeature{id: "1", coordinates: "[[0, 0], [10, 0]]"},
		testFeature{id: "2", coordinates: "[[0, 0], [1, 1]]"},
		testFeature{coordinates: "[[5, 5], [6, 6]]"},
	))
	expected := writeFile(t, dir, "expected.geojson", featureCollection(
		testFeature{id: "1", coordinates: "[[0, 0], [10, 5]]"},
	))

	ctx, logs := testContext(t)
	service := NewSimilarityService(geo.Identity{}, 3)

	records, err := service.LineStringDistances(ctx, []string{hiker, expected})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].ID)
	assert.InDelta(t, 5.0, records[0].HausdorffDistance, 1e-9)

	assert.Contains(t, logs.String(), "Skipping id that does not occur exactly twice")
	assert.Contains(t, logs.String(), `"id":"2"`)
}

func TestSimilarityService_UTM(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.geojson", featureCollection(
		testFeature{id: "1", coordinates: "[[9.0, 53.0], [9.01, 53.0]]"},
	))
	b := writeFile(t, dir, "b.geojson", featureCollection(
		testFeature{id: "1", coordinates: "[[9.0, 53.0], [9.01, 53.0]]"},
	))

	utm, err := geo.NewUTM(32, false)
	require.NoError(t, err)

	records, err := NewSimilarityService(utm, 20).LineStringDistances(quietContext(), []string{a, b})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 0.0, records[0].HausdorffDistance, 1e-9)
}

func TestSimilarityService_Errors(t *testing.T) {
	dir := t.TempDir()
	service := NewSimilarityService(geo.Identity{}, 3)

	_, err := service.LineStringDistances(quietContext(), []string{filepath.Join(dir, "absent.geojson")})
	assert.ErrorIs(t, err, dataset.ErrMissingFile)

	degenerate := writeFile(t, dir, "degenerate.geojson", featureCollection(
		testFeature{id: "1", coordinates: "[[1, 1], [1, 1]]"},
		testFeature{id: "1", coordinates: "[[0, 0], [1, 1]]"},
	))
	_, err = service.LineStringDistances(quietContext(), []string{degenerate})
	assert.ErrorIs(t, err, similarity.ErrDegeneratePolyline)

	utm, err := geo.NewUTM(32, false)
	require.NoError(t, err)
	invalid := writeFile(t, dir, "invalid.geojson", featureCollection(
		testFeature{id: "1", coordinates: "[[0, 0], [200, 0]]"},
	))
	_, err = NewSimilarityService(utm, 3).LineStringDistances(quietContext(), []string{invalid})
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}

func TestSimilarityService_PairKML(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.geojson", featureCollection(testFeature{id: "4", coordinates: "[[0, 0], [10, 0]]"}))
	b := writeFile(t, dir, "b.geojson", featureCollection(testFeature{id: "4", coordinates: "[[0, 0], [10, 5]]"}))

	pairs, err := NewSimilarityService(geo.Identity{}, 3).PairKML(quietContext(), []string{a, b})
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	pair := pairs[0]
	assert.Equal(t, "4", pair.ID)
	assert.InDelta(t, 5.0, pair.HausdorffDistance, 1e-9)
	require.Len(t, pair.Lines, 2)
	assert.Equal(t, a, pair.Lines[0].Source)
	assert.Equal(t, b, pair.Lines[1].Source)
	assert.Equal(t, []geo.Point{{Latitude: 0, Longitude: 0}, {Latitude: 5, Longitude: 10}}, pair.Lines[1].Points)
}

func distanceFixtures(t *testing.T) (benchmark, routed, expected string) {
	dir := t.TempDir()
	benchmark = writeFile(t, dir, "bench.csv", "distance_beeline,distance_route,avg_time\n"+
		"3000,3500,1\n"+
		"1010,1300,2\n")
	routed = writeFile(t, dir, "routing.geojson", featureCollection(
		testFeature{id: "1", coordinates: "[[0, 0], [0, 600], [800, 600]]"},
	))
	expected = writeFile(t, dir, "expected.geojson", featureCollection(
		testFeature{id: "1", coordinates: "[[0, 0], [800, 600]]"},
	))
	return benchmark, routed, expected
}

func TestDistanceService_DistanceTable(t *testing.T) {
	benchmark, routed, expected := distanceFixtures(t)
	service := NewDistanceService(geo.Identity{}, config.MatchingConfig{BucketSize: 50, FirstID: 1, LastID: 1})

	rows, err := service.DistanceTable(quietContext(), benchmark, routed, expected)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, routing.SourceExpected, rows[0].Source)
	assert.Equal(t, "1", rows[0].ID)
	assert.Equal(t, 1010.0, rows[0].DistanceBeeline)
	assert.InDelta(t, 1000.0, rows[0].DistanceAbsolute, 1e-9)
	assert.InDelta(t, 1000.0/1010.0, rows[0].DistanceRelative, 1e-12)

	assert.Equal(t, routing.SourceHiker, rows[1].Source)
	assert.Equal(t, 1300.0, rows[1].DistanceAbsolute)

	assert.Equal(t, routing.SourceRouting, rows[2].Source)
	assert.InDelta(t, 1400.0, rows[2].DistanceAbsolute, 1e-9)
	assert.InDelta(t, 1400.0/1010.0, rows[2].DistanceRelative, 1e-12)
}

func TestDistanceService_Errors(t *testing.T) {
	benchmark, routed, expected := distanceFixtures(t)
	ctx := quietContext()

	service := NewDistanceService(geo.Identity{}, config.MatchingConfig{BucketSize: 50, FirstID: 1, LastID: 2})
	rows, err := service.DistanceTable(ctx, benchmark, routed, expected)
	assert.ErrorIs(t, err, dataset.ErrFeatureNotFound)
	assert.Nil(t, rows)

	service = NewDistanceService(geo.Identity{}, config.MatchingConfig{BucketSize: 500, FirstID: 1, LastID: 1})
	noMatch := writeFile(t, t.TempDir(), "bench.csv", "distance_beeline,distance_route\n3000,3500\n")
	rows, err = service.DistanceTable(ctx, noMatch, routed, expected)
	assert.ErrorIs(t, err, routing.ErrNoMatchingRecord)
	assert.Nil(t, rows)

	_, err = service.DistanceTable(ctx, filepath.Join(t.TempDir(), "absent.csv"), routed, expected)
	assert.ErrorIs(t, err, dataset.ErrMissingFile)
}

func TestStatisticsService_CoordinateCount(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.geojson", `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[1, 1], [2, 2]]}},
		{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [1, 1]}}
	]}`)

	ctx, logs := testContext(t)
	count, err := NewStatisticsService(geo.NewGeoUtils()).CoordinateCount(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, 2, count.Total)
	assert.Equal(t, 2, count.Unique)
	assert.Contains(t, logs.String(), "Found other geometry")
}

func TestStatisticsService_SegmentLengths(t *testing.T) {
	path := writeFile(t, t.TempDir(), "waypoints.geojson", featureCollection(
		testFeature{coordinates: "[[0, 0], [0.001, 0], [0.001, 0.001]]"},
		testFeature{coordinates: "[[5, 5], [6, 6]]"},
	))

	lengths, err := NewStatisticsService(geo.NewGeoUtils()).SegmentLengths(quietContext(), path)
	require.NoError(t, err)
	require.Len(t, lengths, 2, "Only the first feature is measured")
	assert.InDelta(t, 111.19, lengths[0], 0.01)
	assert.InDelta(t, 111.19, lengths[1], 0.01)

	_, err = NewStatisticsService(geo.NewGeoUtils()).SegmentLengths(quietContext(), filepath.Join(t.TempDir(), "absent.geojson"))
	assert.ErrorIs(t, err, dataset.ErrMissingFile)
}

func TestStatisticsService_Consolidate(t *testing.T) {
	dir := t.TempDir()
	header := "iteration_number,input_vertices,avg_time,min_time,max_time\n"
	writeFile(t, dir, "large_CalculateRoute.csv", header+"0,5000,3,2,4\n1,5000,9,9,9\n")
	writeFile(t, dir, "small_CalculateRoute.csv", header+"1,100,9,9,9\n0,100,1.5,1,2\n")
	writeFile(t, dir, "other.csv", header+"0,1,1,1,1\n")

	summaries, err := NewStatisticsService(geo.NewGeoUtils()).Consolidate(quietContext(), dir, "*_CalculateRoute.csv")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, dataset.RunSummary{
		File:          filepath.Join(dir, "small_CalculateRoute.csv"),
		InputVertices: 100,
		AvgTime:       1.5,
		MinTime:       1,
		MaxTime:       2,
	}, summaries[0])
	assert.Equal(t, 5000.0, summaries[1].InputVertices)
}

func TestStatisticsService_ConsolidateErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad_CalculateRoute.csv", "iteration_number,input_vertices,avg_time,min_time,max_time\n1,100,1,1,1\n")

	service := NewStatisticsService(geo.NewGeoUtils())
	_, err := service.Consolidate(quietContext(), dir, "*_CalculateRoute.csv")
	assert.ErrorIs(t, err, dataset.ErrMalformedCSVRow)

	summaries, err := service.Consolidate(quietContext(), dir, "*.nothing")
	require.NoError(t, err)
	assert.Empty(t, summaries)

	_, err = service.Consolidate(quietContext(), dir, "[")
	assert.Error(t, err)
}

const crossingOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="53.0" lon="9.5"/>
  <node id="2" lat="53.1" lon="9.6"/>
  <node id="3" lat="53.2" lon="9.5"/>
  <node id="4" lat="53.3" lon="9.7"/>
  <node id="5" lat="53.4" lon="9.8"/>
  <way id="10"><nd ref="1"/><nd ref="2"/><nd ref="3"/></way>
  <way id="11"><nd ref="4"/><nd ref="2"/><nd ref="5"/></way>
</osm>`

func TestStatisticsService_NodeDegrees(t *testing.T) {
	path := writeFile(t, t.TempDir(), "crossing.osm", crossingOSM)

	summary, nodes, err := NewStatisticsService(geo.NewGeoUtils()).NodeDegrees(quietContext(), path, false)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4, 0, 0, 1}, summary.Histogram)
	assert.InDelta(t, 1.6, summary.Average, 1e-12)
	assert.Nil(t, nodes)
}

const crossingOPL = `n1 v1 dV c1 t2020-01-01T00:00:00Z i1 ua T x9.5 y53
n2 v1 dV c1 t2020-01-01T00:00:00Z i1 ua Thighway=crossing x9.6 y53.1
n3 v1 dV c1 t2020-01-01T00:00:00Z i1 ua T x9.5 y53.2
n4 v1 dV c1 t2020-01-01T00:00:00Z i1 ua T x9.7 y53.3
n5 v1 dV c1 t2020-01-01T00:00:00Z i1 ua T x9.8 y53.4
n6 v1 dV c1 t2020-01-01T00:00:00Z i1 ua T x9.9 y53.5
w10 v1 dV c1 t2020-01-01T00:00:00Z i1 ua Thighway=path Nn1,n2,n3
w11 v1 dV c1 t2020-01-01T00:00:00Z i1 ua Thighway=path Nn4,n2,n5
`

func TestStatisticsService_NodeDegreesOPL(t *testing.T) {
	path := writeFile(t, t.TempDir(), "crossing.opl", crossingOPL)

	summary, nodes, err := NewStatisticsService(geo.NewGeoUtils()).NodeDegrees(quietContext(), path, true)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4, 0, 0, 1}, summary.Histogram, "Same result as the XML variant")

	require.Len(t, nodes, 5, "Node 6 is not part of any way")
	assert.Equal(t, osm.NodeID(2), nodes[1].ID)
	assert.Equal(t, osm.Tags{{Key: "count", Value: "4"}}, nodes[1].Tags)
}

func TestStatisticsService_XCollisionsOPL(t *testing.T) {
	path := writeFile(t, t.TempDir(), "crossing.opl", crossingOPL)

	summary, nodes, err := NewStatisticsService(geo.NewGeoUtils()).XCollisions(quietContext(), path, true)
	require.NoError(t, err)
	assert.Equal(t, 6, summary.TotalNodes)
	require.Len(t, nodes, 2)
	assert.Equal(t, []osm.NodeID{1, 3}, []osm.NodeID{nodes[0].ID, nodes[1].ID})

	broken := writeFile(t, t.TempDir(), "broken.opl", "n1 xA y1\n")
	_, _, err = NewStatisticsService(geo.NewGeoUtils()).XCollisions(quietContext(), broken, true)
	assert.ErrorIs(t, err, dataset.ErrMalformedOPL)
}

func TestStatisticsService_XCollisions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "crossing.osm", crossingOSM)

	summary, _, err := NewStatisticsService(geo.NewGeoUtils()).XCollisions(quietContext(), path, false)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalNodes)
	require.Len(t, summary.Collisions, 1)
	assert.Equal(t, 9.5, summary.Collisions[0].X)
	assert.InDelta(t, 20.0, summary.Percent, 1e-9)

	empty := writeFile(t, t.TempDir(), "empty.osm", `<?xml version="1.0"?><osm version="0.6"></osm>`)
	_, _, err = NewStatisticsService(geo.NewGeoUtils()).XCollisions(quietContext(), empty, false)
	assert.Error(t, err)
}

func writePlotInputs(t *testing.T, dir string) string {
	t.Helper()
	prefix := filepath.Join(dir, "osm-city")
	writeFile(t, dir, "osm-city-hiker-hausdorff_distances.csv", "id,h_dist\n1,10\n2,20\n11,500\n")
	writeFile(t, dir, "osm-city-routing-hausdorff_distances.csv", "id,h_dist\n1,12\n3,8\n")
	writeFile(t, dir, "osm-city-distances.csv", "source,id,distance_beeline,distance_absolute,distance_relative\n"+
		"expected,1,1000,1100,1.1\nhiker,1,1000,1200,1.2\nrouting,1,1000,1300,1.3\n"+
		"expected,2,500,550,1.1\nhiker,2,500,650,1.3\nrouting,2,500,600,1.2\n")
	return prefix
}

func TestPlotService_PlotSimilarity(t *testing.T) {
	prefix := writePlotInputs(t, t.TempDir())
	ctx, _ := testContext(t)

	written, err := NewPlotService(chart.DefaultStyle(), 10).PlotSimilarity(ctx, prefix)
	require.NoError(t, err)
	assert.Equal(t, []string{prefix + "_hausdorff.png", prefix + "_relative-beeline.png"}, written)

	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestPlotService_Bars(t *testing.T) {
	prefix := writePlotInputs(t, t.TempDir())
	service := NewPlotService(chart.DefaultStyle(), 10)

	hausdorff, err := service.hausdorffBars(prefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "mean"}, hausdorff.Categories, "Ids above the limit are dropped")
	require.Len(t, hausdorff.Series, 2)
	assert.Equal(t, []float64{10, 20, 0, 15}, hausdorff.Series[0].Values)
	assert.Equal(t, []float64{12, 0, 8, 10}, hausdorff.Series[1].Values)

	relative, err := service.relativeBars(prefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "mean"}, relative.Categories)
	require.Len(t, relative.Series, 3)
	assert.Equal(t, "Expected route", relative.Series[0].Label)
	assert.InDeltaSlice(t, []float64{1.1, 1.1, 1.1}, relative.Series[0].Values, 1e-12)
	assert.InDeltaSlice(t, []float64{1.3, 1.2, 1.25}, relative.Series[2].Values, 1e-12)
	assert.True(t, relative.FixedYMin)
}

func TestPlotService_MissingInput(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "osm-city")
	writeFile(t, dir, "osm-city-hiker-hausdorff_distances.csv", "id,h_dist\n1,10\n")
	writeFile(t, dir, "osm-city-routing-hausdorff_distances.csv", "id,h_dist\n1,12\n")

	written, err := NewPlotService(chart.DefaultStyle(), 10).PlotSimilarity(quietContext(), prefix)
	assert.ErrorIs(t, err, dataset.ErrMissingFile)
	assert.Empty(t, written)

	_, statErr := os.Stat(prefix + "_hausdorff.png")
	assert.True(t, os.IsNotExist(statErr), "No chart is written when an input is missing")
}
