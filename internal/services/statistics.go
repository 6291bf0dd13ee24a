package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dpup/prefab/logging"
	"github.com/paulmach/osm"

	"github.com/hauke96/master-thesis/evaluation/internal/dataset"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/geo"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/osmstats"
)

// DefaultWaypointsFile is measured by SegmentLengths when no file is given
const DefaultWaypointsFile = "./datasets/waypoints.geojson"

// StatisticsService describes datasets and benchmark results
type StatisticsService struct {
	geoUtils geo.GeoUtils
}

func NewStatisticsService(geoUtils geo.GeoUtils) *StatisticsService {
	return &StatisticsService{geoUtils: geoUtils}
}

// CoordinateCount counts the coordinates of a GeoJSON file
func (s *StatisticsService) CoordinateCount(ctx context.Context, path string) (dataset.CoordinateCount, error) {
	features, err := dataset.LoadGeoJSON(path)
	if err != nil {
		return dataset.CoordinateCount{}, err
	}

	count := dataset.CountCoordinates(features)
	for _, geometryType := range count.Skipped {
		logging.Infow(ctx, "Found other geometry", "type", geometryType)
	}
	return count, nil
}

// SegmentLengths returns the great-circle length in meters of every segment
// of the first feature
func (s *StatisticsService) SegmentLengths(ctx context.Context, path string) ([]float64, error) {
	if path == "" {
		path = DefaultWaypointsFile
	}

	features, err := dataset.LoadFeatures(path)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: %s contains no features", dataset.ErrFeatureNotFound, path)
	}

	points, err := dataset.LinePoints(features[0])
	if err != nil {
		return nil, err
	}
	lengths, err := s.geoUtils.SegmentLengths(points)
	if err != nil {
		return nil, fmt.Errorf("first feature of %s: %w", path, err)
	}

	logging.Debugw(ctx, "Measured segments", "file", path, "segments", len(lengths))
	return lengths, nil
}

// Consolidate summarizes every benchmark result file in folder matching the
// glob pattern, ordered by input vertex count
func (s *StatisticsService) Consolidate(ctx context.Context, folder, pattern string) ([]dataset.RunSummary, error) {
	paths, err := filepath.Glob(filepath.Join(folder, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		logging.Warnw(ctx, "No files matched", "folder", folder, "pattern", pattern)
	}

	summaries := make([]dataset.RunSummary, 0, len(paths))
	for _, path := range paths {
		summary, err := dataset.SummarizeRun(path)
		if err != nil {
			return nil, err
		}
		logging.Infow(ctx, "Read benchmark results", "file", path, "input_vertices", summary.InputVertices)
		summaries = append(summaries, summary)
	}

	dataset.SortByInputVertices(summaries)
	return summaries, nil
}

// NodeDegrees computes the degree histogram of all nodes referenced by ways.
// With listNodes set it also returns those nodes, tagged with their degree.
func (s *StatisticsService) NodeDegrees(ctx context.Context, path string, listNodes bool) (osmstats.DegreeSummary, []*osm.Node, error) {
	degrees := osmstats.NewNodeDegrees()
	nodes, err := scanNodes(ctx, path, listNodes, degrees.Add)
	if err != nil {
		return osmstats.DegreeSummary{}, nil, err
	}

	summary, err := degrees.Summary()
	if err != nil {
		return osmstats.DegreeSummary{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.Debugw(ctx, "Computed node degrees", "file", path, "nodes", summary.Nodes)

	if !listNodes {
		return summary, nil, nil
	}
	return summary, degrees.Annotate(nodes), nil
}

// XCollisions finds nodes sharing the exact same longitude. With listNodes
// set it also returns the colliding nodes.
func (s *StatisticsService) XCollisions(ctx context.Context, path string, listNodes bool) (osmstats.XSummary, []*osm.Node, error) {
	xs := osmstats.NewXCoordinates()
	nodes, err := scanNodes(ctx, path, listNodes, xs.Add)
	if err != nil {
		return osmstats.XSummary{}, nil, err
	}

	summary, err := xs.Summary()
	if err != nil {
		return osmstats.XSummary{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.Debugw(ctx, "Collected x coordinates", "file", path, "collisions", len(summary.Collisions))

	if !listNodes {
		return summary, nil, nil
	}
	return summary, xs.Colliding(nodes), nil
}

// scanNodes feeds every object of an OSM or OPL file to add and, if keep is
// set, returns the nodes in file order
func scanNodes(ctx context.Context, path string, keep bool, add func(osm.Object)) ([]*osm.Node, error) {
	var nodes []*osm.Node
	err := dataset.ScanOSM(ctx, path, func(o osm.Object) error {
		add(o)
		if n, ok := o.(*osm.Node); ok && keep {
			nodes = append(nodes, n)
		}
		return nil
	})
	return nodes, err
}
