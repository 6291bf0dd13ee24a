package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dpup/prefab/logging"

	"github.com/hauke96/master-thesis/evaluation/internal/config"
	"github.com/hauke96/master-thesis/evaluation/internal/dataset"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/geo"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/routing"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/similarity"
)

// DistanceService relates route lengths of the three sources to the beeline
// distance of each routing request
type DistanceService struct {
	projector geo.Projector
	config    config.MatchingConfig
}

func NewDistanceService(projector geo.Projector, config config.MatchingConfig) *DistanceService {
	return &DistanceService{
		projector: projector,
		config:    config,
	}
}

// DistanceTable produces expected, hiker and routing rows for every request
// id in the configured range. The benchmark row of a request is found by the
// bucketed beeline of its graph-based route.
func (s *DistanceService) DistanceTable(ctx context.Context, benchmarkPath, routingPath, expectedPath string) ([]routing.DistanceRecord, error) {
	records, err := dataset.ReadBenchmark(benchmarkPath)
	if err != nil {
		return nil, err
	}
	matcher, err := routing.NewRecordMatcher(records, s.config.BucketSize)
	if err != nil {
		return nil, err
	}

	routingFeatures, err := dataset.LoadFeatures(routingPath)
	if err != nil {
		return nil, err
	}
	expectedFeatures, err := dataset.LoadFeatures(expectedPath)
	if err != nil {
		return nil, err
	}

	var rows []routing.DistanceRecord
	for id := s.config.FirstID; id <= s.config.LastID; id++ {
		key := strconv.Itoa(id)

		routed, err := s.measure(routingFeatures, key)
		if err != nil {
			return nil, err
		}
		expected, err := s.measure(expectedFeatures, key)
		if err != nil {
			return nil, err
		}

		measured, err := routing.MeasureDistances(matcher, routed, expected)
		if err != nil {
			return nil, err
		}
		logging.Debugw(ctx, "Matched request", "id", key, "bucket", matcher.Bucket(routed.Beeline))
		rows = append(rows, measured...)
	}

	logging.Infow(ctx, "Built distance table", "benchmark_rows", len(records), "rows", len(rows))
	return rows, nil
}

// measure projects the feature with the given id and returns its length and
// the distance between its endpoints
func (s *DistanceService) measure(features []dataset.Feature, id string) (routing.RouteMeasure, error) {
	feature, err := dataset.FindFeature(features, id)
	if err != nil {
		return routing.RouteMeasure{}, err
	}
	points, err := dataset.LinePoints(feature)
	if err != nil {
		return routing.RouteMeasure{}, err
	}
	line, err := geo.ProjectAll(s.projector, points)
	if err != nil {
		return routing.RouteMeasure{}, fmt.Errorf("feature %q in %s: %w", id, feature.File, err)
	}

	length, err := similarity.ArcLength(line)
	if err != nil {
		return routing.RouteMeasure{}, fmt.Errorf("feature %q in %s: %w", id, feature.File, err)
	}
	beeline, err := similarity.Beeline(line)
	if err != nil {
		return routing.RouteMeasure{}, fmt.Errorf("feature %q in %s: %w", id, feature.File, err)
	}

	return routing.RouteMeasure{ID: id, Length: length, Beeline: beeline}, nil
}
