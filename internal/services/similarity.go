package services

import (
	"context"
	"fmt"

	"github.com/dpup/prefab/logging"

	"github.com/hauke96/master-thesis/evaluation/internal/dataset"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/geo"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/similarity"
	"github.com/hauke96/master-thesis/evaluation/internal/report"
)

// SimilarityService compares routes of different sources that share an id
type SimilarityService struct {
	projector      geo.Projector
	resamplePoints int
}

// NewSimilarityService creates a SimilarityService. Every route is projected
// with projector and resampled to resamplePoints before comparison.
func NewSimilarityService(projector geo.Projector, resamplePoints int) *SimilarityService {
	return &SimilarityService{
		projector:      projector,
		resamplePoints: resamplePoints,
	}
}

// routeSet holds the projected lines and, per id, the geographic points of
// each line in input order
type routeSet struct {
	lines      []similarity.Line
	geographic map[string][][]geo.Point
}

// LineStringDistances computes the Hausdorff distance of every id that occurs
// exactly twice across all files
func (s *SimilarityService) LineStringDistances(ctx context.Context, paths []string) ([]similarity.Record, error) {
	routes, err := s.loadRoutes(ctx, paths)
	if err != nil {
		return nil, err
	}

	records, err := similarity.Compare(s.pair(ctx, routes.lines), s.resamplePoints)
	if err != nil {
		return nil, err
	}

	logging.Infow(ctx, "Compared routes", "pairs", len(records), "resample_points", s.resamplePoints)
	return records, nil
}

// PairKML is LineStringDistances with the unprojected geometries of each pair
func (s *SimilarityService) PairKML(ctx context.Context, paths []string) ([]report.KMLPair, error) {
	routes, err := s.loadRoutes(ctx, paths)
	if err != nil {
		return nil, err
	}

	pairs := s.pair(ctx, routes.lines)
	records, err := similarity.Compare(pairs, s.resamplePoints)
	if err != nil {
		return nil, err
	}

	kmlPairs := make([]report.KMLPair, len(pairs))
	for i, pair := range pairs {
		points := routes.geographic[pair.ID]
		kmlPairs[i] = report.KMLPair{
			ID:                pair.ID,
			HausdorffDistance: records[i].HausdorffDistance,
			Lines: []report.KMLLine{
				{Source: pair.A.Source, Points: points[0]},
				{Source: pair.B.Source, Points: points[1]},
			},
		}
	}

	return kmlPairs, nil
}

func (s *SimilarityService) loadRoutes(ctx context.Context, paths []string) (*routeSet, error) {
	features, err := dataset.LoadAllFeatures(paths)
	if err != nil {
		return nil, err
	}

	routes := &routeSet{geographic: make(map[string][][]geo.Point)}
	for _, f := range features {
		if !f.HasID {
			logging.Debugw(ctx, "Skipping feature without id", "file", f.File)
			continue
		}

		points, err := dataset.LinePoints(f)
		if err != nil {
			return nil, err
		}
		projected, err := geo.ProjectAll(s.projector, points)
		if err != nil {
			return nil, fmt.Errorf("feature %q in %s: %w", f.ID, f.File, err)
		}

		routes.lines = append(routes.lines, similarity.Line{ID: f.ID, Source: f.File, Points: projected})
		routes.geographic[f.ID] = append(routes.geographic[f.ID], points)
	}

	logging.Debugw(ctx, "Loaded routes", "files", len(paths), "routes", len(routes.lines))
	return routes, nil
}

func (s *SimilarityService) pair(ctx context.Context, lines []similarity.Line) []similarity.Pair {
	pairs, unpaired := similarity.PairByID(lines)
	for _, u := range unpaired {
		logging.Warnw(ctx, "Skipping id that does not occur exactly twice", "id", u.ID, "count", u.Count)
	}
	return pairs
}
