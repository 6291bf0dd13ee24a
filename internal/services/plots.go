package services

import (
	"context"
	"sort"

	"github.com/dpup/prefab/logging"

	"github.com/hauke96/master-thesis/evaluation/internal/chart"
	"github.com/hauke96/master-thesis/evaluation/internal/dataset"
	"github.com/hauke96/master-thesis/evaluation/internal/lib/routing"
	"github.com/hauke96/master-thesis/evaluation/internal/report"
)

// Legend labels of the three route sources
var sourceLabels = map[string]string{
	routing.SourceExpected: "Expected route",
	routing.SourceHiker:    "Hybrid routing algorithm",
	routing.SourceRouting:  "Graph-based routing",
}

// PlotService renders the similarity charts of a dataset
type PlotService struct {
	style chart.Style
	maxID int
}

// NewPlotService creates a PlotService. Hausdorff charts only show request
// ids up to maxID.
func NewPlotService(style chart.Style, maxID int) *PlotService {
	return &PlotService{style: style, maxID: maxID}
}

// PlotSimilarity reads the Hausdorff and distance CSVs of a dataset prefix
// and writes <prefix>_hausdorff.png and <prefix>_relative-beeline.png. Both
// charts are built before anything is written.
func (s *PlotService) PlotSimilarity(ctx context.Context, prefix string) ([]string, error) {
	hausdorff, err := s.hausdorffBars(prefix)
	if err != nil {
		return nil, err
	}
	relative, err := s.relativeBars(prefix)
	if err != nil {
		return nil, err
	}

	outputs := []struct {
		path string
		bars chart.Bars
	}{
		{prefix + "_hausdorff.png", hausdorff},
		{prefix + "_relative-beeline.png", relative},
	}

	var written []string
	for _, out := range outputs {
		if err := chart.Render(out.bars, s.style, out.path); err != nil {
			return written, err
		}
		logging.Infow(ctx, "Wrote chart", "file", out.path)
		written = append(written, out.path)
	}
	return written, nil
}

func (s *PlotService) hausdorffBars(prefix string) (chart.Bars, error) {
	keep := func(id float64) bool { return id <= float64(s.maxID) }

	hiker, err := readIDValues(prefix+"-hiker-hausdorff_distances.csv", "h_dist", "", keep)
	if err != nil {
		return chart.Bars{}, err
	}
	graph, err := readIDValues(prefix+"-routing-hausdorff_distances.csv", "h_dist", "", keep)
	if err != nil {
		return chart.Bars{}, err
	}

	return newBars([]string{routing.SourceHiker, routing.SourceRouting}, []idValues{hiker, graph}, chart.Bars{
		Title:  prefix,
		XLabel: "Routing request",
		YLabel: "Hausdorff distance in m",
	}), nil
}

func (s *PlotService) relativeBars(prefix string) (chart.Bars, error) {
	sources := []string{routing.SourceExpected, routing.SourceHiker, routing.SourceRouting}
	values := make([]idValues, len(sources))
	for i, source := range sources {
		var err error
		values[i], err = readIDValues(prefix+"-distances.csv", "distance_relative", source, nil)
		if err != nil {
			return chart.Bars{}, err
		}
	}

	bars := newBars(sources, values, chart.Bars{
		Title:  prefix,
		XLabel: "Routing request",
		YLabel: "Route distance / beeline distance",
	})
	bars.YMin = 0.9
	bars.FixedYMin = true
	return bars, nil
}

// idValues maps a numeric request id to a value
type idValues map[float64]float64

// readIDValues reads the value column per id. A non-empty source restricts
// the rows to that source; keep, when set, filters by id.
func readIDValues(path, valueColumn, source string, keep func(id float64) bool) (idValues, error) {
	table, err := dataset.ReadTable(path)
	if err != nil {
		return nil, err
	}

	values := make(idValues)
	for i := range table.Rows {
		if source != "" {
			rowSource, err := table.String(i, "source")
			if err != nil {
				return nil, err
			}
			if rowSource != source {
				continue
			}
		}

		id, err := table.Float(i, "id")
		if err != nil {
			return nil, err
		}
		if keep != nil && !keep(id) {
			continue
		}
		value, err := table.Float(i, valueColumn)
		if err != nil {
			return nil, err
		}
		if _, dup := values[id]; !dup {
			values[id] = value
		}
	}
	return values, nil
}

// newBars lays out one series per source over the union of all ids, sorted
// numerically, followed by a mean group. Ids missing from a source get an
// empty bar and do not count towards its mean.
func newBars(sources []string, values []idValues, base chart.Bars) chart.Bars {
	idSet := make(map[float64]struct{})
	for _, v := range values {
		for id := range v {
			idSet[id] = struct{}{}
		}
	}
	ids := make([]float64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Float64s(ids)

	base.Categories = make([]string, len(ids), len(ids)+1)
	for i, id := range ids {
		base.Categories[i] = report.FullPrecision(id)
	}
	base.Categories = append(base.Categories, chart.MeanCategory)

	base.Series = make([]chart.Series, len(sources))
	for i, source := range sources {
		present := make([]float64, 0, len(values[i]))
		series := chart.Series{Label: sourceLabels[source], Values: make([]float64, 0, len(ids)+1)}
		for _, id := range ids {
			v, ok := values[i][id]
			if ok {
				present = append(present, v)
			}
			series.Values = append(series.Values, v)
		}
		series.Values = append(series.Values, chart.Mean(present))
		base.Series[i] = series
	}

	return base
}
