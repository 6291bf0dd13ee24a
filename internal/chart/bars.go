// Package chart renders grouped bar charts of evaluation results
package chart

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when a chart has no categories or no series
var ErrNoData = errors.New("no data to plot")

// MeanCategory labels the trailing bar group holding per-series means
const MeanCategory = "mean"

// Style holds everything about a chart's look. It is passed explicitly to
// every render call.
type Style struct {
	Width    vg.Length
	Height   vg.Length
	BarWidth vg.Length
	Colors   []color.Color
}

// DefaultStyle is a wide and slim figure with muted colors
func DefaultStyle() Style {
	return Style{
		Width:    8 * vg.Inch,
		Height:   4 * vg.Inch,
		BarWidth: vg.Points(10),
		Colors:   plotutil.SoftColors,
	}
}

func (s Style) color(i int) color.Color {
	if len(s.Colors) == 0 {
		return plotutil.Color(i)
	}
	return s.Colors[i%len(s.Colors)]
}

// Series is one bar per category
type Series struct {
	Label  string
	Values []float64
}

// Bars is a grouped bar chart: one group per category, one bar per series
type Bars struct {
	Title      string
	XLabel     string
	YLabel     string
	Categories []string
	Series     []Series

	// YMin is applied when FixedYMin is set
	YMin      float64
	FixedYMin bool
}

// Mean is the arithmetic mean, 0 for no values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Render draws the chart and saves it to path. The image format follows the
// file extension.
func Render(b Bars, style Style, path string) error {
	if len(b.Categories) == 0 || len(b.Series) == 0 {
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = b.Title
	p.X.Label.Text = b.XLabel
	p.Y.Label.Text = b.YLabel
	p.Legend.Top = true

	n := len(b.Series)
	for i, s := range b.Series {
		if len(s.Values) != len(b.Categories) {
			return fmt.Errorf("series %q has %d values for %d categories", s.Label, len(s.Values), len(b.Categories))
		}
		if floats.HasNaN(s.Values) {
			return fmt.Errorf("series %q contains NaN", s.Label)
		}

		bars, err := plotter.NewBarChart(plotter.Values(s.Values), style.BarWidth)
		if err != nil {
			return fmt.Errorf("failed to create bars for %q: %w", s.Label, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = style.color(i)
		bars.Offset = vg.Length(float64(i)-float64(n-1)/2) * style.BarWidth

		p.Add(bars)
		p.Legend.Add(s.Label, bars)
	}

	if b.FixedYMin {
		p.Y.Min = b.YMin
	}
	p.NominalX(b.Categories...)

	if err := p.Save(style.Width, style.Height, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}
