// Package charts renders dashboard aggregates as SVG.
package charts

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/KaramelBytes/bookdash/internal/analysis"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no data to render")

// ErrUnknownChart is returned by Render for an unregistered chart name.
var ErrUnknownChart = errors.New("unknown chart")

// Accent is the bar and marker color.
var Accent = drawing.ColorFromHex("FF7F50")

const (
	width  = 1000
	height = 600

	barSpacing = 8
	// maxLabel truncates long category labels on the x axis.
	maxLabel = 28
)

// Chart names, in tab order.
const (
	AgeDistribution    = "age-distribution"
	TopLocations       = "top-locations"
	TopBooks           = "top-books"
	TopAuthors         = "top-authors"
	RatingDistribution = "rating-distribution"
	AgeVsRating        = "age-vs-rating"
	Heatmap            = "correlation-heatmap"
	Scatter3D          = "scatter-3d"
)

// SVGNames lists the charts that Render can draw server side.
var SVGNames = []string{AgeDistribution, TopLocations, TopBooks, TopAuthors, RatingDistribution, AgeVsRating, Heatmap}

// Render draws the named chart of v as SVG.
func Render(w io.Writer, name string, v *analysis.View) error {
	switch name {
	case AgeDistribution:
		return Histogram(w, "Users' Age Distribution", "Age", v.AgeDistribution)
	case TopLocations:
		return Bars(w, "Top 10 Locations with More Ratings Published", v.TopLocations)
	case TopBooks:
		return Bars(w, "Top 10 Most Rated Books", v.TopBooks)
	case TopAuthors:
		return Bars(w, "Top 10 Most Rated Authors", v.TopAuthors)
	case RatingDistribution:
		return Histogram(w, "Rating Distribution", "Rating", v.RatingDistribution)
	case AgeVsRating:
		return Scatter(w, "User Age vs. Book Rating", "Age", "Book Rating", v.AgeVsRating)
	case Heatmap:
		return HeatmapSVG(w, v.Correlation)
	}
	return fmt.Errorf("%w: %s", ErrUnknownChart, name)
}

// Bars draws a frequency table as a bar chart.
func Bars(w io.Writer, title string, counts []analysis.CategoryCount) error {
	if len(counts) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, 0, len(counts))
	top := 0
	for _, kv := range counts {
		bars = append(bars, chart.Value{Label: truncate(kv.Value), Value: float64(kv.Count), Style: barStyle()})
		if kv.Count > top {
			top = kv.Count
		}
	}
	return renderBars(w, title, bars, float64(top))
}

// Histogram draws histogram bins as adjacent bars.
func Histogram(w io.Writer, title, axis string, h analysis.Histogram) error {
	if h.Present == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, 0, len(h.Bins))
	top := 0
	for _, b := range h.Bins {
		bars = append(bars, chart.Value{Label: b.Label(), Value: float64(b.Count), Style: barStyle()})
		if b.Count > top {
			top = b.Count
		}
	}
	return renderBars(w, title+" ("+axis+")", bars, float64(top))
}

func renderBars(w io.Writer, title string, bars []chart.Value, top float64) error {
	barWidth := (width-200)/len(bars) - barSpacing
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 2 {
		barWidth = 2
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 120},
		},
		XAxis: chart.Style{FontSize: 8, TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(1, top*1.1)},
		},
		Bars: bars,
	}
	if err := bc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// Scatter draws (x, y) points without connecting lines.
func Scatter(w io.Writer, title, xName, yName string, pts []analysis.Point) error {
	if len(pts) == 0 {
		return ErrNoData
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	c := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		XAxis:  chart.XAxis{Name: xName, Range: paddedRange(xs)},
		YAxis:  chart.YAxis{Name: yName, Range: paddedRange(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: title,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    3,
					DotColor:    Accent,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	if err := c.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

func barStyle() chart.Style {
	return chart.Style{FillColor: Accent, StrokeColor: Accent, StrokeWidth: 1}
}

// paddedRange widens degenerate ranges so single-valued series still render.
func paddedRange(vals []float64) *chart.ContinuousRange {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxLabel {
		return s
	}
	return string(r[:maxLabel-3]) + "..."
}
