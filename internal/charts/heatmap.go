package charts

import (
	"fmt"
	"io"
	"strconv"

	"github.com/KaramelBytes/bookdash/internal/analysis"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	cell       = 140
	heatLeft   = 140
	heatTop    = 60
	undefColor = "cccccc"
)

// HeatmapColor maps a coefficient in [-1, 1] onto the Viridis scale.
// Undefined coefficients are grey.
func HeatmapColor(v float64, ok bool) drawing.Color {
	if !ok {
		return drawing.ColorFromHex(undefColor)
	}
	return chart.Viridis(v, -1, 1)
}

// Hex renders c as a CSS color.
func Hex(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HeatmapSVG draws the correlation matrix as a colored grid with each
// cell annotated by its coefficient.
func HeatmapSVG(w io.Writer, m analysis.CorrMatrix) error {
	k := len(m.Columns)
	if k == 0 || m.N == 0 {
		return ErrNoData
	}
	wd, ht := heatLeft+k*cell+40, heatTop+k*cell+40
	r, err := chart.SVG(wd, ht)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	r.SetFont(font)

	r.SetFontColor(drawing.ColorBlack)
	r.SetFontSize(16)
	r.Text("Correlation Heatmap", heatLeft, heatTop-30)

	r.SetFontSize(12)
	for i, name := range m.Columns {
		r.SetFontColor(drawing.ColorBlack)
		r.Text(name, 10, heatTop+i*cell+cell/2)
		r.Text(name, heatLeft+i*cell+10, heatTop-8)
		for j := range m.Columns {
			v, ok := m.At(i, j)
			x, y := heatLeft+j*cell, heatTop+i*cell
			fill := HeatmapColor(v, ok)
			r.SetFillColor(fill)
			r.SetStrokeColor(drawing.ColorWhite)
			r.SetStrokeWidth(2)
			r.MoveTo(x, y)
			r.LineTo(x+cell, y)
			r.LineTo(x+cell, y+cell)
			r.LineTo(x, y+cell)
			r.LineTo(x, y)
			r.Close()
			r.FillStroke()

			label := "n/a"
			if ok {
				label = strconv.FormatFloat(v, 'f', 2, 64)
			}
			r.SetFontColor(textOn(fill))
			r.Text(label, x+cell/2-14, y+cell/2+4)
		}
	}
	if err := r.Save(w); err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	return nil
}

// Placeholder draws a blank canvas with a centered message, used in place
// of charts that have no data.
func Placeholder(w io.Writer, msg string) error {
	r, err := chart.SVG(width, height/3)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	r.SetFont(font)
	r.SetFontSize(18)
	r.SetFontColor(drawing.ColorFromHex("666666"))
	box := r.MeasureText(msg)
	r.Text(msg, (width-box.Width())/2, height/6)
	return r.Save(w)
}

func textOn(bg drawing.Color) drawing.Color {
	lum := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if lum < 128 {
		return drawing.ColorWhite
	}
	return drawing.ColorBlack
}
