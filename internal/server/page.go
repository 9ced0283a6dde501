package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/KaramelBytes/bookdash/internal/analysis"
	"github.com/KaramelBytes/bookdash/internal/charts"
	"github.com/KaramelBytes/bookdash/internal/dataset"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.New("index.html").ParseFS(templateFS, "templates/index.html"))

type tab struct {
	ID      string
	Label   string
	Header  string
	Caption string
	// Chart is the SVG chart name; empty for tabs drawn in the page itself.
	Chart string
}

var tabs = []tab{
	{ID: "age", Label: "Age Distribution", Header: "Age Distribution", Chart: charts.AgeDistribution,
		Caption: "In this plot, it is possible to observe the presence of outliers. The ages around and over 70 are most likely erroneous data inputs. These errors may have been made by accident or on purpose. For instance, some users may not want to disclose their personal information."},
	{ID: "locations", Label: "Top 10 Locations", Header: "Top 10 Locations", Chart: charts.TopLocations,
		Caption: "Here, it can be seen that the locations with the highest number of individual ratings for books are either in the USA or Canada."},
	{ID: "books", Label: "Top 10 Rated Books", Header: "Top 10 Rated Books", Chart: charts.TopBooks,
		Caption: "This third graph shows the top 10 books with the highest number of individual ratings."},
	{ID: "authors", Label: "Top 10 Rated Authors", Header: "Top 10 Rated Authors", Chart: charts.TopAuthors,
		Caption: "In this case, the plot shows the top 10 authors with the highest number of individual ratings."},
	{ID: "ratings", Label: "Rating Distribution", Header: "Rating Distribution", Chart: charts.RatingDistribution,
		Caption: "The last histogram is about the rating distribution."},
	{ID: "scatter", Label: "User Age Vs User Rating", Header: "User Age vs. Book Rating", Chart: charts.AgeVsRating,
		Caption: "This scatter plot shows the relationship between user age and book ratings."},
	{ID: "heatmap", Label: "Correlation Heatmap", Header: "Correlation Heatmap",
		Caption: "This heatmap shows the correlation between age, book rating, and publication year."},
	{ID: "scatter3d", Label: "3D Scatter Plot", Header: "3D Scatter Plot",
		Caption: "This 3D scatter plot shows the relationship between age, book rating, and publication year."},
}

type heatCell struct {
	Text  string
	Color string
}

type heatRow struct {
	Name  string
	Cells []heatCell
}

type pageData struct {
	Range     dataset.YearRange
	Slider    dataset.YearRange
	View      *analysis.View
	Tabs      []tab
	Heatmap   []heatRow
	Animation string
	Error     string
}

func heatmapRows(m analysis.CorrMatrix) []heatRow {
	rows := make([]heatRow, 0, len(m.Columns))
	for i, name := range m.Columns {
		row := heatRow{Name: name}
		for j := range m.Columns {
			v, ok := m.At(i, j)
			c := heatCell{Text: "n/a", Color: charts.Hex(charts.HeatmapColor(v, ok))}
			if ok {
				c.Text = strconv.FormatFloat(v, 'f', 2, 64)
			}
			row.Cells = append(row.Cells, c)
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{Slider: s.opt.Slider, Tabs: tabs}
	status := http.StatusOK
	rng, err := s.parseRange(r)
	if err != nil {
		status = http.StatusBadRequest
		data.Error = err.Error()
		rng = s.opt.Slider
	}
	data.Range = rng
	data.View = s.compute("page", rng)
	data.Heatmap = heatmapRows(data.View.Correlation)
	if doc := s.animationDoc(r.Context()); doc != nil {
		data.Animation = string(doc)
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		s.logger.Error("render page", zap.Error(err))
		http.Error(w, "page rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
