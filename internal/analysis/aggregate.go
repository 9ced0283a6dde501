package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/KaramelBytes/bookdash/internal/dataset"
)

// Column selects a categorical field of a rating record.
type Column string

const (
	Location Column = dataset.ColLocation
	Title    Column = dataset.ColTitle
	Author   Column = dataset.ColAuthor
)

func (c Column) value(r dataset.Record) string {
	switch c {
	case Location:
		return r.Location
	case Title:
		return r.Title
	case Author:
		return r.Author
	}
	return ""
}

// NumericColumn selects a numeric field of a rating record.
type NumericColumn string

const (
	Age    NumericColumn = dataset.ColAge
	Rating NumericColumn = dataset.ColRating
	Year   NumericColumn = dataset.ColYear
)

func (c NumericColumn) value(r dataset.Record) dataset.NullFloat {
	switch c {
	case Age:
		return r.Age
	case Rating:
		return r.Rating
	case Year:
		return dataset.Float(float64(r.YearPub))
	}
	return dataset.Missing
}

// CategoryCount is one (value, occurrences) pair of a frequency table.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// TopN counts the distinct non-empty values of col and returns the n most
// frequent, highest first. Ties keep the order in which values were first seen.
func TopN(records []dataset.Record, col Column, n int) []CategoryCount {
	if n <= 0 {
		return []CategoryCount{}
	}
	pos := make(map[string]int)
	counts := make([]CategoryCount, 0)
	for _, r := range records {
		v := col.value(r)
		if v == "" {
			continue
		}
		i, ok := pos[v]
		if !ok {
			i = len(counts)
			pos[v] = i
			counts = append(counts, CategoryCount{Value: v})
		}
		counts[i].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// Bin is one histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Label renders the bucket for chart axes.
func (b Bin) Label() string {
	if b.Hi-b.Lo == 1 && b.Lo == math.Trunc(b.Lo) {
		return strconv.FormatFloat(b.Lo, 'f', -1, 64)
	}
	return fmt.Sprintf("%s-%s", strconv.FormatFloat(b.Lo, 'f', -1, 64), strconv.FormatFloat(b.Hi, 'f', -1, 64))
}

// Histogram is the frequency distribution of a numeric column.
type Histogram struct {
	Column  string  `json:"column"`
	Width   float64 `json:"width"`
	Bins    []Bin   `json:"bins"`
	Present int     `json:"present"`
	Missing int     `json:"missing"`
}

// MaxBins bounds the bin count of a Distribution.
const MaxBins = 200

// Distribution buckets the present values of col into contiguous bins of the
// given width aligned to multiples of width. Missing values are only counted.
// When the spread would need more than MaxBins bins the width is multiplied
// until it fits; Histogram.Width reports the width actually used.
func Distribution(records []dataset.Record, col NumericColumn, width float64) Histogram {
	if width <= 0 || math.IsNaN(width) {
		width = 1
	}
	h := Histogram{Column: string(col), Width: width, Bins: []Bin{}}
	vals := make([]float64, 0, len(records))
	for _, r := range records {
		v := col.value(r)
		if !v.Valid || math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0) {
			h.Missing++
			continue
		}
		vals = append(vals, v.Float64)
	}
	h.Present = len(vals)
	if len(vals) == 0 {
		return h
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	first := math.Floor(lo / width)
	span := math.Floor(hi/width) - first + 1
	for span > MaxBins {
		width *= math.Max(2, math.Ceil(span/MaxBins))
		first = math.Floor(lo / width)
		span = math.Floor(hi/width) - first + 1
	}
	h.Width = width
	n := int(span)
	h.Bins = make([]Bin, n)
	for i := range h.Bins {
		start := (first + float64(i)) * width
		h.Bins[i] = Bin{Lo: start, Hi: start + width}
	}
	for _, v := range vals {
		i := int(math.Floor(v/width) - first)
		h.Bins[min(max(i, 0), n-1)].Count++
	}
	return h
}

// Point is one complete (age, rating) observation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point3D is one complete (age, rating, year) observation.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// AgeVsRating returns the records where both age and rating are present.
func AgeVsRating(records []dataset.Record) []Point {
	out := make([]Point, 0)
	for _, r := range records {
		if r.Age.Valid && r.Rating.Valid {
			out = append(out, Point{X: r.Age.Float64, Y: r.Rating.Float64})
		}
	}
	return out
}

// AgeRatingYear returns complete (age, rating, year_pub) triples.
func AgeRatingYear(records []dataset.Record) []Point3D {
	out := make([]Point3D, 0)
	for _, r := range records {
		if r.Age.Valid && r.Rating.Valid {
			out = append(out, Point3D{X: r.Age.Float64, Y: r.Rating.Float64, Z: float64(r.YearPub)})
		}
	}
	return out
}
