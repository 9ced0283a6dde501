package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/bookdash/internal/dataset"
	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func rec(title string, year int, age, rating dataset.NullFloat) dataset.Record {
	return dataset.Record{Title: title, Author: "author " + title, Location: "loc " + title, YearPub: year, Age: age, Rating: rating}
}

var f = dataset.Float

func sampleRecords() []dataset.Record {
	return []dataset.Record{
		rec("A", 1990, f(20), f(5)),
		rec("B", 1995, f(35), f(7)),
		rec("A", 2000, f(41), f(8)),
		rec("C", 2005, dataset.Missing, f(3)),
		rec("B", 2010, f(60), dataset.Missing),
		rec("D", 2015, f(28), f(9)),
	}
}

func TestTopNStableTieBreak(t *testing.T) {
	recs := []dataset.Record{{Title: "A"}, {Title: "A"}, {Title: "B"}, {Title: "B"}, {Title: "C"}}
	got := TopN(recs, Title, 2)
	want := []CategoryCount{{"A", 2}, {"B", 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("TopN mismatch (-want +got):\n%s", diff)
	}

	recs = []dataset.Record{{Title: "B"}, {Title: "A"}, {Title: "A"}, {Title: "B"}, {Title: "C"}}
	got = TopN(recs, Title, 3)
	want = []CategoryCount{{"B", 2}, {"A", 2}, {"C", 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("first-seen order not kept (-want +got):\n%s", diff)
	}
}

func TestTopNFewerThanN(t *testing.T) {
	got := TopN(sampleRecords(), Author, 10)
	want := []CategoryCount{{"author A", 2}, {"author B", 2}, {"author C", 1}, {"author D", 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestTopNSkipsOnlyEmptyValues(t *testing.T) {
	recs := []dataset.Record{{Location: ""}, {Location: " "}, {Location: "x"}, {Location: " "}}
	got := TopN(recs, Location, 10)
	if diff := cmp.Diff([]CategoryCount{{" ", 2}, {"x", 1}}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestDistributionExcludesMissing(t *testing.T) {
	h := Distribution(sampleRecords(), Age, 10)
	if h.Present != 5 || h.Missing != 1 {
		t.Fatalf("present/missing = %d/%d", h.Present, h.Missing)
	}
	want := []Bin{{20, 30, 2}, {30, 40, 1}, {40, 50, 1}, {50, 60, 0}, {60, 70, 1}}
	if diff := cmp.Diff(want, h.Bins); diff != "" {
		t.Fatalf("bins (-want +got):\n%s", diff)
	}
	total := 0
	for _, b := range h.Bins {
		total += b.Count
	}
	if total != h.Present {
		t.Fatalf("bin counts %d != present %d", total, h.Present)
	}
}

func TestDistributionCapsBinCount(t *testing.T) {
	cases := []struct {
		name string
		ages []float64
	}{
		{"huge outlier", []float64{20, 1e20}},
		{"wide symmetric spread", []float64{-5e8, 30, 5e8}},
		{"max float", []float64{-math.MaxFloat64, math.MaxFloat64}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs := make([]dataset.Record, 0, len(tc.ages)+1)
			for _, a := range tc.ages {
				recs = append(recs, dataset.Record{Age: f(a)})
			}
			recs = append(recs, dataset.Record{Age: f(math.Inf(1))})
			h := Distribution(recs, Age, 5)
			if len(h.Bins) == 0 || len(h.Bins) > MaxBins {
				t.Fatalf("bins = %d, want 1..%d", len(h.Bins), MaxBins)
			}
			if h.Width < 5 {
				t.Fatalf("width shrank to %v", h.Width)
			}
			if h.Present != len(tc.ages) || h.Missing != 1 {
				t.Fatalf("present/missing = %d/%d", h.Present, h.Missing)
			}
			total := 0
			for _, b := range h.Bins {
				total += b.Count
			}
			if total != h.Present {
				t.Fatalf("bin counts %d != present %d", total, h.Present)
			}
		})
	}
}

func TestDistributionKeepsWidthWhenItFits(t *testing.T) {
	h := Distribution(sampleRecords(), Age, 5)
	if h.Width != 5 {
		t.Fatalf("width = %v, want 5", h.Width)
	}
}

func TestDistributionIntegerLabels(t *testing.T) {
	h := Distribution(sampleRecords(), Rating, 1)
	if got := h.Bins[0].Label(); got != "3" {
		t.Fatalf("label = %q", got)
	}
	if got := (Bin{Lo: 20, Hi: 25}).Label(); got != "20-25" {
		t.Fatalf("label = %q", got)
	}
}

func TestCorrelationMatrixProperties(t *testing.T) {
	m := Correlate(sampleRecords())
	if m.N != 4 {
		t.Fatalf("complete rows = %d, want 4", m.N)
	}
	if diff := cmp.Diff([]string{"age", "book_rating", "year_pub"}, m.Columns); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}
	for i := range m.Values {
		if m.Values[i][i] != 1 {
			t.Fatalf("diagonal[%d] = %v", i, m.Values[i][i])
		}
		for j := range m.Values {
			v, ok := m.At(i, j)
			if !ok {
				t.Fatalf("entry (%d,%d) undefined", i, j)
			}
			if v < -1 || v > 1 {
				t.Fatalf("entry (%d,%d) = %v out of bounds", i, j, v)
			}
			if v != m.Values[j][i] {
				t.Fatalf("not symmetric at (%d,%d)", i, j)
			}
		}
	}
}

func TestCorrelationPerfectLinear(t *testing.T) {
	var recs []dataset.Record
	for i := 0; i < 5; i++ {
		recs = append(recs, rec("x", 2000+i, f(float64(20+i)), f(float64(10-i))))
	}
	m := Correlate(recs)
	if math.Abs(m.Values[0][1]+1) > 1e-9 {
		t.Fatalf("age~rating = %v, want -1", m.Values[0][1])
	}
	if math.Abs(m.Values[0][2]-1) > 1e-9 {
		t.Fatalf("age~year = %v, want 1", m.Values[0][2])
	}
}

func TestCorrelationUndefined(t *testing.T) {
	one := Correlate(sampleRecords()[:1])
	if one.N != 1 {
		t.Fatalf("N = %d", one.N)
	}
	for i := range one.Values {
		for j := range one.Values {
			if _, ok := one.At(i, j); ok {
				t.Fatalf("single row must leave (%d,%d) undefined", i, j)
			}
		}
	}
	b, err := json.Marshal(one)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), "[null,null,null]") {
		t.Fatalf("undefined entries must encode as null: %s", b)
	}

	constant := []dataset.Record{rec("a", 2000, f(30), f(5)), rec("b", 2000, f(40), f(6))}
	m := Correlate(constant)
	if _, ok := m.At(0, 2); ok {
		t.Fatalf("constant year column must be undefined, got %v", m.Values[0][2])
	}
	if v, ok := m.At(0, 1); !ok || math.Abs(v-1) > 1e-9 {
		t.Fatalf("age~rating = %v %v", v, ok)
	}
}

func TestComputeEmptyRangeIsNeutral(t *testing.T) {
	v := Compute(sampleRecords(), dataset.YearRange{Lo: 1900, Hi: 1910}, DefaultOptions())
	if !v.Empty() || v.Total != 6 {
		t.Fatalf("view = %+v", v)
	}
	if len(v.TopLocations) != 0 || len(v.TopBooks) != 0 || len(v.TopAuthors) != 0 {
		t.Fatalf("top lists must be empty")
	}
	if len(v.AgeDistribution.Bins) != 0 || len(v.RatingDistribution.Bins) != 0 {
		t.Fatalf("histograms must be empty")
	}
	if len(v.AgeVsRating) != 0 || len(v.Scatter3D) != 0 || v.Correlation.N != 0 {
		t.Fatalf("scatter/correlation must be empty")
	}
	if _, err := json.Marshal(v); err != nil {
		t.Fatalf("empty view must marshal: %v", err)
	}
	if !strings.Contains(v.Markdown(), "no records in the selected range") {
		t.Fatalf("markdown must mention empty range")
	}
	var buf bytes.Buffer
	if err := v.WriteXLSX(&buf); err != nil {
		t.Fatalf("empty view xlsx: %v", err)
	}
}

func TestComputeFullRange(t *testing.T) {
	recs := sampleRecords()
	v := Compute(recs, dataset.YearRange{Lo: 1990, Hi: 2015}, DefaultOptions())
	if v.Matched != len(recs) {
		t.Fatalf("matched = %d", v.Matched)
	}
	if len(v.AgeVsRating) != 4 || len(v.Scatter3D) != 4 {
		t.Fatalf("points = %d/%d", len(v.AgeVsRating), len(v.Scatter3D))
	}
	if v.TopBooks[0] != (CategoryCount{"A", 2}) {
		t.Fatalf("top book = %+v", v.TopBooks[0])
	}
	md := v.Markdown()
	for _, want := range []string{"[TOP RATED BOOKS]", "1. A (2)", "[CORRELATIONS]", "age ~ book_rating: r="} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestWriteXLSXSheets(t *testing.T) {
	v := Compute(sampleRecords(), dataset.YearRange{Lo: 1990, Hi: 2015}, DefaultOptions())
	var buf bytes.Buffer
	if err := v.WriteXLSX(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	wb, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer wb.Close()
	want := []string{"Summary", "Age Distribution", "Top Locations", "Top Books", "Top Authors", "Rating Distribution", "Correlation"}
	if diff := cmp.Diff(want, wb.GetSheetList()); diff != "" {
		t.Fatalf("sheets (-want +got):\n%s", diff)
	}
	got, err := wb.GetCellValue("Top Books", "A2")
	if err != nil || got != "A" {
		t.Fatalf("Top Books!A2 = %q, %v", got, err)
	}
}
