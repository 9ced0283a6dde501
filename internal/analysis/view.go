package analysis

import (
	"github.com/KaramelBytes/bookdash/internal/dataset"
)

// Options controls the dashboard aggregations.
type Options struct {
	// TopN limits the frequency tables.
	TopN int
	// Histogram bin widths.
	AgeBinWidth    float64
	RatingBinWidth float64
}

// DefaultOptions returns the dashboard's standard settings.
func DefaultOptions() Options {
	return Options{TopN: 10, AgeBinWidth: 5, RatingBinWidth: 1}
}

// View is every aggregate shown on the dashboard for one year range.
type View struct {
	Range   dataset.YearRange `json:"range"`
	Total   int               `json:"total"`
	Matched int               `json:"matched"`

	AgeDistribution    Histogram       `json:"age_distribution"`
	TopLocations       []CategoryCount `json:"top_locations"`
	TopBooks           []CategoryCount `json:"top_books"`
	TopAuthors         []CategoryCount `json:"top_authors"`
	RatingDistribution Histogram       `json:"rating_distribution"`
	AgeVsRating        []Point         `json:"age_vs_rating"`
	Correlation        CorrMatrix      `json:"correlation"`
	Scatter3D          []Point3D       `json:"scatter_3d"`
}

// Empty reports whether no record matched the range.
func (v *View) Empty() bool { return v.Matched == 0 }

// Compute filters records by r and derives every aggregate from scratch.
func Compute(records []dataset.Record, r dataset.YearRange, opt Options) *View {
	if opt.TopN <= 0 {
		opt.TopN = DefaultOptions().TopN
	}
	filtered := dataset.Filter(records, r)
	return &View{
		Range:              r,
		Total:              len(records),
		Matched:            len(filtered),
		AgeDistribution:    Distribution(filtered, Age, opt.AgeBinWidth),
		TopLocations:       TopN(filtered, Location, opt.TopN),
		TopBooks:           TopN(filtered, Title, opt.TopN),
		TopAuthors:         TopN(filtered, Author, opt.TopN),
		RatingDistribution: Distribution(filtered, Rating, opt.RatingBinWidth),
		AgeVsRating:        AgeVsRating(filtered),
		Correlation:        Correlate(filtered),
		Scatter3D:          AgeRatingYear(filtered),
	}
}
