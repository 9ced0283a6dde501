package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Column names of the merged books/users/ratings file.
const (
	ColISBN     = "isbn"
	ColTitle    = "book_title"
	ColAuthor   = "book_author"
	ColYear     = "year_pub"
	ColUserID   = "user_id"
	ColLocation = "location"
	ColAge      = "age"
	ColRating   = "book_rating"
)

// RequiredColumns lists the header columns the loader needs.
var RequiredColumns = []string{ColISBN, ColTitle, ColAuthor, ColYear, ColUserID, ColLocation, ColAge, ColRating}

// NullFloat is a measurement that may be missing. The zero value is missing.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a present measurement.
func Float(v float64) NullFloat { return NullFloat{Float64: v, Valid: true} }

// Missing is the explicit "no valid measurement" marker.
var Missing = NullFloat{}

func (n NullFloat) String() string {
	if !n.Valid {
		return "<missing>"
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// MarshalJSON encodes a missing value as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// Record is one denormalized (user, book, rating) row.
type Record struct {
	ISBN     string    `json:"isbn"`
	Title    string    `json:"book_title"`
	Author   string    `json:"book_author"`
	YearPub  int       `json:"year_pub"`
	UserID   int       `json:"user_id"`
	Location string    `json:"location"`
	Age      NullFloat `json:"age"`
	Rating   NullFloat `json:"book_rating"`
}

// YearRange is an inclusive publication-year interval.
type YearRange struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Contains reports whether lo <= year <= hi.
func (r YearRange) Contains(year int) bool { return r.Lo <= year && year <= r.Hi }

// Validate rejects inverted ranges.
func (r YearRange) Validate() error {
	if r.Lo > r.Hi {
		return fmt.Errorf("invalid year range: %d > %d", r.Lo, r.Hi)
	}
	return nil
}

// Overlaps reports whether r and b share at least one year.
func (r YearRange) Overlaps(b YearRange) bool { return r.Lo <= b.Hi && b.Lo <= r.Hi }

// Clamp restricts both ends of r into bounds.
func (r YearRange) Clamp(bounds YearRange) YearRange {
	clamp := func(v int) int {
		if v < bounds.Lo {
			return bounds.Lo
		}
		if v > bounds.Hi {
			return bounds.Hi
		}
		return v
	}
	return YearRange{Lo: clamp(r.Lo), Hi: clamp(r.Hi)}
}

func (r YearRange) String() string { return fmt.Sprintf("%d-%d", r.Lo, r.Hi) }

// Dataset is an immutable, fully loaded ratings file.
type Dataset struct {
	Path     string
	Records  []Record
	LoadedAt time.Time
}

// Bounds returns the smallest and largest year_pub. ok is false for an empty dataset.
func (d *Dataset) Bounds() (r YearRange, ok bool) {
	if d == nil {
		return YearRange{}, false
	}
	return Bounds(d.Records)
}

// Bounds returns the smallest and largest year_pub across records.
func Bounds(records []Record) (r YearRange, ok bool) {
	for i, rec := range records {
		if i == 0 {
			r = YearRange{Lo: rec.YearPub, Hi: rec.YearPub}
			continue
		}
		if rec.YearPub < r.Lo {
			r.Lo = rec.YearPub
		}
		if rec.YearPub > r.Hi {
			r.Hi = rec.YearPub
		}
	}
	return r, len(records) > 0
}
