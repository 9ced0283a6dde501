package dataset

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// Load reads the whole ratings file at path into memory.
func Load(path string, c Codec) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	ds, err := Read(f, c)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	ds.Path = path
	return ds, nil
}

// Read decodes a ratings CSV stream.
func Read(r io.Reader, c Codec) (*Dataset, error) {
	df, err := ReadFrame(r, c)
	if err != nil {
		return nil, err
	}
	recs, err := FromFrame(df, c)
	if err != nil {
		return nil, err
	}
	return &Dataset{Records: recs, LoadedAt: time.Now()}, nil
}

// FromFrame converts a string-typed frame into typed records.
func FromFrame(df dataframe.DataFrame, c Codec) ([]Record, error) {
	idx, err := columnIndex(df.Names(), RequiredColumns)
	if err != nil {
		return nil, err
	}
	rows := df.Records()
	if len(rows) <= 1 {
		return []Record{}, nil
	}
	out := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		cell := func(col string) string {
			j := idx[col]
			if j >= len(row) {
				return ""
			}
			return row[j]
		}
		year, err := parseInt(cell(ColYear))
		if err != nil {
			return nil, &ParseError{Row: line, Column: ColYear, Value: cell(ColYear), Err: err}
		}
		user, err := parseInt(cell(ColUserID))
		if err != nil {
			return nil, &ParseError{Row: line, Column: ColUserID, Value: cell(ColUserID), Err: err}
		}
		age, err := c.ParseMeasure(cell(ColAge))
		if err != nil {
			return nil, &ParseError{Row: line, Column: ColAge, Value: cell(ColAge), Err: err}
		}
		rating, err := c.ParseMeasure(cell(ColRating))
		if err != nil {
			return nil, &ParseError{Row: line, Column: ColRating, Value: cell(ColRating), Err: err}
		}
		out = append(out, Record{
			ISBN:     cell(ColISBN),
			Title:    cell(ColTitle),
			Author:   cell(ColAuthor),
			YearPub:  year,
			UserID:   user,
			Location: cell(ColLocation),
			Age:      age,
			Rating:   rating,
		})
	}
	return out, nil
}

func columnIndex(names, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &ColumnError{Columns: missing}
	}
	return idx, nil
}

// parseInt accepts integers and integral floats such as "2002.0".
func parseInt(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("not an integer")
	}
	return int(f), nil
}
