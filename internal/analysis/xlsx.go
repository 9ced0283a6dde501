package analysis

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes the view as a workbook with one sheet per aggregate.
func (v *View) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	summary := [][]any{
		{"Year from", v.Range.Lo},
		{"Year to", v.Range.Hi},
		{"Records matched", v.Matched},
		{"Records total", v.Total},
		{"Complete rows (correlation)", v.Correlation.N},
	}
	if err := writeRows(f, "Summary", summary); err != nil {
		return err
	}

	sheets := []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{"Age Distribution", []any{"Bin", "From", "To", "Count"}, histRows(v.AgeDistribution)},
		{"Top Locations", []any{"Location", "Ratings"}, countRows(v.TopLocations)},
		{"Top Books", []any{"Book", "Ratings"}, countRows(v.TopBooks)},
		{"Top Authors", []any{"Author", "Ratings"}, countRows(v.TopAuthors)},
		{"Rating Distribution", []any{"Bin", "From", "To", "Count"}, histRows(v.RatingDistribution)},
		{"Correlation", corrHeader(v.Correlation), corrRows(v.Correlation)},
	}
	for _, s := range sheets {
		if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("new sheet %s: %w", s.name, err)
		}
		if err := writeRows(f, s.name, append([][]any{s.header}, s.rows...)); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func histRows(h Histogram) [][]any {
	out := make([][]any, 0, len(h.Bins))
	for _, b := range h.Bins {
		out = append(out, []any{b.Label(), b.Lo, b.Hi, b.Count})
	}
	return out
}

func countRows(counts []CategoryCount) [][]any {
	out := make([][]any, 0, len(counts))
	for _, kv := range counts {
		out = append(out, []any{kv.Value, kv.Count})
	}
	return out
}

func corrHeader(m CorrMatrix) []any {
	h := []any{""}
	for _, c := range m.Columns {
		h = append(h, c)
	}
	return h
}

func corrRows(m CorrMatrix) [][]any {
	out := make([][]any, 0, len(m.Columns))
	for i, name := range m.Columns {
		row := []any{name}
		for j := range m.Columns {
			if v, ok := m.At(i, j); ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		out = append(out, row)
	}
	return out
}
