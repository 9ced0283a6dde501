package analysis

import (
	"fmt"
	"strings"
)

// Markdown renders a compact report of the view.
func (v *View) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Year range: %d-%d\n", v.Range.Lo, v.Range.Hi))
	b.WriteString(fmt.Sprintf("Records: %d of %d\n", v.Matched, v.Total))
	if v.Empty() {
		b.WriteString("\n[NOTES]\n- no records in the selected range\n")
		return b.String()
	}

	writeHistogram(&b, "AGE DISTRIBUTION", v.AgeDistribution)
	writeCounts(&b, "TOP LOCATIONS", v.TopLocations)
	writeCounts(&b, "TOP RATED BOOKS", v.TopBooks)
	writeCounts(&b, "TOP RATED AUTHORS", v.TopAuthors)
	writeHistogram(&b, "RATING DISTRIBUTION", v.RatingDistribution)

	b.WriteString("\n[CORRELATIONS]\n")
	c := v.Correlation
	b.WriteString(fmt.Sprintf("Complete rows: %d\n", c.N))
	for i := 0; i < len(c.Columns); i++ {
		for j := i + 1; j < len(c.Columns); j++ {
			r, ok := c.At(i, j)
			if !ok {
				b.WriteString(fmt.Sprintf("- %s ~ %s: undefined\n", c.Columns[i], c.Columns[j]))
				continue
			}
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", c.Columns[i], c.Columns[j], r))
		}
	}
	b.WriteString(fmt.Sprintf("\n[SCATTER]\nAge vs rating points: %d\n", len(v.AgeVsRating)))
	return b.String()
}

func writeCounts(b *strings.Builder, title string, counts []CategoryCount) {
	b.WriteString("\n[" + title + "]\n")
	if len(counts) == 0 {
		b.WriteString("(none)\n")
		return
	}
	for i, kv := range counts {
		b.WriteString(fmt.Sprintf("%d. %s (%d)\n", i+1, safeVal(kv.Value), kv.Count))
	}
}

func writeHistogram(b *strings.Builder, title string, h Histogram) {
	b.WriteString("\n[" + title + "]\n")
	b.WriteString(fmt.Sprintf("present %d, missing %d\n", h.Present, h.Missing))
	for _, bin := range h.Bins {
		if bin.Count == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %d\n", bin.Label(), bin.Count))
	}
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
