package dataset

// Filter returns the records whose year_pub lies in r, in their original
// order. The result never aliases records' backing array.
func Filter(records []Record, r YearRange) []Record {
	out := make([]Record, 0)
	for _, rec := range records {
		if r.Contains(rec.YearPub) {
			out = append(out, rec)
		}
	}
	return out
}
