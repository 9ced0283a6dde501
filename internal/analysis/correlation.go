package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/KaramelBytes/bookdash/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// CorrColumns are the numeric columns of the correlation heatmap, in order.
var CorrColumns = []NumericColumn{Age, Rating, Year}

// CorrMatrix holds a symmetric Pearson correlation matrix. Undefined entries
// (fewer than two complete rows, or a constant column) are NaN.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
	// N is the number of rows with every column present.
	N int `json:"n"`
}

// At returns entry (i, j) and whether it is defined.
func (m CorrMatrix) At(i, j int) (float64, bool) {
	v := m.Values[i][j]
	return v, !math.IsNaN(v)
}

// MarshalJSON encodes undefined entries as null.
func (m CorrMatrix) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"columns":`)
	cols, err := json.Marshal(m.Columns)
	if err != nil {
		return nil, err
	}
	buf.Write(cols)
	buf.WriteString(`,"values":[`)
	for i, row := range m.Values {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		for j, v := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				buf.WriteString("null")
			} else {
				buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteString(`],"n":`)
	buf.WriteString(strconv.Itoa(m.N))
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Correlate computes pairwise Pearson coefficients between age, book_rating
// and year_pub over the records where all three are present.
func Correlate(records []dataset.Record) CorrMatrix {
	return CorrelateColumns(records, CorrColumns)
}

// CorrelateColumns is Correlate over an arbitrary column list.
func CorrelateColumns(records []dataset.Record, cols []NumericColumn) CorrMatrix {
	k := len(cols)
	m := CorrMatrix{Columns: make([]string, k), Values: make([][]float64, k)}
	for i, c := range cols {
		m.Columns[i] = string(c)
		m.Values[i] = make([]float64, k)
		for j := range m.Values[i] {
			m.Values[i][j] = math.NaN()
		}
	}
	series := make([][]float64, k)
	for _, r := range records {
		row := make([]float64, k)
		complete := true
		for i, c := range cols {
			v := c.value(r)
			if !v.Valid || math.IsNaN(v.Float64) {
				complete = false
				break
			}
			row[i] = v.Float64
		}
		if !complete {
			continue
		}
		for i := range cols {
			series[i] = append(series[i], row[i])
		}
	}
	if k > 0 {
		m.N = len(series[0])
	}
	if m.N < 2 {
		return m
	}
	for i := 0; i < k; i++ {
		m.Values[i][i] = 1
		for j := i + 1; j < k; j++ {
			r := stat.Correlation(series[i], series[j], nil)
			if !math.IsNaN(r) {
				r = math.Max(-1, math.Min(1, r))
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}
