package dataset

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/KaramelBytes/bookdash/internal/utils"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultMaxAge is the largest plausible user age.
const DefaultMaxAge = 80

// CleanOptions controls the cleaning pass.
type CleanOptions struct {
	Codec Codec
	// MaxAge: ages strictly above this become missing. Zero means DefaultMaxAge.
	MaxAge float64
}

// DefaultCleanOptions returns the options used by the upstream cleaning step.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{Codec: DefaultCodec(), MaxAge: DefaultMaxAge}
}

// CleanStats summarizes one cleaning pass.
type CleanStats struct {
	Rows          int
	AgesNulled    int
	RatingsNulled int
}

// Changed reports whether the pass replaced any value.
func (s CleanStats) Changed() bool { return s.AgesNulled+s.RatingsNulled > 0 }

// Clean replaces implausible ages and zero ratings with the missing token.
// Missing and non-numeric cells pass through, as do all other columns, so
// applying Clean to its own output changes nothing.
func Clean(df dataframe.DataFrame, opt CleanOptions) (dataframe.DataFrame, CleanStats, error) {
	return cleanTable(table{header: df.Names(), df: df}, opt)
}

// cleanTable locates the measure columns by the raw header, so a file with
// renamed duplicates still resolves its first age and book_rating columns.
func cleanTable(t table, opt CleanOptions) (dataframe.DataFrame, CleanStats, error) {
	df := t.df
	maxAge := opt.MaxAge
	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}
	header := t.header
	if len(header) != df.Ncol() {
		header = df.Names()
	}
	names := df.Names()
	ageCol, ok1 := resolveName(header, names, ColAge)
	ratingCol, ok2 := resolveName(header, names, ColRating)
	var missing []string
	if !ok1 {
		missing = append(missing, ColAge)
	}
	if !ok2 {
		missing = append(missing, ColRating)
	}
	if len(missing) > 0 {
		return df, CleanStats{}, &ColumnError{Columns: missing}
	}
	stats := CleanStats{Rows: df.Nrow()}
	token := opt.Codec.token()

	ages, n := replaceWhere(df.Col(ageCol).Records(), opt.Codec, token, func(v float64) bool { return v > maxAge })
	stats.AgesNulled = n
	ratings, n := replaceWhere(df.Col(ratingCol).Records(), opt.Codec, token, func(v float64) bool { return v == 0 })
	stats.RatingsNulled = n

	out := df.Mutate(series.New(ages, series.String, ageCol)).
		Mutate(series.New(ratings, series.String, ratingCol))
	if out.Err != nil {
		return df, CleanStats{}, fmt.Errorf("mutate columns: %w", out.Err)
	}
	return out, stats, nil
}

func replaceWhere(vals []string, c Codec, token string, pred func(float64) bool) ([]string, int) {
	out := make([]string, len(vals))
	n := 0
	for i, v := range vals {
		out[i] = v
		if c.IsMissing(v) {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		if pred(f) {
			out[i] = token
			n++
		}
	}
	return out, n
}

// CleanStream reads a ratings CSV from r, cleans it and writes it to w.
func CleanStream(r io.Reader, w io.Writer, opt CleanOptions) (CleanStats, error) {
	t, err := readTable(r, opt.Codec)
	if err != nil {
		return CleanStats{}, err
	}
	out, stats, err := cleanTable(t, opt)
	if err != nil {
		return CleanStats{}, err
	}
	if err := writeTable(w, table{header: t.header, df: out}, opt.Codec); err != nil {
		return CleanStats{}, err
	}
	return stats, nil
}

// CleanFile cleans src and writes the result to dst, which may equal src.
// The output is written to a temp file and renamed into place, so dst is
// either fully rewritten or left untouched.
func CleanFile(src, dst string, opt CleanOptions) (CleanStats, error) {
	f, err := os.Open(src)
	if err != nil {
		return CleanStats{}, fmt.Errorf("open dataset: %w", err)
	}
	t, err := readTable(f, opt.Codec)
	f.Close()
	if err != nil {
		return CleanStats{}, fmt.Errorf("read %s: %w", src, err)
	}
	out, stats, err := cleanTable(t, opt)
	if err != nil {
		return CleanStats{}, fmt.Errorf("clean %s: %w", src, err)
	}
	if dst == "" {
		return stats, nil
	}
	if err := utils.WriteFileAtomic(dst, func(w io.Writer) error {
		return writeTable(w, table{header: t.header, df: out}, opt.Codec)
	}); err != nil {
		return CleanStats{}, fmt.Errorf("write %s: %w", dst, err)
	}
	return stats, nil
}

// resolveName finds want in header and returns the frame's name for that
// column.
func resolveName(header, names []string, want string) (string, bool) {
	for i, n := range header {
		if strings.EqualFold(strings.TrimSpace(n), want) {
			return names[i], true
		}
	}
	return "", false
}
