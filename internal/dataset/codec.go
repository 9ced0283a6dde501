package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Codec controls how the ratings file is decoded and encoded.
type Codec struct {
	// Encoding name: "latin1" (default), "iso-8859-1", "windows-1252" or "utf-8".
	Encoding string
	// MissingToken is written for missing measurements. Defaults to "N/A".
	MissingToken string
}

// DefaultCodec matches the file produced by the upstream merge step.
func DefaultCodec() Codec {
	return Codec{Encoding: "latin1", MissingToken: "N/A"}
}

func (c Codec) token() string {
	if c.MissingToken == "" {
		return "N/A"
	}
	return c.MissingToken
}

// LookupEncoding maps a configured encoding name to a text encoding.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
	}
}

// IsMissing reports whether a raw cell denotes a missing measurement.
func (c Codec) IsMissing(raw string) bool {
	v := strings.TrimSpace(raw)
	if v == c.token() {
		return true
	}
	switch strings.ToLower(v) {
	case "", "n/a", "na", "nan", "null", "<nil>":
		return true
	}
	return false
}

// ParseMeasure decodes a numeric cell that may hold a missing token.
func (c Codec) ParseMeasure(raw string) (NullFloat, error) {
	if c.IsMissing(raw) {
		return Missing, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Missing, err
	}
	if math.IsInf(f, 0) {
		return Missing, fmt.Errorf("infinite value")
	}
	return Float(f), nil
}

// ReadFrame decodes a CSV stream into a string-typed frame. Type detection is
// disabled so every cell keeps its original text.
func ReadFrame(r io.Reader, c Codec) (dataframe.DataFrame, error) {
	t, err := readTable(r, c)
	return t.df, err
}

// WriteFrame encodes a frame as CSV with a header row.
func WriteFrame(w io.Writer, df dataframe.DataFrame, c Codec) error {
	return writeTable(w, table{header: df.Names(), df: df}, c)
}

// table is a frame plus its header row as it appeared in the file. gota
// renames empty and duplicate column names, so the raw header is kept to be
// written back unchanged.
type table struct {
	header []string
	df     dataframe.DataFrame
}

func readTable(r io.Reader, c Codec) (table, error) {
	enc, err := LookupEncoding(c.Encoding)
	if err != nil {
		return table{}, err
	}
	buf, err := io.ReadAll(transform.NewReader(r, enc.NewDecoder()))
	if err != nil {
		return table{}, fmt.Errorf("decode %s: %w", c.Encoding, err)
	}
	header, err := csv.NewReader(bytes.NewReader(buf)).Read()
	if err != nil {
		return table{}, fmt.Errorf("read csv header: %w", err)
	}
	df := dataframe.ReadCSV(bytes.NewReader(buf),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return table{}, fmt.Errorf("read csv: %w", df.Err)
	}
	return table{header: header, df: df}, nil
}

func writeTable(w io.Writer, t table, c Codec) error {
	enc, err := LookupEncoding(c.Encoding)
	if err != nil {
		return err
	}
	header := t.header
	if len(header) != t.df.Ncol() {
		header = t.df.Names()
	}
	tw := transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder()))
	cw := csv.NewWriter(tw)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := t.df.WriteCSV(tw, dataframe.WriteHeader(false)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
