package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn classifies header validation failures.
var ErrMissingColumn = errors.New("missing required column")

// ErrUnknownEncoding is returned for unsupported text encodings.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// ColumnError lists required columns absent from the header.
type ColumnError struct {
	Columns []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumn, strings.Join(e.Columns, ", "))
}

func (e *ColumnError) Unwrap() error { return ErrMissingColumn }

// ParseError reports a cell that could not be decoded into its column type.
// Row is the 1-based line number in the file (the header is line 1).
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: column %s: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
