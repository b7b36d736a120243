// Package pointio reads localisation tables from disk and writes feature
// tables back out.
//
// Supported inputs: comma-separated .csv/.txt (optionally gzip-compressed,
// with a header row detected automatically), NumPy .npy arrays and Parquet
// files with x, y, optional z and optional channel columns.
package pointio

import (
	"fmt"
	"strings"
)

// Table is a parsed numeric point array, one row per localisation.
// Coordinates come first; when present the channel is the last column.
type Table struct {
	Header []string // nil when the source had no header row
	Rows   [][]float64
}

// Columns returns the row width, or the header width for an empty table.
func (t Table) Columns() int {
	if len(t.Rows) > 0 {
		return len(t.Rows[0])
	}
	return len(t.Header)
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// HasChannel reports whether rows have a column beyond dims coordinates.
func (t Table) HasChannel(dims int) bool {
	return t.Columns() > dims
}

// maxReadErrors caps how many cell errors a single read collects.
const maxReadErrors = 20

// ReadErrors lists every problem found during one read. A new list is built
// for each call.
type ReadErrors []error

func (e ReadErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e ReadErrors) Unwrap() []error { return e }

// CellError describes a value that could not be parsed as a number.
type CellError struct {
	Line   int
	Column int
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("line %d column %d: invalid number %q", e.Line, e.Column, e.Value)
}

func (e *CellError) Unwrap() error { return e.Err }
