package pointio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV parses comma-separated numeric rows. If any cell of the first record
// is not a number, that record is treated as a header.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return Table{Rows: [][]float64{}}, nil
	}

	var t Table
	start := 0
	if isHeader(records[0]) {
		t.Header = make([]string, len(records[0]))
		for i, h := range records[0] {
			t.Header[i] = strings.TrimSpace(h)
		}
		start = 1
	}

	var errs ReadErrors
	t.Rows = make([][]float64, 0, len(records)-start)
	for i, rec := range records[start:] {
		line := start + i + 1
		row := make([]float64, len(rec))
		for j, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				if len(errs) < maxReadErrors {
					errs = append(errs, &CellError{Line: line, Column: j + 1, Value: cell, Err: err})
				}
				continue
			}
			row[j] = v
		}
		t.Rows = append(t.Rows, row)
	}
	if len(errs) > 0 {
		return Table{}, errs
	}
	return t, nil
}

func isHeader(record []string) bool {
	for _, cell := range record {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err != nil {
			return true
		}
	}
	return false
}

// WriteCSV writes header and rows in comma-separated form using the shortest
// representation that round-trips each float.
func WriteCSV(w io.Writer, header []string, rows [][]float64) error {
	cw := csv.NewWriter(w)
	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
	}
	record := make([]string, 0, len(header))
	for _, row := range rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Join(errors.New("failed to flush csv"), err)
	}
	return nil
}
