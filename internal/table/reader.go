package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ParseError describes a structurally broken input table. Nothing
// downstream is trustworthy after one, so the whole run aborts.
type ParseError struct {
	// Line is the 1-based line number, 0 when the failure is not tied to
	// a specific line (unreadable or empty stream).
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrEmptyInput is reported when the stream contains no header line.
var ErrEmptyInput = errors.New("input has no header row")

// ReadTable parses a delimited byte stream into a header and raw data rows.
//
// The first record is the header and defines the field count for every
// data row. A row with fewer fields than the header is a *ParseError;
// excess fields are truncated, matching permissive real-world CSV.
// The stream is consumed completely; closing it is the caller's job.
func ReadTable(r io.Reader) (Header, [][]string, error) {
	cr := csv.NewReader(NewReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	record, err := cr.Read()
	if err == io.EOF {
		return nil, nil, &ParseError{Err: ErrEmptyInput}
	}
	if err != nil {
		return nil, nil, &ParseError{Line: 1, Err: err}
	}

	header := Header(record)

	var rows [][]string
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &ParseError{Line: line, Err: err}
		}

		if len(record) < len(header) {
			return nil, nil, &ParseError{
				Line: line,
				Err:  fmt.Errorf("row has %d fields, header has %d", len(record), len(header)),
			}
		}
		rows = append(rows, record[:len(header)])
	}

	return header, rows, nil
}
