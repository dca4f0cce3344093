package table

import (
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is reported for a workbook with no worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

// ReadWorkbook reads the first sheet of an xlsx workbook into the same
// header-plus-rows shape ReadTable produces, so Excel uploads flow through
// the identical enrichment path.
//
// The xlsx format stores trailing blank cells as absent, so rows narrower
// than the header are padded with empty strings rather than rejected; a
// truly short row is indistinguishable from one ending in blanks.
func ReadWorkbook(r io.Reader) (Header, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, &ParseError{Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, &ParseError{Err: ErrNoSheets}
	}

	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, &ParseError{Err: err}
	}
	if len(all) == 0 {
		return nil, nil, &ParseError{Err: ErrEmptyInput}
	}

	header := Header(all[0])

	var rows [][]string
	for _, row := range all[1:] {
		if blankRow(row) {
			continue
		}
		if len(row) > len(header) {
			row = row[:len(header)]
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
