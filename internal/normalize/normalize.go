// Package normalize converts raw text fields into their canonical typed
// form before any correlation happens. The rules are intentionally narrow:
//
//   - whole-number numerals become integers; anything with a decimal point
//     stays text
//   - values shaped like a calendar date are rewritten to YYYY-MM-DD when a
//     heuristic parse succeeds, and pass through untouched when it fails
//   - everything else passes through as a string
//
// The key column gets the same treatment as every other field, so a purely
// numeric account ID becomes an integer. Downstream code treats keys as
// opaque values and compares them by canonical text form.
package normalize

import (
	"regexp"
	"strconv"
	"time"

	"github.com/ryanshoover/account-statuses/internal/table"
)

var (
	intPattern  = regexp.MustCompile(`^[+-]?\d+$`)
	datePattern = regexp.MustCompile(`^\d{1,4}[/-]\d{1,2}[/-]\d{1,4}$`)
)

// twoDigitYearPivot controls how 2-digit years are read: a parsed year more
// than this many years in the future is pushed back a century.
const twoDigitYearPivot = 20

// Layouts are tried in order. Year-first forms are unambiguous, so they go
// first; slash and dash dates are read month-first (the convention of the
// feeds this service ingests), with day-first as a last resort for values
// like 25/12/2016 that month-first cannot parse.
var (
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/1/2",
		"1/2/2006", "1-2-2006",
		"2/1/2006", "2-1-2006",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "1-2-06",
	}
)

// Field normalizes one raw cell value.
func Field(raw string) table.Value {
	if intPattern.MatchString(raw) {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return table.Int(n)
		}
		// Numerals too large for int64 stay as text.
		return table.String(raw)
	}

	if datePattern.MatchString(raw) {
		if t, ok := parseDate(raw); ok {
			return table.String(t.Format("2006-01-02"))
		}
	}

	return table.String(raw)
}

// Row normalizes every field of a raw record into a table.Row. The slice
// must already match the header width; the reader guarantees that.
func Row(header table.Header, fields []string) table.Row {
	values := make([]table.Value, len(fields))
	for i, raw := range fields {
		values[i] = Field(raw)
	}
	return table.Row{Header: header, Values: values}
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivot := time.Now().Year() + twoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivot {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}
