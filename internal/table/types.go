// Package table parses delimited account files into typed rows and
// serializes enriched rows back to CSV with the narrow quoting rule the
// downstream consumers expect (fields are quoted only when they contain a
// comma, a double quote, or a newline).
package table

import "strconv"

// Header is the ordered list of column names read from the first line of
// the input. Position is the source of truth; duplicate names are allowed.
type Header []string

// Index returns the position of the first column with the given name,
// or -1 if the header has no such column.
func (h Header) Index(name string) int {
	for i, col := range h {
		if col == name {
			return i
		}
	}
	return -1
}

// Value is a single normalized cell: either an int64 or a string.
// The zero Value is the empty string.
type Value struct {
	num   int64
	str   string
	isInt bool
}

// Int returns a Value holding an integer.
func Int(n int64) Value {
	return Value{num: n, isInt: true}
}

// String returns a Value holding a string.
func String(s string) Value {
	return Value{str: s}
}

// IsInt reports whether the value was coerced to an integer.
func (v Value) IsInt() bool {
	return v.isInt
}

// Int64 returns the integer value. Only meaningful when IsInt is true.
func (v Value) Int64() int64 {
	return v.num
}

// Text returns the canonical text form of the value: the decimal
// representation for integers, the string itself otherwise. Keys are
// compared by this form, so the integer 1 and the string "1" correlate.
func (v Value) Text() string {
	if v.isInt {
		return strconv.FormatInt(v.num, 10)
	}
	return v.str
}

// Row is one parsed and normalized input record. Values are in header
// order; the first value is the row's key.
type Row struct {
	Header Header
	Values []Value
}

// Key returns the row's identifier: the value of the first column.
func (r Row) Key() Value {
	return r.Values[0]
}

// Get returns the value of the named column.
func (r Row) Get(name string) (Value, bool) {
	i := r.Header.Index(name)
	if i < 0 || i >= len(r.Values) {
		return Value{}, false
	}
	return r.Values[i], true
}
