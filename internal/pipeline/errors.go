package pipeline

import "fmt"

// CorrelationError means a row's key had no matching enrichment record.
// It references the unmatched key so the caller can report it; the row is
// never silently emitted short.
type CorrelationError struct {
	Key string
}

func (e *CorrelationError) Error() string {
	return fmt.Sprintf("no enrichment record for key %q", e.Key)
}

// RowError attributes a row-scoped failure (lookup or correlation) to the
// input row that caused it.
type RowError struct {
	// Line is the 1-based input line number of the row.
	Line int
	Key  string
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d (key %q): %v", e.Line, e.Key, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}
