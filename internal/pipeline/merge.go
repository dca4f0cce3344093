package pipeline

import (
	"github.com/ryanshoover/account-statuses/internal/lookup"
	"github.com/ryanshoover/account-statuses/internal/table"
)

// StatusColumns are the labels appended to the input header on output.
var StatusColumns = []string{"Status", "Status Set On"}

// indexRecords builds a key-indexed view over the enrichment records so
// correlation is a map hit instead of a scan per row. First record wins on
// duplicate keys, matching first-match-by-equality semantics. Records with
// no key field can never correlate and are left out.
func indexRecords(records []lookup.Record, keyField string) map[string]lookup.Record {
	index := make(map[string]lookup.Record, len(records))
	for _, rec := range records {
		key, ok := rec.Key(keyField)
		if !ok {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = rec
		}
	}
	return index
}

// mergeRow joins one row with its enrichment record: the row's values in
// header order, then the record's fields in arrival order minus the
// record's own key field, so the identifier is not duplicated. The merged
// width must equal len(header) + record fields - 1; anything else is a
// correlation failure, not an output row.
func mergeRow(row table.Row, rec lookup.Record, keyField string) ([]string, error) {
	out := make([]string, 0, len(row.Values)+rec.Len()-1)
	for _, v := range row.Values {
		out = append(out, v.Text())
	}
	for _, f := range rec.Fields() {
		if f.Name == keyField {
			continue
		}
		out = append(out, f.Value)
	}

	if len(out) != len(row.Header)+rec.Len()-1 {
		return nil, &CorrelationError{Key: row.Key().Text()}
	}
	return out, nil
}
