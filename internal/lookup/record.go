package lookup

import (
	"encoding/json"
	"fmt"
	"io"
)

// RecordField is one name/value pair of an enrichment record. Values are
// kept in canonical text form; the output file is text anyway, and text
// keys make the integer-vs-string ambiguity of JSON numbers moot.
type RecordField struct {
	Name  string
	Value string
}

// Record is the enrichment record the remote service returns for one key.
// Field order matters for output assembly, and encoding/json maps do not
// preserve it, so the object is decoded with a token walk instead. The
// record lives only for the duration of one pipeline run.
type Record struct {
	fields []RecordField
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.fields)
}

// Fields returns the record's fields in the order the service sent them.
func (r Record) Fields() []RecordField {
	return r.fields
}

// Key returns the value of the named key field, in canonical text form.
func (r Record) Key(name string) (string, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// decodeRecord reads one JSON object from r, preserving field order.
func decodeRecord(r io.Reader) (Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Record{}, fmt.Errorf("reading record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Record{}, fmt.Errorf("record is not a JSON object")
	}

	var rec Record
	for dec.More() {
		nameTok, err := dec.Token()
		if err != nil {
			return Record{}, fmt.Errorf("reading field name: %w", err)
		}
		name, ok := nameTok.(string)
		if !ok {
			return Record{}, fmt.Errorf("field name is not a string")
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return Record{}, fmt.Errorf("decoding field %q: %w", name, err)
		}

		rec.fields = append(rec.fields, RecordField{Name: name, Value: stringify(raw)})
	}

	if _, err := dec.Token(); err != nil {
		return Record{}, fmt.Errorf("reading record end: %w", err)
	}

	return rec, nil
}

// stringify renders a decoded JSON value as the text that belongs in a CSV
// cell. Nested structures are rare in practice and are kept as compact JSON.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
