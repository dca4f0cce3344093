package table

import (
	"fmt"
	"io"
	"strings"
)

// EncodeField encodes one CSV field. A field containing a comma, a double
// quote, or a newline is wrapped in double quotes with internal quotes
// doubled; anything else is emitted as-is. This is deliberately narrower
// than encoding/csv, which also quotes leading spaces and CR: the consumers
// of these files expect unquoted plain fields byte for byte.
func EncodeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteTable serializes a header and rows as delimited text: fields joined
// by commas, each line terminated by LF. It is a pure function over the
// data; attachment headers and delivery belong to the transport layer.
func WriteTable(w io.Writer, header []string, rows [][]string) error {
	var b strings.Builder

	writeLine := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(EncodeField(f))
		}
		b.WriteByte('\n')
	}

	writeLine(header)
	for _, row := range rows {
		writeLine(row)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	return nil
}
