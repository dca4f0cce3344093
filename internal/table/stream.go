package table

// stream.go wraps input readers to absorb the artifacts real-world account
// exports carry before they reach the CSV parser:
//
//   - a UTF-8 BOM (0xEF 0xBB 0xBF) from Windows spreadsheet tools
//   - classic Mac line endings (bare CR, no LF)
//
// CRLF is left alone; encoding/csv already understands it.

import (
	"bufio"
	"io"
)

// NewReader wraps r so the stream the CSV parser sees is BOM-free and uses
// LF or CRLF line endings only. A bare CR is rewritten to LF.
func NewReader(r io.Reader) io.Reader {
	return &streamReader{br: bufio.NewReader(r)}
}

type streamReader struct {
	br         *bufio.Reader
	bomChecked bool
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (s *streamReader) Read(p []byte) (int, error) {
	if !s.bomChecked {
		s.bomChecked = true
		if lead, err := s.br.Peek(3); err == nil && lead[0] == utf8BOM[0] && lead[1] == utf8BOM[1] && lead[2] == utf8BOM[2] {
			s.br.Discard(3)
		}
	}

	n := 0
	for n < len(p) {
		b, err := s.br.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}

		if b == '\r' {
			// CR followed by LF passes through untouched; a bare CR is an
			// old-Mac line ending and becomes LF.
			next, err := s.br.Peek(1)
			if err != nil || next[0] != '\n' {
				b = '\n'
			}
		}

		p[n] = b
		n++

		// Returning at line boundaries keeps reads cheap without buffering
		// the whole stream here.
		if b == '\n' && n > 0 {
			return n, nil
		}
	}
	return n, nil
}
