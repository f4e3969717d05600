package sse

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Assembler buffers raw chunks into complete newline-terminated lines.
// The zero value is ready to use.
type Assembler struct {
	buf []byte
}

// Feed appends chunk and returns every line completed by it, without the
// line terminator. A trailing "\r" is stripped so CRLF streams work. Invalid
// UTF-8 is replaced with U+FFFD once the whole line is known, so a code
// point split across chunks decodes intact.
func (a *Assembler) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	a.buf = append(a.buf, chunk...)

	var lines []string
	start := 0
	for {
		idx := bytes.IndexByte(a.buf[start:], '\n')
		if idx == -1 {
			break
		}
		lines = append(lines, decodeLine(a.buf[start:start+idx]))
		start += idx + 1
	}
	if start > 0 {
		a.buf = append(a.buf[:0], a.buf[start:]...)
	}
	return lines
}

// Flush returns the retained unterminated line, if any, and resets the
// buffer.
func (a *Assembler) Flush() (string, bool) {
	if len(a.buf) == 0 {
		return "", false
	}
	line := decodeLine(a.buf)
	a.buf = a.buf[:0]
	if line == "" {
		return "", false
	}
	return line, true
}

func decodeLine(b []byte) string {
	b = bytes.TrimSuffix(b, []byte{'\r'})
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
