package diagnostic

import (
	"strings"
	"unicode/utf8"
)

// Location is a 1-indexed line and column.
type Location struct {
	Line   int
	Column int
}

// Resolve converts a byte offset in text into a line and column.
//
// The offset is clamped into [0, len(text)]. Lines are terminated by '\n'; the
// column counts runes since the last terminator before offset, so a '\r' of a
// CRLF pair still belongs to the line it ends.
func Resolve(text string, offset int) Location {
	offset = max(0, min(offset, len(text)))
	prefix := text[:offset]

	lineStart := strings.LastIndexByte(prefix, '\n') + 1
	return Location{
		Line:   1 + strings.Count(prefix, "\n"),
		Column: 1 + utf8.RuneCountInString(prefix[lineStart:]),
	}
}

// LineSpan returns the byte range [start, end) of a 1-indexed line, excluding
// its terminator. ok is false when the line does not exist.
func LineSpan(text string, line int) (start, end int, ok bool) {
	if line < 1 {
		return 0, 0, false
	}
	for n := 1; n < line; n++ {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			return 0, 0, false
		}
		start += i + 1
	}

	end = len(text)
	if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
		end = start + i
	}
	return start, end, true
}
