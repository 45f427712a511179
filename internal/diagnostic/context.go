package diagnostic

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLinesBefore is how many lines precede the error line in a context excerpt.
	DefaultLinesBefore = 2
	// DefaultLinesAfter is how many lines follow it.
	DefaultLinesAfter = 1

	// TargetMarker prefixes the error line; LineMarker prefixes the others.
	TargetMarker = "→"
	LineMarker   = " "

	minNumberWidth = 3
)

// Extract renders the lines around line with the default window.
func Extract(text string, line int) string {
	return ExtractWindow(text, line, DefaultLinesBefore, DefaultLinesAfter)
}

// ExtractWindow renders at most before lines ahead of line and after lines
// behind it, each prefixed by a marker and its right-aligned line number:
//
//	    1: {
//	→   2:   "a": 1,
//	    3: }
//
// It returns "" when line is not in text.
func ExtractWindow(text string, line, before, after int) string {
	lines := strings.Split(text, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}

	first := max(1, line-max(0, before))
	last := min(len(lines), line+max(0, after))
	width := max(minNumberWidth, len(strconv.Itoa(last)))

	var b strings.Builder
	for n := first; n <= last; n++ {
		if n > first {
			b.WriteByte('\n')
		}
		marker := LineMarker
		if n == line {
			marker = TargetMarker
		}
		fmt.Fprintf(&b, "%s %*d: %s", marker, width, n, strings.TrimSuffix(lines[n-1], "\r"))
	}
	return b.String()
}
