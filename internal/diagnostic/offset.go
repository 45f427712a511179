package diagnostic

import (
	"regexp"
	"strconv"
	"unicode/utf8"

	"fortio.org/safecast"

	"github.com/mcncl/jsongraph/internal/parser"
)

// Phrasings decoders use to report where they stopped, most specific first.
var (
	offsetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bat position (\d+)`),
		regexp.MustCompile(`(?i)\bposition (\d+)`),
		regexp.MustCompile(`(?i)\bcharacter (\d+)`),
		regexp.MustCompile(`(?i)\boffset (\d+)`),
	}
	linePattern = regexp.MustCompile(`(?i)\bline (\d+)(?:,? col(?:umn)? (\d+))?`)
)

// ExtractOffset recovers a byte offset into text from a decode failure.
//
// A decoder supplied hint wins. Otherwise the message is searched for an
// explicit position, then for a "line L" or "line L, column C" reference.
// Anything unrecoverable yields 0. The result is always within [0, len(text)].
func ExtractOffset(text string, failure *parser.Failure) int {
	if failure == nil {
		return 0
	}
	if failure.HasOffset {
		return clamp(failure.Offset, len(text))
	}

	for _, pattern := range offsetPatterns {
		if m := pattern.FindStringSubmatch(failure.Message); m != nil {
			if n, ok := atoi(m[1]); ok {
				return clamp(n, len(text))
			}
		}
	}

	if m := linePattern.FindStringSubmatch(failure.Message); m != nil {
		line, ok := atoi(m[1])
		if !ok {
			return 0
		}
		column := 1
		if m[2] != "" {
			if c, ok := atoi(m[2]); ok {
				column = c
			}
		}
		return lineColumnOffset(text, line, column)
	}
	return 0
}

// lineColumnOffset maps a 1-indexed line and rune column to a byte offset,
// stopping at the end of the line.
func lineColumnOffset(text string, line, column int) int {
	start, end, ok := LineSpan(text, line)
	if !ok {
		return 0
	}
	offset := start
	for n := 1; n < column && offset < end; n++ {
		_, size := utf8.DecodeRuneInString(text[offset:end])
		offset += size
	}
	return offset
}

func atoi(digits string) (int, bool) {
	u, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	n, err := safecast.Conv[int](u)
	if err != nil {
		return 0, false
	}
	return n, true
}

func clamp(offset, length int) int {
	return max(0, min(offset, length))
}
