package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/mcncl/jsongraph/internal/diagnostic"
	"github.com/mcncl/jsongraph/internal/generator"
	"github.com/mcncl/jsongraph/internal/models"
)

const (
	iconOK    = "✓"
	iconError = "✗"
)

var (
	colorRed   = lipgloss.Color("167")
	colorGreen = lipgloss.Color("35")
	colorCyan  = lipgloss.Color("36")
	colorDim   = lipgloss.Color("240")
)

type styles struct {
	renderer *lipgloss.Renderer
	title    lipgloss.Style
	location lipgloss.Style
	err      lipgloss.Style
	ok       lipgloss.Style
	gutter   lipgloss.Style
	target   lipgloss.Style
	caret    lipgloss.Style
	hint     lipgloss.Style
	path     lipgloss.Style
}

// newStyles binds every style to a renderer with a fixed color profile, so
// colored output does not depend on what the process is attached to.
func newStyles() styles {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI256)

	return styles{
		renderer: r,
		title:    r.NewStyle().Bold(true),
		location: r.NewStyle().Bold(true),
		err:      r.NewStyle().Bold(true).Foreground(colorRed),
		ok:       r.NewStyle().Foreground(colorGreen),
		gutter:   r.NewStyle().Foreground(colorDim),
		target:   r.NewStyle().Bold(true),
		caret:    r.NewStyle().Bold(true).Foreground(colorRed),
		hint:     r.NewStyle().Foreground(colorCyan),
		path:     r.NewStyle().Foreground(colorCyan),
	}
}

func (f *Formatter) paint(style lipgloss.Style, s string) string {
	if !f.color || s == "" {
		return s
	}
	return style.Render(s)
}

// FormatDiagnostic renders d as a compiler style report:
//
//	data.json:3:3: error: invalid character '"' after object key:value pair
//	    1: {
//	    2:   "a": 1
//	→   3:   "b": 2
//	         ^
//	    4: }
//	hint: check for unescaped quotes or a missing comma before this string
//
// text is the input the diagnostic was produced from; when it is empty no caret is drawn.
func (f *Formatter) FormatDiagnostic(source, text string, d *models.Diagnostic) string {
	var b strings.Builder

	location := fmt.Sprintf("%s:%d:%d:", source, d.Line, d.Column)
	b.WriteString(fmt.Sprintf("%s %s %s %s\n",
		f.paint(f.styles.err, iconError),
		f.paint(f.styles.location, location),
		f.paint(f.styles.err, "error:"),
		d.Message))

	caret, hasCaret := caretPadding(text, d)
	if d.Context != "" {
		for _, line := range strings.Split(d.Context, "\n") {
			gutter, content := splitContextLine(line)
			isTarget := strings.HasPrefix(line, diagnostic.TargetMarker)
			if isTarget {
				b.WriteString(f.paint(f.styles.target, gutter) + content + "\n")
				if hasCaret {
					b.WriteString(strings.Repeat(" ", runewidth.StringWidth(gutter)) + caret + f.paint(f.styles.caret, "^") + "\n")
				}
				continue
			}
			b.WriteString(f.paint(f.styles.gutter, gutter) + content + "\n")
		}
	}

	if d.Suggestion != "" {
		b.WriteString(f.paint(f.styles.hint, "hint:") + " " + d.Suggestion + "\n")
	}
	return b.String()
}

// splitContextLine separates the marker and line number from the source text.
func splitContextLine(line string) (gutter, content string) {
	if i := strings.Index(line, ": "); i >= 0 {
		return line[:i+2], line[i+2:]
	}
	return line, ""
}

// caretPadding returns the whitespace that puts a caret under d's column,
// measured in terminal cells. Tabs are kept so they expand the same way as
// the line above.
func caretPadding(text string, d *models.Diagnostic) (string, bool) {
	start, end, ok := diagnostic.LineSpan(text, d.Line)
	if !ok {
		return "", false
	}
	line := strings.TrimSuffix(text[start:end], "\r")

	var pad strings.Builder
	n := 0
	for _, r := range line {
		if n >= d.Column-1 {
			break
		}
		if r == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
		n++
	}
	return pad.String(), true
}

// colorOutline tints each outline label with its node's palette.
func (f *Formatter) colorOutline(graph models.Graph, outline string) string {
	lines := strings.Split(strings.TrimSuffix(outline, "\n"), "\n")
	if len(lines) != len(graph.Nodes) {
		return outline
	}

	var b strings.Builder
	for i, line := range lines {
		node := graph.Nodes[i]
		style := generator.StyleFor(node.Kind, node.Highlighted)
		st := f.styles.renderer.NewStyle().Foreground(lipgloss.Color(style.Border))
		if node.Highlighted {
			st = st.Bold(true).Reverse(true)
		}
		b.WriteString(strings.Replace(line, node.Label, st.Render(node.Label), 1) + "\n")
	}
	return b.String()
}
