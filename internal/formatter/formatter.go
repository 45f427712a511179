package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mcncl/jsongraph/internal/analyzer"
	"github.com/mcncl/jsongraph/internal/errors"
	"github.com/mcncl/jsongraph/internal/generator"
	"github.com/mcncl/jsongraph/internal/models"
)

// Format names an output encoding.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
	FormatDOT     Format = "dot"
	FormatOutline Format = "outline"
)

// ParseFormat converts a user supplied output format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatMsgpack, FormatDOT, FormatOutline:
		return f, nil
	default:
		return "", errors.NewOutputError(fmt.Sprintf("unknown output format %q", name), errors.ErrUnsupportedFormat)
	}
}

// GraphDocument is the serialized form of a graph.
type GraphDocument struct {
	Nodes []models.GraphNode `json:"nodes" msgpack:"nodes"`
	Edges []models.GraphEdge `json:"edges" msgpack:"edges"`
	Stats *analyzer.Stats    `json:"stats,omitempty" msgpack:"stats,omitempty"`
}

// NewGraphDocument wraps graph so that empty node and edge lists encode as [] rather than null.
func NewGraphDocument(graph models.Graph, stats *analyzer.Stats) GraphDocument {
	doc := GraphDocument{Nodes: graph.Nodes, Edges: graph.Edges, Stats: stats}
	if doc.Nodes == nil {
		doc.Nodes = []models.GraphNode{}
	}
	if doc.Edges == nil {
		doc.Edges = []models.GraphEdge{}
	}
	return doc
}

// Graph returns the nodes and edges of the document.
func (d GraphDocument) Graph() models.Graph {
	return models.Graph{Nodes: d.Nodes, Edges: d.Edges}
}

// Report is the validation outcome for one named input.
type Report struct {
	Source     string             `json:"source" msgpack:"source"`
	Valid      bool               `json:"valid" msgpack:"valid"`
	Diagnostic *models.Diagnostic `json:"diagnostic,omitempty" msgpack:"diagnostic,omitempty"`
	// Text is the validated input, used to place the caret in text reports.
	Text string `json:"-" msgpack:"-"`
}

// Formatter is responsible for writing results in the requested encoding
type Formatter struct {
	color     bool
	styles    styles
	generator *generator.Generator
}

// NewFormatter creates a new Formatter instance without color
func NewFormatter() *Formatter {
	return NewFormatterWithColor(false)
}

// NewFormatterWithColor creates a Formatter; color enables ANSI styling of text output
func NewFormatterWithColor(color bool) *Formatter {
	return &Formatter{
		color:     color,
		styles:    newStyles(),
		generator: generator.NewGenerator(),
	}
}

// WriteGraph writes doc to w. Text output is the outline.
func (f *Formatter) WriteGraph(w io.Writer, format Format, doc GraphDocument) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatMsgpack:
		return writeMsgpack(w, doc)
	case FormatDOT:
		out, err := f.generator.GenerateDOT(doc.Graph())
		if err != nil {
			return errors.NewOutputError("failed to generate DOT", err)
		}
		return writeString(w, out)
	default:
		out, err := f.generator.GenerateOutline(doc.Graph())
		if err != nil {
			return errors.NewOutputError("failed to generate outline", err)
		}
		if f.color {
			out = f.colorOutline(doc.Graph(), out)
		}
		if doc.Stats != nil {
			out += "\n" + f.FormatStats(*doc.Stats)
		}
		return writeString(w, out)
	}
}

// WriteReports writes validation results. DOT and outline have no meaning for
// diagnostics and fall back to text.
func (f *Formatter) WriteReports(w io.Writer, format Format, reports []Report) error {
	switch format {
	case FormatJSON:
		if reports == nil {
			reports = []Report{}
		}
		return writeJSON(w, reports)
	case FormatMsgpack:
		return writeMsgpack(w, reports)
	default:
		var b strings.Builder
		for _, report := range reports {
			b.WriteString(f.FormatReport(report))
		}
		return writeString(w, b.String())
	}
}

// WriteNode writes a single search result.
func (f *Formatter) WriteNode(w io.Writer, format Format, node models.GraphNode) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, node)
	case FormatMsgpack:
		return writeMsgpack(w, node)
	default:
		var b strings.Builder
		b.WriteString(f.paint(f.styles.title, node.Label) + "\n")
		b.WriteString(fmt.Sprintf("  path      %s\n", f.paint(f.styles.path, node.Path)))
		b.WriteString(fmt.Sprintf("  kind      %s\n", node.Kind))
		b.WriteString(fmt.Sprintf("  id        %s\n", node.ID))
		b.WriteString(fmt.Sprintf("  position  %d,%d\n", node.Position.X, node.Position.Y))
		return writeString(w, b.String())
	}
}

// FormatReport renders one validation result as text.
func (f *Formatter) FormatReport(report Report) string {
	source := report.Source
	if source == "" {
		source = "<input>"
	}
	if report.Valid || report.Diagnostic == nil {
		return fmt.Sprintf("%s %s\n", f.paint(f.styles.ok, iconOK), source)
	}
	return f.FormatDiagnostic(source, report.Text, report.Diagnostic)
}

// FormatStats renders analyzer statistics as text.
func (f *Formatter) FormatStats(stats analyzer.Stats) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("nodes: %d (objects %d, arrays %d, primitives %d)\n",
		stats.Nodes, stats.Objects, stats.Arrays, stats.Primitives))
	b.WriteString(fmt.Sprintf("depth: %d, width: %d\n", stats.MaxDepth, stats.MaxWidth))

	if len(stats.Types) > 0 {
		types := make([]string, 0, len(stats.Types))
		for t := range stats.Types {
			types = append(types, string(t))
		}
		sort.Strings(types)

		parts := make([]string, len(types))
		for i, t := range types {
			parts[i] = fmt.Sprintf("%s %d", t, stats.Types[analyzer.ValueType(t)])
		}
		b.WriteString("types: " + strings.Join(parts, ", ") + "\n")
	}
	return b.String()
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return errors.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

func writeMsgpack(w io.Writer, v any) error {
	if err := msgpack.NewEncoder(w).Encode(v); err != nil {
		return errors.NewOutputError("failed to encode msgpack", err)
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return errors.NewOutputError("failed to write output", err)
	}
	return nil
}
