package generator

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsongraph/internal/diagnostic"
	"github.com/mcncl/jsongraph/internal/graph"
	"github.com/mcncl/jsongraph/internal/models"
	"github.com/mcncl/jsongraph/internal/parser"
)

func sampleGraph(t *testing.T) models.Graph {
	t.Helper()
	value, failure := parser.JSONDecoder{}.TryDecode(`{"a": [1], "b": "x"}`)
	require.Nil(t, failure)
	return graph.Transform(value)
}

func TestGenerateDOT(t *testing.T) {
	result, err := NewGenerator().GenerateDOT(sampleGraph(t))
	require.NoError(t, err)

	expected := `digraph "jsongraph" {
	rankdir=LR;
	node [shape=box, style="rounded,filled", fontname="Helvetica", fontsize=12];

	"node-0" [label="root", tooltip="$", fillcolor="#e0e7ff", color="#3b82f6", fontcolor="#1e40af"];
	"node-1" [label="a[1]", tooltip="$.a", fillcolor="#d1fae5", color="#10b981", fontcolor="#047857"];
	"node-2" [label="0: 1", tooltip="$.a[0]", fillcolor="#fef3c7", color="#f59e0b", fontcolor="#d97706"];
	"node-3" [label="b: \"x\"", tooltip="$.b", fillcolor="#fef3c7", color="#f59e0b", fontcolor="#d97706"];

	"node-0" -> "node-1";
	"node-1" -> "node-2";
	"node-0" -> "node-3";
}
`
	assert.Equal(t, expected, result)
}

func TestGenerateDOT_Highlighted(t *testing.T) {
	g := sampleGraph(t)
	g.Nodes = graph.Highlight(g.Nodes, "node-1")

	result, err := NewGeneratorWithName("data").GenerateDOT(g)
	require.NoError(t, err)
	assert.Contains(t, result, `digraph "data" {`)
	assert.Contains(t, result, `"node-1" [label="a[1]", tooltip="$.a", fillcolor="#10b981", color="#047857", fontcolor="#ffffff", penwidth=3];`)
}

func TestGenerateDOT_EmptyGraph(t *testing.T) {
	result, err := NewGeneratorWithName("  ").GenerateDOT(models.Graph{})
	require.NoError(t, err)
	assert.Equal(t, "digraph \"jsongraph\" {\n\trankdir=LR;\n\tnode [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12];\n}\n", result)
}

func TestGenerateDOT_DanglingEdge(t *testing.T) {
	g := models.Graph{
		Nodes: []models.GraphNode{{ID: "node-0"}},
		Edges: []models.GraphEdge{{ID: "edge-node-0-node-9", Source: "node-0", Target: "node-9"}},
	}
	_, err := NewGenerator().GenerateDOT(g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown target node")

	_, err = NewGenerator().GenerateOutline(g)
	assert.Error(t, err)
}

func TestGenerateOutline(t *testing.T) {
	g := sampleGraph(t)
	g.Nodes = graph.Highlight(g.Nodes, "node-3")

	result, err := NewGenerator().GenerateOutline(g)
	require.NoError(t, err)

	expected := "  root      $\n" +
		"    a[1]    $.a\n" +
		"      0: 1  $.a[0]\n" +
		"*   b: \"x\"  $.b\n"
	assert.Equal(t, expected, result)
}

func TestGenerateOutline_WideLabels(t *testing.T) {
	value, failure := parser.JSONDecoder{}.TryDecode(`{"名前": "太郎", "a": 1}`)
	require.Nil(t, failure)

	result, err := NewGenerator().GenerateOutline(graph.Transform(value))
	require.NoError(t, err)

	// "名前: \"太郎\"" is 12 cells wide, so the widest line is 14 cells
	expected := "  root" + strings.Repeat(" ", 10) + "  $\n" +
		"    名前: \"太郎\"  $.名前\n" +
		"    a: 1" + strings.Repeat(" ", 8) + "  $.a\n"
	assert.Equal(t, expected, result)

	for _, line := range strings.Split(strings.TrimSuffix(result, "\n"), "\n") {
		i := strings.Index(line, "  $")
		assert.Equal(t, 16, runewidth.StringWidth(line[:i]), line)
	}
}

func TestDepths(t *testing.T) {
	depths := Depths(sampleGraph(t))
	assert.Equal(t, map[string]int{"node-0": 0, "node-1": 1, "node-2": 2, "node-3": 1}, depths)
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, "#e0e7ff", StyleFor(models.KindObject, false).Fill)
	assert.Equal(t, "#ffffff", StyleFor(models.KindArray, true).Font)
	assert.Equal(t, StyleFor(models.KindPrimitive, false), StyleFor("unknown", false))
}

func TestSamples(t *testing.T) {
	assert.Nil(t, diagnostic.Diagnose(Sample()))

	d := diagnostic.Diagnose(BrokenSample())
	require.NotNil(t, d)
	assert.Equal(t, 7, d.Line, "the missing comma after the city is found first")
	assert.Equal(t, diagnostic.SuggestQuote, d.Suggestion)
}
