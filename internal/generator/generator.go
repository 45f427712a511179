package generator

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mcncl/jsongraph/internal/models"
)

// DefaultGraphName is the DOT graph identifier used when none is given.
const DefaultGraphName = "jsongraph"

// NodeStyle is the palette for one kind of node.
type NodeStyle struct {
	Fill   string
	Border string
	Font   string
}

var (
	styles = map[models.NodeKind]NodeStyle{
		models.KindObject:    {Fill: "#e0e7ff", Border: "#3b82f6", Font: "#1e40af"},
		models.KindArray:     {Fill: "#d1fae5", Border: "#10b981", Font: "#047857"},
		models.KindPrimitive: {Fill: "#fef3c7", Border: "#f59e0b", Font: "#d97706"},
	}
	highlightedStyles = map[models.NodeKind]NodeStyle{
		models.KindObject:    {Fill: "#3b82f6", Border: "#1d4ed8", Font: "#ffffff"},
		models.KindArray:     {Fill: "#10b981", Border: "#047857", Font: "#ffffff"},
		models.KindPrimitive: {Fill: "#f59e0b", Border: "#d97706", Font: "#ffffff"},
	}
)

// StyleFor returns the palette for a node kind.
func StyleFor(kind models.NodeKind, highlighted bool) NodeStyle {
	palette := styles
	if highlighted {
		palette = highlightedStyles
	}
	if style, ok := palette[kind]; ok {
		return style
	}
	return palette[models.KindPrimitive]
}

// Generator is responsible for rendering graphs as text
type Generator struct {
	graphName string
}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{graphName: DefaultGraphName}
}

// NewGeneratorWithName creates a Generator whose DOT output uses name as the graph identifier
func NewGeneratorWithName(name string) *Generator {
	if strings.TrimSpace(name) == "" {
		name = DefaultGraphName
	}
	return &Generator{graphName: name}
}

// GenerateDOT renders graph as a Graphviz digraph
func (g *Generator) GenerateDOT(graph models.Graph) (string, error) {
	if err := checkEdges(graph); err != nil {
		return "", err
	}

	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("digraph %s {\n", strconv.Quote(g.graphName)))
	buf.WriteString("\trankdir=LR;\n")
	buf.WriteString("\tnode [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12];\n")

	if len(graph.Nodes) > 0 {
		buf.WriteString("\n")
	}
	for _, node := range graph.Nodes {
		style := StyleFor(node.Kind, node.Highlighted)
		buf.WriteString(fmt.Sprintf("\t%s [label=%s, tooltip=%s, fillcolor=%q, color=%q, fontcolor=%q",
			strconv.Quote(node.ID), strconv.Quote(node.Label), strconv.Quote(node.Path),
			style.Fill, style.Border, style.Font))
		if node.Highlighted {
			buf.WriteString(", penwidth=3")
		}
		buf.WriteString("];\n")
	}

	if len(graph.Edges) > 0 {
		buf.WriteString("\n")
	}
	for _, edge := range graph.Edges {
		buf.WriteString(fmt.Sprintf("\t%s -> %s;\n", strconv.Quote(edge.Source), strconv.Quote(edge.Target)))
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

// GenerateOutline renders graph as an indented tree, one node per line
// followed by its path. Highlighted nodes are marked with "*".
func (g *Generator) GenerateOutline(graph models.Graph) (string, error) {
	if err := checkEdges(graph); err != nil {
		return "", err
	}

	depths := Depths(graph)

	// Paths line up by display width, so wide labels pad less
	maxWidth := 0
	for _, node := range graph.Nodes {
		maxWidth = max(maxWidth, 2*depths[node.ID]+runewidth.StringWidth(node.Label))
	}

	var buf bytes.Buffer
	for _, node := range graph.Nodes {
		text := strings.Repeat("  ", depths[node.ID]) + node.Label
		marker := " "
		if node.Highlighted {
			marker = "*"
		}
		padding := strings.Repeat(" ", maxWidth-runewidth.StringWidth(text))
		buf.WriteString(fmt.Sprintf("%s %s%s  %s\n", marker, text, padding, node.Path))
	}
	return buf.String(), nil
}

// Depths returns the distance of every node from the root, keyed by node id.
// Nodes must be in pre-order so parents are seen before their children.
func Depths(graph models.Graph) map[string]int {
	parents := make(map[string]string, len(graph.Edges))
	for _, edge := range graph.Edges {
		parents[edge.Target] = edge.Source
	}

	depths := make(map[string]int, len(graph.Nodes))
	for _, node := range graph.Nodes {
		if parent, ok := parents[node.ID]; ok {
			depths[node.ID] = depths[parent] + 1
		}
	}
	return depths
}

// checkEdges rejects edges that point at nodes the graph does not contain
func checkEdges(graph models.Graph) error {
	ids := make(map[string]struct{}, len(graph.Nodes))
	for _, node := range graph.Nodes {
		ids[node.ID] = struct{}{}
	}
	for _, edge := range graph.Edges {
		if _, ok := ids[edge.Source]; !ok {
			return fmt.Errorf("edge %s: unknown source node %q", edge.ID, edge.Source)
		}
		if _, ok := ids[edge.Target]; !ok {
			return fmt.Errorf("edge %s: unknown target node %q", edge.ID, edge.Target)
		}
	}
	return nil
}
