// Package graph flattens decoded values into positioned nodes and edges and
// finds nodes by path.
package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mcncl/jsongraph/internal/models"
)

// Layout controls node spacing. Each depth level is a column HorizontalSpacing
// apart; nodes within a column are stacked VerticalSpacing apart in visit order.
type Layout struct {
	HorizontalSpacing int `yaml:"horizontal_spacing"`
	VerticalSpacing   int `yaml:"vertical_spacing"`
}

// DefaultLayout is the spacing used by NewTransformer.
var DefaultLayout = Layout{HorizontalSpacing: 200, VerticalSpacing: 100}

// Transformer converts decoded values into graphs. It holds no per-call state
// and is safe for concurrent use.
type Transformer struct {
	layout Layout
}

// NewTransformer creates a Transformer with DefaultLayout.
func NewTransformer() *Transformer {
	return NewTransformerWithLayout(DefaultLayout)
}

// NewTransformerWithLayout creates a Transformer with custom spacing.
func NewTransformerWithLayout(layout Layout) *Transformer {
	return &Transformer{layout: layout}
}

// Transform converts value with DefaultLayout.
func Transform(value models.JSONValue) models.Graph {
	return NewTransformer().Transform(value)
}

// Transform walks value depth first, emitting each container before its
// children. A fault during the walk yields an empty graph.
func (t *Transformer) Transform(value models.JSONValue) (graph models.Graph) {
	defer func() {
		if r := recover(); r != nil {
			graph = emptyGraph()
		}
	}()

	p := &pass{
		layout:  t.layout,
		columns: make(map[int]int),
	}
	p.visit(value, "", models.RootKey, models.RootPath, 0)

	return models.Graph{Nodes: p.nodes, Edges: p.edges}
}

func emptyGraph() models.Graph {
	return models.Graph{Nodes: []models.GraphNode{}, Edges: []models.GraphEdge{}}
}

// pass is the state of a single conversion: the id counter and the number of
// nodes already placed in each column.
type pass struct {
	layout  Layout
	next    int
	columns map[int]int
	nodes   []models.GraphNode
	edges   []models.GraphEdge
}

func (p *pass) visit(value models.JSONValue, parentID, key, path string, level int) {
	id := fmt.Sprintf("node-%d", p.next)
	p.next++

	x := level * p.layout.HorizontalSpacing
	y := p.columns[x] * p.layout.VerticalSpacing
	p.columns[x]++

	node := models.GraphNode{
		ID:       id,
		Key:      key,
		Value:    value,
		Path:     path,
		Position: models.Position{X: x, Y: y},
	}

	var children []models.Member
	var childPath func(member models.Member, index int) string

	switch v := value.(type) {
	case models.JSONArray:
		node.Kind = models.KindArray
		node.Label = fmt.Sprintf("%s[%d]", key, len(v))
		children = indexMembers(v)
		childPath = func(_ models.Member, index int) string { return fmt.Sprintf("%s[%d]", path, index) }
	case []any:
		node.Kind = models.KindArray
		node.Label = fmt.Sprintf("%s[%d]", key, len(v))
		children = indexMembers(v)
		childPath = func(_ models.Member, index int) string { return fmt.Sprintf("%s[%d]", path, index) }
	case models.JSONObject:
		node.Kind = models.KindObject
		node.Label = key
		children = v
		childPath = func(member models.Member, _ int) string { return memberPath(path, member.Key) }
	case map[string]any:
		node.Kind = models.KindObject
		node.Label = key
		children = sortedMembers(v)
		childPath = func(member models.Member, _ int) string { return memberPath(path, member.Key) }
	default:
		node.Kind = models.KindPrimitive
		node.Label = key + ": " + primitiveText(v)
	}

	p.nodes = append(p.nodes, node)
	if parentID != "" {
		p.edges = append(p.edges, models.GraphEdge{
			ID:     "edge-" + parentID + "-" + id,
			Source: parentID,
			Target: id,
		})
	}

	for i, child := range children {
		p.visit(child.Value, id, child.Key, childPath(child, i), level+1)
	}
}

func memberPath(parent, key string) string {
	return parent + "." + key
}

func indexMembers[T any](items []T) []models.Member {
	members := make([]models.Member, len(items))
	for i, item := range items {
		members[i] = models.Member{Key: strconv.Itoa(i), Value: item}
	}
	return members
}

// sortedMembers orders a plain map by key so the walk stays deterministic.
func sortedMembers(m map[string]any) []models.Member {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	members := make([]models.Member, len(keys))
	for i, k := range keys {
		members[i] = models.Member{Key: k, Value: m[k]}
	}
	return members
}

// primitiveText renders a leaf as JSON text.
func primitiveText(value models.JSONValue) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case json.Number:
		return v.String()
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return fmt.Sprint(value)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
