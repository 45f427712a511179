package graph

import (
	"strings"

	"github.com/mcncl/jsongraph/internal/models"
)

// Search finds the first node whose path equals query, or failing that the
// first whose path contains query ignoring case. Nodes are scanned in order.
// A blank query or an empty node list never matches.
func Search(nodes []models.GraphNode, query string) (models.GraphNode, bool) {
	if strings.TrimSpace(query) == "" || len(nodes) == 0 {
		return models.GraphNode{}, false
	}

	for _, node := range nodes {
		if node.Path == query {
			return node, true
		}
	}

	needle := strings.ToLower(query)
	for _, node := range nodes {
		if strings.Contains(strings.ToLower(node.Path), needle) {
			return node, true
		}
	}
	return models.GraphNode{}, false
}

// Highlight returns a copy of nodes in which only the node with id is highlighted.
// An id that matches nothing clears every highlight.
func Highlight(nodes []models.GraphNode, id string) []models.GraphNode {
	out := make([]models.GraphNode, len(nodes))
	for i, node := range nodes {
		node.Highlighted = id != "" && node.ID == id
		out[i] = node
	}
	return out
}
