package models

// JSONValue is a generic type to represent any decoded structured value.
// This can be a string, json.Number, boolean, nil, JSONObject, or JSONArray.
type JSONValue interface{}

// Member is a single key/value pair of a JSONObject.
type Member struct {
	Key   string
	Value JSONValue
}

// JSONObject represents an object as an ordered list of members.
// Member order is the order in which keys first appeared in the source document.
type JSONObject []Member

// JSONArray represents an array, which is a slice of JSONValues.
type JSONArray []JSONValue

// Get returns the value stored under key.
func (o JSONObject) Get(key string) (JSONValue, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns the member keys in order.
func (o JSONObject) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// Set stores value under key. An existing key keeps its position and takes the new value.
func (o JSONObject) Set(key string, value JSONValue) JSONObject {
	for i := range o {
		if o[i].Key == key {
			o[i].Value = value
			return o
		}
	}
	return append(o, Member{Key: key, Value: value})
}

// Diagnostic describes why a piece of input failed validation.
// Line and Column are 1-indexed, Offset is a 0-indexed byte offset into the original text.
type Diagnostic struct {
	Message    string `json:"message" msgpack:"message"`
	Line       int    `json:"line" msgpack:"line"`
	Column     int    `json:"column" msgpack:"column"`
	Offset     int    `json:"offset" msgpack:"offset"`
	Context    string `json:"context" msgpack:"context"`
	Suggestion string `json:"suggestion,omitempty" msgpack:"suggestion,omitempty"`
}

// NodeKind classifies a graph node.
type NodeKind string

const (
	KindObject    NodeKind = "object"
	KindArray     NodeKind = "array"
	KindPrimitive NodeKind = "primitive"
)

// RootKey is the key given to the node of the decoded value itself.
const RootKey = "root"

// RootPath is the path locator of the root node.
const RootPath = "$"

// Position is a 2-D layout coordinate.
type Position struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// GraphNode is one renderable node of a converted value.
type GraphNode struct {
	ID          string    `json:"id" msgpack:"id"`
	Kind        NodeKind  `json:"kind" msgpack:"kind"`
	Key         string    `json:"key" msgpack:"key"`
	Value       JSONValue `json:"-" msgpack:"-"`
	Path        string    `json:"path" msgpack:"path"`
	Label       string    `json:"label" msgpack:"label"`
	Position    Position  `json:"position" msgpack:"position"`
	Highlighted bool      `json:"highlighted,omitempty" msgpack:"highlighted,omitempty"`
}

// GraphEdge connects a parent node to one of its children.
type GraphEdge struct {
	ID     string `json:"id" msgpack:"id"`
	Source string `json:"source" msgpack:"source"`
	Target string `json:"target" msgpack:"target"`
}

// Graph is the flattened form of a decoded value.
type Graph struct {
	Nodes []GraphNode `json:"nodes" msgpack:"nodes"`
	Edges []GraphEdge `json:"edges" msgpack:"edges"`
}

// IsEmpty reports whether the graph has nothing to render.
func (g Graph) IsEmpty() bool {
	return len(g.Nodes) == 0
}
