package analyzer

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mcncl/jsongraph/internal/models"
)

// ValueType is the inferred type of a decoded value.
type ValueType string

const (
	TypeObject    ValueType = "object"
	TypeArray     ValueType = "array"
	TypeString    ValueType = "string"
	TypeInteger   ValueType = "integer"
	TypeFloat     ValueType = "float"
	TypeBoolean   ValueType = "boolean"
	TypeNull      ValueType = "null"
	TypeTimestamp ValueType = "timestamp"
	TypeUUID      ValueType = "uuid"
)

// Regex patterns for special strings
var (
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	// Time format patterns (ordered by specificity - most specific first)
	rfc3339Regex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)            // 2006-01-02T15:04:05Z
	iso8601Regex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?([+-]\d{2}:\d{2}|Z|[+-]\d{4})?$`) // ISO8601 variants
	dateOnlyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)                                                         // 2006-01-02
	dateTimeRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`)                               // 2006-01-02 15:04:05
)

// Stats summarizes the shape of a decoded value.
type Stats struct {
	Nodes      int `json:"nodes" msgpack:"nodes"`
	Objects    int `json:"objects" msgpack:"objects"`
	Arrays     int `json:"arrays" msgpack:"arrays"`
	Primitives int `json:"primitives" msgpack:"primitives"`
	// MaxDepth is the deepest level below the root; a lone primitive has depth 0.
	MaxDepth int `json:"max_depth" msgpack:"max_depth"`
	// MaxWidth is the largest number of nodes on a single level.
	MaxWidth int `json:"max_width" msgpack:"max_width"`
	// Types counts leaves by inferred type. Empty when type detection is off.
	Types map[ValueType]int `json:"types,omitempty" msgpack:"types,omitempty"`
}

// Analyzer walks decoded values and collects Stats
type Analyzer struct {
	// detectTypes enables per-leaf type inference
	detectTypes bool
}

// NewAnalyzer creates a new Analyzer that infers leaf types.
func NewAnalyzer() *Analyzer {
	return &Analyzer{detectTypes: true}
}

// NewAnalyzerWithTypes creates an Analyzer; detectTypes controls leaf type inference.
func NewAnalyzerWithTypes(detectTypes bool) *Analyzer {
	return &Analyzer{detectTypes: detectTypes}
}

// Analyze computes Stats for value using a default Analyzer.
func Analyze(value models.JSONValue) Stats {
	return NewAnalyzer().Analyze(value)
}

// Analyze walks value, counting every node the graph transformer would emit.
func (a *Analyzer) Analyze(value models.JSONValue) Stats {
	stats := Stats{}
	if a.detectTypes {
		stats.Types = make(map[ValueType]int)
	}
	widths := make(map[int]int)

	a.analyzeNode(value, 0, &stats, widths)

	for _, width := range widths {
		stats.MaxWidth = max(stats.MaxWidth, width)
	}
	return stats
}

// analyzeNode is the recursive walk behind Analyze.
func (a *Analyzer) analyzeNode(node models.JSONValue, depth int, stats *Stats, widths map[int]int) {
	stats.Nodes++
	stats.MaxDepth = max(stats.MaxDepth, depth)
	widths[depth]++

	switch v := node.(type) {
	case models.JSONObject:
		stats.Objects++
		for _, member := range v {
			a.analyzeNode(member.Value, depth+1, stats, widths)
		}
	case models.JSONArray:
		stats.Arrays++
		for _, item := range v {
			a.analyzeNode(item, depth+1, stats, widths)
		}
	default:
		stats.Primitives++
		if stats.Types != nil {
			stats.Types[InferType(v)]++
		}
	}
}

// InferType returns the type of a single decoded value.
func InferType(value models.JSONValue) ValueType {
	switch v := value.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case string:
		return inferString(v)
	case json.Number:
		return inferNumber(v)
	case models.JSONObject:
		return TypeObject
	case models.JSONArray:
		return TypeArray
	default:
		return TypeString
	}
}

func inferString(s string) ValueType {
	if uuidRegex.MatchString(s) {
		return TypeUUID
	}
	if rfc3339Regex.MatchString(s) || iso8601Regex.MatchString(s) || dateOnlyRegex.MatchString(s) || dateTimeRegex.MatchString(s) {
		return TypeTimestamp
	}
	return TypeString
}

func inferNumber(num json.Number) ValueType {
	// Try to parse as integer first
	if _, err := num.Int64(); err == nil {
		return TypeInteger
	}
	// Integers beyond int64 are still integers
	if !strings.ContainsAny(num.String(), ".eE") {
		return TypeInteger
	}
	return TypeFloat
}

// DescendantCount returns how many array elements and object members value
// contains, recursively. A graph of value has DescendantCount(value)+1 nodes.
func DescendantCount(value models.JSONValue) int {
	count := 0
	switch v := value.(type) {
	case models.JSONObject:
		for _, member := range v {
			count += 1 + DescendantCount(member.Value)
		}
	case models.JSONArray:
		for _, item := range v {
			count += 1 + DescendantCount(item)
		}
	}
	return count
}
