package diagnostic

import "strings"

// Remediation hints.
const (
	SuggestQuote         = "check for unescaped quotes or a missing comma before this string"
	SuggestBrace         = "check for a missing comma before this closing brace"
	SuggestBracket       = "check for a missing comma before this closing bracket"
	SuggestTrailingComma = "remove the trailing comma or add another property/element"
	SuggestIncomplete    = "input is incomplete — check for missing closing braces or brackets"
	SuggestPropertyName  = "property names must be quoted strings"
	SuggestControlChar   = "escape control characters such as newlines and tabs inside strings"
	SuggestYAMLIndent    = "indent with spaces; YAML does not allow tab characters for indentation"
)

// Rule maps a failure message to a hint when every trigger occurs in it.
type Rule struct {
	Triggers   []string
	Suggestion string
}

// Matches reports whether all triggers occur in message. Matching is case-sensitive.
func (r Rule) Matches(message string) bool {
	for _, trigger := range r.Triggers {
		if !strings.Contains(message, trigger) {
			return false
		}
	}
	return len(r.Triggers) > 0
}

// Rules are evaluated in order; the first match wins. The phrases are the ones
// encoding/json and yaml.v3 emit: "invalid character" is the unexpected-token
// phrase, and a trailing comma shows up as a closing token where a key or value
// should start, so those two phrasings sit ahead of the generic brace/bracket rules.
var Rules = []Rule{
	{Triggers: []string{"invalid character", `'"'`}, Suggestion: SuggestQuote},
	{Triggers: []string{"invalid character '}' looking for beginning of object key string"}, Suggestion: SuggestTrailingComma},
	{Triggers: []string{"invalid character ']' looking for beginning of value"}, Suggestion: SuggestTrailingComma},
	{Triggers: []string{"invalid character", "'}'"}, Suggestion: SuggestBrace},
	{Triggers: []string{"invalid character", "']'"}, Suggestion: SuggestBracket},
	{Triggers: []string{"invalid character", "','"}, Suggestion: SuggestTrailingComma},
	{Triggers: []string{"unexpected end of JSON input"}, Suggestion: SuggestIncomplete},
	{Triggers: []string{"looking for beginning of object key string"}, Suggestion: SuggestPropertyName},
	{Triggers: []string{"invalid character", "in string literal"}, Suggestion: SuggestControlChar},
	{Triggers: []string{"found a tab character that violates indentation"}, Suggestion: SuggestYAMLIndent},
}

// Classify returns the hint for a raw failure message, or "" when no rule applies.
func Classify(message string) string {
	for _, rule := range Rules {
		if rule.Matches(message) {
			return rule.Suggestion
		}
	}
	return ""
}
