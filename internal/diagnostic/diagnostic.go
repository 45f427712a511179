// Package diagnostic turns opaque decoder failures into located, explained
// diagnostics.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsongraph/internal/models"
	"github.com/mcncl/jsongraph/internal/parser"
)

// EmptyInputMessage is reported for blank input.
const EmptyInputMessage = "empty input"

// Result is the outcome of one validation pass. Exactly one of Value and
// Diagnostic is meaningful: Diagnostic is nil when the input decoded.
type Result struct {
	Value      models.JSONValue
	Diagnostic *models.Diagnostic
}

// Valid reports whether the input decoded.
func (r Result) Valid() bool {
	return r.Diagnostic == nil
}

// Builder validates text with a Decoder and assembles diagnostics.
type Builder struct {
	decoder parser.Decoder
	before  int
	after   int
}

// NewBuilder creates a Builder with the default context window.
func NewBuilder(decoder parser.Decoder) *Builder {
	return NewBuilderWithWindow(decoder, DefaultLinesBefore, DefaultLinesAfter)
}

// NewBuilderWithWindow creates a Builder that shows before/after lines of context.
func NewBuilderWithWindow(decoder parser.Decoder, before, after int) *Builder {
	if decoder == nil {
		decoder = parser.JSONDecoder{}
	}
	return &Builder{
		decoder: decoder,
		before:  max(0, before),
		after:   max(0, after),
	}
}

// Diagnose validates text with the JSON decoder.
func Diagnose(text string) *models.Diagnostic {
	return NewBuilder(parser.JSONDecoder{}).Diagnose(text)
}

// Diagnose returns nil for valid input and a diagnostic otherwise.
func (b *Builder) Diagnose(text string) *models.Diagnostic {
	return b.Validate(text).Diagnostic
}

// Validate decodes text. It never panics: a decoder fault is reported as a
// diagnostic at the start of the input.
func (b *Builder) Validate(text string) (result Result) {
	if strings.TrimSpace(text) == "" {
		return Result{Diagnostic: &models.Diagnostic{
			Message: EmptyInputMessage,
			Line:    1,
			Column:  1,
		}}
	}

	defer func() {
		if r := recover(); r != nil {
			result = Result{Diagnostic: b.Build(text, &parser.Failure{
				Message: fmt.Sprintf("decoder failure: %v", r),
			})}
		}
	}()

	value, failure := b.decoder.TryDecode(text)
	if failure != nil {
		return Result{Diagnostic: b.Build(text, failure)}
	}
	return Result{Value: value}
}

// Build assembles the diagnostic for a failure on text.
func (b *Builder) Build(text string, failure *parser.Failure) *models.Diagnostic {
	offset := ExtractOffset(text, failure)
	location := Resolve(text, offset)

	message := ""
	if failure != nil {
		message = failure.Message
	}

	return &models.Diagnostic{
		Message:    message,
		Line:       location.Line,
		Column:     location.Column,
		Offset:     offset,
		Context:    ExtractWindow(text, location.Line, b.before, b.after),
		Suggestion: Classify(message),
	}
}
