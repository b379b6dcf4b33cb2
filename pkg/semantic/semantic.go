// Package semantic defines the optional external matching collaborator
// consulted for master rows the cascade could not match. Implementations
// are batch-oriented and must degrade to "no suggestion" on any failure; a
// semantic matcher never aborts a join.
package semantic

import "context"

// Confidence labels how sure the collaborator is about a suggestion.
type Confidence string

// Confidence levels, strongest first.
const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Suggestion is the collaborator's answer for one query string.
type Suggestion struct {
	// Reference indexes the reference list, or -1 for no suggestion.
	Reference int `json:"reference"`

	Confidence Confidence `json:"confidence"`
}

// None is the empty suggestion.
func None() Suggestion { return Suggestion{Reference: -1} }

// Matcher matches query strings against reference strings.
type Matcher interface {
	// Match returns exactly one suggestion per query, in query order.
	// Failures of any kind (missing credential, network, malformed
	// response) surface as no-suggestion answers, never as an error.
	Match(ctx context.Context, references, queries []string) []Suggestion
}

// Noop is a Matcher that never suggests anything. It is the default when
// no external collaborator is configured and doubles as a test stand-in.
type Noop struct{}

// Match returns a no-suggestion answer for every query.
func (Noop) Match(_ context.Context, _ []string, queries []string) []Suggestion {
	out := make([]Suggestion, len(queries))
	for i := range out {
		out[i] = None()
	}
	return out
}
