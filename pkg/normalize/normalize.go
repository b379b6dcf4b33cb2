// Package normalize provides deterministic string canonicalization applied
// to every compared cell value before any comparison. Two inputs that
// normalize identically are exact-equal regardless of original casing or
// punctuation.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/crossmap/pkg/tabular"
)

// Config holds the independent normalization toggles. Steps apply in a
// fixed order when enabled: lowercase folding, whitespace trim, special
// character stripping, digit stripping. Whitespace-run collapsing always
// runs last regardless of toggles.
type Config struct {
	Lowercase    bool `json:"lowercase" yaml:"lowercase"`
	Trim         bool `json:"trim" yaml:"trim"`
	StripSpecial bool `json:"strip_special" yaml:"strip_special"`
	StripDigits  bool `json:"strip_digits" yaml:"strip_digits"`
}

// DefaultConfig returns the toggles most joins want: case-insensitive,
// trimmed, punctuation-free comparison with digits kept.
func DefaultConfig() Config {
	return Config{
		Lowercase:    true,
		Trim:         true,
		StripSpecial: true,
		StripDigits:  false,
	}
}

// lower gives Unicode-correct lowercase folding, shared across calls.
var lower = cases.Lower(language.Und)

// Value normalizes any cell value. It is total: nil maps to the empty
// string and no input fails. Non-string values are coerced first.
func Value(v any, c Config) string {
	return String(tabular.AsString(v), c)
}

// String normalizes an already-coerced string according to the config.
// Idempotent: String(String(s, c), c) == String(s, c) for any s and c.
func String(s string, c Config) string {
	if c.Lowercase {
		s = lower.String(s)
	}
	if c.Trim {
		s = strings.TrimSpace(s)
	}
	if c.StripSpecial {
		s = stripSpecial(s)
	}
	if c.StripDigits {
		s = stripDigits(s)
	}
	s = collapseWhitespace(s)
	// Stripping can expose new edge whitespace, so trim must run again
	// after it for the result to be a fixed point.
	if c.Trim {
		s = strings.TrimSpace(s)
	}
	return s
}

// stripSpecial removes every character that is not an ASCII letter, digit,
// whitespace, or the pipe character. Pipe is reserved for composite-key
// encoding by callers.
func stripSpecial(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '|':
			b.WriteRune(r)
		case isSpace(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripDigits removes ASCII digits.
func stripDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// collapseWhitespace replaces every run of whitespace with a single space.
// Runs at the edges collapse to one space too; they only vanish when the
// trim toggle removed them earlier.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if isSpace(r) {
			inRun = true
			continue
		}
		if inRun {
			b.WriteByte(' ')
			inRun = false
		}
		b.WriteRune(r)
	}
	if inRun {
		b.WriteByte(' ')
	}
	return b.String()
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
