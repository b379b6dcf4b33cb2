package score

import (
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Levenshtein matches strings whose edit-distance similarity clears a
// configured threshold. The similarity of a pair is
//
//	(maxLen - distance) / maxLen
//
// scaled to [0,100], where maxLen counts runes of the longer string. Two
// empty strings are perfectly similar.
type Levenshtein struct {
	threshold int
}

// NewLevenshtein returns a scorer that reaches a verdict only when the
// similarity is at or above threshold.
func NewLevenshtein(threshold int) Levenshtein {
	return Levenshtein{threshold: threshold}
}

// Algorithm returns AlgorithmLevenshtein.
func (Levenshtein) Algorithm() Algorithm { return AlgorithmLevenshtein }

// Threshold returns the configured cutoff.
func (l Levenshtein) Threshold() int { return l.threshold }

// Score returns the similarity with a verdict when it meets the threshold,
// and abstains otherwise.
func (l Levenshtein) Score(a, b string) (int, bool) {
	s := Similarity(a, b)
	if s >= l.threshold {
		return s, true
	}
	return 0, false
}

// Similarity computes the scaled edit-distance similarity of two strings.
// It is symmetric, total, and returns 100 for identical inputs.
func Similarity(a, b string) int {
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(float64(maxLen-dist) / float64(maxLen) * 100))
}
