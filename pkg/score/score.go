// Package score provides the similarity scorers used by the join engine.
// Each scorer is a pure function over two already-normalized strings that
// either returns a verdict with a score in [0,100] or abstains.
package score

// Algorithm identifies a matching strategy.
type Algorithm string

// Matching algorithms, in cascade priority order.
const (
	AlgorithmExact       Algorithm = "EXACT"
	AlgorithmPhonetic    Algorithm = "PHONETIC"
	AlgorithmLevenshtein Algorithm = "LEVENSHTEIN"
	AlgorithmSemantic    Algorithm = "SEMANTIC"
)

// Valid reports whether the algorithm is one crossmap knows.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmExact, AlgorithmPhonetic, AlgorithmLevenshtein, AlgorithmSemantic:
		return true
	}
	return false
}

// Scorer scores a pair of normalized strings. The boolean reports whether
// the scorer reached a verdict; false means it abstains and the score is
// meaningless.
type Scorer interface {
	// Algorithm returns the strategy this scorer implements.
	Algorithm() Algorithm

	// Score compares two normalized strings.
	Score(a, b string) (int, bool)
}

// scorerPriority is the fixed consultation order: the first scorer to
// produce a verdict decides both the match flag and the contributing score.
var scorerPriority = []Algorithm{AlgorithmExact, AlgorithmPhonetic, AlgorithmLevenshtein}

// ForAlgorithms builds the scorer chain for the enabled algorithms in the
// fixed priority order (exact, then phonetic, then levenshtein). The
// semantic algorithm is batch-oriented and handled outside the chain, so it
// never yields a Scorer here. Unknown algorithms are ignored.
func ForAlgorithms(algorithms []Algorithm, threshold int) []Scorer {
	enabled := make(map[Algorithm]bool, len(algorithms))
	for _, a := range algorithms {
		enabled[a] = true
	}

	var chain []Scorer
	for _, a := range scorerPriority {
		if !enabled[a] {
			continue
		}
		switch a {
		case AlgorithmExact:
			chain = append(chain, Exact{})
		case AlgorithmPhonetic:
			chain = append(chain, Phonetic{})
		case AlgorithmLevenshtein:
			chain = append(chain, NewLevenshtein(threshold))
		}
	}
	return chain
}

// First consults the chain in order and returns the first verdict along
// with the algorithm that produced it.
func First(chain []Scorer, a, b string) (int, Algorithm, bool) {
	for _, s := range chain {
		if v, ok := s.Score(a, b); ok {
			return v, s.Algorithm(), true
		}
	}
	return 0, "", false
}
