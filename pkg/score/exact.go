package score

// ExactScore is the score awarded for an identical pair.
const ExactScore = 100

// Exact matches identical normalized strings. Two empty strings are
// identical and therefore match.
type Exact struct{}

// Algorithm returns AlgorithmExact.
func (Exact) Algorithm() Algorithm { return AlgorithmExact }

// Score returns 100 with a verdict when the strings are byte-equal, and
// abstains otherwise.
func (Exact) Score(a, b string) (int, bool) {
	if a == b {
		return ExactScore, true
	}
	return 0, false
}
