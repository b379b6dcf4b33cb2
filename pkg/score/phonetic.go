package score

import "strings"

// PhoneticScore is the score awarded when two strings share a Soundex code.
const PhoneticScore = 90

// Phonetic matches strings that sound alike under a four-character Soundex
// encoding. It deliberately scores below Exact so a sounds-alike pair never
// outranks an identical one.
type Phonetic struct{}

// Algorithm returns AlgorithmPhonetic.
func (Phonetic) Algorithm() Algorithm { return AlgorithmPhonetic }

// Score returns 90 with a verdict when both strings encode to the same
// Soundex code, and abstains otherwise.
func (Phonetic) Score(a, b string) (int, bool) {
	if Soundex(a) == Soundex(b) {
		return PhoneticScore, true
	}
	return 0, false
}

// soundexClass maps a lowercase consonant to its Soundex digit, or 0 for
// letters that are dropped (vowels plus h, w, y).
func soundexClass(r byte) byte {
	switch r {
	case 'b', 'f', 'p', 'v':
		return '1'
	case 'c', 'g', 'j', 'k', 'q', 's', 'x', 'z':
		return '2'
	case 'd', 't':
		return '3'
	case 'l':
		return '4'
	case 'm', 'n':
		return '5'
	case 'r':
		return '6'
	}
	return 0
}

// Soundex encodes a normalized string as a four-character phonetic code:
// the first letter, followed by the digit classes of the remaining
// consonants with consecutive duplicates collapsed, zero-padded or
// truncated to length four. A string with no letters encodes as "0000" so
// that degenerate inputs still compare equal to each other.
func Soundex(s string) string {
	s = strings.ToLower(s)

	// Locate the leading letter. Digits and punctuation never survive
	// normalization, but the encoder stays total regardless.
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			start = i
			break
		}
	}
	if start < 0 {
		return "0000"
	}

	var code [4]byte
	code[0] = s[start] - 'a' + 'A'
	n := 1

	// Dropped letters are removed before the digit sequence is collapsed,
	// so they never break a run of identical digits.
	var prev byte
	for i := start + 1; i < len(s) && n < 4; i++ {
		c := s[i]
		if c < 'a' || c > 'z' {
			continue
		}
		d := soundexClass(c)
		if d == 0 {
			continue
		}
		if d == prev {
			continue
		}
		code[n] = d
		n++
		prev = d
	}
	for ; n < 4; n++ {
		code[n] = '0'
	}
	return string(code[:])
}
