// Package similarity scores strings by normalized edit distance.
package similarity

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Distance is the unit-cost Levenshtein distance between a and b, counted in
// runes.
func Distance(a, b string) int {
	return edlib.LevenshteinDistance(a, b)
}

// Similarity returns (max(|a|,|b|) - distance) / max(|a|,|b|). Two empty
// strings are identical and score 1.
func Similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return float64(longest-Distance(a, b)) / float64(longest)
}
