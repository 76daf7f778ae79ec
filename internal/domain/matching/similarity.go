package matching

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity returns 1 − distance/maxLen for two strings, counted in runes.
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}
