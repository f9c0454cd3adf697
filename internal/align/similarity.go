// Package align implements response reconciliation and text alignment: a
// normalized edit-distance similarity primitive, hypothesis selection between
// the denoised and non-denoised ASR outputs, and the word-level construct-text
// builder that aligns the learner's response to the original text.
package align

import (
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Similarity returns the normalized edit-distance similarity of a and b in
// [0, 1]: (maxLen - levenshtein(a, b)) / maxLen, computed case-insensitively
// over runes. Two empty strings are identical (1.0).
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}

	dist := matchr.Levenshtein(a, b)
	return float64(maxLen-dist) / float64(maxLen)
}
