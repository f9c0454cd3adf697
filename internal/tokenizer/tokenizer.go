// Package tokenizer segments target-language text into ordered syllable
// units using per-language dependent-vowel-sign combination rules.
//
// For Brahmic scripts a unit is a base character plus any directly following
// dependent vowel signs or virama (e.g. "ப" + "ா" → "பா"). For alphabetic
// scripts the vowel-sign set is empty and every letter is its own unit.
//
// Two combination dialects exist operationally and both are implemented; see
// [lang.Dialect]. Tokenize is a pure function of its inputs.
package tokenizer

import (
	"unicode"

	"github.com/vaanilabs/vaani/internal/lang"
)

// Tokenize splits text into syllable units. Whitespace is skipped and never
// appears in the output. signs is the rune set of dependent vowel signs for
// the language (see [lang.Descriptor.SignSet]).
func Tokenize(text string, signs map[rune]struct{}, dialect lang.Dialect) []string {
	var (
		units    []string
		prevUnit string
	)

	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}

		_, isSign := signs[r]
		if isSign && prevUnit != "" {
			prevUnit += string(r)
			switch dialect {
			case lang.DialectAppend:
				units = append(units, prevUnit)
			default:
				units[len(units)-1] = prevUnit
			}
			continue
		}

		prevUnit = string(r)
		units = append(units, prevUnit)
	}

	return units
}

// IsSignOnly reports whether unit consists solely of dependent vowel signs.
// A standalone sign can appear when a sign occurs with no preceding base
// character (noisy input) and is excluded from missing-token reporting.
func IsSignOnly(unit string, signs map[rune]struct{}) bool {
	if unit == "" {
		return false
	}
	for _, r := range unit {
		if _, isSign := signs[r]; !isSign {
			return false
		}
	}
	return true
}
