// Package fluency combines the text-eval collaborator's error metrics with
// repetition and pause counts into a single error-density score, and buckets
// that score into qualitative accuracy labels per content type.
//
// Lower scores are better; a score of 0 means a flawless reading.
package fluency

import (
	"strings"
	"unicode/utf8"

	"github.com/vaanilabs/vaani/pkg/types"
)

// Weights are the coefficients of the linear fluency formula. They are
// product-tunable configuration, not constants.
type Weights struct {
	WER           float64 `yaml:"wer"`
	CER           float64 `yaml:"cer"`
	CharDelta     float64 `yaml:"char_delta"`
	WordDelta     float64 `yaml:"word_delta"`
	Repetitions   float64 `yaml:"repetitions"`
	Pauses        float64 `yaml:"pauses"`
	Insertions    float64 `yaml:"insertions"`
	Deletions     float64 `yaml:"deletions"`
	Substitutions float64 `yaml:"substitutions"`
	Divisor       float64 `yaml:"divisor"`
}

// DefaultWeights returns the production coefficients.
func DefaultWeights() Weights {
	return Weights{
		WER:           5,
		CER:           20,
		CharDelta:     10,
		WordDelta:     10,
		Repetitions:   10,
		Pauses:        10,
		Insertions:    20,
		Deletions:     15,
		Substitutions: 5,
		Divisor:       100,
	}
}

// Metrics are the error measurements supplied by the text-eval collaborator.
type Metrics struct {
	WER           float64
	CER           float64
	Insertions    int
	Deletions     int
	Substitutions int
}

// Score computes the linear-weighted fluency score. It is monotonically
// non-decreasing in every metric, the length deltas, repetitions and pauses.
func Score(m Metrics, repetitions, pauseCount int, original, response string, w Weights) float64 {
	charDelta := absInt(utf8.RuneCountInString(original) - utf8.RuneCountInString(response))
	wordDelta := absInt(len(strings.Fields(original)) - len(strings.Fields(response)))

	sum := m.WER*w.WER +
		m.CER*w.CER +
		float64(charDelta)*w.CharDelta +
		float64(wordDelta)*w.WordDelta +
		float64(repetitions)*w.Repetitions +
		float64(pauseCount)*w.Pauses +
		float64(m.Insertions)*w.Insertions +
		float64(m.Deletions)*w.Deletions +
		float64(m.Substitutions)*w.Substitutions

	if w.Divisor == 0 {
		return sum
	}
	return sum / w.Divisor
}

// Label is a qualitative accuracy classification of a fluency score.
type Label string

const (
	Fluent           Label = "Fluent"
	ModeratelyFluent Label = "Moderately Fluent"
	Disfluent        Label = "Disfluent"
	VeryDisfluent    Label = "Very Disfluent"
)

// Ceilings are the per-content-type fluency ceilings used both by the label
// bucketing and the milestone engine's pass/fail check.
type Ceilings map[types.ContentType]float64

// DefaultCeilings returns the production pass/fail ceilings.
func DefaultCeilings() Ceilings {
	return Ceilings{
		types.ContentWord:      2,
		types.ContentSentence:  6,
		types.ContentParagraph: 10,
	}
}

// Ceiling returns the ceiling for ct, falling back to the word ceiling for
// content types without one (single characters are scored like words).
func (c Ceilings) Ceiling(ct types.ContentType) float64 {
	if v, ok := c[ct]; ok {
		return v
	}
	return c[types.ContentWord]
}

// Classify buckets score into a [Label] relative to the content type's
// ceiling: under half the ceiling reads as fluent, under the ceiling as
// moderately fluent, under twice the ceiling as disfluent.
func Classify(score float64, ct types.ContentType, c Ceilings) Label {
	ceiling := c.Ceiling(ct)
	switch {
	case score < ceiling/2:
		return Fluent
	case score < ceiling:
		return ModeratelyFluent
	case score < ceiling*2:
		return Disfluent
	default:
		return VeryDisfluent
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
