package fluency_test

import (
	"testing"

	"github.com/vaanilabs/vaani/internal/fluency"
	"github.com/vaanilabs/vaani/pkg/types"
)

func TestScore_Flawless(t *testing.T) {
	t.Parallel()

	got := fluency.Score(fluency.Metrics{}, 0, 0, "cat", "cat", fluency.DefaultWeights())
	if got != 0 {
		t.Errorf("Score = %f, want 0 for a flawless reading", got)
	}
}

func TestScore_KnownValue(t *testing.T) {
	t.Parallel()

	m := fluency.Metrics{
		WER:           0.5,
		CER:           0.25,
		Insertions:    1,
		Deletions:     1,
		Substitutions: 2,
	}
	// original/response identical lengths → both deltas 0.
	// (0.5*5 + 0.25*20 + 1*10 + 1*10 + 1*20 + 1*15 + 2*5) / 100
	got := fluency.Score(m, 1, 1, "abc def", "abc xyz", fluency.DefaultWeights())
	want := (0.5*5 + 0.25*20 + 10 + 10 + 20 + 15 + 10) / 100
	if got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Score = %f, want %f", got, want)
	}
}

func TestScore_MonotoneInEachInput(t *testing.T) {
	t.Parallel()

	w := fluency.DefaultWeights()
	base := fluency.Score(fluency.Metrics{WER: 0.1, CER: 0.1}, 1, 1, "abcd", "abcd", w)

	bumps := []fluency.Metrics{
		{WER: 0.2, CER: 0.1},
		{WER: 0.1, CER: 0.2},
		{WER: 0.1, CER: 0.1, Insertions: 1},
		{WER: 0.1, CER: 0.1, Deletions: 1},
		{WER: 0.1, CER: 0.1, Substitutions: 1},
	}
	for i, m := range bumps {
		if got := fluency.Score(m, 1, 1, "abcd", "abcd", w); got <= base {
			t.Errorf("bump %d: Score = %f, want > base %f", i, got, base)
		}
	}

	if got := fluency.Score(fluency.Metrics{WER: 0.1, CER: 0.1}, 2, 1, "abcd", "abcd", w); got <= base {
		t.Errorf("more repetitions should not lower the score: %f <= %f", got, base)
	}
	if got := fluency.Score(fluency.Metrics{WER: 0.1, CER: 0.1}, 1, 2, "abcd", "abcd", w); got <= base {
		t.Errorf("more pauses should not lower the score: %f <= %f", got, base)
	}
	if got := fluency.Score(fluency.Metrics{WER: 0.1, CER: 0.1}, 1, 1, "abcd", "ab", w); got <= base {
		t.Errorf("larger char delta should not lower the score: %f <= %f", got, base)
	}
}

func TestClassify_Buckets(t *testing.T) {
	t.Parallel()

	c := fluency.DefaultCeilings()

	cases := []struct {
		score float64
		ct    types.ContentType
		want  fluency.Label
	}{
		{0.5, types.ContentWord, fluency.Fluent},
		{1.5, types.ContentWord, fluency.ModeratelyFluent},
		{3, types.ContentWord, fluency.Disfluent},
		{5, types.ContentWord, fluency.VeryDisfluent},
		{2, types.ContentSentence, fluency.Fluent},
		{5, types.ContentSentence, fluency.ModeratelyFluent},
		{4, types.ContentParagraph, fluency.Fluent},
		{25, types.ContentParagraph, fluency.VeryDisfluent},
	}
	for _, tc := range cases {
		if got := fluency.Classify(tc.score, tc.ct, c); got != tc.want {
			t.Errorf("Classify(%f, %s) = %q, want %q", tc.score, tc.ct, got, tc.want)
		}
	}
}

func TestCeiling_FallsBackToWord(t *testing.T) {
	t.Parallel()

	c := fluency.DefaultCeilings()
	if got := c.Ceiling(types.ContentChar); got != 2 {
		t.Errorf("Ceiling(char) = %f, want word ceiling 2", got)
	}
}
