package score_test

import (
	"testing"

	"github.com/vaanilabs/vaani/internal/lang"
	"github.com/vaanilabs/vaani/internal/score"
	"github.com/vaanilabs/vaani/pkg/types"
)

func tamil(t *testing.T) lang.Descriptor {
	t.Helper()
	d, err := lang.Default().Get(lang.Tamil)
	if err != nil {
		t.Fatalf("Get(ta): %v", err)
	}
	return d
}

func english(t *testing.T) lang.Descriptor {
	t.Helper()
	d, err := lang.Default().Get(lang.English)
	if err != nil {
		t.Fatalf("Get(en): %v", err)
	}
	return d
}

func table(tokens ...string) score.Table {
	entries := make([]types.HexcodeEntry, 0, len(tokens))
	for i, tok := range tokens {
		entries = append(entries, types.HexcodeEntry{
			Token:   tok,
			Hexcode: "0x" + tok,
			IndexNo: i,
		})
	}
	return score.NewTable(entries)
}

func TestScore_PartitionInvariant(t *testing.T) {
	t.Parallel()

	s := score.New(english(t), score.DefaultConfig())
	tbl := table("c", "a", "t", "s")

	res := s.Score(
		[]string{"c", "a", "t", "s"},
		[]string{"c", "a", "t"},
		nil,
		tbl,
	)

	// Every original unit with a hexcode lands in exactly one of the two lists.
	inOne := make(map[string]int)
	for _, e := range res.Confidence {
		inOne[e.Token]++
	}
	for _, e := range res.Missing {
		inOne[e.Token]++
	}
	for _, tok := range []string{"c", "a", "t", "s"} {
		if inOne[tok] != 1 {
			t.Errorf("token %q appears %d times across confidence+missing, want 1", tok, inOne[tok])
		}
	}
	for _, e := range res.Anomaly {
		if _, ok := inOne[e.Token]; ok && inOne[e.Token] > 0 {
			t.Errorf("anomaly token %q overlaps the original partition", e.Token)
		}
	}
}

func TestScore_ConfidenceFromAlternatives(t *testing.T) {
	t.Parallel()

	s := score.New(english(t), score.DefaultConfig())
	tbl := table("c", "a", "t")

	res := s.Score(
		[]string{"c", "a", "t"},
		[]string{"c", "a", "t"},
		[]score.Alternative{
			{Subtoken: "c", Probability: 0.95},
			{Subtoken: "c", Probability: 0.80}, // max wins
			{Subtoken: "a", Probability: 0.85},
			{Subtoken: "t", Probability: 0.99},
		},
		tbl,
	)

	want := map[string]float64{"c": 0.95, "a": 0.85, "t": 0.99}
	if len(res.Confidence) != 3 {
		t.Fatalf("Confidence has %d entries, want 3", len(res.Confidence))
	}
	for _, e := range res.Confidence {
		if e.Confidence != want[e.Token] {
			t.Errorf("token %q confidence = %f, want %f", e.Token, e.Confidence, want[e.Token])
		}
		if e.IdentificationStatus != 1 {
			t.Errorf("token %q status = %d, want 1", e.Token, e.IdentificationStatus)
		}
	}
	if len(res.Missing) != 0 || len(res.Anomaly) != 0 {
		t.Errorf("missing=%d anomaly=%d, want 0/0", len(res.Missing), len(res.Anomaly))
	}
}

func TestScore_MissingPlaceholder(t *testing.T) {
	t.Parallel()

	s := score.New(english(t), score.DefaultConfig())
	tbl := table("d", "o", "g")

	res := s.Score([]string{"d", "o", "g"}, nil, nil, tbl)

	if len(res.Missing) != 3 {
		t.Fatalf("Missing has %d entries, want 3", len(res.Missing))
	}
	for _, e := range res.Missing {
		if e.Confidence != 0.1 {
			t.Errorf("missing token %q score = %f, want 0.1", e.Token, e.Confidence)
		}
		if e.IdentificationStatus != 0 {
			t.Errorf("missing token %q status = %d, want 0", e.Token, e.IdentificationStatus)
		}
	}
}

func TestScore_MissingSurfacedByAlternativesIsPromoted(t *testing.T) {
	t.Parallel()

	s := score.New(english(t), score.DefaultConfig())
	tbl := table("x")

	res := s.Score(
		[]string{"x"},
		nil, // not in construct text
		[]score.Alternative{{Subtoken: "x", Probability: 0.55}},
		tbl,
	)

	if len(res.Missing) != 0 {
		t.Fatalf("Missing has %d entries, want 0 (surfaced by alternatives)", len(res.Missing))
	}
	if len(res.Confidence) != 1 {
		t.Fatalf("Confidence has %d entries, want 1", len(res.Confidence))
	}
	e := res.Confidence[0]
	if e.Confidence != 0.55 {
		t.Errorf("confidence = %f, want 0.55", e.Confidence)
	}
	// 0.40 ≤ 0.55 < 0.90 → weak identification.
	if e.IdentificationStatus != -1 {
		t.Errorf("status = %d, want -1", e.IdentificationStatus)
	}
}

func TestScore_AnomalyFromUnusedAlternatives(t *testing.T) {
	t.Parallel()

	s := score.New(english(t), score.DefaultConfig())
	tbl := table("c", "z")

	res := s.Score(
		[]string{"c"},
		[]string{"c"},
		[]score.Alternative{
			{Subtoken: "c", Probability: 0.9},
			{Subtoken: "z", Probability: 0.3}, // noise the learner produced
		},
		tbl,
	)

	if len(res.Anomaly) != 1 {
		t.Fatalf("Anomaly has %d entries, want 1", len(res.Anomaly))
	}
	if res.Anomaly[0].Token != "z" || res.Anomaly[0].Confidence != 0.3 {
		t.Errorf("anomaly = %+v, want token z with score 0.3", res.Anomaly[0])
	}
	if res.Anomaly[0].IdentificationStatus != 0 {
		t.Errorf("anomaly status = %d, want 0", res.Anomaly[0].IdentificationStatus)
	}
}

func TestScore_ClampLowConfidence(t *testing.T) {
	t.Parallel()

	// Tamil enables the 0.7 → 0.777 remap.
	s := score.New(tamil(t), score.DefaultConfig())
	tbl := table("பா")

	res := s.Score(
		[]string{"பா"},
		[]string{"பா"},
		[]score.Alternative{{Subtoken: "பா", Probability: 0.4}},
		tbl,
	)

	if len(res.Confidence) != 1 {
		t.Fatalf("Confidence has %d entries, want 1", len(res.Confidence))
	}
	if got := res.Confidence[0].Confidence; got != 0.777 {
		t.Errorf("clamped confidence = %f, want 0.777", got)
	}
}

func TestScore_NoClampAboveFloor(t *testing.T) {
	t.Parallel()

	s := score.New(tamil(t), score.DefaultConfig())
	tbl := table("பா")

	res := s.Score(
		[]string{"பா"},
		[]string{"பா"},
		[]score.Alternative{{Subtoken: "பா", Probability: 0.82}},
		tbl,
	)

	if got := res.Confidence[0].Confidence; got != 0.82 {
		t.Errorf("confidence = %f, want 0.82 unclamped", got)
	}
}

func TestScore_SignOnlyUnitsNotReportedMissing(t *testing.T) {
	t.Parallel()

	s := score.New(tamil(t), score.DefaultConfig())
	tbl := table("ா")

	res := s.Score([]string{"ா"}, nil, nil, tbl)
	if len(res.Missing) != 0 {
		t.Errorf("standalone vowel sign reported missing: %+v", res.Missing)
	}
}

func TestScore_NoHexcodeDropped(t *testing.T) {
	t.Parallel()

	s := score.New(english(t), score.DefaultConfig())
	tbl := table("c")

	res := s.Score([]string{"c", "q"}, []string{"c", "q"}, nil, tbl)
	if len(res.Confidence) != 1 {
		t.Fatalf("Confidence has %d entries, want 1 (no hexcode for q)", len(res.Confidence))
	}
	if res.Confidence[0].Token != "c" {
		t.Errorf("confidence token = %q, want c", res.Confidence[0].Token)
	}
}

func TestScore_SubtokenRecomposition(t *testing.T) {
	t.Parallel()

	s := score.New(tamil(t), score.DefaultConfig())
	tbl := table("பா", "ட")

	// The ASR emits a multi-character subtoken; it must be recomposed into
	// units before matching.
	res := s.Score(
		[]string{"பா", "ட"},
		[]string{"பா", "ட"},
		[]score.Alternative{{Subtoken: "பாட", Probability: 0.91}},
		tbl,
	)

	if len(res.Confidence) != 2 {
		t.Fatalf("Confidence has %d entries, want 2", len(res.Confidence))
	}
	for _, e := range res.Confidence {
		if e.Confidence != 0.91 {
			t.Errorf("token %q confidence = %f, want 0.91", e.Token, e.Confidence)
		}
	}
}
