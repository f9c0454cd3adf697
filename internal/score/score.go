// Package score classifies each tokenized unit of the original text as
// confident/missing and derives anomaly entries from the ranked ASR token
// alternatives, using the per-language hexcode lookup table.
package score

import (
	"github.com/vaanilabs/vaani/internal/lang"
	"github.com/vaanilabs/vaani/internal/tokenizer"
	"github.com/vaanilabs/vaani/pkg/types"
)

// Default heuristic constants. All of them are overridable through [Config]
// so behaviour stays reproducible across languages and content types.
const (
	defaultMissingScore   = 0.1
	defaultClampFloor     = 0.7
	defaultClampValue     = 0.777
	defaultBandHigh       = 0.90
	defaultBandLow        = 0.40
	defaultConfirmedScore = 1.0
)

// Config holds the scorer's heuristic constants.
type Config struct {
	// MissingScore is the fixed low placeholder assigned to missing tokens.
	MissingScore float64

	// ClampFloor and ClampValue implement the per-language smoothing rule:
	// when enabled on the language descriptor, confidence scores below
	// ClampFloor are reported as ClampValue instead.
	ClampFloor float64
	ClampValue float64

	// BandHigh and BandLow are the identification-status banding cutoffs:
	// score ≥ BandHigh → 1, BandLow ≤ score < BandHigh → -1, else 0.
	BandHigh float64
	BandLow  float64

	// ConfirmedScore is used for a unit present in the construct text but
	// absent from the ASR alternative set: the chosen transcript contains it
	// verbatim, so it is treated as fully confirmed.
	ConfirmedScore float64
}

// DefaultConfig returns the production constants.
func DefaultConfig() Config {
	return Config{
		MissingScore:   defaultMissingScore,
		ClampFloor:     defaultClampFloor,
		ClampValue:     defaultClampValue,
		BandHigh:       defaultBandHigh,
		BandLow:        defaultBandLow,
		ConfirmedScore: defaultConfirmedScore,
	}
}

// Alternative is one flattened (subtoken, probability) pair from the ranked
// ASR nBest output, in original response order.
type Alternative struct {
	Subtoken    string
	Probability float64
}

// Result partitions the original text's units into confidence and missing
// entries; anomaly entries are ASR-only noise disjoint from the original.
type Result struct {
	Confidence []types.TokenScore
	Missing    []types.TokenScore
	Anomaly    []types.TokenScore
}

// Table is a hexcode lookup keyed by token for one language.
type Table map[string]types.HexcodeEntry

// NewTable builds a [Table] from hexcode reference entries.
func NewTable(entries []types.HexcodeEntry) Table {
	t := make(Table, len(entries))
	for _, e := range entries {
		t[e.Token] = e
	}
	return t
}

// Scorer classifies tokens for one language.
type Scorer struct {
	cfg  Config
	desc lang.Descriptor
}

// New returns a Scorer for the given language descriptor and config.
func New(desc lang.Descriptor, cfg Config) *Scorer {
	return &Scorer{cfg: cfg, desc: desc}
}

// Score classifies every unit of originalTokens against constructTokens and
// the flattened ASR alternatives.
//
// Units present in the construct text with a known hexcode become confidence
// entries (status 1) scored from the best matching ASR alternative. Units
// absent from the construct text become missing entries (placeholder score,
// status 0) unless the alternative set surfaced them anyway, in which case
// they are promoted to confidence entries with a banded status. Alternative
// units matched to no original unit become anomaly entries. Units without a
// hexcode are dropped: there is nothing renderable to report for them.
func (s *Scorer) Score(originalTokens, constructTokens []string, alts []Alternative, table Table) Result {
	signs := s.desc.SignSet()

	altScores, altOrder := s.flattenAlternatives(alts, signs)

	constructSet := make(map[string]struct{}, len(constructTokens))
	for _, t := range constructTokens {
		constructSet[t] = struct{}{}
	}

	var (
		res      Result
		seen     = make(map[string]struct{}, len(originalTokens))
		original = make(map[string]struct{}, len(originalTokens))
		usedAlt  = make(map[string]struct{})
	)
	for _, t := range originalTokens {
		original[t] = struct{}{}
	}

	for _, unit := range originalTokens {
		if _, dup := seen[unit]; dup {
			continue
		}
		seen[unit] = struct{}{}

		entry, hasHex := table[unit]

		if _, inConstruct := constructSet[unit]; inConstruct {
			if !hasHex {
				continue
			}
			sc, fromAlt := altScores[unit]
			if fromAlt {
				usedAlt[unit] = struct{}{}
			} else {
				sc = s.cfg.ConfirmedScore
			}
			res.Confidence = append(res.Confidence, types.TokenScore{
				Token:                unit,
				Hexcode:              entry.Hexcode,
				Confidence:           s.clamp(sc),
				IdentificationStatus: 1,
			})
			continue
		}

		// Candidate missing unit.
		if !hasHex || tokenizer.IsSignOnly(unit, signs) {
			continue
		}
		if sc, surfaced := altScores[unit]; surfaced {
			// The ASR alternatives heard this unit even though the construct
			// text dropped it; report the observed score with a banded status.
			usedAlt[unit] = struct{}{}
			res.Confidence = append(res.Confidence, types.TokenScore{
				Token:                unit,
				Hexcode:              entry.Hexcode,
				Confidence:           s.clamp(sc),
				IdentificationStatus: s.band(sc),
			})
			continue
		}
		res.Missing = append(res.Missing, types.TokenScore{
			Token:                unit,
			Hexcode:              entry.Hexcode,
			Confidence:           s.cfg.MissingScore,
			IdentificationStatus: 0,
		})
	}

	// Unselected alternative units with a known hexcode are unrecognised
	// noise the learner produced.
	for _, unit := range altOrder {
		if _, used := usedAlt[unit]; used {
			continue
		}
		if _, fromOriginal := original[unit]; fromOriginal {
			continue
		}
		entry, hasHex := table[unit]
		if !hasHex || tokenizer.IsSignOnly(unit, signs) {
			continue
		}
		res.Anomaly = append(res.Anomaly, types.TokenScore{
			Token:                unit,
			Hexcode:              entry.Hexcode,
			Confidence:           altScores[unit],
			IdentificationStatus: 0,
		})
	}

	return res
}

// flattenAlternatives re-tokenizes every alternative subtoken with the
// language's vowel-sign composition and keeps, for every recomposed unit, the
// maximum probability observed across all occurrences. altOrder preserves
// first-occurrence order for deterministic anomaly output.
func (s *Scorer) flattenAlternatives(alts []Alternative, signs map[rune]struct{}) (map[string]float64, []string) {
	scores := make(map[string]float64)
	var order []string
	for _, a := range alts {
		for _, unit := range tokenizer.Tokenize(a.Subtoken, signs, s.desc.Dialect) {
			if prev, ok := scores[unit]; !ok {
				scores[unit] = a.Probability
				order = append(order, unit)
			} else if a.Probability > prev {
				scores[unit] = a.Probability
			}
		}
	}
	return scores, order
}

// clamp applies the per-language low-score smoothing rule.
func (s *Scorer) clamp(sc float64) float64 {
	if s.desc.ClampLowConfidence && sc < s.cfg.ClampFloor {
		return s.cfg.ClampValue
	}
	return sc
}

// band maps a score to an identification status.
func (s *Scorer) band(sc float64) int {
	switch {
	case sc >= s.cfg.BandHigh:
		return 1
	case sc >= s.cfg.BandLow:
		return -1
	default:
		return 0
	}
}
