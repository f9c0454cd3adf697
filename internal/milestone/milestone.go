// Package milestone implements the per-(user, language) curriculum
// progression state machine: deriving a session's pass/fail outcome from
// aggregated targets, fluency and comprehension, applying the rolling
// prosody/fluency gates for languages that use them, and computing the next
// milestone level.
package milestone

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vaanilabs/vaani/internal/lang"
	"github.com/vaanilabs/vaani/pkg/types"
)

// Level is a discrete milestone level m0..mN.
type Level int

// String renders the level as "m<N>".
func (l Level) String() string {
	return "m" + strconv.Itoa(int(l))
}

// ParseLevel parses "m<N>" into a Level. An empty string is m0 (a user with
// no milestone record yet).
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return 0, nil
	}
	if !strings.HasPrefix(s, "m") {
		return 0, fmt.Errorf("milestone: level %q must have the form mN", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("milestone: level %q must have the form mN", s)
	}
	return Level(n), nil
}

// SessionResult is the outcome of one milestone evaluation.
type SessionResult string

const (
	Pass SessionResult = "pass"
	Fail SessionResult = "fail"
)

// SyllableBand maps a total-syllable ceiling to the targets-percentage a
// learner may accumulate and still pass. Bands are inspected in order; the
// first band whose MaxSyllables is not exceeded applies.
type SyllableBand struct {
	MaxSyllables int     `yaml:"max_syllables"`
	Percent      float64 `yaml:"percent"`
}

// Config holds the milestone engine's tunable constants.
type Config struct {
	// Bands is the inverse banding of pass thresholds by syllable count.
	Bands []SyllableBand `yaml:"bands"`

	// FallbackPercent applies beyond the last band.
	FallbackPercent float64 `yaml:"fallback_percent"`

	// SuppliedSyllableCap caps the learner-supplied syllable count.
	SuppliedSyllableCap int `yaml:"supplied_syllable_cap"`

	// ComprehensionPassScore is the minimum LLM comprehension score to pass
	// in mechanics mode.
	ComprehensionPassScore float64 `yaml:"comprehension_pass_score"`

	// CorrectnessPassCount is the minimum correct-answer count for mechanics
	// content when no comprehension score is available.
	CorrectnessPassCount int `yaml:"correctness_pass_count"`

	// Ceilings are the per-content-type fluency pass ceilings.
	Ceilings map[types.ContentType]float64 `yaml:"ceilings"`

	// Gates configures the rolling fluency/prosody gates.
	Gates GateConfig `yaml:"gates"`

	// Curricula maps language codes to their fixed-curriculum tables.
	Curricula map[lang.Code]CurriculumTable `yaml:"curricula"`
}

// DefaultConfig returns the production constants.
func DefaultConfig() Config {
	return Config{
		Bands: []SyllableBand{
			{MaxSyllables: 100, Percent: 30},
			{MaxSyllables: 150, Percent: 25},
			{MaxSyllables: 175, Percent: 20},
			{MaxSyllables: 250, Percent: 15},
			{MaxSyllables: 500, Percent: 10},
		},
		FallbackPercent:        5,
		SuppliedSyllableCap:    50,
		ComprehensionPassScore: 14,
		CorrectnessPassCount:   3,
		Ceilings: map[types.ContentType]float64{
			types.ContentWord:      2,
			types.ContentSentence:  6,
			types.ContentParagraph: 10,
		},
		Gates:     DefaultGateConfig(),
		Curricula: DefaultCurricula(),
	}
}

// Input carries everything one milestone evaluation needs.
type Input struct {
	Language    lang.Code
	ContentType types.ContentType

	// Previous is the learner's current milestone level.
	Previous Level

	// TotalTargets and FamiliarityCount are the sub-session aggregates
	// (targets already filtered to the sub-session's syllables for
	// non-English languages).
	TotalTargets     int
	FamiliarityCount int

	// SuppliedSyllables is the learner-supplied syllable count, used only
	// for languages whose descriptor sets SuppliedSyllableCount.
	SuppliedSyllables int

	// Fluency is the sub-session fluency score.
	Fluency float64

	// Mechanics reports whether the comprehension ("mechanics") mode is
	// active for this evaluation.
	Mechanics bool

	// ComprehensionScore is the LLM grader's overall score, when available.
	ComprehensionScore *float64

	// CorrectnessCount is the mechanics correct-answer aggregate.
	CorrectnessCount int

	// CollectionID identifies a fixed curriculum unit; empty in adaptive or
	// showcase mode.
	CollectionID string

	// Records are all session records of the sub-session, consumed by the
	// rolling gates.
	Records []*types.SessionRecord
}

// Outcome is the full result of an evaluation.
type Outcome struct {
	Result   SessionResult
	Previous Level
	Current  Level

	// WriteRecord is false when the curriculum table says a pass on this
	// collection produces no milestone record.
	WriteRecord bool

	TotalSyllables    int
	TargetsPercentage int

	// FluencyResult and ProsodyResult are set only when the language's
	// rolling gates ran.
	FluencyResult *SessionResult
	ProsodyResult *SessionResult
}

// Engine evaluates milestone transitions. It is stateless and safe for
// concurrent use.
type Engine struct {
	cfg      Config
	registry *lang.Registry
}

// New returns an Engine over the given language registry and config.
func New(registry *lang.Registry, cfg Config) *Engine {
	return &Engine{cfg: cfg, registry: registry}
}

// Evaluate derives the session result and the next milestone level.
func (e *Engine) Evaluate(in Input) (Outcome, error) {
	desc, err := e.registry.Get(in.Language)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		Previous:    in.Previous,
		WriteRecord: true,
	}

	out.TotalSyllables = e.totalSyllables(desc, in)
	out.TargetsPercentage = targetsPercentage(in.TotalTargets, out.TotalSyllables)
	out.Result = e.sessionResult(in, out.TargetsPercentage, out.TotalSyllables)

	// Rolling gates run across every record of the sub-session; either gate
	// failing forces the overall result to fail.
	if desc.RollingGates && len(in.Records) > 0 {
		fr := e.fluencyGate(in.Records, in.Previous)
		out.FluencyResult = &fr
		if fr == Fail {
			out.Result = Fail
		}
		if in.Previous >= e.cfg.Gates.ProsodyGateLevel {
			pr := e.prosodyGate(in.Records)
			out.ProsodyResult = &pr
			if pr == Fail {
				out.Result = Fail
			}
		}
	}

	// Fixed-curriculum mode overrides the adaptive transition entirely.
	if in.CollectionID != "" {
		if rule, ok := e.cfg.Curricula[in.Language][in.CollectionID]; ok {
			target := rule.OnFail
			if out.Result == Pass {
				target = rule.OnPass
			}
			if target == nil {
				out.WriteRecord = false
				out.Current = in.Previous
				return out, nil
			}
			out.Current = *target
			return out, nil
		}
	}

	// Adaptive transition: one step up on pass, hold on fail.
	if out.Result == Pass {
		next := in.Previous + 1
		if int(next) > desc.MaxMilestone {
			next = Level(desc.MaxMilestone)
		}
		out.Current = next
	} else {
		out.Current = in.Previous
	}
	return out, nil
}

// totalSyllables derives the denominator for the targets percentage.
func (e *Engine) totalSyllables(desc lang.Descriptor, in Input) int {
	if desc.SuppliedSyllableCount {
		n := in.SuppliedSyllables
		if n > e.cfg.SuppliedSyllableCap {
			n = e.cfg.SuppliedSyllableCap
		}
		return n
	}
	return in.TotalTargets + in.FamiliarityCount
}

// targetsPercentage is floor(targets/syllables*100), clamped to ≥ 0.
func targetsPercentage(targets, syllables int) int {
	if syllables <= 0 {
		return 0
	}
	pct := targets * 100 / syllables
	if pct < 0 {
		pct = 0
	}
	return pct
}

// passPercent returns the pass threshold for the given syllable count.
func (e *Engine) passPercent(syllables int) float64 {
	for _, b := range e.cfg.Bands {
		if syllables <= b.MaxSyllables {
			return b.Percent
		}
	}
	return e.cfg.FallbackPercent
}

// sessionResult applies the pass/fail derivation of the adaptive mode.
func (e *Engine) sessionResult(in Input, pct, syllables int) SessionResult {
	// Comprehension supersedes the targets rule when a score is available.
	if in.Mechanics && in.ComprehensionScore != nil {
		if *in.ComprehensionScore >= e.cfg.ComprehensionPassScore {
			return Pass
		}
		return Fail
	}

	if float64(pct) > e.passPercent(syllables) {
		return Fail
	}

	if in.Mechanics {
		if in.CorrectnessCount >= e.cfg.CorrectnessPassCount {
			return Pass
		}
		return Fail
	}

	ceiling, ok := e.cfg.Ceilings[in.ContentType]
	if !ok {
		ceiling = e.cfg.Ceilings[types.ContentWord]
	}
	if in.Fluency < ceiling {
		return Pass
	}
	return Fail
}
