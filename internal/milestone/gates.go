package milestone

import "github.com/vaanilabs/vaani/pkg/types"

// GateConfig holds the rolling fluency/prosody gate constants for the
// languages that use them.
type GateConfig struct {
	// Weights of the per-record weighted prosody score.
	ExpressionWeight float64 `yaml:"expression_weight"`
	SmoothnessWeight float64 `yaml:"smoothness_weight"`
	AccuracyWeight   float64 `yaml:"accuracy_weight"`
	RateWeight       float64 `yaml:"rate_weight"`

	// Pass thresholds, switched on the learner's milestone level.
	UpperThreshold      float64 `yaml:"upper_threshold"`
	LowerThreshold      float64 `yaml:"lower_threshold"`
	UpperThresholdLevel Level   `yaml:"upper_threshold_level"`

	// ProsodyGateLevel is the milestone at which the pitch/intensity/tempo
	// gate starts running.
	ProsodyGateLevel Level `yaml:"prosody_gate_level"`

	// Scales map each classification label to its numeric value. Unknown
	// labels score zero.
	ExpressionScale map[string]float64 `yaml:"expression_scale"`
	SmoothnessScale map[string]float64 `yaml:"smoothness_scale"`
	AccuracyScale   map[string]float64 `yaml:"accuracy_scale"`
	RateScale       map[string]float64 `yaml:"rate_scale"`

	// Exceptions are classification combinations that pass a record at or
	// above UpperThresholdLevel even when its weighted score is under
	// threshold. Empty fields match any label.
	Exceptions []GateException `yaml:"exceptions"`

	// ExaggeratedLimit is the number of exaggerated pitch/intensity/tempo
	// features at which a record fails the prosody gate.
	ExaggeratedLimit int `yaml:"exaggerated_limit"`
}

// GateException names one allowed combination of classifications.
type GateException struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression,omitempty"`
	Smoothness string `yaml:"smoothness,omitempty"`
	Accuracy   string `yaml:"accuracy,omitempty"`
	Rate       string `yaml:"rate,omitempty"`
}

// Prosody classification labels. Anything outside this set is normalized to
// erratic before the gate runs.
const (
	ProsodyNatural     = "natural"
	ProsodyFlat        = "flat"
	ProsodyExaggerated = "exaggerated"
	ProsodyErratic     = "erratic"
)

// DefaultGateConfig returns the production gate constants.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		ExpressionWeight:    0.20,
		SmoothnessWeight:    0.10,
		AccuracyWeight:      0.40,
		RateWeight:          0.30,
		UpperThreshold:      3.0,
		LowerThreshold:      2.6,
		UpperThresholdLevel: 4,
		ProsodyGateLevel:    6,
		ExpressionScale: map[string]float64{
			"monotonous":            1,
			"less expressive":       2,
			"moderately expressive": 3,
			"expressive":            4,
		},
		SmoothnessScale: map[string]float64{
			"disjointed":    1,
			"choppy":        2,
			"mostly smooth": 3,
			"smooth":        4,
		},
		AccuracyScale: map[string]float64{
			"Very Disfluent":    1,
			"Disfluent":         2,
			"Moderately Fluent": 3,
			"Fluent":            4,
		},
		RateScale: map[string]float64{
			"erratic":  1,
			"too slow": 2,
			"too fast": 2,
			"natural":  4,
		},
		Exceptions: []GateException{
			{Name: "slow but expressive", Expression: "expressive", Rate: "too slow"},
			{Name: "accurate monotone", Expression: "monotonous", Accuracy: "Fluent"},
			{Name: "smooth but flat", Expression: "less expressive", Smoothness: "smooth", Accuracy: "Fluent"},
		},
		ExaggeratedLimit: 2,
	}
}

// fluencyGate majority-votes the weighted prosody score of every record in
// the sub-session.
func (e *Engine) fluencyGate(records []*types.SessionRecord, level Level) SessionResult {
	g := e.cfg.Gates
	threshold := g.LowerThreshold
	if level >= g.UpperThresholdLevel {
		threshold = g.UpperThreshold
	}

	passes := 0
	for _, rec := range records {
		p := rec.Prosody
		if p == nil {
			continue
		}
		score := g.ExpressionWeight*g.ExpressionScale[p.ExpressionClassification] +
			g.SmoothnessWeight*g.SmoothnessScale[p.SmoothnessClassification] +
			g.AccuracyWeight*g.AccuracyScale[p.AccuracyClassification] +
			g.RateWeight*g.RateScale[p.RateClassification]
		if score >= threshold {
			passes++
			continue
		}
		if level >= g.UpperThresholdLevel && g.matchesException(p) {
			passes++
		}
	}
	return majority(passes, len(records))
}

func (g GateConfig) matchesException(p *types.ProsodyFluency) bool {
	for _, ex := range g.Exceptions {
		if ex.Expression != "" && ex.Expression != p.ExpressionClassification {
			continue
		}
		if ex.Smoothness != "" && ex.Smoothness != p.SmoothnessClassification {
			continue
		}
		if ex.Accuracy != "" && ex.Accuracy != p.AccuracyClassification {
			continue
		}
		if ex.Rate != "" && ex.Rate != p.RateClassification {
			continue
		}
		return true
	}
	return false
}

// prosodyGate majority-votes the pitch/intensity/tempo classifications of
// every record in the sub-session.
func (e *Engine) prosodyGate(records []*types.SessionRecord) SessionResult {
	passes := 0
	for _, rec := range records {
		p := rec.Prosody
		if p == nil {
			continue
		}
		features := []string{
			normalizeProsody(p.PitchClassification),
			normalizeProsody(p.IntensityClassification),
			normalizeProsody(p.TempoClassification),
		}
		erratic, exaggerated := 0, 0
		for _, f := range features {
			switch f {
			case ProsodyErratic:
				erratic++
			case ProsodyExaggerated:
				exaggerated++
			}
		}
		if erratic == 0 && exaggerated < e.cfg.Gates.ExaggeratedLimit {
			passes++
		}
	}
	return majority(passes, len(records))
}

func normalizeProsody(label string) string {
	switch label {
	case ProsodyNatural, ProsodyFlat, ProsodyExaggerated, ProsodyErratic:
		return label
	}
	return ProsodyErratic
}

// majority applies the vote rule: strict majority for odd record counts, at
// least half for even.
func majority(passes, total int) SessionResult {
	if total == 0 {
		return Fail
	}
	if total%2 == 1 {
		if passes*2 > total {
			return Pass
		}
		return Fail
	}
	if passes*2 >= total {
		return Pass
	}
	return Fail
}
