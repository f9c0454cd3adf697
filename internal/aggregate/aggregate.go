// Package aggregate rolls per-token confidence scores across a learner's
// session records into target/familiarity groupings: a token whose recent
// aggregate sits below the mastery threshold is a target (needs practice), one
// at or above it is a familiarity.
package aggregate

import "github.com/vaanilabs/vaani/pkg/types"

// SummaryMode selects how a token's retained scores collapse into one number.
type SummaryMode string

const (
	// SummaryMean averages the retained window. Used for user-wide trends.
	SummaryMean SummaryMode = "mean"

	// SummaryLatest takes the most recent score. Used for sub-session
	// aggregation feeding the milestone engine.
	SummaryLatest SummaryMode = "latest"
)

// Config holds the aggregator's tunable constants.
type Config struct {
	// Threshold is the mastery cut: summary scores below it make a token a
	// target, at or above it a familiarity.
	Threshold float64 `yaml:"threshold"`

	// Window is how many trailing confidence scores to retain per token.
	Window int `yaml:"window"`
}

// DefaultConfig returns the production constants.
func DefaultConfig() Config {
	return Config{Threshold: 0.90, Window: 5}
}

// TokenTrend is the rolled-up confidence history of one token.
type TokenTrend struct {
	Token   string `json:"token"`
	Hexcode string `json:"hexcode"`

	// LatestScores are the trailing window of confidence scores, oldest
	// first.
	LatestScores []float64 `json:"latest_scores"`

	CountBelowThreshold int `json:"count_below_threshold"`
	CountAboveThreshold int `json:"count_above_threshold"`

	// Score is the summary value the threshold is applied to.
	Score float64 `json:"score"`
}

// Result partitions the aggregated tokens.
type Result struct {
	Targets     []TokenTrend `json:"targets"`
	Familiarity []TokenTrend `json:"familiarity"`
}

// Filter restricts aggregation to a subset of tokens. A nil filter admits
// every token.
type Filter func(token string) bool

// Syllables returns a Filter admitting only the given tokens. The milestone
// engine uses it to scope sub-session targets to the syllables actually
// present in that sub-session's original texts.
func Syllables(tokens []string) Filter {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return func(token string) bool {
		_, ok := set[token]
		return ok
	}
}

// Aggregate groups the confidence-score entries of records (ordered oldest
// first) by token and partitions them against the threshold. Token order in
// the result follows first appearance across the records.
func Aggregate(records []*types.SessionRecord, mode SummaryMode, filter Filter, cfg Config) Result {
	type group struct {
		hexcode string
		scores  []float64
	}
	groups := make(map[string]*group)
	var order []string

	for _, rec := range records {
		for _, ts := range rec.ConfidenceScores {
			if filter != nil && !filter(ts.Token) {
				continue
			}
			g, ok := groups[ts.Token]
			if !ok {
				g = &group{hexcode: ts.Hexcode}
				groups[ts.Token] = g
				order = append(order, ts.Token)
			}
			g.scores = append(g.scores, ts.Confidence)
			if len(g.scores) > cfg.Window {
				g.scores = g.scores[len(g.scores)-cfg.Window:]
			}
		}
	}

	var res Result
	for _, token := range order {
		g := groups[token]
		trend := TokenTrend{
			Token:        token,
			Hexcode:      g.hexcode,
			LatestScores: g.scores,
			Score:        summarize(g.scores, mode),
		}
		for _, s := range g.scores {
			if s < cfg.Threshold {
				trend.CountBelowThreshold++
			} else {
				trend.CountAboveThreshold++
			}
		}
		if trend.Score < cfg.Threshold {
			res.Targets = append(res.Targets, trend)
		} else {
			res.Familiarity = append(res.Familiarity, trend)
		}
	}
	return res
}

func summarize(scores []float64, mode SummaryMode) float64 {
	if len(scores) == 0 {
		return 0
	}
	if mode == SummaryLatest {
		return scores[len(scores)-1]
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
