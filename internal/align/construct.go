package align

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// Default alignment thresholds. Tuned against field recordings; override via
// the options below.
const (
	DefaultPairThreshold       = 0.40
	DefaultRepetitionThreshold = 0.60
)

// ConstructOption is a functional option for configuring construct building.
type ConstructOption func(*constructConfig)

type constructConfig struct {
	pairThreshold       float64
	repetitionThreshold float64
}

// WithPairThreshold sets the minimum similarity for an (original word,
// response word) pair to be considered aligned. Default: 0.40.
func WithPairThreshold(threshold float64) ConstructOption {
	return func(c *constructConfig) {
		c.pairThreshold = threshold
	}
}

// WithRepetitionThreshold sets the similarity above which a response word
// counts as a repetition of an original word. Default: 0.60.
func WithRepetitionThreshold(threshold float64) ConstructOption {
	return func(c *constructConfig) {
		c.repetitionThreshold = threshold
	}
}

// Construct is the result of word-level alignment between the original text
// and the learner's response.
type Construct struct {
	// Text is the best-effort reconstruction of the response in the original
	// text's word order: the winning response word for each original word,
	// de-duplicated, joined by spaces.
	Text string

	// Repetitions counts the original words the learner spoke two or more
	// times (two or more response words above the repetition threshold).
	Repetitions int
}

// BuildConstruct aligns each whitespace-delimited word of original against
// every word of response. Pairs at or above the pair threshold are candidates;
// for each distinct original word the single highest-scoring response word
// wins. Equal edit-distance scores are broken by Jaro-Winkler similarity so
// that a response word sharing the original's prefix is preferred.
func BuildConstruct(original, response string, opts ...ConstructOption) Construct {
	cfg := &constructConfig{
		pairThreshold:       DefaultPairThreshold,
		repetitionThreshold: DefaultRepetitionThreshold,
	}
	for _, o := range opts {
		o(cfg)
	}

	originalWords := strings.Fields(original)
	responseWords := strings.Fields(response)

	type winner struct {
		word string
		sim  float64
		jw   float64
	}

	// Winners and repetition counters are keyed by the distinct original word;
	// order tracks first occurrence so the output stays in text order.
	winners := make(map[string]winner, len(originalWords))
	repCount := make(map[string]int, len(originalWords))
	var order []string

	for _, o := range originalWords {
		if _, seen := winners[o]; seen {
			continue
		}
		winners[o] = winner{}
		order = append(order, o)
		for _, r := range responseWords {
			sim := Similarity(o, r)
			if sim >= cfg.repetitionThreshold {
				repCount[o]++
			}
			if sim < cfg.pairThreshold {
				continue
			}
			jw := matchr.JaroWinkler(strings.ToLower(o), strings.ToLower(r), false)
			best := winners[o]
			if sim > best.sim || (sim == best.sim && jw > best.jw) {
				winners[o] = winner{word: r, sim: sim, jw: jw}
			}
		}
	}

	// De-duplicate winning response words preserving insertion order.
	var (
		parts []string
		used  = make(map[string]struct{}, len(order))
	)
	for _, o := range order {
		w := winners[o]
		if w.word == "" {
			continue
		}
		if _, dup := used[w.word]; dup {
			continue
		}
		used[w.word] = struct{}{}
		parts = append(parts, w.word)
	}

	repetitions := 0
	for _, o := range order {
		if repCount[o] >= 2 {
			repetitions++
		}
	}

	return Construct{
		Text:        strings.Join(parts, " "),
		Repetitions: repetitions,
	}
}
