// Package texteval defines the Provider interface for the text-evaluation
// backend that aligns the learner's transcript against the reference text and
// reports edit-distance metrics, pacing classifications and its own construct
// reconstruction.
package texteval

import "context"

// Request is one evaluation request.
type Request struct {
	// Reference is the original text the learner was asked to read.
	Reference string `json:"reference"`

	// Hypothesis is the chosen ASR transcript.
	Hypothesis string `json:"hypothesis"`

	// Language is the language code of both texts.
	Language string `json:"language"`

	// AudioBase64 carries the audio for pacing analysis.
	AudioBase64 string `json:"base64_audio"`
}

// Metrics is the backend's evaluation of one hypothesis.
type Metrics struct {
	WER float64 `json:"wer"`
	CER float64 `json:"cer"`

	Insertions    []string `json:"insertion"`
	Deletions     []string `json:"deletion"`
	Substitutions []string `json:"substitution"`

	ConfidenceChars []string `json:"confidence_char_list"`
	MissingChars    []string `json:"missing_char_list"`

	ConstructText string `json:"construct_text"`

	TempoClassification string  `json:"tempo_classification"`
	RateClassification  string  `json:"rate_classification"`
	PauseCount          int     `json:"pause_count"`
	WordsPerMinute      float64 `json:"words_per_minute"`
}

// Provider is the abstraction over any text-evaluation backend.
type Provider interface {
	// Evaluate submits the reference/hypothesis pair and blocks until the
	// metrics are available or ctx is done.
	Evaluate(ctx context.Context, req Request) (*Metrics, error)
}
