// Package types defines the shared types used across all Vaani packages.
//
// These types form the lingua franca between providers, the scoring engine,
// the milestone engine, and the stores. They are intentionally minimal — each
// package defines its own domain types, but cross-cutting data structures live
// here to avoid circular imports.
package types

import "time"

// ContentType classifies a piece of reading content by granularity.
type ContentType string

const (
	ContentChar      ContentType = "char"
	ContentWord      ContentType = "word"
	ContentSentence  ContentType = "sentence"
	ContentParagraph ContentType = "paragraph"
)

// IsValid reports whether c is a recognised content type.
func (c ContentType) IsValid() bool {
	switch c {
	case ContentChar, ContentWord, ContentSentence, ContentParagraph:
		return true
	}
	return false
}

// Mode describes how the learner's audio reached the system.
type Mode string

const (
	// ModeOnline means audio was streamed to the ASR collaborator live.
	ModeOnline Mode = "online"

	// ModeOffline means audio was recorded client-side and submitted as a
	// base64 payload.
	ModeOffline Mode = "offline"
)

// IsValid reports whether m is a recognised submission mode.
func (m Mode) IsValid() bool {
	return m == ModeOnline || m == ModeOffline
}

// TokenScore is one scored syllable/grapheme of the original text (or, for
// anomaly entries, of the ASR alternative set).
type TokenScore struct {
	// Token is the tokenized unit as it appears in the text.
	Token string `json:"token"`

	// Hexcode is the stable per-language rendering code for the token.
	Hexcode string `json:"hexcode"`

	// Confidence is in [0, 1].
	Confidence float64 `json:"confidence_score"`

	// IdentificationStatus is 1 (confident), -1 (weak) or 0 (not identified).
	IdentificationStatus int `json:"identification_status"`
}

// ErrorRate carries the character- and word-level error rates reported by the
// text-eval collaborator.
type ErrorRate struct {
	Character float64 `json:"character"`
	Word      float64 `json:"word"`
}

// CountDiff is the absolute length difference between original and response,
// at character and word granularity.
type CountDiff struct {
	Character int `json:"character"`
	Word      int `json:"word"`
}

// EditOps is one class of edit operations (insertions, deletions or
// substitutions) from the text-eval alignment.
type EditOps struct {
	Chars []string `json:"chars"`
	Count int      `json:"count"`
}

// EditDistance groups the three edit-operation classes.
type EditDistance struct {
	Insertions    EditOps `json:"insertions"`
	Deletions     EditOps `json:"deletions"`
	Substitutions EditOps `json:"substitutions"`
}

// SilencePause summarises detected silences in the learner's audio.
type SilencePause struct {
	TotalDuration float64 `json:"total_duration"`
	Count         int     `json:"count"`
}

// ProsodyFluency holds the prosodic classifications and means attached to a
// session record when the collaborators report them.
type ProsodyFluency struct {
	PitchClassification      string  `json:"pitch_classification"`
	PitchMean                float64 `json:"pitch_mean"`
	PitchStd                 float64 `json:"pitch_std"`
	IntensityClassification  string  `json:"intensity_classification"`
	IntensityMean            float64 `json:"intensity_mean"`
	IntensityStd             float64 `json:"intensity_std"`
	TempoClassification      string  `json:"tempo_classification"`
	ExpressionClassification string  `json:"expression_classification"`
	SmoothnessClassification string  `json:"smoothness_classification"`
	RateClassification       string  `json:"rate_classification"`
	AccuracyClassification   string  `json:"accuracy_classification"`
	WordsPerMinute           float64 `json:"words_per_minute"`
}

// SessionRecord is one learner attempt at one piece of content. Records are
// created once and never mutated; a user's records form an append-only list.
type SessionRecord struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	SessionID    string      `json:"session_id"`
	SubSessionID string      `json:"sub_session_id"`
	ContentID    string      `json:"content_id"`
	ContentType  ContentType `json:"content_type"`
	Language     string      `json:"language"`

	OriginalText  string `json:"original_text"`
	ResponseText  string `json:"response_text"`
	ConstructText string `json:"construct_text"`

	ConfidenceScores   []TokenScore `json:"confidence_scores"`
	MissingTokenScores []TokenScore `json:"missing_token_scores"`
	AnomalyScores      []TokenScore `json:"anomaly_scores"`

	ErrorRate    ErrorRate    `json:"error_rate"`
	CountDiff    CountDiff    `json:"count_diff"`
	EditDistance EditDistance `json:"edit_distance"`

	FluencyScore    float64      `json:"fluency_score"`
	SilencePause    SilencePause `json:"silence_pause"`
	RepetitionCount int          `json:"repetition_count"`

	Prosody *ProsodyFluency `json:"prosody_fluency,omitempty"`

	IsRetry   bool      `json:"is_retry"`
	Mode      Mode      `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
}

// MilestoneRecord is one entry in the append-only milestone log. The current
// milestone for a (user, language) is the most recently created record.
type MilestoneRecord struct {
	UserID       string    `json:"user_id"`
	SessionID    string    `json:"session_id"`
	SubSessionID string    `json:"sub_session_id"`
	Language     string    `json:"language"`
	Level        string    `json:"milestone_level"`
	SubLevel     string    `json:"sub_milestone_level"`
	CreatedAt    time.Time `json:"created_at"`
}

// HexcodeEntry maps a language-specific token to its stable rendering code.
// Immutable reference data; never created or mutated by the engine.
type HexcodeEntry struct {
	Token     string   `json:"token"`
	Hexcode   string   `json:"hexcode"`
	Language  string   `json:"language"`
	IsCommon  bool     `json:"is_common"`
	IndexNo   int      `json:"index_no"`
	Graphemes []string `json:"graphemes,omitempty"`
}
