// Package grader defines the Provider interface for LLM-backed comprehension
// grading. In mechanics mode the learner retells or answers questions about a
// passage; the grader scores the transcript against the passage on a 0–20
// scale. The milestone engine treats an overall score of 14 or more as a
// comprehension pass.
package grader

import "context"

// Request is one grading request.
type Request struct {
	// Passage is the text the learner read.
	Passage string

	// Transcript is the chosen ASR transcript of the learner's answer.
	Transcript string

	// Language is the language code of both texts.
	Language string
}

// Result is the grader's assessment.
type Result struct {
	// OverallScore is the 0–20 comprehension score.
	OverallScore float64 `json:"overall_score"`

	// Accuracy scores factual correctness of the retelling, 0–10.
	Accuracy float64 `json:"accuracy"`

	// Completeness scores coverage of the passage's ideas, 0–10.
	Completeness float64 `json:"completeness"`

	// Remarks is a short teacher-facing justification.
	Remarks string `json:"remarks"`
}

// Provider is the abstraction over any grading backend.
type Provider interface {
	// Grade scores the transcript against the passage, blocking until the
	// result is available or ctx is done.
	Grade(ctx context.Context, req Request) (*Result, error)
}
