// Package asr defines the Provider interface for the speech-recognition
// backends that transcribe learner audio.
//
// The backend returns two parallel transcriptions of the same audio — one
// from the denoised signal and one from the raw signal — each carrying
// per-word n-best sub-token alternatives with probabilities. The reconciler
// picks between the two hypotheses downstream; providers never choose.
//
// Implementations must be safe for concurrent use.
package asr

import (
	"context"
	"strings"

	"github.com/vaanilabs/vaani/pkg/types"
)

// Request is one transcription request.
type Request struct {
	// AudioBase64 is the learner's audio, base64-encoded by the client.
	AudioBase64 string `json:"audio_base64"`

	// Language is the language code recognition runs under.
	Language string `json:"language"`

	// ContentType hints the expected granularity of the utterance.
	ContentType types.ContentType `json:"content_type"`
}

// TokenAlternatives is the n-best sub-token set for one recognized word.
// Each map in Tokens ranks candidate sub-tokens by probability.
type TokenAlternatives struct {
	Word   string               `json:"word"`
	Tokens []map[string]float64 `json:"tokens"`
}

// Output is one recognized segment with its alternatives.
type Output struct {
	Source      string              `json:"source"`
	NBestTokens []TokenAlternatives `json:"nBestTokens"`
}

// Transcription is one full hypothesis over the audio.
type Transcription struct {
	Output []Output `json:"output"`
}

// Text joins the segment sources into the hypothesis text.
func (t Transcription) Text() string {
	parts := make([]string, 0, len(t.Output))
	for _, o := range t.Output {
		if o.Source != "" {
			parts = append(parts, o.Source)
		}
	}
	return strings.Join(parts, " ")
}

// Alternative is one candidate sub-token with its recognition probability.
type Alternative struct {
	Subtoken    string
	Probability float64
}

// Alternatives flattens the hypothesis' n-best maps into a single candidate
// list. Duplicate sub-tokens are preserved; consumers take the maximum
// probability per sub-token.
func (t Transcription) Alternatives() []Alternative {
	var alts []Alternative
	for _, o := range t.Output {
		for _, nb := range o.NBestTokens {
			for _, ranked := range nb.Tokens {
				for sub, prob := range ranked {
					alts = append(alts, Alternative{Subtoken: sub, Probability: prob})
				}
			}
		}
	}
	return alts
}

// Result is everything one transcription request produces.
type Result struct {
	// Denoised is the hypothesis over the noise-filtered signal.
	Denoised Transcription

	// NonDenoised is the hypothesis over the raw signal.
	NonDenoised Transcription

	// PauseCount is the number of silences detected in the audio.
	PauseCount int

	// AvgPause is the mean silence duration in seconds, when reported.
	AvgPause float64

	// Prosody carries the acoustic classifications the backend computed, when
	// the audio was long enough to classify. Rate and accuracy fields are
	// filled in downstream.
	Prosody *types.ProsodyFluency
}

// Provider is the abstraction over any speech-recognition backend.
type Provider interface {
	// Transcribe submits audio for recognition and blocks until both
	// hypotheses are available or ctx is done.
	Transcribe(ctx context.Context, req Request) (*Result, error)
}
