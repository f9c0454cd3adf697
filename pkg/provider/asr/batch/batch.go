// Package batch provides an asr.Provider backed by the speech service's
// batch REST endpoint. The full audio payload is submitted in one POST and
// both hypotheses come back in a single response. This is the offline
// submission path; see the stream package for the live path.
//
// Usage:
//
//	p, err := batch.New("http://speech.internal:9000",
//	    batch.WithTimeout(45*time.Second),
//	)
//	res, err := p.Transcribe(ctx, asr.Request{AudioBase64: b64, Language: "ta"})
package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vaanilabs/vaani/pkg/provider/asr"
	"github.com/vaanilabs/vaani/pkg/types"
)

const defaultTimeout = 60 * time.Second

// Compile-time assertion that Provider implements asr.Provider.
var _ asr.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithTimeout sets the end-to-end HTTP timeout. Defaults to 60 s; batch
// recognition of paragraph audio routinely takes tens of seconds.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider implements asr.Provider against the batch REST endpoint.
type Provider struct {
	serverURL  string
	httpClient *http.Client
}

// New creates a Provider for the speech service at serverURL. serverURL must
// be non-empty.
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("batch: serverURL must not be empty")
	}
	p := &Provider{
		serverURL:  serverURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// response is the wire shape of the speech service's batch reply.
type response struct {
	Denoised struct {
		Output []asr.Output `json:"output"`
	} `json:"asrOutDenoisedOutput"`
	BeforeDenoised struct {
		Output []asr.Output `json:"output"`
	} `json:"asrOutBeforeDenoised"`

	PauseCount int     `json:"pause_count"`
	AvgPause   float64 `json:"avg_pause"`

	PitchClassification      string  `json:"pitch_classification"`
	PitchMean                float64 `json:"pitch_mean"`
	PitchStd                 float64 `json:"pitch_std"`
	IntensityClassification  string  `json:"intensity_classification"`
	IntensityMean            float64 `json:"intensity_mean"`
	IntensityStd             float64 `json:"intensity_std"`
	TempoClassification      string  `json:"tempo_classification"`
	ExpressionClassification string  `json:"expression_classification"`
	SmoothnessClassification string  `json:"smoothness_classification"`
}

// Transcribe POSTs the request to the /transcribe endpoint and decodes both
// hypotheses from the reply.
func (p *Provider) Transcribe(ctx context.Context, req asr.Request) (*asr.Result, error) {
	if req.AudioBase64 == "" {
		return nil, errors.New("batch: audio payload must not be empty")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("batch: marshal request: %w", err)
	}

	endpoint := p.serverURL + "/transcribe"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("batch: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("batch: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("batch: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("batch: read response body: %w", err)
	}

	var wire response
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("batch: parse JSON response: %w", err)
	}

	return toResult(wire), nil
}

// toResult maps the wire shape onto the provider-neutral result.
func toResult(wire response) *asr.Result {
	res := &asr.Result{
		Denoised:    asr.Transcription{Output: wire.Denoised.Output},
		NonDenoised: asr.Transcription{Output: wire.BeforeDenoised.Output},
		PauseCount:  wire.PauseCount,
		AvgPause:    wire.AvgPause,
	}
	// Short clips yield no acoustic classification at all.
	if wire.PitchClassification != "" || wire.IntensityClassification != "" ||
		wire.TempoClassification != "" || wire.ExpressionClassification != "" {
		res.Prosody = &types.ProsodyFluency{
			PitchClassification:      wire.PitchClassification,
			PitchMean:                wire.PitchMean,
			PitchStd:                 wire.PitchStd,
			IntensityClassification:  wire.IntensityClassification,
			IntensityMean:            wire.IntensityMean,
			IntensityStd:             wire.IntensityStd,
			TempoClassification:      wire.TempoClassification,
			ExpressionClassification: wire.ExpressionClassification,
			SmoothnessClassification: wire.SmoothnessClassification,
		}
	}
	return res
}
