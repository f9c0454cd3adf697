package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/vaanilabs/vaani/pkg/provider/asr"
	asrmock "github.com/vaanilabs/vaani/pkg/provider/asr/mock"
)

func asrResult(text string) *asr.Result {
	return &asr.Result{
		Denoised: asr.Transcription{
			Output: []asr.Output{{Source: text}},
		},
	}
}

func TestASRFallback_PrimarySuccess(t *testing.T) {
	primary := &asrmock.Provider{Result: asrResult("primary transcript")}
	secondary := &asrmock.Provider{Result: asrResult("secondary transcript")}

	fb := NewASRFallback(primary, "batch", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("stream", secondary)

	res, err := fb.Transcribe(context.Background(), asr.Request{AudioBase64: "aGk="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Denoised.Text(); got != "primary transcript" {
		t.Fatalf("transcript = %q, want 'primary transcript'", got)
	}
	if len(primary.TranscribeCalls) != 1 {
		t.Fatalf("primary called %d times, want 1", len(primary.TranscribeCalls))
	}
	if len(secondary.TranscribeCalls) != 0 {
		t.Fatalf("secondary called %d times, want 0", len(secondary.TranscribeCalls))
	}
}

func TestASRFallback_Failover(t *testing.T) {
	primary := &asrmock.Provider{TranscribeErr: errors.New("primary down")}
	secondary := &asrmock.Provider{Result: asrResult("secondary transcript")}

	fb := NewASRFallback(primary, "batch", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("stream", secondary)

	res, err := fb.Transcribe(context.Background(), asr.Request{AudioBase64: "aGk="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Denoised.Text(); got != "secondary transcript" {
		t.Fatalf("transcript = %q, want 'secondary transcript'", got)
	}
}

func TestASRFallback_AllFail(t *testing.T) {
	primary := &asrmock.Provider{TranscribeErr: errors.New("primary down")}
	secondary := &asrmock.Provider{TranscribeErr: errors.New("secondary down")}

	fb := NewASRFallback(primary, "batch", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("stream", secondary)

	_, err := fb.Transcribe(context.Background(), asr.Request{AudioBase64: "aGk="})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}
