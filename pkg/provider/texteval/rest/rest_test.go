package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vaanilabs/vaani/pkg/provider/texteval"
	"github.com/vaanilabs/vaani/pkg/provider/texteval/rest"
)

func TestNew_EmptyServerURL_ReturnsError(t *testing.T) {
	if _, err := rest.New(""); err == nil {
		t.Fatal("expected error for empty serverURL")
	}
}

func TestEvaluate_EmptyReference_ReturnsError(t *testing.T) {
	p, err := rest.New("http://localhost:1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Evaluate(context.Background(), texteval.Request{Hypothesis: "cat"}); err == nil {
		t.Fatal("expected error for empty reference")
	}
}

func TestEvaluate_DecodesMetrics(t *testing.T) {
	var gotReq texteval.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/evaluate" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"wer":                  0.25,
			"cer":                  0.1,
			"insertion":            []string{"x"},
			"deletion":             []string{"t"},
			"substitution":         []string{},
			"construct_text":       "cat sat",
			"tempo_classification": "natural",
			"rate_classification":  "too slow",
			"pause_count":          3,
			"words_per_minute":     82.5,
		})
	}))
	defer srv.Close()

	p, err := rest.New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	m, err := p.Evaluate(context.Background(), texteval.Request{
		Reference:  "cat sat",
		Hypothesis: "cax sat",
		Language:   "en",
	})
	if err != nil {
		t.Fatal(err)
	}

	if gotReq.Reference != "cat sat" || gotReq.Hypothesis != "cax sat" {
		t.Errorf("server saw request %+v", gotReq)
	}
	if m.WER != 0.25 || m.CER != 0.1 {
		t.Errorf("rates = (%v, %v), want (0.25, 0.1)", m.WER, m.CER)
	}
	if m.ConstructText != "cat sat" {
		t.Errorf("ConstructText = %q, want %q", m.ConstructText, "cat sat")
	}
	if m.RateClassification != "too slow" || m.PauseCount != 3 {
		t.Errorf("pacing = (%q, %d), want (too slow, 3)", m.RateClassification, m.PauseCount)
	}
	if len(m.Insertions) != 1 || m.Insertions[0] != "x" {
		t.Errorf("Insertions = %v, want [x]", m.Insertions)
	}
}

func TestEvaluate_ServerError_ReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := rest.New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Evaluate(context.Background(), texteval.Request{Reference: "cat"}); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}
