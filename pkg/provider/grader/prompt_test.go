package grader_test

import (
	"strings"
	"testing"

	"github.com/vaanilabs/vaani/pkg/provider/grader"
)

func TestParseResult_BareJSON(t *testing.T) {
	res, err := grader.ParseResult(`{"overall_score": 16, "accuracy": 8, "completeness": 8, "remarks": "solid retelling"}`)
	if err != nil {
		t.Fatal(err)
	}
	if res.OverallScore != 16 || res.Accuracy != 8 || res.Completeness != 8 {
		t.Errorf("scores = %+v, want 16/8/8", res)
	}
	if res.Remarks != "solid retelling" {
		t.Errorf("Remarks = %q", res.Remarks)
	}
}

func TestParseResult_CodeFenced(t *testing.T) {
	reply := "```json\n{\"overall_score\": 10, \"accuracy\": 5, \"completeness\": 5, \"remarks\": \"partial\"}\n```"
	res, err := grader.ParseResult(reply)
	if err != nil {
		t.Fatal(err)
	}
	if res.OverallScore != 10 {
		t.Errorf("OverallScore = %v, want 10", res.OverallScore)
	}
}

func TestParseResult_OutOfRangeScore(t *testing.T) {
	if _, err := grader.ParseResult(`{"overall_score": 42}`); err == nil {
		t.Fatal("expected error for score outside 0-20")
	}
}

func TestParseResult_Garbage(t *testing.T) {
	if _, err := grader.ParseResult("I think the child did well."); err == nil {
		t.Fatal("expected error for non-JSON reply")
	}
}

func TestBuildUserPrompt_ContainsBothTexts(t *testing.T) {
	prompt := grader.BuildUserPrompt(grader.Request{
		Passage:    "The cat sat on the mat.",
		Transcript: "A cat was sitting on a mat.",
		Language:   "en",
	})
	if !strings.Contains(prompt, "The cat sat on the mat.") {
		t.Error("prompt is missing the passage")
	}
	if !strings.Contains(prompt, "A cat was sitting on a mat.") {
		t.Error("prompt is missing the transcript")
	}
}
