package grader

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to grade strictly and reply with bare
// JSON. Shared by every LLM-backed implementation.
const SystemPrompt = `You are grading a child's reading comprehension. ` +
	`You receive a passage and the transcript of the child's spoken retelling ` +
	`or answers. Score factual accuracy (0-10) and coverage of the passage's ` +
	`ideas (0-10); overall_score is their sum. Transcripts come from speech ` +
	`recognition, so ignore spelling-level noise and judge meaning only. ` +
	`Reply with a single JSON object and nothing else: ` +
	`{"overall_score": number, "accuracy": number, "completeness": number, "remarks": string}`

// BuildUserPrompt renders the grading request as the user message.
func BuildUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Language: %s\n\n", req.Language)
	fmt.Fprintf(&b, "Passage:\n%s\n\n", req.Passage)
	fmt.Fprintf(&b, "Child's transcript:\n%s\n", req.Transcript)
	return b.String()
}

// ParseResult decodes the model's reply, tolerating markdown code fences.
func ParseResult(reply string) (*Result, error) {
	cleaned := strings.TrimSpace(reply)
	if after, ok := strings.CutPrefix(cleaned, "```json"); ok {
		cleaned = after
	} else if after, ok := strings.CutPrefix(cleaned, "```"); ok {
		cleaned = after
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")

	var res Result
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return nil, fmt.Errorf("grader: parse model reply: %w", err)
	}
	if res.OverallScore < 0 || res.OverallScore > 20 {
		return nil, fmt.Errorf("grader: overall score %v outside 0-20", res.OverallScore)
	}
	return &res, nil
}
