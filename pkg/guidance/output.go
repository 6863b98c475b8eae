// Package guidance produces the coaching output for one moment of a live
// negotiation: what to say, what to do when the dealer pushes back, and where
// the hard lines are. A live model writes it when available; a deterministic
// rule table writes it otherwise, and the ladder guardrail decides which of
// the two the user actually sees.
package guidance

import (
	"encoding/json"
	"strings"
)

// Field length budgets in characters. Everything is meant to be speakable at a
// desk, not read from a screen.
const (
	maxSayThis       = 150
	maxPushback      = 200
	maxManager       = 200
	maxStopSignal    = 160
	maxClosingLine   = 160
	maxNextMove      = 160
	maxLadderSummary = 120
	maxBullet        = 110

	maxRedFlags = 3
	maxDoNotSay = 2
)

// Output is the full coaching payload. Every string field is required; the
// bullet arrays may be empty but never exceed their caps.
type Output struct {
	SayThis       string   `json:"sayThis"`
	IfPushback    string   `json:"ifPushback"`
	IfManager     string   `json:"ifManager"`
	StopSignal    string   `json:"stopSignal"`
	ClosingLine   string   `json:"closingLine"`
	NextMove      string   `json:"nextMove"`
	LadderSummary string   `json:"ladderSummary"`
	RedFlags      []string `json:"redFlags"`
	DoNotSay      []string `json:"doNotSay"`
}

// Source records which path produced an output.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

var requiredFields = []string{
	"sayThis", "ifPushback", "ifManager", "stopSignal", "closingLine", "nextMove", "ladderSummary",
}

// Parse validates a raw model response against the output schema. The second
// return value lists every missing or empty required field; a non-empty list
// means the response is invalid and the caller decides between retry and
// fallback. Responses wrapped in markdown fences are unwrapped first.
func Parse(raw string) (Output, []string) {
	cleaned := stripFences(raw)

	var out Output
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return Output{}, append([]string{}, requiredFields...)
	}

	byName := map[string]string{
		"sayThis":       out.SayThis,
		"ifPushback":    out.IfPushback,
		"ifManager":     out.IfManager,
		"stopSignal":    out.StopSignal,
		"closingLine":   out.ClosingLine,
		"nextMove":      out.NextMove,
		"ladderSummary": out.LadderSummary,
	}
	var missing []string
	for _, name := range requiredFields {
		if strings.TrimSpace(byName[name]) == "" {
			missing = append(missing, name)
		}
	}
	return out, missing
}

// Normalize enforces the length budgets: long fields are truncated, bullet
// arrays are capped. Called on every output regardless of source.
func Normalize(out Output) Output {
	out.SayThis = clip(out.SayThis, maxSayThis)
	out.IfPushback = clip(out.IfPushback, maxPushback)
	out.IfManager = clip(out.IfManager, maxManager)
	out.StopSignal = clip(out.StopSignal, maxStopSignal)
	out.ClosingLine = clip(out.ClosingLine, maxClosingLine)
	out.NextMove = clip(out.NextMove, maxNextMove)
	out.LadderSummary = clip(out.LadderSummary, maxLadderSummary)

	if len(out.RedFlags) > maxRedFlags {
		out.RedFlags = out.RedFlags[:maxRedFlags]
	}
	if len(out.DoNotSay) > maxDoNotSay {
		out.DoNotSay = out.DoNotSay[:maxDoNotSay]
	}
	for i, b := range out.RedFlags {
		out.RedFlags[i] = clip(b, maxBullet)
	}
	for i, b := range out.DoNotSay {
		out.DoNotSay[i] = clip(b, maxBullet)
	}
	return out
}

func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max-1]) + "…"
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
