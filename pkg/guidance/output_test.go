package guidance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResponse = `{
	"sayThis": "I'm at $25,000 out the door.",
	"ifPushback": "That's my number.",
	"ifManager": "Same number: $25,000 OTD, today.",
	"stopSignal": "Repeat $25,000 once, stay silent.",
	"closingLine": "$25,000 out the door and I'll sign.",
	"nextMove": "Ask for the itemized worksheet.",
	"ladderSummary": "ASK $26,500 / AGREE $25,000 / WALK $25,800",
	"redFlags": ["add-ons on worksheet"],
	"doNotSay": ["monthly payment talk"]
}`

func TestParseValidResponse(t *testing.T) {
	out, missing := Parse(validResponse)
	assert.Empty(t, missing)
	assert.Equal(t, "I'm at $25,000 out the door.", out.SayThis)
	assert.Equal(t, []string{"add-ons on worksheet"}, out.RedFlags)
}

func TestParseUnwrapsMarkdownFences(t *testing.T) {
	wrapped := "```json\n" + validResponse + "\n```"
	_, missing := Parse(wrapped)
	assert.Empty(t, missing)
}

func TestParseReportsMissingFields(t *testing.T) {
	out, missing := Parse(`{"sayThis": "hello", "redFlags": []}`)
	assert.Equal(t, "hello", out.SayThis)
	assert.Contains(t, missing, "ifPushback")
	assert.Contains(t, missing, "closingLine")
	assert.NotContains(t, missing, "sayThis")
	assert.NotContains(t, missing, "redFlags", "bullet arrays may legitimately be empty")
}

func TestParseGarbageIsAllMissing(t *testing.T) {
	_, missing := Parse("the dealer seems nice, just pay whatever")
	assert.Len(t, missing, len(requiredFields))
}

func TestParseWhitespaceOnlyFieldIsMissing(t *testing.T) {
	_, missing := Parse(`{"sayThis": "  ", "ifPushback": "x", "ifManager": "x",
		"stopSignal": "x", "closingLine": "x", "nextMove": "x", "ladderSummary": "x"}`)
	assert.Equal(t, []string{"sayThis"}, missing)
}

func TestNormalizeTruncates(t *testing.T) {
	out := Output{
		SayThis:  strings.Repeat("a", 500),
		RedFlags: []string{"1", "2", "3", "4", "5"},
		DoNotSay: []string{"1", "2", "3"},
	}
	n := Normalize(out)
	require.LessOrEqual(t, len(n.SayThis), maxSayThis+len("…"))
	assert.Len(t, n.RedFlags, maxRedFlags)
	assert.Len(t, n.DoNotSay, maxDoNotSay)
}
