package guidance

import (
	"fmt"
	"strings"

	"dealcoach/pkg/assess"
	"dealcoach/pkg/deal"
	"dealcoach/pkg/money"
	"dealcoach/pkg/tactics"
)

// timelineTail is how many recent timeline entries the model sees. Enough for
// the back-and-forth rhythm, small enough to keep the prompt tight.
const timelineTail = 5

// SystemPrompt encodes the coaching rules plus the live deal numbers. The
// model is told the hard constraints in plain terms; the guardrail still
// re-checks the result because prompts are requests, not guarantees.
func SystemPrompt(state *deal.State, report assess.Report, trend assess.Trend, tags []tactics.Tactic, dealerText string) string {
	var b strings.Builder

	b.WriteString(`You are a car-buying negotiation coach sitting next to the buyer at the dealership desk. Respond in JSON only, with exactly these keys:
{
  "sayThis": "the single best thing to say right now, under 150 characters, spoken style",
  "ifPushback": "what to say if the dealer resists",
  "ifManager": "what to say if a manager joins, firm and closing-oriented",
  "stopSignal": "the buyer's next physical action, e.g. repeat the number and stay silent",
  "closingLine": "one firm, non-hedging closing statement",
  "nextMove": "one sentence, the immediate next physical action",
  "ladderSummary": "echo of the ASK/AGREE/WALK numbers",
  "redFlags": ["up to 3 short warnings"],
  "doNotSay": ["up to 2 short anti-patterns"]
}

Rules:
- Negotiate out-the-door price only. Never discuss monthly payments.
- When a target OTD is set, sayThis and closingLine must reference it.
- Never recommend accepting any amount above the WALK number.
- Short, speakable sentences. No hedging, no "maybe consider".
`)

	b.WriteString("\nCurrent deal state:\n")
	if state.VehiclePrice > 0 {
		fmt.Fprintf(&b, "- Vehicle price: %s\n", money.Format(state.VehiclePrice))
	}
	if state.TargetOTD > 0 {
		fmt.Fprintf(&b, "- Buyer target OTD: %s\n", money.Format(state.TargetOTD))
	} else {
		b.WriteString("- Buyer target OTD: not set yet (coach them to get the written OTD first, do not invent a number)\n")
	}
	if state.WalkAwayOTD > 0 {
		fmt.Fprintf(&b, "- Walk-away ceiling: %s\n", money.Format(state.WalkAwayOTD))
	}
	if state.DealerCurrentOTD != nil {
		fmt.Fprintf(&b, "- Dealer current OTD: %s\n", money.Format(*state.DealerCurrentOTD))
	} else {
		b.WriteString("- Dealer current OTD: unknown\n")
	}
	if state.LastDealerOTD != nil {
		fmt.Fprintf(&b, "- Dealer previous OTD: %s\n", money.Format(*state.LastDealerOTD))
	}
	if g := assess.Gap(state.DealerCurrentOTD, state.TargetOTD); g != nil && state.TargetOTD > 0 {
		fmt.Fprintf(&b, "- Gap to target: %s\n", money.Format(*g))
	}
	if trend != assess.TrendUnknown {
		fmt.Fprintf(&b, "- Offer trend: %s\n", trend)
	}
	fmt.Fprintf(&b, "- Confidence: %s (%s)\n", report.Level, report.Reason)
	if state.Ladder.Walk > 0 {
		lock := "unlocked"
		if state.Ladder.Locked {
			lock = "LOCKED - never suggest accepting above WALK"
		}
		fmt.Fprintf(&b, "- Ladder: ASK %s / AGREE %s / WALK %s (%s)\n",
			money.Format(state.Ladder.Ask), money.Format(state.Ladder.Agree),
			money.Format(state.Ladder.Walk), lock)
	}
	if len(tags) > 0 {
		names := make([]string, len(tags))
		for i, t := range tags {
			names[i] = string(t)
		}
		fmt.Fprintf(&b, "- Detected dealer tactics: %s\n", strings.Join(names, ", "))
	}
	if warnings := state.Warnings(); len(warnings) > 0 {
		fmt.Fprintf(&b, "- Data warnings to mention: %s\n", strings.Join(warnings, "; "))
	}
	if dealerText != "" {
		fmt.Fprintf(&b, "\nThe dealer's literal words: %q\n", dealerText)
	}
	if tail := recentTimeline(state); tail != "" {
		b.WriteString("\nRecent timeline:\n")
		b.WriteString(tail)
	}
	return b.String()
}

// UserPrompt restates the concrete situation the buyer needs help with.
func UserPrompt(situation, narration string) string {
	var b strings.Builder
	if situation != "" {
		fmt.Fprintf(&b, "What's happening: %s\n", situation)
	}
	if narration != "" {
		fmt.Fprintf(&b, "In the buyer's words: %s\n", narration)
	}
	if b.Len() == 0 {
		b.WriteString("Give me the next move in this negotiation.\n")
	}
	b.WriteString("What do I say right now?")
	return b.String()
}

// RetryPrompt amends a failed request, naming the exact fields the previous
// response omitted.
func RetryPrompt(missing []string) string {
	return fmt.Sprintf(
		"Your previous response was missing or left empty these required JSON fields: %s. "+
			"Respond again with the complete JSON object, every required field present and non-empty.",
		strings.Join(missing, ", "))
}

func recentTimeline(state *deal.State) string {
	n := len(state.Timeline)
	if n == 0 {
		return ""
	}
	start := n - timelineTail
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	for _, e := range state.Timeline[start:] {
		fmt.Fprintf(&b, "- [%s] %s", e.Actor, e.Label)
		if e.Details != "" {
			fmt.Fprintf(&b, ": %s", e.Details)
		}
		b.WriteString("\n")
	}
	return b.String()
}
