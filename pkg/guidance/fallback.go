package guidance

import (
	"fmt"

	"dealcoach/pkg/deal"
	"dealcoach/pkg/money"
	"dealcoach/pkg/tactics"
)

// genericAsk is spoken in place of a target number when the user has not set
// one. The fallback never invents a figure.
const genericAsk = "I need the full out-the-door price in writing"

// spokenTarget returns the dollar figure the fallback is allowed to put in the
// user's mouth. When the ladder is locked the figure is capped at WALK, which
// is what makes the fallback guardrail-safe by construction rather than by
// post-hoc checking.
func spokenTarget(state *deal.State) (money.Amount, bool) {
	t := state.TargetOTD
	if t <= 0 {
		return 0, false
	}
	if state.Ladder.Locked && state.Ladder.Walk > 0 && t > state.Ladder.Walk {
		t = state.Ladder.Walk
	}
	return t, true
}

// Fallback builds deterministic, numerically personalized coaching for one
// tactic. It needs no network, no entitlement and no model; it is the floor
// the whole engine degrades to.
func Fallback(state *deal.State, tag tactics.Tactic) Output {
	target, hasTarget := spokenTarget(state)
	targetStr := money.Format(target)

	out := Output{
		SayThis:     fmt.Sprintf("I'm focused on one number: %s out the door.", targetStr),
		IfPushback:  fmt.Sprintf("I understand, but %s OTD is my number. If we can't get there I'll keep shopping.", targetStr),
		IfManager:   fmt.Sprintf("Same number I gave your colleague: %s out the door, and I can sign today.", targetStr),
		StopSignal:  fmt.Sprintf("Repeat %s OTD once, then stay silent and wait.", targetStr),
		ClosingLine: fmt.Sprintf("%s out the door and I'll sign right now.", targetStr),
		NextMove:    "Ask for the full itemized out-the-door worksheet in writing.",
		RedFlags: []string{
			"Numbers quoted verbally instead of on the worksheet",
			"New fees appearing between quotes",
		},
		DoNotSay: []string{
			"Anything about monthly payments",
			"That you love the car",
		},
	}

	if !hasTarget {
		out.SayThis = genericAsk + " before we go any further."
		out.IfPushback = "No number in writing, no deal. " + genericAsk + "."
		out.IfManager = "Happy to talk once I have the itemized out-the-door price in writing."
		out.StopSignal = "Ask for the written OTD once, then stay silent."
		out.ClosingLine = "Put the full out-the-door price in writing and we can talk about closing."
	}

	if state.Ladder.Walk > 0 {
		out.LadderSummary = fmt.Sprintf("ASK %s / AGREE %s / WALK %s",
			money.Format(state.Ladder.Ask), money.Format(state.Ladder.Agree), money.Format(state.Ladder.Walk))
	} else {
		out.LadderSummary = "Set your ASK / AGREE / WALK numbers before you counter."
	}

	applyTactic(&out, state, tag, targetStr, hasTarget)
	return Normalize(out)
}

func applyTactic(out *Output, state *deal.State, tag tactics.Tactic, targetStr string, hasTarget bool) {
	switch tag {
	case tactics.PaymentAnchoring:
		if hasTarget {
			out.SayThis = fmt.Sprintf("Let's keep this to one number - the out-the-door price. I'm at %s OTD.", targetStr)
		} else {
			out.SayThis = "Let's keep this to one number - the out-the-door price, in writing."
		}
		out.NextMove = "Redirect every payment question back to the total OTD figure."
		out.RedFlags = []string{
			"Four-square worksheet on the desk",
			"Asking your budget instead of quoting a price",
			"Stretching the loan term to hide the total",
		}
		out.DoNotSay = []string{"A monthly payment you'd be comfortable with"}

	case tactics.Urgency:
		if hasTarget {
			out.SayThis = fmt.Sprintf("If the price is only good today, it's not my deal. I'm at %s OTD whenever you're ready.", targetStr)
		} else {
			out.SayThis = "If the price is only good today, it's not my deal. Put it in writing and I'll consider it."
		}
		out.NextMove = "Stand up if the pressure continues; the deal will survive the walk to the door."
		out.RedFlags = []string{
			"\"Another buyer is coming\" with no name attached",
			"Discount that expires the moment you leave",
		}
		out.DoNotSay = []string{"That you need the car this week"}

	case tactics.AddOnShove:
		if hasTarget {
			out.SayThis = fmt.Sprintf("Remove the add-ons and show me the itemized OTD. My number is %s.", targetStr)
		} else {
			out.SayThis = "Remove the add-ons and show me the itemized out-the-door price."
		}
		out.NextMove = "Ask for the worksheet reprinted with every add-on line deleted."
		out.RedFlags = []string{
			"Nitrogen, etch or protection lines on the worksheet",
			"\"It's already installed\" on dealer add-ons",
			"Add-ons bundled into the quoted OTD",
		}
		out.DoNotSay = []string{"That any add-on sounds useful"}

	case tactics.ManagerEscalation:
		if hasTarget {
			out.SayThis = fmt.Sprintf("Happy to talk. The number that closes this today is %s out the door.", targetStr)
		}
		out.NextMove = "Let the manager talk first; restate your OTD once, unchanged."
		out.RedFlags = []string{
			"Fresh worksheet with the numbers reshuffled",
			"Manager re-anchoring on monthly payment",
		}
		out.DoNotSay = []string{"A new number the salesperson hasn't heard"}

	case tactics.FeeWall:
		if hasTarget {
			out.SayThis = fmt.Sprintf("If the fee is fixed, find the room in the price - my %s OTD already includes every fee.", targetStr)
		} else {
			out.SayThis = "If the fee is fixed, find the room in the vehicle price. I negotiate the total, not the lines."
		}
		out.NextMove = "Ask which lines on the worksheet are not fixed, and push there."
		out.RedFlags = []string{
			"Doc fee far above your state's typical",
			"\"Non-negotiable\" covering more than the doc fee",
		}
		out.DoNotSay = []string{"That fees are fine if the price is right"}

	case tactics.CommitmentPressure:
		if hasTarget {
			out.SayThis = fmt.Sprintf("I'll sign today at %s out the door. Otherwise I'm taking the night.", targetStr)
		} else {
			out.SayThis = "I'll commit when the full out-the-door price is in writing, not before."
		}
		out.NextMove = "Make the signature conditional on your number, then stop talking."
		out.RedFlags = []string{
			"Paper slid across the desk before a number is agreed",
			"\"What would it take to earn your business today\"",
		}
		out.DoNotSay = []string{"Yes to anything not written on the worksheet"}

	case tactics.TradeInLowball:
		out.SayThis = "Keep the trade out of it for now. What's the out-the-door price on the car alone?"
		out.NextMove = "Settle the vehicle OTD first, then negotiate the trade as its own deal."
		out.RedFlags = []string{
			"Trade value blended into the new-car discount",
			"Appraisal far below your online quotes",
		}
		out.DoNotSay = []string{"Your trade's payoff amount", "That you'll take whatever they offer for it"}

	case tactics.CounterOffer:
		if hasTarget {
			out.SayThis = fmt.Sprintf("I hear you. My number is %s out the door - that closes this right now.", targetStr)
		}
		out.NextMove = "Counter once, hold, and let the silence do the work."
		out.RedFlags = []string{
			"Counter that moves fees instead of price",
			"Splitting the difference more than once",
		}
		out.DoNotSay = []string{"A counter above your AGREE number this early"}
	}
}
