// Package tactics recognizes dealer negotiation tactics from text. Matching is
// deliberately dumb keyword work: the tags feed prompt construction and the
// deterministic fallback tables, so a false "Standard negotiation" is cheap and
// a hallucinated tag is not.
package tactics

import "strings"

// Tactic is a named dealer behavior pattern.
type Tactic string

const (
	PaymentAnchoring    Tactic = "Payment anchoring"
	Urgency             Tactic = "Urgency"
	AddOnShove          Tactic = "Add-on shove"
	ManagerEscalation   Tactic = "Manager escalation"
	FeeWall             Tactic = "Fee wall"
	CommitmentPressure  Tactic = "Commitment pressure"
	TradeInLowball      Tactic = "Trade-in lowball"
	CounterOffer        Tactic = "Counter offer"
	StandardNegotiation Tactic = "Standard negotiation"
)

var paymentWords = []string{"monthly", "per month", "/mo", "payment"}
var urgencyWords = []string{"today only", "someone else", "won't last", "wont last", "another buyer", "right now or"}
var addOnWords = []string{"add-on", "addon", "protection", "nitrogen", "etch", "coating", "warranty package", "paint protection"}
var managerWords = []string{"manager", "sales desk", "let me go check"}
var commitmentWords = []string{"sign today", "commit now", "buy today", "ready to sign"}
var counterWords = []string{"counter", "meet in the middle", "split the difference", "best i can do", "came back with"}

// Classify maps free text (what the user typed, or a pasted dealer message) to
// every matching tactic. Never returns an empty slice: when nothing matches,
// the result is exactly [Standard negotiation].
func Classify(text string) []Tactic {
	lower := strings.ToLower(text)
	var tags []Tactic

	add := func(tag Tactic, words ...string) {
		for _, w := range words {
			if strings.Contains(lower, w) {
				tags = append(tags, tag)
				return
			}
		}
	}

	add(PaymentAnchoring, paymentWords...)
	add(Urgency, urgencyWords...)
	add(AddOnShove, addOnWords...)
	add(ManagerEscalation, managerWords...)
	if strings.Contains(lower, "fee") && (strings.Contains(lower, "non-negotiable") ||
		strings.Contains(lower, "non negotiable") || strings.Contains(lower, "fixed")) {
		tags = append(tags, FeeWall)
	}
	add(CommitmentPressure, commitmentWords...)
	if strings.Contains(lower, "trade") && (strings.Contains(lower, "low") || strings.Contains(lower, "best")) {
		tags = append(tags, TradeInLowball)
	}
	add(CounterOffer, counterWords...)

	if len(tags) == 0 {
		return []Tactic{StandardNegotiation}
	}
	return tags
}

// ClassifySituation maps a discrete "what's happening" selection to exactly one
// tactic via a priority ladder. Unlike Classify, the first match wins; a
// situation describes one thing.
func ClassifySituation(situation string) Tactic {
	lower := strings.ToLower(situation)
	switch {
	case containsAny(lower, "payment", "monthly"):
		return PaymentAnchoring
	case containsAny(lower, "add-on", "addon", "protection", "accessor"):
		return AddOnShove
	case containsAny(lower, "manager"):
		return ManagerEscalation
	case containsAny(lower, "fee"):
		return FeeWall
	case containsAny(lower, "today only", "urgen", "someone else", "won't last", "wont last"):
		return Urgency
	case containsAny(lower, "sign", "commit"):
		return CommitmentPressure
	case containsAny(lower, "trade"):
		return TradeInLowball
	case containsAny(lower, "counter"):
		return CounterOffer
	default:
		return StandardNegotiation
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
