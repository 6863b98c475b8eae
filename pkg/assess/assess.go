// Package assess holds the pure evaluators over a negotiation's numbers: the
// dealer-vs-target gap, the offer trend, and the traffic-light confidence
// verdict. Everything here is total; there is nothing to fail.
package assess

import (
	"fmt"

	"dealcoach/pkg/money"
)

// Confidence thresholds in dollars of gap between the dealer's OTD and the
// target. Fixed design constants; green < yellow < red boundaries must stay
// strictly increasing.
const (
	GreenGapMax  money.Amount = 300
	YellowGapMax money.Amount = 1000
)

// Level is the traffic-light verdict on the current numbers.
type Level string

const (
	LevelGreen  Level = "green"
	LevelYellow Level = "yellow"
	LevelRed    Level = "red"
)

// Trend describes how the dealer's latest OTD compares to their previous one.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendWorsening Trend = "worsening"
	TrendStalled   Trend = "stalled"
	TrendUnknown   Trend = ""
)

// Report is the confidence verdict plus the rationale behind it.
type Report struct {
	Level           Level    `json:"level"`
	Reason          string   `json:"reason"`
	WhatWouldChange []string `json:"whatWouldChange"`
}

// Gap returns dealerOTD - targetOTD (positive = dealer above target), or nil
// when no dealer OTD is known yet.
func Gap(dealerOTD *money.Amount, targetOTD money.Amount) *money.Amount {
	if dealerOTD == nil {
		return nil
	}
	g := *dealerOTD - targetOTD
	return &g
}

// OfferTrend compares the dealer's latest OTD with their previous one.
// Unknown until two offers exist.
func OfferTrend(current, previous *money.Amount) Trend {
	if current == nil || previous == nil {
		return TrendUnknown
	}
	switch {
	case *current < *previous:
		return TrendImproving
	case *current > *previous:
		return TrendWorsening
	default:
		return TrendStalled
	}
}

// Confidence produces the traffic-light verdict for the current numbers.
func Confidence(dealerOTD *money.Amount, targetOTD money.Amount) Report {
	if dealerOTD == nil {
		return Report{
			Level:  LevelYellow,
			Reason: "Waiting for the dealer's OTD number. Nothing to judge until you have it in writing.",
			WhatWouldChange: []string{
				"Get itemized OTD breakdown",
				"Confirm all fees included",
				"Verify no hidden add-ons",
			},
		}
	}

	gap := *dealerOTD - targetOTD
	switch {
	case gap <= GreenGapMax:
		return Report{
			Level: LevelGreen,
			Reason: fmt.Sprintf("Dealer is within %s of your target %s. This is a closeable gap.",
				money.Format(abs(gap)), money.Format(targetOTD)),
			WhatWouldChange: []string{
				"Add-ons appearing on the final worksheet",
				"Fees increasing at signing",
				"Trade-in value dropping from the quoted number",
			},
		}
	case gap <= YellowGapMax:
		return Report{
			Level: LevelYellow,
			Reason: fmt.Sprintf("Dealer is %s above your target %s. Above target but negotiable.",
				money.Format(gap), money.Format(targetOTD)),
			WhatWouldChange: []string{
				"Request the itemized OTD breakdown",
				"Remove optional add-ons",
				"Negotiate the doc fee down",
				"Walk and follow up in 24 hours",
			},
		}
	default:
		return Report{
			Level: LevelRed,
			Reason: fmt.Sprintf("Dealer is %s above your target %s. That is an aggressive gap.",
				money.Format(gap), money.Format(targetOTD)),
			WhatWouldChange: []string{
				fmt.Sprintf("A price cut bringing OTD near %s", money.Format(targetOTD)),
				"All add-ons removed from the worksheet",
				"A materially better trade-in number",
				"Otherwise: walk",
			},
		}
	}
}

func abs(a money.Amount) money.Amount {
	if a < 0 {
		return -a
	}
	return a
}
