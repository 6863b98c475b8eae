// Package deal holds the canonical state of one in-person negotiation: the
// buyer's numbers, the dealer's offers, the ASK/AGREE/WALK ladder, and the
// append-only timeline. Every entry point into the engine mutates this state
// through Apply so that no two call sites can disagree about the fields.
package deal

import (
	"time"

	"github.com/oklog/ulid/v2"

	"dealcoach/pkg/money"
)

// Actor identifies who a timeline entry belongs to.
type Actor string

const (
	ActorYou    Actor = "you"
	ActorDealer Actor = "dealer"
	ActorCoach  Actor = "coach"
)

// TimelineEntry is one event in the negotiation audit log. Entries are only
// ever appended; insertion order is the meaningful order.
type TimelineEntry struct {
	ID      string    `json:"id"`
	At      time.Time `json:"at"`
	Actor   Actor     `json:"actor"`
	Label   string    `json:"label"`
	Details string    `json:"details,omitempty"`
}

// Ladder is the three-rung negotiation ladder. While Locked is true, the Walk
// value is a hard ceiling: no emitted guidance may suggest accepting more.
type Ladder struct {
	Ask    money.Amount `json:"ask"`
	Agree  money.Amount `json:"agree"`
	Walk   money.Amount `json:"walk"`
	Locked bool         `json:"locked"`
}

// State is the full record of one negotiation in progress.
type State struct {
	VehiclePrice     money.Amount    `json:"vehiclePrice"`
	TargetOTD        money.Amount    `json:"targetOTD"`
	WalkAwayOTD      money.Amount    `json:"walkAwayOTD"`
	DealerCurrentOTD *money.Amount   `json:"dealerCurrentOTD"`
	LastDealerOTD    *money.Amount   `json:"lastDealerOTD"`
	StateCode        string          `json:"stateCode"`
	Situation        string          `json:"situation,omitempty"`
	Ladder           Ladder          `json:"ladder"`
	Timeline         []TimelineEntry `json:"timeline"`
	AIEnabled        bool            `json:"aiEnabled"`
}

// New returns an empty negotiation state.
func New() *State {
	return &State{}
}

// Append adds a timeline entry. The timeline is never reordered or deduplicated.
func (s *State) Append(actor Actor, label, details string) {
	s.Timeline = append(s.Timeline, TimelineEntry{
		ID:      ulid.Make().String(),
		At:      time.Now(),
		Actor:   actor,
		Label:   label,
		Details: details,
	})
}

// Warnings reports data-entry problems that should surface in guidance text
// rather than block the flow. The user may be mid-adjustment, so a walk-away
// below target is a warning, not an error.
func (s *State) Warnings() []string {
	var warnings []string
	if s.TargetOTD > 0 && s.WalkAwayOTD > 0 && s.WalkAwayOTD < s.TargetOTD {
		warnings = append(warnings,
			"your walk-away ("+money.Format(s.WalkAwayOTD)+") is below your target ("+money.Format(s.TargetOTD)+") - double-check those numbers")
	}
	if s.Ladder.Locked && s.Ladder.Walk < s.Ladder.Agree {
		warnings = append(warnings,
			"ladder WALK ("+money.Format(s.Ladder.Walk)+") is below AGREE ("+money.Format(s.Ladder.Agree)+")")
	}
	return warnings
}
