package deal

import "dealcoach/pkg/money"

// Event is a single state change. Every entry point into the engine (numbers
// form, dealer-quote update, situation selection, reset) produces an Event and
// hands it to Apply, so the update logic lives in exactly one place.
type Event interface {
	apply(s *State) []string
}

// SetNumbers initializes or revises the buyer's numbers. A zero AskOTD derives
// the opening ask from the target. AGREE always tracks the target.
type SetNumbers struct {
	VehiclePrice money.Amount
	TargetOTD    money.Amount
	WalkAwayOTD  money.Amount
	AskOTD       money.Amount
	StateCode    string
}

func (e SetNumbers) apply(s *State) []string {
	s.VehiclePrice = e.VehiclePrice
	s.TargetOTD = e.TargetOTD
	s.WalkAwayOTD = e.WalkAwayOTD
	if e.StateCode != "" {
		s.StateCode = e.StateCode
	}
	s.Ladder.Agree = e.TargetOTD
	s.Ladder.Walk = e.WalkAwayOTD
	if e.AskOTD > 0 {
		s.Ladder.Ask = e.AskOTD
	} else if e.TargetOTD > 0 {
		// Open below target to leave room to concede up to it.
		s.Ladder.Ask = e.TargetOTD - 1000
	}
	return s.Warnings()
}

// LockLadder toggles the ladder guardrail. Locking with an unset WALK value is
// meaningless and reported as a warning.
type LockLadder struct {
	Locked bool
}

func (e LockLadder) apply(s *State) []string {
	s.Ladder.Locked = e.Locked
	if e.Locked && s.Ladder.Walk == 0 {
		return []string{"ladder locked without a WALK value - the guardrail has nothing to enforce"}
	}
	return nil
}

// DealerQuote records a new dealer OTD. The previous value is retained so the
// trend evaluator can compare against it.
type DealerQuote struct {
	Amount money.Amount
	Quoted string // the dealer's literal wording, when available
}

func (e DealerQuote) apply(s *State) []string {
	if s.DealerCurrentOTD != nil {
		prev := *s.DealerCurrentOTD
		s.LastDealerOTD = &prev
	}
	amt := e.Amount
	s.DealerCurrentOTD = &amt
	details := money.Format(e.Amount) + " OTD"
	if e.Quoted != "" {
		details = e.Quoted
	}
	s.Append(ActorDealer, "Dealer OTD "+money.Format(e.Amount), details)
	return nil
}

// SituationSelected records what is happening at the desk right now, either a
// known tag or free text the user typed.
type SituationSelected struct {
	Situation string
}

func (e SituationSelected) apply(s *State) []string {
	s.Situation = e.Situation
	return nil
}

// Note appends a user- or dealer-attributed timeline entry without touching
// the numeric state.
type Note struct {
	Actor   Actor
	Label   string
	Details string
}

func (e Note) apply(s *State) []string {
	s.Append(e.Actor, e.Label, e.Details)
	return nil
}

// Reset clears the negotiation. This is the only destructive operation the
// engine supports.
type Reset struct{}

func (e Reset) apply(s *State) []string {
	*s = State{}
	return nil
}

// Apply mutates the state with one event and returns any data-entry warnings.
// Warnings never block the flow; they surface in generated guidance.
func Apply(s *State, ev Event) []string {
	return ev.apply(s)
}
