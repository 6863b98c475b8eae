package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"dealcoach/pkg/assess"
	"dealcoach/pkg/deal"
	"dealcoach/pkg/guidance"
	"dealcoach/pkg/money"
	"dealcoach/pkg/offer"
	"dealcoach/pkg/tactics"
	"dealcoach/pkg/taxes"
	"dealcoach/pkg/utils"
)

// ErrDealerOTDRequired gates the negotiation-math steps: without a dealer OTD
// there is nothing to counter against, and the caller should route the user
// back to the itemized-OTD step.
var ErrDealerOTDRequired = errors.New("no dealer OTD recorded yet - get the itemized out-the-door price first")

// ErrNoAmountFound means the dealer text contained nothing in the plausible
// OTD range.
var ErrNoAmountFound = errors.New("no plausible dollar amount found in that text")

// Capabilities carries the per-request collaborators: whether this user owns
// the in-person pack, and the chat client when one is configured. The engine
// never reads ambient globals for either.
type Capabilities struct {
	Entitled bool
	Client   guidance.ChatClient
}

// NumbersInput is the step-0 form.
type NumbersInput struct {
	VehiclePrice money.Amount
	TargetOTD    money.Amount
	WalkAwayOTD  money.Amount
	AskOTD       money.Amount
	StateCode    string
	LockLadder   bool
	AIEnabled    bool
}

// Recommendation is the output of the counter/close/walk step.
type Recommendation struct {
	Action          Action          `json:"action"`
	Rationale       string          `json:"rationale"`
	EstimatedTarget *money.Amount   `json:"estimatedTarget,omitempty"`
	Confidence      assess.Report   `json:"confidence"`
	Trend           assess.Trend    `json:"trend,omitempty"`
	Guidance        guidance.Output `json:"guidance"`
	Source          guidance.Source `json:"source"`
}

// TacticResult is the output of the handle-tactic step.
type TacticResult struct {
	Tags       []tactics.Tactic `json:"tags"`
	ParsedOTD  *money.Amount    `json:"parsedOTD,omitempty"`
	Confidence assess.Report    `json:"confidence"`
	Guidance   guidance.Output  `json:"guidance"`
	Source     guidance.Source  `json:"source"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// Session is one live negotiation. All methods serialize on the session mutex:
// timeline order is meaningful, and two racing guidance requests would
// interleave writes into nonsense.
type Session struct {
	mu     sync.Mutex
	id     string
	state  *deal.State
	step   Step
	rates  *taxes.Table
	logger *utils.Logger
}

// NewSession starts an empty negotiation at step 0.
func NewSession(rates *taxes.Table, logger *utils.Logger) *Session {
	return &Session{
		id:     ulid.Make().String(),
		state:  deal.New(),
		step:   StepSetNumbers,
		rates:  rates,
		logger: logger,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Step returns the current flow step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// State returns a copy of the deal state. Callers never get the live pointer.
func (s *Session) State() deal.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := *s.state
	st.Timeline = append([]deal.TimelineEntry(nil), s.state.Timeline...)
	return st
}

// SetNumbers runs step 0: capture the buyer's numbers and initialize the
// ladder. Returns data-entry warnings (walk-away below target and the like).
func (s *Session) SetNumbers(in NumbersInput) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	warnings := deal.Apply(s.state, deal.SetNumbers{
		VehiclePrice: in.VehiclePrice,
		TargetOTD:    in.TargetOTD,
		WalkAwayOTD:  in.WalkAwayOTD,
		AskOTD:       in.AskOTD,
		StateCode:    in.StateCode,
	})
	if in.LockLadder {
		warnings = append(warnings, deal.Apply(s.state, deal.LockLadder{Locked: true})...)
	}
	s.state.AIEnabled = in.AIEnabled
	s.state.Append(deal.ActorYou, "Numbers set",
		fmt.Sprintf("target %s, walk-away %s", money.Format(in.TargetOTD), money.Format(in.WalkAwayOTD)))

	if s.state.DealerCurrentOTD == nil {
		s.step = StepGetItemizedOTD
	} else {
		s.step = StepHandleTactic
	}
	return warnings
}

// RecordDealerQuote runs the strict "dealer said" parse on pasted text and
// records the offer. A text with no plausible amount is a field-level error,
// never a silent zero.
func (s *Session) RecordDealerQuote(text string) (offer.ParsedOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	po, found := offer.ParseDealerOffer(text)
	if !found {
		return offer.ParsedOffer{}, ErrNoAmountFound
	}
	deal.Apply(s.state, deal.DealerQuote{Amount: po.Amount, Quoted: text})
	s.step = StepHandleTactic
	return po, nil
}

// RecordDealerAmount records a directly entered dealer OTD.
func (s *Session) RecordDealerAmount(amount money.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount < offer.MinPlausibleOTD || amount > offer.MaxPlausibleOTD {
		return fmt.Errorf("dealer OTD %s is outside the plausible range [%s, %s]",
			money.Format(amount), money.Format(offer.MinPlausibleOTD), money.Format(offer.MaxPlausibleOTD))
	}
	deal.Apply(s.state, deal.DealerQuote{Amount: amount})
	s.step = StepHandleTactic
	return nil
}

// HandleTactic runs step 2: classify what is happening, fold any number out
// of the narration into the state, and generate coaching.
func (s *Session) HandleTactic(ctx context.Context, caps Capabilities, situation, dealerText, narration string) (TacticResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result TacticResult

	if dealerText != "" {
		// Strict parse for literal dealer quotes.
		if po, found := offer.ParseDealerOffer(dealerText); found {
			deal.Apply(s.state, deal.DealerQuote{Amount: po.Amount, Quoted: dealerText})
			amt := po.Amount
			result.ParsedOTD = &amt
		}
	} else if narration != "" {
		// Largest-in-range for free-form narration.
		if amt, found := offer.ParseAmount(narration); found {
			deal.Apply(s.state, deal.DealerQuote{Amount: amt})
			a := amt
			result.ParsedOTD = &a
		}
	}

	if situation != "" {
		deal.Apply(s.state, deal.SituationSelected{Situation: situation})
		result.Tags = []tactics.Tactic{tactics.ClassifySituation(situation)}
	} else {
		text := dealerText
		if text == "" {
			text = narration
		}
		result.Tags = tactics.Classify(text)
	}
	if narration != "" {
		s.state.Append(deal.ActorYou, "Situation", narration)
	}

	gen := guidance.NewGenerator(caps.Client, s.logger)
	out, source := gen.Generate(ctx, s.state, guidance.Request{
		SessionID:  s.id,
		Situation:  situation,
		DealerText: dealerText,
		Narration:  narration,
		Entitled:   caps.Entitled,
	})

	result.Guidance = out
	result.Source = source
	result.Confidence = assess.Confidence(s.state.DealerCurrentOTD, s.state.TargetOTD)
	result.Warnings = s.state.Warnings()
	s.state.Append(deal.ActorCoach, "Guidance", out.SayThis)
	s.step = StepCounterCloseWalk
	return result, nil
}

// Advise runs step 3: decide hold/counter/close/walk from the gap and trend.
// Requires a dealer OTD; with no target set it proposes an estimated one from
// the vehicle price plus state tax and doc fee, labeled as an estimate.
func (s *Session) Advise(ctx context.Context, caps Capabilities) (Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.DealerCurrentOTD == nil {
		s.step = StepGetItemizedOTD
		return Recommendation{}, ErrDealerOTDRequired
	}

	var rec Recommendation
	genState := s.state

	if s.state.TargetOTD == 0 {
		if s.state.VehiclePrice == 0 {
			return Recommendation{}, errors.New("set a target OTD or a vehicle price first - there is nothing to counter toward")
		}
		est := s.rates.EstimateOTD(s.state.VehiclePrice, s.state.StateCode)
		rec.EstimatedTarget = &est
		rec.Rationale = fmt.Sprintf("No target set. Estimated target %s (vehicle price plus ~%.1f%% tax and doc fee) - this is an estimate, set your own number. ",
			money.Format(est), s.rates.Rate(s.state.StateCode)*100)
		// Coach against the estimate without committing it to the state.
		copied := *s.state
		copied.TargetOTD = est
		genState = &copied
	}

	rec.Confidence = assess.Confidence(genState.DealerCurrentOTD, genState.TargetOTD)
	rec.Trend = assess.OfferTrend(genState.DealerCurrentOTD, genState.LastDealerOTD)

	switch rec.Confidence.Level {
	case assess.LevelGreen:
		rec.Action = ActionClose
		rec.Rationale += "Gap is small. Close at your number."
	case assess.LevelYellow:
		rec.Action = ActionCounter
		rec.Rationale += "Above target but negotiable. Counter and hold."
	default:
		if rec.Trend == assess.TrendImproving {
			rec.Action = ActionCounter
			rec.Rationale += "Big gap, but the dealer is moving. One more counter."
		} else {
			rec.Action = ActionWalk
			rec.Rationale += "Aggressive gap and no movement. Walking is the move."
		}
	}

	gen := guidance.NewGenerator(caps.Client, s.logger)
	out, source := gen.Generate(ctx, genState, guidance.Request{
		SessionID: s.id,
		Situation: "Counter offer",
		Entitled:  caps.Entitled,
	})
	rec.Guidance = out
	rec.Source = source

	s.state.Append(deal.ActorCoach, fmt.Sprintf("Recommend: %s", rec.Action), rec.Rationale)
	s.step = StepUpdateRepeat
	return rec, nil
}

// UpdateOTD runs step 4: record the dealer's new number and report the trend,
// then loop back to tactic handling.
func (s *Session) UpdateOTD(amount money.Amount) (assess.Trend, assess.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount < offer.MinPlausibleOTD || amount > offer.MaxPlausibleOTD {
		return assess.TrendUnknown, assess.Report{}, fmt.Errorf(
			"dealer OTD %s is outside the plausible range [%s, %s]",
			money.Format(amount), money.Format(offer.MinPlausibleOTD), money.Format(offer.MaxPlausibleOTD))
	}
	deal.Apply(s.state, deal.DealerQuote{Amount: amount})
	trend := assess.OfferTrend(s.state.DealerCurrentOTD, s.state.LastDealerOTD)
	report := assess.Confidence(s.state.DealerCurrentOTD, s.state.TargetOTD)
	s.step = StepHandleTactic
	return trend, report, nil
}

// GoTo moves the flow to an arbitrary step. Steps needing a dealer OTD bounce
// back to the itemized-OTD step when none exists.
func (s *Session) GoTo(step Step) Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	if (step == StepCounterCloseWalk || step == StepUpdateRepeat) && s.state.DealerCurrentOTD == nil {
		s.step = StepGetItemizedOTD
	} else {
		s.step = step
	}
	return s.step
}

// Reset clears the negotiation and returns to step 0. The only destructive
// operation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	deal.Apply(s.state, deal.Reset{})
	s.step = StepSetNumbers
}

// Snapshot captures the session for persistence.
type Snapshot struct {
	ID      string     `json:"id"`
	Step    Step       `json:"step"`
	State   deal.State `json:"state"`
	SavedAt time.Time  `json:"savedAt"`
}

// Snapshot returns a persistable copy of the session.
func (s *Session) Snapshot() Snapshot {
	st := s.State()
	return Snapshot{ID: s.id, Step: s.Step(), State: st, SavedAt: time.Now()}
}

// Restore rebuilds a session from a snapshot.
func Restore(snap Snapshot, rates *taxes.Table, logger *utils.Logger) *Session {
	st := snap.State
	return &Session{
		id:     snap.ID,
		state:  &st,
		step:   snap.Step,
		rates:  rates,
		logger: logger,
	}
}
