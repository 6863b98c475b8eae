// Package flow sequences a live negotiation through the five-step guided
// loop: set your numbers, get the itemized OTD, handle the tactic in front of
// you, counter/close/walk, then update and repeat. Steps are user-navigable in
// both directions; the engine only enforces the soft gates (no negotiating
// math before a dealer OTD exists).
package flow

// Step is one of the five stations of the guided flow.
type Step int

const (
	StepSetNumbers Step = iota
	StepGetItemizedOTD
	StepHandleTactic
	StepCounterCloseWalk
	StepUpdateRepeat
)

func (s Step) String() string {
	switch s {
	case StepSetNumbers:
		return "Set Your Numbers"
	case StepGetItemizedOTD:
		return "Get Itemized OTD"
	case StepHandleTactic:
		return "Handle Tactic"
	case StepCounterCloseWalk:
		return "Counter / Close / Walk"
	case StepUpdateRepeat:
		return "Update & Repeat"
	default:
		return "Unknown"
	}
}

// Action is the recommendation coming out of the counter/close/walk step.
type Action string

const (
	ActionClose   Action = "close"
	ActionCounter Action = "counter"
	ActionWalk    Action = "walk"
)
