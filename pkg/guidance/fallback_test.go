package guidance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealcoach/pkg/deal"
	"dealcoach/pkg/tactics"
)

func TestFallbackPersonalizesTarget(t *testing.T) {
	s := deal.New()
	deal.Apply(s, deal.SetNumbers{TargetOTD: 24000, WalkAwayOTD: 24800})

	out := Fallback(s, tactics.StandardNegotiation)
	assert.Contains(t, out.SayThis, "24,000", "sayThis must carry the literal target, never a placeholder")
	assert.Contains(t, out.ClosingLine, "24,000")
	assert.Contains(t, out.LadderSummary, "$24,800")
}

func TestFallbackWithoutTargetStaysGeneric(t *testing.T) {
	s := deal.New()

	out := Fallback(s, tactics.StandardNegotiation)
	assert.Contains(t, out.SayThis, "out-the-door price")
	assert.NotContains(t, out.SayThis, "$0")
	assert.NotContains(t, out.ClosingLine, "$0")
	assert.Contains(t, out.LadderSummary, "ASK / AGREE / WALK")
}

func TestFallbackCoversEveryTactic(t *testing.T) {
	s := deal.New()
	deal.Apply(s, deal.SetNumbers{TargetOTD: 25000, WalkAwayOTD: 25800})

	all := []tactics.Tactic{
		tactics.PaymentAnchoring, tactics.Urgency, tactics.AddOnShove,
		tactics.ManagerEscalation, tactics.FeeWall, tactics.CommitmentPressure,
		tactics.TradeInLowball, tactics.CounterOffer, tactics.StandardNegotiation,
	}
	for _, tag := range all {
		out := Fallback(s, tag)
		_, missing := Parse(mustJSON(t, out))
		assert.Empty(t, missing, "tactic %s must produce a complete output", tag)
		assert.LessOrEqual(t, len(out.RedFlags), 3)
		assert.LessOrEqual(t, len(out.DoNotSay), 2)
	}
}

func TestFallbackRespectsLockedWalkByConstruction(t *testing.T) {
	// Target above walk is a data-entry mistake; the fallback caps what it
	// puts in the buyer's mouth at the locked WALK.
	s := deal.New()
	deal.Apply(s, deal.SetNumbers{TargetOTD: 26000, WalkAwayOTD: 25500})
	s.Ladder = deal.Ladder{Ask: 26000, Agree: 26000, Walk: 25500, Locked: true}

	out := Fallback(s, tactics.CounterOffer)
	assert.False(t, OutputViolatesLadder(out, s.Ladder))
	assert.Contains(t, out.SayThis, "25,500")
}

func TestFallbackAddOnShoveTalksAboutAddOns(t *testing.T) {
	s := deal.New()
	deal.Apply(s, deal.SetNumbers{TargetOTD: 25000, WalkAwayOTD: 25800})

	out := Fallback(s, tactics.AddOnShove)
	assert.Contains(t, out.SayThis, "add-ons")
	assert.Contains(t, out.SayThis, "25,000")
}

func mustJSON(t *testing.T, out Output) string {
	t.Helper()
	b, err := json.Marshal(out)
	require.NoError(t, err)
	return string(b)
}
