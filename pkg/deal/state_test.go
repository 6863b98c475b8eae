package deal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealcoach/pkg/money"
)

func amt(v money.Amount) *money.Amount { return &v }

func TestSetNumbersInitializesLadder(t *testing.T) {
	s := New()
	warnings := Apply(s, SetNumbers{
		VehiclePrice: 23500,
		TargetOTD:    25000,
		WalkAwayOTD:  25800,
		StateCode:    "TX",
	})

	assert.Empty(t, warnings)
	assert.Equal(t, money.Amount(25000), s.Ladder.Agree)
	assert.Equal(t, money.Amount(25800), s.Ladder.Walk)
	assert.Equal(t, money.Amount(24000), s.Ladder.Ask, "ask derives from target when not supplied")
	assert.Equal(t, "TX", s.StateCode)
}

func TestSetNumbersWalkAwayBelowTargetWarns(t *testing.T) {
	s := New()
	warnings := Apply(s, SetNumbers{TargetOTD: 25000, WalkAwayOTD: 24000})

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "$24,000")
	assert.Contains(t, warnings[0], "$25,000")
}

func TestDealerQuoteRetainsPreviousOffer(t *testing.T) {
	s := New()
	Apply(s, SetNumbers{TargetOTD: 25000, WalkAwayOTD: 25800})

	Apply(s, DealerQuote{Amount: 27100})
	require.NotNil(t, s.DealerCurrentOTD)
	assert.Equal(t, money.Amount(27100), *s.DealerCurrentOTD)
	assert.Nil(t, s.LastDealerOTD)

	Apply(s, DealerQuote{Amount: 26400})
	require.NotNil(t, s.LastDealerOTD)
	assert.Equal(t, money.Amount(27100), *s.LastDealerOTD)
	assert.Equal(t, money.Amount(26400), *s.DealerCurrentOTD)
}

func TestTimelineAppendOnlyAndOrdered(t *testing.T) {
	s := New()
	Apply(s, Note{Actor: ActorYou, Label: "Walked in"})
	Apply(s, DealerQuote{Amount: 27100, Quoted: "worksheet says $27,100"})
	Apply(s, Note{Actor: ActorCoach, Label: "Guidance", Details: "push for itemized OTD"})

	require.Len(t, s.Timeline, 3)
	assert.Equal(t, ActorYou, s.Timeline[0].Actor)
	assert.Equal(t, ActorDealer, s.Timeline[1].Actor)
	assert.Equal(t, ActorCoach, s.Timeline[2].Actor)
	for i := 1; i < len(s.Timeline); i++ {
		assert.False(t, s.Timeline[i].At.Before(s.Timeline[i-1].At),
			"timestamps must be non-decreasing")
		assert.NotEqual(t, s.Timeline[i].ID, s.Timeline[i-1].ID)
	}
}

func TestResetClearsEverything(t *testing.T) {
	s := New()
	Apply(s, SetNumbers{TargetOTD: 25000, WalkAwayOTD: 25800})
	Apply(s, DealerQuote{Amount: 27100})
	Apply(s, LockLadder{Locked: true})

	Apply(s, Reset{})
	assert.Equal(t, money.Amount(0), s.TargetOTD)
	assert.Nil(t, s.DealerCurrentOTD)
	assert.Empty(t, s.Timeline)
	assert.False(t, s.Ladder.Locked)
}

func TestLockLadderWithoutWalkWarns(t *testing.T) {
	s := New()
	warnings := Apply(s, LockLadder{Locked: true})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "guardrail")
}
