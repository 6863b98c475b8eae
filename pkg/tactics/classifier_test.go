package tactics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Tactic
	}{
		{
			name: "fee wall",
			text: "They say fees are non-negotiable",
			want: []Tactic{FeeWall},
		},
		{
			name: "commitment pressure",
			text: "Let's sign today",
			want: []Tactic{CommitmentPressure},
		},
		{
			name: "no match falls to default",
			text: "Nice weather today",
			want: []Tactic{StandardNegotiation},
		},
		{
			name: "payment anchoring",
			text: "What monthly payment were you looking for?",
			want: []Tactic{PaymentAnchoring},
		},
		{
			name: "add-on shove",
			text: "Our OTD worksheet comes to $27,100 with the nitrogen fill package",
			want: []Tactic{AddOnShove},
		},
		{
			name: "urgency",
			text: "This price is today only, someone else is coming to look at it",
			want: []Tactic{Urgency},
		},
		{
			name: "multiple tags",
			text: "The manager says if you sign today he'll throw in the protection package",
			want: []Tactic{AddOnShove, ManagerEscalation, CommitmentPressure},
		},
		{
			name: "trade-in lowball",
			text: "They offered a really low number for my trade",
			want: []Tactic{TradeInLowball},
		},
		{
			name: "counter offer",
			text: "He came back with a counter",
			want: []Tactic{CounterOffer},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassifySituationIsExclusive(t *testing.T) {
	tests := []struct {
		situation string
		want      Tactic
	}{
		{"They're quoting monthly payments instead of OTD", PaymentAnchoring},
		{"Pushing add-ons and protection packages", AddOnShove},
		{"Manager is coming over", ManagerEscalation},
		{"Doc fee is fixed, they say", FeeWall},
		{"Deal is today only", Urgency},
		{"They want me to sign now", CommitmentPressure},
		{"Lowballing my trade", TradeInLowball},
		{"They made a counter offer", CounterOffer},
		{"Just talking numbers", StandardNegotiation},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifySituation(tt.situation), "situation: %s", tt.situation)
	}
}
