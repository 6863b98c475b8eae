package offer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealcoach/pkg/money"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  money.Amount
		found bool
	}{
		{
			name:  "below plausible floor",
			text:  "$500 total",
			found: false,
		},
		{
			name:  "comma grouped dollar amount",
			text:  "Dealer quoted $27,450 OTD",
			want:  27450,
			found: true,
		},
		{
			name:  "largest in range wins",
			text:  "add-ons are $1,200 and OTD is $26,800",
			want:  26800,
			found: true,
		},
		{
			name:  "bare number",
			text:  "they said 26500 out the door",
			want:  26500,
			found: true,
		},
		{
			name:  "no numbers at all",
			text:  "let me talk to my manager",
			found: false,
		},
		{
			name:  "seven digit numbers ignored",
			text:  "stock number 1234567",
			found: false,
		},
		{
			name:  "above plausible ceiling",
			text:  "$350,000 is what the sign says",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ParseAmount(tt.text)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseDealerOfferPrefersQuoteContext(t *testing.T) {
	// 26800 sits next to "OTD" with a $ sign and grouping; 31000 is bigger but
	// bare and context-free.
	po, found := ParseDealerOffer("sticker was 31000 but the OTD is $26,800")
	require.True(t, found)
	assert.Equal(t, money.Amount(26800), po.Amount)
	assert.Equal(t, ConfidenceHigh, po.Confidence)
	assert.Equal(t, "$26,800", po.MatchedText)
}

func TestParseDealerOfferTieBreaksOnAmount(t *testing.T) {
	po, found := ParseDealerOffer("$24,500 or $25,500, pick one")
	require.True(t, found)
	assert.Equal(t, money.Amount(25500), po.Amount)
}

func TestParseDealerOfferNoCandidates(t *testing.T) {
	_, found := ParseDealerOffer("no numbers here")
	assert.False(t, found)
}

func TestParseDealerOfferBareNumberIsLowConfidence(t *testing.T) {
	po, found := ParseDealerOffer("maybe 4500 more")
	require.True(t, found)
	assert.Equal(t, ConfidenceLow, po.Confidence)
}
