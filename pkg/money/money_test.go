package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		amount   Amount
		expected string
	}{
		{0, "$0"},
		{500, "$500"},
		{1000, "$1,000"},
		{26800, "$26,800"},
		{200000, "$200,000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Format(tt.amount))
	}
}

func TestFormatBare(t *testing.T) {
	assert.Equal(t, "24,000", FormatBare(24000))
	assert.Equal(t, "900", FormatBare(900))
}
