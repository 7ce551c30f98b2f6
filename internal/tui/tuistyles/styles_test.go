package tuistyles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{999.6, "$1,000"},
		{1234567, "$1,234,567"},
		{-42000, "-$42,000"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatCurrency(tc.in))
	}
}

func TestFormatBTCAndTrend(t *testing.T) {
	assert.Equal(t, "₿0.1235", FormatBTC(0.12346))
	assert.Equal(t, "▲", TrendIndicator(true))
	assert.Equal(t, "▼", TrendIndicator(false))
}
