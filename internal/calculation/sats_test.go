package calculation

import (
	"errors"
	"testing"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectSats_GrowingContribution(t *testing.T) {
	res, err := ProjectSats(SatsProjectionRequest{
		CurrentAge:     30,
		TargetAge:      33,
		Contribution:   dec("1000"),
		Frequency:      domain.FrequencyYearly,
		AnnualIncrease: dec("0.1"),
		ReferencePrice: dec("100000"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1_000_000), res.AnnualSats)
	assert.Equal(t, int64(1000), res.SatsPerUnitNow)
	require.Len(t, res.Years, 3)

	expected := []struct {
		age   int
		added int64
		total int64
	}{
		{31, 1_000_000, 1_000_000},
		{32, 1_100_000, 2_100_000},
		{33, 1_210_000, 3_310_000},
	}
	for i, want := range expected {
		got := res.Years[i]
		assert.Equal(t, want.age, got.Age)
		assert.Equal(t, want.added, got.SatsAdded, "year %d", i)
		assert.Equal(t, want.total, got.TotalSats, "year %d", i)
	}
	assert.Equal(t, int64(3_310_000), res.FinalSats)
	assert.True(t, res.ValueAtCurrent.Equal(dec("3310")))
	assert.True(t, res.ValueProjected.Equal(dec("3310")))
}

func TestProjectSats_MonthlyAndPriceGrowth(t *testing.T) {
	res, err := ProjectSats(SatsProjectionRequest{
		CurrentAge:     40,
		TargetAge:      42,
		InitialFiat:    dec("500"),
		Contribution:   dec("100"),
		Frequency:      domain.FrequencyMonthly,
		PriceGrowth:    dec("1"),
		ReferencePrice: dec("100000"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(500_000), res.InitialSats)
	assert.Equal(t, int64(1_200_000), res.AnnualSats)
	assert.Equal(t, int64(2_900_000), res.FinalSats)
	assert.True(t, res.Years[1].Price.Equal(dec("400000")))
	assert.True(t, res.ValueProjected.Equal(dec("11600")))
	assert.Equal(t, int64(250), res.SatsPerUnitProjected)
}

func TestProjectSats_AnnualizesEveryFrequency(t *testing.T) {
	tests := []struct {
		freq domain.ContributionFrequency
		want int64
	}{
		{domain.FrequencyDaily, 36_500_000},
		{domain.FrequencyWeekly, 5_200_000},
		{domain.FrequencyMonthly, 1_200_000},
		{domain.FrequencyYearly, 100_000},
	}
	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			res, err := ProjectSats(SatsProjectionRequest{
				CurrentAge:     40,
				TargetAge:      41,
				Contribution:   dec("100"),
				Frequency:      tt.freq,
				ReferencePrice: dec("100000"),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.AnnualSats)
			assert.Equal(t, tt.want, res.FinalSats)
		})
	}
}

func TestProjectSats_Errors(t *testing.T) {
	_, err := ProjectSats(SatsProjectionRequest{CurrentAge: 40, TargetAge: 40, ReferencePrice: dec("1")})
	assert.True(t, errors.Is(err, domain.ErrZeroOrNegativeHorizon))

	_, err = ProjectSats(SatsProjectionRequest{CurrentAge: 40, TargetAge: 50, ReferencePrice: decimal.Zero})
	assert.True(t, errors.Is(err, domain.ErrMissingReferencePrice))

	_, err = ProjectSats(SatsProjectionRequest{CurrentAge: 40, TargetAge: 50, Contribution: dec("-1"), ReferencePrice: dec("1")})
	assert.True(t, domain.IsValidation(err))
}
