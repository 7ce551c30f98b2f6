package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestParseContributionFrequency(t *testing.T) {
	tests := map[string]ContributionFrequency{
		"":         FrequencyMonthly,
		"daily":    FrequencyDaily,
		"Weekly":   FrequencyWeekly,
		"monthly":  FrequencyMonthly,
		"annual":   FrequencyYearly,
		"annually": FrequencyYearly,
		"yearly":   FrequencyYearly,
	}
	for in, want := range tests {
		got, err := ParseContributionFrequency(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseContributionFrequency("fortnightly")
	assert.True(t, IsValidation(err))

	assert.Equal(t, 365, FrequencyDaily.PeriodsPerYear())
	assert.Equal(t, 52, FrequencyWeekly.PeriodsPerYear())
	assert.Equal(t, 12, FrequencyMonthly.PeriodsPerYear())
	assert.Equal(t, 1, FrequencyYearly.PeriodsPerYear())
}

func TestParseWithdrawalPolicy(t *testing.T) {
	p, err := ParseWithdrawalPolicy("")
	require.NoError(t, err)
	assert.Equal(t, WithdrawFixedReal, p)

	p, err = ParseWithdrawalPolicy("percent")
	require.NoError(t, err)
	assert.Equal(t, WithdrawPercentOfBalance, p)

	_, err = ParseWithdrawalPolicy("yolo")
	assert.Error(t, err)
}

func TestSimulationConfig_Validate(t *testing.T) {
	valid := SimulationConfig{
		InitialCapitalFiat:    decimal.NewFromInt(1000),
		ContributionFrequency: FrequencyMonthly,
		HorizonPeriods:        12,
	}
	require.NoError(t, valid.Validate())

	c := valid
	c.HorizonPeriods = 0
	assert.ErrorIs(t, c.Validate(), ErrZeroOrNegativeHorizon)

	c = valid
	c.ContributionGrowthAnnual = decimal.NewFromInt(-1)
	assert.Error(t, c.Validate())

	c = valid
	c.ContributionFrequency = "hourly"
	assert.Error(t, c.Validate())

	c = valid
	c.WithdrawalAmountOrRate = decimal.NewFromInt(-10)
	assert.Error(t, c.Validate())
}

func TestSimulationResult_Summaries(t *testing.T) {
	dep := 2
	r := &SimulationResult{
		Phase: PhaseDrawdown,
		Snapshots: []SimulationSnapshot{
			{PeriodIndex: 0, BTCBalance: decimal.NewFromInt(2), FiatValue: decimal.NewFromInt(200), CumulativeFiatContributed: decimal.NewFromInt(100), CumulativeInflationFactor: decimal.NewFromInt(1)},
			{PeriodIndex: 1, BTCBalance: decimal.NewFromInt(1), FiatValue: decimal.NewFromInt(100), ContributionOrWithdrawal: decimal.NewFromInt(-100), CumulativeFiatContributed: decimal.NewFromInt(100), CumulativeInflationFactor: decimal.RequireFromString("1.03")},
			{PeriodIndex: 2, BTCBalance: decimal.Zero, FiatValue: decimal.Zero, ContributionOrWithdrawal: decimal.NewFromInt(-100), CumulativeFiatContributed: decimal.NewFromInt(100), CumulativeInflationFactor: decimal.RequireFromString("1.0609")},
		},
		Depleted:        true,
		DepletionPeriod: &dep,
	}

	assert.True(t, r.FinalBTC().IsZero())
	assert.True(t, r.TotalWithdrawn().Equal(decimal.NewFromInt(200)))
	assert.True(t, r.TotalReturnPct().Equal(decimal.NewFromInt(100)))

	idx, ok := r.DepletionPeriodIndex()
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	h := r.Handoff()
	assert.True(t, h.InflationFactor.Equal(decimal.RequireFromString("1.0609")))
	assert.False(t, h.IsZero())
	assert.True(t, Handoff{}.IsZero())

	var empty *SimulationResult
	assert.Equal(t, SimulationSnapshot{}, empty.Final())
	_, ok = empty.DepletionPeriodIndex()
	assert.False(t, ok)
}

func TestParseReinvestPolicy(t *testing.T) {
	p, err := ParseReinvestPolicy("full")
	require.NoError(t, err)
	assert.True(t, p.ReinvestedFraction().Equal(decimal.NewFromInt(1)))

	p, err = ParseReinvestPolicy("none")
	require.NoError(t, err)
	assert.True(t, p.ReinvestedFraction().IsZero())

	p, err = ParseReinvestPolicy("Partial:0.25")
	require.NoError(t, err)
	assert.Equal(t, ReinvestModePartial, p.Mode)
	assert.True(t, p.ReinvestedFraction().Equal(decimal.RequireFromString("0.25")))

	_, err = ParseReinvestPolicy("partial:1.5")
	assert.True(t, IsValidation(err))
	_, err = ParseReinvestPolicy("partial:x")
	assert.True(t, IsValidation(err))
	_, err = ParseReinvestPolicy("sometimes")
	assert.True(t, IsValidation(err))
}

func TestYieldResult_AggregateYearly(t *testing.T) {
	snap := func(i int64, btc, income string) YieldSnapshot {
		return YieldSnapshot{
			SimulationSnapshot: SimulationSnapshot{
				PeriodIndex:               int(i),
				BTCBalance:                decimal.RequireFromString(btc),
				FiatValue:                 decimal.RequireFromString(btc).Mul(decimal.NewFromInt(100)),
				ContributionOrWithdrawal:  decimal.NewFromInt(10),
				CumulativeFiatContributed: decimal.NewFromInt(100 + 10*i),
			},
			IncomeFiat:           decimal.RequireFromString(income),
			CumulativeIncomeFiat: decimal.RequireFromString(income).Mul(decimal.NewFromInt(i)),
		}
	}
	r := &YieldResult{
		PeriodsPerYear: 2,
		Snapshots: []YieldSnapshot{
			snap(0, "1", "0"),
			snap(1, "1.1", "1"),
			snap(2, "1.2", "1"),
			snap(3, "1.3", "1"),
		},
	}

	years := r.AggregateYearly()
	require.Len(t, years, 2)
	assert.Equal(t, 1, years[0].Year)
	assert.True(t, years[0].StartBTC.Equal(decimal.NewFromInt(1)))
	assert.True(t, years[0].EndBTC.Equal(decimal.RequireFromString("1.2")))
	assert.True(t, years[0].IncomeFiat.Equal(decimal.NewFromInt(2)))
	assert.True(t, years[0].Contributed.Equal(decimal.NewFromInt(20)), "period 0 is the opening state")
	assert.True(t, years[1].StartBTC.Equal(decimal.RequireFromString("1.2")))
	assert.True(t, years[1].EndBTC.Equal(decimal.RequireFromString("1.3")))

	assert.True(t, r.TotalIncome().Equal(decimal.NewFromInt(3)))
	assert.Nil(t, (*YieldResult)(nil).AggregateYearly())
}

func TestDates(t *testing.T) {
	d := mustDate(t, "2024-02-29")
	assert.Equal(t, time.UTC, d.Location())

	_, err := ParseDate("29/02/2024")
	assert.True(t, IsValidation(err))

	local := time.Date(2024, 3, 1, 23, 30, 0, 0, time.FixedZone("X", 3600))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), TruncateToDay(local))

	pts := PricesFromPoints([]PricePoint{{Date: d, Price: decimal.NewFromInt(5)}, {Date: d, Price: decimal.NewFromInt(6)}})
	assert.Equal(t, 1, pts[1].PeriodIndex)
}
