package calculation

import (
	"errors"
	"testing"
	"time"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regretSeries(t *testing.T) *RegretCalculator {
	return NewRegretCalculator(testSeries(t, map[string]string{
		"2020-03-16": "10000",
		"2020-03-17": "11000",
		"2020-03-20": "12000",
		"2020-03-23": "9000",
		"2024-03-15": "68000",
	}))
}

func TestLumpSum(t *testing.T) {
	rc := regretSeries(t)
	res, err := rc.LumpSum(RegretRequest{
		InvestDate:     day("2020-03-16"),
		ReferenceDate:  day("2024-03-16"),
		Amount:         dec("1000"),
		ReferencePrice: dec("60000"),
	})
	require.NoError(t, err)

	assert.True(t, res.Quantity.Equal(dec("0.1")))
	assert.Equal(t, int64(10_000_000), res.Sats)
	assert.True(t, res.PresentValue.Equal(dec("6000")))
	assert.True(t, res.Gain.Equal(dec("5000")))
	assert.True(t, res.GainPct.Equal(dec("500")))
	assert.True(t, res.Years.Equal(dec("4")))
	assert.InDelta(t, 0.565085, res.Annualized.InexactFloat64(), 1e-6)

	require.NotEmpty(t, res.ValueHistory)
	assert.Equal(t, day("2020-03-16"), res.ValueHistory[0].Date)
	assert.True(t, res.ValueHistory[0].Value.Equal(dec("1000")))
	last := res.ValueHistory[len(res.ValueHistory)-1]
	assert.Equal(t, day("2024-03-15"), last.Date)
	assert.True(t, last.Value.Equal(dec("6800")))
}

func TestLumpSum_WeekendUsesPriorClose(t *testing.T) {
	rc := regretSeries(t)
	res, err := rc.LumpSum(RegretRequest{
		InvestDate:     day("2020-03-21"),
		ReferenceDate:  day("2024-03-16"),
		Amount:         dec("1200"),
		ReferencePrice: dec("60000"),
	})
	require.NoError(t, err)

	assert.Equal(t, day("2020-03-20"), res.EffectivePriceDate)
	assert.True(t, res.PriceThen.Equal(dec("12000")))
	assert.True(t, res.Quantity.Equal(dec("0.1")))
}

func TestLumpSum_Errors(t *testing.T) {
	rc := regretSeries(t)
	valid := RegretRequest{
		InvestDate:     day("2020-03-16"),
		ReferenceDate:  day("2024-03-16"),
		Amount:         dec("1000"),
		ReferencePrice: dec("60000"),
	}

	t.Run("before available data", func(t *testing.T) {
		req := valid
		req.InvestDate = day("2013-01-01")
		_, err := rc.LumpSum(req)
		assert.True(t, domain.IsOutOfRange(err))
		assert.False(t, domain.IsValidation(err))
	})
	t.Run("invest on reference date", func(t *testing.T) {
		req := valid
		req.InvestDate = req.ReferenceDate
		_, err := rc.LumpSum(req)
		assert.True(t, errors.Is(err, domain.ErrZeroOrNegativeHorizon))
	})
	t.Run("missing reference price", func(t *testing.T) {
		req := valid
		req.ReferencePrice = decimal.Zero
		_, err := rc.LumpSum(req)
		assert.True(t, errors.Is(err, domain.ErrMissingReferencePrice))
	})
	t.Run("non-positive amount", func(t *testing.T) {
		req := valid
		req.Amount = dec("0")
		_, err := rc.LumpSum(req)
		assert.True(t, domain.IsValidation(err))
	})
	t.Run("no series", func(t *testing.T) {
		_, err := NewRegretCalculator(nil).LumpSum(valid)
		assert.True(t, domain.IsValidation(err))
	})
}

func dcaCalculator(t *testing.T) *RegretCalculator {
	return NewRegretCalculator(testSeries(t, map[string]string{
		"2020-01-01": "10000",
		"2020-02-01": "20000",
		"2020-03-01": "5000",
		"2020-04-01": "10000",
	}))
}

func TestDCA(t *testing.T) {
	rc := dcaCalculator(t)
	res, err := rc.DCA(DCARequest{
		StartDate:      day("2020-01-01"),
		EndDate:        day("2020-04-01"),
		Amount:         dec("100"),
		Frequency:      domain.FrequencyMonthly,
		ReferencePrice: dec("10000"),
	})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Purchases)
	assert.True(t, res.TotalInvested.Equal(dec("400")))
	assert.True(t, res.BTC.Equal(dec("0.045")))
	assert.Equal(t, int64(4_500_000), res.Sats)
	assert.True(t, res.PresentValue.Equal(dec("450")))
	assert.True(t, res.Gain.Equal(dec("50")))
	assert.True(t, res.GainPct.Equal(dec("12.5")))
	assert.Equal(t, "8888.89", res.AvgCostBasis.StringFixed(2))
	assert.Equal(t, int64(11250), res.AvgCostSats)

	require.Len(t, res.Rows, 4)
	assert.Equal(t, day("2020-03-01"), res.Rows[2].Date)
	assert.True(t, res.Rows[2].Invested.Equal(dec("300")))
	assert.True(t, res.Rows[3].BTC.Equal(dec("0.045")))
	require.NotNil(t, res.Simulation)
	assert.Len(t, res.Simulation.Snapshots, 4)
}

func TestDCA_InitialAmount(t *testing.T) {
	rc := dcaCalculator(t)
	res, err := rc.DCA(DCARequest{
		StartDate:      day("2020-01-01"),
		EndDate:        day("2020-04-01"),
		Amount:         dec("100"),
		InitialAmount:  dec("1000"),
		ReferencePrice: dec("10000"),
	})
	require.NoError(t, err)

	assert.True(t, res.TotalInvested.Equal(dec("1400")))
	assert.True(t, res.BTC.Equal(dec("0.145")))
}

func TestDCA_Errors(t *testing.T) {
	rc := dcaCalculator(t)
	valid := DCARequest{
		StartDate:      day("2020-01-01"),
		EndDate:        day("2020-04-01"),
		Amount:         dec("100"),
		Frequency:      domain.FrequencyMonthly,
		ReferencePrice: dec("10000"),
	}

	req := valid
	req.EndDate = day("2020-05-01")
	_, err := rc.DCA(req)
	assert.True(t, domain.IsOutOfRange(err))

	req = valid
	req.EndDate = req.StartDate
	_, err = rc.DCA(req)
	assert.True(t, errors.Is(err, domain.ErrZeroOrNegativeHorizon))

	req = valid
	req.EndDate = day("2020-01-15")
	_, err = rc.DCA(req)
	assert.True(t, errors.Is(err, domain.ErrZeroOrNegativeHorizon))

	req = valid
	req.StartDate = day("2019-12-01")
	_, err = rc.DCA(req)
	assert.True(t, domain.IsOutOfRange(err))
}

func TestContributionDates(t *testing.T) {
	weekly := contributionDates(day("2024-01-01"), day("2024-01-29"), domain.FrequencyWeekly)
	assert.Len(t, weekly, 5)

	monthly := contributionDates(day("2024-01-31"), day("2024-04-30"), domain.FrequencyMonthly)
	assert.Equal(t, []time.Time{day("2024-01-31"), day("2024-02-29"), day("2024-03-31"), day("2024-04-30")}, monthly)

	yearly := contributionDates(day("2020-06-01"), day("2023-06-01"), domain.FrequencyYearly)
	assert.Len(t, yearly, 4)

	leap := contributionDates(day("2020-02-29"), day("2023-03-01"), domain.FrequencyYearly)
	assert.Equal(t, []time.Time{day("2020-02-29"), day("2021-02-28"), day("2022-02-28"), day("2023-02-28")}, leap)
}

func TestContributionDates_OnePurchasePerMonth(t *testing.T) {
	for _, startDay := range []string{"2021-01-29", "2021-01-30", "2021-01-31"} {
		t.Run(startDay, func(t *testing.T) {
			dates := contributionDates(day(startDay), day("2021-12-31"), domain.FrequencyMonthly)
			require.Len(t, dates, 12)
			for i, d := range dates {
				assert.Equal(t, time.Month(i+1), d.Month(), "purchase %d on %s", i, d.Format("2006-01-02"))
			}
		})
	}
}
