package calculation

import (
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// SatsProjectionRequest describes a yearly sats stacking plan. Contributions
// are fixed in sats at today's price and grow by AnnualIncrease each year.
type SatsProjectionRequest struct {
	CurrentAge     int                          `json:"currentAge"`
	TargetAge      int                          `json:"targetAge"`
	InitialFiat    decimal.Decimal              `json:"initialFiat"`
	Contribution   decimal.Decimal              `json:"contribution"`
	Frequency      domain.ContributionFrequency `json:"frequency"`
	AnnualIncrease decimal.Decimal              `json:"annualIncrease"`
	PriceGrowth    decimal.Decimal              `json:"priceGrowth"`
	ReferencePrice decimal.Decimal              `json:"referencePrice"`
}

// SatsYear is one row of the stacking table.
type SatsYear struct {
	Age       int             `json:"age"`
	SatsAdded int64           `json:"satsAdded"`
	TotalSats int64           `json:"totalSats"`
	Price     decimal.Decimal `json:"price"`
	Value     decimal.Decimal `json:"value"`
}

// SatsProjection is the full stacking table plus its summary.
type SatsProjection struct {
	Years                []SatsYear      `json:"years"`
	InitialSats          int64           `json:"initialSats"`
	AnnualSats           int64           `json:"annualSats"`
	FinalSats            int64           `json:"finalSats"`
	FinalBTC             decimal.Decimal `json:"finalBtc"`
	ValueAtCurrent       decimal.Decimal `json:"valueAtCurrent"`
	ValueProjected       decimal.Decimal `json:"valueProjected"`
	SatsPerUnitNow       int64           `json:"satsPerUnitNow"`
	SatsPerUnitProjected int64           `json:"satsPerUnitProjected"`
}

// ProjectSats builds the yearly table by running a yearly accumulation whose
// contribution is stated in sats.
func ProjectSats(req SatsProjectionRequest) (*SatsProjection, error) {
	if err := requirePositivePrice(req.ReferencePrice); err != nil {
		return nil, err
	}
	years := req.TargetAge - req.CurrentAge
	if years <= 0 {
		return nil, &domain.ValidationError{Field: "target_age", Message: "must be after the current age", Cause: domain.ErrZeroOrNegativeHorizon}
	}
	if req.InitialFiat.IsNegative() || req.Contribution.IsNegative() {
		return nil, domain.NewValidationError("contribution", "must not be negative")
	}
	if req.AnnualIncrease.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return nil, domain.NewValidationError("annual_increase", "must be greater than -100%%")
	}

	annualFiat := req.Contribution.Mul(decimal.NewFromInt(int64(req.Frequency.PeriodsPerYear())))
	annualSats := floorSats(annualFiat.Div(req.ReferencePrice))
	initialSats := floorSats(req.InitialFiat.Div(req.ReferencePrice))

	prices, err := CollectPrices(req.ReferencePrice, years+1, 1, domain.ScenarioSpec{
		Name:             domain.ScenarioBase,
		AnnualGrowthRate: req.PriceGrowth,
	})
	if err != nil {
		return nil, err
	}
	cfg := domain.SimulationConfig{
		InitialCapitalFiat:       SatsToBTC(initialSats).Mul(req.ReferencePrice),
		PeriodicContributionSats: annualSats,
		ContributionGrowthAnnual: req.AnnualIncrease,
		ContributionFrequency:    domain.FrequencyYearly,
		HorizonPeriods:           years,
	}
	sim, err := Accumulate(cfg, prices)
	if err != nil {
		return nil, err
	}

	out := &SatsProjection{
		InitialSats:    initialSats,
		AnnualSats:     annualSats,
		SatsPerUnitNow: floorSats(decimal.NewFromInt(1).Div(req.ReferencePrice)),
		Years:          make([]SatsYear, 0, years),
	}
	prevSats := initialSats
	for _, s := range sim.Snapshots[1:] {
		total := floorSats(s.BTCBalance)
		out.Years = append(out.Years, SatsYear{
			Age:       req.CurrentAge + s.PeriodIndex,
			SatsAdded: total - prevSats,
			TotalSats: total,
			Price:     s.Price,
			Value:     s.FiatValue.Round(2),
		})
		prevSats = total
	}
	final := sim.Final()
	out.FinalSats = floorSats(final.BTCBalance)
	out.FinalBTC = SatsToBTC(out.FinalSats)
	out.ValueAtCurrent = out.FinalBTC.Mul(req.ReferencePrice).Round(2)
	out.ValueProjected = out.FinalBTC.Mul(final.Price).Round(2)
	out.SatsPerUnitProjected = floorSats(decimal.NewFromInt(1).Div(final.Price))
	return out, nil
}

func floorSats(btc decimal.Decimal) int64 {
	return btc.Mul(satsPerBTC).Floor().IntPart()
}
