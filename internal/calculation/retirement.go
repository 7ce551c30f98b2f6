package calculation

import (
	"time"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// currentYear dates trajectories whose plan has no StartYear.
var currentYear = func() int { return time.Now().Year() }

// PlanRetirement runs the accumulation phase until retirement and hands its
// terminal state to a drawdown lasting until life expectancy, both along one
// trajectory built from spec and the macro multiplier.
func PlanRetirement(plan *domain.RetirementPlan, spec domain.ScenarioSpec, multiplier decimal.Decimal) (*domain.RetirementOutcome, error) {
	if plan == nil {
		return nil, domain.NewValidationError("plan", "is required")
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	ppy := plan.Frequency.PeriodsPerYear()
	accN := plan.AccumulationYears() * ppy
	drawN := plan.RetirementYears() * ppy
	startYear := plan.StartYear
	if startYear == 0 {
		startYear = currentYear()
	}

	traj, err := GenerateScenarioTrajectory(TrajectoryRequest{
		StartPrice:     plan.ReferencePrice,
		StartYear:      startYear,
		HorizonPeriods: accN + drawN + 1,
		PeriodsPerYear: ppy,
		Scenario:       spec,
		Multiplier:     multiplier,
	})
	if err != nil {
		return nil, err
	}
	prices := traj.Collect()

	accCfg := domain.SimulationConfig{
		InitialCapitalFiat:       plan.CurrentBTC.Mul(plan.ReferencePrice),
		PeriodicContributionFiat: plan.ContributionFiat,
		PeriodicContributionSats: plan.ContributionSats,
		ContributionGrowthAnnual: plan.ContributionGrowth,
		ContributionFrequency:    plan.Frequency,
		HorizonPeriods:           accN,
		InflationRateAnnual:      plan.InflationRate,
		Scenario:                 spec,
	}
	var acc *domain.SimulationResult
	if accN == 0 {
		// retiring now: the opening state is the whole accumulation
		acc = &domain.SimulationResult{
			Phase:     domain.PhaseAccumulation,
			Scenario:  spec.Name,
			Snapshots: []domain.SimulationSnapshot{openingSnapshot(accCfg, prices[0].Price)},
		}
	} else if acc, err = Accumulate(accCfg, prices[:accN+1]); err != nil {
		return nil, err
	}

	drawCfg := domain.SimulationConfig{
		ContributionFrequency:  plan.Frequency,
		HorizonPeriods:         drawN,
		InflationRateAnnual:    plan.InflationRate,
		WithdrawalPolicy:       plan.WithdrawalPolicy,
		WithdrawalAmountOrRate: plan.TargetAnnualIncome,
		Scenario:               spec,
	}
	if plan.WithdrawalPolicy == domain.WithdrawPercentOfBalance {
		drawCfg.WithdrawalAmountOrRate = plan.SafeWithdrawalRate.Div(decimal.NewFromInt(int64(ppy)))
	}
	draw, err := Drawdown(drawCfg, prices[accN:accN+drawN+1], acc.Handoff())
	if err != nil {
		return nil, err
	}

	return retirementOutcome(plan, spec.Name, multiplier, acc, draw), nil
}

func retirementOutcome(plan *domain.RetirementPlan, scenario domain.ScenarioName, multiplier decimal.Decimal, acc, draw *domain.SimulationResult) *domain.RetirementOutcome {
	final := acc.Final()
	price := final.Price
	infl := final.CumulativeInflationFactor
	btc := final.BTCBalance
	patrimony := btc.Mul(price)
	years := decimal.NewFromInt(int64(plan.RetirementYears()))

	swrNominal := patrimony.Mul(plan.SafeWithdrawalRate)
	slicesNominal := btc.Div(years).Mul(price)
	targetNominal := plan.TargetAnnualIncome.Mul(infl)

	requiredSWR := targetNominal.Div(plan.SafeWithdrawalRate).Div(price)
	requiredSlices := targetNominal.Mul(years).Div(price)

	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}
	out := &domain.RetirementOutcome{
		Plan:                  *plan.DeepCopy(),
		Scenario:              scenario,
		MacroMultiplier:       multiplier,
		Accumulation:          acc,
		Drawdown:              draw,
		PriceAtRetirement:     price,
		BTCAtRetirement:       btc,
		PatrimonyAtRetirement: patrimony,
		InflationAtRetirement: infl,
		SWRIncomeNominal:      swrNominal,
		SWRIncomeReal:         swrNominal.Div(infl),
		SlicesIncomeNominal:   slicesNominal,
		SlicesIncomeReal:      slicesNominal.Div(infl),
		TargetIncomeNominal:   targetNominal,
		MetGoal:               swrNominal.Div(infl).GreaterThanOrEqual(plan.TargetAnnualIncome),
		RequiredBTCSWR:        requiredSWR,
		RequiredBTCSlices:     requiredSlices,
		BTCGap:                decimal.Max(requiredSWR, requiredSlices).Sub(btc),
	}
	if k, ok := draw.DepletionPeriodIndex(); ok {
		age := plan.RetirementAge + (k-1)/plan.Frequency.PeriodsPerYear()
		out.DepletionAge = &age
	}
	return out
}
