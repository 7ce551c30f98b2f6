package domain

import (
	"github.com/shopspring/decimal"
)

// RetirementPlan is the input of a composed accumulation and drawdown run.
type RetirementPlan struct {
	Name               string                `yaml:"name,omitempty" json:"name,omitempty"`
	CurrentAge         int                   `yaml:"current_age" json:"currentAge"`
	RetirementAge      int                   `yaml:"retirement_age" json:"retirementAge"`
	LifeExpectancy     int                   `yaml:"life_expectancy" json:"lifeExpectancy"`
	CurrentBTC         decimal.Decimal       `yaml:"current_btc" json:"currentBtc"`
	ContributionFiat   decimal.Decimal       `yaml:"contribution_fiat" json:"contributionFiat"`
	ContributionSats   int64                 `yaml:"contribution_sats,omitempty" json:"contributionSats,omitempty"`
	ContributionGrowth decimal.Decimal       `yaml:"contribution_growth,omitempty" json:"contributionGrowth,omitempty"`
	Frequency          ContributionFrequency `yaml:"frequency" json:"frequency"`
	TargetAnnualIncome decimal.Decimal       `yaml:"target_annual_income" json:"targetAnnualIncome"`
	InflationRate      decimal.Decimal       `yaml:"inflation_rate" json:"inflationRate"`
	SafeWithdrawalRate decimal.Decimal       `yaml:"safe_withdrawal_rate" json:"safeWithdrawalRate"`
	WithdrawalPolicy   WithdrawalPolicy      `yaml:"withdrawal_policy" json:"withdrawalPolicy"`
	ReferencePrice     decimal.Decimal       `yaml:"-" json:"referencePrice"`
	StartYear          int                   `yaml:"start_year,omitempty" json:"startYear,omitempty"`
	Scenario           ScenarioName          `yaml:"scenario" json:"scenario"`
	MacroEvents        []string              `yaml:"macro_events,omitempty" json:"macroEvents,omitempty"`
}

// DeepCopy returns a copy that shares no slices with p.
func (p *RetirementPlan) DeepCopy() *RetirementPlan {
	if p == nil {
		return nil
	}
	cp := *p
	cp.MacroEvents = append([]string(nil), p.MacroEvents...)
	return &cp
}

// AccumulationYears is the number of years until retirement.
func (p *RetirementPlan) AccumulationYears() int {
	return p.RetirementAge - p.CurrentAge
}

// RetirementYears is the number of years spent in drawdown.
func (p *RetirementPlan) RetirementYears() int {
	return p.LifeExpectancy - p.RetirementAge
}

// Validate checks ages, rates and the reference price.
func (p *RetirementPlan) Validate() error {
	if p.CurrentAge <= 0 {
		return NewValidationError("current_age", "must be positive")
	}
	if p.RetirementAge < p.CurrentAge {
		return &ValidationError{Field: "retirement_age", Message: "must not be before current age", Cause: ErrZeroOrNegativeHorizon}
	}
	if p.LifeExpectancy <= p.RetirementAge {
		return &ValidationError{Field: "life_expectancy", Message: "must be after retirement age", Cause: ErrZeroOrNegativeHorizon}
	}
	if p.CurrentBTC.IsNegative() {
		return NewValidationError("current_btc", "must not be negative")
	}
	if p.ContributionFiat.IsNegative() || p.ContributionSats < 0 {
		return NewValidationError("contribution", "must not be negative")
	}
	if p.TargetAnnualIncome.IsNegative() {
		return NewValidationError("target_annual_income", "must not be negative")
	}
	if p.InflationRate.IsNegative() {
		return NewValidationError("inflation_rate", "must not be negative")
	}
	if !p.SafeWithdrawalRate.IsPositive() || p.SafeWithdrawalRate.GreaterThan(decimal.NewFromInt(1)) {
		return NewValidationError("safe_withdrawal_rate", "must be in (0, 1], got %s", p.SafeWithdrawalRate)
	}
	if p.WithdrawalPolicy == WithdrawPercentOfBalance && p.Frequency == FrequencyYearly && p.SafeWithdrawalRate.Equal(decimal.NewFromInt(1)) {
		return NewValidationError("safe_withdrawal_rate", "must be below 1 with the percent_of_balance policy")
	}
	if p.Frequency != FrequencyMonthly && p.Frequency != FrequencyYearly {
		return NewValidationError("frequency", "retirement plans use monthly or yearly periods, got %q", p.Frequency)
	}
	if !p.ReferencePrice.IsPositive() {
		return &ValidationError{Field: "reference_price", Message: "a positive current price is required", Cause: ErrMissingReferencePrice}
	}
	return nil
}

// RetirementOutcome summarizes one scenario of a retirement plan.
type RetirementOutcome struct {
	Plan                  RetirementPlan    `json:"plan"`
	Scenario              ScenarioName      `json:"scenario"`
	MacroMultiplier       decimal.Decimal   `json:"macroMultiplier"`
	Accumulation          *SimulationResult `json:"accumulation"`
	Drawdown              *SimulationResult `json:"drawdown"`
	PriceAtRetirement     decimal.Decimal   `json:"priceAtRetirement"`
	BTCAtRetirement       decimal.Decimal   `json:"btcAtRetirement"`
	PatrimonyAtRetirement decimal.Decimal   `json:"patrimonyAtRetirement"`
	InflationAtRetirement decimal.Decimal   `json:"inflationAtRetirement"`
	SWRIncomeNominal      decimal.Decimal   `json:"swrIncomeNominal"`
	SWRIncomeReal         decimal.Decimal   `json:"swrIncomeReal"`
	SlicesIncomeNominal   decimal.Decimal   `json:"slicesIncomeNominal"`
	SlicesIncomeReal      decimal.Decimal   `json:"slicesIncomeReal"`
	TargetIncomeNominal   decimal.Decimal   `json:"targetIncomeNominal"`
	MetGoal               bool              `json:"metGoal"`
	RequiredBTCSWR        decimal.Decimal   `json:"requiredBtcSwr"`
	RequiredBTCSlices     decimal.Decimal   `json:"requiredBtcSlices"`
	BTCGap                decimal.Decimal   `json:"btcGap"`
	DepletionAge          *int              `json:"depletionAge,omitempty"`
}
