package compare

import (
	"fmt"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// ComparisonResult represents a single plan variant with calculated metrics
type ComparisonResult struct {
	ScenarioName string                    `json:"scenarioName"`
	Description  string                    `json:"description"`
	Scenario     domain.ScenarioName       `json:"scenario"`
	Outcome      *domain.RetirementOutcome `json:"-"`

	// Key Metrics
	BTCAtRetirement       decimal.Decimal `json:"btcAtRetirement"`
	PatrimonyAtRetirement decimal.Decimal `json:"patrimonyAtRetirement"`
	SWRIncomeReal         decimal.Decimal `json:"swrIncomeReal"`
	FinalBTC              decimal.Decimal `json:"finalBtc"`
	LongevityPeriods      int             `json:"longevityPeriods"` // Drawdown periods before depletion
	Depleted              bool            `json:"depleted"`
	DepletionAge          *int            `json:"depletionAge,omitempty"`
	MetGoal               bool            `json:"metGoal"`
	BTCGap                decimal.Decimal `json:"btcGap"`

	// Comparison to Base
	PatrimonyDiffFromBase decimal.Decimal `json:"patrimonyDiffFromBase"`
	PatrimonyPctFromBase  decimal.Decimal `json:"patrimonyPctFromBase"`
	IncomeDiffFromBase    decimal.Decimal `json:"incomeDiffFromBase"`
	LongevityDiff         int             `json:"longevityDiff"`
	GapDiffFromBase       decimal.Decimal `json:"gapDiffFromBase"`

	// Plan specifics (extracted for display)
	RetirementAge   int    `json:"retirementAge"`
	PeriodsPerYear  int    `json:"periodsPerYear"`
	Contribution    string `json:"contribution,omitempty"`
	WithdrawalRate  string `json:"withdrawalRate,omitempty"`
	MacroMultiplier string `json:"macroMultiplier,omitempty"`
}

// LongevityYears converts the drawdown longevity to years
func (r *ComparisonResult) LongevityYears() decimal.Decimal {
	if r.PeriodsPerYear <= 0 {
		return decimal.NewFromInt(int64(r.LongevityPeriods))
	}
	return decimal.NewFromInt(int64(r.LongevityPeriods)).Div(decimal.NewFromInt(int64(r.PeriodsPerYear)))
}

// ComparisonSet represents a collection of plan comparisons
type ComparisonSet struct {
	BaseScenarioName   string             `json:"baseScenarioName"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	ConfigPath         string             `json:"configPath"`
}

// MetricsCalculator extracts key metrics from retirement outcomes
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes all comparison metrics for an outcome
func (mc *MetricsCalculator) CalculateMetrics(name string, outcome *domain.RetirementOutcome) ComparisonResult {
	plan := outcome.Plan
	result := ComparisonResult{
		ScenarioName:          name,
		Scenario:              outcome.Scenario,
		Outcome:               outcome,
		BTCAtRetirement:       outcome.BTCAtRetirement,
		PatrimonyAtRetirement: outcome.PatrimonyAtRetirement,
		SWRIncomeReal:         outcome.SWRIncomeReal,
		FinalBTC:              outcome.Drawdown.FinalBTC(),
		LongevityPeriods:      mc.longevity(outcome.Drawdown),
		Depleted:              outcome.Drawdown.Depleted,
		DepletionAge:          outcome.DepletionAge,
		MetGoal:               outcome.MetGoal,
		BTCGap:                outcome.BTCGap,
		RetirementAge:         plan.RetirementAge,
		PeriodsPerYear:        plan.Frequency.PeriodsPerYear(),
		WithdrawalRate:        plan.SafeWithdrawalRate.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%",
		MacroMultiplier:       outcome.MacroMultiplier.String(),
	}

	switch {
	case plan.ContributionSats > 0 && plan.ContributionFiat.IsPositive():
		result.Contribution = fmt.Sprintf("%s + %d sats/%s", plan.ContributionFiat.StringFixed(2), plan.ContributionSats, plan.Frequency)
	case plan.ContributionSats > 0:
		result.Contribution = fmt.Sprintf("%d sats/%s", plan.ContributionSats, plan.Frequency)
	default:
		result.Contribution = fmt.Sprintf("%s/%s", plan.ContributionFiat.StringFixed(2), plan.Frequency)
	}

	return result
}

// CalculateComparison computes comparison metrics between a variant and a base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.PatrimonyDiffFromBase = scenario.PatrimonyAtRetirement.Sub(base.PatrimonyAtRetirement)

	if !base.PatrimonyAtRetirement.IsZero() {
		scenario.PatrimonyPctFromBase = scenario.PatrimonyDiffFromBase.
			Div(base.PatrimonyAtRetirement).
			Mul(decimal.NewFromInt(100))
	}

	scenario.IncomeDiffFromBase = scenario.SWRIncomeReal.Sub(base.SWRIncomeReal)
	scenario.LongevityDiff = scenario.LongevityPeriods - base.LongevityPeriods
	scenario.GapDiffFromBase = scenario.BTCGap.Sub(base.BTCGap)

	return scenario
}

// longevity counts the drawdown periods that were paid in full
func (mc *MetricsCalculator) longevity(draw *domain.SimulationResult) int {
	if k, ok := draw.DepletionPeriodIndex(); ok {
		return k - 1
	}
	return len(draw.Snapshots) - 1
}

// GenerateRecommendations creates recommendations based on comparison results
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if compSet.BaseResult == nil || len(compSet.AlternativeResults) == 0 {
		return recommendations
	}
	base := compSet.BaseResult

	bestPatrimony := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.PatrimonyAtRetirement.GreaterThan(bestPatrimony.PatrimonyAtRetirement) {
			bestPatrimony = alt
		}
	}
	if bestPatrimony != base {
		recommendations = append(recommendations,
			"Best Patrimony: "+bestPatrimony.ScenarioName+" retires with $"+
				bestPatrimony.PatrimonyDiffFromBase.StringFixed(0)+" more than the base plan")
	}

	bestLongevity := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.LongevityPeriods > bestLongevity.LongevityPeriods {
			bestLongevity = alt
		}
	}
	if bestLongevity != base {
		recommendations = append(recommendations,
			"Best Longevity: "+bestLongevity.ScenarioName+" funds "+
				fmt.Sprintf("%d more periods of withdrawals", bestLongevity.LongevityDiff))
	}

	smallestGap := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.BTCGap.LessThan(smallestGap.BTCGap) {
			smallestGap = alt
		}
	}
	if smallestGap != base && base.BTCGap.IsPositive() {
		recommendations = append(recommendations,
			"Smallest Gap: "+smallestGap.ScenarioName+" closes "+
				smallestGap.GapDiffFromBase.Neg().StringFixed(4)+" BTC of the shortfall")
	}

	for _, alt := range compSet.AlternativeResults {
		if alt.MetGoal && !base.MetGoal {
			recommendations = append(recommendations,
				"Goal Met: "+alt.ScenarioName+" reaches the income target where the base plan does not")
		}
		if alt.Depleted && !base.Depleted && alt.DepletionAge != nil {
			recommendations = append(recommendations,
				fmt.Sprintf("Warning: %s runs out of bitcoin at age %d", alt.ScenarioName, *alt.DepletionAge))
		}
	}

	return recommendations
}
