package api

import (
	"strings"
	"time"

	"github.com/rgehrsitz/btcgo/internal/calculation"
	"github.com/rgehrsitz/btcgo/internal/compare"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// PriceResponse is the live reference price.
type PriceResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	At     time.Time       `json:"at"`
	Stale  bool            `json:"stale"`
}

// ScenarioInfo describes one configured scenario.
type ScenarioInfo struct {
	Name             domain.ScenarioName `json:"name"`
	Title            string              `json:"title"`
	AnnualGrowthRate decimal.Decimal     `json:"annual_growth_rate"`
	Anchors          int                 `json:"anchors"`
}

// TemplateInfo describes one what-if template.
type TemplateInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ConvertRequest converts an amount in one unit into all three.
type ConvertRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Unit           string          `json:"unit"`
	ReferencePrice decimal.Decimal `json:"reference_price"`
}

// ConvertResponse holds the amount in every unit.
type ConvertResponse struct {
	Fiat           decimal.Decimal `json:"fiat"`
	BTC            decimal.Decimal `json:"btc"`
	Sats           int64           `json:"sats"`
	SatsPerUnit    int64           `json:"sats_per_unit"`
	ReferencePrice decimal.Decimal `json:"reference_price"`
}

// RegretRequest is a historical lump-sum purchase.
type RegretRequest struct {
	InvestDate     string          `json:"invest_date" binding:"required"`
	ReferenceDate  string          `json:"reference_date"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	ReferencePrice decimal.Decimal `json:"reference_price"`
}

// DCARequest is a recurring historical purchase plan.
type DCARequest struct {
	StartDate      string          `json:"start_date" binding:"required"`
	EndDate        string          `json:"end_date" binding:"required"`
	ReferenceDate  string          `json:"reference_date"`
	Amount         decimal.Decimal `json:"amount"`
	InitialAmount  decimal.Decimal `json:"initial_amount"`
	Frequency      string          `json:"frequency"`
	Currency       string          `json:"currency"`
	ReferencePrice decimal.Decimal `json:"reference_price"`
}

// RetirementRequest overlays the configured default plan. Omitted fields keep
// their default.
type RetirementRequest struct {
	Name               string           `json:"name"`
	CurrentAge         *int             `json:"current_age"`
	RetirementAge      *int             `json:"retirement_age"`
	LifeExpectancy     *int             `json:"life_expectancy"`
	CurrentBTC         *decimal.Decimal `json:"current_btc"`
	ContributionFiat   *decimal.Decimal `json:"contribution_fiat"`
	ContributionSats   *int64           `json:"contribution_sats"`
	ContributionGrowth *decimal.Decimal `json:"contribution_growth"`
	Frequency          string           `json:"frequency"`
	TargetAnnualIncome *decimal.Decimal `json:"target_annual_income"`
	InflationRate      *decimal.Decimal `json:"inflation_rate"`
	SafeWithdrawalRate *decimal.Decimal `json:"safe_withdrawal_rate"`
	WithdrawalPolicy   string           `json:"withdrawal_policy"`
	StartYear          *int             `json:"start_year"`
	MacroEvents        []string         `json:"macro_events"`
	ReferencePrice     decimal.Decimal  `json:"reference_price"`

	// Scenario selects one scenario; empty or "all" runs every scenario.
	Scenario string `json:"scenario"`
	// Compare names what-if templates to evaluate against the plan.
	Compare []string `json:"compare"`
}

// RetirementResponse carries one outcome per evaluated scenario.
type RetirementResponse struct {
	Plan       *domain.RetirementPlan      `json:"plan"`
	Outcomes   []*domain.RetirementOutcome `json:"outcomes"`
	Comparison *compare.ComparisonSet      `json:"comparison,omitempty"`
}

// YieldRequest is a yield strategy over a projected price path.
type YieldRequest struct {
	InitialFiat       decimal.Decimal  `json:"initial_fiat"`
	ContributionFiat  decimal.Decimal  `json:"contribution_fiat"`
	Frequency         string           `json:"frequency"`
	Periods           int              `json:"periods"`
	PeriodicYieldRate *decimal.Decimal `json:"periodic_yield_rate"`
	Reinvest          string           `json:"reinvest"`
	Scenario          string           `json:"scenario"`
	ReferencePrice    decimal.Decimal  `json:"reference_price"`
}

// YieldResponse summarizes a yield run.
type YieldResponse struct {
	Final          domain.YieldSnapshot   `json:"final"`
	TotalIncome    decimal.Decimal        `json:"total_income"`
	TotalReturnPct decimal.Decimal        `json:"total_return_pct"`
	Years          []domain.YieldYear     `json:"years"`
	Snapshots      []domain.YieldSnapshot `json:"snapshots"`
}

// BreakEvenRequest solves one plan parameter.
type BreakEvenRequest struct {
	RetirementRequest
	Target        string          `json:"target" binding:"required"`
	MaxIterations int             `json:"max_iterations"`
	Tolerance     decimal.Decimal `json:"tolerance"`
	AllScenarios  bool            `json:"all_scenarios"`
}

// HistoryRangeResponse lists stored prices between two dates.
type HistoryRangeResponse struct {
	Currency string              `json:"currency"`
	Start    time.Time           `json:"start"`
	End      time.Time           `json:"end"`
	Points   []domain.PricePoint `json:"points"`
}

// apply overlays r onto a copy of base.
func (r *RetirementRequest) apply(base domain.RetirementPlan) (*domain.RetirementPlan, error) {
	plan := base.DeepCopy()
	if r.Name != "" {
		plan.Name = r.Name
	}
	setInt(&plan.CurrentAge, r.CurrentAge)
	setInt(&plan.RetirementAge, r.RetirementAge)
	setInt(&plan.LifeExpectancy, r.LifeExpectancy)
	setInt(&plan.StartYear, r.StartYear)
	setDecimal(&plan.CurrentBTC, r.CurrentBTC)
	setDecimal(&plan.ContributionFiat, r.ContributionFiat)
	setDecimal(&plan.ContributionGrowth, r.ContributionGrowth)
	setDecimal(&plan.TargetAnnualIncome, r.TargetAnnualIncome)
	setDecimal(&plan.InflationRate, r.InflationRate)
	setDecimal(&plan.SafeWithdrawalRate, r.SafeWithdrawalRate)
	if r.ContributionSats != nil {
		plan.ContributionSats = *r.ContributionSats
	}
	if r.Frequency != "" {
		f, err := domain.ParseContributionFrequency(r.Frequency)
		if err != nil {
			return nil, err
		}
		plan.Frequency = f
	}
	if r.WithdrawalPolicy != "" {
		p, err := domain.ParseWithdrawalPolicy(r.WithdrawalPolicy)
		if err != nil {
			return nil, err
		}
		plan.WithdrawalPolicy = p
	}
	if r.MacroEvents != nil {
		plan.MacroEvents = append([]string(nil), r.MacroEvents...)
	}
	if s := strings.ToLower(r.Scenario); s != "" && s != "all" {
		name, err := domain.ParseScenarioName(s)
		if err != nil {
			return nil, err
		}
		plan.Scenario = name
	}
	return plan, nil
}

// allScenarios reports whether the request asks for every scenario.
func (r *RetirementRequest) allScenarios() bool {
	s := strings.ToLower(r.Scenario)
	return s == "" || s == "all"
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

// parseOptionalDate parses s, or returns fallback when s is empty.
func parseOptionalDate(field, s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "invalid date %q", s)
	}
	return d, nil
}

func convertResponse(fiat, btc decimal.Decimal, sats int64, price decimal.Decimal) (ConvertResponse, error) {
	perUnit, err := calculation.SatsPerFiatUnit(price)
	if err != nil {
		return ConvertResponse{}, err
	}
	return ConvertResponse{Fiat: fiat, BTC: btc, Sats: sats, SatsPerUnit: perUnit, ReferencePrice: price}, nil
}
