package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ContributionFrequency is the cadence of contributions and the period unit
// of a simulation.
type ContributionFrequency string

const (
	FrequencyDaily   ContributionFrequency = "daily"
	FrequencyWeekly  ContributionFrequency = "weekly"
	FrequencyMonthly ContributionFrequency = "monthly"
	FrequencyYearly  ContributionFrequency = "yearly"
)

// PeriodsPerYear returns how many periods of this frequency make a year.
func (f ContributionFrequency) PeriodsPerYear() int {
	switch f {
	case FrequencyDaily:
		return 365
	case FrequencyWeekly:
		return 52
	case FrequencyYearly:
		return 1
	default:
		return 12
	}
}

// ParseContributionFrequency accepts the frequency names plus "annual".
func ParseContributionFrequency(s string) (ContributionFrequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return FrequencyDaily, nil
	case "weekly":
		return FrequencyWeekly, nil
	case "monthly", "":
		return FrequencyMonthly, nil
	case "yearly", "annual", "annually":
		return FrequencyYearly, nil
	}
	return "", NewValidationError("frequency", "unknown frequency %q", s)
}

// WithdrawalPolicy selects how drawdown amounts are computed.
type WithdrawalPolicy string

const (
	// WithdrawFixedReal withdraws a base annual fiat amount grown by inflation.
	WithdrawFixedReal WithdrawalPolicy = "fixed_real"
	// WithdrawPercentOfBalance withdraws a fraction of the BTC balance each period.
	WithdrawPercentOfBalance WithdrawalPolicy = "percent_of_balance"
)

// ParseWithdrawalPolicy resolves a policy name.
func ParseWithdrawalPolicy(s string) (WithdrawalPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed_real", "fixedreal", "fixed", "":
		return WithdrawFixedReal, nil
	case "percent_of_balance", "percentofbalance", "percent":
		return WithdrawPercentOfBalance, nil
	}
	return "", NewValidationError("withdrawal_policy", "unknown withdrawal policy %q", s)
}

// SimulationConfig is the input of the accumulation and drawdown simulators.
// It is built per call and never modified by a simulator.
type SimulationConfig struct {
	InitialCapitalFiat       decimal.Decimal       `json:"initialCapitalFiat"`
	PeriodicContributionFiat decimal.Decimal       `json:"periodicContributionFiat"`
	PeriodicContributionSats int64                 `json:"periodicContributionSats,omitempty"`
	ContributionGrowthAnnual decimal.Decimal       `json:"contributionGrowthAnnual"`
	ContributionFrequency    ContributionFrequency `json:"contributionFrequency"`
	HorizonPeriods           int                   `json:"horizonPeriods"`
	InflationRateAnnual      decimal.Decimal       `json:"inflationRateAnnual"`
	WithdrawalPolicy         WithdrawalPolicy      `json:"withdrawalPolicy"`
	WithdrawalAmountOrRate   decimal.Decimal       `json:"withdrawalAmountOrRate"`
	Scenario                 ScenarioSpec          `json:"scenario"`
}

// PeriodsPerYear is the period count per year implied by the frequency.
func (c SimulationConfig) PeriodsPerYear() int {
	return c.ContributionFrequency.PeriodsPerYear()
}

// Validate rejects inputs that no simulator accepts.
func (c SimulationConfig) Validate() error {
	if c.HorizonPeriods <= 0 {
		return &ValidationError{Field: "horizon_periods", Message: fmt.Sprintf("must be positive, got %d", c.HorizonPeriods), Cause: ErrZeroOrNegativeHorizon}
	}
	if c.InitialCapitalFiat.IsNegative() {
		return NewValidationError("initial_capital", "must not be negative")
	}
	if c.PeriodicContributionFiat.IsNegative() {
		return NewValidationError("periodic_contribution", "must not be negative")
	}
	if c.PeriodicContributionSats < 0 {
		return NewValidationError("periodic_contribution_sats", "must not be negative")
	}
	if c.ContributionGrowthAnnual.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return NewValidationError("contribution_growth", "must be greater than -100%%")
	}
	if c.InflationRateAnnual.IsNegative() {
		return NewValidationError("inflation_rate", "must not be negative")
	}
	if c.WithdrawalAmountOrRate.IsNegative() {
		return NewValidationError("withdrawal", "must not be negative")
	}
	switch c.ContributionFrequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
	default:
		return NewValidationError("frequency", "unknown frequency %q", c.ContributionFrequency)
	}
	return nil
}

// SimulationSnapshot is the state at the end of one period.
type SimulationSnapshot struct {
	PeriodIndex               int             `json:"periodIndex"`
	Price                     decimal.Decimal `json:"price"`
	BTCBalance                decimal.Decimal `json:"btcBalance"`
	FiatValue                 decimal.Decimal `json:"fiatValue"`
	ContributionOrWithdrawal  decimal.Decimal `json:"contributionOrWithdrawal"`
	CumulativeFiatContributed decimal.Decimal `json:"cumulativeFiatContributed"`
	CumulativeInflationFactor decimal.Decimal `json:"cumulativeInflationFactor"`
}

// Phase labels which simulator produced a result.
type Phase string

const (
	PhaseAccumulation Phase = "accumulation"
	PhaseDrawdown     Phase = "drawdown"
	PhaseYield        Phase = "yield"
)

// SimulationResult is the ordered snapshot sequence of one simulator run.
type SimulationResult struct {
	Phase           Phase                `json:"phase"`
	Scenario        ScenarioName         `json:"scenario,omitempty"`
	Snapshots       []SimulationSnapshot `json:"snapshots"`
	Depleted        bool                 `json:"depleted"`
	DepletionPeriod *int                 `json:"depletionPeriod,omitempty"`
}

// Handoff carries the terminal state of one phase into the next.
type Handoff struct {
	BTCBalance      decimal.Decimal
	InflationFactor decimal.Decimal
	FiatBasis       decimal.Decimal
}

// IsZero reports whether the handoff is empty, i.e. a fresh start.
func (h Handoff) IsZero() bool {
	return h.BTCBalance.IsZero() && h.InflationFactor.IsZero()
}

// Final returns the last snapshot.
func (r *SimulationResult) Final() SimulationSnapshot {
	if r == nil || len(r.Snapshots) == 0 {
		return SimulationSnapshot{}
	}
	return r.Snapshots[len(r.Snapshots)-1]
}

// FinalBTC is the balance after the last emitted period.
func (r *SimulationResult) FinalBTC() decimal.Decimal {
	return r.Final().BTCBalance
}

// FinalFiatValue is the fiat value after the last emitted period.
func (r *SimulationResult) FinalFiatValue() decimal.Decimal {
	return r.Final().FiatValue
}

// DepletionPeriodIndex returns the depletion period, if any.
func (r *SimulationResult) DepletionPeriodIndex() (int, bool) {
	if r == nil || r.DepletionPeriod == nil {
		return 0, false
	}
	return *r.DepletionPeriod, true
}

// TotalWithdrawn sums the fiat withdrawals of the run.
func (r *SimulationResult) TotalWithdrawn() decimal.Decimal {
	total := decimal.Zero
	for _, s := range r.Snapshots {
		if s.ContributionOrWithdrawal.IsNegative() {
			total = total.Add(s.ContributionOrWithdrawal.Neg())
		}
	}
	return total
}

// TotalReturnPct is (final value + withdrawals - fiat basis) / fiat basis,
// in percent. It is zero when nothing was invested.
func (r *SimulationResult) TotalReturnPct() decimal.Decimal {
	final := r.Final()
	basis := final.CumulativeFiatContributed
	if !basis.IsPositive() {
		return decimal.Zero
	}
	gain := final.FiatValue.Add(r.TotalWithdrawn()).Sub(basis)
	return gain.Div(basis).Mul(decimal.NewFromInt(100))
}

// Handoff returns the terminal state for a following phase.
func (r *SimulationResult) Handoff() Handoff {
	final := r.Final()
	return Handoff{
		BTCBalance:      final.BTCBalance,
		InflationFactor: final.CumulativeInflationFactor,
		FiatBasis:       final.CumulativeFiatContributed,
	}
}
