package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ReinvestMode selects what happens to yield distributions.
type ReinvestMode string

const (
	ReinvestModeFull    ReinvestMode = "full"
	ReinvestModeNone    ReinvestMode = "none"
	ReinvestModePartial ReinvestMode = "partial"
)

// ReinvestPolicy decides which share of each distribution buys more bitcoin.
type ReinvestPolicy struct {
	Mode     ReinvestMode    `json:"mode"`
	Fraction decimal.Decimal `json:"fraction,omitempty"`
}

func ReinvestFull() ReinvestPolicy { return ReinvestPolicy{Mode: ReinvestModeFull} }
func ReinvestNone() ReinvestPolicy { return ReinvestPolicy{Mode: ReinvestModeNone} }

func ReinvestPartial(fraction decimal.Decimal) ReinvestPolicy {
	return ReinvestPolicy{Mode: ReinvestModePartial, Fraction: fraction}
}

// ReinvestedFraction returns the share of a distribution that is reinvested.
func (p ReinvestPolicy) ReinvestedFraction() decimal.Decimal {
	switch p.Mode {
	case ReinvestModeFull:
		return decimal.NewFromInt(1)
	case ReinvestModePartial:
		return p.Fraction
	default:
		return decimal.Zero
	}
}

// Validate checks the mode and, for partial, that the fraction is in [0,1].
func (p ReinvestPolicy) Validate() error {
	switch p.Mode {
	case ReinvestModeFull, ReinvestModeNone:
		return nil
	case ReinvestModePartial:
		if p.Fraction.IsNegative() || p.Fraction.GreaterThan(decimal.NewFromInt(1)) {
			return NewValidationError("reinvest_fraction", "must be between 0 and 1, got %s", p.Fraction)
		}
		return nil
	}
	return NewValidationError("reinvest_policy", "unknown reinvest mode %q", p.Mode)
}

// ParseReinvestPolicy accepts "full", "none" or "partial:<fraction>".
func ParseReinvestPolicy(s string) (ReinvestPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "full", "":
		return ReinvestFull(), nil
	case "none":
		return ReinvestNone(), nil
	}
	if rest, ok := strings.CutPrefix(s, "partial:"); ok {
		f, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return ReinvestPolicy{}, &ValidationError{Field: "reinvest_policy", Message: "invalid partial fraction", Cause: err}
		}
		p := ReinvestPartial(decimal.NewFromFloat(f))
		return p, p.Validate()
	}
	return ReinvestPolicy{}, NewValidationError("reinvest_policy", "expected full, none or partial:<fraction>, got %q", s)
}

// YieldSimConfig extends SimulationConfig with a periodic yield.
type YieldSimConfig struct {
	SimulationConfig
	PeriodicYieldRate decimal.Decimal `json:"periodicYieldRate"`
	Reinvest          ReinvestPolicy  `json:"reinvestPolicy"`
}

// YieldSnapshot is a SimulationSnapshot plus the period's distribution.
type YieldSnapshot struct {
	SimulationSnapshot
	DistributionBTC      decimal.Decimal `json:"distributionBtc"`
	DistributionFiat     decimal.Decimal `json:"distributionFiat"`
	ReinvestedBTC        decimal.Decimal `json:"reinvestedBtc"`
	IncomeFiat           decimal.Decimal `json:"incomeFiat"`
	CumulativeIncomeFiat decimal.Decimal `json:"cumulativeIncomeFiat"`
}

// YieldResult is the ordered output of a yield simulation.
type YieldResult struct {
	PeriodsPerYear int             `json:"periodsPerYear"`
	Snapshots      []YieldSnapshot `json:"snapshots"`
}

// YieldYear aggregates the periods of one simulated year.
type YieldYear struct {
	Year          int             `json:"year"`
	StartBTC      decimal.Decimal `json:"startBtc"`
	EndBTC        decimal.Decimal `json:"endBtc"`
	ReinvestedBTC decimal.Decimal `json:"reinvestedBtc"`
	IncomeFiat    decimal.Decimal `json:"incomeFiat"`
	Contributed   decimal.Decimal `json:"contributed"`
	EndFiatValue  decimal.Decimal `json:"endFiatValue"`
}

// Final returns the last snapshot.
func (r *YieldResult) Final() YieldSnapshot {
	if r == nil || len(r.Snapshots) == 0 {
		return YieldSnapshot{}
	}
	return r.Snapshots[len(r.Snapshots)-1]
}

// TotalIncome is the fiat income paid out over the run.
func (r *YieldResult) TotalIncome() decimal.Decimal {
	return r.Final().CumulativeIncomeFiat
}

// TotalReturnPct counts final value plus distributed income against the
// fiat basis, in percent.
func (r *YieldResult) TotalReturnPct() decimal.Decimal {
	final := r.Final()
	basis := final.CumulativeFiatContributed
	if !basis.IsPositive() {
		return decimal.Zero
	}
	gain := final.FiatValue.Add(final.CumulativeIncomeFiat).Sub(basis)
	return gain.Div(basis).Mul(decimal.NewFromInt(100))
}

// AggregateYearly folds the periods into one row per simulated year.
// Period 0 is the opening state and belongs to year 1.
func (r *YieldResult) AggregateYearly() []YieldYear {
	if r == nil || len(r.Snapshots) == 0 {
		return nil
	}
	ppy := r.PeriodsPerYear
	if ppy <= 0 {
		ppy = 12
	}
	var years []YieldYear
	var cur *YieldYear
	prevBTC := r.Snapshots[0].BTCBalance
	for _, s := range r.Snapshots {
		year := 1
		if s.PeriodIndex > 0 {
			year = (s.PeriodIndex-1)/ppy + 1
		}
		if cur == nil || cur.Year != year {
			if cur != nil {
				years = append(years, *cur)
			}
			cur = &YieldYear{Year: year, StartBTC: prevBTC}
		}
		if s.PeriodIndex > 0 {
			cur.Contributed = cur.Contributed.Add(s.ContributionOrWithdrawal)
		}
		cur.ReinvestedBTC = cur.ReinvestedBTC.Add(s.ReinvestedBTC)
		cur.IncomeFiat = cur.IncomeFiat.Add(s.IncomeFiat)
		cur.EndBTC = s.BTCBalance
		cur.EndFiatValue = s.FiatValue
		prevBTC = s.BTCBalance
	}
	if cur != nil {
		years = append(years, *cur)
	}
	return years
}
