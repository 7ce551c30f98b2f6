package calculation

import (
	"fmt"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// WithdrawalStrategy defines how much bitcoin leaves the balance each period.
type WithdrawalStrategy interface {
	// CalculateWithdrawal returns the BTC to withdraw in a period, before
	// clamping to the balance.
	CalculateWithdrawal(balance decimal.Decimal, period int, price decimal.Decimal, inflationFactor decimal.Decimal) decimal.Decimal
	GetStrategyName() string
}

// FixedRealWithdrawal withdraws AnnualAmount/PeriodsPerYear fiat in today's
// money, grown by the cumulative inflation factor.
type FixedRealWithdrawal struct {
	AnnualAmount   decimal.Decimal
	PeriodsPerYear int
}

// CalculateWithdrawal converts the inflated fiat amount at price.
func (s *FixedRealWithdrawal) CalculateWithdrawal(_ decimal.Decimal, _ int, price decimal.Decimal, inflationFactor decimal.Decimal) decimal.Decimal {
	fiat := s.AnnualAmount.Div(decimal.NewFromInt(int64(s.PeriodsPerYear))).Mul(inflationFactor)
	return fiat.Div(price)
}

// GetStrategyName returns the name of this strategy
func (s *FixedRealWithdrawal) GetStrategyName() string {
	return "Fixed Real Withdrawal"
}

// PercentOfBalanceWithdrawal withdraws Rate of the current balance each period.
type PercentOfBalanceWithdrawal struct {
	Rate decimal.Decimal
}

func (s *PercentOfBalanceWithdrawal) CalculateWithdrawal(balance decimal.Decimal, _ int, _ decimal.Decimal, _ decimal.Decimal) decimal.Decimal {
	return balance.Mul(s.Rate)
}

// GetStrategyName returns the name of this strategy
func (s *PercentOfBalanceWithdrawal) GetStrategyName() string {
	return fmt.Sprintf("%s%% of Balance", s.Rate.Mul(decimal.NewFromInt(100)).String())
}

// NewWithdrawalStrategy builds the strategy for cfg's withdrawal policy.
func NewWithdrawalStrategy(cfg domain.SimulationConfig) (WithdrawalStrategy, error) {
	switch cfg.WithdrawalPolicy {
	case domain.WithdrawFixedReal, "":
		return &FixedRealWithdrawal{AnnualAmount: cfg.WithdrawalAmountOrRate, PeriodsPerYear: cfg.PeriodsPerYear()}, nil
	case domain.WithdrawPercentOfBalance:
		// A rate of 1 would empty the balance, and this policy never depletes.
		if cfg.WithdrawalAmountOrRate.IsNegative() || cfg.WithdrawalAmountOrRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, domain.NewValidationError("withdrawal_rate", "must be in [0, 1), got %s", cfg.WithdrawalAmountOrRate)
		}
		return &PercentOfBalanceWithdrawal{Rate: cfg.WithdrawalAmountOrRate}, nil
	}
	return nil, domain.NewValidationError("withdrawal_policy", "unknown withdrawal policy %q", cfg.WithdrawalPolicy)
}

// Drawdown simulates withdrawals along a price trajectory.
//
// A zero start handoff begins from InitialCapitalFiat/prices[0]; otherwise the
// run continues from the handed-off balance and inflation factor. When a
// withdrawal would take the whole balance it is clamped, the result is
// marked depleted at that period and no later snapshots are emitted.
func Drawdown(cfg domain.SimulationConfig, prices []domain.ProjectedPricePoint, start domain.Handoff) (*domain.SimulationResult, error) {
	if err := validateRun(cfg, prices); err != nil {
		return nil, err
	}
	strategy, err := NewWithdrawalStrategy(cfg)
	if err != nil {
		return nil, err
	}
	return drawdownWith(cfg, prices, start, strategy), nil
}

func drawdownWith(cfg domain.SimulationConfig, prices []domain.ProjectedPricePoint, start domain.Handoff, strategy WithdrawalStrategy) *domain.SimulationResult {
	snap := openingSnapshot(cfg, prices[0].Price)
	if !start.IsZero() {
		f0 := start.InflationFactor
		if !f0.IsPositive() {
			f0 = decimal.NewFromInt(1)
		}
		snap.BTCBalance = start.BTCBalance
		snap.FiatValue = start.BTCBalance.Mul(snap.Price)
		snap.ContributionOrWithdrawal = decimal.Zero
		snap.CumulativeFiatContributed = start.FiatBasis
		snap.CumulativeInflationFactor = f0
	}

	result := &domain.SimulationResult{
		Phase:     domain.PhaseDrawdown,
		Scenario:  cfg.Scenario.Name,
		Snapshots: make([]domain.SimulationSnapshot, 0, cfg.HorizonPeriods+1),
	}
	result.Snapshots = append(result.Snapshots, snap)

	infl := newInflationClock(cfg.InflationRateAnnual, cfg.PeriodsPerYear(), snap.CumulativeInflationFactor)
	balance := snap.BTCBalance
	for k := 1; k <= cfg.HorizonPeriods; k++ {
		price := prices[k].Price
		factor := infl.at(k)
		w := strategy.CalculateWithdrawal(balance, k, price, factor).Round(btcPlaces)
		depleted := w.IsPositive() && w.GreaterThanOrEqual(balance)
		if depleted {
			w = balance
		}
		balance = balance.Sub(w)
		result.Snapshots = append(result.Snapshots, domain.SimulationSnapshot{
			PeriodIndex:               k,
			Price:                     price,
			BTCBalance:                balance,
			FiatValue:                 balance.Mul(price),
			ContributionOrWithdrawal:  w.Mul(price).Neg(),
			CumulativeFiatContributed: snap.CumulativeFiatContributed,
			CumulativeInflationFactor: factor,
		})
		if depleted {
			period := k
			result.Depleted = true
			result.DepletionPeriod = &period
			break
		}
	}
	return result
}
