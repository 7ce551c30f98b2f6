package calculation

import (
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// Accumulate simulates periodic buying along a price trajectory.
//
// prices must hold at least HorizonPeriods+1 points. Period 0 converts the
// initial capital at prices[0]; each period k in 1..HorizonPeriods converts
// that period's contribution at prices[k]. The result has one snapshot per
// period, h+1 in total.
func Accumulate(cfg domain.SimulationConfig, prices []domain.ProjectedPricePoint) (*domain.SimulationResult, error) {
	if err := validateRun(cfg, prices); err != nil {
		return nil, err
	}

	snap := openingSnapshot(cfg, prices[0].Price)
	result := &domain.SimulationResult{
		Phase:     domain.PhaseAccumulation,
		Scenario:  cfg.Scenario.Name,
		Snapshots: make([]domain.SimulationSnapshot, 0, cfg.HorizonPeriods+1),
	}
	result.Snapshots = append(result.Snapshots, snap)

	sched := newContributionSchedule(cfg)
	infl := newInflationClock(cfg.InflationRateAnnual, cfg.PeriodsPerYear(), decimal.NewFromInt(1))
	for k := 1; k <= cfg.HorizonPeriods; k++ {
		price := prices[k].Price
		bought, fiat := sched.contribute(k, price)
		snap.BTCBalance = snap.BTCBalance.Add(bought)
		snap = domain.SimulationSnapshot{
			PeriodIndex:               k,
			Price:                     price,
			BTCBalance:                snap.BTCBalance,
			FiatValue:                 snap.BTCBalance.Mul(price),
			ContributionOrWithdrawal:  fiat,
			CumulativeFiatContributed: snap.CumulativeFiatContributed.Add(fiat),
			CumulativeInflationFactor: infl.at(k),
		}
		result.Snapshots = append(result.Snapshots, snap)
	}
	return result, nil
}

func validateRun(cfg domain.SimulationConfig, prices []domain.ProjectedPricePoint) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(prices) < cfg.HorizonPeriods+1 {
		return domain.NewValidationError("prices", "need %d prices for a horizon of %d periods, got %d",
			cfg.HorizonPeriods+1, cfg.HorizonPeriods, len(prices))
	}
	for k := 0; k <= cfg.HorizonPeriods; k++ {
		if !prices[k].Price.IsPositive() {
			return domain.NewValidationError("prices", "price at period %d must be positive, got %s", k, prices[k].Price)
		}
	}
	return nil
}

// openingSnapshot is period 0 of a fresh run: the initial capital bought at
// the first price.
func openingSnapshot(cfg domain.SimulationConfig, price decimal.Decimal) domain.SimulationSnapshot {
	btc := cfg.InitialCapitalFiat.Div(price)
	return domain.SimulationSnapshot{
		PeriodIndex:               0,
		Price:                     price,
		BTCBalance:                btc,
		FiatValue:                 btc.Mul(price),
		ContributionOrWithdrawal:  cfg.InitialCapitalFiat,
		CumulativeFiatContributed: cfg.InitialCapitalFiat,
		CumulativeInflationFactor: decimal.NewFromInt(1),
	}
}

// contributionSchedule yields the per-period contribution, raised by the
// annual growth rate on the first period of every year after the first.
type contributionSchedule struct {
	fiat   decimal.Decimal
	sats   int64
	growth decimal.Decimal
	ppy    int
	factor decimal.Decimal
}

func newContributionSchedule(cfg domain.SimulationConfig) *contributionSchedule {
	return &contributionSchedule{
		fiat:   cfg.PeriodicContributionFiat,
		sats:   cfg.PeriodicContributionSats,
		growth: decimal.NewFromInt(1).Add(cfg.ContributionGrowthAnnual),
		ppy:    cfg.PeriodsPerYear(),
		factor: decimal.NewFromInt(1),
	}
}

// contribute returns the BTC bought in period k and its fiat equivalent.
func (s *contributionSchedule) contribute(k int, price decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if k > 1 && (k-1)%s.ppy == 0 {
		s.factor = s.factor.Mul(s.growth)
	}
	fiat := s.fiat.Mul(s.factor)
	btc := fiat.Div(price)
	if s.sats > 0 {
		sats := decimal.NewFromInt(s.sats).Mul(s.factor).Floor()
		satsBTC := sats.Div(satsPerBTC)
		btc = btc.Add(satsBTC)
		fiat = fiat.Add(satsBTC.Mul(price))
	}
	return btc, fiat
}

// inflationClock computes start * (1+i)^(k/ppy).
type inflationClock struct {
	start  decimal.Decimal
	annual decimal.Decimal
	ppy    int
}

func newInflationClock(rate decimal.Decimal, ppy int, start decimal.Decimal) inflationClock {
	return inflationClock{
		start:  start,
		annual: decimal.NewFromInt(1).Add(rate),
		ppy:    ppy,
	}
}

func (c inflationClock) at(k int) decimal.Decimal {
	years, rem := k/c.ppy, k%c.ppy
	f := c.annual.Pow(decimal.NewFromInt(int64(years)))
	if rem > 0 {
		f = f.Mul(powFrac(c.annual, float64(rem)/float64(c.ppy)))
	}
	return c.start.Mul(f).Round(12)
}
