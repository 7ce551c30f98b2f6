package calculation

import (
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// SimulateYield models a strategy that pays a periodic yield in bitcoin.
//
// Each period k >= 1 applies, in order: the contribution at prices[k], the
// distribution balance*rate, the reinvested share of it, the fiat income of
// the remainder at prices[k], and finally the reinvested BTC to the balance.
func SimulateYield(cfg domain.YieldSimConfig, prices []domain.ProjectedPricePoint) (*domain.YieldResult, error) {
	if err := validateRun(cfg.SimulationConfig, prices); err != nil {
		return nil, err
	}
	if cfg.PeriodicYieldRate.IsNegative() {
		return nil, domain.NewValidationError("periodic_yield_rate", "must not be negative, got %s", cfg.PeriodicYieldRate)
	}
	if err := cfg.Reinvest.Validate(); err != nil {
		return nil, err
	}

	ppy := cfg.PeriodsPerYear()
	result := &domain.YieldResult{
		PeriodsPerYear: ppy,
		Snapshots:      make([]domain.YieldSnapshot, 0, cfg.HorizonPeriods+1),
	}
	open := openingSnapshot(cfg.SimulationConfig, prices[0].Price)
	result.Snapshots = append(result.Snapshots, domain.YieldSnapshot{SimulationSnapshot: open})

	fraction := cfg.Reinvest.ReinvestedFraction()
	sched := newContributionSchedule(cfg.SimulationConfig)
	infl := newInflationClock(cfg.InflationRateAnnual, ppy, decimal.NewFromInt(1))
	balance := open.BTCBalance
	contributed := open.CumulativeFiatContributed
	income := decimal.Zero
	for k := 1; k <= cfg.HorizonPeriods; k++ {
		price := prices[k].Price

		bought, fiat := sched.contribute(k, price)
		balance = balance.Add(bought)
		contributed = contributed.Add(fiat)

		dist := balance.Mul(cfg.PeriodicYieldRate).Round(btcPlaces)
		reinvested := dist.Mul(fraction).Round(btcPlaces)
		paid := dist.Sub(reinvested).Mul(price)
		income = income.Add(paid)
		balance = balance.Add(reinvested)

		result.Snapshots = append(result.Snapshots, domain.YieldSnapshot{
			SimulationSnapshot: domain.SimulationSnapshot{
				PeriodIndex:               k,
				Price:                     price,
				BTCBalance:                balance,
				FiatValue:                 balance.Mul(price),
				ContributionOrWithdrawal:  fiat,
				CumulativeFiatContributed: contributed,
				CumulativeInflationFactor: infl.at(k),
			},
			DistributionBTC:      dist,
			DistributionFiat:     dist.Mul(price),
			ReinvestedBTC:        reinvested,
			IncomeFiat:           paid,
			CumulativeIncomeFiat: income,
		})
	}
	return result, nil
}
