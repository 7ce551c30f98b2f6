package calculation

import (
	"math"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// pricePlaces is the precision projected prices are rounded to each period.
const pricePlaces = 8

// Trajectory lazily yields the projected prices of a scenario, one period
// at a time. A Trajectory is single-use and not safe for concurrent use.
type Trajectory struct {
	horizon int
	next    int
	prev    decimal.Decimal
	step    func(k int, prev decimal.Decimal) decimal.Decimal
}

// Next returns the next point, or false once the horizon is exhausted.
func (t *Trajectory) Next() (domain.ProjectedPricePoint, bool) {
	if t.next >= t.horizon {
		return domain.ProjectedPricePoint{}, false
	}
	k := t.next
	price := t.step(k, t.prev)
	t.prev = price
	t.next++
	return domain.ProjectedPricePoint{PeriodIndex: k, Price: price}, true
}

// Take returns up to n further points.
func (t *Trajectory) Take(n int) []domain.ProjectedPricePoint {
	out := make([]domain.ProjectedPricePoint, 0, max(0, min(n, t.horizon-t.next)))
	for len(out) < n {
		p, ok := t.Next()
		if !ok {
			break
		}
		out = append(out, p)
	}
	return out
}

// Collect drains the remaining points.
func (t *Trajectory) Collect() []domain.ProjectedPricePoint {
	return t.Take(t.horizon - t.next)
}

// Len is the total number of points the trajectory yields.
func (t *Trajectory) Len() int { return t.horizon }

// GenerateTrajectory produces horizonPeriods points starting at startPrice
// and compounding each period by (1+g)^(1/periodsPerYear), where g is the
// scenario's effective annual growth rate.
func GenerateTrajectory(startPrice decimal.Decimal, horizonPeriods, periodsPerYear int, scenario domain.ScenarioSpec) (*Trajectory, error) {
	if err := validateTrajectoryInput(startPrice, horizonPeriods, periodsPerYear); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	factor := powFrac(decimal.NewFromInt(1).Add(scenario.EffectiveGrowthRate()), 1/float64(periodsPerYear))
	return compounding(startPrice, horizonPeriods, factor), nil
}

func compounding(start decimal.Decimal, horizon int, factor decimal.Decimal) *Trajectory {
	return &Trajectory{
		horizon: horizon,
		step: func(k int, prev decimal.Decimal) decimal.Decimal {
			if k == 0 {
				return start
			}
			return prev.Mul(factor).Round(pricePlaces)
		},
	}
}

func validateTrajectoryInput(startPrice decimal.Decimal, horizon, ppy int) error {
	if err := requirePositivePrice(startPrice); err != nil {
		return err
	}
	if horizon <= 0 {
		return &domain.ValidationError{Field: "horizon_periods", Message: "must be positive", Cause: domain.ErrZeroOrNegativeHorizon}
	}
	if ppy <= 0 {
		return domain.NewValidationError("periods_per_year", "must be positive, got %d", ppy)
	}
	return nil
}

// TrajectoryRequest describes a scenario trajectory with optional price
// anchors and macro event multiplier.
type TrajectoryRequest struct {
	StartPrice     decimal.Decimal
	StartYear      int
	HorizonPeriods int
	PeriodsPerYear int
	Scenario       domain.ScenarioSpec
	// Multiplier scales the anchors, or the horizon end price when the
	// scenario has none. Zero means 1.
	Multiplier decimal.Decimal
}

// GenerateScenarioTrajectory builds the trajectory described by req.
//
// Without anchors it is GenerateTrajectory with the multiplier phased in
// evenly across the horizon. With anchors, prices follow the compound
// growth rate between consecutive (year, price) pairs, starting from
// (StartYear, StartPrice), and extrapolate the last segment's rate beyond
// the final anchor.
func GenerateScenarioTrajectory(req TrajectoryRequest) (*Trajectory, error) {
	if err := validateTrajectoryInput(req.StartPrice, req.HorizonPeriods, req.PeriodsPerYear); err != nil {
		return nil, err
	}
	if err := req.Scenario.Validate(); err != nil {
		return nil, err
	}
	mult := req.Multiplier
	if mult.IsZero() {
		mult = decimal.NewFromInt(1)
	}
	if !mult.IsPositive() {
		return nil, domain.NewValidationError("multiplier", "must be positive, got %s", mult)
	}

	anchors := anchorsAfter(req.Scenario.SortedAnchors(), req.StartYear)
	if len(anchors) == 0 {
		factor := powFrac(decimal.NewFromInt(1).Add(req.Scenario.EffectiveGrowthRate()), 1/float64(req.PeriodsPerYear))
		if req.HorizonPeriods > 1 && !mult.Equal(decimal.NewFromInt(1)) {
			factor = factor.Mul(powFrac(mult, 1/float64(req.HorizonPeriods-1))).Round(12)
		}
		return compounding(req.StartPrice, req.HorizonPeriods, factor), nil
	}

	knots := make([]knot, 0, len(anchors)+1)
	knots = append(knots, knot{year: float64(req.StartYear), price: req.StartPrice.InexactFloat64()})
	m := mult.InexactFloat64()
	for _, a := range anchors {
		knots = append(knots, knot{year: float64(a.Year), price: a.Price.InexactFloat64() * m})
	}
	ppy := float64(req.PeriodsPerYear)
	return &Trajectory{
		horizon: req.HorizonPeriods,
		step: func(k int, _ decimal.Decimal) decimal.Decimal {
			if k == 0 {
				return req.StartPrice
			}
			return decimal.NewFromFloat(interpolateCAGR(knots, float64(req.StartYear)+float64(k)/ppy)).Round(pricePlaces)
		},
	}, nil
}

type knot struct {
	year  float64
	price float64
}

func anchorsAfter(anchors []domain.PriceAnchor, year int) []domain.PriceAnchor {
	out := anchors[:0:0]
	for _, a := range anchors {
		if a.Year > year {
			out = append(out, a)
		}
	}
	return out
}

// interpolateCAGR evaluates the piecewise constant-growth curve through
// knots (at least two, ordered by year) at year t >= knots[0].year.
func interpolateCAGR(knots []knot, t float64) float64 {
	seg := len(knots) - 2
	for i := 0; i < len(knots)-1; i++ {
		if t <= knots[i+1].year {
			seg = i
			break
		}
	}
	a, b := knots[seg], knots[seg+1]
	frac := (t - a.year) / (b.year - a.year)
	return a.price * math.Pow(b.price/a.price, frac)
}

// CollectPrices is a convenience for simulators: it returns every point of
// a fresh trajectory.
func CollectPrices(startPrice decimal.Decimal, horizonPeriods, periodsPerYear int, scenario domain.ScenarioSpec) ([]domain.ProjectedPricePoint, error) {
	t, err := GenerateTrajectory(startPrice, horizonPeriods, periodsPerYear, scenario)
	if err != nil {
		return nil, err
	}
	return t.Collect(), nil
}
