package calculation

import (
	"time"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/history"
	"github.com/shopspring/decimal"
)

const daysPerYear = 365.25

// RegretCalculator answers "what if I had bought bitcoin back then".
type RegretCalculator struct {
	Series *history.Series
}

// NewRegretCalculator creates a calculator over a loaded price series.
func NewRegretCalculator(series *history.Series) *RegretCalculator {
	return &RegretCalculator{Series: series}
}

// RegretRequest is a single historical purchase valued at a reference price.
type RegretRequest struct {
	InvestDate     time.Time       `json:"investDate"`
	ReferenceDate  time.Time       `json:"referenceDate"`
	Amount         decimal.Decimal `json:"amount"`
	ReferencePrice decimal.Decimal `json:"referencePrice"`
}

// ValuePoint is the value of a holding on a date.
type ValuePoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// RegretResult is the outcome of a lump-sum purchase.
type RegretResult struct {
	Request            RegretRequest   `json:"request"`
	EffectivePriceDate time.Time       `json:"effectivePriceDate"`
	PriceThen          decimal.Decimal `json:"priceThen"`
	Quantity           decimal.Decimal `json:"quantity"`
	Sats               int64           `json:"sats"`
	PresentValue       decimal.Decimal `json:"presentValue"`
	Gain               decimal.Decimal `json:"gain"`
	GainPct            decimal.Decimal `json:"gainPct"`
	Annualized         decimal.Decimal `json:"annualized"`
	Years              decimal.Decimal `json:"years"`
	ValueHistory       []ValuePoint    `json:"valueHistory,omitempty"`
}

// LumpSum values Amount invested on InvestDate at ReferencePrice.
func (rc *RegretCalculator) LumpSum(req RegretRequest) (*RegretResult, error) {
	if err := rc.ready(); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, domain.NewValidationError("amount", "must be positive, got %s", req.Amount)
	}
	if err := requirePositivePrice(req.ReferencePrice); err != nil {
		return nil, err
	}
	invest := domain.TruncateToDay(req.InvestDate)
	ref := domain.TruncateToDay(req.ReferenceDate)
	if !invest.Before(ref) {
		return nil, &domain.ValidationError{Field: "invest_date", Message: "must be before the reference date", Cause: domain.ErrZeroOrNegativeHorizon}
	}

	then, err := rc.Series.PriceAt(invest)
	if err != nil {
		return nil, err
	}

	qty := req.Amount.Div(then.Price)
	pv := qty.Mul(req.ReferencePrice)
	gain := pv.Sub(req.Amount)
	years := ref.Sub(invest).Hours() / 24 / daysPerYear
	sats, err := BTCToSats(qty)
	if err != nil {
		return nil, err
	}

	result := &RegretResult{
		Request:            req,
		EffectivePriceDate: then.Date,
		PriceThen:          then.Price,
		Quantity:           qty,
		Sats:               sats,
		PresentValue:       pv,
		Gain:               gain,
		GainPct:            gain.Div(req.Amount).Mul(decimal.NewFromInt(100)),
		Annualized:         annualizedReturn(pv, req.Amount, years),
		Years:              decimal.NewFromFloat(years).Round(4),
	}

	end := rc.Series.MaxDate()
	if ref.Before(end) {
		end = ref
	}
	points, err := rc.Series.PriceRange(then.Date, end)
	if err != nil {
		return nil, err
	}
	result.ValueHistory = make([]ValuePoint, len(points))
	for i, p := range points {
		result.ValueHistory[i] = ValuePoint{Date: p.Date, Value: qty.Mul(p.Price).Round(2)}
	}
	return result, nil
}

// annualizedReturn is (final/basis)^(1/years) - 1.
func annualizedReturn(final, basis decimal.Decimal, years float64) decimal.Decimal {
	if !basis.IsPositive() || years <= 0 || final.IsNegative() {
		return decimal.Zero
	}
	return powFrac(final.Div(basis), 1/years).Sub(decimal.NewFromInt(1))
}

func (rc *RegretCalculator) ready() error {
	if rc == nil || rc.Series == nil {
		return domain.NewValidationError("series", "historical price data is not loaded")
	}
	return nil
}

// DCARequest describes recurring historical purchases.
type DCARequest struct {
	StartDate      time.Time                    `json:"startDate"`
	EndDate        time.Time                    `json:"endDate"`
	Amount         decimal.Decimal              `json:"amount"`
	InitialAmount  decimal.Decimal              `json:"initialAmount"`
	Frequency      domain.ContributionFrequency `json:"frequency"`
	ReferencePrice decimal.Decimal              `json:"referencePrice"`
	// ReferenceDate dates the valuation; zero means EndDate.
	ReferenceDate time.Time `json:"referenceDate,omitempty"`
}

// DCARow is the state after one purchase.
type DCARow struct {
	Date     time.Time       `json:"date"`
	Price    decimal.Decimal `json:"price"`
	Invested decimal.Decimal `json:"invested"`
	BTC      decimal.Decimal `json:"btc"`
	Value    decimal.Decimal `json:"value"`
}

// DCAResult is the outcome of a dollar-cost averaging plan.
type DCAResult struct {
	Request       DCARequest               `json:"request"`
	Purchases     int                      `json:"purchases"`
	TotalInvested decimal.Decimal          `json:"totalInvested"`
	BTC           decimal.Decimal          `json:"btc"`
	Sats          int64                    `json:"sats"`
	PresentValue  decimal.Decimal          `json:"presentValue"`
	Gain          decimal.Decimal          `json:"gain"`
	GainPct       decimal.Decimal          `json:"gainPct"`
	Annualized    decimal.Decimal          `json:"annualized"`
	AvgCostBasis  decimal.Decimal          `json:"avgCostBasis"`
	AvgCostSats   int64                    `json:"avgCostSats"`
	Rows          []DCARow                 `json:"rows"`
	Simulation    *domain.SimulationResult `json:"-"`
}

// DCA prices every contribution date by carry-forward and runs the
// accumulation simulator over those actual prices.
func (rc *RegretCalculator) DCA(req DCARequest) (*DCAResult, error) {
	if err := rc.ready(); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, domain.NewValidationError("amount", "must be positive, got %s", req.Amount)
	}
	if req.InitialAmount.IsNegative() {
		return nil, domain.NewValidationError("initial_amount", "must not be negative, got %s", req.InitialAmount)
	}
	if err := requirePositivePrice(req.ReferencePrice); err != nil {
		return nil, err
	}
	freq := req.Frequency
	if freq == "" {
		freq = domain.FrequencyMonthly
	}
	start := domain.TruncateToDay(req.StartDate)
	end := domain.TruncateToDay(req.EndDate)
	if !start.Before(end) {
		return nil, &domain.ValidationError{Field: "end_date", Message: "must be after the start date", Cause: domain.ErrZeroOrNegativeHorizon}
	}
	if _, err := rc.Series.PriceAt(end); err != nil {
		return nil, err
	}

	dates := contributionDates(start, end, freq)
	if len(dates) < 2 {
		return nil, &domain.ValidationError{Field: "end_date", Message: "range is shorter than one " + string(freq) + " interval", Cause: domain.ErrZeroOrNegativeHorizon}
	}
	points := make([]domain.PricePoint, len(dates))
	for i, d := range dates {
		p, err := rc.Series.PriceAt(d)
		if err != nil {
			return nil, err
		}
		points[i] = domain.PricePoint{Date: d, Price: p.Price}
	}

	cfg := domain.SimulationConfig{
		InitialCapitalFiat:       req.InitialAmount.Add(req.Amount),
		PeriodicContributionFiat: req.Amount,
		ContributionFrequency:    freq,
		HorizonPeriods:           len(points) - 1,
	}
	sim, err := Accumulate(cfg, domain.PricesFromPoints(points))
	if err != nil {
		return nil, err
	}

	final := sim.Final()
	invested := final.CumulativeFiatContributed
	pv := final.BTCBalance.Mul(req.ReferencePrice)
	gain := pv.Sub(invested)
	refDate := req.ReferenceDate
	if refDate.IsZero() {
		refDate = end
	}
	years := domain.TruncateToDay(refDate).Sub(start).Hours() / 24 / daysPerYear
	sats, err := BTCToSats(final.BTCBalance)
	if err != nil {
		return nil, err
	}

	result := &DCAResult{
		Request:       req,
		Purchases:     len(points),
		TotalInvested: invested,
		BTC:           final.BTCBalance,
		Sats:          sats,
		PresentValue:  pv,
		Gain:          gain,
		GainPct:       gain.Div(invested).Mul(decimal.NewFromInt(100)),
		Annualized:    annualizedReturn(pv, invested, years),
		AvgCostBasis:  invested.Div(final.BTCBalance),
		AvgCostSats:   final.BTCBalance.Mul(satsPerBTC).Div(invested).Floor().IntPart(),
		Rows:          make([]DCARow, len(points)),
		Simulation:    sim,
	}
	for i, s := range sim.Snapshots {
		result.Rows[i] = DCARow{
			Date:     points[i].Date,
			Price:    s.Price,
			Invested: s.CumulativeFiatContributed,
			BTC:      s.BTCBalance,
			Value:    s.FiatValue.Round(2),
		}
	}
	return result, nil
}

// contributionDates lists purchase dates from start through end. Monthly and
// yearly steps are taken from start and clamped to the end of short months,
// so every calendar month (or year) gets exactly one purchase.
func contributionDates(start, end time.Time, freq domain.ContributionFrequency) []time.Time {
	var dates []time.Time
	for i := 0; ; i++ {
		var d time.Time
		switch freq {
		case domain.FrequencyDaily:
			d = start.AddDate(0, 0, i)
		case domain.FrequencyWeekly:
			d = start.AddDate(0, 0, 7*i)
		case domain.FrequencyYearly:
			d = addMonthsClamped(start, 12*i)
		default:
			d = addMonthsClamped(start, i)
		}
		if d.After(end) {
			return dates
		}
		dates = append(dates, d)
	}
}

// addMonthsClamped moves t by months, keeping its day unless the target month
// is shorter, in which case the month's last day is used.
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(t.Day(), last), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
