// Package history holds the immutable historical bitcoin price series and
// the loaders that build it from daily datasets.
package history

import (
	"fmt"
	"sort"
	"time"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// Series is a date-ordered, read-only table of daily closing prices.
// It is safe for concurrent readers.
type Series struct {
	points []domain.PricePoint
}

// Statistics summarizes a series.
type Statistics struct {
	Count int               `json:"count"`
	First domain.PricePoint `json:"first"`
	Last  domain.PricePoint `json:"last"`
	Min   domain.PricePoint `json:"min"`
	Max   domain.PricePoint `json:"max"`
	Mean  decimal.Decimal   `json:"mean"`
}

// NewSeries validates and copies points into a Series. Dates are normalized
// to UTC calendar days; duplicates and non-positive prices are rejected.
func NewSeries(points []domain.PricePoint) (*Series, error) {
	if len(points) == 0 {
		return nil, domain.NewValidationError("series", "price series must not be empty")
	}
	cp := make([]domain.PricePoint, len(points))
	for i, p := range points {
		if !p.Price.IsPositive() {
			return nil, domain.NewValidationError("series", "price on %s must be positive, got %s", p.Date.Format(domain.DateLayout), p.Price)
		}
		cp[i] = domain.PricePoint{Date: domain.TruncateToDay(p.Date), Price: p.Price}
	}
	sort.Slice(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })
	for i := 1; i < len(cp); i++ {
		if cp[i].Date.Equal(cp[i-1].Date) {
			return nil, domain.NewValidationError("series", "duplicate date %s", cp[i].Date.Format(domain.DateLayout))
		}
	}
	return &Series{points: cp}, nil
}

// MinDate is the first date with data.
func (s *Series) MinDate() time.Time { return s.points[0].Date }

// MaxDate is the last date with data.
func (s *Series) MaxDate() time.Time { return s.points[len(s.points)-1].Date }

// Len is the number of points.
func (s *Series) Len() int { return len(s.points) }

// Latest returns the most recent point.
func (s *Series) Latest() domain.PricePoint { return s.points[len(s.points)-1] }

// Points returns a copy of the underlying points.
func (s *Series) Points() []domain.PricePoint {
	return append([]domain.PricePoint(nil), s.points...)
}

func (s *Series) outOfRange(date time.Time) error {
	return &domain.OutOfRangeError{Requested: date, Min: s.MinDate(), Max: s.MaxDate()}
}

// PriceAt returns the price in effect on date.
//
// If date has no entry, the price of the nearest prior date is carried
// forward and the returned point carries that earlier date. Dates before
// MinDate or after MaxDate fail with *domain.OutOfRangeError.
func (s *Series) PriceAt(date time.Time) (domain.PricePoint, error) {
	date = domain.TruncateToDay(date)
	if date.Before(s.MinDate()) || date.After(s.MaxDate()) {
		return domain.PricePoint{}, s.outOfRange(date)
	}
	// first index with Date > date; the point before it is the carry-forward
	i := sort.Search(len(s.points), func(i int) bool { return s.points[i].Date.After(date) })
	return s.points[i-1], nil
}

// PriceRange returns the points dated within [start, end], in order.
func (s *Series) PriceRange(start, end time.Time) ([]domain.PricePoint, error) {
	start, end = domain.TruncateToDay(start), domain.TruncateToDay(end)
	if end.Before(start) {
		return nil, domain.NewValidationError("range", "start %s is after end %s", start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	}
	if start.Before(s.MinDate()) {
		return nil, s.outOfRange(start)
	}
	if end.After(s.MaxDate()) {
		return nil, s.outOfRange(end)
	}
	lo := sort.Search(len(s.points), func(i int) bool { return !s.points[i].Date.Before(start) })
	hi := sort.Search(len(s.points), func(i int) bool { return s.points[i].Date.After(end) })
	return append([]domain.PricePoint(nil), s.points[lo:hi]...), nil
}

// Statistics computes count, extremes and mean.
func (s *Series) Statistics() Statistics {
	st := Statistics{
		Count: len(s.points),
		First: s.points[0],
		Last:  s.Latest(),
		Min:   s.points[0],
		Max:   s.points[0],
	}
	sum := decimal.Zero
	for _, p := range s.points {
		sum = sum.Add(p.Price)
		if p.Price.LessThan(st.Min.Price) {
			st.Min = p
		}
		if p.Price.GreaterThan(st.Max.Price) {
			st.Max = p
		}
	}
	st.Mean = sum.Div(decimal.NewFromInt(int64(len(s.points))))
	return st
}

// Denominate converts a USD-priced series into another fiat using rates,
// a series of that fiat per USD. Each BTC date uses the carry-forward rate;
// dates before the first rate are dropped.
func (s *Series) Denominate(rates *Series) (*Series, error) {
	if rates == nil {
		return nil, domain.NewValidationError("rates", "exchange rate series is required")
	}
	out := make([]domain.PricePoint, 0, len(s.points))
	for _, p := range s.points {
		if p.Date.Before(rates.MinDate()) {
			continue
		}
		r, err := rates.PriceAt(minTime(p.Date, rates.MaxDate()))
		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", p.Date.Format(domain.DateLayout), err)
		}
		out = append(out, domain.PricePoint{Date: p.Date, Price: p.Price.Mul(r.Price).Round(2)})
	}
	if len(out) == 0 {
		return nil, domain.NewValidationError("rates", "exchange rates do not overlap the price series")
	}
	return NewSeries(out)
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
