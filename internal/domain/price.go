package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used by datasets, flags and JSON.
const DateLayout = "2006-01-02"

// PricePoint is a closing price in fiat per whole bitcoin on a calendar date.
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// ProjectedPricePoint is one period of a price trajectory.
type ProjectedPricePoint struct {
	PeriodIndex int             `json:"periodIndex"`
	Price       decimal.Decimal `json:"price"`
}

// Quote is a live reference price observation.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	At     time.Time       `json:"at"`
}

// TruncateToDay normalizes t to midnight UTC of its calendar date.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Message: "expected YYYY-MM-DD", Cause: err}
	}
	return t, nil
}

// PricesFromPoints turns dated points into a trajectory indexed by position.
func PricesFromPoints(points []PricePoint) []ProjectedPricePoint {
	out := make([]ProjectedPricePoint, len(points))
	for i, p := range points {
		out[i] = ProjectedPricePoint{PeriodIndex: i, Price: p.Price}
	}
	return out
}
