package calculation

import (
	"fmt"
	"testing"
	"time"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/history"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func constPrices(n int, price string) []domain.ProjectedPricePoint {
	out := make([]domain.ProjectedPricePoint, n)
	for i := range out {
		out[i] = domain.ProjectedPricePoint{PeriodIndex: i, Price: dec(price)}
	}
	return out
}

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func testSeries(t *testing.T, points map[string]string) *history.Series {
	t.Helper()
	var pts []domain.PricePoint
	for d, p := range points {
		pts = append(pts, domain.PricePoint{Date: day(d), Price: dec(p)})
	}
	s, err := history.NewSeries(pts)
	require.NoError(t, err)
	return s
}

func testScenarios() domain.ScenarioSet {
	return domain.ScenarioSet{
		Specs: []domain.ScenarioSpec{
			{Name: domain.ScenarioBase, AnnualGrowthRate: dec("0.10")},
			{Name: domain.ScenarioBull, AnnualGrowthRate: dec("0.30")},
			{Name: domain.ScenarioBear, AnnualGrowthRate: dec("-0.05")},
		},
		Events: []domain.MacroEvent{
			{ID: "etf_flows", Label: "ETF flows", Scenario: domain.ScenarioBull, Impact: dec("1.15")},
			{ID: "recession", Label: "Recession", Scenario: domain.ScenarioBear, Impact: dec("0.80")},
		},
	}
}

// TestLogger records formatted messages by level.
type TestLogger struct {
	Messages []string
}

func (l *TestLogger) Debugf(format string, args ...any) { l.add("DEBUG", format, args...) }
func (l *TestLogger) Infof(format string, args ...any)  { l.add("INFO", format, args...) }
func (l *TestLogger) Warnf(format string, args ...any)  { l.add("WARN", format, args...) }
func (l *TestLogger) Errorf(format string, args ...any) { l.add("ERROR", format, args...) }

func (l *TestLogger) add(level, format string, args ...any) {
	l.Messages = append(l.Messages, level+": "+fmt.Sprintf(format, args...))
}
