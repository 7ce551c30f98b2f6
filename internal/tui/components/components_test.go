package components

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/btcgo/internal/domain"
)

func TestParameterSlider_StepAndClamp(t *testing.T) {
	s := NewParameterSlider("swr", "SWR", 4, 0.5, 10, 0.25)

	assert.True(t, s.Increment())
	assert.Equal(t, 4.25, s.Value)
	assert.True(t, s.Decrement())
	assert.True(t, s.Decrement())
	assert.Equal(t, 3.75, s.Value)

	s.SetValue(99)
	assert.Equal(t, 10.0, s.Value)
	assert.False(t, s.Increment(), "at max")

	s.SetValue(0.6)
	assert.Equal(t, 0.5, s.Value, "snapped to step grid")
	assert.False(t, s.Decrement(), "at min")
	assert.Equal(t, 0.0, s.Percentage())
}

func TestParameterSlider_RepeatedStepsStayOnGrid(t *testing.T) {
	s := NewParameterSlider("btc", "BTC", 0, 0, 21, 0.01)
	for i := 0; i < 30; i++ {
		s.Increment()
	}
	assert.Equal(t, 0.3, s.Value)
	assert.Equal(t, "0.30", strings.TrimSpace(s.Display()))
}

func TestChoiceSlider(t *testing.T) {
	s := NewChoiceSlider("scenario", "Scenario", []string{"bull", "base", "bear"}, "BASE")
	assert.Equal(t, "base", s.Choice())

	s.Increment()
	assert.Equal(t, "bear", s.Display())
	assert.False(t, s.Increment())

	s.Select("unknown")
	assert.Equal(t, "bear", s.Choice())
	s.Select("bull")
	assert.Equal(t, "bull", s.Choice())
	assert.Contains(t, s.Render(), "bull · base · bear")
}

func TestParameterSlider_Render(t *testing.T) {
	s := NewParameterSlider("dca", "Monthly DCA", 500, 0, 1000, 50).WithFormat("$%.0f")
	s.SetFocused(true)
	out := s.Render()
	assert.Contains(t, out, "Monthly DCA")
	assert.Contains(t, out, "$500")
	assert.Contains(t, out, "← →")
	assert.Contains(t, s.RenderCompact(), "▸")
}

func TestMetricCardTrends(t *testing.T) {
	c := NewCurrencyCard("Income", decimal.NewFromInt(12000)).
		WithCurrencyDelta(decimal.NewFromInt(10000), decimal.NewFromInt(12000))
	require.NotNil(t, c.Trend)
	assert.True(t, c.Trend.IsPositive)
	assert.Equal(t, "+$2,000", c.Trend.Change)

	b := NewBTCCard("Stack", decimal.RequireFromString("0.5")).
		WithBTCDelta(decimal.RequireFromString("0.75"), decimal.RequireFromString("0.5"))
	require.NotNil(t, b.Trend)
	assert.False(t, b.Trend.IsPositive)
	assert.Equal(t, "-0.2500", b.Trend.Change)

	same := NewCurrencyCard("Flat", decimal.NewFromInt(1)).
		WithCurrencyDelta(decimal.NewFromInt(1), decimal.NewFromInt(1))
	assert.Nil(t, same.Trend)
}

func TestMetricGrid(t *testing.T) {
	assert.Empty(t, MetricGrid(nil, 3))

	cards := []*MetricCard{
		NewMetricCard("A", "1"),
		NewMetricCard("B", "2"),
		NewMetricCard("C", "3"),
	}
	out := MetricGrid(cards, 2)
	for _, s := range []string{"A", "B", "C"} {
		assert.Contains(t, out, s)
	}
	assert.NotEmpty(t, MetricGrid(cards, 0))
}

func TestASCIIChart(t *testing.T) {
	assert.Contains(t, NewASCIIChart("Empty").Render(), "No data")

	out := NewASCIIChart("BTC balance").
		AddSeries("BTC", []float64{0.1, 0.5, 1.2, 0.8}, "").
		WithLabels([]string{"35", "36", "37", "38"}).
		WithSize(40, 6).
		WithValueFormat(FormatBTCAxis).
		Render()
	assert.Contains(t, out, "BTC balance")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "35")
	assert.Contains(t, out, "38")

	single := NewASCIIChart("One").AddSeries("x", []float64{7}, "").WithSize(20, 4).Render()
	assert.Contains(t, single, "●")

	flat := NewASCIIChart("Flat").
		AddSeries("a", []float64{5, 5, 5}, "").
		AddSeries("b", []float64{5, 5, 5}, "").
		Render()
	assert.Contains(t, flat, "Legend")
}

func TestFormatChartValue(t *testing.T) {
	assert.Equal(t, "$1.5M", formatChartValue(1_500_000))
	assert.Equal(t, "$25K", formatChartValue(25_000))
	assert.Equal(t, "$-900", formatChartValue(-900))
	assert.Equal(t, "0.125", FormatBTCAxis(0.125))
}

func TestProgressBar(t *testing.T) {
	p := NewProgressBar(decimal.NewFromInt(30000), decimal.NewFromInt(40000)).WithWidth(20)
	assert.Equal(t, 75.0, p.Percentage())
	assert.False(t, p.IsComplete())
	assert.Contains(t, p.Render(), "75%")

	over := NewProgressBar(decimal.NewFromInt(50000), decimal.NewFromInt(40000)).WithWidth(10)
	assert.True(t, over.IsComplete())
	assert.Equal(t, 10, strings.Count(over.Render(), "█"))

	assert.Equal(t, 0.0, NewProgressBar(decimal.NewFromInt(1), decimal.Zero).Percentage())
}

func TestScenarioCard(t *testing.T) {
	age := 80
	out := &domain.RetirementOutcome{
		Scenario:              domain.ScenarioBear,
		PriceAtRetirement:     decimal.NewFromInt(150000),
		BTCAtRetirement:       decimal.RequireFromString("0.5"),
		PatrimonyAtRetirement: decimal.NewFromInt(75000),
		SWRIncomeReal:         decimal.NewFromInt(3000),
		BTCGap:                decimal.RequireFromString("0.25"),
		MacroMultiplier:       decimal.RequireFromString("0.8"),
		DepletionAge:          &age,
	}
	card := NewScenarioCard(out)
	assert.Equal(t, "Bear", card.Name)
	assert.Equal(t, "runs out at 80", card.Status)

	rendered := ScenarioRow([]*ScenarioCard{card}, 0)
	assert.Contains(t, rendered, "$150,000")
	assert.Contains(t, rendered, "Gap")
	assert.Contains(t, rendered, "×0.80")
	assert.True(t, card.IsSelected)

	assert.Contains(t, ScenarioRow(nil, 0), "No scenarios")
}
