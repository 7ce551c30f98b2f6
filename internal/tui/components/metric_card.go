package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/btcgo/internal/tui/tuistyles"
	"github.com/shopspring/decimal"
)

// MetricCard displays a single metric with label, value, and optional trend
type MetricCard struct {
	Label       string
	Value       string
	Trend       *Trend
	Description string
	Highlight   bool
	Width       int
}

// Trend is the change of a metric since the previous computation.
type Trend struct {
	IsPositive bool
	Change     string // e.g. "+$5,234" or "-0.1200"
}

// NewMetricCard creates a new metric card
func NewMetricCard(label, value string) *MetricCard {
	return &MetricCard{
		Label: label,
		Value: value,
		Width: 26,
	}
}

// NewCurrencyCard shows a fiat amount.
func NewCurrencyCard(label string, v decimal.Decimal) *MetricCard {
	return NewMetricCard(label, tuistyles.FormatCurrency(v.InexactFloat64()))
}

// NewBTCCard shows a bitcoin amount.
func NewBTCCard(label string, v decimal.Decimal) *MetricCard {
	return NewMetricCard(label, tuistyles.FormatBTC(v.InexactFloat64()))
}

// WithTrend adds a trend indicator to the metric card
func (m *MetricCard) WithTrend(isPositive bool, change string) *MetricCard {
	m.Trend = &Trend{
		IsPositive: isPositive,
		Change:     change,
	}
	return m
}

// WithCurrencyDelta sets the trend from the previous fiat value. Equal values
// show no trend.
func (m *MetricCard) WithCurrencyDelta(prev, cur decimal.Decimal) *MetricCard {
	d := cur.Sub(prev)
	if d.IsZero() {
		return m
	}
	return m.WithTrend(d.IsPositive(), signed(tuistyles.FormatCurrency(d.Abs().InexactFloat64()), d))
}

// WithBTCDelta sets the trend from the previous BTC value.
func (m *MetricCard) WithBTCDelta(prev, cur decimal.Decimal) *MetricCard {
	d := cur.Sub(prev)
	if d.Abs().LessThan(decimal.New(1, -8)) {
		return m
	}
	return m.WithTrend(d.IsPositive(), signed(fmt.Sprintf("%.4f", d.Abs().InexactFloat64()), d))
}

func signed(s string, d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + s
	}
	return "+" + s
}

// WithDescription adds a description/subtitle
func (m *MetricCard) WithDescription(desc string) *MetricCard {
	m.Description = desc
	return m
}

// WithHighlight draws the card with the accent border.
func (m *MetricCard) WithHighlight(on bool) *MetricCard {
	m.Highlight = on
	return m
}

// WithWidth sets the card width
func (m *MetricCard) WithWidth(width int) *MetricCard {
	m.Width = width
	return m
}

// Render returns the styled metric card
func (m *MetricCard) Render() string {
	label := tuistyles.MetricLabelStyle.Render(m.Label)
	value := tuistyles.MetricValueStyle.Render(m.Value)

	var trend string
	if m.Trend != nil {
		arrow := tuistyles.TrendIndicator(m.Trend.IsPositive)
		trendStyle := tuistyles.MetricTrendStyle(m.Trend.IsPositive)
		trend = "\n" + trendStyle.Render(fmt.Sprintf("%s %s", arrow, m.Trend.Change))
	}

	var desc string
	if m.Description != "" {
		desc = "\n" + tuistyles.SubtitleStyle.Render(m.Description)
	}

	border := tuistyles.ColorBorder
	if m.Highlight {
		border = tuistyles.ColorPrimary
	}
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(m.Width)

	return cardStyle.Render(label + "\n" + value + trend + desc)
}

// RenderCompact returns a compact inline version without border
func (m *MetricCard) RenderCompact() string {
	label := tuistyles.MetricLabelStyle.Render(m.Label + ":")
	value := tuistyles.MetricValueStyle.Render(m.Value)

	var trend string
	if m.Trend != nil {
		arrow := tuistyles.TrendIndicator(m.Trend.IsPositive)
		trendStyle := tuistyles.MetricTrendStyle(m.Trend.IsPositive)
		trend = " " + trendStyle.Render(fmt.Sprintf("%s %s", arrow, m.Trend.Change))
	}

	return label + " " + value + trend
}

// MetricGrid renders cards in rows of columns.
func MetricGrid(cards []*MetricCard, columns int) string {
	if len(cards) == 0 {
		return ""
	}
	columns = max(columns, 1)

	var rows, current []string
	for i, card := range cards {
		current = append(current, card.Render())
		if (i+1)%columns == 0 || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
			current = nil
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
