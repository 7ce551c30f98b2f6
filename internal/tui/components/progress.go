package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/btcgo/internal/tui/tuistyles"
	"github.com/shopspring/decimal"
)

var decimalOne = decimal.NewFromInt(1)

// ProgressBar shows how much of a goal is covered, e.g. sustainable income
// against target income. Coverage above 100% is drawn full.
type ProgressBar struct {
	Current decimal.Decimal
	Total   decimal.Decimal
	Width   int
	Label   string
}

// NewProgressBar creates a new progress bar
func NewProgressBar(current, total decimal.Decimal) *ProgressBar {
	return &ProgressBar{
		Current: current,
		Total:   total,
		Width:   40,
	}
}

// WithLabel sets the progress label
func (p *ProgressBar) WithLabel(label string) *ProgressBar {
	p.Label = label
	return p
}

// WithWidth sets the bar width
func (p *ProgressBar) WithWidth(width int) *ProgressBar {
	p.Width = width
	return p
}

// Percentage returns Current as a percentage of Total.
func (p *ProgressBar) Percentage() float64 {
	if !p.Total.IsPositive() {
		return 0
	}
	return p.Current.Div(p.Total).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// IsComplete reports whether the goal is covered.
func (p *ProgressBar) IsComplete() bool {
	return p.Total.IsPositive() && p.Current.GreaterThanOrEqual(p.Total)
}

// Render returns the styled progress bar
func (p *ProgressBar) Render() string {
	var content strings.Builder

	if p.Label != "" {
		labelStyle := lipgloss.NewStyle().
			Foreground(tuistyles.ColorForeground).
			Bold(true)
		content.WriteString(labelStyle.Render(p.Label))
		content.WriteString("\n")
	}

	pct := p.Percentage()
	filled := max(0, min(int(float64(p.Width)*pct/100), p.Width))
	empty := p.Width - filled

	barColor := tuistyles.ColorDanger
	if p.IsComplete() {
		barColor = tuistyles.ColorSuccess
	} else if pct >= 75 {
		barColor = tuistyles.ColorAccent
	}
	barStyle := lipgloss.NewStyle().Foreground(barColor)
	emptyStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorBorder)

	content.WriteString("[")
	content.WriteString(barStyle.Render(strings.Repeat("█", filled)))
	content.WriteString(emptyStyle.Render(strings.Repeat("░", empty)))
	content.WriteString("] ")

	percentStyle := lipgloss.NewStyle().
		Foreground(tuistyles.ColorPrimary).
		Bold(true)
	content.WriteString(percentStyle.Render(fmt.Sprintf("%.0f%%", pct)))

	return content.String()
}
