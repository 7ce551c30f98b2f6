// Package tuistyles holds the lipgloss palette shared by the TUI packages.
package tuistyles

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	ColorPrimary   = lipgloss.Color("#F7931A") // bitcoin orange
	ColorSecondary = lipgloss.Color("#4D4D4D")
	ColorAccent    = lipgloss.Color("#FFD166")
	ColorSuccess   = lipgloss.Color("#06D6A0")
	ColorDanger    = lipgloss.Color("#EF476F")
	ColorInfo      = lipgloss.Color("#118AB2")

	ColorBackground = lipgloss.Color("#1A1A1A")
	ColorForeground = lipgloss.Color("#EAEAEA")
	ColorMuted      = lipgloss.Color("#8A8A8A")
	ColorBorder     = lipgloss.Color("#3C3C3C")

	ColorChartLine1 = lipgloss.Color("#F7931A")
	ColorChartLine2 = lipgloss.Color("#06D6A0")
	ColorChartLine3 = lipgloss.Color("#EF476F")
	ColorChartLine4 = lipgloss.Color("#118AB2")
)

var (
	AppStyle = lipgloss.NewStyle().Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorForeground).
			Background(ColorSecondary).
			Padding(0, 1)

	StatusKeyStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	ActiveBorderStyle = BorderStyle.BorderForeground(ColorPrimary)

	SelectedItemStyle   = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	UnselectedItemStyle = lipgloss.NewStyle().Foreground(ColorForeground)

	MetricLabelStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	MetricValueStyle    = lipgloss.NewStyle().Foreground(ColorForeground).Bold(true)
	MetricPositiveStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	MetricNegativeStyle = lipgloss.NewStyle().Foreground(ColorDanger)

	ParameterLabelStyle = lipgloss.NewStyle().Foreground(ColorForeground)
	ParameterValueStyle = lipgloss.NewStyle().Foreground(ColorForeground).Bold(true)
	SliderTrackStyle    = lipgloss.NewStyle().Foreground(ColorBorder)
	SliderThumbStyle    = lipgloss.NewStyle().Foreground(ColorPrimary)

	HelpKeyStyle  = lipgloss.NewStyle().Foreground(ColorAccent)
	HelpDescStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().Foreground(ColorDanger).Bold(true)
	InfoStyle  = lipgloss.NewStyle().Foreground(ColorInfo)

	TableHeaderStyle    = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	TableCellStyle      = lipgloss.NewStyle().Foreground(ColorForeground)
	TableHighlightStyle = lipgloss.NewStyle().Foreground(ColorAccent)
)

// MetricTrendStyle colors a change by direction.
func MetricTrendStyle(positive bool) lipgloss.Style {
	if positive {
		return MetricPositiveStyle
	}
	return MetricNegativeStyle
}

// TrendIndicator returns an arrow for a change direction.
func TrendIndicator(positive bool) string {
	if positive {
		return "▲"
	}
	return "▼"
}

// FormatCurrency renders whole fiat units with thousands separators.
func FormatCurrency(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := fmt.Sprintf("%.0f", math.Round(v))
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String()
}

// FormatBTC renders a bitcoin amount to 4 places, enough to read at a glance.
func FormatBTC(v float64) string {
	return fmt.Sprintf("₿%.4f", v)
}
