package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/tui/tuistyles"
)

// ScenarioCard summarizes one scenario's retirement outcome.
type ScenarioCard struct {
	Name       string
	Status     string
	Met        bool
	Highlights []string
	IsSelected bool
	Width      int
}

// NewScenarioCard builds a card from an outcome.
func NewScenarioCard(out *domain.RetirementOutcome) *ScenarioCard {
	card := &ScenarioCard{
		Name:  out.Scenario.Title(),
		Met:   out.MetGoal,
		Width: 30,
	}
	switch {
	case out.DepletionAge != nil:
		card.Status = fmt.Sprintf("runs out at %d", *out.DepletionAge)
	case out.MetGoal:
		card.Status = "goal met"
	default:
		card.Status = "short of goal"
	}

	card.AddHighlight("Price   " + tuistyles.FormatCurrency(out.PriceAtRetirement.InexactFloat64()))
	card.AddHighlight("Stack   " + tuistyles.FormatBTC(out.BTCAtRetirement.InexactFloat64()))
	card.AddHighlight("Worth   " + tuistyles.FormatCurrency(out.PatrimonyAtRetirement.InexactFloat64()))
	card.AddHighlight("Income  " + tuistyles.FormatCurrency(out.SWRIncomeReal.InexactFloat64()) + "/yr")
	if out.BTCGap.IsPositive() {
		card.AddHighlight("Gap     " + tuistyles.FormatBTC(out.BTCGap.InexactFloat64()))
	}
	if !out.MacroMultiplier.IsZero() && !out.MacroMultiplier.Equal(decimalOne) {
		card.AddHighlight("Macro   ×" + out.MacroMultiplier.StringFixed(2))
	}
	return card
}

// AddHighlight adds a key metric line
func (s *ScenarioCard) AddHighlight(highlight string) *ScenarioCard {
	s.Highlights = append(s.Highlights, highlight)
	return s
}

// SetSelected marks the card as selected
func (s *ScenarioCard) SetSelected(selected bool) *ScenarioCard {
	s.IsSelected = selected
	return s
}

// WithWidth sets the card width
func (s *ScenarioCard) WithWidth(width int) *ScenarioCard {
	s.Width = width
	return s
}

// Render returns the styled scenario card
func (s *ScenarioCard) Render() string {
	var content strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(tuistyles.ColorPrimary)
	content.WriteString(titleStyle.Render(s.Name))
	content.WriteString("\n")
	content.WriteString(tuistyles.MetricTrendStyle(s.Met).Render(s.Status))
	content.WriteString("\n\n")

	highlightStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorForeground)
	for _, h := range s.Highlights {
		content.WriteString(highlightStyle.Render(h))
		content.WriteString("\n")
	}

	border := tuistyles.ColorBorder
	if s.IsSelected {
		border = tuistyles.ColorPrimary
	}
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		Width(s.Width)

	return cardStyle.Render(strings.TrimRight(content.String(), "\n"))
}

// ScenarioRow renders cards side by side with the selected one highlighted.
func ScenarioRow(cards []*ScenarioCard, selectedIndex int) string {
	if len(cards) == 0 {
		return tuistyles.InfoStyle.Render("No scenarios available")
	}

	rendered := make([]string, len(cards))
	for i, card := range cards {
		rendered[i] = card.SetSelected(i == selectedIndex).Render()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
