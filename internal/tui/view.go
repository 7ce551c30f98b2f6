package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.loading {
		return m.renderApp(m.renderLoading())
	}
	if m.err != nil {
		return m.renderApp(m.renderError())
	}

	var content string
	switch m.currentScene {
	case ScenePlanner:
		content = m.renderPlanner()
	case SceneScenarios:
		content = m.scenariosModel.View()
	case SceneHelp:
		content = m.renderHelp()
	default:
		content = "Unknown scene"
	}

	return m.renderApp(content)
}

// renderApp wraps content with title bar and status bar
func (m Model) renderApp(content string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		content,
		m.renderStatusBar(),
	)
}

// renderTitleBar renders the application title, scene and price.
func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("btcgo · Bitcoin Retirement Planner")

	crumb := m.currentScene.String()
	if m.referencePrice.IsPositive() {
		crumb += " · BTC " + FormatCurrency(m.referencePrice.InexactFloat64())
		if m.quote.Symbol != "" {
			crumb += fmt.Sprintf(" (%s %s)", m.quote.Symbol, m.quote.At.Format("15:04"))
		}
	}
	if m.computing {
		crumb += " · computing…"
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, SubtitleStyle.Render(crumb))
}

// renderStatusBar renders the bottom status bar with keyboard shortcuts
func (m Model) renderStatusBar() string {
	shortcuts := []string{
		formatShortcut("p", "planner"),
		formatShortcut("s", "scenarios"),
		formatShortcut("?", "help"),
		formatShortcut("q", "quit"),
	}
	return StatusBarStyle.Width(m.width).Render(strings.Join(shortcuts, " • "))
}

func formatShortcut(key, desc string) string {
	return StatusKeyStyle.Render(key) + " " + desc
}

// renderPlanner puts the sliders beside the results.
func (m Model) renderPlanner() string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.plannerModel.View(),
		"  ",
		m.resultsModel.View(),
	)
}

func (m Model) renderLoading() string {
	message := m.loadingMessage
	if message == "" {
		message = "Loading..."
	}
	return BorderStyle.Render("⠋ " + message)
}

func (m Model) renderError() string {
	return ErrorStyle.Render(fmt.Sprintf("Error: %s\n\nPress any key to continue...", m.err))
}

func (m Model) renderHelp() string {
	rows := [][2]string{
		{"↑/↓ k/j", "select parameter"},
		{"←/→ h/l", "adjust parameter"},
		{"H/L", "adjust by ten steps"},
		{"R", "reset plan to defaults"},
		{"s / tab", "compare scenarios"},
		{"enter", "use highlighted scenario (scenarios screen)"},
		{"p / esc", "back to planner"},
		{"q", "quit"},
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(HelpKeyStyle.Width(10).Render(r[0]))
		b.WriteString(HelpDescStyle.Render(r[1]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("Every change recomputes all three scenarios; results follow the latest change."))
	return BorderStyle.Render(b.String())
}
