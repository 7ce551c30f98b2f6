package scenes

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/tui/components"
	"github.com/rgehrsitz/btcgo/internal/tui/tuimsg"
	"github.com/rgehrsitz/btcgo/internal/tui/tuistyles"
)

// ScenariosModel shows the plan's outcome under every scenario side by side.
type ScenariosModel struct {
	outcomes      []*domain.RetirementOutcome
	selectedIndex int
	width         int
	height        int
}

// NewScenariosModel creates a new scenarios scene model
func NewScenariosModel() *ScenariosModel {
	return &ScenariosModel{}
}

// SetOutcomes replaces the outcomes, keeping the selection on the same
// scenario when it is still present.
func (m *ScenariosModel) SetOutcomes(outcomes []*domain.RetirementOutcome, current domain.ScenarioName) {
	m.outcomes = outcomes
	m.selectedIndex = 0
	for i, o := range outcomes {
		if o.Scenario == current {
			m.selectedIndex = i
		}
	}
}

// SetSize updates the scene dimensions
func (m *ScenariosModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SelectedScenario returns the highlighted scenario
func (m *ScenariosModel) SelectedScenario() domain.ScenarioName {
	if m.selectedIndex >= 0 && m.selectedIndex < len(m.outcomes) {
		return m.outcomes[m.selectedIndex].Scenario
	}
	return ""
}

var (
	keyPrev   = key.NewBinding(key.WithKeys("left", "h", "up", "k"))
	keyNext   = key.NewBinding(key.WithKeys("right", "l", "down", "j"))
	keySelect = key.NewBinding(key.WithKeys("enter"))
)

// Update moves the selection; enter picks the scenario for the planner.
func (m *ScenariosModel) Update(msg tea.Msg) (*ScenariosModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keyPrev):
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case key.Matches(keyMsg, keyNext):
		if m.selectedIndex < len(m.outcomes)-1 {
			m.selectedIndex++
		}
	case key.Matches(keyMsg, keySelect):
		name := m.SelectedScenario()
		if name == "" {
			return m, nil
		}
		return m, func() tea.Msg {
			return tuimsg.ScenarioSelectedMsg{Scenario: name}
		}
	}
	return m, nil
}

// View renders the scenario cards
func (m *ScenariosModel) View() string {
	if len(m.outcomes) == 0 {
		return tuistyles.InfoStyle.Render("No outcomes computed yet")
	}

	cardWidth := 30
	if m.width > 0 {
		cardWidth = max(24, min(36, m.width/len(m.outcomes)-4))
	}
	cards := make([]*components.ScenarioCard, len(m.outcomes))
	for i, o := range m.outcomes {
		cards[i] = components.NewScenarioCard(o).WithWidth(cardWidth)
	}

	hint := tuistyles.SubtitleStyle.Render("←/→ choose • enter use in planner")
	return lipgloss.JoinVertical(lipgloss.Left,
		tuistyles.TitleStyle.Render("Scenarios"),
		"",
		components.ScenarioRow(cards, m.selectedIndex),
		"",
		hint,
	)
}
