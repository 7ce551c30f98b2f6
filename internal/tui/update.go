package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/btcgo/internal/calculation"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.plannerModel.SetSize(msg.Width/2, msg.Height)
		m.resultsModel.SetSize(msg.Width/2, msg.Height)
		m.scenariosModel.SetSize(msg.Width, msg.Height)
		return m, nil

	case NavigateMsg:
		m.previousScene = m.currentScene
		m.currentScene = msg.Scene
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case ConfigLoadedMsg:
		m.config = msg.Config
		m.engine = calculation.NewCalculationEngine(msg.Config.ScenarioSet())
		base := msg.Config.Defaults
		base.ReferencePrice = m.referencePrice
		m.plannerModel.SetBase(&base)

		if m.referencePrice.IsPositive() {
			m.loading = false
			return m, m.recompute(m.plannerModel.Plan())
		}
		if m.source == nil {
			m.loading = false
			m.err = fmt.Errorf("no reference price: pass --price or enable the live feed")
			return m, nil
		}
		m.loadingMessage = "Fetching bitcoin price..."
		return m, nil

	case PriceUpdatedMsg:
		if msg.Err != nil {
			if !m.referencePrice.IsPositive() {
				m.loading = false
				m.err = fmt.Errorf("fetching price: %w", msg.Err)
			}
			return m, nil
		}
		m.quote = msg.Quote
		m.referencePrice = msg.Quote.Price
		m.plannerModel.SetReferencePrice(msg.Quote.Price)
		if m.config == nil {
			return m, nil
		}
		m.loading = false
		return m, m.recompute(m.plannerModel.Plan())

	case PlanChangedMsg:
		return m, m.recompute(msg.Plan)

	case PlanComputedMsg:
		// a newer change is in flight; this result is already stale
		if msg.Generation != m.generation {
			return m, nil
		}
		m.computing = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.outcomes = msg.Outcomes
		for _, o := range msg.Outcomes {
			if o.Scenario == msg.Plan.Scenario {
				m.resultsModel.SetOutcome(o)
			}
		}
		m.scenariosModel.SetOutcomes(msg.Outcomes, msg.Plan.Scenario)
		return m, nil

	case ScenarioSelectedMsg:
		m.previousScene = m.currentScene
		m.currentScene = ScenePlanner
		return m, m.plannerModel.SelectScenario(msg.Scenario)
	}

	return m.updateCurrentScene(msg)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	// any key dismisses an error
	if m.err != nil {
		m.err = nil
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		return m, navigate(SceneHelp)
	case key.Matches(msg, m.keys.Planner):
		return m, navigate(ScenePlanner)
	case key.Matches(msg, m.keys.Scenarios):
		if m.currentScene == SceneScenarios {
			return m, navigate(ScenePlanner)
		}
		return m, navigate(SceneScenarios)
	case key.Matches(msg, m.keys.Back):
		if m.currentScene != ScenePlanner {
			return m, navigate(ScenePlanner)
		}
	}

	return m.updateCurrentScene(msg)
}

func navigate(s Scene) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Scene: s} }
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScene {
	case ScenePlanner:
		m.plannerModel, cmd = m.plannerModel.Update(msg)
	case SceneScenarios:
		m.scenariosModel, cmd = m.scenariosModel.Update(msg)
	}
	return m, cmd
}
