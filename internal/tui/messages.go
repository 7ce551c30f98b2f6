package tui

import "github.com/rgehrsitz/btcgo/internal/tui/tuimsg"

// Scene represents different screens in the TUI
type Scene int

const (
	ScenePlanner Scene = iota
	SceneScenarios
	SceneHelp
)

// String returns a human-readable name for a scene
func (s Scene) String() string {
	switch s {
	case ScenePlanner:
		return "Planner"
	case SceneScenarios:
		return "Scenarios"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// Messages shared with the scenes.
type (
	ConfigLoadedMsg     = tuimsg.ConfigLoadedMsg
	ErrorMsg            = tuimsg.ErrorMsg
	PlanChangedMsg      = tuimsg.PlanChangedMsg
	PlanComputedMsg     = tuimsg.PlanComputedMsg
	ScenarioSelectedMsg = tuimsg.ScenarioSelectedMsg
	PriceUpdatedMsg     = tuimsg.PriceUpdatedMsg
)
