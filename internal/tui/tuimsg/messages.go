// Package tuimsg holds the messages exchanged between the TUI model and its
// scenes.
package tuimsg

import (
	"github.com/rgehrsitz/btcgo/internal/domain"
)

// ConfigLoadedMsg signals configuration has been loaded
type ConfigLoadedMsg struct {
	Config *domain.Configuration
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// PlanChangedMsg is sent by the planner whenever a slider moves.
type PlanChangedMsg struct {
	Plan *domain.RetirementPlan
}

// PlanComputedMsg carries the outcomes of one computation. Generation
// identifies the plan change that started it; only the newest is shown.
type PlanComputedMsg struct {
	Generation int
	Plan       *domain.RetirementPlan
	Outcomes   []*domain.RetirementOutcome // bull, base, bear
	Err        error
}

// ScenarioSelectedMsg signals a scenario has been picked on the scenarios
// screen.
type ScenarioSelectedMsg struct {
	Scenario domain.ScenarioName
}

// PriceUpdatedMsg carries a fresh reference quote.
type PriceUpdatedMsg struct {
	Quote domain.Quote
	Err   error
}
