package transform

import (
	"fmt"
	"slices"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// SetInflation changes the annual inflation assumption. Both the inflated
// income target and the real SWR income follow it.
type SetInflation struct {
	Rate decimal.Decimal // e.g. 0.025 for 2.5%
}

func (si *SetInflation) Name() string {
	return "set_inflation"
}

func (si *SetInflation) Description() string {
	return fmt.Sprintf("Change inflation rate to %s%%", si.Rate.Mul(decimal.NewFromInt(100)).StringFixed(1))
}

func (si *SetInflation) Validate(base *domain.RetirementPlan) error {
	if err := requirePlan(si.Name(), base); err != nil {
		return err
	}
	if si.Rate.IsNegative() || si.Rate.GreaterThan(decimal.NewFromFloat(0.5)) {
		return NewTransformError(si.Name(), "validate", fmt.Sprintf("inflation rate must be between 0 and 0.5, got %s", si.Rate), nil)
	}
	return nil
}

func (si *SetInflation) Apply(base *domain.RetirementPlan) (*domain.RetirementPlan, error) {
	modified := base.DeepCopy()
	modified.InflationRate = si.Rate
	return modified, nil
}

// SetScenario selects the macro price scenario.
type SetScenario struct {
	Scenario domain.ScenarioName
}

func (ss *SetScenario) Name() string {
	return "set_scenario"
}

func (ss *SetScenario) Description() string {
	return fmt.Sprintf("Use the %s price scenario", ss.Scenario.Title())
}

func (ss *SetScenario) Validate(base *domain.RetirementPlan) error {
	if err := requirePlan(ss.Name(), base); err != nil {
		return err
	}
	if _, err := domain.ParseScenarioName(string(ss.Scenario)); err != nil {
		return NewTransformError(ss.Name(), "validate", "unknown scenario", err)
	}
	return nil
}

func (ss *SetScenario) Apply(base *domain.RetirementPlan) (*domain.RetirementPlan, error) {
	name, err := domain.ParseScenarioName(string(ss.Scenario))
	if err != nil {
		return nil, err
	}
	modified := base.DeepCopy()
	modified.Scenario = name
	return modified, nil
}

// AddMacroEvent selects a macro event. Whether the event applies depends on
// the scenario the plan is run under; adding it twice is a no-op.
type AddMacroEvent struct {
	EventID string
}

func (am *AddMacroEvent) Name() string {
	return "add_macro_event"
}

func (am *AddMacroEvent) Description() string {
	return fmt.Sprintf("Add the %s macro event", am.EventID)
}

func (am *AddMacroEvent) Validate(base *domain.RetirementPlan) error {
	if err := requirePlan(am.Name(), base); err != nil {
		return err
	}
	if am.EventID == "" {
		return NewTransformError(am.Name(), "validate", "event id cannot be empty", nil)
	}
	return nil
}

func (am *AddMacroEvent) Apply(base *domain.RetirementPlan) (*domain.RetirementPlan, error) {
	modified := base.DeepCopy()
	if !slices.Contains(modified.MacroEvents, am.EventID) {
		modified.MacroEvents = append(modified.MacroEvents, am.EventID)
	}
	return modified, nil
}
