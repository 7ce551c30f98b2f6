package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ScenarioName identifies a macro price scenario.
type ScenarioName string

const (
	ScenarioBase ScenarioName = "base"
	ScenarioBull ScenarioName = "bull"
	ScenarioBear ScenarioName = "bear"
)

// AllScenarioNames lists scenarios from most to least optimistic.
func AllScenarioNames() []ScenarioName {
	return []ScenarioName{ScenarioBull, ScenarioBase, ScenarioBear}
}

// ParseScenarioName resolves a scenario name case-insensitively.
func ParseScenarioName(s string) (ScenarioName, error) {
	switch ScenarioName(strings.ToLower(strings.TrimSpace(s))) {
	case ScenarioBase:
		return ScenarioBase, nil
	case ScenarioBull:
		return ScenarioBull, nil
	case ScenarioBear:
		return ScenarioBear, nil
	}
	return "", NewValidationError("scenario", "unknown scenario %q (valid: base, bull, bear)", s)
}

// PriceAnchor pins a scenario's projected price for a calendar year.
type PriceAnchor struct {
	Year  int             `yaml:"year" json:"year"`
	Price decimal.Decimal `yaml:"price" json:"price"`
}

// ScenarioSpec describes the deterministic growth law of a scenario.
type ScenarioSpec struct {
	Name              ScenarioName     `yaml:"name" json:"name"`
	Description       string           `yaml:"description,omitempty" json:"description,omitempty"`
	AnnualGrowthRate  decimal.Decimal  `yaml:"annual_growth_rate" json:"annualGrowthRate"`
	VolatilityDamping *decimal.Decimal `yaml:"volatility_damping,omitempty" json:"volatilityDamping,omitempty"`
	Anchors           []PriceAnchor    `yaml:"anchors,omitempty" json:"anchors,omitempty"`
}

// EffectiveGrowthRate applies the optional damping to the annual rate.
func (s ScenarioSpec) EffectiveGrowthRate() decimal.Decimal {
	if s.VolatilityDamping == nil {
		return s.AnnualGrowthRate
	}
	return s.AnnualGrowthRate.Mul(decimal.NewFromInt(1).Sub(*s.VolatilityDamping))
}

// SortedAnchors returns a copy of the anchors ordered by year.
func (s ScenarioSpec) SortedAnchors() []PriceAnchor {
	out := append([]PriceAnchor(nil), s.Anchors...)
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// MacroEvent is a named shock that scales the projected prices of one scenario.
type MacroEvent struct {
	ID       string          `yaml:"id" json:"id"`
	Label    string          `yaml:"label" json:"label"`
	Scenario ScenarioName    `yaml:"scenario" json:"scenario"`
	Impact   decimal.Decimal `yaml:"impact" json:"impact"`
}

// ScenarioSet holds the configured scenario specs and macro events.
type ScenarioSet struct {
	Specs  []ScenarioSpec
	Events []MacroEvent
}

// Get returns the spec for name.
func (ss ScenarioSet) Get(name ScenarioName) (ScenarioSpec, error) {
	for _, s := range ss.Specs {
		if s.Name == name {
			return s, nil
		}
	}
	return ScenarioSpec{}, NewValidationError("scenario", "scenario %q is not configured", name)
}

// Event returns the macro event with the given id.
func (ss ScenarioSet) Event(id string) (MacroEvent, error) {
	for _, e := range ss.Events {
		if e.ID == id {
			return e, nil
		}
	}
	return MacroEvent{}, NewValidationError("macro_events", "unknown macro event %q", id)
}

// MacroMultiplier returns the product of the impacts of the selected events
// that belong to scenario. Events of other scenarios are ignored.
func (ss ScenarioSet) MacroMultiplier(scenario ScenarioName, ids []string) (decimal.Decimal, error) {
	mult := decimal.NewFromInt(1)
	for _, id := range ids {
		e, err := ss.Event(id)
		if err != nil {
			return decimal.Zero, err
		}
		if e.Scenario != scenario {
			continue
		}
		mult = mult.Mul(e.Impact)
	}
	return mult, nil
}

// EventsFor lists the macro events available to a scenario.
func (ss ScenarioSet) EventsFor(scenario ScenarioName) []MacroEvent {
	var out []MacroEvent
	for _, e := range ss.Events {
		if e.Scenario == scenario {
			out = append(out, e)
		}
	}
	return out
}

func (n ScenarioName) String() string { return string(n) }

// Title returns the display form of the name, e.g. "Bull".
func (n ScenarioName) Title() string {
	if n == "" {
		return ""
	}
	return strings.ToUpper(string(n[:1])) + string(n[1:])
}

// Validate checks the structural invariants of a scenario spec.
func (s ScenarioSpec) Validate() error {
	if _, err := ParseScenarioName(string(s.Name)); err != nil {
		return err
	}
	if s.AnnualGrowthRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return NewValidationError("annual_growth_rate", "must be greater than -100%%, got %s", s.AnnualGrowthRate)
	}
	if s.VolatilityDamping != nil {
		d := *s.VolatilityDamping
		if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
			return NewValidationError("volatility_damping", "must be between 0 and 1, got %s", d)
		}
	}
	seen := make(map[int]bool)
	for _, a := range s.Anchors {
		if !a.Price.IsPositive() {
			return NewValidationError("anchors", "price for %d must be positive", a.Year)
		}
		if seen[a.Year] {
			return NewValidationError("anchors", "duplicate anchor year %d", a.Year)
		}
		seen[a.Year] = true
	}
	return nil
}

// String renders the spec for logs.
func (s ScenarioSpec) String() string {
	return fmt.Sprintf("%s(%s%%/yr, %d anchors)", s.Name, s.EffectiveGrowthRate().Mul(decimal.NewFromInt(100)).StringFixed(2), len(s.Anchors))
}
