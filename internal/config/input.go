package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfigYAML []byte

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// DefaultConfiguration parses the embedded default configuration.
func DefaultConfiguration() (*domain.Configuration, error) {
	config, err := NewInputParser().LoadFromBytes(defaultConfigYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded default configuration: %w", err)
	}
	return config, nil
}

// DefaultConfigYAML returns a copy of the embedded default configuration file.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), defaultConfigYAML...)
}

// LoadFromFile loads configuration from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.LoadFromBytes(data)
}

// LoadFromBytes parses and validates a YAML configuration
func (ip *InputParser) LoadFromBytes(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadPlan reads a plan file. Fields the file omits keep the values of base,
// which is normally the configuration defaults.
func (ip *InputParser) LoadPlan(filename string, base domain.RetirementPlan) (*domain.RetirementPlan, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan %s: %w", filename, err)
	}

	plan := base.DeepCopy()
	if err := yaml.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", filename, err)
	}
	if err := ip.normalizePlan(plan); err != nil {
		return nil, fmt.Errorf("plan %s: %w", filename, err)
	}
	return plan, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if err := ip.validateScenarios(config.Scenarios); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := ip.validateMacroEvents(config.MacroEvents); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := ip.validateDefaults(config); err != nil {
		return fmt.Errorf("defaults validation failed: %w", err)
	}
	if err := ip.validateYield(&config.Yield); err != nil {
		return fmt.Errorf("yield validation failed: %w", err)
	}
	if err := ip.validateMarket(&config.Market); err != nil {
		return fmt.Errorf("market validation failed: %w", err)
	}
	return nil
}

// validateScenarios requires all three scenarios with sane growth laws
func (ip *InputParser) validateScenarios(specs []domain.ScenarioSpec) error {
	if len(specs) == 0 {
		return fmt.Errorf("no scenarios provided")
	}

	seen := make(map[domain.ScenarioName]bool, len(specs))
	for i := range specs {
		spec := &specs[i]
		name, err := domain.ParseScenarioName(string(spec.Name))
		if err != nil {
			return fmt.Errorf("scenario %d: %w", i, err)
		}
		spec.Name = name
		if seen[name] {
			return fmt.Errorf("scenario %s is defined twice", name)
		}
		seen[name] = true

		if spec.AnnualGrowthRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
			return fmt.Errorf("scenario %s: annual growth rate must be greater than -1", name)
		}
		if d := spec.VolatilityDamping; d != nil && (d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1))) {
			return fmt.Errorf("scenario %s: volatility damping must be in [0, 1]", name)
		}
		lastYear := 0
		for _, a := range spec.SortedAnchors() {
			if a.Year == lastYear {
				return fmt.Errorf("scenario %s: duplicate anchor year %d", name, a.Year)
			}
			if !a.Price.IsPositive() {
				return fmt.Errorf("scenario %s: anchor %d price must be positive", name, a.Year)
			}
			lastYear = a.Year
		}
	}

	for _, name := range domain.AllScenarioNames() {
		if !seen[name] {
			return fmt.Errorf("scenario %s is missing", name)
		}
	}
	return nil
}

// validateMacroEvents checks ids, owning scenarios and impacts
func (ip *InputParser) validateMacroEvents(events []domain.MacroEvent) error {
	seen := make(map[string]bool, len(events))
	for i := range events {
		ev := &events[i]
		if ev.ID == "" {
			return fmt.Errorf("macro event %d: id is required", i)
		}
		if seen[ev.ID] {
			return fmt.Errorf("macro event %s is defined twice", ev.ID)
		}
		seen[ev.ID] = true

		name, err := domain.ParseScenarioName(string(ev.Scenario))
		if err != nil {
			return fmt.Errorf("macro event %s: %w", ev.ID, err)
		}
		ev.Scenario = name
		if !ev.Impact.IsPositive() {
			return fmt.Errorf("macro event %s: impact must be positive", ev.ID)
		}
	}
	return nil
}

// validateDefaults checks the default plan. The reference price is never
// configured, so a placeholder stands in for it.
func (ip *InputParser) validateDefaults(config *domain.Configuration) error {
	plan := &config.Defaults
	if err := ip.normalizePlan(plan); err != nil {
		return err
	}

	check := plan.DeepCopy()
	check.ReferencePrice = decimal.NewFromInt(1)
	if err := check.Validate(); err != nil {
		return err
	}

	set := config.ScenarioSet()
	for _, id := range plan.MacroEvents {
		if _, err := set.Event(id); err != nil {
			return err
		}
	}
	return nil
}

// normalizePlan canonicalizes the enum fields of a plan
func (ip *InputParser) normalizePlan(plan *domain.RetirementPlan) error {
	freq, err := domain.ParseContributionFrequency(string(plan.Frequency))
	if err != nil {
		return err
	}
	plan.Frequency = freq

	policy, err := domain.ParseWithdrawalPolicy(string(plan.WithdrawalPolicy))
	if err != nil {
		return err
	}
	plan.WithdrawalPolicy = policy

	if plan.Scenario == "" {
		plan.Scenario = domain.ScenarioBase
	}
	scenario, err := domain.ParseScenarioName(string(plan.Scenario))
	if err != nil {
		return err
	}
	plan.Scenario = scenario
	return nil
}

// validateYield checks the fixed-income defaults
func (ip *InputParser) validateYield(y *domain.YieldDefaults) error {
	if y.PeriodicYieldRate.IsNegative() {
		return fmt.Errorf("periodic yield rate must not be negative")
	}
	if _, err := domain.ParseReinvestPolicy(y.Reinvest); err != nil {
		return err
	}
	freq, err := domain.ParseContributionFrequency(string(y.Frequency))
	if err != nil {
		return err
	}
	y.Frequency = freq
	if y.HorizonPeriods < 0 {
		return fmt.Errorf("horizon periods must not be negative")
	}
	return nil
}

// validateMarket checks the price feed settings
func (ip *InputParser) validateMarket(m *domain.MarketSettings) error {
	if m.Symbol == "" {
		m.Symbol = "BTCUSDT"
	}
	if m.RefreshInterval < 0 || m.MaxAge < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if m.MaxAge > 0 && m.RefreshInterval > m.MaxAge {
		return fmt.Errorf("refresh interval %s exceeds max age %s", m.RefreshInterval, m.MaxAge)
	}
	return nil
}
