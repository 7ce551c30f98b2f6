package transform

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// TransformRegistry provides a central registry for all available transforms.
// It enables creation of transforms from string parameters, useful for CLI commands.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (PlanTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	registry.Register("postpone_retirement", createPostponeRetirement)
	registry.Register("adjust_contribution", createAdjustContribution)
	registry.Register("set_withdrawal_rate", createSetWithdrawalRate)
	registry.Register("set_withdrawal_policy", createSetWithdrawalPolicy)
	registry.Register("set_target_income", createSetTargetIncome)
	registry.Register("set_current_btc", createSetCurrentBTC)
	registry.Register("set_inflation", createSetInflation)
	registry.Register("set_scenario", createSetScenario)
	registry.Register("add_macro_event", createAddMacroEvent)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (PlanTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}

	return factory(params)
}

// List returns the names of all registered transforms in sorted order.
func (r *TransformRegistry) List() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// ParseTransformSpec parses a transform specification string.
// Format: "transform_name:param1=value1,param2=value2"
// Example: "postpone_retirement:years=5"
func (r *TransformRegistry) ParseTransformSpec(spec string) (PlanTransform, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %s", spec)
	}

	name := strings.TrimSpace(parts[0])
	paramsStr := strings.TrimSpace(parts[1])

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

func requireParam(transform, key string, params map[string]string) (string, error) {
	v, ok := params[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%s requires '%s' parameter", transform, key)
	}
	return v, nil
}

func decimalParam(transform, key string, params map[string]string) (decimal.Decimal, error) {
	raw, err := requireParam(transform, key, params)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

// Factory functions for each transform

func createPostponeRetirement(params map[string]string) (PlanTransform, error) {
	raw, err := requireParam("postpone_retirement", "years", params)
	if err != nil {
		return nil, err
	}
	years, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid years value: %w", err)
	}
	return &PostponeRetirement{Years: years}, nil
}

func createAdjustContribution(params map[string]string) (PlanTransform, error) {
	m, err := decimalParam("adjust_contribution", "multiplier", params)
	if err != nil {
		return nil, err
	}
	return &AdjustContribution{Multiplier: m}, nil
}

func createSetWithdrawalRate(params map[string]string) (PlanTransform, error) {
	rate, err := decimalParam("set_withdrawal_rate", "rate", params)
	if err != nil {
		return nil, err
	}
	return &SetWithdrawalRate{Rate: rate}, nil
}

func createSetWithdrawalPolicy(params map[string]string) (PlanTransform, error) {
	raw, err := requireParam("set_withdrawal_policy", "policy", params)
	if err != nil {
		return nil, err
	}
	policy, err := domain.ParseWithdrawalPolicy(raw)
	if err != nil {
		return nil, err
	}
	return &SetWithdrawalPolicy{Policy: policy}, nil
}

func createSetTargetIncome(params map[string]string) (PlanTransform, error) {
	amount, err := decimalParam("set_target_income", "amount", params)
	if err != nil {
		return nil, err
	}
	return &SetTargetIncome{Amount: amount}, nil
}

func createSetCurrentBTC(params map[string]string) (PlanTransform, error) {
	btc, err := decimalParam("set_current_btc", "btc", params)
	if err != nil {
		return nil, err
	}
	return &SetCurrentBTC{BTC: btc}, nil
}

func createSetInflation(params map[string]string) (PlanTransform, error) {
	rate, err := decimalParam("set_inflation", "rate", params)
	if err != nil {
		return nil, err
	}
	return &SetInflation{Rate: rate}, nil
}

func createSetScenario(params map[string]string) (PlanTransform, error) {
	raw, err := requireParam("set_scenario", "scenario", params)
	if err != nil {
		return nil, err
	}
	name, err := domain.ParseScenarioName(raw)
	if err != nil {
		return nil, err
	}
	return &SetScenario{Scenario: name}, nil
}

func createAddMacroEvent(params map[string]string) (PlanTransform, error) {
	id, err := requireParam("add_macro_event", "id", params)
	if err != nil {
		return nil, err
	}
	return &AddMacroEvent{EventID: id}, nil
}
