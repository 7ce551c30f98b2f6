package transform

import (
	"errors"
	"strings"
	"testing"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// Helper function to create a basic test plan
func createTestPlan() *domain.RetirementPlan {
	return &domain.RetirementPlan{
		Name:               "Test Plan",
		CurrentAge:         35,
		RetirementAge:      55,
		LifeExpectancy:     85,
		CurrentBTC:         decimal.NewFromFloat(0.5),
		ContributionFiat:   decimal.NewFromInt(500),
		ContributionSats:   10000,
		Frequency:          domain.FrequencyMonthly,
		TargetAnnualIncome: decimal.NewFromInt(40000),
		InflationRate:      decimal.NewFromFloat(0.03),
		SafeWithdrawalRate: decimal.NewFromFloat(0.04),
		WithdrawalPolicy:   domain.WithdrawFixedReal,
		ReferencePrice:     decimal.NewFromInt(100000),
		Scenario:           domain.ScenarioBase,
		MacroEvents:        []string{"etf_flows"},
	}
}

func TestApplyTransforms_NilPlan(t *testing.T) {
	_, err := ApplyTransforms(nil, []PlanTransform{&PostponeRetirement{Years: 1}})
	if err == nil {
		t.Error("Expected error for nil plan, got nil")
	}
}

func TestApplyTransforms_EmptyTransforms(t *testing.T) {
	base := createTestPlan()

	result, err := ApplyTransforms(base, nil)
	if err != nil {
		t.Fatalf("Expected no error for empty transforms, got: %v", err)
	}
	if result == base {
		t.Error("Expected a copy, got the base plan itself")
	}
	if result.RetirementAge != base.RetirementAge {
		t.Errorf("Expected retirement age %d, got %d", base.RetirementAge, result.RetirementAge)
	}
}

func TestApplyTransforms_Chain(t *testing.T) {
	base := createTestPlan()

	result, err := ApplyTransforms(base, []PlanTransform{
		&PostponeRetirement{Years: 5},
		&AdjustContribution{Multiplier: decimal.NewFromInt(2)},
		&SetScenario{Scenario: domain.ScenarioBear},
		&AddMacroEvent{EventID: "recession"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.RetirementAge != 60 {
		t.Errorf("Expected retirement age 60, got %d", result.RetirementAge)
	}
	if !result.ContributionFiat.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected contribution 1000, got %s", result.ContributionFiat)
	}
	if result.ContributionSats != 20000 {
		t.Errorf("Expected 20000 sats, got %d", result.ContributionSats)
	}
	if result.Scenario != domain.ScenarioBear {
		t.Errorf("Expected bear scenario, got %s", result.Scenario)
	}
	if len(result.MacroEvents) != 2 {
		t.Errorf("Expected 2 macro events, got %v", result.MacroEvents)
	}

	// base plan must be untouched
	if base.RetirementAge != 55 || len(base.MacroEvents) != 1 || base.Scenario != domain.ScenarioBase {
		t.Errorf("Base plan was modified: %+v", base)
	}
}

func TestApplyTransforms_NilTransform(t *testing.T) {
	_, err := ApplyTransforms(createTestPlan(), []PlanTransform{nil})
	if err == nil {
		t.Error("Expected error for nil transform")
	}
}

func TestApplyTransforms_ValidationFailure(t *testing.T) {
	_, err := ApplyTransforms(createTestPlan(), []PlanTransform{&PostponeRetirement{Years: 30}})
	if err == nil {
		t.Fatal("Expected validation error when retirement passes life expectancy")
	}

	var te *TransformError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransformError in chain, got %T", err)
	}
	if te.TransformName != "postpone_retirement" {
		t.Errorf("Expected transform name postpone_retirement, got %s", te.TransformName)
	}
	if !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("Expected wrapped validation message, got %s", err.Error())
	}
}

func TestTransformValidation(t *testing.T) {
	base := createTestPlan()

	tests := []struct {
		name      string
		transform PlanTransform
		wantErr   bool
	}{
		{"postpone negative", &PostponeRetirement{Years: -1}, true},
		{"postpone ok", &PostponeRetirement{Years: 10}, false},
		{"contribution negative", &AdjustContribution{Multiplier: decimal.NewFromInt(-1)}, true},
		{"contribution zero", &AdjustContribution{Multiplier: decimal.Zero}, false},
		{"swr zero", &SetWithdrawalRate{Rate: decimal.Zero}, true},
		{"swr above one", &SetWithdrawalRate{Rate: decimal.NewFromFloat(1.5)}, true},
		{"swr ok", &SetWithdrawalRate{Rate: decimal.NewFromFloat(0.035)}, false},
		{"policy empty", &SetWithdrawalPolicy{}, true},
		{"policy unknown", &SetWithdrawalPolicy{Policy: "yolo"}, true},
		{"policy ok", &SetWithdrawalPolicy{Policy: domain.WithdrawPercentOfBalance}, false},
		{"inflation negative", &SetInflation{Rate: decimal.NewFromFloat(-0.01)}, true},
		{"inflation ok", &SetInflation{Rate: decimal.NewFromFloat(0.08)}, false},
		{"scenario unknown", &SetScenario{Scenario: "moon"}, true},
		{"macro empty", &AddMacroEvent{}, true},
		{"target negative", &SetTargetIncome{Amount: decimal.NewFromInt(-5)}, true},
		{"btc negative", &SetCurrentBTC{BTC: decimal.NewFromInt(-1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.transform.Validate(base)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.transform.Description() == "" {
				t.Error("Expected a description")
			}
		})
	}
}

func TestTransformValidation_NilBase(t *testing.T) {
	transforms := []PlanTransform{
		&PostponeRetirement{Years: 1},
		&AdjustContribution{Multiplier: decimal.NewFromInt(1)},
		&SetWithdrawalRate{Rate: decimal.NewFromFloat(0.04)},
		&SetWithdrawalPolicy{Policy: domain.WithdrawFixedReal},
		&SetTargetIncome{Amount: decimal.NewFromInt(1)},
		&SetCurrentBTC{BTC: decimal.NewFromInt(1)},
		&SetInflation{Rate: decimal.NewFromFloat(0.02)},
		&SetScenario{Scenario: domain.ScenarioBull},
		&AddMacroEvent{EventID: "etf_flows"},
	}
	for _, tr := range transforms {
		if err := tr.Validate(nil); err == nil {
			t.Errorf("%s: expected error for nil base", tr.Name())
		}
	}
}

func TestAddMacroEvent_Idempotent(t *testing.T) {
	result, err := ApplyTransforms(createTestPlan(), []PlanTransform{
		&AddMacroEvent{EventID: "etf_flows"},
		&AddMacroEvent{EventID: "etf_flows"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.MacroEvents) != 1 {
		t.Errorf("Expected macro events to stay deduplicated, got %v", result.MacroEvents)
	}
}

func TestSetWithdrawalPolicy_Apply(t *testing.T) {
	result, err := ApplyTransforms(createTestPlan(), []PlanTransform{
		&SetWithdrawalPolicy{Policy: "percent"},
		&SetWithdrawalRate{Rate: decimal.NewFromFloat(0.05)},
		&SetTargetIncome{Amount: decimal.NewFromInt(60000)},
		&SetCurrentBTC{BTC: decimal.NewFromInt(2)},
		&SetInflation{Rate: decimal.NewFromFloat(0.06)},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.WithdrawalPolicy != domain.WithdrawPercentOfBalance {
		t.Errorf("Expected percent_of_balance, got %s", result.WithdrawalPolicy)
	}
	if !result.SafeWithdrawalRate.Equal(decimal.NewFromFloat(0.05)) {
		t.Errorf("Expected SWR 0.05, got %s", result.SafeWithdrawalRate)
	}
	if !result.TargetAnnualIncome.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("Expected target 60000, got %s", result.TargetAnnualIncome)
	}
	if !result.CurrentBTC.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected 2 BTC, got %s", result.CurrentBTC)
	}
	if !result.InflationRate.Equal(decimal.NewFromFloat(0.06)) {
		t.Errorf("Expected inflation 0.06, got %s", result.InflationRate)
	}
}

func TestTransformError(t *testing.T) {
	cause := errors.New("boom")
	err := NewTransformError("set_inflation", "validate", "bad rate", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
	want := "transform set_inflation (validate): bad rate: boom"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}

	plain := NewTransformError("set_inflation", "validate", "bad rate", nil)
	if plain.Error() != "transform set_inflation (validate): bad rate" {
		t.Errorf("Unexpected message %q", plain.Error())
	}
}
