package transform

import (
	"testing"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformRegistry_ParseTransformSpec(t *testing.T) {
	registry := NewTransformRegistry()

	tests := []struct {
		spec  string
		check func(t *testing.T, tr PlanTransform)
	}{
		{"postpone_retirement:years=5", func(t *testing.T, tr PlanTransform) {
			assert.Equal(t, &PostponeRetirement{Years: 5}, tr)
		}},
		{"adjust_contribution: multiplier = 1.5", func(t *testing.T, tr PlanTransform) {
			ac := tr.(*AdjustContribution)
			assert.True(t, ac.Multiplier.Equal(decimal.NewFromFloat(1.5)))
		}},
		{"set_withdrawal_rate:rate=0.035", func(t *testing.T, tr PlanTransform) {
			assert.True(t, tr.(*SetWithdrawalRate).Rate.Equal(decimal.RequireFromString("0.035")))
		}},
		{"set_withdrawal_policy:policy=percent_of_balance", func(t *testing.T, tr PlanTransform) {
			assert.Equal(t, domain.WithdrawPercentOfBalance, tr.(*SetWithdrawalPolicy).Policy)
		}},
		{"set_scenario:scenario=BULL", func(t *testing.T, tr PlanTransform) {
			assert.Equal(t, domain.ScenarioBull, tr.(*SetScenario).Scenario)
		}},
		{"add_macro_event:id=sovereign", func(t *testing.T, tr PlanTransform) {
			assert.Equal(t, "sovereign", tr.(*AddMacroEvent).EventID)
		}},
		{"set_inflation:rate=0.05", func(t *testing.T, tr PlanTransform) {
			assert.Equal(t, "set_inflation", tr.Name())
		}},
		{"set_target_income:amount=52000", func(t *testing.T, tr PlanTransform) {
			assert.True(t, tr.(*SetTargetIncome).Amount.Equal(decimal.NewFromInt(52000)))
		}},
		{"set_current_btc:btc=0.25", func(t *testing.T, tr PlanTransform) {
			assert.True(t, tr.(*SetCurrentBTC).BTC.Equal(decimal.NewFromFloat(0.25)))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			tr, err := registry.ParseTransformSpec(tt.spec)
			require.NoError(t, err)
			tt.check(t, tr)
		})
	}
}

func TestTransformRegistry_ParseErrors(t *testing.T) {
	registry := NewTransformRegistry()

	bad := []string{
		"postpone_retirement",
		"postpone_retirement:years",
		"postpone_retirement:years=soon",
		"postpone_retirement:",
		"unknown_transform:x=1",
		"set_scenario:scenario=moon",
		"set_withdrawal_policy:policy=everything",
		"set_inflation:rate=abc",
		"add_macro_event:id=",
	}
	for _, spec := range bad {
		_, err := registry.ParseTransformSpec(spec)
		assert.Error(t, err, spec)
	}
}

func TestTransformRegistry_List(t *testing.T) {
	names := NewTransformRegistry().List()
	assert.Len(t, names, 9)
	assert.Equal(t, "add_macro_event", names[0])
	assert.Contains(t, names, "postpone_retirement")
}
