package calculation

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCalculationEngine(t *testing.T) {
	engine := NewCalculationEngine(testScenarios())

	assert.NotNil(t, engine, "Should create engine")
	assert.NotNil(t, engine.Logger, "Should initialize logger")
	assert.Len(t, engine.Scenarios.Specs, 3)
}

func TestCalculationEngine_SetLogger(t *testing.T) {
	engine := NewCalculationEngine(testScenarios())

	customLogger := &TestLogger{}
	engine.SetLogger(customLogger)
	assert.Equal(t, customLogger, engine.Logger, "Should set custom logger")

	engine.SetLogger(nil)
	assert.NotNil(t, engine.Logger, "Should not be nil")
	assert.IsType(t, NopLogger{}, engine.Logger, "Should be no-op logger")
}

func TestCalculationEngine_DebugLogging(t *testing.T) {
	engine := NewCalculationEngine(testScenarios())
	logger := &TestLogger{}
	engine.SetLogger(logger)

	cfg := domain.SimulationConfig{
		InitialCapitalFiat:    dec("1000"),
		ContributionFrequency: domain.FrequencyMonthly,
		HorizonPeriods:        3,
	}
	_, err := engine.RunAccumulation(cfg, dec("50000"))
	require.NoError(t, err)
	assert.Empty(t, logger.Messages, "debug output is off by default")

	engine.Debug = true
	_, err = engine.RunAccumulation(cfg, dec("50000"))
	require.NoError(t, err)
	require.Len(t, logger.Messages, 1)
	assert.True(t, strings.HasPrefix(logger.Messages[0], "DEBUG: accumulation["), logger.Messages[0])
}

func TestCalculationEngine_RunScenariosOrdering(t *testing.T) {
	engine := NewCalculationEngine(testScenarios())
	plan := flatPlan()
	plan.Frequency = domain.FrequencyMonthly
	plan.CurrentAge = 35
	plan.RetirementAge = 55
	plan.LifeExpectancy = 85
	plan.ContributionFiat = dec("500")

	outcomes, err := engine.RunScenarios(plan)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	bull, base, bear := outcomes[0], outcomes[1], outcomes[2]
	assert.Equal(t, domain.ScenarioBull, bull.Scenario)
	assert.Equal(t, domain.ScenarioBase, base.Scenario)
	assert.Equal(t, domain.ScenarioBear, bear.Scenario)
	assert.True(t, bull.PatrimonyAtRetirement.GreaterThan(base.PatrimonyAtRetirement))
	assert.True(t, base.PatrimonyAtRetirement.GreaterThan(bear.PatrimonyAtRetirement))
	assert.True(t, bull.PriceAtRetirement.GreaterThan(base.PriceAtRetirement))
}

func TestCalculationEngine_MacroEventsOnlyScaleTheirScenario(t *testing.T) {
	engine := NewCalculationEngine(testScenarios())
	plan := flatPlan()

	plain, err := engine.RunScenarios(plan)
	require.NoError(t, err)

	plan.MacroEvents = []string{"etf_flows"}
	shocked, err := engine.RunScenarios(plan)
	require.NoError(t, err)

	assert.True(t, shocked[0].MacroMultiplier.Equal(dec("1.15")))
	assert.True(t, shocked[0].PriceAtRetirement.GreaterThan(plain[0].PriceAtRetirement))
	assert.True(t, shocked[1].PriceAtRetirement.Equal(plain[1].PriceAtRetirement))
	assert.True(t, shocked[2].MacroMultiplier.Equal(dec("1")))

	plan.MacroEvents = []string{"unknown"}
	_, err = engine.RunRetirementPlan(plan)
	assert.True(t, domain.IsValidation(err))
}

func TestCalculationEngine_RunRetirementPlanUnknownScenario(t *testing.T) {
	engine := NewCalculationEngine(domain.ScenarioSet{})
	_, err := engine.RunRetirementPlan(flatPlan())
	assert.True(t, domain.IsValidation(err))

	_, err = engine.RunRetirementPlan(nil)
	assert.Error(t, err)
}

func TestCalculationEngine_RunRegretNeedsSeries(t *testing.T) {
	engine := NewCalculationEngine(testScenarios())
	_, err := engine.RunRegret(RegretRequest{
		InvestDate:     day("2020-01-01"),
		ReferenceDate:  day("2021-01-01"),
		Amount:         dec("100"),
		ReferencePrice: dec("30000"),
	})
	assert.True(t, domain.IsValidation(err))

	engine.Series = dcaCalculator(t).Series
	res, err := engine.RunRegret(RegretRequest{
		InvestDate:     day("2020-01-01"),
		ReferenceDate:  day("2021-01-01"),
		Amount:         dec("100"),
		ReferencePrice: dec("30000"),
	})
	require.NoError(t, err)
	assert.True(t, res.PresentValue.Equal(dec("300")))
}

func TestCalculationEngine_RunYieldAndDrawdown(t *testing.T) {
	engine := NewCalculationEngine(testScenarios())

	yieldRes, err := engine.RunYield(yieldConfig(domain.ReinvestFull(), 10), dec("50000"))
	require.NoError(t, err)
	assert.InDelta(t, 1.10462, yieldRes.Final().BTCBalance.InexactFloat64(), 1e-5)

	draw, err := engine.RunDrawdown(domain.SimulationConfig{
		InitialCapitalFiat:     dec("50000"),
		ContributionFrequency:  domain.FrequencyMonthly,
		HorizonPeriods:         12,
		WithdrawalAmountOrRate: dec("150000"),
	}, dec("50000"), domain.Handoff{})
	require.NoError(t, err)
	assert.True(t, draw.Depleted)

	_, err = engine.RunAccumulation(domain.SimulationConfig{ContributionFrequency: domain.FrequencyMonthly}, dec("50000"))
	assert.True(t, domain.IsValidation(err))
}

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.Infof("loaded %d points", 42)
	logger.Warnf("stale by %s", "3d")
	assert.Contains(t, buf.String(), "loaded 42 points")
	assert.Contains(t, buf.String(), "level=WARN")

	assert.NotNil(t, NewSlogLogger(nil))
}
