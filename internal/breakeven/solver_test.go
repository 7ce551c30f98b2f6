package breakeven

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rgehrsitz/btcgo/internal/calculation"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *calculation.CalculationEngine {
	return calculation.NewCalculationEngine(domain.ScenarioSet{
		Specs: []domain.ScenarioSpec{
			{Name: domain.ScenarioBase, AnnualGrowthRate: decimal.Zero},
			{Name: domain.ScenarioBull, AnnualGrowthRate: decimal.NewFromFloat(0.5)},
			{Name: domain.ScenarioBear, AnnualGrowthRate: decimal.NewFromFloat(-0.2)},
		},
	})
}

// Two years of saving then two years of 10,000/yr withdrawals at a flat
// 100,000 price: the stack must exceed 0.2 BTC.
func flatPlan() *domain.RetirementPlan {
	return &domain.RetirementPlan{
		CurrentAge:         40,
		RetirementAge:      42,
		LifeExpectancy:     44,
		CurrentBTC:         decimal.NewFromInt(1),
		Frequency:          domain.FrequencyYearly,
		TargetAnnualIncome: decimal.NewFromInt(10000),
		SafeWithdrawalRate: decimal.NewFromFloat(0.04),
		WithdrawalPolicy:   domain.WithdrawFixedReal,
		ReferencePrice:     decimal.NewFromInt(100000),
		StartYear:          2025,
		Scenario:           domain.ScenarioBase,
	}
}

func TestNewSolver(t *testing.T) {
	engine := testEngine()
	options := DefaultSolverOptions()

	solver := NewSolver(engine, options)
	require.NotNil(t, solver)
	assert.Same(t, engine, solver.Engine)
	assert.Equal(t, options, solver.Options)

	def := NewDefaultSolver(engine)
	assert.Equal(t, 100, def.Options.MaxIterations)
	assert.True(t, def.Options.Tolerance.Equal(decimal.New(1, -6)))
}

func TestRequiredBTC_FlatMarket(t *testing.T) {
	solver := NewDefaultSolver(testEngine())

	res, err := solver.RequiredBTC(context.Background(), Request{Plan: flatPlan()})
	require.NoError(t, err)

	assert.True(t, res.Converged, res.ConvergenceInfo)
	assert.True(t, res.Value.GreaterThan(decimal.NewFromFloat(0.2)), res.Value.String())
	assert.InDelta(t, 0.2, res.Value.InexactFloat64(), 1e-6)
	assert.True(t, res.BaseValue.Equal(decimal.NewFromInt(1)))
	assert.True(t, res.DiffFromBase.IsNegative())
	assert.Equal(t, domain.ScenarioBase, res.Scenario)

	require.NotNil(t, res.Outcome)
	assert.False(t, res.Outcome.Drawdown.Depleted)
	assert.Contains(t, res.ConvergenceInfo, "converged after")
}

func TestRequiredBTC_ExactBoundaryDepletes(t *testing.T) {
	plan := flatPlan()
	plan.CurrentBTC = decimal.NewFromFloat(0.2)

	out, err := testEngine().RunRetirementPlan(plan)
	require.NoError(t, err)
	assert.True(t, out.Drawdown.Depleted, "withdrawing the whole balance counts as depletion")
}

func TestRequiredBTC_ContributionsAlone(t *testing.T) {
	plan := flatPlan()
	plan.CurrentBTC = decimal.Zero
	plan.ContributionFiat = decimal.NewFromInt(20000)

	res, err := NewDefaultSolver(testEngine()).RequiredBTC(context.Background(), Request{Plan: plan})
	require.NoError(t, err)

	assert.True(t, res.Value.IsZero())
	assert.Equal(t, 1, res.Iterations)
	assert.True(t, res.Converged)
}

func TestRequiredBTC_IterationLimit(t *testing.T) {
	solver := NewDefaultSolver(testEngine())

	res, err := solver.RequiredBTC(context.Background(), Request{Plan: flatPlan(), MaxIterations: 3})
	require.NoError(t, err)

	assert.False(t, res.Converged)
	assert.Equal(t, 3, res.Iterations)
	assert.True(t, res.Value.Equal(decimal.NewFromFloat(0.5)), res.Value.String())
	assert.Contains(t, res.ConvergenceInfo, "iteration limit")
}

func TestMaxSustainableWithdrawal_FlatMarket(t *testing.T) {
	plan := flatPlan()
	plan.WithdrawalPolicy = domain.WithdrawPercentOfBalance

	res, err := NewDefaultSolver(testEngine()).MaxSustainableWithdrawal(context.Background(), Request{Plan: plan})
	require.NoError(t, err)

	// 1 BTC lasts two withdrawals while each is below half the stack.
	assert.True(t, res.Converged, res.ConvergenceInfo)
	assert.True(t, res.Value.LessThan(decimal.NewFromInt(50000)), res.Value.String())
	assert.InDelta(t, 50000, res.Value.InexactFloat64(), 0.1)
	assert.True(t, res.Value.Equal(res.Value.Round(2)))
	assert.True(t, res.BaseValue.Equal(decimal.NewFromInt(10000)))
	assert.True(t, res.DiffFromBase.IsPositive())

	require.NotNil(t, res.Outcome)
	assert.False(t, res.Outcome.Drawdown.Depleted)
	assert.Equal(t, domain.WithdrawFixedReal, res.Outcome.Plan.WithdrawalPolicy)
}

func TestSolver_ContextCancelled(t *testing.T) {
	solver := NewDefaultSolver(testEngine())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := solver.RequiredBTC(ctx, Request{Plan: flatPlan()})
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = solver.MaxSustainableWithdrawal(ctx, Request{Plan: flatPlan()})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSolver_Errors(t *testing.T) {
	solver := NewDefaultSolver(testEngine())

	_, err := solver.Solve(context.Background(), Request{Target: TargetRequiredBTC})
	var be *BreakEvenError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "validate_request", be.Operation)

	_, err = solver.Solve(context.Background(), Request{Plan: flatPlan(), Target: "unsupported"})
	assert.Error(t, err)

	plan := flatPlan()
	plan.ReferencePrice = decimal.Zero
	_, err = solver.Solve(context.Background(), Request{Plan: plan, Target: TargetMaxWithdrawal})
	assert.True(t, errors.Is(err, domain.ErrMissingReferencePrice))
	assert.True(t, domain.IsValidation(err))

	_, err = solver.Solve(context.Background(), Request{Plan: flatPlan(), Target: TargetRequiredBTC, Scenario: "moon"})
	assert.Error(t, err)

	_, err = NewDefaultSolver(nil).RequiredBTC(context.Background(), Request{Plan: flatPlan()})
	assert.Error(t, err)

	_, err = solver.Solve(context.Background(), Request{Plan: flatPlan(), Target: TargetRequiredBTC, Tolerance: decimal.NewFromInt(2)})
	assert.Error(t, err)
}

func TestSolveAcrossScenarios(t *testing.T) {
	solver := NewDefaultSolver(testEngine())

	sweep, err := solver.SolveAcrossScenarios(context.Background(), flatPlan(), TargetRequiredBTC)
	require.NoError(t, err)
	require.Len(t, sweep.Results, 3)

	bull, base, bear := sweep.Results[0], sweep.Results[1], sweep.Results[2]
	assert.Equal(t, domain.ScenarioBull, bull.Scenario)
	assert.Equal(t, domain.ScenarioBear, bear.Scenario)
	assert.True(t, bull.Value.LessThan(base.Value))
	assert.True(t, base.Value.LessThan(bear.Value))

	assert.Equal(t, domain.ScenarioBear, sweep.Worst().Scenario)
	require.Len(t, sweep.Recommendations, 4)
	assert.Contains(t, sweep.Recommendations[3], "Bear")
}

func TestParseSolveTarget(t *testing.T) {
	for in, want := range map[string]SolveTarget{
		"required_btc":   TargetRequiredBTC,
		"btc":            TargetRequiredBTC,
		"max_withdrawal": TargetMaxWithdrawal,
		"income":         TargetMaxWithdrawal,
	} {
		got, err := ParseSolveTarget(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseSolveTarget("moon")
	assert.Error(t, err)
}

func TestBreakEvenError(t *testing.T) {
	cause := errors.New("root")
	err := &BreakEvenError{Operation: "op", Message: "msg", Cause: cause}
	assert.Equal(t, "op: msg: root", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "op: msg", (&BreakEvenError{Operation: "op", Message: "msg"}).Error())
}

func TestFormatters(t *testing.T) {
	solver := NewDefaultSolver(testEngine())
	res, err := solver.RequiredBTC(context.Background(), Request{Plan: flatPlan()})
	require.NoError(t, err)

	tf := &TableFormatter{}
	table := tf.Format(res)
	for _, want := range []string{"BREAK-EVEN RESULTS", "Required BTC:", "Base", "✓ Converged", "PLAN AT BREAK-EVEN"} {
		assert.Contains(t, table, want)
	}

	sweep, err := solver.SolveAcrossScenarios(context.Background(), flatPlan(), TargetMaxWithdrawal)
	require.NoError(t, err)
	sweepTable := tf.FormatSweep(sweep)
	assert.Contains(t, sweepTable, "Bull")
	assert.Contains(t, sweepTable, "RECOMMENDATIONS")

	jf := &JSONFormatter{}
	out, err := jf.Format(res)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, `"target":"required_btc"`))

	pretty, err := (&JSONFormatter{Pretty: true}).FormatSweep(sweep)
	require.NoError(t, err)
	assert.Contains(t, pretty, "\n  \"target\": \"max_withdrawal\"")
}
