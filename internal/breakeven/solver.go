package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/btcgo/internal/calculation"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/transform"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Solver finds break-even plan parameters by binary search over full plan runs
type Solver struct {
	Engine  *calculation.CalculationEngine
	Options SolverOptions
}

// NewSolver creates a new break-even solver
func NewSolver(engine *calculation.CalculationEngine, options SolverOptions) *Solver {
	return &Solver{
		Engine:  engine,
		Options: options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(engine *calculation.CalculationEngine) *Solver {
	return NewSolver(engine, DefaultSolverOptions())
}

// Solve routes the request to the solver for its target
func (s *Solver) Solve(ctx context.Context, req Request) (*Result, error) {
	switch req.Target {
	case TargetRequiredBTC:
		return s.RequiredBTC(ctx, req)
	case TargetMaxWithdrawal:
		return s.MaxSustainableWithdrawal(ctx, req)
	default:
		return nil, &BreakEvenError{
			Operation: "solve",
			Message:   fmt.Sprintf("unsupported solve target: %s", req.Target),
		}
	}
}

// RequiredBTC finds the smallest starting BTC for which a fixed real
// drawdown of the plan's target income lasts to life expectancy.
func (s *Solver) RequiredBTC(ctx context.Context, req Request) (*Result, error) {
	const op = "required_btc"
	base, err := s.prepare(op, &req)
	if err != nil {
		return nil, err
	}

	eval := s.evaluator(op, base, func(v decimal.Decimal) transform.PlanTransform {
		return &transform.SetCurrentBTC{BTC: v}
	})

	result := &Result{
		Target:    TargetRequiredBTC,
		Scenario:  base.Scenario,
		BaseValue: base.CurrentBTC,
	}

	// Contributions alone may already carry the plan.
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	result.Iterations++
	if out, ok, err := eval(decimal.Zero); err != nil {
		return nil, err
	} else if ok {
		result.Converged = true
		return s.finish(result, decimal.Zero, out, "no starting BTC needed"), nil
	}

	// Grow the upper bound until it survives.
	lo, hi := decimal.Zero, decimal.NewFromInt(1)
	if base.CurrentBTC.GreaterThan(hi) {
		hi = base.CurrentBTC
	}
	for {
		if result.Iterations >= req.MaxIterations {
			return nil, &BreakEvenError{Operation: op, Message: fmt.Sprintf("no sufficient stack found up to %s BTC", hi)}
		}
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		result.Iterations++
		_, ok, err := eval(hi)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		lo, hi = hi, hi.Mul(two)
	}

	lo, hi, converged, err := bisect(ctx, req, result, lo, hi, func(v decimal.Decimal) (bool, error) {
		_, ok, err := eval(v)
		return !ok, err
	})
	if err != nil {
		return nil, err
	}
	result.Converged = converged

	// Round up to whole sats; more BTC never depletes sooner.
	value := hi.RoundCeil(8)
	out, _, err := eval(value)
	if err != nil {
		return nil, err
	}
	return s.finish(result, value, out, fmt.Sprintf("bracket [%s, %s] BTC", lo.StringFixed(8), hi.StringFixed(8))), nil
}

// MaxSustainableWithdrawal finds the largest annual income in today's money
// that a fixed real drawdown can pay without depleting.
func (s *Solver) MaxSustainableWithdrawal(ctx context.Context, req Request) (*Result, error) {
	const op = "max_withdrawal"
	base, err := s.prepare(op, &req)
	if err != nil {
		return nil, err
	}

	eval := s.evaluator(op, base, func(v decimal.Decimal) transform.PlanTransform {
		return &transform.SetTargetIncome{Amount: v}
	})

	result := &Result{
		Target:    TargetMaxWithdrawal,
		Scenario:  base.Scenario,
		BaseValue: base.TargetAnnualIncome,
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	result.Iterations++
	out, _, err := eval(base.TargetAnnualIncome)
	if err != nil {
		return nil, err
	}

	// Start from a year's worth of the whole stack and grow until it depletes.
	lo, hi := decimal.Zero, out.PatrimonyAtRetirement
	if hi.LessThan(decimal.NewFromInt(1)) {
		hi = decimal.NewFromInt(1)
	}
	for {
		if result.Iterations >= req.MaxIterations {
			return nil, &BreakEvenError{Operation: op, Message: fmt.Sprintf("no depleting withdrawal found up to %s", hi.StringFixed(2))}
		}
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		result.Iterations++
		_, ok, err := eval(hi)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		lo, hi = hi, hi.Mul(two)
	}

	lo, hi, converged, err := bisect(ctx, req, result, lo, hi, func(v decimal.Decimal) (bool, error) {
		_, ok, err := eval(v)
		return ok, err
	})
	if err != nil {
		return nil, err
	}
	result.Converged = converged

	// Round down to cents; a smaller income never depletes sooner.
	value := lo.RoundFloor(2)
	out, _, err = eval(value)
	if err != nil {
		return nil, err
	}
	return s.finish(result, value, out, fmt.Sprintf("bracket [%s, %s] per year", lo.StringFixed(2), hi.StringFixed(2))), nil
}

// prepare validates req, fills in solver defaults and builds the base plan:
// fixed real withdrawals under the requested scenario.
func (s *Solver) prepare(op string, req *Request) (*domain.RetirementPlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.Engine == nil {
		return nil, &BreakEvenError{Operation: op, Message: "calculation engine is required"}
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.Tolerance
	}

	transforms := []transform.PlanTransform{
		&transform.SetWithdrawalPolicy{Policy: domain.WithdrawFixedReal},
	}
	if req.Scenario != "" {
		transforms = append(transforms, &transform.SetScenario{Scenario: req.Scenario})
	}
	base, err := transform.ApplyTransforms(req.Plan, transforms)
	if err != nil {
		return nil, &BreakEvenError{Operation: op, Message: "failed to prepare base plan", Cause: err}
	}
	if base.Scenario == "" {
		base.Scenario = domain.ScenarioBase
	}
	if err := base.Validate(); err != nil {
		return nil, &BreakEvenError{Operation: op, Message: "invalid base plan", Cause: err}
	}
	return base, nil
}

type evalFunc func(v decimal.Decimal) (*domain.RetirementOutcome, bool, error)

// evaluator runs the plan with one parameter replaced and reports whether
// the drawdown survived.
func (s *Solver) evaluator(op string, base *domain.RetirementPlan, set func(decimal.Decimal) transform.PlanTransform) evalFunc {
	return func(v decimal.Decimal) (*domain.RetirementOutcome, bool, error) {
		plan, err := transform.ApplyTransforms(base, []transform.PlanTransform{set(v)})
		if err != nil {
			return nil, false, &BreakEvenError{Operation: op, Message: "failed to apply candidate", Cause: err}
		}
		out, err := s.Engine.RunRetirementPlan(plan)
		if err != nil {
			return nil, false, &BreakEvenError{Operation: op, Message: "plan evaluation failed", Cause: err}
		}
		return out, !out.Drawdown.Depleted, nil
	}
}

// bisect narrows [lo, hi] until its width is within the relative tolerance.
// goHigh reports whether the answer lies above mid.
func bisect(ctx context.Context, req Request, result *Result, lo, hi decimal.Decimal, goHigh func(decimal.Decimal) (bool, error)) (decimal.Decimal, decimal.Decimal, bool, error) {
	for result.Iterations < req.MaxIterations {
		if hi.Sub(lo).LessThanOrEqual(hi.Mul(req.Tolerance)) {
			return lo, hi, true, nil
		}
		if err := checkContext(ctx); err != nil {
			return lo, hi, false, err
		}
		result.Iterations++

		mid := lo.Add(hi).Div(two)
		up, err := goHigh(mid)
		if err != nil {
			return lo, hi, false, err
		}
		if up {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo, hi, hi.Sub(lo).LessThanOrEqual(hi.Mul(req.Tolerance)), nil
}

func (s *Solver) finish(result *Result, value decimal.Decimal, out *domain.RetirementOutcome, info string) *Result {
	result.Value = value
	result.DiffFromBase = value.Sub(result.BaseValue)
	result.Outcome = out
	status := "converged"
	if !result.Converged {
		status = "stopped at iteration limit"
	}
	result.ConvergenceInfo = fmt.Sprintf("%s after %d evaluations, %s", status, result.Iterations, info)
	return result
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
