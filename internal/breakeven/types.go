package breakeven

import (
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// SolveTarget defines which plan parameter the solver searches for
type SolveTarget string

const (
	// TargetRequiredBTC is the smallest starting stack whose drawdown lasts to life expectancy.
	TargetRequiredBTC SolveTarget = "required_btc"
	// TargetMaxWithdrawal is the largest annual income (today's money) that never depletes.
	TargetMaxWithdrawal SolveTarget = "max_withdrawal"
)

// ParseSolveTarget resolves a target name as given on the command line or in JSON.
func ParseSolveTarget(s string) (SolveTarget, error) {
	switch SolveTarget(s) {
	case TargetRequiredBTC, "btc", "required":
		return TargetRequiredBTC, nil
	case TargetMaxWithdrawal, "withdrawal", "income":
		return TargetMaxWithdrawal, nil
	}
	return "", &BreakEvenError{Operation: "parse_target", Message: "unknown target " + s}
}

// Request defines the parameters for a solver run
type Request struct {
	Plan          *domain.RetirementPlan
	Target        SolveTarget
	Scenario      domain.ScenarioName // overrides the plan's scenario when set
	MaxIterations int                 // Maximum solver iterations
	Tolerance     decimal.Decimal     // Relative width of the final bracket
}

// Validate checks that the request can be solved
func (r *Request) Validate() error {
	if r.Plan == nil {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "a base plan is required",
		}
	}
	if r.MaxIterations < 0 {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "max iterations cannot be negative",
		}
	}
	if r.Tolerance.IsNegative() || r.Tolerance.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "tolerance must be in [0, 1)",
		}
	}
	return nil
}

// Result contains the outcome of a solver run
type Result struct {
	Target          SolveTarget         `json:"target"`
	Scenario        domain.ScenarioName `json:"scenario"`
	Converged       bool                `json:"converged"`
	Iterations      int                 `json:"iterations"`
	ConvergenceInfo string              `json:"convergenceInfo"`

	// Value is BTC for TargetRequiredBTC and annual fiat for TargetMaxWithdrawal.
	Value decimal.Decimal `json:"value"`

	// The plan's own value for the same parameter, and Value minus it.
	BaseValue    decimal.Decimal `json:"baseValue"`
	DiffFromBase decimal.Decimal `json:"diffFromBase"`

	// Plan outcome evaluated at Value
	Outcome *domain.RetirementOutcome `json:"outcome,omitempty"`
}

// Unit names the unit of Value for display.
func (r *Result) Unit() string {
	if r.Target == TargetRequiredBTC {
		return "BTC"
	}
	return "per year"
}

// ScenarioSweep contains one result per macro scenario
type ScenarioSweep struct {
	Target          SolveTarget `json:"target"`
	Results         []Result    `json:"results"`
	Recommendations []string    `json:"recommendations"`
}

// SolverOptions configures the solver algorithm
type SolverOptions struct {
	MaxIterations int             // Maximum iterations, bracketing included
	Tolerance     decimal.Decimal // Relative convergence tolerance
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		MaxIterations: 100,
		Tolerance:     decimal.New(1, -6),
	}
}

// BreakEvenError represents errors from break-even solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
