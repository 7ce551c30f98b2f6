package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/btcgo/internal/domain"
)

// SolveAcrossScenarios runs the same solve under every macro scenario, bull first.
func (s *Solver) SolveAcrossScenarios(ctx context.Context, plan *domain.RetirementPlan, target SolveTarget) (*ScenarioSweep, error) {
	sweep := &ScenarioSweep{Target: target}
	for _, name := range domain.AllScenarioNames() {
		res, err := s.Solve(ctx, Request{Plan: plan, Target: target, Scenario: name})
		if err != nil {
			return nil, &BreakEvenError{
				Operation: "solve_across_scenarios",
				Message:   fmt.Sprintf("%s scenario failed", name),
				Cause:     err,
			}
		}
		sweep.Results = append(sweep.Results, *res)
	}
	sweep.Recommendations = generateRecommendations(sweep)
	return sweep, nil
}

// Worst returns the least favourable result: the largest required stack or
// the smallest sustainable income.
func (sw *ScenarioSweep) Worst() *Result {
	var worst *Result
	for i := range sw.Results {
		r := &sw.Results[i]
		if worst == nil {
			worst = r
			continue
		}
		if sw.Target == TargetRequiredBTC && r.Value.GreaterThan(worst.Value) {
			worst = r
		}
		if sw.Target == TargetMaxWithdrawal && r.Value.LessThan(worst.Value) {
			worst = r
		}
	}
	return worst
}

func generateRecommendations(sw *ScenarioSweep) []string {
	var recs []string
	for _, r := range sw.Results {
		switch sw.Target {
		case TargetRequiredBTC:
			if r.DiffFromBase.IsPositive() {
				recs = append(recs, fmt.Sprintf("%s: stack %s more BTC to last to life expectancy",
					r.Scenario.Title(), r.DiffFromBase.StringFixed(8)))
			} else {
				recs = append(recs, fmt.Sprintf("%s: current holdings already cover the plan with %s BTC to spare",
					r.Scenario.Title(), r.DiffFromBase.Neg().StringFixed(8)))
			}
		case TargetMaxWithdrawal:
			if r.DiffFromBase.IsNegative() {
				recs = append(recs, fmt.Sprintf("%s: cut the income target by %s to avoid depletion",
					r.Scenario.Title(), r.DiffFromBase.Neg().StringFixed(2)))
			} else {
				recs = append(recs, fmt.Sprintf("%s: up to %s more per year is sustainable",
					r.Scenario.Title(), r.DiffFromBase.StringFixed(2)))
			}
		}
	}
	if worst := sw.Worst(); worst != nil && len(sw.Results) > 1 {
		recs = append(recs, fmt.Sprintf("Plan against the %s case to be safe in every scenario", worst.Scenario.Title()))
	}
	return recs
}
