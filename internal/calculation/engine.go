package calculation

import (
	"fmt"
	"log/slog"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/history"
	"github.com/shopspring/decimal"
)

// Logger is the minimal logging surface the engine reports through.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger adapts a structured logger to Logger. A nil logger uses
// slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l: l}
}

func (s slogLogger) Debugf(format string, args ...any) { s.l.Debug(fmt.Sprintf(format, args...)) }
func (s slogLogger) Infof(format string, args ...any)  { s.l.Info(fmt.Sprintf(format, args...)) }
func (s slogLogger) Warnf(format string, args ...any)  { s.l.Warn(fmt.Sprintf(format, args...)) }
func (s slogLogger) Errorf(format string, args ...any) { s.l.Error(fmt.Sprintf(format, args...)) }

// CalculationEngine orchestrates the calculators over the configured
// scenarios and the loaded historical series. It keeps no state between
// calls; every Run method returns fresh results.
type CalculationEngine struct {
	Scenarios domain.ScenarioSet
	Series    *history.Series
	Logger    Logger
	Debug     bool // Enable debug output for detailed calculations
}

// NewCalculationEngine creates an engine for the given scenarios.
func NewCalculationEngine(scenarios domain.ScenarioSet) *CalculationEngine {
	return &CalculationEngine{
		Scenarios: scenarios,
		Logger:    NopLogger{},
	}
}

// SetLogger installs l; nil restores the no-op logger.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

func (ce *CalculationEngine) logger() Logger {
	if ce.Logger == nil {
		return NopLogger{}
	}
	return ce.Logger
}

func (ce *CalculationEngine) debugf(format string, args ...any) {
	if ce.Debug {
		ce.logger().Debugf(format, args...)
	}
}

// Scenario resolves a configured scenario; "" means base.
func (ce *CalculationEngine) Scenario(name domain.ScenarioName) (domain.ScenarioSpec, error) {
	if name == "" {
		name = domain.ScenarioBase
	}
	return ce.Scenarios.Get(name)
}

// RunRegret values a historical lump-sum purchase.
func (ce *CalculationEngine) RunRegret(req RegretRequest) (*RegretResult, error) {
	res, err := NewRegretCalculator(ce.Series).LumpSum(req)
	if err != nil {
		return nil, err
	}
	ce.debugf("regret: %s on %s bought %s BTC at %s (effective %s), now worth %s",
		req.Amount, req.InvestDate.Format(domain.DateLayout), res.Quantity.StringFixed(8),
		res.PriceThen, res.EffectivePriceDate.Format(domain.DateLayout), res.PresentValue.StringFixed(2))
	return res, nil
}

// RunDCA values a historical recurring purchase plan.
func (ce *CalculationEngine) RunDCA(req DCARequest) (*DCAResult, error) {
	res, err := NewRegretCalculator(ce.Series).DCA(req)
	if err != nil {
		return nil, err
	}
	ce.debugf("dca: %d purchases, invested %s, holding %s BTC", res.Purchases, res.TotalInvested.StringFixed(2), res.BTC.StringFixed(8))
	return res, nil
}

// RunAccumulation projects cfg's scenario from startPrice and accumulates
// along it.
func (ce *CalculationEngine) RunAccumulation(cfg domain.SimulationConfig, startPrice decimal.Decimal) (*domain.SimulationResult, error) {
	prices, err := ce.project(startPrice, cfg)
	if err != nil {
		return nil, err
	}
	res, err := Accumulate(cfg, prices)
	if err != nil {
		return nil, err
	}
	ce.debugf("accumulation[%s]: %d periods, final %s BTC worth %s",
		cfg.Scenario.Name, cfg.HorizonPeriods, res.FinalBTC().StringFixed(8), res.FinalFiatValue().StringFixed(2))
	return res, nil
}

// RunDrawdown projects cfg's scenario from startPrice and draws down along
// it, continuing from start when it is non-zero.
func (ce *CalculationEngine) RunDrawdown(cfg domain.SimulationConfig, startPrice decimal.Decimal, start domain.Handoff) (*domain.SimulationResult, error) {
	prices, err := ce.project(startPrice, cfg)
	if err != nil {
		return nil, err
	}
	res, err := Drawdown(cfg, prices, start)
	if err != nil {
		return nil, err
	}
	if k, ok := res.DepletionPeriodIndex(); ok {
		ce.debugf("drawdown[%s]: depleted at period %d of %d", cfg.Scenario.Name, k, cfg.HorizonPeriods)
	} else {
		ce.debugf("drawdown[%s]: %d periods, final %s BTC", cfg.Scenario.Name, cfg.HorizonPeriods, res.FinalBTC().StringFixed(8))
	}
	return res, nil
}

// RunYield projects cfg's scenario from startPrice and simulates the yield
// strategy along it.
func (ce *CalculationEngine) RunYield(cfg domain.YieldSimConfig, startPrice decimal.Decimal) (*domain.YieldResult, error) {
	prices, err := ce.project(startPrice, cfg.SimulationConfig)
	if err != nil {
		return nil, err
	}
	res, err := SimulateYield(cfg, prices)
	if err != nil {
		return nil, err
	}
	ce.debugf("yield: %d periods at %s, final %s BTC, income %s",
		cfg.HorizonPeriods, cfg.PeriodicYieldRate, res.Final().BTCBalance.StringFixed(8), res.TotalIncome().StringFixed(2))
	return res, nil
}

// RunSats builds a sats stacking table.
func (ce *CalculationEngine) RunSats(req SatsProjectionRequest) (*SatsProjection, error) {
	res, err := ProjectSats(req)
	if err != nil {
		return nil, err
	}
	ce.debugf("sats: %d years, final %d sats", len(res.Years), res.FinalSats)
	return res, nil
}

// RunRetirementPlan evaluates plan under its own scenario and macro events.
func (ce *CalculationEngine) RunRetirementPlan(plan *domain.RetirementPlan) (*domain.RetirementOutcome, error) {
	if plan == nil {
		return nil, domain.NewValidationError("plan", "is required")
	}
	return ce.runPlan(plan, plan.Scenario)
}

// RunScenarios evaluates plan under every scenario, bull first.
func (ce *CalculationEngine) RunScenarios(plan *domain.RetirementPlan) ([]*domain.RetirementOutcome, error) {
	if plan == nil {
		return nil, domain.NewValidationError("plan", "is required")
	}
	out := make([]*domain.RetirementOutcome, 0, 3)
	for _, name := range domain.AllScenarioNames() {
		res, err := ce.runPlan(plan, name)
		if err != nil {
			return nil, fmt.Errorf("failed to run %s scenario: %w", name, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func (ce *CalculationEngine) runPlan(plan *domain.RetirementPlan, name domain.ScenarioName) (*domain.RetirementOutcome, error) {
	spec, err := ce.Scenario(name)
	if err != nil {
		return nil, err
	}
	mult, err := ce.Scenarios.MacroMultiplier(spec.Name, plan.MacroEvents)
	if err != nil {
		return nil, err
	}
	res, err := PlanRetirement(plan, spec, mult)
	if err != nil {
		return nil, err
	}
	ce.debugf("retirement[%s]: x%s, price at retirement %s, %s BTC, patrimony %s, met goal %t",
		spec.Name, mult, res.PriceAtRetirement.StringFixed(2), res.BTCAtRetirement.StringFixed(8),
		res.PatrimonyAtRetirement.StringFixed(2), res.MetGoal)
	if res.DepletionAge != nil {
		ce.logger().Warnf("%s scenario depletes the portfolio at age %d", spec.Name, *res.DepletionAge)
	}
	return res, nil
}

func (ce *CalculationEngine) project(startPrice decimal.Decimal, cfg domain.SimulationConfig) ([]domain.ProjectedPricePoint, error) {
	if cfg.HorizonPeriods <= 0 {
		return nil, cfg.Validate()
	}
	spec := cfg.Scenario
	if spec.Name == "" {
		spec.Name = domain.ScenarioBase
	}
	return CollectPrices(startPrice, cfg.HorizonPeriods+1, cfg.PeriodsPerYear(), spec)
}
