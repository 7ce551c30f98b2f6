package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rgehrsitz/btcgo/internal/breakeven"
	"github.com/rgehrsitz/btcgo/internal/calculation"
	"github.com/rgehrsitz/btcgo/internal/compare"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/history"
	"github.com/shopspring/decimal"
)

// Handler serves the v1 endpoints.
type Handler struct {
	config  *domain.Configuration
	engine  *calculation.CalculationEngine
	compare *compare.CompareEngine
	data    *history.DataManager
	prices  PriceProvider

	now func() time.Time
}

func (h *Handler) today() time.Time {
	if h.now != nil {
		return domain.TruncateToDay(h.now())
	}
	return domain.TruncateToDay(time.Now())
}

// referencePrice returns given when positive, otherwise the live price.
func (h *Handler) referencePrice(given decimal.Decimal) (decimal.Decimal, error) {
	if given.IsPositive() {
		return given, nil
	}
	if given.IsNegative() {
		return decimal.Zero, domain.NewValidationError("reference_price", "must be positive, got %s", given)
	}
	if h.prices == nil {
		return decimal.Zero, &domain.ValidationError{Field: "reference_price", Message: "not provided and no live price feed", Cause: domain.ErrMissingReferencePrice}
	}
	return h.prices.ReferencePrice()
}

// fiatReferencePrice requires an explicit price for non-base currencies since
// the live feed quotes only the base currency.
func (h *Handler) fiatReferencePrice(currency string, given decimal.Decimal) (decimal.Decimal, error) {
	if c := strings.ToUpper(currency); c != "" && c != history.BaseCurrency && !given.IsPositive() {
		return decimal.Zero, domain.NewValidationError("reference_price", "is required for %s", c)
	}
	return h.referencePrice(given)
}

func (h *Handler) series(currency string) (*history.Series, error) {
	if h.data == nil {
		return nil, errDataUnavailable
	}
	return h.data.Series(currency)
}

func (h *Handler) defaults() domain.RetirementPlan {
	if h.config == nil {
		return domain.RetirementPlan{}
	}
	return h.config.Defaults
}

// Health reports liveness and whether data and prices are available.
func (h *Handler) Health(c *gin.Context) {
	_, hasPrice := h.latest()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"data":   h.data != nil,
		"price":  hasPrice,
	})
}

func (h *Handler) latest() (domain.Quote, bool) {
	if h.prices == nil {
		return domain.Quote{}, false
	}
	return h.prices.Latest()
}

// GetPrice returns the latest quote.
func (h *Handler) GetPrice(c *gin.Context) {
	q, ok := h.latest()
	if !ok {
		writeError(c, &domain.ValidationError{Field: "reference_price", Message: "no quote received yet", Cause: domain.ErrMissingReferencePrice})
		return
	}
	_, err := h.prices.ReferencePrice()
	c.JSON(http.StatusOK, PriceResponse{Symbol: q.Symbol, Price: q.Price, At: q.At, Stale: err != nil})
}

// ListScenarios returns the configured scenarios, bull first.
func (h *Handler) ListScenarios(c *gin.Context) {
	out := make([]ScenarioInfo, 0, 3)
	for _, name := range domain.AllScenarioNames() {
		spec, err := h.engine.Scenario(name)
		if err != nil {
			continue
		}
		out = append(out, ScenarioInfo{
			Name:             name,
			Title:            name.Title(),
			AnnualGrowthRate: spec.AnnualGrowthRate,
			Anchors:          len(spec.Anchors),
		})
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": out})
}

// ListTemplates returns the what-if templates usable with compare.
func (h *Handler) ListTemplates(c *gin.Context) {
	registry := h.compare.TemplateRegistry
	names := registry.List()
	out := make([]TemplateInfo, 0, len(names))
	for _, name := range names {
		t, _ := registry.Get(name)
		out = append(out, TemplateInfo{Name: t.Name, Description: t.Description})
	}
	c.JSON(http.StatusOK, gin.H{"templates": out})
}

// Convert converts between fiat, BTC and sats.
func (h *Handler) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	price, err := h.referencePrice(req.ReferencePrice)
	if err != nil {
		writeError(c, err)
		return
	}

	var (
		fiat, btc decimal.Decimal
		sats      int64
	)
	switch strings.ToLower(req.Unit) {
	case "", "fiat", "usd":
		fiat, btc = req.Amount, req.Amount.Div(price)
		sats, err = calculation.ToSats(req.Amount, price)
	case "btc":
		fiat, btc = req.Amount.Mul(price), req.Amount
		sats, err = calculation.BTCToSats(req.Amount)
	case "sats", "sat":
		if !req.Amount.IsInteger() || req.Amount.IsNegative() {
			err = domain.NewValidationError("amount", "sats must be a non-negative whole number, got %s", req.Amount)
			break
		}
		sats = req.Amount.IntPart()
		btc = calculation.SatsToBTC(sats)
		fiat, err = calculation.FromSats(sats, price)
	default:
		err = domain.NewValidationError("unit", "unknown unit %q (fiat, btc, sats)", req.Unit)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := convertResponse(fiat, btc, sats, price)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Regret values a historical lump-sum purchase.
func (h *Handler) Regret(c *gin.Context) {
	var req RegretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	series, err := h.series(req.Currency)
	if err != nil {
		writeError(c, err)
		return
	}
	invest, err := parseOptionalDate("invest_date", req.InvestDate, time.Time{})
	if err != nil {
		writeError(c, err)
		return
	}
	ref, err := parseOptionalDate("reference_date", req.ReferenceDate, h.today())
	if err != nil {
		writeError(c, err)
		return
	}
	price, err := h.fiatReferencePrice(req.Currency, req.ReferencePrice)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := calculation.NewRegretCalculator(series).LumpSum(calculation.RegretRequest{
		InvestDate:     invest,
		ReferenceDate:  ref,
		Amount:         req.Amount,
		ReferencePrice: price,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DCA values a historical recurring purchase plan.
func (h *Handler) DCA(c *gin.Context) {
	var req DCARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	series, err := h.series(req.Currency)
	if err != nil {
		writeError(c, err)
		return
	}
	start, err := parseOptionalDate("start_date", req.StartDate, time.Time{})
	if err != nil {
		writeError(c, err)
		return
	}
	end, err := parseOptionalDate("end_date", req.EndDate, time.Time{})
	if err != nil {
		writeError(c, err)
		return
	}
	ref, err := parseOptionalDate("reference_date", req.ReferenceDate, time.Time{})
	if err != nil {
		writeError(c, err)
		return
	}
	freq, err := domain.ParseContributionFrequency(req.Frequency)
	if err != nil {
		writeError(c, err)
		return
	}
	price, err := h.fiatReferencePrice(req.Currency, req.ReferencePrice)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := calculation.NewRegretCalculator(series).DCA(calculation.DCARequest{
		StartDate:      start,
		EndDate:        end,
		Amount:         req.Amount,
		InitialAmount:  req.InitialAmount,
		Frequency:      freq,
		ReferencePrice: price,
		ReferenceDate:  ref,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// planFromRequest overlays req on the defaults and fills in the price.
func (h *Handler) planFromRequest(req *RetirementRequest) (*domain.RetirementPlan, error) {
	plan, err := req.apply(h.defaults())
	if err != nil {
		return nil, err
	}
	price, err := h.referencePrice(req.ReferencePrice)
	if err != nil {
		return nil, err
	}
	plan.ReferencePrice = price
	if plan.StartYear == 0 {
		plan.StartYear = h.today().Year()
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// Retirement plans accumulation and drawdown under one or all scenarios.
func (h *Handler) Retirement(c *gin.Context) {
	var req RetirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.planFromRequest(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := RetirementResponse{Plan: plan}
	if req.allScenarios() {
		resp.Outcomes, err = h.engine.RunScenarios(plan)
	} else {
		var out *domain.RetirementOutcome
		out, err = h.engine.RunRetirementPlan(plan)
		resp.Outcomes = []*domain.RetirementOutcome{out}
	}
	if err != nil {
		writeError(c, err)
		return
	}

	if len(req.Compare) > 0 {
		resp.Comparison, err = h.compare.Compare(c.Request.Context(), plan, compare.CompareOptions{Templates: req.Compare})
		if err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Yield simulates a yield strategy along a scenario's projected prices.
func (h *Handler) Yield(c *gin.Context) {
	var req YieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var defaults domain.YieldDefaults
	if h.config != nil {
		defaults = h.config.Yield
	}
	cfg := domain.YieldSimConfig{
		SimulationConfig: domain.SimulationConfig{
			InitialCapitalFiat:       req.InitialFiat,
			PeriodicContributionFiat: req.ContributionFiat,
			HorizonPeriods:           req.Periods,
		},
		PeriodicYieldRate: defaults.PeriodicYieldRate,
	}
	if cfg.HorizonPeriods == 0 {
		cfg.HorizonPeriods = defaults.HorizonPeriods
	}
	if req.PeriodicYieldRate != nil {
		cfg.PeriodicYieldRate = *req.PeriodicYieldRate
	}

	freq := req.Frequency
	if freq == "" {
		freq = string(defaults.Frequency)
	}
	var err error
	if cfg.ContributionFrequency, err = domain.ParseContributionFrequency(freq); err != nil {
		writeError(c, err)
		return
	}
	reinvest := req.Reinvest
	if reinvest == "" {
		reinvest = defaults.Reinvest
	}
	if cfg.Reinvest, err = domain.ParseReinvestPolicy(reinvest); err != nil {
		writeError(c, err)
		return
	}
	if req.Scenario != "" {
		name, err := domain.ParseScenarioName(req.Scenario)
		if err != nil {
			writeError(c, err)
			return
		}
		if cfg.Scenario, err = h.engine.Scenario(name); err != nil {
			writeError(c, err)
			return
		}
	}
	price, err := h.referencePrice(req.ReferencePrice)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := h.engine.RunYield(cfg, price)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, YieldResponse{
		Final:          res.Final(),
		TotalIncome:    res.TotalIncome(),
		TotalReturnPct: res.TotalReturnPct(),
		Years:          res.AggregateYearly(),
		Snapshots:      res.Snapshots,
	})
}

// BreakEven solves for the required stack or the sustainable income.
func (h *Handler) BreakEven(c *gin.Context) {
	var req BreakEvenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	target, err := breakeven.ParseSolveTarget(req.Target)
	if err != nil {
		writeError(c, err)
		return
	}
	plan, err := h.planFromRequest(&req.RetirementRequest)
	if err != nil {
		writeError(c, err)
		return
	}

	solver := breakeven.NewDefaultSolver(h.engine)
	ctx := c.Request.Context()
	if req.AllScenarios {
		sweep, err := solver.SolveAcrossScenarios(ctx, plan, target)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, sweep)
		return
	}

	res, err := solver.Solve(ctx, breakeven.Request{
		Plan:          plan,
		Target:        target,
		MaxIterations: req.MaxIterations,
		Tolerance:     req.Tolerance,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HistoryRange returns stored prices between start and end inclusive.
// Both bounds default to the edges of the stored data.
func (h *Handler) HistoryRange(c *gin.Context) {
	currency := strings.ToUpper(c.DefaultQuery("currency", history.BaseCurrency))
	series, err := h.series(currency)
	if err != nil {
		writeError(c, err)
		return
	}
	start, err := parseOptionalDate("start", c.Query("start"), series.MinDate())
	if err != nil {
		writeError(c, err)
		return
	}
	end, err := parseOptionalDate("end", c.Query("end"), series.MaxDate())
	if err != nil {
		writeError(c, err)
		return
	}
	points, err := series.PriceRange(start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, HistoryRangeResponse{Currency: currency, Start: start, End: end, Points: points})
}
