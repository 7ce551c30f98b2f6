package output

import (
	"fmt"
	"strconv"

	"github.com/rgehrsitz/btcgo/internal/calculation"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// RetirementReport summarizes one or more scenario outcomes of the same plan.
// A single outcome also gets its yearly schedule.
func RetirementReport(outcomes ...*domain.RetirementOutcome) *Report {
	r := NewReport("BITCOIN RETIREMENT PLAN")
	r.Assumptions = DefaultAssumptions
	if len(outcomes) == 0 {
		return r
	}

	plan := outcomes[0].Plan
	if plan.Name != "" {
		r.AddText("Plan", plan.Name)
	}
	r.AddText("Ages", fmt.Sprintf("%d now, retire at %d, horizon %d", plan.CurrentAge, plan.RetirementAge, plan.LifeExpectancy))
	r.AddMetric("Current BTC", plan.CurrentBTC, KindBTC)
	r.AddMetric("Reference price", plan.ReferencePrice, KindCurrency)
	r.AddMetric("Target income (today)", plan.TargetAnnualIncome, KindCurrency)

	if len(outcomes) == 1 {
		o := outcomes[0]
		r.AddText("Scenario", o.Scenario.Title())
		r.AddMetric("Price at retirement", o.PriceAtRetirement, KindCurrency)
		r.AddMetric("BTC at retirement", o.BTCAtRetirement, KindBTC)
		r.AddMetric("Patrimony at retirement", o.PatrimonyAtRetirement, KindCurrency)
		r.AddMetric("SWR income (nominal)", o.SWRIncomeNominal, KindCurrency)
		r.AddMetric("SWR income (real)", o.SWRIncomeReal, KindCurrency)
		r.AddMetric("Slices income (real)", o.SlicesIncomeReal, KindCurrency)
		r.AddMetric("Required BTC (SWR)", o.RequiredBTCSWR, KindBTC)
		r.AddMetric("BTC gap", o.BTCGap, KindBTC)
		r.AddText("Goal met", yesNo(o.MetGoal))
		r.Tables = append(r.Tables, scheduleTable(o))
		r.Simulations = append(r.Simulations, o.Accumulation, o.Drawdown)
	}

	t := Table{
		Title:   "Scenario outcomes",
		Columns: []string{"Scenario", "Price @ Retire", "BTC @ Retire", "Patrimony", "SWR Income (real)", "Goal", "Runs Out"},
	}
	for _, o := range outcomes {
		runsOut := "never"
		if o.DepletionAge != nil {
			runsOut = "age " + strconv.Itoa(*o.DepletionAge)
		}
		t.Rows = append(t.Rows, []string{
			o.Scenario.Title(),
			FormatCurrency(o.PriceAtRetirement),
			o.BTCAtRetirement.StringFixed(4),
			FormatCurrency(o.PatrimonyAtRetirement),
			FormatCurrency(o.SWRIncomeReal),
			yesNo(o.MetGoal),
			runsOut,
		})
		if o.DepletionAge != nil {
			r.Notes = append(r.Notes, fmt.Sprintf("%s scenario runs out of bitcoin at age %d", o.Scenario.Title(), *o.DepletionAge))
		}
	}
	r.Tables = append(r.Tables, t)
	return r
}

// scheduleTable samples both phases once per year.
func scheduleTable(o *domain.RetirementOutcome) Table {
	ppy := o.Plan.Frequency.PeriodsPerYear()
	if ppy <= 0 {
		ppy = 1
	}
	t := Table{
		Title:   "Yearly schedule",
		Columns: []string{"Age", "Phase", "Price", "BTC", "Value", "Flow"},
	}
	add := func(age int, phase domain.Phase, s domain.SimulationSnapshot) {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(age),
			string(phase),
			FormatCurrency(s.Price),
			s.BTCBalance.StringFixed(8),
			FormatCurrency(s.FiatValue),
			FormatCurrency(s.ContributionOrWithdrawal),
		})
	}
	if o.Accumulation != nil {
		for i, s := range o.Accumulation.Snapshots {
			if i%ppy == 0 {
				add(o.Plan.CurrentAge+i/ppy, domain.PhaseAccumulation, s)
			}
		}
	}
	if o.Drawdown != nil {
		for i, s := range o.Drawdown.Snapshots {
			if i > 0 && i%ppy == 0 {
				add(o.Plan.RetirementAge+i/ppy, domain.PhaseDrawdown, s)
			}
		}
	}
	return t
}

// RegretReport summarizes a lump-sum purchase.
func RegretReport(res *calculation.RegretResult) *Report {
	r := NewReport("LUMP-SUM REGRET")
	r.AddText("Invested on", res.Request.InvestDate.Format(domain.DateLayout))
	if !res.EffectivePriceDate.Equal(res.Request.InvestDate) {
		r.AddText("Priced on", res.EffectivePriceDate.Format(domain.DateLayout))
	}
	r.AddMetric("Amount", res.Request.Amount, KindCurrency)
	r.AddMetric("Price then", res.PriceThen, KindCurrency)
	r.AddMetric("Bitcoin bought", res.Quantity, KindBTC)
	r.AddMetric("Satoshis", decimal.NewFromInt(res.Sats), KindSats)
	r.AddMetric("Value today", res.PresentValue, KindCurrency)
	r.AddMetric("Gain", res.Gain, KindCurrency)
	r.AddMetric("Gain", res.GainPct, KindPercent)
	r.AddMetric("Annualized", res.Annualized.Mul(decimal.NewFromInt(100)), KindPercent)
	r.AddMetric("Years", res.Years.Round(2), KindNumber)

	if len(res.ValueHistory) > 0 {
		t := Table{Title: "Value history", Columns: []string{"Date", "Value"}}
		for _, p := range res.ValueHistory {
			t.Rows = append(t.Rows, []string{p.Date.Format(domain.DateLayout), FormatCurrency(p.Value)})
		}
		r.Tables = append(r.Tables, t)
	}
	return r
}

// DCAReport summarizes a dollar-cost averaging plan.
func DCAReport(res *calculation.DCAResult) *Report {
	r := NewReport("DOLLAR-COST AVERAGING")
	r.AddText("Period", res.Request.StartDate.Format(domain.DateLayout)+" to "+res.Request.EndDate.Format(domain.DateLayout))
	r.AddText("Frequency", string(res.Request.Frequency))
	r.AddMetric("Purchases", decimal.NewFromInt(int64(res.Purchases)), KindNumber)
	r.AddMetric("Total invested", res.TotalInvested, KindCurrency)
	r.AddMetric("Bitcoin stacked", res.BTC, KindBTC)
	r.AddMetric("Satoshis", decimal.NewFromInt(res.Sats), KindSats)
	r.AddMetric("Value today", res.PresentValue, KindCurrency)
	r.AddMetric("Gain", res.Gain, KindCurrency)
	r.AddMetric("Gain", res.GainPct, KindPercent)
	r.AddMetric("Annualized", res.Annualized.Mul(decimal.NewFromInt(100)), KindPercent)
	r.AddMetric("Average cost basis", res.AvgCostBasis, KindCurrency)

	t := Table{Title: "Purchases", Columns: []string{"Date", "Price", "Invested", "BTC", "Value"}}
	for _, row := range res.Rows {
		t.Rows = append(t.Rows, []string{
			row.Date.Format(domain.DateLayout),
			FormatCurrency(row.Price),
			FormatCurrency(row.Invested),
			row.BTC.StringFixed(8),
			FormatCurrency(row.Value),
		})
	}
	r.Tables = append(r.Tables, t)
	if res.Simulation != nil {
		r.Simulations = append(r.Simulations, res.Simulation)
	}
	return r
}

// YieldReport summarizes a fixed-yield simulation year by year.
func YieldReport(res *domain.YieldResult) *Report {
	r := NewReport("BITCOIN YIELD")
	final := res.Final()
	r.AddMetric("Final BTC", final.BTCBalance, KindBTC)
	r.AddMetric("Final value", final.FiatValue, KindCurrency)
	r.AddMetric("Contributed", final.CumulativeFiatContributed, KindCurrency)
	r.AddMetric("Income paid", res.TotalIncome(), KindCurrency)
	r.AddMetric("Total return", res.TotalReturnPct(), KindPercent)

	t := Table{
		Title:   "Yearly breakdown",
		Columns: []string{"Year", "Start BTC", "End BTC", "Reinvested BTC", "Income", "Contributed", "End Value"},
	}
	for _, y := range res.AggregateYearly() {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(y.Year),
			y.StartBTC.StringFixed(8),
			y.EndBTC.StringFixed(8),
			y.ReinvestedBTC.StringFixed(8),
			FormatCurrency(y.IncomeFiat),
			FormatCurrency(y.Contributed),
			FormatCurrency(y.EndFiatValue),
		})
	}
	r.Tables = append(r.Tables, t)
	return r
}

// SatsReport summarizes a sats stacking projection.
func SatsReport(res *calculation.SatsProjection) *Report {
	r := NewReport("SATS STACKING")
	r.AddMetric("Starting sats", decimal.NewFromInt(res.InitialSats), KindSats)
	r.AddMetric("First-year sats", decimal.NewFromInt(res.AnnualSats), KindSats)
	r.AddMetric("Final sats", decimal.NewFromInt(res.FinalSats), KindSats)
	r.AddMetric("Final BTC", res.FinalBTC, KindBTC)
	r.AddMetric("Value at today's price", res.ValueAtCurrent, KindCurrency)
	r.AddMetric("Projected value", res.ValueProjected, KindCurrency)
	r.AddMetric("Sats per unit now", decimal.NewFromInt(res.SatsPerUnitNow), KindSats)
	r.AddMetric("Sats per unit then", decimal.NewFromInt(res.SatsPerUnitProjected), KindSats)

	t := Table{Title: "Stacking table", Columns: []string{"Age", "Added", "Total", "Price", "Value"}}
	for _, y := range res.Years {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(y.Age),
			FormatSats(y.SatsAdded),
			FormatSats(y.TotalSats),
			FormatCurrency(y.Price),
			FormatCurrency(y.Value),
		})
	}
	r.Tables = append(r.Tables, t)
	return r
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
