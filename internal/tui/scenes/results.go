package scenes

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/tui/components"
	"github.com/rgehrsitz/btcgo/internal/tui/tuistyles"
)

// ResultsModel renders the outcome of the planner's current scenario.
type ResultsModel struct {
	outcome  *domain.RetirementOutcome
	previous *domain.RetirementOutcome
	width    int
	height   int
}

// NewResultsModel creates a new results scene model
func NewResultsModel() *ResultsModel {
	return &ResultsModel{width: 80}
}

// SetOutcome shows out. The outcome it replaces is kept to draw trends.
func (m *ResultsModel) SetOutcome(out *domain.RetirementOutcome) {
	if m.outcome != nil && out != nil && m.outcome.Scenario == out.Scenario {
		m.previous = m.outcome
	} else {
		m.previous = nil
	}
	m.outcome = out
}

// Outcome returns the outcome on display.
func (m *ResultsModel) Outcome() *domain.RetirementOutcome {
	return m.outcome
}

// SetSize updates the scene dimensions
func (m *ResultsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders metrics, goal coverage and the balance charts.
func (m *ResultsModel) View() string {
	if m.outcome == nil {
		return tuistyles.InfoStyle.Render("Adjust a parameter to compute the plan")
	}
	o := m.outcome

	header := tuistyles.TitleStyle.Render(fmt.Sprintf("%s scenario at retirement (age %d)", o.Scenario.Title(), o.Plan.RetirementAge))

	goal := components.NewProgressBar(o.SWRIncomeReal, o.Plan.TargetAnnualIncome).
		WithLabel("Sustainable income vs target").
		WithWidth(max(10, min(40, m.width/3)))

	var status string
	switch {
	case o.DepletionAge != nil:
		status = tuistyles.ErrorStyle.Render(fmt.Sprintf("Bitcoin runs out at age %d", *o.DepletionAge))
	case o.MetGoal:
		status = tuistyles.MetricPositiveStyle.Render("Goal met")
	default:
		status = tuistyles.MetricNegativeStyle.Render("Short of goal by " + tuistyles.FormatBTC(o.BTCGap.InexactFloat64()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		components.MetricGrid(m.metricCards(), 3),
		goal.Render(),
		status,
		"",
		m.charts(),
	)
}

func (m *ResultsModel) metricCards() []*components.MetricCard {
	o, p := m.outcome, m.previous

	stack := components.NewBTCCard("BTC at retirement", o.BTCAtRetirement)
	price := components.NewCurrencyCard("Price at retirement", o.PriceAtRetirement)
	worth := components.NewCurrencyCard("Patrimony", o.PatrimonyAtRetirement)
	income := components.NewCurrencyCard("SWR income (real)", o.SWRIncomeReal).WithHighlight(o.MetGoal)
	slices := components.NewCurrencyCard("Slices income", o.SlicesIncomeNominal).
		WithDescription("per year, nominal")
	required := components.NewBTCCard("BTC needed (SWR)", o.RequiredBTCSWR)

	if p != nil {
		stack.WithBTCDelta(p.BTCAtRetirement, o.BTCAtRetirement)
		price.WithCurrencyDelta(p.PriceAtRetirement, o.PriceAtRetirement)
		worth.WithCurrencyDelta(p.PatrimonyAtRetirement, o.PatrimonyAtRetirement)
		income.WithCurrencyDelta(p.SWRIncomeReal, o.SWRIncomeReal)
		slices.WithCurrencyDelta(p.SlicesIncomeNominal, o.SlicesIncomeNominal)
		required.WithBTCDelta(p.RequiredBTCSWR, o.RequiredBTCSWR)
	}

	return []*components.MetricCard{stack, price, worth, income, slices, required}
}

// charts draws the yearly BTC balance and fiat value across both phases.
func (m *ResultsModel) charts() string {
	ages, btc, fiat := YearlyPath(m.outcome)
	if len(ages) == 0 {
		return ""
	}
	labels := make([]string, len(ages))
	for i, a := range ages {
		labels[i] = strconv.Itoa(a)
	}

	width := max(30, min(m.width/2-2, 70))
	btcChart := components.NewASCIIChart("BTC balance").
		AddSeries("BTC", btc, tuistyles.ColorChartLine1).
		WithLabels(labels).
		WithSize(width, 8).
		WithValueFormat(components.FormatBTCAxis)
	fiatChart := components.NewASCIIChart("Fiat value").
		AddSeries("Value", fiat, tuistyles.ColorChartLine2).
		WithLabels(labels).
		WithSize(width, 8).
		WithXAxisLabel("age")

	return lipgloss.JoinHorizontal(lipgloss.Top, btcChart.Render(), "  ", fiatChart.Render())
}

// YearlyPath samples an outcome once a year through accumulation and
// drawdown, returning the age, BTC balance and fiat value at each sample.
func YearlyPath(o *domain.RetirementOutcome) (ages []int, btc, fiat []float64) {
	if o == nil {
		return nil, nil, nil
	}
	ppy := max(o.Plan.Frequency.PeriodsPerYear(), 1)
	add := func(age int, s domain.SimulationSnapshot) {
		ages = append(ages, age)
		btc = append(btc, s.BTCBalance.InexactFloat64())
		fiat = append(fiat, s.FiatValue.InexactFloat64())
	}
	if o.Accumulation != nil {
		for i, s := range o.Accumulation.Snapshots {
			if i%ppy == 0 {
				add(o.Plan.CurrentAge+i/ppy, s)
			}
		}
	}
	if o.Drawdown != nil {
		for i, s := range o.Drawdown.Snapshots {
			if i > 0 && i%ppy == 0 {
				add(o.Plan.RetirementAge+i/ppy, s)
			}
		}
	}
	return ages, btc, fiat
}

