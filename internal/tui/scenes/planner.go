package scenes

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/tui/components"
	"github.com/rgehrsitz/btcgo/internal/tui/tuimsg"
	"github.com/rgehrsitz/btcgo/internal/tui/tuistyles"
)

// Slider keys
const (
	SliderCurrentBTC      = "current_btc"
	SliderMonthlyDCA      = "monthly_dca"
	SliderYearsToRetire   = "years_to_retirement"
	SliderRetirementYears = "retirement_years"
	SliderTargetIncome    = "target_income"
	SliderInflation       = "inflation"
	SliderSWR             = "swr"
	SliderScenario        = "scenario"
)

// PlannerKeyMap holds the planner's key bindings.
type PlannerKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	BigLeft  key.Binding
	BigRight key.Binding
	Reset    key.Binding
}

// DefaultPlannerKeyMap returns the arrow and vim style bindings.
func DefaultPlannerKeyMap() PlannerKeyMap {
	return PlannerKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "less")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "more")),
		BigLeft:  key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "less ×10")),
		BigRight: key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("L", "more ×10")),
		Reset:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
	}
}

// ShortHelp implements help.KeyMap.
func (k PlannerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.BigRight, k.Reset}
}

// FullHelp implements help.KeyMap.
func (k PlannerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Left, k.Right, k.BigLeft, k.BigRight}, {k.Reset}}
}

// PlannerModel edits a retirement plan through sliders.
type PlannerModel struct {
	base    *domain.RetirementPlan
	sliders []*components.ParameterSlider
	focused int
	keys    PlannerKeyMap
	help    help.Model
	width   int
	height  int
}

// NewPlannerModel creates an empty planner; call SetBase before use.
func NewPlannerModel() *PlannerModel {
	return &PlannerModel{
		keys: DefaultPlannerKeyMap(),
		help: help.New(),
	}
}

// SetBase resets the sliders to plan's values.
func (m *PlannerModel) SetBase(plan *domain.RetirementPlan) {
	if plan == nil {
		return
	}
	m.base = plan.DeepCopy()
	m.buildSliders()
}

// SetReferencePrice updates the price the plan is evaluated at.
func (m *PlannerModel) SetReferencePrice(price decimal.Decimal) {
	if m.base != nil {
		m.base.ReferencePrice = price
	}
}

func (m *PlannerModel) buildSliders() {
	p := m.base
	monthly := p.ContributionFiat.
		Mul(decimal.NewFromInt(int64(p.Frequency.PeriodsPerYear()))).
		Div(decimal.NewFromInt(12))

	scenario := p.Scenario
	if scenario == "" {
		scenario = domain.ScenarioBase
	}
	names := make([]string, 0, 3)
	for _, n := range domain.AllScenarioNames() {
		names = append(names, n.String())
	}

	m.sliders = []*components.ParameterSlider{
		components.NewParameterSlider(SliderCurrentBTC, "Current BTC", p.CurrentBTC.InexactFloat64(), 0, 21, 0.01).
			WithUnit(" BTC").WithDescription("Bitcoin held today"),
		components.NewParameterSlider(SliderMonthlyDCA, "Monthly DCA", monthly.InexactFloat64(), 0, 10000, 50).
			WithFormat("$%.0f").WithDescription("Fiat bought every month until retirement"),
		components.NewParameterSlider(SliderYearsToRetire, "Years to retirement", float64(p.AccumulationYears()), 0, 50, 1).
			WithFormat("%.0f").WithUnit(" yrs"),
		components.NewParameterSlider(SliderRetirementYears, "Retirement years", float64(p.RetirementYears()), 1, 60, 1).
			WithFormat("%.0f").WithUnit(" yrs"),
		components.NewParameterSlider(SliderTargetIncome, "Target income", p.TargetAnnualIncome.InexactFloat64(), 0, 500000, 1000).
			WithFormat("$%.0f").WithUnit("/yr").WithDescription("Yearly spending in today's money"),
		components.NewParameterSlider(SliderInflation, "Inflation", pct(p.InflationRate), 0, 20, 0.5).
			WithFormat("%.1f").WithUnit("%"),
		components.NewParameterSlider(SliderSWR, "Safe withdrawal rate", pct(p.SafeWithdrawalRate), 0.5, 10, 0.25).
			WithFormat("%.2f").WithUnit("%"),
		components.NewChoiceSlider(SliderScenario, "Scenario", names, scenario.String()),
	}

	m.focused = min(m.focused, len(m.sliders)-1)
	for i, s := range m.sliders {
		s.SetFocused(i == m.focused)
	}
}

func pct(d decimal.Decimal) float64 {
	return d.Mul(decimal.NewFromInt(100)).InexactFloat64()
}

func fromPct(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Div(decimal.NewFromInt(100))
}

// Slider returns the slider with key k, or nil.
func (m *PlannerModel) Slider(k string) *components.ParameterSlider {
	for _, s := range m.sliders {
		if s.Key == k {
			return s
		}
	}
	return nil
}

// Focused returns the focused slider.
func (m *PlannerModel) Focused() *components.ParameterSlider {
	if len(m.sliders) == 0 {
		return nil
	}
	return m.sliders[m.focused]
}

// Plan builds the plan described by the sliders. It returns nil before
// SetBase.
func (m *PlannerModel) Plan() *domain.RetirementPlan {
	if m.base == nil {
		return nil
	}
	p := m.base.DeepCopy()
	p.CurrentBTC = decimal.NewFromFloat(m.Slider(SliderCurrentBTC).Value)
	p.Frequency = domain.FrequencyMonthly
	p.ContributionFiat = decimal.NewFromFloat(m.Slider(SliderMonthlyDCA).Value)
	p.ContributionSats = 0
	p.RetirementAge = p.CurrentAge + int(m.Slider(SliderYearsToRetire).Value)
	p.LifeExpectancy = p.RetirementAge + int(m.Slider(SliderRetirementYears).Value)
	p.TargetAnnualIncome = decimal.NewFromFloat(m.Slider(SliderTargetIncome).Value)
	p.InflationRate = fromPct(m.Slider(SliderInflation).Value)
	p.SafeWithdrawalRate = fromPct(m.Slider(SliderSWR).Value)
	p.Scenario = domain.ScenarioName(m.Slider(SliderScenario).Choice())
	return p
}

// SelectScenario moves the scenario slider and announces the change.
func (m *PlannerModel) SelectScenario(name domain.ScenarioName) tea.Cmd {
	s := m.Slider(SliderScenario)
	if s == nil || s.Choice() == name.String() {
		return nil
	}
	s.Select(name.String())
	return m.changed()
}

// SetSize updates the scene dimensions
func (m *PlannerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
}

// Update handles key presses. Any value change returns a command producing
// a PlanChangedMsg.
func (m *PlannerModel) Update(msg tea.Msg) (*PlannerModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.sliders) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		m.focus(m.focused - 1)
	case key.Matches(keyMsg, m.keys.Down):
		m.focus(m.focused + 1)
	case key.Matches(keyMsg, m.keys.Left):
		if m.Focused().Decrement() {
			return m, m.changed()
		}
	case key.Matches(keyMsg, m.keys.Right):
		if m.Focused().Increment() {
			return m, m.changed()
		}
	case key.Matches(keyMsg, m.keys.BigLeft):
		if m.step(-10) {
			return m, m.changed()
		}
	case key.Matches(keyMsg, m.keys.BigRight):
		if m.step(10) {
			return m, m.changed()
		}
	case key.Matches(keyMsg, m.keys.Reset):
		m.buildSliders()
		return m, m.changed()
	}
	return m, nil
}

func (m *PlannerModel) focus(i int) {
	if i < 0 || i >= len(m.sliders) {
		return
	}
	m.sliders[m.focused].SetFocused(false)
	m.focused = i
	m.sliders[i].SetFocused(true)
}

func (m *PlannerModel) step(n int) bool {
	s := m.Focused()
	old := s.Value
	s.SetValue(s.Value + float64(n)*s.Step)
	return s.Value != old
}

func (m *PlannerModel) changed() tea.Cmd {
	plan := m.Plan()
	return func() tea.Msg {
		return tuimsg.PlanChangedMsg{Plan: plan}
	}
}

// View renders the slider list with the focused slider's description.
func (m *PlannerModel) View() string {
	if len(m.sliders) == 0 {
		return tuistyles.InfoStyle.Render("Loading plan...")
	}

	var b strings.Builder
	b.WriteString(tuistyles.TitleStyle.Render("Plan"))
	b.WriteString("\n\n")
	for _, s := range m.sliders {
		b.WriteString(s.RenderCompact())
		b.WriteString("\n")
	}
	if d := m.Focused().Description; d != "" {
		b.WriteString("\n")
		b.WriteString(tuistyles.SubtitleStyle.Render(d))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		tuistyles.BorderStyle.Render(b.String()),
		m.help.View(m.keys),
	)
}
