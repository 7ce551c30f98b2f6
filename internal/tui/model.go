// Package tui is the interactive retirement planner built on bubbletea.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/btcgo/internal/calculation"
	"github.com/rgehrsitz/btcgo/internal/config"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/pricefeed"
	"github.com/rgehrsitz/btcgo/internal/tui/scenes"
)

// Model represents the entire application state
type Model struct {
	// Navigation
	currentScene  Scene
	previousScene Scene

	// Terminal dimensions
	width  int
	height int

	// Configuration and data
	configPath string
	config     *domain.Configuration
	engine     *calculation.CalculationEngine

	// Pricing
	source         pricefeed.Source
	referencePrice decimal.Decimal
	quote          domain.Quote

	// generation numbers plan computations; only the newest result is shown
	generation int
	computing  bool
	outcomes   []*domain.RetirementOutcome

	plannerModel   *scenes.PlannerModel
	resultsModel   *scenes.ResultsModel
	scenariosModel *scenes.ScenariosModel
	keys           KeyMap

	// Error state
	err error

	// Loading state
	loading        bool
	loadingMessage string
}

// KeyMap holds the global bindings.
type KeyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Planner   key.Binding
	Scenarios key.Binding
	Back      key.Binding
}

// DefaultKeyMap returns the global bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Planner:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "planner")),
		Scenarios: key.NewBinding(key.WithKeys("s", "tab"), key.WithHelp("s", "scenarios")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

// Option configures a Model.
type Option func(*Model)

// WithReferencePrice sets a fixed current price.
func WithReferencePrice(price decimal.Decimal) Option {
	return func(m *Model) { m.referencePrice = price }
}

// WithPriceSource fetches the current price from src at startup.
func WithPriceSource(src pricefeed.Source) Option {
	return func(m *Model) { m.source = src }
}

// NewModel creates a new application model. An empty configPath uses the
// embedded defaults.
func NewModel(configPath string, opts ...Option) Model {
	m := Model{
		currentScene:   ScenePlanner,
		configPath:     configPath,
		plannerModel:   scenes.NewPlannerModel(),
		resultsModel:   scenes.NewResultsModel(),
		scenariosModel: scenes.NewScenariosModel(),
		keys:           DefaultKeyMap(),
		width:          80,
		height:         24,
		loading:        true,
		loadingMessage: "Loading configuration...",
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{loadConfigCmd(m.configPath)}
	if m.source != nil {
		cmds = append(cmds, fetchPriceCmd(m.source))
	}
	return tea.Batch(cmds...)
}

// loadConfigCmd returns a command that loads the configuration file
func loadConfigCmd(path string) tea.Cmd {
	return func() tea.Msg {
		var (
			cfg *domain.Configuration
			err error
		)
		if path == "" {
			cfg, err = config.DefaultConfiguration()
		} else {
			cfg, err = config.NewInputParser().LoadFromFile(path)
		}
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ConfigLoadedMsg{Config: cfg}
	}
}

// fetchPriceCmd fetches one quote from src.
func fetchPriceCmd(src pricefeed.Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		q, err := src.Fetch(ctx)
		return PriceUpdatedMsg{Quote: q, Err: err}
	}
}

// computePlanCmd evaluates plan under every scenario off the UI goroutine.
func computePlanCmd(engine *calculation.CalculationEngine, plan *domain.RetirementPlan, generation int) tea.Cmd {
	return func() tea.Msg {
		outcomes, err := engine.RunScenarios(plan)
		return PlanComputedMsg{
			Generation: generation,
			Plan:       plan,
			Outcomes:   outcomes,
			Err:        err,
		}
	}
}

// recompute starts a new computation generation for plan.
func (m *Model) recompute(plan *domain.RetirementPlan) tea.Cmd {
	if m.engine == nil || plan == nil {
		return nil
	}
	m.generation++
	m.computing = true
	return computePlanCmd(m.engine, plan, m.generation)
}
