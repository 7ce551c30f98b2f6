package transform

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// TemplateRegistry manages built-in plan templates
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms
type Template struct {
	Name        string
	Description string
	Transforms  []PlanTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(name)]
	return t, ok
}

// List returns all registered template names, sorted
func (tr *TemplateRegistry) List() []string {
	return slices.Sorted(maps.Keys(tr.templates))
}

// CreateBuiltInTemplates creates a template registry with the common what-if plans
func CreateBuiltInTemplates() *TemplateRegistry {
	registry := NewTemplateRegistry()

	registry.Register(Template{
		Name:        "retire_later_5",
		Description: "Keep stacking for 5 more years before retiring",
		Transforms: []PlanTransform{
			&PostponeRetirement{Years: 5},
		},
	})

	registry.Register(Template{
		Name:        "double_dca",
		Description: "Double the periodic contribution",
		Transforms: []PlanTransform{
			&AdjustContribution{Multiplier: decimal.NewFromInt(2)},
		},
	})

	registry.Register(Template{
		Name:        "half_dca",
		Description: "Halve the periodic contribution",
		Transforms: []PlanTransform{
			&AdjustContribution{Multiplier: decimal.NewFromFloat(0.5)},
		},
	})

	registry.Register(Template{
		Name:        "swr_3pct",
		Description: "Conservative 3% safe withdrawal rate",
		Transforms: []PlanTransform{
			&SetWithdrawalRate{Rate: decimal.NewFromFloat(0.03)},
		},
	})

	registry.Register(Template{
		Name:        "swr_5pct",
		Description: "Aggressive 5% safe withdrawal rate",
		Transforms: []PlanTransform{
			&SetWithdrawalRate{Rate: decimal.NewFromFloat(0.05)},
		},
	})

	registry.Register(Template{
		Name:        "high_inflation",
		Description: "Persistent 6% inflation",
		Transforms: []PlanTransform{
			&SetInflation{Rate: decimal.NewFromFloat(0.06)},
		},
	})

	registry.Register(Template{
		Name:        "bull_case",
		Description: "Run the plan under the Bull scenario",
		Transforms: []PlanTransform{
			&SetScenario{Scenario: domain.ScenarioBull},
		},
	})

	registry.Register(Template{
		Name:        "bear_case",
		Description: "Run the plan under the Bear scenario",
		Transforms: []PlanTransform{
			&SetScenario{Scenario: domain.ScenarioBear},
		},
	})

	registry.Register(Template{
		Name:        "etf_supercycle",
		Description: "Bull scenario with ETF flows and sovereign adoption",
		Transforms: []PlanTransform{
			&SetScenario{Scenario: domain.ScenarioBull},
			&AddMacroEvent{EventID: "etf_flows"},
			&AddMacroEvent{EventID: "sovereign"},
		},
	})

	registry.Register(Template{
		Name:        "hostile_world",
		Description: "Bear scenario with hostile regulation and a recession",
		Transforms: []PlanTransform{
			&SetScenario{Scenario: domain.ScenarioBear},
			&AddMacroEvent{EventID: "hostile_reg"},
			&AddMacroEvent{EventID: "recession"},
		},
	})

	return registry
}

// ApplyTemplate applies a template to a base plan
func ApplyTemplate(base *domain.RetirementPlan, template Template) (*domain.RetirementPlan, error) {
	return ApplyTransforms(base, template.Transforms)
}

// ParseTemplateList parses a comma-separated list of template names
func ParseTemplateList(templateList string) []string {
	if templateList == "" {
		return nil
	}

	parts := strings.Split(templateList, ",")
	templates := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			templates = append(templates, trimmed)
		}
	}
	return templates
}

// GetTemplateHelp returns formatted help text for all templates
func GetTemplateHelp(registry *TemplateRegistry) string {
	if len(registry.templates) == 0 {
		return "No templates registered"
	}

	var sb strings.Builder
	sb.WriteString("Available Templates:\n\n")

	categories := map[string][]Template{}
	for _, name := range registry.List() {
		t := registry.templates[name]
		categories[templateCategory(t)] = append(categories[templateCategory(t)], t)
	}

	for _, category := range []string{"Timing", "Contributions", "Withdrawals", "Market Scenarios"} {
		templates := categories[category]
		if len(templates) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("%s:\n", category))
		for _, t := range templates {
			sb.WriteString(fmt.Sprintf("  %-20s %s\n", t.Name, t.Description))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Usage:\n")
	sb.WriteString("  btcgo compare plan.yaml --with retire_later_5,double_dca\n")
	sb.WriteString("  btcgo compare plan.yaml --with hostile_world,etf_supercycle\n")

	return sb.String()
}

func templateCategory(t Template) string {
	if len(t.Transforms) == 0 {
		return "Market Scenarios"
	}
	switch t.Transforms[0].(type) {
	case *PostponeRetirement:
		return "Timing"
	case *AdjustContribution:
		return "Contributions"
	case *SetWithdrawalRate, *SetWithdrawalPolicy, *SetTargetIncome:
		return "Withdrawals"
	default:
		return "Market Scenarios"
	}
}
