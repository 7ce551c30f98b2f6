package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/btcgo/internal/calculation"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/transform"
)

// CompareEngine orchestrates plan comparison
type CompareEngine struct {
	CalcEngine        *calculation.CalculationEngine
	MetricsCalculator *MetricsCalculator
	TemplateRegistry  *transform.TemplateRegistry
}

// NewCompareEngine creates a new comparison engine with the built-in templates
func NewCompareEngine(calcEngine *calculation.CalculationEngine) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
		TemplateRegistry:  transform.CreateBuiltInTemplates(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	BaseName   string   // Label of the unmodified plan
	Templates  []string // List of template names to apply
	ConfigPath string
}

// Compare runs the base plan and one variant per template
func (ce *CompareEngine) Compare(ctx context.Context, plan *domain.RetirementPlan, options CompareOptions) (*ComparisonSet, error) {
	if plan == nil {
		return nil, fmt.Errorf("base plan cannot be nil")
	}
	if ce.TemplateRegistry == nil {
		ce.TemplateRegistry = transform.CreateBuiltInTemplates()
	}
	baseName := options.BaseName
	if baseName == "" {
		baseName = plan.Name
	}
	if baseName == "" {
		baseName = "base"
	}

	baseOutcome, err := ce.CalcEngine.RunRetirementPlan(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base plan: %w", err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(baseName, baseOutcome)
	baseResult.Description = "Plan as configured"

	alternatives := []ComparisonResult{}
	for _, templateName := range options.Templates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		template, ok := ce.TemplateRegistry.Get(templateName)
		if !ok {
			return nil, domain.NewValidationError("templates", "template %s not found", templateName)
		}

		modified, err := transform.ApplyTemplate(plan, template)
		if err != nil {
			return nil, fmt.Errorf("failed to apply template %s: %w", templateName, err)
		}
		modified.Name = baseName + "_" + template.Name

		outcome, err := ce.CalcEngine.RunRetirementPlan(modified)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate plan %s: %w", templateName, err)
		}

		altResult := ce.MetricsCalculator.CalculateMetrics(modified.Name, outcome)
		altResult.Description = template.Description
		altResult = ce.MetricsCalculator.CalculateComparison(altResult, baseResult)

		alternatives = append(alternatives, altResult)
	}

	compSet := &ComparisonSet{
		BaseScenarioName:   baseName,
		BaseResult:         &baseResult,
		AlternativeResults: alternatives,
		ConfigPath:         options.ConfigPath,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}

// CompareScenarios runs plan under the Base scenario and compares Bull and
// Bear against it. The plan's macro events apply to whichever scenario they
// belong to.
func (ce *CompareEngine) CompareScenarios(ctx context.Context, plan *domain.RetirementPlan) (*ComparisonSet, error) {
	if plan == nil {
		return nil, fmt.Errorf("base plan cannot be nil")
	}

	results := make(map[domain.ScenarioName]ComparisonResult, 3)
	for _, name := range domain.AllScenarioNames() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		variant, err := transform.ApplyTransforms(plan, []transform.PlanTransform{&transform.SetScenario{Scenario: name}})
		if err != nil {
			return nil, err
		}
		outcome, err := ce.CalcEngine.RunRetirementPlan(variant)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate %s scenario: %w", name, err)
		}
		res := ce.MetricsCalculator.CalculateMetrics(name.Title(), outcome)
		res.Description = fmt.Sprintf("%s price scenario", name.Title())
		results[name] = res
	}

	base := results[domain.ScenarioBase]
	compSet := &ComparisonSet{
		BaseScenarioName: base.ScenarioName,
		BaseResult:       &base,
		AlternativeResults: []ComparisonResult{
			ce.MetricsCalculator.CalculateComparison(results[domain.ScenarioBull], base),
			ce.MetricsCalculator.CalculateComparison(results[domain.ScenarioBear], base),
		},
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}
