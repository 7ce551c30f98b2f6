package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats solver results as a console table
type TableFormatter struct{}

// Format generates a formatted table for a solver result
func (tf *TableFormatter) Format(result *Result) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN RESULTS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	sb.WriteString(fmt.Sprintf("Target:              %s\n", result.Target))
	sb.WriteString(fmt.Sprintf("Scenario:            %s\n", result.Scenario.Title()))
	sb.WriteString(fmt.Sprintf("Status:              %s\n", tf.formatStatus(result.Converged)))
	sb.WriteString(fmt.Sprintf("Iterations:          %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:         %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("BREAK-EVEN VALUE\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	switch result.Target {
	case TargetRequiredBTC:
		sb.WriteString(fmt.Sprintf("Required BTC:        %s\n", result.Value.StringFixed(8)))
		sb.WriteString(fmt.Sprintf("Current BTC:         %s\n", result.BaseValue.StringFixed(8)))
		sb.WriteString(fmt.Sprintf("Difference:          %s%s BTC\n", tf.deltaSymbol(result.DiffFromBase), result.DiffFromBase.StringFixed(8)))
	case TargetMaxWithdrawal:
		sb.WriteString(fmt.Sprintf("Max Annual Income:   $%s\n", tf.formatCurrency(result.Value)))
		sb.WriteString(fmt.Sprintf("Target Income:       $%s\n", tf.formatCurrency(result.BaseValue)))
		sb.WriteString(fmt.Sprintf("Difference:          %s$%s\n", tf.deltaSymbol(result.DiffFromBase), tf.formatCurrency(result.DiffFromBase)))
	}
	sb.WriteString("\n")

	if out := result.Outcome; out != nil {
		sb.WriteString("PLAN AT BREAK-EVEN\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		sb.WriteString(fmt.Sprintf("BTC at Retirement:   %s\n", out.BTCAtRetirement.StringFixed(8)))
		sb.WriteString(fmt.Sprintf("Price at Retirement: $%s\n", tf.formatShort(out.PriceAtRetirement)))
		sb.WriteString(fmt.Sprintf("Patrimony:           $%s\n", tf.formatShort(out.PatrimonyAtRetirement)))
		sb.WriteString(fmt.Sprintf("Final BTC:           %s\n", out.Drawdown.FinalBTC().StringFixed(8)))
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatSweep formats one result per scenario
func (tf *TableFormatter) FormatSweep(sweep *ScenarioSweep) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN BY SCENARIO\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n\n")

	sb.WriteString(fmt.Sprintf("%-10s %18s %18s %18s %10s\n", "Scenario", "Value", "Current", "Difference", "Status"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, r := range sweep.Results {
		sb.WriteString(fmt.Sprintf("%-10s %18s %18s %18s %10s\n",
			r.Scenario.Title(),
			tf.formatValue(r.Target, r.Value),
			tf.formatValue(r.Target, r.BaseValue),
			tf.deltaSymbol(r.DiffFromBase)+tf.formatValue(r.Target, r.DiffFromBase),
			tf.formatStatus(r.Converged)))
	}
	sb.WriteString("\n")

	if len(sweep.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range sweep.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output for a single result
func (jf *JSONFormatter) Format(result *Result) (string, error) {
	return jf.marshal(result)
}

// FormatSweep generates JSON output for a scenario sweep
func (jf *JSONFormatter) FormatSweep(sweep *ScenarioSweep) (string, error) {
	return jf.marshal(sweep)
}

func (jf *JSONFormatter) marshal(v any) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Helper methods

func (tf *TableFormatter) formatStatus(converged bool) string {
	if converged {
		return "✓ Converged"
	}
	return "⚠ Did not converge"
}

func (tf *TableFormatter) formatValue(target SolveTarget, d decimal.Decimal) string {
	if target == TargetRequiredBTC {
		return d.StringFixed(8)
	}
	return "$" + tf.formatShort(d)
}

func (tf *TableFormatter) formatCurrency(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (tf *TableFormatter) formatShort(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		millions := d.Div(decimal.NewFromInt(1000000))
		return millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		thousands := d.Div(decimal.NewFromInt(1000))
		return thousands.StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}
