package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing plan variants
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("BITCOIN RETIREMENT PLAN COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 84) + "\n")
	sb.WriteString(fmt.Sprintf("Base Plan: %s\n", compSet.BaseScenarioName))
	if compSet.ConfigPath != "" {
		sb.WriteString(fmt.Sprintf("Configuration: %s\n", compSet.ConfigPath))
	}
	sb.WriteString("\n")

	nameWidth := 24
	numWidth := 14

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Scenario",
		numWidth, "BTC @ Retire",
		numWidth, "Patrimony",
		numWidth, "SWR Income",
		numWidth, "Longevity"))
	sb.WriteString(strings.Repeat("-", 84) + "\n")

	if compSet.BaseResult != nil {
		sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	}

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 84) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&alt, nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", 84) + "\n")

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 84) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.ScenarioName))
			if alt.Description != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", alt.Description))
			}

			sb.WriteString(fmt.Sprintf("  Patrimony:        %s$%s (%s%%)\n",
				tf.deltaSymbol(alt.PatrimonyDiffFromBase),
				tf.formatDecimal(alt.PatrimonyDiffFromBase),
				alt.PatrimonyPctFromBase.StringFixed(1)))

			if !alt.IncomeDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  SWR Income:       %s$%s\n",
					tf.deltaSymbol(alt.IncomeDiffFromBase),
					tf.formatDecimal(alt.IncomeDiffFromBase)))
			}

			if alt.LongevityDiff != 0 {
				longevitySymbol := "+"
				if alt.LongevityDiff < 0 {
					longevitySymbol = ""
				}
				sb.WriteString(fmt.Sprintf("  Longevity:        %s%d periods\n", longevitySymbol, alt.LongevityDiff))
			}

			if !alt.GapDiffFromBase.IsZero() {
				// a shrinking gap is good news
				sb.WriteString(fmt.Sprintf("  BTC Gap:          %s%s BTC\n",
					tf.deltaSymbol(alt.GapDiffFromBase),
					alt.GapDiffFromBase.StringFixed(4)))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 84) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single plan row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}

	longevityStr := result.LongevityYears().StringFixed(1) + " yrs"
	if result.Depleted && result.DepletionAge != nil {
		longevityStr = fmt.Sprintf("out at %d", *result.DepletionAge)
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, result.BTCAtRetirement.StringFixed(4),
		numWidth, "$"+tf.formatDecimal(result.PatrimonyAtRetirement),
		numWidth, "$"+tf.formatDecimal(result.SWRIncomeReal),
		numWidth, longevityStr)
}

// formatDecimal formats a decimal for display (in thousands or millions)
func (tf *TableFormatter) formatDecimal(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000000)) {
		millions := d.Div(decimal.NewFromInt(1000000))
		return millions.StringFixed(2) + "M"
	} else if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		thousands := d.Div(decimal.NewFromInt(1000))
		return thousands.StringFixed(1) + "K"
	}
	return d.StringFixed(0)
}

// deltaSymbol returns a + prefix for positive deltas; negatives carry their own sign
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

// truncate truncates a string to maxLen
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a compact single-line summary for each variant
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseScenarioName))

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		change := "="
		if alt.PatrimonyDiffFromBase.IsPositive() {
			change = fmt.Sprintf("+$%s", tf.formatDecimal(alt.PatrimonyDiffFromBase))
		} else if alt.PatrimonyDiffFromBase.IsNegative() {
			change = fmt.Sprintf("-$%s", tf.formatDecimal(alt.PatrimonyDiffFromBase.Abs()))
		}

		sb.WriteString(fmt.Sprintf("%s: %s", alt.ScenarioName, change))
	}

	return sb.String()
}
