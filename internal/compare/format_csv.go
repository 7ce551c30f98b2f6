package compare

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Scenario",
		"Type",
		"BTC at Retirement",
		"Patrimony",
		"SWR Income (Real)",
		"Final BTC",
		"Longevity (Periods)",
		"Met Goal",
		"BTC Gap",
		"Patrimony Diff from Base",
		"Patrimony % Change",
		"Income Diff from Base",
		"Longevity Diff",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
		return "", err
	}

	for _, alt := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&alt, "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	return []string{
		result.ScenarioName,
		scenarioType,
		result.BTCAtRetirement.StringFixed(8),
		result.PatrimonyAtRetirement.StringFixed(2),
		result.SWRIncomeReal.StringFixed(2),
		result.FinalBTC.StringFixed(8),
		strconv.Itoa(result.LongevityPeriods),
		strconv.FormatBool(result.MetGoal),
		result.BTCGap.StringFixed(8),
		result.PatrimonyDiffFromBase.StringFixed(2),
		result.PatrimonyPctFromBase.StringFixed(2),
		result.IncomeDiffFromBase.StringFixed(2),
		strconv.Itoa(result.LongevityDiff),
	}
}
