package output

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ConsoleFormatter renders a report as aligned plain text.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	rule := strings.Repeat("=", 80)

	fmt.Fprintln(&buf, rule)
	fmt.Fprintln(&buf, report.Title)
	fmt.Fprintln(&buf, rule)
	fmt.Fprintln(&buf)

	if len(report.Assumptions) > 0 {
		fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
		for _, a := range report.Assumptions {
			fmt.Fprintf(&buf, "• %s\n", a)
		}
		fmt.Fprintln(&buf)
	}

	if len(report.Metrics) > 0 {
		width := 0
		for _, m := range report.Metrics {
			width = max(width, utf8.RuneCountInString(m.Label))
		}
		fmt.Fprintln(&buf, "SUMMARY")
		fmt.Fprintln(&buf, strings.Repeat("-", 40))
		for _, m := range report.Metrics {
			fmt.Fprintf(&buf, "%-*s  %s\n", width+1, m.Label+":", m.Display())
		}
		fmt.Fprintln(&buf)
	}

	for _, t := range report.Tables {
		writeTable(&buf, t)
		fmt.Fprintln(&buf)
	}

	if len(report.Notes) > 0 {
		fmt.Fprintln(&buf, "NOTES")
		fmt.Fprintln(&buf, strings.Repeat("-", 40))
		for _, n := range report.Notes {
			fmt.Fprintf(&buf, "• %s\n", n)
		}
		fmt.Fprintln(&buf)
	}

	return buf.Bytes(), nil
}

// writeTable right-aligns every column but the first to its widest cell.
func writeTable(buf *bytes.Buffer, t Table) {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], utf8.RuneCountInString(row[i]))
		}
	}

	total := 0
	for _, w := range widths {
		total += w + 2
	}

	fmt.Fprintln(buf, strings.ToUpper(t.Title))
	fmt.Fprintln(buf, strings.Repeat("-", total))
	writeRow(buf, t.Columns, widths)
	fmt.Fprintln(buf, strings.Repeat("-", total))
	for _, row := range t.Rows {
		writeRow(buf, row, widths)
	}
}

func writeRow(buf *bytes.Buffer, cells []string, widths []int) {
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i == 0 {
			fmt.Fprintf(buf, "%-*s  ", w, cell)
		} else {
			fmt.Fprintf(buf, "%*s  ", w, cell)
		}
	}
	buf.WriteString("\n")
}
