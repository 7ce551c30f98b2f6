package output

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"
)

// Formatter renders a report into bytes for one output format.
type Formatter interface {
	Name() string
	Format(report *Report) ([]byte, error)
}

// FormatterFunc adapts a plain function to the Formatter interface.
type FormatterFunc struct {
	ID string
	F  func(report *Report) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(report *Report) ([]byte, error) { return f.F(report) }

var formatters = map[string]Formatter{
	"console": ConsoleFormatter{},
	"csv":     CSVFormatter{},
	"json":    JSONFormatter{Pretty: true},
	"html":    HTMLFormatter{},
}

var formatAliases = map[string]string{
	"text":    "console",
	"table":   "console",
	"compact": "console",
	"htm":     "html",
}

// GetFormatterByName returns the named formatter, resolving aliases, or nil.
func GetFormatterByName(name string) Formatter {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := formatAliases[name]; ok {
		name = canonical
	}
	return formatters[name]
}

// AvailableFormatterNames lists the canonical formatter names, sorted.
func AvailableFormatterNames() []string {
	return slices.Sorted(maps.Keys(formatters))
}

// AvailableFormatAliases lists the accepted alias names, sorted.
func AvailableFormatAliases() []string {
	return slices.Sorted(maps.Keys(formatAliases))
}

// WriteFormatted renders report and writes it to a timestamped file in the
// working directory, returning the file name.
func WriteFormatted(f Formatter, report *Report, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", fmt.Errorf("format %s report: %w", f.Name(), err)
	}
	filename := fmt.Sprintf("btcgo_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}
