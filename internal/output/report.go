package output

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ValueKind tells formatters how to render a metric value.
type ValueKind string

const (
	KindCurrency ValueKind = "currency"
	KindBTC      ValueKind = "btc"
	KindSats     ValueKind = "sats"
	KindPercent  ValueKind = "percent"
	KindNumber   ValueKind = "number"
	KindText     ValueKind = "text"
)

// Metric is one labelled scalar of a report.
type Metric struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Kind  ValueKind       `json:"kind"`
	Text  string          `json:"text,omitempty"`
}

// Display renders the metric value for human-readable output.
func (m Metric) Display() string {
	switch m.Kind {
	case KindCurrency:
		return FormatCurrency(m.Value)
	case KindBTC:
		return FormatBTC(m.Value)
	case KindSats:
		return FormatSats(m.Value.IntPart())
	case KindPercent:
		return FormatPercentage(m.Value)
	case KindText:
		return m.Text
	default:
		return m.Value.String()
	}
}

// Table is a titled grid of preformatted cells.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Report is the format-independent result of one calculator run.
type Report struct {
	Title       string                     `json:"title"`
	GeneratedAt time.Time                  `json:"generatedAt"`
	Assumptions []string                   `json:"assumptions,omitempty"`
	Metrics     []Metric                   `json:"metrics"`
	Tables      []Table                    `json:"tables,omitempty"`
	Simulations []*domain.SimulationResult `json:"simulations,omitempty"`
	Notes       []string                   `json:"notes,omitempty"`
}

// NewReport starts an empty report stamped with the current time.
func NewReport(title string) *Report {
	return &Report{Title: title, GeneratedAt: time.Now()}
}

// AddMetric appends a numeric metric.
func (r *Report) AddMetric(label string, value decimal.Decimal, kind ValueKind) {
	r.Metrics = append(r.Metrics, Metric{Label: label, Value: value, Kind: kind})
}

// AddText appends a text metric.
func (r *Report) AddText(label, text string) {
	r.Metrics = append(r.Metrics, Metric{Label: label, Kind: KindText, Text: text})
}

// SaveConfiguration saves a configuration to a file
func SaveConfiguration(config *domain.Configuration, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + groupThousands(amount.Neg().StringFixed(2))
	}
	return "$" + groupThousands(amount.StringFixed(2))
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}

// FormatBTC formats a bitcoin quantity to satoshi precision
func FormatBTC(amount decimal.Decimal) string {
	return amount.StringFixed(8) + " BTC"
}

// FormatSats formats a satoshi count with thousands separators
func FormatSats(sats int64) string {
	if sats < 0 {
		return "-" + groupThousands(strconv.FormatInt(-sats, 10)) + " sats"
	}
	return groupThousands(strconv.FormatInt(sats, 10)) + " sats"
}

// groupThousands inserts commas into the integer part of an unsigned number.
func groupThousands(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		sb.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		sb.WriteByte('.')
		sb.WriteString(frac)
	}
	return sb.String()
}
