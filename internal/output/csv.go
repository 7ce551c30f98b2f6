package output

import (
	"bytes"
	"encoding/csv"
)

// CSVFormatter writes the metrics as Metric,Value rows followed by each
// table, every section separated by a header row.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write([]string{"Metric", "Value"}); err != nil {
		return nil, err
	}
	for _, m := range report.Metrics {
		value := m.Text
		if m.Kind != KindText {
			value = m.Value.String()
		}
		if err := w.Write([]string{m.Label, value}); err != nil {
			return nil, err
		}
	}

	for _, t := range report.Tables {
		if err := w.Write([]string{"# " + t.Title}); err != nil {
			return nil, err
		}
		if err := w.Write(t.Columns); err != nil {
			return nil, err
		}
		if err := w.WriteAll(t.Rows); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
