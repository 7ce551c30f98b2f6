package history

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// LoadCSV reads "date,price" rows. A header row is skipped when its price
// column does not parse.
func LoadCSV(r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var points []domain.PricePoint
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line++
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected date,price", line)
		}
		price, perr := decimal.NewFromString(strings.TrimSpace(record[1]))
		if perr != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid price %q: %w", line, record[1], perr)
		}
		date, derr := domain.ParseDate(strings.TrimSpace(record[0]))
		if derr != nil {
			return nil, fmt.Errorf("line %d: %w", line, derr)
		}
		points = append(points, domain.PricePoint{Date: date, Price: price})
	}
	return NewSeries(points)
}

// LoadJSON reads an object keyed by date: {"2014-09-17": 457.33, ...}.
func LoadJSON(r io.Reader) (*Series, error) {
	raw := make(map[string]decimal.Decimal)
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	points := make([]domain.PricePoint, 0, len(raw))
	for k, v := range raw {
		date, err := domain.ParseDate(k)
		if err != nil {
			return nil, err
		}
		points = append(points, domain.PricePoint{Date: date, Price: v})
	}
	return NewSeries(points)
}

// LoadFile loads a .csv or .json dataset.
func LoadFile(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(f)
	case ".json":
		return LoadJSON(f)
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", path)
	}
}
