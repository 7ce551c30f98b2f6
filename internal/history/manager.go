package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// BaseCurrency is the denomination of the primary dataset.
	BaseCurrency = "USD"

	priceFilePrefix = "btc_usd"
	rateFilePrefix  = "fx_"
)

// DataManager loads the BTC/USD dataset and optional exchange rate datasets
// (fx_<ccy>.csv or .json, quoted as <ccy> per USD) from a directory.
type DataManager struct {
	DataPath string

	btc   *Series
	rates map[string]*Series
	// denominated caches BTC series per currency; populated by LoadAllData
	denominated map[string]*Series
}

// NewDataManager creates a manager for the given directory.
func NewDataManager(dataPath string) *DataManager {
	return &DataManager{DataPath: dataPath}
}

// NewDataManagerFromSeries wraps an already loaded series.
func NewDataManagerFromSeries(btc *Series, rates map[string]*Series) (*DataManager, error) {
	dm := &DataManager{btc: btc, rates: make(map[string]*Series)}
	for ccy, s := range rates {
		dm.rates[strings.ToUpper(ccy)] = s
	}
	if err := dm.denominate(); err != nil {
		return nil, err
	}
	return dm, nil
}

// LoadAllData reads every dataset in DataPath.
func (dm *DataManager) LoadAllData() error {
	entries, err := os.ReadDir(dm.DataPath)
	if err != nil {
		return fmt.Errorf("failed to read data directory %s: %w", dm.DataPath, err)
	}

	dm.rates = make(map[string]*Series)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".csv" && ext != ".json" {
			continue
		}
		stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		path := filepath.Join(dm.DataPath, name)

		switch {
		case stem == priceFilePrefix:
			s, err := LoadFile(path)
			if err != nil {
				return fmt.Errorf("failed to load price data: %w", err)
			}
			dm.btc = s
		case strings.HasPrefix(stem, rateFilePrefix):
			ccy := strings.ToUpper(strings.TrimPrefix(stem, rateFilePrefix))
			s, err := LoadFile(path)
			if err != nil {
				return fmt.Errorf("failed to load %s rates: %w", ccy, err)
			}
			dm.rates[ccy] = s
		}
	}
	if dm.btc == nil {
		return fmt.Errorf("no %s.csv or %s.json found in %s", priceFilePrefix, priceFilePrefix, dm.DataPath)
	}
	return dm.denominate()
}

func (dm *DataManager) denominate() error {
	dm.denominated = map[string]*Series{BaseCurrency: dm.btc}
	for ccy, rates := range dm.rates {
		s, err := dm.btc.Denominate(rates)
		if err != nil {
			return fmt.Errorf("failed to denominate BTC in %s: %w", ccy, err)
		}
		dm.denominated[ccy] = s
	}
	return nil
}

// Series returns the BTC price series in currency ("" means USD).
func (dm *DataManager) Series(currency string) (*Series, error) {
	if dm.denominated == nil {
		return nil, fmt.Errorf("historical data not loaded")
	}
	ccy := strings.ToUpper(currency)
	if ccy == "" {
		ccy = BaseCurrency
	}
	s, ok := dm.denominated[ccy]
	if !ok {
		return nil, domain.NewValidationError("currency", "no historical data for %s (available: %s)", ccy, strings.Join(dm.Currencies(), ", "))
	}
	return s, nil
}

// Rates returns the exchange rate series for currency.
func (dm *DataManager) Rates(currency string) (*Series, bool) {
	s, ok := dm.rates[strings.ToUpper(currency)]
	return s, ok
}

// Currencies lists the currencies a BTC series is available in.
func (dm *DataManager) Currencies() []string {
	out := make([]string, 0, len(dm.denominated))
	for ccy := range dm.denominated {
		out = append(out, ccy)
	}
	sort.Strings(out)
	return out
}

// GetAvailableRange returns the date range of the USD series.
func (dm *DataManager) GetAvailableRange() (time.Time, time.Time, error) {
	if dm.btc == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("historical data not loaded")
	}
	return dm.btc.MinDate(), dm.btc.MaxDate(), nil
}

// ValidateDataQuality reports gaps, implausible daily moves and a stale tail.
func (dm *DataManager) ValidateDataQuality() ([]string, error) {
	return dm.validateDataQuality(time.Now())
}

const (
	maxGapDays     = 7
	maxDailyMove   = 0.5
	staleAfterDays = 3
)

func (dm *DataManager) validateDataQuality(now time.Time) ([]string, error) {
	if dm.btc == nil {
		return nil, fmt.Errorf("historical data not loaded")
	}
	var issues []string
	points := dm.btc.points
	limit := decimal.NewFromFloat(maxDailyMove)
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		gap := int(cur.Date.Sub(prev.Date).Hours() / 24)
		if gap > maxGapDays {
			issues = append(issues, fmt.Sprintf("gap of %d days between %s and %s",
				gap, prev.Date.Format(domain.DateLayout), cur.Date.Format(domain.DateLayout)))
		}
		move := cur.Price.Sub(prev.Price).Abs().Div(prev.Price)
		if move.GreaterThan(limit) {
			issues = append(issues, fmt.Sprintf("price moved %s%% on %s",
				move.Mul(decimal.NewFromInt(100)).StringFixed(1), cur.Date.Format(domain.DateLayout)))
		}
	}
	age := int(domain.TruncateToDay(now).Sub(dm.btc.MaxDate()).Hours() / 24)
	if age > staleAfterDays {
		issues = append(issues, fmt.Sprintf("latest data point is %d days old (%s)", age, dm.btc.MaxDate().Format(domain.DateLayout)))
	}
	for _, ccy := range dm.rateCurrencies() {
		r := dm.rates[ccy]
		if r.MinDate().After(dm.btc.MinDate()) {
			issues = append(issues, fmt.Sprintf("%s rates start %s, after BTC data start %s",
				ccy, r.MinDate().Format(domain.DateLayout), dm.btc.MinDate().Format(domain.DateLayout)))
		}
	}
	return issues, nil
}

func (dm *DataManager) rateCurrencies() []string {
	out := make([]string, 0, len(dm.rates))
	for ccy := range dm.rates {
		out = append(out, ccy)
	}
	sort.Strings(out)
	return out
}
