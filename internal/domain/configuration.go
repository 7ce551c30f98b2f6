package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Configuration is the root of the YAML configuration file.
type Configuration struct {
	Scenarios   []ScenarioSpec `yaml:"scenarios" json:"scenarios"`
	MacroEvents []MacroEvent   `yaml:"macro_events" json:"macroEvents"`
	Defaults    RetirementPlan `yaml:"defaults" json:"defaults"`
	Yield       YieldDefaults  `yaml:"yield" json:"yield"`
	Market      MarketSettings `yaml:"market" json:"market"`
	Data        DataSettings   `yaml:"data" json:"data"`
}

// YieldDefaults seeds the fixed-income calculator.
type YieldDefaults struct {
	PeriodicYieldRate decimal.Decimal       `yaml:"periodic_yield_rate" json:"periodicYieldRate"`
	Reinvest          string                `yaml:"reinvest" json:"reinvest"`
	Frequency         ContributionFrequency `yaml:"frequency" json:"frequency"`
	HorizonPeriods    int                   `yaml:"horizon_periods" json:"horizonPeriods"`
}

// MarketSettings configures the live reference price feed.
type MarketSettings struct {
	Symbol          string        `yaml:"symbol" json:"symbol"`
	Currency        string        `yaml:"currency" json:"currency"`
	RefreshInterval time.Duration `yaml:"refresh_interval" json:"refreshInterval"`
	MaxAge          time.Duration `yaml:"max_age" json:"maxAge"`
}

// DataSettings locates the historical datasets.
type DataSettings struct {
	Path         string `yaml:"path" json:"path"`
	BaseCurrency string `yaml:"base_currency" json:"baseCurrency"`
}

// ScenarioSet returns the configured scenarios and macro events.
func (c *Configuration) ScenarioSet() ScenarioSet {
	return ScenarioSet{
		Specs:  append([]ScenarioSpec(nil), c.Scenarios...),
		Events: append([]MacroEvent(nil), c.MacroEvents...),
	}
}
