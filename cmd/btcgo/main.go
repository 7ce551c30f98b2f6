package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rgehrsitz/btcgo/internal/calculation"
	"github.com/rgehrsitz/btcgo/internal/config"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/history"
	"github.com/rgehrsitz/btcgo/internal/output"
	"github.com/rgehrsitz/btcgo/internal/pricefeed"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// livePriceTimeout bounds the one-shot price fetch of CLI commands.
const livePriceTimeout = 10 * time.Second

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "btcgo %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

// fileExists checks if a file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

var rootCmd = &cobra.Command{
	Use:   "btcgo",
	Short: "Bitcoin savings and retirement calculator",
	Long: `Historical regret and DCA analysis, scenario price projections,
accumulation and drawdown planning, and yield simulation for bitcoin.

The reference price comes from --price or, when omitted, from the live
Binance ticker.`,
}

var validateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate a configuration file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputFile := args[0]

		parser := config.NewInputParser()
		cfg, err := parser.LoadFromFile(inputFile)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %s is valid (%d scenarios, %d macro events)\n",
			inputFile, len(cfg.Scenarios), len(cfg.MacroEvents))
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [output-file]",
	Short: "Write the built-in configuration to a file for editing",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "btcgo.yaml"
		if len(args) > 0 {
			path = args[0]
		}
		if fileExists(path) {
			log.Fatalf("%s already exists", path)
		}

		cfg, err := config.DefaultConfiguration()
		if err != nil {
			log.Fatal(err)
		}
		if err := output.SaveConfiguration(cfg, path); err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file (default: built-in configuration)")
	flags.String("data", "", "Historical data directory (default: data.path from the configuration)")
	flags.StringP("format", "f", "console", "Output format (console, csv, json, html)")
	flags.Bool("debug", false, "Enable debug output for detailed calculations")
	flags.Float64("price", 0, "Reference BTC price; fetched live when omitted")
	flags.Bool("save", false, "Write the report to a timestamped file instead of stdout")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd())

	initHistoryCommands()
	initPlanCommands()
	initCompareCommands()
	initServeCommands()
	initHistoricalCommand()
}

// loadConfig reads --config, or the embedded defaults when it is unset.
func loadConfig(cmd *cobra.Command) (*domain.Configuration, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if fileExists("btcgo.yaml") {
			path = "btcgo.yaml"
		} else {
			return config.DefaultConfiguration()
		}
	}
	return config.NewInputParser().LoadFromFile(path)
}

// newEngine builds the engine for cfg, installing the CLI logger under --debug.
func newEngine(cmd *cobra.Command, cfg *domain.Configuration) *calculation.CalculationEngine {
	engine := calculation.NewCalculationEngine(cfg.ScenarioSet())
	debugMode, _ := cmd.Flags().GetBool("debug")
	if debugMode {
		engine.SetLogger(simpleCLILogger{})
	}
	engine.Debug = debugMode
	return engine
}

// dataPath resolves --data against the configuration.
func dataPath(cmd *cobra.Command, cfg *domain.Configuration) string {
	if p, _ := cmd.Flags().GetString("data"); p != "" {
		return p
	}
	if cfg != nil && cfg.Data.Path != "" {
		return cfg.Data.Path
	}
	return "data"
}

func loadDataManager(path string) (*history.DataManager, error) {
	if !fileExists(path) {
		return nil, fmt.Errorf("data path '%s' does not exist", path)
	}
	hdm := history.NewDataManager(path)
	if err := hdm.LoadAllData(); err != nil {
		return nil, err
	}
	return hdm, nil
}

// loadSeries loads the historical series in currency from the data directory.
func loadSeries(cmd *cobra.Command, cfg *domain.Configuration, currency string) (*history.Series, error) {
	hdm, err := loadDataManager(dataPath(cmd, cfg))
	if err != nil {
		return nil, err
	}
	return hdm.Series(currency)
}

// referencePrice returns --price, or the live quote for the configured
// symbol. Only USD can be priced live.
func referencePrice(cmd *cobra.Command, cfg *domain.Configuration, currency string) (decimal.Decimal, error) {
	given, _ := cmd.Flags().GetFloat64("price")
	price, err := calculation.DecimalFromFloat("price", given)
	if err != nil {
		return decimal.Zero, err
	}
	if price.IsPositive() {
		return price, nil
	}
	if price.IsNegative() {
		return decimal.Zero, domain.NewValidationError("price", "must be positive, got %s", price)
	}
	if currency != "" && !strings.EqualFold(currency, history.BaseCurrency) {
		return decimal.Zero, &domain.ValidationError{
			Field:   "price",
			Message: fmt.Sprintf("--price is required for %s", strings.ToUpper(currency)),
			Cause:   domain.ErrMissingReferencePrice,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), livePriceTimeout)
	defer cancel()
	quote, err := pricefeed.NewBinanceSource(cfg.Market.Symbol, "").Fetch(ctx)
	if err != nil {
		return decimal.Zero, &domain.ValidationError{
			Field:   "price",
			Message: fmt.Sprintf("live price unavailable (%v); pass --price", err),
			Cause:   domain.ErrMissingReferencePrice,
		}
	}
	return quote.Price, nil
}

// render writes report in the --format format.
func render(cmd *cobra.Command, report *output.Report) error {
	name, _ := cmd.Flags().GetString("format")
	f := output.GetFormatterByName(name)
	if f == nil {
		return fmt.Errorf("unknown output format: %s (valid: %s)", name, strings.Join(output.AvailableFormatterNames(), ", "))
	}
	if save, _ := cmd.Flags().GetBool("save"); save {
		ext := f.Name()
		if ext == "console" {
			ext = "txt"
		}
		filename, err := output.WriteFormatted(f, report, ext)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", filename)
		return nil
	}
	data, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// decimalFlag reads a float flag as a decimal.
func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return decimal.Zero, err
	}
	return calculation.DecimalFromFloat(name, v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
