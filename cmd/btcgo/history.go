package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/rgehrsitz/btcgo/internal/calculation"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/history"
	"github.com/rgehrsitz/btcgo/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var regretCmd = &cobra.Command{
	Use:   "regret [amount] [invest-date]",
	Short: "Value a past lump-sum purchase at today's price",
	Long: `Value a lump-sum purchase made on a past date at the reference price.

Weekend and holiday dates use the closest prior close.

Examples:
  btcgo regret 1000 2020-03-16 --price 60000
  btcgo regret 500 2021-11-10 --currency EUR --price 55000`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		amount, err := parseDecimal("amount", args[0])
		if err != nil {
			log.Fatal(err)
		}
		investDate, err := domain.ParseDate(args[1])
		if err != nil {
			log.Fatal(err)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatal(err)
		}
		currency, _ := cmd.Flags().GetString("currency")
		engine := newEngine(cmd, cfg)
		if engine.Series, err = loadSeries(cmd, cfg, currency); err != nil {
			log.Fatal(err)
		}
		price, err := referencePrice(cmd, cfg, currency)
		if err != nil {
			log.Fatal(err)
		}

		res, err := engine.RunRegret(calculation.RegretRequest{
			InvestDate:     investDate,
			ReferenceDate:  domain.TruncateToDay(time.Now()),
			Amount:         amount,
			ReferencePrice: price,
		})
		if err != nil {
			log.Fatal(err)
		}
		if err := render(cmd, output.RegretReport(res)); err != nil {
			log.Fatal(err)
		}
	},
}

var dcaCmd = &cobra.Command{
	Use:   "dca [amount] [start-date] [end-date]",
	Short: "Value a past recurring purchase plan",
	Long: `Buy a fixed amount on a schedule between two dates and value the
stack at the reference price.

Examples:
  btcgo dca 100 2020-01-01 2024-01-01 --price 60000
  btcgo dca 50 2022-01-01 2023-12-31 --frequency weekly --initial 1000`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		amount, err := parseDecimal("amount", args[0])
		if err != nil {
			log.Fatal(err)
		}
		start, err := domain.ParseDate(args[1])
		if err != nil {
			log.Fatal(err)
		}
		end, err := domain.ParseDate(args[2])
		if err != nil {
			log.Fatal(err)
		}
		freqStr, _ := cmd.Flags().GetString("frequency")
		freq, err := domain.ParseContributionFrequency(freqStr)
		if err != nil {
			log.Fatal(err)
		}
		initial, err := decimalFlag(cmd, "initial")
		if err != nil {
			log.Fatal(err)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatal(err)
		}
		currency, _ := cmd.Flags().GetString("currency")
		engine := newEngine(cmd, cfg)
		if engine.Series, err = loadSeries(cmd, cfg, currency); err != nil {
			log.Fatal(err)
		}
		price, err := referencePrice(cmd, cfg, currency)
		if err != nil {
			log.Fatal(err)
		}

		res, err := engine.RunDCA(calculation.DCARequest{
			StartDate:      start,
			EndDate:        end,
			Amount:         amount,
			InitialAmount:  initial,
			Frequency:      freq,
			ReferencePrice: price,
			ReferenceDate:  domain.TruncateToDay(time.Now()),
		})
		if err != nil {
			log.Fatal(err)
		}
		if err := render(cmd, output.DCAReport(res)); err != nil {
			log.Fatal(err)
		}
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [amount]",
	Short: "Convert between fiat, BTC and satoshis",
	Long: `Convert an amount between fiat, BTC and satoshis at the reference price.

Examples:
  btcgo convert 100 --from fiat --price 50000
  btcgo convert 0.25 --from btc --price 50000
  btcgo convert 21000 --from sats --price 50000`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatal(err)
		}
		price, err := referencePrice(cmd, cfg, "")
		if err != nil {
			log.Fatal(err)
		}
		from, _ := cmd.Flags().GetString("from")

		report, err := convertReport(args[0], from, price)
		if err != nil {
			log.Fatal(err)
		}
		if err := render(cmd, report); err != nil {
			log.Fatal(err)
		}
	},
}

// convertReport converts amount given in unit at price into all three units.
func convertReport(amount, unit string, price decimal.Decimal) (*output.Report, error) {
	report := output.NewReport("CONVERSION")
	report.AddMetric("Reference price", price, output.KindCurrency)

	switch strings.ToLower(unit) {
	case "fiat", "usd", "":
		fiat, err := parseDecimal("amount", amount)
		if err != nil {
			return nil, err
		}
		sats, err := calculation.ToSats(fiat, price)
		if err != nil {
			return nil, err
		}
		report.AddMetric("Fiat", fiat, output.KindCurrency)
		report.AddMetric("BTC", calculation.SatsToBTC(sats), output.KindBTC)
		report.AddMetric("Satoshis", decimal.NewFromInt(sats), output.KindSats)
	case "btc":
		btc, err := parseDecimal("amount", amount)
		if err != nil {
			return nil, err
		}
		sats, err := calculation.BTCToSats(btc)
		if err != nil {
			return nil, err
		}
		report.AddMetric("Fiat", btc.Mul(price), output.KindCurrency)
		report.AddMetric("BTC", btc, output.KindBTC)
		report.AddMetric("Satoshis", decimal.NewFromInt(sats), output.KindSats)
	case "sats", "sat":
		sats, err := strconv.ParseInt(amount, 10, 64)
		if err != nil || sats < 0 {
			return nil, domain.NewValidationError("amount", "%q is not a whole number of satoshis", amount)
		}
		fiat, err := calculation.FromSats(sats, price)
		if err != nil {
			return nil, err
		}
		report.AddMetric("Fiat", fiat, output.KindCurrency)
		report.AddMetric("BTC", calculation.SatsToBTC(sats), output.KindBTC)
		report.AddMetric("Satoshis", decimal.NewFromInt(sats), output.KindSats)
	default:
		return nil, domain.NewValidationError("from", "unknown unit %q (valid: fiat, btc, sats)", unit)
	}

	perUnit, err := calculation.SatsPerFiatUnit(price)
	if err != nil {
		return nil, err
	}
	report.AddMetric("Sats per unit", decimal.NewFromInt(perUnit), output.KindSats)
	return report, nil
}

// parseDecimal parses a decimal argument named field.
func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, domain.NewValidationError(field, "%q is not a number", s)
	}
	return d, nil
}

func initHistoryCommands() {
	regretCmd.Flags().String("currency", history.BaseCurrency, "Currency of the amount and price")

	dcaCmd.Flags().String("currency", history.BaseCurrency, "Currency of the amounts and price")
	dcaCmd.Flags().String("frequency", string(domain.FrequencyMonthly), "Purchase frequency (weekly, monthly, yearly)")
	dcaCmd.Flags().Float64("initial", 0, "Lump sum bought on the start date")

	convertCmd.Flags().String("from", "fiat", "Unit of the amount (fiat, btc, sats)")

	rootCmd.AddCommand(regretCmd)
	rootCmd.AddCommand(dcaCmd)
	rootCmd.AddCommand(convertCmd)
}

func initHistoricalCommand() {
	historicalCmd := &cobra.Command{
		Use:   "historical",
		Short: "Manage and analyze historical price data",
		Long:  "Historical data management for the BTC/USD daily closes and fx_<ccy> exchange rates.",
	}

	loadCmd := &cobra.Command{
		Use:   "load [data-path]",
		Short: "Load historical data from the specified path",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := args[0]
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Loading historical data from: %s\n", path)
			hdm, err := loadDataManager(path)
			if err != nil {
				log.Fatalf("Error loading data: %v", err)
			}
			fmt.Fprintln(out, "Historical data loaded successfully")

			minDate, maxDate, err := hdm.GetAvailableRange()
			if err != nil {
				log.Fatal(err)
			}
			series, _ := hdm.Series(history.BaseCurrency)

			fmt.Fprintf(out, "\nData Summary:\n")
			fmt.Fprintf(out, "  Date Range: %s - %s (%d closes)\n",
				minDate.Format(domain.DateLayout), maxDate.Format(domain.DateLayout), series.Len())
			fmt.Fprintf(out, "  Currencies: %s\n", strings.Join(hdm.Currencies(), ", "))

			issues, err := hdm.ValidateDataQuality()
			if err != nil {
				log.Fatalf("Error validating data quality: %v", err)
			}
			if len(issues) == 0 {
				fmt.Fprintln(out, "  Data quality: No issues found")
				return
			}
			fmt.Fprintf(out, "  Data quality issues found:\n")
			for _, issue := range issues {
				fmt.Fprintf(out, "    - %s\n", issue)
			}
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats [data-path]",
		Short: "Display statistical summaries of historical data",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			hdm, err := loadDataManager(args[0])
			if err != nil {
				log.Fatalf("Error loading data: %v", err)
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Historical Price Statistics")
			for _, ccy := range hdm.Currencies() {
				series, err := hdm.Series(ccy)
				if err != nil {
					log.Fatal(err)
				}
				st := series.Statistics()
				fmt.Fprintf(out, "  BTC/%s:\n", ccy)
				fmt.Fprintf(out, "    First: %s on %s\n", output.FormatCurrency(st.First.Price), st.First.Date.Format(domain.DateLayout))
				fmt.Fprintf(out, "    Last:  %s on %s\n", output.FormatCurrency(st.Last.Price), st.Last.Date.Format(domain.DateLayout))
				fmt.Fprintf(out, "    Min:   %s on %s\n", output.FormatCurrency(st.Min.Price), st.Min.Date.Format(domain.DateLayout))
				fmt.Fprintf(out, "    Max:   %s on %s\n", output.FormatCurrency(st.Max.Price), st.Max.Date.Format(domain.DateLayout))
				fmt.Fprintf(out, "    Mean:  %s\n", output.FormatCurrency(st.Mean))
				fmt.Fprintf(out, "    Closes: %d\n", st.Count)
				fmt.Fprintln(out)
			}
		},
	}

	queryCmd := &cobra.Command{
		Use:   "query [data-path] [date] [currency]",
		Short: "Query the close on a given date",
		Long:  "Query the BTC close for a date. Dates without a close use the closest prior one.\n\nExample: historical query ./data 2020-03-21 USD",
		Args:  cobra.RangeArgs(2, 3),
		Run: func(cmd *cobra.Command, args []string) {
			when, err := domain.ParseDate(args[1])
			if err != nil {
				log.Fatal(err)
			}
			currency := history.BaseCurrency
			if len(args) == 3 {
				currency = args[2]
			}

			hdm, err := loadDataManager(args[0])
			if err != nil {
				log.Fatalf("Error loading data: %v", err)
			}
			series, err := hdm.Series(currency)
			if err != nil {
				log.Fatal(err)
			}
			point, err := series.PriceAt(when)
			if err != nil {
				log.Fatal(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "BTC/%s on %s: %s\n", strings.ToUpper(currency), when.Format(domain.DateLayout), point.Price.StringFixed(2))
			if !point.Date.Equal(when) {
				fmt.Fprintf(out, "(carried forward from %s)\n", point.Date.Format(domain.DateLayout))
			}
		},
	}

	historicalCmd.AddCommand(loadCmd)
	historicalCmd.AddCommand(statsCmd)
	historicalCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(historicalCmd)
}
