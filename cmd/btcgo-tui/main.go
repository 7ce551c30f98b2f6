package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/rgehrsitz/btcgo/internal/pricefeed"
	"github.com/rgehrsitz/btcgo/internal/tui"
)

func main() {
	price := pflag.Float64("price", 0, "Reference BTC price; fetched from Binance when omitted")
	symbol := pflag.String("symbol", "BTCUSDT", "Binance symbol for the live price")
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: btcgo-tui [config-file] [--price N] [--symbol SYMBOL]")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	// An empty path uses the built-in configuration
	configPath := pflag.Arg(0)
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			fmt.Printf("Error: Config file not found: %s\n", configPath)
			os.Exit(1)
		}
	}

	var opts []tui.Option
	switch {
	case *price > 0:
		opts = append(opts, tui.WithReferencePrice(decimal.NewFromFloat(*price)))
	case *price < 0:
		fmt.Println("Error: --price must be positive")
		os.Exit(1)
	default:
		opts = append(opts, tui.WithPriceSource(pricefeed.NewBinanceSource(*symbol, "")))
	}

	model := tui.NewModel(configPath, opts...)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
