package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rgehrsitz/btcgo/internal/api"
	"github.com/rgehrsitz/btcgo/internal/calculation"
	"github.com/rgehrsitz/btcgo/internal/config"
	"github.com/rgehrsitz/btcgo/internal/history"
	"github.com/rgehrsitz/btcgo/internal/pricefeed"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with a live price feed",
	Long: `Serve the calculator over HTTP. Settings come from BTCGO_* environment
variables, optionally loaded from a .env file:

  BTCGO_PORT            listen port (8080)
  BTCGO_ENV             development or production
  BTCGO_DATA_PATH       historical data directory (data)
  BTCGO_PRICE_SYMBOL    Binance symbol polled for the reference price (BTCUSDT)
  BTCGO_PRICE_INTERVAL  polling interval (30s)
  BTCGO_PRICE_MAX_AGE   oldest quote still served (5m)`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := config.LoadServerSettings()
		if err != nil {
			log.Fatal(err)
		}

		var handler slog.Handler
		if settings.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
			handler = slog.NewJSONHandler(os.Stdout, nil)
		} else {
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
		}
		logger := slog.New(handler)
		slog.SetDefault(logger)

		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatal(err)
		}

		engine := calculation.NewCalculationEngine(cfg.ScenarioSet())
		engine.SetLogger(calculation.NewSlogLogger(logger))
		engine.Debug, _ = cmd.Flags().GetBool("debug")

		path := settings.DataPath
		if p, _ := cmd.Flags().GetString("data"); p != "" {
			path = p
		}
		var hdm *history.DataManager
		if hdm, err = loadDataManager(path); err != nil {
			logger.Warn("historical data unavailable, history endpoints disabled", "path", path, "error", err)
		} else if series, err := hdm.Series(history.BaseCurrency); err == nil {
			engine.Series = series
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ticker := pricefeed.NewTicker(
			pricefeed.NewBinanceSource(settings.PriceSymbol, ""),
			pricefeed.Config{Interval: settings.PriceInterval, MaxAge: settings.PriceMaxAge},
			logger,
		)
		ticker.Start(ctx)
		defer ticker.Stop()

		origins, _ := cmd.Flags().GetStringSlice("allowed-origins")
		router := api.NewRouter(api.Deps{
			Config:         cfg,
			Engine:         engine,
			Data:           hdm,
			Prices:         ticker,
			Logger:         logger,
			AllowedOrigins: origins,
		})

		srv := &http.Server{
			Addr:              settings.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", srv.Addr, "env", settings.Environment, "symbol", settings.PriceSymbol)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case sig := <-sigCh:
			logger.Info("shutting down", "signal", sig.String())
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err)
			}
			return
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
		logger.Info("shutdown complete")
	},
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Fetch the current BTC price from Binance",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		symbol, _ := cmd.Flags().GetString("symbol")
		if symbol == "" {
			cfg, err := loadConfig(cmd)
			if err != nil {
				log.Fatal(err)
			}
			symbol = cfg.Market.Symbol
		}

		ctx, cancel := context.WithTimeout(context.Background(), livePriceTimeout)
		defer cancel()
		quote, err := pricefeed.NewBinanceSource(strings.ToUpper(symbol), "").Fetch(ctx)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (at %s)\n", quote.Symbol, quote.Price.StringFixed(2), quote.At.Format(time.RFC3339))
	},
}

func initServeCommands() {
	serveCmd.Flags().StringSlice("allowed-origins", nil, "CORS origins allowed to call the API (default: any)")
	priceCmd.Flags().String("symbol", "", "Binance symbol (default: market.symbol from the configuration)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(priceCmd)
}
