package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServerSettings configures the HTTP server and its price feed.
type ServerSettings struct {
	Port          string
	Environment   string
	DataPath      string
	PriceSymbol   string
	PriceInterval time.Duration
	PriceMaxAge   time.Duration
}

// IsProduction reports whether the server runs in production mode.
func (s ServerSettings) IsProduction() bool {
	return s.Environment == "production"
}

// Addr is the listen address for Port.
func (s ServerSettings) Addr() string {
	return ":" + s.Port
}

// LoadServerSettings reads BTCGO_* variables, loading a .env file first if
// one exists.
func LoadServerSettings() (ServerSettings, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	settings := ServerSettings{
		Port:        getEnv("BTCGO_PORT", "8080"),
		Environment: getEnv("BTCGO_ENV", "development"),
		DataPath:    getEnv("BTCGO_DATA_PATH", "data"),
		PriceSymbol: getEnv("BTCGO_PRICE_SYMBOL", "BTCUSDT"),
	}

	var err error
	if settings.PriceInterval, err = getDuration("BTCGO_PRICE_INTERVAL", 30*time.Second); err != nil {
		return ServerSettings{}, err
	}
	if settings.PriceMaxAge, err = getDuration("BTCGO_PRICE_MAX_AGE", 5*time.Minute); err != nil {
		return ServerSettings{}, err
	}
	if _, err := strconv.Atoi(settings.Port); err != nil {
		return ServerSettings{}, fmt.Errorf("BTCGO_PORT: %q is not a port number", settings.Port)
	}
	return settings, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, d)
	}
	return d, nil
}
