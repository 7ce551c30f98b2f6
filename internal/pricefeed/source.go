package pricefeed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// Source fetches the current reference price.
type Source interface {
	Fetch(ctx context.Context) (domain.Quote, error)
}

// BinanceSource reads the last traded price from the Binance public ticker.
// No API key is needed.
type BinanceSource struct {
	client *binance.Client
	symbol string
	now    func() time.Time
}

// NewBinanceSource creates a source for symbol, e.g. BTCUSDT. A non-empty
// baseURL replaces the production endpoint.
func NewBinanceSource(symbol, baseURL string) *BinanceSource {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if symbol == "" {
		symbol = "BTCUSDT"
	}
	return &BinanceSource{client: client, symbol: strings.ToUpper(symbol), now: time.Now}
}

// Symbol returns the traded pair this source quotes.
func (b *BinanceSource) Symbol() string { return b.symbol }

// Fetch implements Source.
func (b *BinanceSource) Fetch(ctx context.Context) (domain.Quote, error) {
	prices, err := b.client.NewListPricesService().Symbol(b.symbol).Do(ctx)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("failed to fetch %s price: %w", b.symbol, err)
	}

	for _, p := range prices {
		if p.Symbol != b.symbol {
			continue
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return domain.Quote{}, fmt.Errorf("invalid %s price %q: %w", b.symbol, p.Price, err)
		}
		if !price.IsPositive() {
			return domain.Quote{}, fmt.Errorf("non-positive %s price %s", b.symbol, price)
		}
		return domain.Quote{Symbol: b.symbol, Price: price, At: b.now().UTC()}, nil
	}
	return domain.Quote{}, fmt.Errorf("no price returned for %s", b.symbol)
}

// StaticSource serves a fixed price, for tests and offline runs.
type StaticSource struct {
	mu     sync.Mutex
	symbol string
	price  decimal.Decimal
	err    error
	calls  int
}

// NewStaticSource returns a source that always quotes price.
func NewStaticSource(symbol string, price decimal.Decimal) *StaticSource {
	return &StaticSource{symbol: symbol, price: price}
}

// Set changes the quoted price and clears any failure.
func (s *StaticSource) Set(price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = price
	s.err = nil
}

// Fail makes subsequent fetches return err.
func (s *StaticSource) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls reports how many fetches were made.
func (s *StaticSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Fetch implements Source.
func (s *StaticSource) Fetch(ctx context.Context) (domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := ctx.Err(); err != nil {
		return domain.Quote{}, err
	}
	if s.err != nil {
		return domain.Quote{}, s.err
	}
	return domain.Quote{Symbol: s.symbol, Price: s.price, At: time.Now().UTC()}, nil
}
