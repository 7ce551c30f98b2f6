package pricefeed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// Config controls the polling cadence and staleness of the ticker.
type Config struct {
	Interval time.Duration // time between fetches
	Timeout  time.Duration // per-fetch deadline
	MaxAge   time.Duration // quotes older than this are unusable
}

// DefaultConfig polls every 30s and accepts quotes up to 5 minutes old.
func DefaultConfig() Config {
	return Config{Interval: 30 * time.Second, Timeout: 10 * time.Second, MaxAge: 5 * time.Minute}
}

// Ticker polls a Source and keeps the last good quote.
type Ticker struct {
	source Source
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	latest  domain.Quote
	have    bool
	lastErr error

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTicker creates a ticker. Zero config fields take the defaults and a nil
// logger falls back to slog.Default().
func NewTicker(source Source, cfg Config, logger *slog.Logger) *Ticker {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = def.MaxAge
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ticker{source: source, cfg: cfg, logger: logger, now: time.Now}
}

// Refresh fetches once. A failure keeps the previous quote.
func (t *Ticker) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	q, err := t.source.Fetch(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastErr = err
	if err != nil {
		t.logger.Warn("price fetch failed", "error", err, "have_quote", t.have)
		return err
	}
	t.latest = q
	t.have = true
	t.logger.Debug("price updated", "symbol", q.Symbol, "price", q.Price.String())
	return nil
}

// Start fetches immediately and then every Interval until Stop is called or
// ctx is done.
func (t *Ticker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		_ = t.Refresh(ctx)

		tick := time.NewTicker(t.cfg.Interval)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				_ = t.Refresh(ctx)
			}
		}
	}()
	t.logger.Info("price ticker started", "interval", t.cfg.Interval, "max_age", t.cfg.MaxAge)
}

// Stop ends the polling loop and waits for it to exit.
func (t *Ticker) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
}

// Latest returns the last good quote, if any, regardless of age.
func (t *Ticker) Latest() (domain.Quote, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.latest, t.have
}

// LastError returns the error of the most recent fetch.
func (t *Ticker) LastError() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastErr
}

// ReferencePrice returns the last quote while it is fresh. A missing or stale
// quote is a ValidationError wrapping ErrMissingReferencePrice.
func (t *Ticker) ReferencePrice() (decimal.Decimal, error) {
	q, ok := t.Latest()
	if !ok {
		return decimal.Zero, &domain.ValidationError{
			Field:   "reference_price",
			Message: "no live price has been fetched yet",
			Cause:   domain.ErrMissingReferencePrice,
		}
	}
	if age := t.now().Sub(q.At); age > t.cfg.MaxAge {
		return decimal.Zero, &domain.ValidationError{
			Field:   "reference_price",
			Message: "live price is stale (" + age.Round(time.Second).String() + " old)",
			Cause:   domain.ErrMissingReferencePrice,
		}
	}
	return q.Price, nil
}
