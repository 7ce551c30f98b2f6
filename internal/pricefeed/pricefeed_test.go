package pricefeed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func binanceStub(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/price" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBinanceSource_Fetch(t *testing.T) {
	srv := binanceStub(t, http.StatusOK, `{"symbol":"BTCUSDT","price":"65000.12000000"}`)

	src := NewBinanceSource("btcusdt", srv.URL)
	assert.Equal(t, "BTCUSDT", src.Symbol())

	q, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", q.Symbol)
	assert.True(t, q.Price.Equal(decimal.RequireFromString("65000.12")))
	assert.WithinDuration(t, time.Now(), q.At, time.Minute)
}

func TestBinanceSource_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusInternalServerError, `{"code":-1000,"msg":"boom"}`},
		{"bad price", http.StatusOK, `{"symbol":"BTCUSDT","price":"lots"}`},
		{"zero price", http.StatusOK, `{"symbol":"BTCUSDT","price":"0"}`},
		{"other symbol", http.StatusOK, `{"symbol":"ETHUSDT","price":"3000"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := binanceStub(t, tt.status, tt.body)
			_, err := NewBinanceSource("BTCUSDT", srv.URL).Fetch(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource("BTCUSD", decimal.NewFromInt(50000))

	q, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, q.Price.Equal(decimal.NewFromInt(50000)))

	src.Fail(errors.New("offline"))
	_, err = src.Fetch(context.Background())
	assert.EqualError(t, err, "offline")

	src.Set(decimal.NewFromInt(60000))
	q, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, q.Price.Equal(decimal.NewFromInt(60000)))
	assert.Equal(t, 3, src.Calls())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewTicker_Defaults(t *testing.T) {
	tk := NewTicker(NewStaticSource("BTCUSD", decimal.NewFromInt(1)), Config{}, nil)
	assert.Equal(t, DefaultConfig(), tk.cfg)
	assert.NotNil(t, tk.logger)
}

func TestTicker_ReferencePrice(t *testing.T) {
	src := NewStaticSource("BTCUSD", decimal.NewFromInt(50000))
	tk := NewTicker(src, Config{MaxAge: time.Minute}, quietLogger())

	_, err := tk.ReferencePrice()
	assert.True(t, domain.IsValidation(err))
	assert.ErrorIs(t, err, domain.ErrMissingReferencePrice)

	require.NoError(t, tk.Refresh(context.Background()))
	price, err := tk.ReferencePrice()
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(50000)))

	// a failed fetch keeps the last good quote
	src.Fail(errors.New("exchange down"))
	assert.Error(t, tk.Refresh(context.Background()))
	assert.EqualError(t, tk.LastError(), "exchange down")
	price, err = tk.ReferencePrice()
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(50000)))

	// until it ages out
	tk.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tk.ReferencePrice()
	assert.True(t, domain.IsValidation(err))
	assert.ErrorIs(t, err, domain.ErrMissingReferencePrice)
	assert.Contains(t, err.Error(), "stale")

	q, ok := tk.Latest()
	assert.True(t, ok, "stale quotes are still visible")
	assert.True(t, q.Price.Equal(decimal.NewFromInt(50000)))
}

func TestTicker_StartStop(t *testing.T) {
	src := NewStaticSource("BTCUSD", decimal.NewFromInt(50000))
	tk := NewTicker(src, Config{Interval: 5 * time.Millisecond}, quietLogger())

	tk.Start(context.Background())
	require.Eventually(t, func() bool { return src.Calls() >= 3 }, time.Second, time.Millisecond)
	tk.Stop()

	calls := src.Calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, src.Calls(), "no fetches after Stop")

	_, ok := tk.Latest()
	assert.True(t, ok)
}

func TestTicker_StopsWithContext(t *testing.T) {
	tk := NewTicker(NewStaticSource("BTCUSD", decimal.NewFromInt(1)), Config{Interval: time.Hour}, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	tk.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		tk.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ticker did not stop")
	}
}
