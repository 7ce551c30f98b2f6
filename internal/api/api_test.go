package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rgehrsitz/btcgo/internal/config"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/history"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrices struct {
	quote domain.Quote
	ok    bool
	err   error
}

func (f fakePrices) Latest() (domain.Quote, bool) { return f.quote, f.ok }

func (f fakePrices) ReferencePrice() (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	if !f.ok {
		return decimal.Zero, domain.ErrMissingReferencePrice
	}
	return f.quote.Price, nil
}

func livePrice(price string) fakePrices {
	return fakePrices{
		quote: domain.Quote{Symbol: "BTCUSDT", Price: decimal.RequireFromString(price), At: time.Now()},
		ok:    true,
	}
}

func testData(t *testing.T) *history.DataManager {
	t.Helper()
	var points []domain.PricePoint
	for date, price := range map[string]string{
		"2020-01-01": "10000",
		"2020-02-01": "20000",
		"2020-03-01": "5000",
		"2020-04-01": "10000",
	} {
		d, err := domain.ParseDate(date)
		require.NoError(t, err)
		points = append(points, domain.PricePoint{Date: d, Price: decimal.RequireFromString(price)})
	}
	series, err := history.NewSeries(points)
	require.NoError(t, err)
	dm, err := history.NewDataManagerFromSeries(series, nil)
	require.NoError(t, err)
	return dm
}

func testRouter(t *testing.T, prices PriceProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg, err := config.DefaultConfiguration()
	require.NoError(t, err)
	return NewRouter(Deps{Config: cfg, Data: testData(t), Prices: prices})
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Error.Code
}

func TestHealthAndRequestID(t *testing.T) {
	r := testRouter(t, livePrice("100000"))

	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["price"])

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	r := testRouter(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/convert", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryReturnsJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(t, r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, w))
}

func TestGetPrice(t *testing.T) {
	w := do(t, testRouter(t, livePrice("65000")), http.MethodGet, "/api/v1/price", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "65000", body["price"])
	assert.Equal(t, false, body["stale"])

	stale := livePrice("65000")
	stale.err = domain.ErrMissingReferencePrice
	body = decode(t, do(t, testRouter(t, stale), http.MethodGet, "/api/v1/price", nil))
	assert.Equal(t, true, body["stale"])

	w = do(t, testRouter(t, nil), http.MethodGet, "/api/v1/price", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestListScenariosAndTemplates(t *testing.T) {
	r := testRouter(t, nil)

	var scenarios struct {
		Scenarios []ScenarioInfo `json:"scenarios"`
	}
	w := do(t, r, http.MethodGet, "/api/v1/scenarios", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scenarios))
	require.Len(t, scenarios.Scenarios, 3)
	assert.Equal(t, domain.ScenarioBull, scenarios.Scenarios[0].Name)
	assert.Equal(t, "Bear", scenarios.Scenarios[2].Title)

	var templates struct {
		Templates []TemplateInfo `json:"templates"`
	}
	w = do(t, r, http.MethodGet, "/api/v1/templates", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &templates))
	assert.NotEmpty(t, templates.Templates)
}

func TestConvert(t *testing.T) {
	r := testRouter(t, livePrice("100000"))

	tests := []struct {
		name string
		body string
		fiat string
		btc  string
		sats float64
	}{
		{"fiat uses live price", `{"amount": 100}`, "100", "0.001", 100_000},
		{"btc", `{"amount": "0.5", "unit": "btc"}`, "50000", "0.5", 50_000_000},
		{"sats with explicit price", `{"amount": 1000, "unit": "sats", "reference_price": 50000}`, "0.5", "0.00001", 1000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/v1/convert", tc.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			body := decode(t, w)
			assert.Equal(t, tc.fiat, body["fiat"])
			assert.Equal(t, tc.btc, body["btc"])
			assert.Equal(t, tc.sats, body["sats"])
		})
	}

	w := do(t, r, http.MethodPost, "/api/v1/convert", `{"amount": 1, "unit": "eth"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = do(t, r, http.MethodPost, "/api/v1/convert", `{"amount": 1.5, "unit": "sats"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/convert", `{"amount": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))
}

func TestConvert_NoPrice(t *testing.T) {
	w := do(t, testRouter(t, nil), http.MethodPost, "/api/v1/convert", `{"amount": 100}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestRegret(t *testing.T) {
	r := testRouter(t, livePrice("30000"))

	w := do(t, r, http.MethodPost, "/api/v1/regret", `{"invest_date": "2020-01-01", "reference_date": "2021-01-01", "amount": 100}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "300", body["presentValue"])
	assert.Equal(t, "0.01", body["quantity"])

	w = do(t, r, http.MethodPost, "/api/v1/regret", `{"invest_date": "2010-01-01", "amount": 100}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "OUT_OF_RANGE", resp.Error.Code)
	assert.Equal(t, "2020-01-01", resp.Error.Details["min"])
	assert.Equal(t, "2010-01-01", resp.Error.Details["requested"])

	w = do(t, r, http.MethodPost, "/api/v1/regret", `{"invest_date": "Jan 1", "amount": 100}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/regret", `{"amount": 100}`)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))
}

func TestRegret_ForeignCurrencyNeedsPrice(t *testing.T) {
	w := do(t, testRouter(t, livePrice("30000")), http.MethodPost, "/api/v1/regret",
		`{"invest_date": "2020-01-01", "reference_date": "2021-01-01", "amount": 100, "currency": "EUR"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegret_NoData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg, err := config.DefaultConfiguration()
	require.NoError(t, err)
	r := NewRouter(Deps{Config: cfg, Prices: livePrice("30000")})

	w := do(t, r, http.MethodPost, "/api/v1/regret", `{"invest_date": "2020-01-01", "amount": 100}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "DATA_UNAVAILABLE", errorCode(t, w))
}

func TestDCA(t *testing.T) {
	r := testRouter(t, nil)
	w := do(t, r, http.MethodPost, "/api/v1/dca",
		`{"start_date": "2020-01-01", "end_date": "2020-04-01", "amount": 100, "frequency": "monthly", "reference_price": 10000}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, float64(4), body["purchases"])
	assert.Equal(t, "0.045", body["btc"])
	assert.Equal(t, "400", body["totalInvested"])

	w = do(t, r, http.MethodPost, "/api/v1/dca",
		`{"start_date": "2020-01-01", "end_date": "2020-04-01", "amount": 100, "frequency": "hourly", "reference_price": 10000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

const shortPlan = `"current_age": 40, "retirement_age": 42, "life_expectancy": 44,
	"current_btc": 1, "contribution_fiat": 0, "frequency": "yearly",
	"target_annual_income": 10000, "inflation_rate": 0`

func TestRetirement_AllScenarios(t *testing.T) {
	r := testRouter(t, livePrice("100000"))
	w := do(t, r, http.MethodPost, "/api/v1/retirement", `{`+shortPlan+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Plan     domain.RetirementPlan      `json:"plan"`
		Outcomes []domain.RetirementOutcome `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Outcomes, 3)
	assert.Equal(t, domain.ScenarioBull, resp.Outcomes[0].Scenario)
	assert.Equal(t, domain.ScenarioBear, resp.Outcomes[2].Scenario)
	assert.True(t, resp.Plan.ReferencePrice.Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, 40, resp.Plan.CurrentAge)
	assert.True(t, resp.Plan.SafeWithdrawalRate.Equal(decimal.RequireFromString("0.04")), "default kept")
}

func TestRetirement_SingleScenarioWithCompare(t *testing.T) {
	r := testRouter(t, livePrice("100000"))
	w := do(t, r, http.MethodPost, "/api/v1/retirement",
		`{`+shortPlan+`, "scenario": "bear", "compare": ["double_dca"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	outcomes := body["outcomes"].([]any)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "bear", outcomes[0].(map[string]any)["scenario"])
	comparison := body["comparison"].(map[string]any)
	assert.Len(t, comparison["alternativeResults"], 1)
}

func TestRetirement_Errors(t *testing.T) {
	r := testRouter(t, livePrice("100000"))

	w := do(t, r, http.MethodPost, "/api/v1/retirement", `{`+shortPlan+`, "scenario": "moon"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/retirement", `{`+shortPlan+`, "macro_events": ["nope"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/retirement", `{`+shortPlan+`, "compare": ["nope"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, testRouter(t, nil), http.MethodPost, "/api/v1/retirement", `{`+shortPlan+`}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestYield(t *testing.T) {
	r := testRouter(t, nil)
	w := do(t, r, http.MethodPost, "/api/v1/yield",
		`{"initial_fiat": 50000, "periods": 10, "periodic_yield_rate": 0.01, "reinvest": "none", "reference_price": 50000}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp YieldResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.TotalIncome.Equal(decimal.NewFromInt(5000)))
	assert.True(t, resp.TotalReturnPct.Equal(decimal.NewFromInt(10)))
	assert.Len(t, resp.Snapshots, 11)

	w = do(t, r, http.MethodPost, "/api/v1/yield", `{"initial_fiat": 1, "reinvest": "half", "reference_price": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBreakEven(t *testing.T) {
	r := testRouter(t, livePrice("100000"))

	w := do(t, r, http.MethodPost, "/api/v1/breakeven", `{`+shortPlan+`, "scenario": "base", "target": "required_btc"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "required_btc", body["target"])
	assert.Equal(t, true, body["converged"])

	w = do(t, r, http.MethodPost, "/api/v1/breakeven", `{`+shortPlan+`, "target": "max_withdrawal", "all_scenarios": true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	assert.Len(t, body["results"], 3)

	w = do(t, r, http.MethodPost, "/api/v1/breakeven", `{`+shortPlan+`, "target": "lambo"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = do(t, r, http.MethodPost, "/api/v1/breakeven", `{`+shortPlan+`, "target": "btc", "tolerance": 2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryRange(t *testing.T) {
	r := testRouter(t, nil)

	w := do(t, r, http.MethodGet, "/api/v1/history/range?start=2020-02-01&end=2020-03-15", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp HistoryRangeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "USD", resp.Currency)
	assert.Len(t, resp.Points, 2)

	w = do(t, r, http.MethodGet, "/api/v1/history/range", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Points, 4)

	w = do(t, r, http.MethodGet, "/api/v1/history/range?end=2021-01-01", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/history/range?currency=JPY", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotFound(t *testing.T) {
	w := do(t, testRouter(t, nil), http.MethodGet, "/api/v2/nothing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}
