// Package api exposes the calculators over HTTP with gin.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rgehrsitz/btcgo/internal/calculation"
	"github.com/rgehrsitz/btcgo/internal/compare"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/history"
	"github.com/shopspring/decimal"
)

// PriceProvider supplies the live reference price. *pricefeed.Ticker
// implements it.
type PriceProvider interface {
	Latest() (domain.Quote, bool)
	ReferencePrice() (decimal.Decimal, error)
}

// Deps are the collaborators the handlers need. Data and Prices may be nil;
// the endpoints that need them then answer with an error.
type Deps struct {
	Config         *domain.Configuration
	Engine         *calculation.CalculationEngine
	Data           *history.DataManager
	Prices         PriceProvider
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Engine == nil && deps.Config != nil {
		deps.Engine = calculation.NewCalculationEngine(deps.Config.ScenarioSet())
	}

	h := &Handler{
		config:  deps.Config,
		engine:  deps.Engine,
		compare: compare.NewCompareEngine(deps.Engine),
		data:    deps.Data,
		prices:  deps.Prices,
	}

	router := gin.New()
	router.Use(RequestID())
	router.Use(Logger(deps.Logger))
	router.Use(ErrorHandler())
	router.Use(CORS(deps.AllowedOrigins))

	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/price", h.GetPrice)
		v1.GET("/scenarios", h.ListScenarios)
		v1.GET("/templates", h.ListTemplates)
		v1.GET("/history/range", h.HistoryRange)

		v1.POST("/convert", h.Convert)
		v1.POST("/regret", h.Regret)
		v1.POST("/dca", h.DCA)
		v1.POST("/retirement", h.Retirement)
		v1.POST("/yield", h.Yield)
		v1.POST("/breakeven", h.BreakEven)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: ErrorDetail{Code: "NOT_FOUND", Message: "no route for " + c.Request.URL.Path}})
	})

	return router
}
