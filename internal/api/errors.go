package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rgehrsitz/btcgo/internal/breakeven"
	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/rgehrsitz/btcgo/internal/transform"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failure.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// errDataUnavailable is returned by endpoints that need historical data when
// the server runs without it.
var errDataUnavailable = errors.New("historical data is not loaded")

// writeError maps err onto a status code and error body.
func writeError(c *gin.Context, err error) {
	status, detail := classify(err)
	c.JSON(status, ErrorResponse{Error: detail})
}

func classify(err error) (int, ErrorDetail) {
	var (
		oe *domain.OutOfRangeError
		ve *domain.ValidationError
		be *breakeven.BreakEvenError
		te *transform.TransformError
	)
	switch {
	case errors.As(err, &oe):
		return http.StatusUnprocessableEntity, ErrorDetail{
			Code:    "OUT_OF_RANGE",
			Message: err.Error(),
			Details: map[string]any{
				"requested": oe.Requested.Format(domain.DateLayout),
				"min":       oe.Min.Format(domain.DateLayout),
				"max":       oe.Max.Format(domain.DateLayout),
			},
		}
	case errors.As(err, &ve):
		d := ErrorDetail{Code: "VALIDATION_ERROR", Message: err.Error()}
		if ve.Field != "" {
			d.Details = map[string]any{"field": ve.Field}
		}
		return http.StatusBadRequest, d
	case errors.As(err, &te):
		return http.StatusBadRequest, ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: err.Error(),
			Details: map[string]any{"transform": te.TransformName},
		}
	case errors.As(err, &be):
		if be.Operation == "parse_target" || be.Operation == "validate_request" {
			return http.StatusBadRequest, ErrorDetail{Code: "VALIDATION_ERROR", Message: err.Error()}
		}
		return http.StatusUnprocessableEntity, ErrorDetail{
			Code:    "BREAKEVEN_FAILED",
			Message: err.Error(),
			Details: map[string]any{"operation": be.Operation},
		}
	case errors.Is(err, errDataUnavailable):
		return http.StatusServiceUnavailable, ErrorDetail{Code: "DATA_UNAVAILABLE", Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, ErrorDetail{Code: "TIMEOUT", Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorDetail{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
}

// badRequest answers a body that could not be decoded.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
	})
}
