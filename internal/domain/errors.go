package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrZeroOrNegativeHorizon is returned when an investment or simulation
// horizon is empty, e.g. an investment date on or after the reference date.
var ErrZeroOrNegativeHorizon = errors.New("zero or negative horizon")

// ErrMissingReferencePrice is returned when no current price is available.
// Calculators never substitute a default price.
var ErrMissingReferencePrice = errors.New("reference price unavailable")

// ValidationError reports input that was rejected before any calculation ran.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("validation failed: %s: %v", msg, e.Cause)
	}
	return "validation failed: " + msg
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// OutOfRangeError reports a date lookup outside the loaded historical data.
type OutOfRangeError struct {
	Requested time.Time
	Min       time.Time
	Max       time.Time
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("date %s is outside available data [%s, %s]",
		e.Requested.Format(DateLayout), e.Min.Format(DateLayout), e.Max.Format(DateLayout))
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsOutOfRange reports whether err is (or wraps) an OutOfRangeError.
func IsOutOfRange(err error) bool {
	var oe *OutOfRangeError
	return errors.As(err, &oe)
}
