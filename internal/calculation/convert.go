package calculation

import (
	"math"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// SatsPerBTC is the number of satoshis in one bitcoin.
const SatsPerBTC = 100_000_000

var satsPerBTC = decimal.NewFromInt(SatsPerBTC)

// btcPlaces bounds the precision of derived BTC quantities so repeated
// multiplication does not grow the decimal without limit.
const btcPlaces = 16

// ToSats converts a fiat amount to whole satoshis at fiatPerBtc,
// rounding half up.
func ToSats(fiatAmount, fiatPerBtc decimal.Decimal) (int64, error) {
	if fiatAmount.IsNegative() {
		return 0, domain.NewValidationError("amount", "must not be negative, got %s", fiatAmount)
	}
	if err := requirePositivePrice(fiatPerBtc); err != nil {
		return 0, err
	}
	return BTCToSats(fiatAmount.Div(fiatPerBtc))
}

// FromSats converts satoshis to a fiat amount at fiatPerBtc.
func FromSats(sats int64, fiatPerBtc decimal.Decimal) (decimal.Decimal, error) {
	if sats < 0 {
		return decimal.Zero, domain.NewValidationError("sats", "must not be negative, got %d", sats)
	}
	if err := requirePositivePrice(fiatPerBtc); err != nil {
		return decimal.Zero, err
	}
	return SatsToBTC(sats).Mul(fiatPerBtc), nil
}

// BTCToSats converts a bitcoin quantity to satoshis, rounding half up.
func BTCToSats(btc decimal.Decimal) (int64, error) {
	if btc.IsNegative() {
		return 0, domain.NewValidationError("btc", "must not be negative, got %s", btc)
	}
	// Round is half away from zero, i.e. half up for non-negative values
	return btc.Mul(satsPerBTC).Round(0).IntPart(), nil
}

// SatsToBTC converts satoshis to bitcoin.
func SatsToBTC(sats int64) decimal.Decimal {
	return decimal.NewFromInt(sats).Div(satsPerBTC)
}

// SatsPerFiatUnit is how many satoshis one unit of fiat buys at fiatPerBtc.
func SatsPerFiatUnit(fiatPerBtc decimal.Decimal) (int64, error) {
	return ToSats(decimal.NewFromInt(1), fiatPerBtc)
}

// DecimalFromFloat converts user input, rejecting NaN and infinities.
func DecimalFromFloat(field string, f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, domain.NewValidationError(field, "must be a finite number")
	}
	return decimal.NewFromFloat(f), nil
}

func requirePositivePrice(price decimal.Decimal) error {
	if price.IsZero() {
		return &domain.ValidationError{Field: "price", Message: "a positive price is required", Cause: domain.ErrMissingReferencePrice}
	}
	if price.IsNegative() {
		return domain.NewValidationError("price", "must be positive, got %s", price)
	}
	return nil
}

// powFrac computes base^exp for a fractional exponent. Decimal has no exact
// fractional power, so the factor is taken in float64 and rounded to 12
// places; callers round the products they keep.
func powFrac(base decimal.Decimal, exp float64) decimal.Decimal {
	if exp == 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(math.Pow(base.InexactFloat64(), exp)).Round(12)
}
