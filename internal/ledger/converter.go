package ledger

import (
	"errors"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"
)

// ErrZeroRate is returned when a conversion would divide by a zero rate.
var ErrZeroRate = errors.New("exchange rate is zero")

// Convert moves amount from one currency to another using rates expressed as
// units per one unit of the base currency. Conversions between two non-base
// currencies pivot through the base.
func Convert(amount decimal.Decimal, from, to *models.Currency) (decimal.Decimal, error) {
	if from.Code == to.Code {
		return amount, nil
	}

	for _, c := range []*models.Currency{from, to} {
		if !c.IsBase && c.ExchangeRate.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrZeroRate, c.Code)
		}
	}

	if from.IsBase {
		return amount.Mul(to.ExchangeRate), nil
	}
	inBase := amount.Div(from.ExchangeRate)
	if to.IsBase {
		return inBase, nil
	}
	return inBase.Mul(to.ExchangeRate), nil
}

// MinorUnits returns the number of decimal places used by a currency, two
// when the code is unknown.
func MinorUnits(code string) int32 {
	if c := money.GetCurrency(code); c != nil {
		return int32(c.Fraction)
	}
	return 2
}

// RoundToCurrency rounds amount to the minor units of the currency code.
func RoundToCurrency(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(MinorUnits(code))
}

// CurrencySymbol returns the display symbol for a currency code, or the code
// itself when none is known.
func CurrencySymbol(code string) string {
	if c := money.GetCurrency(code); c != nil && c.Grapheme != "" {
		return c.Grapheme
	}
	return code
}

// IsKnownCurrency reports whether code is in the ISO 4217 table.
func IsKnownCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}
