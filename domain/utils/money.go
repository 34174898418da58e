package utils

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount in major units with the currency's symbol and separators,
// e.g. 250000 USD -> "$250,000.00"
func FormatMoney(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = money.USD
	}
	// money.New never returns a nil currency, unlike money.GetCurrency
	cur := *money.New(0, strings.ToUpper(currency)).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// maxAmountExponent bounds the decimal exponent of parsed amounts. Rescaling a value such as
// 1e-999999999 to cents allocates a coefficient with that many digits.
const maxAmountExponent = 30

// ParseAmount parses a decimal money amount from user input
func ParseAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q is not a decimal number", raw)
	}
	if exp := amount.Exponent(); exp < -maxAmountExponent || exp > maxAmountExponent {
		return decimal.Zero, fmt.Errorf("amount %q is out of range", raw)
	}
	return amount, nil
}

// HasAtMostDecimalPlaces reports whether the value needs no more than places fractional digits.
// Trailing zeros do not count, so 1.500 has two.
func HasAtMostDecimalPlaces(amount decimal.Decimal, places int32) bool {
	exp := amount.Exponent()
	if exp >= -places {
		return true
	}
	// At most NumDigits trailing zeros can be dropped from the coefficient
	if int64(-exp)-int64(amount.NumDigits()) > int64(places) {
		return false
	}
	return amount.Equal(amount.Truncate(places))
}
