// Package money provides fixed-point currency amounts.
//
// Amounts are counted in minor units (cents for USD/EUR, yen for JPY) so that
// splitting and summing never drift. Decimal major-unit values from clients are
// converted with FromDecimal, which refuses anything finer than the currency's
// minor unit instead of rounding it away.
package money

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/apperrors"
)

// Amount is a signed quantity of minor currency units.
type Amount int64

// Abs returns the absolute value of a.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// zero-decimal and three-decimal currencies (ISO 4217 minor unit column).
var exponents = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0, "KRW": 0,
	"PYG": 0, "RWF": 0, "UGX": 0, "UYI": 0, "VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// Exponent returns the number of minor-unit digits for the currency.
func Exponent(currency string) int32 {
	if exp, ok := exponents[strings.ToUpper(currency)]; ok {
		return exp
	}
	return 2
}

var validate = validator.New()

// NormalizeCurrency upper-cases and validates an ISO 4217 currency code.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validate.Var(code, "required,iso4217"); err != nil {
		return "", apperrors.Validationf("invalid currency code %q", code)
	}
	return code, nil
}

// MaxAmount is the largest single expense, share or settlement in minor
// units. Sums over a trip stay far below the int64 limit.
const MaxAmount Amount = 1_000_000_000_000_000

var maxDecimal = decimal.NewFromInt(int64(MaxAmount))

// CheckRange rejects amounts whose magnitude exceeds MaxAmount.
func CheckRange(a Amount) error {
	if a > MaxAmount || a < -MaxAmount {
		return apperrors.Validationf("amount %d exceeds the limit of %d minor units", a, MaxAmount)
	}
	return nil
}

// Add returns a+b and false if the sum overflows int64.
func Add(a, b Amount) (Amount, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// FromDecimal converts a major-unit value (e.g. 12.34 USD) into minor units.
// Values with more precision than the currency allows are rejected.
func FromDecimal(d decimal.Decimal, currency string) (Amount, error) {
	shifted := d.Shift(Exponent(currency))
	if !shifted.IsInteger() {
		return 0, apperrors.Validationf("amount %s has more than %d decimal places for %s",
			d.String(), Exponent(currency), strings.ToUpper(currency))
	}
	if shifted.Abs().GreaterThan(maxDecimal) {
		return 0, apperrors.Validationf("amount %s %s is out of range", d.String(), strings.ToUpper(currency))
	}
	return Amount(shifted.IntPart()), nil
}

// ToDecimal converts minor units back to a major-unit decimal.
func ToDecimal(a Amount, currency string) decimal.Decimal {
	return decimal.New(int64(a), -Exponent(currency))
}

// Format renders a with exactly the currency's number of decimal places.
func Format(a Amount, currency string) string {
	return ToDecimal(a, currency).StringFixed(Exponent(currency))
}

// Sum adds amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}
