package valueobject

import (
	"github.com/billing/engine/internal/domain/shared"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	CNY Currency = "CNY" // Chinese Yuan
	HKD Currency = "HKD" // Hong Kong Dollar
	JPY Currency = "JPY" // Japanese Yen (no minor unit)
	KRW Currency = "KRW" // South Korean Won (no minor unit)
	BHD Currency = "BHD" // Bahraini Dinar (3 decimal places)
	KWD Currency = "KWD" // Kuwaiti Dinar (3 decimal places)
	OMR Currency = "OMR" // Omani Rial (3 decimal places)
)

// DefaultCurrency is used when no currency is configured
const DefaultCurrency = USD

// exponents maps each supported currency to its minor-unit exponent.
// The subunit multiplier is always 10^exponent, so rounding an amount to
// the exponent and multiplying yields an exact integer cents value.
var exponents = map[Currency]int32{
	USD: 2,
	EUR: 2,
	GBP: 2,
	CNY: 2,
	HKD: 2,
	JPY: 0,
	KRW: 0,
	BHD: 3,
	KWD: 3,
	OMR: 3,
}

// String returns the string representation of the currency
func (c Currency) String() string {
	return string(c)
}

// IsValid returns true if the currency is supported
func (c Currency) IsValid() bool {
	_, ok := exponents[c]
	return ok
}

// Exponent returns the number of minor-unit decimal places for the currency
func (c Currency) Exponent() (int32, error) {
	exp, ok := exponents[c]
	if !ok {
		return 0, shared.CurrencyFailure(string(c))
	}
	return exp, nil
}

// SubunitToUnit returns the multiplier converting major units to minor
// units (e.g. 100 for USD, 1 for JPY, 1000 for BHD)
func (c Currency) SubunitToUnit() (int64, error) {
	exp, err := c.Exponent()
	if err != nil {
		return 0, err
	}
	multiplier := int64(1)
	for i := int32(0); i < exp; i++ {
		multiplier *= 10
	}
	return multiplier, nil
}

// AllCurrencies returns all supported currencies
func AllCurrencies() []Currency {
	return []Currency{USD, EUR, GBP, CNY, HKD, JPY, KRW, BHD, KWD, OMR}
}
