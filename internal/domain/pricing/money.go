// internal/domain/pricing/money.go
package pricing

import "fmt"

// DefaultCurrency is the ISO currency code used when none is configured.
const DefaultCurrency = "INR"

// Money represents a monetary amount in minor units (paise for INR).
// All arithmetic stays in int64 minor units; amounts are never divided
// through floating point.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// New creates a Money value in the given currency.
func New(amount int64, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: amount, Currency: currency}
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return New(0, currency)
}

// Add returns m + other. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub returns m - other. Currencies must match.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// GetFormatted returns the amount in major units for display only.
// Never feed the result back into money arithmetic.
func (m Money) GetFormatted() float64 {
	return float64(m.Amount) / 100
}

// Percent computes amount * rate / 100 in integer minor units,
// truncating toward zero. rate is a whole-number percentage scaled
// by 100 is not needed here; callers pass e.g. 18 for 18%.
func Percent(amount int64, rate int64) int64 {
	return amount * rate / 100
}

// Min returns the smaller of a and b.
func Min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// ClampZero returns v, floored at zero. Totals never go negative.
func ClampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// LineTotal computes quantity * unitPrice.
func LineTotal(quantity int, unitPrice int64) int64 {
	return int64(quantity) * unitPrice
}
