// Package money provides currency-safe monetary values using integer minor
// units and the Fowler Money pattern. Statement amounts arrive as localized
// strings ("1 234,56", "1234.56", "12 500,00 ₽") and are parsed into exact
// values without float intermediaries.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	RUB = "RUB" // Russian Ruble
	USD = "USD" // US Dollar
	EUR = "EUR" // Euro
	KZT = "KZT" // Kazakhstani Tenge
	BYN = "BYN" // Belarusian Ruble
)

// Money represents a monetary value with currency.
// It wraps go-money for safe arithmetic and shopspring/decimal for parsing.
type Money struct {
	m *money.Money
}

// New creates a Money value from minor units (kopecks, cents) and a currency code.
func New(amountMinor int64, currencyCode string) *Money {
	return &Money{
		m: money.New(amountMinor, currencyCode),
	}
}

// NewFromDecimal creates Money from a decimal.Decimal major-unit value.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(RUB)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	minor := amount.Mul(multiplier).Round(0).IntPart()

	return New(minor, currencyCode)
}

// NewFromString parses a localized amount string.
// Accepts "1234.56", "1 234,56", "12 500,00" and tolerates trailing
// currency symbols. Thousands may be separated by regular or
// non-breaking spaces; the decimal separator may be a comma or a dot.
func NewFromString(amount string, currencyCode string) (*Money, error) {
	amount = strings.TrimSpace(amount)
	amount = strings.ReplaceAll(amount, " ", "")
	amount = strings.ReplaceAll(amount, " ", "")

	for _, sym := range []string{"₽", "$", "€", "₸", "руб.", "руб"} {
		amount = strings.ReplaceAll(amount, sym, "")
	}

	amount = strings.ReplaceAll(amount, ",", ".")
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return NewFromDecimal(d, currencyCode), nil
}

// Zero returns a zero Money value for the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the amount in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsZero returns true if the amount is zero.
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// IsNegative returns true if the amount is less than zero.
func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
}

// IsPositive returns true if the amount is greater than zero.
func (m *Money) IsPositive() bool {
	return m != nil && m.m != nil && m.m.IsPositive()
}

// Abs returns the absolute value.
func (m *Money) Abs() *Money {
	if m == nil || m.m == nil {
		return Zero(RUB)
	}
	return &Money{m: m.m.Absolute()}
}

// Negate returns the negated value.
func (m *Money) Negate() *Money {
	if m == nil || m.m == nil {
		return Zero(RUB)
	}
	return &Money{m: m.m.Negative()}
}

// Add adds two Money values. Returns an error if currencies don't match.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: result}, nil
}

// Equals returns true if both values are equal.
func (m *Money) Equals(other *Money) bool {
	if m == nil || m.m == nil {
		return other == nil || other.m == nil || other.IsZero()
	}
	if other == nil || other.m == nil {
		return m.IsZero()
	}
	eq, _ := m.m.Equals(other.m)
	return eq
}

// SameCurrency returns true if both values carry the same currency.
func (m *Money) SameCurrency(other *Money) bool {
	if m == nil || m.m == nil || other == nil || other.m == nil {
		return false
	}
	return m.m.SameCurrency(other.m)
}

// ToDecimal converts to a major-unit decimal.Decimal.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	d := decimal.NewFromInt(m.m.Amount())
	divisor := decimal.New(1, int32(currency.Fraction))
	return d.Div(divisor)
}

// Display returns a locale-formatted string (e.g., "1 234,56 ₽").
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "0"
	}
	return m.m.Display()
}

// String returns the amount as a decimal string (e.g., "1234.56").
func (m *Money) String() string {
	if m == nil || m.m == nil {
		return "0.00"
	}
	return m.ToDecimal().String()
}

// MarshalJSON implements json.Marshaler.
func (m *Money) MarshalJSON() ([]byte, error) {
	if m == nil || m.m == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(map[string]interface{}{
		"amount":   m.Amount(),
		"currency": m.Currency(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.m = money.New(v.Amount, v.Currency)
	return nil
}

// Scan implements sql.Scanner. Stored values are minor units.
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		m.m = nil
		return nil
	}

	switch v := value.(type) {
	case int64:
		m.m = money.New(v, RUB)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
}

// Value implements driver.Valuer.
func (m *Money) Value() (driver.Value, error) {
	if m == nil || m.m == nil {
		return nil, nil
	}
	return m.Amount(), nil
}
