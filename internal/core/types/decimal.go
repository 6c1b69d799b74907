// Package types provides the numeric value types shared by the ledger and
// the cost rollups.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount. Cost totals are never floats.
type Money = decimal.Decimal

// MustMoney parses s or panics. For constants and tests.
func MustMoney(s string) Money {
	return decimal.RequireFromString(s)
}

func Zero() Money { return decimal.Zero }

// quantityPlaces is the number of fractional digits a Quantity keeps.
const quantityPlaces = 4

// Quantity is a stock quantity in ten-thousandths of a unit. Balances are
// summed as integers, so a material total always equals the sum of its
// locations.
type Quantity int64

// MaxQuantity bounds every quantity and every balance: one trillion units.
// Two bounded values always add without leaving int64.
const MaxQuantity Quantity = 1_000_000_000_000 * 10_000

var maxUnits = MaxQuantity.Decimal()

// ErrQuantityRange is returned for values beyond MaxQuantity.
var ErrQuantityRange = errors.New("quantity out of range")

func NewQuantity(units int64) Quantity {
	return Quantity(decimal.NewFromInt(units).Shift(quantityPlaces).IntPart())
}

// NewQuantityFromFloat64 rounds half away from zero at the fourth place.
func NewQuantityFromFloat64(v float64) Quantity {
	return fromDecimal(decimal.NewFromFloat(v).Round(quantityPlaces))
}

// ParseQuantity accepts plain and exponent notation. Digits past the
// fourth place are truncated.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	if d.Abs().GreaterThan(maxUnits) {
		return 0, fmt.Errorf("parse quantity %q: %w", s, ErrQuantityRange)
	}
	return fromDecimal(d.Truncate(quantityPlaces)), nil
}

func fromDecimal(d decimal.Decimal) Quantity {
	return Quantity(d.Shift(quantityPlaces).IntPart())
}

// Decimal is the exact value in units.
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.New(int64(q), -quantityPlaces)
}

func (q Quantity) Float64() float64 { return q.Decimal().InexactFloat64() }

func (q Quantity) IsZero() bool     { return q == 0 }
func (q Quantity) IsPositive() bool { return q > 0 }
func (q Quantity) IsNegative() bool { return q < 0 }
func (q Quantity) Neg() Quantity    { return -q }

func (q Quantity) Min(other Quantity) Quantity { return min(q, other) }

// InRange reports whether |q| <= MaxQuantity.
func (q Quantity) InRange() bool { return q >= -MaxQuantity && q <= MaxQuantity }

// Add returns q+other, or ErrQuantityRange when either operand or the sum
// is outside the bound.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	if !q.InRange() || !other.InRange() {
		return 0, ErrQuantityRange
	}
	sum := q + other
	if !sum.InRange() {
		return 0, ErrQuantityRange
	}
	return sum, nil
}

// Times prices q units at unitCost.
func (q Quantity) Times(unitCost Money) Money {
	return q.Decimal().Mul(unitCost)
}

// String always shows four fractional digits.
func (q Quantity) String() string {
	return q.Decimal().StringFixed(quantityPlaces)
}

// MarshalJSON writes a JSON number.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON takes a number, a numeric string or null (zero).
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	parsed, err := ParseQuantity(raw)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
