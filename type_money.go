package portman

import (
	"encoding/json"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an exact monetary value in one currency. The amount is kept as a
// decimal through every computation; rounding to the currency's minor unit
// happens only when formatting for display.
type Money struct {
	value decimal.Decimal
	cur   string
}

// M builds a Money from any numeric type and an ISO-4217 currency code.
func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// currency returns the full go-money currency for formatting metadata.
// Unknown codes fall back to go-money's default currency handling.
func (m Money) currency() money.Currency {
	return *money.New(0, m.cur).Currency()
}

// Currency returns the ISO-4217 currency code.
func (m Money) Currency() string { return m.cur }

// Amount returns the exact decimal amount.
func (m Money) Amount() decimal.Decimal { return m.value }

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }

// Neg returns the value with its sign flipped.
func (m Money) Neg() Money { return Money{value: m.value.Neg(), cur: m.cur} }

// Abs returns the absolute value.
func (m Money) Abs() Money { return Money{value: m.value.Abs(), cur: m.cur} }

// Mul returns a price or amount multiplied by a quantity.
func (m Money) Mul(q Quantity) Money { return Money{value: m.value.Mul(q.value), cur: m.cur} }

// Div returns the amount divided by a quantity, e.g. a basis per unit.
func (m Money) Div(q Quantity) Money { return Money{value: m.value.Div(q.value), cur: m.cur} }

// Ratio returns the dimensionless ratio m/n. Both values must share a
// currency.
func (m Money) Ratio(n Money) Quantity {
	cur(m, n)
	return Quantity{value: m.value.Div(n.value)}
}

// Convert returns the value exchanged into another currency at the given
// rate, where rate is the price of one unit of m's currency expressed in the
// target currency.
func (m Money) Convert(rate Quantity, to string) Money {
	if m.cur == to {
		return m
	}
	return Money{value: m.value.Mul(rate.value), cur: to}
}

// Add returns m + n. Mixing currencies panics: it is always a programming
// error, not an input error. The empty currency is weak and adopts the other
// operand's.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }

// Sub returns m - n, with the same currency rules as Add.
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + " != " + b.cur)
	}
	return a.cur
}

// String formats the value rounded to the currency's minor unit, with the
// currency's own symbol and digit grouping.
func (m Money) String() string {
	c := m.currency()
	return c.Formatter().Format(m.value.Shift(int32(c.Fraction)).Round(0).IntPart())
}

// SignedString is String with an explicit sign; zero renders as "-" so
// tables of gains stay readable.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// MarshalJSON encodes the exact amount and its currency. No rounding: per-unit
// prices and bases are routinely finer than the currency's minor unit.
func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	w.Append("amount", m.value)
	return w.MarshalJSON()
}

// UnmarshalJSON decodes what MarshalJSON wrote.
func (m *Money) UnmarshalJSON(b []byte) error {
	var j struct {
		Currency string          `json:"currency"`
		Amount   decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	m.cur, m.value = j.Currency, j.Amount
	return nil
}
