package portman

import (
	"fmt"
	"strings"
)

// ID identifies an instrument as SYMBOL.VENUE, e.g. "AAPL.XNAS": an uppercase
// ticker plus the 4-character market identifier code of its venue. A
// 6-letter currency pair such as "EURUSD" is also a valid ID; the price
// table uses pair IDs to record exchange rates.
type ID string

// NewID builds and validates an instrument ID from a symbol and a venue MIC.
func NewID(symbol, venue string) (ID, error) {
	return ParseID(symbol + "." + venue)
}

// ParseID validates the SYMBOL.VENUE form.
func ParseID(s string) (ID, error) {
	sym, mic, ok := strings.Cut(s, ".")
	if !ok {
		return "", fmt.Errorf("invalid instrument ID %q: want SYMBOL.VENUE", s)
	}
	if !validSymbol(sym) {
		return "", fmt.Errorf("invalid instrument ID %q: symbol must be 1-12 uppercase letters, digits or '-'", s)
	}
	if !validMIC(mic) {
		return "", fmt.Errorf("invalid instrument ID %q: venue must be a 4-character MIC", s)
	}
	return ID(s), nil
}

// Pair returns the ID recording the rate of one base-currency unit expressed
// in the quote currency, e.g. Pair("EUR","USD") for EUR/USD.
func Pair(base, quote string) ID { return ID(base + quote) }

// IsPair reports whether the ID is a 6-letter currency pair.
func (id ID) IsPair() bool {
	if len(id) != 6 || strings.Contains(string(id), ".") {
		return false
	}
	for _, r := range id {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Symbol returns the ticker part of a SYMBOL.VENUE ID.
func (id ID) Symbol() string {
	sym, _, _ := strings.Cut(string(id), ".")
	return sym
}

// Venue returns the MIC part of a SYMBOL.VENUE ID.
func (id ID) Venue() string {
	_, mic, _ := strings.Cut(string(id), ".")
	return mic
}

func (id ID) String() string { return string(id) }

func validSymbol(s string) bool {
	if len(s) == 0 || len(s) > 12 {
		return false
	}
	for _, r := range s {
		ok := (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-'
		if !ok {
			return false
		}
	}
	return true
}

func validMIC(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		ok := (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return false
		}
	}
	return true
}

func validCurrency(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Instrument is a canonical, immutable record of a tradable asset: identity,
// asset class, the currency it is quoted in, and an optional quantity
// increment (precision rule: traded quantities must be whole multiples).
type Instrument struct {
	id        ID
	class     AssetClass
	currency  string
	increment Quantity
}

// NewInstrument validates and builds an instrument record. A zero increment
// means quantities are unconstrained.
func NewInstrument(id ID, class AssetClass, currency string, increment Quantity) (*Instrument, error) {
	if _, err := ParseID(string(id)); err != nil {
		return nil, err
	}
	if !validCurrency(currency) {
		return nil, fmt.Errorf("instrument %s: invalid currency %q", id, currency)
	}
	if increment.IsNegative() {
		return nil, fmt.Errorf("instrument %s: negative increment %s", id, increment)
	}
	return &Instrument{id: id, class: class, currency: currency, increment: increment}, nil
}

func (i *Instrument) ID() ID              { return i.id }
func (i *Instrument) Class() AssetClass   { return i.class }
func (i *Instrument) Currency() string    { return i.currency }
func (i *Instrument) Increment() Quantity { return i.increment }

// Equal reports whether two records carry the same attributes.
func (i *Instrument) Equal(o *Instrument) bool {
	return i.id == o.id && i.class == o.class && i.currency == o.currency &&
		i.increment.Equal(o.increment)
}

func (i *Instrument) String() string {
	return fmt.Sprintf("%s (%s, %s)", i.id, i.class, i.currency)
}

// MarshalJSON encodes the record with a stable key order.
func (i *Instrument) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", i.id)
	w.Append("class", i.class)
	w.Append("currency", i.currency)
	if !i.increment.IsZero() {
		w.Append("increment", i.increment)
	}
	return w.MarshalJSON()
}
