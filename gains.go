package portman

import (
	"fmt"

	"github.com/Tanaka97/portman/date"
)

// GainLine is the performance of one instrument: what selling realized so
// far and what the open position would add at current prices. Monetary
// fields are in the snapshot's base currency; the basis stays in the quote
// currency, next to the average cost it came from.
type GainLine struct {
	Security   ID
	Class      AssetClass
	Quantity   Quantity
	CostBasis  Money // quote currency
	Value      Money // base currency
	Realized   Money // base currency
	Unrealized Money // base currency
	Total      Money // base currency
}

// Gains is the performance report for a book at one valuation. Lines are in
// instrument ID order; closed positions keep a line as long as they
// realized something.
type Gains struct {
	on         date.Date
	base       string
	lines      []GainLine
	realized   Money
	unrealized Money
}

// On returns the valuation date the report is as of.
func (g *Gains) On() date.Date { return g.on }

// Base returns the currency all gains are expressed in.
func (g *Gains) Base() string { return g.base }

// Lines returns the per-instrument breakdown.
func (g *Gains) Lines() []GainLine { return g.lines }

// Realized returns the total gain realized by sells to date.
func (g *Gains) Realized() Money { return g.realized }

// Unrealized returns the total open gain at snapshot prices.
func (g *Gains) Unrealized() Money { return g.unrealized }

// Total returns realized plus unrealized gain.
func (g *Gains) Total() Money { return g.realized.Add(g.unrealized) }

// NewGains builds the gains report for a book and the snapshot valuating
// it. Realized gains accrue in each instrument's quote currency; they are
// converted with the snapshot's own rates so the report is consistent with
// the valuation it accompanies. A realized gain in a currency the snapshot
// never priced fails with MissingRateError rather than being dropped.
func NewGains(b *Book, snap *Snapshot) (*Gains, error) {
	g := &Gains{
		on:         snap.On(),
		base:       snap.Base(),
		realized:   M(0, snap.Base()),
		unrealized: M(0, snap.Base()),
	}
	for p := range b.Positions() {
		id := p.Instrument().ID()
		line := GainLine{
			Security:  id,
			Class:     p.Instrument().Class(),
			Quantity:  p.Quantity(),
			CostBasis: p.CostBasis(),
			Value:     M(0, snap.Base()),
		}

		realized := p.Realized()
		converted, err := toBase(realized, snap)
		if err != nil {
			return nil, err
		}
		line.Realized = converted

		line.Unrealized = M(0, snap.Base())
		if h, ok := snap.Holding(id); ok {
			line.Value = h.Value
			line.Unrealized = h.Unrealized
		} else if !p.Quantity().IsZero() {
			return nil, fmt.Errorf("position %s is open but absent from the %s snapshot", id, snap.On())
		}

		if line.Quantity.IsZero() && line.Realized.IsZero() {
			continue // touched by dividends only, nothing to report
		}
		line.Total = line.Realized.Add(line.Unrealized)
		g.lines = append(g.lines, line)
		g.realized = g.realized.Add(line.Realized)
		g.unrealized = g.unrealized.Add(line.Unrealized)
	}
	return g, nil
}

func toBase(m Money, snap *Snapshot) (Money, error) {
	if m.Currency() == snap.Base() || m.IsZero() {
		return M(m.Amount(), snap.Base()), nil
	}
	rate, ok := snap.Rate(m.Currency())
	if !ok {
		return Money{}, &MissingRateError{From: m.Currency(), To: snap.Base(), AsOf: snap.On()}
	}
	return m.Convert(rate, snap.Base()), nil
}
