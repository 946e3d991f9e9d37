package portman

import (
	"fmt"
	"iter"
	"slices"

	"github.com/Tanaka97/portman/date"
)

// Config carries the knobs of a book reconstruction. It is passed explicitly
// per invocation; the engine holds no process-wide state. The zero value is
// the default configuration: FIFO matching. A transaction that names lot
// references elects specific identification for itself regardless of the
// configured policy.
type Config struct {
	Policy MatchingPolicy
}

// Position is the derived state of one instrument: its open lots in
// acquisition order, and the realized gain accumulated so far (in the
// instrument's quote currency). Positions are never persisted; they are
// recomputed on demand from the ledger so they can never drift from it.
type Position struct {
	inst     *Instrument
	lots     lots
	realized Money
}

// Instrument returns the canonical record the position is for.
func (p *Position) Instrument() *Instrument { return p.inst }

// Quantity returns the aggregate open quantity, the sum over open lots.
func (p *Position) Quantity() Quantity { return p.lots.totalQuantity() }

// CostBasis returns the total remaining acquisition cost of the open lots.
func (p *Position) CostBasis() Money {
	c := p.lots.totalCost()
	if c.Currency() == "" {
		return M(0, p.inst.Currency())
	}
	return c
}

// AverageCost returns the weighted average basis per unit, zero for an empty
// position.
func (p *Position) AverageCost() Money {
	q := p.Quantity()
	if q.IsZero() {
		return M(0, p.inst.Currency())
	}
	return p.CostBasis().Div(q)
}

// Realized returns the gain realized by sells to date, in the quote
// currency.
func (p *Position) Realized() Money { return p.realized }

// Lots iterates over the open lots in acquisition order.
func (p *Position) Lots() iter.Seq[Lot] { return slices.Values(p.lots) }

// Book is the position set and per-currency cash the Lot Tracker rebuilds
// from one ledger. It is a value object: build it, read it, throw it away.
type Book struct {
	asOf      date.Date
	positions map[ID]*Position
	ids       []ID // sorted
	cash      map[string]Money
}

// AsOf returns the date of the last transaction applied.
func (b *Book) AsOf() date.Date { return b.asOf }

// Position returns the position for an instrument, or nil when the ledger
// never touched it.
func (b *Book) Position(id ID) *Position { return b.positions[id] }

// Positions iterates over all positions in instrument ID order, including
// closed ones (they still carry realized gains).
func (b *Book) Positions() iter.Seq[*Position] {
	return func(yield func(*Position) bool) {
		for _, id := range b.ids {
			if !yield(b.positions[id]) {
				return
			}
		}
	}
}

// Cash returns the balance in the given currency. Balances may be negative;
// the engine reports, the ingestion side decides policy.
func (b *Book) Cash(currency string) Money {
	if m, ok := b.cash[currency]; ok {
		return m
	}
	return M(0, currency)
}

// Currencies iterates over the currencies with a cash entry, sorted.
func (b *Book) Currencies() iter.Seq[string] {
	curs := make([]string, 0, len(b.cash))
	for c := range b.cash {
		curs = append(curs, c)
	}
	slices.Sort(curs)
	return slices.Values(curs)
}

func (b *Book) credit(m Money) {
	b.cash[m.Currency()] = b.Cash(m.Currency()).Add(m)
}

func (b *Book) debit(m Money) {
	b.cash[m.Currency()] = b.Cash(m.Currency()).Sub(m)
}

func (b *Book) position(inst *Instrument) *Position {
	p, ok := b.positions[inst.ID()]
	if !ok {
		p = &Position{inst: inst, realized: M(0, inst.Currency())}
		b.positions[inst.ID()] = p
		i, _ := slices.BinarySearch(b.ids, inst.ID())
		b.ids = slices.Insert(b.ids, i, inst.ID())
	}
	return p
}

// ApplyLedger reconstructs open positions, realized gains and cash from a
// ledger. Transactions are processed in ledger order (date order, same-day
// ties by ingestion). Sells and transfer-outs consume lots under
// cfg.Policy; a demand exceeding the open quantity fails with
// InsufficientLotError, an integrity violation that is surfaced, never
// papered over. The ledger and registry are only read; the returned book is
// freshly built, so concurrent ApplyLedger calls never share state.
func ApplyLedger(reg *Registry, l *Ledger, cfg Config) (*Book, error) {
	if err := l.Validate(reg); err != nil {
		return nil, fmt.Errorf("invalid ledger: %w", err)
	}

	b := &Book{
		positions: make(map[ID]*Position),
		cash:      make(map[string]Money),
	}
	// Acquisitions per instrument and day, to label lots deterministically.
	acquired := make(map[ID]map[date.Date]int)

	ref := func(id ID, on date.Date) string {
		if acquired[id] == nil {
			acquired[id] = make(map[date.Date]int)
		}
		acquired[id][on]++
		return lotRef(on, acquired[id][on])
	}

	for tx := range l.Transactions() {
		b.asOf = tx.Date
		if !tx.Fee.IsZero() {
			b.debit(tx.Fee)
		}
		switch tx.Type {
		case TxBuy:
			inst, _ := reg.Resolve(tx.Security)
			p := b.position(inst)
			cost := tx.Price.Mul(tx.Quantity)
			p.lots = append(p.lots, Lot{
				Ref:      ref(inst.ID(), tx.Date),
				Date:     tx.Date,
				Quantity: tx.Quantity,
				Cost:     cost,
			})
			b.debit(cost)

		case TxSell:
			inst, _ := reg.Resolve(tx.Security)
			p := b.position(inst)
			qty := tx.Quantity
			if qty.IsZero() { // sell the entire open position
				qty = p.Quantity()
				if qty.IsZero() {
					return nil, fmt.Errorf("sell all %s on %s: no open position", tx.Security, tx.Date)
				}
			}
			rest, matched, err := p.lots.consume(qty, electPolicy(cfg, tx), tx.Lots, inst.ID(), tx.Date)
			if err != nil {
				return nil, err
			}
			p.lots = rest
			proceeds := tx.Price.Mul(qty)
			p.realized = p.realized.Add(proceeds.Sub(matched))
			b.credit(proceeds)

		case TxDividend:
			inst, _ := reg.Resolve(tx.Security)
			b.position(inst)
			b.credit(tx.CashValue())

		case TxSplit:
			inst, _ := reg.Resolve(tx.Security)
			p := b.position(inst)
			p.lots = p.lots.split(tx.SplitNum, tx.SplitDen)

		case TxTransferIn:
			inst, _ := reg.Resolve(tx.Security)
			p := b.position(inst)
			p.lots = append(p.lots, Lot{
				Ref:      ref(inst.ID(), tx.Date),
				Date:     tx.Date,
				Quantity: tx.Quantity,
				Cost:     tx.Price.Mul(tx.Quantity),
			})

		case TxTransferOut:
			inst, _ := reg.Resolve(tx.Security)
			p := b.position(inst)
			qty := tx.Quantity
			if qty.IsZero() {
				qty = p.Quantity()
				if qty.IsZero() {
					return nil, fmt.Errorf("transfer all %s on %s: no open position", tx.Security, tx.Date)
				}
			}
			// The basis leaves the book with the shares: no proceeds, no
			// realized gain.
			rest, _, err := p.lots.consume(qty, electPolicy(cfg, tx), tx.Lots, inst.ID(), tx.Date)
			if err != nil {
				return nil, err
			}
			p.lots = rest

		case TxFee:
			b.debit(tx.Amount)

		case TxDeposit:
			b.credit(tx.Amount)

		case TxWithdraw:
			b.debit(tx.Amount)
		}
	}
	return b, nil
}

// electPolicy resolves the matching policy for one transaction: naming lot
// references elects specific identification for that sale alone.
func electPolicy(cfg Config, tx Transaction) MatchingPolicy {
	if len(tx.Lots) > 0 {
		return SpecificID
	}
	return cfg.Policy
}
