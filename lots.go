package portman

import (
	"fmt"
	"slices"

	"github.com/Tanaka97/portman/date"
)

// Lot is a discrete acquired quantity of one instrument with its own cost
// basis and acquisition date. Cost is the lot's total remaining acquisition
// cost, not a per-unit figure: a split then rescales Quantity alone and the
// total basis is preserved exactly, with no division.
type Lot struct {
	Ref      string // deterministic label: acquisition date + "#" + ordinal
	Date     date.Date
	Quantity Quantity
	Cost     Money
}

// UnitCost returns the basis per unit, for display.
func (l Lot) UnitCost() Money {
	if l.Quantity.IsZero() {
		return M(0, l.Cost.Currency())
	}
	return l.Cost.Div(l.Quantity)
}

// lotRef labels the n-th acquisition of an instrument on a day, 1-based.
// The label is derived purely from the ledger, so recomputing the book
// yields the same references every time.
func lotRef(on date.Date, n int) string { return fmt.Sprintf("%s#%d", on, n) }

// lots is the open working set for one instrument, in acquisition order
// (oldest first). It is owned exclusively by the book being built.
type lots []Lot

func (ls lots) totalQuantity() Quantity {
	var q Quantity
	for _, l := range ls {
		q = q.Add(l.Quantity)
	}
	return q
}

func (ls lots) totalCost() Money {
	var c Money
	for _, l := range ls {
		c = c.Add(l.Cost)
	}
	return c
}

// split rescales every open lot's quantity by num/den. Total cost per lot is
// untouched, so the basis per unit inversely scales and the invariant
// "splits preserve total cost basis exactly" holds by construction.
func (ls lots) split(num, den int64) lots {
	ratio := Q(num).Div(Q(den))
	out := make(lots, len(ls))
	for i, l := range ls {
		l.Quantity = l.Quantity.Mul(ratio)
		out[i] = l
	}
	return out
}

// consume removes qty from the open lots in policy order and returns the
// remaining lots plus the total matched cost basis. A demand exceeding the
// open quantity fails with InsufficientLotError and consumes nothing.
func (ls lots) consume(qty Quantity, policy MatchingPolicy, refs []string, sec ID, on date.Date) (lots, Money, error) {
	order, err := ls.order(policy, refs, sec, on)
	if err != nil {
		return nil, Money{}, err
	}

	var available Quantity
	for _, i := range order {
		available = available.Add(ls[i].Quantity)
	}
	if qty.GreaterThan(available) {
		return nil, Money{}, &InsufficientLotError{Security: sec, Requested: qty, Available: available, Date: on}
	}

	out := slices.Clone(ls)
	var matched Money
	remaining := qty
	for _, i := range order {
		if remaining.IsZero() {
			break
		}
		l := out[i]
		if l.Quantity.GreaterThan(remaining) {
			// Partial: remove the proportional share of the lot's cost.
			share := l.Cost.Mul(remaining).Div(l.Quantity)
			out[i].Quantity = l.Quantity.Sub(remaining)
			out[i].Cost = l.Cost.Sub(share)
			matched = matched.Add(share)
			remaining = Q(0)
			break
		}
		matched = matched.Add(l.Cost)
		remaining = remaining.Sub(l.Quantity)
		out[i].Quantity = Q(0)
	}

	// Drop exhausted lots, keeping acquisition order.
	kept := out[:0]
	for _, l := range out {
		if !l.Quantity.IsZero() {
			kept = append(kept, l)
		}
	}
	return kept, matched, nil
}

// order returns the indexes to walk for the given policy. FIFO walks oldest
// first, LIFO newest first; specific identification follows the
// transaction's references in the order the holder designated them.
func (ls lots) order(policy MatchingPolicy, refs []string, sec ID, on date.Date) ([]int, error) {
	switch policy {
	case FIFO:
		order := make([]int, len(ls))
		for i := range ls {
			order[i] = i
		}
		return order, nil
	case LIFO:
		order := make([]int, len(ls))
		for i := range ls {
			order[i] = len(ls) - 1 - i
		}
		return order, nil
	case SpecificID:
		if len(refs) == 0 {
			return nil, fmt.Errorf("%s on %s: specific identification requires lot references", sec, on)
		}
		order := make([]int, 0, len(refs))
		seen := make(map[int]bool, len(refs))
		for _, ref := range refs {
			i := slices.IndexFunc(ls, func(l Lot) bool { return l.Ref == ref })
			if i < 0 {
				return nil, fmt.Errorf("%s on %s: lot %q is not open", sec, on, ref)
			}
			if seen[i] {
				return nil, fmt.Errorf("%s on %s: lot %q referenced twice", sec, on, ref)
			}
			seen[i] = true
			order = append(order, i)
		}
		return order, nil
	default:
		return nil, fmt.Errorf("unknown matching policy %d", int(policy))
	}
}
