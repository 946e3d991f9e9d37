package portman

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/Tanaka97/portman/date"
)

// Ledger is the ordered sequence of transactions the engine computes from.
// It is kept sorted by date; transactions on the same day stay in ingestion
// order (stable sort), which makes every downstream computation
// reproducible. The engine only ever reads it: the ingestion side owns
// appends, one writer at a time.
type Ledger struct {
	transactions []Transaction
}

// NewLedger returns a ledger holding the given transactions in date order.
func NewLedger(txs ...Transaction) *Ledger {
	l := &Ledger{}
	return l.Append(txs...)
}

// Append adds transactions and restores date order, keeping ingestion order
// for same-day ties.
func (l *Ledger) Append(txs ...Transaction) *Ledger {
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
	return l
}

func (l *Ledger) stableSort() {
	slices.SortStableFunc(l.transactions, func(a, b Transaction) int {
		return a.Date.Compare(b.Date)
	})
}

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Transactions iterates in date order, same-day ties in ingestion order.
func (l *Ledger) Transactions() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if !yield(tx) {
				return
			}
		}
	}
}

// Between iterates over the transactions falling inside the range,
// boundaries included.
func (l *Ledger) Between(r date.Range) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if tx.Date.After(r.To) {
				return
			}
			if r.Contains(tx.Date) && !yield(tx) {
				return
			}
		}
	}
}

// Securities iterates over the distinct security IDs the ledger touches, in
// ID order.
func (l *Ledger) Securities() iter.Seq[ID] {
	var ids []ID
	for _, tx := range l.transactions {
		if tx.Security == "" {
			continue
		}
		if i, found := slices.BinarySearch(ids, tx.Security); !found {
			ids = slices.Insert(ids, i, tx.Security)
		}
	}
	return slices.Values(ids)
}

// Validate checks every transaction against the registry and reports all
// failures joined, so a broken import surfaces as one diagnosis instead of
// one error per run.
func (l *Ledger) Validate(r *Registry) error {
	var errs []error
	for i, tx := range l.transactions {
		if err := tx.Validate(r); err != nil {
			errs = append(errs, fmt.Errorf("transaction %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}
