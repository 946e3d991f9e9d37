package date

import (
	"iter"
	"slices"
)

// History stores a chronological series of values, each associated with one
// day. Days are unique and the series is always sorted. It is the arena
// backing the price table and the snapshot series: append-only, indexed,
// binary-searchable, with no back references.
type History[T any] struct {
	days   []Date
	values []T
}

// Len returns the number of entries.
func (h *History[T]) Len() int { return len(h.days) }

// Append records a value for a day. A value already recorded for that exact
// day is overwritten, so the latest data wins.
func (h *History[T]) Append(on Date, v T) *History[T] {
	i, found := slices.BinarySearchFunc(h.days, on, Date.Compare)
	if found {
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Get returns the value recorded exactly on the given day.
func (h *History[T]) Get(on Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.days, on, Date.Compare)
	if !found {
		var zero T
		return zero, false
	}
	return h.values[i], true
}

// ValueAsOf returns the value on the given day, or the most recent value
// before it. The second result is false when no entry exists on or before
// that day.
func (h *History[T]) ValueAsOf(on Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.days, on, Date.Compare)
	if found {
		return h.values[i], true
	}
	if i == 0 {
		var zero T
		return zero, false
	}
	return h.values[i-1], true
}

// Latest returns the last day and value. The zero Date and zero value are
// returned for an empty history.
func (h *History[T]) Latest() (Date, T) {
	if len(h.days) == 0 {
		var zero T
		return Date{}, zero
	}
	last := len(h.days) - 1
	return h.days[last], h.values[last]
}

// First returns the first day and value. The zero Date and zero value are
// returned for an empty history.
func (h *History[T]) First() (Date, T) {
	if len(h.days) == 0 {
		var zero T
		return Date{}, zero
	}
	return h.days[0], h.values[0]
}

// Values iterates over all day/value pairs in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}
