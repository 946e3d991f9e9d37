package date

import "iter"

// Range represents an inclusive range of days.
type Range struct{ From, To Date }

// NewRange returns the range covering the standard period containing d.
func NewRange(d Date, p Period) Range {
	return Range{From: d.StartOf(p), To: d.EndOf(p)}
}

// Contains reports whether the date falls inside the range, boundaries
// included.
func (r Range) Contains(d Date) bool { return !d.Before(r.From) && !d.After(r.To) }

// Days iterates over every day of the range in chronological order.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Ends iterates over the last day of each period from the range start to the
// range end, in chronological order. The range end itself is yielded last
// when it is not already a period end. Useful for sampling a series at
// period boundaries.
func (r Range) Ends(p Period) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From.EndOf(p); d.Before(r.To); d = d.Add(1).EndOf(p) {
			if !yield(d) {
				return
			}
		}
		yield(r.To)
	}
}
