package portman

import (
	"fmt"
	"iter"

	"github.com/Tanaka97/portman/date"
)

// SnapshotSeries is the append-only, time-ordered arena of snapshots the
// analyzer draws volatility and correlation from. Entries are indexed by
// valuation date (one per day, latest recording wins) and share one base
// currency; mixing bases would make return arithmetic meaningless.
type SnapshotSeries struct {
	base string
	hist date.History[*Snapshot]
}

// NewSnapshotSeries builds a series from the given snapshots.
func NewSnapshotSeries(snaps ...*Snapshot) (*SnapshotSeries, error) {
	s := &SnapshotSeries{}
	for _, snap := range snaps {
		if err := s.Record(snap); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Record appends a snapshot at its valuation date. The first snapshot fixes
// the series' base currency.
func (s *SnapshotSeries) Record(snap *Snapshot) error {
	if s.base == "" {
		s.base = snap.Base()
	} else if snap.Base() != s.base {
		return fmt.Errorf("snapshot on %s is in %s, series is in %s", snap.On(), snap.Base(), s.base)
	}
	s.hist.Append(snap.On(), snap)
	return nil
}

// Len returns the number of entries.
func (s *SnapshotSeries) Len() int { return s.hist.Len() }

// Base returns the series' base currency, "" while empty.
func (s *SnapshotSeries) Base() string { return s.base }

// Snapshots iterates chronologically.
func (s *SnapshotSeries) Snapshots() iter.Seq2[date.Date, *Snapshot] { return s.hist.Values() }

// Last returns the most recent entry.
func (s *SnapshotSeries) Last() (*Snapshot, bool) {
	_, snap := s.hist.Latest()
	return snap, snap != nil
}

// Returns computes the simple periodic returns of total value between
// consecutive entries: v(t)/v(t-1) - 1, as floats for statistics. Pairs
// whose earlier total is zero are skipped: a return from nothing is
// undefined, and fabricating one would poison every downstream statistic.
func (s *SnapshotSeries) Returns() []float64 {
	var out []float64
	prev := -1.0
	for _, snap := range s.hist.Values() {
		v := snap.Total().Amount().InexactFloat64()
		if prev > 0 {
			out = append(out, v/prev-1)
		}
		prev = v
	}
	return out
}
