package portman

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Tanaka97/portman/date"
)

// The snapshot history persists as JSONL, one snapshot per line, so the
// analyzer can draw volatility from past valuations without replaying every
// oracle call that produced them.

type jholding struct {
	Security   ID         `json:"security"`
	Class      AssetClass `json:"class"`
	Quantity   Quantity   `json:"quantity"`
	Price      Money      `json:"price"`
	Value      Money      `json:"value"`
	Unrealized Money      `json:"unrealized"`
}

type jcash struct {
	Currency string `json:"currency"`
	Balance  Money  `json:"balance"`
	Value    Money  `json:"value"`
}

type jsnapshot struct {
	Date       date.Date           `json:"date"`
	Base       string              `json:"base"`
	Rates      map[string]Quantity `json:"rates"`
	Holdings   []jholding          `json:"holdings"`
	Cash       []jcash             `json:"cash"`
	TotalCash  Money               `json:"totalCash"`
	TotalValue Money               `json:"totalValue"`
}

// DecodeSnapshots reads a snapshot history. Each line's recorded total is
// checked against the sum of its own lines: a corrupted history would
// otherwise feed silent garbage into volatility.
func DecodeSnapshots(r io.Reader) (*SnapshotSeries, error) {
	series := &SnapshotSeries{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		snap, err := decodeSnapshot(line)
		if err != nil {
			return nil, fmt.Errorf("history line %d: %w", n, err)
		}
		if err := series.Record(snap); err != nil {
			return nil, fmt.Errorf("history line %d: %w", n, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read history: %w", err)
	}
	return series, nil
}

func decodeSnapshot(line []byte) (*Snapshot, error) {
	var j jsnapshot
	if err := json.Unmarshal(line, &j); err != nil {
		return nil, err
	}
	if !validCurrency(j.Base) {
		return nil, fmt.Errorf("invalid base currency %q", j.Base)
	}

	s := &Snapshot{
		on:        j.Date,
		base:      j.Base,
		rates:     j.Rates,
		total:     j.TotalValue,
		totalCash: j.TotalCash,
	}
	total := M(0, j.Base)
	for _, h := range j.Holdings {
		s.holdings = append(s.holdings, Holding(h))
		total = total.Add(h.Value)
	}
	for _, c := range j.Cash {
		s.cash = append(s.cash, CashLine(c))
		total = total.Add(c.Value)
	}
	slices.SortFunc(s.holdings, func(a, b Holding) int {
		return strings.Compare(string(a.Security), string(b.Security))
	})
	slices.SortFunc(s.cash, func(a, b CashLine) int {
		return strings.Compare(a.Currency, b.Currency)
	})

	if !total.Equal(j.TotalValue) {
		return nil, fmt.Errorf("snapshot on %s: lines sum to %s but total says %s",
			j.Date, total.Amount(), j.TotalValue.Amount())
	}
	return s, nil
}

// EncodeSnapshots writes the history back out in date order.
func EncodeSnapshots(w io.Writer, series *SnapshotSeries) error {
	for _, snap := range series.Snapshots() {
		b, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("cannot marshal snapshot on %s: %w", snap.On(), err)
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return fmt.Errorf("cannot write history: %w", err)
		}
	}
	return nil
}
