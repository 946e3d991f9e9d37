package portman

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Tanaka97/portman/date"
)

// Price observations persist as JSONL too: one line per day, the date under
// the reserved "on" key and every observed ID next to its quote. Amounts
// are JSON strings so no reader ever round-trips them through binary
// floats:
//
//	{"on":"2025-03-07","AAPL.XNAS":"238.03","EURUSD":"1.0831"}
//
// The line carries no currencies; a SYMBOL.VENUE key is quoted in its
// instrument's currency and a pair key in its own quote currency, so the
// registry is the single source of that truth.

const attrOn = "on"

// DecodePrices reads price lines into a table, resolving each key's
// currency against the registry. An unknown key is an error: a price that
// cannot be attributed to an instrument is a sign the files drifted apart.
func DecodePrices(r io.Reader, reg *Registry) (*PriceTable, error) {
	t := NewPriceTable()
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := decodePriceLine(t, reg, line); err != nil {
			return nil, fmt.Errorf("prices line %d: %w", n, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read prices: %w", err)
	}
	return t, nil
}

func decodePriceLine(t *PriceTable, reg *Registry, line []byte) error {
	var jobj map[string]json.RawMessage
	if err := json.Unmarshal(line, &jobj); err != nil {
		return err
	}
	raw, ok := jobj[attrOn]
	if !ok {
		return fmt.Errorf("missing the %q property", attrOn)
	}
	var on date.Date
	if err := json.Unmarshal(raw, &on); err != nil {
		return fmt.Errorf("property %q: %w", attrOn, err)
	}

	// Map iteration order is random; recording must not be, or two loads of
	// the same file could disagree on same-key duplicates.
	keys := make([]string, 0, len(jobj))
	for k := range jobj {
		if k != attrOn {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, k := range keys {
		var v decimal.Decimal
		if err := json.Unmarshal(jobj[k], &v); err != nil {
			return fmt.Errorf("property %q: %w", k, err)
		}
		id := ID(k)
		switch {
		case id.IsPair():
			if err := t.RecordRate(string(id[:3]), string(id[3:]), on, Q(v)); err != nil {
				return err
			}
		default:
			inst, err := reg.Resolve(id)
			if err != nil {
				return fmt.Errorf("property %q: %w", k, err)
			}
			if err := t.Record(id, on, M(v, inst.Currency())); err != nil {
				return err
			}
		}
	}
	return nil
}

// EncodePrices writes the table back out, one line per day with IDs sorted,
// so the file is canonical for its content.
func EncodePrices(w io.Writer, t *PriceTable) error {
	type obs struct {
		id    ID
		value decimal.Decimal
	}
	days := make(map[date.Date][]obs)
	var order []date.Date
	for id := range t.IDs() {
		for on, v := range t.Observations(id) {
			if _, ok := days[on]; !ok {
				order = append(order, on)
			}
			days[on] = append(days[on], obs{id, v})
		}
	}
	slices.SortFunc(order, date.Date.Compare)

	for _, on := range order {
		// IDs() iterates sorted, so each day's observations already are.
		if _, err := fmt.Fprintf(w, "{%q:%q", attrOn, on); err != nil {
			return fmt.Errorf("cannot write prices: %w", err)
		}
		for _, o := range days[on] {
			if _, err := fmt.Fprintf(w, ",%q:%q", o.id, o.value); err != nil {
				return fmt.Errorf("cannot write prices: %w", err)
			}
		}
		if _, err := fmt.Fprintln(w, "}"); err != nil {
			return fmt.Errorf("cannot write prices: %w", err)
		}
	}
	return nil
}
