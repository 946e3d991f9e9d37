package portman

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Tanaka97/portman/date"
)

// Persistence is JSONL: one record per line, human-readable and
// git-friendly, meant to live in a plain directory under version control.
// Encoding the same data always produces the same bytes, so files diff
// cleanly; decoding is strict, because a silently skipped record would make
// every downstream figure wrong.

// DecodeRegistry reads instrument definitions, one JSON object per line.
func DecodeRegistry(r io.Reader) (*Registry, error) {
	// The parsing shape is a local struct; the canonical writing shape is
	// Instrument.MarshalJSON.
	type jinstrument struct {
		ID        ID         `json:"id"`
		Class     AssetClass `json:"class"`
		Currency  string     `json:"currency"`
		Increment Quantity   `json:"increment"`
	}

	reg := NewRegistry()
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ji jinstrument
		if err := json.Unmarshal(line, &ji); err != nil {
			return nil, fmt.Errorf("instruments line %d: %w", n, err)
		}
		inst, err := NewInstrument(ji.ID, ji.Class, ji.Currency, ji.Increment)
		if err != nil {
			return nil, fmt.Errorf("instruments line %d: %w", n, err)
		}
		if err := reg.Register(inst); err != nil {
			return nil, fmt.Errorf("instruments line %d: %w", n, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read instruments: %w", err)
	}
	return reg, nil
}

// EncodeRegistry writes the catalog in ID order, one instrument per line.
func EncodeRegistry(w io.Writer, reg *Registry) error {
	for inst := range reg.Instruments() {
		b, err := json.Marshal(inst)
		if err != nil {
			return fmt.Errorf("cannot marshal instrument %s: %w", inst.ID(), err)
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return fmt.Errorf("cannot write instruments: %w", err)
		}
	}
	return nil
}

// jtx is the parsing shape of one ledger line; the canonical writing shape
// is Transaction.MarshalJSON.
type jtx struct {
	Date     string   `json:"date"`
	Type     string   `json:"type"`
	Security ID       `json:"security"`
	Quantity Quantity `json:"quantity"`
	Price    Money    `json:"price"`
	Amount   Money    `json:"amount"`
	Fee      Money    `json:"fee"`
	Lots     []string `json:"lots"`
	SplitNum int64    `json:"splitNum"`
	SplitDen int64    `json:"splitDen"`
	Memo     string   `json:"memo"`
}

// DecodeLedger reads transactions, one per line, and returns them as a
// date-ordered ledger. Same-day records keep their file order, so the file
// is the audit trail: reordering lines within a day is a visible change.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	l := NewLedger()
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var j jtx
		if err := json.Unmarshal(line, &j); err != nil {
			return nil, fmt.Errorf("ledger line %d: %w", n, err)
		}
		tx, err := j.transaction()
		if err != nil {
			return nil, fmt.Errorf("ledger line %d: %w", n, err)
		}
		l.Append(tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read ledger: %w", err)
	}
	return l, nil
}

func (j jtx) transaction() (Transaction, error) {
	var tx Transaction
	on, err := date.Parse(j.Date)
	if err != nil {
		return tx, err
	}
	typ, err := ParseTxType(j.Type)
	if err != nil {
		return tx, err
	}
	return Transaction{
		Date:     on,
		Type:     typ,
		Security: j.Security,
		Quantity: j.Quantity,
		Price:    j.Price,
		Amount:   j.Amount,
		Fee:      j.Fee,
		Lots:     j.Lots,
		SplitNum: j.SplitNum,
		SplitDen: j.SplitDen,
		Memo:     j.Memo,
	}, nil
}

// EncodeTransaction writes one transaction as a JSON line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	b, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("cannot marshal transaction: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("cannot write transaction: %w", err)
	}
	return nil
}

// EncodeLedger writes the ledger in its canonical order, one transaction
// per line.
func EncodeLedger(w io.Writer, l *Ledger) error {
	for tx := range l.Transactions() {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
