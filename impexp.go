package portman

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Tanaka97/portman/date"
)

// Broker exports rarely agree on anything beyond "it is a CSV". The
// interchange format here is a header-mapped CSV: columns in any order,
// unknown columns ignored, so most exports only need their headers renamed
// to come in. Amounts are decimal strings, never floats.
//
//	date,type,security,quantity,price,amount,fee,currency,ratio,lots,memo
//	2025-03-07,buy,AAPL.XNAS,10,238.03,,,USD,,,first tranche
//	2025-06-10,split,AAPL.XNAS,,,,,,4:1,,
//	2025-07-01,sell,AAPL.XNAS,4,250.10,,1.50,USD,,2025-03-07#1,
//
// The currency column prices the price, amount and fee cells of its row.
// A split's ratio is "N:M" for N-for-M; lots are ';'-separated references
// for specific-identification sells.

// ImportCSV reads transactions from the interchange CSV. Records are only
// shape-parsed here; registry checks happen when the ledger is applied.
func ImportCSV(r io.Reader) (*Ledger, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read CSV header: %w", err)
	}
	col := make(map[string]int)
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "type"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV header has no %q column", required)
		}
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	l := NewLedger()
	n := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		n++
		if err != nil {
			return nil, fmt.Errorf("CSV row %d: %w", n, err)
		}
		tx, err := importRow(func(name string) string { return cell(row, name) })
		if err != nil {
			return nil, fmt.Errorf("CSV row %d: %w", n, err)
		}
		l.Append(tx)
	}
	return l, nil
}

func importRow(cell func(string) string) (Transaction, error) {
	var tx Transaction
	var err error

	if tx.Date, err = date.Parse(cell("date")); err != nil {
		return tx, err
	}
	if tx.Type, err = ParseTxType(cell("type")); err != nil {
		return tx, err
	}
	tx.Security = ID(cell("security"))
	tx.Memo = cell("memo")

	if s := cell("quantity"); s != "" {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return tx, fmt.Errorf("quantity: %w", err)
		}
		tx.Quantity = Q(v)
	}
	cur := cell("currency")
	for _, c := range []struct {
		name string
		dst  *Money
	}{{"price", &tx.Price}, {"amount", &tx.Amount}, {"fee", &tx.Fee}} {
		s := cell(c.name)
		if s == "" {
			continue
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return tx, fmt.Errorf("%s: %w", c.name, err)
		}
		if cur == "" {
			return tx, fmt.Errorf("%s is set but the currency column is empty", c.name)
		}
		*c.dst = M(v, cur)
	}
	if s := cell("ratio"); s != "" {
		if tx.SplitNum, tx.SplitDen, err = parseRatio(s); err != nil {
			return tx, err
		}
	}
	if s := cell("lots"); s != "" {
		for _, ref := range strings.Split(s, ";") {
			tx.Lots = append(tx.Lots, strings.TrimSpace(ref))
		}
	}
	return tx, nil
}

func parseRatio(s string) (num, den int64, err error) {
	ns, ds, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("ratio %q: want N:M", s)
	}
	if num, err = strconv.ParseInt(strings.TrimSpace(ns), 10, 64); err != nil {
		return 0, 0, fmt.Errorf("ratio %q: %w", s, err)
	}
	if den, err = strconv.ParseInt(strings.TrimSpace(ds), 10, 64); err != nil {
		return 0, 0, fmt.Errorf("ratio %q: %w", s, err)
	}
	return num, den, nil
}

// ExportCSV writes the ledger in the interchange format, in ledger order,
// ready for a spreadsheet or another book.
func ExportCSV(w io.Writer, l *Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "type", "security", "quantity", "price", "amount", "fee", "currency", "ratio", "lots", "memo"}); err != nil {
		return fmt.Errorf("cannot write CSV: %w", err)
	}
	for tx := range l.Transactions() {
		row := []string{
			tx.Date.String(),
			tx.Type.String(),
			string(tx.Security),
			moneyless(tx.Quantity),
			cellMoney(tx.Price),
			cellMoney(tx.Amount),
			cellMoney(tx.Fee),
			rowCurrency(tx),
			cellRatio(tx),
			strings.Join(tx.Lots, ";"),
			tx.Memo,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("cannot write CSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func moneyless(q Quantity) string {
	if q.IsZero() {
		return ""
	}
	return q.String()
}

func cellMoney(m Money) string {
	if m.IsZero() && m.Currency() == "" {
		return ""
	}
	return m.Amount().String()
}

func rowCurrency(tx Transaction) string {
	for _, m := range []Money{tx.Price, tx.Amount, tx.Fee} {
		if m.Currency() != "" {
			return m.Currency()
		}
	}
	return ""
}

func cellRatio(tx Transaction) string {
	if tx.Type != TxSplit {
		return ""
	}
	return fmt.Sprintf("%d:%d", tx.SplitNum, tx.SplitDen)
}
