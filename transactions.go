package portman

import (
	"fmt"
	"strings"

	"github.com/Tanaka97/portman/date"
)

// TxType identifies what a transaction does to the book.
type TxType int

const (
	TxBuy TxType = iota
	TxSell
	TxDividend
	TxSplit
	TxTransferIn
	TxTransferOut
	TxFee
	TxDeposit
	TxWithdraw
)

func (t TxType) String() string {
	switch t {
	case TxBuy:
		return "buy"
	case TxSell:
		return "sell"
	case TxDividend:
		return "dividend"
	case TxSplit:
		return "split"
	case TxTransferIn:
		return "transfer-in"
	case TxTransferOut:
		return "transfer-out"
	case TxFee:
		return "fee"
	case TxDeposit:
		return "deposit"
	case TxWithdraw:
		return "withdraw"
	default:
		return "unknown"
	}
}

// ParseTxType parses a transaction type name.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(s) {
	case "buy":
		return TxBuy, nil
	case "sell":
		return TxSell, nil
	case "dividend":
		return TxDividend, nil
	case "split":
		return TxSplit, nil
	case "transfer-in", "transfer_in", "transferin":
		return TxTransferIn, nil
	case "transfer-out", "transfer_out", "transferout":
		return TxTransferOut, nil
	case "fee":
		return TxFee, nil
	case "deposit":
		return TxDeposit, nil
	case "withdraw", "withdrawal":
		return TxWithdraw, nil
	default:
		return 0, fmt.Errorf("unknown transaction type: %q", s)
	}
}

// Transaction is one immutable, normalized audit record. The field shape
// depends on the type and is enforced by Validate:
//
//   - buy, sell: Security, Quantity, Price per unit; optional Fee. A sell
//     with zero quantity means "sell the entire open position".
//   - dividend: Security and Amount (total cash), or Quantity×Price;
//     optional Fee (e.g. withholding).
//   - split: Security, SplitNum-for-SplitDen.
//   - transfer-in: Security, Quantity, Price as the unit cost basis carried
//     in. transfer-out: Security, Quantity (zero means all).
//   - fee: Amount; Security optional, informational.
//   - deposit, withdraw: Amount.
//
// Lots carries lot references ("2024-05-12#1") consumed under the
// specific-identification matching policy.
type Transaction struct {
	Date     date.Date
	Type     TxType
	Security ID
	Quantity Quantity
	Price    Money
	Amount   Money
	Fee      Money
	Lots     []string
	SplitNum int64
	SplitDen int64
	Memo     string
}

// NewBuy records acquiring qty units at the given unit price.
func NewBuy(on date.Date, sec ID, qty Quantity, price Money) Transaction {
	return Transaction{Date: on, Type: TxBuy, Security: sec, Quantity: qty, Price: price}
}

// NewSell records disposing qty units at the given unit price. Zero qty
// sells the entire open position.
func NewSell(on date.Date, sec ID, qty Quantity, price Money) Transaction {
	return Transaction{Date: on, Type: TxSell, Security: sec, Quantity: qty, Price: price}
}

// NewDividend records a cash distribution for a held security.
func NewDividend(on date.Date, sec ID, amount Money) Transaction {
	return Transaction{Date: on, Type: TxDividend, Security: sec, Amount: amount}
}

// NewSplit records a num-for-den share split.
func NewSplit(on date.Date, sec ID, num, den int64) Transaction {
	return Transaction{Date: on, Type: TxSplit, Security: sec, SplitNum: num, SplitDen: den}
}

// NewTransferIn records qty units arriving with their unit cost basis;
// no cash moves and no gain is realized.
func NewTransferIn(on date.Date, sec ID, qty Quantity, basis Money) Transaction {
	return Transaction{Date: on, Type: TxTransferIn, Security: sec, Quantity: qty, Price: basis}
}

// NewTransferOut records qty units leaving the book; their basis leaves with
// them, no cash moves and no gain is realized. Zero qty transfers the
// entire open position.
func NewTransferOut(on date.Date, sec ID, qty Quantity) Transaction {
	return Transaction{Date: on, Type: TxTransferOut, Security: sec, Quantity: qty}
}

// NewFee records a standalone charge debiting cash.
func NewFee(on date.Date, amount Money) Transaction {
	return Transaction{Date: on, Type: TxFee, Amount: amount}
}

// NewDeposit records external cash arriving.
func NewDeposit(on date.Date, amount Money) Transaction {
	return Transaction{Date: on, Type: TxDeposit, Amount: amount}
}

// NewWithdraw records cash leaving to the outside.
func NewWithdraw(on date.Date, amount Money) Transaction {
	return Transaction{Date: on, Type: TxWithdraw, Amount: amount}
}

// WithFee returns a copy carrying a fee. Fees only ever move cash; they
// never change lots or realized gains.
func (t Transaction) WithFee(fee Money) Transaction {
	t.Fee = fee
	return t
}

// WithLots returns a copy naming the exact lots a sell or transfer-out
// consumes under the specific-identification policy.
func (t Transaction) WithLots(refs ...string) Transaction {
	t.Lots = refs
	return t
}

// WithMemo returns a copy with a free-text note.
func (t Transaction) WithMemo(memo string) Transaction {
	t.Memo = memo
	return t
}

// When returns the transaction date.
func (t Transaction) When() date.Date { return t.Date }

// CashValue returns the total cash effect magnitude for cash-bearing types:
// Amount when set, otherwise Quantity×Price.
func (t Transaction) CashValue() Money {
	if !t.Amount.IsZero() {
		return t.Amount
	}
	return t.Price.Mul(t.Quantity)
}

// Validate checks the per-type field shape against the registry. It reads
// only the record, never the book: position-dependent checks (does a sell
// oversell?) belong to ApplyLedger where the lots are known.
func (t Transaction) Validate(r *Registry) error {
	if t.Date.IsZero() {
		return fmt.Errorf("%s transaction has no date", t.Type)
	}
	switch t.Type {
	case TxBuy, TxSell, TxDividend, TxSplit, TxTransferIn, TxTransferOut:
		inst, err := r.Resolve(t.Security)
		if err != nil {
			return fmt.Errorf("%s on %s: %w", t.Type, t.Date, err)
		}
		if err := t.validateSecurity(inst); err != nil {
			return fmt.Errorf("%s %s on %s: %w", t.Type, t.Security, t.Date, err)
		}
	case TxFee, TxDeposit, TxWithdraw:
		if !t.Amount.IsPositive() {
			return fmt.Errorf("%s on %s: amount must be positive, got %s", t.Type, t.Date, t.Amount.Amount())
		}
		if !validCurrency(t.Amount.Currency()) {
			return fmt.Errorf("%s on %s: invalid currency %q", t.Type, t.Date, t.Amount.Currency())
		}
	default:
		return fmt.Errorf("unknown transaction type %d on %s", int(t.Type), t.Date)
	}
	return nil
}

func (t Transaction) validateSecurity(inst *Instrument) error {
	for _, m := range []Money{t.Price, t.Amount, t.Fee} {
		if m.Currency() != "" && m.Currency() != inst.Currency() {
			return fmt.Errorf("currency %s does not match the instrument's %s", m.Currency(), inst.Currency())
		}
	}
	switch t.Type {
	case TxBuy:
		if !t.Quantity.IsPositive() {
			return fmt.Errorf("quantity must be positive, got %s", t.Quantity)
		}
		if t.Price.Currency() == "" || t.Price.IsNegative() {
			return fmt.Errorf("price must be a non-negative priced amount, got %s", t.Price.Amount())
		}
	case TxSell, TxTransferOut:
		if t.Quantity.IsNegative() {
			return fmt.Errorf("quantity must not be negative, got %s", t.Quantity)
		}
		if t.Type == TxSell && (t.Price.Currency() == "" || t.Price.IsNegative()) {
			return fmt.Errorf("price must be a non-negative priced amount, got %s", t.Price.Amount())
		}
		for _, ref := range t.Lots {
			if strings.TrimSpace(ref) == "" {
				return fmt.Errorf("empty lot reference")
			}
		}
	case TxDividend:
		if !t.CashValue().IsPositive() {
			return fmt.Errorf("dividend needs a positive amount or quantity and price")
		}
	case TxSplit:
		if t.SplitNum < 1 || t.SplitDen < 1 {
			return fmt.Errorf("split ratio must be positive, got %d-for-%d", t.SplitNum, t.SplitDen)
		}
	case TxTransferIn:
		if !t.Quantity.IsPositive() {
			return fmt.Errorf("quantity must be positive, got %s", t.Quantity)
		}
		if t.Price.Currency() == "" || t.Price.IsNegative() {
			return fmt.Errorf("basis must be a non-negative priced amount, got %s", t.Price.Amount())
		}
	}
	if inc := inst.Increment(); !inc.IsZero() && !t.Quantity.IsZero() {
		if !t.Quantity.IsMultipleOf(inc) {
			return fmt.Errorf("quantity %s is not a multiple of the %s increment %s", t.Quantity, inst.ID(), inc)
		}
	}
	return nil
}

// MarshalJSON encodes the record with a stable, canonical key order, omitting
// empty fields.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", t.Date)
	w.Append("type", t.Type.String())
	w.Optional("security", string(t.Security))
	if !t.Quantity.IsZero() {
		w.Append("quantity", t.Quantity)
	}
	if !t.Price.IsZero() {
		w.Append("price", t.Price)
	}
	if !t.Amount.IsZero() {
		w.Append("amount", t.Amount)
	}
	if !t.Fee.IsZero() {
		w.Append("fee", t.Fee)
	}
	if len(t.Lots) > 0 {
		w.Append("lots", t.Lots)
	}
	if t.Type == TxSplit {
		w.Append("splitNum", t.SplitNum)
		w.Append("splitDen", t.SplitDen)
	}
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}
