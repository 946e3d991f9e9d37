package renderer

import (
	"fmt"
	"strings"

	"github.com/Tanaka97/portman"
)

// Transaction renders a one-line description of a transaction.
func Transaction(tx portman.Transaction) string {
	switch tx.Type {
	case portman.TxBuy:
		return fmt.Sprintf("Bought %s %s at %s", tx.Quantity, tx.Security, tx.Price)
	case portman.TxSell:
		if tx.Quantity.IsZero() {
			return fmt.Sprintf("Sold all %s at %s", tx.Security, tx.Price)
		}
		return fmt.Sprintf("Sold %s %s at %s", tx.Quantity, tx.Security, tx.Price)
	case portman.TxDividend:
		return fmt.Sprintf("Dividend of %s from %s", tx.Amount, tx.Security)
	case portman.TxSplit:
		return fmt.Sprintf("Split %s %d:%d", tx.Security, tx.SplitNum, tx.SplitDen)
	case portman.TxTransferIn:
		return fmt.Sprintf("Transferred in %s %s at basis %s", tx.Quantity, tx.Security, tx.Price)
	case portman.TxTransferOut:
		return fmt.Sprintf("Transferred out %s %s", tx.Quantity, tx.Security)
	case portman.TxFee:
		return fmt.Sprintf("Fee of %s", tx.Amount)
	case portman.TxDeposit:
		return fmt.Sprintf("Deposited %s", tx.Amount)
	case portman.TxWithdraw:
		return fmt.Sprintf("Withdrew %s", tx.Amount)
	default:
		return tx.Type.String()
	}
}

// TransactionsMarkdown renders a chronological transaction list.
func TransactionsMarkdown(txs []portman.Transaction) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Transactions\n\n")
	if len(txs) == 0 {
		fmt.Fprintln(&b, "The ledger is empty.")
		return b.String()
	}
	for _, tx := range txs {
		fmt.Fprintf(&b, "- %s %s", tx.Date, Transaction(tx))
		if !tx.Fee.IsZero() {
			fmt.Fprintf(&b, " (fee %s)", tx.Fee)
		}
		if tx.Memo != "" {
			fmt.Fprintf(&b, " *%s*", tx.Memo)
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}
