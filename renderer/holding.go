package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/Tanaka97/portman"
)

// HoldingMarkdown renders a valuation snapshot: one table of holdings, one
// of cash, and the totals.
func HoldingMarkdown(s *portman.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings on %s (%s)\n\n", s.On(), s.Base())

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintln(w, "| Security | Class | Quantity | Price | Value | Unrealized | Weight |")
		fmt.Fprintln(w, "|:---|:---|---:|---:|---:|---:|---:|")
		n := 0
		for h := range s.Holdings() {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
				h.Security, h.Class, h.Quantity, h.Price, h.Value,
				h.Unrealized.SignedString(), s.Weight(h.Security))
			n++
		}
		fmt.Fprintln(w)
		return n > 0
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprintln(w, "| Cash | Balance | Value |")
		fmt.Fprintln(w, "|:---|---:|---:|")
		n := 0
		for c := range s.CashLines() {
			fmt.Fprintf(w, "| %s | %s | %s |\n", c.Currency, c.Balance, c.Value)
			n++
		}
		fmt.Fprintln(w)
		return n > 0
	})

	fmt.Fprintf(&b, "Total value: **%s** (cash %s, unrealized %s)\n",
		s.Total(), s.TotalCash(), s.TotalUnrealized().SignedString())
	return b.String()
}
