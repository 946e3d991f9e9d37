package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/Tanaka97/portman"
	"github.com/Tanaka97/portman/date"
)

// highCorrelation is the coefficient above which a pair is worth flagging:
// two tickers moving this much together are one bet, not two.
const highCorrelation = 0.8

// RiskMarkdown renders the allocation and risk report. The period names the
// spacing of the history the statistics were computed from.
func RiskMarkdown(r *portman.RiskReport, period date.Period) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Risk & Allocation on %s (%s)\n\n", r.On, r.Base)

	fmt.Fprint(&b, "## Allocation by Class\n\n")
	fmt.Fprintln(&b, "| Class | Value | Weight |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, l := range r.ByClass {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(l.Bucket), l.Value, l.Weight)
	}
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "## Allocation by Position\n\n")
	fmt.Fprintln(&b, "| Bucket | Value | Weight |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, l := range r.ByBucket {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(l.Bucket), l.Value, l.Weight)
	}
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "## Concentration\n\n")
	fmt.Fprintf(&b, "- Largest bucket: %s at %s\n", r.MaxWeight.Bucket, r.MaxWeight.Weight)
	fmt.Fprintf(&b, "- Herfindahl index: %.4f\n\n", r.Herfindahl)

	if r.Volatility == nil {
		fmt.Fprintln(&b, "Volatility: not enough history (need two returns).")
		return b.String()
	}
	fmt.Fprint(&b, "## Volatility\n\n")
	fmt.Fprintf(&b, "- Per %s: %.2f%% over %d returns\n", period, *r.Volatility*100, r.Samples)
	if v := r.AnnualizedVolatility(period); v != nil {
		fmt.Fprintf(&b, "- Annualized: %.2f%%\n", *v*100)
	}
	fmt.Fprintln(&b)

	if r.Correlation != nil {
		ConditionalBlock(&b, func(w io.Writer) bool {
			pairs := r.Correlation.Pairs(highCorrelation)
			fmt.Fprint(w, "## Highly Correlated Pairs\n\n")
			fmt.Fprintln(w, "| Security | Security | Coefficient |")
			fmt.Fprintln(w, "|:---|:---|---:|")
			for _, p := range pairs {
				fmt.Fprintf(w, "| %s | %s | %.2f |\n", p.A, p.B, p.Coeff)
			}
			fmt.Fprintln(w)
			return len(pairs) > 0
		})
	}
	return b.String()
}
