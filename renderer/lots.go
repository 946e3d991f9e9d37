package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/Tanaka97/portman"
)

// LotsMarkdown renders the open lots of every position, with the references
// a specific-identification sell would name.
func LotsMarkdown(b *portman.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Open Lots as of %s\n\n", b.AsOf())

	total := 0
	for p := range b.Positions() {
		ConditionalBlock(&sb, func(w io.Writer) bool {
			fmt.Fprintf(w, "## %s (%s open)\n\n", p.Instrument().ID(), p.Quantity())
			fmt.Fprintln(w, "| Ref | Acquired | Quantity | Unit Cost | Cost |")
			fmt.Fprintln(w, "|:---|:---|---:|---:|---:|")
			n := 0
			for lot := range p.Lots() {
				fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
					lot.Ref, lot.Date, lot.Quantity, lot.UnitCost(), lot.Cost)
				n++
			}
			fmt.Fprintln(w)
			total += n
			return n > 0
		})
	}
	if total == 0 {
		fmt.Fprintln(&sb, "No open lots.")
	}
	return sb.String()
}
