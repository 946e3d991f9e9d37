package renderer

import (
	"fmt"
	"strings"

	"github.com/Tanaka97/portman"
)

// GainsMarkdown renders the capital gains report produced under the given
// matching policy.
func GainsMarkdown(g *portman.Gains, policy portman.MatchingPolicy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Capital Gains on %s (%s)\n\n", g.On(), g.Base())
	fmt.Fprintf(&b, "Method: %s\n\n", policy)

	fmt.Fprintln(&b, "| Security | Quantity | Realized | Unrealized | Total |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, l := range g.Lines() {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			l.Security, l.Quantity,
			l.Realized.SignedString(), l.Unrealized.SignedString(), l.Total.SignedString())
	}
	fmt.Fprintf(&b, "| **Total** | | **%s** | **%s** | **%s** |\n",
		g.Realized().SignedString(), g.Unrealized().SignedString(), g.Total().SignedString())
	return b.String()
}
