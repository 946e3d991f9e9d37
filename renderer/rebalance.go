package renderer

import (
	"fmt"
	"strings"

	"github.com/Tanaka97/portman"
)

// RebalanceMarkdown renders a rebalancing proposal against the policy that
// produced it. An empty proposal is good news and is said so.
func RebalanceMarkdown(p *portman.RebalancePolicy, s *portman.Snapshot, suggestions []portman.TradeSuggestion) string {
	var b strings.Builder
	name := p.Name
	if name == "" {
		name = "policy"
	}
	fmt.Fprintf(&b, "# Rebalancing against %s on %s\n\n", cell(name), s.On())
	fmt.Fprintf(&b, "Tolerance: %.1f%% of total value %s\n\n", p.Tolerance*100, s.Total())

	if len(suggestions) == 0 {
		fmt.Fprintln(&b, "All buckets are within tolerance. Nothing to do.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Bucket | Drift | Action | Amount |")
	fmt.Fprintln(&b, "|:---|---:|:---|---:|")
	for _, t := range suggestions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			cell(t.Bucket), t.Drift.SignedString(), t.Direction, t.Amount)
	}
	return b.String()
}
