package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Tanaka97/portman"
	"github.com/Tanaka97/portman/date"
	"github.com/Tanaka97/portman/renderer"
	"github.com/google/subcommands"
)

type rebalanceCmd struct {
	date     string
	currency string
}

func (*rebalanceCmd) Name() string     { return "rebalance" }
func (*rebalanceCmd) Synopsis() string { return "propose trades to drift back to the target policy" }
func (*rebalanceCmd) Usage() string {
	return `pman rebalance [-d <date>] [-c <currency>]

  Compares the current valuation to the policy in policy.yaml and
  proposes balanced buy and sell amounts for every bucket drifted
  beyond the tolerance. Proposals are printed, never executed.
`
}

func (c *rebalanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Valuation date (YYYY-MM-DD)")
	f.StringVar(&c.currency, "c", "EUR", "Base currency of the proposal")
}

func (c *rebalanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	policy, err := portman.LoadPolicy(*portfolioDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	_, snap, err := valuation(ctx, c.currency, on, portman.Config{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	suggestions, err := portman.Propose(snap, policy.Target, policy.Tolerance)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RebalanceMarkdown(policy, snap, suggestions))
	return subcommands.ExitSuccess
}
