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

type holdingCmd struct {
	date     string
	currency string
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display holdings and their value on a date" }
func (*holdingCmd) Usage() string {
	return `pman holding [-d <date>] [-c <currency>]

  Values every position and cash balance on the given date, in the given
  base currency, from the local price table. Run "pman fetch" first if
  the table is stale.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Valuation date (YYYY-MM-DD)")
	f.StringVar(&c.currency, "c", "EUR", "Base currency of the report")
}

func (c *holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	_, snap, err := valuation(ctx, c.currency, on, portman.Config{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.HoldingMarkdown(snap))
	return subcommands.ExitSuccess
}
