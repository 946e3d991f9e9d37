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

type gainsCmd struct {
	date     string
	currency string
	method   string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "report realized and unrealized capital gains" }
func (*gainsCmd) Usage() string {
	return `pman gains [-d <date>] [-c <currency>] [-method <method>]

  Reports realized and unrealized gains per position, converted to the
  base currency at the valuation date's rates. The method decides which
  lots past sales consumed (fifo, lifo, specific).
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Valuation date (YYYY-MM-DD)")
	f.StringVar(&c.currency, "c", "EUR", "Base currency of the report")
	f.StringVar(&c.method, "method", "fifo", "Lot matching method (fifo, lifo, specific)")
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	policy, err := portman.ParseMatchingPolicy(c.method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	book, snap, err := valuation(ctx, c.currency, on, portman.Config{Policy: policy})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	gains, err := portman.NewGains(book, snap)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.GainsMarkdown(gains, policy))
	return subcommands.ExitSuccess
}
