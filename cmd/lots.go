package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Tanaka97/portman"
	"github.com/Tanaka97/portman/renderer"
	"github.com/google/subcommands"
)

type lotsCmd struct {
	method string
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "list the open lots of every position" }
func (*lotsCmd) Usage() string {
	return `pman lots [-method <method>]

  Lists open lots with their references, as consumed by past sales
  under the given matching method. References are what "pman sell
  -lots" names.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.method, "method", "fifo", "Lot matching method (fifo, lifo, specific)")
}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	policy, err := portman.ParseMatchingPolicy(c.method)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	reg, err := portman.LoadRegistry(*portfolioDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading registry: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := portman.LoadLedger(*portfolioDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	book, err := portman.ApplyLedger(reg, ledger, portman.Config{Policy: policy})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.LotsMarkdown(book))
	return subcommands.ExitSuccess
}
