package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Tanaka97/portman"
	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string     { return "fmt" }
func (*fmtCmd) Synopsis() string { return "rewrite the data files in canonical form" }
func (*fmtCmd) Usage() string {
	return `pman fmt

  Reads, validates and rewrites the registry, ledger and price files in
  canonical form: stable ordering, one JSON object per line, decimals
  as quoted strings. Hand edits survive as long as they decode.
`
}

func (*fmtCmd) SetFlags(_ *flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if err := ledger.Validate(reg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	table, err := portman.LoadPrices(*portfolioDir, reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := portman.SaveRegistry(*portfolioDir, reg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving registry: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := portman.SaveLedger(*portfolioDir, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := portman.SavePrices(*portfolioDir, table); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving prices: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Formatted %d instruments, %d transactions, %d price series\n",
		reg.Len(), ledger.Len(), table.Len())
	return subcommands.ExitSuccess
}
