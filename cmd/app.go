// Package cmd implements the pman command-line application.
package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/Tanaka97/portman"
	"github.com/Tanaka97/portman/date"
	"github.com/Tanaka97/portman/renderer"
	"github.com/google/subcommands"
)

// Register registers every subcommand on the commander. A main package
// calls Register, then Execute on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&declareCmd{}, "registry")

	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&dividendCmd{}, "transactions")
	c.Register(&splitCmd{}, "transactions")
	c.Register(&depositCmd{}, "transactions")
	c.Register(&withdrawCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")

	c.Register(&holdingCmd{}, "reports")
	c.Register(&gainsCmd{}, "reports")
	c.Register(&lotsCmd{}, "reports")
	c.Register(&riskCmd{}, "reports")
	c.Register(&rebalanceCmd{}, "reports")

	c.Register(&snapshotCmd{}, "data")
	c.Register(&fetchCmd{}, "data")
	c.Register(&importCmd{}, "data")
	c.Register(&exportCmd{}, "data")
	c.Register(&fmtCmd{}, "data")

	c.Register(&topicCmd{}, "documentation")
	c.Register(&assistCmd{}, "documentation")
}

// As a CLI application the process is short lived, so the portfolio
// location is a plain global flag.
var portfolioDir = flag.String("dir", ".", "Path to the portfolio directory")

// valuation loads the whole portfolio and prices it on a day in the given
// base currency. Most report commands start here.
func valuation(ctx context.Context, base string, on date.Date, cfg portman.Config) (*portman.Book, *portman.Snapshot, error) {
	reg, err := portman.LoadRegistry(*portfolioDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading registry: %w", err)
	}
	ledger, err := portman.LoadLedger(*portfolioDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading ledger: %w", err)
	}
	book, err := portman.ApplyLedger(reg, ledger, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("replaying ledger: %w", err)
	}
	table, err := portman.LoadPrices(*portfolioDir, reg)
	if err != nil {
		return nil, nil, fmt.Errorf("loading prices: %w", err)
	}
	snap, err := portman.Valuate(ctx, book, table, base, on)
	if err != nil {
		return nil, nil, err
	}
	return book, snap, nil
}

// printMarkdown renders markdown for the terminal on stdout.
func printMarkdown(md string) {
	fmt.Print(renderer.Terminal(md))
}
