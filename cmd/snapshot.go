package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Tanaka97/portman"
	"github.com/Tanaka97/portman/date"
	"github.com/google/subcommands"
)

type snapshotCmd struct {
	date     string
	currency string
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "value the portfolio and record it in the history" }
func (*snapshotCmd) Usage() string {
	return `pman snapshot [-d <date>] [-c <currency>]

  Runs a valuation and appends the snapshot to history.jsonl. The
  history feeds volatility and correlation in "pman risk", so record
  snapshots at a steady rhythm and in one base currency.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Valuation date (YYYY-MM-DD)")
	f.StringVar(&c.currency, "c", "EUR", "Base currency of the snapshot")
}

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	series, err := portman.LoadHistory(*portfolioDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := series.Record(snap); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := portman.SaveHistory(*portfolioDir, series); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving history: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Recorded snapshot of %s on %s: total %s\n", snap.Base(), snap.On(), snap.Total())
	return subcommands.ExitSuccess
}
