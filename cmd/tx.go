package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/Tanaka97/portman"
	"github.com/Tanaka97/portman/date"
	"github.com/Tanaka97/portman/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	start string
	end   string
	head  int
	tail  int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions in the ledger" }
func (*txCmd) Usage() string {
	return `pman tx [-s <start_date>] [-d <end_date>] [-head <n> | -tail <n>]

  Lists ledger transactions in chronological order, optionally limited
  to a date range or to the first or last n entries.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.start, "s", "", "Start date of the range (YYYY-MM-DD)")
	f.StringVar(&p.end, "d", "", "End date of the range (YYYY-MM-DD)")
	f.IntVar(&p.head, "head", 0, "Show only the first n transactions")
	f.IntVar(&p.tail, "tail", 0, "Show only the last n transactions")
}

func (p *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.head > 0 && p.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail cannot be used together.")
		return subcommands.ExitUsageError
	}

	ledger, err := portman.LoadLedger(*portfolioDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	var txs []portman.Transaction
	if p.start == "" && p.end == "" {
		txs = slices.Collect(ledger.Transactions())
	} else {
		rng := date.Range{From: date.Date{}, To: date.New(9999, 12, 31)}
		if p.start != "" {
			if rng.From, err = date.Parse(p.start); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return subcommands.ExitUsageError
			}
		}
		if p.end != "" {
			if rng.To, err = date.Parse(p.end); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return subcommands.ExitUsageError
			}
		}
		txs = slices.Collect(ledger.Between(rng))
	}

	if p.head > 0 && len(txs) > p.head {
		txs = txs[:p.head]
	}
	if p.tail > 0 && len(txs) > p.tail {
		txs = txs[len(txs)-p.tail:]
	}

	printMarkdown(renderer.TransactionsMarkdown(txs))
	return subcommands.ExitSuccess
}
