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

type riskCmd struct {
	date     string
	currency string
	period   string
}

func (*riskCmd) Name() string     { return "risk" }
func (*riskCmd) Synopsis() string { return "report allocation weights, concentration and volatility" }
func (*riskCmd) Usage() string {
	return `pman risk [-d <date>] [-c <currency>] [-p <period>]

  Values the portfolio and reports allocation weights per bucket and
  per asset class, concentration, and, when the snapshot history is
  long enough, volatility and correlations. The period names the rhythm
  snapshots were recorded at and is used to annualize.
`
}

func (c *riskCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Valuation date (YYYY-MM-DD)")
	f.StringVar(&c.currency, "c", "EUR", "Base currency of the report")
	f.StringVar(&c.period, "p", "weekly", "Snapshot rhythm (daily, weekly, monthly, quarterly, yearly)")
}

func (c *riskCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	period, err := date.ParsePeriod(c.period)
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
	report, err := portman.Analyze(snap, series)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RiskMarkdown(report, period))
	return subcommands.ExitSuccess
}
