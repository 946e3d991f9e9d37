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

type fetchCmd struct {
	from     string
	to       string
	currency string
	feedURL  string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch prices and rates from the quote feed" }
func (*fetchCmd) Usage() string {
	return `pman fetch [-d <end_date>] [-from <start_date>] [-c <currency>]

  Fetches end-of-day prices for every declared instrument, and exchange
  rates from every portfolio currency to the base, then records them in
  prices.jsonl. The feed API key comes from -feed-api-key or the
  ` + "PORTMAN_FEED_KEY" + ` environment variable. This is the only command
  that touches the network.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.to, "d", date.Today().String(), "Last date to fetch (YYYY-MM-DD)")
	f.StringVar(&c.from, "from", "", "First date to fetch; defaults to 40 days before the last")
	f.StringVar(&c.currency, "c", "EUR", "Base currency to fetch exchange rates against")
	f.StringVar(&c.feedURL, "feed-url", "https://eodhd.com", "Base URL of the quote feed")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	to, err := date.Parse(c.to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	from := to.Add(-40)
	if c.from != "" {
		if from, err = date.Parse(c.from); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}
	if to.Before(from) {
		fmt.Fprintf(os.Stderr, "Error: -from %s is after -d %s\n", from, to)
		return subcommands.ExitUsageError
	}
	rng := date.Range{From: from, To: to}

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
	table, err := portman.LoadPrices(*portfolioDir, reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}

	feed := portman.NewQuoteFeed(reg, c.feedURL, "")
	fetched, failed := refreshPrices(ctx, feed, reg, ledger, table, rng, c.currency)

	if fetched > 0 {
		if err := portman.SavePrices(*portfolioDir, table); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving prices: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	fmt.Printf("Fetched %d series (%d failed) into %s\n", fetched, failed, *portfolioDir)
	if failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// refreshPrices pulls the feed's series for every registered instrument and
// for every needed currency pair, recording them into the table. One failing
// series does not stop the others.
func refreshPrices(ctx context.Context, feed *portman.QuoteFeed, reg *portman.Registry, ledger *portman.Ledger, table *portman.PriceTable, rng date.Range, base string) (fetched, failed int) {
	record := func(id portman.ID, currency string) {
		hist, err := feed.History(ctx, id, rng)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			failed++
			return
		}
		n := 0
		for on, v := range hist.Values() {
			var err error
			if id.IsPair() {
				err = table.RecordRate(currency, base, on, portman.Q(v))
			} else {
				err = table.Record(id, on, portman.M(v, currency))
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
				failed++
				return
			}
			n++
		}
		if n > 0 {
			fetched++
		}
	}

	for inst := range reg.Instruments() {
		record(inst.ID(), inst.Currency())
	}

	// Rates for every currency the portfolio can hold, against the base.
	currencies := make(map[string]bool)
	for inst := range reg.Instruments() {
		currencies[inst.Currency()] = true
	}
	for tx := range ledger.Transactions() {
		if cur := tx.CashValue().Currency(); cur != "" {
			currencies[cur] = true
		}
	}
	for cur := range currencies {
		if cur == base {
			continue
		}
		record(portman.Pair(cur, base), cur)
	}
	return fetched, failed
}
