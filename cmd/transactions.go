package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Tanaka97/portman"
	"github.com/Tanaka97/portman/date"
	"github.com/google/subcommands"
)

// appendTransaction validates a transaction by replaying the whole ledger
// with it, then appends it to the ledger file. A transaction that would
// break the book (unknown security, oversell, increment violation) never
// reaches the file.
func appendTransaction(reg *portman.Registry, tx portman.Transaction) subcommands.ExitStatus {
	ledger, err := portman.LoadLedger(*portfolioDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger.Append(tx)
	if _, err := portman.ApplyLedger(reg, ledger, portman.Config{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := portman.AppendTransaction(*portfolioDir, tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded: %s %s\n", tx.Date, tx.Type)
	return subcommands.ExitSuccess
}

// resolveSecurity loads the registry and resolves a security flag value.
func resolveSecurity(s string) (*portman.Registry, *portman.Instrument, error) {
	if s == "" {
		return nil, nil, fmt.Errorf("missing -s security")
	}
	reg, err := portman.LoadRegistry(*portfolioDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading registry: %w", err)
	}
	inst, err := reg.Resolve(portman.ID(s))
	if err != nil {
		return nil, nil, fmt.Errorf("%w (declare it first)", err)
	}
	return reg, inst, nil
}

// --- Buy ---

type buyCmd struct {
	date     string
	security string
	quantity float64
	price    float64
	fee      float64
	memo     string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "purchase shares to open or add to a position" }
func (*buyCmd) Usage() string {
	return `pman buy -s <security> -q <quantity> -p <price> [-d <date>] [-fee <fee>] [-m <memo>]

  Purchases shares. The cost is debited from the cash balance in the
  instrument's currency, and a new lot is opened.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.security, "s", "", "Security identifier")
	f.Float64Var(&c.quantity, "q", 0, "Number of shares")
	f.Float64Var(&c.price, "p", 0, "Price per share, in the instrument's currency")
	f.Float64Var(&c.fee, "fee", 0, "Broker fee, in the instrument's currency")
	f.StringVar(&c.memo, "m", "", "Optional note")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.quantity <= 0 || c.price <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	reg, inst, err := resolveSecurity(c.security)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	tx := portman.NewBuy(on, inst.ID(), portman.Q(c.quantity), portman.M(c.price, inst.Currency()))
	if c.fee > 0 {
		tx = tx.WithFee(portman.M(c.fee, inst.Currency()))
	}
	if c.memo != "" {
		tx = tx.WithMemo(c.memo)
	}
	return appendTransaction(reg, tx)
}

// --- Sell ---

type sellCmd struct {
	date     string
	security string
	quantity float64
	price    float64
	fee      float64
	lots     string
	memo     string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell shares to trim or close a position" }
func (*sellCmd) Usage() string {
	return `pman sell -s <security> -q <quantity> -p <price> [-d <date>] [-lots <refs>] [-fee <fee>] [-m <memo>]

  Sells shares; proceeds are credited to the cash balance. Omitting -q
  sells the entire open position. Naming lot references with -lots
  elects specific identification for this sale (refs separated by ';',
  see "pman lots").
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.security, "s", "", "Security identifier")
	f.Float64Var(&c.quantity, "q", 0, "Number of shares; 0 sells the entire position")
	f.Float64Var(&c.price, "p", 0, "Price per share, in the instrument's currency")
	f.Float64Var(&c.fee, "fee", 0, "Broker fee, in the instrument's currency")
	f.StringVar(&c.lots, "lots", "", "Lot references to consume, separated by ';'")
	f.StringVar(&c.memo, "m", "", "Optional note")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.quantity < 0 || c.price <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	reg, inst, err := resolveSecurity(c.security)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	tx := portman.NewSell(on, inst.ID(), portman.Q(c.quantity), portman.M(c.price, inst.Currency()))
	if c.fee > 0 {
		tx = tx.WithFee(portman.M(c.fee, inst.Currency()))
	}
	if c.lots != "" {
		tx = tx.WithLots(strings.Split(c.lots, ";")...)
	}
	if c.memo != "" {
		tx = tx.WithMemo(c.memo)
	}
	return appendTransaction(reg, tx)
}

// --- Dividend ---

type dividendCmd struct {
	date     string
	security string
	amount   float64
	memo     string
}

func (*dividendCmd) Name() string     { return "dividend" }
func (*dividendCmd) Synopsis() string { return "record a cash dividend from a security" }
func (*dividendCmd) Usage() string {
	return `pman dividend -s <security> -a <amount> [-d <date>] [-m <memo>]

  Credits a dividend to the cash balance in the instrument's currency.
`
}

func (c *dividendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.security, "s", "", "Security identifier")
	f.Float64Var(&c.amount, "a", 0, "Total dividend amount, in the instrument's currency")
	f.StringVar(&c.memo, "m", "", "Optional note")
}

func (c *dividendCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	reg, inst, err := resolveSecurity(c.security)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	tx := portman.NewDividend(on, inst.ID(), portman.M(c.amount, inst.Currency()))
	if c.memo != "" {
		tx = tx.WithMemo(c.memo)
	}
	return appendTransaction(reg, tx)
}

// --- Split ---

type splitCmd struct {
	date     string
	security string
	num      int64
	den      int64
}

func (*splitCmd) Name() string     { return "split" }
func (*splitCmd) Synopsis() string { return "record a stock split or reverse split" }
func (*splitCmd) Usage() string {
	return `pman split -s <security> -num <n> -den <m> [-d <date>]

  Rescales every open lot's quantity by n/m. A 4-for-1 split is
  -num 4 -den 1. Cost basis is untouched.
`
}

func (c *splitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.security, "s", "", "Security identifier")
	f.Int64Var(&c.num, "num", 0, "Split numerator")
	f.Int64Var(&c.den, "den", 1, "Split denominator")
}

func (c *splitCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.num <= 0 || c.den <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	reg, inst, err := resolveSecurity(c.security)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return appendTransaction(reg, portman.NewSplit(on, inst.ID(), c.num, c.den))
}

// --- Deposit ---

type depositCmd struct {
	date     string
	amount   float64
	currency string
	memo     string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "deposit cash into the portfolio" }
func (*depositCmd) Usage() string {
	return `pman deposit -a <amount> -c <currency> [-d <date>] [-m <memo>]
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.Float64Var(&c.amount, "a", 0, "Amount to deposit")
	f.StringVar(&c.currency, "c", "EUR", "Currency of the deposit")
	f.StringVar(&c.memo, "m", "", "Optional note")
}

func (c *depositCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	reg, err := portman.LoadRegistry(*portfolioDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading registry: %v\n", err)
		return subcommands.ExitFailure
	}

	tx := portman.NewDeposit(on, portman.M(c.amount, c.currency))
	if c.memo != "" {
		tx = tx.WithMemo(c.memo)
	}
	return appendTransaction(reg, tx)
}

// --- Withdraw ---

type withdrawCmd struct {
	date     string
	amount   float64
	currency string
	memo     string
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "withdraw cash from the portfolio" }
func (*withdrawCmd) Usage() string {
	return `pman withdraw -a <amount> -c <currency> [-d <date>] [-m <memo>]
`
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.Float64Var(&c.amount, "a", 0, "Amount to withdraw")
	f.StringVar(&c.currency, "c", "EUR", "Currency of the withdrawal")
	f.StringVar(&c.memo, "m", "", "Optional note")
}

func (c *withdrawCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.amount <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	reg, err := portman.LoadRegistry(*portfolioDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading registry: %v\n", err)
		return subcommands.ExitFailure
	}

	tx := portman.NewWithdraw(on, portman.M(c.amount, c.currency))
	if c.memo != "" {
		tx = tx.WithMemo(c.memo)
	}
	return appendTransaction(reg, tx)
}
