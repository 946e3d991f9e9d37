package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Tanaka97/portman"
	"github.com/google/subcommands"
)

type declareCmd struct {
	security  string
	class     string
	currency  string
	increment float64
}

func (*declareCmd) Name() string     { return "declare" }
func (*declareCmd) Synopsis() string { return "declare an instrument in the registry" }
func (*declareCmd) Usage() string {
	return `pman declare -s <security> -class <class> -c <currency> [-i <increment>]

  Declares an instrument so transactions can reference it. Re-declaring
  the exact same instrument is a no-op; changing its attributes is an
  error.
`
}

func (c *declareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.security, "s", "", "Security identifier (SYMBOL.VENUE)")
	f.StringVar(&c.class, "class", "equity", "Asset class (equity, bond, etf, crypto, cash, other)")
	f.StringVar(&c.currency, "c", "", "Currency the instrument is quoted in")
	f.Float64Var(&c.increment, "i", 0, "Quantity increment; 0 leaves quantities unconstrained")
}

func (c *declareCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.security == "" || c.currency == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	class, err := portman.ParseAssetClass(c.class)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	inst, err := portman.NewInstrument(portman.ID(c.security), class, c.currency, portman.Q(c.increment))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	reg, err := portman.LoadRegistry(*portfolioDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading registry: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := reg.Register(inst); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := portman.SaveRegistry(*portfolioDir, reg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving registry: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Declared %s (%s, %s)\n", inst.ID(), inst.Class(), inst.Currency())
	return subcommands.ExitSuccess
}
