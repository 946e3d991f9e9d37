package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Tanaka97/portman"
	"github.com/google/subcommands"
)

// --- Import ---

type importCmd struct {
	input string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions from a CSV file" }
func (*importCmd) Usage() string {
	return `pman import -i <file.csv>

  Reads transactions from a CSV file (see "pman topic interchange" for
  the column set) and replaces the ledger with them. Every row is
  validated first; a bad row aborts the import with its number.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "CSV file to read; - for stdin")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.input == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	in := os.Stdin
	if c.input != "-" {
		var err error
		if in, err = os.Open(c.input); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		defer in.Close()
	}

	ledger, err := portman.ImportCSV(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	// The ledger must replay cleanly against the registry before anything
	// is written.
	reg, err := portman.LoadRegistry(*portfolioDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading registry: %v\n", err)
		return subcommands.ExitFailure
	}
	if _, err := portman.ApplyLedger(reg, ledger, portman.Config{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := portman.SaveLedger(*portfolioDir, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %d transactions\n", ledger.Len())
	return subcommands.ExitSuccess
}

// --- Export ---

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the ledger to a CSV file" }
func (*exportCmd) Usage() string {
	return `pman export [-o <file.csv>]

  Writes the ledger as CSV, one transaction per row, to the file or to
  stdout.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "CSV file to write; empty for stdout")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := portman.LoadLedger(*portfolioDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	out := os.Stdout
	if c.output != "" {
		if out, err = os.Create(c.output); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
	}

	if err := portman.ExportCSV(out, ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.output != "" {
		fmt.Printf("Exported %d transactions to %s\n", ledger.Len(), c.output)
	}
	return subcommands.ExitSuccess
}
