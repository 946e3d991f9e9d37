// Command pman manages an investment portfolio kept in plain files:
// recording transactions, fetching quotes, and reporting holdings,
// gains, risk and rebalancing suggestions.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/Tanaka97/portman/cmd"
	"github.com/Tanaka97/portman/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Shell completion first: when the shell invokes the binary with
	// COMP_LINE set this prints candidates and exits, otherwise it
	// returns immediately.
	completion().Complete("pman")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion mirrors the command tree registered in cmd.Register so the
// shell can complete subcommands and their flags.
func completion() *complete.Command {
	currencies := predict.Set{"EUR", "USD", "GBP", "CHF", "JPY"}
	classes := predict.Set{"equity", "bond", "etf", "crypto", "cash", "other"}
	methods := predict.Set{"fifo", "lifo", "specific"}
	periods := predict.Set{"daily", "weekly", "monthly", "quarterly", "yearly"}
	topics, _ := docs.GetAllTopics()

	report := map[string]complete.Predictor{"d": predict.Something, "c": currencies}

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"dir": predict.Dirs("*"),
		},
		Sub: map[string]*complete.Command{
			"declare": {Flags: map[string]complete.Predictor{
				"s": predict.Something, "class": classes, "c": currencies, "i": predict.Something,
			}},
			"buy": {Flags: map[string]complete.Predictor{
				"d": predict.Something, "s": predict.Something, "q": predict.Something,
				"p": predict.Something, "fee": predict.Something, "m": predict.Something,
			}},
			"sell": {Flags: map[string]complete.Predictor{
				"d": predict.Something, "s": predict.Something, "q": predict.Something,
				"p": predict.Something, "fee": predict.Something, "lots": predict.Something,
				"m": predict.Something,
			}},
			"dividend": {Flags: map[string]complete.Predictor{
				"d": predict.Something, "s": predict.Something, "a": predict.Something,
				"m": predict.Something,
			}},
			"split": {Flags: map[string]complete.Predictor{
				"d": predict.Something, "s": predict.Something,
				"num": predict.Something, "den": predict.Something,
			}},
			"deposit": {Flags: map[string]complete.Predictor{
				"d": predict.Something, "a": predict.Something, "c": currencies,
				"m": predict.Something,
			}},
			"withdraw": {Flags: map[string]complete.Predictor{
				"d": predict.Something, "a": predict.Something, "c": currencies,
				"m": predict.Something,
			}},
			"tx": {Flags: map[string]complete.Predictor{
				"s": predict.Something, "d": predict.Something,
				"head": predict.Something, "tail": predict.Something,
			}},
			"holding": {Flags: report},
			"gains": {Flags: map[string]complete.Predictor{
				"d": predict.Something, "c": currencies, "method": methods,
			}},
			"lots": {Flags: map[string]complete.Predictor{"method": methods}},
			"risk": {Flags: map[string]complete.Predictor{
				"d": predict.Something, "c": currencies, "p": periods,
			}},
			"rebalance": {Flags: report},
			"snapshot":  {Flags: report},
			"fetch": {Flags: map[string]complete.Predictor{
				"d": predict.Something, "from": predict.Something, "c": currencies,
				"feed-url": predict.Something,
			}},
			"import": {Flags: map[string]complete.Predictor{"i": predict.Files("*.csv")}},
			"export": {Flags: map[string]complete.Predictor{"o": predict.Files("*.csv")}},
			"fmt":    {},
			"topic":  {Args: predict.Set(topics)},
			"assist": {Args: predict.Something},
			"help":   {},
		},
	}
}
