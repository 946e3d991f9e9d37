// Package portman is a portfolio analytics engine: it turns a transaction
// ledger, an instrument catalog and market prices into valuations,
// allocation and risk figures, and rebalancing advice. It is designed to be
// local-first and auditable: every figure is recomputable from plain files
// under version control.
//
// The core operations are:
//   - Lot tracking: ApplyLedger reconstructs open lots, realized gains and
//     cash from the ledger under a pluggable matching policy (FIFO, LIFO or
//     specific identification).
//   - Valuation: Valuate prices a book in one base currency as of one day,
//     querying prices and exchange rates concurrently from a PriceOracle.
//   - Risk and allocation: Analyze computes weights, concentration and,
//     with enough history, volatility and correlation.
//   - Rebalancing: Propose compares a snapshot to an allocation target and
//     suggests value-conserving trades for buckets outside tolerance.
//
// All four are pure transformations: they read immutable inputs and return
// fresh value objects, so concurrent runs over different portfolios or
// dates never interfere. Market data gaps are always surfaced as typed
// errors, never papered over with zeros: a visible failure beats a silently
// wrong total.
//
// This package is the foundation of the `pman` command-line tool.
package portman
