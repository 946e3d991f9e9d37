package portman

import (
	"fmt"
	"os"
	"path/filepath"
)

// A portfolio directory is plain files, meant to live in version control:
//
//	instruments.jsonl  the registry
//	ledger.jsonl       the transaction ledger
//	prices.jsonl       local price and rate observations
//	history.jsonl      past valuation snapshots
//	policy.yaml        the rebalancing policy
//
// Data files that do not exist yet load as empty: a fresh directory is a
// valid, empty portfolio. The policy is the exception: rebalancing against
// a target nobody wrote would be advice from nowhere.

const (
	instrumentsFilename = "instruments.jsonl"
	ledgerFilename      = "ledger.jsonl"
	pricesFilename      = "prices.jsonl"
	historyFilename     = "history.jsonl"
	policyFilename      = "policy.yaml"
)

func open(dir, name string) (*os.File, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func create(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create portfolio directory %q: %w", dir, err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("cannot create %q: %w", name, err)
	}
	return f, nil
}

// LoadRegistry reads the instrument catalog from a portfolio directory.
func LoadRegistry(dir string) (*Registry, error) {
	f, err := open(dir, instrumentsFilename)
	if os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	reg, err := DecodeRegistry(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name(), err)
	}
	return reg, nil
}

// SaveRegistry writes the catalog back.
func SaveRegistry(dir string, reg *Registry) error {
	f, err := create(dir, instrumentsFilename)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeRegistry(f, reg)
}

// LoadLedger reads the transaction ledger from a portfolio directory.
func LoadLedger(dir string) (*Ledger, error) {
	f, err := open(dir, ledgerFilename)
	if os.IsNotExist(err) {
		return NewLedger(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	l, err := DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name(), err)
	}
	return l, nil
}

// SaveLedger writes the ledger back in canonical order.
func SaveLedger(dir string, l *Ledger) error {
	f, err := create(dir, ledgerFilename)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeLedger(f, l)
}

// AppendTransaction appends one transaction to the ledger file, creating
// the file if needed. The rest of the ledger is left untouched.
func AppendTransaction(dir string, tx Transaction) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, ledgerFilename), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeTransaction(f, tx)
}

// LoadPrices reads local price observations, attributing currencies
// through the registry.
func LoadPrices(dir string, reg *Registry) (*PriceTable, error) {
	f, err := open(dir, pricesFilename)
	if os.IsNotExist(err) {
		return NewPriceTable(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := DecodePrices(f, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name(), err)
	}
	return t, nil
}

// SavePrices writes the observations back.
func SavePrices(dir string, t *PriceTable) error {
	f, err := create(dir, pricesFilename)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodePrices(f, t)
}

// LoadHistory reads the snapshot history.
func LoadHistory(dir string) (*SnapshotSeries, error) {
	f, err := open(dir, historyFilename)
	if os.IsNotExist(err) {
		return &SnapshotSeries{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := DecodeSnapshots(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name(), err)
	}
	return s, nil
}

// SaveHistory writes the snapshot history back.
func SaveHistory(dir string, s *SnapshotSeries) error {
	f, err := create(dir, historyFilename)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeSnapshots(f, s)
}

// LoadPolicy reads and validates the rebalancing policy. There is no
// default policy: a missing file is an error the caller must surface.
func LoadPolicy(dir string) (*RebalancePolicy, error) {
	f, err := open(dir, policyFilename)
	if err != nil {
		return nil, fmt.Errorf("no rebalancing policy: %w", err)
	}
	defer f.Close()
	p, err := DecodePolicy(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name(), err)
	}
	return p, nil
}

// SavePolicy writes a policy file, e.g. a generated skeleton.
func SavePolicy(dir string, p *RebalancePolicy) error {
	f, err := create(dir, policyFilename)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodePolicy(f, p)
}
