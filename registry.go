package portman

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// ErrUnknownInstrument is wrapped by Resolve for IDs never registered.
var ErrUnknownInstrument = errors.New("unknown instrument")

// Registry is the append-only catalog of instruments, keyed by ID. Records
// are immutable: registering the same ID again is a no-op when the record is
// identical and an error when it differs. The ingestion side is the single
// writer; the engine's operations only read, so no locking is needed.
type Registry struct {
	byID map[ID]*Instrument
	ids  []ID // sorted, for deterministic iteration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[ID]*Instrument)}
}

// Register adds an instrument. Conflicting re-registration is an error:
// instruments are append-only and never mutated in place.
func (r *Registry) Register(inst *Instrument) error {
	if prev, ok := r.byID[inst.id]; ok {
		if prev.Equal(inst) {
			return nil
		}
		return fmt.Errorf("instrument %s already registered with different attributes", inst.id)
	}
	r.byID[inst.id] = inst
	i, _ := slices.BinarySearch(r.ids, inst.id)
	r.ids = slices.Insert(r.ids, i, inst.id)
	return nil
}

// Resolve returns the instrument for an ID, or an error wrapping
// ErrUnknownInstrument.
func (r *Registry) Resolve(id ID) (*Instrument, error) {
	inst, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownInstrument)
	}
	return inst, nil
}

// Has reports whether the ID is registered.
func (r *Registry) Has(id ID) bool {
	_, ok := r.byID[id]
	return ok
}

// Len returns the number of registered instruments.
func (r *Registry) Len() int { return len(r.ids) }

// Instruments iterates over all records in ID order.
func (r *Registry) Instruments() iter.Seq[*Instrument] {
	return func(yield func(*Instrument) bool) {
		for _, id := range r.ids {
			if !yield(r.byID[id]) {
				return
			}
		}
	}
}
