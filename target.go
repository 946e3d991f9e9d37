package portman

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// targetEpsilon is the tolerance on the target weight sum. Policy files are
// written by hand; 0.6 + 0.4 must pass, 0.6 + 0.39 must not.
const targetEpsilon = 1e-4

// TargetBucket is one entry of an allocation target: an asset class name,
// an instrument ID, or a cash bucket ("cash" in class targets, "cash:EUR"
// in instrument targets).
type TargetBucket struct {
	Bucket string
	Weight Percent
}

// AllocationTarget is a validated allocation policy: buckets and the weight
// each should carry. Weights sum to one; a target that does not is rejected
// at construction, never normalized. Buckets are either all asset classes
// or all instruments; mixing the two would double-count whatever the class
// buckets contain.
type AllocationTarget struct {
	buckets []TargetBucket
	byClass bool
}

// NewAllocationTarget validates bucket weights (given as fractions of one)
// and builds a target. It fails with InvalidTargetError on an empty target,
// a weight outside [0, 1], a sum off one by more than epsilon, an unknown
// bucket name, or a mix of class and instrument buckets.
func NewAllocationTarget(weights map[string]float64) (*AllocationTarget, error) {
	if len(weights) == 0 {
		return nil, &InvalidTargetError{Reason: "no buckets"}
	}

	t := &AllocationTarget{}
	sum := 0.0
	classes, instruments := 0, 0
	for bucket, w := range weights {
		if w < 0 || w > 1 {
			return nil, &InvalidTargetError{Reason: fmt.Sprintf("weight %v for %q is outside [0, 1]", w, bucket)}
		}
		switch kind, err := classifyBucket(bucket); {
		case err != nil:
			return nil, &InvalidTargetError{Reason: err.Error()}
		case kind == bucketClass:
			classes++
		default:
			instruments++
		}
		sum += w
		t.buckets = append(t.buckets, TargetBucket{Bucket: bucket, Weight: Percent(w * 100)})
	}
	if classes > 0 && instruments > 0 {
		return nil, &InvalidTargetError{Reason: "mixes asset-class and instrument buckets"}
	}
	if sum < 1-targetEpsilon || sum > 1+targetEpsilon {
		return nil, &InvalidTargetError{Reason: "weights do not sum to 1", Sum: sum}
	}
	t.byClass = classes > 0
	slices.SortFunc(t.buckets, func(a, b TargetBucket) int { return strings.Compare(a.Bucket, b.Bucket) })
	return t, nil
}

type bucketKind int

const (
	bucketClass bucketKind = iota
	bucketInstrument
)

func classifyBucket(bucket string) (bucketKind, error) {
	if _, err := ParseAssetClass(bucket); err == nil {
		return bucketClass, nil
	}
	if cur, ok := strings.CutPrefix(bucket, "cash:"); ok {
		if !validCurrency(cur) {
			return 0, fmt.Errorf("bucket %q: %q is not a currency code", bucket, cur)
		}
		return bucketInstrument, nil
	}
	if _, err := ParseID(bucket); err == nil {
		return bucketInstrument, nil
	}
	return 0, fmt.Errorf("bucket %q is neither an asset class nor an instrument", bucket)
}

// ByClass reports whether the target is keyed by asset class rather than by
// instrument.
func (t *AllocationTarget) ByClass() bool { return t.byClass }

// Buckets returns the target entries sorted by bucket name.
func (t *AllocationTarget) Buckets() []TargetBucket { return slices.Clone(t.buckets) }

// Weight returns the target weight for a bucket, zero when absent.
func (t *AllocationTarget) Weight(bucket string) (Percent, bool) {
	i, ok := slices.BinarySearchFunc(t.buckets, bucket, func(b TargetBucket, s string) int {
		return strings.Compare(b.Bucket, s)
	})
	if !ok {
		return 0, false
	}
	return t.buckets[i].Weight, true
}

// RebalancePolicy is an allocation target with the tolerance band to apply
// it under, as read from a policy file.
type RebalancePolicy struct {
	Name      string
	Tolerance float64
	Target    *AllocationTarget
}

// policyFile is the YAML shape of a policy:
//
//	name: sixty-forty
//	tolerance: 0.05
//	targets:
//	  equity: 0.60
//	  bond: 0.40
type policyFile struct {
	Name      string             `yaml:"name"`
	Tolerance float64            `yaml:"tolerance"`
	Targets   map[string]float64 `yaml:"targets"`
}

// DecodePolicy reads a YAML policy. The target is validated on the way in,
// so a loaded policy is always usable.
func DecodePolicy(r io.Reader) (*RebalancePolicy, error) {
	var f policyFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("cannot read policy: %w", err)
	}
	target, err := NewAllocationTarget(f.Targets)
	if err != nil {
		return nil, err
	}
	if f.Tolerance < 0 || f.Tolerance >= 1 {
		return nil, &InvalidTargetError{Reason: fmt.Sprintf("tolerance %v is outside [0, 1)", f.Tolerance)}
	}
	return &RebalancePolicy{Name: f.Name, Tolerance: f.Tolerance, Target: target}, nil
}

// EncodePolicy writes a policy back out as YAML, buckets sorted, so a
// generated skeleton is stable and diffs cleanly.
func EncodePolicy(w io.Writer, p *RebalancePolicy) error {
	f := policyFile{Name: p.Name, Tolerance: p.Tolerance, Targets: make(map[string]float64)}
	for _, b := range p.Target.Buckets() {
		f.Targets[b.Bucket] = float64(b.Weight) / 100
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}
