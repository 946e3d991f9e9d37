package portman

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/Tanaka97/portman/date"
)

// WeightLine is one bucket of the allocation breakdown: an instrument, a
// cash currency ("cash:EUR"), or an asset class.
type WeightLine struct {
	Bucket string
	Value  Money
	Weight Percent
}

// CorrelationMatrix holds pairwise correlation coefficients of instrument
// returns, in Securities order. The matrix is symmetric with a unit
// diagonal.
type CorrelationMatrix struct {
	Securities []ID
	coeff      *mat.SymDense
}

// At returns the coefficient between the i-th and j-th securities.
func (c *CorrelationMatrix) At(i, j int) float64 { return c.coeff.At(i, j) }

// CorrelationPair is a pair of instruments and their coefficient.
type CorrelationPair struct {
	A, B  ID
	Coeff float64
}

// Pairs returns every distinct pair with |coefficient| >= min, most
// correlated first. Useful to flag concentration hiding behind distinct
// tickers.
func (c *CorrelationMatrix) Pairs(min float64) []CorrelationPair {
	var out []CorrelationPair
	for i := range c.Securities {
		for j := i + 1; j < len(c.Securities); j++ {
			if r := c.coeff.At(i, j); math.Abs(r) >= min {
				out = append(out, CorrelationPair{A: c.Securities[i], B: c.Securities[j], Coeff: r})
			}
		}
	}
	slices.SortFunc(out, func(a, b CorrelationPair) int {
		if d := math.Abs(b.Coeff) - math.Abs(a.Coeff); d != 0 {
			if d > 0 {
				return 1
			}
			return -1
		}
		if x := strings.Compare(string(a.A), string(b.A)); x != 0 {
			return x
		}
		return strings.Compare(string(a.B), string(b.B))
	})
	return out
}

// RiskReport is the output of Analyze: the concentration and dispersion
// figures for one valuation, plus history-based statistics when the series
// supports them.
type RiskReport struct {
	On    date.Date
	Base  string
	Total Money

	// ByBucket breaks the portfolio down per instrument and per cash
	// currency; ByClass aggregates the same value per asset class. Both are
	// sorted by descending weight, then bucket name.
	ByBucket []WeightLine
	ByClass  []WeightLine

	// MaxWeight is the heaviest bucket; Herfindahl is the sum of squared
	// bucket fractions, ranging from 1/n (even spread) to 1 (single bucket).
	MaxWeight  WeightLine
	Herfindahl float64

	// Volatility is the per-period sample standard deviation of total-value
	// returns, nil when the series has fewer than two usable returns.
	// Correlation is nil unless at least two instruments are present across
	// the whole series. Samples is the number of returns used.
	Volatility  *float64
	Correlation *CorrelationMatrix
	Samples     int
}

// AnnualizedVolatility scales the per-period volatility by the square root
// of the number of periods per year, nil when volatility is absent.
func (r *RiskReport) AnnualizedVolatility(p date.Period) *float64 {
	if r.Volatility == nil {
		return nil
	}
	v := *r.Volatility * math.Sqrt(float64(p.PerYear()))
	return &v
}

// Analyze computes the allocation and risk figures for a snapshot. The
// series provides the history for volatility and correlation and may be
// nil; the snapshot itself counts as its most recent point, so two prior
// snapshots are enough for a first volatility figure. Statistics that the
// history cannot support are left nil, never defaulted.
func Analyze(snap *Snapshot, series *SnapshotSeries) (*RiskReport, error) {
	total := snap.Total()
	if !total.IsPositive() {
		return nil, &EmptyPortfolioError{AsOf: snap.On()}
	}

	r := &RiskReport{On: snap.On(), Base: snap.Base(), Total: total}

	byClass := make(map[AssetClass]Money)
	for h := range snap.Holdings() {
		r.ByBucket = append(r.ByBucket, weightLine(string(h.Security), h.Value, total))
		byClass[h.Class] = byClass[h.Class].Add(h.Value)
	}
	for c := range snap.CashLines() {
		r.ByBucket = append(r.ByBucket, weightLine("cash:"+c.Currency, c.Value, total))
		byClass[Cash] = byClass[Cash].Add(c.Value)
	}
	for class, v := range byClass {
		r.ByClass = append(r.ByClass, weightLine(class.String(), v, total))
	}
	sortWeightLines(r.ByBucket)
	sortWeightLines(r.ByClass)

	r.MaxWeight = r.ByBucket[0]
	for _, l := range r.ByBucket {
		f := float64(l.Weight) / 100
		r.Herfindahl += f * f
	}

	if series != nil {
		full, err := extendSeries(series, snap)
		if err != nil {
			return nil, err
		}
		if returns := full.Returns(); len(returns) >= 2 {
			v := stat.StdDev(returns, nil)
			r.Volatility = &v
			r.Samples = len(returns)
			r.Correlation = correlate(full)
		}
	}
	return r, nil
}

func weightLine(bucket string, v, total Money) WeightLine {
	return WeightLine{Bucket: bucket, Value: v, Weight: Percent(v.Ratio(total).Float64() * 100)}
}

func sortWeightLines(lines []WeightLine) {
	slices.SortFunc(lines, func(a, b WeightLine) int {
		if a.Weight != b.Weight {
			if a.Weight > b.Weight {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Bucket, b.Bucket)
	})
}

// extendSeries returns a copy of the series with the snapshot recorded, so
// Analyze never mutates the caller's history.
func extendSeries(series *SnapshotSeries, snap *Snapshot) (*SnapshotSeries, error) {
	full := &SnapshotSeries{}
	for _, s := range series.Snapshots() {
		if err := full.Record(s); err != nil {
			return nil, err
		}
	}
	if err := full.Record(snap); err != nil {
		return nil, fmt.Errorf("snapshot does not fit its history: %w", err)
	}
	return full, nil
}

// correlate builds the correlation matrix of native-price returns for the
// instruments held across the entire series. Instruments absent from any
// entry, or quoted at zero somewhere, are left out rather than patched
// with invented observations.
func correlate(series *SnapshotSeries) *CorrelationMatrix {
	prices := make(map[ID][]float64)
	n := 0
	for _, snap := range series.Snapshots() {
		for h := range snap.Holdings() {
			prices[h.Security] = append(prices[h.Security], h.Price.Amount().InexactFloat64())
		}
		n++
	}

	var ids []ID
	for id, obs := range prices {
		if len(obs) != n {
			continue
		}
		positive := true
		for _, p := range obs {
			if p <= 0 {
				positive = false
				break
			}
		}
		if positive {
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 || n < 3 {
		return nil
	}
	slices.Sort(ids)

	// Rows are periods, columns are instruments, cells are simple returns.
	data := mat.NewDense(n-1, len(ids), nil)
	for j, id := range ids {
		p := prices[id]
		for i := 1; i < n; i++ {
			data.Set(i-1, j, p[i]/p[i-1]-1)
		}
	}

	coeff := mat.NewSymDense(len(ids), nil)
	stat.CorrelationMatrix(coeff, data, nil)
	// A constant price series has zero variance; gonum yields NaN there.
	// Report those pairs as uncorrelated instead of propagating NaN.
	for i := range ids {
		coeff.SetSym(i, i, 1)
		for j := i + 1; j < len(ids); j++ {
			if math.IsNaN(coeff.At(i, j)) {
				coeff.SetSym(i, j, 0)
			}
		}
	}
	return &CorrelationMatrix{Securities: ids, coeff: coeff}
}
