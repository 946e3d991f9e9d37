package portman

import (
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Direction of a trade suggestion.
type Direction int

const (
	Sell Direction = iota
	Buy
)

func (d Direction) String() string {
	if d == Buy {
		return "buy"
	}
	return "sell"
}

// TradeSuggestion is one proposed trade: bring a bucket back toward its
// target by buying or selling the given base-currency amount. Drift is the
// signed distance from target, positive when overweight.
type TradeSuggestion struct {
	Bucket    string
	Direction Direction
	Amount    Money
	Drift     Percent
}

// Propose compares a snapshot's allocation to a target and suggests trades
// for the buckets that drifted beyond the tolerance band. Buckets within
// the band are left alone, so small market noise never produces churn.
//
// Proposed amounts are clipped so aggregate buys equal aggregate sells:
// the advisor conserves total value and never invents cash. A consequence
// is that purchases must be funded by an overweight bucket in the same
// target; a target with nothing to sell proposes nothing. Suggestions come
// largest absolute drift first, ties broken by bucket name, so unchanged
// inputs always produce the same advice.
func Propose(snap *Snapshot, target *AllocationTarget, tolerance float64) ([]TradeSuggestion, error) {
	if target == nil || len(target.buckets) == 0 {
		return nil, &InvalidTargetError{Reason: "no buckets"}
	}
	if tolerance < 0 || tolerance >= 1 {
		return nil, &InvalidTargetError{Reason: "tolerance is outside [0, 1)"}
	}
	total := snap.Total()
	if !total.IsPositive() {
		return nil, &EmptyPortfolioError{AsOf: snap.On()}
	}

	current := currentValues(snap, target.ByClass())

	var out []TradeSuggestion
	sumBuy, sumSell := decimal.Zero, decimal.Zero
	for _, b := range target.buckets {
		weight := 0.0
		if v, ok := current[b.Bucket]; ok {
			weight = v.Ratio(total).Float64()
		}
		drift := weight - float64(b.Weight)/100
		if math.Abs(drift) <= tolerance {
			continue
		}
		amount := total.Amount().Mul(decimal.NewFromFloat(math.Abs(drift)))
		s := TradeSuggestion{
			Bucket: b.Bucket,
			Amount: M(amount, snap.Base()),
			Drift:  Percent(drift * 100),
		}
		if drift > 0 {
			s.Direction = Sell
			sumSell = sumSell.Add(amount)
		} else {
			s.Direction = Buy
			sumBuy = sumBuy.Add(amount)
		}
		out = append(out, s)
	}

	out = clip(out, sumBuy, sumSell)
	slices.SortFunc(out, func(a, b TradeSuggestion) int {
		da, db := math.Abs(float64(a.Drift)), math.Abs(float64(b.Drift))
		if da != db {
			if da > db {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Bucket, b.Bucket)
	})
	return out, nil
}

// clip scales the heavier side of the proposal down so buys and sells
// match. A one-sided proposal scales to nothing.
func clip(s []TradeSuggestion, sumBuy, sumSell decimal.Decimal) []TradeSuggestion {
	if sumBuy.Equal(sumSell) {
		return s
	}
	matched := decimal.Min(sumBuy, sumSell)
	scale, side := decimal.Zero, Sell
	if sumSell.GreaterThan(sumBuy) {
		if sumSell.IsPositive() {
			scale = matched.Div(sumSell)
		}
	} else {
		side = Buy
		if sumBuy.IsPositive() {
			scale = matched.Div(sumBuy)
		}
	}

	out := s[:0]
	for _, t := range s {
		if t.Direction == side {
			t.Amount = M(t.Amount.Amount().Mul(scale), t.Amount.Currency())
		}
		if t.Amount.IsPositive() {
			out = append(out, t)
		}
	}
	return out
}

// currentValues aggregates the snapshot's value per target bucket: by asset
// class (cash lines under "cash") or by instrument (cash lines under
// "cash:CUR").
func currentValues(snap *Snapshot, byClass bool) map[string]Money {
	out := make(map[string]Money)
	for h := range snap.Holdings() {
		key := string(h.Security)
		if byClass {
			key = h.Class.String()
		}
		out[key] = out[key].Add(h.Value)
	}
	for c := range snap.CashLines() {
		key := "cash:" + c.Currency
		if byClass {
			key = Cash.String()
		}
		out[key] = out[key].Add(c.Value)
	}
	return out
}
