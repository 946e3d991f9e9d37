package portman

import (
	"errors"
	"strings"
	"testing"

	"github.com/Tanaka97/portman/date"
)

func openLots() lots {
	return lots{
		{Ref: "2025-01-10#1", Date: date.MustParse("2025-01-10"), Quantity: Q(10), Cost: USD(1000)},
		{Ref: "2025-01-11#1", Date: date.MustParse("2025-01-11"), Quantity: Q(10), Cost: USD(1200)},
	}
}

func TestLotsConsumeFIFO(t *testing.T) {
	ls := openLots()
	on := date.MustParse("2025-02-01")

	kept, matched, err := ls.consume(Q(15), FIFO, nil, aapl, on)
	if err != nil {
		t.Fatalf("consume() error = %v", err)
	}
	// Oldest lot in full, then half the newer one: 1000 + 1200*5/10.
	if !matched.Equal(USD(1600)) {
		t.Errorf("matched cost = %s, want 1600", matched.Amount())
	}
	if len(kept) != 1 {
		t.Fatalf("kept %d lots, want 1", len(kept))
	}
	if kept[0].Ref != "2025-01-11#1" || !kept[0].Quantity.Equal(Q(5)) || !kept[0].Cost.Equal(USD(600)) {
		t.Errorf("kept lot = %+v, want 5 units at total cost 600", kept[0])
	}

	// The working set the caller passed in is untouched.
	if !ls[1].Quantity.Equal(Q(10)) {
		t.Errorf("consume mutated its input: %+v", ls[1])
	}
}

func TestLotsConsumeLIFO(t *testing.T) {
	ls := openLots()
	on := date.MustParse("2025-02-01")

	kept, matched, err := ls.consume(Q(15), LIFO, nil, aapl, on)
	if err != nil {
		t.Fatalf("consume() error = %v", err)
	}
	// Newest lot in full, then half the older one: 1200 + 1000*5/10.
	if !matched.Equal(USD(1700)) {
		t.Errorf("matched cost = %s, want 1700", matched.Amount())
	}
	if len(kept) != 1 {
		t.Fatalf("kept %d lots, want 1", len(kept))
	}
	if kept[0].Ref != "2025-01-10#1" || !kept[0].Cost.Equal(USD(500)) {
		t.Errorf("kept lot = %+v, want the older lot at total cost 500", kept[0])
	}
}

func TestLotsConsumeSpecific(t *testing.T) {
	on := date.MustParse("2025-02-01")

	t.Run("designated lot", func(t *testing.T) {
		kept, matched, err := openLots().consume(Q(4), SpecificID, []string{"2025-01-11#1"}, aapl, on)
		if err != nil {
			t.Fatalf("consume() error = %v", err)
		}
		if !matched.Equal(USD(480)) {
			t.Errorf("matched cost = %s, want 480", matched.Amount())
		}
		if len(kept) != 2 || !kept[1].Quantity.Equal(Q(6)) || !kept[1].Cost.Equal(USD(720)) {
			t.Errorf("kept = %+v, want the designated lot reduced to 6 units / 720", kept)
		}
	})

	errCases := []struct {
		name string
		refs []string
		want string
	}{
		{"no references", nil, "requires lot references"},
		{"unknown reference", []string{"2024-12-31#1"}, "is not open"},
		{"duplicate reference", []string{"2025-01-10#1", "2025-01-10#1"}, "referenced twice"},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := openLots().consume(Q(4), SpecificID, tc.refs, aapl, on)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("consume() error = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestLotsConsumeInsufficient(t *testing.T) {
	on := date.MustParse("2025-02-01")
	_, _, err := openLots().consume(Q(25), FIFO, nil, aapl, on)

	var insErr *InsufficientLotError
	if !errors.As(err, &insErr) {
		t.Fatalf("consume() error = %v, want InsufficientLotError", err)
	}
	if insErr.Security != aapl || !insErr.Requested.Equal(Q(25)) || !insErr.Available.Equal(Q(20)) {
		t.Errorf("InsufficientLotError = %+v, want requested 25 of 20 available", insErr)
	}
}

func TestLotUnitCost(t *testing.T) {
	l := Lot{Quantity: Q(8), Cost: USD(1000)}
	if got := l.UnitCost(); !got.Equal(USD(125)) {
		t.Errorf("UnitCost() = %s, want 125", got.Amount())
	}

	empty := Lot{Cost: USD(0)}
	if got := empty.UnitCost(); !got.Equal(USD(0)) {
		t.Errorf("UnitCost() on an empty lot = %s, want 0", got.Amount())
	}
}
