package portman

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/Tanaka97/portman/date"
)

// pricedBook values a 10-share MC position plus 3000 cash with the given MC
// price on one day.
func pricedBook(t *testing.T, price Money, on date.Date) *Snapshot {
	t.Helper()
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{},
		NewDeposit(date.MustParse("2025-01-05"), EUR(3000)),
		NewTransferIn(date.MustParse("2025-01-10"), mc, Q(10), EUR(600)),
	)
	table := NewPriceTable()
	if err := table.Record(mc, on, price); err != nil {
		t.Fatal(err)
	}
	return valuedAt(t, b, table, on)
}

func TestSeriesReturns(t *testing.T) {
	d := []date.Date{
		date.MustParse("2025-03-05"),
		date.MustParse("2025-03-06"),
		date.MustParse("2025-03-07"),
	}
	series := mustSeries(t,
		pricedBook(t, EUR(700), d[0]), // 10000
		pricedBook(t, EUR(800), d[1]), // 11000
		pricedBook(t, EUR(745), d[2]), // 10450
	)

	got := series.Returns()
	want := []float64{0.10, -0.05}
	if len(got) != len(want) {
		t.Fatalf("Returns() = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("Returns()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSeriesReturnsSkipsZeroTotals(t *testing.T) {
	reg := testRegistry(t)
	empty := valuedAt(t, bookOf(t, reg, Config{}), NewPriceTable(), date.MustParse("2025-03-05"))

	series := mustSeries(t,
		empty,
		pricedBook(t, EUR(700), date.MustParse("2025-03-06")), // 10000
		pricedBook(t, EUR(800), date.MustParse("2025-03-07")), // 11000
	)

	got := series.Returns()
	if len(got) != 1 {
		t.Fatalf("Returns() = %v, want the pair starting from zero dropped", got)
	}
	if math.Abs(got[0]-0.10) > 1e-12 {
		t.Errorf("Returns()[0] = %v, want 0.10", got[0])
	}
}

func TestSeriesRecordSameDayOverwrites(t *testing.T) {
	on := date.MustParse("2025-03-07")
	series := mustSeries(t, pricedBook(t, EUR(800), on))
	if err := series.Record(pricedBook(t, EUR(745), on)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if series.Len() != 1 {
		t.Fatalf("Len() = %d, want the same day recorded once", series.Len())
	}
	last, ok := series.Last()
	if !ok || !last.Total().Equal(EUR(10450)) {
		t.Errorf("Last() total = %s, want the later recording 10450", last.Total().Amount())
	}
}

func TestSeriesRejectsMixedBases(t *testing.T) {
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{},
		NewDeposit(date.MustParse("2025-01-05"), EUR(1000)),
	)
	on := date.MustParse("2025-03-07")
	table := NewPriceTable()
	if err := table.RecordRate("EUR", "USD", on, Q(1.25)); err != nil {
		t.Fatal(err)
	}

	inEUR, err := Valuate(context.Background(), b, table, "EUR", on)
	if err != nil {
		t.Fatal(err)
	}
	inUSD, err := Valuate(context.Background(), b, table, "USD", on)
	if err != nil {
		t.Fatal(err)
	}

	series := mustSeries(t, inEUR)
	err = series.Record(inUSD)
	if err == nil || !strings.Contains(err.Error(), "is in USD, series is in EUR") {
		t.Errorf("Record() error = %v, want the base mismatch reported", err)
	}
	if series.Base() != "EUR" {
		t.Errorf("Base() = %q after the rejected record, want EUR", series.Base())
	}
}

func TestEmptySeries(t *testing.T) {
	series := mustSeries(t)
	if series.Len() != 0 || series.Base() != "" {
		t.Errorf("empty series Len %d Base %q, want 0 and empty", series.Len(), series.Base())
	}
	if _, ok := series.Last(); ok {
		t.Error("Last() = ok on an empty series")
	}
	if got := series.Returns(); len(got) != 0 {
		t.Errorf("Returns() = %v, want none", got)
	}
}
