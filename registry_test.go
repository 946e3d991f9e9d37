package portman

import (
	"errors"
	"slices"
	"testing"
)

func TestParseID(t *testing.T) {
	valid := []string{"AAPL.XNAS", "MC.XPAR", "BRK-B.XNYS", "X.ABCD", "4AB.XETR"}
	for _, s := range valid {
		if _, err := ParseID(s); err != nil {
			t.Errorf("ParseID(%q) error = %v, want nil", s, err)
		}
	}

	invalid := []string{"", "AAPL", "aapl.XNAS", "AAPL.xnas", "AAPL.XN", "AAPL.XNASQ", ".XNAS", "AAPL.", "WAYTOOLONGSYMBL.XNAS", "AA PL.XNAS"}
	for _, s := range invalid {
		if id, err := ParseID(s); err == nil {
			t.Errorf("ParseID(%q) = %s, want error", s, id)
		}
	}
}

func TestIDIsPair(t *testing.T) {
	cases := []struct {
		id   ID
		want bool
	}{
		{"EURUSD", true},
		{"USDJPY", true},
		{Pair("CHF", "EUR"), true},
		{"AAPL.XNAS", false},
		{"EURUS", false},
		{"EURUSDX", false},
		{"eurusd", false},
	}
	for _, tc := range cases {
		if got := tc.id.IsPair(); got != tc.want {
			t.Errorf("%q.IsPair() = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestIDParts(t *testing.T) {
	id := ID("AAPL.XNAS")
	if got := id.Symbol(); got != "AAPL" {
		t.Errorf("Symbol() = %q, want %q", got, "AAPL")
	}
	if got := id.Venue(); got != "XNAS" {
		t.Errorf("Venue() = %q, want %q", got, "XNAS")
	}
}

func TestNewInstrumentRejectsBadRecords(t *testing.T) {
	cases := []struct {
		name string
		id   ID
		cur  string
		inc  Quantity
	}{
		{"invalid id", "AAPL", "USD", Q(0)},
		{"invalid currency", "AAPL.XNAS", "dollars", Q(0)},
		{"lowercase currency", "AAPL.XNAS", "usd", Q(0)},
		{"negative increment", "AAPL.XNAS", "USD", Q(-1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if inst, err := NewInstrument(tc.id, Equity, tc.cur, tc.inc); err == nil {
				t.Errorf("NewInstrument() = %v, want error", inst)
			}
		})
	}
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()
	apple, err := NewInstrument("AAPL.XNAS", Equity, "USD", Q(0))
	if err != nil {
		t.Fatalf("NewInstrument() error = %v", err)
	}
	if err := reg.Register(apple); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Registering the identical record again is a no-op.
	same, _ := NewInstrument("AAPL.XNAS", Equity, "USD", Q(0))
	if err := reg.Register(same); err != nil {
		t.Errorf("Register(identical) error = %v, want nil", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}

	// A conflicting record is refused and the original survives.
	conflict, _ := NewInstrument("AAPL.XNAS", Equity, "EUR", Q(0))
	if err := reg.Register(conflict); err == nil {
		t.Errorf("Register(conflicting) = nil, want error")
	}
	inst, err := reg.Resolve("AAPL.XNAS")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if inst.Currency() != "USD" {
		t.Errorf("Currency() = %q after conflicting register, want %q", inst.Currency(), "USD")
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Resolve("MSFT.XNAS"); !errors.Is(err, ErrUnknownInstrument) {
		t.Errorf("Resolve(unknown) error = %v, want ErrUnknownInstrument", err)
	}
}

func TestRegistryIteratesInIDOrder(t *testing.T) {
	reg := testRegistry(t)
	var got []ID
	for inst := range reg.Instruments() {
		got = append(got, inst.ID())
	}
	want := []ID{aapl, iwda, mc, oat}
	if !slices.Equal(got, want) {
		t.Errorf("Instruments() order = %v, want %v", got, want)
	}
}
