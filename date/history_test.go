package date

import "testing"

func TestHistoryAppendKeepsOrder(t *testing.T) {
	var h History[float64]
	h.Append(MustParse("2025-03-01"), 3)
	h.Append(MustParse("2025-01-01"), 1)
	h.Append(MustParse("2025-02-01"), 2)

	var got []float64
	for _, v := range h.Values() {
		got = append(got, v)
	}
	want := []float64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("values[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestHistoryAppendOverwrites(t *testing.T) {
	var h History[string]
	on := MustParse("2025-06-15")
	h.Append(on, "old").Append(on, "new")
	if h.Len() != 1 {
		t.Fatalf("Len = %d, want 1", h.Len())
	}
	if v, ok := h.Get(on); !ok || v != "new" {
		t.Errorf("Get(%s) = %q, %v; want %q, true", on, v, ok, "new")
	}
}

func TestHistoryValueAsOf(t *testing.T) {
	var h History[float64]
	h.Append(MustParse("2025-01-10"), 10)
	h.Append(MustParse("2025-01-20"), 20)

	tests := []struct {
		on   string
		want float64
		ok   bool
	}{
		{"2025-01-09", 0, false},
		{"2025-01-10", 10, true},
		{"2025-01-15", 10, true},
		{"2025-01-20", 20, true},
		{"2025-02-01", 20, true},
	}
	for _, tc := range tests {
		t.Run(tc.on, func(t *testing.T) {
			got, ok := h.ValueAsOf(MustParse(tc.on))
			if ok != tc.ok || got != tc.want {
				t.Errorf("ValueAsOf(%s) = %v, %v; want %v, %v", tc.on, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestHistoryLatestEmpty(t *testing.T) {
	var h History[float64]
	if on, v := h.Latest(); !on.IsZero() || v != 0 {
		t.Errorf("Latest() on empty = %v, %v; want zero values", on, v)
	}
}
