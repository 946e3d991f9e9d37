package date

import (
	"strings"
	"testing"
)

func TestRangeContains(t *testing.T) {
	r := Range{From: MustParse("2025-01-01"), To: MustParse("2025-01-31")}
	if !r.Contains(r.From) || !r.Contains(r.To) {
		t.Error("range must contain its own boundaries")
	}
	if r.Contains(MustParse("2025-02-01")) {
		t.Error("range must not contain days after To")
	}
}

func TestRangeEnds(t *testing.T) {
	r := Range{From: MustParse("2025-01-15"), To: MustParse("2025-04-10")}
	var got []string
	for d := range r.Ends(Monthly) {
		got = append(got, d.String())
	}
	want := "2025-01-31 2025-02-28 2025-03-31 2025-04-10"
	if s := strings.Join(got, " "); s != want {
		t.Errorf("Ends(Monthly) = %q, want %q", s, want)
	}
}

func TestRangeEndsOnBoundary(t *testing.T) {
	// When To is itself a period end it must be yielded exactly once.
	r := Range{From: MustParse("2025-01-01"), To: MustParse("2025-02-28")}
	var got []string
	for d := range r.Ends(Monthly) {
		got = append(got, d.String())
	}
	want := "2025-01-31 2025-02-28"
	if s := strings.Join(got, " "); s != want {
		t.Errorf("Ends(Monthly) = %q, want %q", s, want)
	}
}

func TestParsePeriod(t *testing.T) {
	for _, s := range []string{"daily", "week", "Monthly", "quarter", "YEAR"} {
		if _, err := ParsePeriod(s); err != nil {
			t.Errorf("ParsePeriod(%q): %v", s, err)
		}
	}
	if _, err := ParsePeriod("fortnight"); err == nil {
		t.Error("ParsePeriod(fortnight) should fail")
	}
}
