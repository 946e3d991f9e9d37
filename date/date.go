// Package date provides day-granularity dates, calendar periods, and a
// generic time-indexed series used across the analytics engine.
package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// Format is the canonical string representation of a Date.
const Format = "2006-01-02"

// readFormat accepts single-digit month and day on input.
const readFormat = "2006-1-2"

// Date represents a calendar day. The zero value is the zero time's day and
// is treated as "unset".
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
// Out-of-range values are normalized the way time.Date does.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// Parse parses a Date from a string. It is lenient and accepts forms like
// "2025-7-1" as well as the canonical "2025-07-01".
func Parse(s string) (Date, error) {
	t, err := time.Parse(readFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want format %q: %w", s, Format, err)
	}
	return New(t.Date()), nil
}

// MustParse is like Parse but panics on error. For tests and literals.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// time returns the canonical time.Time for the day (midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// Add returns the date shifted by the given number of days.
func (d Date) Add(days int) Date { return New(d.y, d.m, d.d+days) }

// AddMonths returns the date shifted by the given number of months,
// normalized the way time.Date normalizes overflow.
func (d Date) AddMonths(months int) Date { return New(d.y, d.m+time.Month(months), d.d) }

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }

// After reports whether d is strictly after x.
func (d Date) After(x Date) bool { return d.Compare(x) > 0 }

// Compare orders two dates chronologically: -1 if d is earlier than x,
// 0 if equal, +1 if later.
func (d Date) Compare(x Date) int {
	switch {
	case d.y != x.y:
		return cmp(d.y, x.y)
	case d.m != x.m:
		return cmp(int(d.m), int(x.m))
	default:
		return cmp(d.d, x.d)
	}
}

func cmp(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// StartOf returns the first day of the period containing d. Weeks start on
// Monday.
func (d Date) StartOf(p Period) Date {
	switch p {
	case Daily:
		return d
	case Weekly:
		off := (int(d.Weekday()) + 6) % 7
		return d.Add(-off)
	case Monthly:
		return New(d.y, d.m, 1)
	case Quarterly:
		q := (int(d.m) - 1) / 3
		return New(d.y, time.Month(q*3+1), 1)
	case Yearly:
		return New(d.y, time.January, 1)
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// EndOf returns the last day of the period containing d.
func (d Date) EndOf(p Period) Date {
	switch p {
	case Daily:
		return d
	case Weekly:
		return d.StartOf(Weekly).Add(6)
	case Monthly:
		return New(d.y, d.m+1, 0)
	case Quarterly:
		return d.StartOf(Quarterly).AddMonths(3).Add(-1)
	case Yearly:
		return New(d.y, time.December, 31)
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// String formats the date in its canonical form.
func (d Date) String() string { return d.time().Format(Format) }

// MarshalJSON encodes the date as a canonical JSON string.
func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// UnmarshalJSON decodes a date from a JSON string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := Parse(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}

var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
