package portman

import "fmt"

// Percent is a display-only ratio in percent points. Exactness does not
// matter here, so it is a plain float; money never flows through it.
type Percent float64

// Equal compares two percentages with display precision.
func (p Percent) Equal(q Percent) bool {
	const precision = 0.0001
	diff := float64(p - q)
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

// SignedString is String with an explicit sign; zero renders as "-".
func (p Percent) SignedString() string {
	s := fmt.Sprintf("%+.2f%%", float64(p))
	if s == "+0.00%" || s == "-0.00%" {
		return "-"
	}
	return s
}
