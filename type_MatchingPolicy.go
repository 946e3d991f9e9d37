package portman

import (
	"fmt"
	"strings"
)

// MatchingPolicy selects which open lots a sell or transfer-out consumes.
// The tax-lot method changes realized gains, so it is chosen per invocation
// and never hardcoded.
type MatchingPolicy int

const (
	// FIFO consumes the oldest acquisition first. The default.
	FIFO MatchingPolicy = iota
	// LIFO consumes the newest acquisition first.
	LIFO
	// SpecificID consumes exactly the lots the transaction references.
	SpecificID
)

func (p MatchingPolicy) String() string {
	switch p {
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case SpecificID:
		return "specific"
	default:
		return "unknown"
	}
}

// ParseMatchingPolicy parses a policy name.
func ParseMatchingPolicy(s string) (MatchingPolicy, error) {
	switch strings.ToLower(s) {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	case "specific", "specific-id", "specificid":
		return SpecificID, nil
	default:
		return 0, fmt.Errorf("unknown matching policy: %q", s)
	}
}
