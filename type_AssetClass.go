package portman

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AssetClass buckets instruments for allocation and rebalancing.
type AssetClass int

const (
	Equity AssetClass = iota
	Bond
	Crypto
	ETF
	Cash
	Other
)

func (c AssetClass) String() string {
	switch c {
	case Equity:
		return "equity"
	case Bond:
		return "bond"
	case Crypto:
		return "crypto"
	case ETF:
		return "etf"
	case Cash:
		return "cash"
	case Other:
		return "other"
	default:
		return "unknown"
	}
}

// ParseAssetClass parses an asset class name.
func ParseAssetClass(s string) (AssetClass, error) {
	switch strings.ToLower(s) {
	case "equity", "stock":
		return Equity, nil
	case "bond":
		return Bond, nil
	case "crypto":
		return Crypto, nil
	case "etf", "fund":
		return ETF, nil
	case "cash":
		return Cash, nil
	case "other":
		return Other, nil
	default:
		return 0, fmt.Errorf("unknown asset class: %q", s)
	}
}

// MarshalJSON encodes the class by name.
func (c AssetClass) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

// UnmarshalJSON decodes the class from its name.
func (c *AssetClass) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := ParseAssetClass(s)
	if err != nil {
		return err
	}
	*c = p
	return nil
}
