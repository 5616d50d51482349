// Package money converts between decimal currency strings and exact
// integer minor units (cents). All balance arithmetic and comparisons in
// the service happen on minor units; floats exist only at the API boundary.
package money

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// scale is the number of fractional digits carried by the system.
const scale = 2

// ToMinorUnits parses a decimal string into minor units. The fractional
// part is padded or truncated to exactly two digits; excess digits are
// discarded, never rounded ("10.999" -> 1099). Blank input yields zero.
func ToMinorUnits(value string) (*big.Int, error) {
	normalized := strings.TrimSpace(value)
	if normalized == "" {
		return big.NewInt(0), nil
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", value, err)
	}

	return d.Truncate(scale).Shift(scale).BigInt(), nil
}

// FromMinorUnits renders minor units as a canonical decimal string with
// exactly two fractional digits, preserving sign.
func FromMinorUnits(minor *big.Int) string {
	return decimal.NewFromBigInt(minor, -scale).StringFixed(scale)
}

// ToDisplay converts minor units to a float for API responses. Precision
// loss beyond two decimals is acceptable only at this boundary.
func ToDisplay(minor *big.Int) float64 {
	f, _ := decimal.NewFromBigInt(minor, -scale).Float64()
	return f
}

// Int64MinorUnits narrows minor units to int64 for storage. Amounts
// outside the int64 range are rejected rather than silently wrapped.
func Int64MinorUnits(minor *big.Int) (int64, error) {
	if !minor.IsInt64() {
		return 0, fmt.Errorf("amount %s out of range", FromMinorUnits(minor))
	}
	return minor.Int64(), nil
}
