package utils

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Yocto scale constants. One whole token is 10^24 yocto; each byte of
// contract storage reserves 10^19 yocto.
var (
	YoctoPerToken = decimal.New(1, 24)
	YoctoPerByte  = decimal.New(1, 19)
)

// ParseYocto parses a yocto-scale decimal string as returned by the RPC.
// An empty string parses as zero.
func ParseYocto(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid yocto amount %q: %w", s, err)
	}
	return d, nil
}

// YoctoToToken converts a yocto-scale amount to whole-token scale.
// Shift is exact; Div would round at DivisionPrecision and drop the low
// yocto digits.
func YoctoToToken(yocto decimal.Decimal) decimal.Decimal {
	return yocto.Shift(-24)
}

// TokenToYocto converts a whole-token amount back to yocto scale.
func TokenToYocto(tokens decimal.Decimal) decimal.Decimal {
	return tokens.Mul(YoctoPerToken)
}

// ReadableAmount converts a raw smallest-unit amount string into a
// whole-token decimal using the token's own decimals.
func ReadableAmount(raw string, decimals int32) (decimal.Decimal, error) {
	d, err := ParseYocto(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Shift(-decimals), nil
}

// ClampZero returns d, or zero when d is negative.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
