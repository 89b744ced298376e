package utils

import (
	"fmt"
	"math/big"
)

// BigToDecimal returns the decimal string of v, the encoding every circuit
// input uses.
func BigToDecimal(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// DecimalToBig parses a decimal string and checks it is in [0, modulus).
func DecimalToBig(s string, modulus *big.Int) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal string %q", s)
	}
	if v.Sign() < 0 || (modulus != nil && v.Cmp(modulus) >= 0) {
		return nil, fmt.Errorf("value %s out of range", s)
	}
	return v, nil
}

// DecimalsToBig parses a list of decimal strings with an exact expected
// length.
func DecimalsToBig(ss []string, n int, modulus *big.Int) ([]*big.Int, error) {
	if len(ss) != n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(ss))
	}
	out := make([]*big.Int, n)
	for i, s := range ss {
		v, err := DecimalToBig(s, modulus)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// BigsToDecimal encodes a list of integers as decimal strings.
func BigsToDecimal(vs []*big.Int) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = BigToDecimal(v)
	}
	return out
}
