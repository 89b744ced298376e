package utils

import (
	"fmt"
	"math/big"
)

// MaxPackedBits is the number of selector bits that fit in a single field
// element of a ~255 bit field without reduction.
const MaxPackedBits = 254

// Bits2Num packs bits into an integer, bits[0] being the least significant
// bit.
func Bits2Num(bits []bool) (*big.Int, error) {
	if len(bits) > MaxPackedBits {
		return nil, fmt.Errorf("bits2num: %d bits exceed the limit of %d", len(bits), MaxPackedBits)
	}
	n := new(big.Int)
	for i, b := range bits {
		if b {
			n.SetBit(n, i, 1)
		}
	}
	return n, nil
}

// Num2Bits unpacks the n least significant bits of v. It fails if v is
// negative or has any bit set at position n or above, since such a value
// cannot come from Bits2Num over n bits.
func Num2Bits(v *big.Int, n int) ([]bool, error) {
	if v == nil || v.Sign() < 0 {
		return nil, fmt.Errorf("num2bits: invalid value %v", v)
	}
	if n < 0 || n > MaxPackedBits {
		return nil, fmt.Errorf("num2bits: invalid bit count %d", n)
	}
	if v.BitLen() > n {
		return nil, fmt.Errorf("num2bits: value has %d bits, expected at most %d", v.BitLen(), n)
	}
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = v.Bit(i) == 1
	}
	return bits, nil
}
