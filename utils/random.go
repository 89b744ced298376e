package utils

import (
	"fmt"
	"io"
	"math/big"
)

const maxIterations = 255

// RandomBelow samples an integer uniformly from [0, n) by rejection
// sampling: candidates of n's bit length are drawn from rand and discarded
// while they are not below n.
func RandomBelow(rand io.Reader, n *big.Int) (*big.Int, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, fmt.Errorf("random: invalid bound %v", n)
	}
	bitLen := n.BitLen()
	buf := make([]byte, (bitLen+7)/8)
	// mask the excess bits of the top byte so at least half of the
	// candidates are accepted
	excess := uint(len(buf)*8 - bitLen)
	out := new(big.Int)
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err != nil {
			return nil, fmt.Errorf("random: %w", err)
		}
		buf[0] &= byte(0xff >> excess)
		out.SetBytes(buf)
		if out.Cmp(n) < 0 {
			return out, nil
		}
	}
	return nil, fmt.Errorf("random: failed to sample after %d iterations", maxIterations)
}

// RandomNonZeroBelow samples uniformly from [1, n).
func RandomNonZeroBelow(rand io.Reader, n *big.Int) (*big.Int, error) {
	for i := 0; i < maxIterations; i++ {
		v, err := RandomBelow(rand, n)
		if err != nil {
			return nil, err
		}
		if v.Sign() != 0 {
			return v, nil
		}
	}
	return nil, fmt.Errorf("random: failed to sample a non zero value after %d iterations", maxIterations)
}
