package elgamal

import (
	"fmt"
	"io"
	"math/big"

	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/utils"
)

// KeyPair holds a secret scalar and its public point PK = [SK]G. The secret
// key never leaves its owner; only PK is shared.
type KeyPair[E any] struct {
	SK *big.Int
	PK curve.Point[E]
}

// KeyGen samples a secret key uniformly from [1, min(2^numBits, order)) by
// rejection sampling, so no modular bias is introduced. A numBits of zero or
// above the order bit length selects the full subgroup order.
func KeyGen[E any](c *curve.Curve[E], rand io.Reader, numBits int) (*KeyPair[E], error) {
	if numBits < 0 {
		return nil, fmt.Errorf("elgamal: invalid key size %d", numBits)
	}
	bound := c.Order()
	if numBits > 0 && numBits < bound.BitLen() {
		bound = new(big.Int).Lsh(big.NewInt(1), uint(numBits))
	}
	sk, err := utils.RandomNonZeroBelow(rand, bound)
	if err != nil {
		return nil, fmt.Errorf("elgamal: key generation: %w", err)
	}
	return NewKeyPair(c, sk)
}

// NewKeyPair derives the public key of sk. The secret must be in [1, order).
func NewKeyPair[E any](c *curve.Curve[E], sk *big.Int) (*KeyPair[E], error) {
	if sk == nil || sk.Sign() <= 0 || sk.Cmp(c.Order()) >= 0 {
		return nil, fmt.Errorf("elgamal: secret key out of range")
	}
	return &KeyPair[E]{
		SK: new(big.Int).Set(sk),
		PK: c.Normalize(c.ScalarBaseMul(sk)),
	}, nil
}

// Aggregate returns the sum of the public keys. The aggregated key encrypts
// a deck such that every key holder must take part in its decryption. The
// empty sum is the neutral element.
func Aggregate[E any](c *curve.Curve[E], pks ...curve.Point[E]) curve.Point[E] {
	agg := c.Neutral()
	for _, pk := range pks {
		agg = c.Add(agg, pk)
	}
	return c.Normalize(agg)
}
