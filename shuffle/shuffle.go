package shuffle

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/deck"
	"github.com/vocdoni/gnark-mental-poker/elgamal"
)

// Result is the outcome of one shuffle step. Permutation and R are the
// private inputs of the proof that Deck is a shuffle of the input deck and
// must not be shared.
type Result[E any] struct {
	Deck        deck.Deck[E]
	Permutation Permutation
	// R[i] is the randomness of the new layer on output card i.
	R []*big.Int
}

// Shuffle samples a permutation, reorders d with it and re-encrypts every
// card under pk with fresh randomness. Which plaintext each card decrypts to
// is unchanged; only the position moves.
func Shuffle[E any](ctx context.Context, c *curve.Curve[E], pk curve.Point[E], d deck.Deck[E],
	rand io.Reader, opts *elgamal.Options,
) (*Result[E], error) {
	perm, err := Generate(rand, d.Len())
	if err != nil {
		return nil, err
	}
	permuted, err := Apply(d, perm)
	if err != nil {
		return nil, err
	}
	out, rs, err := elgamal.EncryptDeck(ctx, c, pk, permuted, rand, opts)
	if err != nil {
		return nil, fmt.Errorf("shuffle: re-encryption: %w", err)
	}
	return &Result[E]{Deck: out, Permutation: perm, R: rs}, nil
}

// ShuffleWith is the deterministic form of Shuffle with a given permutation
// and randomness.
func ShuffleWith[E any](ctx context.Context, c *curve.Curve[E], pk curve.Point[E], d deck.Deck[E],
	perm Permutation, rs []*big.Int, opts *elgamal.Options,
) (deck.Deck[E], error) {
	permuted, err := Apply(d, perm)
	if err != nil {
		return deck.Deck[E]{}, err
	}
	return elgamal.EncryptDeckWith(ctx, c, pk, permuted, rs, opts)
}
