package deck

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/utils"
)

// Compressed is the wire form of a deck: the affine x-coordinates of the C0
// and C1 halves plus one packed selector integer per half.
type Compressed[E any] struct {
	X0, X1    []E
	Selectors [2]*big.Int
}

// Len returns the number of cards.
func (cd Compressed[E]) Len() int { return len(cd.X0) }

// Compress normalizes the deck to Z = 1 and compresses both halves.
func Compress[E any](c *curve.Curve[E], d Deck[E]) (Compressed[E], error) {
	if d.Len() > utils.MaxPackedBits {
		return Compressed[E]{}, fmt.Errorf("%w: %d cards exceed %d selector bits",
			ErrInvalidSize, d.Len(), utils.MaxPackedBits)
	}
	c0s := make([]curve.Point[E], d.Len())
	c1s := make([]curve.Point[E], d.Len())
	for i, card := range d.cards {
		c0s[i], c1s[i] = card.C0, card.C1
	}
	x0, _, s0, err := c.CompressPoints(c0s)
	if err != nil {
		return Compressed[E]{}, err
	}
	x1, _, s1, err := c.CompressPoints(c1s)
	if err != nil {
		return Compressed[E]{}, err
	}
	return Compressed[E]{X0: x0, X1: x1, Selectors: [2]*big.Int{s0, s1}}, nil
}

// Decompress rebuilds the deck, recovering each delta from its x-coordinate
// and checking every point is on the curve. The resulting points have Z = 1.
func Decompress[E any](c *curve.Curve[E], cd Compressed[E]) (Deck[E], error) {
	n := len(cd.X0)
	if len(cd.X1) != n {
		return Deck[E]{}, fmt.Errorf("%w: %d C0 and %d C1 x-coordinates", ErrInvalidSize, n, len(cd.X1))
	}
	if cd.Selectors[0] == nil || cd.Selectors[1] == nil {
		return Deck[E]{}, fmt.Errorf("%w: missing selector", curve.ErrMalformed)
	}
	c0s, err := decompressHalf(c, cd.X0, cd.Selectors[0])
	if err != nil {
		return Deck[E]{}, fmt.Errorf("C0: %w", err)
	}
	c1s, err := decompressHalf(c, cd.X1, cd.Selectors[1])
	if err != nil {
		return Deck[E]{}, fmt.Errorf("C1: %w", err)
	}
	cards := make([]Card[E], n)
	for i := range cards {
		cards[i] = Card[E]{C0: c0s[i], C1: c1s[i]}
	}
	return Deck[E]{cards: cards}, nil
}

func decompressHalf[E any](c *curve.Curve[E], xs []E, selector *big.Int) ([]curve.Point[E], error) {
	deltas := make([]E, len(xs))
	for i, x := range xs {
		delta, err := c.X2Delta(x)
		if err != nil {
			return nil, fmt.Errorf("x-coordinate %d: %w", i, err)
		}
		deltas[i] = delta
	}
	return c.DecompressPoints(xs, deltas, selector)
}
