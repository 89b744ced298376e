package elgamal

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"runtime"

	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/deck"
	"github.com/vocdoni/gnark-mental-poker/utils"
	"golang.org/x/sync/errgroup"
)

// RandomScalar samples an encryption randomness uniformly from [1, order).
// Every encryption and re-encryption uses the full subgroup order width.
func RandomScalar[E any](c *curve.Curve[E], rand io.Reader) (*big.Int, error) {
	return utils.RandomNonZeroBelow(rand, c.Order())
}

// EncryptWith encrypts msg under pk with the given randomness r:
//
//	c0 = [r]G + ic0
//	c1 = [r]pk + ic1
//
// The message is itself a ciphertext pair: for a fresh card ic0 is the
// neutral element, for a re-encryption ic0 accumulates the previous layers
// of randomness and ic1 keeps carrying the card point.
func EncryptWith[E any](c *curve.Curve[E], pk curve.Point[E], msg deck.Card[E], r *big.Int) deck.Card[E] {
	return Add(c, msg, deck.Card[E]{C0: c.ScalarBaseMul(r), C1: c.ScalarMul(pk, r)})
}

// Encrypt samples a fresh randomness and encrypts msg under pk. The
// randomness is returned so it can be used as a private proof input.
func Encrypt[E any](c *curve.Curve[E], pk curve.Point[E], msg deck.Card[E], rand io.Reader) (deck.Card[E], *big.Int, error) {
	r, err := RandomScalar(c, rand)
	if err != nil {
		return deck.Card[E]{}, nil, err
	}
	return EncryptWith(c, pk, msg, r), r, nil
}

// Add returns the component wise sum of two ciphertexts. The sum of
// encryptions of p and q under the same key is an encryption of p + q.
func Add[E any](c *curve.Curve[E], x, y deck.Card[E]) deck.Card[E] {
	return deck.Card[E]{
		C0: c.Normalize(c.Add(x.C0, y.C0)),
		C1: c.Normalize(c.Add(x.C1, y.C1)),
	}
}

// Decrypt removes the layer of sk from the card, computing
//
//	c1 - [sk]c0 = c1 + [order - sk]c0
//
// For a card encrypted (possibly several times) only under pk = [sk]G from
// the initial state, the result is the card point.
func Decrypt[E any](c *curve.Curve[E], card deck.Card[E], sk *big.Int) curve.Point[E] {
	negSK := new(big.Int).Sub(c.Order(), new(big.Int).Mod(sk, c.Order()))
	return c.Normalize(c.Add(card.C1, c.ScalarMul(card.C0, negSK)))
}

// Options tunes the batched deck operations.
type Options struct {
	// Workers bounds the number of goroutines used for the scalar
	// multiplications. Zero means runtime.NumCPU().
	Workers int
}

func (o *Options) workers() int {
	if o == nil || o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

// EncryptDeck encrypts every card of d under pk, in index order, returning
// the encrypted deck and the randomness used for each position. The
// randomness is drawn sequentially from rand; only the curve arithmetic runs
// in parallel.
func EncryptDeck[E any](ctx context.Context, c *curve.Curve[E], pk curve.Point[E], d deck.Deck[E],
	rand io.Reader, opts *Options,
) (deck.Deck[E], []*big.Int, error) {
	rs := make([]*big.Int, d.Len())
	for i := range rs {
		r, err := RandomScalar(c, rand)
		if err != nil {
			return deck.Deck[E]{}, nil, fmt.Errorf("elgamal: randomness %d: %w", i, err)
		}
		rs[i] = r
	}
	out, err := EncryptDeckWith(ctx, c, pk, d, rs, opts)
	if err != nil {
		return deck.Deck[E]{}, nil, err
	}
	return out, rs, nil
}

// EncryptDeckWith encrypts every card of d under pk with the provided
// randomness, one value per card.
func EncryptDeckWith[E any](ctx context.Context, c *curve.Curve[E], pk curve.Point[E], d deck.Deck[E],
	rs []*big.Int, opts *Options,
) (deck.Deck[E], error) {
	if len(rs) != d.Len() {
		return deck.Deck[E]{}, fmt.Errorf("%w: %d randomness values for %d cards", deck.ErrInvalidSize, len(rs), d.Len())
	}
	cards := make([]deck.Card[E], d.Len())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i := range cards {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cards[i] = EncryptWith(c, pk, d.Card(i), rs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return deck.Deck[E]{}, err
	}
	return deck.New(cards), nil
}

// DecryptDeck decrypts every card of d with sk.
func DecryptDeck[E any](ctx context.Context, c *curve.Curve[E], d deck.Deck[E], sk *big.Int, opts *Options) ([]curve.Point[E], error) {
	points := make([]curve.Point[E], d.Len())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i := range points {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			points[i] = Decrypt(c, d.Card(i), sk)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}
