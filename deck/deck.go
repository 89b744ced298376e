// deck package models a deck of ElGamal encrypted cards. A Deck is an
// immutable value: every operation returns a new deck, which keeps the before
// and after states of a shuffle or decryption step available for building
// proof inputs.
package deck

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/vocdoni/gnark-mental-poker/curve"
)

// StandardSize is the number of cards of a standard deck.
const StandardSize = 52

// NumRows is the number of coordinate rows of the struct-of-arrays layout:
// C0.X, C0.Y, C0.Z, C1.X, C1.Y, C1.Z.
const NumRows = 6

var (
	// ErrInvalidSize is returned when a deck size or array length does not
	// match the declared deck size.
	ErrInvalidSize = errors.New("deck: invalid size")
	// ErrInvalidCard is returned when a card component is not a valid curve
	// point.
	ErrInvalidCard = errors.New("deck: invalid card")
)

// Card is an ElGamal ciphertext pair. C0 carries the accumulated randomness
// commitment and C1 carries the card point blinded by the public key.
type Card[E any] struct {
	C0, C1 curve.Point[E]
}

// Deck is an ordered, immutable sequence of cards.
type Deck[E any] struct {
	cards []Card[E]
}

// New returns a deck holding a copy of cards.
func New[E any](cards []Card[E]) Deck[E] {
	return Deck[E]{cards: append([]Card[E](nil), cards...)}
}

// CanonicalPoint returns the public point of card index i, [i+1]·G.
func CanonicalPoint[E any](c *curve.Curve[E], i int) curve.Point[E] {
	return c.ScalarBaseMul(big.NewInt(int64(i) + 1))
}

// Init builds the unencrypted deck of n cards: C0 is the neutral element and
// C1 the canonical point of the card.
func Init[E any](c *curve.Curve[E], n int) (Deck[E], error) {
	if n <= 0 {
		return Deck[E]{}, fmt.Errorf("%w: %d cards", ErrInvalidSize, n)
	}
	cards := make([]Card[E], n)
	// canonical points are consecutive multiples of G
	p := c.Neutral()
	for i := range cards {
		p = c.Add(p, c.Base())
		cards[i] = Card[E]{C0: c.Neutral(), C1: c.Normalize(p)}
	}
	return Deck[E]{cards: cards}, nil
}

// Len returns the number of cards.
func (d Deck[E]) Len() int { return len(d.cards) }

// Card returns the card at position i.
func (d Deck[E]) Card(i int) Card[E] { return d.cards[i] }

// Cards returns a copy of the cards.
func (d Deck[E]) Cards() []Card[E] { return append([]Card[E](nil), d.cards...) }

// With returns a copy of the deck where the card at position i is replaced.
func (d Deck[E]) With(i int, card Card[E]) Deck[E] {
	nd := d.Cards()
	nd[i] = card
	return Deck[E]{cards: nd}
}

// Validate checks every component of every card is a curve point.
func (d Deck[E]) Validate(c *curve.Curve[E]) error {
	for i, card := range d.cards {
		if !c.IsOnCurvePoint(card.C0) || !c.IsOnCurvePoint(card.C1) {
			return fmt.Errorf("%w: position %d", ErrInvalidCard, i)
		}
	}
	return nil
}

// Normalize returns the deck with every point scaled to Z = 1.
func (d Deck[E]) Normalize(c *curve.Curve[E]) Deck[E] {
	out := make([]Card[E], len(d.cards))
	for i, card := range d.cards {
		out[i] = Card[E]{C0: c.Normalize(card.C0), C1: c.Normalize(card.C1)}
	}
	return Deck[E]{cards: out}
}

// Equal compares two decks card by card in affine terms.
func (d Deck[E]) Equal(c *curve.Curve[E], o Deck[E]) bool {
	if len(d.cards) != len(o.cards) {
		return false
	}
	for i := range d.cards {
		if !c.Equal(d.cards[i].C0, o.cards[i].C0) || !c.Equal(d.cards[i].C1, o.cards[i].C1) {
			return false
		}
	}
	return true
}

// Rows transposes the deck into the six coordinate rows expected by the
// circuits.
func (d Deck[E]) Rows() [NumRows][]E {
	var rows [NumRows][]E
	for r := range rows {
		rows[r] = make([]E, len(d.cards))
	}
	for i, card := range d.cards {
		rows[0][i], rows[1][i], rows[2][i] = card.C0.X, card.C0.Y, card.C0.Z
		rows[3][i], rows[4][i], rows[5][i] = card.C1.X, card.C1.Y, card.C1.Z
	}
	return rows
}

// FromRows builds a deck of n cards from the struct-of-arrays layout. Every
// row must hold exactly n values.
func FromRows[E any](rows [NumRows][]E, n int) (Deck[E], error) {
	for r, row := range rows {
		if len(row) != n {
			return Deck[E]{}, fmt.Errorf("%w: row %d has %d values, expected %d", ErrInvalidSize, r, len(row), n)
		}
	}
	cards := make([]Card[E], n)
	for i := range cards {
		cards[i] = Card[E]{
			C0: curve.Point[E]{X: rows[0][i], Y: rows[1][i], Z: rows[2][i]},
			C1: curve.Point[E]{X: rows[3][i], Y: rows[4][i], Z: rows[5][i]},
		}
	}
	return Deck[E]{cards: cards}, nil
}
