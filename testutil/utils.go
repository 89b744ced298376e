// Package testutil holds helpers shared by the tests of the packages that
// build on the deck and ElGamal layers.
package testutil

import (
	"context"
	"crypto/rand"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/deck"
	"github.com/vocdoni/gnark-mental-poker/elgamal"
)

// Bandersnatch returns the default curve.
func Bandersnatch(c *qt.C) *curve.Curve[fr.Element] {
	cv, err := curve.New(curve.Bandersnatch())
	c.Assert(err, qt.IsNil)
	return cv
}

// KeyPairs generates n full width key pairs and returns them together with
// their aggregated public key.
func KeyPairs(c *qt.C, cv *curve.Curve[fr.Element], n int) ([]*elgamal.KeyPair[fr.Element], curve.Point[fr.Element]) {
	keys := make([]*elgamal.KeyPair[fr.Element], n)
	pks := make([]curve.Point[fr.Element], n)
	for i := range keys {
		kp, err := elgamal.KeyGen(cv, rand.Reader, 0)
		c.Assert(err, qt.IsNil)
		keys[i], pks[i] = kp, kp.PK
	}
	return keys, elgamal.Aggregate(cv, pks...)
}

// EncryptedDeck returns a fresh deck of n cards encrypted once under pk.
func EncryptedDeck(c *qt.C, cv *curve.Curve[fr.Element], pk curve.Point[fr.Element], n int) deck.Deck[fr.Element] {
	d, err := deck.Init(cv, n)
	c.Assert(err, qt.IsNil)
	enc, _, err := elgamal.EncryptDeck(context.Background(), cv, pk, d, rand.Reader, nil)
	c.Assert(err, qt.IsNil)
	return enc
}

// RandomDeck returns n cards made of random subgroup points, which are not
// the encryption of any card.
func RandomDeck(c *qt.C, cv *curve.Curve[fr.Element], n int) deck.Deck[fr.Element] {
	cards := make([]deck.Card[fr.Element], n)
	for i := range cards {
		p0, err := cv.GeneratePoint(rand.Reader)
		c.Assert(err, qt.IsNil)
		p1, err := cv.GeneratePoint(rand.Reader)
		c.Assert(err, qt.IsNil)
		cards[i] = deck.Card[fr.Element]{C0: p0, C1: p1}
	}
	return deck.New(cards)
}
