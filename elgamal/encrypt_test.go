package elgamal

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/deck"
	"github.com/vocdoni/gnark-mental-poker/field"
)

func newCurve(c *qt.C) *curve.Curve[fr.Element] {
	cv, err := curve.New(curve.Bandersnatch())
	c.Assert(err, qt.IsNil)
	return cv
}

func TestKeyGen(t *testing.T) {
	c := qt.New(t)
	cv := newCurve(c)

	keys, err := KeyGen(cv, rand.Reader, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(keys.SK.Sign() > 0, qt.IsTrue)
	c.Assert(keys.SK.Cmp(cv.Order()) < 0, qt.IsTrue)
	c.Assert(cv.Equal(keys.PK, cv.ScalarBaseMul(keys.SK)), qt.IsTrue)

	// small keys stay below the requested bound
	for i := 0; i < 32; i++ {
		keys, err := KeyGen(cv, rand.Reader, 8)
		c.Assert(err, qt.IsNil)
		c.Assert(keys.SK.Sign() > 0, qt.IsTrue)
		c.Assert(keys.SK.Cmp(big.NewInt(256)) < 0, qt.IsTrue)
	}

	_, err = KeyGen(cv, rand.Reader, -1)
	c.Assert(err, qt.IsNotNil)

	// an exhausted randomness source is reported
	_, err = KeyGen(cv, bytes.NewReader(nil), 0)
	c.Assert(err, qt.IsNotNil)

	_, err = NewKeyPair(cv, big.NewInt(0))
	c.Assert(err, qt.IsNotNil)
	_, err = NewKeyPair(cv, cv.Order())
	c.Assert(err, qt.IsNotNil)
}

func TestAggregate(t *testing.T) {
	c := qt.New(t)
	cv := newCurve(c)

	c.Assert(cv.IsNeutral(Aggregate(cv)), qt.IsTrue)

	sum := new(big.Int)
	var pks []curve.Point[fr.Element]
	for i := 0; i < 3; i++ {
		keys, err := KeyGen(cv, rand.Reader, 0)
		c.Assert(err, qt.IsNil)
		sum.Add(sum, keys.SK)
		pks = append(pks, keys.PK)
	}
	c.Assert(cv.Equal(Aggregate(cv, pks...), cv.ScalarBaseMul(sum)), qt.IsTrue)
}

func TestEncryptDecrypt(t *testing.T) {
	c := qt.New(t)
	cv := newCurve(c)
	keys, err := KeyGen(cv, rand.Reader, 0)
	c.Assert(err, qt.IsNil)

	for i := 0; i < 8; i++ {
		m := deck.CanonicalPoint(cv, i)
		card, r, err := Encrypt(cv, keys.PK, deck.Card[fr.Element]{C0: cv.Neutral(), C1: m}, rand.Reader)
		c.Assert(err, qt.IsNil)
		c.Assert(cv.Equal(card.C0, cv.ScalarBaseMul(r)), qt.IsTrue)
		c.Assert(cv.Equal(Decrypt(cv, card, keys.SK), m), qt.IsTrue)
	}

	// several layers under the same key collapse into one
	m := deck.CanonicalPoint(cv, 51)
	card := deck.Card[fr.Element]{C0: cv.Neutral(), C1: m}
	for i := 0; i < 4; i++ {
		card, _, err = Encrypt(cv, keys.PK, card, rand.Reader)
		c.Assert(err, qt.IsNil)
	}
	c.Assert(cv.Equal(Decrypt(cv, card, keys.SK), m), qt.IsTrue)

	// a wrong key does not recover the message
	other, err := KeyGen(cv, rand.Reader, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(cv.Equal(Decrypt(cv, card, other.SK), m), qt.IsFalse)
}

func TestEncryptDecryptBabyJubJub(t *testing.T) {
	c := qt.New(t)
	cv, err := curve.New(curve.BabyJubJub())
	c.Assert(err, qt.IsNil)
	keys, err := KeyGen(cv, rand.Reader, 0)
	c.Assert(err, qt.IsNil)

	m := deck.CanonicalPoint(cv, 7)
	card, _, err := Encrypt(cv, keys.PK, deck.Card[field.Int]{C0: cv.Neutral(), C1: m}, rand.Reader)
	c.Assert(err, qt.IsNil)
	c.Assert(cv.Equal(Decrypt(cv, card, keys.SK), m), qt.IsTrue)
}

func TestThresholdDecrypt(t *testing.T) {
	c := qt.New(t)
	cv := newCurve(c)

	var sks []*big.Int
	var pks []curve.Point[fr.Element]
	for i := 0; i < 4; i++ {
		keys, err := KeyGen(cv, rand.Reader, 0)
		c.Assert(err, qt.IsNil)
		sks = append(sks, keys.SK)
		pks = append(pks, keys.PK)
	}
	agg := Aggregate(cv, pks...)

	m := deck.CanonicalPoint(cv, 20)
	card, _, err := Encrypt(cv, agg, deck.Card[fr.Element]{C0: cv.Neutral(), C1: m}, rand.Reader)
	c.Assert(err, qt.IsNil)
	c.Assert(cv.Equal(ThresholdDecrypt(cv, card, sks), m), qt.IsTrue)

	// reversed order gives the same point
	rev := make([]*big.Int, len(sks))
	for i := range sks {
		rev[len(sks)-1-i] = sks[i]
	}
	c.Assert(cv.Equal(ThresholdDecrypt(cv, card, rev), m), qt.IsTrue)

	// a missing share leaves the card encrypted
	c.Assert(cv.Equal(ThresholdDecrypt(cv, card, sks[1:]), m), qt.IsFalse)

	// shares are computed against the untouched c0
	partial, share := PartialDecrypt(cv, card, sks[0])
	c.Assert(cv.Equal(partial.C0, card.C0), qt.IsTrue)
	c.Assert(cv.Equal(share, cv.ScalarMul(card.C0, sks[0])), qt.IsTrue)
}

func TestEncryptDeck(t *testing.T) {
	c := qt.New(t)
	cv := newCurve(c)
	ctx := context.Background()
	keys, err := KeyGen(cv, rand.Reader, 0)
	c.Assert(err, qt.IsNil)

	d, err := deck.Init(cv, 10)
	c.Assert(err, qt.IsNil)
	enc, rs, err := EncryptDeck(ctx, cv, keys.PK, d, rand.Reader, &Options{Workers: 3})
	c.Assert(err, qt.IsNil)
	c.Assert(rs, qt.HasLen, d.Len())
	c.Assert(enc.Validate(cv), qt.IsNil)

	// the batch matches the one by one encryption
	for i := 0; i < d.Len(); i++ {
		c.Assert(cv.Equal(enc.Card(i).C0, EncryptWith(cv, keys.PK, d.Card(i), rs[i]).C0), qt.IsTrue)
		c.Assert(cv.Equal(enc.Card(i).C1, EncryptWith(cv, keys.PK, d.Card(i), rs[i]).C1), qt.IsTrue)
	}

	points, err := DecryptDeck(ctx, cv, enc, keys.SK, nil)
	c.Assert(err, qt.IsNil)
	for i, p := range points {
		c.Assert(cv.Equal(p, deck.CanonicalPoint(cv, i)), qt.IsTrue)
	}

	_, err = EncryptDeckWith(ctx, cv, keys.PK, d, rs[1:], nil)
	c.Assert(err, qt.ErrorIs, deck.ErrInvalidSize)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = EncryptDeck(cancelled, cv, keys.PK, d, rand.Reader, nil)
	c.Assert(err, qt.ErrorIs, context.Canceled)
}

// TestFullDeckScenario encrypts a standard deck under an aggregated key of
// three players, compresses it and has every player strip their layer.
func TestFullDeckScenario(t *testing.T) {
	c := qt.New(t)
	cv := newCurve(c)
	ctx := context.Background()

	for _, bits := range []int{64, 0} {
		c.Run(fmt.Sprintf("keybits=%d", bits), func(c *qt.C) {
			var sks []*big.Int
			var pks []curve.Point[fr.Element]
			for i := 0; i < 3; i++ {
				keys, err := KeyGen(cv, rand.Reader, bits)
				c.Assert(err, qt.IsNil)
				if bits > 0 {
					c.Assert(keys.SK.BitLen() <= bits, qt.IsTrue)
				}
				sks = append(sks, keys.SK)
				pks = append(pks, keys.PK)
			}
			agg := Aggregate(cv, pks...)

			d, err := deck.Init(cv, deck.StandardSize)
			c.Assert(err, qt.IsNil)
			enc, _, err := EncryptDeck(ctx, cv, agg, d, rand.Reader, nil)
			c.Assert(err, qt.IsNil)

			cd, err := deck.Compress(cv, enc)
			c.Assert(err, qt.IsNil)
			dec, err := deck.Decompress(cv, cd)
			c.Assert(err, qt.IsNil)
			c.Assert(dec.Equal(cv, enc), qt.IsTrue)

			table, err := deck.NewTable(cv, deck.StandardSize)
			c.Assert(err, qt.IsNil)
			for i := 0; i < dec.Len(); i++ {
				idx, err := table.Lookup(ThresholdDecrypt(cv, dec.Card(i), sks))
				c.Assert(err, qt.IsNil)
				c.Assert(idx, qt.Equals, i)
			}
		})
	}
}
