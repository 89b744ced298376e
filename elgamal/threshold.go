package elgamal

import (
	"math/big"

	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/deck"
)

// DecryptionShare returns [sk]c0, the contribution of one key holder to the
// decryption of a card encrypted under an aggregated key.
func DecryptionShare[E any](c *curve.Curve[E], card deck.Card[E], sk *big.Int) curve.Point[E] {
	return c.Normalize(c.ScalarMul(card.C0, sk))
}

// ApplyShare strips a decryption share from c1. c0 is left untouched so the
// remaining key holders compute their shares against the same point.
func ApplyShare[E any](c *curve.Curve[E], card deck.Card[E], share curve.Point[E]) deck.Card[E] {
	return deck.Card[E]{C0: card.C0, C1: c.Normalize(c.Sub(card.C1, share))}
}

// PartialDecrypt removes the layer of one key holder from the card and
// returns the partially decrypted card together with the share applied.
func PartialDecrypt[E any](c *curve.Curve[E], card deck.Card[E], sk *big.Int) (deck.Card[E], curve.Point[E]) {
	share := DecryptionShare(c, card, sk)
	return ApplyShare(c, card, share), share
}

// ThresholdDecrypt applies the secret keys in order, as the key holders do
// one after the other, and returns the recovered point. Since every share is
// computed against the same c0, the result does not depend on the order, but
// protocol drivers apply shares in key aggregation order.
func ThresholdDecrypt[E any](c *curve.Curve[E], card deck.Card[E], sks []*big.Int) curve.Point[E] {
	for _, sk := range sks {
		card, _ = PartialDecrypt(c, card, sk)
	}
	return card.C1
}
