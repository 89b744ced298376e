package circuits

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/deck"
	"github.com/vocdoni/gnark-mental-poker/shuffle"
)

// AssignShuffleEncrypt builds the full witness of a ShuffleEncrypt circuit.
// pk is given in affine form and decks in their six row projective form as
// they are, without normalizing.
func AssignShuffleEncrypt[E any](c *curve.Curve[E], pk curve.Point[E], a shuffle.Matrix, r []*big.Int,
	original, permuted deck.Deck[E],
) (*ShuffleEncrypt, error) {
	n := original.Len()
	if permuted.Len() != n || len(r) != n || len(a) != n {
		return nil, fmt.Errorf("%w: original %d, permuted %d, R %d, matrix %d",
			deck.ErrInvalidSize, n, permuted.Len(), len(r), len(a))
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	w := NewShuffleEncrypt(n)
	pkX, pkY := c.AffineBig(pk)
	w.PK = [2]frontend.Variable{pkX, pkY}
	for i := range a {
		for j, v := range a[i] {
			w.A[i][j] = v
		}
		w.R[i] = new(big.Int).Set(r[i])
	}
	f := c.Field()
	orig, perm := original.Rows(), permuted.Rows()
	for row := 0; row < deck.NumRows; row++ {
		for i := 0; i < n; i++ {
			w.Original[row][i] = f.ToBig(orig[row][i])
			w.Permuted[row][i] = f.ToBig(perm[row][i])
		}
	}
	return w, nil
}

// AssignDecrypt builds the full witness of a Decrypt circuit.
func AssignDecrypt[E any](c *curve.Curve[E], c0 curve.Point[E], sk *big.Int, pk, expected curve.Point[E]) *Decrypt {
	f := c.Field()
	pkX, pkY := c.AffineBig(pk)
	return &Decrypt{
		C0:       [3]frontend.Variable{f.ToBig(c0.X), f.ToBig(c0.Y), f.ToBig(c0.Z)},
		SK:       new(big.Int).Set(sk),
		PK:       [2]frontend.Variable{pkX, pkY},
		Expected: [3]frontend.Variable{f.ToBig(expected.X), f.ToBig(expected.Y), f.ToBig(expected.Z)},
	}
}

// AssignPermutationCheck builds the witness of a PermutationCheck circuit,
// computing the validity flag natively.
func AssignPermutationCheck(perm shuffle.Permutation) *PermutationCheck {
	w := NewPermutationCheck(len(perm))
	for i, v := range perm {
		w.Perm[i] = v
	}
	w.Valid = 0
	if perm.Validate() == nil {
		w.Valid = 1
	}
	return w
}
