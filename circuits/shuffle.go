package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/vocdoni/gnark-mental-poker/deck"
	"github.com/vocdoni/gnark-mental-poker/elgamal"
	"github.com/vocdoni/gnark-mental-poker/shuffle"
)

// ShuffleEncrypt proves that Permuted is Original with its cards reordered
// by the secret permutation matrix A and re-encrypted under PK with the
// secret randomness R:
//
//	permuted[i] = original[π(i)] + ([R_i]G, [R_i]PK)
//
// Decks are given as six rows (c0.x, c0.y, c0.z, c1.x, c1.y, c1.z) of n
// projective coordinates.
type ShuffleEncrypt struct {
	PK       [2]frontend.Variable              `gnark:"pk,public"`
	A        [][]frontend.Variable             `gnark:"A,secret"`
	R        []frontend.Variable               `gnark:"R,secret"`
	Original [deck.NumRows][]frontend.Variable `gnark:"original,public"`
	Permuted [deck.NumRows][]frontend.Variable `gnark:"permuted,public"`
}

// NewShuffleEncrypt returns a circuit placeholder for decks of n cards.
func NewShuffleEncrypt(n int) *ShuffleEncrypt {
	c := &ShuffleEncrypt{
		A: make([][]frontend.Variable, n),
		R: make([]frontend.Variable, n),
	}
	for i := range c.A {
		c.A[i] = make([]frontend.Variable, n)
	}
	for r := 0; r < deck.NumRows; r++ {
		c.Original[r] = make([]frontend.Variable, n)
		c.Permuted[r] = make([]frontend.Variable, n)
	}
	return c
}

// Size returns the number of cards the circuit was built for.
func (c *ShuffleEncrypt) Size() int { return len(c.R) }

func (c *ShuffleEncrypt) Define(api frontend.API) error {
	curve, err := twistededwards.NewEdCurve(api, elgamal.CurveID)
	if err != nil {
		return err
	}
	pk := twistededwards.Point{X: c.PK[0], Y: c.PK[1]}
	curve.AssertIsOnCurve(pk)

	shuffle.AssertPermutationMatrix(api, c.A)
	// select the source card of every output position, row by row
	var selected [deck.NumRows][]frontend.Variable
	for r := range selected {
		selected[r] = shuffle.ApplyMatrix(api, c.A, c.Original[r])
	}
	for i := range c.R {
		c0, err := affine(api, selected[0][i], selected[1][i], selected[2][i])
		if err != nil {
			return err
		}
		c1, err := affine(api, selected[3][i], selected[4][i], selected[5][i])
		if err != nil {
			return err
		}
		in := &elgamal.Ciphertext{C0: c0, C1: c1}
		out, err := new(elgamal.Ciphertext).Reencrypt(api, in, pk, c.R[i])
		if err != nil {
			return err
		}
		assertProjective(api, out.C0, c.Permuted[0][i], c.Permuted[1][i], c.Permuted[2][i])
		assertProjective(api, out.C1, c.Permuted[3][i], c.Permuted[4][i], c.Permuted[5][i])
	}
	return nil
}
