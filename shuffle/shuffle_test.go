package shuffle

import (
	"bytes"
	"context"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/deck"
	"github.com/vocdoni/gnark-mental-poker/elgamal"
	"github.com/vocdoni/gnark-mental-poker/testutil"
)

func TestGenerate(t *testing.T) {
	c := qt.New(t)
	for _, n := range []int{1, 2, 5, deck.StandardSize} {
		p, err := Generate(rand.Reader, n)
		c.Assert(err, qt.IsNil)
		c.Assert(p, qt.HasLen, n)
		c.Assert(p.Validate(), qt.IsNil)

		m := p.Matrix()
		c.Assert(m.Validate(), qt.IsNil)
		back, err := m.Permutation()
		c.Assert(err, qt.IsNil)
		c.Assert(back, qt.DeepEquals, p)

		inv := p.Inverse()
		for i := range p {
			c.Assert(inv[p[i]], qt.Equals, i)
		}
	}
	_, err := Generate(rand.Reader, 0)
	c.Assert(err, qt.ErrorIs, deck.ErrInvalidSize)

	// randomness exhaustion is an error, not a biased result
	_, err = Generate(bytes.NewReader(nil), 10)
	c.Assert(err, qt.IsNotNil)
}

func TestGenerateIsUniform(t *testing.T) {
	c := qt.New(t)
	// all 6 permutations of 3 elements show up with similar frequency
	const rounds = 6000
	counts := map[[3]int]int{}
	for i := 0; i < rounds; i++ {
		p, err := Generate(rand.Reader, 3)
		c.Assert(err, qt.IsNil)
		counts[[3]int{p[0], p[1], p[2]}]++
	}
	c.Assert(counts, qt.HasLen, 6)
	for k, v := range counts {
		c.Assert(v > rounds/6-300 && v < rounds/6+300, qt.IsTrue, qt.Commentf("%v seen %d times", k, v))
	}
}

func TestSample(t *testing.T) {
	c := qt.New(t)
	m, err := Sample(rand.Reader, 8)
	c.Assert(err, qt.IsNil)
	c.Assert(m.Validate(), qt.IsNil)
}

func TestValidate(t *testing.T) {
	c := qt.New(t)

	dup := Identity(deck.StandardSize)
	dup[0], dup[1], dup[2] = 18, 18, 21
	c.Assert(dup.Validate(), qt.ErrorIs, ErrDuplicateIndex)

	out := Identity(deck.StandardSize)
	out[7] = deck.StandardSize
	c.Assert(out.Validate(), qt.ErrorIs, ErrIndexOutOfRange)

	neg := Identity(4)
	neg[2] = -1
	c.Assert(neg.Validate(), qt.ErrorIs, ErrIndexOutOfRange)

	for _, m := range []Matrix{
		{},
		{{1, 0}, {0, 1}, {0, 0}},
		{{1, 0}, {1, 0}},
		{{1, 1}, {0, 0}},
		{{2, 0}, {0, 1}},
		{{1, 0}, {0}},
	} {
		c.Assert(m.Validate(), qt.ErrorIs, ErrNotPermutationMatrix)
		_, err := m.Permutation()
		c.Assert(err, qt.ErrorIs, ErrNotPermutationMatrix)
	}
}

func TestPermuteMatrix(t *testing.T) {
	c := qt.New(t)
	var rows [deck.NumRows][]int
	for r := range rows {
		rows[r] = []int{10*r + 0, 10*r + 1, 10*r + 2, 10*r + 3}
	}
	perm := Permutation{2, 0, 3, 1}
	out, err := PermuteMatrix(rows, perm)
	c.Assert(err, qt.IsNil)
	for r := range out {
		for col := range perm {
			c.Assert(out[r][col], qt.Equals, rows[r][perm[col]])
		}
	}

	_, err = PermuteMatrix(rows, Permutation{0, 1, 2})
	c.Assert(err, qt.ErrorIs, deck.ErrInvalidSize)
	_, err = PermuteMatrix(rows, Permutation{0, 0, 1, 2})
	c.Assert(err, qt.ErrorIs, ErrDuplicateIndex)
}

func TestShufflePreservesCards(t *testing.T) {
	c := qt.New(t)
	cv, err := curve.New(curve.Bandersnatch())
	c.Assert(err, qt.IsNil)
	ctx := context.Background()

	keys, err := elgamal.KeyGen(cv, rand.Reader, 0)
	c.Assert(err, qt.IsNil)
	d, err := deck.Init(cv, deck.StandardSize)
	c.Assert(err, qt.IsNil)
	enc, _, err := elgamal.EncryptDeck(ctx, cv, keys.PK, d, rand.Reader, nil)
	c.Assert(err, qt.IsNil)

	res, err := Shuffle(ctx, cv, keys.PK, enc, rand.Reader, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(res.Deck.Len(), qt.Equals, d.Len())
	c.Assert(res.R, qt.HasLen, d.Len())
	c.Assert(res.Permutation.Validate(), qt.IsNil)

	// the multiset of plaintexts is unchanged and every card moved with the
	// permutation
	table, err := deck.NewTable(cv, d.Len())
	c.Assert(err, qt.IsNil)
	seen := make([]bool, d.Len())
	for i := 0; i < res.Deck.Len(); i++ {
		idx, err := table.Lookup(elgamal.Decrypt(cv, res.Deck.Card(i), keys.SK))
		c.Assert(err, qt.IsNil)
		c.Assert(idx, qt.Equals, res.Permutation[i])
		c.Assert(seen[idx], qt.IsFalse)
		seen[idx] = true
	}

	// the same inputs give the same deck
	again, err := ShuffleWith(ctx, cv, keys.PK, enc, res.Permutation, res.R, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(again.Equal(cv, res.Deck), qt.IsTrue)

	// the six row form of the output is the permuted six row form of the
	// input plus the new layer
	stripped := make([]deck.Card[fr.Element], d.Len())
	for i := range stripped {
		card := res.Deck.Card(i)
		stripped[i] = deck.Card[fr.Element]{
			C0: cv.Normalize(cv.Sub(card.C0, cv.ScalarBaseMul(res.R[i]))),
			C1: cv.Normalize(cv.Sub(card.C1, cv.ScalarMul(keys.PK, res.R[i]))),
		}
	}
	permuted, err := PermuteMatrix(enc.Normalize(cv).Rows(), res.Permutation)
	c.Assert(err, qt.IsNil)
	c.Assert(deck.New(stripped).Rows(), qt.DeepEquals, permuted)
}

func TestShuffleWith(t *testing.T) {
	c := qt.New(t)
	cv := testutil.Bandersnatch(c)
	ctx := context.Background()
	_, pk := testutil.KeyPairs(c, cv, 2)
	d := testutil.RandomDeck(c, cv, 4)

	// identity permutation and zero randomness leave the deck unchanged
	zeros := []*big.Int{big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0)}
	same, err := ShuffleWith(ctx, cv, pk, d, Identity(4), zeros, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(same.Equal(cv, d), qt.IsTrue)

	moved, err := ShuffleWith(ctx, cv, pk, d, Permutation{3, 2, 1, 0}, zeros, nil)
	c.Assert(err, qt.IsNil)
	for i := 0; i < 4; i++ {
		c.Assert(cv.Equal(moved.Card(i).C0, d.Card(3-i).C0), qt.IsTrue)
		c.Assert(cv.Equal(moved.Card(i).C1, d.Card(3-i).C1), qt.IsTrue)
	}

	_, err = ShuffleWith(ctx, cv, pk, d, Permutation{0, 1, 1, 2}, zeros, nil)
	c.Assert(err, qt.ErrorIs, ErrDuplicateIndex)
	_, err = ShuffleWith(ctx, cv, pk, d, Identity(3), zeros[:3], nil)
	c.Assert(err, qt.ErrorIs, deck.ErrInvalidSize)
	_, err = ShuffleWith(ctx, cv, pk, d, Identity(4), zeros[:3], nil)
	c.Assert(err, qt.ErrorIs, deck.ErrInvalidSize)
}

type testPermutationMatrixCircuit struct {
	A      [][]frontend.Variable
	Values []frontend.Variable `gnark:",public"`
	Out    []frontend.Variable `gnark:",public"`
}

func (c *testPermutationMatrixCircuit) Define(api frontend.API) error {
	AssertPermutationMatrix(api, c.A)
	out := ApplyMatrix(api, c.A, c.Values)
	for i := range out {
		api.AssertIsEqual(out[i], c.Out[i])
	}
	return nil
}

func newPermutationMatrixCircuit(n int) *testPermutationMatrixCircuit {
	circuit := &testPermutationMatrixCircuit{
		A:      make([][]frontend.Variable, n),
		Values: make([]frontend.Variable, n),
		Out:    make([]frontend.Variable, n),
	}
	for i := range circuit.A {
		circuit.A[i] = make([]frontend.Variable, n)
	}
	return circuit
}

func TestPermutationMatrixGadget(t *testing.T) {
	c := qt.New(t)
	const n = 6
	perm, err := Generate(rand.Reader, n)
	c.Assert(err, qt.IsNil)

	assign := func(m Matrix, out []int) *testPermutationMatrixCircuit {
		w := newPermutationMatrixCircuit(n)
		for i := range m {
			for j := range m[i] {
				w.A[i][j] = m[i][j]
			}
			w.Values[i] = 100 + i
			w.Out[i] = out[i]
		}
		return w
	}
	out := make([]int, n)
	for i := range out {
		out[i] = 100 + perm[i]
	}

	assert := test.NewAssert(t)
	assert.SolvingSucceeded(newPermutationMatrixCircuit(n), assign(perm.Matrix(), out),
		test.WithCurves(ecc.BLS12_381), test.WithBackends(backend.GROTH16))

	// a non boolean entry is rejected
	bad := perm.Matrix()
	bad[0] = make([]uint8, n)
	bad[0][perm[0]] = 2
	assert.SolvingFailed(newPermutationMatrixCircuit(n), assign(bad, out),
		test.WithCurves(ecc.BLS12_381), test.WithBackends(backend.GROTH16))

	// two rows selecting the same card are rejected
	dup := Identity(n)
	dup[1] = 0
	dupMatrix := make(Matrix, n)
	for i, v := range dup {
		dupMatrix[i] = make([]uint8, n)
		dupMatrix[i][v] = 1
	}
	dupOut := make([]int, n)
	for i := range dupOut {
		dupOut[i] = 100 + dup[i]
	}
	assert.SolvingFailed(newPermutationMatrixCircuit(n), assign(dupMatrix, dupOut),
		test.WithCurves(ecc.BLS12_381), test.WithBackends(backend.GROTH16))
}

type testIsPermutationCircuit struct {
	Perm  []frontend.Variable
	Valid frontend.Variable `gnark:",public"`
}

func (c *testIsPermutationCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(IsPermutation(api, c.Perm), c.Valid)
	return nil
}

func TestIsPermutationGadget(t *testing.T) {
	c := qt.New(t)
	const n = deck.StandardSize
	perm, err := Generate(rand.Reader, n)
	c.Assert(err, qt.IsNil)

	assign := func(p []int, valid int) *testIsPermutationCircuit {
		w := &testIsPermutationCircuit{Perm: make([]frontend.Variable, n), Valid: valid}
		for i, v := range p {
			w.Perm[i] = v
		}
		return w
	}
	newCircuit := func() *testIsPermutationCircuit {
		return &testIsPermutationCircuit{Perm: make([]frontend.Variable, n)}
	}

	dup := Identity(n)
	dup[0], dup[1], dup[2] = 18, 18, 21
	out := Identity(n)
	out[5] = n

	assert := test.NewAssert(t)
	opts := []test.TestingOption{test.WithCurves(ecc.BLS12_381), test.WithBackends(backend.GROTH16)}
	assert.SolvingSucceeded(newCircuit(), assign(perm, 1), opts...)
	assert.SolvingSucceeded(newCircuit(), assign(dup, 0), opts...)
	assert.SolvingSucceeded(newCircuit(), assign(out, 0), opts...)
	// an invalid permutation cannot be claimed valid
	assert.SolvingFailed(newCircuit(), assign(dup, 1), opts...)
	assert.SolvingFailed(newCircuit(), assign(perm, 0), opts...)
}
