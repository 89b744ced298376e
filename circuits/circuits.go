// Package circuits defines the gnark circuits proved during a game. The
// circuits are compiled over the BLS12-381 scalar field and work on the
// Bandersnatch curve; decks enter them in their six row projective form.
package circuits

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/vocdoni/gnark-mental-poker/elgamal"
)

// ID identifies a circuit, and the artifacts compiled for it.
type ID string

const (
	ShuffleEncryptID   ID = "shuffle_encrypt"
	DecryptID          ID = "decrypt"
	PermutationCheckID ID = "permutation_check"
)

// Curve is the pairing curve the circuits are proved on.
const Curve = ecc.BLS12_381

// assertProjective constrains the projective triple (x, y, z) to represent
// the affine point p: z is not zero, x = p.X·z and y = p.Y·z.
func assertProjective(api frontend.API, p twistededwards.Point, x, y, z frontend.Variable) {
	api.AssertIsDifferent(z, 0)
	api.AssertIsEqual(api.Mul(p.X, z), x)
	api.AssertIsEqual(api.Mul(p.Y, z), y)
}

// affine returns the point of a projective triple, constrained to be on the
// curve.
func affine(api frontend.API, x, y, z frontend.Variable) (twistededwards.Point, error) {
	curve, err := twistededwards.NewEdCurve(api, elgamal.CurveID)
	if err != nil {
		return twistededwards.Point{}, err
	}
	api.AssertIsDifferent(z, 0)
	p := elgamal.FromProjective(api, x, y, z)
	curve.AssertIsOnCurve(p)
	return p, nil
}
