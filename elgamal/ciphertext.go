package elgamal

import (
	ecc_tweds "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
)

// CurveID is the in-circuit curve matching curve.Bandersnatch. Circuits using
// these gadgets must be compiled over the BLS12-381 scalar field.
const CurveID = ecc_tweds.BLS12_381_BANDERSNATCH

// Ciphertext is the in-circuit form of a card: two affine points.
type Ciphertext struct {
	C0, C1 twistededwards.Point
}

// AssertOnCurve fails if any component is not on the curve.
//
// Panics if twistededwards curve init fails.
func (z *Ciphertext) AssertOnCurve(api frontend.API) {
	curve, err := twistededwards.NewEdCurve(api, CurveID)
	if err != nil {
		panic(err)
	}
	curve.AssertIsOnCurve(z.C0)
	curve.AssertIsOnCurve(z.C1)
}

// Reencrypt sets z to x with one more layer of encryption under pubKey with
// randomness r, and returns z:
//
//	c0 = x.c0 + [r]G
//	c1 = x.c1 + [r]pubKey
func (z *Ciphertext) Reencrypt(api frontend.API, x *Ciphertext, pubKey twistededwards.Point, r frontend.Variable) (*Ciphertext, error) {
	curve, err := twistededwards.NewEdCurve(api, CurveID)
	if err != nil {
		return nil, err
	}
	// [r]G with the fixed base table
	rG, err := FixedBaseScalarMul(api, r)
	if err != nil {
		return nil, err
	}
	// [r]pubKey, variable base
	rP := curve.ScalarMul(pubKey, r)
	return z.Add(api, x, &Ciphertext{C0: rG, C1: rP})
}

// Add sets z to the homomorphic sum of x and y, component by component, and
// returns z.
func (z *Ciphertext) Add(api frontend.API, x, y *Ciphertext) (*Ciphertext, error) {
	curve, err := twistededwards.NewEdCurve(api, CurveID)
	if err != nil {
		return nil, err
	}
	z.C0 = curve.Add(x.C0, y.C0)
	z.C1 = curve.Add(x.C1, y.C1)
	return z, nil
}

// DecryptionShare returns [sk]c0 and asserts that pubKey = [sk]G, which
// proves the share was computed with the secret key matching pubKey.
func (z *Ciphertext) DecryptionShare(api frontend.API, pubKey twistededwards.Point, sk frontend.Variable) (twistededwards.Point, error) {
	curve, err := twistededwards.NewEdCurve(api, CurveID)
	if err != nil {
		return twistededwards.Point{}, err
	}
	skG, err := FixedBaseScalarMul(api, sk)
	if err != nil {
		return twistededwards.Point{}, err
	}
	api.AssertIsEqual(skG.X, pubKey.X)
	api.AssertIsEqual(skG.Y, pubKey.Y)
	return curve.ScalarMul(z.C0, sk), nil
}

// AssertIsEqual fails if any of the fields differ between z and x
func (z *Ciphertext) AssertIsEqual(api frontend.API, x *Ciphertext) {
	api.AssertIsEqual(z.C0.X, x.C0.X)
	api.AssertIsEqual(z.C0.Y, x.C0.Y)
	api.AssertIsEqual(z.C1.X, x.C1.X)
	api.AssertIsEqual(z.C1.Y, x.C1.Y)
}

// FromProjective builds an affine in-circuit point from projective
// coordinates, constraining x·Z = X and y·Z = Y. Z must be non zero.
func FromProjective(api frontend.API, x, y, z frontend.Variable) twistededwards.Point {
	return twistededwards.Point{
		X: api.Div(x, z),
		Y: api.Div(y, z),
	}
}
