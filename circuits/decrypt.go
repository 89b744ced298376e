package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/vocdoni/gnark-mental-poker/elgamal"
)

// Decrypt proves that Expected = [SK]C0 for the secret key SK behind the
// public key PK = [SK]G. Expected is the decryption share a key holder
// removes from c1.
type Decrypt struct {
	C0       [3]frontend.Variable `gnark:"c0,public"`
	SK       frontend.Variable    `gnark:"sk,secret"`
	PK       [2]frontend.Variable `gnark:"pk,public"`
	Expected [3]frontend.Variable `gnark:"expected,public"`
}

func (c *Decrypt) Define(api frontend.API) error {
	c0, err := affine(api, c.C0[0], c.C0[1], c.C0[2])
	if err != nil {
		return err
	}
	ct := &elgamal.Ciphertext{C0: c0}
	share, err := ct.DecryptionShare(api, twistededwards.Point{X: c.PK[0], Y: c.PK[1]}, c.SK)
	if err != nil {
		return err
	}
	assertProjective(api, share, c.Expected[0], c.Expected[1], c.Expected[2])
	return nil
}
