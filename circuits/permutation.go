package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/gnark-mental-poker/shuffle"
)

// PermutationCheck proves whether the secret index array Perm is a
// permutation of [0, n). An invalid array yields a satisfiable witness
// with Valid = 0, so rejections are verifiable too.
type PermutationCheck struct {
	Perm  []frontend.Variable `gnark:"perm,secret"`
	Valid frontend.Variable   `gnark:"valid,public"`
}

// NewPermutationCheck returns a circuit placeholder for n indexes.
func NewPermutationCheck(n int) *PermutationCheck {
	return &PermutationCheck{Perm: make([]frontend.Variable, n)}
}

func (c *PermutationCheck) Define(api frontend.API) error {
	api.AssertIsEqual(shuffle.IsPermutation(api, c.Perm), c.Valid)
	return nil
}
