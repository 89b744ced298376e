package field

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Fr is the scalar field of BLS12-381, the field of definition of the
// Bandersnatch and Jubjub curves. Elements are gnark-crypto fr.Element values.
type Fr struct{}

var _ Field[fr.Element] = Fr{}

func (Fr) Modulus() *big.Int { return fr.Modulus() }

func (Fr) Zero() fr.Element { return fr.Element{} }

func (Fr) One() fr.Element { return fr.One() }

func (Fr) FromBig(v *big.Int) (fr.Element, error) {
	if v == nil || v.Sign() < 0 || v.Cmp(fr.Modulus()) >= 0 {
		return fr.Element{}, fmt.Errorf("%w: %v", ErrOutOfRange, v)
	}
	var z fr.Element
	z.SetBigInt(v)
	return z, nil
}

func (Fr) Reduce(v *big.Int) fr.Element {
	var z fr.Element
	// SetBigInt reduces modulo q, including negative inputs
	z.SetBigInt(v)
	return z
}

func (Fr) FromUint64(v uint64) fr.Element {
	var z fr.Element
	z.SetUint64(v)
	return z
}

func (Fr) ToBig(a fr.Element) *big.Int {
	return a.BigInt(new(big.Int))
}

func (Fr) Add(a, b fr.Element) fr.Element {
	var z fr.Element
	z.Add(&a, &b)
	return z
}

func (Fr) Sub(a, b fr.Element) fr.Element {
	var z fr.Element
	z.Sub(&a, &b)
	return z
}

func (Fr) Mul(a, b fr.Element) fr.Element {
	var z fr.Element
	z.Mul(&a, &b)
	return z
}

func (Fr) Square(a fr.Element) fr.Element {
	var z fr.Element
	z.Square(&a)
	return z
}

func (Fr) Neg(a fr.Element) fr.Element {
	var z fr.Element
	z.Neg(&a)
	return z
}

func (Fr) Inverse(a fr.Element) (fr.Element, error) {
	if a.IsZero() {
		return fr.Element{}, ErrDivisionByZero
	}
	var z fr.Element
	z.Inverse(&a)
	return z, nil
}

func (f Fr) Div(a, b fr.Element) (fr.Element, error) {
	inv, err := f.Inverse(b)
	if err != nil {
		return fr.Element{}, err
	}
	return f.Mul(a, inv), nil
}

func (Fr) Sqrt(a fr.Element) (fr.Element, error) {
	var z fr.Element
	if z.Sqrt(&a) == nil {
		return fr.Element{}, ErrNonResidue
	}
	return z, nil
}

func (Fr) Equal(a, b fr.Element) bool { return a.Equal(&b) }

func (Fr) IsZero(a fr.Element) bool { return a.IsZero() }
