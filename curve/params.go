package curve

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/bandersnatch"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	jubjub "github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards"
	bn254fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/iden3/go-iden3-crypto/babyjub"
	"github.com/vocdoni/gnark-mental-poker/field"
)

// Names of the built-in parameter sets.
const (
	NameBandersnatch = "bandersnatch"
	NameJubjub       = "jubjub"
	NameBabyJubJub   = "babyjubjub"
)

// Params are the constants of a twisted Edwards curve
//
//	a·x² + y² = 1 + d·x²·y²
//
// together with the generator of its prime order subgroup. Every participant
// and the circuits must share the exact same Params; a mismatch produces
// ciphertexts that silently fail to interoperate.
type Params[E any] struct {
	Name     string
	Field    field.Field[E]
	A, D     E
	BaseX    E
	BaseY    E
	Order    *big.Int // order of the subgroup generated by the base point
	Cofactor *big.Int
}

// Bandersnatch returns the parameters of the Bandersnatch curve defined over
// the BLS12-381 scalar field. It is the default curve of the protocol and the
// one the circuits are compiled for.
func Bandersnatch() Params[fr.Element] {
	p := bandersnatch.GetEdwardsCurve()
	return Params[fr.Element]{
		Name:     NameBandersnatch,
		Field:    field.Fr{},
		A:        p.A,
		D:        p.D,
		BaseX:    p.Base.X,
		BaseY:    p.Base.Y,
		Order:    new(big.Int).Set(&p.Order),
		Cofactor: p.Cofactor.BigInt(new(big.Int)),
	}
}

// Jubjub returns the parameters of the Jubjub curve, also defined over the
// BLS12-381 scalar field.
func Jubjub() Params[fr.Element] {
	p := jubjub.GetEdwardsCurve()
	return Params[fr.Element]{
		Name:     NameJubjub,
		Field:    field.Fr{},
		A:        p.A,
		D:        p.D,
		BaseX:    p.Base.X,
		BaseY:    p.Base.Y,
		Order:    new(big.Int).Set(&p.Order),
		Cofactor: p.Cofactor.BigInt(new(big.Int)),
	}
}

// BabyJubJub returns the parameters of the iden3 BabyJubJub curve (standard
// twisted Edwards form, a = 168700, d = 168696) over the BN254 scalar field,
// using the generic big.Int backed field.
func BabyJubJub() Params[field.Int] {
	f, err := field.NewPrime(bn254fr.Modulus())
	if err != nil {
		// the BN254 modulus is a well known prime
		panic(err)
	}
	return Params[field.Int]{
		Name:     NameBabyJubJub,
		Field:    f,
		A:        f.Reduce(babyjub.A),
		D:        f.Reduce(babyjub.D),
		BaseX:    f.Reduce(babyjub.B8.X),
		BaseY:    f.Reduce(babyjub.B8.Y),
		Order:    new(big.Int).Set(babyjub.SubOrder),
		Cofactor: big.NewInt(8),
	}
}

// ByName returns the BLS12-381 parameter set with the given name.
func ByName(name string) (Params[fr.Element], error) {
	switch name {
	case NameBandersnatch, "":
		return Bandersnatch(), nil
	case NameJubjub:
		return Jubjub(), nil
	default:
		return Params[fr.Element]{}, fmt.Errorf("curve: unknown curve %q", name)
	}
}
