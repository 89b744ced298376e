package field

import (
	"fmt"
	"math/big"
)

// Int is an immutable element of a Prime field. The zero value is the
// additive identity.
type Int struct {
	v *big.Int
}

func (e Int) big() *big.Int {
	if e.v == nil {
		return new(big.Int)
	}
	return e.v
}

// String returns the decimal representation of the element.
func (e Int) String() string { return e.big().String() }

// Prime is a generic prime field backed by math/big. It is slower than Fr but
// accepts any modulus, which makes it useful to run the protocol over
// alternative curve parameter sets.
type Prime struct {
	q *big.Int
}

// NewPrime returns the field of integers modulo q. The modulus is assumed to
// be an odd prime; it is only checked probabilistically.
func NewPrime(q *big.Int) (*Prime, error) {
	if q == nil || q.Cmp(big.NewInt(2)) <= 0 || !q.ProbablyPrime(20) {
		return nil, fmt.Errorf("field: invalid prime modulus %v", q)
	}
	return &Prime{q: new(big.Int).Set(q)}, nil
}

var _ Field[Int] = (*Prime)(nil)

func (p *Prime) wrap(v *big.Int) Int {
	return Int{v: v.Mod(v, p.q)}
}

func (p *Prime) Modulus() *big.Int { return new(big.Int).Set(p.q) }

func (p *Prime) Zero() Int { return Int{v: new(big.Int)} }

func (p *Prime) One() Int { return Int{v: big.NewInt(1)} }

func (p *Prime) FromBig(v *big.Int) (Int, error) {
	if v == nil || v.Sign() < 0 || v.Cmp(p.q) >= 0 {
		return Int{}, fmt.Errorf("%w: %v", ErrOutOfRange, v)
	}
	return Int{v: new(big.Int).Set(v)}, nil
}

func (p *Prime) Reduce(v *big.Int) Int { return p.wrap(new(big.Int).Set(v)) }

func (p *Prime) FromUint64(v uint64) Int { return p.wrap(new(big.Int).SetUint64(v)) }

func (p *Prime) ToBig(a Int) *big.Int { return new(big.Int).Set(a.big()) }

func (p *Prime) Add(a, b Int) Int { return p.wrap(new(big.Int).Add(a.big(), b.big())) }

func (p *Prime) Sub(a, b Int) Int { return p.wrap(new(big.Int).Sub(a.big(), b.big())) }

func (p *Prime) Mul(a, b Int) Int { return p.wrap(new(big.Int).Mul(a.big(), b.big())) }

func (p *Prime) Square(a Int) Int { return p.Mul(a, a) }

func (p *Prime) Neg(a Int) Int { return p.wrap(new(big.Int).Neg(a.big())) }

func (p *Prime) Inverse(a Int) (Int, error) {
	if a.big().Sign() == 0 {
		return Int{}, ErrDivisionByZero
	}
	return Int{v: new(big.Int).ModInverse(a.big(), p.q)}, nil
}

func (p *Prime) Div(a, b Int) (Int, error) {
	inv, err := p.Inverse(b)
	if err != nil {
		return Int{}, err
	}
	return p.Mul(a, inv), nil
}

func (p *Prime) Sqrt(a Int) (Int, error) {
	z := new(big.Int).ModSqrt(a.big(), p.q)
	if z == nil {
		return Int{}, ErrNonResidue
	}
	return Int{v: z}, nil
}

func (p *Prime) Equal(a, b Int) bool { return a.big().Cmp(b.big()) == 0 }

func (p *Prime) IsZero(a Int) bool { return a.big().Sign() == 0 }
