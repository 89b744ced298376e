package field

import (
	"crypto/rand"
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	qt "github.com/frankban/quicktest"
)

func testFieldLaws[E any](c *qt.C, f Field[E]) {
	q := f.Modulus()
	for i := 0; i < 32; i++ {
		av, err := rand.Int(rand.Reader, q)
		c.Assert(err, qt.IsNil)
		bv, err := rand.Int(rand.Reader, q)
		c.Assert(err, qt.IsNil)
		a, err := f.FromBig(av)
		c.Assert(err, qt.IsNil)
		b, err := f.FromBig(bv)
		c.Assert(err, qt.IsNil)

		// a + b - b == a
		c.Assert(f.Equal(f.Sub(f.Add(a, b), b), a), qt.IsTrue)
		// a + (-a) == 0
		c.Assert(f.IsZero(f.Add(a, f.Neg(a))), qt.IsTrue)
		// a * b matches big.Int arithmetic
		want := new(big.Int).Mul(av, bv)
		want.Mod(want, q)
		c.Assert(f.ToBig(f.Mul(a, b)).Cmp(want), qt.Equals, 0)
		c.Assert(f.Equal(f.Square(a), f.Mul(a, a)), qt.IsTrue)
		if !f.IsZero(b) {
			d, err := f.Div(a, b)
			c.Assert(err, qt.IsNil)
			c.Assert(f.Equal(f.Mul(d, b), a), qt.IsTrue)
		}
		// the square of any element has a root, and the root squares back
		s, err := f.Sqrt(f.Square(a))
		c.Assert(err, qt.IsNil)
		c.Assert(f.Equal(f.Square(s), f.Square(a)), qt.IsTrue)
	}
}

func TestFrLaws(t *testing.T) {
	testFieldLaws[fr.Element](qt.New(t), Fr{})
}

func TestPrimeLaws(t *testing.T) {
	c := qt.New(t)
	p, err := NewPrime(fr.Modulus())
	c.Assert(err, qt.IsNil)
	testFieldLaws[Int](c, p)
}

func TestFromBigRejectsOutOfRange(t *testing.T) {
	c := qt.New(t)
	p, err := NewPrime(big.NewInt(101))
	c.Assert(err, qt.IsNil)

	_, err = p.FromBig(big.NewInt(101))
	c.Assert(errors.Is(err, ErrOutOfRange), qt.IsTrue)
	_, err = p.FromBig(big.NewInt(-1))
	c.Assert(errors.Is(err, ErrOutOfRange), qt.IsTrue)
	_, err = Fr{}.FromBig(fr.Modulus())
	c.Assert(errors.Is(err, ErrOutOfRange), qt.IsTrue)

	// Reduce is the explicit normalization path
	c.Assert(p.ToBig(p.Reduce(big.NewInt(-1))).Int64(), qt.Equals, int64(100))
	c.Assert(Fr{}.ToBig(Fr{}.Reduce(fr.Modulus())).Sign(), qt.Equals, 0)
}

func TestDivisionByZero(t *testing.T) {
	c := qt.New(t)
	_, err := Fr{}.Inverse(Fr{}.Zero())
	c.Assert(err, qt.Equals, ErrDivisionByZero)
	p, err := NewPrime(big.NewInt(13))
	c.Assert(err, qt.IsNil)
	_, err = p.Div(p.One(), p.Zero())
	c.Assert(err, qt.Equals, ErrDivisionByZero)
}

func TestSqrtNonResidue(t *testing.T) {
	c := qt.New(t)
	p, err := NewPrime(big.NewInt(13))
	c.Assert(err, qt.IsNil)
	// 2 is not a square modulo 13
	_, err = p.Sqrt(p.FromUint64(2))
	c.Assert(err, qt.Equals, ErrNonResidue)
	r, err := p.Sqrt(p.FromUint64(10))
	c.Assert(err, qt.IsNil)
	c.Assert(p.Equal(p.Square(r), p.FromUint64(10)), qt.IsTrue)
}

func TestHalfModulus(t *testing.T) {
	c := qt.New(t)
	p, err := NewPrime(big.NewInt(13))
	c.Assert(err, qt.IsNil)
	c.Assert(HalfModulus[Int](p).Int64(), qt.Equals, int64(6))
	c.Assert(IsSmall[Int](p, p.FromUint64(6)), qt.IsTrue)
	c.Assert(IsSmall[Int](p, p.FromUint64(7)), qt.IsFalse)
	c.Assert(String[Int](p, p.FromUint64(7)), qt.Equals, "7")
}

func TestNewPrimeRejectsComposite(t *testing.T) {
	c := qt.New(t)
	_, err := NewPrime(big.NewInt(15))
	c.Assert(err, qt.IsNotNil)
}
