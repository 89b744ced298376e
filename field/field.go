// field package defines the prime field capability used by the curve, deck
// and encryption layers. Implementations are stateless values so a single
// instance can be shared read-only by every component of a protocol run.
package field

import (
	"errors"
	"math/big"
)

var (
	// ErrOutOfRange is returned when an integer is not in [0, q).
	ErrOutOfRange = errors.New("field: value out of range")
	// ErrDivisionByZero is returned when inverting the additive identity.
	ErrDivisionByZero = errors.New("field: division by zero")
	// ErrNonResidue is returned by Sqrt when the input has no square root.
	ErrNonResidue = errors.New("field: not a quadratic residue")
)

// Field is the arithmetic capability over elements of type E. Every element
// returned by a Field is reduced to [0, q).
type Field[E any] interface {
	// Modulus returns a copy of q.
	Modulus() *big.Int
	Zero() E
	One() E
	// FromBig converts v into an element, failing with ErrOutOfRange if v is
	// negative or not smaller than q.
	FromBig(v *big.Int) (E, error)
	// Reduce normalizes any integer (including negative ones) modulo q.
	Reduce(v *big.Int) E
	FromUint64(v uint64) E
	// ToBig returns the canonical integer representation of a.
	ToBig(a E) *big.Int
	Add(a, b E) E
	Sub(a, b E) E
	Mul(a, b E) E
	Square(a E) E
	Neg(a E) E
	Inverse(a E) (E, error)
	Div(a, b E) (E, error)
	// Sqrt returns one of the square roots of a or ErrNonResidue.
	Sqrt(a E) (E, error)
	Equal(a, b E) bool
	IsZero(a E) bool
}

// HalfModulus returns (q-1)/2, the bound used to pick the canonical root of a
// pair {y, q-y}.
func HalfModulus[E any](f Field[E]) *big.Int {
	h := f.Modulus()
	h.Sub(h, big.NewInt(1))
	return h.Rsh(h, 1)
}

// IsSmall reports whether a <= (q-1)/2.
func IsSmall[E any](f Field[E], a E) bool {
	return f.ToBig(a).Cmp(HalfModulus(f)) <= 0
}

// String returns the decimal representation of a.
func String[E any](f Field[E], a E) string {
	return f.ToBig(a).String()
}
