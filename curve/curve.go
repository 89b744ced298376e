// curve package implements twisted Edwards arithmetic in projective
// coordinates over any field.Field. A Curve is built once from a Params value
// and shared read-only by every component of a protocol run; all of its
// methods are pure and safe for concurrent use.
package curve

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/vocdoni/gnark-mental-poker/field"
)

var (
	// ErrNotOnCurve is returned when a point does not satisfy the curve
	// equation.
	ErrNotOnCurve = errors.New("curve: point is not on the curve")
	// ErrNoSuchPoint is returned when no curve point has the requested
	// x-coordinate. Callers sampling random points may retry.
	ErrNoSuchPoint = errors.New("curve: no point with the given x-coordinate")
)

// Point is a projective point (X:Y:Z) representing the affine point
// (X/Z, Y/Z). Two points are equal if they represent the same affine point,
// use Curve.Equal to compare them.
type Point[E any] struct {
	X, Y, Z E
}

// Curve exposes the group operations of a twisted Edwards curve.
type Curve[E any] struct {
	params Params[E]
	f      field.Field[E]
}

// New validates the parameters and returns the curve.
func New[E any](p Params[E]) (*Curve[E], error) {
	if p.Field == nil {
		return nil, fmt.Errorf("curve: nil field")
	}
	if p.Order == nil || p.Order.Sign() <= 0 {
		return nil, fmt.Errorf("curve: invalid subgroup order")
	}
	if p.Cofactor == nil || p.Cofactor.Sign() <= 0 {
		p.Cofactor = big.NewInt(1)
	}
	c := &Curve[E]{params: p, f: p.Field}
	if !c.IsOnCurve(p.BaseX, p.BaseY) {
		return nil, fmt.Errorf("curve %s: base point: %w", p.Name, ErrNotOnCurve)
	}
	return c, nil
}

// Params returns the curve parameters.
func (c *Curve[E]) Params() Params[E] { return c.params }

// Field returns the field of definition.
func (c *Curve[E]) Field() field.Field[E] { return c.f }

// Order returns a copy of the subgroup order.
func (c *Curve[E]) Order() *big.Int { return new(big.Int).Set(c.params.Order) }

// Neutral returns the identity element (0:1:1).
func (c *Curve[E]) Neutral() Point[E] {
	return Point[E]{X: c.f.Zero(), Y: c.f.One(), Z: c.f.One()}
}

// Base returns the generator of the prime order subgroup.
func (c *Curve[E]) Base() Point[E] {
	return Point[E]{X: c.params.BaseX, Y: c.params.BaseY, Z: c.f.One()}
}

// FromAffine builds the projective point (x:y:1).
func (c *Curve[E]) FromAffine(x, y E) Point[E] {
	return Point[E]{X: x, Y: y, Z: c.f.One()}
}

// Add returns p+q using the unified projective addition formula
// (add-2008-bbjlp), which also handles doubling and the neutral element.
func (c *Curve[E]) Add(p, q Point[E]) Point[E] {
	f := c.f
	a := f.Mul(p.Z, q.Z)
	b := f.Square(a)
	cc := f.Mul(p.X, q.X)
	d := f.Mul(p.Y, q.Y)
	e := f.Mul(c.params.D, f.Mul(cc, d))
	ff := f.Sub(b, e)
	g := f.Add(b, e)
	// X3 = A·F·((X1+Y1)·(X2+Y2) - C - D)
	t := f.Mul(f.Add(p.X, p.Y), f.Add(q.X, q.Y))
	t = f.Sub(f.Sub(t, cc), d)
	x3 := f.Mul(f.Mul(a, ff), t)
	// Y3 = A·G·(D - a·C)
	y3 := f.Mul(f.Mul(a, g), f.Sub(d, f.Mul(c.params.A, cc)))
	// Z3 = F·G
	z3 := f.Mul(ff, g)
	return Point[E]{X: x3, Y: y3, Z: z3}
}

// Double returns 2p.
func (c *Curve[E]) Double(p Point[E]) Point[E] { return c.Add(p, p) }

// Neg returns -p, that is (-X:Y:Z).
func (c *Curve[E]) Neg(p Point[E]) Point[E] {
	return Point[E]{X: c.f.Neg(p.X), Y: p.Y, Z: p.Z}
}

// Sub returns p-q.
func (c *Curve[E]) Sub(p, q Point[E]) Point[E] { return c.Add(p, c.Neg(q)) }

// ScalarMul returns [n]p using left-to-right double-and-add. The scalar is
// reduced modulo the subgroup order, so p is expected to be a subgroup point.
func (c *Curve[E]) ScalarMul(p Point[E], n *big.Int) Point[E] {
	k := new(big.Int).Mod(n, c.params.Order)
	return c.mul(p, k)
}

// ScalarBaseMul returns [n]G.
func (c *Curve[E]) ScalarBaseMul(n *big.Int) Point[E] {
	return c.ScalarMul(c.Base(), n)
}

// mul is the unreduced double-and-add loop, also used to clear cofactors and
// to check subgroup membership.
func (c *Curve[E]) mul(p Point[E], k *big.Int) Point[E] {
	r := c.Neutral()
	for i := k.BitLen() - 1; i >= 0; i-- {
		r = c.Add(r, r)
		if k.Bit(i) == 1 {
			r = c.Add(r, p)
		}
	}
	return r
}

// IsOnCurve reports whether the affine point (x, y) satisfies the curve
// equation. The neutral element (0, 1) is always on the curve.
func (c *Curve[E]) IsOnCurve(x, y E) bool {
	f := c.f
	if f.IsZero(x) && f.Equal(y, f.One()) {
		return true
	}
	x2 := f.Square(x)
	y2 := f.Square(y)
	lhs := f.Add(f.Mul(c.params.A, x2), y2)
	rhs := f.Add(f.One(), f.Mul(c.params.D, f.Mul(x2, y2)))
	return f.Equal(lhs, rhs)
}

// IsOnCurvePoint reports whether the projective point is valid and on the
// curve. Points with Z = 0 are rejected.
func (c *Curve[E]) IsOnCurvePoint(p Point[E]) bool {
	if c.f.IsZero(p.Z) {
		return false
	}
	x, y := c.ToAffine(p)
	return c.IsOnCurve(x, y)
}

// InSubgroup reports whether p lies in the prime order subgroup.
func (c *Curve[E]) InSubgroup(p Point[E]) bool {
	return c.IsOnCurvePoint(p) && c.IsNeutral(c.mul(p, c.params.Order))
}

// ToAffine returns (X/Z, Y/Z). A point with Z = 0 is never produced by the
// curve operations, so it is treated as an invariant violation.
func (c *Curve[E]) ToAffine(p Point[E]) (E, E) {
	inv, err := c.f.Inverse(p.Z)
	if err != nil {
		panic(fmt.Sprintf("curve: invalid projective point with Z = 0: %v", err))
	}
	return c.f.Mul(p.X, inv), c.f.Mul(p.Y, inv)
}

// Normalize returns the representation of p with Z = 1.
func (c *Curve[E]) Normalize(p Point[E]) Point[E] {
	x, y := c.ToAffine(p)
	return c.FromAffine(x, y)
}

// Equal compares two projective points by cross multiplication.
func (c *Curve[E]) Equal(p, q Point[E]) bool {
	f := c.f
	return f.Equal(f.Mul(p.X, q.Z), f.Mul(q.X, p.Z)) &&
		f.Equal(f.Mul(p.Y, q.Z), f.Mul(q.Y, p.Z))
}

// IsNeutral reports whether p is the identity element.
func (c *Curve[E]) IsNeutral(p Point[E]) bool {
	return c.Equal(p, c.Neutral())
}

// ClearCofactor returns [h]p, which lies in the prime order subgroup.
func (c *Curve[E]) ClearCofactor(p Point[E]) Point[E] {
	return c.mul(p, c.params.Cofactor)
}

// PointFromBig builds a projective point from integer coordinates, rejecting
// out-of-range values and points that are not on the curve.
func (c *Curve[E]) PointFromBig(x, y, z *big.Int) (Point[E], error) {
	var p Point[E]
	var err error
	if p.X, err = c.f.FromBig(x); err != nil {
		return Point[E]{}, err
	}
	if p.Y, err = c.f.FromBig(y); err != nil {
		return Point[E]{}, err
	}
	if p.Z, err = c.f.FromBig(z); err != nil {
		return Point[E]{}, err
	}
	if !c.IsOnCurvePoint(p) {
		return Point[E]{}, ErrNotOnCurve
	}
	return p, nil
}

// AffineBig returns the affine coordinates of p as integers.
func (c *Curve[E]) AffineBig(p Point[E]) (*big.Int, *big.Int) {
	x, y := c.ToAffine(p)
	return c.f.ToBig(x), c.f.ToBig(y)
}
