package curve

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/vocdoni/gnark-mental-poker/field"
	"github.com/vocdoni/gnark-mental-poker/utils"
)

// ErrMalformed is returned when compressed data is inconsistent.
var ErrMalformed = errors.New("curve: malformed compressed data")

// Compressed is a point represented by its affine x-coordinate plus one bit
// selecting which of the two y roots applies. The curve equation only
// involves y², so (x, y) and (x, q-y) are both on the curve.
type Compressed[E any] struct {
	X E
	// Selector is true when y <= (q-1)/2, that is when y is the small root.
	Selector bool
}

// Compress returns the compressed form of p.
func (c *Curve[E]) Compress(p Point[E]) Compressed[E] {
	x, y := c.ToAffine(p)
	return Compressed[E]{X: x, Selector: field.IsSmall(c.f, y)}
}

// Delta returns min(y, q-y) for the affine y-coordinate of p.
func (c *Curve[E]) Delta(p Point[E]) E {
	_, y := c.ToAffine(p)
	return c.smallRoot(y)
}

func (c *Curve[E]) smallRoot(y E) E {
	if field.IsSmall(c.f, y) {
		return y
	}
	return c.f.Neg(y)
}

// CompressPoints compresses a list of points into their x-coordinates, their
// deltas and the selector bits packed into a single integer. At most
// utils.MaxPackedBits points fit in one selector.
func (c *Curve[E]) CompressPoints(points []Point[E]) (xs, deltas []E, selector *big.Int, err error) {
	if len(points) > utils.MaxPackedBits {
		return nil, nil, nil, fmt.Errorf("%w: %d points exceed %d selector bits",
			ErrMalformed, len(points), utils.MaxPackedBits)
	}
	xs = make([]E, len(points))
	deltas = make([]E, len(points))
	bits := make([]bool, len(points))
	for i, p := range points {
		x, y := c.ToAffine(p)
		xs[i] = x
		deltas[i] = c.smallRoot(y)
		bits[i] = field.IsSmall(c.f, y)
	}
	selector, err = utils.Bits2Num(bits)
	if err != nil {
		return nil, nil, nil, err
	}
	return xs, deltas, selector, nil
}

// DecompressPoints is the inverse of CompressPoints. Every delta must be the
// small root and every rebuilt point must be on the curve; the selector may
// not carry bits beyond len(xs).
func (c *Curve[E]) DecompressPoints(xs, deltas []E, selector *big.Int) ([]Point[E], error) {
	if len(xs) != len(deltas) {
		return nil, fmt.Errorf("%w: %d x-coordinates but %d deltas", ErrMalformed, len(xs), len(deltas))
	}
	bits, err := utils.Num2Bits(selector, len(xs))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	points := make([]Point[E], len(xs))
	for i := range xs {
		p, err := c.Decompress(xs[i], deltas[i], bits[i])
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		points[i] = p
	}
	return points, nil
}

// Decompress rebuilds the point with x-coordinate x and y = delta when
// selector is set, y = q - delta otherwise.
func (c *Curve[E]) Decompress(x, delta E, selector bool) (Point[E], error) {
	if !field.IsSmall(c.f, delta) {
		return Point[E]{}, fmt.Errorf("%w: delta above (q-1)/2", ErrMalformed)
	}
	y := delta
	if !selector {
		y = c.f.Neg(delta)
	}
	if !c.IsOnCurve(x, y) {
		return Point[E]{}, ErrNotOnCurve
	}
	return c.FromAffine(x, y), nil
}

// X2Delta solves the curve equation for y given x,
//
//	y² = (1 - a·x²) / (1 - d·x²)
//
// and returns the small root. It fails with ErrNoSuchPoint when y² is not a
// square or the denominator vanishes.
func (c *Curve[E]) X2Delta(x E) (E, error) {
	f := c.f
	x2 := f.Square(x)
	num := f.Sub(f.One(), f.Mul(c.params.A, x2))
	den := f.Sub(f.One(), f.Mul(c.params.D, x2))
	y2, err := f.Div(num, den)
	if err != nil {
		return f.Zero(), fmt.Errorf("%w: %v", ErrNoSuchPoint, err)
	}
	y, err := f.Sqrt(y2)
	if err != nil {
		return f.Zero(), fmt.Errorf("%w: %v", ErrNoSuchPoint, err)
	}
	return c.smallRoot(y), nil
}

// DecompressX rebuilds a point from its compressed form, recovering the
// delta with X2Delta.
func (c *Curve[E]) DecompressX(p Compressed[E]) (Point[E], error) {
	delta, err := c.X2Delta(p.X)
	if err != nil {
		return Point[E]{}, err
	}
	return c.Decompress(p.X, delta, p.Selector)
}

// GeneratePoint returns a random point of the prime order subgroup. It
// samples random x-coordinates until one lies on the curve and clears the
// cofactor.
func (c *Curve[E]) GeneratePoint(rand io.Reader) (Point[E], error) {
	for {
		xv, err := utils.RandomBelow(rand, c.f.Modulus())
		if err != nil {
			return Point[E]{}, err
		}
		x := c.f.Reduce(xv)
		delta, err := c.X2Delta(x)
		if errors.Is(err, ErrNoSuchPoint) {
			continue
		}
		if err != nil {
			return Point[E]{}, err
		}
		p := c.ClearCofactor(c.FromAffine(x, delta))
		if c.IsNeutral(p) {
			continue
		}
		return c.Normalize(p), nil
	}
}
