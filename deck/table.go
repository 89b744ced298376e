package deck

import (
	"errors"
	"fmt"

	"github.com/vocdoni/gnark-mental-poker/curve"
)

// ErrUnknownCard is returned when a fully decrypted point is not the
// canonical point of any card.
var ErrUnknownCard = errors.New("deck: point does not match any card")

// Table maps canonical card points back to card indexes.
type Table[E any] struct {
	curve  *curve.Curve[E]
	points map[string]int
}

// NewTable precomputes the canonical points of n cards.
func NewTable[E any](c *curve.Curve[E], n int) (*Table[E], error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d cards", ErrInvalidSize, n)
	}
	t := &Table[E]{curve: c, points: make(map[string]int, n)}
	p := c.Neutral()
	for i := 0; i < n; i++ {
		p = c.Add(p, c.Base())
		t.points[t.key(p)] = i
	}
	return t, nil
}

func (t *Table[E]) key(p curve.Point[E]) string {
	x, y := t.curve.AffineBig(p)
	return x.String() + ":" + y.String()
}

// Lookup returns the index of the card whose canonical point is p.
func (t *Table[E]) Lookup(p curve.Point[E]) (int, error) {
	if !t.curve.IsOnCurvePoint(p) {
		return 0, fmt.Errorf("%w: %w", ErrUnknownCard, curve.ErrNotOnCurve)
	}
	i, ok := t.points[t.key(p)]
	if !ok {
		return 0, ErrUnknownCard
	}
	return i, nil
}
