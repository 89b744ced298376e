// Package shuffle implements the permute then re-encrypt step of the mental
// poker protocol: unbiased permutation sampling, their index and matrix
// representations, and the in-circuit checks a shuffle proof relies on.
package shuffle

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/vocdoni/gnark-mental-poker/deck"
)

var (
	// ErrDuplicateIndex is returned when two positions take the same card.
	ErrDuplicateIndex = errors.New("shuffle: duplicate index in permutation")
	// ErrIndexOutOfRange is returned when an index is negative or not
	// smaller than the permutation length.
	ErrIndexOutOfRange = errors.New("shuffle: permutation index out of range")
	// ErrNotPermutationMatrix is returned for a matrix that is not square, has
	// entries other than 0 and 1, or whose rows or columns do not contain
	// exactly one 1.
	ErrNotPermutationMatrix = errors.New("shuffle: not a permutation matrix")
)

// Permutation is the index form of a permutation: the card placed at output
// position i is the card found at position p[i] of the input.
type Permutation []int

// Matrix is the 0/1 form of a permutation: m[i][j] = 1 iff output position i
// takes input position j.
type Matrix [][]uint8

// Identity returns the identity permutation of n elements.
func Identity(n int) Permutation {
	p := make(Permutation, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// Generate samples a uniformly random permutation of n elements with a
// Fisher-Yates shuffle, drawing each swap position uniformly from [0, i]
// for i from n-1 down to 1.
func Generate(rand io.Reader, n int) (Permutation, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d elements", deck.ErrInvalidSize, n)
	}
	p := Identity(n)
	for i := n - 1; i > 0; i-- {
		j, err := randInt(rand, i+1)
		if err != nil {
			return nil, fmt.Errorf("shuffle: sampling permutation: %w", err)
		}
		p[i], p[j] = p[j], p[i]
	}
	return p, nil
}

// Sample is Generate returning the matrix form.
func Sample(rand io.Reader, n int) (Matrix, error) {
	p, err := Generate(rand, n)
	if err != nil {
		return nil, err
	}
	return p.Matrix(), nil
}

// Validate checks p is a bijection over [0, len(p)).
func (p Permutation) Validate() error {
	seen := make([]bool, len(p))
	for i, v := range p {
		if v < 0 || v >= len(p) {
			return fmt.Errorf("%w: position %d has index %d for %d elements", ErrIndexOutOfRange, i, v, len(p))
		}
		if seen[v] {
			return fmt.Errorf("%w: index %d repeated at position %d", ErrDuplicateIndex, v, i)
		}
		seen[v] = true
	}
	return nil
}

// Matrix returns the matrix form of p. p must be valid.
func (p Permutation) Matrix() Matrix {
	m := make(Matrix, len(p))
	for i, v := range p {
		m[i] = make([]uint8, len(p))
		m[i][v] = 1
	}
	return m
}

// Inverse returns q such that q[p[i]] = i. Applying p and then q leaves a
// deck in its original order.
func (p Permutation) Inverse() Permutation {
	q := make(Permutation, len(p))
	for i, v := range p {
		q[v] = i
	}
	return q
}

// Validate checks m is a square permutation matrix.
func (m Matrix) Validate() error {
	n := len(m)
	if n == 0 {
		return fmt.Errorf("%w: empty matrix", ErrNotPermutationMatrix)
	}
	cols := make([]int, n)
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d entries, want %d", ErrNotPermutationMatrix, i, len(row), n)
		}
		ones := 0
		for j, v := range row {
			switch v {
			case 0:
			case 1:
				ones++
				cols[j]++
			default:
				return fmt.Errorf("%w: entry (%d, %d) is %d", ErrNotPermutationMatrix, i, j, v)
			}
		}
		if ones != 1 {
			return fmt.Errorf("%w: row %d has %d ones", ErrNotPermutationMatrix, i, ones)
		}
	}
	for j, ones := range cols {
		if ones != 1 {
			return fmt.Errorf("%w: column %d has %d ones", ErrNotPermutationMatrix, j, ones)
		}
	}
	return nil
}

// Permutation returns the index form of m, validating it first.
func (m Matrix) Permutation() (Permutation, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	p := make(Permutation, len(m))
	for i, row := range m {
		for j, v := range row {
			if v == 1 {
				p[i] = j
			}
		}
	}
	return p, nil
}

// PermuteMatrix reorders the columns of the 6 row form of a deck:
// permuted[row][col] = original[row][perm[col]]. Each card keeps its six
// coordinates together.
func PermuteMatrix[E any](rows [deck.NumRows][]E, perm Permutation) ([deck.NumRows][]E, error) {
	var out [deck.NumRows][]E
	if err := perm.Validate(); err != nil {
		return out, err
	}
	for r := range rows {
		if len(rows[r]) != len(perm) {
			return out, fmt.Errorf("%w: row %d has %d cards, permutation has %d", deck.ErrInvalidSize, r, len(rows[r]), len(perm))
		}
		out[r] = make([]E, len(perm))
		for col, src := range perm {
			out[r][col] = rows[r][src]
		}
	}
	return out, nil
}

// Apply returns the deck whose card i is card perm[i] of d.
func Apply[E any](d deck.Deck[E], perm Permutation) (deck.Deck[E], error) {
	if len(perm) != d.Len() {
		return deck.Deck[E]{}, fmt.Errorf("%w: %d cards, permutation has %d", deck.ErrInvalidSize, d.Len(), len(perm))
	}
	if err := perm.Validate(); err != nil {
		return deck.Deck[E]{}, err
	}
	cards := make([]deck.Card[E], len(perm))
	for i, src := range perm {
		cards[i] = d.Card(src)
	}
	return deck.New(cards), nil
}

func randInt(rand io.Reader, n int) (int, error) {
	v, err := crand.Int(rand, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
