package prover

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/gnark-mental-poker/circuits"
	"github.com/vocdoni/gnark-mental-poker/deck"
	"github.com/vocdoni/gnark-mental-poker/utils"
)

// ErrInvalidInput is returned for inputs that do not match the circuit
// schema: wrong lengths, non decimal strings or values out of range.
var ErrInvalidInput = errors.New("prover: invalid circuit input")

// ShuffleInputs is the input schema of the shuffle_encrypt circuit. Every
// value is the decimal string of a field element and the array lengths are
// those of the deck size the circuit was compiled for.
type ShuffleInputs struct {
	PK       [2]string              `json:"pk"`
	A        [][]string             `json:"A"`
	R        []string               `json:"R"`
	Original [deck.NumRows][]string `json:"original"`
	Permuted [deck.NumRows][]string `json:"permuted"`
}

// DecryptInputs is the input schema of the decrypt circuit.
type DecryptInputs struct {
	C0       [3]string `json:"c0"`
	SK       string    `json:"sk"`
	PK       [2]string `json:"pk"`
	Expected [3]string `json:"expected"`
}

// NewShuffleInputs encodes a circuit assignment into the input schema.
func NewShuffleInputs(w *circuits.ShuffleEncrypt) (*ShuffleInputs, error) {
	in := &ShuffleInputs{
		A: make([][]string, len(w.A)),
		R: make([]string, len(w.R)),
	}
	var err error
	for i := range in.PK {
		if in.PK[i], err = decimal(w.PK[i]); err != nil {
			return nil, err
		}
	}
	for i := range w.A {
		in.A[i] = make([]string, len(w.A[i]))
		for j := range w.A[i] {
			if in.A[i][j], err = decimal(w.A[i][j]); err != nil {
				return nil, err
			}
		}
	}
	for i := range w.R {
		if in.R[i], err = decimal(w.R[i]); err != nil {
			return nil, err
		}
	}
	for r := 0; r < deck.NumRows; r++ {
		in.Original[r] = make([]string, len(w.Original[r]))
		in.Permuted[r] = make([]string, len(w.Permuted[r]))
		for i := range w.Original[r] {
			if in.Original[r][i], err = decimal(w.Original[r][i]); err != nil {
				return nil, err
			}
		}
		for i := range w.Permuted[r] {
			if in.Permuted[r][i], err = decimal(w.Permuted[r][i]); err != nil {
				return nil, err
			}
		}
	}
	return in, nil
}

// Assignment parses the inputs into a circuit assignment for decks of n
// cards. Lengths and ranges are checked before anything is proved.
func (in *ShuffleInputs) Assignment(n int) (*circuits.ShuffleEncrypt, error) {
	q := circuits.Curve.ScalarField()
	w := circuits.NewShuffleEncrypt(n)
	pk, err := utils.DecimalsToBig(in.PK[:], 2, q)
	if err != nil {
		return nil, fmt.Errorf("%w: pk: %w", ErrInvalidInput, err)
	}
	w.PK = [2]frontend.Variable{pk[0], pk[1]}
	if len(in.A) != n {
		return nil, fmt.Errorf("%w: A: expected %d rows, got %d", ErrInvalidInput, n, len(in.A))
	}
	for i := range in.A {
		// matrix entries are bits
		row, err := utils.DecimalsToBig(in.A[i], n, big.NewInt(2))
		if err != nil {
			return nil, fmt.Errorf("%w: A[%d]: %w", ErrInvalidInput, i, err)
		}
		for j, v := range row {
			w.A[i][j] = v
		}
	}
	rs, err := utils.DecimalsToBig(in.R, n, q)
	if err != nil {
		return nil, fmt.Errorf("%w: R: %w", ErrInvalidInput, err)
	}
	for i, v := range rs {
		w.R[i] = v
	}
	for r := 0; r < deck.NumRows; r++ {
		orig, err := utils.DecimalsToBig(in.Original[r], n, q)
		if err != nil {
			return nil, fmt.Errorf("%w: original[%d]: %w", ErrInvalidInput, r, err)
		}
		perm, err := utils.DecimalsToBig(in.Permuted[r], n, q)
		if err != nil {
			return nil, fmt.Errorf("%w: permuted[%d]: %w", ErrInvalidInput, r, err)
		}
		for i := 0; i < n; i++ {
			w.Original[r][i] = orig[i]
			w.Permuted[r][i] = perm[i]
		}
	}
	return w, nil
}

// NewDecryptInputs encodes a circuit assignment into the input schema.
func NewDecryptInputs(w *circuits.Decrypt) (*DecryptInputs, error) {
	in := &DecryptInputs{}
	var err error
	for i := range in.C0 {
		if in.C0[i], err = decimal(w.C0[i]); err != nil {
			return nil, err
		}
		if in.Expected[i], err = decimal(w.Expected[i]); err != nil {
			return nil, err
		}
	}
	for i := range in.PK {
		if in.PK[i], err = decimal(w.PK[i]); err != nil {
			return nil, err
		}
	}
	if in.SK, err = decimal(w.SK); err != nil {
		return nil, err
	}
	return in, nil
}

// Assignment parses the inputs into a circuit assignment.
func (in *DecryptInputs) Assignment() (*circuits.Decrypt, error) {
	q := circuits.Curve.ScalarField()
	c0, err := utils.DecimalsToBig(in.C0[:], 3, q)
	if err != nil {
		return nil, fmt.Errorf("%w: c0: %w", ErrInvalidInput, err)
	}
	expected, err := utils.DecimalsToBig(in.Expected[:], 3, q)
	if err != nil {
		return nil, fmt.Errorf("%w: expected: %w", ErrInvalidInput, err)
	}
	pk, err := utils.DecimalsToBig(in.PK[:], 2, q)
	if err != nil {
		return nil, fmt.Errorf("%w: pk: %w", ErrInvalidInput, err)
	}
	sk, err := utils.DecimalToBig(in.SK, q)
	if err != nil {
		return nil, fmt.Errorf("%w: sk: %w", ErrInvalidInput, err)
	}
	return &circuits.Decrypt{
		C0:       [3]frontend.Variable{c0[0], c0[1], c0[2]},
		SK:       sk,
		PK:       [2]frontend.Variable{pk[0], pk[1]},
		Expected: [3]frontend.Variable{expected[0], expected[1], expected[2]},
	}, nil
}

// decimal encodes the value of an assigned variable.
func decimal(v frontend.Variable) (string, error) {
	switch v := v.(type) {
	case *big.Int:
		return utils.BigToDecimal(v), nil
	case int:
		return big.NewInt(int64(v)).String(), nil
	case uint8:
		return big.NewInt(int64(v)).String(), nil
	case uint64:
		return new(big.Int).SetUint64(v).String(), nil
	case string:
		return v, nil
	}
	return "", fmt.Errorf("%w: unsupported value %T", ErrInvalidInput, v)
}
