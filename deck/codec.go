package deck

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/field"
	"github.com/vocdoni/gnark-mental-poker/utils"
)

// CompressedJSON is the JSON wire form of a compressed deck. Every value is a
// decimal string and the selector array always has two entries, one per
// ciphertext half.
type CompressedJSON struct {
	X0       []string  `json:"x0"`
	X1       []string  `json:"x1"`
	Selector [2]string `json:"selector"`
}

// compressedCBOR is the compact binary wire form: big-endian field elements.
type compressedCBOR struct {
	X0       [][]byte  `cbor:"1,keyasint"`
	X1       [][]byte  `cbor:"2,keyasint"`
	Selector [2][]byte `cbor:"3,keyasint"`
}

// ToJSON converts the compressed deck to its decimal-string form.
func ToJSON[E any](f field.Field[E], cd Compressed[E]) CompressedJSON {
	out := CompressedJSON{
		X0: make([]string, len(cd.X0)),
		X1: make([]string, len(cd.X1)),
	}
	for i := range cd.X0 {
		out.X0[i] = field.String(f, cd.X0[i])
	}
	for i := range cd.X1 {
		out.X1[i] = field.String(f, cd.X1[i])
	}
	for i, s := range cd.Selectors {
		out.Selector[i] = utils.BigToDecimal(s)
	}
	return out
}

// FromJSON parses and validates the decimal-string form of a compressed deck
// of exactly n cards.
func FromJSON[E any](f field.Field[E], cj CompressedJSON, n int) (Compressed[E], error) {
	q := f.Modulus()
	x0, err := utils.DecimalsToBig(cj.X0, n, q)
	if err != nil {
		return Compressed[E]{}, fmt.Errorf("%w: x0: %v", ErrInvalidSize, err)
	}
	x1, err := utils.DecimalsToBig(cj.X1, n, q)
	if err != nil {
		return Compressed[E]{}, fmt.Errorf("%w: x1: %v", ErrInvalidSize, err)
	}
	var sel [2]*big.Int
	for i, s := range cj.Selector {
		if sel[i], err = utils.DecimalToBig(s, q); err != nil {
			return Compressed[E]{}, fmt.Errorf("%w: selector %d: %v", curve.ErrMalformed, i, err)
		}
	}
	return newCompressed(f, x0, x1, sel)
}

// EncodeJSON marshals the compressed deck as JSON.
func EncodeJSON[E any](f field.Field[E], cd Compressed[E]) ([]byte, error) {
	return json.Marshal(ToJSON(f, cd))
}

// DecodeJSON unmarshals a JSON compressed deck of n cards.
func DecodeJSON[E any](f field.Field[E], data []byte, n int) (Compressed[E], error) {
	var cj CompressedJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return Compressed[E]{}, err
	}
	return FromJSON(f, cj, n)
}

// EncodeCBOR marshals the compressed deck in its compact binary form.
func EncodeCBOR[E any](f field.Field[E], cd Compressed[E]) ([]byte, error) {
	enc := compressedCBOR{
		X0: make([][]byte, len(cd.X0)),
		X1: make([][]byte, len(cd.X1)),
	}
	for i := range cd.X0 {
		enc.X0[i] = f.ToBig(cd.X0[i]).Bytes()
	}
	for i := range cd.X1 {
		enc.X1[i] = f.ToBig(cd.X1[i]).Bytes()
	}
	for i, s := range cd.Selectors {
		if s == nil {
			return nil, fmt.Errorf("%w: missing selector", curve.ErrMalformed)
		}
		enc.Selector[i] = s.Bytes()
	}
	return cbor.Marshal(enc)
}

// DecodeCBOR unmarshals a binary compressed deck of n cards.
func DecodeCBOR[E any](f field.Field[E], data []byte, n int) (Compressed[E], error) {
	var dec compressedCBOR
	if err := cbor.Unmarshal(data, &dec); err != nil {
		return Compressed[E]{}, err
	}
	if len(dec.X0) != n || len(dec.X1) != n {
		return Compressed[E]{}, fmt.Errorf("%w: expected %d cards, got %d and %d",
			ErrInvalidSize, n, len(dec.X0), len(dec.X1))
	}
	toBig := func(bs [][]byte) []*big.Int {
		out := make([]*big.Int, len(bs))
		for i, b := range bs {
			out[i] = new(big.Int).SetBytes(b)
		}
		return out
	}
	sel := [2]*big.Int{new(big.Int).SetBytes(dec.Selector[0]), new(big.Int).SetBytes(dec.Selector[1])}
	return newCompressed(f, toBig(dec.X0), toBig(dec.X1), sel)
}

// newCompressed checks ranges and that the selectors carry no bit beyond the
// number of cards.
func newCompressed[E any](f field.Field[E], x0, x1 []*big.Int, sel [2]*big.Int) (Compressed[E], error) {
	n := len(x0)
	if n > utils.MaxPackedBits {
		return Compressed[E]{}, fmt.Errorf("%w: %d cards exceed %d selector bits", ErrInvalidSize, n, utils.MaxPackedBits)
	}
	cd := Compressed[E]{X0: make([]E, n), X1: make([]E, n), Selectors: sel}
	var err error
	for i := 0; i < n; i++ {
		if cd.X0[i], err = f.FromBig(x0[i]); err != nil {
			return Compressed[E]{}, fmt.Errorf("x0[%d]: %w", i, err)
		}
		if cd.X1[i], err = f.FromBig(x1[i]); err != nil {
			return Compressed[E]{}, fmt.Errorf("x1[%d]: %w", i, err)
		}
	}
	for i, s := range sel {
		if _, err := utils.Num2Bits(s, n); err != nil {
			return Compressed[E]{}, fmt.Errorf("%w: selector %d: %v", curve.ErrMalformed, i, err)
		}
	}
	return cd, nil
}
