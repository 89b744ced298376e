package elgamal

import (
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/bandersnatch"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
)

const (
	// windowBits is the size of the windows of the fixed base table.
	windowBits = 4
	// scalarBits covers any element of the BLS12-381 scalar field; the
	// decomposition is padded to a multiple of windowBits.
	scalarBits = 255
	numWindows = (scalarBits + windowBits - 1) / windowBits
)

// fixedBaseTable holds precomputed multiples of the Bandersnatch base point
// G. Each entry fixedBaseTable[i][v] contains [v * 2^(4*i)] * G in affine
// coordinates. Initialized lazily on first use.
var (
	fixedBaseTable     [numWindows][1 << windowBits][2]*big.Int
	fixedBaseTableOnce sync.Once
)

func initFixedBaseTable() {
	params := bandersnatch.GetEdwardsCurve()
	for i := 0; i < numWindows; i++ {
		fixedBaseTable[i][0] = [2]*big.Int{big.NewInt(0), big.NewInt(1)}
		// windowMultiplier = 2^(4*i)
		windowMultiplier := new(big.Int).Lsh(big.NewInt(1), uint(windowBits*i))
		for j := 1; j < 1<<windowBits; j++ {
			scalar := new(big.Int).Mul(big.NewInt(int64(j)), windowMultiplier)
			var point bandersnatch.PointAffine
			point.ScalarMultiplication(&params.Base, scalar)
			fixedBaseTable[i][j] = [2]*big.Int{point.X.BigInt(new(big.Int)), point.Y.BigInt(new(big.Int))}
		}
	}
}

// FixedBaseScalarMul returns [scalar]G for the Bandersnatch base point using
// a 4-bit window table: the scalar is split into nibbles, each nibble selects
// a precomputed point with nested Lookup2 and the selections are added up.
func FixedBaseScalarMul(api frontend.API, scalar frontend.Variable) (twistededwards.Point, error) {
	fixedBaseTableOnce.Do(initFixedBaseTable)

	curve, err := twistededwards.NewEdCurve(api, CurveID)
	if err != nil {
		return twistededwards.Point{}, err
	}
	bits := api.ToBinary(scalar, scalarBits)
	// pad the last window with constant zero bits
	for len(bits) < numWindows*windowBits {
		bits = append(bits, 0)
	}

	var res twistededwards.Point
	for i := 0; i < numWindows; i++ {
		table := fixedBaseTable[i]
		nibble := bits[i*windowBits : (i+1)*windowBits]

		var xs, ys [1 << windowBits]frontend.Variable
		for j := range table {
			xs[j] = table[j][0]
			ys[j] = table[j][1]
		}
		contrib := twistededwards.Point{
			X: lookup16(api, nibble, xs),
			Y: lookup16(api, nibble, ys),
		}
		if i == 0 {
			// first window initializes the result
			res = contrib
			continue
		}
		// the addition law is complete, adding the identity for a zero
		// nibble is harmless
		res = curve.Add(res, contrib)
	}
	return res, nil
}

// lookup16 selects values[b0 + 2·b1 + 4·b2 + 8·b3].
func lookup16(api frontend.API, b []frontend.Variable, values [16]frontend.Variable) frontend.Variable {
	v0 := api.Lookup2(b[0], b[1], values[0], values[1], values[2], values[3])
	v1 := api.Lookup2(b[0], b[1], values[4], values[5], values[6], values[7])
	v2 := api.Lookup2(b[0], b[1], values[8], values[9], values[10], values[11])
	v3 := api.Lookup2(b[0], b[1], values[12], values[13], values[14], values[15])
	return api.Lookup2(b[2], b[3], v0, v1, v2, v3)
}
