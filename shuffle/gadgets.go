package shuffle

import (
	"github.com/consensys/gnark/frontend"
)

// AssertPermutationMatrix constrains a to be an n×n permutation matrix:
// every entry is boolean and every row and column sums to one.
func AssertPermutationMatrix(api frontend.API, a [][]frontend.Variable) {
	n := len(a)
	cols := make([]frontend.Variable, n)
	for j := range cols {
		cols[j] = 0
	}
	for i := range a {
		if len(a[i]) != n {
			panic("shuffle: matrix is not square")
		}
		row := frontend.Variable(0)
		for j, v := range a[i] {
			api.AssertIsBoolean(v)
			row = api.Add(row, v)
			cols[j] = api.Add(cols[j], v)
		}
		api.AssertIsEqual(row, 1)
	}
	for j := range cols {
		api.AssertIsEqual(cols[j], 1)
	}
}

// ApplyMatrix returns out[i] = sum_j a[i][j]·values[j]. With a permutation
// matrix it selects values[perm[i]].
func ApplyMatrix(api frontend.API, a [][]frontend.Variable, values []frontend.Variable) []frontend.Variable {
	out := make([]frontend.Variable, len(a))
	for i := range a {
		acc := frontend.Variable(0)
		for j, v := range values {
			acc = api.Add(acc, api.Mul(a[i][j], v))
		}
		out[i] = acc
	}
	return out
}

// IsPermutation returns 1 if perm holds every index of [0, n) exactly once
// and 0 otherwise, n being len(perm). Duplicates and out of range entries
// leave some index without a match, so the check needs no range proof and
// never makes the circuit unsatisfiable.
func IsPermutation(api frontend.API, perm []frontend.Variable) frontend.Variable {
	valid := frontend.Variable(1)
	for v := range perm {
		count := frontend.Variable(0)
		for _, p := range perm {
			count = api.Add(count, api.IsZero(api.Sub(p, v)))
		}
		valid = api.And(valid, api.IsZero(api.Sub(count, 1)))
	}
	return valid
}
