// Package prover drives the Groth16 prover for the game circuits. It turns
// compressed decks and keys into circuit inputs, produces proofs and verifies
// them against the public values they must attest.
package prover

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/vocdoni/gnark-mental-poker/circuits"
	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/deck"
	"github.com/vocdoni/gnark-mental-poker/elgamal"
	"github.com/vocdoni/gnark-mental-poker/shuffle"
)

// ErrCurveMismatch is returned when the curve of the values differs from
// the curve the circuits are compiled for.
var ErrCurveMismatch = errors.New("prover: curve does not match the circuit curve")

// Adapter generates and verifies the proofs of a game: shuffles of decks
// of a fixed size and decryption shares.
type Adapter struct {
	curve   *curve.Curve[fr.Element]
	shuffle *Groth16
	decrypt *Groth16
}

// NewAdapter checks c is the circuit curve and returns an adapter using the
// given artifacts. Either may be nil if the corresponding proofs are never
// needed.
func NewAdapter(c *curve.Curve[fr.Element], shuffleArtifacts, decryptArtifacts *Artifacts) (*Adapter, error) {
	if err := CheckCurve(c); err != nil {
		return nil, err
	}
	a := &Adapter{curve: c}
	if shuffleArtifacts != nil {
		if shuffleArtifacts.ID != circuits.ShuffleEncryptID {
			return nil, fmt.Errorf("%w: %s artifacts given for %s", ErrUnknownCircuit, shuffleArtifacts.ID, circuits.ShuffleEncryptID)
		}
		a.shuffle = NewGroth16(shuffleArtifacts)
	}
	if decryptArtifacts != nil {
		if decryptArtifacts.ID != circuits.DecryptID {
			return nil, fmt.Errorf("%w: %s artifacts given for %s", ErrUnknownCircuit, decryptArtifacts.ID, circuits.DecryptID)
		}
		a.decrypt = NewGroth16(decryptArtifacts)
	}
	return a, nil
}

// CheckCurve returns ErrCurveMismatch unless c has the parameters of the
// in-circuit curve.
func CheckCurve(c *curve.Curve[fr.Element]) error {
	want := curve.Bandersnatch()
	got := c.Params()
	f := c.Field()
	if got.Field.Modulus().Cmp(want.Field.Modulus()) != 0 ||
		!f.Equal(got.A, want.A) || !f.Equal(got.D, want.D) ||
		!f.Equal(got.BaseX, want.BaseX) || !f.Equal(got.BaseY, want.BaseY) ||
		got.Order.Cmp(want.Order) != 0 {
		return fmt.Errorf("%w: %s", ErrCurveMismatch, got.Name)
	}
	return nil
}

// DeckSize returns the number of cards of the shuffle circuit, zero when
// the adapter has no shuffle artifacts.
func (a *Adapter) DeckSize() int {
	if a.shuffle == nil {
		return 0
	}
	return a.shuffle.Artifacts().Size
}

func (a *Adapter) shuffleBackend(n int) (*Groth16, error) {
	if a.shuffle == nil {
		return nil, fmt.Errorf("%w: no artifacts for %s", ErrUnknownCircuit, circuits.ShuffleEncryptID)
	}
	if size := a.DeckSize(); n != size {
		return nil, fmt.Errorf("%w: deck of %d cards, circuit compiled for %d", ErrInvalidInput, n, size)
	}
	return a.shuffle, nil
}

func (a *Adapter) decryptBackend() (*Groth16, error) {
	if a.decrypt == nil {
		return nil, fmt.Errorf("%w: no artifacts for %s", ErrUnknownCircuit, circuits.DecryptID)
	}
	return a.decrypt, nil
}

// decompress expands a compressed deck, which checks every point is on the
// curve, and verifies the points are in the prime order subgroup.
func (a *Adapter) decompress(cd deck.Compressed[fr.Element]) (deck.Deck[fr.Element], error) {
	d, err := deck.Decompress(a.curve, cd)
	if err != nil {
		return deck.Deck[fr.Element]{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := d.Validate(a.curve); err != nil {
		return deck.Deck[fr.Element]{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	for i := 0; i < d.Len(); i++ {
		if !a.curve.InSubgroup(d.Card(i).C0) || !a.curve.InSubgroup(d.Card(i).C1) {
			return deck.Deck[fr.Element]{}, fmt.Errorf("%w: card %d is not in the prime order subgroup", ErrInvalidInput, i)
		}
	}
	return d, nil
}

func (a *Adapter) checkPoint(name string, p curve.Point[fr.Element]) error {
	if !a.curve.IsOnCurvePoint(p) || !a.curve.InSubgroup(p) {
		return fmt.Errorf("%w: %s: %w", ErrInvalidInput, name, curve.ErrNotOnCurve)
	}
	return nil
}

// ShuffleAssignment builds the witness proving that permuted is original
// permuted by perm and re-encrypted under pk with r. Both decks are
// decompressed and validated first.
func (a *Adapter) ShuffleAssignment(pk curve.Point[fr.Element], perm shuffle.Permutation, r []*big.Int,
	original, permuted deck.Compressed[fr.Element],
) (*circuits.ShuffleEncrypt, error) {
	if err := a.checkPoint("pk", pk); err != nil {
		return nil, err
	}
	if err := perm.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	orig, err := a.decompress(original)
	if err != nil {
		return nil, err
	}
	out, err := a.decompress(permuted)
	if err != nil {
		return nil, err
	}
	for i, v := range r {
		if v == nil || v.Sign() < 0 || v.Cmp(a.curve.Order()) >= 0 {
			return nil, fmt.Errorf("%w: R[%d] out of range", ErrInvalidInput, i)
		}
	}
	w, err := circuits.AssignShuffleEncrypt(a.curve, pk, perm.Matrix(), r, orig, out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return w, nil
}

// GenerateShuffleEncryptProof proves that permuted is a shuffle of original
// under pk without revealing perm or r. The inputs go through the decimal
// input schema exactly as an external prover would receive them.
func (a *Adapter) GenerateShuffleEncryptProof(ctx context.Context, pk curve.Point[fr.Element], perm shuffle.Permutation,
	r []*big.Int, original, permuted deck.Compressed[fr.Element],
) (*Proof, error) {
	backend, err := a.shuffleBackend(original.Len())
	if err != nil {
		return nil, err
	}
	w, err := a.ShuffleAssignment(pk, perm, r, original, permuted)
	if err != nil {
		return nil, err
	}
	inputs, err := NewShuffleInputs(w)
	if err != nil {
		return nil, err
	}
	assignment, err := inputs.Assignment(backend.Artifacts().Size)
	if err != nil {
		return nil, err
	}
	return backend.Prove(ctx, assignment)
}

// GenerateShuffleEncryptProofAsync runs GenerateShuffleEncryptProof in the
// background.
func (a *Adapter) GenerateShuffleEncryptProofAsync(ctx context.Context, pk curve.Point[fr.Element], perm shuffle.Permutation,
	r []*big.Int, original, permuted deck.Compressed[fr.Element],
) *Task {
	return Go(func() (*Proof, error) {
		return a.GenerateShuffleEncryptProof(ctx, pk, perm, r, original, permuted)
	})
}

// VerifyShuffleEncryptProof checks the proof attests that permuted is a
// shuffle of original under pk.
func (a *Adapter) VerifyShuffleEncryptProof(p *Proof, pk curve.Point[fr.Element], original, permuted deck.Compressed[fr.Element]) error {
	backend, err := a.shuffleBackend(original.Len())
	if err != nil {
		return err
	}
	if err := a.checkPoint("pk", pk); err != nil {
		return err
	}
	orig, err := a.decompress(original)
	if err != nil {
		return err
	}
	out, err := a.decompress(permuted)
	if err != nil {
		return err
	}
	n := orig.Len()
	// secret fields are not part of the public witness, any valid filler
	// keeps the assignment well formed
	zeros := make([]*big.Int, n)
	for i := range zeros {
		zeros[i] = new(big.Int)
	}
	public, err := circuits.AssignShuffleEncrypt(a.curve, pk, shuffle.Identity(n).Matrix(), zeros, orig, out)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return backend.VerifyPublicSignals(p, public)
}

// GenerateDecryptProof computes the decryption share [sk]c0 and proves it
// was computed with the secret key of pk.
func (a *Adapter) GenerateDecryptProof(ctx context.Context, c0 curve.Point[fr.Element], sk *big.Int,
	pk curve.Point[fr.Element],
) (*Proof, curve.Point[fr.Element], error) {
	backend, err := a.decryptBackend()
	if err != nil {
		return nil, curve.Point[fr.Element]{}, err
	}
	if err := a.checkPoint("c0", c0); err != nil {
		return nil, curve.Point[fr.Element]{}, err
	}
	if err := a.checkPoint("pk", pk); err != nil {
		return nil, curve.Point[fr.Element]{}, err
	}
	if sk == nil || sk.Sign() <= 0 || sk.Cmp(a.curve.Order()) >= 0 {
		return nil, curve.Point[fr.Element]{}, fmt.Errorf("%w: sk out of range", ErrInvalidInput)
	}
	c0 = a.curve.Normalize(c0)
	share := elgamal.DecryptionShare(a.curve, deck.Card[fr.Element]{C0: c0}, sk)
	inputs, err := NewDecryptInputs(circuits.AssignDecrypt(a.curve, c0, sk, pk, share))
	if err != nil {
		return nil, curve.Point[fr.Element]{}, err
	}
	assignment, err := inputs.Assignment()
	if err != nil {
		return nil, curve.Point[fr.Element]{}, err
	}
	proof, err := backend.Prove(ctx, assignment)
	if err != nil {
		return nil, curve.Point[fr.Element]{}, err
	}
	return proof, share, nil
}

// GenerateDecryptProofAsync runs GenerateDecryptProof in the background.
// The share is part of the proof public signals and is recomputed by the
// verifier side from the protocol state.
func (a *Adapter) GenerateDecryptProofAsync(ctx context.Context, c0 curve.Point[fr.Element], sk *big.Int,
	pk curve.Point[fr.Element],
) *Task {
	return Go(func() (*Proof, error) {
		p, _, err := a.GenerateDecryptProof(ctx, c0, sk, pk)
		return p, err
	})
}

// VerifyDecryptProof checks the proof attests share = [sk]c0 for the secret
// key of pk.
func (a *Adapter) VerifyDecryptProof(p *Proof, c0, pk, share curve.Point[fr.Element]) error {
	backend, err := a.decryptBackend()
	if err != nil {
		return err
	}
	for name, pt := range map[string]curve.Point[fr.Element]{"c0": c0, "pk": pk, "share": share} {
		if err := a.checkPoint(name, pt); err != nil {
			return err
		}
	}
	// both sides use normalized coordinates
	public := circuits.AssignDecrypt(a.curve, a.curve.Normalize(c0), big.NewInt(0), pk, a.curve.Normalize(share))
	return backend.VerifyPublicSignals(p, public)
}
