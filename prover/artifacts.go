package prover

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/vocdoni/gnark-mental-poker/circuits"
	"github.com/vocdoni/gnark-mental-poker/log"
)

// ErrUnknownCircuit is returned for a circuit id without a definition.
var ErrUnknownCircuit = errors.New("prover: unknown circuit")

const (
	ccsExt = ".ccs"
	pkExt  = ".pk"
	vkExt  = ".vk"
)

// Artifacts are the compiled constraint system of a circuit and its Groth16
// keys. They play the role of the circuit and proving key files an external
// prover is fed with, and must be the same for every participant.
type Artifacts struct {
	ID   circuits.ID
	Size int
	CCS  constraint.ConstraintSystem
	PK   groth16.ProvingKey
	VK   groth16.VerifyingKey
}

// Placeholder returns the empty circuit definition for id. size is the
// number of cards, ignored by the decrypt circuit.
func Placeholder(id circuits.ID, size int) (frontend.Circuit, error) {
	switch id {
	case circuits.ShuffleEncryptID:
		if size <= 0 {
			return nil, fmt.Errorf("%w: invalid deck size %d", ErrInvalidInput, size)
		}
		return circuits.NewShuffleEncrypt(size), nil
	case circuits.DecryptID:
		return &circuits.Decrypt{}, nil
	case circuits.PermutationCheckID:
		if size <= 0 {
			return nil, fmt.Errorf("%w: invalid size %d", ErrInvalidInput, size)
		}
		return circuits.NewPermutationCheck(size), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCircuit, id)
}

// Compile compiles the circuit id for size cards.
func Compile(id circuits.ID, size int) (constraint.ConstraintSystem, error) {
	placeholder, err := Placeholder(id, size)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	ccs, err := frontend.Compile(circuits.Curve.ScalarField(), r1cs.NewBuilder, placeholder)
	if err != nil {
		return nil, fmt.Errorf("prover: compiling %s: %w", id, err)
	}
	log.Debugw("circuit compiled", "circuit", string(id), "size", size,
		"constraints", ccs.GetNbConstraints(), "elapsed", time.Since(start))
	return ccs, nil
}

// Setup compiles the circuit and runs a Groth16 setup for it. The setup is
// not a ceremony: whoever runs it can forge proofs, so production keys must
// come from a trusted source and be loaded with LoadArtifacts.
func Setup(id circuits.ID, size int) (*Artifacts, error) {
	ccs, err := Compile(id, size)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("prover: setup of %s: %w", id, err)
	}
	log.Debugw("groth16 setup done", "circuit", string(id), "size", size, "elapsed", time.Since(start))
	if id == circuits.DecryptID {
		size = 0
	}
	return &Artifacts{ID: id, Size: size, CCS: ccs, PK: pk, VK: vk}, nil
}

// basename returns the file name prefix of the artifacts of id and size.
func basename(id circuits.ID, size int) string {
	if size == 0 {
		return string(id)
	}
	return fmt.Sprintf("%s_%d", id, size)
}

// Save writes the artifacts to dir, one file per component.
func (a *Artifacts) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("prover: %w", err)
	}
	base := filepath.Join(dir, basename(a.ID, a.Size))
	for ext, w := range map[string]io.WriterTo{ccsExt: a.CCS, pkExt: a.PK, vkExt: a.VK} {
		var buf bytes.Buffer
		if _, err := w.WriteTo(&buf); err != nil {
			return fmt.Errorf("prover: encoding %s%s: %w", a.ID, ext, err)
		}
		if err := os.WriteFile(base+ext, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("prover: %w", err)
		}
	}
	return nil
}

// LoadArtifacts reads the artifacts of id and size saved to dir.
func LoadArtifacts(dir string, id circuits.ID, size int) (*Artifacts, error) {
	if id == circuits.DecryptID {
		size = 0
	}
	base := filepath.Join(dir, basename(id, size))
	files := make(map[string]*os.File, 3)
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	for _, ext := range []string{ccsExt, pkExt, vkExt} {
		f, err := os.Open(base + ext)
		if err != nil {
			return nil, fmt.Errorf("prover: %w", err)
		}
		files[ext] = f
	}
	return ReadArtifacts(id, size, files[ccsExt], files[pkExt], files[vkExt])
}

// ReadArtifacts decodes artifacts from their serialized components.
func ReadArtifacts(id circuits.ID, size int, ccsR, pkR, vkR io.Reader) (*Artifacts, error) {
	if _, err := Placeholder(id, max(size, 1)); err != nil {
		return nil, err
	}
	a := &Artifacts{
		ID:   id,
		Size: size,
		CCS:  groth16.NewCS(circuits.Curve),
		PK:   groth16.NewProvingKey(circuits.Curve),
		VK:   groth16.NewVerifyingKey(circuits.Curve),
	}
	if _, err := a.CCS.ReadFrom(ccsR); err != nil {
		return nil, fmt.Errorf("prover: decoding %s constraint system: %w", id, err)
	}
	if _, err := a.PK.ReadFrom(pkR); err != nil {
		return nil, fmt.Errorf("prover: decoding %s proving key: %w", id, err)
	}
	if _, err := a.VK.ReadFrom(vkR); err != nil {
		return nil, fmt.Errorf("prover: decoding %s verifying key: %w", id, err)
	}
	return a, nil
}
