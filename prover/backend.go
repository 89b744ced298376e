package prover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/gnark-mental-poker/circuits"
	"github.com/vocdoni/gnark-mental-poker/log"
	"github.com/vocdoni/gnark-mental-poker/utils"
)

var (
	// ErrProofFailed is returned when no proof could be produced, which
	// includes witnesses that do not satisfy the circuit.
	ErrProofFailed = errors.New("prover: proof generation failed")
	// ErrVerifyFailed is returned for a proof that does not verify or does
	// not attest the expected public values.
	ErrVerifyFailed = errors.New("prover: proof verification failed")
)

// Proof is a Groth16 proof together with the public signals it attests.
type Proof struct {
	Circuit       circuits.ID `json:"circuit"`
	Proof         []byte      `json:"proof"`
	PublicSignals []string    `json:"publicSignals"`
}

// Groth16 proves and verifies one circuit with its artifacts.
type Groth16 struct {
	artifacts *Artifacts
}

// NewGroth16 returns a prover for the given artifacts.
func NewGroth16(a *Artifacts) *Groth16 {
	return &Groth16{artifacts: a}
}

// Artifacts returns the artifacts the prover was built with.
func (g *Groth16) Artifacts() *Artifacts { return g.artifacts }

// Prove computes a proof for the full assignment. Proving runs in its own
// goroutine; when ctx is done Prove returns ctx.Err() right away and the
// computation is left to finish in the background, its result discarded.
func (g *Groth16) Prove(ctx context.Context, assignment frontend.Circuit) (*Proof, error) {
	type result struct {
		proof *Proof
		err   error
	}
	done := make(chan result, 1)
	go func() {
		p, err := g.prove(assignment)
		done <- result{p, err}
	}()
	select {
	case <-ctx.Done():
		log.Warnw("proof abandoned", "circuit", string(g.artifacts.ID), "error", ctx.Err())
		return nil, ctx.Err()
	case r := <-done:
		return r.proof, r.err
	}
}

func (g *Groth16) prove(assignment frontend.Circuit) (*Proof, error) {
	start := time.Now()
	full, err := frontend.NewWitness(assignment, circuits.Curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("%w: building witness: %w", ErrProofFailed, err)
	}
	proof, err := groth16.Prove(g.artifacts.CCS, g.artifacts.PK, full)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrProofFailed, g.artifacts.ID, err)
	}
	public, err := full.Public()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProofFailed, err)
	}
	signals, err := witnessSignals(public)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProofFailed, err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: encoding proof: %w", ErrProofFailed, err)
	}
	log.Debugw("proof generated", "circuit", string(g.artifacts.ID), "elapsed", time.Since(start))
	return &Proof{Circuit: g.artifacts.ID, Proof: buf.Bytes(), PublicSignals: signals}, nil
}

// Verify checks the proof against its own public signals only.
func (g *Groth16) Verify(p *Proof) error {
	if p == nil {
		return fmt.Errorf("%w: no proof", ErrVerifyFailed)
	}
	if p.Circuit != g.artifacts.ID {
		return fmt.Errorf("%w: proof for %s checked against %s", ErrVerifyFailed, p.Circuit, g.artifacts.ID)
	}
	nbPublic := g.artifacts.CCS.GetNbPublicVariables() - 1
	if len(p.PublicSignals) != nbPublic {
		return fmt.Errorf("%w: %d public signals, circuit has %d", ErrVerifyFailed, len(p.PublicSignals), nbPublic)
	}
	values, err := utils.DecimalsToBig(p.PublicSignals, nbPublic, circuits.Curve.ScalarField())
	if err != nil {
		return fmt.Errorf("%w: public signals: %w", ErrVerifyFailed, err)
	}
	public, err := witness.New(circuits.Curve.ScalarField())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyFailed, err)
	}
	ch := make(chan any, len(values))
	for _, v := range values {
		ch <- v
	}
	close(ch)
	if err := public.Fill(nbPublic, 0, ch); err != nil {
		return fmt.Errorf("%w: public witness: %w", ErrVerifyFailed, err)
	}
	proof := groth16.NewProof(circuits.Curve)
	if _, err := proof.ReadFrom(bytes.NewReader(p.Proof)); err != nil {
		return fmt.Errorf("%w: decoding proof: %w", ErrVerifyFailed, err)
	}
	if err := groth16.Verify(proof, g.artifacts.VK, public); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrVerifyFailed, p.Circuit, err)
	}
	return nil
}

// VerifyPublicSignals verifies the proof and checks its public signals are
// the public part of assignment, so the proof attests those exact values.
func (g *Groth16) VerifyPublicSignals(p *Proof, assignment frontend.Circuit) error {
	expected, err := PublicSignals(assignment)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyFailed, err)
	}
	if p == nil || !slices.Equal(p.PublicSignals, expected) {
		return fmt.Errorf("%w: public signals do not match the expected values", ErrVerifyFailed)
	}
	return g.Verify(p)
}

// PublicSignals returns the decimal public values of an assignment in the
// order the circuit declares them. Secret fields may be left unset.
func PublicSignals(assignment frontend.Circuit) ([]string, error) {
	public, err := frontend.NewWitness(assignment, circuits.Curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return nil, fmt.Errorf("prover: public witness: %w", err)
	}
	return witnessSignals(public)
}

func witnessSignals(w witness.Witness) ([]string, error) {
	vec, ok := w.Vector().(fr.Vector)
	if !ok {
		return nil, fmt.Errorf("prover: unexpected witness vector %T", w.Vector())
	}
	out := make([]string, len(vec))
	for i := range vec {
		out[i] = utils.BigToDecimal(vec[i].BigInt(new(big.Int)))
	}
	return out, nil
}

// Task is a proof being generated in the background.
type Task struct {
	done  chan struct{}
	proof *Proof
	err   error
}

// Go starts fn in a new goroutine and returns the task tracking it.
func Go(fn func() (*Proof, error)) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.proof, t.err = fn()
	}()
	return t
}

// Done is closed once the task finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx is done. Abandoning the wait
// does not stop the task.
func (t *Task) Wait(ctx context.Context) (*Proof, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return t.proof, t.err
	}
}
