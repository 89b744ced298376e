// Package protocol drives a game through its states:
//
//	Initialized -> Encrypted -> Shuffled(k) -> PartiallyDecrypted(j) -> Revealed
//
// Shuffles and decryption shares are only accepted with a proof, shuffles go
// in player order and the shares of a card are applied in the order the
// public keys were aggregated. A card is revealed once every key holder
// removed their layer.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/deck"
	"github.com/vocdoni/gnark-mental-poker/elgamal"
	"github.com/vocdoni/gnark-mental-poker/log"
	"github.com/vocdoni/gnark-mental-poker/prover"
	"github.com/vocdoni/gnark-mental-poker/shuffle"
)

// State is the phase a game is in.
type State int

const (
	Initialized State = iota
	Encrypted
	Shuffled
	PartiallyDecrypted
	Revealed
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Encrypted:
		return "encrypted"
	case Shuffled:
		return "shuffled"
	case PartiallyDecrypted:
		return "partially-decrypted"
	case Revealed:
		return "revealed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrInvalidTransition is returned for an operation not allowed in the
	// current state.
	ErrInvalidTransition = errors.New("protocol: invalid transition")
	// ErrOutOfTurn is returned when a player acts before their turn.
	ErrOutOfTurn = errors.New("protocol: player out of turn")
	// ErrRejected is returned when a step or a registration is missing its
	// proof or the proof does not verify.
	ErrRejected = errors.New("protocol: step rejected")
)

// ShuffleStep is a shuffle of the current deck by one player, with its
// proof.
type ShuffleStep struct {
	Player int
	Deck   deck.Compressed[fr.Element]
	Proof  *prover.Proof
}

// Registration is the public key of a player with a proof that the player
// knows the matching secret key.
type Registration struct {
	PK    curve.Point[fr.Element]
	Proof *prover.Proof
}

// DecryptStep is the decryption share of one player for one card, with its
// proof.
type DecryptStep struct {
	Player int
	Card   int
	Share  curve.Point[fr.Element]
	Proof  *prover.Proof
}

// Game is the public state of a game, the same for every participant.
// It is not safe for concurrent use.
type Game struct {
	curve      *curve.Curve[fr.Element]
	adapter    *prover.Adapter
	opts       *elgamal.Options
	players    []curve.Point[fr.Element]
	key        curve.Point[fr.Element]
	table      *deck.Table[fr.Element]
	deck       deck.Deck[fr.Element]
	state      State
	shuffles   int
	shares     []int
	revealed   map[int]int
	transcript *transcript
}

// NewGame starts a game of n cards among the registered players, in turn
// order. Every registration proof is verified, so no player can pick a key
// that cancels the keys of the others. The adapter must hold shuffle
// artifacts for n cards.
func NewGame(c *curve.Curve[fr.Element], adapter *prover.Adapter, players []*Registration, n int,
	opts *elgamal.Options,
) (*Game, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: no players", ErrInvalidTransition)
	}
	if size := adapter.DeckSize(); size != n {
		return nil, fmt.Errorf("%w: deck of %d cards, shuffle circuit for %d", deck.ErrInvalidSize, n, size)
	}
	pks := make([]curve.Point[fr.Element], len(players))
	for i, reg := range players {
		if reg == nil || reg.Proof == nil {
			return nil, fmt.Errorf("%w: player %d is not registered", ErrRejected, i)
		}
		pk := reg.PK
		if !c.IsOnCurvePoint(pk) || !c.InSubgroup(pk) || c.IsNeutral(pk) {
			return nil, fmt.Errorf("%w: public key of player %d", curve.ErrNotOnCurve, i)
		}
		for j := 0; j < i; j++ {
			if c.Equal(pks[j], pk) {
				return nil, fmt.Errorf("%w: players %d and %d share a public key", ErrRejected, j, i)
			}
		}
		// pk = [sk]G, proven as the decryption share of G
		if err := adapter.VerifyDecryptProof(reg.Proof, c.Base(), pk, pk); err != nil {
			log.Warnw("registration rejected", "player", i, "error", err)
			return nil, fmt.Errorf("%w: registration of player %d: %w", ErrRejected, i, err)
		}
		pks[i] = c.Normalize(pk)
	}
	key := elgamal.Aggregate(c, pks...)
	if c.IsNeutral(key) {
		return nil, fmt.Errorf("%w: aggregated key is the neutral element", ErrRejected)
	}
	d, err := deck.Init(c, n)
	if err != nil {
		return nil, err
	}
	table, err := deck.NewTable(c, n)
	if err != nil {
		return nil, err
	}
	g := &Game{
		curve:      c,
		adapter:    adapter,
		opts:       opts,
		players:    pks,
		key:        key,
		table:      table,
		deck:       d,
		shares:     make([]int, n),
		revealed:   make(map[int]int),
		transcript: newTranscript(),
	}
	for _, pk := range g.players {
		x, y := c.AffineBig(pk)
		g.transcript.append("player", x.Bytes(), y.Bytes())
	}
	g.transcript.append("size", uint64Bytes(uint64(n)))
	return g, nil
}

// Curve returns the curve of the game.
func (g *Game) Curve() *curve.Curve[fr.Element] { return g.curve }

// Adapter returns the proof adapter of the game.
func (g *Game) Adapter() *prover.Adapter { return g.adapter }

// State returns the current phase.
func (g *Game) State() State { return g.state }

// Shuffles returns how many players have shuffled the deck.
func (g *Game) Shuffles() int { return g.shuffles }

// Players returns the number of players.
func (g *Game) Players() int { return len(g.players) }

// PublicKey returns the public key of player i.
func (g *Game) PublicKey(i int) curve.Point[fr.Element] { return g.players[i] }

// AggregatedKey returns the key the deck is encrypted under.
func (g *Game) AggregatedKey() curve.Point[fr.Element] { return g.key }

// Deck returns the current deck.
func (g *Game) Deck() deck.Deck[fr.Element] { return g.deck }

// Shares returns how many decryption shares card i has received.
func (g *Game) Shares(i int) int { return g.shares[i] }

// Transcript returns the digest of every accepted step so far.
func (g *Game) Transcript() [32]byte { return g.transcript.sum() }

// Encrypt applies the first layer of encryption under the aggregated key.
// The randomness is derived from the transcript, so every participant
// computes the same deck and no proof is needed; the layers that hide the
// cards come with the shuffles.
func (g *Game) Encrypt(ctx context.Context) error {
	if g.state != Initialized {
		return fmt.Errorf("%w: encrypt in state %s", ErrInvalidTransition, g.state)
	}
	rand := g.transcript.reader("encrypt")
	rs := make([]*big.Int, g.deck.Len())
	for i := range rs {
		r, err := elgamal.RandomScalar(g.curve, rand)
		if err != nil {
			return err
		}
		rs[i] = r
	}
	enc, err := elgamal.EncryptDeckWith(ctx, g.curve, g.key, g.deck, rs, g.opts)
	if err != nil {
		return err
	}
	if err := g.setDeck("encrypt", enc); err != nil {
		return err
	}
	g.state = Encrypted
	log.Debugw("deck encrypted", "cards", enc.Len())
	return nil
}

// NextShuffler returns the player expected to shuffle next, or -1 once
// every player shuffled.
func (g *Game) NextShuffler() int {
	if g.shuffles >= len(g.players) {
		return -1
	}
	return g.shuffles
}

// ApplyShuffle verifies the proof of step against the current deck and
// replaces the deck with the shuffled one.
func (g *Game) ApplyShuffle(step *ShuffleStep) error {
	if step == nil {
		return fmt.Errorf("%w: empty shuffle", ErrRejected)
	}
	if g.state != Encrypted && g.state != Shuffled {
		return fmt.Errorf("%w: shuffle in state %s", ErrInvalidTransition, g.state)
	}
	if step.Player != g.NextShuffler() {
		return fmt.Errorf("%w: player %d shuffled, expected %d", ErrOutOfTurn, step.Player, g.NextShuffler())
	}
	if step.Proof == nil {
		return fmt.Errorf("%w: shuffle of player %d has no proof", ErrRejected, step.Player)
	}
	current, err := deck.Compress(g.curve, g.deck)
	if err != nil {
		return err
	}
	if err := g.adapter.VerifyShuffleEncryptProof(step.Proof, g.key, current, step.Deck); err != nil {
		log.Warnw("shuffle rejected", "player", step.Player, "error", err)
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	next, err := deck.Decompress(g.curve, step.Deck)
	if err != nil {
		return err
	}
	if err := g.setDeck("shuffle", next, uint64Bytes(uint64(step.Player))); err != nil {
		return err
	}
	g.shuffles++
	g.state = Shuffled
	log.Infow("shuffle applied", "player", step.Player, "shuffles", g.shuffles)
	return nil
}

// NextDecrypter returns the player expected to provide the next share of
// card i, or -1 once every player did.
func (g *Game) NextDecrypter(i int) int {
	if g.shares[i] >= len(g.players) {
		return -1
	}
	return g.shares[i]
}

// ApplyDecryption verifies the proof of step and strips the share from the
// card. Every player must have shuffled first.
func (g *Game) ApplyDecryption(step *DecryptStep) error {
	if step == nil {
		return fmt.Errorf("%w: empty decryption share", ErrRejected)
	}
	if g.state < Shuffled || g.shuffles < len(g.players) {
		return fmt.Errorf("%w: decrypt in state %s after %d of %d shuffles",
			ErrInvalidTransition, g.state, g.shuffles, len(g.players))
	}
	if step.Card < 0 || step.Card >= g.deck.Len() {
		return fmt.Errorf("%w: card %d", deck.ErrInvalidCard, step.Card)
	}
	if step.Player != g.NextDecrypter(step.Card) {
		return fmt.Errorf("%w: player %d decrypted card %d, expected %d",
			ErrOutOfTurn, step.Player, step.Card, g.NextDecrypter(step.Card))
	}
	if step.Proof == nil {
		return fmt.Errorf("%w: share of player %d has no proof", ErrRejected, step.Player)
	}
	card := g.deck.Card(step.Card)
	if err := g.adapter.VerifyDecryptProof(step.Proof, card.C0, g.players[step.Player], step.Share); err != nil {
		log.Warnw("decryption share rejected", "player", step.Player, "card", step.Card, "error", err)
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	next := g.deck.With(step.Card, elgamal.ApplyShare(g.curve, card, step.Share))
	x, y := g.curve.AffineBig(step.Share)
	if err := g.setDeck("decrypt", next, uint64Bytes(uint64(step.Player)), uint64Bytes(uint64(step.Card)),
		x.Bytes(), y.Bytes()); err != nil {
		return err
	}
	g.shares[step.Card]++
	if g.state != Revealed {
		g.state = PartiallyDecrypted
	}
	log.Debugw("decryption share applied", "player", step.Player, "card", step.Card, "shares", g.shares[step.Card])
	return nil
}

// Reveal returns the index of the card at position i once all the key
// holders applied their share.
func (g *Game) Reveal(i int) (int, error) {
	if i < 0 || i >= g.deck.Len() {
		return 0, fmt.Errorf("%w: card %d", deck.ErrInvalidCard, i)
	}
	if g.shares[i] < len(g.players) {
		return 0, fmt.Errorf("%w: card %d has %d of %d shares", ErrInvalidTransition, i, g.shares[i], len(g.players))
	}
	if v, ok := g.revealed[i]; ok {
		return v, nil
	}
	v, err := g.table.Lookup(g.deck.Card(i).C1)
	if err != nil {
		return 0, err
	}
	g.revealed[i] = v
	g.transcript.append("reveal", uint64Bytes(uint64(i)), uint64Bytes(uint64(v)))
	g.state = Revealed
	log.Infow("card revealed", "position", i, "card", v)
	return v, nil
}

// setDeck replaces the deck and records it in the transcript in its
// compressed binary form.
func (g *Game) setDeck(label string, d deck.Deck[fr.Element], fields ...[]byte) error {
	cd, err := deck.Compress(g.curve, d)
	if err != nil {
		return err
	}
	data, err := deck.EncodeCBOR(g.curve.Field(), cd)
	if err != nil {
		return err
	}
	g.transcript.append(label, append(fields, data)...)
	g.deck = d
	return nil
}

// Player is a participant holding a secret key. The game public state is
// shared, the key is not.
type Player struct {
	Index int
	Keys  *elgamal.KeyPair[fr.Element]
	curve *curve.Curve[fr.Element]
	rand  io.Reader
}

// NewPlayer generates the key pair of the player at turn index. numBits
// bounds the secret key as in elgamal.KeyGen.
func NewPlayer(c *curve.Curve[fr.Element], index int, rand io.Reader, numBits int) (*Player, error) {
	keys, err := elgamal.KeyGen(c, rand, numBits)
	if err != nil {
		return nil, err
	}
	return &Player{Index: index, Keys: keys, curve: c, rand: rand}, nil
}

// Register proves the player knows the secret key of its public key.
func (p *Player) Register(ctx context.Context, adapter *prover.Adapter) (*Registration, error) {
	proof, _, err := adapter.GenerateDecryptProof(ctx, p.curve.Base(), p.Keys.SK, p.Keys.PK)
	if err != nil {
		return nil, err
	}
	return &Registration{PK: p.Keys.PK, Proof: proof}, nil
}

// Shuffle shuffles the current deck of g and proves it.
func (p *Player) Shuffle(ctx context.Context, g *Game) (*ShuffleStep, error) {
	res, err := shuffle.Shuffle(ctx, g.curve, g.key, g.deck, p.rand, g.opts)
	if err != nil {
		return nil, err
	}
	original, err := deck.Compress(g.curve, g.deck)
	if err != nil {
		return nil, err
	}
	permuted, err := deck.Compress(g.curve, res.Deck)
	if err != nil {
		return nil, err
	}
	proof, err := g.adapter.GenerateShuffleEncryptProof(ctx, g.key, res.Permutation, res.R, original, permuted)
	if err != nil {
		return nil, err
	}
	return &ShuffleStep{Player: p.Index, Deck: permuted, Proof: proof}, nil
}

// Decrypt computes and proves the share of the player for card i.
func (p *Player) Decrypt(ctx context.Context, g *Game, i int) (*DecryptStep, error) {
	if i < 0 || i >= g.deck.Len() {
		return nil, fmt.Errorf("%w: card %d", deck.ErrInvalidCard, i)
	}
	proof, share, err := g.adapter.GenerateDecryptProof(ctx, g.deck.Card(i).C0, p.Keys.SK, p.Keys.PK)
	if err != nil {
		return nil, err
	}
	return &DecryptStep{Player: p.Index, Card: i, Share: share, Proof: proof}, nil
}
