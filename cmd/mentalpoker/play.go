package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vocdoni/gnark-mental-poker/circuits"
	"github.com/vocdoni/gnark-mental-poker/config"
	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/elgamal"
	"github.com/vocdoni/gnark-mental-poker/log"
	"github.com/vocdoni/gnark-mental-poker/protocol"
	"github.com/vocdoni/gnark-mental-poker/prover"
)

func newPlayCmd(v *viper.Viper, settings func() *config.Config) *cobra.Command {
	var deal int
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run a local game: every player shuffles, then cards are dealt and revealed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := settings()
			if deal < 0 || deal > cfg.DeckSize {
				return fmt.Errorf("cannot deal %d cards from a deck of %d", deal, cfg.DeckSize)
			}
			params, err := curve.ByName(cfg.Curve)
			if err != nil {
				return err
			}
			c, err := curve.New(params)
			if err != nil {
				return err
			}
			adapter, err := loadAdapter(c, cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			players := make([]*protocol.Player, cfg.Players)
			regs := make([]*protocol.Registration, cfg.Players)
			for i := range players {
				if players[i], err = protocol.NewPlayer(c, i, rand.Reader, cfg.KeyBits); err != nil {
					return err
				}
				if regs[i], err = players[i].Register(ctx, adapter); err != nil {
					return err
				}
			}
			game, err := protocol.NewGame(c, adapter, regs, cfg.DeckSize, &elgamal.Options{Workers: cfg.Workers})
			if err != nil {
				return err
			}
			if err := game.Encrypt(ctx); err != nil {
				return err
			}
			for _, p := range players {
				start := time.Now()
				step, err := p.Shuffle(ctx, game)
				if err != nil {
					return err
				}
				if err := game.ApplyShuffle(step); err != nil {
					return err
				}
				log.Infow("player shuffled", "player", p.Index, "elapsed", time.Since(start))
			}
			out := cmd.OutOrStdout()
			for card := 0; card < deal; card++ {
				for _, p := range players {
					step, err := p.Decrypt(ctx, game, card)
					if err != nil {
						return err
					}
					if err := game.ApplyDecryption(step); err != nil {
						return err
					}
				}
				idx, err := game.Reveal(card)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(out, "position %d: card %d\n", card, idx); err != nil {
					return err
				}
			}
			digest := game.Transcript()
			_, err = fmt.Fprintf(out, "transcript %s\n", hex.EncodeToString(digest[:]))
			return err
		},
	}
	cmd.Flags().IntVar(&deal, "deal", 5, "number of cards to reveal")
	cmd.Flags().Int(config.KeyPlayers, v.GetInt(config.KeyPlayers), "number of players")
	if err := v.BindPFlag(config.KeyPlayers, cmd.Flags().Lookup(config.KeyPlayers)); err != nil {
		panic(err)
	}
	return cmd
}

// loadAdapter reads the artifacts for the configured deck size, running a
// local setup when none were written yet.
func loadAdapter(c *curve.Curve[fr.Element], cfg *config.Config) (*prover.Adapter, error) {
	load := func(id circuits.ID, size int) (*prover.Artifacts, error) {
		a, err := prover.LoadArtifacts(cfg.ArtifactsDir, id, size)
		if errors.Is(err, fs.ErrNotExist) {
			log.Warnw("no artifacts found, running a local setup", "circuit", string(id), "dir", cfg.ArtifactsDir)
			if a, err = prover.Setup(id, size); err != nil {
				return nil, err
			}
			return a, a.Save(cfg.ArtifactsDir)
		}
		return a, err
	}
	shuffleArtifacts, err := load(circuits.ShuffleEncryptID, cfg.DeckSize)
	if err != nil {
		return nil, err
	}
	decryptArtifacts, err := load(circuits.DecryptID, 0)
	if err != nil {
		return nil, err
	}
	return prover.NewAdapter(c, shuffleArtifacts, decryptArtifacts)
}
