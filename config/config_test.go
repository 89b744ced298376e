package config

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/deck"
)

func TestDefaults(t *testing.T) {
	c := qt.New(t)
	cfg, err := Load("")
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Curve, qt.Equals, curve.NameBandersnatch)
	c.Assert(cfg.DeckSize, qt.Equals, deck.StandardSize)
	c.Assert(cfg.KeyBits, qt.Equals, 0)
	c.Assert(cfg.Workers > 0, qt.IsTrue)
	c.Assert(cfg.ArtifactsDir, qt.Equals, "./artifacts")
	c.Assert(cfg.LogLevel, qt.Equals, "info")
}

func TestFileAndEnv(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "poker.yaml")
	c.Assert(os.WriteFile(path, []byte("deck_size: 8\ncurve: jubjub\nworkers: 2\n"), 0o600), qt.IsNil)

	cfg, err := Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.DeckSize, qt.Equals, 8)
	c.Assert(cfg.Curve, qt.Equals, curve.NameJubjub)
	c.Assert(cfg.Workers, qt.Equals, 2)

	// the environment overrides the file
	t.Setenv("POKER_DECK_SIZE", "16")
	cfg, err = Load(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.DeckSize, qt.Equals, 16)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	c.Assert(err, qt.IsNotNil)
}

func TestValidate(t *testing.T) {
	c := qt.New(t)
	for _, env := range [][2]string{
		{"POKER_CURVE", "secp256k1"},
		{"POKER_DECK_SIZE", "0"},
		{"POKER_DECK_SIZE", "255"},
		{"POKER_WORKERS", "-1"},
		{"POKER_KEY_BITS", "-3"},
		{"POKER_PLAYERS", "0"},
	} {
		c.Run(env[0]+"="+env[1], func(c *qt.C) {
			c.Setenv(env[0], env[1])
			_, err := Load("")
			c.Assert(err, qt.ErrorIs, ErrInvalid)
		})
	}
}
