// Package config loads the settings shared by the command line tool and the
// protocol driver from defaults, an optional config file and POKER_
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/deck"
	"github.com/vocdoni/gnark-mental-poker/utils"
)

// EnvPrefix is the prefix of the environment variables read by Load.
const EnvPrefix = "POKER"

const (
	KeyCurve        = "curve"
	KeyDeckSize     = "deck_size"
	KeyKeyBits      = "key_bits"
	KeyWorkers      = "workers"
	KeyArtifactsDir = "artifacts_dir"
	KeyLogLevel     = "log_level"
	KeyPlayers      = "players"
)

// ErrInvalid is returned for settings out of their valid range.
var ErrInvalid = errors.New("config: invalid setting")

// Config holds the settings of a game.
type Config struct {
	Curve        string `mapstructure:"curve"`
	DeckSize     int    `mapstructure:"deck_size"`
	KeyBits      int    `mapstructure:"key_bits"`
	Workers      int    `mapstructure:"workers"`
	ArtifactsDir string `mapstructure:"artifacts_dir"`
	LogLevel     string `mapstructure:"log_level"`
	Players      int    `mapstructure:"players"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyCurve, curve.NameBandersnatch)
	v.SetDefault(KeyDeckSize, deck.StandardSize)
	v.SetDefault(KeyKeyBits, 0)
	v.SetDefault(KeyWorkers, runtime.NumCPU())
	v.SetDefault(KeyArtifactsDir, "./artifacts")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyPlayers, 2)
}

// New returns a viper instance with the defaults and the environment
// bindings in place.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file at path, if not empty, on top of the
// defaults and returns the resulting settings.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting is usable.
func (c *Config) Validate() error {
	if _, err := curve.ByName(c.Curve); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.DeckSize <= 0 || c.DeckSize > utils.MaxPackedBits {
		return fmt.Errorf("%w: deck size %d", ErrInvalid, c.DeckSize)
	}
	if c.KeyBits < 0 {
		return fmt.Errorf("%w: key bits %d", ErrInvalid, c.KeyBits)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	if c.Players <= 0 {
		return fmt.Errorf("%w: players %d", ErrInvalid, c.Players)
	}
	return nil
}
