package main

import (
	"crypto/rand"
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/vocdoni/gnark-mental-poker/config"
	"github.com/vocdoni/gnark-mental-poker/curve"
	"github.com/vocdoni/gnark-mental-poker/elgamal"
	"github.com/vocdoni/gnark-mental-poker/utils"
)

// keyPairJSON is the printed form of a key pair.
type keyPairJSON struct {
	Curve string    `json:"curve"`
	SK    string    `json:"sk"`
	PK    [2]string `json:"pk"`
}

func newKeygenCmd(settings func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ElGamal key pair and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := settings()
			params, err := curve.ByName(cfg.Curve)
			if err != nil {
				return err
			}
			c, err := curve.New(params)
			if err != nil {
				return err
			}
			keys, err := elgamal.KeyGen(c, rand.Reader, cfg.KeyBits)
			if err != nil {
				return err
			}
			x, y := c.AffineBig(keys.PK)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(keyPairJSON{
				Curve: params.Name,
				SK:    utils.BigToDecimal(keys.SK),
				PK:    [2]string{utils.BigToDecimal(x), utils.BigToDecimal(y)},
			})
		},
	}
}
