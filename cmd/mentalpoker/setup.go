package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vocdoni/gnark-mental-poker/circuits"
	"github.com/vocdoni/gnark-mental-poker/config"
	"github.com/vocdoni/gnark-mental-poker/log"
	"github.com/vocdoni/gnark-mental-poker/prover"
)

func newSetupCmd(settings func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Compile the circuits and write their Groth16 keys to the artifacts directory",
		Long: `Compile the shuffle and decrypt circuits and run a local Groth16 setup.
The keys are only suitable for testing: whoever runs the setup can forge proofs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := settings()
			for _, c := range []struct {
				id   circuits.ID
				size int
			}{
				{circuits.ShuffleEncryptID, cfg.DeckSize},
				{circuits.DecryptID, 0},
			} {
				a, err := prover.Setup(c.id, c.size)
				if err != nil {
					return err
				}
				if err := a.Save(cfg.ArtifactsDir); err != nil {
					return err
				}
				log.Infow("artifacts written", "circuit", string(c.id), "size", c.size,
					"constraints", a.CCS.GetNbConstraints(), "dir", cfg.ArtifactsDir)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "artifacts written to %s\n", cfg.ArtifactsDir)
			return err
		},
	}
}
