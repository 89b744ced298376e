package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vocdoni/gnark-mental-poker/config"
	"github.com/vocdoni/gnark-mental-poker/log"
)

// newRootCmd builds the command tree. Settings come from flags, POKER_
// environment variables and an optional config file, in that order.
func newRootCmd() *cobra.Command {
	v := config.New()
	var cfgFile string
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "mentalpoker",
		Short:         "Mental poker deck shuffling and dealing with zk-SNARK proofs",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return err
				}
			}
			var err error
			if cfg, err = config.FromViper(v); err != nil {
				return err
			}
			return log.Init(cfg.LogLevel, cmd.ErrOrStderr())
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	flags.String(config.KeyCurve, v.GetString(config.KeyCurve), "curve name")
	flags.Int(config.KeyDeckSize, v.GetInt(config.KeyDeckSize), "number of cards")
	flags.Int(config.KeyKeyBits, v.GetInt(config.KeyKeyBits), "secret key size in bits, 0 for the full subgroup order")
	flags.Int(config.KeyWorkers, v.GetInt(config.KeyWorkers), "goroutines used for deck encryption")
	flags.String(config.KeyArtifactsDir, v.GetString(config.KeyArtifactsDir), "directory of the circuit artifacts")
	flags.String(config.KeyLogLevel, v.GetString(config.KeyLogLevel), "log level (debug, info, warn, error, none)")
	bindFlags(v, root)

	settings := func() *config.Config { return cfg }
	root.AddCommand(newSetupCmd(settings), newKeygenCmd(settings), newPlayCmd(v, settings))
	return root
}

// bindFlags makes viper read every persistent flag of cmd under its own
// name.
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	for _, key := range []string{
		config.KeyCurve, config.KeyDeckSize, config.KeyKeyBits,
		config.KeyWorkers, config.KeyArtifactsDir, config.KeyLogLevel,
	} {
		if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(key)); err != nil {
			panic(err)
		}
	}
}
