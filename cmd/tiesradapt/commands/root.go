package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/proegssilb/tiesr-dialer-sub000/adaptstate"
	"github.com/proegssilb/tiesr-dialer-sub000/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tiesradapt",
	Short: "Noise and channel adaptation of fixed-point speech models",
	Long: `tiesradapt - run JAC/SVA model adaptation offline.

Settings come from a YAML file (--config); without one the live preset
is used. The state section selects where adaptation state is persisted:
  backend: none | file | badger

Examples:
  # Build a model to experiment with
  tiesradapt model synth --out model.gob --means 256

  # Adapt it to recordings, keeping the channel estimate
  tiesradapt --config tiesr.yaml run --model model.gob --save a.wav b.wav

  # Inspect and reset the stored state
  tiesradapt --config tiesr.yaml state show
  tiesradapt --config tiesr.yaml state clear`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		if configPath == "" {
			c := config.Live()
			cfg = &c
			return nil
		}
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(modelCmd)
}

// openStore opens the configured state backend. close must be called when
// the store is no longer used.
func openStore(c *config.Config) (store adaptstate.Store, close func() error, err error) {
	nop := func() error { return nil }
	switch c.State.Backend {
	case config.BackendFile:
		if err := os.MkdirAll(c.State.Path, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create state dir: %w", err)
		}
		return adaptstate.FileStore{Dir: c.State.Path}, nop, nil
	case config.BackendBadger:
		b, err := adaptstate.NewBadgerStore(adaptstate.BadgerOptions{
			Dir:    c.State.Path,
			Logger: slog.Default(),
		})
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	}
	return nil, nil, fmt.Errorf("no state backend configured (state.backend is %q)", c.State.Backend)
}
