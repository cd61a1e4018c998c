package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/proegssilb/tiesr-dialer-sub000/acoustic"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Model utilities",
}

var modelSynthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Write a synthetic model",
	Long: `Write a model whose means are cepstra of synthetic voiced frames.
The dimension comes from frontend.n_mfcc and the mean format from
model.mean_codec.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		means, _ := cmd.Flags().GetInt("means")
		seed, _ := cmd.Flags().GetUint64("seed")
		if out == "" {
			return fmt.Errorf("--out is required")
		}
		if means < 2 {
			return fmt.Errorf("--means must be at least 2")
		}

		m, err := acoustic.Synthetic(cfg.FrontEnd.NMFCC, means, cfg.Codec(), seed)
		if err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := m.Save(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s: %d means, %d coefficients, %s codec\n", out, m.NumMeans(), m.NMFCC, m.Codec.Name())
		return nil
	},
}

func init() {
	modelSynthCmd.Flags().StringP("out", "o", "", "output file")
	modelSynthCmd.Flags().Int("means", 128, "number of mean vectors")
	modelSynthCmd.Flags().Uint64("seed", 1, "random seed")
	modelCmd.AddCommand(modelSynthCmd)
}
