package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	tiesr "github.com/proegssilb/tiesr-dialer-sub000"
	"github.com/proegssilb/tiesr-dialer-sub000/adaptstate"
	"github.com/proegssilb/tiesr-dialer-sub000/audio"
	"github.com/proegssilb/tiesr-dialer-sub000/config"
	"github.com/proegssilb/tiesr-dialer-sub000/feature"
)

var runCmd = &cobra.Command{
	Use:   "run <wav>...",
	Short: "Adapt a model to WAV files",
	Long: `Run every WAV file through its own adaptation session and print a
summary per file. Files are mono 16-bit PCM at any rate; they are
resampled to 8 kHz.

With --noise, the noise recording is mixed into each file at --snr dB
before processing. With --save, the state of each session is written
back to the configured backend (the last file to finish wins).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modelPath, _ := cmd.Flags().GetString("model")
		if modelPath == "" {
			modelPath = cfg.Model.Path
		}
		if modelPath == "" {
			return fmt.Errorf("--model is required")
		}
		jobs, _ := cmd.Flags().GetInt("jobs")
		save, _ := cmd.Flags().GetBool("save")
		noisePath, _ := cmd.Flags().GetString("noise")
		snr, _ := cmd.Flags().GetFloat64("snr")

		var noiseSamples []int16
		if noisePath != "" {
			var err error
			if noiseSamples, err = readAt8k(noisePath); err != nil {
				return fmt.Errorf("noise: %w", err)
			}
		}

		var store adaptstate.Store
		if cfg.State.Backend != config.BackendNone {
			st, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			store = st
		}

		results := make([]*tiesr.Result, len(args))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(max(jobs, 1))
		for i, path := range args {
			g.Go(func() error {
				r, err := adaptFile(ctx, modelPath, path, noiseSamples, snr, store, save)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tFRAMES\tSPEECH\tBEGIN\tEND\tVECTORS\tCYCLES\tADAPTED")
		for i, r := range results {
			fmt.Fprintf(w, "%s\t%d\t%v\t%d\t%d\t%d\t%d\t%v\n",
				filepath.Base(args[i]), r.Frames, r.SpeechDetected, r.BeginFrame, r.EndFrame,
				r.Compensated, r.Cycles, r.Adapted)
		}
		return w.Flush()
	},
}

func init() {
	runCmd.Flags().String("model", "", "model file written by 'model synth' (default model.path)")
	runCmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "files processed in parallel")
	runCmd.Flags().Bool("save", false, "write the adaptation state back")
	runCmd.Flags().String("noise", "", "WAV file mixed into every input")
	runCmd.Flags().Float64("snr", 10, "signal to noise ratio for --noise, dB")
}

// adaptFile runs one file through a fresh session on its own copy of the
// model, since sessions compensate their model in place.
func adaptFile(ctx context.Context, modelPath, path string, noise []int16, snr float64, store adaptstate.Store, save bool) (*tiesr.Result, error) {
	s, err := tiesr.NewSessionFromFile(modelPath, cfg.SessionOptions()...)
	if err != nil {
		return nil, err
	}
	if store != nil {
		if _, err := s.LoadState(ctx, store, cfg.State.Key); err != nil {
			return nil, err
		}
	}

	samples, err := readAt8k(path)
	if err != nil {
		return nil, err
	}
	if noise != nil {
		samples = audio.MixNoise(samples, noise, snr)
	}
	r, err := s.ProcessSamples(ctx, samples)
	if err != nil {
		return nil, err
	}

	if store != nil && save {
		if err := s.SaveState(ctx, store, cfg.State.Key); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func readAt8k(path string) ([]int16, error) {
	samples, hdr, err := audio.ReadWAVFile(path)
	if err != nil {
		return nil, err
	}
	if hdr.SampleRate == feature.SampleRate {
		return samples, nil
	}
	return audio.Resample(samples, int(hdr.SampleRate), feature.SampleRate)
}
