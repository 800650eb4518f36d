// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ik5/audprep"
	"github.com/ik5/audprep/dataset"
	"github.com/ik5/audprep/features"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Extract MFCC features from a directory of audio files",
	Long: `Extract MFCC features from every .wav, .mp3, .flac and .ogg file of a
directory (no recursion) and write them as a CSV table.

Each clip becomes one row of n_mfcc * max_pad_len values: the coefficient
matrix cut or zero-padded to max_pad_len frames, flattened row by row.
Files that cannot be decoded are logged and left out.

Examples:
  audprep features --input ./audio
  audprep --workers 8 features --input ./audio --output features.csv --max-pad-len 200`,
	Args: cobra.NoArgs,
	RunE: runFeatures,
}

func init() {
	f := featuresCmd.Flags()
	f.String("input", "", "directory with audio files (default ./audio)")
	f.StringP("output", "o", "", "feature table path (default processed_audio_features.csv)")
	f.Int("n-mfcc", 0, "coefficients per frame (default 13)")
	f.Int("max-pad-len", 0, "frames per clip after padding or truncation (default 174)")
	f.Int("sample-rate", 0, "analysis sample rate in Hz (default 22050)")

	bindFlags(f, map[string]string{
		"input":       "features.input_dir",
		"output":      "features.output",
		"n-mfcc":      "features.n_mfcc",
		"max-pad-len": "features.max_pad_len",
		"sample-rate": "features.sample_rate",
	})
}

func runFeatures(cmd *cobra.Command, _ []string) error {
	fc := cfg.Features
	log := slog.Default()

	ex, err := features.New(audprep.DefaultRegistry(), features.Config{
		NMFCC:      fc.NMFCC,
		MaxPadLen:  fc.MaxPadLen,
		SampleRate: fc.SampleRate,
		Extensions: fc.Extensions,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	w := dataset.New(ex, dataset.Config{
		Extensions: fc.Extensions,
		Workers:    cfg.Workers,
		Logger:     log,
		Progress:   progressOutput(cmd),
	})

	res, err := w.Run(cmd.Context(), fc.InputDir, fc.Output)
	switch {
	case errors.Is(err, dataset.ErrInputNotFound), errors.Is(err, dataset.ErrNothingProcessed):
		// already reported, nothing to do is not a failure
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Features saved to %s (%d rows, %d failed, %d skipped)\n",
		res.OutputPath, res.Processed, res.Failed, res.Skipped)

	return nil
}
