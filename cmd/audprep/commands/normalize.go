// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ik5/audprep"
	"github.com/ik5/audprep/normalize"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Resample and peak normalize a speech corpus",
	Long: `Read a metadata table (audio_file,text,language), and for every record
load the clip from the source directory, resample it to the target rate in
mono, scale it so its peak is 1.0 and write it as 16-bit PCM to the output
directory. English and Hindi clips get an en_ or hi_ prefix. FLAC sources
are written as FLAC, everything else as WAV (mp3 and ogg names become .wav).

Records whose file is missing, cannot be decoded, points outside the source
directory or repeats an earlier output name are logged and left out of the
output metadata table, which is always written.

Examples:
  audprep normalize
  audprep normalize --source-dir ./corpus/audio --metadata ./corpus/metadata.csv \
    --output-dir ./corpus/preprocessed_audio --output-metadata ./corpus/metadata_preprocessed.csv`,
	Args: cobra.NoArgs,
	RunE: runNormalize,
}

func init() {
	f := normalizeCmd.Flags()
	f.String("source-dir", "", "directory with the source clips")
	f.String("metadata", "", "input metadata table")
	f.String("output-dir", "", "directory for normalized clips")
	f.String("output-metadata", "", "output metadata table")
	f.Int("target-rate", 0, "output sample rate in Hz (default 16000)")

	bindFlags(f, map[string]string{
		"source-dir":      "normalize.source_dir",
		"metadata":        "normalize.metadata",
		"output-dir":      "normalize.output_dir",
		"output-metadata": "normalize.output_metadata",
		"target-rate":     "normalize.target_rate",
	})
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	nc := cfg.Normalize

	n, err := normalize.New(audprep.DefaultRegistry(), normalize.Config{
		SourceDir:          nc.SourceDir,
		MetadataPath:       nc.Metadata,
		OutputDir:          nc.OutputDir,
		OutputMetadataPath: nc.OutputMetadata,
		TargetRate:         nc.TargetRate,
		Prefixes:           nc.Prefixes,
		Workers:            cfg.Workers,
		Logger:             slog.Default(),
		Progress:           progressOutput(cmd),
	})
	if err != nil {
		return err
	}

	res, err := n.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Preprocessing complete! Preprocessed audio in: %s\n", nc.OutputDir)
	fmt.Fprintf(out, "Updated metadata saved as: %s (%d written, %d missing, %d failed, %d silent, %d duplicates)\n",
		res.OutputMetadataPath, res.Written, res.Missing, res.Failed, res.Silent, res.Duplicates)

	return nil
}
