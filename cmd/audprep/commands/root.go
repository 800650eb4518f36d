// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ik5/audprep/features"
	"github.com/ik5/audprep/internal/config"
)

var (
	// Global flags
	cfgFile    string
	logLevel   string
	verbose    bool
	workers    int
	noProgress bool

	v   = config.New()
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "audprep",
	Short: "Audio dataset preparation for machine learning",
	Long: `audprep prepares audio datasets for machine learning.

  features   extract fixed-shape MFCC matrices from a directory of clips
             and write them as one CSV table, one row per clip
  normalize  resample a speech corpus to 16 kHz mono, peak normalize it and
             rewrite its metadata table with language prefixed file names

Settings come from flags, AUDPREP_* environment variables and an optional
audprep.yaml (searched in ., ./configs and ~/.config/audprep).

Examples:
  audprep features --input ./audio --output features.csv
  audprep --workers 4 normalize --metadata ./corpus/metadata.csv
  audprep --config custom.yaml config`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the command line with ctx canceled on interrupt.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode maps the error returned by Execute to a process exit status:
// 0 for success, 2 for configuration that can never run (including a
// missing decoder), 1 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, features.ErrDecoderUnavailable), errors.Is(err, config.ErrInvalid):
		return 2
	default:
		return 1
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./audprep.yaml or ~/.config/audprep/audprep.yaml)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
	pf.IntVar(&workers, "workers", 1, "files processed concurrently")
	pf.BoolVar(&noProgress, "no-progress", false, "hide progress bars")

	bindFlags(pf, map[string]string{
		"log-level": "log_level",
		"verbose":   "verbose",
		"workers":   "workers",
	})

	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(configCmd)
}

// bindFlags binds each flag of fs listed in keys to its configuration key,
// so a flag given on the command line wins over env and file values.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	fs.VisitAll(func(f *pflag.Flag) {
		if key, ok := keys[f.Name]; ok {
			_ = v.BindPFlag(key, f)
		}
	})
}

func initConfig(_ *cobra.Command, _ []string) error {
	used, err := config.ReadFile(v, cfgFile)
	if err != nil {
		return err
	}

	if noProgress {
		v.Set("progress", false)
	}

	cfg, err = config.Load(v)
	if err != nil {
		return err
	}

	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if used != "" {
		slog.Debug("using config file", "path", used)
	}

	return nil
}

// progressOutput is where progress bars are drawn, nil when disabled.
func progressOutput(cmd *cobra.Command) io.Writer {
	if !cfg.Progress {
		return nil
	}
	return cmd.ErrOrStderr()
}
