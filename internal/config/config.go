// SPDX-License-Identifier: EPL-2.0

// Package config loads the audprep configuration from defaults, an optional
// YAML file, AUDPREP_* environment variables and command line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	AppName   = "audprep"
	EnvPrefix = "AUDPREP"
)

// ErrInvalid marks configuration that cannot be run.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`
	Workers  int    `mapstructure:"workers" yaml:"workers"`
	Progress bool   `mapstructure:"progress" yaml:"progress"`

	Features  FeaturesConfig  `mapstructure:"features" yaml:"features"`
	Normalize NormalizeConfig `mapstructure:"normalize" yaml:"normalize"`
}

// FeaturesConfig drives the feature table command.
type FeaturesConfig struct {
	InputDir   string   `mapstructure:"input_dir" yaml:"input_dir"`
	Output     string   `mapstructure:"output" yaml:"output"`
	NMFCC      int      `mapstructure:"n_mfcc" yaml:"n_mfcc"`
	MaxPadLen  int      `mapstructure:"max_pad_len" yaml:"max_pad_len"`
	SampleRate int      `mapstructure:"sample_rate" yaml:"sample_rate"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
}

// NormalizeConfig drives the corpus normalization command.
type NormalizeConfig struct {
	SourceDir      string            `mapstructure:"source_dir" yaml:"source_dir"`
	Metadata       string            `mapstructure:"metadata" yaml:"metadata"`
	OutputDir      string            `mapstructure:"output_dir" yaml:"output_dir"`
	OutputMetadata string            `mapstructure:"output_metadata" yaml:"output_metadata"`
	TargetRate     int               `mapstructure:"target_rate" yaml:"target_rate"`
	Prefixes       map[string]string `mapstructure:"prefixes" yaml:"prefixes"`
}

// SetDefaults registers every key with its default value. Keys have to be
// known to viper for AUDPREP_* variables to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("verbose", false)
	v.SetDefault("workers", 1)
	v.SetDefault("progress", true)

	v.SetDefault("features.input_dir", "./audio")
	v.SetDefault("features.output", "processed_audio_features.csv")
	v.SetDefault("features.n_mfcc", 13)
	v.SetDefault("features.max_pad_len", 174)
	v.SetDefault("features.sample_rate", 22050)
	v.SetDefault("features.extensions", []string{".wav", ".mp3", ".flac", ".ogg"})

	v.SetDefault("normalize.source_dir", "./merged_dataset/audio")
	v.SetDefault("normalize.metadata", "./merged_dataset/metadata.csv")
	v.SetDefault("normalize.output_dir", "./merged_dataset/preprocessed_audio")
	v.SetDefault("normalize.output_metadata", "./merged_dataset/metadata_preprocessed.csv")
	v.SetDefault("normalize.target_rate", 16000)
	v.SetDefault("normalize.prefixes", map[string]string{"en": "en_", "hi": "hi_"})
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()

	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	return v
}

// ReadFile loads path into v, or searches ./audprep.yaml,
// ./configs/audprep.yaml and ~/.config/audprep/audprep.yaml when path is
// empty. Not finding a file during the search is not an error.
// It returns the file actually used, if any.
func ReadFile(v *viper.Viper, path string) (string, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("%w: reading %s: %w", ErrInvalid, path, err)
		}
		return v.ConfigFileUsed(), nil
	}

	v.SetConfigName(AppName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", AppName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return v.ConfigFileUsed(), nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}

	f := c.Features
	if f.NMFCC <= 0 {
		errs = append(errs, fmt.Errorf("features.n_mfcc must be positive, got %d", f.NMFCC))
	}
	if f.MaxPadLen <= 0 {
		errs = append(errs, fmt.Errorf("features.max_pad_len must be positive, got %d", f.MaxPadLen))
	}
	if f.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("features.sample_rate must be positive, got %d", f.SampleRate))
	}
	if len(f.Extensions) == 0 {
		errs = append(errs, errors.New("features.extensions must not be empty"))
	}
	for _, ext := range f.Extensions {
		if len(ext) < 2 || !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("features.extensions: %q is not a file suffix", ext))
		}
	}

	n := c.Normalize
	if n.TargetRate <= 0 {
		errs = append(errs, fmt.Errorf("normalize.target_rate must be positive, got %d", n.TargetRate))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}

	return nil
}

// Level resolves the slog level. Verbose forces debug.
func (c *Config) Level() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}

	return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
}
