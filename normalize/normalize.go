// SPDX-License-Identifier: EPL-2.0

// Package normalize prepares a speech corpus described by a metadata table.
//
// Every referenced clip is decoded, folded to mono, resampled to the target
// rate with the high quality resampler and peak normalized, then written as
// 16-bit PCM under a language prefixed name: FLAC for .flac sources, WAV for
// everything else, with the name switched to .wav when the source container
// cannot be encoded. A new metadata table lists only the records that were
// written.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/ik5/audprep"
	"github.com/ik5/audprep/audio"
	"github.com/ik5/audprep/formats/flac"
	"github.com/ik5/audprep/formats/wav"
	"github.com/ik5/audprep/internal/progress"
	"golang.org/x/sync/errgroup"
)

const DefaultTargetRate = 16000

// DefaultPrefixes maps language codes to output file name prefixes.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"en": "en_",
		"hi": "hi_",
	}
}

type Config struct {
	SourceDir          string
	MetadataPath       string
	OutputDir          string
	OutputMetadataPath string

	TargetRate int
	// Prefixes maps a language code to a file name prefix. Languages not in
	// the map keep their file name. Nil uses DefaultPrefixes.
	Prefixes map[string]string

	Workers  int
	Logger   *slog.Logger
	Progress io.Writer
}

type Result struct {
	Written int
	Missing int
	Failed  int
	// Duplicates counts records skipped because an earlier record already
	// claimed the same output file.
	Duplicates int
	// Silent counts written clips whose peak was zero; they are kept as is.
	Silent             int
	OutputMetadataPath string
}

type Normalizer struct {
	reg *audio.Registry
	cfg Config
	log *slog.Logger
}

func New(reg *audio.Registry, cfg Config) (*Normalizer, error) {
	if cfg.TargetRate == 0 {
		cfg.TargetRate = DefaultTargetRate
	}
	if cfg.Prefixes == nil {
		cfg.Prefixes = DefaultPrefixes()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	switch {
	case reg == nil:
		return nil, fmt.Errorf("%w: nil registry", ErrInvalidConfig)
	case cfg.SourceDir == "":
		return nil, fmt.Errorf("%w: source directory is empty", ErrInvalidConfig)
	case cfg.MetadataPath == "":
		return nil, fmt.Errorf("%w: metadata path is empty", ErrInvalidConfig)
	case cfg.OutputDir == "":
		return nil, fmt.Errorf("%w: output directory is empty", ErrInvalidConfig)
	case cfg.OutputMetadataPath == "":
		return nil, fmt.Errorf("%w: output metadata path is empty", ErrInvalidConfig)
	case cfg.TargetRate < 0:
		return nil, fmt.Errorf("%w: target rate %d", ErrInvalidConfig, cfg.TargetRate)
	}

	return &Normalizer{
		reg: reg,
		cfg: cfg,
		log: cfg.Logger.With("component", "normalize"),
	}, nil
}

// writers maps a lower-cased output extension to its encoder.
var writers = map[string]func(path string, sampleRate int, samples []float32) error{
	".wav":  wav.WriteFile,
	".flac": flac.WriteFile,
}

// OutputName returns the file name a clip is written under: the language
// prefix followed by audioFile. Names whose extension has no encoder get a
// .wav extension, since the clip is written as WAV.
func OutputName(prefixes map[string]string, language, audioFile string) string {
	name := prefixes[language] + audioFile

	ext := filepath.Ext(name)
	if _, ok := writers[strings.ToLower(ext)]; ok {
		return name
	}

	return strings.TrimSuffix(name, ext) + ".wav"
}

type outcome int

const (
	outcomeWritten outcome = iota
	outcomeSilent
	outcomeMissing
	outcomeFailed
	outcomeDuplicate
)

// job is one record with the output name it was assigned.
type job struct {
	rec  Record
	name string
	// skip is set when planning already decided the outcome.
	skip outcome
}

// Run processes every record of the metadata table and writes the output
// metadata table, even when no record made it.
func (n *Normalizer) Run(ctx context.Context) (Result, error) {
	var res Result

	records, err := ReadMetadata(n.cfg.MetadataPath)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", n.cfg.MetadataPath, err)
	}

	if err := os.MkdirAll(n.cfg.OutputDir, 0o755); err != nil {
		return res, fmt.Errorf("%w", err)
	}

	jobs := n.plan(records)

	out := make([]*Record, len(records))
	var counts [5]atomic.Int64

	bar := progress.New(n.cfg.Progress, "normalize", len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.cfg.Workers)

	for i, j := range jobs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			defer bar.Increment()

			if err := gctx.Err(); err != nil {
				return err
			}

			o, written := n.process(j)
			counts[o].Add(1)
			out[i] = written

			return nil
		})
	}

	err = g.Wait()
	bar.Wait()

	if err != nil {
		return res, fmt.Errorf("%w", err)
	}
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("%w", err)
	}

	accepted := make([]Record, 0, len(out))
	for _, r := range out {
		if r != nil {
			accepted = append(accepted, *r)
		}
	}

	if dir := filepath.Dir(n.cfg.OutputMetadataPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, fmt.Errorf("%w", err)
		}
	}
	if err := WriteMetadata(n.cfg.OutputMetadataPath, accepted); err != nil {
		return res, err
	}

	res.Silent = int(counts[outcomeSilent].Load())
	res.Written = int(counts[outcomeWritten].Load()) + res.Silent
	res.Missing = int(counts[outcomeMissing].Load())
	res.Failed = int(counts[outcomeFailed].Load())
	res.Duplicates = int(counts[outcomeDuplicate].Load())
	res.OutputMetadataPath = n.cfg.OutputMetadataPath

	n.log.Info("normalization complete",
		"audio_dir", n.cfg.OutputDir,
		"metadata", n.cfg.OutputMetadataPath,
		"written", res.Written,
		"missing", res.Missing,
		"failed", res.Failed,
		"silent", res.Silent,
		"duplicates", res.Duplicates,
	)

	return res, nil
}

// plan assigns output names. Records whose file or output name is not a
// local path are failed, and so are records whose output file an earlier
// record already claimed, so no two workers write the same file.
func (n *Normalizer) plan(records []Record) []job {
	jobs := make([]job, len(records))
	claimed := make(map[string]string, len(records))

	for i, rec := range records {
		jobs[i].rec = rec

		name := OutputName(n.cfg.Prefixes, rec.Language, rec.AudioFile)
		if !filepath.IsLocal(rec.AudioFile) || !filepath.IsLocal(name) {
			n.log.Error("audio file is not a local path", "audio_file", rec.AudioFile, "output", name)
			jobs[i].skip = outcomeFailed
			continue
		}

		key := filepath.Clean(name)
		if first, ok := claimed[key]; ok {
			n.log.Warn("duplicate output file", "audio_file", rec.AudioFile, "output", name, "claimed_by", first)
			jobs[i].skip = outcomeDuplicate
			continue
		}

		claimed[key] = rec.AudioFile
		jobs[i].name = name
	}

	return jobs
}

// process handles one record. The returned record is nil unless the clip
// was written.
func (n *Normalizer) process(j job) (outcome, *Record) {
	if j.skip != outcomeWritten {
		return j.skip, nil
	}

	rec := j.rec
	src := filepath.Join(n.cfg.SourceDir, rec.AudioFile)

	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			n.log.Warn("missing file", "audio_file", rec.AudioFile)
			return outcomeMissing, nil
		}
		n.log.Error("cannot access file", "path", src, "error", err)
		return outcomeFailed, nil
	}

	samples, err := audprep.LoadMonoHQ(n.reg, src, n.cfg.TargetRate)
	if err != nil {
		n.log.Error("loading failed", "path", src, "error", err)
		return outcomeFailed, nil
	}

	o := outcomeWritten
	if !audio.PeakNormalize(samples) {
		n.log.Warn("silent clip written unchanged", "path", src)
		o = outcomeSilent
	}

	dst := filepath.Join(n.cfg.OutputDir, j.name)
	write := writers[strings.ToLower(filepath.Ext(j.name))]

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		n.log.Error("writing failed", "path", dst, "error", err)
		return outcomeFailed, nil
	}
	if err := write(dst, n.cfg.TargetRate, samples); err != nil {
		n.log.Error("writing failed", "path", dst, "error", err)
		return outcomeFailed, nil
	}

	n.log.Debug("normalized", "path", src, "output", dst, "samples", len(samples))

	return o, &Record{AudioFile: j.name, Text: rec.Text, Language: rec.Language}
}
