// SPDX-License-Identifier: EPL-2.0

// Package dataset builds the feature table for a directory of audio clips.
//
// The walker lists one directory (no recursion), keeps the files whose name
// ends with an allowlisted suffix, extracts a feature matrix per file and
// writes every successful matrix, flattened row-major, as one table row.
// Files that fail are logged and left out. Rows follow the sorted directory
// listing regardless of how many workers run.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/ik5/audprep/features"
	"github.com/ik5/audprep/internal/progress"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Extractor produces the feature matrix of one file. *features.Extractor
// implements it.
type Extractor interface {
	Extract(ctx context.Context, path string) (*mat.Dense, error)
}

type Config struct {
	// Extensions is the case-sensitive suffix allowlist.
	// Defaults to features.DefaultExtensions.
	Extensions []string
	// Workers bounds concurrent extractions; values below 1 mean 1.
	Workers int
	Logger  *slog.Logger
	// Progress receives the progress bar; nil hides it.
	Progress io.Writer
}

type Result struct {
	Processed  int
	Failed     int
	Skipped    int
	OutputPath string
}

type Walker struct {
	ex  Extractor
	cfg Config
	log *slog.Logger
}

func New(ex Extractor, cfg Config) *Walker {
	if cfg.Extensions == nil {
		cfg.Extensions = features.DefaultExtensions
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Walker{
		ex:  ex,
		cfg: cfg,
		log: cfg.Logger.With("component", "dataset"),
	}
}

func (w *Walker) matches(name string) bool {
	for _, ext := range w.cfg.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// list returns the matching files of dir in lexical order and the number
// of entries left out.
func (w *Walker) list(dir string) ([]string, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("listing %s: %w", dir, err)
	}

	var files []string
	skipped := 0
	for _, e := range entries {
		if e.IsDir() || !w.matches(e.Name()) {
			skipped++
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}

	return files, skipped, nil
}

// Run extracts features for every matching file in inputDir and writes the
// table to outputPath, replacing any previous one.
//
// A missing inputDir yields ErrInputNotFound and a run without a single
// successful file yields ErrNothingProcessed; in both cases nothing is
// written.
func (w *Walker) Run(ctx context.Context, inputDir, outputPath string) (Result, error) {
	var res Result

	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		w.log.Error("data path not found", "path", inputDir)
		return res, fmt.Errorf("%w: %s", ErrInputNotFound, inputDir)
	}

	files, skipped, err := w.list(inputDir)
	if err != nil {
		return res, err
	}
	res.Skipped = skipped

	rows, failed, err := w.extractAll(ctx, files)
	if err != nil {
		return res, err
	}
	res.Failed = failed

	table := make([][]float64, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			table = append(table, r)
		}
	}
	res.Processed = len(table)

	if len(table) == 0 {
		w.log.Warn("no audio files were processed", "path", inputDir)
		return res, ErrNothingProcessed
	}

	if err := WriteTable(outputPath, table); err != nil {
		return res, err
	}
	res.OutputPath = outputPath

	w.log.Info("feature table written",
		"path", outputPath,
		"rows", res.Processed,
		"failed", res.Failed,
		"skipped", res.Skipped,
	)

	return res, nil
}

// extractAll runs the extractor over files with at most cfg.Workers in
// flight. rows[i] belongs to files[i] and is nil when extraction failed.
func (w *Walker) extractAll(ctx context.Context, files []string) ([][]float64, int, error) {
	rows := make([][]float64, len(files))
	var failed atomic.Int64

	bar := progress.New(w.cfg.Progress, "features", len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Workers)

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			defer bar.Increment()

			w.log.Info("processing", "path", path)

			m, err := w.ex.Extract(gctx, path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				failed.Add(1)
				return nil
			}

			rows[i] = features.Flatten(m)
			return nil
		})
	}

	err := g.Wait()
	bar.Wait()

	if err != nil {
		return nil, 0, fmt.Errorf("%w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w", err)
	}

	return rows, int(failed.Load()), nil
}
