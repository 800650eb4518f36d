// SPDX-License-Identifier: EPL-2.0

// Package features turns one audio clip into a fixed-shape MFCC matrix.
//
// A clip is decoded, mixed to mono and resampled to the analysis rate with
// the fast cubic resampler, then run through mfcc. The time axis is cut or
// right-padded with zero columns so every matrix is (NMFCC, MaxPadLen).
package features

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ik5/audprep"
	"github.com/ik5/audprep/audio"
	"github.com/ik5/audprep/mfcc"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultNMFCC      = 13
	DefaultMaxPadLen  = 174
	DefaultSampleRate = 22050
)

// DefaultExtensions is the suffix allowlist of the dataset walker. Every
// entry must have a decoder for New to succeed.
var DefaultExtensions = []string{".wav", ".mp3", ".flac", ".ogg"}

type Config struct {
	NMFCC      int
	MaxPadLen  int
	SampleRate int
	Extensions []string
	Logger     *slog.Logger
}

type Extractor struct {
	reg       *audio.Registry
	mfcc      *mfcc.Extractor
	maxPadLen int
	rate      int
	log       *slog.Logger
}

// New checks that reg covers every extension in cfg.Extensions and
// precomputes the MFCC tables. A missing decoder yields
// ErrDecoderUnavailable.
func New(reg *audio.Registry, cfg Config) (*Extractor, error) {
	if cfg.NMFCC == 0 {
		cfg.NMFCC = DefaultNMFCC
	}
	if cfg.MaxPadLen == 0 {
		cfg.MaxPadLen = DefaultMaxPadLen
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Extensions == nil {
		cfg.Extensions = DefaultExtensions
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if reg == nil {
		return nil, fmt.Errorf("%w: nil registry", ErrDecoderUnavailable)
	}

	for _, ext := range cfg.Extensions {
		key := strings.ToLower(strings.TrimPrefix(ext, "."))
		if _, ok := reg.Get(key); !ok {
			return nil, fmt.Errorf("%w: %s", ErrDecoderUnavailable, ext)
		}
	}

	if cfg.MaxPadLen < 0 {
		return nil, fmt.Errorf("max pad length must not be negative, got %d", cfg.MaxPadLen)
	}

	m, err := mfcc.New(mfcc.Config{SampleRate: cfg.SampleRate, NMFCC: cfg.NMFCC})
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &Extractor{
		reg:       reg,
		mfcc:      m,
		maxPadLen: cfg.MaxPadLen,
		rate:      cfg.SampleRate,
		log:       cfg.Logger.With("component", "features"),
	}, nil
}

// Columns is the length of a flattened feature matrix.
func (e *Extractor) Columns() int {
	return e.mfcc.Config().NMFCC * e.maxPadLen
}

// Extract returns the (NMFCC, MaxPadLen) feature matrix of the clip at path.
// Failures are logged with the path and returned; callers skip the file.
// Cancellation is returned without logging.
func (e *Extractor) Extract(ctx context.Context, path string) (*mat.Dense, error) {
	m, err := e.extract(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		e.log.Error("feature extraction failed", "path", path, "error", err)
		return nil, err
	}
	return m, nil
}

func (e *Extractor) extract(ctx context.Context, path string) (*mat.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	if _, _, err := e.reg.Lookup(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	samples, err := audprep.LoadMono(e.reg, path, e.rate)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	coeffs, err := e.mfcc.Compute(samples)
	if err != nil {
		return nil, fmt.Errorf("computing mfcc for %s: %w", path, err)
	}

	return FixLength(coeffs, e.maxPadLen), nil
}

// FixLength returns a copy of m with exactly maxPadLen columns: extra
// columns are dropped from the right, missing ones are zero-filled on the
// right.
func FixLength(m *mat.Dense, maxPadLen int) *mat.Dense {
	if maxPadLen <= 0 {
		return &mat.Dense{}
	}

	rows, cols := m.Dims()
	out := mat.NewDense(rows, maxPadLen, nil)

	keep := min(cols, maxPadLen)
	if keep == 0 {
		return out
	}

	out.Slice(0, rows, 0, keep).(*mat.Dense).Copy(m.Slice(0, rows, 0, keep))

	return out
}

// Flatten returns the row-major contents of m.
func Flatten(m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	out := make([]float64, 0, rows*cols)
	for i := range rows {
		for j := range cols {
			out = append(out, m.At(i, j))
		}
	}
	return out
}
