// SPDX-License-Identifier: EPL-2.0

package features

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/ik5/audprep"
	"github.com/ik5/audprep/audio"
	"github.com/ik5/audprep/formats/wav"
	"github.com/ik5/audprep/internal/audiotest"
	"gonum.org/v1/gonum/mat"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newExtractor(t *testing.T) *Extractor {
	t.Helper()

	e, err := New(audprep.DefaultRegistry(), Config{Logger: quiet})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestNew_DecoderUnavailable(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})

	_, err := New(reg, Config{Logger: quiet})
	if !errors.Is(err, ErrDecoderUnavailable) {
		t.Errorf("New() error = %v, want %v", err, ErrDecoderUnavailable)
	}

	if _, err := New(nil, Config{Logger: quiet}); !errors.Is(err, ErrDecoderUnavailable) {
		t.Errorf("New(nil) error = %v, want %v", err, ErrDecoderUnavailable)
	}

	// a narrower allowlist only needs its own decoders
	if _, err := New(reg, Config{Extensions: []string{".WAV"}, Logger: quiet}); err != nil {
		t.Errorf("New(wav only) error = %v", err)
	}
}

func TestExtract_ShapeInvariant(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	dir := t.TempDir()

	tests := []struct {
		name   string
		frames int
	}{
		// 22050 Hz: T = 1 + n/512
		{"short", 2205},
		{"exact", 173 * 512},
		{"long", 5 * 22050},
	}

	for _, tt := range tests {
		path := audiotest.WriteWAV(t, dir, tt.name+".wav", 22050, 1, audiotest.Sine16(22050, tt.frames, 440, 0.5))

		m, err := e.Extract(context.Background(), path)
		if err != nil {
			t.Fatalf("%s: Extract() error = %v", tt.name, err)
		}

		r, c := m.Dims()
		if r != DefaultNMFCC || c != DefaultMaxPadLen {
			t.Errorf("%s: dims = (%d, %d), want (%d, %d)", tt.name, r, c, DefaultNMFCC, DefaultMaxPadLen)
		}
	}
}

func TestExtract_PaddingIsZero(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	path := audiotest.WriteWAV(t, t.TempDir(), "short.wav", 22050, 1, audiotest.Sine16(22050, 5120, 440, 0.5))

	m, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	// 5120 samples give 11 frames
	for j := 11; j < DefaultMaxPadLen; j++ {
		for i := range DefaultNMFCC {
			if v := m.At(i, j); v != 0 {
				t.Fatalf("m[%d][%d] = %v, want 0", i, j, v)
			}
		}
	}
	if m.At(0, 10) == 0 {
		t.Error("m[0][10] = 0, want a computed coefficient")
	}
}

func TestExtract_ResamplesToAnalysisRate(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	dir := t.TempDir()

	// one second at 44.1 kHz stereo lands on 22050 samples, 44 frames
	stereo := make([]int16, 2*44100)
	for i := range stereo {
		stereo[i] = int16((i % 200) * 100)
	}
	path := audiotest.WriteWAV(t, dir, "stereo.wav", 44100, 2, stereo)

	m, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if m.At(0, 43) == 0 {
		t.Error("m[0][43] = 0, want a computed coefficient")
	}
	if m.At(0, 44) != 0 {
		t.Errorf("m[0][44] = %v, want 0", m.At(0, 44))
	}
}

func TestExtract_Failures(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	dir := t.TempDir()

	corrupt := audiotest.WriteFile(t, dir, "corrupt.wav", []byte("garbage"))
	empty := audiotest.WriteWAV(t, dir, "empty.wav", 22050, 1, nil)
	text := audiotest.WriteFile(t, dir, "notes.txt", []byte("hi"))

	for _, path := range []string{corrupt, empty, filepath.Join(dir, "missing.wav")} {
		if m, err := e.Extract(context.Background(), path); err == nil || m != nil {
			t.Errorf("Extract(%s) = (%v, %v), want (nil, error)", filepath.Base(path), m, err)
		}
	}

	if _, err := e.Extract(context.Background(), text); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Extract(txt) error = %v, want %v", err, ErrUnsupportedFormat)
	}
}

func TestExtract_Canceled(t *testing.T) {
	t.Parallel()

	e := newExtractor(t)
	path := audiotest.WriteWAV(t, t.TempDir(), "a.wav", 22050, 1, make([]int16, 1000))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Extract(ctx, path); !errors.Is(err, context.Canceled) {
		t.Errorf("Extract() error = %v, want %v", err, context.Canceled)
	}
}

func TestExtract_Logging(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	e, err := New(audprep.DefaultRegistry(), Config{
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	dir := t.TempDir()
	good := audiotest.WriteWAV(t, dir, "a.wav", 22050, 1, make([]int16, 1000))
	bad := audiotest.WriteFile(t, dir, "b.wav", []byte("junk"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Extract(ctx, good); !errors.Is(err, context.Canceled) {
		t.Fatalf("Extract() error = %v, want %v", err, context.Canceled)
	}
	if logs.Len() != 0 {
		t.Errorf("canceled Extract() logged %q, want nothing", logs.String())
	}

	if _, err := e.Extract(context.Background(), bad); err == nil {
		t.Fatal("Extract(junk) error = nil, want failure")
	}
	if !bytes.Contains(logs.Bytes(), []byte("feature extraction failed")) {
		t.Errorf("failed Extract() logged %q, want the failure", logs.String())
	}
}

func TestFixLength(t *testing.T) {
	t.Parallel()

	src := mat.NewDense(2, 4, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
	})

	tests := []struct {
		name string
		n    int
		want []float64
	}{
		{"truncate", 3, []float64{1, 2, 3, 5, 6, 7}},
		{"equal", 4, []float64{1, 2, 3, 4, 5, 6, 7, 8}},
		{"pad", 6, []float64{1, 2, 3, 4, 0, 0, 5, 6, 7, 8, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Flatten(FixLength(src, tt.n))
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}

	// source is untouched
	if src.At(0, 3) != 4 {
		t.Errorf("src[0][3] = %v, want 4", src.At(0, 3))
	}
}

func TestColumns(t *testing.T) {
	t.Parallel()

	if got := newExtractor(t).Columns(); got != 2262 {
		t.Errorf("Columns() = %d, want 2262", got)
	}
}
