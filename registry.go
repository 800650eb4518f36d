// SPDX-License-Identifier: EPL-2.0

package audprep

import (
	"errors"
	"fmt"
	"os"

	"github.com/ik5/audprep/audio"
	"github.com/ik5/audprep/formats/aiff"
	"github.com/ik5/audprep/formats/flac"
	"github.com/ik5/audprep/formats/mp3"
	"github.com/ik5/audprep/formats/vorbis"
	"github.com/ik5/audprep/formats/wav"
)

// DefaultRegistry returns a registry holding every decoder this module
// ships, keyed by file extension.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()

	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("flac", flac.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})

	return reg
}

// fileSource closes the underlying file together with the decoded source.
type fileSource struct {
	audio.Source
	f *os.File
}

func (s *fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.f.Close())
}

// Open picks a decoder by the extension of path and decodes the file.
// The caller owns the returned source and must close it.
func Open(reg *audio.Registry, path string) (audio.Source, error) {
	_, dec, err := reg.Lookup(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return &fileSource{Source: src, f: f}, nil
}

// LoadMono decodes path, mixes it to mono and resamples it to rate with the
// streaming cubic resampler.
func LoadMono(reg *audio.Registry, path string, rate int) ([]float32, error) {
	src, err := Open(reg, path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	samples, err := audio.ResampleToMono(src, rate, 0)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return samples, nil
}

// LoadMonoHQ decodes path, mixes it to mono at its native rate and converts
// it to rate with the polyphase resampler.
func LoadMonoHQ(reg *audio.Registry, path string, rate int) ([]float32, error) {
	if rate <= 0 {
		return nil, audio.ErrInvalidRate
	}

	src, err := Open(reg, path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mono, err := audio.ReadMono(src, 0)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	out, err := audio.ResampleHQ(mono, src.SampleRate(), rate)
	if err != nil {
		return nil, fmt.Errorf("resampling %s: %w", path, err)
	}

	return out, nil
}
