// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC streams frame by frame with mewkiz/flac.
package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audprep/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// frameParser is the part of flac.Stream the source needs; tests mock it.
type frameParser interface {
	ParseNext() (*frame.Frame, error)
}

type source struct {
	stream     frameParser
	closer     io.Closer
	sampleRate int
	channels   int
	scale      float32

	// interleaved samples of the current frame not yet handed out
	pending []float32
	eof     bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// fill decodes the next frame into s.pending.
func (s *source) fill() error {
	f, err := s.stream.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.eof = true
			return nil
		}
		return fmt.Errorf("%w", err)
	}

	if len(f.Subframes) != s.channels {
		return ErrChannelMismatch
	}

	frames := len(f.Subframes[0].Samples)
	s.pending = s.pending[:0]
	for i := range frames {
		for ch := range s.channels {
			s.pending = append(s.pending, float32(f.Subframes[ch].Samples[i])/s.scale)
		}
	}

	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	written := 0

	for written < len(dst) {
		if len(s.pending) == 0 {
			if s.eof {
				break
			}
			if err := s.fill(); err != nil {
				return written, err
			}
			continue
		}

		n := copy(dst[written:], s.pending)
		s.pending = s.pending[n:]
		written += n
	}

	if written == 0 && len(dst) > 0 {
		return 0, io.EOF
	}

	return written, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFlacFile, err)
	}

	info := stream.Info
	if info == nil || info.NChannels == 0 || info.SampleRate == 0 {
		return nil, ErrNotFlacFile
	}

	bits := int(info.BitsPerSample)
	if bits < 4 || bits > 32 {
		return nil, ErrUnsupportedBitDepth
	}

	return &source{
		stream:     stream,
		closer:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		scale:      float32(int64(1) << (bits - 1)),
	}, nil
}
