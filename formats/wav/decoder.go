// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes RIFF/WAVE files on top of go-audio/wav.
//
// Decoding accepts integer PCM at 8, 16, 24 and 32 bits, any channel count,
// and arbitrary chunk layouts (LIST, fact, ... are skipped). Writing always
// produces mono 16-bit PCM.
package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audprep/audio"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// pcmReader is the part of gowav.Decoder the source needs; tests mock it.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	format     *goaudio.Format
	sampleRate int
	channels   int
	bitDepth   int
	buf        *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

func (s *source) BufSize() int {
	if s.buf != nil {
		return cap(s.buf.Data)
	}
	return 4096
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.buf == nil || cap(s.buf.Data) < len(dst) {
		s.buf = &goaudio.IntBuffer{
			Data:           make([]int, len(dst)),
			Format:         s.format,
			SourceBitDepth: s.bitDepth,
		}
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	scale := float32(int64(1) << (s.bitDepth - 1))
	for i, v := range s.buf.Data[:n] {
		if s.bitDepth == 8 {
			// 8-bit WAV is unsigned
			v -= 128
		}
		dst[i] = float32(v) / scale
	}

	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}

	return n, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// go-audio needs to seek between chunks
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}

	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, ErrUnsupportedEncoding
	}

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, ErrUnsupportedBitDepth
	}

	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, ErrNotWavFile
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoPCMData, err)
	}

	return &source{
		dec:        dec,
		format:     &goaudio.Format{NumChannels: int(dec.NumChans), SampleRate: int(dec.SampleRate)},
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		bitDepth:   int(dec.BitDepth),
	}, nil
}
