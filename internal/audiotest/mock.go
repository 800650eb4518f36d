// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds sources and fixtures shared by the package tests.
package audiotest

import (
	"io"
	"math"
)

// Waveform yields the value of one sample of one channel.
type Waveform func(sample int, channel int) float32

// MockSource is a synthetic audio source. It satisfies audio.Source
// without importing it, so format packages can use it too.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int // frames to generate
	generated  int
	waveform   Waveform

	// Err, when set, is returned instead of io.EOF once the frames run out.
	Err error
	// Closed reports whether Close was called.
	Closed bool
}

// NewMockSource creates a source producing frames frames of waveform.
func NewMockSource(sampleRate, channels, frames int, waveform Waveform) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		waveform:   waveform,
	}
}

// NewSilentSource creates a source that produces zeros.
func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

// NewConstantSource creates a source with every sample set to value.
func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 {
		return value
	})
}

// NewSineSource creates a source with a sine of the given frequency and amplitude
// on every channel.
func NewSineSource(sampleRate, channels, frames int, frequency float64, amplitude float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(sample int, _ int) float32 {
		t := float64(sample) / float64(sampleRate)
		return amplitude * float32(math.Sin(2*math.Pi*frequency*t))
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	end := io.EOF
	if m.Err != nil {
		end = m.Err
	}

	if m.generated >= m.frames {
		return 0, end
	}

	count := min(len(dst)/m.channels, m.frames-m.generated)
	for f := range count {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.generated+f, ch)
		}
	}
	m.generated += count

	if m.generated >= m.frames {
		return count * m.channels, end
	}

	return count * m.channels, nil
}
