// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// mockMP3Reader hands out little-endian PCM in chunks of at most chunk bytes.
type mockMP3Reader struct {
	sampleRate int
	pcm        []byte
	chunk      int
	err        error
}

func newMockReader(rate int, samples []int16, chunk int) *mockMP3Reader {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, samples)
	return &mockMP3Reader{sampleRate: rate, pcm: buf.Bytes(), chunk: chunk}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(p []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if len(m.pcm) == 0 {
		return 0, io.EOF
	}

	n := min(len(p), m.chunk, len(m.pcm))
	copy(p, m.pcm[:n])
	m.pcm = m.pcm[n:]

	return n, nil
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, -16384, -32768, 100, -100}
	// odd chunk size forces reads to straddle sample boundaries
	src := newSource(newMockReader(44100, samples, 3))

	if src.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}

	dst := make([]float32, 4)
	n, err := src.ReadSamples(dst)
	if n != 4 || err != nil {
		t.Fatalf("ReadSamples() = (%d, %v), want (4, nil)", n, err)
	}

	want := []float32{0, 0.5, -0.5, -1}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	n, err = src.ReadSamples(dst)
	if n != 2 || err != nil {
		t.Fatalf("ReadSamples() = (%d, %v), want (2, nil)", n, err)
	}

	n, err = src.ReadSamples(dst)
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("corrupt frame")
	src := newSource(&mockMP3Reader{sampleRate: 22050, err: boom})

	_, err := src.ReadSamples(make([]float32, 16))
	if !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

func TestSource_EmptyDst(t *testing.T) {
	t.Parallel()

	src := newSource(newMockReader(22050, []int16{1, 2}, 64))
	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = (%d, %v), want (0, nil)", n, err)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("This is not MP3 data")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(tt.data)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}
