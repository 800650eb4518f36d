// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type mockAiffReader struct {
	data []int
	err  error
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if len(m.data) == 0 {
		return 0, nil
	}

	n := copy(buf.Data, m.data)
	m.data = m.data[n:]

	return n, nil
}

func TestSource_Scaling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		data     []int
		want     []float32
	}{
		{"8-bit", 8, []int{64, -128}, []float32{0.5, -1}},
		{"16-bit", 16, []int{16384, -32768}, []float32{0.5, -1}},
		{"24-bit", 24, []int{4194304, -8388608}, []float32{0.5, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{
				dec:        &mockAiffReader{data: tt.data},
				sampleRate: 44100,
				channels:   1,
				bitDepth:   tt.bitDepth,
			}

			dst := make([]float32, 8)
			n, err := src.ReadSamples(dst)
			if n != len(tt.want) || err != nil {
				t.Fatalf("ReadSamples() = (%d, %v), want (%d, nil)", n, err, len(tt.want))
			}
			for i := range tt.want {
				if dst[i] != tt.want[i] {
					t.Errorf("dst[%d] = %v, want %v", i, dst[i], tt.want[i])
				}
			}

			n, err = src.ReadSamples(dst)
			if n != 0 || err != io.EOF {
				t.Errorf("ReadSamples() = (%d, %v), want (0, EOF)", n, err)
			}
		})
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("short chunk")
	src := &source{dec: &mockAiffReader{err: boom}, channels: 1, bitDepth: 16}

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    io.Reader
	}{
		{"garbage", bytes.NewReader([]byte("FORM????WAVEnot an aiff at all"))},
		{"empty", bytes.NewReader(nil)},
		{"non-seekable", io.MultiReader(bytes.NewReader([]byte("nope")))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := (Decoder{}).Decode(tt.r)
			if !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want %v", err, ErrNotAiffFile)
			}
		})
	}
}
