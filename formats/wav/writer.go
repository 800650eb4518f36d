// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audprep/utils"
)

// WriteWAV16 writes samples as a mono 16-bit PCM WAV at sampleRate.
// The encoder patches chunk sizes on close, hence the io.WriteSeeker.
func WriteWAV16(w io.WriteSeeker, sampleRate int, samples []int16) error {
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	enc := gowav.NewEncoder(w, sampleRate, 16, 1, formatPCM)

	err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	})
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// WriteFloat converts float samples in [-1, 1] to 16-bit PCM and writes them
// with WriteWAV16. Values outside the range are clamped.
func WriteFloat(w io.WriteSeeker, sampleRate int, samples []float32) error {
	return WriteWAV16(w, sampleRate, utils.Float32SliceToInt16(samples))
}

// WriteFile creates (or truncates) path and writes samples into it.
func WriteFile(path string, sampleRate int, samples []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	if err := WriteFloat(f, sampleRate, samples); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
