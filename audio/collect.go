// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

const defaultBufSize = 4096

// ReadAll drains src and returns every sample it produced, still interleaved
// if src has more than one channel. bufSize <= 0 falls back to src.BufSize().
func ReadAll(src Source, bufSize int) ([]float32, error) {
	if bufSize <= 0 {
		bufSize = src.BufSize()
	}
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}
	// keep reads frame aligned
	if ch := src.Channels(); ch > 1 && bufSize%ch != 0 {
		bufSize += ch - bufSize%ch
	}

	out := make([]float32, 0, bufSize)
	buf := make([]float32, bufSize)

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}

		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}
}

// ReadMono drains src through a MonoMixer, without changing its rate.
func ReadMono(src Source, bufSize int) ([]float32, error) {
	return ReadAll(NewMonoMixer(src), bufSize)
}

// ResampleToMono runs the fast pipeline: resample to targetRate with the
// cubic Resampler, fold to mono, and collect the result.
// A source already at targetRate skips the resampler.
func ResampleToMono(src Source, targetRate int, bufSize int) ([]float32, error) {
	if targetRate <= 0 {
		return nil, ErrInvalidRate
	}

	if src.SampleRate() == targetRate {
		return ReadMono(src, bufSize)
	}

	return ReadAll(NewMonoMixer(NewResampler(src, targetRate)), bufSize)
}
