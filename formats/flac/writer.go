// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audprep/utils"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// blockSize is the number of samples per encoded frame.
const blockSize = 4096

// monoFrames splits samples into 16-bit mono frames of blockSize samples,
// the last one possibly shorter.
func monoFrames(sampleRate int, samples []int16) []*frame.Frame {
	var frames []*frame.Frame

	for start := 0; start < len(samples); start += blockSize {
		end := min(start+blockSize, len(samples))

		data := make([]int32, end-start)
		for i, s := range samples[start:end] {
			data[i] = int32(s)
		}

		frames = append(frames, &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(len(data)),
				SampleRate:        uint32(sampleRate),
				Channels:          frame.ChannelsMono,
				BitsPerSample:     16,
			},
			Subframes: []*frame.Subframe{{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   data,
				NSamples:  len(data),
			}},
		})
	}

	return frames
}

// WriteFLAC16 writes samples as a mono 16-bit FLAC stream at sampleRate.
//
// The stream is encoded in memory first: the encoder only rewrites the
// stream info through an io.WriteSeeker that is also an io.ByteWriter, so
// the sample count and MD5 are computed up front instead.
func WriteFLAC16(w io.Writer, sampleRate int, samples []int16) error {
	frames := monoFrames(sampleRate, samples)

	sum := md5.New()
	for _, f := range frames {
		f.Hash(sum)
	}

	info := &meta.StreamInfo{
		BlockSizeMin:  blockSize,
		BlockSizeMax:  blockSize,
		SampleRate:    uint32(sampleRate),
		NChannels:     1,
		BitsPerSample: 16,
		NSamples:      uint64(len(samples)),
	}
	if len(samples) < blockSize {
		info.BlockSizeMin = uint16(max(len(samples), 16))
		info.BlockSizeMax = info.BlockSizeMin
	}
	copy(info.MD5sum[:], sum.Sum(nil))

	var buf bytes.Buffer

	enc, err := flac.NewEncoder(&buf, info)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	for _, f := range frames {
		if err := enc.WriteFrame(f); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// WriteFloat converts float samples in [-1, 1] to 16-bit PCM and writes them
// with WriteFLAC16. Values outside the range are clamped.
func WriteFloat(w io.Writer, sampleRate int, samples []float32) error {
	return WriteFLAC16(w, sampleRate, utils.Float32SliceToInt16(samples))
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
