// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// WAVBytes builds a canonical 44 byte header PCM 16-bit WAV file.
func WAVBytes(sampleRate, channels int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	blockAlign := uint16(channels * 2)
	dataSize := uint32(len(samples) * 2)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate)*uint32(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, blockAlign)
	_ = binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)
	_ = binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// Sine16 returns frames mono int16 samples of a sine at frequency Hz.
func Sine16(sampleRate, frames int, frequency float64, amplitude float64) []int16 {
	out := make([]int16, frames)
	for i := range out {
		v := amplitude * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate))
		out[i] = int16(v * 32767)
	}
	return out
}

// WriteWAV writes a PCM 16-bit WAV fixture into dir and returns its path.
func WriteWAV(t testing.TB, dir, name string, sampleRate, channels int, samples []int16) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, WAVBytes(sampleRate, channels, samples), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}

	return path
}

// WriteFile writes raw bytes as a fixture into dir and returns its path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}

	return path
}
