// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Source is a pull based stream of interleaved PCM samples.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)
	// BufSize is the preferred read size in samples.
	BufSize() int
	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps format keys ("wav", "mp3", "flac", ...) to decoders.
// Keys are the lower-cased file extension without the leading dot.
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// Lookup resolves the decoder for a file path by its extension.
// It returns the format key together with the decoder.
func (r *Registry) Lookup(path string) (string, Decoder, error) {
	format := FormatOf(path)
	if format == "" {
		return "", nil, ErrUnknownFormat
	}

	d, ok := r.Get(format)
	if !ok {
		return format, nil, ErrUnknownFormat
	}

	return format, d, nil
}

// Formats returns the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	formats := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		formats = append(formats, k)
	}
	sort.Strings(formats)

	return formats
}

// FormatOf returns the registry key for path: its extension, lower-cased,
// without the dot.
func FormatOf(path string) string {
	ext := filepath.Ext(path)
	if len(ext) < 2 {
		return ""
	}

	return strings.ToLower(ext[1:])
}
