// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming primitives the preprocessing
// pipelines are built from.
//
//   - Source: pull based interleaved float32 PCM in [-1, 1]
//   - Decoder and Registry: format decoders keyed by file extension
//   - Resampler: fast cubic rate conversion, streaming
//   - MonoMixer: channel averaging
//   - ResampleHQ: high quality polyphase conversion of a whole buffer
//   - Peak and PeakNormalize: amplitude normalization
//
// # Pipelines
//
// The feature path uses the fast streaming chain:
//
//	samples, err := audio.ResampleToMono(src, 22050, 4096)
//
// The normalizer folds to mono first and then converts the whole clip with
// the polyphase resampler:
//
//	mono, err := audio.ReadMono(src, 4096)
//	out, err := audio.ResampleHQ(mono, src.SampleRate(), 16000)
//	audio.PeakNormalize(out)
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	format, decoder, err := registry.Lookup("clips/a.WAV") // "wav"
//
// # Error Handling
//
// Sources return io.EOF when no more data is available, possibly together
// with a final n > 0. ReadAll and the pipeline helpers swallow io.EOF and
// only report real failures.
package audio
