// SPDX-License-Identifier: EPL-2.0

// Package audprep prepares audio datasets for machine learning.
//
// The root package wires the format decoders into a default registry and
// offers file level helpers on top of it:
//
//	reg := audprep.DefaultRegistry()
//
//	// fast path: cubic resampler, used for feature extraction
//	clip, err := audprep.LoadMono(reg, "speech/a.flac", 22050)
//
//	// high quality path: polyphase resampler, used when writing audio
//	clip, err = audprep.LoadMonoHQ(reg, "speech/a.mp3", 16000)
//
// The pipelines themselves live in subpackages:
//
//   - features: MFCC feature matrices of a fixed shape for one clip
//   - dataset: walks a directory and writes the feature table
//   - normalize: resamples and peak normalizes a metadata driven corpus
//   - mfcc: the MFCC computation
//   - audio: sources, resamplers, the decoder registry
//   - formats/wav, formats/mp3, formats/vorbis, formats/flac, formats/aiff
//
// The audprep command in cmd/audprep exposes both pipelines.
package audprep
