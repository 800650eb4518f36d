// SPDX-License-Identifier: EPL-2.0

// Package mfcc computes Mel-frequency cepstral coefficients.
//
// The pipeline is a centered short-time Fourier transform (zero padded by
// NFFT/2 on both sides, periodic Hann window), a power spectrogram, a
// Slaney-normalized mel filterbank, a decibel conversion clamped to TopDB
// below the clip's peak, and an orthonormal DCT-II over the mel axis.
//
// Output matrices are (NMFCC, T) with T = 1 + len(samples)/HopLength.
package mfcc

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// amin floors the power spectrum before the logarithm
const amin = 1e-10

// Extractor holds the precomputed window, filterbank and DCT basis for one
// Config. It is safe for concurrent use.
type Extractor struct {
	cfg     Config
	window  []float64
	melBank *mat.Dense // (NMels, NFFT/2+1)
	dct     *mat.Dense // (NMFCC, NMels)
}

func New(cfg Config) (*Extractor, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Extractor{
		cfg:     cfg,
		window:  hannWindow(cfg.NFFT),
		melBank: melFilterBank(cfg.SampleRate, cfg.NFFT, cfg.NMels, cfg.FMin, cfg.FMax),
		dct:     dctBasis(cfg.NMFCC, cfg.NMels),
	}, nil
}

func (e *Extractor) Config() Config { return e.cfg }

// Frames returns the number of analysis frames for n samples.
func (e *Extractor) Frames(n int) int {
	return 1 + n/e.cfg.HopLength
}

// PowerSpectrogram returns |STFT|^2 as a (NFFT/2+1, T) matrix.
func (e *Extractor) PowerSpectrogram(samples []float32) (*mat.Dense, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySignal
	}

	nfft := e.cfg.NFFT
	hop := e.cfg.HopLength
	pad := nfft / 2
	frames := e.Frames(len(samples))
	bins := nfft/2 + 1

	// the FFT plan holds scratch space, one per call keeps e shareable
	fft := fourier.NewFFT(nfft)
	buf := make([]float64, nfft)
	coeffs := make([]complex128, bins)

	spec := mat.NewDense(bins, frames, nil)
	for t := range frames {
		start := t*hop - pad
		for k := range buf {
			i := start + k
			if i < 0 || i >= len(samples) {
				buf[k] = 0
				continue
			}
			buf[k] = float64(samples[i]) * e.window[k]
		}

		coeffs = fft.Coefficients(coeffs, buf)
		for k, c := range coeffs {
			re, im := real(c), imag(c)
			spec.Set(k, t, re*re+im*im)
		}
	}

	return spec, nil
}

// MelSpectrogram projects the power spectrogram onto the mel filterbank,
// giving a (NMels, T) matrix.
func (e *Extractor) MelSpectrogram(samples []float32) (*mat.Dense, error) {
	spec, err := e.PowerSpectrogram(samples)
	if err != nil {
		return nil, err
	}

	_, frames := spec.Dims()
	mel := mat.NewDense(e.cfg.NMels, frames, nil)
	mel.Mul(e.melBank, spec)

	return mel, nil
}

// PowerToDB converts m in place to decibels relative to 1.0, flooring at
// amin and clamping everything more than topDB below the maximum.
// A negative topDB disables the clamp.
func PowerToDB(m *mat.Dense, topDB float64) {
	peak := math.Inf(-1)
	m.Apply(func(_, _ int, v float64) float64 {
		db := 10 * math.Log10(math.Max(amin, v))
		peak = math.Max(peak, db)
		return db
	}, m)

	if topDB < 0 {
		return
	}

	floor := peak - topDB
	m.Apply(func(_, _ int, v float64) float64 {
		return math.Max(v, floor)
	}, m)
}

// Compute returns the (NMFCC, T) coefficient matrix for mono samples at
// cfg.SampleRate.
func (e *Extractor) Compute(samples []float32) (*mat.Dense, error) {
	mel, err := e.MelSpectrogram(samples)
	if err != nil {
		return nil, err
	}

	PowerToDB(mel, e.cfg.TopDB)

	_, frames := mel.Dims()
	out := mat.NewDense(e.cfg.NMFCC, frames, nil)
	out.Mul(e.dct, mel)

	return out, nil
}
