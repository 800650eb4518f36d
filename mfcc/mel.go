// SPDX-License-Identifier: EPL-2.0

package mfcc

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Slaney mel scale: linear below 1 kHz, logarithmic above.
const (
	melFSp       = 200.0 / 3
	melMinLogHz  = 1000.0
	melMinLogMel = melMinLogHz / melFSp
)

var melLogStep = math.Log(6.4) / 27.0

func hzToMel(hz float64) float64 {
	if hz >= melMinLogHz {
		return melMinLogMel + math.Log(hz/melMinLogHz)/melLogStep
	}
	return hz / melFSp
}

func melToHz(mel float64) float64 {
	if mel >= melMinLogMel {
		return melMinLogHz * math.Exp(melLogStep*(mel-melMinLogMel))
	}
	return melFSp * mel
}

// melFrequencies returns n center frequencies evenly spaced on the mel scale.
func melFrequencies(n int, fmin, fmax float64) []float64 {
	lo, hi := hzToMel(fmin), hzToMel(fmax)

	out := make([]float64, n)
	for i := range out {
		m := lo + (hi-lo)*float64(i)/float64(n-1)
		out[i] = melToHz(m)
	}
	return out
}

// melFilterBank builds the (nMels, nfft/2+1) triangular filter matrix with
// Slaney area normalization.
func melFilterBank(sampleRate, nfft, nMels int, fmin, fmax float64) *mat.Dense {
	bins := nfft/2 + 1

	fftFreqs := make([]float64, bins)
	for k := range fftFreqs {
		fftFreqs[k] = float64(k) * float64(sampleRate) / float64(nfft)
	}

	melF := melFrequencies(nMels+2, fmin, fmax)

	weights := mat.NewDense(nMels, bins, nil)
	for i := range nMels {
		lowDiff := melF[i+1] - melF[i]
		highDiff := melF[i+2] - melF[i+1]
		enorm := 2.0 / (melF[i+2] - melF[i])

		for k, f := range fftFreqs {
			lower := (f - melF[i]) / lowDiff
			upper := (melF[i+2] - f) / highDiff

			w := math.Min(lower, upper)
			if w > 0 {
				weights.Set(i, k, w*enorm)
			}
		}
	}

	return weights
}

// hannWindow is the periodic Hann window used for spectral analysis.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// dctBasis returns the first nOut rows of the orthonormal DCT-II matrix of
// size n.
func dctBasis(nOut, n int) *mat.Dense {
	basis := mat.NewDense(nOut, n, nil)

	scale0 := math.Sqrt(1 / float64(n))
	scale := math.Sqrt(2 / float64(n))

	for k := range nOut {
		s := scale
		if k == 0 {
			s = scale0
		}
		for i := range n {
			basis.Set(k, i, s*math.Cos(math.Pi*float64(k)*(2*float64(i)+1)/(2*float64(n))))
		}
	}

	return basis
}
