// SPDX-License-Identifier: EPL-2.0

package audio

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float32 {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// PeakNormalize scales samples in place so the largest absolute value is 1.
// A silent buffer (peak 0) is left untouched and PeakNormalize reports false.
func PeakNormalize(samples []float32) bool {
	peak := Peak(samples)
	if peak == 0 {
		return false
	}

	for i := range samples {
		samples[i] /= peak
	}

	return true
}
