// SPDX-License-Identifier: EPL-2.0

// Package utils holds the small numeric helpers shared by the audio and
// format packages.
package utils

// CubicInterpolate evaluates a Catmull-Rom spline through y0..y3 at x, the
// fractional position between y1 and y2 (0 <= x <= 1).
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}
