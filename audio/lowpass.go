// SPDX-License-Identifier: EPL-2.0

package audio

import "math"

const (
	// lowPassCutoff is the pass band edge as a fraction of the target rate.
	lowPassCutoff = 0.45
	// lowPassZeroCrossings is the number of sinc zero crossings kept on
	// each side of the center tap, in target rate periods.
	lowPassZeroCrossings = 20
)

// lowPass is a centered Blackman-windowed sinc FIR over interleaved frames.
// The signal is extended with its first and last frame at the edges, so a
// constant input stays constant and no delay is added.
type lowPass struct {
	taps     []float32
	channels int

	hist []float32 // len(taps) frames, oldest first
	last []float32 // last real frame

	pushed  int // frames pushed, real or held
	real    int // real frames pushed
	emitted int
}

func newLowPass(step float64, channels int) *lowPass {
	half := int(math.Ceil(lowPassZeroCrossings * step))
	n := 2*half + 1
	fc := lowPassCutoff / step // cycles per source frame

	h := make([]float64, n)
	var sum float64
	for i := range n {
		m := float64(i - half)

		sinc := 1.0
		if m != 0 {
			x := math.Pi * 2 * fc * m
			sinc = math.Sin(x) / x
		}

		phase := 2 * math.Pi * float64(i) / float64(n-1)
		w := 0.42 - 0.5*math.Cos(phase) + 0.08*math.Cos(2*phase)

		h[i] = sinc * w
		sum += h[i]
	}

	taps := make([]float32, n)
	for i, v := range h {
		taps[i] = float32(v / sum)
	}

	return &lowPass{
		taps:     taps,
		channels: channels,
		hist:     make([]float32, n*channels),
		last:     make([]float32, channels),
	}
}

func (lp *lowPass) half() int { return len(lp.taps) / 2 }

// ready reports whether the next frame to emit has its whole window.
func (lp *lowPass) ready() bool {
	return lp.pushed >= lp.emitted+lp.half()+1
}

func (lp *lowPass) push(frame []float32, real bool) {
	ch := lp.channels

	if lp.pushed == 0 {
		for i := range len(lp.taps) {
			copy(lp.hist[i*ch:(i+1)*ch], frame)
		}
	} else {
		copy(lp.hist, lp.hist[ch:])
		copy(lp.hist[len(lp.hist)-ch:], frame)
	}

	lp.pushed++
	if real {
		lp.real++
		copy(lp.last, frame)
	}
}

// filter writes the filtered center frame of the window to dst.
func (lp *lowPass) filter(dst []float32) {
	ch := lp.channels

	for c := range ch {
		var acc float32
		for j, t := range lp.taps {
			acc += t * lp.hist[j*ch+c]
		}
		dst[c] = acc
	}

	lp.emitted++
}
