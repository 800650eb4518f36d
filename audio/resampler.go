// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audprep/utils"
)

// Resampler is the fast streaming rate converter. It interpolates with a
// Catmull-Rom spline over a four frame window and keeps the channel count.
// When downsampling, a windowed-sinc low-pass cut just under the target
// Nyquist runs ahead of the interpolator.
//
// It trades accuracy for speed and is what the feature extractor uses to
// bring clips to the analysis rate. Use ResampleHQ when the resampled
// waveform itself is the product.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames consumed per output frame
	channels int

	// window[0] = t-1, window[1] = t0, window[2] = t+1, window[3] = t+2
	window [4][]float32
	filled [4]bool
	primed bool

	// fractional position between window[1] and window[2]
	pos float64

	frame  []float32
	srcEOF bool // source exhausted
	eof    bool // no frame left for the window

	lp *lowPass
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     step,
		channels: channels,
		frame:    make([]float32, channels),
	}

	if step > 1.0 {
		r.lp = newLowPass(step, channels)
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// maxEmptyReads bounds how often a source may answer (0, nil) in a row
// before it is treated as exhausted.
const maxEmptyReads = 64

// readRaw pulls one interleaved frame from the source into r.frame.
func (r *Resampler) readRaw() (bool, error) {
	if r.srcEOF {
		return false, nil
	}

	for range maxEmptyReads {
		n, err := r.src.ReadSamples(r.frame)
		if err == io.EOF {
			r.srcEOF = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}

		if n > 0 {
			return true, nil
		}

		if r.srcEOF {
			return false, nil
		}
	}

	r.srcEOF = true
	return false, nil
}

// readFrame stores the next frame, low-passed when downsampling, in
// r.frame. It returns false once no frame is left.
func (r *Resampler) readFrame() (bool, error) {
	var (
		got bool
		err error
	)

	if r.lp == nil {
		got, err = r.readRaw()
	} else {
		got, err = r.readFiltered()
	}
	if err != nil {
		return false, err
	}
	if !got {
		r.eof = true
	}

	return got, nil
}

// readFiltered feeds the low-pass until the frame at the center of its
// window is known, then writes the filtered frame to r.frame.
func (r *Resampler) readFiltered() (bool, error) {
	lp := r.lp

	for !lp.ready() {
		got, err := r.readRaw()
		if err != nil {
			return false, err
		}

		switch {
		case got:
			lp.push(r.frame, true)
		case lp.real == 0 || lp.emitted >= lp.real:
			return false, nil
		default:
			// hold the last frame past the end
			lp.push(lp.last, false)
		}
	}

	if lp.emitted >= lp.real {
		return false, nil
	}

	lp.filter(r.frame)
	return true, nil
}

// prime loads the first frames into window[1:] and mirrors the first frame
// into window[0] so output starts at the first source frame.
func (r *Resampler) prime() error {
	r.primed = true

	for i := 1; i < len(r.window) && !r.eof; i++ {
		got, err := r.readFrame()
		if err != nil {
			return err
		}
		if got {
			copy(r.window[i], r.frame)
			r.filled[i] = true
		}
	}

	if !r.filled[1] {
		return io.EOF
	}
	copy(r.window[0], r.window[1])

	return nil
}

// advance shifts the window one frame to the left and appends the next
// source frame, if any.
func (r *Resampler) advance() error {
	copy(r.window[0], r.window[1])
	copy(r.window[1], r.window[2])
	copy(r.window[2], r.window[3])
	r.filled[0], r.filled[1], r.filled[2] = r.filled[1], r.filled[2], r.filled[3]
	r.filled[3] = false

	if !r.eof {
		got, err := r.readFrame()
		if err != nil {
			return err
		}
		if got {
			copy(r.window[3], r.frame)
			r.filled[3] = true
		}
	}

	if !r.filled[1] {
		return io.EOF
	}

	return nil
}

// ReadSamples produces dst samples at the destination rate.
// dst length must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	frames := len(dst) / r.channels

	for written < frames {
		if !r.filled[1] {
			return written * r.channels, io.EOF
		}

		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range r.channels {
			y1 := r.window[1][c]
			y0, y2 := y1, y1
			if r.filled[0] {
				y0 = r.window[0][c]
			}
			if r.filled[2] {
				y2 = r.window[2][c]
			}
			y3 := y2
			if r.filled[3] {
				y3 = r.window[3][c]
			}
			out[c] = utils.CubicInterpolate(y0, y1, y2, y3, x)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}
