// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"
)

// hqContextFrames is the minimum amount of silence, in source frames, fed
// before and after a clip. The polyphase filter needs history on both sides
// of the first and last frame.
const hqContextFrames = 4096

// hqAlignment places a clip inside the resampler output for one rate pair:
// the clip is fed after lead silent frames, and its first frame comes out
// at index offset.
type hqAlignment struct {
	lead   int
	offset int
}

var hqAlignments sync.Map // [2]int{src, dst} -> hqAlignment

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// runHQ resamples input with a fresh high quality resampler and flushes it.
func runHQ(input []float64, srcRate, dstRate int) ([]float64, error) {
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	output, err := rs.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}

	rest, err := rs.Flush()
	if err != nil {
		return nil, fmt.Errorf("resample flush error: %w", err)
	}

	return append(output, rest...), nil
}

// alignHQ measures where the resampler puts a frame fed after the lead
// silence, by sending an impulse through it. The lead is a whole number of
// rate periods so the impulse maps to an integral output index, and the
// result is cached per rate pair.
func alignHQ(srcRate, dstRate int) (hqAlignment, error) {
	key := [2]int{srcRate, dstRate}
	if a, ok := hqAlignments.Load(key); ok {
		return a.(hqAlignment), nil
	}

	period := srcRate / gcd(srcRate, dstRate)
	lead := period * ((hqContextFrames + period - 1) / period)

	impulse := make([]float64, 2*lead+1)
	impulse[lead] = 1

	output, err := runHQ(impulse, srcRate, dstRate)
	if err != nil {
		return hqAlignment{}, err
	}

	peak := 0
	for i, v := range output {
		if math.Abs(v) > math.Abs(output[peak]) {
			peak = i
		}
	}

	a := hqAlignment{lead: lead, offset: peak}
	hqAlignments.Store(key, a)

	return a, nil
}

// ResampleHQ converts a mono buffer from srcRate to dstRate using the
// high quality polyphase resampler. The output holds
// ceil(len(samples) * dstRate / srcRate) samples, and sample i of the input
// lands at output index i * dstRate / srcRate.
func ResampleHQ(samples []float32, srcRate, dstRate int) ([]float32, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, ErrInvalidRate
	}

	if srcRate == dstRate || len(samples) == 0 {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out, nil
	}

	align, err := alignHQ(srcRate, dstRate)
	if err != nil {
		return nil, err
	}

	input := make([]float64, align.lead+len(samples)+align.lead)
	for i, s := range samples {
		input[align.lead+i] = float64(s)
	}

	output, err := runHQ(input, srcRate, dstRate)
	if err != nil {
		return nil, err
	}

	want := int(math.Ceil(float64(len(samples)) * float64(dstRate) / float64(srcRate)))

	out := make([]float32, want)
	if align.offset < len(output) {
		for i, v := range output[align.offset:min(align.offset+want, len(output))] {
			out[i] = float32(v)
		}
	}

	return out, nil
}
