// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{"zero", 0, 0},
		{"max positive", 1, math.MaxInt16},
		{"max negative", -1, -math.MaxInt16},
		{"half positive", 0.5, 16383},
		{"half negative", -0.5, -16383},
		{"clamp above", 3.5, math.MaxInt16},
		{"clamp below", -7, -math.MaxInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float32ToInt16(tt.input); got != tt.want {
				t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFloat32SliceToInt16(t *testing.T) {
	t.Parallel()

	in := []float32{0, 1, -1, 2}
	got := Float32SliceToInt16(in)

	want := []int16{0, math.MaxInt16, -math.MaxInt16, math.MaxInt16}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if out := Float32SliceToInt16(nil); len(out) != 0 {
		t.Errorf("Float32SliceToInt16(nil) len = %d, want 0", len(out))
	}
}
