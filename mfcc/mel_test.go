// SPDX-License-Identifier: EPL-2.0

package mfcc

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMelScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hz, mel float64
	}{
		{0, 0},
		{500, 7.5},
		{1000, 15},
		{6400, 42},
	}

	for _, tt := range tests {
		if got := hzToMel(tt.hz); math.Abs(got-tt.mel) > 1e-9 {
			t.Errorf("hzToMel(%v) = %v, want %v", tt.hz, got, tt.mel)
		}
		if got := melToHz(tt.mel); math.Abs(got-tt.hz) > 1e-6 {
			t.Errorf("melToHz(%v) = %v, want %v", tt.mel, got, tt.hz)
		}
	}
}

func TestHannWindow(t *testing.T) {
	t.Parallel()

	w := hannWindow(2048)
	if len(w) != 2048 {
		t.Fatalf("len = %d, want 2048", len(w))
	}
	if w[0] != 0 {
		t.Errorf("w[0] = %v, want 0", w[0])
	}
	if math.Abs(w[1024]-1) > 1e-12 {
		t.Errorf("w[1024] = %v, want 1", w[1024])
	}
	// periodic: w[i] == w[n-i]
	if math.Abs(w[1]-w[2047]) > 1e-12 {
		t.Errorf("w[1] = %v, w[2047] = %v, want equal", w[1], w[2047])
	}
}

func TestMelFilterBank(t *testing.T) {
	t.Parallel()

	bank := melFilterBank(22050, 2048, 128, 0, 11025)

	rows, cols := bank.Dims()
	if rows != 128 || cols != 1025 {
		t.Fatalf("Dims() = (%d, %d), want (128, 1025)", rows, cols)
	}

	for i := range rows {
		row := bank.RawRowView(i)
		nonZero := false
		for _, v := range row {
			if v < 0 {
				t.Fatalf("filter %d has negative weight %v", i, v)
			}
			if v > 0 {
				nonZero = true
			}
		}
		if !nonZero {
			t.Errorf("filter %d is all zeros", i)
		}
	}

	// DC never falls strictly inside the first filter
	if v := bank.At(0, 0); v != 0 {
		t.Errorf("bank[0][0] = %v, want 0", v)
	}
}

func TestDCTBasis_Orthonormal(t *testing.T) {
	t.Parallel()

	const n = 16
	d := dctBasis(n, n)

	var prod mat.Dense
	prod.Mul(d, d.T())

	for i := range n {
		for j := range n {
			want := 0.0
			if i == j {
				want = 1
			}
			if got := prod.At(i, j); math.Abs(got-want) > 1e-9 {
				t.Errorf("(D*D^T)[%d][%d] = %v, want %v", i, j, got, want)
			}
		}
	}
}
