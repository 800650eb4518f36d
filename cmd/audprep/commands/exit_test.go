// SPDX-License-Identifier: EPL-2.0

package commands

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ik5/audprep/features"
	"github.com/ik5/audprep/internal/config"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"decoder unavailable", fmt.Errorf("features: %w", features.ErrDecoderUnavailable), 2},
		{"invalid config", fmt.Errorf("%w: workers", config.ErrInvalid), 2},
		{"runtime", errors.New("disk full"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
