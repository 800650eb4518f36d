// SPDX-License-Identifier: EPL-2.0

package features

import "errors"

var (
	// ErrDecoderUnavailable means the registry cannot decode one of the
	// allowlisted extensions. It aborts the run rather than failing per file.
	ErrDecoderUnavailable = errors.New("no decoder available for extension")

	ErrUnsupportedFormat = errors.New("unsupported audio format")
)
