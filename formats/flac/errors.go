// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

var (
	ErrNotFlacFile         = errors.New("not a FLAC file")
	ErrUnsupportedBitDepth = errors.New("unsupported FLAC bit depth")
	ErrChannelMismatch     = errors.New("FLAC frame channel count differs from stream info")
)
