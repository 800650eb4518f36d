// SPDX-License-Identifier: EPL-2.0

package normalize

import "errors"

var (
	ErrMissingColumn = errors.New("metadata is missing a required column")
	ErrInvalidConfig = errors.New("invalid normalizer configuration")
)
