// SPDX-License-Identifier: EPL-2.0

package dataset

import "errors"

var (
	ErrInputNotFound    = errors.New("data path not found")
	ErrNothingProcessed = errors.New("no audio files were processed")
	ErrRaggedRows       = errors.New("feature rows differ in length")
)
