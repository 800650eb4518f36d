// SPDX-License-Identifier: EPL-2.0

package mfcc

import "errors"

var (
	ErrEmptySignal   = errors.New("mfcc: empty signal")
	ErrInvalidConfig = errors.New("mfcc: invalid configuration")
)
