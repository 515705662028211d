// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize    = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat     = errors.New("unknown audio format")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrChannelMismatch   = errors.New("stereo channels differ in length")
)
