// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	ErrNilProvider    = errors.New("hrtf provider is nil")
	ErrInvalidOption  = errors.New("invalid engine option")
	ErrCurveLength    = errors.New("curve length does not match input")
	ErrResponseLength = errors.New("impulse response length does not match provider")
)
