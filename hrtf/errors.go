// SPDX-License-Identifier: EPL-2.0

package hrtf

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable    = errors.New("hrtf data unavailable")
	ErrLengthMismatch = errors.New("impulse responses differ in length")
	ErrInvalidOption  = errors.New("invalid hrtf option")
)

// UnavailableError reports why no directional data could be loaded.
type UnavailableError struct {
	Source string // dataset name or path
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("hrtf %s: %v", e.Source, ErrUnavailable)
	}

	return fmt.Sprintf("hrtf %s: %v: %v", e.Source, ErrUnavailable, e.Err)
}

func (e *UnavailableError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnavailable}
	}

	return []error{ErrUnavailable, e.Err}
}
