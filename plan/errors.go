// SPDX-License-Identifier: EPL-2.0

package plan

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidKeyframe   = errors.New("invalid keyframe")
	ErrUnsupportedFormat = errors.New("unsupported plan format")
	ErrMalformedPlan     = errors.New("malformed plan document")
)

// ValidationError describes the first problem found in a keyframe record.
type ValidationError struct {
	Index  int    // position of the record in the input
	Field  string // offending field, empty for record level problems
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("keyframe %d: %s", e.Index, e.Reason)
	}

	return fmt.Sprintf("keyframe %d: %s: %s", e.Index, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidKeyframe }
