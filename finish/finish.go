// SPDX-License-Identifier: EPL-2.0

// Package finish prepares a rendered buffer for hand-off: it cuts or fades
// the convolution and reverb tail, replaces non-finite samples and scales
// the whole buffer down when its peak exceeds a ceiling. It applies no other
// dynamics processing.
package finish

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ik5/binaural/audio"
	"github.com/ik5/binaural/config"
)

var (
	ErrInvalidCeiling = errors.New("ceiling must be within (0, 1]")
	ErrUnknownTail    = errors.New("unknown tail policy")
)

// Report describes what Finish changed.
type Report struct {
	Frames    int     // frames kept
	Dropped   int     // tail frames discarded
	NonFinite int     // samples replaced by zero
	Peak      float64 // peak before scaling
	Scale     float64 // factor applied, 1 when under the ceiling
}

// TailFrames is the number of frames kept past the input at sampleRate.
// It is zero unless the policy is keep.
func TailFrames(cfg config.OutputConfig, sampleRate int) int {
	if cfg.Tail != config.TailKeep {
		return 0
	}

	return int(math.Round(max(cfg.TailMS, 0) * float64(sampleRate) / 1000))
}

// Finish trims s to inputLen frames (plus up to TailMS of tail when the
// policy is keep), zeroes NaN and Inf samples, and scales by ceiling/peak
// when the peak is above the ceiling. A kept tail is faded out with a
// half cosine so the buffer ends in silence. s is modified in place.
func Finish(s audio.Stereo, inputLen int, cfg config.OutputConfig) (audio.Stereo, Report, error) {
	if err := s.Validate(); err != nil {
		return audio.Stereo{}, Report{}, err
	}
	if !(cfg.Ceiling > 0 && cfg.Ceiling <= 1) {
		return audio.Stereo{}, Report{}, fmt.Errorf("%w: %g", ErrInvalidCeiling, cfg.Ceiling)
	}

	switch cfg.Tail {
	case config.TailTrim, "", config.TailKeep:
	default:
		return audio.Stereo{}, Report{}, fmt.Errorf("%w: %q", ErrUnknownTail, cfg.Tail)
	}
	start := max(inputLen, 0)
	keep := start + TailFrames(cfg, s.SampleRate)

	r := Report{Scale: 1}
	before := s.Len()
	s = s.Truncate(keep)
	r.Frames = s.Len()
	r.Dropped = before - r.Frames

	for _, ch := range [][]float64{s.Left, s.Right} {
		r.NonFinite += zeroNonFinite(ch)
		if start < len(ch) {
			fadeOut(ch[start:])
		}
	}
	r.Peak = peak(s)

	if r.Peak > cfg.Ceiling {
		r.Scale = cfg.Ceiling / r.Peak
		// rounding must not land the peak above the ceiling
		for r.Peak*r.Scale > cfg.Ceiling {
			r.Scale = math.Nextafter(r.Scale, 0)
		}
		floats.Scale(r.Scale, s.Left)
		floats.Scale(r.Scale, s.Right)
	}

	return s, r, nil
}

// fadeOut applies a half cosine from just under 1 down to exactly 0.
func fadeOut(x []float64) {
	n := float64(len(x))
	for i := range x {
		x[i] *= 0.5 + 0.5*math.Cos(math.Pi*float64(i+1)/n)
	}
}

func zeroNonFinite(x []float64) int {
	var n int
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			x[i] = 0
			n++
		}
	}

	return n
}

func peak(s audio.Stereo) float64 {
	if s.Len() == 0 {
		return 0
	}

	var p float64
	for _, ch := range [][]float64{s.Left, s.Right} {
		p = math.Max(p, math.Max(floats.Max(ch), -floats.Min(ch)))
	}

	return p
}
