// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"time"
)

// Mono is an in-memory single channel buffer.
type Mono struct {
	Samples    []float64
	SampleRate int
}

// Len returns the number of samples.
func (m Mono) Len() int { return len(m.Samples) }

// Duration of the buffer.
func (m Mono) Duration() time.Duration {
	return samplesToDuration(len(m.Samples), m.SampleRate)
}

// Stereo is an in-memory planar two channel buffer.
type Stereo struct {
	Left       []float64
	Right      []float64
	SampleRate int
}

// NewStereo allocates a silent stereo buffer of n frames.
func NewStereo(n, sampleRate int) Stereo {
	return Stereo{
		Left:       make([]float64, n),
		Right:      make([]float64, n),
		SampleRate: sampleRate,
	}
}

// Len returns the number of frames.
func (s Stereo) Len() int { return len(s.Left) }

// Duration of the buffer.
func (s Stereo) Duration() time.Duration {
	return samplesToDuration(len(s.Left), s.SampleRate)
}

// Validate reports planar length mismatches.
func (s Stereo) Validate() error {
	if len(s.Left) != len(s.Right) {
		return ErrChannelMismatch
	}
	if s.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}

	return nil
}

// Truncate shortens both channels to at most n frames.
func (s Stereo) Truncate(n int) Stereo {
	n = min(n, len(s.Left), len(s.Right))
	s.Left = s.Left[:n]
	s.Right = s.Right[:n]

	return s
}

// Peak returns the largest absolute sample over both channels.
func (s Stereo) Peak() float64 {
	var peak float64
	for _, ch := range [][]float64{s.Left, s.Right} {
		for _, v := range ch {
			peak = math.Max(peak, math.Abs(v))
		}
	}

	return peak
}

// Pad returns s extended with silence to n frames. Channels already holding
// n frames are left as they are.
func (s Stereo) Pad(n int) Stereo {
	grow := func(x []float64) []float64 {
		if len(x) >= n {
			return x
		}
		return append(x, make([]float64, n-len(x))...)
	}
	s.Left = grow(s.Left)
	s.Right = grow(s.Right)

	return s
}

func samplesToDuration(n, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}

	return time.Duration(float64(n) / float64(rate) * float64(time.Second))
}
