// SPDX-License-Identifier: EPL-2.0

package curve

import (
	"errors"
	"fmt"
	"time"

	"github.com/ik5/binaural/plan"
	"github.com/ik5/binaural/utils"
)

var (
	ErrInvalidLength     = errors.New("sample count must not be negative")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrNilPlan           = errors.New("plan is nil")
)

// Smoothing sets the moving-average window per parameter. Zero disables it.
type Smoothing struct {
	Direction time.Duration // azimuth and elevation
	Distance  time.Duration
	ReverbMix time.Duration
}

// DefaultSmoothing returns 25 ms for motion and 80 ms for reverb level,
// since audible reverb jumps bother more than spatial ones.
func DefaultSmoothing() Smoothing {
	return Smoothing{
		Direction: 25 * time.Millisecond,
		Distance:  25 * time.Millisecond,
		ReverbMix: 80 * time.Millisecond,
	}
}

// Curves holds one value per sample for every plan parameter.
type Curves struct {
	Azimuth    []float64
	Elevation  []float64
	Distance   []float64
	ReverbMix  []float64
	SampleRate int
}

// Len returns the number of samples covered.
func (c Curves) Len() int { return len(c.Azimuth) }

// At returns the direction triple at sample i.
func (c Curves) At(i int) (azimuth, elevation, distance float64) {
	return c.Azimuth[i], c.Elevation[i], c.Distance[i]
}

// Build evaluates p at every sample instant i/sampleRate.
func Build(p *plan.Plan, sampleCount, sampleRate int, s Smoothing) (Curves, error) {
	switch {
	case p == nil:
		return Curves{}, ErrNilPlan
	case sampleCount < 0:
		return Curves{}, fmt.Errorf("%w: %d", ErrInvalidLength, sampleCount)
	case sampleRate <= 0:
		return Curves{}, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	kfs := p.Keyframes()
	times := make([]float64, len(kfs))
	for i, kf := range kfs {
		times[i] = kf.Time
	}

	field := func(get func(plan.Keyframe) float64) []float64 {
		vals := make([]float64, len(kfs))
		for i, kf := range kfs {
			vals[i] = get(kf)
		}
		return sampleLinear(times, vals, sampleCount, sampleRate)
	}

	c := Curves{
		Azimuth:    field(func(k plan.Keyframe) float64 { return k.Azimuth }),
		Elevation:  field(func(k plan.Keyframe) float64 { return k.Elevation }),
		Distance:   field(func(k plan.Keyframe) float64 { return k.Distance }),
		ReverbMix:  field(func(k plan.Keyframe) float64 { return k.ReverbMix }),
		SampleRate: sampleRate,
	}

	c.Azimuth = Smooth(c.Azimuth, windowSamples(s.Direction, sampleRate))
	c.Elevation = Smooth(c.Elevation, windowSamples(s.Direction, sampleRate))
	c.Distance = Smooth(c.Distance, windowSamples(s.Distance, sampleRate))
	c.ReverbMix = Smooth(c.ReverbMix, windowSamples(s.ReverbMix, sampleRate))

	clampAll(c.Azimuth, -180, 180)
	clampAll(c.Elevation, -90, 90)
	clampAll(c.ReverbMix, 0, 1)

	return c, nil
}

// sampleLinear interpolates (times, vals) at n instants. Values are held
// before the first and after the last knot, which is the same as adding hold
// points at zero and at the end of the signal.
func sampleLinear(times, vals []float64, n, sampleRate int) []float64 {
	out := make([]float64, n)
	k := 0
	last := len(times) - 1

	for i := range out {
		t := float64(i) / float64(sampleRate)
		for k < last && times[k+1] <= t {
			k++
		}

		switch {
		case t <= times[0]:
			out[i] = vals[0]
		case k == last:
			out[i] = vals[last]
		default:
			frac := (t - times[k]) / (times[k+1] - times[k])
			out[i] = utils.Lerp(vals[k], vals[k+1], frac)
		}
	}

	return out
}

// windowSamples converts a duration to an odd window length (2h+1).
func windowSamples(d time.Duration, sampleRate int) int {
	half := int(d.Seconds()*float64(sampleRate)/2 + 0.5)
	return 2*half + 1
}

func clampAll(v []float64, lo, hi float64) {
	for i, x := range v {
		v[i] = utils.Clamp(x, lo, hi)
	}
}
