// SPDX-License-Identifier: EPL-2.0

package distance

import (
	"errors"
	"fmt"
	"math"

	"github.com/ik5/binaural/config"
	"github.com/ik5/binaural/curve"
	"github.com/ik5/binaural/utils"
)

var (
	ErrInvalidRange = errors.New("invalid distance range")
	ErrUnknownLaw   = errors.New("unknown distance law")
)

// rangeEpsilon is the smallest plan distance spread that still maps cutoffs.
const rangeEpsilon = 1e-6

// Model maps distance and elevation to gain and cutoffs.
type Model struct {
	law      config.DistanceConfig
	filter   config.FilterConfig
	nearDist float64
	farDist  float64
}

// New builds a model for a plan whose distances span [near, far].
func New(law config.DistanceConfig, filter config.FilterConfig, near, far float64) (*Model, error) {
	if !(near > 0) || math.IsInf(far, 0) || far < near {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrInvalidRange, near, far)
	}
	if law.Law != config.LawInverse && law.Law != config.LawSoft {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLaw, law.Law)
	}

	return &Model{law: law, filter: filter, nearDist: near, farDist: far}, nil
}

// Gain returns the attenuation for a source at d meters.
func (m *Model) Gain(d float64) float64 {
	d = math.Max(d, m.law.MinDistance)

	var g float64
	switch m.law.Law {
	case config.LawSoft:
		g = 1 / (1 + m.law.Rolloff*d*d)
	default:
		g = m.law.RefDistance / d
	}

	return math.Min(g, m.law.MaxGain)
}

// LowpassCutoff returns the low-pass frequency in Hz for distance d.
// A plan at a single distance always gets the near cutoff.
func (m *Model) LowpassCutoff(d float64) float64 {
	span := m.farDist - m.nearDist
	if span < rangeEpsilon {
		return m.filter.LowpassNearHz
	}
	t := utils.Clamp((d-m.nearDist)/span, 0, 1)

	return utils.Lerp(m.filter.LowpassNearHz, m.filter.LowpassFarHz, t)
}

// HighpassCutoff returns the high-pass frequency in Hz for elevation el.
func (m *Model) HighpassCutoff(el float64) float64 {
	t := utils.Clamp(math.Abs(el)/90, 0, 1)

	return utils.Lerp(m.filter.HighpassLevelHz, m.filter.HighpassExtremeHz, t)
}

// FilterEnabled reports whether tone curves are produced.
func (m *Model) FilterEnabled() bool { return m.filter.Enabled }

// Curves are the per-sample outputs of a Model. Lowpass and Highpass are
// nil when filtering is disabled.
type Curves struct {
	Gain     []float64
	Lowpass  []float64
	Highpass []float64
}

// Curves evaluates the model at every sample of c.
func (m *Model) Curves(c curve.Curves) Curves {
	n := c.Len()
	out := Curves{Gain: make([]float64, n)}
	for i, d := range c.Distance {
		out.Gain[i] = m.Gain(d)
	}
	if !m.filter.Enabled {
		return out
	}

	out.Lowpass = make([]float64, n)
	out.Highpass = make([]float64, n)
	for i := range n {
		out.Lowpass[i] = m.LowpassCutoff(c.Distance[i])
		out.Highpass[i] = m.HighpassCutoff(c.Elevation[i])
	}

	return out
}
