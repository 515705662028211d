// SPDX-License-Identifier: EPL-2.0

package reverb

import (
	"errors"
	"fmt"
	"math"

	"github.com/ik5/binaural/audio"
	"github.com/ik5/binaural/config"
	"github.com/ik5/binaural/utils"
)

var (
	ErrEmptyMix   = errors.New("reverb mix curve is empty")
	ErrUnknownLaw = errors.New("unknown mix law")
)

// Mixer blends a signal with its reverberated copy. A Mixer holds no
// render state; every Apply uses a fresh reverberator.
type Mixer struct {
	cfg   config.ReverbConfig
	gains func(m float64) (dry, wet float64)
}

// NewMixer returns a mixer for the configured room and mix law.
func NewMixer(cfg config.ReverbConfig) (*Mixer, error) {
	m := &Mixer{cfg: cfg}
	switch cfg.MixLaw {
	case config.MixLinear, "":
		m.gains = linearGains
	case config.MixEqualPower:
		m.gains = equalPowerGains
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLaw, cfg.MixLaw)
	}

	return m, nil
}

func linearGains(m float64) (float64, float64) {
	return 1 - m, m
}

func equalPowerGains(m float64) (float64, float64) {
	return math.Cos(m * math.Pi / 2), math.Sin(m * math.Pi / 2)
}

// Apply returns dry blended with its wet copy following mix.
func (m *Mixer) Apply(dry audio.Stereo, mix []float64) (audio.Stereo, error) {
	if err := dry.Validate(); err != nil {
		return audio.Stereo{}, err
	}
	n := dry.Len()
	if n == 0 {
		return audio.NewStereo(0, dry.SampleRate), nil
	}
	if len(mix) == 0 {
		return audio.Stereo{}, ErrEmptyMix
	}

	out := audio.NewStereo(n, dry.SampleRate)
	if allZero(mix) {
		copy(out.Left, dry.Left)
		copy(out.Right, dry.Right)
		return out, nil
	}

	wet := NewFreeverb(dry.SampleRate, m.cfg).Process(dry)
	for i := range n {
		d, w := m.gains(utils.Clamp(mix[min(i, len(mix)-1)], 0, 1))
		out.Left[i] = dry.Left[i]*d + wet.Left[i]*w
		out.Right[i] = dry.Right[i]*d + wet.Right[i]*w
	}

	return out, nil
}

// allZero reports whether mix never asks for any wet signal.
func allZero(mix []float64) bool {
	for _, v := range mix {
		if v > 0 {
			return false
		}
	}

	return true
}
