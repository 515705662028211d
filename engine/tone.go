// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"github.com/ik5/binaural/distance"
	"github.com/ik5/binaural/filter"
)

// tone is the distance and elevation filter ahead of convolution.
type tone struct {
	rate     float64
	lowpass  []float64
	highpass []float64
	lp, hp   *filter.Biquad
}

// newTone returns nil when g carries no tone curves.
func newTone(rate float64, g distance.Curves) *tone {
	if g.Lowpass == nil || g.Highpass == nil || len(g.Lowpass) == 0 {
		return nil
	}

	return &tone{
		rate:     rate,
		lowpass:  g.Lowpass,
		highpass: g.Highpass,
		lp:       filter.NewLowpass(rate, g.Lowpass[0], filter.ButterworthQ),
		hp:       filter.NewHighpass(rate, g.Highpass[0], filter.ButterworthQ),
	}
}

// retune sets the cutoffs to the curve values at the middle of [from, to).
func (t *tone) retune(from, to int) {
	mid := from + (to-from-1)/2
	t.lp.SetLowpass(t.rate, t.lowpass[mid], filter.ButterworthQ)
	t.hp.SetHighpass(t.rate, t.highpass[mid], filter.ButterworthQ)
}

func (t *tone) process(x []float64) {
	t.hp.ProcessInPlace(x)
	t.lp.ProcessInPlace(x)
}
