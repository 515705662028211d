// SPDX-License-Identifier: EPL-2.0

package reverb

import (
	"github.com/ik5/binaural/audio"
	"github.com/ik5/binaural/config"
	"github.com/ik5/binaural/utils"
)

const (
	tuningRate   = 44100.0
	stereoSpread = 23

	inputGain  = 0.015
	scaleWet   = 3.0
	scaleDamp  = 0.4
	scaleRoom  = 0.28
	offsetRoom = 0.7

	allpassFeedback = 0.5
)

// Delay lengths in samples at 44.1 kHz.
var (
	combTuning    = [...]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTuning = [...]int{556, 441, 341, 225}
)

type comb struct {
	buf      []float64
	pos      int
	feedback float64
	damp1    float64
	damp2    float64
	store    float64
}

func newComb(size int, feedback, damp float64) *comb {
	return &comb{
		buf:      make([]float64, max(size, 1)),
		feedback: feedback,
		damp1:    damp,
		damp2:    1 - damp,
	}
}

func (c *comb) process(x float64) float64 {
	out := c.buf[c.pos]
	c.store = out*c.damp2 + c.store*c.damp1
	c.buf[c.pos] = x + c.store*c.feedback
	if c.pos++; c.pos == len(c.buf) {
		c.pos = 0
	}

	return out
}

type allpass struct {
	buf []float64
	pos int
}

func newAllpass(size int) *allpass {
	return &allpass{buf: make([]float64, max(size, 1))}
}

func (a *allpass) process(x float64) float64 {
	delayed := a.buf[a.pos]
	a.buf[a.pos] = x + delayed*allpassFeedback
	if a.pos++; a.pos == len(a.buf) {
		a.pos = 0
	}

	return delayed - x
}

// Freeverb is a stereo Schroeder/Moorer reverberator. It is stateful and not
// safe for concurrent use.
type Freeverb struct {
	combsL, combsR         []*comb
	allpassesL, allpassesR []*allpass
	wet1, wet2             float64
}

// NewFreeverb tunes the network for sampleRate. Parameters outside [0, 1]
// are clamped.
func NewFreeverb(sampleRate int, cfg config.ReverbConfig) *Freeverb {
	scale := float64(sampleRate) / tuningRate
	room := utils.Clamp(cfg.RoomSize, 0, 1)*scaleRoom + offsetRoom
	damp := utils.Clamp(cfg.Damping, 0, 1) * scaleDamp
	width := utils.Clamp(cfg.Width, 0, 1)
	wet := utils.Clamp(cfg.WetLevel, 0, 1) * scaleWet

	f := &Freeverb{
		wet1: wet * (width/2 + 0.5),
		wet2: wet * (1 - width) / 2,
	}
	for _, n := range combTuning {
		size := int(float64(n) * scale)
		f.combsL = append(f.combsL, newComb(size, room, damp))
		f.combsR = append(f.combsR, newComb(size+stereoSpread, room, damp))
	}
	for _, n := range allpassTuning {
		size := int(float64(n) * scale)
		f.allpassesL = append(f.allpassesL, newAllpass(size))
		f.allpassesR = append(f.allpassesR, newAllpass(size+stereoSpread))
	}

	return f
}

// Tick renders one wet frame.
func (f *Freeverb) Tick(left, right float64) (float64, float64) {
	in := (left + right) * inputGain

	var outL, outR float64
	for i := range f.combsL {
		outL += f.combsL[i].process(in)
		outR += f.combsR[i].process(in)
	}
	for i := range f.allpassesL {
		outL = f.allpassesL[i].process(outL)
		outR = f.allpassesR[i].process(outR)
	}

	return outL*f.wet1 + outR*f.wet2, outR*f.wet1 + outL*f.wet2
}

// Process renders the wet signal of in. The result has the same length;
// the reverb tail past the end of in is not rendered.
func (f *Freeverb) Process(in audio.Stereo) audio.Stereo {
	out := audio.NewStereo(in.Len(), in.SampleRate)
	for i := range out.Left {
		out.Left[i], out.Right[i] = f.Tick(in.Left[i], in.Right[i])
	}

	return out
}
