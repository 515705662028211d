// SPDX-License-Identifier: EPL-2.0

package filter

import "math"

// ButterworthQ gives a maximally flat pass band for a single section.
const ButterworthQ = 1 / math.Sqrt2

// minCutoff keeps the design away from DC where coefficients degenerate.
const minCutoff = 1.0

// Biquad is a second order IIR section in transposed direct form II.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	z1, z2 float64
}

// NewLowpass returns a low-pass section.
func NewLowpass(sampleRate, cutoff, q float64) *Biquad {
	b := &Biquad{}
	b.SetLowpass(sampleRate, cutoff, q)

	return b
}

// NewHighpass returns a high-pass section.
func NewHighpass(sampleRate, cutoff, q float64) *Biquad {
	b := &Biquad{}
	b.SetHighpass(sampleRate, cutoff, q)

	return b
}

// SetLowpass redesigns the section as a low-pass, keeping its state.
func (b *Biquad) SetLowpass(sampleRate, cutoff, q float64) {
	cosW, alpha := prewarp(sampleRate, cutoff, q)
	a0 := 1 + alpha
	b.b0 = (1 - cosW) / 2 / a0
	b.b1 = (1 - cosW) / a0
	b.b2 = b.b0
	b.a1 = -2 * cosW / a0
	b.a2 = (1 - alpha) / a0
}

// SetHighpass redesigns the section as a high-pass, keeping its state.
func (b *Biquad) SetHighpass(sampleRate, cutoff, q float64) {
	cosW, alpha := prewarp(sampleRate, cutoff, q)
	a0 := 1 + alpha
	b.b0 = (1 + cosW) / 2 / a0
	b.b1 = -(1 + cosW) / a0
	b.b2 = b.b0
	b.a1 = -2 * cosW / a0
	b.a2 = (1 - alpha) / a0
}

// Process filters a single sample.
func (b *Biquad) Process(x float64) float64 {
	y := b.b0*x + b.z1
	b.z1 = b.b1*x - b.a1*y + b.z2
	b.z2 = b.b2*x - b.a2*y

	return y
}

// ProcessInPlace filters buf in place.
func (b *Biquad) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = b.Process(x)
	}
}

// MaxCutoff is the highest cutoff a section accepts at sampleRate.
func MaxCutoff(sampleRate float64) float64 {
	return 0.49 * sampleRate
}

func prewarp(sampleRate, cutoff, q float64) (cosW, alpha float64) {
	if q <= 0 {
		q = ButterworthQ
	}
	cutoff = math.Min(math.Max(cutoff, minCutoff), MaxCutoff(sampleRate))
	w0 := 2 * math.Pi * cutoff / sampleRate

	return math.Cos(w0), math.Sin(w0) / (2 * q)
}
