// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"math/bits"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/ik5/binaural/audio"
	"github.com/ik5/binaural/hrtf"
)

// spectrum is the transform of one response pair.
type spectrum struct {
	left, right []complex128
}

type direction struct {
	azimuth, elevation float64
}

// convolver does FFT block convolution for one render.
type convolver struct {
	provider hrtf.Provider
	irLen    int
	size     int
	scale    float64
	fft      *fourier.FFT

	cache map[direction]*spectrum

	seq        []float64
	xOld, xNew []complex128
	yl, yr     []complex128
	outL, outR []float64
}

func newConvolver(p hrtf.Provider, blockSize int) *convolver {
	irLen := p.Len()
	size := nextPow2(blockSize + irLen - 1)
	bins := size/2 + 1

	c := &convolver{
		provider: p,
		irLen:    irLen,
		size:     size,
		fft:      fourier.NewFFT(size),
		cache:    make(map[direction]*spectrum),
		seq:      make([]float64, size),
		xOld:     make([]complex128, bins),
		xNew:     make([]complex128, bins),
		yl:       make([]complex128, bins),
		yr:       make([]complex128, bins),
		outL:     make([]float64, size),
		outR:     make([]float64, size),
	}

	// Calibrate the round trip gain with a unit impulse.
	c.seq[0] = 1
	c.fft.Sequence(c.outL, c.fft.Coefficients(c.xOld, c.seq))
	c.scale = 1 / c.outL[0]

	return c
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}

	return 1 << bits.Len(uint(n-1))
}

// lookup returns the spectrum of the response nearest to (az, el).
func (c *convolver) lookup(az, el float64) (*spectrum, error) {
	pair, err := c.provider.IR(az, el)
	if err != nil {
		return nil, fmt.Errorf("hrtf lookup (%g, %g): %w", az, el, err)
	}

	key := direction{pair.Azimuth, pair.Elevation}
	if s, ok := c.cache[key]; ok {
		return s, nil
	}
	if len(pair.Left) != c.irLen || len(pair.Right) != c.irLen {
		return nil, fmt.Errorf("%w: got %d/%d taps, want %d", ErrResponseLength, len(pair.Left), len(pair.Right), c.irLen)
	}

	s := &spectrum{
		left:  c.fft.Coefficients(nil, c.pad(pair.Left)),
		right: c.fft.Coefficients(nil, c.pad(pair.Right)),
	}
	c.cache[key] = s

	return s, nil
}

// pad copies x into the zeroed sequence buffer.
func (c *convolver) pad(x []float64) []float64 {
	n := copy(c.seq, x)
	clear(c.seq[n:])

	return c.seq
}

// static convolves x scaled by gain with s.
func (c *convolver) static(x []float64, gain float64, s *spectrum) {
	floats.Scale(gain, x)
	c.fft.Coefficients(c.xNew, c.pad(x))
	for k, v := range c.xNew {
		c.yl[k] = v * s.left[k]
		c.yr[k] = v * s.right[k]
	}
	c.inverse()
}

// crossfade blends x from the old state into the new one across the block.
func (c *convolver) crossfade(x []float64, from, to state) {
	n := float64(len(x))

	if from.spec == to.spec {
		for i := range x {
			f := float64(i+1) / n
			x[i] *= (1-f)*from.gain + f*to.gain
		}
		c.static(x, 1, to.spec)
		return
	}

	seq := c.pad(x)
	for i := range x {
		seq[i] = x[i] * (1 - float64(i+1)/n) * from.gain
	}
	c.fft.Coefficients(c.xOld, seq)

	seq = c.pad(x)
	for i := range x {
		seq[i] = x[i] * (float64(i+1) / n) * to.gain
	}
	c.fft.Coefficients(c.xNew, seq)

	for k := range c.yl {
		c.yl[k] = c.xOld[k]*from.spec.left[k] + c.xNew[k]*to.spec.left[k]
		c.yr[k] = c.xOld[k]*from.spec.right[k] + c.xNew[k]*to.spec.right[k]
	}
	c.inverse()
}

func (c *convolver) inverse() {
	c.fft.Sequence(c.outL, c.yl)
	c.fft.Sequence(c.outR, c.yr)
	floats.Scale(c.scale, c.outL)
	floats.Scale(c.scale, c.outR)
}

// accumulate overlap-adds the first n result samples at offset.
func (c *convolver) accumulate(out audio.Stereo, offset, n int) {
	n = min(n, out.Len()-offset)
	floats.Add(out.Left[offset:offset+n], c.outL[:n])
	floats.Add(out.Right[offset:offset+n], c.outR[:n])
}
