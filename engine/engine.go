// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/binaural/audio"
	"github.com/ik5/binaural/curve"
	"github.com/ik5/binaural/distance"
	"github.com/ik5/binaural/hrtf"
)

const (
	DefaultBlockSize  = 1024
	DefaultToneUpdate = 2

	minBlockSize = 16
)

// Option configures an Engine.
type Option func(*Engine) error

// WithBlockSize sets the convolution block length in samples.
func WithBlockSize(n int) Option {
	return func(e *Engine) error {
		if n < minBlockSize {
			return fmt.Errorf("%w: block size %d < %d", ErrInvalidOption, n, minBlockSize)
		}
		e.blockSize = n
		return nil
	}
}

// WithToneUpdate sets how many blocks the tone filter keeps its cutoffs.
func WithToneUpdate(blocks int) Option {
	return func(e *Engine) error {
		if blocks < 1 {
			return fmt.Errorf("%w: tone update every %d blocks", ErrInvalidOption, blocks)
		}
		e.toneUpdate = blocks
		return nil
	}
}

// WithLogger sets the logger. nil discards.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) error {
		if l == nil {
			l = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		e.logger = l
		return nil
	}
}

// Engine renders binaural stereo from a mono signal and parameter curves.
type Engine struct {
	provider   hrtf.Provider
	blockSize  int
	toneUpdate int
	logger     *slog.Logger
}

// New returns an engine reading responses from p.
func New(p hrtf.Provider, opts ...Option) (*Engine, error) {
	if p == nil {
		return nil, ErrNilProvider
	}

	e := &Engine{
		provider:   p,
		blockSize:  DefaultBlockSize,
		toneUpdate: DefaultToneUpdate,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// BlockSize returns the convolution block length.
func (e *Engine) BlockSize() int { return e.blockSize }

// Stats describes one render.
type Stats struct {
	Blocks     int // blocks convolved
	Crossfades int // blocks blended between two states
	Switches   int // crossfades that changed the impulse response
	Spectra    int // distinct responses transformed
}

// state is what a block is rendered with.
type state struct {
	azimuth, elevation, distance float64
	gain                         float64
	spec                         *spectrum
}

func (s state) moved(az, el, dist, gain float64) bool {
	return az != s.azimuth || el != s.elevation || dist != s.distance || gain != s.gain
}

// Render convolves in with the responses along c, scaled by g.Gain and
// tone-shaped by g.Lowpass and g.Highpass when present. The result holds
// len(in)+irLen-1 frames at c.SampleRate.
func (e *Engine) Render(ctx context.Context, in []float64, c curve.Curves, g distance.Curves) (audio.Stereo, Stats, error) {
	var stats Stats

	n := len(in)
	if c.Len() != n || len(c.Elevation) != n || len(c.Distance) != n || len(g.Gain) != n {
		return audio.Stereo{}, stats, fmt.Errorf("%w: input %d, curves %d, gain %d", ErrCurveLength, n, c.Len(), len(g.Gain))
	}
	if g.Lowpass != nil && (len(g.Lowpass) != n || len(g.Highpass) != n) {
		return audio.Stereo{}, stats, fmt.Errorf("%w: tone curves %d/%d", ErrCurveLength, len(g.Lowpass), len(g.Highpass))
	}
	if c.SampleRate <= 0 {
		return audio.Stereo{}, stats, audio.ErrInvalidSampleRate
	}
	if n == 0 {
		return audio.NewStereo(0, c.SampleRate), stats, nil
	}

	irLen := e.provider.Len()
	conv := newConvolver(e.provider, e.blockSize)
	tone := newTone(float64(c.SampleRate), g)
	out := audio.NewStereo(n+irLen-1, c.SampleRate)
	block := make([]float64, e.blockSize)

	var cur state
	for b, start := 0, 0; start < n; b, start = b+1, start+e.blockSize {
		if err := ctx.Err(); err != nil {
			return audio.Stereo{}, stats, err
		}

		end := min(start+e.blockSize, n)
		x := block[:end-start]
		copy(x, in[start:end])
		if tone != nil {
			if b%e.toneUpdate == 0 {
				tone.retune(start, min(start+e.toneUpdate*e.blockSize, n))
			}
			tone.process(x)
		}

		// Direction is clamped rather than rejected.
		last := end - 1
		az, el, dist := c.At(last)
		az, el = hrtf.Normalize(az, el)
		gain := g.Gain[last]

		switch {
		case b == 0:
			spec, err := conv.lookup(az, el)
			if err != nil {
				return audio.Stereo{}, stats, err
			}
			cur = state{az, el, dist, gain, spec}
			conv.static(x, cur.gain, cur.spec)

		case cur.moved(az, el, dist, gain):
			spec, err := conv.lookup(az, el)
			if err != nil {
				return audio.Stereo{}, stats, err
			}
			next := state{az, el, dist, gain, spec}
			conv.crossfade(x, cur, next)
			stats.Crossfades++
			if next.spec != cur.spec {
				stats.Switches++
			}
			cur = next

		default:
			conv.static(x, cur.gain, cur.spec)
		}

		conv.accumulate(out, start, len(x)+irLen-1)
		stats.Blocks++
	}
	stats.Spectra = len(conv.cache)

	e.logger.DebugContext(ctx, "convolution finished",
		slog.Int("blocks", stats.Blocks),
		slog.Int("crossfades", stats.Crossfades),
		slog.Int("switches", stats.Switches),
		slog.Int("spectra", stats.Spectra),
	)

	return out, stats, nil
}
