// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/binaural/filter"
	"github.com/ik5/binaural/utils"
)

// antiAliasRatio places the anti-alias cutoff just under the target Nyquist.
const antiAliasRatio = 0.45

// Resampler streams from src to a target sample rate using Catmull-Rom
// interpolation. It works on interleaved samples and preserves the channel
// count. When downsampling, every source frame first passes a fourth order
// low-pass (two cascaded biquads) at 0.45 of the target rate.
//
// A source of N frames yields ceil(N*dst/src) frames so durations are kept.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	pending []float32 // interleaved source frames, pending[0] is frame base
	base    int
	total   int // source frames read so far
	eof     bool
	pos     float64 // absolute read position in source frames
	emitted int     // output frames produced so far

	antiAlias [][2]*filter.Biquad
	readBuf   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := max(src.Channels(), 1)
	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    float64(src.SampleRate()) / float64(dstRate),
		channels: channels,
		readBuf:  make([]float32, 4096-4096%channels),
	}

	if r.ratio > 1 {
		cutoff := antiAliasRatio * float64(dstRate)
		rate := float64(src.SampleRate())
		r.antiAlias = make([][2]*filter.Biquad, channels)
		for c := range r.antiAlias {
			r.antiAlias[c] = [2]*filter.Biquad{
				filter.NewLowpass(rate, cutoff, filter.ButterworthQ),
				filter.NewLowpass(rate, cutoff, filter.ButterworthQ),
			}
		}
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}

	return nil
}

// fill reads from src until frame idx is buffered or the source ends.
func (r *Resampler) fill(idx int) error {
	for !r.eof && r.total <= idx {
		n, err := r.src.ReadSamples(r.readBuf)
		n -= n % r.channels
		if n > 0 {
			chunk := r.readBuf[:n]
			if r.antiAlias != nil {
				for i, v := range chunk {
					pair := r.antiAlias[i%r.channels]
					chunk[i] = float32(pair[1].Process(pair[0].Process(float64(v))))
				}
			}
			r.pending = append(r.pending, chunk...)
			r.total += n / r.channels
		}

		if errors.Is(err, io.EOF) {
			r.eof = true
			break
		}
		if err != nil {
			return fmt.Errorf("resampler: %w", err)
		}
	}

	return nil
}

func (r *Resampler) sample(frame, channel int) float64 {
	frame = min(max(frame, 0), r.total-1)
	return float64(r.pending[(frame-r.base)*r.channels+channel])
}

// compact drops frames that interpolation can no longer reach.
func (r *Resampler) compact() {
	keep := int(math.Floor(r.pos)) - 1
	drop := keep - r.base
	if drop <= 0 {
		return
	}
	drop = min(drop, r.total-r.base)
	r.pending = append(r.pending[:0], r.pending[drop*r.channels:]...)
	r.base += drop
}

// ReadSamples produces dst samples at the target rate.
// dst length must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	written := 0
	frames := len(dst) / r.channels
	done := false

	for written < frames {
		i0 := int(math.Floor(r.pos))
		if err := r.fill(i0 + 2); err != nil {
			return written * r.channels, err
		}
		if r.eof && r.pos >= float64(r.total) {
			done = true
			break
		}

		x := r.pos - float64(i0)
		for c := range r.channels {
			dst[written*r.channels+c] = float32(utils.CubicInterpolate(
				r.sample(i0-1, c), r.sample(i0, c), r.sample(i0+1, c), r.sample(i0+2, c), x,
			))
		}

		written++
		r.emitted++
		// absolute position avoids drift over long files
		r.pos = float64(r.emitted) * r.ratio
	}

	r.compact()

	if done {
		return written * r.channels, io.EOF
	}

	return written * r.channels, nil
}
