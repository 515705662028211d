// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// BufferSource serves an in-memory mono buffer through the Source interface.
type BufferSource struct {
	buf Mono
	off int
}

// NewBufferSource wraps m. The samples are not copied.
func NewBufferSource(m Mono) *BufferSource {
	return &BufferSource{buf: m}
}

func (b *BufferSource) SampleRate() int { return b.buf.SampleRate }
func (b *BufferSource) Channels() int   { return 1 }
func (b *BufferSource) BufSize() int    { return 4096 }
func (b *BufferSource) Close() error    { return nil }

func (b *BufferSource) ReadSamples(dst []float32) (int, error) {
	if b.off >= len(b.buf.Samples) {
		return 0, io.EOF
	}

	n := min(len(dst), len(b.buf.Samples)-b.off)
	for i := range n {
		dst[i] = float32(b.buf.Samples[b.off+i])
	}
	b.off += n

	if b.off >= len(b.buf.Samples) {
		return n, io.EOF
	}

	return n, nil
}

// ReadMono drains src into memory as a mono buffer at targetRate.
//
// The pipeline is: downmix -> resample (skipped when rates match) -> collect.
// A targetRate of 0 keeps the source rate.
func ReadMono(src Source, targetRate int) (Mono, error) {
	if src.SampleRate() <= 0 {
		return Mono{}, ErrInvalidSampleRate
	}
	if targetRate <= 0 {
		targetRate = src.SampleRate()
	}

	var stream Source = NewMonoMixer(src)
	if targetRate != src.SampleRate() {
		stream = NewResampler(stream, targetRate)
	}

	size := stream.BufSize()
	if size <= 0 {
		size = 4096
	}
	buf := make([]float32, size)
	out := Mono{SampleRate: targetRate}

	for {
		n, err := stream.ReadSamples(buf)
		for _, v := range buf[:n] {
			out.Samples = append(out.Samples, float64(v))
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Mono{}, fmt.Errorf("read mono: %w", err)
		}
		if n == 0 && err == nil {
			// a stalled source would spin forever
			return Mono{}, fmt.Errorf("read mono: %w", io.ErrNoProgress)
		}
	}

	return out, nil
}

// Resample converts an in-memory mono buffer to targetRate.
func Resample(m Mono, targetRate int) (Mono, error) {
	if m.SampleRate == targetRate {
		return m, nil
	}

	return ReadMono(NewBufferSource(m), targetRate)
}
