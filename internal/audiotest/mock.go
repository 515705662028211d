// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds signal generators shared by tests.
package audiotest

import (
	"errors"
	"io"
	"math"
)

// ErrInjected is returned by failing sources.
var ErrInjected = errors.New("injected read failure")

// MockSource generates frames from a waveform function.
// It satisfies audio.Source without importing it.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int // total frames to generate
	generated  int
	failAfter  int // frames before ErrInjected; <0 disables
	waveform   func(frame, channel int) float32
}

// NewMockSource creates a source of frames frames.
func NewMockSource(sampleRate, channels, frames int, waveform func(frame, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		failAfter:  -1,
		waveform:   waveform,
	}
}

// NewSilentSource creates a source of zeros.
func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

// NewSineSource creates a full scale sine on every channel.
func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * frequency * float64(frame) / float64(sampleRate)))
	})
}

// NewConstantSource creates a DC source.
func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

// FailAfter makes ReadSamples fail once n frames were produced.
func (m *MockSource) FailAfter(n int) *MockSource {
	m.failAfter = n
	return m
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Close() error    { return nil }

// Reset rewinds the generator.
func (m *MockSource) Reset() { m.generated = 0 }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.failAfter >= 0 && m.generated >= m.failAfter {
		return 0, ErrInjected
	}
	if m.generated >= m.frames {
		return 0, io.EOF
	}

	count := min(len(dst)/m.channels, m.frames-m.generated)
	if m.failAfter >= 0 {
		count = min(count, m.failAfter-m.generated)
	}
	for f := range count {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.generated+f, ch)
		}
	}
	m.generated += count

	if m.generated >= m.frames {
		return count * m.channels, io.EOF
	}

	return count * m.channels, nil
}

// Sine returns n samples of a sine at freq with the given amplitude.
func Sine(n, sampleRate int, freq, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}

	return out
}

// Noise returns n samples of deterministic white noise in [-amplitude, amplitude].
func Noise(n int, seed uint32, amplitude float64) []float64 {
	out := make([]float64, n)
	state := seed | 1
	for i := range out {
		// xorshift32
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		out[i] = amplitude * (float64(state)/float64(math.MaxUint32)*2 - 1)
	}

	return out
}
