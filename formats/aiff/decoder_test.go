// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/binaural/audio"
)

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	sampleRate int
	channels   int
	samples    []int
	offset     int
	failWith   error
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{SampleRate: m.sampleRate, NumChannels: m.channels}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n
	if m.offset >= len(m.samples) {
		return n, io.EOF
	}

	return n, nil
}

func newMockSource(bitDepth, channels int, samples ...int) *source {
	return &source{
		dec:        &mockAiffReader{sampleRate: 44100, channels: channels, samples: samples},
		sampleRate: 44100,
		channels:   channels,
		bitDepth:   bitDepth,
	}
}

func TestDecoder_Rejects(t *testing.T) {
	t.Parallel()

	for name, data := range map[string][]byte{
		"garbage": []byte("This is not AIFF data"),
		"empty":   {},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(data)); !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
			}
		})
	}
}

func TestSource_BitDepthNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bitDepth int
		raw      int
		want     float32
	}{
		{bitDepth: 8, raw: 64, want: 0.5},
		{bitDepth: 8, raw: -128, want: -1},
		{bitDepth: 16, raw: 16384, want: 0.5},
		{bitDepth: 24, raw: -4194304, want: -0.5},
		{bitDepth: 32, raw: 1073741824, want: 0.5},
	}

	for _, tt := range tests {
		src := newMockSource(tt.bitDepth, 1, tt.raw)
		buf := make([]float32, 4)

		n, err := src.ReadSamples(buf)
		if n != 1 || !errors.Is(err, io.EOF) {
			t.Fatalf("%d-bit: ReadSamples() = %d, %v; want 1, EOF", tt.bitDepth, n, err)
		}
		if math.Abs(float64(buf[0]-tt.want)) > 1e-6 {
			t.Errorf("%d-bit: sample = %v, want %v", tt.bitDepth, buf[0], tt.want)
		}
	}
}

func TestSource_DrainsThroughReadMono(t *testing.T) {
	t.Parallel()

	samples := make([]int, 10000)
	for i := range samples {
		samples[i] = 8192
	}
	src := newMockSource(16, 2, samples...)

	mono, err := audio.ReadMono(src, 0)
	if err != nil {
		t.Fatalf("ReadMono() error = %v", err)
	}
	if mono.Len() != 5000 {
		t.Fatalf("len = %d, want 5000", mono.Len())
	}
	for i, v := range mono.Samples {
		if v != 0.25 {
			t.Fatalf("sample %d = %v, want 0.25", i, v)
		}
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src := newMockSource(16, 1)
	src.dec.(*mockAiffReader).failWith = io.ErrUnexpectedEOF

	if _, err := src.ReadSamples(make([]float32, 8)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestSource_EmptyBuffer(t *testing.T) {
	t.Parallel()

	src := newMockSource(16, 1, 1, 2, 3)
	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v; want 0, nil", n, err)
	}
	if src.BufSize() != 4096 {
		t.Errorf("BufSize() = %d, want 4096 before the first read", src.BufSize())
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int, 44100)
	buf := make([]float32, 4096)

	for b.Loop() {
		src := newMockSource(16, 1, samples...)
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
