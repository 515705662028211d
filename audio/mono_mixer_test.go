// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"testing"

	"github.com/ik5/binaural/internal/audiotest"
)

func TestMonoMixer_Metadata(t *testing.T) {
	t.Parallel()

	mixer := NewMonoMixer(audiotest.NewSilentSource(44100, 2, 10))
	if mixer.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", mixer.Channels())
	}
	if mixer.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", mixer.SampleRate())
	}
	if !mixer.Downmixing() {
		t.Error("Downmixing() = false for a stereo source")
	}
	if NewMonoMixer(audiotest.NewSilentSource(8000, 1, 10)).Downmixing() {
		t.Error("Downmixing() = true for a mono source")
	}
}

func TestMonoMixer_Averages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		values   []float32
		want     float32
	}{
		{name: "stereo", channels: 2, values: []float32{1, 0}, want: 0.5},
		{name: "stereo opposite", channels: 2, values: []float32{0.5, -0.5}, want: 0},
		{name: "three channels", channels: 3, values: []float32{0.3, 0.3, 0.6}, want: 0.4},
		{name: "mono passthrough", channels: 1, values: []float32{0.75}, want: 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewMockSource(8000, tt.channels, 4, func(_, ch int) float32 {
				return tt.values[ch]
			})
			mixer := NewMonoMixer(src)

			buf := make([]float32, 8)
			n, err := mixer.ReadSamples(buf)
			if err != nil && !errors.Is(err, io.EOF) {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if n != 4 {
				t.Fatalf("ReadSamples() n = %d, want 4", n)
			}
			for i := range n {
				if diff := buf[i] - tt.want; diff > 1e-6 || diff < -1e-6 {
					t.Errorf("buf[%d] = %v, want %v", i, buf[i], tt.want)
				}
			}
		})
	}
}

func TestMonoMixer_EmptyDst(t *testing.T) {
	t.Parallel()

	mixer := NewMonoMixer(audiotest.NewSilentSource(8000, 2, 10))
	if n, err := mixer.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v; want 0, nil", n, err)
	}
}

func TestMonoMixer_PropagatesError(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(8000, 2, 100).FailAfter(0)
	_, err := NewMonoMixer(src).ReadSamples(make([]float32, 16))
	if !errors.Is(err, audiotest.ErrInjected) {
		t.Errorf("ReadSamples() error = %v, want ErrInjected", err)
	}
}
