// SPDX-License-Identifier: EPL-2.0

package finish

import (
	"errors"
	"math"
	"testing"

	"github.com/ik5/binaural/audio"
	"github.com/ik5/binaural/config"
)

func ramp(n int, scale float64) audio.Stereo {
	s := audio.NewStereo(n, 1000)
	for i := range n {
		s.Left[i] = scale * float64(i) / float64(n)
		s.Right[i] = -scale * float64(i) / float64(n)
	}
	return s
}

func TestFinish_Tail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tail    string
		tailMS  float64
		frames  int
		dropped int
	}{
		{"trim", config.TailTrim, 50, 100, 50},
		{"default trims", "", 0, 100, 50},
		{"keep", config.TailKeep, 20, 120, 30},
		{"keep capped", config.TailKeep, 500, 150, 0},
		{"keep nothing", config.TailKeep, 0, 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.OutputConfig{Ceiling: 0.98, Tail: tt.tail, TailMS: tt.tailMS}
			out, r, err := Finish(ramp(150, 0.5), 100, cfg)
			if err != nil {
				t.Fatal(err)
			}
			if out.Len() != tt.frames || r.Frames != tt.frames || r.Dropped != tt.dropped {
				t.Fatalf("frames %d (report %+v), want %d dropping %d", out.Len(), r, tt.frames, tt.dropped)
			}
			if len(out.Right) != len(out.Left) {
				t.Fatal("channels differ in length")
			}
		})
	}
}

func TestFinish_KeptTailFadesOut(t *testing.T) {
	t.Parallel()

	s := audio.NewStereo(150, 1000)
	for i := range s.Len() {
		s.Left[i], s.Right[i] = 0.5, -0.5
	}

	cfg := config.OutputConfig{Ceiling: 0.98, Tail: config.TailKeep, TailMS: 50}
	out, _, err := Finish(s, 100, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if out.Left[99] != 0.5 || out.Right[99] != -0.5 {
		t.Errorf("signal before the tail changed: %g %g", out.Left[99], out.Right[99])
	}
	if out.Left[100] >= 0.5 {
		t.Errorf("tail does not start fading: %g", out.Left[100])
	}
	for i := 101; i < out.Len(); i++ {
		if out.Left[i] > out.Left[i-1] {
			t.Fatalf("fade rises at %d: %g > %g", i, out.Left[i], out.Left[i-1])
		}
	}
	if last := out.Len() - 1; out.Left[last] != 0 || out.Right[last] != 0 {
		t.Errorf("last frame = %g %g, want silence", out.Left[last], out.Right[last])
	}

	trimmed, _, _ := Finish(ramp(150, 0.5), 100, config.OutputConfig{Ceiling: 0.98, Tail: config.TailTrim})
	if got, want := trimmed.Left[99], 0.5*99.0/150; got != want {
		t.Errorf("trim policy faded the signal: %g, want %g", got, want)
	}
}

func TestTailFrames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cfg  config.OutputConfig
		want int
	}{
		{config.OutputConfig{Tail: config.TailKeep, TailMS: 500}, 24000},
		{config.OutputConfig{Tail: config.TailKeep, TailMS: -5}, 0},
		{config.OutputConfig{Tail: config.TailTrim, TailMS: 500}, 0},
		{config.OutputConfig{TailMS: 500}, 0},
	}

	for _, tt := range tests {
		if got := TailFrames(tt.cfg, 48000); got != tt.want {
			t.Errorf("TailFrames(%+v) = %d, want %d", tt.cfg, got, tt.want)
		}
	}
}

func TestFinish_PeakScaling(t *testing.T) {
	t.Parallel()

	cfg := config.OutputConfig{Ceiling: 0.98, Tail: config.TailTrim}

	loud := ramp(100, 4)
	loud.Right[10] = -5
	out, r, err := Finish(loud, 100, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if r.Peak != 5 || math.Abs(r.Scale-0.98/5) > 1e-15 {
		t.Fatalf("report = %+v", r)
	}
	if got := out.Peak(); math.Abs(got-0.98) > 1e-12 {
		t.Errorf("peak after scaling = %g, want 0.98", got)
	}
	// Uniform scaling keeps proportions.
	if got, want := out.Left[50], 4*0.5*0.98/5; math.Abs(got-want) > 1e-12 {
		t.Errorf("left[50] = %g, want %g", got, want)
	}

	quiet := ramp(100, 0.5)
	want := append([]float64(nil), quiet.Left...)
	out, r, _ = Finish(quiet, 100, cfg)
	if r.Scale != 1 {
		t.Errorf("quiet signal scaled by %g", r.Scale)
	}
	for i := range want {
		if out.Left[i] != want[i] {
			t.Fatalf("quiet signal changed at %d", i)
		}
	}
}

func TestFinish_NonFinite(t *testing.T) {
	t.Parallel()

	s := ramp(10, 0.5)
	s.Left[2] = math.NaN()
	s.Right[3] = math.Inf(1)
	s.Right[4] = math.Inf(-1)

	out, r, err := Finish(s, 10, config.OutputConfig{Ceiling: 0.98})
	if err != nil {
		t.Fatal(err)
	}
	if r.NonFinite != 3 {
		t.Errorf("non-finite = %d, want 3", r.NonFinite)
	}
	if out.Left[2] != 0 || out.Right[3] != 0 || out.Right[4] != 0 {
		t.Error("non-finite samples not zeroed")
	}
	if r.Scale != 1 {
		t.Errorf("scale = %g after zeroing", r.Scale)
	}
}

func TestFinish_Errors(t *testing.T) {
	t.Parallel()

	if _, _, err := Finish(ramp(10, 1), 10, config.OutputConfig{Ceiling: 0}); !errors.Is(err, ErrInvalidCeiling) {
		t.Errorf("zero ceiling = %v", err)
	}
	if _, _, err := Finish(ramp(10, 1), 10, config.OutputConfig{Ceiling: math.NaN()}); !errors.Is(err, ErrInvalidCeiling) {
		t.Errorf("nan ceiling = %v", err)
	}
	if _, _, err := Finish(ramp(10, 1), 10, config.OutputConfig{Ceiling: 1, Tail: "fade"}); !errors.Is(err, ErrUnknownTail) {
		t.Errorf("unknown tail = %v", err)
	}

	bad := ramp(10, 1)
	bad.Right = bad.Right[:5]
	if _, _, err := Finish(bad, 10, config.OutputConfig{Ceiling: 1}); !errors.Is(err, audio.ErrChannelMismatch) {
		t.Errorf("mismatch = %v", err)
	}

	out, r, err := Finish(audio.NewStereo(0, 1000), 0, config.OutputConfig{Ceiling: 1})
	if err != nil || out.Len() != 0 || r.Peak != 0 {
		t.Errorf("empty = %d %+v %v", out.Len(), r, err)
	}
}
