// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ik5/binaural/config"
	"github.com/ik5/binaural/curve"
	"github.com/ik5/binaural/distance"
	"github.com/ik5/binaural/filter"
	"github.com/ik5/binaural/hrtf"
	"github.com/ik5/binaural/internal/audiotest"
	"github.com/ik5/binaural/plan"
)

const rate = 48000

var analytic = func() *hrtf.Dataset {
	d, err := hrtf.NewAnalytic(rate)
	if err != nil {
		panic(err)
	}
	return d
}()

func convolve(x, h []float64) []float64 {
	out := make([]float64, len(x)+len(h)-1)
	for i, v := range x {
		if v == 0 {
			continue
		}
		for j, t := range h {
			out[i+j] += v * t
		}
	}
	return out
}

// setup expands keyframes into the curves the engine consumes.
func setup(t testing.TB, n int, tone bool, s curve.Smoothing, kfs ...plan.Keyframe) (curve.Curves, distance.Curves) {
	t.Helper()

	p, err := plan.New(kfs...)
	if err != nil {
		t.Fatal(err)
	}
	c, err := curve.Build(p, n, rate, s)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Filter.Enabled = tone
	near, far := p.DistanceRange()
	m, err := distance.New(cfg.Distance, cfg.Filter, near, far)
	if err != nil {
		t.Fatal(err)
	}

	return c, m.Curves(c)
}

func maxDiff(a, b []float64) float64 {
	var d float64
	for i := range a {
		d = math.Max(d, math.Abs(a[i]-b[i]))
	}
	return d
}

func TestRender_SingleKeyframeMatchesStaticConvolution(t *testing.T) {
	t.Parallel()

	in := audiotest.Noise(rate/2+123, 7, 0.5)
	kf := plan.Keyframe{Azimuth: 30, Elevation: 10, Distance: 2}
	c, g := setup(t, len(in), false, curve.DefaultSmoothing(), kf)

	pair, err := analytic.IR(kf.Azimuth, kf.Elevation)
	if err != nil {
		t.Fatal(err)
	}
	wantL := convolve(in, pair.Left)
	wantR := convolve(in, pair.Right)
	for i := range wantL {
		wantL[i] *= 0.5 // studio law at 2 m
		wantR[i] *= 0.5
	}

	for _, block := range []int{64, 1000, DefaultBlockSize} {
		e, err := New(analytic, WithBlockSize(block))
		if err != nil {
			t.Fatal(err)
		}

		out, stats, err := e.Render(context.Background(), in, c, g)
		if err != nil {
			t.Fatalf("block %d: %v", block, err)
		}
		if out.Len() != len(in)+analytic.Len()-1 {
			t.Fatalf("block %d: output %d frames, want %d", block, out.Len(), len(in)+analytic.Len()-1)
		}
		if d := maxDiff(out.Left, wantL); d > 1e-9 {
			t.Errorf("block %d: left deviates by %g", block, d)
		}
		if d := maxDiff(out.Right, wantR); d > 1e-9 {
			t.Errorf("block %d: right deviates by %g", block, d)
		}
		if stats.Crossfades != 0 || stats.Spectra != 1 {
			t.Errorf("block %d: stats %+v", block, stats)
		}
		if want := (len(in) + block - 1) / block; stats.Blocks != want {
			t.Errorf("block %d: %d blocks, want %d", block, stats.Blocks, want)
		}
	}
}

func TestRender_StaticToneMatchesFilteredConvolution(t *testing.T) {
	t.Parallel()

	in := audiotest.Noise(rate/4, 11, 0.5)
	kf := plan.Keyframe{Azimuth: -60, Elevation: 45, Distance: 1}
	c, g := setup(t, len(in), true, curve.DefaultSmoothing(), kf)

	hp := filter.NewHighpass(rate, g.Highpass[0], filter.ButterworthQ)
	lp := filter.NewLowpass(rate, g.Lowpass[0], filter.ButterworthQ)
	shaped := make([]float64, len(in))
	for i, v := range in {
		shaped[i] = lp.Process(hp.Process(v))
	}
	pair, _ := analytic.IR(kf.Azimuth, kf.Elevation)
	want := convolve(shaped, pair.Left)

	e, err := New(analytic, WithToneUpdate(3))
	if err != nil {
		t.Fatal(err)
	}
	out, _, err := e.Render(context.Background(), in, c, g)
	if err != nil {
		t.Fatal(err)
	}
	if d := maxDiff(out.Left, want); d > 1e-9 {
		t.Errorf("left deviates by %g", d)
	}
}

func TestRender_CrossfadeIsClickFree(t *testing.T) {
	t.Parallel()

	n := rate
	in := audiotest.Sine(n, rate, 1000, 0.5)
	c, g := setup(t, n, false, curve.Smoothing{},
		plan.Keyframe{Time: 0, Azimuth: -90, Distance: 1},
		plan.Keyframe{Time: 0.5, Azimuth: -90, Distance: 1},
		plan.Keyframe{Time: 0.5001, Azimuth: 90, Distance: 1},
	)

	e, _ := New(analytic)
	out, stats, err := e.Render(context.Background(), in, c, g)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Switches == 0 {
		t.Fatalf("no response switch recorded: %+v", stats)
	}

	slope := func(x []float64, from, to int) float64 {
		var m float64
		for i := from + 1; i < to; i++ {
			m = math.Max(m, math.Abs(x[i]-x[i-1]))
		}
		return m
	}

	// The louder ear before and after the jump sets the steady slope.
	steady := math.Max(slope(out.Left, rate/10, 4*rate/10), slope(out.Right, 6*rate/10, 9*rate/10))
	for name, ch := range map[string][]float64{"left": out.Left, "right": out.Right} {
		if s := slope(ch, rate/10, 9*rate/10); s > 1.5*steady {
			t.Errorf("%s: slope %g around the switch exceeds steady %g", name, s, steady)
		}
	}

	// Ear levels actually swap.
	rms := func(x []float64) float64 {
		var e float64
		for _, v := range x {
			e += v * v
		}
		return math.Sqrt(e / float64(len(x)))
	}
	if rms(out.Left[:rate/4]) <= rms(out.Right[:rate/4]) {
		t.Error("left ear should dominate at -90")
	}
	if rms(out.Right[3*rate/4:n]) <= rms(out.Left[3*rate/4:n]) {
		t.Error("right ear should dominate at +90")
	}
}

func TestRender_DistanceOnlyRampsGain(t *testing.T) {
	t.Parallel()

	n := rate / 2
	in := audiotest.Sine(n, rate, 300, 0.5)
	c, g := setup(t, n, false, curve.DefaultSmoothing(),
		plan.Keyframe{Time: 0, Azimuth: 45, Distance: 1},
		plan.Keyframe{Time: 0.5, Azimuth: 45, Distance: 3},
	)

	e, _ := New(analytic)
	_, stats, err := e.Render(context.Background(), in, c, g)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Crossfades == 0 || stats.Switches != 0 || stats.Spectra != 1 {
		t.Fatalf("stats = %+v, want gain-only crossfades", stats)
	}
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	n := rate / 2
	in := audiotest.Noise(n, 3, 0.5)
	c, g := setup(t, n, true, curve.DefaultSmoothing(),
		plan.Keyframe{Time: 0, Azimuth: -120, Elevation: -20, Distance: 0.5},
		plan.Keyframe{Time: 0.5, Azimuth: 150, Elevation: 40, Distance: 2},
	)

	e, _ := New(analytic)
	a, _, err := e.Render(context.Background(), in, c, g)
	if err != nil {
		t.Fatal(err)
	}
	b, _, _ := e.Render(context.Background(), in, c, g)
	for i := range a.Left {
		if a.Left[i] != b.Left[i] || a.Right[i] != b.Right[i] {
			t.Fatalf("renders differ at %d", i)
		}
	}
}

func TestRender_ClampsInvalidDirections(t *testing.T) {
	t.Parallel()

	n := 4096
	in := audiotest.Noise(n, 5, 0.5)
	c, g := setup(t, n, false, curve.Smoothing{}, plan.Keyframe{Distance: 1})
	for i := range c.Azimuth {
		c.Azimuth[i] = 400
		c.Elevation[i] = math.NaN()
	}

	e, _ := New(analytic)
	out, _, err := e.Render(context.Background(), in, c, g)
	if err != nil {
		t.Fatalf("invalid directions should be clamped: %v", err)
	}
	if out.Peak() == 0 {
		t.Fatal("no output")
	}
}

func TestRender_Empty(t *testing.T) {
	t.Parallel()

	c, g := setup(t, 0, true, curve.DefaultSmoothing())
	e, _ := New(analytic)
	out, stats, err := e.Render(context.Background(), nil, c, g)
	if err != nil || out.Len() != 0 || stats.Blocks != 0 {
		t.Fatalf("empty render = %d frames, %+v, %v", out.Len(), stats, err)
	}
}

func TestRender_Canceled(t *testing.T) {
	t.Parallel()

	n := rate
	in := audiotest.Noise(n, 9, 0.5)
	c, g := setup(t, n, false, curve.DefaultSmoothing(), plan.Keyframe{Distance: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, _ := New(analytic)
	if _, _, err := e.Render(ctx, in, c, g); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

type failingProvider struct{}

func (failingProvider) IR(float64, float64) (hrtf.Pair, error) {
	return hrtf.Pair{}, &hrtf.UnavailableError{Source: "test", Err: audiotest.ErrInjected}
}

func (failingProvider) Len() int { return 32 }

type shortProvider struct{}

func (shortProvider) IR(float64, float64) (hrtf.Pair, error) {
	return hrtf.Pair{Left: make([]float64, 8), Right: make([]float64, 8)}, nil
}

func (shortProvider) Len() int { return 32 }

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	n := 2048
	in := audiotest.Noise(n, 1, 0.5)
	c, g := setup(t, n, true, curve.DefaultSmoothing(), plan.Keyframe{Distance: 1})

	e, _ := New(failingProvider{})
	if _, _, err := e.Render(context.Background(), in, c, g); !errors.Is(err, hrtf.ErrUnavailable) || !errors.Is(err, audiotest.ErrInjected) {
		t.Errorf("provider failure = %v", err)
	}

	e, _ = New(shortProvider{})
	if _, _, err := e.Render(context.Background(), in, c, g); !errors.Is(err, ErrResponseLength) {
		t.Errorf("short response = %v", err)
	}

	e, _ = New(analytic)
	if _, _, err := e.Render(context.Background(), in[:n-1], c, g); !errors.Is(err, ErrCurveLength) {
		t.Errorf("length mismatch = %v", err)
	}
	bad := g
	bad.Lowpass = bad.Lowpass[:10]
	if _, _, err := e.Render(context.Background(), in, c, bad); !errors.Is(err, ErrCurveLength) {
		t.Errorf("tone length mismatch = %v", err)
	}
}

func TestNew_Options(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); !errors.Is(err, ErrNilProvider) {
		t.Errorf("nil provider = %v", err)
	}
	if _, err := New(analytic, WithBlockSize(8)); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("small block = %v", err)
	}
	if _, err := New(analytic, WithToneUpdate(0)); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("tone update = %v", err)
	}

	e, err := New(analytic, WithBlockSize(512), WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	if e.BlockSize() != 512 {
		t.Errorf("block size = %d", e.BlockSize())
	}
}

func TestNextPow2(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {1024, 1024}, {1025, 2048}, {1279, 2048},
	}
	for _, tt := range tests {
		if got := nextPow2(tt.in); got != tt.want {
			t.Errorf("nextPow2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func BenchmarkRender(b *testing.B) {
	n := 5 * rate
	in := audiotest.Noise(n, 1, 0.5)
	c, g := setup(b, n, true, curve.DefaultSmoothing(),
		plan.Keyframe{Time: 0, Azimuth: -90, Distance: 1},
		plan.Keyframe{Time: 5, Azimuth: 90, Distance: 2},
	)
	e, _ := New(analytic)

	b.ResetTimer()
	for b.Loop() {
		_, _, _ = e.Render(context.Background(), in, c, g)
	}
}
