// SPDX-License-Identifier: EPL-2.0

package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ik5/binaural/audio"
	"github.com/ik5/binaural/curve"
	"github.com/ik5/binaural/distance"
	"github.com/ik5/binaural/engine"
	"github.com/ik5/binaural/finish"
	"github.com/ik5/binaural/plan"
)

// Result is a finished render.
type Result struct {
	Audio   audio.Stereo
	Trimmed int // leading input samples removed as silence, at the output rate
	Engine  engine.Stats
	Finish  finish.Report
}

// Render spatializes in along p. The input is resampled to the configured
// rate first. The output has the input's duration, plus the kept tail when
// the tail policy is keep.
func (r *Renderer) Render(ctx context.Context, in audio.Mono, p *plan.Plan) (res Result, err error) {
	started := time.Now()
	ctx, span := r.tracer.Start(ctx, "binaural.render", trace.WithAttributes(
		attribute.String("preset", r.cfg.Preset),
		attribute.Int("input.sample_rate", in.SampleRate),
		attribute.Int("input.samples", in.Len()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.metrics.failures.Add(ctx, 1)
		}
		span.End()
	}()

	if p == nil {
		return Result{}, ErrNilPlan
	}
	if p.Defaulted() {
		r.log.WarnContext(ctx, "plan has no keyframes, rendering a centered static source")
	}

	mono, err := r.prepare(ctx, in)
	if err != nil {
		return Result{}, err
	}
	res.Trimmed = mono.trimmed
	n := mono.Len()

	c, g, err := r.curves(ctx, p, n)
	if err != nil {
		return Result{}, err
	}

	cctx, cspan := r.tracer.Start(ctx, "binaural.convolve")
	wet, stats, err := r.engine.Render(cctx, mono.Samples, c, g)
	cspan.SetAttributes(
		attribute.Int("blocks", stats.Blocks),
		attribute.Int("crossfades", stats.Crossfades),
		attribute.Int("switches", stats.Switches),
	)
	cspan.End()
	if err != nil {
		return Result{}, fmt.Errorf("convolve: %w", err)
	}
	res.Engine = stats

	// silence past the end lets the reverb ring into a kept tail
	if tail := finish.TailFrames(r.cfg.Output, r.cfg.SampleRate); tail > 0 && n > 0 {
		wet = wet.Pad(n + tail)
	}

	_, rspan := r.tracer.Start(ctx, "binaural.reverb")
	mixed, err := r.mixer.Apply(wet, c.ReverbMix)
	rspan.End()
	if err != nil {
		return Result{}, fmt.Errorf("reverb: %w", err)
	}

	_, fspan := r.tracer.Start(ctx, "binaural.finish")
	out, report, err := finish.Finish(mixed, n, r.cfg.Output)
	fspan.SetAttributes(attribute.Float64("peak", report.Peak), attribute.Float64("scale", report.Scale))
	fspan.End()
	if err != nil {
		return Result{}, fmt.Errorf("finish: %w", err)
	}
	if report.NonFinite > 0 {
		r.log.WarnContext(ctx, "non-finite samples replaced with silence", slog.Int("samples", report.NonFinite))
	}
	res.Audio = out
	res.Finish = report

	elapsed := time.Since(started)
	attrs := metric.WithAttributes(attribute.String("preset", r.cfg.Preset))
	r.metrics.renders.Add(ctx, 1, attrs)
	r.metrics.crossfades.Add(ctx, int64(stats.Crossfades), attrs)
	r.metrics.audio.Add(ctx, out.Duration().Seconds(), attrs)
	r.metrics.duration.Record(ctx, elapsed.Seconds(), attrs)

	r.log.InfoContext(ctx, "render complete",
		slog.Int("frames", out.Len()),
		slog.Duration("audio", out.Duration()),
		slog.Duration("elapsed", elapsed),
		slog.Int("crossfades", stats.Crossfades),
		slog.Float64("peak", report.Peak),
	)

	return res, nil
}

// RenderSource reads src to the end, downmixing and resampling as needed,
// and renders it. src is not closed.
func (r *Renderer) RenderSource(ctx context.Context, src audio.Source, p *plan.Plan) (Result, error) {
	mixer := audio.NewMonoMixer(src)
	if mixer.Downmixing() {
		r.log.WarnContext(ctx, "input is not mono, downmixing", slog.Int("channels", src.Channels()))
	}

	_, span := r.tracer.Start(ctx, "binaural.decode")
	mono, err := audio.ReadMono(mixer, r.cfg.SampleRate)
	span.End()
	if err != nil {
		return Result{}, err
	}

	return r.Render(ctx, mono, p)
}

type prepared struct {
	audio.Mono
	trimmed int
}

func (r *Renderer) prepare(ctx context.Context, in audio.Mono) (prepared, error) {
	_, span := r.tracer.Start(ctx, "binaural.prepare")
	defer span.End()

	if in.SampleRate <= 0 {
		return prepared{}, audio.ErrInvalidSampleRate
	}

	m, err := audio.Resample(in, r.cfg.SampleRate)
	if err != nil {
		return prepared{}, fmt.Errorf("resample: %w", err)
	}

	trimmed := 0
	if db := r.cfg.Input.TrimSilenceDB; db > 0 {
		before := m.Len()
		m, trimmed = audio.TrimSilence(m, db)
		if m.Len() < before {
			r.log.DebugContext(ctx, "silence trimmed", slog.Int("leading", trimmed), slog.Int("remaining", m.Len()))
		}
	}

	return prepared{Mono: m, trimmed: trimmed}, nil
}

func (r *Renderer) curves(ctx context.Context, p *plan.Plan, n int) (curve.Curves, distance.Curves, error) {
	_, span := r.tracer.Start(ctx, "binaural.curves", trace.WithAttributes(attribute.Int("keyframes", p.Len())))
	defer span.End()

	c, err := curve.Build(p, n, r.cfg.SampleRate, r.smoothing)
	if err != nil {
		return curve.Curves{}, distance.Curves{}, fmt.Errorf("curves: %w", err)
	}

	near, far := p.DistanceRange()
	model, err := distance.New(r.cfg.Distance, r.cfg.Filter, near, far)
	if err != nil {
		return curve.Curves{}, distance.Curves{}, fmt.Errorf("distance model: %w", err)
	}

	return c, model.Curves(c), nil
}
