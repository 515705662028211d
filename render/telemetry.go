// SPDX-License-Identifier: EPL-2.0

package render

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type instruments struct {
	renders    metric.Int64Counter
	failures   metric.Int64Counter
	crossfades metric.Int64Counter
	audio      metric.Float64Counter
	duration   metric.Float64Histogram
}

func newInstruments(m metric.Meter, log *slog.Logger) instruments {
	var (
		in   instruments
		errs []error
		err  error
	)

	if in.renders, err = m.Int64Counter("binaural.renders", metric.WithDescription("Completed renders")); err != nil {
		errs = append(errs, err)
		in.renders = noop.Int64Counter{}
	}
	if in.failures, err = m.Int64Counter("binaural.render.failures", metric.WithDescription("Renders that returned an error")); err != nil {
		errs = append(errs, err)
		in.failures = noop.Int64Counter{}
	}
	if in.crossfades, err = m.Int64Counter("binaural.crossfades", metric.WithDescription("Convolution blocks blended between two states")); err != nil {
		errs = append(errs, err)
		in.crossfades = noop.Int64Counter{}
	}
	if in.audio, err = m.Float64Counter("binaural.audio", metric.WithDescription("Seconds of audio rendered"), metric.WithUnit("s")); err != nil {
		errs = append(errs, err)
		in.audio = noop.Float64Counter{}
	}
	if in.duration, err = m.Float64Histogram("binaural.render.duration", metric.WithDescription("Wall time per render"), metric.WithUnit("s")); err != nil {
		errs = append(errs, err)
		in.duration = noop.Float64Histogram{}
	}

	for _, err := range errs {
		log.Warn("failed to initialize metric", slog.String("error", err.Error()))
	}

	return in
}
