// SPDX-License-Identifier: EPL-2.0

package render

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ik5/binaural/config"
	"github.com/ik5/binaural/curve"
	"github.com/ik5/binaural/engine"
	"github.com/ik5/binaural/hrtf"
	"github.com/ik5/binaural/reverb"
)

const instrumentationName = "github.com/ik5/binaural/render"

var ErrNilPlan = errors.New("plan is nil")

// Option configures a Renderer.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	provider hrtf.Provider
	tracer   trace.TracerProvider
	meter    metric.MeterProvider
}

// WithLogger sets the logger. Renders are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProvider replaces the HRTF source named in the configuration. Its
// responses must be sampled at the configured rate.
func WithProvider(p hrtf.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracer = tp }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meter = mp }
}

// Renderer runs the pipeline for one configuration.
type Renderer struct {
	cfg       config.Config
	smoothing curve.Smoothing
	provider  hrtf.Provider
	engine    *engine.Engine
	mixer     *reverb.Mixer

	log     *slog.Logger
	tracer  trace.Tracer
	metrics instruments
}

// New validates cfg and prepares the HRTF data, engine and reverb.
func New(cfg config.Config, opts ...Option) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := options{
		tracer: otel.GetTracerProvider(),
		meter:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	log := o.logger.With(slog.String("component", "render"), slog.String("preset", cfg.Preset))

	provider := o.provider
	if provider == nil {
		var err error
		if provider, err = loadProvider(cfg, log); err != nil {
			return nil, err
		}
	}

	eng, err := engine.New(provider,
		engine.WithBlockSize(cfg.BlockSize),
		engine.WithToneUpdate(cfg.Filter.UpdateBlocks),
		engine.WithLogger(o.logger.With(slog.String("component", "engine"))),
	)
	if err != nil {
		return nil, err
	}

	mixer, err := reverb.NewMixer(cfg.Reverb)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		cfg:       cfg,
		smoothing: smoothing(cfg.Smoothing),
		provider:  provider,
		engine:    eng,
		mixer:     mixer,
		log:       log,
		tracer:    o.tracer.Tracer(instrumentationName),
		metrics:   newInstruments(o.meter.Meter(instrumentationName), log),
	}

	return r, nil
}

// Config returns the configuration the renderer was built with.
func (r *Renderer) Config() config.Config { return r.cfg }

// IRLength is the tap count of the impulse responses in use.
func (r *Renderer) IRLength() int { return r.provider.Len() }

func smoothing(s config.SmoothingConfig) curve.Smoothing {
	ms := func(v float64) time.Duration { return time.Duration(v * float64(time.Millisecond)) }

	return curve.Smoothing{
		Direction: ms(s.DirectionMS),
		Distance:  ms(s.DistanceMS),
		ReverbMix: ms(s.ReverbMixMS),
	}
}

// loadProvider builds the configured HRTF source at the output rate.
func loadProvider(cfg config.Config, log *slog.Logger) (hrtf.Provider, error) {
	switch cfg.HRTF.Source {
	case config.SourceKEMAR:
		dir := filepath.Clean(cfg.HRTF.Dir)
		ds, err := hrtf.LoadDir(os.DirFS(filepath.Dir(dir)), filepath.Base(dir))
		if err != nil {
			return nil, err
		}
		if ds.SampleRate() != cfg.SampleRate {
			log.Info("resampling hrtf dataset",
				slog.String("dataset", ds.Name()),
				slog.Int("from", ds.SampleRate()),
				slog.Int("to", cfg.SampleRate),
			)
			if ds, err = ds.Resample(cfg.SampleRate); err != nil {
				return nil, err
			}
		}
		log.Info("hrtf dataset loaded",
			slog.String("dataset", ds.Name()),
			slog.Int("directions", ds.Directions()),
			slog.Int("taps", ds.Len()),
		)
		return ds, nil

	default:
		ds, err := hrtf.NewAnalytic(cfg.SampleRate,
			hrtf.WithHeadRadius(cfg.HRTF.HeadRadius),
			hrtf.WithIRLength(cfg.HRTF.IRLength),
			hrtf.WithGrid(cfg.HRTF.AzimuthStep, cfg.HRTF.ElevationStep),
		)
		if err != nil {
			return nil, err
		}
		log.Debug("analytic hrtf ready", slog.Int("directions", ds.Directions()), slog.Int("taps", ds.Len()))
		return ds, nil
	}
}
