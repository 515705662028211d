// SPDX-License-Identifier: EPL-2.0

// Command binaural renders a mono recording along a movement plan into a
// binaural stereo WAV.
//
//	binaural -in voice.mp3 -plan walk.json -out voice.binaural.wav -preset intimate
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ik5/binaural"
	"github.com/ik5/binaural/config"
	"github.com/ik5/binaural/render"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"
)

var version = "dev"

var errMissingInput = errors.New("both -in and -plan are required")

type options struct {
	in         string
	planPath   string
	planFormat string
	out        string
	configPath string
	preset     string
	logLevel   string
	bits       int
	trace      bool
	version    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil && !errors.Is(err, flag.ErrHelp) {
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.version {
		fmt.Fprintf(stdout, "binaural %s\n", version)
		return nil
	}

	logger, err := newLogger(stderr, o.logLevel)
	if err != nil {
		return err
	}

	if err := execute(ctx, o, stdout, stderr, logger); err != nil {
		logger.Error("render failed", slog.String("error", err.Error()))
		return err
	}

	return nil
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet("binaural", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.in, "in", "", "input audio file (wav, mp3, ogg, aiff)")
	fs.StringVar(&o.planPath, "plan", "", "keyframe plan (json or yaml)")
	fs.StringVar(&o.planFormat, "plan-format", "", "plan format, defaults to the plan file extension")
	fs.StringVar(&o.out, "out", "", "output WAV, defaults to <in>.binaural.wav")
	fs.StringVar(&o.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&o.preset, "preset", "", "base preset: "+strings.Join(config.Presets(), ", "))
	fs.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.IntVar(&o.bits, "bits", 0, "output bit depth (16 or 24), overrides the config")
	fs.BoolVar(&o.trace, "trace", false, "print render spans to stderr")
	fs.BoolVar(&o.version, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.version {
		return o, nil
	}
	if o.in == "" || o.planPath == "" {
		fs.Usage()
		return o, errMissingInput
	}
	if o.out == "" {
		o.out = defaultOutput(o.in)
	}

	return o, nil
}

// defaultOutput maps voice.mp3 to voice.binaural.wav next to the input.
func defaultOutput(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + ".binaural.wav"
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid -log-level %q: %w", level, err)
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func execute(ctx context.Context, o options, stdout, stderr io.Writer, logger *slog.Logger) error {
	cfg, err := config.LoadPreset(o.configPath, o.preset)
	if err != nil {
		return err
	}
	if o.bits != 0 {
		cfg.Output.BitDepth = o.bits
	}

	opts := []render.Option{render.WithLogger(logger)}
	if o.trace {
		tp, err := newTracerProvider(ctx, stderr)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown failed", slog.String("error", err.Error()))
			}
		}()
		opts = append(opts, render.WithTracerProvider(tp))
	}

	r, err := render.New(cfg, opts...)
	if err != nil {
		return err
	}

	p, err := binaural.ReadPlan(o.planPath, o.planFormat)
	if err != nil {
		return err
	}

	logger.Info("rendering",
		slog.String("in", o.in),
		slog.String("out", o.out),
		slog.String("preset", cfg.Preset),
		slog.Int("keyframes", p.Len()),
	)

	res, err := binaural.RenderFile(ctx, r, binaural.DefaultRegistry(), o.in, p, o.out)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %d frames @ %d Hz (%s), peak %.3f\n",
		o.out, res.Audio.Len(), res.Audio.SampleRate, res.Audio.Duration(), res.Audio.Peak())

	return nil
}

func newTracerProvider(ctx context.Context, w io.Writer) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("binaural"),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	), nil
}
