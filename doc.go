// SPDX-License-Identifier: EPL-2.0

// Package binaural renders a mono recording as a binaural stereo track
// that follows a spatial movement plan.
//
// A plan is a list of keyframes, each placing the source at an azimuth,
// elevation and distance around the listener, with a reverb send level.
// The renderer interpolates the plan into per-sample curves, convolves the
// input with head related impulse responses, applies distance gain and
// tone shaping, blends in a stereo reverb and normalizes the result.
//
// # Quick Start
//
//	cfg, _ := config.Load("binaural.yaml")
//	r, _ := render.New(cfg)
//	p, _ := binaural.ReadPlan("walk.json", "")
//	res, _ := binaural.RenderFile(ctx, r, binaural.DefaultRegistry(), "voice.mp3", p, "out.wav")
//
// # Supported Formats
//
// Input audio is decoded by the format subpackages:
//   - WAV (PCM 8/16/24/32-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF via formats/aiff
//
// Output is always a stereo PCM WAV at the configured bit depth.
//
// # Packages
//
//   - plan: keyframe parsing and validation
//   - curve: per-sample parameter curves with smoothing
//   - hrtf: analytic and measured impulse response datasets
//   - distance: gain and tone cutoffs as a function of distance
//   - engine: block convolution with crossfaded direction changes
//   - reverb: Freeverb and the dry/wet mixer
//   - finish: tail policy and peak normalization
//   - render: the end to end pipeline with logging and telemetry
//   - config: presets, YAML files and environment overrides
package binaural
