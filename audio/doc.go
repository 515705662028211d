// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM plumbing around the renderer.
//
// It contains:
//   - the Source interface implemented by every format decoder
//   - a Registry mapping format keys to decoders
//   - MonoMixer and Resampler stream stages
//   - Mono and Stereo in-memory buffers used by the rendering core
//
// # Streams
//
// Decoders produce interleaved float32 samples in [-1, 1]. Stages wrap a
// Source and are themselves Sources, so they chain:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	stream := audio.NewResampler(audio.NewMonoMixer(src), 48000)
//
// ReadMono runs that chain to completion and returns a Mono buffer:
//
//	mono, err := audio.ReadMono(src, 48000)
//
// # Buffers
//
// The rendering core works on float64 planar buffers. Mono carries the dry
// speech; Stereo carries left and right channels of equal length.
//
// # Resampling
//
// Resampler uses Catmull-Rom interpolation. When the target rate is lower
// than the source rate a fourth order low-pass at 0.45 of the target rate
// runs before interpolation. Output length is ceil(N*dst/src) frames, so a
// two second input stays two seconds long.
//
// # Error Handling
//
// Sources return io.EOF when exhausted, possibly together with the last
// samples. Other errors are wrapped with %w and can be tested with
// errors.Is.
package audio
