// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes integer PCM WAV files using
// github.com/go-audio/wav.
//
// Decoder accepts 8, 16, 24 and 32 bit PCM (plain or extensible format
// tag), any channel count and any sample rate, and exposes the data as an
// audio.Source of float32 samples in [-1, 1]. Inputs that are not
// io.ReadSeekers are buffered in memory first.
//
// WriteStereo and Write encode float64 buffers at 16 or 24 bits:
//
//	f, _ := os.Create("out.wav")
//	defer f.Close()
//	err := wav.WriteStereo(f, rendered, 24)
//
// Samples outside [-1, 1] are clamped, never wrapped.
package wav
