// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF input speech using github.com/go-audio/aiff.
//
// Signed PCM at 8, 16, 24 and 32 bits is supported with any channel count
// and sample rate. Samples are delivered as float32 in [-1, 1] through the
// audio.Source interface:
//
//	f, _ := os.Open("speech.aif")
//	src, err := aiff.Decoder{}.Decode(f)
//	mono, err := audio.ReadMono(src, 48000)
//
// go-audio needs an io.ReadSeeker; other readers are buffered in memory.
package aiff
