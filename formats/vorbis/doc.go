// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis input speech using
// github.com/jfreymuth/oggvorbis.
//
//	f, _ := os.Open("speech.ogg")
//	src, err := vorbis.Decoder{}.Decode(f)
//	mono, err := audio.ReadMono(src, 48000)
//
// Samples arrive as float32 interleaved frames; channel count and rate are
// taken from the identification header.
package vorbis
