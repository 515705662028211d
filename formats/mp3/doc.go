// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 input speech using github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces interleaved 16-bit stereo, so the source reports
// two channels even for mono files; audio.ReadMono folds them back:
//
//	f, _ := os.Open("speech.mp3")
//	src, err := mp3.Decoder{}.Decode(f)
//	mono, err := audio.ReadMono(src, 48000)
package mp3
