// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/binaural/audio"
	"github.com/ik5/binaural/utils"
)

// chunkFrames bounds the int buffer handed to the encoder per write.
const chunkFrames = 8192

// WriteStereo encodes s as a two channel integer PCM WAV.
// bitDepth must be 16 or 24. Samples outside [-1, 1] are clamped.
func WriteStereo(w io.WriteSeeker, s audio.Stereo, bitDepth int) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}

	return Write(w, s.SampleRate, bitDepth, s.Left, s.Right)
}

// Write encodes planar channels of equal length, interleaving them in the
// order given.
func Write(w io.WriteSeeker, sampleRate, bitDepth int, planes ...[]float64) error {
	switch {
	case sampleRate <= 0:
		return fmt.Errorf("wav: %w", audio.ErrInvalidSampleRate)
	case len(planes) == 0:
		return ErrNoChannels
	case bitDepth != 16 && bitDepth != 24:
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	frames := len(planes[0])
	for _, p := range planes[1:] {
		if len(p) != frames {
			return fmt.Errorf("wav: %w", audio.ErrChannelMismatch)
		}
	}
	channels := len(planes)

	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, min(frames, chunkFrames)*channels),
		SourceBitDepth: bitDepth,
	}

	if frames == 0 {
		// the header is only emitted by Write
		buf.Data = buf.Data[:0]
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("wav: %w", err)
		}
	}

	for start := 0; start < frames; start += chunkFrames {
		end := min(start+chunkFrames, frames)
		buf.Data = buf.Data[:(end-start)*channels]
		for f := start; f < end; f++ {
			off := (f - start) * channels
			for c, p := range planes {
				buf.Data[off+c] = utils.FloatToPCM(p[f], bitDepth)
			}
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("wav: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}

	return nil
}
