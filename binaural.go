// SPDX-License-Identifier: EPL-2.0

package binaural

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ik5/binaural/audio"
	"github.com/ik5/binaural/formats/aiff"
	"github.com/ik5/binaural/formats/mp3"
	"github.com/ik5/binaural/formats/vorbis"
	"github.com/ik5/binaural/formats/wav"
	"github.com/ik5/binaural/plan"
	"github.com/ik5/binaural/render"
)

// DefaultRegistry returns a registry holding every bundled decoder, keyed
// by the file extensions they are usually found under.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})

	return reg
}

// ReadPlan loads a keyframe plan from path. An empty format is taken from
// the file extension.
func ReadPlan(path, format string) (*plan.Plan, error) {
	if format == "" {
		format = filepath.Ext(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan: %w", err)
	}
	defer f.Close()

	records, err := plan.Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	p, err := plan.Load(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

// OpenSource decodes the audio file at path with the decoder registered
// for its extension. Closing the returned source also closes the file.
func OpenSource(reg *audio.Registry, path string) (audio.Source, error) {
	dec, err := reg.ForPath(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &fileSource{Source: src, f: f}, nil
}

type fileSource struct {
	audio.Source
	f *os.File
}

func (s *fileSource) Close() error {
	err := s.Source.Close()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}

	return err
}

// WriteFile stores s as a PCM WAV file.
func WriteFile(path string, s audio.Stereo, bitDepth int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	return wav.WriteStereo(f, s, bitDepth)
}

// RenderFile decodes in, renders it along p and writes the stereo result
// to out at the renderer's configured bit depth. Nothing is written when
// rendering fails.
func RenderFile(ctx context.Context, r *render.Renderer, reg *audio.Registry, in string, p *plan.Plan, out string) (render.Result, error) {
	src, err := OpenSource(reg, in)
	if err != nil {
		return render.Result{}, err
	}
	defer src.Close()

	res, err := r.RenderSource(ctx, src, p)
	if err != nil {
		return res, err
	}

	if err := WriteFile(out, res.Audio, r.Config().Output.BitDepth); err != nil {
		return res, err
	}

	return res, nil
}
