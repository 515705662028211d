// SPDX-License-Identifier: EPL-2.0

package hrtf

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"path"
	"regexp"
	"strconv"

	"github.com/ik5/binaural/audio"
	"github.com/ik5/binaural/formats/wav"
)

// kemarName matches MIT KEMAR file names such as H-20e135a.wav.
var kemarName = regexp.MustCompile(`^H(-?\d+)e(\d{3})a\.wav$`)

// LoadDir reads every H<elev>e<azim>a.wav below dir. Each file is a stereo
// WAV whose left and right channels are the two ears. KEMAR azimuths run
// clockwise from 0 to 355, which matches this package once wrapped into
// (-180, 180].
//
// Sets that cover one side only, like the compact KEMAR set with azimuths
// 0 to 180, are completed by mirroring: a direction missing on one side is
// taken from its counterpart with the ears swapped.
func LoadDir(fsys fs.FS, dir string) (*Dataset, error) {
	var (
		ms   []Measurement
		rate int
	)

	err := fs.WalkDir(fsys, dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		match := kemarName.FindStringSubmatch(entry.Name())
		if match == nil {
			return nil
		}
		elevation, _ := strconv.Atoi(match[1])
		azimuth, _ := strconv.Atoi(match[2])

		m, sampleRate, err := readPair(fsys, p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if rate != 0 && sampleRate != rate {
			return fmt.Errorf("%s: sample rate %d, others are %d", p, sampleRate, rate)
		}
		rate = sampleRate

		m.Azimuth, m.Elevation = Normalize(float64(azimuth), float64(elevation))
		ms = append(ms, m)

		return nil
	})
	if err != nil {
		return nil, &UnavailableError{Source: dir, Err: err}
	}
	if len(ms) == 0 {
		return nil, &UnavailableError{Source: dir, Err: errors.New("no H<elev>e<azim>a.wav files found")}
	}

	return NewDataset(path.Base(dir), rate, mirror(ms))
}

// mirror adds the left/right reflection of every measurement whose
// reflected direction was not measured itself.
func mirror(ms []Measurement) []Measurement {
	type key struct{ az, el int64 }
	at := func(az, el float64) key {
		return key{int64(math.Round(az * 100)), int64(math.Round(el * 100))}
	}

	have := make(map[key]bool, 2*len(ms))
	for _, m := range ms {
		have[at(m.Azimuth, m.Elevation)] = true
	}

	out := ms
	for _, m := range ms {
		az, el := Normalize(-m.Azimuth, m.Elevation)
		if have[at(az, el)] {
			continue
		}
		have[at(az, el)] = true
		out = append(out, Measurement{Azimuth: az, Elevation: el, Left: m.Right, Right: m.Left})
	}

	return out
}

func readPair(fsys fs.FS, name string) (Measurement, int, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return Measurement{}, 0, err
	}
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	if err != nil {
		return Measurement{}, 0, err
	}
	defer src.Close()

	if src.Channels() != 2 {
		return Measurement{}, 0, fmt.Errorf("%w: %d channels, want 2", audio.ErrChannelMismatch, src.Channels())
	}

	var m Measurement
	buf := make([]float32, 512)
	for {
		n, err := src.ReadSamples(buf)
		for i := 0; i+1 < n; i += 2 {
			m.Left = append(m.Left, float64(buf[i]))
			m.Right = append(m.Right, float64(buf[i+1]))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Measurement{}, 0, err
		}
	}

	return m, src.SampleRate(), nil
}
