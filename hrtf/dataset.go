// SPDX-License-Identifier: EPL-2.0

package hrtf

import (
	"fmt"
	"math"

	"github.com/ik5/binaural/audio"
)

// Pair is the impulse response pair for one measured direction.
// Left and Right are shared with the provider and must not be modified.
type Pair struct {
	Left      []float64
	Right     []float64
	Azimuth   float64 // direction actually selected
	Elevation float64
}

// Provider returns impulse responses for a requested direction.
type Provider interface {
	// IR returns the pair for the available direction nearest to
	// (azimuth, elevation).
	IR(azimuth, elevation float64) (Pair, error)
	// Len is the number of taps of every returned response.
	Len() int
}

// Measurement is one direction of a dataset.
type Measurement struct {
	Azimuth   float64
	Elevation float64
	Left      []float64
	Right     []float64
}

type point struct {
	x, y, z float64
	pair    Pair
}

// Dataset is a nearest-neighbour Provider over a fixed set of measurements.
type Dataset struct {
	name       string
	sampleRate int
	irLen      int
	points     []point
}

// NewDataset validates and indexes measurements. All responses must share
// one length. The slices are retained, not copied.
func NewDataset(name string, sampleRate int, ms []Measurement) (*Dataset, error) {
	if len(ms) == 0 {
		return nil, &UnavailableError{Source: name}
	}
	if sampleRate <= 0 {
		return nil, &UnavailableError{Source: name, Err: audio.ErrInvalidSampleRate}
	}

	irLen := len(ms[0].Left)
	d := &Dataset{name: name, sampleRate: sampleRate, irLen: irLen, points: make([]point, 0, len(ms))}

	for i, m := range ms {
		if len(m.Left) != irLen || len(m.Right) != irLen || irLen == 0 {
			return nil, &UnavailableError{
				Source: name,
				Err:    fmt.Errorf("%w: measurement %d has %d/%d taps, want %d", ErrLengthMismatch, i, len(m.Left), len(m.Right), irLen),
			}
		}

		az, el := Normalize(m.Azimuth, m.Elevation)
		x, y, z := unitVector(az, el)
		d.points = append(d.points, point{
			x: x, y: y, z: z,
			pair: Pair{Left: m.Left, Right: m.Right, Azimuth: az, Elevation: el},
		})
	}

	return d, nil
}

// Name identifies the dataset in logs.
func (d *Dataset) Name() string { return d.name }

// SampleRate of the stored responses.
func (d *Dataset) SampleRate() int { return d.sampleRate }

// Len returns the number of taps per response.
func (d *Dataset) Len() int { return d.irLen }

// Directions returns how many measured directions are available.
func (d *Dataset) Directions() int { return len(d.points) }

// IR returns the nearest measured pair.
func (d *Dataset) IR(azimuth, elevation float64) (Pair, error) {
	az, el := Normalize(azimuth, elevation)
	x, y, z := unitVector(az, el)

	best, bestDot := 0, math.Inf(-1)
	for i, p := range d.points {
		if dot := p.x*x + p.y*y + p.z*z; dot > bestDot {
			best, bestDot = i, dot
		}
	}

	return d.points[best].pair, nil
}

// Resample returns a copy of the dataset at sampleRate. Responses are
// scaled by the rate ratio so filter gain is unchanged.
func (d *Dataset) Resample(sampleRate int) (*Dataset, error) {
	if sampleRate == d.sampleRate {
		return d, nil
	}

	scale := float64(d.sampleRate) / float64(sampleRate)
	conv := func(ir []float64) ([]float64, error) {
		m, err := audio.Resample(audio.Mono{Samples: ir, SampleRate: d.sampleRate}, sampleRate)
		if err != nil {
			return nil, err
		}
		for i := range m.Samples {
			m.Samples[i] *= scale
		}
		return m.Samples, nil
	}

	ms := make([]Measurement, len(d.points))
	for i, p := range d.points {
		left, err := conv(p.pair.Left)
		if err != nil {
			return nil, fmt.Errorf("hrtf resample: %w", err)
		}
		right, err := conv(p.pair.Right)
		if err != nil {
			return nil, fmt.Errorf("hrtf resample: %w", err)
		}
		ms[i] = Measurement{Azimuth: p.pair.Azimuth, Elevation: p.pair.Elevation, Left: left, Right: right}
	}

	return NewDataset(d.name, sampleRate, ms)
}

// Normalize wraps azimuth into (-180, 180] and clamps elevation to
// [-90, 90]. Non-finite input maps to 0.
func Normalize(azimuth, elevation float64) (float64, float64) {
	if math.IsNaN(azimuth) || math.IsInf(azimuth, 0) {
		azimuth = 0
	}
	if math.IsNaN(elevation) || math.IsInf(elevation, 0) {
		elevation = 0
	}

	azimuth = math.Mod(azimuth, 360)
	switch {
	case azimuth > 180:
		azimuth -= 360
	case azimuth <= -180:
		azimuth += 360
	}

	return azimuth, math.Min(math.Max(elevation, -90), 90)
}

// unitVector: x front, y right, z up.
func unitVector(azimuth, elevation float64) (x, y, z float64) {
	az := azimuth * math.Pi / 180
	el := elevation * math.Pi / 180

	return math.Cos(el) * math.Cos(az), math.Cos(el) * math.Sin(az), math.Sin(el)
}
