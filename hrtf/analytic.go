// SPDX-License-Identifier: EPL-2.0

package hrtf

import (
	"fmt"
	"math"
)

const (
	defaultHeadRadius    = 0.0875 // m
	defaultSpeedOfSound  = 343.0  // m/s
	defaultIRLength      = 256
	defaultAzimuthStep   = 5.0
	defaultElevationStep = 10.0

	// Brown-Duda head shadow constants
	shadowAlphaMin = 0.1
	shadowThetaMin = 150.0 // degrees from the ear axis

	// half width of the windowed-sinc fractional delay
	sincHalf = 8
)

// AnalyticOption configures NewAnalytic.
type AnalyticOption func(*analyticConfig) error

type analyticConfig struct {
	headRadius    float64
	speedOfSound  float64
	irLength      int
	azimuthStep   float64
	elevationStep float64
}

func defaultAnalyticConfig() analyticConfig {
	return analyticConfig{
		headRadius:    defaultHeadRadius,
		speedOfSound:  defaultSpeedOfSound,
		irLength:      defaultIRLength,
		azimuthStep:   defaultAzimuthStep,
		elevationStep: defaultElevationStep,
	}
}

// WithHeadRadius sets the sphere radius in meters.
func WithHeadRadius(radius float64) AnalyticOption {
	return func(c *analyticConfig) error {
		if radius <= 0 || radius > 0.5 || math.IsNaN(radius) {
			return fmt.Errorf("%w: head radius %g", ErrInvalidOption, radius)
		}
		c.headRadius = radius
		return nil
	}
}

// WithSpeedOfSound sets c in m/s.
func WithSpeedOfSound(speed float64) AnalyticOption {
	return func(c *analyticConfig) error {
		if speed <= 0 || math.IsNaN(speed) {
			return fmt.Errorf("%w: speed of sound %g", ErrInvalidOption, speed)
		}
		c.speedOfSound = speed
		return nil
	}
}

// WithIRLength sets the number of taps per response.
func WithIRLength(taps int) AnalyticOption {
	return func(c *analyticConfig) error {
		if taps < 64 {
			return fmt.Errorf("%w: ir length %d < 64", ErrInvalidOption, taps)
		}
		c.irLength = taps
		return nil
	}
}

// WithGrid sets the azimuth and elevation spacing in degrees.
func WithGrid(azimuthStep, elevationStep float64) AnalyticOption {
	return func(c *analyticConfig) error {
		if azimuthStep <= 0 || azimuthStep > 90 || elevationStep <= 0 || elevationStep > 90 {
			return fmt.Errorf("%w: grid %gx%g", ErrInvalidOption, azimuthStep, elevationStep)
		}
		c.azimuthStep = azimuthStep
		c.elevationStep = elevationStep
		return nil
	}
}

// NewAnalytic synthesizes a spherical-head dataset at sampleRate.
func NewAnalytic(sampleRate int, opts ...AnalyticOption) (*Dataset, error) {
	cfg := defaultAnalyticConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if sampleRate <= 0 {
		return nil, &UnavailableError{Source: "analytic", Err: fmt.Errorf("sample rate %d", sampleRate)}
	}

	radiusDelay := cfg.headRadius / cfg.speedOfSound * float64(sampleRate)
	// the shadowed path is longest at the far side: a/c * (1 + pi/2)
	if need := sincHalf + int(math.Ceil(radiusDelay*(1+math.Pi/2))) + sincHalf + 16; cfg.irLength < need {
		return nil, fmt.Errorf("%w: ir length %d too short for head radius, need %d", ErrInvalidOption, cfg.irLength, need)
	}

	var ms []Measurement
	for el := -90.0; el <= 90; el += cfg.elevationStep {
		// one direction at each pole, otherwise a ring
		if math.Abs(el) == 90 {
			ms = append(ms, cfg.measure(float64(sampleRate), 0, el))
			continue
		}
		for az := -180 + cfg.azimuthStep; az <= 180; az += cfg.azimuthStep {
			ms = append(ms, cfg.measure(float64(sampleRate), az, el))
		}
	}

	return NewDataset("analytic", sampleRate, ms)
}

func (c analyticConfig) measure(sampleRate, azimuth, elevation float64) Measurement {
	_, y, _ := unitVector(azimuth, elevation)

	return Measurement{
		Azimuth:   azimuth,
		Elevation: elevation,
		Left:      c.ear(sampleRate, -y),
		Right:     c.ear(sampleRate, y),
	}
}

// ear renders the response for an ear whose axis has cosine cosTheta with
// the source direction (1 = source on the ear axis, -1 = opposite side).
func (c analyticConfig) ear(sampleRate, cosTheta float64) []float64 {
	theta := math.Acos(math.Min(math.Max(cosTheta, -1), 1))
	a := c.headRadius / c.speedOfSound

	// Woodworth path difference relative to the head center, shifted so the
	// nearest possible arrival is at zero.
	var tau float64
	if theta < math.Pi/2 {
		tau = -a * math.Cos(theta)
	} else {
		tau = a * (theta - math.Pi/2)
	}
	delay := float64(sincHalf) + (tau+a)*sampleRate

	ir := make([]float64, c.irLength)
	fractionalDelay(ir, delay)
	c.headShadow(ir, sampleRate, theta)
	fadeTail(ir, c.irLength/8)

	return ir
}

// headShadow applies the Brown-Duda one-pole one-zero filter
// H(s) = (alpha*s + beta) / (s + beta), beta = 2c/a, via the bilinear transform.
func (c analyticConfig) headShadow(ir []float64, sampleRate, theta float64) {
	deg := theta * 180 / math.Pi
	alpha := (1 + shadowAlphaMin/2) + (1-shadowAlphaMin/2)*math.Cos(deg/shadowThetaMin*math.Pi)
	beta := 2 * c.speedOfSound / c.headRadius
	k := 2 * sampleRate

	norm := beta + k
	b0 := (beta + alpha*k) / norm
	b1 := (beta - alpha*k) / norm
	a1 := (beta - k) / norm

	var x1, y1 float64
	for i, x := range ir {
		y := b0*x + b1*x1 - a1*y1
		x1, y1 = x, y
		ir[i] = y
	}
}

// fractionalDelay writes a Hann-windowed sinc impulse centered at delay.
func fractionalDelay(dst []float64, delay float64) {
	center := int(math.Floor(delay))
	for n := center - sincHalf + 1; n <= center+sincHalf; n++ {
		if n < 0 || n >= len(dst) {
			continue
		}
		t := float64(n) - delay
		w := 0.5 + 0.5*math.Cos(math.Pi*t/float64(sincHalf))
		dst[n] = sinc(t) * w
	}
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x

	return math.Sin(px) / px
}

// fadeTail applies a half-cosine fade over the last n taps.
func fadeTail(ir []float64, n int) {
	start := len(ir) - n
	for i := start; i < len(ir); i++ {
		ir[i] *= 0.5 + 0.5*math.Cos(math.Pi*float64(i-start+1)/float64(n))
	}
}
