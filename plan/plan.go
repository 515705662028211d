// SPDX-License-Identifier: EPL-2.0

package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Record field names.
const (
	FieldTime      = "time"
	FieldAzimuth   = "azimuth"
	FieldElevation = "elevation"
	FieldDistance  = "distance"
	FieldReverbMix = "reverb_mix"
)

// Keyframe places the source at one instant.
type Keyframe struct {
	Time      float64 `json:"time" yaml:"time"`             // seconds, >= 0
	Azimuth   float64 `json:"azimuth" yaml:"azimuth"`       // degrees, [-180, 180]
	Elevation float64 `json:"elevation" yaml:"elevation"`   // degrees, [-90, 90]
	Distance  float64 `json:"distance" yaml:"distance"`     // meters, > 0
	ReverbMix float64 `json:"reverb_mix" yaml:"reverb_mix"` // [0, 1]
}

// DefaultKeyframe is synthesized for empty plans.
var DefaultKeyframe = Keyframe{Time: 0, Azimuth: 0, Elevation: 0, Distance: 1, ReverbMix: 0}

// Record is one keyframe as decoded from JSON or YAML.
type Record = map[string]any

// Plan is an immutable, time sorted keyframe sequence.
type Plan struct {
	keyframes []Keyframe
	defaulted bool
}

// Load validates records and builds a Plan.
func Load(records []Record) (*Plan, error) {
	kfs := make([]Keyframe, 0, len(records))
	for i, rec := range records {
		kf, err := parseRecord(i, rec)
		if err != nil {
			return nil, err
		}
		kfs = append(kfs, kf)
	}

	return build(kfs, indexOrder(len(kfs)))
}

// New builds a Plan from typed keyframes with the same rules as Load.
func New(keyframes ...Keyframe) (*Plan, error) {
	kfs := make([]Keyframe, len(keyframes))
	for i, kf := range keyframes {
		if err := kf.validate(i); err != nil {
			return nil, err
		}
		kf.ReverbMix = clamp01(kf.ReverbMix)
		kfs[i] = kf
	}

	return build(kfs, indexOrder(len(kfs)))
}

func indexOrder(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	return idx
}

// build sorts keyframes and rejects duplicate times. idx carries input
// positions for error reporting.
func build(kfs []Keyframe, idx []int) (*Plan, error) {
	if len(kfs) == 0 {
		return &Plan{keyframes: []Keyframe{DefaultKeyframe}, defaulted: true}, nil
	}

	order := slices.Clone(idx)
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case kfs[a].Time < kfs[b].Time:
			return -1
		case kfs[a].Time > kfs[b].Time:
			return 1
		}
		return 0
	})

	sorted := make([]Keyframe, len(kfs))
	for i, o := range order {
		sorted[i] = kfs[o]
		if i > 0 && sorted[i].Time == sorted[i-1].Time {
			return nil, &ValidationError{
				Index:  o,
				Field:  FieldTime,
				Reason: fmt.Sprintf("duplicate time %gs (also keyframe %d)", sorted[i].Time, order[i-1]),
			}
		}
	}

	return &Plan{keyframes: sorted}, nil
}

// Len returns the number of keyframes, including a synthesized default.
func (p *Plan) Len() int { return len(p.keyframes) }

// Defaulted reports whether the plan was empty and the default keyframe was used.
func (p *Plan) Defaulted() bool { return p.defaulted }

// TimeBounds returns the first and last keyframe times.
func (p *Plan) TimeBounds() (start, end float64) {
	return p.keyframes[0].Time, p.keyframes[len(p.keyframes)-1].Time
}

// DistanceRange returns the smallest and largest keyframe distance.
func (p *Plan) DistanceRange() (near, far float64) {
	near, far = math.Inf(1), math.Inf(-1)
	for _, kf := range p.keyframes {
		near = math.Min(near, kf.Distance)
		far = math.Max(far, kf.Distance)
	}

	return near, far
}

// Keyframes returns a copy of the sorted keyframes.
func (p *Plan) Keyframes() []Keyframe {
	return slices.Clone(p.keyframes)
}

func (kf Keyframe) validate(index int) error {
	checks := []struct {
		field  string
		value  float64
		ok     func(float64) bool
		reason string
	}{
		{FieldTime, kf.Time, func(v float64) bool { return v >= 0 }, "must be >= 0"},
		{FieldAzimuth, kf.Azimuth, func(v float64) bool { return v >= -180 && v <= 180 }, "must be within [-180, 180]"},
		{FieldElevation, kf.Elevation, func(v float64) bool { return v >= -90 && v <= 90 }, "must be within [-90, 90]"},
		{FieldDistance, kf.Distance, func(v float64) bool { return v > 0 }, "must be > 0"},
		{FieldReverbMix, kf.ReverbMix, func(float64) bool { return true }, ""},
	}

	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &ValidationError{Index: index, Field: c.field, Reason: "must be finite"}
		}
		if !c.ok(c.value) {
			return &ValidationError{Index: index, Field: c.field, Reason: fmt.Sprintf("%g %s", c.value, c.reason)}
		}
	}

	return nil
}

func parseRecord(index int, rec Record) (Keyframe, error) {
	if rec == nil {
		return Keyframe{}, &ValidationError{Index: index, Reason: "record is null"}
	}

	var vals [5]float64
	for i, field := range []string{FieldTime, FieldAzimuth, FieldElevation, FieldDistance, FieldReverbMix} {
		raw, ok := rec[field]
		if !ok {
			return Keyframe{}, &ValidationError{Index: index, Field: field, Reason: "missing"}
		}
		v, err := toFloat(raw)
		if err != nil {
			return Keyframe{}, &ValidationError{Index: index, Field: field, Reason: err.Error()}
		}
		vals[i] = v
	}

	kf := Keyframe{Time: vals[0], Azimuth: vals[1], Elevation: vals[2], Distance: vals[3], ReverbMix: vals[4]}
	if err := kf.validate(index); err != nil {
		return Keyframe{}, err
	}
	kf.ReverbMix = clamp01(kf.ReverbMix)

	return kf, nil
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", string(v))
		}
		return f, nil
	case nil:
		return 0, errors.New("is null")
	default:
		return 0, fmt.Errorf("want a number, got %T", raw)
	}
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
