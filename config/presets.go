// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"slices"
)

// Preset names.
const (
	PresetStudio   = "studio"
	PresetIntimate = "intimate"
	PresetLight    = "light"
)

var presets = map[string]func() Config{
	PresetStudio:   studio,
	PresetIntimate: intimate,
	PresetLight:    light,
}

// Preset returns a named parameter set.
func Preset(name string) (Config, error) {
	build, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q (have %v)", ErrUnknownPreset, name, Presets())
	}

	return build(), nil
}

// Presets lists the preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// studio: full HRIR rendering with a medium room.
func studio() Config {
	return Config{
		Preset:     PresetStudio,
		SampleRate: 48000,
		BlockSize:  1024,
		Smoothing: SmoothingConfig{
			DirectionMS: 25,
			DistanceMS:  25,
			ReverbMixMS: 80,
		},
		Distance: DistanceConfig{
			Law:         LawInverse,
			RefDistance: 1,
			MinDistance: 0.2,
			MaxGain:     5,
			Rolloff:     2,
		},
		Filter: FilterConfig{
			Enabled:           true,
			LowpassNearHz:     18000,
			LowpassFarHz:      8000,
			HighpassLevelHz:   20,
			HighpassExtremeHz: 200,
			UpdateBlocks:      2,
		},
		Reverb: ReverbConfig{
			RoomSize: 0.6,
			Damping:  0.5,
			Width:    1,
			WetLevel: 1,
			MixLaw:   MixLinear,
		},
		HRTF: HRTFConfig{
			Source:        SourceAnalytic,
			HeadRadius:    0.0875,
			IRLength:      256,
			AzimuthStep:   5,
			ElevationStep: 10,
		},
		Output: OutputConfig{
			Ceiling:  0.98,
			Tail:     TailTrim,
			TailMS:   0,
			BitDepth: 24,
		},
	}
}

// intimate: close-up whisper style with a small damped room, a rumble
// filter and leading/trailing silence removed.
func intimate() Config {
	cfg := studio()
	cfg.Preset = PresetIntimate
	cfg.Distance = DistanceConfig{
		Law:         LawInverse,
		RefDistance: 0.3,
		MinDistance: 0.05,
		MaxGain:     2.5,
		Rolloff:     2,
	}
	cfg.Filter.HighpassLevelHz = 60
	cfg.Filter.HighpassExtremeHz = 200
	cfg.Reverb = ReverbConfig{RoomSize: 0.3, Damping: 0.7, Width: 0.8, WetLevel: 0.33, MixLaw: MixEqualPower}
	cfg.Input.TrimSilenceDB = 30

	return cfg
}

// light: cheaper rendering with a coarse analytic head, soft distance law,
// longer smoothing and a barely-there room.
func light() Config {
	cfg := studio()
	cfg.Preset = PresetLight
	cfg.Smoothing = SmoothingConfig{DirectionMS: 21.3, DistanceMS: 21.3, ReverbMixMS: 42.7}
	cfg.Distance = DistanceConfig{
		Law:         LawSoft,
		RefDistance: 1,
		MinDistance: 0.1,
		MaxGain:     1,
		Rolloff:     2,
	}
	cfg.Filter.UpdateBlocks = 4
	cfg.Reverb = ReverbConfig{RoomSize: 0.15, Damping: 0.25, Width: 1, WetLevel: 0.3, MixLaw: MixLinear}
	cfg.HRTF.IRLength = 128
	cfg.HRTF.AzimuthStep = 15
	cfg.HRTF.ElevationStep = 30
	cfg.Output.BitDepth = 16
	cfg.Input.TrimSilenceDB = 30

	return cfg
}
