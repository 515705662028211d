// SPDX-License-Identifier: EPL-2.0

// Package config holds the renderer configuration, its named presets and
// the loader for YAML files and BINAURAL_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Distance gain laws.
const (
	LawInverse = "inverse" // ref / max(d, min)
	LawSoft    = "soft"    // 1 / (1 + rolloff * max(d, min)^2)
)

// Reverb mix laws.
const (
	MixLinear     = "linear"
	MixEqualPower = "equal-power"
)

// Tail policies.
const (
	TailTrim = "trim"
	TailKeep = "keep"
)

// HRTF sources.
const (
	SourceAnalytic = "analytic"
	SourceKEMAR    = "kemar"
)

var ErrUnknownPreset = errors.New("unknown preset")

type Config struct {
	Preset     string          `yaml:"preset"`
	SampleRate int             `yaml:"sample_rate"`
	BlockSize  int             `yaml:"block_size"`
	Smoothing  SmoothingConfig `yaml:"smoothing"`
	Distance   DistanceConfig  `yaml:"distance"`
	Filter     FilterConfig    `yaml:"filter"`
	Reverb     ReverbConfig    `yaml:"reverb"`
	HRTF       HRTFConfig      `yaml:"hrtf"`
	Output     OutputConfig    `yaml:"output"`
	Input      InputConfig     `yaml:"input"`
}

type SmoothingConfig struct {
	DirectionMS float64 `yaml:"direction_ms"`
	DistanceMS  float64 `yaml:"distance_ms"`
	ReverbMixMS float64 `yaml:"reverb_mix_ms"`
}

type DistanceConfig struct {
	Law         string  `yaml:"law"`
	RefDistance float64 `yaml:"ref_distance"`
	MinDistance float64 `yaml:"min_distance"`
	MaxGain     float64 `yaml:"max_gain"`
	Rolloff     float64 `yaml:"rolloff"` // soft law only
}

type FilterConfig struct {
	Enabled           bool    `yaml:"enabled"`
	LowpassNearHz     float64 `yaml:"lowpass_near_hz"`
	LowpassFarHz      float64 `yaml:"lowpass_far_hz"`
	HighpassLevelHz   float64 `yaml:"highpass_level_hz"`
	HighpassExtremeHz float64 `yaml:"highpass_extreme_hz"`
	UpdateBlocks      int     `yaml:"update_blocks"`
}

type ReverbConfig struct {
	RoomSize float64 `yaml:"room_size"`
	Damping  float64 `yaml:"damping"`
	Width    float64 `yaml:"width"`
	WetLevel float64 `yaml:"wet_level"`
	MixLaw   string  `yaml:"mix_law"`
}

type HRTFConfig struct {
	Source        string  `yaml:"source"` // analytic, kemar
	Dir           string  `yaml:"dir"`
	HeadRadius    float64 `yaml:"head_radius"`
	IRLength      int     `yaml:"ir_length"`
	AzimuthStep   float64 `yaml:"azimuth_step"`
	ElevationStep float64 `yaml:"elevation_step"`
}

type OutputConfig struct {
	Ceiling  float64 `yaml:"ceiling"`
	Tail     string  `yaml:"tail"`
	TailMS   float64 `yaml:"tail_ms"`
	BitDepth int     `yaml:"bit_depth"`
}

type InputConfig struct {
	TrimSilenceDB float64 `yaml:"trim_silence_db"` // 0 disables
}

// Default returns the studio preset.
func Default() Config {
	return studio()
}

// Load builds a configuration from an optional YAML file and the
// environment. The preset named by BINAURAL_PRESET, or else by the file's
// preset key, is the base the file and environment are layered on.
func Load(path string) (Config, error) {
	return LoadPreset(path, "")
}

// LoadPreset is Load with an explicit base preset that takes precedence
// over BINAURAL_PRESET and the file. An empty preset behaves like Load.
func LoadPreset(path, preset string) (Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Default(), fmt.Errorf("config file not found: %w", err)
			}
			return Default(), fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return parse(data, preset)
}

func parse(data []byte, preset string) (Config, error) {
	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	name := head.Preset
	if value, ok := os.LookupEnv("BINAURAL_PRESET"); ok && strings.TrimSpace(value) != "" {
		name = value
	}
	if preset != "" {
		name = preset
	}
	if name == "" {
		name = PresetStudio
	}

	cfg, err := Preset(name)
	if err != nil {
		return Default(), err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.Preset = name

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideInt(&cfg.SampleRate, "BINAURAL_SAMPLE_RATE")
	overrideInt(&cfg.BlockSize, "BINAURAL_BLOCK_SIZE")
	overrideFloat(&cfg.Smoothing.DirectionMS, "BINAURAL_SMOOTHING_DIRECTION_MS")
	overrideFloat(&cfg.Smoothing.DistanceMS, "BINAURAL_SMOOTHING_DISTANCE_MS")
	overrideFloat(&cfg.Smoothing.ReverbMixMS, "BINAURAL_SMOOTHING_REVERB_MIX_MS")
	overrideString(&cfg.Distance.Law, "BINAURAL_DISTANCE_LAW")
	overrideFloat(&cfg.Distance.RefDistance, "BINAURAL_DISTANCE_REF")
	overrideFloat(&cfg.Distance.MinDistance, "BINAURAL_DISTANCE_MIN")
	overrideFloat(&cfg.Distance.MaxGain, "BINAURAL_DISTANCE_MAX_GAIN")
	overrideFloat(&cfg.Distance.Rolloff, "BINAURAL_DISTANCE_ROLLOFF")
	overrideBool(&cfg.Filter.Enabled, "BINAURAL_FILTER_ENABLED")
	overrideFloat(&cfg.Filter.LowpassNearHz, "BINAURAL_FILTER_LOWPASS_NEAR_HZ")
	overrideFloat(&cfg.Filter.LowpassFarHz, "BINAURAL_FILTER_LOWPASS_FAR_HZ")
	overrideFloat(&cfg.Filter.HighpassLevelHz, "BINAURAL_FILTER_HIGHPASS_LEVEL_HZ")
	overrideFloat(&cfg.Filter.HighpassExtremeHz, "BINAURAL_FILTER_HIGHPASS_EXTREME_HZ")
	overrideInt(&cfg.Filter.UpdateBlocks, "BINAURAL_FILTER_UPDATE_BLOCKS")
	overrideFloat(&cfg.Reverb.RoomSize, "BINAURAL_REVERB_ROOM_SIZE")
	overrideFloat(&cfg.Reverb.Damping, "BINAURAL_REVERB_DAMPING")
	overrideFloat(&cfg.Reverb.Width, "BINAURAL_REVERB_WIDTH")
	overrideFloat(&cfg.Reverb.WetLevel, "BINAURAL_REVERB_WET_LEVEL")
	overrideString(&cfg.Reverb.MixLaw, "BINAURAL_REVERB_MIX_LAW")
	overrideString(&cfg.HRTF.Source, "BINAURAL_HRTF_SOURCE")
	overrideString(&cfg.HRTF.Dir, "BINAURAL_HRTF_DIR")
	overrideFloat(&cfg.HRTF.HeadRadius, "BINAURAL_HRTF_HEAD_RADIUS")
	overrideInt(&cfg.HRTF.IRLength, "BINAURAL_HRTF_IR_LENGTH")
	overrideFloat(&cfg.Output.Ceiling, "BINAURAL_OUTPUT_CEILING")
	overrideString(&cfg.Output.Tail, "BINAURAL_OUTPUT_TAIL")
	overrideFloat(&cfg.Output.TailMS, "BINAURAL_OUTPUT_TAIL_MS")
	overrideInt(&cfg.Output.BitDepth, "BINAURAL_OUTPUT_BIT_DEPTH")
	overrideFloat(&cfg.Input.TrimSilenceDB, "BINAURAL_INPUT_TRIM_SILENCE_DB")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

// Validate reports the first invalid setting.
func (cfg Config) Validate() error {
	if cfg.SampleRate < 8000 || cfg.SampleRate > 384000 {
		return errors.New("sample_rate must be between 8000 and 384000")
	}
	if cfg.BlockSize < 16 || cfg.BlockSize > 1<<16 {
		return errors.New("block_size must be between 16 and 65536")
	}
	if cfg.Smoothing.DirectionMS < 0 || cfg.Smoothing.DistanceMS < 0 || cfg.Smoothing.ReverbMixMS < 0 {
		return errors.New("smoothing windows must be >= 0")
	}

	switch cfg.Distance.Law {
	case LawInverse:
		if cfg.Distance.RefDistance <= 0 {
			return errors.New("distance.ref_distance must be positive")
		}
	case LawSoft:
		if cfg.Distance.Rolloff <= 0 {
			return errors.New("distance.rolloff must be positive for the soft law")
		}
	default:
		return errors.New("distance.law must be one of inverse|soft")
	}
	if cfg.Distance.MinDistance <= 0 {
		return errors.New("distance.min_distance must be positive")
	}
	if cfg.Distance.MaxGain <= 0 {
		return errors.New("distance.max_gain must be positive")
	}

	if cfg.Filter.Enabled {
		nyquist := float64(cfg.SampleRate) / 2
		if cfg.Filter.LowpassFarHz <= 0 || cfg.Filter.LowpassNearHz < cfg.Filter.LowpassFarHz {
			return errors.New("filter.lowpass_near_hz must be >= filter.lowpass_far_hz > 0")
		}
		if cfg.Filter.HighpassLevelHz <= 0 || cfg.Filter.HighpassExtremeHz < cfg.Filter.HighpassLevelHz {
			return errors.New("filter.highpass_extreme_hz must be >= filter.highpass_level_hz > 0")
		}
		if cfg.Filter.HighpassExtremeHz >= cfg.Filter.LowpassFarHz || cfg.Filter.HighpassExtremeHz >= nyquist {
			return errors.New("filter.highpass_extreme_hz must stay below the lowpass range and nyquist")
		}
		if cfg.Filter.UpdateBlocks < 1 {
			return errors.New("filter.update_blocks must be >= 1")
		}
	}

	if cfg.Reverb.RoomSize < 0 || cfg.Reverb.RoomSize > 1 ||
		cfg.Reverb.Damping < 0 || cfg.Reverb.Damping > 1 ||
		cfg.Reverb.Width < 0 || cfg.Reverb.Width > 1 ||
		cfg.Reverb.WetLevel < 0 || cfg.Reverb.WetLevel > 1 {
		return errors.New("reverb.room_size, damping, width and wet_level must be within [0, 1]")
	}
	switch cfg.Reverb.MixLaw {
	case MixLinear, MixEqualPower:
	default:
		return errors.New("reverb.mix_law must be one of linear|equal-power")
	}

	switch cfg.HRTF.Source {
	case SourceAnalytic:
		if cfg.HRTF.HeadRadius <= 0 || cfg.HRTF.IRLength < 64 {
			return errors.New("hrtf.head_radius must be positive and hrtf.ir_length >= 64")
		}
		if cfg.HRTF.AzimuthStep <= 0 || cfg.HRTF.ElevationStep <= 0 {
			return errors.New("hrtf.azimuth_step and hrtf.elevation_step must be positive")
		}
	case SourceKEMAR:
		if cfg.HRTF.Dir == "" {
			return errors.New("hrtf.dir must be set when source=kemar")
		}
	default:
		return errors.New("hrtf.source must be one of analytic|kemar")
	}

	if cfg.Output.Ceiling <= 0 || cfg.Output.Ceiling > 1 {
		return errors.New("output.ceiling must be within (0, 1]")
	}
	switch cfg.Output.Tail {
	case TailTrim:
	case TailKeep:
		if cfg.Output.TailMS < 0 {
			return errors.New("output.tail_ms must be >= 0")
		}
	default:
		return errors.New("output.tail must be one of trim|keep")
	}
	if cfg.Output.BitDepth != 16 && cfg.Output.BitDepth != 24 {
		return errors.New("output.bit_depth must be 16 or 24")
	}

	if cfg.Input.TrimSilenceDB < 0 {
		return errors.New("input.trim_silence_db must be >= 0")
	}

	return nil
}
