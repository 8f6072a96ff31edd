// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Engine   EngineConfig   `toml:"engine"`
	Scoring  ScoringConfig  `toml:"scoring"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Lesson    *string  `toml:"lesson"`
	Recording *string  `toml:"recording"`
	Seed      *int64   `toml:"seed"`
	Noise     *float64 `toml:"noise"`
	Rate      *float64 `toml:"rate"`
}

// EngineConfig maps stroke-analysis settings.
type EngineConfig struct {
	SampleCount    *int `toml:"sample-count"`
	MinSamples     *int `toml:"min-samples"`
	LiveIntervalMs *int `toml:"live-interval-ms"`
	CacheSize      *int `toml:"cache-size"`
}

// ScoringConfig maps scoring and progression settings.
type ScoringConfig struct {
	Tolerance      *float64 `toml:"tolerance"`
	PathWeight     *float64 `toml:"path-weight"`
	TemporalWeight *float64 `toml:"temporal-weight"`
	VelocityWeight *float64 `toml:"velocity-weight"`
	PressureWeight *float64 `toml:"pressure-weight"`
	Threshold      *float64 `toml:"threshold"`
	CompletionBar  *float64 `toml:"completion-bar"`
	GraceMs        *int     `toml:"grace-ms"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
