// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Simulation SimulationConfig `toml:"simulation"`
	Log        LogConfig        `toml:"log"`
}

// SimulationConfig maps run settings. Nil fields keep the flag defaults.
type SimulationConfig struct {
	Iterations *int        `toml:"iterations"`
	Seed       *int64      `toml:"seed"`
	Output     *string     `toml:"output"`
	Main       RangeConfig `toml:"main"`
	Bonus      RangeConfig `toml:"bonus"`
}

// RangeConfig maps one number pool.
type RangeConfig struct {
	Min   *int `toml:"min"`
	Max   *int `toml:"max"`
	Count *int `toml:"count"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
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
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
