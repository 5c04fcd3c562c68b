package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr           string   `json:"addr" yaml:"addr" toml:"addr"`
	ProfilesDir    string   `json:"profiles_dir" yaml:"profiles_dir" toml:"profiles_dir"`
	DefaultTracker string   `json:"default_tracker" yaml:"default_tracker" toml:"default_tracker"`
	FrameRate      int      `json:"frame_rate" yaml:"frame_rate" toml:"frame_rate"`
	LogLevel       string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	MaxIdleSeconds int      `json:"max_idle_seconds" yaml:"max_idle_seconds" toml:"max_idle_seconds"`
	MaxBodyBytes   int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	MaxFrames      int      `json:"max_frames" yaml:"max_frames" toml:"max_frames"`
	CORSEnabled    bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins    []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	if err := decodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadTrackerConfig reads and validates a tracker profile file. Fields the
// file omits keep the defaults for its tracker type.
func LoadTrackerConfig(path string) (TrackerConfig, error) {
	if path == "" {
		return TrackerConfig{}, fmt.Errorf("empty tracker profile path")
	}
	var probe struct {
		TrackerType string `json:"tracker_type" yaml:"tracker_type" toml:"tracker_type"`
	}
	if err := decodeFile(path, &probe); err != nil {
		return TrackerConfig{}, err
	}
	cfg := DefaultTrackerConfig(probe.TrackerType)
	if err := decodeFile(path, &cfg); err != nil {
		return TrackerConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return TrackerConfig{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

func decodeFile(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return decode(filepath.Ext(path), b, v)
}

func decode(ext string, b []byte, v any) error {
	switch ext = strings.ToLower(ext); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, v); err != nil {
			return err
		}
	case ".json":
		if err := json.Unmarshal(b, v); err != nil {
			return err
		}
	case ".toml":
		if err := toml.Unmarshal(b, v); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
	return nil
}

// IsConfigFile reports whether the extension is one Load understands.
func IsConfigFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json", ".toml":
		return true
	}
	return false
}
