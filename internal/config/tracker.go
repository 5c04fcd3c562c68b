package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed trackers/*.yaml
var builtinFS embed.FS

// TrackerConfig is the parsed form of a tracker profile. It is read once per
// run and shared by every tracker instance the run builds.
type TrackerConfig struct {
	TrackerType      string  `json:"tracker_type" yaml:"tracker_type" toml:"tracker_type"`
	TrackHighThresh  float64 `json:"track_high_thresh" yaml:"track_high_thresh" toml:"track_high_thresh"`
	TrackLowThresh   float64 `json:"track_low_thresh" yaml:"track_low_thresh" toml:"track_low_thresh"`
	NewTrackThresh   float64 `json:"new_track_thresh" yaml:"new_track_thresh" toml:"new_track_thresh"`
	TrackBuffer      int     `json:"track_buffer" yaml:"track_buffer" toml:"track_buffer"`
	MatchThresh      float64 `json:"match_thresh" yaml:"match_thresh" toml:"match_thresh"`
	FuseScore        bool    `json:"fuse_score" yaml:"fuse_score" toml:"fuse_score"`
	GMCMethod        string  `json:"gmc_method,omitempty" yaml:"gmc_method,omitempty" toml:"gmc_method,omitempty"`
	ProximityThresh  float64 `json:"proximity_thresh,omitempty" yaml:"proximity_thresh,omitempty" toml:"proximity_thresh,omitempty"`
	AppearanceThresh float64 `json:"appearance_thresh,omitempty" yaml:"appearance_thresh,omitempty" toml:"appearance_thresh,omitempty"`
	WithReID         bool    `json:"with_reid,omitempty" yaml:"with_reid,omitempty" toml:"with_reid,omitempty"`
}

// DefaultTrackerConfig returns the stock parameters for a tracker type.
// Unknown types get the ByteTrack parameters with the type kept as given so
// that the registry can reject it with a precise message.
func DefaultTrackerConfig(trackerType string) TrackerConfig {
	cfg := TrackerConfig{
		TrackerType:     trackerType,
		TrackHighThresh: 0.5,
		TrackLowThresh:  0.1,
		NewTrackThresh:  0.6,
		TrackBuffer:     30,
		MatchThresh:     0.8,
		FuseScore:       true,
	}
	if trackerType == "botsort" {
		cfg.GMCMethod = "none"
		cfg.ProximityThresh = 0.5
		cfg.AppearanceThresh = 0.25
	}
	return cfg
}

// ErrProfileNotFound is returned when a profile reference matches no file
// and no built-in profile.
var ErrProfileNotFound = errors.New("tracker profile not found")

// ValidationError reports a malformed tracker profile.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid tracker config: %s %s", e.Field, e.Reason)
}

// Validate checks required fields and value ranges. It does not check that
// TrackerType is a supported kind; the registry owns that decision.
func (c TrackerConfig) Validate() error {
	if strings.TrimSpace(c.TrackerType) == "" {
		return &ValidationError{Field: "tracker_type", Reason: "is required"}
	}
	unit := []struct {
		name string
		v    float64
	}{
		{"track_high_thresh", c.TrackHighThresh},
		{"track_low_thresh", c.TrackLowThresh},
		{"new_track_thresh", c.NewTrackThresh},
		{"match_thresh", c.MatchThresh},
		{"proximity_thresh", c.ProximityThresh},
		{"appearance_thresh", c.AppearanceThresh},
	}
	for _, f := range unit {
		if f.v < 0 || f.v > 1 {
			return &ValidationError{Field: f.name, Reason: fmt.Sprintf("must be within [0, 1], got %g", f.v)}
		}
	}
	if c.TrackLowThresh > c.TrackHighThresh {
		return &ValidationError{Field: "track_low_thresh", Reason: "must not exceed track_high_thresh"}
	}
	if c.TrackBuffer <= 0 {
		return &ValidationError{Field: "track_buffer", Reason: fmt.Sprintf("must be positive, got %d", c.TrackBuffer)}
	}
	switch c.GMCMethod {
	case "", "none":
	default:
		return &ValidationError{Field: "gmc_method", Reason: fmt.Sprintf("%q is not supported (only none)", c.GMCMethod)}
	}
	return nil
}

// BuiltinProfiles lists the names of the profiles compiled into the binary.
func BuiltinProfiles() []string {
	entries, err := fs.ReadDir(builtinFS, "trackers")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// LoadBuiltin parses a built-in profile by name (with or without extension).
func LoadBuiltin(name string) (TrackerConfig, error) {
	base := strings.TrimSuffix(name, path.Ext(name))
	b, err := builtinFS.ReadFile("trackers/" + base + ".yaml")
	if err != nil {
		return TrackerConfig{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	var probe struct {
		TrackerType string `yaml:"tracker_type"`
	}
	if err := decode(".yaml", b, &probe); err != nil {
		return TrackerConfig{}, err
	}
	cfg := DefaultTrackerConfig(probe.TrackerType)
	if err := decode(".yaml", b, &cfg); err != nil {
		return TrackerConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return TrackerConfig{}, fmt.Errorf("%s: %w", base, err)
	}
	return cfg, nil
}
