package config

import (
	"errors"
	"testing"
)

func TestLoadTrackerConfig_FillsDefaultsPerType(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "custom.yaml", "tracker_type: botsort\ntrack_buffer: 60\nwith_reid: true\n")
	cfg, err := LoadTrackerConfig(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TrackerType != "botsort" || cfg.TrackBuffer != 60 || !cfg.WithReID {
		t.Fatalf("explicit fields not applied: %+v", cfg)
	}
	if cfg.TrackHighThresh != 0.5 || cfg.ProximityThresh != 0.5 || cfg.GMCMethod != "none" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadTrackerConfig_JSONAndTOML(t *testing.T) {
	d := t.TempDir()
	pj := writeTempFile(t, d, "a.json", `{"tracker_type":"bytetrack","match_thresh":0.7}`)
	pt := writeTempFile(t, d, "b.toml", "tracker_type=\"bytetrack\"\nfuse_score=false\n")
	cj, err := LoadTrackerConfig(pj)
	if err != nil || cj.MatchThresh != 0.7 {
		t.Fatalf("json: cfg=%+v err=%v", cj, err)
	}
	ct, err := LoadTrackerConfig(pt)
	if err != nil || ct.FuseScore {
		t.Fatalf("toml: cfg=%+v err=%v", ct, err)
	}
}

func TestLoadTrackerConfig_MissingTrackerType(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.yaml", "track_buffer: 30\n")
	_, err := LoadTrackerConfig(p)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "tracker_type" {
		t.Fatalf("expected tracker_type validation error, got %v", err)
	}
}

func TestValidate_Ranges(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*TrackerConfig)
		field string
	}{
		{"high>1", func(c *TrackerConfig) { c.TrackHighThresh = 1.5 }, "track_high_thresh"},
		{"low>high", func(c *TrackerConfig) { c.TrackLowThresh = 0.9 }, "track_low_thresh"},
		{"buffer", func(c *TrackerConfig) { c.TrackBuffer = 0 }, "track_buffer"},
		{"gmc", func(c *TrackerConfig) { c.GMCMethod = "sparseOptFlow" }, "gmc_method"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultTrackerConfig("botsort")
			tc.mut(&cfg)
			var ve *ValidationError
			if err := cfg.Validate(); !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected %s error, got %v", tc.field, err)
			}
		})
	}
}

func TestUnknownTypeIsNotAConfigError(t *testing.T) {
	if err := DefaultTrackerConfig("deepsort").Validate(); err != nil {
		t.Fatalf("kind checks belong to the registry, got %v", err)
	}
}

func TestBuiltinProfiles(t *testing.T) {
	names := BuiltinProfiles()
	if len(names) != 2 || names[0] != "botsort" || names[1] != "bytetrack" {
		t.Fatalf("unexpected builtins: %v", names)
	}
	for _, n := range []string{"bytetrack", "botsort.yaml"} {
		cfg, err := LoadBuiltin(n)
		if err != nil {
			t.Fatalf("builtin %s: %v", n, err)
		}
		if cfg.TrackerType == "" {
			t.Fatalf("builtin %s has no tracker_type", n)
		}
	}
	if _, err := LoadBuiltin("missing"); err == nil {
		t.Fatalf("expected error for missing builtin")
	}
}
