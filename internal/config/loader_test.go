package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoad_Formats(t *testing.T) {
	cases := []struct {
		file string
		body string
		want Config
	}{
		{
			file: "cfg.yaml",
			body: "addr: :9999\nprofiles_dir: /tmp\ndefault_tracker: botsort\nframe_rate: 25\nmax_idle_seconds: 60\nmax_frames: 16\n",
			want: Config{Addr: ":9999", ProfilesDir: "/tmp", DefaultTracker: "botsort", FrameRate: 25, MaxIdleSeconds: 60, MaxFrames: 16},
		},
		{
			file: "cfg.json",
			body: `{"addr":":7070","profiles_dir":"/m","default_tracker":"bytetrack","frame_rate":15,"log_level":"debug"}`,
			want: Config{Addr: ":7070", ProfilesDir: "/m", DefaultTracker: "bytetrack", FrameRate: 15, LogLevel: "debug"},
		},
		{
			file: "cfg.toml",
			body: "addr=\":8081\"\nprofiles_dir=\"/x\"\ndefault_tracker=\"botsort\"\nframe_rate=60\nmax_body_bytes=2048\n",
			want: Config{Addr: ":8081", ProfilesDir: "/x", DefaultTracker: "botsort", FrameRate: 60, MaxBodyBytes: 2048},
		},
	}
	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			cfg, err := Load(writeTempFile(t, t.TempDir(), tc.file, tc.body))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if cfg.Addr != tc.want.Addr || cfg.ProfilesDir != tc.want.ProfilesDir || cfg.DefaultTracker != tc.want.DefaultTracker ||
				cfg.FrameRate != tc.want.FrameRate || cfg.LogLevel != tc.want.LogLevel || cfg.MaxIdleSeconds != tc.want.MaxIdleSeconds ||
				cfg.MaxBodyBytes != tc.want.MaxBodyBytes || cfg.MaxFrames != tc.want.MaxFrames {
				t.Fatalf("got %+v, want %+v", cfg, tc.want)
			}
		})
	}
}

func TestLoad_CORS(t *testing.T) {
	p := writeTempFile(t, t.TempDir(), "cfg.yaml", "cors_enabled: true\ncors_allowed_origins: [\"http://a\"]\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.CORSEnabled || len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://a" {
		t.Fatalf("unexpected cors: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	d := t.TempDir()
	cases := map[string]string{
		"empty path":  "",
		"missing":     filepath.Join(d, "nope.yaml"),
		"unsupported": writeTempFile(t, d, "cfg.txt", "addr: :1"),
		"bad yaml":    writeTempFile(t, d, "bad.yaml", "addr: :8080\n: broken\n"),
		"bad json":    writeTempFile(t, d, "bad.json", `{ "addr": ":8080", "profiles_dir": }`),
		"bad toml":    writeTempFile(t, d, "bad.toml", "addr=:8080\nprofiles_dir\n"),
	}
	for name, p := range cases {
		if _, err := Load(p); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestIsConfigFile(t *testing.T) {
	for name, want := range map[string]bool{
		"a.yaml": true, "a.YML": true, "a.json": true, "a.toml": true,
		"a.txt": false, "a": false,
	} {
		if got := IsConfigFile(name); got != want {
			t.Errorf("IsConfigFile(%q) = %v, want %v", name, got, want)
		}
	}
}
