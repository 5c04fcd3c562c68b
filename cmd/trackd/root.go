package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trackd/internal/common/fsutil"
	"trackd/internal/config"
	"trackd/internal/manager"
)

// defaultConfigPaths are probed when neither --config nor TRACKD_CONFIG is set.
var defaultConfigPaths = []string{"trackd.yaml", "trackd.toml", "trackd.json", "~/.config/trackd/config.yaml"}

func defaultConfig() config.Config {
	return config.Config{
		Addr:           ":8080",
		DefaultTracker: "bytetrack",
		FrameRate:      30,
		LogLevel:       "info",
		MaxIdleSeconds: 600,
	}
}

// settings is the resolved configuration shared by subcommands.
type settings struct {
	cfgPath string
	cfg     config.Config
	log     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	s := &settings{cfg: defaultConfig()}
	root := &cobra.Command{
		Use:           "trackd",
		Short:         "Multi-object tracking over detector output",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&s.cfgPath, "config", "", "Config file (.yaml/.yml/.json/.toml); defaults TRACKD_CONFIG or ./trackd.yaml")
	pf.String("log-level", "", "Log level: debug|info|warn|error (defaults TRACKD_LOG_LEVEL or info)")
	pf.String("profiles-dir", "", "Directory of tracker profiles (defaults TRACKD_PROFILES_DIR)")
	pf.String("default-tracker", "", "Profile used when a run names none (defaults TRACKD_DEFAULT_TRACKER or bytetrack)")
	pf.Int("frame-rate", 0, "Frame rate passed to trackers (defaults TRACKD_FRAME_RATE or 30)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := s.resolve(cmd); err != nil {
			return err
		}
		s.log = newLogger(s.cfg.LogLevel, cmd.ErrOrStderr())
		return nil
	}
	root.AddCommand(newServeCmd(s), newTrackCmd(s), newProfilesCmd(s))
	return root
}

// resolve layers the config file, TRACKD_* environment variables and
// explicitly set flags over the defaults, in that order.
func (s *settings) resolve(cmd *cobra.Command) error {
	path := s.cfgPath
	if path == "" {
		path = os.Getenv("TRACKD_CONFIG")
	}
	if path == "" {
		path = fsutil.FirstExisting(defaultConfigPaths...)
	}
	if path != "" {
		exp, err := fsutil.ExpandHome(path)
		if err != nil {
			return err
		}
		fileCfg, err := config.Load(exp)
		if err != nil {
			return fmt.Errorf("load config %s: %w", exp, err)
		}
		mergeConfig(&s.cfg, fileCfg)
	}
	if err := applyEnv(&s.cfg); err != nil {
		return err
	}
	return applyFlags(cmd, &s.cfg)
}

// mergeConfig copies the non-zero fields of src over dst.
func mergeConfig(dst *config.Config, src config.Config) {
	if src.Addr != "" {
		dst.Addr = src.Addr
	}
	if src.ProfilesDir != "" {
		dst.ProfilesDir = src.ProfilesDir
	}
	if src.DefaultTracker != "" {
		dst.DefaultTracker = src.DefaultTracker
	}
	if src.FrameRate != 0 {
		dst.FrameRate = src.FrameRate
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.MaxIdleSeconds != 0 {
		dst.MaxIdleSeconds = src.MaxIdleSeconds
	}
	if src.MaxBodyBytes != 0 {
		dst.MaxBodyBytes = src.MaxBodyBytes
	}
	if src.MaxFrames != 0 {
		dst.MaxFrames = src.MaxFrames
	}
	if src.CORSEnabled {
		dst.CORSEnabled = true
	}
	if len(src.CORSOrigins) > 0 {
		dst.CORSOrigins = src.CORSOrigins
	}
}

func applyEnv(cfg *config.Config) error {
	if v := os.Getenv("TRACKD_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TRACKD_PROFILES_DIR"); v != "" {
		cfg.ProfilesDir = v
	}
	if v := os.Getenv("TRACKD_DEFAULT_TRACKER"); v != "" {
		cfg.DefaultTracker = v
	}
	if v := os.Getenv("TRACKD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TRACKD_CORS_ORIGINS"); v != "" {
		cfg.CORSEnabled = true
		cfg.CORSOrigins = splitCSV(v)
	}
	for name, dst := range map[string]*int{
		"TRACKD_FRAME_RATE":       &cfg.FrameRate,
		"TRACKD_MAX_IDLE_SECONDS": &cfg.MaxIdleSeconds,
		"TRACKD_MAX_FRAMES":       &cfg.MaxFrames,
	} {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = n
		}
	}
	if v := os.Getenv("TRACKD_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TRACKD_MAX_BODY_BYTES: %w", err)
		}
		cfg.MaxBodyBytes = n
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	var err error
	if fs.Changed("log-level") {
		cfg.LogLevel, err = fs.GetString("log-level")
	}
	if err == nil && fs.Changed("profiles-dir") {
		cfg.ProfilesDir, err = fs.GetString("profiles-dir")
	}
	if err == nil && fs.Changed("default-tracker") {
		cfg.DefaultTracker, err = fs.GetString("default-tracker")
	}
	if err == nil && fs.Changed("frame-rate") {
		cfg.FrameRate, err = fs.GetInt("frame-rate")
	}
	return err
}

func (s *settings) newManager() *manager.Manager {
	var dirs []string
	if s.cfg.ProfilesDir != "" {
		dirs = append(dirs, s.cfg.ProfilesDir)
	}
	return manager.NewWithConfig(manager.ManagerConfig{
		ProfilesDirs:   dirs,
		DefaultTracker: s.cfg.DefaultTracker,
		FrameRate:      s.cfg.FrameRate,
		Logger:         &s.log,
	})
}

func newLogger(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().Timestamp().
		Logger()
}

// splitCSV splits a comma-separated list, trimming blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
