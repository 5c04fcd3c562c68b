package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"trackd/internal/common/fsutil"
	"trackd/internal/config"
	"trackd/pkg/types"
)

// LoadDir scans a directory for tracker profiles (*.yaml, *.yml, *.json,
// *.toml) and returns them sorted by name. Files that fail to parse are
// skipped; a missing directory yields only an error.
func LoadDir(dir string) ([]types.Profile, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var profiles []types.Profile
	for _, e := range entries {
		if e.IsDir() || !config.IsConfigFile(e.Name()) {
			continue
		}
		p := filepath.Join(abs, e.Name())
		cfg, err := config.LoadTrackerConfig(p)
		if err != nil {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		profiles = append(profiles, types.Profile{Name: name, Path: p, TrackerType: cfg.TrackerType})
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

// ListProfiles merges the profiles found in dirs with the built-in ones.
// A profile on disk shadows a built-in profile of the same name.
func ListProfiles(dirs ...string) []types.Profile {
	seen := make(map[string]bool)
	var out []types.Profile
	for _, d := range dirs {
		if d == "" {
			continue
		}
		ps, err := LoadDir(d)
		if err != nil {
			continue
		}
		for _, p := range ps {
			if !seen[p.Name] {
				seen[p.Name] = true
				out = append(out, p)
			}
		}
	}
	for _, name := range config.BuiltinProfiles() {
		if seen[name] {
			continue
		}
		cfg, err := config.LoadBuiltin(name)
		if err != nil {
			continue
		}
		seen[name] = true
		out = append(out, types.Profile{Name: name, TrackerType: cfg.TrackerType})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FindProfile resolves a profile reference to a parsed config. ref may be a
// file path, a name ("bytetrack") or a file name ("bytetrack.yaml"). dirs are
// searched in order before the built-in profiles.
func FindProfile(ref string, dirs ...string) (config.TrackerConfig, error) {
	if ref == "" {
		return config.TrackerConfig{}, errors.New("empty tracker profile")
	}
	if fsutil.IsFile(ref) {
		return config.LoadTrackerConfig(ref)
	}
	name := strings.TrimSuffix(ref, filepath.Ext(ref))
	for _, d := range dirs {
		if d == "" {
			continue
		}
		base, err := fsutil.ExpandHome(d)
		if err != nil {
			return config.TrackerConfig{}, err
		}
		candidates := []string{filepath.Join(base, ref)}
		if filepath.Ext(ref) == "" {
			for _, ext := range []string{".yaml", ".yml", ".json", ".toml"} {
				candidates = append(candidates, filepath.Join(base, name+ext))
			}
		}
		for _, c := range candidates {
			if fsutil.IsFile(c) {
				return config.LoadTrackerConfig(c)
			}
		}
	}
	return config.LoadBuiltin(name)
}
