// Package fsutil holds small path helpers shared by profile discovery and
// the CLI.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/.config/trackd
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// IsFile reports whether path names an existing non-directory.
func IsFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// FirstExisting returns the first of paths that exists after home
// expansion, or "" when none does.
func FirstExisting(paths ...string) string {
	for _, p := range paths {
		exp, err := ExpandHome(p)
		if err != nil || exp == "" {
			continue
		}
		if PathExists(exp) {
			return exp
		}
	}
	return ""
}
