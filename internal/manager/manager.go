package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"trackd/internal/config"
	"trackd/internal/registry"
	"trackd/pkg/types"
)

type Manager struct {
	mu             sync.RWMutex
	runs           map[string]*Run
	profilesDirs   []string
	defaultTracker string
	frameRate      int
	constructors   map[registry.Kind]registry.Constructor
	publisher      EventPublisher
	log            zerolog.Logger

	lastErr        string
	buildsTotal    uint64
	evictionsTotal uint64
	startTime      time.Time
}

// New builds a Manager that searches profilesDir and defaults to defaultTracker.
func New(profilesDir, defaultTracker string) *Manager {
	// Delegate to NewWithConfig to centralize defaults
	var dirs []string
	if profilesDir != "" {
		dirs = []string{profilesDir}
	}
	return NewWithConfig(ManagerConfig{
		ProfilesDirs:   dirs,
		DefaultTracker: defaultTracker,
	})
}

// Ready reports whether the manager can resolve its default profile.
func (m *Manager) Ready() bool {
	_, err := m.ResolveProfile("")
	return err == nil
}

// ResolveProfile loads a tracker profile by name or path; empty selects the
// default profile.
func (m *Manager) ResolveProfile(ref string) (config.TrackerConfig, error) {
	if ref == "" {
		ref = m.defaultTracker
	}
	return registry.FindProfile(ref, m.profilesDirs...)
}

// ListProfiles returns the profiles visible to this manager.
func (m *Manager) ListProfiles() []types.Profile {
	return registry.ListProfiles(m.profilesDirs...)
}

// ProfilesDirs returns a copy of the profile search path.
func (m *Manager) ProfilesDirs() []string {
	return append([]string(nil), m.profilesDirs...)
}

func (m *Manager) constructor(k registry.Kind) registry.Constructor {
	if c, ok := m.constructors[k]; ok {
		return c
	}
	return k.Constructor()
}

func (m *Manager) setLastErr(err error) {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
}
