package manager

import (
	"time"

	"github.com/rs/zerolog"

	"trackd/internal/registry"
	"trackd/internal/tracker"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultTracker = "bytetrack"
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// ProfilesDirs are searched for tracker profiles before the built-ins.
	ProfilesDirs []string
	// DefaultTracker is the profile used when a run names none.
	DefaultTracker string
	// FrameRate seeds trackers of runs that do not set one.
	FrameRate int
	// Constructors overrides the constructor of a kind. The set of kinds
	// stays closed; tests use this to inject deterministic trackers.
	Constructors map[registry.Kind]registry.Constructor
	Publisher    EventPublisher
	Logger       *zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		profilesDirs:   append([]string(nil), cfg.ProfilesDirs...),
		defaultTracker: cfg.DefaultTracker,
		frameRate:      cfg.FrameRate,
		constructors:   make(map[registry.Kind]registry.Constructor, len(cfg.Constructors)),
		publisher:      cfg.Publisher,
		runs:           make(map[string]*Run),
		startTime:      time.Now(),
	}
	if m.defaultTracker == "" {
		m.defaultTracker = defaultTracker
	}
	if m.frameRate <= 0 {
		m.frameRate = tracker.DefaultFrameRate
	}
	for k, c := range cfg.Constructors {
		m.constructors[k] = c
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		m.log = *cfg.Logger
	} else {
		m.log = zerolog.Nop()
	}
	return m
}
