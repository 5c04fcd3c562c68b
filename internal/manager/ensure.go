package manager

import (
	"errors"
	"fmt"
	"time"

	"trackd/internal/config"
	"trackd/internal/registry"
	"trackd/internal/tracker"
)

// ErrRunClosed is returned when a closed run is initialized again.
var ErrRunClosed = errors.New("run closed")

// EnsureTrackers guarantees that run holds a tracker set for topo.
//
// With persist set and a set already present the call is a no-op: the
// existing trackers and every identity they issued survive, even if cfg or
// topo differ. Otherwise the kind, the profile and the topology are all
// validated before any tracker is constructed, and the new set replaces the
// previous one in a single step. On error the previous set is left intact.
func (m *Manager) EnsureTrackers(run *Run, cfg config.TrackerConfig, persist bool, topo Topology) error {
	run.mu.Lock()
	defer run.mu.Unlock()
	if run.closed {
		return ErrRunClosed
	}
	if persist && run.set != nil {
		m.publisher.Publish(Event{Name: EventEnsurePersist, RunID: run.ID, Fields: map[string]any{"instances": len(run.set.trackers)}})
		m.log.Debug().Str("run", run.ID).Int("instances", len(run.set.trackers)).Msg("tracker set kept")
		return nil
	}

	m.publisher.Publish(Event{Name: EventEnsureStart, RunID: run.ID, Fields: map[string]any{"tracker_type": cfg.TrackerType, "batch_size": topo.BatchSize}})
	set, err := m.buildSet(cfg, topo, run.FrameRate)
	if err != nil {
		m.setLastErr(err)
		m.publisher.Publish(Event{Name: EventEnsureError, RunID: run.ID, Fields: map[string]any{"error": err.Error()}})
		m.log.Warn().Err(err).Str("run", run.ID).Msg("tracker set build failed")
		return err
	}

	prev := 0
	if run.set != nil {
		prev = len(run.set.trackers)
		run.set.discard()
	}
	run.set = set
	run.topo = topo
	run.lastUsed = time.Now()
	trackerInstances.Add(float64(len(set.trackers) - prev))

	m.mu.Lock()
	m.buildsTotal++
	m.mu.Unlock()

	m.publisher.Publish(Event{Name: EventEnsureReady, RunID: run.ID, Fields: map[string]any{
		"tracker_type": set.kind.String(),
		"mode":         set.mode.String(),
		"instances":    len(set.trackers),
	}})
	m.log.Info().
		Str("run", run.ID).
		Str("tracker", set.kind.String()).
		Str("mode", set.mode.String()).
		Int("instances", len(set.trackers)).
		Msg("tracker set ready")
	return nil
}

func (m *Manager) buildSet(cfg config.TrackerConfig, topo Topology, frameRate int) (*trackerSet, error) {
	kind, err := registry.ParseKind(cfg.TrackerType)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if topo.BatchSize < 1 {
		return nil, fmt.Errorf("%w: batch size must be at least 1, got %d", ErrInvalidTopology, topo.BatchSize)
	}
	if frameRate <= 0 {
		frameRate = m.frameRate
	}
	ctor := m.constructor(kind)
	mode := Decide(topo.BatchSize, topo.Source, topo.AllowShared, topo.MultipleVideos)
	n := mode.Instances(topo.BatchSize)
	trackers := make([]tracker.Strategy, n)
	for i := range trackers {
		trackers[i] = ctor(cfg, frameRate)
	}
	return &trackerSet{
		kind:     kind,
		cfg:      cfg,
		topo:     topo,
		mode:     mode,
		trackers: trackers,
		built:    time.Now(),
	}, nil
}
