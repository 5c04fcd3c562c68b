package manager

import (
	"sort"

	"trackd/pkg/types"
)

// CreateRun resolves the requested profile, builds the run's tracker set
// and registers the run. Nothing is registered when the build fails.
func (m *Manager) CreateRun(req types.CreateRunRequest) (*Run, error) {
	cfg, err := m.ResolveProfile(req.Tracker)
	if err != nil {
		return nil, err
	}
	src := req.Source
	if src == "" {
		src = SourceVideo.String()
	}
	kind, err := ParseSourceKind(src)
	if err != nil {
		return nil, err
	}
	profile := req.Tracker
	if profile == "" {
		profile = m.defaultTracker
	}
	run := NewRun(profile, req.FrameRate)
	topo := Topology{
		BatchSize:      req.BatchSize,
		Source:         kind,
		AllowShared:    !req.IsolateSlots,
		MultipleVideos: req.MultipleVideos,
	}
	if err := m.EnsureTrackers(run, cfg, false, topo); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.runs[run.ID] = run
	m.mu.Unlock()
	return run, nil
}

// GetRun returns a live run by id.
func (m *Manager) GetRun(id string) (*Run, error) {
	m.mu.RLock()
	run, ok := m.runs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrRunNotFound(id)
	}
	return run, nil
}

// ReinitRun re-enters initialization for an existing run with the topology
// it was built for. With Persist set and trackers present nothing changes.
func (m *Manager) ReinitRun(id string, req types.ReinitRequest) (*Run, error) {
	run, err := m.GetRun(id)
	if err != nil {
		return nil, err
	}
	ref := req.Tracker
	if ref == "" {
		ref = run.Profile
	}
	cfg, err := m.ResolveProfile(ref)
	if err != nil {
		return nil, err
	}
	if err := m.EnsureTrackers(run, cfg, req.Persist, run.Topology()); err != nil {
		return nil, err
	}
	if req.Tracker != "" && !req.Persist {
		run.mu.Lock()
		run.Profile = req.Tracker
		run.mu.Unlock()
	}
	return run, nil
}

// ListRuns returns the status of every live run, oldest first.
func (m *Manager) ListRuns() []types.RunStatus {
	m.mu.RLock()
	runs := make([]*Run, 0, len(m.runs))
	for _, r := range m.runs {
		runs = append(runs, r)
	}
	m.mu.RUnlock()
	out := make([]types.RunStatus, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.Status())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CloseRun discards a run's trackers and forgets the run.
func (m *Manager) CloseRun(id string) error {
	m.mu.Lock()
	run, ok := m.runs[id]
	delete(m.runs, id)
	m.mu.Unlock()
	if !ok {
		return ErrRunNotFound(id)
	}
	n := run.Close()
	m.publisher.Publish(Event{Name: EventRunClosed, RunID: id, Fields: map[string]any{"instances": n}})
	m.log.Info().Str("run", id).Int("instances", n).Msg("run closed")
	return nil
}
