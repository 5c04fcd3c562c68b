package manager

import "time"

// EvictIdle closes runs that have not reconciled a batch for longer than
// maxIdle and returns how many were closed. maxIdle <= 0 disables eviction.
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-maxIdle)
	// Lock order is run.mu before m.mu; read idleness without holding m.mu.
	m.mu.RLock()
	candidates := make([]*Run, 0, len(m.runs))
	for _, r := range m.runs {
		candidates = append(candidates, r)
	}
	m.mu.RUnlock()

	var idle []*Run
	for _, r := range candidates {
		if !r.idleSince().Before(cutoff) {
			continue
		}
		m.mu.Lock()
		if m.runs[r.ID] == r {
			delete(m.runs, r.ID)
			m.evictionsTotal++
			idle = append(idle, r)
		}
		m.mu.Unlock()
	}

	for _, r := range idle {
		n := r.Close()
		m.publisher.Publish(Event{Name: EventRunEvicted, RunID: r.ID, Fields: map[string]any{"instances": n}})
		m.log.Info().Str("run", r.ID).Msg("idle run evicted")
	}
	return len(idle)
}
