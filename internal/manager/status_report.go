package manager

import (
	"time"

	"trackd/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	runs := m.ListRuns()
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp := types.StatusResponse{
		Runs:           runs,
		LastError:      m.lastErr,
		UptimeSeconds:  int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
		BuildsTotal:    m.buildsTotal,
		EvictionsTotal: m.evictionsTotal,
	}
	for _, r := range runs {
		resp.Instances += r.Instances
	}
	return resp
}
