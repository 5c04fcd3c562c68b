package manager

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"trackd/internal/tracker"
	"trackd/pkg/types"
)

// Run is the run-scoped context that owns a tracker set. It is created when
// a pipeline run starts and closed when it ends; the tracker set never
// outlives it. A Run serialises its own initialization and reconciliation,
// so trackers always observe frames in order.
type Run struct {
	ID        string
	Profile   string
	FrameRate int

	mu       sync.Mutex
	set      *trackerSet
	topo     Topology
	closed   bool
	created  time.Time
	lastUsed time.Time
	batches  uint64
}

// NewRun creates an uninitialized run. frameRate <= 0 defers to the
// manager's frame rate when trackers are built.
func NewRun(profile string, frameRate int) *Run {
	now := time.Now()
	return &Run{
		ID:        uuid.NewString(),
		Profile:   profile,
		FrameRate: frameRate,
		created:   now,
		lastUsed:  now,
	}
}

// Initialized reports whether the run currently holds a tracker set.
func (r *Run) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set != nil
}

// Mode returns the assignment mode of the current set.
func (r *Run) Mode() (AssignmentMode, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.set == nil {
		return 0, false
	}
	return r.set.mode, true
}

// Trackers returns a copy of the current slot-ordered tracker list.
func (r *Run) Trackers() []tracker.Strategy {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.set == nil {
		return nil
	}
	return append([]tracker.Strategy(nil), r.set.trackers...)
}

// Close discards the tracker set and every identity it issued.
// Closing twice is a no-op.
func (r *Run) Close() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.set == nil {
		return 0
	}
	n := len(r.set.trackers)
	r.set.discard()
	trackerInstances.Sub(float64(n))
	r.set = nil
	return n
}

// Topology returns the batch shape of the last successful build.
func (r *Run) Topology() Topology {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.topo
}

// Status renders the run for /status and /runs.
func (r *Run) Status() types.RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := types.RunStatus{
		ID:        r.ID,
		Batches:   r.batches,
		CreatedAt: r.created.Unix(),
		LastUsed:  r.lastUsed.Unix(),
	}
	if r.set != nil {
		st.TrackerType = r.set.kind.String()
		st.Mode = r.set.mode.String()
		st.BatchSize = r.set.topo.BatchSize
		st.Instances = len(r.set.trackers)
	}
	return st
}

func (r *Run) idleSince() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastUsed
}
