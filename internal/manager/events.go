package manager

// Lifecycle event names.
const (
	EventEnsureStart   = "ensure_start"
	EventEnsureReady   = "ensure_ready"
	EventEnsurePersist = "ensure_persist"
	EventEnsureError   = "ensure_error"
	EventRunClosed     = "run_closed"
	EventRunEvicted    = "run_evicted"
)

// Event is a tracker lifecycle notification for one run. Fields carries
// event-specific values such as instance counts or the build error.
type Event struct {
	Name   string
	RunID  string
	Fields map[string]any
}

// EventPublisher receives events from the manager. Publish is called while
// the run is locked, so implementations must not block or call back into
// the manager.
type EventPublisher interface {
	Publish(Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
