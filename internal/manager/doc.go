// Package manager owns tracker sets and reconciles detector output against
// them. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, profile lookup.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: source kinds, assignment modes, topology and the tracker set.
//   - assign.go: Decide and SlotTracker, the slot-to-tracker policy.
//   - run.go: Run, the run-scoped owner of a tracker set.
//   - ensure.go: EnsureTrackers, the build-or-keep lifecycle.
//   - reconcile.go: Reconcile, per-slot tracker updates and result rewriting.
//   - runs.go: run registry (create, get, reinit, list, close).
//   - evict.go: closing idle runs.
//   - errors.go: error types and helpers (IsBatchMismatch, IsRunNotFound, IsConfigError).
//   - events.go / eventpub_memory.go: lifecycle event publishing.
//   - metrics.go: Prometheus collectors.
//   - status_report.go: Status for /status.
package manager
