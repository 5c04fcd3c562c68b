package types

// CreateRunRequest opens a tracking run.
type CreateRunRequest struct {
	// Tracker profile name or path. Empty uses the server default.
	// example: bytetrack
	Tracker string `json:"tracker,omitempty" example:"bytetrack"`
	// Number of slots per batch.
	// example: 2
	BatchSize int `json:"batch_size" example:"2"`
	// Source kind: "images" or "video".
	// example: video
	Source string `json:"source" example:"video"`
	// Declares that slots are genuinely different videos.
	// example: false
	MultipleVideos bool `json:"multiple_videos,omitempty" example:"false"`
	// Forbids sharing one tracker across an image batch.
	// example: false
	IsolateSlots bool `json:"isolate_slots,omitempty" example:"false"`
	// Frame rate passed to trackers; 0 uses 30.
	// example: 30
	FrameRate int `json:"frame_rate,omitempty" example:"30"`
}

// ReinitRequest rebuilds or keeps the tracker set of an existing run.
type ReinitRequest struct {
	// Keep existing trackers and identities if already initialized.
	// example: true
	Persist bool `json:"persist" example:"true"`
	// Optional new tracker profile.
	// example: botsort
	Tracker string `json:"tracker,omitempty" example:"botsort"`
}

// RunStatus summarizes a tracking run.
type RunStatus struct {
	// Run identifier.
	// example: 5f1c2b7e-8a0d-4f7e-9f4c-1b2d3e4f5a6b
	ID string `json:"id" example:"5f1c2b7e-8a0d-4f7e-9f4c-1b2d3e4f5a6b"`
	// Tracker type serving this run.
	// example: bytetrack
	TrackerType string `json:"tracker_type" example:"bytetrack"`
	// Assignment mode: "shared" or "per_slot".
	// example: per_slot
	Mode string `json:"mode" example:"per_slot"`
	// Number of slots per batch.
	// example: 2
	BatchSize int `json:"batch_size" example:"2"`
	// Number of live tracker instances.
	// example: 2
	Instances int `json:"instances" example:"2"`
	// Number of batches reconciled so far.
	// example: 120
	Batches uint64 `json:"batches" example:"120"`
	// Creation time (unix seconds).
	// example: 1700000000
	CreatedAt int64 `json:"created_unix" example:"1700000000"`
	// Last time this run reconciled a batch (unix seconds).
	// example: 1700000100
	LastUsed int64 `json:"last_used_unix" example:"1700000100"`
}

// TrackRequest carries one batch of frames for a run.
type TrackRequest struct {
	Frames []Frame `json:"frames"`
}

// TrackResponse returns the reconciled results for a batch.
type TrackResponse struct {
	// Run identifier.
	RunID string `json:"run_id"`
	// Reconciled per-slot results.
	Results []FrameResult `json:"results"`
}

// ProfilesResponse wraps the list of profiles returned by GET /profiles.
type ProfilesResponse struct {
	Profiles []Profile `json:"profiles"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Live runs.
	Runs []RunStatus `json:"runs"`
	// Total tracker instances across all runs.
	// example: 4
	Instances int `json:"instances" example:"4"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total tracker sets built since start.
	// example: 12
	BuildsTotal uint64 `json:"builds_total" example:"12"`
	// Total runs evicted for idleness.
	// example: 1
	EvictionsTotal uint64 `json:"evictions_total" example:"1"`
}
