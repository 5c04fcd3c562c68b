package types

import "image"

// Detection is a single detector output for one frame.
type Detection struct {
	// Bounding box in XYXY pixel coordinates.
	// example: [10, 20, 110, 220]
	Box Box `json:"box" example:"10,20,110,220"`
	// Detector confidence in [0, 1].
	// example: 0.87
	Score float64 `json:"score" example:"0.87"`
	// Class label index.
	// example: 0
	Class int `json:"class" example:"0"`
	// Frame-local index assigned by the detector.
	// example: 3
	Index int `json:"index" example:"3"`
	// Persistent identity assigned by a tracker; 0 until tracked.
	// example: 7
	TrackID int `json:"track_id,omitempty" example:"7"`
	// Optional appearance embedding used by trackers with re-identification.
	Feature []float64 `json:"feature,omitempty"`
}

// Track is a tracker output record. DetIndex refers back into the
// detection slice that was passed to the tracker update.
type Track struct {
	Box      Box
	ID       int
	Score    float64
	Class    int
	DetIndex int
}

// Frame is one slot of a processed batch.
type Frame struct {
	// Slot index within the batch.
	// example: 0
	Slot int `json:"slot" example:"0"`
	// Detections produced for this frame.
	Detections []Detection `json:"detections"`
	// Optional image path, loaded by file sources.
	ImagePath string `json:"image,omitempty"`
	// Decoded source image; never serialised.
	Image image.Image `json:"-"`
}

// FrameResult is the mutable per-slot result container.
type FrameResult struct {
	// Slot index within the batch.
	// example: 0
	Slot int `json:"slot" example:"0"`
	// Detections for the current frame, in tracker order after reconciliation.
	Detections []Detection `json:"detections"`
}

// Profile is a discoverable tracker profile on disk or built in.
type Profile struct {
	// Profile name (file name without extension).
	// example: bytetrack
	Name string `json:"name" example:"bytetrack"`
	// Absolute path to the profile file; empty for built-in profiles.
	// example: /etc/trackd/trackers/bytetrack.yaml
	Path string `json:"path,omitempty" example:"/etc/trackd/trackers/bytetrack.yaml"`
	// Tracker type declared by the profile.
	// example: bytetrack
	TrackerType string `json:"tracker_type" example:"bytetrack"`
}
