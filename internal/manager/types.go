package manager

import (
	"fmt"
	"time"

	"trackd/internal/config"
	"trackd/internal/registry"
	"trackd/internal/tracker"
)

// SourceKind describes how the pipeline produces a batch.
type SourceKind int

const (
	// SourceImages feeds single in-memory images one at a time.
	SourceImages SourceKind = iota
	// SourceVideo is a multiplexed decode of one or more video streams.
	SourceVideo
)

func (s SourceKind) String() string {
	switch s {
	case SourceImages:
		return "images"
	case SourceVideo:
		return "video"
	}
	return fmt.Sprintf("SourceKind(%d)", int(s))
}

// ParseSourceKind maps "images" or "video" to a SourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	switch s {
	case "images", "image":
		return SourceImages, nil
	case "video", "stream", "streams":
		return SourceVideo, nil
	}
	return 0, fmt.Errorf("%w: unknown source kind %q (want images or video)", ErrInvalidTopology, s)
}

// AssignmentMode says whether a batch shares one tracker or uses one per slot.
type AssignmentMode int

const (
	ModeShared AssignmentMode = iota
	ModePerSlot
)

func (m AssignmentMode) String() string {
	switch m {
	case ModeShared:
		return "shared"
	case ModePerSlot:
		return "per_slot"
	}
	return fmt.Sprintf("AssignmentMode(%d)", int(m))
}

// Instances is the number of trackers a batch of batchSize needs in mode m.
func (m AssignmentMode) Instances(batchSize int) int {
	if m == ModeShared {
		return 1
	}
	return batchSize
}

// Topology is the batch shape a tracker set is built for.
type Topology struct {
	BatchSize      int
	Source         SourceKind
	AllowShared    bool
	MultipleVideos bool
}

// trackerSet is the immutable slot-to-tracker binding of one build.
type trackerSet struct {
	kind     registry.Kind
	cfg      config.TrackerConfig
	topo     Topology
	mode     AssignmentMode
	trackers []tracker.Strategy
	built    time.Time
}

func (s *trackerSet) discard() {
	for _, t := range s.trackers {
		t.Reset()
	}
	s.trackers = nil
}
