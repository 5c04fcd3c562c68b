// Package bytetrack implements the ByteTrack association scheme: high score
// detections are matched first, then low score detections recover tracks
// that would otherwise be lost.
package bytetrack

import (
	"fmt"
	"image"

	"trackd/internal/config"
	"trackd/internal/tracker/kalman"
	"trackd/internal/tracker/matching"
	"trackd/internal/tracker/strack"
	"trackd/pkg/types"
)

const (
	secondMatchThresh      = 0.5
	unconfirmedMatchThresh = 0.7
	maxRemembered          = 1000
)

// DistanceFunc computes the association cost between tracks and detections
// for the first and unconfirmed association stages.
type DistanceFunc func(cfg config.TrackerConfig, tracks, dets []*strack.STrack) [][]float64

// Options lets variants swap the motion model and the distance.
type Options struct {
	Space    kalman.Space
	Distance DistanceFunc
}

// Tracker is a ByteTrack instance. It is not safe for concurrent use.
type Tracker struct {
	cfg         config.TrackerConfig
	filter      *kalman.Filter
	distance    DistanceFunc
	maxTimeLost int

	frameID int
	tracked []*strack.STrack
	lost    []*strack.STrack
	removed []*strack.STrack
}

// New builds a ByteTrack tracker.
func New(cfg config.TrackerConfig, frameRate int) *Tracker {
	return NewWithOptions(cfg, frameRate, Options{Space: kalman.SpaceXYAH, Distance: IoUDistance})
}

// NewWithOptions builds a tracker with a custom motion model and distance.
func NewWithOptions(cfg config.TrackerConfig, frameRate int, opts Options) *Tracker {
	if frameRate <= 0 {
		frameRate = 30
	}
	if opts.Distance == nil {
		opts.Distance = IoUDistance
	}
	return &Tracker{
		cfg:         cfg,
		filter:      kalman.New(opts.Space),
		distance:    opts.Distance,
		maxTimeLost: int(float64(frameRate) / 30.0 * float64(cfg.TrackBuffer)),
	}
}

// IoUDistance is the stock ByteTrack distance, optionally fused with score.
func IoUDistance(cfg config.TrackerConfig, tracks, dets []*strack.STrack) [][]float64 {
	cost := matching.IoUDistance(strack.Boxes(tracks), strack.Boxes(dets))
	if cfg.FuseScore {
		cost = matching.FuseScore(cost, strack.Scores(dets))
	}
	return cost
}

// Reset clears all tracks. Identities are never reissued.
func (t *Tracker) Reset() {
	t.frameID = 0
	t.tracked = nil
	t.lost = nil
	t.removed = nil
}

// Update consumes one frame of detections. The image is accepted for
// interface parity; this variant does not use it.
func (t *Tracker) Update(dets []types.Detection, _ image.Image) ([]types.Track, error) {
	t.frameID++

	var high, low []*strack.STrack
	for i, d := range dets {
		switch {
		case d.Score > t.cfg.TrackHighThresh:
			high = append(high, strack.FromDetection(t.filter, d, i))
		case d.Score > t.cfg.TrackLowThresh:
			low = append(low, strack.FromDetection(t.filter, d, i))
		}
	}

	var unconfirmed, active []*strack.STrack
	for _, tr := range t.tracked {
		if tr.Activated {
			active = append(active, tr)
		} else {
			unconfirmed = append(unconfirmed, tr)
		}
	}
	pool := strack.Joint(active, t.lost)
	for _, tr := range pool {
		tr.Predict()
	}

	var activated, refound, lostNow, removedNow []*strack.STrack

	// First association: high score detections against all live tracks.
	matches, uTrack, uDet := matching.LinearAssignment(t.distance(t.cfg, pool, high), len(pool), len(high), t.cfg.MatchThresh)
	for _, m := range matches {
		tr, det := pool[m[0]], high[m[1]]
		if tr.State == strack.Tracked {
			if err := tr.Update(det, t.frameID); err != nil {
				return nil, fmt.Errorf("bytetrack: first association: %w", err)
			}
			activated = append(activated, tr)
		} else {
			if err := tr.ReActivate(det, t.frameID); err != nil {
				return nil, fmt.Errorf("bytetrack: first association: %w", err)
			}
			refound = append(refound, tr)
		}
	}

	// Second association: low score detections against still-tracked leftovers.
	var remaining []*strack.STrack
	for _, i := range uTrack {
		if pool[i].State == strack.Tracked {
			remaining = append(remaining, pool[i])
		}
	}
	cost := matching.IoUDistance(strack.Boxes(remaining), strack.Boxes(low))
	matches, uRemaining, _ := matching.LinearAssignment(cost, len(remaining), len(low), secondMatchThresh)
	for _, m := range matches {
		tr, det := remaining[m[0]], low[m[1]]
		if tr.State == strack.Tracked {
			if err := tr.Update(det, t.frameID); err != nil {
				return nil, fmt.Errorf("bytetrack: second association: %w", err)
			}
			activated = append(activated, tr)
		} else {
			if err := tr.ReActivate(det, t.frameID); err != nil {
				return nil, fmt.Errorf("bytetrack: second association: %w", err)
			}
			refound = append(refound, tr)
		}
	}
	for _, i := range uRemaining {
		if tr := remaining[i]; tr.State != strack.Lost {
			tr.MarkLost()
			lostNow = append(lostNow, tr)
		}
	}

	// Unconfirmed tracks (seen once) get one chance against leftover high dets.
	leftover := make([]*strack.STrack, 0, len(uDet))
	for _, i := range uDet {
		leftover = append(leftover, high[i])
	}
	matches, uUnconfirmed, uLeft := matching.LinearAssignment(t.distance(t.cfg, unconfirmed, leftover), len(unconfirmed), len(leftover), unconfirmedMatchThresh)
	for _, m := range matches {
		tr := unconfirmed[m[0]]
		if err := tr.Update(leftover[m[1]], t.frameID); err != nil {
			return nil, fmt.Errorf("bytetrack: unconfirmed association: %w", err)
		}
		activated = append(activated, tr)
	}
	for _, i := range uUnconfirmed {
		unconfirmed[i].MarkRemoved()
		removedNow = append(removedNow, unconfirmed[i])
	}

	for _, i := range uLeft {
		tr := leftover[i]
		if tr.Score < t.cfg.NewTrackThresh {
			continue
		}
		tr.Activate(t.frameID, strack.NextID())
		activated = append(activated, tr)
	}

	for _, tr := range t.lost {
		if t.frameID-tr.FrameID > t.maxTimeLost {
			tr.MarkRemoved()
			removedNow = append(removedNow, tr)
		}
	}

	var stillTracked []*strack.STrack
	for _, tr := range t.tracked {
		if tr.State == strack.Tracked {
			stillTracked = append(stillTracked, tr)
		}
	}
	t.tracked = strack.Joint(strack.Joint(stillTracked, activated), refound)
	t.lost = strack.Sub(append(strack.Sub(t.lost, t.tracked), lostNow...), removedNow)
	t.tracked, t.lost = strack.RemoveDuplicates(t.tracked, t.lost)
	t.removed = append(t.removed, removedNow...)
	if len(t.removed) > maxRemembered {
		t.removed = t.removed[len(t.removed)-maxRemembered:]
	}

	out := make([]types.Track, 0, len(t.tracked))
	for _, tr := range t.tracked {
		if tr.Activated {
			out = append(out, tr.Output())
		}
	}
	return out, nil
}
