package manager

import (
	"fmt"
	"image"
	"time"

	"trackd/pkg/types"
)

// Reconcile runs one processed batch through the run's trackers and rewrites
// results in place. frames supplies the source image of each slot and may be
// nil when no images are available; otherwise it must match results slot for
// slot.
//
// Per slot, empty detections leave the result untouched and issue no update.
// When the tracker returns tracks, the slot's detections are replaced by the
// detections the tracks reference, in track order, carrying the track's box,
// score, class and identity. An empty track list leaves the result untouched.
//
// Slots are processed one at a time in slot order. A shared tracker sees
// every slot of the batch in that order.
func (m *Manager) Reconcile(run *Run, frames []types.Frame, results []types.FrameResult) error {
	start := time.Now()
	defer func() { reconcileDuration.Observe(time.Since(start).Seconds()) }()

	run.mu.Lock()
	defer run.mu.Unlock()
	set := run.set
	if set == nil {
		return ErrNotInitialized
	}
	if frames != nil && len(frames) != len(results) {
		return &BatchMismatchError{Slots: len(results), Trackers: len(set.trackers), Frames: len(frames)}
	}
	if set.mode == ModePerSlot && len(results) > len(set.trackers) {
		return &BatchMismatchError{Slots: len(results), Trackers: len(set.trackers), Frames: len(results)}
	}

	kind := set.kind.String()
	for i := range results {
		dets := results[i].Detections
		if len(dets) == 0 {
			continue
		}
		var img image.Image
		if frames != nil {
			img = frames[i].Image
		}
		t := set.trackers[SlotTracker(set.mode, i)]
		tracks, err := t.Update(dets, img)
		trackerUpdatesTotal.WithLabelValues(kind).Inc()
		if err != nil {
			m.setLastErr(err)
			return fmt.Errorf("slot %d: tracker update: %w", i, err)
		}
		if len(tracks) == 0 {
			detectionsTotal.WithLabelValues("dropped").Add(float64(len(dets)))
			continue
		}
		out := make([]types.Detection, len(tracks))
		for j, tr := range tracks {
			if tr.DetIndex < 0 || tr.DetIndex >= len(dets) {
				return fmt.Errorf("slot %d: track %d references detection %d of %d", i, tr.ID, tr.DetIndex, len(dets))
			}
			d := dets[tr.DetIndex]
			d.Box = tr.Box
			d.Score = tr.Score
			d.Class = tr.Class
			d.TrackID = tr.ID
			out[j] = d
		}
		results[i].Detections = out
		detectionsTotal.WithLabelValues("kept").Add(float64(len(out)))
		detectionsTotal.WithLabelValues("dropped").Add(float64(len(dets) - len(out)))
	}
	run.batches++
	run.lastUsed = time.Now()
	return nil
}
