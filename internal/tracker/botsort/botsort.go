// Package botsort implements BoT-SORT on top of the ByteTrack association
// flow: an XYWH motion model and appearance-gated matching when detections
// carry re-identification features.
package botsort

import (
	"trackd/internal/config"
	"trackd/internal/tracker/bytetrack"
	"trackd/internal/tracker/kalman"
	"trackd/internal/tracker/matching"
	"trackd/internal/tracker/strack"
)

// New builds a BoT-SORT tracker.
func New(cfg config.TrackerConfig, frameRate int) *bytetrack.Tracker {
	return bytetrack.NewWithOptions(cfg, frameRate, bytetrack.Options{
		Space:    kalman.SpaceXYWH,
		Distance: Distance,
	})
}

// Distance fuses IoU with score and, when enabled, takes the smaller of the
// IoU cost and a gated appearance cost.
func Distance(cfg config.TrackerConfig, tracks, dets []*strack.STrack) [][]float64 {
	iou := matching.IoUDistance(strack.Boxes(tracks), strack.Boxes(dets))
	cost := iou
	if cfg.FuseScore {
		cost = matching.FuseScore(iou, strack.Scores(dets))
	}
	if !cfg.WithReID || !hasFeatures(tracks) || !hasFeatures(dets) {
		return cost
	}
	emb := matching.EmbeddingDistance(strack.Features(tracks), strack.Features(dets))
	for i := range emb {
		for j := range emb[i] {
			e := emb[i][j] / 2
			if e > cfg.AppearanceThresh || iou[i][j] > cfg.ProximityThresh {
				e = 1
			}
			if e < cost[i][j] {
				cost[i][j] = e
			}
		}
	}
	return cost
}

func hasFeatures(ts []*strack.STrack) bool {
	for _, t := range ts {
		if len(t.Feature) > 0 {
			return true
		}
	}
	return false
}
