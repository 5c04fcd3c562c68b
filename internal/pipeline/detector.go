package pipeline

import (
	"context"

	"trackd/pkg/types"
)

// Detector turns a batch of frames into per-slot detections.
type Detector interface {
	Detect(ctx context.Context, frames []types.Frame) ([]types.FrameResult, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context, frames []types.Frame) ([]types.FrameResult, error)

func (f DetectorFunc) Detect(ctx context.Context, frames []types.Frame) ([]types.FrameResult, error) {
	return f(ctx, frames)
}

// ReplayDetector returns the detections recorded on each frame, as produced
// earlier by a real detector. Detection indexes are renumbered per frame.
type ReplayDetector struct{}

func (ReplayDetector) Detect(_ context.Context, frames []types.Frame) ([]types.FrameResult, error) {
	out := make([]types.FrameResult, len(frames))
	for i, f := range frames {
		dets := make([]types.Detection, len(f.Detections))
		copy(dets, f.Detections)
		for j := range dets {
			dets[j].Index = j
			dets[j].TrackID = 0
		}
		out[i] = types.FrameResult{Slot: i, Detections: dets}
	}
	return out, nil
}
