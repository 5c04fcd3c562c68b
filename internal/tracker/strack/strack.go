// Package strack is the single-track state shared by the bundled trackers.
package strack

import (
	"math"
	"sync/atomic"

	"trackd/internal/tracker/kalman"
	"trackd/pkg/types"
)

type State int

const (
	New State = iota
	Tracked
	Lost
	Removed
)

// featAlpha is the exponential smoothing factor for appearance features.
const featAlpha = 0.9

var lastID atomic.Int64

// NextID returns a process-wide unique track identity, starting at 1.
func NextID() int { return int(lastID.Add(1)) }

// STrack is one tracked object.
type STrack struct {
	filter *kalman.Filter
	kf     kalman.State
	hasKF  bool

	box      types.Box
	Score    float64
	Class    int
	DetIndex int
	Feature  []float64

	ID           int
	State        State
	Activated    bool
	FrameID      int
	StartFrameID int
	TrackletLen  int
}

// FromDetection wraps a detection as an unactivated track candidate.
func FromDetection(f *kalman.Filter, d types.Detection, detIndex int) *STrack {
	s := &STrack{filter: f, box: d.Box, Score: d.Score, Class: d.Class, DetIndex: detIndex}
	if len(d.Feature) > 0 {
		s.Feature = normalize(d.Feature)
	}
	return s
}

// Box returns the filtered box once the track is initiated, else the raw box.
func (s *STrack) Box() types.Box {
	if !s.hasKF {
		return s.box
	}
	z := s.filter.Measurement(s.kf)
	if s.filter.Space() == kalman.SpaceXYWH {
		return types.BoxFromXYWH(z)
	}
	return types.BoxFromXYAH(z)
}

func (s *STrack) measure(b types.Box) [4]float64 {
	if s.filter.Space() == kalman.SpaceXYWH {
		return b.XYWH()
	}
	return b.XYAH()
}

// Activate starts a new tracklet with the given identity.
func (s *STrack) Activate(frameID, id int) {
	s.kf = s.filter.Initiate(s.measure(s.box))
	s.hasKF = true
	s.ID = id
	s.State = Tracked
	s.TrackletLen = 0
	if frameID == 1 {
		s.Activated = true
	}
	s.FrameID = frameID
	s.StartFrameID = frameID
}

// Predict advances the motion model by one frame.
func (s *STrack) Predict() {
	if !s.hasKF {
		return
	}
	if s.State != Tracked {
		s.filter.ZeroSizeVelocity(&s.kf)
	}
	s.filter.Predict(&s.kf)
}

// Update corrects the track with a matched detection.
func (s *STrack) Update(det *STrack, frameID int) error {
	if err := s.filter.Update(&s.kf, s.measure(det.box)); err != nil {
		return err
	}
	s.absorb(det, frameID)
	s.TrackletLen++
	return nil
}

// ReActivate revives a lost track with a matched detection, keeping its ID.
func (s *STrack) ReActivate(det *STrack, frameID int) error {
	if err := s.filter.Update(&s.kf, s.measure(det.box)); err != nil {
		return err
	}
	s.absorb(det, frameID)
	s.TrackletLen = 0
	return nil
}

func (s *STrack) absorb(det *STrack, frameID int) {
	s.State = Tracked
	s.Activated = true
	s.FrameID = frameID
	s.Score = det.Score
	s.Class = det.Class
	s.DetIndex = det.DetIndex
	if len(det.Feature) > 0 {
		s.smoothFeature(det.Feature)
	}
}

func (s *STrack) smoothFeature(f []float64) {
	if len(s.Feature) != len(f) {
		s.Feature = append([]float64(nil), f...)
		return
	}
	mixed := make([]float64, len(f))
	for i := range f {
		mixed[i] = featAlpha*s.Feature[i] + (1-featAlpha)*f[i]
	}
	s.Feature = normalize(mixed)
}

func (s *STrack) MarkLost()    { s.State = Lost }
func (s *STrack) MarkRemoved() { s.State = Removed }

// Output renders the track for the caller.
func (s *STrack) Output() types.Track {
	return types.Track{Box: s.Box(), ID: s.ID, Score: s.Score, Class: s.Class, DetIndex: s.DetIndex}
}

func normalize(v []float64) []float64 {
	var n float64
	for _, x := range v {
		n += x * x
	}
	out := append([]float64(nil), v...)
	if n == 0 {
		return out
	}
	n = math.Sqrt(n)
	for i := range out {
		out[i] /= n
	}
	return out
}

// Boxes collects the current boxes of a track list.
func Boxes(ts []*STrack) []types.Box {
	out := make([]types.Box, len(ts))
	for i, t := range ts {
		out[i] = t.Box()
	}
	return out
}

// Scores collects the scores of a track list.
func Scores(ts []*STrack) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = t.Score
	}
	return out
}

// Features collects the features of a track list.
func Features(ts []*STrack) [][]float64 {
	out := make([][]float64, len(ts))
	for i, t := range ts {
		out[i] = t.Feature
	}
	return out
}

// Joint concatenates a and b, skipping IDs already present in a.
func Joint(a, b []*STrack) []*STrack {
	seen := make(map[int]bool, len(a)+len(b))
	out := make([]*STrack, 0, len(a)+len(b))
	for _, t := range a {
		seen[t.ID] = true
		out = append(out, t)
	}
	for _, t := range b {
		if !seen[t.ID] {
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	return out
}

// Sub returns the tracks of a whose IDs are not in b, preserving order.
func Sub(a, b []*STrack) []*STrack {
	drop := make(map[int]bool, len(b))
	for _, t := range b {
		drop[t.ID] = true
	}
	out := make([]*STrack, 0, len(a))
	for _, t := range a {
		if !drop[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// RemoveDuplicates drops the younger of any tracked/lost pair that overlap
// with IoU above 0.85.
func RemoveDuplicates(a, b []*STrack) ([]*STrack, []*STrack) {
	dupA := make([]bool, len(a))
	dupB := make([]bool, len(b))
	for i, ta := range a {
		for j, tb := range b {
			if 1-ta.Box().IoU(tb.Box()) >= 0.15 {
				continue
			}
			if ta.FrameID-ta.StartFrameID > tb.FrameID-tb.StartFrameID {
				dupB[j] = true
			} else {
				dupA[i] = true
			}
		}
	}
	var outA, outB []*STrack
	for i, t := range a {
		if !dupA[i] {
			outA = append(outA, t)
		}
	}
	for j, t := range b {
		if !dupB[j] {
			outB = append(outB, t)
		}
	}
	return outA, outB
}
