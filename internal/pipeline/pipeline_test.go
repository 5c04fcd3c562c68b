package pipeline

import (
	"context"
	"errors"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"trackd/internal/config"
	"trackd/internal/manager"
	"trackd/pkg/types"
)

func det(x float64) types.Detection {
	return types.Detection{Box: types.Box{x, 0, x + 20, 40}, Score: 0.9}
}

// movingBatches returns n batches of size slots; slot i holds one object at
// 300*i moving right by one pixel per batch.
func movingBatches(n, slots int) [][]types.Frame {
	out := make([][]types.Frame, n)
	for b := range out {
		frames := make([]types.Frame, slots)
		for s := range frames {
			frames[s] = types.Frame{Slot: s, Detections: []types.Detection{det(float64(300*s + b))}}
		}
		out[b] = frames
	}
	return out
}

func collect(all *[][]types.FrameResult) Sink {
	return func(_ int, results []types.FrameResult) error {
		*all = append(*all, results)
		return nil
	}
}

func TestPredict_CallbackOrder(t *testing.T) {
	p := NewPredictor(ReplayDetector{}, nil)
	var got []string
	p.AddCallback(EventPredictStart, func(c *Context) error { got = append(got, "start1"); return nil })
	p.AddCallback(EventPostprocessEnd, func(c *Context) error {
		got = append(got, "post")
		if len(c.Results) != len(c.Frames) {
			t.Fatalf("results and frames differ")
		}
		return nil
	})
	p.AddCallback(EventPredictStart, func(c *Context) error {
		got = append(got, "start2")
		if c.BatchSize != 2 || c.Source != manager.SourceVideo {
			t.Fatalf("unexpected start context %+v", c)
		}
		return nil
	})
	src := &MemorySource{Batches: movingBatches(2, 2), Source: manager.SourceVideo}
	if err := p.Predict(context.Background(), src, nil); err != nil {
		t.Fatalf("predict: %v", err)
	}
	want := "start1,start2,post,post"
	if strings.Join(got, ",") != want {
		t.Fatalf("expected %s got %s", want, strings.Join(got, ","))
	}
}

func TestPredict_ErrorsAbort(t *testing.T) {
	boom := errors.New("boom")
	p := NewPredictor(DetectorFunc(func(context.Context, []types.Frame) ([]types.FrameResult, error) {
		return nil, boom
	}), nil)
	src := &MemorySource{Batches: movingBatches(1, 1)}
	if err := p.Predict(context.Background(), src, nil); !errors.Is(err, boom) {
		t.Fatalf("expected detector error, got %v", err)
	}

	p = NewPredictor(ReplayDetector{}, nil)
	p.AddCallback(EventPredictStart, func(*Context) error { return boom })
	calls := 0
	p.AddCallback(EventPostprocessEnd, func(*Context) error { calls++; return nil })
	err := p.Predict(context.Background(), &MemorySource{Batches: movingBatches(1, 1)}, nil)
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), string(EventPredictStart)) {
		t.Fatalf("expected start callback error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("no batch may run after a failed start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewPredictor(ReplayDetector{}, nil).Predict(ctx, &MemorySource{Batches: movingBatches(1, 1)}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestReplayDetector_CopiesAndRenumbers(t *testing.T) {
	d := det(0)
	d.Index = 9
	d.TrackID = 4
	frames := []types.Frame{{Detections: []types.Detection{d, det(50)}}}
	out, err := ReplayDetector{}.Detect(context.Background(), frames)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if out[0].Detections[0].Index != 0 || out[0].Detections[1].Index != 1 || out[0].Detections[0].TrackID != 0 {
		t.Fatalf("unexpected detections %+v", out[0].Detections)
	}
	out[0].Detections[0].Box[0] = 99
	if frames[0].Detections[0].Box[0] == 99 {
		t.Fatalf("results alias frame detections")
	}
}

func TestRegisterTracker_PerSlotIdentities(t *testing.T) {
	mgr := manager.NewWithConfig(manager.ManagerConfig{})
	p := NewPredictor(ReplayDetector{}, nil)
	run := RegisterTracker(p, mgr, config.DefaultTrackerConfig("bytetrack"), TrackerOptions{})
	defer run.Close()

	var all [][]types.FrameResult
	src := &MemorySource{Batches: movingBatches(3, 2), Source: manager.SourceVideo}
	if err := p.Predict(context.Background(), src, collect(&all)); err != nil {
		t.Fatalf("predict: %v", err)
	}
	if mode, _ := run.Mode(); mode != manager.ModePerSlot || len(run.Trackers()) != 2 {
		t.Fatalf("expected two per-slot trackers")
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(all))
	}
	a, b := all[0][0].Detections[0].TrackID, all[0][1].Detections[0].TrackID
	if a == 0 || b == 0 || a == b {
		t.Fatalf("expected distinct identities, got %d and %d", a, b)
	}
	for i, res := range all {
		if res[0].Detections[0].TrackID != a || res[1].Detections[0].TrackID != b {
			t.Fatalf("batch %d: identities changed", i)
		}
	}
}

func TestRegisterTracker_SharedForImageBatches(t *testing.T) {
	mgr := manager.NewWithConfig(manager.ManagerConfig{})
	p := NewPredictor(ReplayDetector{}, nil)
	run := RegisterTracker(p, mgr, config.DefaultTrackerConfig("bytetrack"), TrackerOptions{})
	defer run.Close()
	src := &MemorySource{Batches: movingBatches(1, 3), Source: manager.SourceImages}
	if err := p.Predict(context.Background(), src, nil); err != nil {
		t.Fatalf("predict: %v", err)
	}
	if mode, _ := run.Mode(); mode != manager.ModeShared || len(run.Trackers()) != 1 {
		t.Fatalf("expected a single shared tracker")
	}

	p = NewPredictor(ReplayDetector{}, nil)
	run2 := RegisterTracker(p, mgr, config.DefaultTrackerConfig("bytetrack"), TrackerOptions{MultipleVideos: true})
	defer run2.Close()
	src = &MemorySource{Batches: movingBatches(1, 3), Source: manager.SourceImages}
	if err := p.Predict(context.Background(), src, nil); err != nil {
		t.Fatalf("predict: %v", err)
	}
	if len(run2.Trackers()) != 3 {
		t.Fatalf("expected 3 trackers for multiple videos, got %d", len(run2.Trackers()))
	}
}

func TestRegisterTracker_PersistAcrossPredictCalls(t *testing.T) {
	for _, persist := range []bool{true, false} {
		mgr := manager.NewWithConfig(manager.ManagerConfig{})
		p := NewPredictor(ReplayDetector{}, nil)
		run := RegisterTracker(p, mgr, config.DefaultTrackerConfig("bytetrack"), TrackerOptions{Persist: persist})

		var first, second [][]types.FrameResult
		if err := p.Predict(context.Background(), &MemorySource{Batches: movingBatches(2, 1), Source: manager.SourceVideo}, collect(&first)); err != nil {
			t.Fatalf("predict: %v", err)
		}
		if err := p.Predict(context.Background(), &MemorySource{Batches: movingBatches(2, 1), Source: manager.SourceVideo}, collect(&second)); err != nil {
			t.Fatalf("predict: %v", err)
		}
		before := first[1][0].Detections[0].TrackID
		after := second[0][0].Detections[0].TrackID
		if persist && before != after {
			t.Fatalf("persist: identity %d became %d", before, after)
		}
		if !persist && before == after {
			t.Fatalf("rebuild: identity %d reissued", before)
		}
		run.Close()
	}
}

func TestRegisterTracker_UnsupportedKindFailsBeforeFirstBatch(t *testing.T) {
	mgr := manager.NewWithConfig(manager.ManagerConfig{})
	p := NewPredictor(ReplayDetector{}, nil)
	run := RegisterTracker(p, mgr, config.DefaultTrackerConfig("ocsort"), TrackerOptions{})
	batches := 0
	err := p.Predict(context.Background(), &MemorySource{Batches: movingBatches(2, 1)}, func(int, []types.FrameResult) error {
		batches++
		return nil
	})
	if !manager.IsConfigError(err) {
		t.Fatalf("expected config error, got %v", err)
	}
	if batches != 0 || run.Initialized() {
		t.Fatalf("run must not proceed")
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	if err := imaging.Save(imaging.New(8, 6, color.White), filepath.Join(dir, "f0.png")); err != nil {
		t.Fatalf("save image: %v", err)
	}
	lines := strings.Join([]string{
		`{"frames":[{"image":"f0.png","detections":[{"box":[0,0,4,4],"score":0.9,"class":2}]}]}`,
		``,
		`{"frames":[{"detections":[]}]}`,
	}, "\n")
	p := filepath.Join(dir, "batches.jsonl")
	if err := os.WriteFile(p, []byte(lines), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src, err := OpenFileSource(p, 1, manager.SourceImages)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()
	ctx := context.Background()

	frames, err := src.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if len(frames) != 1 || frames[0].Image == nil {
		t.Fatalf("expected one frame with an image, got %+v", frames)
	}
	if b := frames[0].Image.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Fatalf("unexpected image bounds %v", b)
	}
	if d := frames[0].Detections[0]; d.Class != 2 || d.Box != (types.Box{0, 0, 4, 4}) {
		t.Fatalf("unexpected detection %+v", d)
	}
	frames, err = src.Next(ctx)
	if err != nil || len(frames) != 1 || frames[0].Image != nil {
		t.Fatalf("unexpected second batch %+v err=%v", frames, err)
	}
	if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := OpenFileSource(filepath.Join(dir, "x.jsonl"), 0, manager.SourceVideo); !errors.Is(err, manager.ErrInvalidTopology) {
		t.Fatalf("expected invalid topology, got %v", err)
	}
	p := filepath.Join(dir, "bad.jsonl")
	if err := os.WriteFile(p, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src, err := OpenFileSource(p, 1, manager.SourceVideo)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()
	if _, err := src.Next(context.Background()); err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("expected line error, got %v", err)
	}
	missing := filepath.Join(dir, "missing.jsonl")
	if err := os.WriteFile(missing, []byte(`{"frames":[{"image":"nope.png"}]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src2, err := OpenFileSource(missing, 1, manager.SourceVideo)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src2.Close()
	if _, err := src2.Next(context.Background()); err == nil {
		t.Fatalf("expected missing image error")
	}
}
