package pipeline

import (
	"trackd/internal/config"
	"trackd/internal/manager"
)

// TrackerOptions controls how RegisterTracker initializes trackers.
type TrackerOptions struct {
	// Persist keeps an existing tracker set across Predict calls.
	Persist bool
	// MultipleVideos declares that slots are unrelated streams.
	MultipleVideos bool
	// IsolateSlots forbids sharing one tracker across an image batch.
	IsolateSlots bool
	// FrameRate seeds the trackers; 0 uses the manager default.
	FrameRate int
}

// RegisterTracker hooks tracking into p and returns the run that owns the
// trackers. The tracker set is (re)built at the start of each Predict call
// unless Persist is set and one exists, and every postprocessed batch is
// reconciled against it. The caller closes the run when done.
func RegisterTracker(p *Predictor, mgr *manager.Manager, cfg config.TrackerConfig, opts TrackerOptions) *manager.Run {
	run := manager.NewRun(cfg.TrackerType, opts.FrameRate)
	p.AddCallback(EventPredictStart, func(c *Context) error {
		return mgr.EnsureTrackers(run, cfg, opts.Persist, manager.Topology{
			BatchSize:      c.BatchSize,
			Source:         c.Source,
			AllowShared:    !opts.IsolateSlots,
			MultipleVideos: opts.MultipleVideos,
		})
	})
	p.AddCallback(EventPostprocessEnd, func(c *Context) error {
		return mgr.Reconcile(run, c.Frames, c.Results)
	})
	return run
}
