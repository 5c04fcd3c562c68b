// Package pipeline is the inference loop trackers hook into: a source feeds
// batches of frames to a detector, and registered callbacks run at fixed
// points of every prediction run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"trackd/internal/manager"
	"trackd/pkg/types"
)

// Event names a callback point of a prediction run.
type Event string

const (
	// EventPredictStart fires once per Predict call before the first batch.
	EventPredictStart Event = "on_predict_start"
	// EventPostprocessEnd fires after each batch has been detected.
	EventPostprocessEnd Event = "on_predict_postprocess_end"
)

// Context is handed to callbacks. Frames and Results are set for
// EventPostprocessEnd only; callbacks may rewrite Results in place.
type Context struct {
	BatchSize int
	Source    manager.SourceKind
	Batch     int
	Frames    []types.Frame
	Results   []types.FrameResult
}

// Callback runs synchronously at its event. An error aborts the run.
type Callback func(c *Context) error

// Sink receives the final results of each batch.
type Sink func(batch int, results []types.FrameResult) error

// Predictor drives a Source through a Detector.
type Predictor struct {
	detector  Detector
	callbacks map[Event][]Callback
	log       zerolog.Logger
}

// NewPredictor builds a predictor around d. A nil logger disables logging.
func NewPredictor(d Detector, log *zerolog.Logger) *Predictor {
	p := &Predictor{detector: d, callbacks: make(map[Event][]Callback), log: zerolog.Nop()}
	if log != nil {
		p.log = *log
	}
	return p
}

// AddCallback appends fn to the handlers of ev; handlers run in the order
// they were added.
func (p *Predictor) AddCallback(ev Event, fn Callback) {
	p.callbacks[ev] = append(p.callbacks[ev], fn)
}

func (p *Predictor) fire(ev Event, c *Context) error {
	for _, fn := range p.callbacks[ev] {
		if err := fn(c); err != nil {
			return fmt.Errorf("%s: %w", ev, err)
		}
	}
	return nil
}

// Predict runs every batch of src through the detector and the registered
// callbacks, then hands the results to sink. Batches are processed strictly
// one after another.
func (p *Predictor) Predict(ctx context.Context, src Source, sink Sink) error {
	start := &Context{BatchSize: src.BatchSize(), Source: src.Kind()}
	if err := p.fire(EventPredictStart, start); err != nil {
		return err
	}
	p.log.Debug().Int("batch_size", start.BatchSize).Str("source", start.Source.String()).Msg("predict start")
	for batch := 0; ; batch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frames, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			p.log.Debug().Int("batches", batch).Msg("predict done")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read batch %d: %w", batch, err)
		}
		results, err := p.detector.Detect(ctx, frames)
		if err != nil {
			return fmt.Errorf("detect batch %d: %w", batch, err)
		}
		c := &Context{BatchSize: start.BatchSize, Source: start.Source, Batch: batch, Frames: frames, Results: results}
		if err := p.fire(EventPostprocessEnd, c); err != nil {
			return err
		}
		if sink != nil {
			if err := sink(batch, c.Results); err != nil {
				return err
			}
		}
	}
}
