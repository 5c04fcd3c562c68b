package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"trackd/internal/manager"
	"trackd/internal/pipeline"
	"trackd/pkg/types"
)

type trackFlags struct {
	input          string
	output         string
	tracker        string
	source         string
	batchSize      int
	persist        bool
	multipleVideos bool
	isolateSlots   bool
}

func newTrackCmd(s *settings) *cobra.Command {
	var f trackFlags
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Track recorded detections from a JSON-lines file",
		Long: "Reads one batch per line ({\"frames\":[{\"detections\":[...],\"image\":\"path\"}]}),\n" +
			"runs it through the tracker and writes one result line per batch.",
		Example: "  trackd track --input dets.jsonl --batch-size 2 --source video --tracker botsort",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if f.output != "" && f.output != "-" {
				file, err := os.Create(f.output)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}
			return runTrack(cmd, s, f, out)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "JSON-lines file of recorded batches (required)")
	fl.StringVarP(&f.output, "output", "o", "-", "Where to write results; - for stdout")
	fl.StringVarP(&f.tracker, "tracker", "t", "", "Tracker profile name or path (defaults to the default tracker)")
	fl.StringVar(&f.source, "source", "video", "Source kind: images|video")
	fl.IntVarP(&f.batchSize, "batch-size", "b", 1, "Slots per batch")
	fl.BoolVar(&f.persist, "persist", false, "Keep trackers if already initialized")
	fl.BoolVar(&f.multipleVideos, "multiple-videos", false, "Slots are unrelated videos")
	fl.BoolVar(&f.isolateSlots, "isolate-slots", false, "Never share one tracker across an image batch")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runTrack(cmd *cobra.Command, s *settings, f trackFlags, out io.Writer) error {
	mgr := s.newManager()
	cfg, err := mgr.ResolveProfile(f.tracker)
	if err != nil {
		return err
	}
	kind, err := manager.ParseSourceKind(f.source)
	if err != nil {
		return err
	}
	src, err := pipeline.OpenFileSource(f.input, f.batchSize, kind)
	if err != nil {
		return err
	}
	defer src.Close()

	p := pipeline.NewPredictor(pipeline.ReplayDetector{}, &s.log)
	run := pipeline.RegisterTracker(p, mgr, cfg, pipeline.TrackerOptions{
		Persist:        f.persist,
		MultipleVideos: f.multipleVideos,
		IsolateSlots:   f.isolateSlots,
		FrameRate:      s.cfg.FrameRate,
	})
	defer run.Close()

	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	err = p.Predict(cmd.Context(), src, func(batch int, results []types.FrameResult) error {
		if err := enc.Encode(types.TrackResponse{RunID: run.ID, Results: results}); err != nil {
			return fmt.Errorf("write batch %d: %w", batch, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	st := run.Status()
	s.log.Info().Str("run", run.ID).Str("tracker", st.TrackerType).Str("mode", st.Mode).Uint64("batches", st.Batches).Msg("track done")
	return w.Flush()
}
