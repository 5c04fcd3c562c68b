package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"trackd/internal/httpapi"
	"trackd/internal/manager"
)

func newServeCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tracking HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			if fs.Changed("addr") {
				s.cfg.Addr, _ = fs.GetString("addr")
			}
			if fs.Changed("max-idle-seconds") {
				s.cfg.MaxIdleSeconds, _ = fs.GetInt("max-idle-seconds")
			}
			if fs.Changed("max-body-bytes") {
				s.cfg.MaxBodyBytes, _ = fs.GetInt64("max-body-bytes")
			}
			if fs.Changed("max-frames") {
				s.cfg.MaxFrames, _ = fs.GetInt("max-frames")
			}
			if fs.Changed("cors-origins") {
				v, _ := fs.GetString("cors-origins")
				s.cfg.CORSOrigins = splitCSV(v)
				s.cfg.CORSEnabled = len(s.cfg.CORSOrigins) > 0
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, s)
		},
	}
	cmd.Flags().String("addr", "", "HTTP listen address, e.g. :8080 (defaults TRACKD_ADDR)")
	cmd.Flags().Int("max-idle-seconds", 0, "Close runs idle for longer than this (0 disables; defaults TRACKD_MAX_IDLE_SECONDS or 600)")
	cmd.Flags().Int64("max-body-bytes", 0, "Maximum request body size (defaults TRACKD_MAX_BODY_BYTES or 4MiB)")
	cmd.Flags().Int("max-frames", 0, "Maximum slots in one /frames batch (defaults TRACKD_MAX_FRAMES or 256)")
	cmd.Flags().String("cors-origins", "", "Comma-separated allowed CORS origins; enables CORS (defaults TRACKD_CORS_ORIGINS)")
	return cmd
}

func serve(ctx context.Context, s *settings) error {
	mgr := s.newManager()
	if !mgr.Ready() {
		s.log.Warn().Str("default_tracker", s.cfg.DefaultTracker).Msg("default tracker profile not found; runs must name a profile")
	}

	httpapi.SetLogger(s.log)
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(s.cfg.MaxBodyBytes)
	httpapi.SetMaxFrames(s.cfg.MaxFrames)
	httpapi.SetCORSOptions(s.cfg.CORSEnabled, s.cfg.CORSOrigins,
		[]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		[]string{"Content-Type", "X-Log-Level"})

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           httpapi.NewMux(httpapi.NewService(mgr)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.MaxIdleSeconds > 0 {
		go evictLoop(ctx, mgr, time.Duration(s.cfg.MaxIdleSeconds)*time.Second)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Str("profiles_dir", s.cfg.ProfilesDir).Msg("trackd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	// Graceful shutdown (Ctrl+C / SIGTERM)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error().Err(err).Msg("graceful shutdown error")
	}
	for _, r := range mgr.ListRuns() {
		_ = mgr.CloseRun(r.ID)
	}
	if err, ok := <-errCh; ok && err != nil {
		return err
	}
	return nil
}

func evictLoop(ctx context.Context, mgr *manager.Manager, maxIdle time.Duration) {
	interval := maxIdle / 4
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			mgr.EvictIdle(maxIdle)
		}
	}
}

