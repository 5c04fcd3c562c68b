package httpapi

import (
	"context"
	"fmt"

	"trackd/internal/manager"
	"trackd/internal/pipeline"
	"trackd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListProfiles() []types.Profile
	CreateRun(req types.CreateRunRequest) (types.RunStatus, error)
	GetRun(id string) (types.RunStatus, error)
	ReinitRun(id string, req types.ReinitRequest) (types.RunStatus, error)
	CloseRun(id string) error
	Track(ctx context.Context, id string, req types.TrackRequest) (types.TrackResponse, error)
	Status() types.StatusResponse
	Ready() bool
}

// managerService serves the API from a tracker manager.
type managerService struct {
	m *manager.Manager
}

// NewService adapts m to the HTTP Service.
func NewService(m *manager.Manager) Service { return managerService{m: m} }

func (s managerService) ListProfiles() []types.Profile { return s.m.ListProfiles() }
func (s managerService) Status() types.StatusResponse  { return s.m.Status() }
func (s managerService) Ready() bool                   { return s.m.Ready() }
func (s managerService) CloseRun(id string) error      { return s.m.CloseRun(id) }

func (s managerService) CreateRun(req types.CreateRunRequest) (types.RunStatus, error) {
	run, err := s.m.CreateRun(req)
	if err != nil {
		return types.RunStatus{}, err
	}
	return run.Status(), nil
}

func (s managerService) GetRun(id string) (types.RunStatus, error) {
	run, err := s.m.GetRun(id)
	if err != nil {
		return types.RunStatus{}, err
	}
	return run.Status(), nil
}

func (s managerService) ReinitRun(id string, req types.ReinitRequest) (types.RunStatus, error) {
	run, err := s.m.ReinitRun(id, req)
	if err != nil {
		return types.RunStatus{}, err
	}
	return run.Status(), nil
}

// Track reconciles one batch of pre-detected frames. Images are never read
// from request paths; trackers see nil images over HTTP.
func (s managerService) Track(ctx context.Context, id string, req types.TrackRequest) (types.TrackResponse, error) {
	run, err := s.m.GetRun(id)
	if err != nil {
		return types.TrackResponse{}, err
	}
	frames := make([]types.Frame, len(req.Frames))
	for i, f := range req.Frames {
		frames[i] = types.Frame{Slot: i, Detections: f.Detections}
	}
	results, err := pipeline.ReplayDetector{}.Detect(ctx, frames)
	if err != nil {
		return types.TrackResponse{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.TrackResponse{}, fmt.Errorf("track canceled: %w", err)
	}
	if err := s.m.Reconcile(run, frames, results); err != nil {
		return types.TrackResponse{}, err
	}
	return types.TrackResponse{RunID: run.ID, Results: results}, nil
}
