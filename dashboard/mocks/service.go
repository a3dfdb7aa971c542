package mocks

import (
	"context"

	"github.com/okailora/okailora/catalog"
	"github.com/okailora/okailora/dashboard"
	"github.com/okailora/okailora/monitor"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/staging"
	"github.com/okailora/okailora/wizard"
	"github.com/stretchr/testify/mock"
)

var _ dashboard.Service = (*Service)(nil)

// Service is a mock implementation of the dashboard.Service interface
type Service struct {
	mock.Mock
}

func (m *Service) CreateSession(ctx context.Context, workflow wizard.Workflow) (dashboard.Session, error) {
	args := m.Called(ctx, workflow)
	return args.Get(0).(dashboard.Session), args.Error(1)
}

func (m *Service) GetSession(ctx context.Context, id string) (dashboard.Session, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(dashboard.Session), args.Error(1)
}

func (m *Service) ListSessions(ctx context.Context, offset, limit uint64) (dashboard.SessionPage, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).(dashboard.SessionPage), args.Error(1)
}

func (m *Service) ListModels(ctx context.Context, f catalog.Filter) ([]catalog.Model, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]catalog.Model), args.Error(1)
}

func (m *Service) SelectModel(ctx context.Context, sessionID, modelID string) (dashboard.Session, error) {
	args := m.Called(ctx, sessionID, modelID)
	return args.Get(0).(dashboard.Session), args.Error(1)
}

func (m *Service) Configure(ctx context.Context, sessionID string, hp dashboard.Hyperparameters) (dashboard.Session, error) {
	args := m.Called(ctx, sessionID, hp)
	return args.Get(0).(dashboard.Session), args.Error(1)
}

// StageFiles records the inputs as a single slice argument.
func (m *Service) StageFiles(ctx context.Context, sessionID string, inputs ...staging.Input) ([]staging.UploadedFile, error) {
	args := m.Called(ctx, sessionID, inputs)
	return args.Get(0).([]staging.UploadedFile), args.Error(1)
}

func (m *Service) RemoveFile(ctx context.Context, sessionID, fileID string) error {
	args := m.Called(ctx, sessionID, fileID)
	return args.Error(0)
}

func (m *Service) UploadFiles(ctx context.Context, sessionID string) (staging.CommitResult, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(staging.CommitResult), args.Error(1)
}

func (m *Service) Advance(ctx context.Context, sessionID string) (dashboard.Session, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(dashboard.Session), args.Error(1)
}

func (m *Service) Retreat(ctx context.Context, sessionID string) (dashboard.Session, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(dashboard.Session), args.Error(1)
}

func (m *Service) StartJob(ctx context.Context, sessionID string) (dashboard.Session, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(dashboard.Session), args.Error(1)
}

// WatchJob calls onTick with the returned snapshot once before returning.
func (m *Service) WatchJob(ctx context.Context, sessionID string, onTick func(monitor.Snapshot)) (monitor.Snapshot, error) {
	args := m.Called(ctx, sessionID)
	snap := args.Get(0).(monitor.Snapshot)
	if onTick != nil {
		onTick(snap)
	}
	return snap, args.Error(1)
}

func (m *Service) Results(ctx context.Context, sessionID string) ([]sdk.InferenceResult, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]sdk.InferenceResult), args.Error(1)
}

func (m *Service) Weights(ctx context.Context, sessionID string) (map[string]any, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(map[string]any), args.Error(1)
}
