package middleware

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/okailora/okailora/catalog"
	"github.com/okailora/okailora/dashboard"
	"github.com/okailora/okailora/monitor"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/staging"
	"github.com/okailora/okailora/wizard"
)

var _ dashboard.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     dashboard.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc dashboard.Service) dashboard.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) observe(method string, begin time.Time) {
	mm.counter.With("method", method).Add(1)
	mm.latency.With("method", method).Observe(time.Since(begin).Seconds())
}

func (mm *metricsMiddleware) CreateSession(ctx context.Context, workflow wizard.Workflow) (dashboard.Session, error) {
	defer mm.observe("create-session", time.Now())

	return mm.svc.CreateSession(ctx, workflow)
}

func (mm *metricsMiddleware) GetSession(ctx context.Context, id string) (dashboard.Session, error) {
	defer mm.observe("get-session", time.Now())

	return mm.svc.GetSession(ctx, id)
}

func (mm *metricsMiddleware) ListSessions(ctx context.Context, offset, limit uint64) (dashboard.SessionPage, error) {
	defer mm.observe("list-sessions", time.Now())

	return mm.svc.ListSessions(ctx, offset, limit)
}

func (mm *metricsMiddleware) ListModels(ctx context.Context, f catalog.Filter) ([]catalog.Model, error) {
	defer mm.observe("list-models", time.Now())

	return mm.svc.ListModels(ctx, f)
}

func (mm *metricsMiddleware) SelectModel(ctx context.Context, sessionID, modelID string) (dashboard.Session, error) {
	defer mm.observe("select-model", time.Now())

	return mm.svc.SelectModel(ctx, sessionID, modelID)
}

func (mm *metricsMiddleware) Configure(ctx context.Context, sessionID string, hp dashboard.Hyperparameters) (dashboard.Session, error) {
	defer mm.observe("configure", time.Now())

	return mm.svc.Configure(ctx, sessionID, hp)
}

func (mm *metricsMiddleware) StageFiles(ctx context.Context, sessionID string, inputs ...staging.Input) ([]staging.UploadedFile, error) {
	defer mm.observe("stage-files", time.Now())

	return mm.svc.StageFiles(ctx, sessionID, inputs...)
}

func (mm *metricsMiddleware) RemoveFile(ctx context.Context, sessionID, fileID string) error {
	defer mm.observe("remove-file", time.Now())

	return mm.svc.RemoveFile(ctx, sessionID, fileID)
}

func (mm *metricsMiddleware) UploadFiles(ctx context.Context, sessionID string) (staging.CommitResult, error) {
	defer mm.observe("upload-files", time.Now())

	return mm.svc.UploadFiles(ctx, sessionID)
}

func (mm *metricsMiddleware) Advance(ctx context.Context, sessionID string) (dashboard.Session, error) {
	defer mm.observe("advance", time.Now())

	return mm.svc.Advance(ctx, sessionID)
}

func (mm *metricsMiddleware) Retreat(ctx context.Context, sessionID string) (dashboard.Session, error) {
	defer mm.observe("retreat", time.Now())

	return mm.svc.Retreat(ctx, sessionID)
}

func (mm *metricsMiddleware) StartJob(ctx context.Context, sessionID string) (dashboard.Session, error) {
	defer mm.observe("start-job", time.Now())

	return mm.svc.StartJob(ctx, sessionID)
}

func (mm *metricsMiddleware) WatchJob(ctx context.Context, sessionID string, onTick func(monitor.Snapshot)) (monitor.Snapshot, error) {
	defer mm.observe("watch-job", time.Now())

	return mm.svc.WatchJob(ctx, sessionID, onTick)
}

func (mm *metricsMiddleware) Results(ctx context.Context, sessionID string) ([]sdk.InferenceResult, error) {
	defer mm.observe("results", time.Now())

	return mm.svc.Results(ctx, sessionID)
}

func (mm *metricsMiddleware) Weights(ctx context.Context, sessionID string) (map[string]any, error) {
	defer mm.observe("weights", time.Now())

	return mm.svc.Weights(ctx, sessionID)
}
