package middleware

import (
	"context"

	"github.com/okailora/okailora/catalog"
	"github.com/okailora/okailora/dashboard"
	"github.com/okailora/okailora/monitor"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/staging"
	"github.com/okailora/okailora/wizard"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ dashboard.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    dashboard.Service
}

func Tracing(tracer trace.Tracer, svc dashboard.Service) dashboard.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) CreateSession(ctx context.Context, workflow wizard.Workflow) (dashboard.Session, error) {
	ctx, span := tm.tracer.Start(ctx, "create-session", trace.WithAttributes(
		attribute.String("workflow", workflow.String()),
	))
	defer span.End()

	return tm.svc.CreateSession(ctx, workflow)
}

func (tm *tracing) GetSession(ctx context.Context, id string) (dashboard.Session, error) {
	ctx, span := tm.tracer.Start(ctx, "get-session", trace.WithAttributes(
		attribute.String("id", id),
	))
	defer span.End()

	return tm.svc.GetSession(ctx, id)
}

func (tm *tracing) ListSessions(ctx context.Context, offset, limit uint64) (dashboard.SessionPage, error) {
	ctx, span := tm.tracer.Start(ctx, "list-sessions", trace.WithAttributes(
		attribute.Int64("offset", int64(offset)),
		attribute.Int64("limit", int64(limit)),
	))
	defer span.End()

	return tm.svc.ListSessions(ctx, offset, limit)
}

func (tm *tracing) ListModels(ctx context.Context, f catalog.Filter) ([]catalog.Model, error) {
	ctx, span := tm.tracer.Start(ctx, "list-models", trace.WithAttributes(
		attribute.String("search", f.Search),
		attribute.StringSlice("tags", f.Tags),
		attribute.String("license", f.License),
	))
	defer span.End()

	return tm.svc.ListModels(ctx, f)
}

func (tm *tracing) SelectModel(ctx context.Context, sessionID, modelID string) (dashboard.Session, error) {
	ctx, span := tm.tracer.Start(ctx, "select-model", trace.WithAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("model_id", modelID),
	))
	defer span.End()

	return tm.svc.SelectModel(ctx, sessionID, modelID)
}

func (tm *tracing) Configure(ctx context.Context, sessionID string, hp dashboard.Hyperparameters) (dashboard.Session, error) {
	ctx, span := tm.tracer.Start(ctx, "configure", trace.WithAttributes(
		attribute.String("session_id", sessionID),
		attribute.Float64("learning_rate", hp.LearningRate),
		attribute.Int("batch_size", hp.BatchSize),
		attribute.Int("epochs", hp.Epochs),
	))
	defer span.End()

	return tm.svc.Configure(ctx, sessionID, hp)
}

func (tm *tracing) StageFiles(ctx context.Context, sessionID string, inputs ...staging.Input) ([]staging.UploadedFile, error) {
	ctx, span := tm.tracer.Start(ctx, "stage-files", trace.WithAttributes(
		attribute.String("session_id", sessionID),
		attribute.Int("files", len(inputs)),
	))
	defer span.End()

	return tm.svc.StageFiles(ctx, sessionID, inputs...)
}

func (tm *tracing) RemoveFile(ctx context.Context, sessionID, fileID string) error {
	ctx, span := tm.tracer.Start(ctx, "remove-file", trace.WithAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("file_id", fileID),
	))
	defer span.End()

	return tm.svc.RemoveFile(ctx, sessionID, fileID)
}

func (tm *tracing) UploadFiles(ctx context.Context, sessionID string) (staging.CommitResult, error) {
	ctx, span := tm.tracer.Start(ctx, "upload-files", trace.WithAttributes(
		attribute.String("session_id", sessionID),
	))
	defer span.End()

	return tm.svc.UploadFiles(ctx, sessionID)
}

func (tm *tracing) Advance(ctx context.Context, sessionID string) (dashboard.Session, error) {
	ctx, span := tm.tracer.Start(ctx, "advance", trace.WithAttributes(
		attribute.String("session_id", sessionID),
	))
	defer span.End()

	return tm.svc.Advance(ctx, sessionID)
}

func (tm *tracing) Retreat(ctx context.Context, sessionID string) (dashboard.Session, error) {
	ctx, span := tm.tracer.Start(ctx, "retreat", trace.WithAttributes(
		attribute.String("session_id", sessionID),
	))
	defer span.End()

	return tm.svc.Retreat(ctx, sessionID)
}

func (tm *tracing) StartJob(ctx context.Context, sessionID string) (dashboard.Session, error) {
	ctx, span := tm.tracer.Start(ctx, "start-job", trace.WithAttributes(
		attribute.String("session_id", sessionID),
	))
	defer span.End()

	return tm.svc.StartJob(ctx, sessionID)
}

func (tm *tracing) WatchJob(ctx context.Context, sessionID string, onTick func(monitor.Snapshot)) (monitor.Snapshot, error) {
	ctx, span := tm.tracer.Start(ctx, "watch-job", trace.WithAttributes(
		attribute.String("session_id", sessionID),
	))
	defer span.End()

	return tm.svc.WatchJob(ctx, sessionID, onTick)
}

func (tm *tracing) Results(ctx context.Context, sessionID string) ([]sdk.InferenceResult, error) {
	ctx, span := tm.tracer.Start(ctx, "results", trace.WithAttributes(
		attribute.String("session_id", sessionID),
	))
	defer span.End()

	return tm.svc.Results(ctx, sessionID)
}

func (tm *tracing) Weights(ctx context.Context, sessionID string) (map[string]any, error) {
	ctx, span := tm.tracer.Start(ctx, "weights", trace.WithAttributes(
		attribute.String("session_id", sessionID),
	))
	defer span.End()

	return tm.svc.Weights(ctx, sessionID)
}
