package middleware

import (
	"context"

	"github.com/okailora/okailora/backend"
	"github.com/okailora/okailora/pkg/sdk"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ backend.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    backend.Service
}

func Tracing(tracer trace.Tracer, svc backend.Service) backend.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) ListDeployments(ctx context.Context) ([]backend.Deployment, error) {
	ctx, span := tm.tracer.Start(ctx, "list-deployments")
	defer span.End()

	return tm.svc.ListDeployments(ctx)
}

func (tm *tracing) SaveData(ctx context.Context, kind backend.Kind, deploymentID string, data []byte) error {
	ctx, span := tm.tracer.Start(ctx, "save-data", trace.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("deployment_id", deploymentID),
		attribute.Int("size", len(data)),
	))
	defer span.End()

	return tm.svc.SaveData(ctx, kind, deploymentID, data)
}

func (tm *tracing) StartTraining(ctx context.Context, deploymentID string, modelType sdk.ModelType) error {
	ctx, span := tm.tracer.Start(ctx, "start-training", trace.WithAttributes(
		attribute.String("deployment_id", deploymentID),
		attribute.String("model_type", modelType.String()),
	))
	defer span.End()

	return tm.svc.StartTraining(ctx, deploymentID, modelType)
}

func (tm *tracing) TrainStatus(ctx context.Context, deploymentID string) (backend.TrainStatus, error) {
	ctx, span := tm.tracer.Start(ctx, "train-status", trace.WithAttributes(
		attribute.String("deployment_id", deploymentID),
	))
	defer span.End()

	return tm.svc.TrainStatus(ctx, deploymentID)
}

func (tm *tracing) StartInference(ctx context.Context, deploymentID string, params map[string]any) error {
	ctx, span := tm.tracer.Start(ctx, "start-inference", trace.WithAttributes(
		attribute.String("deployment_id", deploymentID),
	))
	defer span.End()

	return tm.svc.StartInference(ctx, deploymentID, params)
}

func (tm *tracing) InferenceStatus(ctx context.Context, deploymentID string) (backend.InferenceStatus, error) {
	ctx, span := tm.tracer.Start(ctx, "inference-status", trace.WithAttributes(
		attribute.String("deployment_id", deploymentID),
	))
	defer span.End()

	return tm.svc.InferenceStatus(ctx, deploymentID)
}

func (tm *tracing) Weights(ctx context.Context, deploymentID string) (map[string]any, error) {
	ctx, span := tm.tracer.Start(ctx, "inference-weights", trace.WithAttributes(
		attribute.String("deployment_id", deploymentID),
	))
	defer span.End()

	return tm.svc.Weights(ctx, deploymentID)
}
