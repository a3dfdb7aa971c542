package middleware

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/okailora/okailora/backend"
	"github.com/okailora/okailora/pkg/sdk"
)

var _ backend.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     backend.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc backend.Service) backend.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) ListDeployments(ctx context.Context) ([]backend.Deployment, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list-deployments").Add(1)
		mm.latency.With("method", "list-deployments").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListDeployments(ctx)
}

func (mm *metricsMiddleware) SaveData(ctx context.Context, kind backend.Kind, deploymentID string, data []byte) error {
	method := "upload-" + string(kind) + "-data"
	defer func(begin time.Time) {
		mm.counter.With("method", method).Add(1)
		mm.latency.With("method", method).Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.SaveData(ctx, kind, deploymentID, data)
}

func (mm *metricsMiddleware) StartTraining(ctx context.Context, deploymentID string, modelType sdk.ModelType) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "start-training").Add(1)
		mm.latency.With("method", "start-training").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.StartTraining(ctx, deploymentID, modelType)
}

func (mm *metricsMiddleware) TrainStatus(ctx context.Context, deploymentID string) (backend.TrainStatus, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "train-status").Add(1)
		mm.latency.With("method", "train-status").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.TrainStatus(ctx, deploymentID)
}

func (mm *metricsMiddleware) StartInference(ctx context.Context, deploymentID string, params map[string]any) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "start-inference").Add(1)
		mm.latency.With("method", "start-inference").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.StartInference(ctx, deploymentID, params)
}

func (mm *metricsMiddleware) InferenceStatus(ctx context.Context, deploymentID string) (backend.InferenceStatus, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "inference-status").Add(1)
		mm.latency.With("method", "inference-status").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.InferenceStatus(ctx, deploymentID)
}

func (mm *metricsMiddleware) Weights(ctx context.Context, deploymentID string) (map[string]any, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "inference-weights").Add(1)
		mm.latency.With("method", "inference-weights").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Weights(ctx, deploymentID)
}
