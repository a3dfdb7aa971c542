package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/okailora/okailora/backend"
	"github.com/okailora/okailora/pkg/sdk"
)

var _ backend.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    backend.Service
}

func Logging(logger *slog.Logger, svc backend.Service) backend.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) log(op string, begin time.Time, err error, args ...any) {
	args = append([]any{slog.String("duration", time.Since(begin).String())}, args...)
	if err != nil {
		args = append(args, slog.Any("error", err))
		lm.logger.Warn(op+" failed", args...)

		return
	}
	lm.logger.Info(op+" completed successfully", args...)
}

func (lm *loggingMiddleware) ListDeployments(ctx context.Context) (ds []backend.Deployment, err error) {
	defer func(begin time.Time) {
		lm.log("List deployments", begin, err, slog.Int("count", len(ds)))
	}(time.Now())

	return lm.svc.ListDeployments(ctx)
}

func (lm *loggingMiddleware) SaveData(ctx context.Context, kind backend.Kind, deploymentID string, data []byte) (err error) {
	defer func(begin time.Time) {
		lm.log("Save data", begin, err, slog.Group("upload",
			slog.String("kind", string(kind)),
			slog.String("deployment_id", deploymentID),
			slog.Int("size", len(data)),
		))
	}(time.Now())

	return lm.svc.SaveData(ctx, kind, deploymentID, data)
}

func (lm *loggingMiddleware) StartTraining(ctx context.Context, deploymentID string, modelType sdk.ModelType) (err error) {
	defer func(begin time.Time) {
		lm.log("Start training", begin, err, slog.Group("deployment",
			slog.String("id", deploymentID),
			slog.String("model_type", modelType.String()),
		))
	}(time.Now())

	return lm.svc.StartTraining(ctx, deploymentID, modelType)
}

func (lm *loggingMiddleware) TrainStatus(ctx context.Context, deploymentID string) (st backend.TrainStatus, err error) {
	defer func(begin time.Time) {
		lm.log("Train status", begin, err,
			slog.String("deployment_id", deploymentID),
			slog.Bool("finished", st.Finished),
			slog.Int("points", len(st.TrainLoss)),
		)
	}(time.Now())

	return lm.svc.TrainStatus(ctx, deploymentID)
}

func (lm *loggingMiddleware) StartInference(ctx context.Context, deploymentID string, params map[string]any) (err error) {
	defer func(begin time.Time) {
		lm.log("Start inference", begin, err, slog.String("deployment_id", deploymentID))
	}(time.Now())

	return lm.svc.StartInference(ctx, deploymentID, params)
}

func (lm *loggingMiddleware) InferenceStatus(ctx context.Context, deploymentID string) (st backend.InferenceStatus, err error) {
	defer func(begin time.Time) {
		lm.log("Inference status", begin, err,
			slog.String("deployment_id", deploymentID),
			slog.Bool("finished", st.Finished),
		)
	}(time.Now())

	return lm.svc.InferenceStatus(ctx, deploymentID)
}

func (lm *loggingMiddleware) Weights(ctx context.Context, deploymentID string) (w map[string]any, err error) {
	defer func(begin time.Time) {
		lm.log("Get weights", begin, err, slog.String("deployment_id", deploymentID))
	}(time.Now())

	return lm.svc.Weights(ctx, deploymentID)
}
