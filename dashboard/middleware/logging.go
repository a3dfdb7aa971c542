package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/okailora/okailora/catalog"
	"github.com/okailora/okailora/dashboard"
	"github.com/okailora/okailora/monitor"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/staging"
	"github.com/okailora/okailora/wizard"
)

var _ dashboard.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    dashboard.Service
}

func Logging(logger *slog.Logger, svc dashboard.Service) dashboard.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) CreateSession(ctx context.Context, workflow wizard.Workflow) (s dashboard.Session, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("session",
				slog.String("id", s.ID),
				slog.String("name", s.Name),
				slog.String("workflow", workflow.String()),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Create session failed", args...)

			return
		}
		lm.logger.Info("Create session completed successfully", args...)
	}(time.Now())

	return lm.svc.CreateSession(ctx, workflow)
}

func (lm *loggingMiddleware) GetSession(ctx context.Context, id string) (s dashboard.Session, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("session",
				slog.String("id", id),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get session failed", args...)

			return
		}
		lm.logger.Info("Get session completed successfully", args...)
	}(time.Now())

	return lm.svc.GetSession(ctx, id)
}

func (lm *loggingMiddleware) ListSessions(ctx context.Context, offset, limit uint64) (page dashboard.SessionPage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Uint64("offset", offset),
			slog.Uint64("limit", limit),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List sessions failed", args...)

			return
		}
		lm.logger.Info("List sessions completed successfully", args...)
	}(time.Now())

	return lm.svc.ListSessions(ctx, offset, limit)
}

func (lm *loggingMiddleware) ListModels(ctx context.Context, f catalog.Filter) (models []catalog.Model, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("filter",
				slog.String("search", f.Search),
				slog.Any("tags", f.Tags),
				slog.String("license", f.License),
			),
			slog.Int("count", len(models)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List models failed", args...)

			return
		}
		lm.logger.Info("List models completed successfully", args...)
	}(time.Now())

	return lm.svc.ListModels(ctx, f)
}

func (lm *loggingMiddleware) SelectModel(ctx context.Context, sessionID, modelID string) (s dashboard.Session, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("session_id", sessionID),
			slog.String("model_id", modelID),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Select model failed", args...)

			return
		}
		lm.logger.Info("Select model completed successfully", args...)
	}(time.Now())

	return lm.svc.SelectModel(ctx, sessionID, modelID)
}

func (lm *loggingMiddleware) Configure(ctx context.Context, sessionID string, hp dashboard.Hyperparameters) (s dashboard.Session, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("session_id", sessionID),
			slog.Group("hyperparameters",
				slog.Float64("learning_rate", hp.LearningRate),
				slog.Int("batch_size", hp.BatchSize),
				slog.Int("epochs", hp.Epochs),
				slog.Float64("weight_decay", hp.WeightDecay),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Configure session failed", args...)

			return
		}
		lm.logger.Info("Configure session completed successfully", args...)
	}(time.Now())

	return lm.svc.Configure(ctx, sessionID, hp)
}

func (lm *loggingMiddleware) StageFiles(ctx context.Context, sessionID string, inputs ...staging.Input) (files []staging.UploadedFile, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("session_id", sessionID),
			slog.Int("offered", len(inputs)),
			slog.Int("staged", len(files)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Stage files failed", args...)

			return
		}
		lm.logger.Info("Stage files completed successfully", args...)
	}(time.Now())

	return lm.svc.StageFiles(ctx, sessionID, inputs...)
}

func (lm *loggingMiddleware) RemoveFile(ctx context.Context, sessionID, fileID string) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("session_id", sessionID),
			slog.String("file_id", fileID),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Remove file failed", args...)

			return
		}
		lm.logger.Info("Remove file completed successfully", args...)
	}(time.Now())

	return lm.svc.RemoveFile(ctx, sessionID, fileID)
}

func (lm *loggingMiddleware) UploadFiles(ctx context.Context, sessionID string) (res staging.CommitResult, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("session_id", sessionID),
			slog.Int("completed", res.Completed),
			slog.Int("failed", res.Failed),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Upload files failed", args...)

			return
		}
		lm.logger.Info("Upload files completed successfully", args...)
	}(time.Now())

	return lm.svc.UploadFiles(ctx, sessionID)
}

func (lm *loggingMiddleware) Advance(ctx context.Context, sessionID string) (s dashboard.Session, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("session",
				slog.String("id", sessionID),
				slog.Int("step", s.Step),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Advance step failed", args...)

			return
		}
		lm.logger.Info("Advance step completed successfully", args...)
	}(time.Now())

	return lm.svc.Advance(ctx, sessionID)
}

func (lm *loggingMiddleware) Retreat(ctx context.Context, sessionID string) (s dashboard.Session, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("session",
				slog.String("id", sessionID),
				slog.Int("step", s.Step),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Retreat step failed", args...)

			return
		}
		lm.logger.Info("Retreat step completed successfully", args...)
	}(time.Now())

	return lm.svc.Retreat(ctx, sessionID)
}

func (lm *loggingMiddleware) StartJob(ctx context.Context, sessionID string) (s dashboard.Session, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("session",
				slog.String("id", sessionID),
				slog.String("workflow", s.Workflow.String()),
				slog.String("model_id", s.ModelID),
				slog.String("deployment_id", s.DeploymentID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Start job failed", args...)

			return
		}
		lm.logger.Info("Start job completed successfully", args...)
	}(time.Now())

	return lm.svc.StartJob(ctx, sessionID)
}

func (lm *loggingMiddleware) WatchJob(ctx context.Context, sessionID string, onTick func(monitor.Snapshot)) (snap monitor.Snapshot, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("session_id", sessionID),
			slog.Group("job",
				slog.String("state", string(snap.Status.State)),
				slog.Int("step", snap.Status.CurrentStep),
				slog.Int("total_steps", snap.Status.TotalSteps),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Watch job failed", args...)

			return
		}
		lm.logger.Info("Watch job completed successfully", args...)
	}(time.Now())

	return lm.svc.WatchJob(ctx, sessionID, onTick)
}

func (lm *loggingMiddleware) Results(ctx context.Context, sessionID string) (res []sdk.InferenceResult, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("session_id", sessionID),
			slog.Int("count", len(res)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get results failed", args...)

			return
		}
		lm.logger.Info("Get results completed successfully", args...)
	}(time.Now())

	return lm.svc.Results(ctx, sessionID)
}

func (lm *loggingMiddleware) Weights(ctx context.Context, sessionID string) (w map[string]any, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("session_id", sessionID),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get weights failed", args...)

			return
		}
		lm.logger.Info("Get weights completed successfully", args...)
	}(time.Now())

	return lm.svc.Weights(ctx, sessionID)
}
