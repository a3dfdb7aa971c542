// Package dashboard drives one user's dashboard sessions: model selection,
// staged uploads, the step wizard, job start and job monitoring, all against
// the platform REST API.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okailora/okailora/catalog"
	"github.com/okailora/okailora/monitor"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/staging"
	"github.com/okailora/okailora/wizard"
)

const (
	msgDeploymentNotFound = "Failed to upload files: Model deployment not found. Please try selecting a different model."
	msgTrainingFailed     = "Failed to start training. Please try again."
	msgInferenceFailed    = "Failed to start inference. Please try again."
)

var (
	ErrDeploymentNotFound     = errors.New("model deployment not found")
	ErrModelNotSelected       = errors.New("no model selected")
	ErrNotFinalStep           = errors.New("job can only start from the final step")
	ErrJobNotStarted          = errors.New("job not started")
	ErrJobAlreadyStarted      = errors.New("job already started")
	ErrUnsupported            = errors.New("operation not supported for workflow")
	ErrInvalidHyperparameters = errors.New("invalid hyperparameters")
)

var (
	LearningRateOptions = []float64{1e-5, 5e-6, 2e-5, 3e-5}
	BatchSizeOptions    = []int{8, 4, 16, 32}
	EpochOptions        = []int{3, 2, 4, 5}
	WeightDecayOptions  = []float64{0.01, 0.001, 0.1, 0}
)

// Hyperparameters configure a training job. The first entry of every option
// list above is the recommended value.
type Hyperparameters struct {
	LearningRate          float64 `json:"learning_rate"`
	BatchSize             int     `json:"batch_size"`
	Epochs                int     `json:"epochs"`
	WeightDecay           float64 `json:"weight_decay"`
	MixedPrecision        bool    `json:"mixed_precision"`
	GradientCheckpointing bool    `json:"gradient_checkpointing"`
}

func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		LearningRate:   LearningRateOptions[0],
		BatchSize:      BatchSizeOptions[0],
		Epochs:         EpochOptions[0],
		WeightDecay:    WeightDecayOptions[0],
		MixedPrecision: true,
	}
}

func (h Hyperparameters) Validate() error {
	switch {
	case h.LearningRate <= 0:
		return fmt.Errorf("%w: learning rate must be positive", ErrInvalidHyperparameters)
	case h.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidHyperparameters)
	case h.Epochs <= 0:
		return fmt.Errorf("%w: epochs must be positive", ErrInvalidHyperparameters)
	case h.WeightDecay < 0:
		return fmt.Errorf("%w: weight decay must not be negative", ErrInvalidHyperparameters)
	}

	return nil
}

// Session is a read-only view of a dashboard session.
type Session struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Workflow        wizard.Workflow        `json:"workflow"`
	Path            string                 `json:"path"`
	Step            int                    `json:"step"`
	StepTitle       string                 `json:"step_title"`
	Steps           []string               `json:"steps"`
	CanAdvance      bool                   `json:"can_advance"`
	ModelID         string                 `json:"model_id,omitempty"`
	DeploymentID    string                 `json:"deployment_id,omitempty"`
	Hyperparameters *Hyperparameters       `json:"hyperparameters,omitempty"`
	Files           []staging.UploadedFile `json:"files"`
	Job             *monitor.Snapshot      `json:"job,omitempty"`
	Results         []sdk.InferenceResult  `json:"results,omitempty"`
	ShareURL        string                 `json:"share_url,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

type SessionPage struct {
	Offset   uint64    `json:"offset"`
	Limit    uint64    `json:"limit"`
	Total    uint64    `json:"total"`
	Sessions []Session `json:"sessions"`
}

type Service interface {
	CreateSession(ctx context.Context, workflow wizard.Workflow) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context, offset, limit uint64) (SessionPage, error)

	// ListModels refreshes the catalog from the deployment listing, keeping
	// the fallback models if that fails, and returns the models matching f.
	ListModels(ctx context.Context, f catalog.Filter) ([]catalog.Model, error)
	SelectModel(ctx context.Context, sessionID, modelID string) (Session, error)
	Configure(ctx context.Context, sessionID string, hp Hyperparameters) (Session, error)

	StageFiles(ctx context.Context, sessionID string, inputs ...staging.Input) ([]staging.UploadedFile, error)
	RemoveFile(ctx context.Context, sessionID, fileID string) error
	UploadFiles(ctx context.Context, sessionID string) (staging.CommitResult, error)

	Advance(ctx context.Context, sessionID string) (Session, error)
	Retreat(ctx context.Context, sessionID string) (Session, error)

	// StartJob starts training or inference, or produces the share link,
	// depending on the session workflow. It is only allowed on the final step.
	StartJob(ctx context.Context, sessionID string) (Session, error)
	// WatchJob polls the started job until it finishes or a poll fails.
	WatchJob(ctx context.Context, sessionID string, onTick func(monitor.Snapshot)) (monitor.Snapshot, error)
	Results(ctx context.Context, sessionID string) ([]sdk.InferenceResult, error)
	Weights(ctx context.Context, sessionID string) (map[string]any, error)
}
