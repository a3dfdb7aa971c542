// Package backend is a development stand-in for the training and inference
// platform. It accepts uploads, keeps a deployment registry and runs
// simulated jobs that report metrics the way the real trainer does.
package backend

import (
	"context"
	"errors"

	"github.com/okailora/okailora/pkg/sdk"
)

var (
	ErrNoData      = errors.New("no data uploaded for deployment")
	ErrJobNotFound = errors.New("no job for deployment")
)

// Kind separates training uploads from inference uploads.
type Kind string

const (
	TrainData     Kind = "train"
	InferenceData Kind = "inference"
)

type Deployment struct {
	ID          string `json:"deployment_id" yaml:"id"`
	Type        string `json:"type"          yaml:"type"`
	Description string `json:"description"   yaml:"description"`
}

// LogPoint is one epoch of a training run. Accuracies are absent for model
// types that do not report them.
type LogPoint struct {
	Epoch     int      `json:"epoch"`
	TrainLoss float64  `json:"train_loss"`
	ValLoss   float64  `json:"val_loss"`
	TrainAcc  *float64 `json:"train_acc,omitempty"`
	ValAcc    *float64 `json:"val_acc,omitempty"`
}

type TrainStatus struct {
	Finished  bool      `json:"finished"`
	ValLoss   []float64 `json:"val_loss"`
	TrainLoss []float64 `json:"train_loss"`
	ValAcc    []float64 `json:"val_acc"`
	TrainAcc  []float64 `json:"train_acc"`
}

type InferenceResult struct {
	Image          string `json:"image"`
	Classification string `json:"classification"`
}

type InferenceStatus struct {
	Finished bool              `json:"finished"`
	Result   []InferenceResult `json:"result,omitempty"`
}

type Service interface {
	ListDeployments(ctx context.Context) ([]Deployment, error)
	SaveData(ctx context.Context, kind Kind, deploymentID string, data []byte) error

	// StartTraining registers deploymentID with modelType and starts a
	// simulated run over the uploaded training data.
	StartTraining(ctx context.Context, deploymentID string, modelType sdk.ModelType) error
	// TrainStatus reports the points logged so far, ordered by epoch. An
	// unknown deployment reports an unfinished, empty run.
	TrainStatus(ctx context.Context, deploymentID string) (TrainStatus, error)

	StartInference(ctx context.Context, deploymentID string, params map[string]any) error
	InferenceStatus(ctx context.Context, deploymentID string) (InferenceStatus, error)
	// Weights returns nil when there is nothing to export.
	Weights(ctx context.Context, deploymentID string) (map[string]any, error)
}
