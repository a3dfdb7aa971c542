package mocks

import (
	"context"

	"github.com/okailora/okailora/pkg/sdk"
	"github.com/stretchr/testify/mock"
)

var _ sdk.SDK = (*SDK)(nil)

// SDK is a mock implementation of the sdk.SDK interface
type SDK struct {
	mock.Mock
}

// ListDeployments lists deployments
func (m *SDK) ListDeployments(ctx context.Context) ([]sdk.Deployment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]sdk.Deployment), args.Error(1)
}

// UploadInferenceData uploads inference data
func (m *SDK) UploadInferenceData(ctx context.Context, deploymentID string, file sdk.File) error {
	args := m.Called(ctx, deploymentID, file)
	return args.Error(0)
}

// StartInference starts inference
func (m *SDK) StartInference(ctx context.Context, deploymentID string, params map[string]any) error {
	args := m.Called(ctx, deploymentID, params)
	return args.Error(0)
}

// InferenceStatus gets inference status
func (m *SDK) InferenceStatus(ctx context.Context, deploymentID string) (sdk.InferenceStatus, error) {
	args := m.Called(ctx, deploymentID)
	return args.Get(0).(sdk.InferenceStatus), args.Error(1)
}

// InferenceWeights gets deployment weights
func (m *SDK) InferenceWeights(ctx context.Context, deploymentID string) (map[string]any, error) {
	args := m.Called(ctx, deploymentID)
	return args.Get(0).(map[string]any), args.Error(1)
}

// UploadTrainData uploads training data
func (m *SDK) UploadTrainData(ctx context.Context, deploymentID string, file sdk.File) error {
	args := m.Called(ctx, deploymentID, file)
	return args.Error(0)
}

// StartTraining starts training
func (m *SDK) StartTraining(ctx context.Context, deploymentID string, modelType sdk.ModelType) error {
	args := m.Called(ctx, deploymentID, modelType)
	return args.Error(0)
}

// TrainStatus gets training status
func (m *SDK) TrainStatus(ctx context.Context, deploymentID string) (sdk.TrainStatus, error) {
	args := m.Called(ctx, deploymentID)
	return args.Get(0).(sdk.TrainStatus), args.Error(1)
}
