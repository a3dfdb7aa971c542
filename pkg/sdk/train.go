package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	trainUploadEndpoint = "/train/upload_data"
	trainStartEndpoint  = "/train/start"
	trainStatusEndpoint = "/train/status"
)

type ModelType string

const (
	Classification ModelType = "classification"
	Segmentation   ModelType = "segmentation"
	Generation     ModelType = "generation"
	BBox           ModelType = "bbox"
)

func (m ModelType) String() string {
	return string(m)
}

func (m ModelType) Validate() error {
	switch m {
	case Classification, Segmentation, Generation, BBox:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidModelType, string(m))
	}
}

func ParseModelType(s string) (ModelType, error) {
	m := ModelType(s)
	if err := m.Validate(); err != nil {
		return "", err
	}

	return m, nil
}

// TrainStart is the body of a training start request.
type TrainStart struct {
	ModelType ModelType `json:"model_type"`
}

// TrainStatus holds the per-epoch metric series of a job, ordered by epoch.
type TrainStatus struct {
	Finished  bool      `json:"finished"`
	TrainLoss []float64 `json:"train_loss"`
	ValLoss   []float64 `json:"val_loss"`
	TrainAcc  []float64 `json:"train_acc"`
	ValAcc    []float64 `json:"val_acc"`
}

func (sdk *okSDK) UploadTrainData(ctx context.Context, deploymentID string, file File) error {
	if err := validateUpload(deploymentID, file); err != nil {
		return err
	}

	_, err := sdk.processRequest(ctx, http.MethodPost, trainUploadEndpoint, deploymentID, fileBody(file))

	return err
}

func (sdk *okSDK) StartTraining(ctx context.Context, deploymentID string, modelType ModelType) error {
	if deploymentID == "" {
		return ErrEmptyDeployment
	}
	if err := modelType.Validate(); err != nil {
		return err
	}

	_, err := sdk.processRequest(ctx, http.MethodPost, trainStartEndpoint, deploymentID, jsonBody(TrainStart{ModelType: modelType}))

	return err
}

func (sdk *okSDK) TrainStatus(ctx context.Context, deploymentID string) (TrainStatus, error) {
	if deploymentID == "" {
		return TrainStatus{}, ErrEmptyDeployment
	}

	body, err := sdk.processRequest(ctx, http.MethodPost, trainStatusEndpoint, deploymentID, nil)
	if err != nil {
		return TrainStatus{}, err
	}

	var s TrainStatus
	if err := json.Unmarshal(body, &s); err != nil {
		return TrainStatus{}, err
	}

	return s, nil
}
