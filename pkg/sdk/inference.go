package sdk

import (
	"context"
	"encoding/json"
	"net/http"
)

const (
	inferenceListEndpoint    = "/inference/list"
	inferenceUploadEndpoint  = "/inference/upload_data"
	inferenceStartEndpoint   = "/inference/start"
	inferenceStatusEndpoint  = "/inference/status"
	inferenceWeightsEndpoint = "/inference/weights"
)

type Deployment struct {
	ID          string `json:"deployment_id"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type InferenceResult struct {
	Image          string `json:"image"`
	Classification string `json:"classification"`
	Base64         string `json:"base64,omitempty"`
}

type InferenceStatus struct {
	Finished bool              `json:"finished"`
	Result   []InferenceResult `json:"result,omitempty"`
}

func (sdk *okSDK) ListDeployments(ctx context.Context) ([]Deployment, error) {
	body, err := sdk.processRequest(ctx, http.MethodGet, inferenceListEndpoint, "", nil)
	if err != nil {
		return nil, err
	}

	var ds []Deployment
	if err := json.Unmarshal(body, &ds); err != nil {
		return nil, err
	}

	return ds, nil
}

func (sdk *okSDK) UploadInferenceData(ctx context.Context, deploymentID string, file File) error {
	if err := validateUpload(deploymentID, file); err != nil {
		return err
	}

	_, err := sdk.processRequest(ctx, http.MethodPost, inferenceUploadEndpoint, deploymentID, fileBody(file))

	return err
}

func (sdk *okSDK) StartInference(ctx context.Context, deploymentID string, params map[string]any) error {
	if deploymentID == "" {
		return ErrEmptyDeployment
	}
	if params == nil {
		params = map[string]any{}
	}

	_, err := sdk.processRequest(ctx, http.MethodPost, inferenceStartEndpoint, deploymentID, jsonBody(params))

	return err
}

func (sdk *okSDK) InferenceStatus(ctx context.Context, deploymentID string) (InferenceStatus, error) {
	if deploymentID == "" {
		return InferenceStatus{}, ErrEmptyDeployment
	}

	body, err := sdk.processRequest(ctx, http.MethodPost, inferenceStatusEndpoint, deploymentID, nil)
	if err != nil {
		return InferenceStatus{}, err
	}

	var s InferenceStatus
	if err := json.Unmarshal(body, &s); err != nil {
		return InferenceStatus{}, err
	}

	return s, nil
}

func (sdk *okSDK) InferenceWeights(ctx context.Context, deploymentID string) (map[string]any, error) {
	if deploymentID == "" {
		return nil, ErrEmptyDeployment
	}

	body, err := sdk.processRequest(ctx, http.MethodGet, inferenceWeightsEndpoint, deploymentID, nil)
	if err != nil {
		return nil, err
	}

	weights := map[string]any{}
	if len(body) == 0 {
		return weights, nil
	}
	if err := json.Unmarshal(body, &weights); err != nil {
		return nil, err
	}

	return weights, nil
}

func validateUpload(deploymentID string, file File) error {
	if deploymentID == "" {
		return ErrEmptyDeployment
	}
	if file.Reader == nil || file.Name == "" {
		return ErrMissingFile
	}

	return nil
}
