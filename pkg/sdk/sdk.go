package sdk

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	CTJSON string = "application/json"

	deploymentHeader = "deployment_id"
	fileField        = "file"
)

// File is an archive handed to one of the upload endpoints.
type File struct {
	Name   string
	Reader io.Reader
}

type SDK interface {
	// ListDeployments lists the deployments known to the platform.
	//
	// example:
	//  deployments, _ := sdk.ListDeployments(ctx)
	//  fmt.Println(deployments)
	ListDeployments(ctx context.Context) ([]Deployment, error)

	// UploadInferenceData uploads a ZIP archive for inference on a deployment.
	//
	// example:
	//  f, _ := os.Open("scans.zip")
	//  err := sdk.UploadInferenceData(ctx, "okailora/HealthcareGPT-7B", sdk.File{Name: "scans.zip", Reader: f})
	//  fmt.Println(err)
	UploadInferenceData(ctx context.Context, deploymentID string, file File) error

	// StartInference starts inference on previously uploaded data.
	//
	// example:
	//  err := sdk.StartInference(ctx, "okailora/HealthcareGPT-7B", nil)
	//  fmt.Println(err)
	StartInference(ctx context.Context, deploymentID string, params map[string]any) error

	// InferenceStatus gets the status and results of an inference run.
	//
	// example:
	//  status, _ := sdk.InferenceStatus(ctx, "okailora/HealthcareGPT-7B")
	//  fmt.Println(status.Finished, status.Result)
	InferenceStatus(ctx context.Context, deploymentID string) (InferenceStatus, error)

	// InferenceWeights gets the weights of a deployment. A 204 reply yields an empty map.
	//
	// example:
	//  weights, _ := sdk.InferenceWeights(ctx, "okailora/HealthcareGPT-7B")
	//  fmt.Println(weights)
	InferenceWeights(ctx context.Context, deploymentID string) (map[string]any, error)

	// UploadTrainData uploads a ZIP archive of training data for a session.
	//
	// example:
	//  f, _ := os.Open("train.zip")
	//  err := sdk.UploadTrainData(ctx, "b1d10738-c5d7-4ff1-8f4d-b9328ce6f040", sdk.File{Name: "train.zip", Reader: f})
	//  fmt.Println(err)
	UploadTrainData(ctx context.Context, deploymentID string, file File) error

	// StartTraining starts a training job for a session.
	//
	// example:
	//  err := sdk.StartTraining(ctx, "b1d10738-c5d7-4ff1-8f4d-b9328ce6f040", sdk.Classification)
	//  fmt.Println(err)
	StartTraining(ctx context.Context, deploymentID string, modelType ModelType) error

	// TrainStatus gets the metric series of a training job.
	//
	// example:
	//  status, _ := sdk.TrainStatus(ctx, "b1d10738-c5d7-4ff1-8f4d-b9328ce6f040")
	//  fmt.Println(status.Finished, status.TrainLoss)
	TrainStatus(ctx context.Context, deploymentID string) (TrainStatus, error)
}

type okSDK struct {
	client *resty.Client
}

type Config struct {
	URL             string
	TLSVerification bool
	Timeout         time.Duration
}

func NewSDK(cfg Config) SDK {
	hc := &http.Client{
		Timeout: cfg.Timeout,
		Transport: otelhttp.NewTransport(&http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: !cfg.TLSVerification,
			},
		}),
	}

	return &okSDK{
		client: resty.NewWithClient(hc).SetBaseURL(cfg.URL),
	}
}

// processRequest sends a request scoped to deploymentID (if any) and returns
// the body of a 2xx reply. Any other status becomes an *APIError.
func (sdk *okSDK) processRequest(ctx context.Context, method, endpoint, deploymentID string, build func(*resty.Request)) ([]byte, error) {
	req := sdk.client.R().SetContext(ctx)
	if deploymentID != "" {
		req.SetHeader(deploymentHeader, deploymentID)
	}
	if build != nil {
		build(req)
	}

	res, err := req.Execute(method, endpoint)
	if err != nil {
		return nil, err
	}

	if !res.IsSuccess() {
		return nil, newAPIError(method, res.Request.URL, res.StatusCode(), res.Body())
	}

	return res.Body(), nil
}

func jsonBody(body any) func(*resty.Request) {
	return func(req *resty.Request) {
		req.SetHeader("Content-Type", CTJSON).SetBody(body)
	}
}

func fileBody(file File) func(*resty.Request) {
	return func(req *resty.Request) {
		req.SetFileReader(fileField, file.Name, file.Reader)
	}
}
