package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/absmach/supermq"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/okailora/okailora/backend"
	"github.com/okailora/okailora/pkg/api"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	svcName     = "backend"
	maxFileSize = 1024 * 1024 * 512
)

// MakeHandler serves the platform API. Browser requests are accepted from
// allowedOrigins only.
func MakeHandler(svc backend.Service, logger *slog.Logger, instanceID string, allowedOrigins []string) http.Handler {
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(apiutil.LoggingErrorEncoder(logger, api.EncodeError)),
	}

	mux.Route("/inference", func(r chi.Router) {
		r.Get("/list", otelhttp.NewHandler(kithttp.NewServer(
			listDeploymentsEndpoint(svc),
			decodeListReq,
			api.EncodeResponse,
			opts...,
		), "list-deployments").ServeHTTP)
		r.Post("/upload_data", otelhttp.NewHandler(kithttp.NewServer(
			uploadDataEndpoint(svc),
			decodeUploadReq(backend.InferenceData),
			api.EncodeResponse,
			opts...,
		), "upload-inference-data").ServeHTTP)
		r.Post("/start", otelhttp.NewHandler(kithttp.NewServer(
			startInferenceEndpoint(svc),
			decodeInferenceStartReq,
			api.EncodeResponse,
			opts...,
		), "start-inference").ServeHTTP)
		r.Post("/status", otelhttp.NewHandler(kithttp.NewServer(
			inferenceStatusEndpoint(svc),
			decodeDeploymentReq,
			api.EncodeResponse,
			opts...,
		), "inference-status").ServeHTTP)
		r.Get("/weights", otelhttp.NewHandler(kithttp.NewServer(
			weightsEndpoint(svc),
			decodeDeploymentReq,
			api.EncodeResponse,
			opts...,
		), "inference-weights").ServeHTTP)
	})

	mux.Route("/train", func(r chi.Router) {
		r.Post("/upload_data", otelhttp.NewHandler(kithttp.NewServer(
			uploadDataEndpoint(svc),
			decodeUploadReq(backend.TrainData),
			api.EncodeResponse,
			opts...,
		), "upload-train-data").ServeHTTP)
		r.Post("/start", otelhttp.NewHandler(kithttp.NewServer(
			startTrainingEndpoint(svc),
			decodeTrainStartReq,
			api.EncodeResponse,
			opts...,
		), "start-training").ServeHTTP)
		r.Post("/status", otelhttp.NewHandler(kithttp.NewServer(
			trainStatusEndpoint(svc),
			decodeDeploymentReq,
			api.EncodeResponse,
			opts...,
		), "train-status").ServeHTTP)
	})

	mux.Get("/health", supermq.Health(svcName, instanceID))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeListReq(_ context.Context, _ *http.Request) (any, error) {
	return nil, nil
}

func decodeDeploymentReq(_ context.Context, r *http.Request) (any, error) {
	return deploymentReq{
		deploymentID: r.Header.Get(api.DeploymentHeader),
	}, nil
}

func decodeUploadReq(kind backend.Kind) kithttp.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (any, error) {
		if err := r.ParseMultipartForm(maxFileSize); err != nil {
			return nil, errors.Join(apiutil.ErrValidation, err)
		}
		file, _, err := r.FormFile(api.FileField)
		if err != nil {
			return nil, errors.Join(apiutil.ErrValidation, err)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, err
		}

		return uploadReq{
			kind:         kind,
			deploymentID: r.Header.Get(api.DeploymentHeader),
			data:         data,
		}, nil
	}
}

func decodeTrainStartReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	req := trainStartReq{deploymentID: r.Header.Get(api.DeploymentHeader)}
	if err := json.NewDecoder(r.Body).Decode(&req.TrainStart); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}

	return req, nil
}

// decodeInferenceStartReq accepts an empty body as no parameters.
func decodeInferenceStartReq(_ context.Context, r *http.Request) (any, error) {
	req := inferenceStartReq{deploymentID: r.Header.Get(api.DeploymentHeader)}
	if err := json.NewDecoder(r.Body).Decode(&req.params); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}

	return req, nil
}
