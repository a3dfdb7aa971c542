package api

import (
	"context"
	"errors"

	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-kit/kit/endpoint"
	"github.com/okailora/okailora/backend"
	pkgerrors "github.com/okailora/okailora/pkg/errors"
)

func listDeploymentsEndpoint(svc backend.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		ds, err := svc.ListDeployments(ctx)
		if err != nil {
			return listDeploymentsRes{}, err
		}
		if ds == nil {
			ds = []backend.Deployment{}
		}

		return listDeploymentsRes(ds), nil
	}
}

func uploadDataEndpoint(svc backend.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(uploadReq)
		if !ok {
			return acceptedRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return acceptedRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		if err := svc.SaveData(ctx, req.kind, req.deploymentID, req.data); err != nil {
			return acceptedRes{}, err
		}

		return acceptedRes{}, nil
	}
}

func startTrainingEndpoint(svc backend.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(trainStartReq)
		if !ok {
			return acceptedRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return acceptedRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		if err := svc.StartTraining(ctx, req.deploymentID, req.ModelType); err != nil {
			return acceptedRes{}, err
		}

		return acceptedRes{}, nil
	}
}

func trainStatusEndpoint(svc backend.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(deploymentReq)
		if !ok {
			return trainStatusRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return trainStatusRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		st, err := svc.TrainStatus(ctx, req.deploymentID)
		if err != nil {
			return trainStatusRes{}, err
		}

		return trainStatusRes{TrainStatus: st}, nil
	}
}

func startInferenceEndpoint(svc backend.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(inferenceStartReq)
		if !ok {
			return acceptedRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return acceptedRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		if err := svc.StartInference(ctx, req.deploymentID, req.params); err != nil {
			return acceptedRes{}, err
		}

		return acceptedRes{}, nil
	}
}

func inferenceStatusEndpoint(svc backend.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(deploymentReq)
		if !ok {
			return inferenceStatusRes{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return inferenceStatusRes{}, errors.Join(apiutil.ErrValidation, err)
		}

		st, err := svc.InferenceStatus(ctx, req.deploymentID)
		if err != nil {
			return inferenceStatusRes{}, err
		}

		return inferenceStatusRes{InferenceStatus: st}, nil
	}
}

func weightsEndpoint(svc backend.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(deploymentReq)
		if !ok {
			return weightsRes(nil), errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return weightsRes(nil), errors.Join(apiutil.ErrValidation, err)
		}

		w, err := svc.Weights(ctx, req.deploymentID)
		if err != nil {
			return weightsRes(nil), err
		}

		return weightsRes(w), nil
	}
}
