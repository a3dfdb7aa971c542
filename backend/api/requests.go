package api

import (
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/okailora/okailora/backend"
	pkgerrors "github.com/okailora/okailora/pkg/errors"
	"github.com/okailora/okailora/pkg/sdk"
)

type deploymentReq struct {
	deploymentID string
}

func (req *deploymentReq) validate() error {
	if req.deploymentID == "" {
		return apiutil.ErrMissingID
	}

	return nil
}

type uploadReq struct {
	kind         backend.Kind
	deploymentID string
	data         []byte
}

func (req *uploadReq) validate() error {
	if req.deploymentID == "" {
		return apiutil.ErrMissingID
	}
	if len(req.data) == 0 {
		return pkgerrors.ErrMissingData
	}

	return nil
}

type trainStartReq struct {
	deploymentID string
	sdk.TrainStart
}

func (req *trainStartReq) validate() error {
	if req.deploymentID == "" {
		return apiutil.ErrMissingID
	}

	return req.ModelType.Validate()
}

type inferenceStartReq struct {
	deploymentID string
	params       map[string]any
}

func (req *inferenceStartReq) validate() error {
	if req.deploymentID == "" {
		return apiutil.ErrMissingID
	}

	return nil
}
