package api

import (
	"net/http"

	"github.com/absmach/supermq"
	"github.com/okailora/okailora/backend"
)

var (
	_ supermq.Response = (*listDeploymentsRes)(nil)
	_ supermq.Response = (*acceptedRes)(nil)
	_ supermq.Response = (*trainStatusRes)(nil)
	_ supermq.Response = (*inferenceStatusRes)(nil)
	_ supermq.Response = (*weightsRes)(nil)
)

type listDeploymentsRes []backend.Deployment

func (res listDeploymentsRes) Code() int {
	return http.StatusOK
}

func (res listDeploymentsRes) Headers() map[string]string {
	return map[string]string{}
}

func (res listDeploymentsRes) Empty() bool {
	return false
}

// acceptedRes answers uploads and job starts, which carry no body.
type acceptedRes struct{}

func (res acceptedRes) Code() int {
	return http.StatusOK
}

func (res acceptedRes) Headers() map[string]string {
	return map[string]string{}
}

func (res acceptedRes) Empty() bool {
	return true
}

type trainStatusRes struct {
	backend.TrainStatus
}

func (res trainStatusRes) Code() int {
	return http.StatusOK
}

func (res trainStatusRes) Headers() map[string]string {
	return map[string]string{}
}

func (res trainStatusRes) Empty() bool {
	return false
}

type inferenceStatusRes struct {
	backend.InferenceStatus
}

func (res inferenceStatusRes) Code() int {
	return http.StatusOK
}

func (res inferenceStatusRes) Headers() map[string]string {
	return map[string]string{}
}

func (res inferenceStatusRes) Empty() bool {
	return false
}

type weightsRes map[string]any

func (res weightsRes) Code() int {
	if res == nil {
		return http.StatusNoContent
	}

	return http.StatusOK
}

func (res weightsRes) Headers() map[string]string {
	return map[string]string{}
}

func (res weightsRes) Empty() bool {
	return res == nil
}
