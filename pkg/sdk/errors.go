package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrBadRequest       = errors.New("bad request")
	ErrNotFound         = errors.New("not found")
	ErrEmptyDeployment  = errors.New("empty deployment id")
	ErrInvalidModelType = errors.New("invalid model type")
	ErrMissingFile      = errors.New("missing file")
)

// APIError is returned for every non-2xx reply.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func newAPIError(method, url string, code int, body []byte) *APIError {
	msg := strings.TrimSpace(string(body))

	var res struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &res); err == nil {
		switch {
		case res.Error != "":
			msg = res.Error
		case res.Message != "":
			msg = res.Message
		}
	}

	return &APIError{
		Method:     method,
		URL:        url,
		StatusCode: code,
		Message:    msg,
	}
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

func (e *APIError) Unwrap() []error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return []error{ErrUnexpectedStatus, ErrBadRequest}
	case http.StatusNotFound:
		return []error{ErrUnexpectedStatus, ErrNotFound}
	default:
		return []error{ErrUnexpectedStatus}
	}
}
