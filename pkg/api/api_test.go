package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/okailora/okailora/pkg/api"
	pkgerrors "github.com/okailora/okailora/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeError(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		err  error
		code int
	}{
		{name: "validation", err: errors.Join(apiutil.ErrValidation, apiutil.ErrMissingID), code: http.StatusBadRequest},
		{name: "missing data", err: pkgerrors.ErrMissingData, code: http.StatusBadRequest},
		{name: "not found", err: pkgerrors.ErrNotFound, code: http.StatusNotFound},
		{name: "conflict", err: pkgerrors.ErrEntityExists, code: http.StatusConflict},
		{name: "unknown", err: errors.New("boom"), code: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			api.EncodeError(context.Background(), tc.err, rec)
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, api.ContentType, rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.err.Error(), body["error"])
		})
	}
}
