package api_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okailora/okailora/backend"
	"github.com/okailora/okailora/backend/api"
	"github.com/okailora/okailora/backend/middleware"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const origin = "http://localhost:3000"

func newTestServer(t *testing.T) (*httptest.Server, sdk.SDK) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg, err := backend.NewRegistry(context.Background(), storage.NewInMemoryStorage(), "")
	require.NoError(t, err)
	require.NoError(t, reg.Put(context.Background(), backend.Deployment{ID: "okailora/MedicalQA-T5", Type: "generation", Description: "QA"}))

	sim := backend.NewSimulator(backend.Config{
		Epochs:         2,
		EpochDelay:     time.Millisecond,
		InferenceDelay: time.Millisecond,
		Seed:           3,
	}, reg, storage.NewInMemoryStorage(), logger)
	t.Cleanup(sim.Close)

	ts := httptest.NewServer(api.MakeHandler(middleware.Logging(logger, sim), logger, "test-instance", []string{origin}))
	t.Cleanup(ts.Close)

	return ts, sdk.NewSDK(sdk.Config{URL: ts.URL, Timeout: 5 * time.Second})
}

func archive(t *testing.T, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, n := range names {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write([]byte{1, 2, 3})
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestTrainingRoundTrip(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	err := client.StartTraining(ctx, "session-1", sdk.Classification)
	require.Error(t, err)
	assert.ErrorIs(t, err, sdk.ErrBadRequest)

	file := sdk.File{Name: "train.zip", Reader: bytes.NewReader(archive(t, "a.png"))}
	require.NoError(t, client.UploadTrainData(ctx, "session-1", file))
	require.NoError(t, client.StartTraining(ctx, "session-1", sdk.Classification))

	var st sdk.TrainStatus
	require.Eventually(t, func() bool {
		st, err = client.TrainStatus(ctx, "session-1")

		return err == nil && st.Finished
	}, 3*time.Second, 10*time.Millisecond)
	assert.Len(t, st.TrainLoss, 2)
	assert.Len(t, st.ValAcc, 2)

	ds, err := client.ListDeployments(ctx)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "session-1", ds[1].ID)
	assert.Equal(t, "classification", ds[1].Type)
}

func TestInferenceRoundTrip(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()
	id := "okailora/MedicalQA-T5"

	err := client.StartInference(ctx, "unknown", nil)
	assert.ErrorIs(t, err, sdk.ErrNotFound)

	file := sdk.File{Name: "scans.zip", Reader: bytes.NewReader(archive(t, "1.png", "2.png"))}
	require.NoError(t, client.UploadInferenceData(ctx, id, file))
	require.NoError(t, client.StartInference(ctx, id, map[string]any{"threshold": 0.5}))

	var st sdk.InferenceStatus
	require.Eventually(t, func() bool {
		st, err = client.InferenceStatus(ctx, id)

		return err == nil && st.Finished
	}, 3*time.Second, 10*time.Millisecond)
	require.Len(t, st.Result, 2)
	assert.Equal(t, "1.png", st.Result[0].Image)

	w, err := client.InferenceWeights(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, w)
}

func TestStatusWithoutDeployment(t *testing.T) {
	ts, _ := newTestServer(t)

	res, err := http.Post(ts.URL+"/train/status", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCORSAndHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/inference/list", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, origin, res.Header.Get("Access-Control-Allow-Origin"))

	res, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
