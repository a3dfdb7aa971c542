package backend_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/okailora/okailora/backend"
	pkgerrors "github.com/okailora/okailora/pkg/errors"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimulator(t *testing.T) *backend.Simulator {
	t.Helper()
	reg, err := backend.NewRegistry(context.Background(), storage.NewInMemoryStorage(), "")
	require.NoError(t, err)

	sim := backend.NewSimulator(backend.Config{
		Epochs:         3,
		EpochDelay:     time.Millisecond,
		InferenceDelay: time.Millisecond,
		Seed:           7,
	}, reg, storage.NewInMemoryStorage(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(sim.Close)

	return sim
}

func zipOf(t *testing.T, names ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, n := range names {
		w, err := zw.Create(n)
		require.NoError(t, err)
		if strings.HasSuffix(n, "/") {
			continue
		}
		_, err = w.Write([]byte("data"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestSimulatedTraining(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sim := newSimulator(t)

	err := sim.StartTraining(ctx, "s-1", sdk.Classification)
	assert.ErrorIs(t, err, pkgerrors.ErrMissingData)

	require.NoError(t, sim.SaveData(ctx, backend.TrainData, "s-1", zipOf(t, "a.png")))

	err = sim.StartTraining(ctx, "s-1", sdk.ModelType("regression"))
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)

	require.NoError(t, sim.StartTraining(ctx, "s-1", sdk.Classification))

	ds, err := sim.ListDeployments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []backend.Deployment{{ID: "s-1", Type: "classification", Description: "sample description"}}, ds)

	var st backend.TrainStatus
	require.Eventually(t, func() bool {
		st, err = sim.TrainStatus(ctx, "s-1")

		return err == nil && st.Finished
	}, 2*time.Second, 5*time.Millisecond)

	assert.Len(t, st.TrainLoss, 3)
	assert.Len(t, st.ValLoss, 3)
	assert.Len(t, st.TrainAcc, 3)
	assert.Len(t, st.ValAcc, 3)
	assert.Greater(t, st.TrainLoss[0], st.TrainLoss[2])
	for _, acc := range st.ValAcc {
		assert.GreaterOrEqual(t, acc, 0.0)
		assert.LessOrEqual(t, acc, 1.0)
	}
}

func TestGenerationReportsNoAccuracy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sim := newSimulator(t)

	require.NoError(t, sim.SaveData(ctx, backend.TrainData, "s-2", []byte("not a zip")))
	require.NoError(t, sim.StartTraining(ctx, "s-2", sdk.Generation))

	require.Eventually(t, func() bool {
		st, err := sim.TrainStatus(ctx, "s-2")

		return err == nil && st.Finished && len(st.TrainLoss) == 3 && len(st.TrainAcc) == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestUnknownTrainStatus(t *testing.T) {
	t.Parallel()
	sim := newSimulator(t)

	st, err := sim.TrainStatus(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, st.Finished)
	assert.Empty(t, st.TrainLoss)
	assert.NotNil(t, st.TrainLoss)
}

func TestSimulatedInference(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sim := newSimulator(t)

	err := sim.StartInference(ctx, "s-3", nil)
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)

	require.NoError(t, sim.SaveData(ctx, backend.TrainData, "s-3", zipOf(t, "x.png")))
	require.NoError(t, sim.StartTraining(ctx, "s-3", sdk.BBox))

	err = sim.StartInference(ctx, "s-3", nil)
	assert.ErrorIs(t, err, pkgerrors.ErrMissingData)

	require.NoError(t, sim.SaveData(ctx, backend.InferenceData, "s-3", zipOf(t, "scans/", "scans/1.png", "scans/2.png", "scans/.DS_Store")))
	require.NoError(t, sim.StartInference(ctx, "s-3", map[string]any{"threshold": 0.5}))

	var st backend.InferenceStatus
	require.Eventually(t, func() bool {
		st, err = sim.InferenceStatus(ctx, "s-3")

		return err == nil && st.Finished
	}, 2*time.Second, 5*time.Millisecond)

	require.Len(t, st.Result, 2)
	assert.Equal(t, "scans/1.png", st.Result[0].Image)
	assert.Contains(t, []string{"normal", "benign", "malignant"}, st.Result[1].Classification)

	w, err := sim.Weights(ctx, "s-3")
	require.NoError(t, err)
	assert.Nil(t, w)

	_, err = sim.Weights(ctx, "nobody")
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestSaveDataValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sim := newSimulator(t)

	assert.ErrorIs(t, sim.SaveData(ctx, backend.TrainData, "", []byte("x")), pkgerrors.ErrEmptyKey)
	assert.ErrorIs(t, sim.SaveData(ctx, backend.TrainData, "s", nil), pkgerrors.ErrInvalidArgument)
	require.NoError(t, sim.SaveData(ctx, backend.TrainData, "s", []byte("x")))
	require.NoError(t, sim.SaveData(ctx, backend.TrainData, "s", []byte("y")))
}

func TestCloseStopsJobs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg, err := backend.NewRegistry(ctx, storage.NewInMemoryStorage(), "")
	require.NoError(t, err)
	sim := backend.NewSimulator(backend.Config{Epochs: 3, EpochDelay: time.Hour}, reg, storage.NewInMemoryStorage(), slog.Default())

	require.NoError(t, sim.SaveData(ctx, backend.TrainData, "s", []byte("x")))
	require.NoError(t, sim.StartTraining(ctx, "s", sdk.Segmentation))

	done := make(chan struct{})
	go func() {
		sim.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not stop the running job")
	}

	st, err := sim.TrainStatus(ctx, "s")
	require.NoError(t, err)
	assert.False(t, st.Finished)
}
