package cli_test

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/okailora/okailora"
	"github.com/okailora/okailora/catalog"
	"github.com/okailora/okailora/cli"
	"github.com/okailora/okailora/dashboard"
	dmocks "github.com/okailora/okailora/dashboard/mocks"
	"github.com/okailora/okailora/monitor"
	"github.com/okailora/okailora/pkg/sdk"
	sdkmocks "github.com/okailora/okailora/pkg/sdk/mocks"
	"github.com/okailora/okailora/staging"
	"github.com/okailora/okailora/wizard"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func setup(t *testing.T) (*dmocks.Service, *sdkmocks.SDK) {
	t.Helper()

	svc := new(dmocks.Service)
	client := new(sdkmocks.SDK)
	conf := okailora.DefaultConfig()
	conf.Monitor.PollInterval = "1ms"
	conf.Upload.ProgressInterval = "1ms"
	cli.SetConfig(conf)
	cli.SetService(svc)
	cli.SetSDK(client)
	t.Cleanup(func() {
		svc.AssertExpectations(t)
		client.AssertExpectations(t)
	})

	return svc, client
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	return stdout.String(), stderr.String()
}

func writeZip(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("scan_001.png")
	require.NoError(t, err)
	_, err = w.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	return path
}

func TestModelsList(t *testing.T) {
	svc, _ := setup(t)

	models := []catalog.Model{{ID: "okailora/ClinicalBERT", Name: "ClinicalBERT", License: "MIT"}}
	svc.On("ListModels", mock.Anything, mock.MatchedBy(func(f catalog.Filter) bool {
		return f.Search == "clinical" && f.License == "MIT"
	})).Return(models, nil).Once()

	out, _ := execute(t, cli.NewModelsCmd(), "list", "--search", "clinical", "--license", "MIT")
	assert.Contains(t, out, `"id": "okailora/ClinicalBERT"`)
}

func TestModelsTags(t *testing.T) {
	svc, _ := setup(t)

	models := []catalog.Model{
		{ID: "a", Tags: []string{"t5", "qa"}},
		{ID: "b", Tags: []string{"bert", "qa"}},
	}
	svc.On("ListModels", mock.Anything, catalog.Filter{}).Return(models, nil).Once()

	out, _ := execute(t, cli.NewModelsCmd(), "tags")
	assert.Contains(t, out, `"bert"`)
	assert.Contains(t, out, `"t5"`)
}

func TestTrainStart(t *testing.T) {
	cases := []struct {
		desc    string
		args    []string
		stdout  string
		stderr  string
		startOK bool
	}{
		{
			desc:    "start classification",
			args:    []string{"start", "dep-1", "classification"},
			stdout:  "ok",
			startOK: true,
		},
		{
			desc:   "unknown model type",
			args:   []string{"start", "dep-1", "regression"},
			stderr: "error:",
		},
		{
			desc:   "missing model type",
			args:   []string{"start", "dep-1"},
			stdout: "usage:",
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			_, client := setup(t)
			if tc.startOK {
				client.On("StartTraining", mock.Anything, "dep-1", sdk.Classification).Return(nil).Once()
			}

			out, errOut := execute(t, cli.NewTrainCmd(), tc.args...)
			assert.Contains(t, out, tc.stdout)
			assert.Contains(t, errOut, tc.stderr)
		})
	}
}

func TestTrainUploadSkipsNonZip(t *testing.T) {
	_, client := setup(t)

	archive := writeZip(t, "train.zip")
	notes := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("notes"), 0o600))

	client.On("UploadTrainData", mock.Anything, "dep-1", mock.MatchedBy(func(f sdk.File) bool {
		return f.Name == "train.zip"
	})).Return(nil).Once()

	out, errOut := execute(t, cli.NewTrainCmd(), "upload", "dep-1", archive, notes)
	assert.Contains(t, out, `"completed": 1`)
	assert.Contains(t, errOut, `File "notes.txt" is not a ZIP file.`)
}

func TestTrainWatch(t *testing.T) {
	_, client := setup(t)

	client.On("TrainStatus", mock.Anything, "dep-1").Return(sdk.TrainStatus{
		Finished:  true,
		TrainLoss: []float64{0.9, 0.5},
		ValAcc:    []float64{0.6, 0.8},
	}, nil).Once()

	out, _ := execute(t, cli.NewTrainCmd(), "watch", "dep-1", "--epochs", "2")
	assert.Contains(t, out, `"state": "completed"`)
	assert.Contains(t, out, `"total_epochs": 2`)
	assert.Contains(t, out, `"best_accuracy": 0.8`)
}

func TestInferenceStartParams(t *testing.T) {
	_, client := setup(t)

	client.On("StartInference", mock.Anything, "okailora/MedicalQA-T5", map[string]any{"threshold": "0.5"}).Return(nil).Once()

	out, _ := execute(t, cli.NewInferenceCmd(), "start", "okailora/MedicalQA-T5", "--param", "threshold=0.5")
	assert.Contains(t, out, "ok")
}

func TestInferenceStatus(t *testing.T) {
	_, client := setup(t)

	client.On("InferenceStatus", mock.Anything, "okailora/MedicalQA-T5").Return(sdk.InferenceStatus{
		Finished: true,
		Result:   []sdk.InferenceResult{{Image: "scan_001.png", Classification: "benign"}},
	}, nil).Once()

	out, _ := execute(t, cli.NewInferenceCmd(), "status", "okailora/MedicalQA-T5")
	assert.Contains(t, out, `"classification": "benign"`)
}

func TestRunShare(t *testing.T) {
	svc, _ := setup(t)

	const (
		id    = "4c9e2d7a-5f0b-4b8e-9a57-2f1f6d1c8a10"
		model = "okailora/HealthcareGPT-7B"
		link  = "http://localhost:3000/share/" + id + "?model=okailora%2FHealthcareGPT-7B"
	)
	svc.On("CreateSession", mock.Anything, wizard.Share).Return(dashboard.Session{ID: id, Name: "calm-river", Path: "/share/" + id}, nil).Once()
	svc.On("SelectModel", mock.Anything, id, model).Return(dashboard.Session{ID: id}, nil).Once()
	svc.On("Advance", mock.Anything, id).Return(dashboard.Session{ID: id}, nil).Once()
	svc.On("StartJob", mock.Anything, id).Return(dashboard.Session{ID: id, ShareURL: link}, nil).Once()

	out, _ := execute(t, cli.NewRunCmd(), "share", "--model", model)
	assert.Contains(t, out, "session calm-river created at /share/"+id)
	assert.Contains(t, out, link)
}

func TestRunTrainWatch(t *testing.T) {
	svc, _ := setup(t)

	const (
		id    = "b1d10738-c5d7-4ff1-8f4d-b9328ce6f040"
		model = "okailora/HealthcareGPT-7B"
	)
	archive := writeZip(t, "train.zip")

	running := monitor.Snapshot{Status: monitor.Status{State: monitor.Running, TotalSteps: 120, TotalEpochs: 4, CurrentEpoch: 1}}
	done := monitor.Snapshot{Status: monitor.Status{State: monitor.Completed, CurrentStep: 120, TotalSteps: 120, TotalEpochs: 4, CurrentEpoch: 4, Elapsed: 3 * time.Second}}

	svc.On("CreateSession", mock.Anything, wizard.Train).Return(dashboard.Session{ID: id, Name: "brave-owl", Path: "/train/" + id}, nil).Once()
	svc.On("SelectModel", mock.Anything, id, model).Return(dashboard.Session{ID: id}, nil).Once()
	svc.On("Advance", mock.Anything, id).Return(dashboard.Session{ID: id}, nil).Times(3)
	svc.On("StageFiles", mock.Anything, id, mock.Anything).Return([]staging.UploadedFile{}, nil).Once()
	svc.On("Configure", mock.Anything, id, mock.MatchedBy(func(hp dashboard.Hyperparameters) bool {
		return hp.Epochs == 4 && hp.BatchSize == 16
	})).Return(dashboard.Session{ID: id}, nil).Once()
	svc.On("StartJob", mock.Anything, id).Return(dashboard.Session{ID: id, Job: &running}, nil).Once()
	svc.On("WatchJob", mock.Anything, id).Return(done, nil).Once()
	svc.On("GetSession", mock.Anything, id).Return(dashboard.Session{ID: id, Job: &done}, nil).Once()

	out, _ := execute(t, cli.NewRunCmd(), "train", "--model", model, "--file", archive, "--epochs", "4", "--batch-size", "16", "--watch")
	assert.Contains(t, out, `"state": "completed"`)
	assert.Contains(t, out, `"elapsed": "3s"`)
}

func TestRunUnknownWorkflow(t *testing.T) {
	setup(t)

	_, errOut := execute(t, cli.NewRunCmd(), "pretrain", "--model", "okailora/HealthcareGPT-7B")
	assert.Contains(t, errOut, "unknown workflow")
}

func TestResourcesWatchSimulated(t *testing.T) {
	setup(t)

	out, _ := execute(t, cli.NewResourcesCmd(), "watch", "--simulate", "--seed", "7", "--count", "2", "--interval", "1ms")
	assert.Equal(t, 2, bytes.Count([]byte(out), []byte(`"gpu_memory_gb"`)))
}
