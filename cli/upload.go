package cli

import (
	"context"
	"io"
	"sync"

	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/staging"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type uploadFunc func(ctx context.Context, deploymentID string, file sdk.File) error

// uploadPaths stages the files at paths and uploads the accepted ones to
// deploymentID, drawing one progress bar per file.
func uploadPaths(cmd *cobra.Command, deploymentID string, paths []string, upload uploadFunc) (staging.CommitResult, error) {
	var mu sync.Mutex
	bars := map[string]*progressbar.ProgressBar{}
	observe := func(f staging.UploadedFile) {
		mu.Lock()
		defer mu.Unlock()

		bar, ok := bars[f.ID]
		if !ok {
			bar = progressbar.NewOptions(100,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription(f.Name+" ("+staging.FormatSize(f.Size)+")"),
				progressbar.OptionSetWidth(30),
			)
			bars[f.ID] = bar
		}
		switch f.Status {
		case staging.Completed:
			_ = bar.Finish()
		case staging.Failed:
			bar.Describe(f.Name + " failed")
			_ = bar.Exit()
		default:
			_ = bar.Set(f.Progress)
		}
	}

	queue := staging.NewQueue(
		staging.WithAlerter(Alerter(cmd)),
		staging.WithObserver(observe),
		staging.WithProgress(conf.Upload.ProgressEvery(), conf.Upload.ProgressStep, conf.Upload.ProgressCap),
	)
	for _, p := range paths {
		in, err := staging.FromPath(p)
		if err != nil {
			return staging.CommitResult{}, err
		}
		queue.Add(in)
	}

	return queue.Commit(cmd.Context(), staging.UploaderFunc(func(ctx context.Context, f staging.UploadedFile, r io.Reader) error {
		return upload(ctx, deploymentID, sdk.File{Name: f.Name, Reader: r})
	}))
}
