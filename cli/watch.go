package cli

import (
	"fmt"
	"time"

	"github.com/okailora/okailora/monitor"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// jobSummary is what the CLI prints once a watched job stops.
type jobSummary struct {
	State        monitor.State `json:"state"`
	Step         int           `json:"step"`
	TotalSteps   int           `json:"total_steps"`
	Epoch        int           `json:"epoch"`
	TotalEpochs  int           `json:"total_epochs"`
	Elapsed      string        `json:"elapsed"`
	CurrentLoss  float64       `json:"current_loss,omitempty"`
	BestAccuracy float64       `json:"best_accuracy,omitempty"`
	Logs         []string      `json:"logs,omitempty"`
}

func summarize(snap monitor.Snapshot) jobSummary {
	return jobSummary{
		State:        snap.Status.State,
		Step:         snap.Status.CurrentStep,
		TotalSteps:   snap.Status.TotalSteps,
		Epoch:        snap.Status.CurrentEpoch,
		TotalEpochs:  snap.Status.TotalEpochs,
		Elapsed:      snap.Status.Elapsed.Round(time.Second).String(),
		CurrentLoss:  snap.CurrentLoss(),
		BestAccuracy: snap.BestAccuracy(),
		Logs:         snap.Logs,
	}
}

// progressTicker draws a job's step progress on stderr.
func progressTicker(cmd *cobra.Command, totalSteps int) func(monitor.Snapshot) {
	bar := progressbar.NewOptions(totalSteps,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("waiting"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
	)

	return func(snap monitor.Snapshot) {
		st := snap.Status
		desc := fmt.Sprintf("epoch %d/%d", st.CurrentEpoch, st.TotalEpochs)
		if loss := snap.CurrentLoss(); loss > 0 {
			desc += fmt.Sprintf(" loss %.4f", loss)
		}
		if st.EstimatedRemaining > 0 {
			desc += " eta " + st.EstimatedRemaining.Round(time.Second).String()
		}
		bar.Describe(desc)
		_ = bar.Set(min(st.CurrentStep, st.TotalSteps))
		if st.State.Terminal() {
			_ = bar.Finish()
		}
	}
}
