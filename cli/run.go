package cli

import (
	"fmt"

	"github.com/okailora/okailora/dashboard"
	"github.com/okailora/okailora/staging"
	"github.com/okailora/okailora/wizard"
	"github.com/spf13/cobra"
)

// runOptions carry everything a workflow needs to go from model selection
// to a started job without prompting.
type runOptions struct {
	Workflow wizard.Workflow
	ModelID  string
	Paths    []string
	Hyper    dashboard.Hyperparameters
	Watch    bool
}

var (
	runModel string
	runFiles []string
	runHyper dashboard.Hyperparameters
	runWatch bool
)

func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <train|finetune|inference|share>",
		Short: "Run a workflow",
		Long: `Walk a workflow from model selection to a started job.

Examples:
  okailora run train --model okailora/HealthcareGPT-7B --file train.zip --epochs 4 --watch
  okailora run inference --model okailora/MedicalQA-T5 --file scans.zip --watch
  okailora run share --model okailora/HealthcareGPT-7B`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 || runModel == "" {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			wf, err := wizard.ParseWorkflow(args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			s, err := runWorkflow(cmd, runOptions{
				Workflow: wf,
				ModelID:  runModel,
				Paths:    runFiles,
				Hyper:    runHyper,
				Watch:    runWatch,
			})
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			report(cmd, s)
		},
	}

	cmd.Flags().StringVarP(&runModel, "model", "m", "", "Model ID to use")
	cmd.Flags().StringSliceVarP(&runFiles, "file", "f", nil, "ZIP archive to upload, repeatable")
	def := dashboard.DefaultHyperparameters()
	cmd.Flags().Float64Var(&runHyper.LearningRate, "lr", def.LearningRate, "Learning rate")
	cmd.Flags().IntVar(&runHyper.BatchSize, "batch-size", def.BatchSize, "Batch size")
	cmd.Flags().IntVar(&runHyper.Epochs, "epochs", def.Epochs, "Number of epochs")
	cmd.Flags().Float64Var(&runHyper.WeightDecay, "weight-decay", def.WeightDecay, "Weight decay")
	cmd.Flags().BoolVar(&runHyper.MixedPrecision, "mixed-precision", def.MixedPrecision, "Train with mixed precision")
	cmd.Flags().BoolVar(&runHyper.GradientCheckpointing, "gradient-checkpointing", def.GradientCheckpointing, "Train with gradient checkpointing")
	cmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "Follow the job until it finishes")

	return cmd
}

// runWorkflow creates a session and walks its wizard to the final step,
// then starts the job and optionally follows it.
func runWorkflow(cmd *cobra.Command, opts runOptions) (dashboard.Session, error) {
	ctx := cmd.Context()

	s, err := dashSvc.CreateSession(ctx, opts.Workflow)
	if err != nil {
		return dashboard.Session{}, err
	}
	logSuccessCmd(*cmd, fmt.Sprintf("session %s created at %s", s.Name, s.Path))

	if s, err = dashSvc.SelectModel(ctx, s.ID, opts.ModelID); err != nil {
		return s, err
	}
	if s, err = dashSvc.Advance(ctx, s.ID); err != nil {
		return s, err
	}

	if opts.Workflow != wizard.Share {
		inputs := make([]staging.Input, 0, len(opts.Paths))
		for _, p := range opts.Paths {
			in, err := staging.FromPath(p)
			if err != nil {
				return s, err
			}
			inputs = append(inputs, in)
		}
		if _, err := dashSvc.StageFiles(ctx, s.ID, inputs...); err != nil {
			return s, err
		}
		if s, err = dashSvc.Advance(ctx, s.ID); err != nil {
			return s, err
		}
		for _, f := range s.Files {
			if f.Status == staging.Failed {
				logAlertCmd(*cmd, fmt.Sprintf("%s was not uploaded", f.Name))
			}
		}
	}

	if opts.Workflow.Trains() {
		if s, err = dashSvc.Configure(ctx, s.ID, opts.Hyper); err != nil {
			return s, err
		}
		if s, err = dashSvc.Advance(ctx, s.ID); err != nil {
			return s, err
		}
	}

	if s, err = dashSvc.StartJob(ctx, s.ID); err != nil {
		return s, err
	}
	if !opts.Watch || opts.Workflow == wizard.Share {
		return s, nil
	}

	total := conf.Monitor.TotalSteps
	if s.Job != nil {
		total = s.Job.Status.TotalSteps
	}
	if _, err := dashSvc.WatchJob(ctx, s.ID, progressTicker(cmd, total)); err != nil {
		return s, err
	}

	return dashSvc.GetSession(ctx, s.ID)
}

func report(cmd *cobra.Command, s dashboard.Session) {
	switch {
	case s.ShareURL != "":
		logSuccessCmd(*cmd, s.ShareURL)
	case s.Job != nil && s.Job.Status.State.Terminal():
		logJSONCmd(*cmd, summarize(*s.Job))
		if len(s.Results) > 0 {
			logJSONCmd(*cmd, s.Results)
		}
	default:
		logJSONCmd(*cmd, s)
	}
}
