package cli

import (
	"context"

	"github.com/okailora/okailora/monitor"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/spf13/cobra"
)

var (
	watchEpochs int
	watchLR     float64
)

func NewTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train [upload|start|status|watch]",
		Short: "Training jobs",
		Long:  `Upload training data, start training and follow its progress.`,
	}

	uploadCmd := &cobra.Command{
		Use:   "upload <deployment_id> <file.zip>...",
		Short: "Upload training data",
		Long:  `Upload one or more ZIP archives of training data. Files that are not ZIP archives are skipped.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			res, err := uploadPaths(cmd, args[0], args[1:], oksdk.UploadTrainData)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, res)
		},
	}

	startCmd := &cobra.Command{
		Use:   "start <deployment_id> <classification|segmentation|generation|bbox>",
		Short: "Start training",
		Long:  `Start training the uploaded data as the given task type.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 2 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			mt, err := sdk.ParseModelType(args[1])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			if err := oksdk.StartTraining(cmd.Context(), args[0], mt); err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logOKCmd(*cmd)
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status <deployment_id>",
		Short: "Training status",
		Long:  `Show the metrics reported so far.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			st, err := oksdk.TrainStatus(cmd.Context(), args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, st)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch <deployment_id>",
		Short: "Watch training",
		Long:  `Poll the training status until it finishes, drawing its progress.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			id := args[0]
			tracker := monitor.NewTracker(monitor.Config{
				Label:        "Training",
				TotalSteps:   conf.Monitor.TotalSteps,
				TotalEpochs:  orInt(watchEpochs, conf.Monitor.TotalEpochs),
				LearningRate: orFloat(watchLR, conf.Monitor.LearningRate),
			})
			fetch := func(ctx context.Context) (monitor.Report, error) {
				st, err := oksdk.TrainStatus(ctx, id)
				if err != nil {
					return monitor.Report{}, err
				}

				return monitor.Report{
					Finished:  st.Finished,
					TrainLoss: st.TrainLoss,
					ValLoss:   st.ValLoss,
					TrainAcc:  st.TrainAcc,
					ValAcc:    st.ValAcc,
				}, nil
			}

			snap, err := watch(cmd, tracker, fetch)
			logJSONCmd(*cmd, summarize(snap))
			if err != nil {
				logErrorCmd(*cmd, err)
			}
		},
	}

	watchCmd.Flags().IntVar(&watchEpochs, "epochs", 0, "Number of epochs the job runs, defaults to monitor.total_epochs")
	watchCmd.Flags().Float64Var(&watchLR, "learning-rate", 0, "Learning rate the job was started with, defaults to monitor.learning_rate")

	cmd.AddCommand(uploadCmd, startCmd, statusCmd, watchCmd)

	return cmd
}

func watch(cmd *cobra.Command, tracker *monitor.Tracker, fetch monitor.Fetcher) (monitor.Snapshot, error) {
	poller := monitor.NewPoller(monitor.WithInterval(conf.Monitor.PollEvery()))

	return poller.Run(cmd.Context(), tracker, fetch, progressTicker(cmd, tracker.Snapshot().Status.TotalSteps))
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}

	return def
}

func orFloat(v, def float64) float64 {
	if v > 0 {
		return v
	}

	return def
}
