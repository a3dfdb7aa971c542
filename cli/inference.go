package cli

import (
	"context"

	"github.com/okailora/okailora/monitor"
	"github.com/spf13/cobra"
)

var inferenceParams map[string]string

func NewInferenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inference [upload|start|status|weights|watch]",
		Short: "Inference jobs",
		Long:  `Upload data to a deployment, run inference on it and fetch the results.`,
	}

	uploadCmd := &cobra.Command{
		Use:   "upload <deployment_id> <file.zip>...",
		Short: "Upload inference data",
		Long:  `Upload one or more ZIP archives to run inference on. Files that are not ZIP archives are skipped.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			res, err := uploadPaths(cmd, args[0], args[1:], oksdk.UploadInferenceData)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, res)
		},
	}

	startCmd := &cobra.Command{
		Use:   "start <deployment_id>",
		Short: "Start inference",
		Long: `Start inference on the uploaded data.

Examples:
  okailora inference start okailora/MedicalQA-T5 --param threshold=0.5`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			var params map[string]any
			if len(inferenceParams) > 0 {
				params = make(map[string]any, len(inferenceParams))
				for k, v := range inferenceParams {
					params[k] = v
				}
			}
			if err := oksdk.StartInference(cmd.Context(), args[0], params); err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logOKCmd(*cmd)
		},
	}

	startCmd.Flags().StringToStringVar(&inferenceParams, "param", nil, "Inference parameter as key=value, repeatable")

	statusCmd := &cobra.Command{
		Use:   "status <deployment_id>",
		Short: "Inference status",
		Long:  `Show whether inference finished, with its results.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			st, err := oksdk.InferenceStatus(cmd.Context(), args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, st)
		},
	}

	weightsCmd := &cobra.Command{
		Use:   "weights <deployment_id>",
		Short: "Model weights",
		Long:  `Fetch the weights of a deployment.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			w, err := oksdk.InferenceWeights(cmd.Context(), args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, w)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch <deployment_id>",
		Short: "Watch inference",
		Long:  `Poll the inference status until it finishes, then print the results.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			id := args[0]
			tracker := monitor.NewTracker(monitor.Config{
				Label:      "Inference",
				TotalSteps: conf.Monitor.TotalSteps,
			})
			var results any
			fetch := func(ctx context.Context) (monitor.Report, error) {
				st, err := oksdk.InferenceStatus(ctx, id)
				if err != nil {
					return monitor.Report{}, err
				}
				results = st.Result

				return monitor.Report{Finished: st.Finished}, nil
			}

			snap, err := watch(cmd, tracker, fetch)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, summarize(snap), results)
		},
	}

	cmd.AddCommand(uploadCmd, startCmd, statusCmd, weightsCmd, watchCmd)

	return cmd
}
