package cli

import (
	"context"
	"errors"
	"time"

	"github.com/okailora/okailora/monitor"
	"github.com/spf13/cobra"
)

var (
	resSimulate bool
	resCount    int
	resInterval time.Duration
	resSeed     uint64
)

func NewResourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources [watch]",
		Short: "Resource usage",
		Long:  `Show the resource panel displayed next to a running job.`,
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch resource usage",
		Long: `Print resource samples until interrupted or --count samples were taken.

Examples:
  okailora resources watch --count 5
  okailora resources watch --simulate --interval 500ms`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			var src monitor.ResourceSource = monitor.NewHostSource()
			if resSimulate {
				seed := resSeed
				if seed == 0 {
					seed = uint64(time.Now().UnixNano())
				}
				src = monitor.NewRandomWalk(seed)
			}

			interval := resInterval
			if interval <= 0 {
				interval = conf.Monitor.ResourceEvery()
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			taken := 0
			err := monitor.Sample(ctx, src, interval, func(r monitor.Resources) {
				if ctx.Err() != nil {
					return
				}
				logJSONCmd(*cmd, r)
				taken++
				if resCount > 0 && taken >= resCount {
					cancel()
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logErrorCmd(*cmd, err)
			}
		},
	}

	watchCmd.Flags().BoolVar(&resSimulate, "simulate", false, "Report simulated figures instead of host measurements")
	watchCmd.Flags().IntVarP(&resCount, "count", "c", 0, "Stop after this many samples, 0 runs until interrupted")
	watchCmd.Flags().DurationVarP(&resInterval, "interval", "i", 0, "Sampling interval, defaults to monitor.resource_interval")
	watchCmd.Flags().Uint64Var(&resSeed, "seed", 0, "Seed of the simulated figures")

	cmd.AddCommand(watchCmd)

	return cmd
}
