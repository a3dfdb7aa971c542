package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/okailora/okailora/catalog"
	"github.com/okailora/okailora/dashboard"
	"github.com/okailora/okailora/wizard"
	"github.com/spf13/cobra"
)

var errNoModels = errors.New("no models match the filter")

func NewWizardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wizard [train|finetune|inference|share]",
		Short: "Interactive workflow",
		Long:  `Pick a model, data and parameters interactively, then start the job.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			var wf wizard.Workflow
			if len(args) == 1 {
				var err error
				if wf, err = wizard.ParseWorkflow(args[0]); err != nil {
					logErrorCmd(*cmd, err)

					return
				}
			}

			opts, err := promptRun(cmd, wf)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			s, err := runWorkflow(cmd, opts)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			report(cmd, s)
		},
	}
}

func promptRun(cmd *cobra.Command, wf wizard.Workflow) (runOptions, error) {
	ctx := cmd.Context()
	opts := runOptions{Workflow: wf, Hyper: dashboard.DefaultHyperparameters()}

	f := catalog.Filter{License: catalog.AllLicenses}
	all, err := dashSvc.ListModels(ctx, catalog.Filter{})
	if err != nil {
		return opts, err
	}

	var groups []*huh.Group
	if wf == "" {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[wizard.Workflow]().
				Title("What do you want to do?").
				Options(
					huh.NewOption("Train a new model", wizard.Train),
					huh.NewOption("Fine-tune a model", wizard.Finetune),
					huh.NewOption("Run inference", wizard.Inference),
					huh.NewOption("Share a model", wizard.Share),
				).
				Value(&opts.Workflow),
		))
	}
	licenses := []huh.Option[string]{huh.NewOption("All licenses", catalog.AllLicenses)}
	for _, l := range catalog.LicensesOf(all) {
		licenses = append(licenses, huh.NewOption(l, l))
	}
	groups = append(groups, huh.NewGroup(
		huh.NewInput().
			Title("Search models").
			Placeholder("name, description or tag").
			Value(&f.Search),
		huh.NewSelect[string]().
			Title("License").
			Options(licenses...).
			Value(&f.License),
	))
	if err := huh.NewForm(groups...).RunWithContext(ctx); err != nil {
		return opts, err
	}

	models, err := dashSvc.ListModels(ctx, f)
	if err != nil {
		return opts, err
	}
	if len(models) == 0 {
		return opts, errNoModels
	}

	choices := make([]huh.Option[string], 0, len(models))
	for _, m := range models {
		choices = append(choices, huh.NewOption(fmt.Sprintf("%s  (%s, %s downloads)", m.Name, m.License, m.Downloads), m.ID))
	}
	var files string
	groups = []*huh.Group{huh.NewGroup(
		huh.NewSelect[string]().
			Title("Model").
			Options(choices...).
			Value(&opts.ModelID),
	)}
	if opts.Workflow != wizard.Share {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Data").
				Description("Comma separated ZIP archives").
				Value(&files).
				Validate(func(s string) error {
					if len(splitPaths(s)) == 0 {
						return errors.New("at least one file is required")
					}

					return nil
				}),
		))
	}
	if opts.Workflow.Trains() {
		groups = append(groups, hyperparameterGroup(&opts.Hyper))
	}
	if opts.Workflow != wizard.Share {
		groups = append(groups, huh.NewGroup(
			huh.NewConfirm().
				Title("Follow the job until it finishes?").
				Value(&opts.Watch),
		))
	}
	if err := huh.NewForm(groups...).RunWithContext(ctx); err != nil {
		return opts, err
	}
	opts.Paths = splitPaths(files)

	return opts, nil
}

func hyperparameterGroup(hp *dashboard.Hyperparameters) *huh.Group {
	return huh.NewGroup(
		huh.NewSelect[float64]().
			Title("Learning rate").
			Options(options(dashboard.LearningRateOptions, formatFloat)...).
			Value(&hp.LearningRate),
		huh.NewSelect[int]().
			Title("Batch size").
			Options(options(dashboard.BatchSizeOptions, strconv.Itoa)...).
			Value(&hp.BatchSize),
		huh.NewSelect[int]().
			Title("Epochs").
			Options(options(dashboard.EpochOptions, strconv.Itoa)...).
			Value(&hp.Epochs),
		huh.NewSelect[float64]().
			Title("Weight decay").
			Options(options(dashboard.WeightDecayOptions, formatFloat)...).
			Value(&hp.WeightDecay),
		huh.NewConfirm().
			Title("Mixed precision").
			Value(&hp.MixedPrecision),
		huh.NewConfirm().
			Title("Gradient checkpointing").
			Value(&hp.GradientCheckpointing),
	)
}

// options labels the first value as recommended.
func options[T comparable](values []T, format func(T) string) []huh.Option[T] {
	opts := make([]huh.Option[T], 0, len(values))
	for i, v := range values {
		label := format(v)
		if i == 0 {
			label += " (recommended)"
		}
		opts = append(opts, huh.NewOption(label, v))
	}

	return opts
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func splitPaths(s string) []string {
	var paths []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}

	return paths
}
