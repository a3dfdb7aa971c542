package cli

import (
	"github.com/okailora/okailora/catalog"
	"github.com/spf13/cobra"
)

var modelFilter catalog.Filter

func NewModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models [list|tags|licenses]",
		Short: "Model catalog",
		Long:  `Browse the model catalog: our deployed models followed by popular Hugging Face models.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List models",
		Long: `List the models matching the filter flags.

Examples:
  # Clinical models under the MIT license
  okailora models list --search clinical --license MIT

  # Models tagged bert or t5
  okailora models list --tag bert --tag t5`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			models, err := dashSvc.ListModels(cmd.Context(), modelFilter)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, models)
		},
	}

	listCmd.Flags().StringVarP(&modelFilter.Search, "search", "s", "", "Case-insensitive search over name, description and tags")
	listCmd.Flags().StringSliceVarP(&modelFilter.Tags, "tag", "t", nil, "Keep models carrying any of these tags")
	listCmd.Flags().StringVar(&modelFilter.License, "license", catalog.AllLicenses, "Keep models with exactly this license")

	tagsCmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags",
		Long:  `List every tag used in the catalog.`,
		Run: func(cmd *cobra.Command, _ []string) {
			models, err := dashSvc.ListModels(cmd.Context(), catalog.Filter{})
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, catalog.TagsOf(models))
		},
	}

	licensesCmd := &cobra.Command{
		Use:   "licenses",
		Short: "List licenses",
		Long:  `List every license used in the catalog.`,
		Run: func(cmd *cobra.Command, _ []string) {
			models, err := dashSvc.ListModels(cmd.Context(), catalog.Filter{})
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, catalog.LicensesOf(models))
		},
	}

	cmd.AddCommand(listCmd, tagsCmd, licensesCmd)

	return cmd
}

func NewDeploymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deployments [list]",
		Short: "Deployments",
		Long:  `Inspect the model deployments known to the platform.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List deployments",
		Long:  `List the model deployments available for inference.`,
		Run: func(cmd *cobra.Command, _ []string) {
			ds, err := oksdk.ListDeployments(cmd.Context())
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, ds)
		},
	})

	return cmd
}
