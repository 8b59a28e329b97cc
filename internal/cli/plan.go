package cli

import (
	"github.com/spf13/cobra"
	"github.com/vk/initr/internal/app"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		manifest string
		dev      bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the load plan of every dependency",
		Long: `Print, per dependency, how its scripts would be loaded: bundle, single,
concurrent, or ordered groups. Nothing is fetched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config{ManifestPath: manifest, LogFormat: rootOpts.LogFormat, LogLevel: rootOpts.LogLevel}
			if cmd.Flags().Changed("dev") {
				cfg.Dev = &dev
			}
			appConfig, err := app.NewConfig(cfg)
			if err != nil {
				return usageError(err)
			}
			a, err := app.NewApp(cmd.ErrOrStderr(), appConfig, nil)
			if err != nil {
				return startupError(err)
			}
			lines, err := a.Plan()
			if err != nil {
				return startupError(err)
			}
			return app.WritePlan(cmd.OutOrStdout(), lines)
		},
	}

	cmd.Flags().StringVarP(&manifest, "manifest", "m", "", "manifest file (.hcl, .yaml, .yml, .toml)")
	cmd.Flags().BoolVar(&dev, "dev", false, "plan as in dev mode, ignoring bundles")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}
