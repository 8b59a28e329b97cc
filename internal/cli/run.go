package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/vk/initr/internal/app"
)

// RunOptions holds the flags of the run command.
type RunOptions struct {
	Manifest           string
	Page               string
	ScriptRoot         string
	BasePath           string
	Dev                bool
	DisableScriptCache bool
	Timeout            time.Duration
	StatusPort         int
	NotifyURL          string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a manifest against a page",
		Long: `Load the manifest and the page, run every dependency and print one line
per dependency outcome. Local scripts are read relative to the page directory
unless --script-root is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, rootOpts, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Manifest, "manifest", "m", "", "manifest file (.hcl, .yaml, .yml, .toml)")
	f.StringVarP(&opts.Page, "page", "p", "", "HTML page to evaluate selectors against")
	f.StringVar(&opts.ScriptRoot, "script-root", "", "directory local scripts are read from")
	f.StringVar(&opts.BasePath, "base-path", "", "override the manifest base path")
	f.BoolVar(&opts.Dev, "dev", false, "enable diagnostics and load sources instead of bundles")
	f.BoolVar(&opts.DisableScriptCache, "disable-script-cache", false, "fetch every script on every request")
	f.DurationVar(&opts.Timeout, "timeout", 0, "per-fetch timeout, 0 disables it")
	f.IntVar(&opts.StatusPort, "status-port", 0, "serve /health, /metrics and /done on this port until interrupted")
	f.StringVar(&opts.NotifyURL, "notify-url", "", "socket.io endpoint completions are forwarded to")
	_ = cmd.MarkFlagRequired("manifest")
	_ = cmd.MarkFlagRequired("page")

	return cmd
}

func runRun(cmd *cobra.Command, rootOpts *RootOptions, opts *RunOptions) error {
	cfg := app.Config{
		ManifestPath: opts.Manifest,
		PagePath:     opts.Page,
		ScriptRoot:   opts.ScriptRoot,
		LogFormat:    rootOpts.LogFormat,
		LogLevel:     rootOpts.LogLevel,
		StatusPort:   opts.StatusPort,
		NotifyURL:    opts.NotifyURL,
	}
	flags := cmd.Flags()
	if flags.Changed("base-path") {
		cfg.BasePath = &opts.BasePath
	}
	if flags.Changed("dev") {
		cfg.Dev = &opts.Dev
	}
	if flags.Changed("disable-script-cache") {
		cfg.DisableScriptCache = &opts.DisableScriptCache
	}
	if flags.Changed("timeout") {
		cfg.Timeout = &opts.Timeout
	}

	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		return usageError(err)
	}
	a, err := app.NewApp(cmd.ErrOrStderr(), appConfig, nil)
	if err != nil {
		return startupError(err)
	}

	report, err := a.Run(cmd.Context())
	if err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	return report.Write(cmd.OutOrStdout())
}
