package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel  string
	LogFormat string
}

// NewRootCommand creates the root command for the initr CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "initr",
		Short: "Initr - declarative, dependency-driven script loading",
		Long: `Initr runs a manifest of dependencies against an HTML page.

Each dependency is gated on a selector and an optional validator, loads its
scripts (concurrently or in ordered groups) and is handed to an initializer.
Completions are announced as "<handle>:done" events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.LogLevel = strings.ToLower(opts.LogLevel)
			switch opts.LogLevel {
			case "debug", "info", "warn", "error":
			default:
				return &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
			}
			opts.LogFormat = strings.ToLower(opts.LogFormat)
			if opts.LogFormat != "text" && opts.LogFormat != "json" {
				return &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "logging level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "log output format (text|json)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// usageError wraps flag and argument problems so that they exit with 2.
func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: 2, Message: err.Error()}
}

// startupError wraps failures to build the application.
func startupError(err error) error {
	return &ExitError{Code: 1, Message: fmt.Sprintf("startup failed: %v", err)}
}
